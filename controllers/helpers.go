package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/finqube/loandesk_backend/middleware"
	"github.com/finqube/loandesk_backend/services"
)

// statusForError maps the engine's error taxonomy to HTTP status codes.
// Anything outside the taxonomy is a server-side failure.
func statusForError(err error) int {
	var precondition *services.PreconditionError
	var invalidCommission *services.InvalidCommissionError
	var invalidTransition *services.InvalidStateTransitionError

	switch {
	case errors.Is(err, services.ErrDuplicateInvoice):
		return http.StatusConflict
	case errors.Is(err, services.ErrRuleNotFound):
		return http.StatusUnprocessableEntity
	case errors.As(err, &precondition):
		return http.StatusUnprocessableEntity
	case errors.As(err, &invalidCommission):
		return http.StatusUnprocessableEntity
	case errors.As(err, &invalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// actorID extracts the authenticated user's object id from context
func actorID(c echo.Context) (primitive.ObjectID, error) {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.ObjectIDFromHex(userID)
}
