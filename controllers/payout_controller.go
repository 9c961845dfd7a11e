package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/finqube/loandesk_backend/models"
	"github.com/finqube/loandesk_backend/services"
	"github.com/finqube/loandesk_backend/utils"
	"github.com/finqube/loandesk_backend/websocket"
)

type PayoutController struct {
	DB         *mongo.Database
	Aggregator *services.PayoutAggregator
	Hub        *websocket.Hub
}

func NewPayoutController(db *mongo.Database, hub *websocket.Hub) *PayoutController {
	return &PayoutController{
		DB:         db,
		Aggregator: services.NewPayoutAggregator(db, services.NewCounterNumberGenerator(db)),
		Hub:        hub,
	}
}

// CreatePayouts groups approved invoices into one payout per payee
func (pc *PayoutController) CreatePayouts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.PayoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "At least one invoice ID is required",
		})
	}

	invoiceIDs := make([]primitive.ObjectID, 0, len(req.InvoiceIDs))
	for _, raw := range req.InvoiceIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid invoice ID format",
			})
		}
		invoiceIDs = append(invoiceIDs, id)
	}

	actor, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User ID not found in context",
		})
	}

	payouts, err := pc.Aggregator.CreatePayouts(ctx, invoiceIDs, actor)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("Payout creation failed: %v", err)
			return c.JSON(status, models.Response{
				Status:  status,
				Message: "Failed to create payouts",
			})
		}
		return c.JSON(status, models.Response{
			Status:  status,
			Message: err.Error(),
		})
	}

	for i := range payouts {
		utils.NotifyPayoutCreated(pc.DB, &payouts[i])
		pc.Hub.Broadcast(websocket.Event{
			Type:    websocket.EventTypePayoutCreated,
			Message: "Payout created",
			Data:    payouts[i],
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Payouts created successfully",
		Data:    payouts,
	})
}

// ConfirmPayout marks a payout paid and its invoices settled
func (pc *PayoutController) ConfirmPayout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payoutID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid payout ID format",
		})
	}

	var req models.PayoutConfirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if req.Reference == "" {
		req.Reference = uuid.NewString()
	}

	actor, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User ID not found in context",
		})
	}

	payout, err := pc.Aggregator.ConfirmPayout(ctx, payoutID, actor, req.Reference)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("Payout confirmation failed for %s: %v", payoutID.Hex(), err)
			return c.JSON(status, models.Response{
				Status:  status,
				Message: "Failed to confirm payout",
			})
		}
		return c.JSON(status, models.Response{
			Status:  status,
			Message: err.Error(),
		})
	}

	pc.Hub.Broadcast(websocket.Event{
		Type:    websocket.EventTypePayoutPaid,
		Message: "Payout confirmed",
		Data:    payout,
	})

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payout confirmed successfully",
		Data:    payout,
	})
}

// ListPayouts returns payouts, optionally filtered by payee or status
func (pc *PayoutController) ListPayouts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}
	if payeeParam := c.QueryParam("payeeId"); payeeParam != "" {
		payeeID, err := primitive.ObjectIDFromHex(payeeParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid payee ID format",
			})
		}
		filter["payeeId"] = payeeID
	}

	cursor, err := pc.DB.Collection("payouts").Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch payouts",
		})
	}

	var payouts []models.Payout
	if err := cursor.All(ctx, &payouts); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode payouts",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payouts fetched successfully",
		Data:    payouts,
	})
}
