package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/finqube/loandesk_backend/models"
)

type FranchiseLimitController struct {
	DB *mongo.Database
}

func NewFranchiseLimitController(db *mongo.Database) *FranchiseLimitController {
	return &FranchiseLimitController{DB: db}
}

type franchiseLimitRequest struct {
	BankID    string  `json:"bankId" validate:"required"`
	LimitType string  `json:"limitType" validate:"required,oneof=percentage amount"`
	Value     float64 `json:"value" validate:"required,gt=0"`
}

// SetLimit creates or replaces the single commission limit for a bank. The
// unique index on bankId keeps it one record per bank.
func (flc *FranchiseLimitController) SetLimit(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req franchiseLimitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid commission limit",
			Data:    err.Error(),
		})
	}

	bankID, err := primitive.ObjectIDFromHex(req.BankID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid bank ID format",
		})
	}

	actor, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User ID not found in context",
		})
	}

	now := time.Now()
	_, err = flc.DB.Collection("franchise_commission_limits").UpdateOne(ctx,
		bson.M{"bankId": bankID},
		bson.M{
			"$set": bson.M{
				"limitType": req.LimitType,
				"value":     req.Value,
				"updatedAt": now,
			},
			"$setOnInsert": bson.M{
				"bankId":    bankID,
				"createdBy": actor,
				"createdAt": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to set commission limit",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission limit saved successfully",
	})
}

// GetLimit returns the commission limit for a bank
func (flc *FranchiseLimitController) GetLimit(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bankID, err := primitive.ObjectIDFromHex(c.Param("bankId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid bank ID format",
		})
	}

	var limit models.FranchiseCommissionLimit
	err = flc.DB.Collection("franchise_commission_limits").FindOne(ctx, bson.M{"bankId": bankID}).Decode(&limit)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "No commission limit configured for bank",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load commission limit",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission limit fetched successfully",
		Data:    limit,
	})
}
