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
	"github.com/finqube/loandesk_backend/services"
)

type CommissionRuleController struct {
	DB    *mongo.Database
	Rules *services.RuleStore
}

func NewCommissionRuleController(db *mongo.Database) *CommissionRuleController {
	return &CommissionRuleController{DB: db, Rules: services.NewRuleStore(db)}
}

// CreateRule creates a new commission rule
func (crc *CommissionRuleController) CreateRule(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.CommissionRuleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid commission rule",
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
	rule := models.CommissionRule{
		ID:              primitive.NewObjectID(),
		BankID:          bankID,
		LoanType:        req.LoanType,
		CommissionBasis: req.CommissionBasis,
		CommissionType:  req.CommissionType,
		CommissionValue: req.CommissionValue,
		MinCommission:   req.MinCommission,
		MaxCommission:   req.MaxCommission,
		EffectiveFrom:   req.EffectiveFrom,
		EffectiveTo:     req.EffectiveTo,
		Status:          "active",
		CreatedBy:       actor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := crc.DB.Collection("commission_rules").InsertOne(ctx, rule); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create commission rule",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Commission rule created successfully",
		Data:    rule,
	})
}

// UpdateRule edits a rule's value, clamps or effective window
func (crc *CommissionRuleController) UpdateRule(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ruleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid rule ID format",
		})
	}

	var req models.CommissionRuleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid commission rule",
			Data:    err.Error(),
		})
	}

	update := bson.M{"$set": bson.M{
		"loanType":        req.LoanType,
		"commissionBasis": req.CommissionBasis,
		"commissionType":  req.CommissionType,
		"commissionValue": req.CommissionValue,
		"minCommission":   req.MinCommission,
		"maxCommission":   req.MaxCommission,
		"effectiveFrom":   req.EffectiveFrom,
		"effectiveTo":     req.EffectiveTo,
		"updatedAt":       time.Now(),
	}}

	result, err := crc.DB.Collection("commission_rules").UpdateByID(ctx, ruleID, update)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update commission rule",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Commission rule not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission rule updated successfully",
	})
}

// DeactivateRule retires a rule. Rules are never deleted.
func (crc *CommissionRuleController) DeactivateRule(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ruleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid rule ID format",
		})
	}

	result, err := crc.DB.Collection("commission_rules").UpdateByID(ctx, ruleID, bson.M{
		"$set": bson.M{"status": "inactive", "updatedAt": time.Now()},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to deactivate commission rule",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Commission rule not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission rule deactivated successfully",
	})
}

// ListRules returns the rules for a bank, newest effective window first
func (crc *CommissionRuleController) ListRules(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if bankParam := c.QueryParam("bankId"); bankParam != "" {
		bankID, err := primitive.ObjectIDFromHex(bankParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid bank ID format",
			})
		}
		filter["bankId"] = bankID
	}

	cursor, err := crc.DB.Collection("commission_rules").Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "effectiveFrom", Value: -1}}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch commission rules",
		})
	}

	var rules []models.CommissionRule
	if err := cursor.All(ctx, &rules); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode commission rules",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission rules fetched successfully",
		Data:    rules,
	})
}

// ResolveRule previews which rule applies for (bank, loanType, asOf)
func (crc *CommissionRuleController) ResolveRule(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bankID, err := primitive.ObjectIDFromHex(c.QueryParam("bankId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid bank ID format",
		})
	}
	loanType := c.QueryParam("loanType")
	if loanType == "" {
		loanType = models.LoanTypeAll
	}

	asOf := time.Now()
	if asOfParam := c.QueryParam("asOf"); asOfParam != "" {
		parsed, err := time.Parse(time.RFC3339, asOfParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid asOf date, expected RFC3339",
			})
		}
		asOf = parsed
	}

	rule, err := crc.Rules.Resolve(ctx, bankID, loanType, asOf)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to resolve commission rule",
		})
	}
	if rule == nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No applicable commission rule",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission rule resolved successfully",
		Data:    rule,
	})
}
