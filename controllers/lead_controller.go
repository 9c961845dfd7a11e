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

	"github.com/finqube/loandesk_backend/middleware"
	"github.com/finqube/loandesk_backend/models"
	"github.com/finqube/loandesk_backend/services"
)

type LeadController struct {
	DB *mongo.Database
}

func NewLeadController(db *mongo.Database) *LeadController {
	return &LeadController{DB: db}
}

// CreateLead logs a new lead. Commission percentages may only be set by an
// agent or an admin; a relationship manager sending commission fields is
// rejected outright rather than silently dropped.
func (lc *LeadController) CreateLead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.LeadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid lead",
			Data:    err.Error(),
		})
	}

	actor, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User ID not found in context",
		})
	}

	userType := middleware.ExtractUserType(c)
	assignsCommission := req.AgentCommissionPercent != 0 ||
		req.SubAgentCommissionPercent != 0 ||
		req.ReferralFranchiseCommissionPercent != 0
	if assignsCommission && userType != models.UserTypeAgent && userType != models.UserTypeAdmin {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Only agents and admins may assign commission percentages",
		})
	}

	bankID, err := primitive.ObjectIDFromHex(req.BankID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid bank ID format",
		})
	}

	// The ceiling invariant is enforced at assignment time; generation
	// re-checks it later.
	var limit models.FranchiseCommissionLimit
	err = lc.DB.Collection("franchise_commission_limits").FindOne(ctx, bson.M{"bankId": bankID}).Decode(&limit)
	if err == nil && limit.LimitType == models.LimitTypePercentage {
		if err := services.ValidateCommissionAllocation(&limit,
			req.AgentCommissionPercent, req.SubAgentCommissionPercent, req.ReferralFranchiseCommissionPercent); err != nil {
			return c.JSON(statusForError(err), models.Response{
				Status:  statusForError(err),
				Message: err.Error(),
			})
		}
	} else if err != nil && err != mongo.ErrNoDocuments {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check franchise commission limit",
		})
	}

	now := time.Now()
	lead := models.Lead{
		ID:                     primitive.NewObjectID(),
		ApplicantName:          req.ApplicantName,
		ApplicantPhone:         req.ApplicantPhone,
		BankID:                 bankID,
		LoanType:               req.LoanType,
		LoanAmount:             req.LoanAmount,
		Status:                 models.LeadStatusLogged,
		AgentID:                actor,
		AgentCommissionPercent: req.AgentCommissionPercent,
		SubAgentCommissionPercent: req.SubAgentCommissionPercent,
		ReferralFranchiseCommissionPercent: req.ReferralFranchiseCommissionPercent,
		CreatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if req.SubAgentID != "" {
		subAgentID, err := primitive.ObjectIDFromHex(req.SubAgentID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid sub-agent ID format",
			})
		}
		lead.SubAgentID = &subAgentID
	}

	if req.ReferralFranchiseID != "" {
		refID, err := primitive.ObjectIDFromHex(req.ReferralFranchiseID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid referral franchise ID format",
			})
		}
		lead.ReferralFranchiseID = &refID
		// The referral amount is fixed at assignment time and used verbatim
		// during franchise invoicing.
		lead.ReferralCommissionAmount = req.LoanAmount * req.ReferralFranchiseCommissionPercent / 100
	}

	if req.AssociatedModel != "" {
		if req.AssociatedModel != models.AssociatedModelFranchise &&
			req.AssociatedModel != models.AssociatedModelRelationshipManager {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid associated model",
			})
		}
		assocID, err := primitive.ObjectIDFromHex(req.AssociatedID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid associated ID format",
			})
		}
		lead.Associated = &models.HierarchyRef{Model: req.AssociatedModel, ID: assocID}
	}

	if _, err := lc.DB.Collection("leads").InsertOne(ctx, lead); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create lead",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Lead created successfully",
		Data:    lead,
	})
}

// Sanction moves a logged lead to sanctioned
func (lc *LeadController) Sanction(c echo.Context) error {
	return lc.transitionStatus(c, []string{models.LeadStatusLogged}, models.LeadStatusSanctioned, "sanctionedAt")
}

// Complete moves a disbursed lead to completed
func (lc *LeadController) Complete(c echo.Context) error {
	return lc.transitionStatus(c, []string{models.LeadStatusDisbursed}, models.LeadStatusCompleted, "completedAt")
}

// RejectLead terminates a lead from any pre-disbursal status
func (lc *LeadController) RejectLead(c echo.Context) error {
	return lc.transitionStatus(c,
		[]string{models.LeadStatusLogged, models.LeadStatusSanctioned},
		models.LeadStatusRejected, "")
}

func (lc *LeadController) transitionStatus(c echo.Context, from []string, to, stampField string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	leadID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid lead ID format",
		})
	}

	now := time.Now()
	set := bson.M{"status": to, "updatedAt": now}
	if stampField != "" {
		set[stampField] = now
	}

	result, err := lc.DB.Collection("leads").UpdateOne(ctx,
		bson.M{"_id": leadID, "status": bson.M{"$in": from}},
		bson.M{"$set": set},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update lead status",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Lead not found or not in a valid status for this transition",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Lead status updated successfully",
	})
}

// Disburse records a disbursement tranche. The cumulative disbursed amount
// grows with each tranche; a partial tranche keeps the lead in
// partial_disbursed until the full amount is out.
func (lc *LeadController) Disburse(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	leadID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid lead ID format",
		})
	}

	var req models.DisbursementRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Disbursement amount must be greater than zero",
		})
	}

	var lead models.Lead
	err = lc.DB.Collection("leads").FindOne(ctx, bson.M{"_id": leadID}).Decode(&lead)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Lead not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load lead",
		})
	}

	if lead.Status != models.LeadStatusSanctioned && lead.Status != models.LeadStatusPartialDisbursed {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Lead is not in a disbursable status",
		})
	}

	newTotal := lead.DisbursedAmount + req.Amount
	status := models.LeadStatusDisbursed
	if req.Partial && newTotal < lead.LoanAmount {
		status = models.LeadStatusPartialDisbursed
	}

	now := time.Now()
	_, err = lc.DB.Collection("leads").UpdateByID(ctx, leadID, bson.M{
		"$set": bson.M{
			"disbursedAmount": newTotal,
			"status":          status,
			"disbursedAt":     now,
			"updatedAt":       now,
		},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to record disbursement",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Disbursement recorded successfully",
		Data: bson.M{
			"disbursedAmount": newTotal,
			"status":          status,
		},
	})
}

// GetLead returns a single lead
func (lc *LeadController) GetLead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	leadID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid lead ID format",
		})
	}

	var lead models.Lead
	err = lc.DB.Collection("leads").FindOne(ctx, bson.M{"_id": leadID}).Decode(&lead)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Lead not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load lead",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Lead fetched successfully",
		Data:    lead,
	})
}

// ListLeads returns leads, optionally filtered by status or agent
func (lc *LeadController) ListLeads(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}
	if agentParam := c.QueryParam("agentId"); agentParam != "" {
		agentID, err := primitive.ObjectIDFromHex(agentParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid agent ID format",
			})
		}
		filter["agentId"] = agentID
	}

	cursor, err := lc.DB.Collection("leads").Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch leads",
		})
	}

	var leads []models.Lead
	if err := cursor.All(ctx, &leads); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode leads",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Leads fetched successfully",
		Data:    leads,
	})
}
