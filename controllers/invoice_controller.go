package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
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

type InvoiceController struct {
	DB        *mongo.Database
	Generator *services.InvoiceGenerator
	Lifecycle *services.InvoiceLifecycle
	Hub       *websocket.Hub
}

func NewInvoiceController(db *mongo.Database, redisClient *redis.Client, hub *websocket.Hub) *InvoiceController {
	rules := services.NewRuleStore(db)
	numbers := services.NewCounterNumberGenerator(db)
	return &InvoiceController{
		DB:        db,
		Generator: services.NewInvoiceGenerator(db, redisClient, rules, numbers),
		Lifecycle: services.NewInvoiceLifecycle(db),
		Hub:       hub,
	}
}

// Generate creates the invoice set for a lead
func (ic *InvoiceController) Generate(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	leadID, err := primitive.ObjectIDFromHex(c.Param("leadId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid lead ID format",
		})
	}

	actor, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User ID not found in context",
		})
	}

	invoices, err := ic.Generator.GenerateInvoice(ctx, leadID, actor)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("Invoice generation failed for lead %s: %v", leadID.Hex(), err)
			return c.JSON(status, models.Response{
				Status:  status,
				Message: "Failed to generate invoice",
			})
		}
		return c.JSON(status, models.Response{
			Status:  status,
			Message: err.Error(),
		})
	}

	for i := range invoices {
		inv := &invoices[i]
		utils.NotifyInvoiceStatus(ic.DB, inv, "Invoice Generated",
			fmt.Sprintf("Invoice %s for commission %.2f has been generated.", inv.InvoiceNumber, inv.CommissionAmount))
		ic.Hub.Broadcast(websocket.Event{
			Type:    websocket.EventTypeInvoiceGenerated,
			Message: "Invoice generated",
			Data:    inv,
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Invoices generated successfully",
		Data:    invoices,
	})
}

// GetInvoice returns a single invoice
func (ic *InvoiceController) GetInvoice(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	invoiceID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid invoice ID format",
		})
	}

	var invoice models.Invoice
	err = ic.DB.Collection("invoices").FindOne(ctx, bson.M{"_id": invoiceID}).Decode(&invoice)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Invoice not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load invoice",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Invoice fetched successfully",
		Data:    invoice,
	})
}

// ListInvoices returns invoices filtered by status, lead or payee
func (ic *InvoiceController) ListInvoices(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}
	if leadParam := c.QueryParam("leadId"); leadParam != "" {
		leadID, err := primitive.ObjectIDFromHex(leadParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid lead ID format",
			})
		}
		filter["leadId"] = leadID
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

	cursor, err := ic.DB.Collection("invoices").Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch invoices",
		})
	}

	var invoices []models.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode invoices",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Invoices fetched successfully",
		Data:    invoices,
	})
}

// Accept transitions a pending invoice to approved
func (ic *InvoiceController) Accept(c echo.Context) error {
	var req models.RemarksRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	return ic.lifecycleOp(c, "Invoice accepted successfully", func(ctx context.Context, invoiceID, actor primitive.ObjectID) (*models.Invoice, error) {
		return ic.Lifecycle.Accept(ctx, invoiceID, actor, req.Remarks)
	})
}

// Escalate transitions a pending invoice to escalated
func (ic *InvoiceController) Escalate(c echo.Context) error {
	var req models.EscalationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Escalation reason is required",
		})
	}

	return ic.lifecycleOp(c, "Invoice escalated successfully", func(ctx context.Context, invoiceID, actor primitive.ObjectID) (*models.Invoice, error) {
		return ic.Lifecycle.Escalate(ctx, invoiceID, actor, req.Reason, req.Remarks)
	})
}

// ResolveEscalation returns an escalated invoice to pending
func (ic *InvoiceController) ResolveEscalation(c echo.Context) error {
	var req models.ResolutionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Resolution remarks are required",
		})
	}

	return ic.lifecycleOp(c, "Escalation resolved successfully", func(ctx context.Context, invoiceID, actor primitive.ObjectID) (*models.Invoice, error) {
		return ic.Lifecycle.ResolveEscalation(ctx, invoiceID, actor, req.Remarks, req.AdjustedCommission)
	})
}

// Approve transitions a pending or escalated invoice to approved
func (ic *InvoiceController) Approve(c echo.Context) error {
	var req models.RemarksRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	return ic.lifecycleOp(c, "Invoice approved successfully", func(ctx context.Context, invoiceID, actor primitive.ObjectID) (*models.Invoice, error) {
		return ic.Lifecycle.Approve(ctx, invoiceID, actor, req.Remarks)
	})
}

// Reject terminates an open invoice
func (ic *InvoiceController) Reject(c echo.Context) error {
	var req models.RejectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Rejection reason is required",
		})
	}

	return ic.lifecycleOp(c, "Invoice rejected successfully", func(ctx context.Context, invoiceID, actor primitive.ObjectID) (*models.Invoice, error) {
		return ic.Lifecycle.Reject(ctx, invoiceID, actor, req.Reason)
	})
}

func (ic *InvoiceController) lifecycleOp(c echo.Context, successMessage string, op func(context.Context, primitive.ObjectID, primitive.ObjectID) (*models.Invoice, error)) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	invoiceID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid invoice ID format",
		})
	}

	actor, err := actorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User ID not found in context",
		})
	}

	invoice, err := op(ctx, invoiceID, actor)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("Invoice lifecycle operation failed for %s: %v", invoiceID.Hex(), err)
			return c.JSON(status, models.Response{
				Status:  status,
				Message: "Failed to update invoice",
			})
		}
		return c.JSON(status, models.Response{
			Status:  status,
			Message: err.Error(),
		})
	}

	utils.NotifyInvoiceStatus(ic.DB, invoice, "Invoice Status Updated",
		fmt.Sprintf("Invoice %s is now %s.", invoice.InvoiceNumber, invoice.Status))
	ic.Hub.Broadcast(websocket.Event{
		Type:    websocket.EventTypeInvoiceStatus,
		Message: successMessage,
		Data:    invoice,
	})

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: successMessage,
		Data:    invoice,
	})
}
