package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/finqube/loandesk_backend/controllers"
	"github.com/finqube/loandesk_backend/middleware"
	"github.com/finqube/loandesk_backend/models"
	"github.com/finqube/loandesk_backend/websocket"
)

// RegisterInvoiceRoutes sets up invoice generation and lifecycle routes
func RegisterInvoiceRoutes(e *echo.Echo, db *mongo.Database, redisClient *redis.Client, wsHub *websocket.Hub) {
	invoiceController := controllers.NewInvoiceController(db, redisClient, wsHub)

	invoices := e.Group("/api/invoices")
	invoices.Use(middleware.JWTMiddleware())

	invoices.POST("/generate/:leadId", invoiceController.Generate,
		middleware.RequireUserType(models.UserTypeAdmin, models.UserTypeRelationshipManager, models.UserTypeRegionalManager))
	invoices.GET("", invoiceController.ListInvoices)
	invoices.GET("/:id", invoiceController.GetInvoice)

	// Payees accept or escalate their own invoices
	invoices.POST("/:id/accept", invoiceController.Accept,
		middleware.RequireUserType(models.UserTypeAgent, models.UserTypeFranchise, models.UserTypeAdmin))
	invoices.POST("/:id/escalate", invoiceController.Escalate,
		middleware.RequireUserType(models.UserTypeAgent, models.UserTypeFranchise, models.UserTypeAdmin))

	// Back-office resolves, approves and rejects
	adminGuard := middleware.RequireUserType(models.UserTypeAdmin, models.UserTypeRegionalManager)
	invoices.POST("/:id/resolve", invoiceController.ResolveEscalation, adminGuard)
	invoices.POST("/:id/approve", invoiceController.Approve, adminGuard)
	invoices.POST("/:id/reject", invoiceController.Reject, adminGuard)
}
