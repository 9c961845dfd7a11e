package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/finqube/loandesk_backend/controllers"
	"github.com/finqube/loandesk_backend/middleware"
	"github.com/finqube/loandesk_backend/models"
)

// RegisterLeadRoutes sets up lead management routes
func RegisterLeadRoutes(e *echo.Echo, db *mongo.Database) {
	leadController := controllers.NewLeadController(db)

	leads := e.Group("/api/leads")
	leads.Use(middleware.JWTMiddleware())

	leads.POST("", leadController.CreateLead,
		middleware.RequireUserType(models.UserTypeAgent, models.UserTypeAdmin, models.UserTypeRelationshipManager))
	leads.GET("", leadController.ListLeads)
	leads.GET("/:id", leadController.GetLead)

	// Status transitions are back-office operations
	statusGuard := middleware.RequireUserType(models.UserTypeAdmin, models.UserTypeRelationshipManager, models.UserTypeRegionalManager)
	leads.POST("/:id/sanction", leadController.Sanction, statusGuard)
	leads.POST("/:id/disburse", leadController.Disburse, statusGuard)
	leads.POST("/:id/complete", leadController.Complete, statusGuard)
	leads.POST("/:id/reject", leadController.RejectLead, statusGuard)
}
