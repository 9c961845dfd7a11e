package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/finqube/loandesk_backend/controllers"
	"github.com/finqube/loandesk_backend/middleware"
	"github.com/finqube/loandesk_backend/models"
	"github.com/finqube/loandesk_backend/websocket"
)

// RegisterAdminRoutes sets up commission rule, commission limit and payout
// administration routes
func RegisterAdminRoutes(e *echo.Echo, db *mongo.Database, wsHub *websocket.Hub) {
	ruleController := controllers.NewCommissionRuleController(db)
	limitController := controllers.NewFranchiseLimitController(db)
	payoutController := controllers.NewPayoutController(db, wsHub)

	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireUserType(models.UserTypeAdmin))

	admin.POST("/commission-rules", ruleController.CreateRule)
	admin.PUT("/commission-rules/:id", ruleController.UpdateRule)
	admin.POST("/commission-rules/:id/deactivate", ruleController.DeactivateRule)
	admin.GET("/commission-rules", ruleController.ListRules)
	admin.GET("/commission-rules/resolve", ruleController.ResolveRule)

	admin.POST("/commission-limits", limitController.SetLimit)
	admin.GET("/commission-limits/:bankId", limitController.GetLimit)

	admin.POST("/payouts", payoutController.CreatePayouts)
	admin.POST("/payouts/:id/confirm", payoutController.ConfirmPayout)
	admin.GET("/payouts", payoutController.ListPayouts)
}
