package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/finqube/loandesk_backend/controllers"
	"github.com/finqube/loandesk_backend/middleware"
	"github.com/finqube/loandesk_backend/models"
	"github.com/finqube/loandesk_backend/websocket"
)

// SetupRoutes registers authentication and websocket routes
func SetupRoutes(e *echo.Echo, db *mongo.Database, wsHub *websocket.Hub, authController *controllers.AuthController) {
	auth := e.Group("/api/auth")
	auth.POST("/login", authController.Login)

	ws := e.Group("/api/ws")
	ws.Use(middleware.JWTMiddleware())
	ws.GET("", func(c echo.Context) error {
		userID, err := middleware.ExtractUserID(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "User ID not found in context",
			})
		}
		objID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid user ID format",
			})
		}
		return websocket.HandleWebSocket(c, wsHub, objID)
	})
}
