package routes

import (
	"apexsports_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
) {
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.CoachHandler.RegisterRoutes(api)
		appHandlers.BookingHandler.RegisterRoutes(api)
		appHandlers.WebhookHandler.RegisterRoutes(api)
	}
}
