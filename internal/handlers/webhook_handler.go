package handlers

import (
	"net/http"

	"apexsports_backend/internal/logger"
	"apexsports_backend/internal/services"
	"apexsports_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	*BaseHandler
	webhookService services.WebhookService
}

func NewWebhookHandler(base *BaseHandler, webhookService services.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:    base,
		webhookService: webhookService,
	}
}

// RegisterRoutes регистрирует эндпоинт вебхуков провайдера.
// Без аутентификации, запрос проверяется подписью.
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/stripe", h.HandleStripeEvent)
}

func (h *WebhookHandler) HandleStripeEvent(c *gin.Context) {
	// Подпись считается от сырого тела, JSON-биндинг не подходит
	payload, err := c.GetRawData()
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "failed to read webhook payload", err)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Failed to read request body"))
		return
	}

	db := h.GetDB(c)

	err = h.webhookService.HandleEvent(c.Request.Context(), db, payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
