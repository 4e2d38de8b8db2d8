package services

import (
	"context"
	"errors"

	"apexsports_backend/internal/config"
	"apexsports_backend/internal/logger"
	"apexsports_backend/internal/models"
	"apexsports_backend/internal/payments"
	"apexsports_backend/internal/repositories"
	"apexsports_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// WebhookService сверяет статус платежа с событиями провайдера.
// Это страховка на случай, когда синхронный ответ API потерялся или
// холд доводился на клиенте через requires_action.
type WebhookService interface {
	HandleEvent(ctx context.Context, db *gorm.DB, payload []byte, signatureHeader string) error
}

type webhookService struct {
	bookingRepo repositories.BookingRepository
	gateway     payments.Gateway
	cfg         *config.Config
}

func NewWebhookService(
	bookingRepo repositories.BookingRepository,
	gateway payments.Gateway,
	cfg *config.Config,
) WebhookService {
	return &webhookService{
		bookingRepo: bookingRepo,
		gateway:     gateway,
		cfg:         cfg,
	}
}

func (s *webhookService) HandleEvent(ctx context.Context, db *gorm.DB, payload []byte, signatureHeader string) error {
	if !s.cfg.StripeEnabled() || s.cfg.Payments.StripeWebhookSecret == "" {
		return apperrors.ErrPaymentNotConfigured
	}

	event, err := s.gateway.VerifyWebhook(payload, signatureHeader)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeValidationFailed, "webhook", "Invalid webhook signature", 400)
	}

	// События без интента нас не интересуют, отвечаем 200 чтобы
	// провайдер не ретраил
	if event.IntentID == "" || event.BookingID == "" {
		logger.CtxDebug(ctx, "ignoring webhook event", "type", event.Type)
		return nil
	}

	var status models.PaymentStatus
	switch event.Type {
	case "payment_intent.succeeded":
		// Встроенный в событие интент может быть еще не захвачен
		if event.IntentStatus == payments.IntentStatusSucceeded {
			status = models.PaymentStatusSucceeded
		} else {
			status = models.PaymentStatusAuthorized
		}
	case "payment_intent.amount_capturable_updated":
		if event.IntentStatus != payments.IntentStatusRequiresCapture {
			return nil
		}
		status = models.PaymentStatusAuthorized
	case "payment_intent.payment_failed":
		status = models.PaymentStatusFailed
	case "payment_intent.canceled":
		status = models.PaymentStatusCanceled
	default:
		return nil
	}

	// Обновляем только при совпадении пары (бронь, интент)
	booking, err := s.bookingRepo.FindByPaymentIntent(db, event.BookingID, event.IntentID)
	if err != nil {
		if errors.Is(err, repositories.ErrBookingNotFound) {
			logger.CtxWarn(ctx, "webhook for unknown booking/intent pair",
				"booking_id", event.BookingID, "intent_id", event.IntentID)
			return nil
		}
		return apperrors.InternalError(err)
	}

	if err := s.bookingRepo.UpdatePaymentStatus(db, booking.ID, status); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "payment status reconciled from webhook",
		"booking_id", booking.ID,
		"event", event.Type,
		"payment_status", status,
	)
	return nil
}
