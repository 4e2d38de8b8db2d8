package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"apexsports_backend/internal/config"
	"apexsports_backend/internal/logger"
	"apexsports_backend/internal/models"
	"apexsports_backend/internal/notifications"
	"apexsports_backend/internal/payments"
	"apexsports_backend/internal/repositories"
	"apexsports_backend/internal/services/dto"
	"apexsports_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type BookingService interface {
	Create(ctx context.Context, db *gorm.DB, athleteID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	List(ctx context.Context, db *gorm.DB, userID string) (*dto.BookingListResponse, error)
	Get(ctx context.Context, db *gorm.DB, userID, bookingID string) (*dto.BookingResponse, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, userID, bookingID string, req *dto.UpdateBookingRequest) (*dto.BookingResponse, error)
	CreateReview(ctx context.Context, db *gorm.DB, userID, bookingID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)

	// CancelActiveForSlot отменяет живые брони слота перед его удалением
	CancelActiveForSlot(ctx context.Context, db *gorm.DB, slotID string) error
}

type bookingService struct {
	bookingRepo repositories.BookingRepository
	availRepo   repositories.AvailabilityRepository
	userRepo    repositories.UserRepository
	reviewRepo  repositories.ReviewRepository
	gateway     payments.Gateway
	dispatcher  notifications.Dispatcher
	cfg         *config.Config
}

func NewBookingService(
	bookingRepo repositories.BookingRepository,
	availRepo repositories.AvailabilityRepository,
	userRepo repositories.UserRepository,
	reviewRepo repositories.ReviewRepository,
	gateway payments.Gateway,
	dispatcher notifications.Dispatcher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		availRepo:   availRepo,
		userRepo:    userRepo,
		reviewRepo:  reviewRepo,
		gateway:     gateway,
		dispatcher:  dispatcher,
		cfg:         cfg,
	}
}

// Create проводит заявку атлета через проверки слота и, для платных
// коучей, ставит холд с ручным захватом. Деньги списываются только
// при завершении сессии.
func (s *bookingService) Create(ctx context.Context, db *gorm.DB, athleteID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	slot, err := s.availRepo.FindSlotByID(db, req.SlotID)
	if err != nil {
		if errors.Is(err, repositories.ErrSlotNotFound) {
			return nil, apperrors.ErrSlotNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	// Слот чужого коуча не раскрываем, отвечаем как на несуществующий
	if slot.CoachID != req.CoachID {
		return nil, apperrors.ErrSlotNotFound
	}

	if slot.Status != models.SlotStatusAvailable {
		return nil, apperrors.ErrSlotUnavailable
	}

	mine, err := s.bookingRepo.ActiveExistsForSlotAndAthlete(db, slot.ID, athleteID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if mine {
		return nil, apperrors.ErrPendingRequest
	}

	taken, err := s.bookingRepo.ConfirmedExistsForSlot(db, slot.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if taken {
		return nil, apperrors.ErrSlotTaken
	}

	coach, err := s.userRepo.FindByID(db, req.CoachID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrCoachNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if coach.CoachProfile == nil {
		return nil, apperrors.ErrCoachNotFound
	}

	athlete, err := s.userRepo.FindByID(db, athleteID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	profile := coach.CoachProfile
	rate := profile.HourlyRate

	// Платеж нужен только когда провайдер настроен, ставка ненулевая
	// и коуч завел connect-аккаунт для выплат
	needsPayment := s.cfg.StripeEnabled() && rate.IsPositive() && profile.StripeConnectAccountID != ""

	var amountCents int64
	if needsPayment {
		amountCents = payments.ComputeAmountCents(rate, slot.DurationMinutes)
		if req.PaymentMethodID == "" {
			return nil, apperrors.ErrPaymentMethodRequired
		}
	}

	booking := &models.Booking{
		AthleteID:     athleteID,
		CoachID:       req.CoachID,
		SlotID:        slot.ID,
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusNone,
		Message:       strings.TrimSpace(req.Message),
		AmountCents:   amountCents,
		Currency:      "usd",
	}
	if needsPayment {
		booking.PaymentStatus = models.PaymentStatusPendingAuthorization
	}

	if err := s.bookingRepo.Create(db, booking); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := s.toBookingResponse(booking)
	resp.Slot = toSlotResponse(slot, 0)
	resp.Coach = &dto.PartyInfo{ID: coach.ID, Name: coach.Name}

	if needsPayment {
		if err := s.authorizePayment(ctx, db, booking, athlete, req.PaymentMethodID, resp); err != nil {
			return nil, err
		}
	}

	s.dispatcher.BookingRequested(ctx, notifications.BookingEvent{
		BookingID:       booking.ID,
		AthleteName:     athlete.Name,
		AthleteEmail:    athlete.Email,
		CoachName:       coach.Name,
		CoachEmail:      coach.Email,
		Message:         booking.Message,
		StartTime:       slot.StartTime,
		DurationMinutes: slot.DurationMinutes,
		AmountCents:     amountCents,
	})

	logger.CtxInfo(ctx, "booking created",
		"booking_id", booking.ID,
		"payment_status", booking.PaymentStatus,
	)

	return resp, nil
}

// authorizePayment ставит холд. Бронь к этому моменту уже существует:
// при отказе провайдера она остается в paymentStatus=failed, чтобы
// атлет мог увидеть причину и попробовать другой метод оплаты.
func (s *bookingService) authorizePayment(ctx context.Context, db *gorm.DB, booking *models.Booking, athlete *models.User, paymentMethodID string, resp *dto.BookingResponse) error {
	customerID := athlete.StripeCustomerID
	if customerID == "" {
		id, err := s.gateway.EnsureCustomer(ctx, athlete.Email, athlete.Name)
		if err != nil {
			return s.failPayment(ctx, db, booking, "Failed to set up payment profile", err)
		}
		customerID = id
		if err := s.userRepo.UpdateStripeCustomerID(db, athlete.ID, customerID); err != nil {
			return apperrors.InternalError(err)
		}
	}

	if err := s.gateway.AttachPaymentMethod(ctx, paymentMethodID, customerID); err != nil {
		return s.failPayment(ctx, db, booking, "Failed to attach payment method", err)
	}

	hold, err := s.gateway.CreateHold(ctx, payments.HoldParams{
		AmountCents:     booking.AmountCents,
		Currency:        booking.Currency,
		CustomerID:      customerID,
		PaymentMethodID: paymentMethodID,
		BookingID:       booking.ID,
	})
	if err != nil {
		return s.failPayment(ctx, db, booking, "Failed to authorize payment", err)
	}

	booking.PaymentIntentID = hold.IntentID

	switch hold.Status {
	case payments.IntentStatusRequiresCapture:
		booking.PaymentStatus = models.PaymentStatusAuthorized
	case payments.IntentStatusRequiresAction:
		// Холд доводится на клиенте, статус подтянет вебхук
		resp.RequiresAction = true
		resp.ClientSecret = hold.ClientSecret
	case payments.IntentStatusSucceeded:
		booking.PaymentStatus = models.PaymentStatusSucceeded
	}

	if err := s.bookingRepo.Update(db, booking); err != nil {
		return apperrors.InternalError(err)
	}

	resp.PaymentStatus = string(booking.PaymentStatus)
	return nil
}

func (s *bookingService) failPayment(ctx context.Context, db *gorm.DB, booking *models.Booking, message string, cause error) error {
	booking.PaymentStatus = models.PaymentStatusFailed
	if err := s.bookingRepo.Update(db, booking); err != nil {
		logger.CtxWithError(ctx, "failed to mark booking payment as failed", err, "booking_id", booking.ID)
	}
	logger.CtxWithError(ctx, "payment authorization failed", cause, "booking_id", booking.ID)
	return apperrors.PaymentGatewayError(message, cause).WithDetail(payments.CaptureFailureDetail(cause))
}

func (s *bookingService) List(ctx context.Context, db *gorm.DB, userID string) (*dto.BookingListResponse, error) {
	asAthlete, err := s.bookingRepo.FindByAthlete(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	asCoach, err := s.bookingRepo.FindByCoach(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.BookingListResponse{
		AsAthlete: make([]*dto.BookingResponse, 0, len(asAthlete)),
		AsCoach:   make([]*dto.BookingResponse, 0, len(asCoach)),
	}
	for i := range asAthlete {
		resp.AsAthlete = append(resp.AsAthlete, s.toDetailedResponse(&asAthlete[i]))
	}
	for i := range asCoach {
		resp.AsCoach = append(resp.AsCoach, s.toDetailedResponse(&asCoach[i]))
	}
	return resp, nil
}

func (s *bookingService) Get(ctx context.Context, db *gorm.DB, userID, bookingID string) (*dto.BookingResponse, error) {
	booking, err := s.loadAuthorized(db, userID, bookingID)
	if err != nil {
		return nil, err
	}
	return s.toDetailedResponse(booking), nil
}

// UpdateStatus проводит бронь по таблице переходов.
// confirm и complete доступны только коучу, cancel - коучу всегда,
// атлету только пока заявка не подтверждена.
func (s *bookingService) UpdateStatus(ctx context.Context, db *gorm.DB, userID, bookingID string, req *dto.UpdateBookingRequest) (*dto.BookingResponse, error) {
	booking, err := s.loadAuthorized(db, userID, bookingID)
	if err != nil {
		return nil, err
	}

	isCoach := booking.CoachID == userID
	target := models.BookingStatus(req.Status)

	if !models.CanTransition(booking.Status, target) {
		return nil, apperrors.ErrInvalidStatus("booking",
			fmt.Sprintf("Cannot change booking from %s to %s", booking.Status, target))
	}

	switch target {
	case models.BookingStatusConfirmed:
		if !isCoach {
			return nil, apperrors.NewForbiddenError("Only the coach can confirm a booking")
		}
		if err := s.confirm(ctx, db, booking); err != nil {
			return nil, err
		}
	case models.BookingStatusCompleted:
		if !isCoach {
			return nil, apperrors.NewForbiddenError("Only the coach can complete a booking")
		}
		if err := s.complete(ctx, db, booking); err != nil {
			return nil, err
		}
	case models.BookingStatusCancelled:
		if !isCoach && booking.Status != models.BookingStatusPending {
			return nil, apperrors.NewForbiddenError("A confirmed booking can only be cancelled by the coach")
		}
		if err := s.cancel(ctx, db, booking, isCoach); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.ErrInvalidStatus("booking", "Unsupported target status")
	}

	return s.toDetailedResponse(booking), nil
}

// confirm подтверждает заявку под блокировкой слота: два одновременных
// подтверждения разных заявок на один слот невозможны.
func (s *bookingService) confirm(ctx context.Context, db *gorm.DB, booking *models.Booking) error {
	err := s.bookingRepo.InTransaction(db, func(tx *gorm.DB) error {
		if _, err := s.availRepo.FindSlotByIDForUpdate(tx, booking.SlotID); err != nil {
			return err
		}

		taken, err := s.bookingRepo.ConfirmedExistsForSlot(tx, booking.SlotID)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.ErrSlotTaken
		}

		booking.Status = models.BookingStatusConfirmed
		if err := s.bookingRepo.Update(tx, booking); err != nil {
			return err
		}
		return s.availRepo.UpdateSlotStatus(tx, booking.SlotID, models.SlotStatusBooked)
	})
	if err != nil {
		var appErr *apperrors.AppError
		if apperrors.As(err, &appErr) {
			return appErr
		}
		return apperrors.InternalError(err)
	}

	s.dispatcher.BookingConfirmed(ctx, s.toEvent(booking))
	logger.CtxInfo(ctx, "booking confirmed", "booking_id", booking.ID)
	return nil
}

// complete захватывает холд и переводит коучу сумму за вычетом комиссии.
// Порядок строгий: сначала capture, затем transfer. Если захват
// невозможен, статус брони не меняется.
func (s *bookingService) complete(ctx context.Context, db *gorm.DB, booking *models.Booking) error {
	if booking.PaymentIntentID != "" {
		if err := s.settlePayment(ctx, db, booking); err != nil {
			return err
		}
	}

	now := time.Now()
	booking.Status = models.BookingStatusCompleted
	booking.CompletedAt = &now
	if err := s.bookingRepo.Update(db, booking); err != nil {
		return apperrors.InternalError(err)
	}

	s.dispatcher.BookingCompleted(ctx, s.toEvent(booking))
	logger.CtxInfo(ctx, "booking completed", "booking_id", booking.ID)
	return nil
}

func (s *bookingService) settlePayment(ctx context.Context, db *gorm.DB, booking *models.Booking) error {
	intent, err := s.gateway.RetrieveIntent(ctx, booking.PaymentIntentID)
	if err != nil {
		return apperrors.PaymentGatewayError("Failed to check payment status", err)
	}

	switch intent.Status {
	case payments.IntentStatusRequiresCapture:
		if err := s.gateway.CaptureHold(ctx, booking.PaymentIntentID); err != nil {
			return apperrors.PaymentGatewayError("Failed to capture payment", err).
				WithDetail(payments.CaptureFailureDetail(err))
		}
	case payments.IntentStatusSucceeded:
		// Уже захвачен, например повторный запрос после сбоя
	default:
		return apperrors.ErrPaymentNotCapturable.
			WithDetail(fmt.Sprintf("Payment is in status %q", intent.Status))
	}

	if err := s.payOutCoach(ctx, db, booking); err != nil {
		return err
	}

	booking.PaymentStatus = models.PaymentStatusSucceeded
	return nil
}

func (s *bookingService) payOutCoach(ctx context.Context, db *gorm.DB, booking *models.Booking) error {
	coach, err := s.userRepo.FindByID(db, booking.CoachID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if coach.CoachProfile == nil || coach.CoachProfile.StripeConnectAccountID == "" {
		logger.CtxWarn(ctx, "captured payment without payout destination", "booking_id", booking.ID)
		return nil
	}

	payout := payments.CoachPayoutCents(booking.AmountCents, s.cfg.Payments.PlatformFeePercent)
	if payout <= 0 {
		return nil
	}

	err = s.gateway.Transfer(ctx, payments.TransferParams{
		AmountCents:          payout,
		Currency:             booking.Currency,
		DestinationAccountID: coach.CoachProfile.StripeConnectAccountID,
		TransferGroup:        booking.ID,
	})
	if err != nil {
		return apperrors.PaymentGatewayError("Failed to transfer funds to the coach", err).
			WithDetail(payments.CaptureFailureDetail(err))
	}

	logger.CtxInfo(ctx, "coach payout transferred",
		"booking_id", booking.ID,
		"payout_cents", payout,
	)
	return nil
}

func (s *bookingService) cancel(ctx context.Context, db *gorm.DB, booking *models.Booking, byCoach bool) error {
	wasConfirmed := booking.Status == models.BookingStatusConfirmed

	s.releaseHold(ctx, booking)

	now := time.Now()
	booking.Status = models.BookingStatusCancelled
	booking.CancelledAt = &now
	if err := s.bookingRepo.Update(db, booking); err != nil {
		return apperrors.InternalError(err)
	}

	// Подтвержденная бронь держала слот, возвращаем его в продажу
	if wasConfirmed {
		if err := s.availRepo.UpdateSlotStatus(db, booking.SlotID, models.SlotStatusAvailable); err != nil {
			logger.CtxWithError(ctx, "failed to release slot after cancellation", err, "slot_id", booking.SlotID)
		}
	}

	s.dispatcher.BookingCancelled(ctx, s.toEvent(booking), byCoach)
	logger.CtxInfo(ctx, "booking cancelled", "booking_id", booking.ID, "by_coach", byCoach)
	return nil
}

// releaseHold снимает холд best-effort: отказ провайдера не блокирует
// отмену, холд истечет сам через срок авторизации. Незавершенный интент
// закрывается у провайдера даже после неудачной авторизации.
func (s *bookingService) releaseHold(ctx context.Context, booking *models.Booking) {
	if booking.PaymentIntentID == "" {
		return
	}
	// Захваченный платеж отменить нельзя, уже отмененный - незачем
	switch booking.PaymentStatus {
	case models.PaymentStatusSucceeded, models.PaymentStatusCanceled:
		return
	}

	if err := s.gateway.CancelHold(ctx, booking.PaymentIntentID); err != nil {
		logger.CtxWithError(ctx, "failed to cancel payment hold", err, "booking_id", booking.ID)
	}
	booking.PaymentStatus = models.PaymentStatusCanceled
}

// CancelActiveForSlot отменяет все живые брони слота с возвратом холдов
// и уведомлением атлетов. Вызывается при удалении слота или правила.
func (s *bookingService) CancelActiveForSlot(ctx context.Context, db *gorm.DB, slotID string) error {
	bookings, err := s.bookingRepo.FindActiveBySlot(db, slotID)
	if err != nil {
		return apperrors.InternalError(err)
	}

	for i := range bookings {
		booking := &bookings[i]

		s.releaseHold(ctx, booking)

		now := time.Now()
		booking.Status = models.BookingStatusCancelled
		booking.CancelledAt = &now
		if err := s.bookingRepo.Update(db, booking); err != nil {
			return apperrors.InternalError(err)
		}

		s.dispatcher.SlotCancelled(ctx, s.toEvent(booking))
	}

	if len(bookings) > 0 {
		logger.CtxInfo(ctx, "cancelled bookings for removed slot", "slot_id", slotID, "count", len(bookings))
	}
	return nil
}

func (s *bookingService) CreateReview(ctx context.Context, db *gorm.DB, userID, bookingID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	booking, err := s.bookingRepo.FindByIDWithRelations(db, bookingID)
	if err != nil {
		if errors.Is(err, repositories.ErrBookingNotFound) {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if booking.AthleteID != userID {
		return nil, apperrors.NewForbiddenError("Only the athlete can review this booking")
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, apperrors.ErrInvalidOperation("review", "Only completed bookings can be reviewed")
	}

	review := &models.Review{
		BookingID: booking.ID,
		AthleteID: booking.AthleteID,
		CoachID:   booking.CoachID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.reviewRepo.Create(db, review); err != nil {
		if errors.Is(err, repositories.ErrReviewAlreadyExists) {
			return nil, apperrors.ErrReviewExists
		}
		return nil, apperrors.InternalError(err)
	}

	review.Athlete = booking.Athlete
	return toReviewResponse(review), nil
}

// --- Вспомогательные ---

func (s *bookingService) loadAuthorized(db *gorm.DB, userID, bookingID string) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByIDWithRelations(db, bookingID)
	if err != nil {
		if errors.Is(err, repositories.ErrBookingNotFound) {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if booking.AthleteID != userID && booking.CoachID != userID {
		return nil, apperrors.NewForbiddenError("You are not a party of this booking")
	}
	return booking, nil
}

func (s *bookingService) toEvent(booking *models.Booking) notifications.BookingEvent {
	return notifications.BookingEvent{
		BookingID:       booking.ID,
		AthleteName:     booking.Athlete.Name,
		AthleteEmail:    booking.Athlete.Email,
		CoachName:       booking.Coach.Name,
		CoachEmail:      booking.Coach.Email,
		Message:         booking.Message,
		StartTime:       booking.Slot.StartTime,
		DurationMinutes: booking.Slot.DurationMinutes,
		AmountCents:     booking.AmountCents,
	}
}

func (s *bookingService) toBookingResponse(booking *models.Booking) *dto.BookingResponse {
	return &dto.BookingResponse{
		ID:            booking.ID,
		Status:        string(booking.Status),
		PaymentStatus: string(booking.PaymentStatus),
		AmountCents:   booking.AmountCents,
		Currency:      booking.Currency,
		Message:       booking.Message,
		CreatedAt:     booking.CreatedAt,
		CompletedAt:   booking.CompletedAt,
		CancelledAt:   booking.CancelledAt,
	}
}

func (s *bookingService) toDetailedResponse(booking *models.Booking) *dto.BookingResponse {
	resp := s.toBookingResponse(booking)

	if booking.Slot.ID != "" {
		resp.Slot = toSlotResponse(&booking.Slot, 0)
	}
	if booking.Coach.ID != "" {
		resp.Coach = &dto.PartyInfo{ID: booking.Coach.ID, Name: booking.Coach.Name}
	}
	if booking.Athlete.ID != "" {
		resp.Athlete = &dto.PartyInfo{ID: booking.Athlete.ID, Name: booking.Athlete.Name}
	}
	if booking.Review != nil {
		resp.Review = toReviewResponse(booking.Review)
	}
	return resp
}
