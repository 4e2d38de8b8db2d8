package services

import (
	"context"
	"errors"
	"math"
	"time"

	"apexsports_backend/internal/config"
	"apexsports_backend/internal/logger"
	"apexsports_backend/internal/models"
	"apexsports_backend/internal/payments"
	"apexsports_backend/internal/repositories"
	"apexsports_backend/internal/services/dto"
	"apexsports_backend/pkg/apperrors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CoachService interface {
	SaveProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.SaveCoachProfileRequest) (*dto.CoachResponse, error)
	GetMyProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.CoachResponse, error)
	Search(ctx context.Context, db *gorm.DB, criteria dto.CoachSearchCriteria) (*dto.CoachListResponse, error)
	GetDetail(ctx context.Context, db *gorm.DB, profileID string) (*dto.CoachDetailResponse, error)
	CreateConnectAccountLink(ctx context.Context, db *gorm.DB, userID string) (*dto.ConnectLinkResponse, error)
	GetConnectStatus(ctx context.Context, db *gorm.DB, userID string) (*dto.ConnectStatusResponse, error)
}

type coachService struct {
	coachRepo  repositories.CoachProfileRepository
	userRepo   repositories.UserRepository
	availRepo  repositories.AvailabilityRepository
	reviewRepo repositories.ReviewRepository
	gateway    payments.Gateway
	cfg        *config.Config
}

func NewCoachService(
	coachRepo repositories.CoachProfileRepository,
	userRepo repositories.UserRepository,
	availRepo repositories.AvailabilityRepository,
	reviewRepo repositories.ReviewRepository,
	gateway payments.Gateway,
	cfg *config.Config,
) CoachService {
	return &coachService{
		coachRepo:  coachRepo,
		userRepo:   userRepo,
		availRepo:  availRepo,
		reviewRepo: reviewRepo,
		gateway:    gateway,
		cfg:        cfg,
	}
}

// SaveProfile создает профиль при первом вызове и обновляет при повторных
func (s *coachService) SaveProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.SaveCoachProfileRequest) (*dto.CoachResponse, error) {
	rate := decimal.Zero
	if req.HourlyRate != "" {
		parsed, err := decimal.NewFromString(req.HourlyRate)
		if err != nil || parsed.IsNegative() {
			return nil, apperrors.NewBadRequestError("hourlyRate must be a non-negative decimal number")
		}
		rate = parsed
	}

	profile, err := s.coachRepo.FindByUserID(db, userID)
	if err != nil && !errors.Is(err, repositories.ErrCoachProfileNotFound) {
		return nil, apperrors.InternalError(err)
	}

	if profile == nil {
		profile = &models.CoachProfile{
			UserID:        userID,
			DisplayName:   req.DisplayName,
			Phone:         req.Phone,
			Bio:           req.Bio,
			Sports:        req.Sports,
			ServiceCities: req.ServiceCities,
			HourlyRate:    rate,
		}
		if len(req.PhotoURLs) > 0 {
			profile.AvatarURL = req.PhotoURLs[0]
		}
		if err := s.coachRepo.Create(db, profile); err != nil {
			return nil, apperrors.InternalError(err)
		}
		logger.CtxInfo(ctx, "coach profile created", "profile_id", profile.ID)
	} else {
		profile.DisplayName = req.DisplayName
		profile.Phone = req.Phone
		profile.Bio = req.Bio
		profile.Sports = req.Sports
		profile.ServiceCities = req.ServiceCities
		profile.HourlyRate = rate
		if req.PhotoURLs != nil {
			// Аватар следует за галереей
			profile.AvatarURL = ""
			if len(req.PhotoURLs) > 0 {
				profile.AvatarURL = req.PhotoURLs[0]
			}
		}
		if err := s.coachRepo.Update(db, profile); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	if req.PhotoURLs != nil {
		if err := s.coachRepo.ReplacePhotos(db, profile.ID, req.PhotoURLs); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	return s.GetMyProfile(ctx, db, userID)
}

func (s *coachService) GetMyProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.CoachResponse, error) {
	profile, err := s.coachRepo.FindByUserID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrCoachProfileNotFound) {
			return nil, apperrors.ErrCoachNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	stats, err := s.reviewRepo.GetCoachRatingStats(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := s.toCoachResponse(profile, user.Name, stats)
	complete := profile.ConnectOnboardingComplete
	resp.ConnectOnboardingComplete = &complete
	return resp, nil
}

func (s *coachService) Search(ctx context.Context, db *gorm.DB, criteria dto.CoachSearchCriteria) (*dto.CoachListResponse, error) {
	if criteria.Page <= 0 {
		criteria.Page = 1
	}
	if criteria.PageSize <= 0 {
		criteria.PageSize = 20
	}

	profiles, total, err := s.coachRepo.FindWithFilter(db, repositories.CoachFilter{
		Sport:    criteria.Sport,
		City:     criteria.City,
		Search:   criteria.Search,
		Page:     criteria.Page,
		PageSize: criteria.PageSize,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	coaches := make([]*dto.CoachResponse, 0, len(profiles))
	for i := range profiles {
		stats, err := s.reviewRepo.GetCoachRatingStats(db, profiles[i].UserID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		coaches = append(coaches, s.toCoachResponse(&profiles[i], profiles[i].User.Name, stats))
	}

	return &dto.CoachListResponse{
		Coaches:  coaches,
		Total:    total,
		Page:     criteria.Page,
		PageSize: criteria.PageSize,
	}, nil
}

func (s *coachService) GetDetail(ctx context.Context, db *gorm.DB, profileID string) (*dto.CoachDetailResponse, error) {
	profile, err := s.coachRepo.FindByID(db, profileID)
	if err != nil {
		if errors.Is(err, repositories.ErrCoachProfileNotFound) {
			return nil, apperrors.ErrCoachNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	stats, err := s.reviewRepo.GetCoachRatingStats(db, profile.UserID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	slots, err := s.availRepo.FindUpcomingOpenSlots(db, profile.UserID, time.Now())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	reviews, err := s.reviewRepo.FindRecentByCoach(db, profile.UserID, 10)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	slotResponses := make([]*dto.SlotResponse, 0, len(slots))
	for i := range slots {
		slotResponses = append(slotResponses, toSlotResponse(&slots[i], 0))
	}

	reviewResponses := make([]*dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		reviewResponses = append(reviewResponses, toReviewResponse(&reviews[i]))
	}

	return &dto.CoachDetailResponse{
		Coach:         s.toCoachResponse(profile, profile.User.Name, stats),
		UpcomingSlots: slotResponses,
		Reviews:       reviewResponses,
	}, nil
}

// CreateConnectAccountLink создает connect-аккаунт при первом вызове
// и возвращает ссылку онбординга
func (s *coachService) CreateConnectAccountLink(ctx context.Context, db *gorm.DB, userID string) (*dto.ConnectLinkResponse, error) {
	if !s.cfg.StripeEnabled() {
		return nil, apperrors.ErrPaymentNotConfigured
	}

	profile, err := s.coachRepo.FindByUserID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrCoachProfileNotFound) {
			return nil, apperrors.ErrCoachNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	accountID := profile.StripeConnectAccountID
	if accountID == "" {
		accountID, err = s.gateway.CreateConnectAccount(ctx, user.Email)
		if err != nil {
			return nil, apperrors.PaymentGatewayError("Failed to create payout account", err)
		}
		if err := s.coachRepo.UpdateConnectAccount(db, profile.ID, accountID, false); err != nil {
			return nil, apperrors.InternalError(err)
		}
		logger.CtxInfo(ctx, "connect account created", "profile_id", profile.ID)
	}

	url, err := s.gateway.CreateAccountLink(ctx, accountID,
		s.cfg.Payments.ConnectRefreshURL, s.cfg.Payments.ConnectReturnURL)
	if err != nil {
		return nil, apperrors.PaymentGatewayError("Failed to create onboarding link", err)
	}

	return &dto.ConnectLinkResponse{URL: url}, nil
}

// GetConnectStatus синхронизирует флаг онбординга с провайдером
func (s *coachService) GetConnectStatus(ctx context.Context, db *gorm.DB, userID string) (*dto.ConnectStatusResponse, error) {
	profile, err := s.coachRepo.FindByUserID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrCoachProfileNotFound) {
			return nil, apperrors.ErrCoachNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if profile.StripeConnectAccountID == "" {
		return &dto.ConnectStatusResponse{}, nil
	}

	status, err := s.gateway.GetAccountStatus(ctx, profile.StripeConnectAccountID)
	if err != nil {
		return nil, apperrors.PaymentGatewayError("Failed to fetch payout account status", err)
	}

	complete := status.DetailsSubmitted && status.ChargesEnabled
	if complete != profile.ConnectOnboardingComplete {
		if err := s.coachRepo.UpdateConnectAccount(db, profile.ID, profile.StripeConnectAccountID, complete); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	return &dto.ConnectStatusResponse{
		HasAccount:         true,
		DetailsSubmitted:   status.DetailsSubmitted,
		ChargesEnabled:     status.ChargesEnabled,
		OnboardingComplete: complete,
	}, nil
}

func (s *coachService) toCoachResponse(profile *models.CoachProfile, name string, stats *repositories.RatingStats) *dto.CoachResponse {
	// Фотографии всегда отдаем заполненным списком, не null
	photoURLs := make([]string, 0, len(profile.Photos))
	for _, photo := range profile.Photos {
		photoURLs = append(photoURLs, photo.URL)
	}

	avg := 0.0
	if stats != nil && stats.TotalReviews > 0 {
		avg = math.Round(stats.AverageRating*10) / 10
	}
	var total int64
	if stats != nil {
		total = stats.TotalReviews
	}

	displayName := profile.DisplayName
	if displayName == "" {
		displayName = name
	}

	return &dto.CoachResponse{
		ID:            profile.ID,
		UserID:        profile.UserID,
		Name:          displayName,
		Bio:           profile.Bio,
		Sports:        profile.Sports,
		ServiceCities: profile.ServiceCities,
		HourlyRate:    profile.HourlyRate.StringFixed(2),
		PhotoURLs:     photoURLs,
		AvatarURL:     profile.AvatarURL,
		Verified:      profile.Verified,
		AverageRating: avg,
		ReviewCount:   total,
	}
}

func toSlotResponse(slot *models.AvailabilitySlot, bookingCount int64) *dto.SlotResponse {
	return &dto.SlotResponse{
		ID:              slot.ID,
		RuleID:          slot.RuleID,
		StartTime:       slot.StartTime,
		DurationMinutes: slot.DurationMinutes,
		Status:          string(slot.Status),
		BookingCount:    bookingCount,
	}
}

func toReviewResponse(review *models.Review) *dto.ReviewResponse {
	return &dto.ReviewResponse{
		ID:          review.ID,
		BookingID:   review.BookingID,
		Rating:      review.Rating,
		Comment:     review.Comment,
		AthleteName: review.Athlete.Name,
		CreatedAt:   review.CreatedAt,
	}
}
