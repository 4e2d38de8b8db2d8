package repositories

import (
	"errors"

	"apexsports_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("review already exists for this booking")
)

// RatingStats - агрегат рейтинга коуча для публичных страниц
type RatingStats struct {
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int64   `json:"totalReviews"`
}

type ReviewRepository interface {
	Create(db *gorm.DB, review *models.Review) error
	FindByBooking(db *gorm.DB, bookingID string) (*models.Review, error)
	FindRecentByCoach(db *gorm.DB, coachID string, limit int) ([]models.Review, error)
	GetCoachRatingStats(db *gorm.DB, coachID string) (*RatingStats, error)
}

type ReviewRepositoryImpl struct {
}

func NewReviewRepository() ReviewRepository {
	return &ReviewRepositoryImpl{}
}

func (r *ReviewRepositoryImpl) Create(db *gorm.DB, review *models.Review) error {
	var existing models.Review
	if err := db.Where("booking_id = ?", review.BookingID).First(&existing).Error; err == nil {
		return ErrReviewAlreadyExists
	}
	return db.Create(review).Error
}

func (r *ReviewRepositoryImpl) FindByBooking(db *gorm.DB, bookingID string) (*models.Review, error) {
	var review models.Review
	err := db.First(&review, "booking_id = ?", bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) FindRecentByCoach(db *gorm.DB, coachID string, limit int) ([]models.Review, error) {
	var reviews []models.Review
	err := db.Preload("Athlete").
		Where("coach_id = ?", coachID).
		Order("created_at DESC").Limit(limit).Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepositoryImpl) GetCoachRatingStats(db *gorm.DB, coachID string) (*RatingStats, error) {
	var stats RatingStats

	if err := db.Model(&models.Review{}).Where("coach_id = ?", coachID).Count(&stats.TotalReviews).Error; err != nil {
		return nil, err
	}
	if stats.TotalReviews == 0 {
		return &stats, nil
	}

	err := db.Model(&models.Review{}).
		Where("coach_id = ?", coachID).
		Select("AVG(rating)").Scan(&stats.AverageRating).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
