package repositories

import (
	"errors"

	"apexsports_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrCoachProfileNotFound      = errors.New("coach profile not found")
	ErrCoachProfileAlreadyExists = errors.New("coach profile already exists")
)

// CoachFilter - фильтры публичного поиска коучей
type CoachFilter struct {
	Sport    string
	City     string
	Search   string
	Page     int
	PageSize int
}

type CoachProfileRepository interface {
	Create(db *gorm.DB, profile *models.CoachProfile) error
	Update(db *gorm.DB, profile *models.CoachProfile) error
	FindByID(db *gorm.DB, id string) (*models.CoachProfile, error)
	FindByUserID(db *gorm.DB, userID string) (*models.CoachProfile, error)
	FindWithFilter(db *gorm.DB, criteria CoachFilter) ([]models.CoachProfile, int64, error)
	ReplacePhotos(db *gorm.DB, profileID string, urls []string) error
	UpdateConnectAccount(db *gorm.DB, profileID, accountID string, onboardingComplete bool) error
}

type CoachProfileRepositoryImpl struct {
}

func NewCoachProfileRepository() CoachProfileRepository {
	return &CoachProfileRepositoryImpl{}
}

func (r *CoachProfileRepositoryImpl) Create(db *gorm.DB, profile *models.CoachProfile) error {
	var existing models.CoachProfile
	if err := db.Where("user_id = ?", profile.UserID).First(&existing).Error; err == nil {
		return ErrCoachProfileAlreadyExists
	}
	return db.Create(profile).Error
}

func (r *CoachProfileRepositoryImpl) Update(db *gorm.DB, profile *models.CoachProfile) error {
	result := db.Model(profile).Updates(map[string]interface{}{
		"bio":            profile.Bio,
		"sports":         profile.Sports,
		"service_cities": profile.ServiceCities,
		"hourly_rate":    profile.HourlyRate,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCoachProfileNotFound
	}
	return nil
}

func (r *CoachProfileRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.CoachProfile, error) {
	var profile models.CoachProfile
	err := db.Preload("User").Preload("Photos", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&profile, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCoachProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *CoachProfileRepositoryImpl) FindByUserID(db *gorm.DB, userID string) (*models.CoachProfile, error) {
	var profile models.CoachProfile
	err := db.Preload("Photos", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCoachProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *CoachProfileRepositoryImpl) FindWithFilter(db *gorm.DB, criteria CoachFilter) ([]models.CoachProfile, int64, error) {
	var profiles []models.CoachProfile
	query := db.Model(&models.CoachProfile{})

	if criteria.Sport != "" {
		query = query.Where(datatypes.JSONArrayQuery("sports").Contains(criteria.Sport))
	}
	if criteria.City != "" {
		query = query.Where(datatypes.JSONArrayQuery("service_cities").Contains(criteria.City))
	}
	if criteria.Search != "" {
		search := "%" + criteria.Search + "%"
		query = query.Joins("JOIN users ON users.id = coach_profiles.user_id").
			Where("users.name ILIKE ? OR coach_profiles.bio ILIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := criteria.PageSize
	offset := (criteria.Page - 1) * criteria.PageSize

	err := query.Preload("User").Preload("Photos", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Order("coach_profiles.created_at DESC").Limit(limit).Offset(offset).Find(&profiles).Error

	return profiles, total, err
}

// ReplacePhotos перезаписывает набор фотографий профиля целиком
func (r *CoachProfileRepositoryImpl) ReplacePhotos(db *gorm.DB, profileID string, urls []string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("coach_profile_id = ?", profileID).Delete(&models.CoachPhoto{}).Error; err != nil {
			return err
		}
		for i, url := range urls {
			photo := models.CoachPhoto{
				CoachProfileID: profileID,
				URL:            url,
				Position:       i,
			}
			if err := tx.Create(&photo).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CoachProfileRepositoryImpl) UpdateConnectAccount(db *gorm.DB, profileID, accountID string, onboardingComplete bool) error {
	result := db.Model(&models.CoachProfile{}).Where("id = ?", profileID).Updates(map[string]interface{}{
		"stripe_connect_account_id":   accountID,
		"connect_onboarding_complete": onboardingComplete,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCoachProfileNotFound
	}
	return nil
}
