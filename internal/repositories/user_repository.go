package repositories

import (
	"errors"
	"time"

	"apexsports_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository interface {
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	Create(db *gorm.DB, user *models.User) error
	UpdateRole(db *gorm.DB, userID string, role models.UserRole) error
	UpdateStripeCustomerID(db *gorm.DB, userID, customerID string) error
}

type UserRepositoryImpl struct {
	// db передается в каждый метод, репозиторий не хранит состояния
}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.Preload("CoachProfile").First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.Preload("CoachProfile").First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	var existing models.User
	if err := db.Where("email = ?", user.Email).First(&existing).Error; err == nil {
		return ErrUserAlreadyExists
	}

	return db.Create(user).Error
}

func (r *UserRepositoryImpl) UpdateRole(db *gorm.DB, userID string, role models.UserRole) error {
	result := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"role":       role,
		"updated_at": time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) UpdateStripeCustomerID(db *gorm.DB, userID, customerID string) error {
	result := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"stripe_customer_id": customerID,
		"updated_at":         time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
