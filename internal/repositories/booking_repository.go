package repositories

import (
	"errors"
	"time"

	"apexsports_backend/internal/models"

	"gorm.io/gorm"
)

var ErrBookingNotFound = errors.New("booking not found")

type BookingRepository interface {
	// InTransaction выполняет fn в транзакции БД
	InTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) error

	Create(db *gorm.DB, booking *models.Booking) error
	FindByID(db *gorm.DB, id string) (*models.Booking, error)
	FindByIDWithRelations(db *gorm.DB, id string) (*models.Booking, error)
	FindByAthlete(db *gorm.DB, athleteID string) ([]models.Booking, error)
	FindByCoach(db *gorm.DB, coachID string) ([]models.Booking, error)
	FindActiveBySlot(db *gorm.DB, slotID string) ([]models.Booking, error)
	ActiveExistsForSlotAndAthlete(db *gorm.DB, slotID, athleteID string) (bool, error)
	ConfirmedExistsForSlot(db *gorm.DB, slotID string) (bool, error)
	FindByPaymentIntent(db *gorm.DB, bookingID, intentID string) (*models.Booking, error)
	Update(db *gorm.DB, booking *models.Booking) error
	UpdatePaymentStatus(db *gorm.DB, bookingID string, status models.PaymentStatus) error
	CountActiveBySlotIDs(db *gorm.DB, slotIDs []string) (map[string]int64, error)
}

type BookingRepositoryImpl struct {
}

func NewBookingRepository() BookingRepository {
	return &BookingRepositoryImpl{}
}

func (r *BookingRepositoryImpl) InTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Transaction(fn)
}

func (r *BookingRepositoryImpl) Create(db *gorm.DB, booking *models.Booking) error {
	return db.Create(booking).Error
}

func (r *BookingRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Booking, error) {
	var booking models.Booking
	err := db.First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepositoryImpl) FindByIDWithRelations(db *gorm.DB, id string) (*models.Booking, error) {
	var booking models.Booking
	err := db.Preload("Athlete").Preload("Coach").Preload("Slot").Preload("Review").
		First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepositoryImpl) FindByAthlete(db *gorm.DB, athleteID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := db.Preload("Coach").Preload("Slot").Preload("Review").
		Where("athlete_id = ?", athleteID).
		Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepositoryImpl) FindByCoach(db *gorm.DB, coachID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := db.Preload("Athlete").Preload("Slot").Preload("Review").
		Where("coach_id = ?", coachID).
		Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}

// FindActiveBySlot возвращает неотмененные брони слота.
// Используется при каскадном удалении слота или правила.
func (r *BookingRepositoryImpl) FindActiveBySlot(db *gorm.DB, slotID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := db.Preload("Athlete").Preload("Slot").
		Where("slot_id = ? AND status != ?", slotID, models.BookingStatusCancelled).
		Find(&bookings).Error
	return bookings, err
}

// ActiveExistsForSlotAndAthlete проверяет, есть ли у атлета
// живая (pending или confirmed) заявка на слот
func (r *BookingRepositoryImpl) ActiveExistsForSlotAndAthlete(db *gorm.DB, slotID, athleteID string) (bool, error) {
	var count int64
	err := db.Model(&models.Booking{}).
		Where("slot_id = ? AND athlete_id = ? AND status IN ?",
			slotID, athleteID,
			[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Count(&count).Error
	return count > 0, err
}

func (r *BookingRepositoryImpl) ConfirmedExistsForSlot(db *gorm.DB, slotID string) (bool, error) {
	var count int64
	err := db.Model(&models.Booking{}).
		Where("slot_id = ? AND status = ?", slotID, models.BookingStatusConfirmed).
		Count(&count).Error
	return count > 0, err
}

// FindByPaymentIntent находит бронь по паре (id брони, id интента).
// Совпадение обоих обязательно, иначе вебхук чужого интента мог бы
// изменить не ту бронь.
func (r *BookingRepositoryImpl) FindByPaymentIntent(db *gorm.DB, bookingID, intentID string) (*models.Booking, error) {
	var booking models.Booking
	err := db.Where("id = ? AND payment_intent_id = ?", bookingID, intentID).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepositoryImpl) Update(db *gorm.DB, booking *models.Booking) error {
	result := db.Model(booking).Updates(map[string]interface{}{
		"status":            booking.Status,
		"payment_status":    booking.PaymentStatus,
		"payment_intent_id": booking.PaymentIntentID,
		"completed_at":      booking.CompletedAt,
		"cancelled_at":      booking.CancelledAt,
		"updated_at":        time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// UpdatePaymentStatus меняет только статус платежа. Из статуса succeeded
// выхода нет: запоздавший вебхук не должен откатывать захваченный платеж.
func (r *BookingRepositoryImpl) UpdatePaymentStatus(db *gorm.DB, bookingID string, status models.PaymentStatus) error {
	result := db.Model(&models.Booking{}).
		Where("id = ? AND payment_status != ?", bookingID, models.PaymentStatusSucceeded).
		Updates(map[string]interface{}{
			"payment_status": status,
			"updated_at":     time.Now(),
		})
	return result.Error
}

// CountActiveBySlotIDs считает живые брони по каждому слоту одним запросом
func (r *BookingRepositoryImpl) CountActiveBySlotIDs(db *gorm.DB, slotIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64)
	if len(slotIDs) == 0 {
		return counts, nil
	}

	type slotCount struct {
		SlotID string
		Count  int64
	}
	var rows []slotCount
	err := db.Model(&models.Booking{}).
		Select("slot_id, COUNT(*) as count").
		Where("slot_id IN ? AND status != ?", slotIDs, models.BookingStatusCancelled).
		Group("slot_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.SlotID] = row.Count
	}
	return counts, nil
}
