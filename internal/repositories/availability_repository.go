package repositories

import (
	"errors"
	"time"

	"apexsports_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSlotNotFound = errors.New("availability slot not found")
	ErrRuleNotFound = errors.New("availability rule not found")
)

type AvailabilityRepository interface {
	CreateRule(db *gorm.DB, rule *models.AvailabilityRule, slots []models.AvailabilitySlot) error
	CreateSlot(db *gorm.DB, slot *models.AvailabilitySlot) error
	FindRuleByID(db *gorm.DB, id string) (*models.AvailabilityRule, error)
	FindSlotByID(db *gorm.DB, id string) (*models.AvailabilitySlot, error)
	FindSlotByIDForUpdate(db *gorm.DB, id string) (*models.AvailabilitySlot, error)
	FindRulesByCoach(db *gorm.DB, coachID string) ([]models.AvailabilityRule, error)
	FindOneOffSlotsByCoach(db *gorm.DB, coachID string) ([]models.AvailabilitySlot, error)
	FindUpcomingOpenSlots(db *gorm.DB, coachID string, from time.Time) ([]models.AvailabilitySlot, error)
	FindSlotsByRule(db *gorm.DB, ruleID string) ([]models.AvailabilitySlot, error)
	UpdateSlotStatus(db *gorm.DB, slotID string, status models.SlotStatus) error
	DeleteRule(db *gorm.DB, ruleID string) error
	DeleteSlot(db *gorm.DB, slotID string) error
	DeleteSlotsByRule(db *gorm.DB, ruleID string) error
}

type AvailabilityRepositoryImpl struct {
}

func NewAvailabilityRepository() AvailabilityRepository {
	return &AvailabilityRepositoryImpl{}
}

// CreateRule сохраняет правило вместе со сгенерированными слотами атомарно
func (r *AvailabilityRepositoryImpl) CreateRule(db *gorm.DB, rule *models.AvailabilityRule, slots []models.AvailabilitySlot) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rule).Error; err != nil {
			return err
		}
		for i := range slots {
			slots[i].RuleID = &rule.ID
			if err := tx.Create(&slots[i]).Error; err != nil {
				return err
			}
		}
		rule.Slots = slots
		return nil
	})
}

func (r *AvailabilityRepositoryImpl) CreateSlot(db *gorm.DB, slot *models.AvailabilitySlot) error {
	return db.Create(slot).Error
}

func (r *AvailabilityRepositoryImpl) FindRuleByID(db *gorm.DB, id string) (*models.AvailabilityRule, error) {
	var rule models.AvailabilityRule
	err := db.First(&rule, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return &rule, nil
}

func (r *AvailabilityRepositoryImpl) FindSlotByID(db *gorm.DB, id string) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	err := db.First(&slot, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &slot, nil
}

// FindSlotByIDForUpdate читает слот под блокировкой строки.
// Вызывается только внутри транзакции.
func (r *AvailabilityRepositoryImpl) FindSlotByIDForUpdate(db *gorm.DB, id string) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&slot, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &slot, nil
}

func (r *AvailabilityRepositoryImpl) FindRulesByCoach(db *gorm.DB, coachID string) ([]models.AvailabilityRule, error) {
	var rules []models.AvailabilityRule
	err := db.Preload("Slots", func(db *gorm.DB) *gorm.DB {
		return db.Order("start_time ASC")
	}).Where("coach_id = ?", coachID).Order("first_start ASC").Find(&rules).Error
	return rules, err
}

func (r *AvailabilityRepositoryImpl) FindOneOffSlotsByCoach(db *gorm.DB, coachID string) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	err := db.Where("coach_id = ? AND rule_id IS NULL", coachID).
		Order("start_time ASC").Find(&slots).Error
	return slots, err
}

// FindUpcomingOpenSlots возвращает будущие слоты коуча без подтвержденной
// или завершенной брони. Используется на публичной странице коуча.
func (r *AvailabilityRepositoryImpl) FindUpcomingOpenSlots(db *gorm.DB, coachID string, from time.Time) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	err := db.Where("coach_id = ? AND start_time > ? AND status = ?", coachID, from, models.SlotStatusAvailable).
		Where("id NOT IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Booking{}).
			Select("slot_id").
			Where("status IN ?", []models.BookingStatus{models.BookingStatusConfirmed, models.BookingStatusCompleted})).
		Order("start_time ASC").
		Find(&slots).Error
	return slots, err
}

func (r *AvailabilityRepositoryImpl) FindSlotsByRule(db *gorm.DB, ruleID string) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	err := db.Where("rule_id = ?", ruleID).Order("start_time ASC").Find(&slots).Error
	return slots, err
}

func (r *AvailabilityRepositoryImpl) UpdateSlotStatus(db *gorm.DB, slotID string, status models.SlotStatus) error {
	result := db.Model(&models.AvailabilitySlot{}).Where("id = ?", slotID).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *AvailabilityRepositoryImpl) DeleteRule(db *gorm.DB, ruleID string) error {
	result := db.Where("id = ?", ruleID).Delete(&models.AvailabilityRule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *AvailabilityRepositoryImpl) DeleteSlot(db *gorm.DB, slotID string) error {
	result := db.Where("id = ?", slotID).Delete(&models.AvailabilitySlot{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *AvailabilityRepositoryImpl) DeleteSlotsByRule(db *gorm.DB, ruleID string) error {
	return db.Where("rule_id = ?", ruleID).Delete(&models.AvailabilitySlot{}).Error
}
