package models

import "time"

// AvailabilityRule - еженедельное правило. Слоты генерируются при создании
// правила с шагом 7 дней от FirstStart до EndDate включительно.
type AvailabilityRule struct {
	BaseModel
	CoachID string `gorm:"type:uuid;not null;index"`

	FirstStart      time.Time `gorm:"not null"`
	DurationMinutes int       `gorm:"not null"`
	EndDate         time.Time `gorm:"not null"`

	// Relations
	Slots []AvailabilitySlot `gorm:"foreignKey:RuleID"`
}

// AvailabilitySlot - конкретное окно времени коуча.
// RuleID nil для разовых слотов, созданных вручную.
type AvailabilitySlot struct {
	BaseModel
	CoachID string  `gorm:"type:uuid;not null;index"`
	RuleID  *string `gorm:"type:uuid;index"`

	StartTime       time.Time  `gorm:"not null;index"`
	DurationMinutes int        `gorm:"not null"`
	Status          SlotStatus `gorm:"type:varchar(20);default:'available'"`

	// Relations
	Bookings []Booking `gorm:"foreignKey:SlotID"`
}

// EndTime возвращает конец слота
func (s *AvailabilitySlot) EndTime() time.Time {
	return s.StartTime.Add(time.Duration(s.DurationMinutes) * time.Minute)
}
