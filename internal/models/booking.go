package models

import "time"

type Booking struct {
	BaseModel
	AthleteID string `gorm:"type:uuid;not null;index"`
	CoachID   string `gorm:"type:uuid;not null;index"`
	SlotID    string `gorm:"type:uuid;not null;index"`

	Status        BookingStatus `gorm:"type:varchar(20);default:'pending';index"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(30);default:'none'"`

	// Сообщение атлета коучу при заявке, опционально
	Message string `gorm:"type:text"`

	// Сумма в минорных единицах валюты, фиксируется при создании брони
	AmountCents int64  `gorm:"default:0"`
	Currency    string `gorm:"type:varchar(3);default:'usd'"`

	PaymentIntentID string `gorm:"index"`

	CompletedAt *time.Time
	CancelledAt *time.Time

	// Relations
	Athlete User             `gorm:"foreignKey:AthleteID"`
	Coach   User             `gorm:"foreignKey:CoachID"`
	Slot    AvailabilitySlot `gorm:"foreignKey:SlotID"`
	Review  *Review          `gorm:"foreignKey:BookingID"`
}
