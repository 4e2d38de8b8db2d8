package models

type Review struct {
	BaseModel
	BookingID string `gorm:"type:uuid;uniqueIndex;not null"`
	AthleteID string `gorm:"type:uuid;not null;index"`
	CoachID   string `gorm:"type:uuid;not null;index"`

	Rating  int    `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment string `gorm:"type:text"`

	// Relations
	Booking Booking `gorm:"foreignKey:BookingID"`
	Athlete User    `gorm:"foreignKey:AthleteID"`
}
