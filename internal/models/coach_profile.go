package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type CoachProfile struct {
	BaseModel
	UserID string `gorm:"type:uuid;uniqueIndex;not null"`

	// Публичное имя. Пустое означает показывать имя из User
	DisplayName string `gorm:"type:varchar(100)"`
	Phone       string `gorm:"type:varchar(20)"`

	Bio           string                     `gorm:"type:text"`
	Sports        datatypes.JSONSlice[string] `gorm:"not null"`
	ServiceCities datatypes.JSONSlice[string] `gorm:"not null"`

	// Обложка профиля, первая фотография из галереи
	AvatarURL string
	Verified  bool `gorm:"default:false"`

	// Почасовая ставка в долларах. Ноль означает бесплатного коуча.
	HourlyRate decimal.Decimal `gorm:"type:numeric(10,2);default:0"`

	// Stripe Connect
	StripeConnectAccountID   string `gorm:"index"`
	ConnectOnboardingComplete bool  `gorm:"default:false"`

	// Relations
	User   User         `gorm:"foreignKey:UserID"`
	Photos []CoachPhoto `gorm:"foreignKey:CoachProfileID"`
}

type CoachPhoto struct {
	BaseModel
	CoachProfileID string `gorm:"type:uuid;not null;index"`
	URL            string `gorm:"not null"`
	Position       int    `gorm:"default:0"`
}
