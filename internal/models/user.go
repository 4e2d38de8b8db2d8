package models

type User struct {
	BaseModel
	Email        string   `gorm:"uniqueIndex;not null"`
	PasswordHash string   `gorm:"not null"`
	Name         string   `gorm:"not null"`
	Role         UserRole `gorm:"type:varchar(20)"`

	// ID клиента у платежного провайдера, создается лениво при первой платной брони
	StripeCustomerID string `gorm:"index"`

	// Relations
	CoachProfile *CoachProfile `gorm:"foreignKey:UserID"`
}
