package dto

import "time"

// CreateBookingRequest - заявка атлета на слот
type CreateBookingRequest struct {
	SlotID  string `json:"slotId" validate:"required,uuid"`
	CoachID string `json:"coachId" validate:"required,uuid"`

	// Обязателен для платных коучей
	PaymentMethodID string `json:"paymentMethodId" validate:"omitempty"`

	// Сообщение коучу, попадает в письмо-уведомление
	Message string `json:"message" validate:"omitempty,max=2000"`
}

// UpdateBookingRequest - смена статуса брони
type UpdateBookingRequest struct {
	Status string `json:"status" validate:"required,is-booking-status"`
}

// CreateReviewRequest - отзыв после завершенной сессии
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

// PartyInfo - краткая карточка второй стороны брони
type PartyInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// BookingResponse - бронь в ответах API
type BookingResponse struct {
	ID            string     `json:"id"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"paymentStatus"`
	AmountCents   int64      `json:"amountCents"`
	Currency      string     `json:"currency"`
	Message       string     `json:"message,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CancelledAt   *time.Time `json:"cancelledAt,omitempty"`

	Slot    *SlotResponse   `json:"slot,omitempty"`
	Coach   *PartyInfo      `json:"coach,omitempty"`
	Athlete *PartyInfo      `json:"athlete,omitempty"`
	Review  *ReviewResponse `json:"review,omitempty"`

	// Заполняются только когда провайдер требует действий от клиента
	RequiresAction bool   `json:"requiresAction,omitempty"`
	ClientSecret   string `json:"clientSecret,omitempty"`
}

// BookingListResponse - брони пользователя с обеих сторон
type BookingListResponse struct {
	AsAthlete []*BookingResponse `json:"asAthlete"`
	AsCoach   []*BookingResponse `json:"asCoach"`
}
