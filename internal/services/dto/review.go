package dto

import "time"

// ReviewResponse - отзыв в ответах API
type ReviewResponse struct {
	ID          string    `json:"id"`
	BookingID   string    `json:"bookingId"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	AthleteName string    `json:"athleteName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
