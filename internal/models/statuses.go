package models

type UserRole string
type BookingStatus string
type PaymentStatus string
type SlotStatus string

const (
	UserRoleCoach   UserRole = "coach"
	UserRoleAthlete UserRole = "athlete"

	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"

	// Жизненный цикл платежа. none - бесплатный коуч, платеж не создавался.
	PaymentStatusNone                 PaymentStatus = "none"
	PaymentStatusPendingAuthorization PaymentStatus = "pending_authorization"
	PaymentStatusAuthorized           PaymentStatus = "authorized"
	PaymentStatusSucceeded            PaymentStatus = "succeeded"
	PaymentStatusFailed               PaymentStatus = "failed"
	PaymentStatusCanceled             PaymentStatus = "canceled"

	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
)

// ValidBookingTransition - таблица допустимых переходов статуса брони.
// Пустой срез означает терминальный статус.
var ValidBookingTransition = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted: {},
	BookingStatusCancelled: {},
}

// CanTransition проверяет допустимость перехода from -> to
func CanTransition(from, to BookingStatus) bool {
	for _, allowed := range ValidBookingTransition[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
