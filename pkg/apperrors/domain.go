package apperrors

import "net/http"

// --- Фабрики доменных ошибок ---

// ErrNotFound создает 404 для ресурса домена
func ErrNotFound(domain, message string) *AppError {
	return New(CodeNotFound, domain, message, http.StatusNotFound)
}

// ErrAlreadyExists создает 409 для дубликата
func ErrAlreadyExists(domain, message string) *AppError {
	return New(CodeAlreadyExists, domain, message, http.StatusConflict)
}

// ErrConflict создает 409 с произвольным стабильным кодом
func ErrConflict(code ErrorCode, domain, message string) *AppError {
	return New(code, domain, message, http.StatusConflict)
}

// ErrInvalidOperation создает 400 для запрещенной операции
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus создает 400 для недопустимого перехода статуса
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// --- Предопределенные ошибки домена бронирований ---

var (
	ErrSlotNotFound    = ErrNotFound("availability", "Slot not found")
	ErrRuleNotFound    = ErrNotFound("availability", "Availability rule not found")
	ErrBookingNotFound = ErrNotFound("booking", "Booking not found")
	ErrCoachNotFound   = ErrNotFound("coach", "Coach not found")
	ErrUserNotFound    = ErrNotFound("user", "User not found")

	// Слот уже недоступен для записи
	ErrSlotUnavailable = ErrInvalidOperation("booking", "Slot is not available")

	// У атлета уже есть активная заявка на этот слот
	ErrPendingRequest = ErrConflict(CodePendingRequest, "booking", "You already have an active request for this slot")

	// Слот уже подтвержден за другим атлетом
	ErrSlotTaken = ErrConflict(CodeSlotTaken, "booking", "This slot has already been booked")

	// Отзыв можно оставить один раз
	ErrReviewExists = ErrConflict(CodeAlreadyExists, "review", "Review already submitted for this booking")
)

// --- Предопределенные ошибки домена платежей ---

var (
	// Платный коуч требует платежный метод при создании брони
	ErrPaymentMethodRequired = New(CodePaymentMethodRequired, "payment", "A payment method is required to book this coach", http.StatusBadRequest)

	// Захват невозможен: интент не в requires_capture и не succeeded
	ErrPaymentNotCapturable = New(CodePaymentNotCapturable, "payment", "Payment cannot be captured yet", http.StatusBadRequest)

	// Вебхуки не сконфигурированы
	ErrPaymentNotConfigured = New(CodePaymentNotConfigured, "payment", "Payment processing is not configured", http.StatusNotImplemented)
)

// PaymentGatewayError оборачивает отказ платежного провайдера в 502.
// Сырой текст провайдера не попадает в ответ, только в логи через Err.
func PaymentGatewayError(message string, err error) *AppError {
	return Wrap(err, CodePaymentFailed, "payment", message, http.StatusBadGateway)
}
