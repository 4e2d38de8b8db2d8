package apperrors

// ErrorCode - тип для машинно-стабильных кодов ошибок
type ErrorCode string

// Общие, не-доменные коды ошибок
const (
	// Системные и неизвестные ошибки
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Общие ошибки бизнес-логики
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	CodeInvalidOperation ErrorCode = "INVALID_OPERATION"

	// Аутентификация и авторизация
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
)

// Доменные коды. Фронтенд ветвится по ним, поэтому строки стабильны.
const (
	// Бронирования
	CodePendingRequest ErrorCode = "PENDING_REQUEST"
	CodeSlotTaken      ErrorCode = "SLOT_ALREADY_BOOKED"

	// Платежи
	CodePaymentMethodRequired ErrorCode = "PAYMENT_METHOD_REQUIRED"
	CodePaymentFailed         ErrorCode = "PAYMENT_FAILED"
	CodePaymentNotCapturable  ErrorCode = "PAYMENT_NOT_CAPTURABLE"
	CodePaymentNotConfigured  ErrorCode = "PAYMENT_NOT_CONFIGURED"
)
