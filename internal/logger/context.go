package logger

import (
	"context"
	"log/slog"
)

// Ключи для context
type contextKey string

const (
	requestIDKey     contextKey = "request_id"
	userIDKey        contextKey = "user_id"
	correlationIDKey contextKey = "correlation_id"
)

// ============================================
// Context operations
// ============================================

// WithRequestID добавляет request ID в context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithUserID добавляет user ID в context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// WithCorrelationID добавляет correlation ID в context
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// GetRequestID извлекает request ID из context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetUserID извлекает user ID из context
func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

// ============================================
// Context-aware логирование
// ============================================

// FromContext создает логгер с полями из context
// Автоматически добавляет request_id, user_id, correlation_id если есть в контексте
func FromContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()

	// Добавляем все доступные поля из контекста
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}

	if userID := GetUserID(ctx); userID != "" {
		fields = append(fields, "user_id", userID)
	}

	if correlationID, ok := ctx.Value(correlationIDKey).(string); ok && correlationID != "" {
		fields = append(fields, "correlation_id", correlationID)
	}

	if len(fields) > 0 {
		logger = logger.With(fields...)
	}

	return logger
}

// ============================================
// Convenience функции с context
// ============================================

// CtxDebug логирует debug с контекстом
func CtxDebug(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Debug(msg, args...)
}

// CtxInfo логирует info с контекстом
func CtxInfo(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Info(msg, args...)
}

// CtxWarn логирует warning с контекстом
func CtxWarn(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Warn(msg, args...)
}

// CtxError логирует error с контекстом
func CtxError(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Error(msg, args...)
}

// CtxWithError логирует error с error объектом
func CtxWithError(ctx context.Context, msg string, err error, args ...any) {
	fields := append([]any{"error", err.Error()}, args...)
	FromContext(ctx).Error(msg, fields...)
}
