package notifications

import (
	"context"
	"time"
)

// BookingEvent - данные брони для писем. Собирается сервисом из
// загруженных связей, диспетчер в базу не ходит.
type BookingEvent struct {
	BookingID       string
	AthleteName     string
	AthleteEmail    string
	CoachName       string
	CoachEmail      string
	Message         string
	StartTime       time.Time
	DurationMinutes int
	AmountCents     int64
}

// Dispatcher рассылает уведомления о событиях бронирования.
// Отправка fire-and-forget: ошибки логируются и не влияют на запрос.
type Dispatcher interface {
	BookingRequested(ctx context.Context, event BookingEvent)
	BookingConfirmed(ctx context.Context, event BookingEvent)
	BookingCancelled(ctx context.Context, event BookingEvent, cancelledByCoach bool)
	BookingCompleted(ctx context.Context, event BookingEvent)
	SlotCancelled(ctx context.Context, event BookingEvent)
}

// NoopDispatcher используется в тестах и когда рассылка выключена
type NoopDispatcher struct{}

func NewNoopDispatcher() *NoopDispatcher {
	return &NoopDispatcher{}
}

func (d *NoopDispatcher) BookingRequested(ctx context.Context, event BookingEvent) {}
func (d *NoopDispatcher) BookingConfirmed(ctx context.Context, event BookingEvent) {}
func (d *NoopDispatcher) BookingCancelled(ctx context.Context, event BookingEvent, cancelledByCoach bool) {
}
func (d *NoopDispatcher) BookingCompleted(ctx context.Context, event BookingEvent) {}
func (d *NoopDispatcher) SlotCancelled(ctx context.Context, event BookingEvent)    {}
