package notifications

import (
	"context"
	"fmt"
	"time"

	"apexsports_backend/internal/config"
	"apexsports_backend/internal/logger"

	"gopkg.in/gomail.v2"
)

// MailDispatcher шлет письма через SMTP.
// Каждое письмо уходит в отдельной горутине, запрос не ждет SMTP.
type MailDispatcher struct {
	cfg      *config.Config
	location *time.Location
}

func NewMailDispatcher(cfg *config.Config) *MailDispatcher {
	loc, err := time.LoadLocation(cfg.Notifications.Timezone)
	if err != nil {
		logger.Warn("invalid notifications timezone, falling back to UTC", "timezone", cfg.Notifications.Timezone)
		loc = time.UTC
	}
	return &MailDispatcher{cfg: cfg, location: loc}
}

func (d *MailDispatcher) BookingRequested(ctx context.Context, event BookingEvent) {
	subject := "New booking request"
	messageBlock := ""
	if event.Message != "" {
		messageBlock = fmt.Sprintf("<p>Message from %s: %s</p>", event.AthleteName, event.Message)
	}
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>%s requested a session on %s.</p>%s<p><a href=\"%s/dashboard\">Review the request</a></p>",
		event.CoachName, event.AthleteName, d.formatTime(event.StartTime), messageBlock, d.cfg.Notifications.AppURL,
	)
	d.send(ctx, event.CoachEmail, subject, body)
}

func (d *MailDispatcher) BookingConfirmed(ctx context.Context, event BookingEvent) {
	subject := "Your booking is confirmed"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>%s confirmed your session on %s.</p>",
		event.AthleteName, event.CoachName, d.formatTime(event.StartTime),
	)
	d.send(ctx, event.AthleteEmail, subject, body)
}

func (d *MailDispatcher) BookingCancelled(ctx context.Context, event BookingEvent, cancelledByCoach bool) {
	subject := "Booking cancelled"
	if cancelledByCoach {
		body := fmt.Sprintf(
			"<p>Hi %s,</p><p>%s cancelled your session on %s. Any payment hold has been released.</p>",
			event.AthleteName, event.CoachName, d.formatTime(event.StartTime),
		)
		d.send(ctx, event.AthleteEmail, subject, body)
		return
	}
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>%s cancelled the session on %s.</p>",
		event.CoachName, event.AthleteName, d.formatTime(event.StartTime),
	)
	d.send(ctx, event.CoachEmail, subject, body)
}

func (d *MailDispatcher) BookingCompleted(ctx context.Context, event BookingEvent) {
	subject := "How was your session?"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your session with %s is complete.</p><p><a href=\"%s/bookings/%s/review\">Leave a review</a></p>",
		event.AthleteName, event.CoachName, d.cfg.Notifications.AppURL, event.BookingID,
	)
	d.send(ctx, event.AthleteEmail, subject, body)
}

func (d *MailDispatcher) SlotCancelled(ctx context.Context, event BookingEvent) {
	subject := "Session time no longer available"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>%s removed the time slot for your session on %s. Your booking has been cancelled and any payment hold released.</p>",
		event.AthleteName, event.CoachName, d.formatTime(event.StartTime),
	)
	d.send(ctx, event.AthleteEmail, subject, body)
}

func (d *MailDispatcher) formatTime(t time.Time) string {
	return t.In(d.location).Format("Monday, Jan 2 at 3:04 PM MST")
}

// send отправляет письмо в фоне. Ошибка SMTP пишется в лог и не
// возвращается: уведомления не должны ронять бизнес-операцию.
func (d *MailDispatcher) send(ctx context.Context, to, subject, body string) {
	if !d.cfg.Notifications.SendEmails || to == "" {
		return
	}

	log := logger.FromContext(ctx)

	go func() {
		m := gomail.NewMessage()
		m.SetHeader("From", d.cfg.Email.FromEmail)
		m.SetHeader("To", to)
		m.SetHeader("Subject", subject)
		m.SetBody("text/html", body)

		dialer := gomail.NewDialer(
			d.cfg.Email.SMTPHost,
			d.cfg.Email.SMTPPort,
			d.cfg.Email.SMTPUsername,
			d.cfg.Email.SMTPPassword,
		)

		if err := dialer.DialAndSend(m); err != nil {
			log.Error("failed to send notification email", "to", to, "subject", subject, "error", err.Error())
			return
		}
		log.Debug("notification email sent", "to", to, "subject", subject)
	}()
}
