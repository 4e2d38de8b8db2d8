package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler    *AuthHandler
	CoachHandler   *CoachHandler
	BookingHandler *BookingHandler
	WebhookHandler *WebhookHandler
}
