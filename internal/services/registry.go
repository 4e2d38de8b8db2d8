package services

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService         AuthService
	CoachService        CoachService
	AvailabilityService AvailabilityService
	BookingService      BookingService
	WebhookService      WebhookService
}
