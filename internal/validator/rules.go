package validator

import (
	"log"

	"apexsports_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует все кастомные функции валидации в
// переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {

	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Ошибка времени запуска, приложение не должно стартовать
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'is-user-role': роль пользователя
	mustRegister("is-user-role", validateUserRole)

	// 'is-booking-status': статус брони в PATCH-запросе
	mustRegister("is-booking-status", validateBookingStatus)
}

// --- Функции валидации ---

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // пустые проверяет 'required'
	}

	switch models.UserRole(value) {
	case models.UserRoleCoach, models.UserRoleAthlete:
		return true
	default:
		return false
	}
}

func validateBookingStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.BookingStatus(value) {
	case models.BookingStatusPending, models.BookingStatusConfirmed,
		models.BookingStatusCompleted, models.BookingStatusCancelled:
		return true
	default:
		return false
	}
}
