package dto

import "time"

// CreateSlotRequest - разовый слот
type CreateSlotRequest struct {
	StartTime       time.Time `json:"startTime" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"required,min=15,max=480"`
}

// CreateRuleRequest - еженедельное правило. Слоты генерируются сразу,
// от firstStart до endDate включительно с шагом в неделю.
type CreateRuleRequest struct {
	FirstStart      time.Time `json:"firstStart" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"required,min=15,max=480"`
	EndDate         time.Time `json:"endDate" validate:"required"`
}

// SlotResponse - слот в ответах API
type SlotResponse struct {
	ID              string    `json:"id"`
	RuleID          *string   `json:"ruleId,omitempty"`
	StartTime       time.Time `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
	BookingCount    int64     `json:"bookingCount"`
}

// RuleResponse - правило со слотами
type RuleResponse struct {
	ID              string          `json:"id"`
	FirstStart      time.Time       `json:"firstStart"`
	DurationMinutes int             `json:"durationMinutes"`
	EndDate         time.Time       `json:"endDate"`
	Slots           []*SlotResponse `json:"slots"`
}

// AvailabilityResponse - вся доступность коуча
type AvailabilityResponse struct {
	Rules       []*RuleResponse `json:"rules"`
	OneOffSlots []*SlotResponse `json:"oneOffSlots"`
}
