package services

import (
	"context"
	"errors"
	"time"

	"apexsports_backend/internal/logger"
	"apexsports_backend/internal/models"
	"apexsports_backend/internal/repositories"
	"apexsports_backend/internal/services/dto"
	"apexsports_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// maxRuleHorizon ограничивает генерацию слотов двумя годами вперед,
// каким бы далеким ни был endDate правила
const maxRuleHorizon = 2 * 365 * 24 * time.Hour

type AvailabilityService interface {
	ListMine(ctx context.Context, db *gorm.DB, coachID string) (*dto.AvailabilityResponse, error)
	CreateSlot(ctx context.Context, db *gorm.DB, coachID string, req *dto.CreateSlotRequest) (*dto.SlotResponse, error)
	CreateRule(ctx context.Context, db *gorm.DB, coachID string, req *dto.CreateRuleRequest) (*dto.RuleResponse, error)
	DeleteSlot(ctx context.Context, db *gorm.DB, coachID, slotID string) error
	DeleteRule(ctx context.Context, db *gorm.DB, coachID, ruleID string) error
}

type availabilityService struct {
	availRepo   repositories.AvailabilityRepository
	bookingRepo repositories.BookingRepository
	bookings    BookingService
}

func NewAvailabilityService(
	availRepo repositories.AvailabilityRepository,
	bookingRepo repositories.BookingRepository,
	bookings BookingService,
) AvailabilityService {
	return &availabilityService{
		availRepo:   availRepo,
		bookingRepo: bookingRepo,
		bookings:    bookings,
	}
}

func (s *availabilityService) ListMine(ctx context.Context, db *gorm.DB, coachID string) (*dto.AvailabilityResponse, error) {
	rules, err := s.availRepo.FindRulesByCoach(db, coachID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	oneOff, err := s.availRepo.FindOneOffSlotsByCoach(db, coachID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	// Счетчики живых броней по всем слотам одним запросом
	var slotIDs []string
	for i := range rules {
		for j := range rules[i].Slots {
			slotIDs = append(slotIDs, rules[i].Slots[j].ID)
		}
	}
	for i := range oneOff {
		slotIDs = append(slotIDs, oneOff[i].ID)
	}
	counts, err := s.bookingRepo.CountActiveBySlotIDs(db, slotIDs)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.AvailabilityResponse{
		Rules:       make([]*dto.RuleResponse, 0, len(rules)),
		OneOffSlots: make([]*dto.SlotResponse, 0, len(oneOff)),
	}
	for i := range rules {
		resp.Rules = append(resp.Rules, toRuleResponse(&rules[i], counts))
	}
	for i := range oneOff {
		resp.OneOffSlots = append(resp.OneOffSlots, toSlotResponse(&oneOff[i], counts[oneOff[i].ID]))
	}
	return resp, nil
}

func (s *availabilityService) CreateSlot(ctx context.Context, db *gorm.DB, coachID string, req *dto.CreateSlotRequest) (*dto.SlotResponse, error) {
	if !req.StartTime.After(time.Now()) {
		return nil, apperrors.NewBadRequestError("startTime must be in the future")
	}

	slot := &models.AvailabilitySlot{
		CoachID:         coachID,
		StartTime:       req.StartTime.UTC(),
		DurationMinutes: req.DurationMinutes,
		Status:          models.SlotStatusAvailable,
	}
	if err := s.availRepo.CreateSlot(db, slot); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "availability slot created", "slot_id", slot.ID)
	return toSlotResponse(slot, 0), nil
}

// CreateRule разворачивает еженедельное правило в слоты сразу при
// создании, с шагом 7 дней от firstStart до endDate включительно
func (s *availabilityService) CreateRule(ctx context.Context, db *gorm.DB, coachID string, req *dto.CreateRuleRequest) (*dto.RuleResponse, error) {
	if !req.FirstStart.After(time.Now()) {
		return nil, apperrors.NewBadRequestError("firstStart must be in the future")
	}
	if req.EndDate.Before(req.FirstStart) {
		return nil, apperrors.NewBadRequestError("endDate must not be before firstStart")
	}

	firstStart := req.FirstStart.UTC()

	// Конец последнего дня endDate, чтобы слот в сам endDate попал в серию
	endOfEndDate := time.Date(
		req.EndDate.UTC().Year(), req.EndDate.UTC().Month(), req.EndDate.UTC().Day(),
		23, 59, 59, 999000000, time.UTC,
	)

	cap := firstStart.Add(maxRuleHorizon)
	if endOfEndDate.Before(cap) {
		cap = endOfEndDate
	}

	rule := &models.AvailabilityRule{
		CoachID:         coachID,
		FirstStart:      firstStart,
		DurationMinutes: req.DurationMinutes,
		EndDate:         endOfEndDate,
	}

	var slots []models.AvailabilitySlot
	for t := firstStart; !t.After(cap); t = t.Add(7 * 24 * time.Hour) {
		slots = append(slots, models.AvailabilitySlot{
			CoachID:         coachID,
			StartTime:       t,
			DurationMinutes: req.DurationMinutes,
			Status:          models.SlotStatusAvailable,
		})
	}

	if err := s.availRepo.CreateRule(db, rule, slots); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "availability rule created", "rule_id", rule.ID, "slots", len(slots))
	return toRuleResponse(rule, nil), nil
}

// DeleteSlot отменяет живые брони слота и удаляет его
func (s *availabilityService) DeleteSlot(ctx context.Context, db *gorm.DB, coachID, slotID string) error {
	slot, err := s.availRepo.FindSlotByID(db, slotID)
	if err != nil {
		if errors.Is(err, repositories.ErrSlotNotFound) {
			return apperrors.ErrSlotNotFound
		}
		return apperrors.InternalError(err)
	}
	if slot.CoachID != coachID {
		return apperrors.ErrSlotNotFound
	}

	if err := s.bookings.CancelActiveForSlot(ctx, db, slotID); err != nil {
		return err
	}

	if err := s.availRepo.DeleteSlot(db, slotID); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "availability slot deleted", "slot_id", slotID)
	return nil
}

// DeleteRule отменяет брони всех слотов правила, затем удаляет слоты и
// само правило
func (s *availabilityService) DeleteRule(ctx context.Context, db *gorm.DB, coachID, ruleID string) error {
	rule, err := s.availRepo.FindRuleByID(db, ruleID)
	if err != nil {
		if errors.Is(err, repositories.ErrRuleNotFound) {
			return apperrors.ErrRuleNotFound
		}
		return apperrors.InternalError(err)
	}
	if rule.CoachID != coachID {
		return apperrors.ErrRuleNotFound
	}

	slots, err := s.availRepo.FindSlotsByRule(db, ruleID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	for i := range slots {
		if err := s.bookings.CancelActiveForSlot(ctx, db, slots[i].ID); err != nil {
			return err
		}
	}

	if err := s.availRepo.DeleteSlotsByRule(db, ruleID); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.availRepo.DeleteRule(db, ruleID); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "availability rule deleted", "rule_id", ruleID, "slots", len(slots))
	return nil
}

func toRuleResponse(rule *models.AvailabilityRule, counts map[string]int64) *dto.RuleResponse {
	slots := make([]*dto.SlotResponse, 0, len(rule.Slots))
	for i := range rule.Slots {
		slots = append(slots, toSlotResponse(&rule.Slots[i], counts[rule.Slots[i].ID]))
	}
	return &dto.RuleResponse{
		ID:              rule.ID,
		FirstStart:      rule.FirstStart,
		DurationMinutes: rule.DurationMinutes,
		EndDate:         rule.EndDate,
		Slots:           slots,
	}
}
