package services

import (
	"context"
	"time"

	"apexsports_backend/internal/config"
	"apexsports_backend/internal/models"
	"apexsports_backend/internal/notifications"
	"apexsports_backend/internal/payments"
	"apexsports_backend/internal/repositories"
	"apexsports_backend/internal/services/dto"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Фейковые репозитории держат данные в памяти и игнорируют *gorm.DB,
// сервисы в тестах получают db = nil.

type fakeBookingRepo struct {
	bookings map[string]*models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (r *fakeBookingRepo) InTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return fn(db)
}

func (r *fakeBookingRepo) Create(db *gorm.DB, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	booking.CreatedAt = time.Now()
	r.bookings[booking.ID] = booking
	return nil
}

func (r *fakeBookingRepo) FindByID(db *gorm.DB, id string) (*models.Booking, error) {
	booking, ok := r.bookings[id]
	if !ok {
		return nil, repositories.ErrBookingNotFound
	}
	return booking, nil
}

func (r *fakeBookingRepo) FindByIDWithRelations(db *gorm.DB, id string) (*models.Booking, error) {
	return r.FindByID(db, id)
}

func (r *fakeBookingRepo) FindByAthlete(db *gorm.DB, athleteID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.AthleteID == athleteID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) FindByCoach(db *gorm.DB, coachID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.CoachID == coachID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) FindActiveBySlot(db *gorm.DB, slotID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.SlotID == slotID && b.Status != models.BookingStatusCancelled {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ActiveExistsForSlotAndAthlete(db *gorm.DB, slotID, athleteID string) (bool, error) {
	for _, b := range r.bookings {
		if b.SlotID == slotID && b.AthleteID == athleteID &&
			(b.Status == models.BookingStatusPending || b.Status == models.BookingStatusConfirmed) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBookingRepo) ConfirmedExistsForSlot(db *gorm.DB, slotID string) (bool, error) {
	for _, b := range r.bookings {
		if b.SlotID == slotID && b.Status == models.BookingStatusConfirmed {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBookingRepo) FindByPaymentIntent(db *gorm.DB, bookingID, intentID string) (*models.Booking, error) {
	booking, ok := r.bookings[bookingID]
	if !ok || booking.PaymentIntentID != intentID {
		return nil, repositories.ErrBookingNotFound
	}
	return booking, nil
}

func (r *fakeBookingRepo) Update(db *gorm.DB, booking *models.Booking) error {
	if _, ok := r.bookings[booking.ID]; !ok {
		return repositories.ErrBookingNotFound
	}
	r.bookings[booking.ID] = booking
	return nil
}

func (r *fakeBookingRepo) UpdatePaymentStatus(db *gorm.DB, bookingID string, status models.PaymentStatus) error {
	booking, ok := r.bookings[bookingID]
	if !ok {
		return nil
	}
	if booking.PaymentStatus == models.PaymentStatusSucceeded {
		return nil
	}
	booking.PaymentStatus = status
	return nil
}

func (r *fakeBookingRepo) CountActiveBySlotIDs(db *gorm.DB, slotIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, id := range slotIDs {
		for _, b := range r.bookings {
			if b.SlotID == id && b.Status != models.BookingStatusCancelled {
				counts[id]++
			}
		}
	}
	return counts, nil
}

type fakeAvailabilityRepo struct {
	rules map[string]*models.AvailabilityRule
	slots map[string]*models.AvailabilitySlot
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{
		rules: make(map[string]*models.AvailabilityRule),
		slots: make(map[string]*models.AvailabilitySlot),
	}
}

func (r *fakeAvailabilityRepo) CreateRule(db *gorm.DB, rule *models.AvailabilityRule, slots []models.AvailabilitySlot) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	for i := range slots {
		slots[i].ID = uuid.NewString()
		slots[i].RuleID = &rule.ID
		slot := slots[i]
		r.slots[slot.ID] = &slot
	}
	rule.Slots = slots
	r.rules[rule.ID] = rule
	return nil
}

func (r *fakeAvailabilityRepo) CreateSlot(db *gorm.DB, slot *models.AvailabilitySlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	r.slots[slot.ID] = slot
	return nil
}

func (r *fakeAvailabilityRepo) FindRuleByID(db *gorm.DB, id string) (*models.AvailabilityRule, error) {
	rule, ok := r.rules[id]
	if !ok {
		return nil, repositories.ErrRuleNotFound
	}
	return rule, nil
}

func (r *fakeAvailabilityRepo) FindSlotByID(db *gorm.DB, id string) (*models.AvailabilitySlot, error) {
	slot, ok := r.slots[id]
	if !ok {
		return nil, repositories.ErrSlotNotFound
	}
	return slot, nil
}

func (r *fakeAvailabilityRepo) FindSlotByIDForUpdate(db *gorm.DB, id string) (*models.AvailabilitySlot, error) {
	return r.FindSlotByID(db, id)
}

func (r *fakeAvailabilityRepo) FindRulesByCoach(db *gorm.DB, coachID string) ([]models.AvailabilityRule, error) {
	var out []models.AvailabilityRule
	for _, rule := range r.rules {
		if rule.CoachID == coachID {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (r *fakeAvailabilityRepo) FindOneOffSlotsByCoach(db *gorm.DB, coachID string) ([]models.AvailabilitySlot, error) {
	var out []models.AvailabilitySlot
	for _, slot := range r.slots {
		if slot.CoachID == coachID && slot.RuleID == nil {
			out = append(out, *slot)
		}
	}
	return out, nil
}

func (r *fakeAvailabilityRepo) FindUpcomingOpenSlots(db *gorm.DB, coachID string, from time.Time) ([]models.AvailabilitySlot, error) {
	var out []models.AvailabilitySlot
	for _, slot := range r.slots {
		if slot.CoachID == coachID && slot.StartTime.After(from) && slot.Status == models.SlotStatusAvailable {
			out = append(out, *slot)
		}
	}
	return out, nil
}

func (r *fakeAvailabilityRepo) FindSlotsByRule(db *gorm.DB, ruleID string) ([]models.AvailabilitySlot, error) {
	var out []models.AvailabilitySlot
	for _, slot := range r.slots {
		if slot.RuleID != nil && *slot.RuleID == ruleID {
			out = append(out, *slot)
		}
	}
	return out, nil
}

func (r *fakeAvailabilityRepo) UpdateSlotStatus(db *gorm.DB, slotID string, status models.SlotStatus) error {
	slot, ok := r.slots[slotID]
	if !ok {
		return repositories.ErrSlotNotFound
	}
	slot.Status = status
	return nil
}

func (r *fakeAvailabilityRepo) DeleteRule(db *gorm.DB, ruleID string) error {
	if _, ok := r.rules[ruleID]; !ok {
		return repositories.ErrRuleNotFound
	}
	delete(r.rules, ruleID)
	return nil
}

func (r *fakeAvailabilityRepo) DeleteSlot(db *gorm.DB, slotID string) error {
	if _, ok := r.slots[slotID]; !ok {
		return repositories.ErrSlotNotFound
	}
	delete(r.slots, slotID)
	return nil
}

func (r *fakeAvailabilityRepo) DeleteSlotsByRule(db *gorm.DB, ruleID string) error {
	for id, slot := range r.slots {
		if slot.RuleID != nil && *slot.RuleID == ruleID {
			delete(r.slots, id)
		}
	}
	return nil
}

type fakeCoachProfileRepo struct {
	profiles map[string]*models.CoachProfile
}

func newFakeCoachProfileRepo() *fakeCoachProfileRepo {
	return &fakeCoachProfileRepo{profiles: make(map[string]*models.CoachProfile)}
}

func (r *fakeCoachProfileRepo) Create(db *gorm.DB, profile *models.CoachProfile) error {
	for _, existing := range r.profiles {
		if existing.UserID == profile.UserID {
			return repositories.ErrCoachProfileAlreadyExists
		}
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	r.profiles[profile.ID] = profile
	return nil
}

func (r *fakeCoachProfileRepo) Update(db *gorm.DB, profile *models.CoachProfile) error {
	if _, ok := r.profiles[profile.ID]; !ok {
		return repositories.ErrCoachProfileNotFound
	}
	r.profiles[profile.ID] = profile
	return nil
}

func (r *fakeCoachProfileRepo) FindByID(db *gorm.DB, id string) (*models.CoachProfile, error) {
	profile, ok := r.profiles[id]
	if !ok {
		return nil, repositories.ErrCoachProfileNotFound
	}
	return profile, nil
}

func (r *fakeCoachProfileRepo) FindByUserID(db *gorm.DB, userID string) (*models.CoachProfile, error) {
	for _, profile := range r.profiles {
		if profile.UserID == userID {
			return profile, nil
		}
	}
	return nil, repositories.ErrCoachProfileNotFound
}

func (r *fakeCoachProfileRepo) FindWithFilter(db *gorm.DB, criteria repositories.CoachFilter) ([]models.CoachProfile, int64, error) {
	var out []models.CoachProfile
	for _, profile := range r.profiles {
		if criteria.Sport != "" {
			found := false
			for _, sport := range profile.Sports {
				if sport == criteria.Sport {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		if criteria.City != "" {
			found := false
			for _, city := range profile.ServiceCities {
				if city == criteria.City {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, *profile)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCoachProfileRepo) ReplacePhotos(db *gorm.DB, profileID string, urls []string) error {
	profile, ok := r.profiles[profileID]
	if !ok {
		return repositories.ErrCoachProfileNotFound
	}
	profile.Photos = nil
	for i, url := range urls {
		profile.Photos = append(profile.Photos, models.CoachPhoto{
			CoachProfileID: profileID,
			URL:            url,
			Position:       i,
		})
	}
	return nil
}

func (r *fakeCoachProfileRepo) UpdateConnectAccount(db *gorm.DB, profileID, accountID string, onboardingComplete bool) error {
	profile, ok := r.profiles[profileID]
	if !ok {
		return repositories.ErrCoachProfileNotFound
	}
	profile.StripeConnectAccountID = accountID
	profile.ConnectOnboardingComplete = onboardingComplete
	return nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) FindByID(db *gorm.DB, id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Create(db *gorm.DB, user *models.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateRole(db *gorm.DB, userID string, role models.UserRole) error {
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.Role = role
	return nil
}

func (r *fakeUserRepo) UpdateStripeCustomerID(db *gorm.DB, userID, customerID string) error {
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.StripeCustomerID = customerID
	return nil
}

type fakeReviewRepo struct {
	reviews map[string]*models.Review // ключ - booking_id
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[string]*models.Review)}
}

func (r *fakeReviewRepo) Create(db *gorm.DB, review *models.Review) error {
	if _, ok := r.reviews[review.BookingID]; ok {
		return repositories.ErrReviewAlreadyExists
	}
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	r.reviews[review.BookingID] = review
	return nil
}

func (r *fakeReviewRepo) FindByBooking(db *gorm.DB, bookingID string) (*models.Review, error) {
	review, ok := r.reviews[bookingID]
	if !ok {
		return nil, repositories.ErrReviewNotFound
	}
	return review, nil
}

func (r *fakeReviewRepo) FindRecentByCoach(db *gorm.DB, coachID string, limit int) ([]models.Review, error) {
	var out []models.Review
	for _, review := range r.reviews {
		if review.CoachID == coachID {
			out = append(out, *review)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeReviewRepo) GetCoachRatingStats(db *gorm.DB, coachID string) (*repositories.RatingStats, error) {
	stats := &repositories.RatingStats{}
	var sum int
	for _, review := range r.reviews {
		if review.CoachID == coachID {
			stats.TotalReviews++
			sum += review.Rating
		}
	}
	if stats.TotalReviews > 0 {
		stats.AverageRating = float64(sum) / float64(stats.TotalReviews)
	}
	return stats, nil
}

// fakeGateway записывает вызовы и отдает настроенные ответы
type fakeGateway struct {
	customerID   string
	holdResult   *payments.HoldResult
	holdErr      error
	intent       *payments.IntentInfo
	retrieveErr  error
	captureErr   error
	cancelErr    error
	transferErr  error
	webhookEvent *payments.WebhookEvent
	webhookErr   error

	holds           []payments.HoldParams
	attached        []string
	captured        []string
	cancelled       []string
	transfers       []payments.TransferParams
	customers       []string
	connectAccounts []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		customerID: "cus_test",
		holdResult: &payments.HoldResult{
			IntentID: "pi_test",
			Status:   payments.IntentStatusRequiresCapture,
		},
	}
}

func (g *fakeGateway) EnsureCustomer(ctx context.Context, email, name string) (string, error) {
	g.customers = append(g.customers, email)
	return g.customerID, nil
}

func (g *fakeGateway) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) error {
	g.attached = append(g.attached, paymentMethodID)
	return nil
}

func (g *fakeGateway) CreateHold(ctx context.Context, params payments.HoldParams) (*payments.HoldResult, error) {
	g.holds = append(g.holds, params)
	if g.holdErr != nil {
		return nil, g.holdErr
	}
	return g.holdResult, nil
}

func (g *fakeGateway) RetrieveIntent(ctx context.Context, intentID string) (*payments.IntentInfo, error) {
	if g.retrieveErr != nil {
		return nil, g.retrieveErr
	}
	if g.intent != nil {
		return g.intent, nil
	}
	return &payments.IntentInfo{ID: intentID, Status: payments.IntentStatusRequiresCapture}, nil
}

func (g *fakeGateway) CaptureHold(ctx context.Context, intentID string) error {
	if g.captureErr != nil {
		return g.captureErr
	}
	g.captured = append(g.captured, intentID)
	return nil
}

func (g *fakeGateway) CancelHold(ctx context.Context, intentID string) error {
	if g.cancelErr != nil {
		return g.cancelErr
	}
	g.cancelled = append(g.cancelled, intentID)
	return nil
}

func (g *fakeGateway) Transfer(ctx context.Context, params payments.TransferParams) error {
	if g.transferErr != nil {
		return g.transferErr
	}
	g.transfers = append(g.transfers, params)
	return nil
}

func (g *fakeGateway) CreateConnectAccount(ctx context.Context, email string) (string, error) {
	g.connectAccounts = append(g.connectAccounts, email)
	return "acct_test", nil
}

func (g *fakeGateway) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	return "https://connect.example.com/onboarding", nil
}

func (g *fakeGateway) GetAccountStatus(ctx context.Context, accountID string) (*payments.AccountStatus, error) {
	return &payments.AccountStatus{DetailsSubmitted: true, ChargesEnabled: true}, nil
}

func (g *fakeGateway) VerifyWebhook(payload []byte, signatureHeader string) (*payments.WebhookEvent, error) {
	if g.webhookErr != nil {
		return nil, g.webhookErr
	}
	return g.webhookEvent, nil
}

// recordingDispatcher считает разосланные уведомления
type recordingDispatcher struct {
	requested       int
	requestedEvents []notifications.BookingEvent
	confirmed       int
	completed       int
	slotCancelled   int
	cancelled       []bool // by_coach каждого события
}

func (d *recordingDispatcher) BookingRequested(ctx context.Context, event notifications.BookingEvent) {
	d.requested++
	d.requestedEvents = append(d.requestedEvents, event)
}
func (d *recordingDispatcher) BookingConfirmed(ctx context.Context, event notifications.BookingEvent) {
	d.confirmed++
}
func (d *recordingDispatcher) BookingCancelled(ctx context.Context, event notifications.BookingEvent, cancelledByCoach bool) {
	d.cancelled = append(d.cancelled, cancelledByCoach)
}
func (d *recordingDispatcher) BookingCompleted(ctx context.Context, event notifications.BookingEvent) {
	d.completed++
}
func (d *recordingDispatcher) SlotCancelled(ctx context.Context, event notifications.BookingEvent) {
	d.slotCancelled++
}

// stubBookingService подменяет BookingService там, где нужен только
// каскад CancelActiveForSlot
type stubBookingService struct {
	cancelledSlots []string
}

func (s *stubBookingService) Create(ctx context.Context, db *gorm.DB, athleteID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	return nil, nil
}
func (s *stubBookingService) List(ctx context.Context, db *gorm.DB, userID string) (*dto.BookingListResponse, error) {
	return nil, nil
}
func (s *stubBookingService) Get(ctx context.Context, db *gorm.DB, userID, bookingID string) (*dto.BookingResponse, error) {
	return nil, nil
}
func (s *stubBookingService) UpdateStatus(ctx context.Context, db *gorm.DB, userID, bookingID string, req *dto.UpdateBookingRequest) (*dto.BookingResponse, error) {
	return nil, nil
}
func (s *stubBookingService) CreateReview(ctx context.Context, db *gorm.DB, userID, bookingID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	return nil, nil
}
func (s *stubBookingService) CancelActiveForSlot(ctx context.Context, db *gorm.DB, slotID string) error {
	s.cancelledSlots = append(s.cancelledSlots, slotID)
	return nil
}

func testConfig(stripeEnabled bool) *config.Config {
	cfg := &config.Config{}
	if stripeEnabled {
		cfg.Payments.StripeSecretKey = "sk_test_123"
		cfg.Payments.StripeWebhookSecret = "whsec_test"
	}
	cfg.Payments.PlatformFeePercent = 10
	return cfg
}
