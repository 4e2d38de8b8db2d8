package services

import (
	"context"
	"testing"
	"time"

	"apexsports_backend/internal/config"
	"apexsports_backend/internal/models"
	"apexsports_backend/internal/services/dto"
	"apexsports_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type coachFixture struct {
	coaches *fakeCoachProfileRepo
	users   *fakeUserRepo
	avail   *fakeAvailabilityRepo
	reviews *fakeReviewRepo
	gateway *fakeGateway
	svc     CoachService
}

func newCoachFixture(cfg *config.Config) *coachFixture {
	f := &coachFixture{
		coaches: newFakeCoachProfileRepo(),
		users:   newFakeUserRepo(),
		avail:   newFakeAvailabilityRepo(),
		reviews: newFakeReviewRepo(),
		gateway: newFakeGateway(),
	}
	f.svc = NewCoachService(f.coaches, f.users, f.avail, f.reviews, f.gateway, cfg)
	return f
}

func (f *coachFixture) seedUser(email, name string) *models.User {
	user := &models.User{Email: email, Name: name, Role: models.UserRoleCoach}
	_ = f.users.Create(nil, user)
	return user
}

func TestCoach_SaveProfile_CreateThenUpdate(t *testing.T) {
	t.Parallel()
	f := newCoachFixture(testConfig(true))
	user := f.seedUser("coach@example.com", "Coach Carter")

	created, err := f.svc.SaveProfile(context.Background(), nil, user.ID, &dto.SaveCoachProfileRequest{
		Bio:           "Basketball coach",
		Sports:        []string{"basketball"},
		ServiceCities: []string{"Chicago"},
		HourlyRate:    "75.5",
	})
	require.NoError(t, err)

	assert.Equal(t, "Coach Carter", created.Name)
	assert.Equal(t, "75.50", created.HourlyRate)
	assert.Equal(t, []string{"basketball"}, created.Sports)
	// Владелец видит состояние онбординга
	require.NotNil(t, created.ConnectOnboardingComplete)
	assert.False(t, *created.ConnectOnboardingComplete)

	updated, err := f.svc.SaveProfile(context.Background(), nil, user.ID, &dto.SaveCoachProfileRequest{
		Bio:           "Updated bio",
		Sports:        []string{"basketball", "tennis"},
		ServiceCities: []string{"Chicago"},
		HourlyRate:    "90",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Updated bio", updated.Bio)
	assert.Equal(t, "90.00", updated.HourlyRate)
}

func TestCoach_SaveProfile_DisplayNamePhoneAvatar(t *testing.T) {
	t.Parallel()
	f := newCoachFixture(testConfig(true))
	user := f.seedUser("coach@example.com", "Coach Carter")

	resp, err := f.svc.SaveProfile(context.Background(), nil, user.ID, &dto.SaveCoachProfileRequest{
		DisplayName:   "Prime Hoops",
		Phone:         "+1-555-0100",
		Sports:        []string{"basketball"},
		ServiceCities: []string{"Chicago"},
		PhotoURLs:     []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
	})
	require.NoError(t, err)

	// Публичное имя перекрывает имя пользователя
	assert.Equal(t, "Prime Hoops", resp.Name)
	// Аватар - первая фотография галереи
	assert.Equal(t, "https://cdn.example.com/a.jpg", resp.AvatarURL)
	assert.False(t, resp.Verified)

	stored, err := f.coaches.FindByUserID(nil, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "+1-555-0100", stored.Phone)

	// Без нового displayName показываем имя пользователя
	resp, err = f.svc.SaveProfile(context.Background(), nil, user.ID, &dto.SaveCoachProfileRequest{
		Sports:        []string{"basketball"},
		ServiceCities: []string{"Chicago"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Coach Carter", resp.Name)
	// Галерея не передавалась, аватар сохраняется
	assert.Equal(t, "https://cdn.example.com/a.jpg", resp.AvatarURL)
}

func TestCoach_SaveProfile_InvalidRate_Rejected(t *testing.T) {
	t.Parallel()
	f := newCoachFixture(testConfig(true))
	user := f.seedUser("coach@example.com", "Coach Carter")

	for _, rate := range []string{"abc", "-10"} {
		_, err := f.svc.SaveProfile(context.Background(), nil, user.ID, &dto.SaveCoachProfileRequest{
			Sports:        []string{"basketball"},
			ServiceCities: []string{"Chicago"},
			HourlyRate:    rate,
		})
		require.Error(t, err, "rate %q", rate)
		var appErr *apperrors.AppError
		require.True(t, apperrors.As(err, &appErr))
		assert.Equal(t, 400, appErr.HTTPCode)
	}
}

func TestCoach_SaveProfile_ReplacesPhotos(t *testing.T) {
	t.Parallel()
	f := newCoachFixture(testConfig(true))
	user := f.seedUser("coach@example.com", "Coach Carter")

	resp, err := f.svc.SaveProfile(context.Background(), nil, user.ID, &dto.SaveCoachProfileRequest{
		Sports:        []string{"basketball"},
		ServiceCities: []string{"Chicago"},
		PhotoURLs:     []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, resp.PhotoURLs)

	resp, err = f.svc.SaveProfile(context.Background(), nil, user.ID, &dto.SaveCoachProfileRequest{
		Sports:        []string{"basketball"},
		ServiceCities: []string{"Chicago"},
		PhotoURLs:     []string{"https://cdn.example.com/c.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/c.jpg"}, resp.PhotoURLs)
}

func TestCoach_GetMyProfile_NotFound(t *testing.T) {
	t.Parallel()
	f := newCoachFixture(testConfig(true))

	_, err := f.svc.GetMyProfile(context.Background(), nil, "no-such-user")
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 404, appErr.HTTPCode)
}

func TestCoach_Search_FiltersBySport(t *testing.T) {
	t.Parallel()
	f := newCoachFixture(testConfig(true))

	basketball := f.seedUser("bb@example.com", "BB Coach")
	tennis := f.seedUser("tn@example.com", "TN Coach")
	_, err := f.svc.SaveProfile(context.Background(), nil, basketball.ID, &dto.SaveCoachProfileRequest{
		Sports: []string{"basketball"}, ServiceCities: []string{"Chicago"},
	})
	require.NoError(t, err)
	_, err = f.svc.SaveProfile(context.Background(), nil, tennis.ID, &dto.SaveCoachProfileRequest{
		Sports: []string{"tennis"}, ServiceCities: []string{"Chicago"},
	})
	require.NoError(t, err)

	resp, err := f.svc.Search(context.Background(), nil, dto.CoachSearchCriteria{Sport: "tennis"})
	require.NoError(t, err)
	require.Len(t, resp.Coaches, 1)
	assert.Equal(t, tennis.ID, resp.Coaches[0].UserID)
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.PageSize)
}

func TestCoach_GetDetail_WithSlotsAndReviews(t *testing.T) {
	t.Parallel()
	f := newCoachFixture(testConfig(true))
	user := f.seedUser("coach@example.com", "Coach Carter")

	profile := &models.CoachProfile{UserID: user.ID, Sports: []string{"basketball"}}
	require.NoError(t, f.coaches.Create(nil, profile))

	slot := &models.AvailabilitySlot{
		CoachID:         user.ID,
		StartTime:       time.Now().Add(24 * time.Hour),
		DurationMinutes: 60,
		Status:          models.SlotStatusAvailable,
	}
	require.NoError(t, f.avail.CreateSlot(nil, slot))

	require.NoError(t, f.reviews.Create(nil, &models.Review{BookingID: "b1", CoachID: user.ID, Rating: 5}))
	require.NoError(t, f.reviews.Create(nil, &models.Review{BookingID: "b2", CoachID: user.ID, Rating: 4}))

	resp, err := f.svc.GetDetail(context.Background(), nil, profile.ID)
	require.NoError(t, err)

	assert.Len(t, resp.UpcomingSlots, 1)
	assert.Len(t, resp.Reviews, 2)
	assert.Equal(t, 4.5, resp.Coach.AverageRating)
	assert.Equal(t, int64(2), resp.Coach.ReviewCount)
	// Онбординг наружу не отдаем
	assert.Nil(t, resp.Coach.ConnectOnboardingComplete)
}

func TestCoach_ConnectLink_StripeDisabled_501(t *testing.T) {
	t.Parallel()
	f := newCoachFixture(testConfig(false))
	user := f.seedUser("coach@example.com", "Coach Carter")
	require.NoError(t, f.coaches.Create(nil, &models.CoachProfile{UserID: user.ID}))

	_, err := f.svc.CreateConnectAccountLink(context.Background(), nil, user.ID)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 501, appErr.HTTPCode)
}

func TestCoach_ConnectLink_CreatesAccountOnce(t *testing.T) {
	t.Parallel()
	f := newCoachFixture(testConfig(true))
	user := f.seedUser("coach@example.com", "Coach Carter")
	profile := &models.CoachProfile{UserID: user.ID}
	require.NoError(t, f.coaches.Create(nil, profile))

	resp, err := f.svc.CreateConnectAccountLink(context.Background(), nil, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.URL)
	assert.Equal(t, "acct_test", profile.StripeConnectAccountID)

	_, err = f.svc.CreateConnectAccountLink(context.Background(), nil, user.ID)
	require.NoError(t, err)
	// Аккаунт переиспользуется
	assert.Len(t, f.gateway.connectAccounts, 1)
}

func TestCoach_ConnectStatus_SyncsOnboardingFlag(t *testing.T) {
	t.Parallel()
	f := newCoachFixture(testConfig(true))
	user := f.seedUser("coach@example.com", "Coach Carter")
	profile := &models.CoachProfile{UserID: user.ID, StripeConnectAccountID: "acct_test"}
	require.NoError(t, f.coaches.Create(nil, profile))

	resp, err := f.svc.GetConnectStatus(context.Background(), nil, user.ID)
	require.NoError(t, err)
	assert.True(t, resp.HasAccount)
	assert.True(t, resp.OnboardingComplete)
	assert.True(t, profile.ConnectOnboardingComplete)
}

func TestCoach_ConnectStatus_NoAccount(t *testing.T) {
	t.Parallel()
	f := newCoachFixture(testConfig(true))
	user := f.seedUser("coach@example.com", "Coach Carter")
	require.NoError(t, f.coaches.Create(nil, &models.CoachProfile{UserID: user.ID}))

	resp, err := f.svc.GetConnectStatus(context.Background(), nil, user.ID)
	require.NoError(t, err)
	assert.False(t, resp.HasAccount)
	assert.False(t, resp.OnboardingComplete)
}
