package dto

// SaveCoachProfileRequest - создание или обновление профиля коуча.
// HourlyRate приходит строкой, чтобы не терять точность на float.
type SaveCoachProfileRequest struct {
	DisplayName   string   `json:"displayName" validate:"omitempty,max=100"`
	Phone         string   `json:"phone" validate:"omitempty,max=20"`
	Bio           string   `json:"bio" validate:"omitempty,max=5000"`
	Sports        []string `json:"sports" validate:"required,min=1,dive,min=2,max=50"`
	ServiceCities []string `json:"serviceCities" validate:"required,min=1,dive,min=2,max=100"`
	HourlyRate    string   `json:"hourlyRate" validate:"omitempty"`
	PhotoURLs     []string `json:"photoUrls" validate:"omitempty,dive,url"`
}

// CoachSearchCriteria - фильтры публичного списка коучей
type CoachSearchCriteria struct {
	Sport    string `form:"sport"`
	City     string `form:"city"`
	Search   string `form:"q"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// CoachResponse - карточка коуча в списке и на своей странице
type CoachResponse struct {
	ID            string   `json:"id"`
	UserID        string   `json:"userId"`
	Name          string   `json:"name"`
	Bio           string   `json:"bio"`
	Sports        []string `json:"sports"`
	ServiceCities []string `json:"serviceCities"`
	HourlyRate    string   `json:"hourlyRate"`
	PhotoURLs     []string `json:"photoUrls"`
	AvatarURL     string   `json:"avatarUrl,omitempty"`
	Verified      bool     `json:"verified"`
	AverageRating float64  `json:"averageRating"`
	ReviewCount   int64    `json:"reviewCount"`

	// Только для владельца профиля
	ConnectOnboardingComplete *bool `json:"connectOnboardingComplete,omitempty"`
}

// CoachListResponse - страница результатов поиска
type CoachListResponse struct {
	Coaches  []*CoachResponse `json:"coaches"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

// CoachDetailResponse - публичная страница коуча
type CoachDetailResponse struct {
	Coach         *CoachResponse    `json:"coach"`
	UpcomingSlots []*SlotResponse   `json:"upcomingSlots"`
	Reviews       []*ReviewResponse `json:"reviews"`
}

// ConnectLinkResponse - ссылка онбординга connect-аккаунта
type ConnectLinkResponse struct {
	URL string `json:"url"`
}

// ConnectStatusResponse - состояние онбординга
type ConnectStatusResponse struct {
	HasAccount         bool `json:"hasAccount"`
	DetailsSubmitted   bool `json:"detailsSubmitted"`
	ChargesEnabled     bool `json:"chargesEnabled"`
	OnboardingComplete bool `json:"onboardingComplete"`
}
