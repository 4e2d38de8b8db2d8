package payments

import "context"

// IntentStatus - статус платежного интента у провайдера
type IntentStatus string

const (
	IntentStatusRequiresCapture       IntentStatus = "requires_capture"
	IntentStatusRequiresAction        IntentStatus = "requires_action"
	IntentStatusRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentStatusProcessing            IntentStatus = "processing"
	IntentStatusSucceeded             IntentStatus = "succeeded"
	IntentStatusCanceled              IntentStatus = "canceled"
)

// HoldParams - параметры холда с ручным захватом
type HoldParams struct {
	AmountCents     int64
	Currency        string
	CustomerID      string
	PaymentMethodID string

	// ID брони. Служит ключом идемпотентности и кладется в метаданные,
	// чтобы вебхук мог сопоставить интент с бронью.
	BookingID string

	// Вариант destination charge: при заполненном аккаунте холд сразу
	// адресуется connect-аккаунту, комиссия удерживается провайдером.
	// При пустом аккаунте выплата идет отдельным переводом после захвата.
	ConnectAccountID string
	FeeCents         int64
}

// HoldResult - результат создания холда
type HoldResult struct {
	IntentID     string
	Status       IntentStatus
	ClientSecret string
}

// IntentInfo - текущее состояние интента
type IntentInfo struct {
	ID     string
	Status IntentStatus
}

// TransferParams - перевод коучу после захвата платежа
type TransferParams struct {
	AmountCents          int64
	Currency             string
	DestinationAccountID string
	TransferGroup        string
}

// AccountStatus - состояние connect-аккаунта коуча
type AccountStatus struct {
	DetailsSubmitted bool
	ChargesEnabled   bool
}

// WebhookEvent - распарсенное и проверенное событие провайдера
type WebhookEvent struct {
	Type         string
	IntentID     string
	BookingID    string
	IntentStatus IntentStatus
}

// Gateway изолирует платежного провайдера от бизнес-логики.
// Тесты подставляют фейковую реализацию.
type Gateway interface {
	EnsureCustomer(ctx context.Context, email, name string) (string, error)
	AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) error

	CreateHold(ctx context.Context, params HoldParams) (*HoldResult, error)
	RetrieveIntent(ctx context.Context, intentID string) (*IntentInfo, error)
	CaptureHold(ctx context.Context, intentID string) error
	CancelHold(ctx context.Context, intentID string) error

	Transfer(ctx context.Context, params TransferParams) error

	CreateConnectAccount(ctx context.Context, email string) (string, error)
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	GetAccountStatus(ctx context.Context, accountID string) (*AccountStatus, error)

	VerifyWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
}
