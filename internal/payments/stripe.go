package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway - реализация Gateway поверх Stripe
type StripeGateway struct {
	sc            *client.API
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{
		sc:            sc,
		webhookSecret: webhookSecret,
	}
}

func (g *StripeGateway) EnsureCustomer(ctx context.Context, email, name string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx

	cust, err := g.sc.Customers.New(params)
	if err != nil {
		return "", err
	}
	return cust.ID, nil
}

func (g *StripeGateway) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) error {
	params := &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx

	_, err := g.sc.PaymentMethods.Attach(paymentMethodID, params)
	if err != nil && !isAlreadyAttached(err) {
		return err
	}
	return nil
}

// isAlreadyAttached распознает повторную привязку того же метода к тому же
// покупателю. Любой другой отказ провайдера, включая несуществующий метод,
// пробрасывается как есть.
func isAlreadyAttached(err error) bool {
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr) && stripeErr.Code == "resource_already_attached_to_customer"
}

func (g *StripeGateway) CreateHold(ctx context.Context, p HoldParams) (*HoldResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(p.AmountCents),
		Currency:      stripe.String(p.Currency),
		Customer:      stripe.String(p.CustomerID),
		PaymentMethod: stripe.String(p.PaymentMethodID),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.AddMetadata("bookingId", p.BookingID)

	if p.ConnectAccountID != "" {
		params.TransferData = &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(p.ConnectAccountID),
		}
		if p.FeeCents > 0 {
			params.ApplicationFeeAmount = stripe.Int64(p.FeeCents)
		}
	}

	// Повтор запроса с тем же ключом вернет уже созданный интент
	params.SetIdempotencyKey(p.BookingID)

	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}

	return &HoldResult{
		IntentID:     pi.ID,
		Status:       IntentStatus(pi.Status),
		ClientSecret: pi.ClientSecret,
	}, nil
}

func (g *StripeGateway) RetrieveIntent(ctx context.Context, intentID string) (*IntentInfo, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.sc.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, err
	}
	return &IntentInfo{ID: pi.ID, Status: IntentStatus(pi.Status)}, nil
}

func (g *StripeGateway) CaptureHold(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx

	_, err := g.sc.PaymentIntents.Capture(intentID, params)
	return err
}

func (g *StripeGateway) CancelHold(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	_, err := g.sc.PaymentIntents.Cancel(intentID, params)
	return err
}

func (g *StripeGateway) Transfer(ctx context.Context, p TransferParams) error {
	params := &stripe.TransferParams{
		Amount:      stripe.Int64(p.AmountCents),
		Currency:    stripe.String(p.Currency),
		Destination: stripe.String(p.DestinationAccountID),
	}
	if p.TransferGroup != "" {
		params.TransferGroup = stripe.String(p.TransferGroup)
	}
	params.Context = ctx

	_, err := g.sc.Transfers.New(params)
	return err
}

func (g *StripeGateway) CreateConnectAccount(ctx context.Context, email string) (string, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
	}
	params.Context = ctx

	acct, err := g.sc.Accounts.New(params)
	if err != nil {
		return "", err
	}
	return acct.ID, nil
}

func (g *StripeGateway) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	params.Context = ctx

	link, err := g.sc.AccountLinks.New(params)
	if err != nil {
		return "", err
	}
	return link.URL, nil
}

func (g *StripeGateway) GetAccountStatus(ctx context.Context, accountID string) (*AccountStatus, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx

	acct, err := g.sc.Accounts.GetByID(accountID, params)
	if err != nil {
		return nil, err
	}
	return &AccountStatus{
		DetailsSubmitted: acct.DetailsSubmitted,
		ChargesEnabled:   acct.ChargesEnabled,
	}, nil
}

// VerifyWebhook проверяет подпись и вытаскивает интент из события.
// Возвращает событие с пустым IntentID для типов, которые нас не интересуют.
func (g *StripeGateway) VerifyWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	result := &WebhookEvent{Type: string(event.Type)}

	switch event.Type {
	case "payment_intent.succeeded",
		"payment_intent.amount_capturable_updated",
		"payment_intent.payment_failed",
		"payment_intent.canceled":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("failed to parse payment intent from event: %w", err)
		}
		result.IntentID = pi.ID
		result.IntentStatus = IntentStatus(pi.Status)
		result.BookingID = pi.Metadata["bookingId"]
	}

	return result, nil
}
