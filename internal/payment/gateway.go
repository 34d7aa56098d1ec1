package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go2motion/contest-backend/internal/category"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	ProviderStripe = "stripe"
	ProviderMock   = "mock"
)

// CheckoutRequest is what a gateway needs to open a hosted checkout.
type CheckoutRequest struct {
	PaymentID     string
	AmountCents   int64
	Currency      string
	Categories    []category.Category
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

type Session struct {
	ID  string
	URL string
}

type EventKind int

const (
	EventIgnored EventKind = iota
	EventCompleted
	EventFailed
)

// WebhookEvent is the provider-neutral outcome of a webhook call.
type WebhookEvent struct {
	Kind        EventKind
	PaymentID   string
	SessionID   string
	ProviderRef string
}

// ErrWebhookUnsupported is returned by gateways without webhooks.
var ErrWebhookUnsupported = errors.New("gateway does not receive webhooks")

// Gateway is a payment processor.
type Gateway interface {
	Name() string
	CreateSession(ctx context.Context, req CheckoutRequest) (*Session, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// StripeGateway opens Stripe Checkout sessions.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, webhookSecret: webhookSecret}
}

func (g *StripeGateway) Name() string { return ProviderStripe }

func (g *StripeGateway) CreateSession(ctx context.Context, req CheckoutRequest) (*Session, error) {
	names := make([]string, len(req.Categories))
	for i, c := range req.Categories {
		names[i] = string(c)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.PaymentID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(req.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String("Contest entry"),
					Description: stripe.String(strings.Join(names, ", ")),
				},
				UnitAmount: stripe.Int64(req.AmountCents),
			},
			Quantity: stripe.Int64(1),
		}},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata("paymentId", req.PaymentID)
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("verifying stripe webhook: %w", err)
	}

	var kind EventKind
	switch event.Type {
	case "checkout.session.completed":
		kind = EventCompleted
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		kind = EventFailed
	default:
		return &WebhookEvent{Kind: EventIgnored}, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("decoding checkout session: %w", err)
	}
	out := &WebhookEvent{Kind: kind, PaymentID: s.Metadata["paymentId"], SessionID: s.ID}
	if out.PaymentID == "" {
		out.PaymentID = s.ClientReferenceID
	}
	if s.PaymentIntent != nil {
		out.ProviderRef = s.PaymentIntent.ID
	}
	return out, nil
}

// MockGateway is used when no Stripe key is configured. Sessions point straight
// at the frontend success page and payments are completed through the API.
type MockGateway struct{}

func (MockGateway) Name() string { return ProviderMock }

func (MockGateway) CreateSession(_ context.Context, req CheckoutRequest) (*Session, error) {
	suffix, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generating mock session id: %w", err)
	}
	id := "mock_session_" + suffix

	target, err := url.Parse(req.SuccessURL)
	if err != nil {
		return nil, fmt.Errorf("parsing success url: %w", err)
	}
	q := target.Query()
	q.Set("session_id", id)
	q.Set("payment_id", req.PaymentID)
	q.Set("mock", "true")
	target.RawQuery = q.Encode()

	return &Session{ID: id, URL: target.String()}, nil
}

func (MockGateway) ParseWebhook([]byte, string) (*WebhookEvent, error) {
	return nil, ErrWebhookUnsupported
}
