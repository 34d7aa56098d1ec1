package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go2motion/contest-backend/internal/category"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/logging"
	"github.com/go2motion/contest-backend/internal/user"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	gateway     Gateway = MockGateway{}
	frontendURL         = "http://localhost:5173"
	currency            = "eur"
)

// ConfigureModule installs the payment gateway and redirect settings.
func ConfigureModule(gw Gateway, frontend, cur string) {
	if gw != nil {
		gateway = gw
	}
	if frontend != "" {
		frontendURL = strings.TrimRight(frontend, "/")
	}
	if cur != "" {
		currency = strings.ToLower(cur)
	}
}

// IsMock reports whether payments bypass the real processor.
func IsMock() bool { return gateway.Name() == ProviderMock }

// CheckoutResult is returned to the client after creating a session.
type CheckoutResult struct {
	PaymentID   string              `json:"paymentId"`
	SessionID   string              `json:"sessionId"`
	URL         string              `json:"url"`
	AmountCents int64               `json:"amountCents"`
	Amount      float64             `json:"amount"`
	Currency    string              `json:"currency"`
	Categories  []category.Category `json:"categories"`
	Mock        bool                `json:"mock"`
}

// CreateCheckout prices the requested categories, records a pending payment and
// opens a checkout session for it.
func CreateCheckout(ctx context.Context, payer *user.User, names []string) (*CheckoutResult, error) {
	if !payer.Role.IsParticipant() {
		return nil, apperr.Forbidden("only participants can pay entry fees")
	}
	cats, invalid := category.Parse(names)
	if len(invalid) > 0 {
		return nil, apperr.Invalid("unknown categories: %s", strings.Join(invalid, ", "))
	}
	if len(cats) == 0 {
		return nil, apperr.Invalid("at least one category is required")
	}

	p := &Payment{
		UserID:      payer.ID,
		AmountCents: category.PriceCents(cats),
		Currency:    currency,
		Status:      StatusPending,
		Provider:    gateway.Name(),
		Categories:  datatypes.JSONSlice[category.Category](cats),
	}
	db := database.DB.WithContext(ctx)
	if err := db.Create(p).Error; err != nil {
		return nil, fmt.Errorf("creating payment: %w", err)
	}

	session, err := gateway.CreateSession(ctx, CheckoutRequest{
		PaymentID:     p.ID,
		AmountCents:   p.AmountCents,
		Currency:      p.Currency,
		Categories:    cats,
		CustomerEmail: payer.Email,
		SuccessURL:    frontendURL + "/payment/success",
		CancelURL:     frontendURL + "/payment/cancel",
	})
	if err != nil {
		if markErr := db.Model(p).Update("status", StatusFailed).Error; markErr != nil {
			logging.Log.WithError(markErr).Warn("marking payment failed")
		}
		return nil, apperr.Unavailable(err, "payment provider unavailable")
	}
	if err := db.Model(p).Update("session_id", session.ID).Error; err != nil {
		return nil, fmt.Errorf("storing session id: %w", err)
	}

	return &CheckoutResult{
		PaymentID:   p.ID,
		SessionID:   session.ID,
		URL:         session.URL,
		AmountCents: p.AmountCents,
		Amount:      p.Amount(),
		Currency:    p.Currency,
		Categories:  cats,
		Mock:        IsMock(),
	}, nil
}

func load(db *gorm.DB, id string) (*Payment, error) {
	var p Payment
	if err := db.Take(&p, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.NotFound("payment not found")
		}
		return nil, fmt.Errorf("loading payment %s: %w", id, err)
	}
	return &p, nil
}

// GetForOwner returns a payment only to the user who made it.
func GetForOwner(ctx context.Context, userID, id string) (*Payment, error) {
	p, err := load(database.DB.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, apperr.Forbidden("this payment belongs to another user")
	}
	return p, nil
}

// CompleteMock marks a payment completed without a processor. Only allowed while
// the mock gateway is installed.
func CompleteMock(ctx context.Context, userID, id string) (*Payment, error) {
	if !IsMock() {
		return nil, apperr.Forbidden("manual completion is only available in mock mode")
	}
	p, err := GetForOwner(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusCompleted {
		return p, nil
	}
	if err := database.DB.WithContext(ctx).Model(p).Updates(map[string]any{
		"status":       StatusCompleted,
		"provider_ref": "mock_" + p.ID,
	}).Error; err != nil {
		return nil, fmt.Errorf("completing payment: %w", err)
	}
	return GetForOwner(ctx, userID, id)
}

// HandleWebhook applies a verified processor event.
func HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := gateway.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, ErrWebhookUnsupported) {
			return err
		}
		return apperr.Invalid("webhook rejected: %v", err)
	}
	if ev.Kind == EventIgnored || ev.PaymentID == "" {
		return nil
	}

	status := StatusFailed
	if ev.Kind == EventCompleted {
		status = StatusCompleted
	}
	res := database.DB.WithContext(ctx).Model(&Payment{}).
		Where("id = ? AND status <> ?", ev.PaymentID, StatusCompleted).
		Updates(map[string]any{"status": status, "provider_ref": ev.ProviderRef})
	if res.Error != nil {
		return fmt.Errorf("applying webhook to %s: %w", ev.PaymentID, res.Error)
	}
	logging.Log.WithField("payment", ev.PaymentID).Infof("payment marked %s", status)
	return nil
}

// VerifyForSubmission checks that paymentID may fund a submission of cats by
// userID. It runs on the caller's transaction.
func VerifyForSubmission(tx *gorm.DB, userID, paymentID string, cats []category.Category) (*Payment, error) {
	p, err := load(tx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, apperr.Forbidden("this payment belongs to another user")
	}
	if p.Status != StatusCompleted {
		return nil, apperr.Invalid("payment is not completed")
	}
	if !category.Covers(p.Categories, cats) {
		return nil, apperr.Invalid("payment does not cover all selected categories")
	}
	return p, nil
}

// LinkVideo records which video a payment funded.
func LinkVideo(tx *gorm.DB, paymentID, videoID string) error {
	if err := tx.Model(&Payment{}).Where("id = ?", paymentID).Update("video_id", videoID).Error; err != nil {
		return fmt.Errorf("linking payment %s: %w", paymentID, err)
	}
	return nil
}

// UnlinkVideo clears references to a deleted video.
func UnlinkVideo(tx *gorm.DB, videoID string) error {
	return tx.Model(&Payment{}).Where("video_id = ?", videoID).Update("video_id", nil).Error
}
