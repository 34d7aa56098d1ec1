package payment

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/go2motion/contest-backend/internal/category"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/testutil"
	"github.com/go2motion/contest-backend/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStripe struct{}

func (fakeStripe) Name() string { return ProviderStripe }
func (fakeStripe) CreateSession(context.Context, CheckoutRequest) (*Session, error) {
	return &Session{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}
func (fakeStripe) ParseWebhook([]byte, string) (*WebhookEvent, error) {
	return &WebhookEvent{Kind: EventIgnored}, nil
}

func setupPaymentTest(t *testing.T) (context.Context, *user.User, *user.User) {
	t.Helper()
	testutil.SetupDB(t, &user.User{}, &Payment{})
	ConfigureModule(MockGateway{}, "http://front.test/", "EUR")

	participant := &user.User{Email: "p@example.com", Name: "Pat", PasswordHash: "x", Role: user.RoleParticipantIndividual}
	voter := &user.User{Email: "v@example.com", Name: "Val", PasswordHash: "x", Role: user.RoleVoter}
	require.NoError(t, database.DB.Create(participant).Error)
	require.NoError(t, database.DB.Create(voter).Error)
	return context.Background(), participant, voter
}

func TestCreateCheckout(t *testing.T) {
	ctx, participant, voter := setupPaymentTest(t)

	t.Run("Happy path - mock session with computed amount", func(t *testing.T) {
		res, err := CreateCheckout(ctx, participant, []string{"BEST_VIDEO", "BEST_DIRECTION", "BEST_VIDEO"})
		require.NoError(t, err)
		assert.True(t, res.Mock)
		assert.Equal(t, category.TeamFeeCents+category.IndividualBaseFeeCents, res.AmountCents)
		assert.Equal(t, "eur", res.Currency)
		assert.True(t, strings.HasPrefix(res.SessionID, "mock_session_"))

		u, err := url.Parse(res.URL)
		require.NoError(t, err)
		assert.Equal(t, "/payment/success", u.Path)
		assert.Equal(t, res.PaymentID, u.Query().Get("payment_id"))

		p, err := GetForOwner(ctx, participant.ID, res.PaymentID)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, p.Status)
		assert.Equal(t, res.SessionID, p.SessionID)
	})

	t.Run("Unhappy path - voters cannot pay", func(t *testing.T) {
		_, err := CreateCheckout(ctx, voter, []string{"BEST_ART"})
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("Unhappy path - unknown category", func(t *testing.T) {
		_, err := CreateCheckout(ctx, participant, []string{"BEST_SOUND"})
		assert.True(t, apperr.Is(err, apperr.KindInvalid))
	})
}

func TestCompleteAndVerify(t *testing.T) {
	ctx, participant, voter := setupPaymentTest(t)
	res, err := CreateCheckout(ctx, participant, []string{"BEST_ART", "BEST_COLOR"})
	require.NoError(t, err)

	_, err = VerifyForSubmission(database.DB, participant.ID, res.PaymentID, []category.Category{category.BestArt})
	assert.True(t, apperr.Is(err, apperr.KindInvalid), "pending payment must not fund a submission")

	_, err = CompleteMock(ctx, voter.ID, res.PaymentID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	p, err := CompleteMock(ctx, participant.ID, res.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, p.Status)

	t.Run("Happy path - subset of paid categories", func(t *testing.T) {
		_, err := VerifyForSubmission(database.DB, participant.ID, res.PaymentID, []category.Category{category.BestColor})
		assert.NoError(t, err)
	})
	t.Run("Unhappy path - category not paid for", func(t *testing.T) {
		_, err := VerifyForSubmission(database.DB, participant.ID, res.PaymentID, []category.Category{category.BestVideo})
		assert.True(t, apperr.Is(err, apperr.KindInvalid))
	})
	t.Run("Unhappy path - someone else's payment", func(t *testing.T) {
		_, err := VerifyForSubmission(database.DB, voter.ID, res.PaymentID, []category.Category{category.BestArt})
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})
	t.Run("Unhappy path - missing payment", func(t *testing.T) {
		_, err := VerifyForSubmission(database.DB, participant.ID, "nope", []category.Category{category.BestArt})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestCompleteRefusedOutsideMockMode(t *testing.T) {
	ctx, participant, _ := setupPaymentTest(t)
	ConfigureModule(fakeStripe{}, "", "")
	t.Cleanup(func() { ConfigureModule(MockGateway{}, "", "") })

	res, err := CreateCheckout(ctx, participant, []string{"BEST_EDITING"})
	require.NoError(t, err)
	assert.False(t, res.Mock)

	_, err = CompleteMock(ctx, participant.ID, res.PaymentID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}
