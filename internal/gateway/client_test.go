package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHEHROZFF/ecom-sub000/internal/domain/payment"
)

// provider is a scriptable fake payment provider.
type provider struct {
	t *testing.T

	intentStatus  int
	intentBody    map[string]any
	initStatus    int
	initBody      map[string]any
	confirmStatus int
	confirmBody   map[string]any

	lastIntentReq map[string]any
	intentCalls   int
	initCalls     int
	confirmCalls  int
}

func (p *provider) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/payment-intents", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(p.t, "Bearer sk_test", r.Header.Get("Authorization"))
		p.intentCalls++
		_ = json.NewDecoder(r.Body).Decode(&p.lastIntentReq)
		respond(w, p.intentStatus, p.intentBody)
	})
	mux.HandleFunc("POST /v1/payment-intents/initialize", func(w http.ResponseWriter, _ *http.Request) {
		p.initCalls++
		respond(w, p.initStatus, p.initBody)
	})
	mux.HandleFunc("POST /v1/payment-intents/confirm", func(w http.ResponseWriter, _ *http.Request) {
		p.confirmCalls++
		respond(w, p.confirmStatus, p.confirmBody)
	})
	return mux
}

func respond(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(t *testing.T, p *provider) *Client {
	p.t = t
	srv := httptest.NewServer(p.handler())
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, SecretKey: "sk_test"})
}

func TestCreateIntent(t *testing.T) {
	p := &provider{
		intentStatus: http.StatusCreated,
		intentBody:   map[string]any{"id": "pi_1", "client_secret": "cs_live_1"},
	}
	c := newTestClient(t, p)

	intent, err := c.CreateIntent(context.Background(), decimal.RequireFromString("24.99"), "usd")
	require.NoError(t, err)
	assert.Equal(t, "cs_live_1", intent.AuthorizationHandle)
	assert.Equal(t, "usd", intent.Currency)

	// Amount crosses the wire in minor units.
	assert.Equal(t, float64(2499), p.lastIntentReq["amount"])
	assert.Equal(t, "usd", p.lastIntentReq["currency"])
}

func TestCreateIntent_ProviderError(t *testing.T) {
	p := &provider{
		intentStatus: http.StatusBadRequest,
		intentBody:   map[string]any{"message": "amount too small"},
	}
	c := newTestClient(t, p)

	_, err := c.CreateIntent(context.Background(), decimal.New(1, -2), "usd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount too small")
}

func TestCreateIntent_MissingClientSecret(t *testing.T) {
	p := &provider{
		intentStatus: http.StatusOK,
		intentBody:   map[string]any{"id": "pi_1"},
	}
	c := newTestClient(t, p)

	intent, err := c.CreateIntent(context.Background(), decimal.NewFromInt(10), "usd")
	require.NoError(t, err)
	// An empty handle is the orchestrator's problem to reject; the client
	// reports exactly what the provider returned.
	assert.Empty(t, intent.AuthorizationHandle)
}

func TestConfirmAuthorization_Succeeded(t *testing.T) {
	p := &provider{
		initStatus:    http.StatusOK,
		initBody:      map[string]any{"ok": true},
		confirmStatus: http.StatusOK,
		confirmBody:   map[string]any{"status": "succeeded"},
	}
	c := newTestClient(t, p)

	require.NoError(t, c.ConfirmAuthorization(context.Background(), "cs_live_1"))
	assert.Equal(t, 1, p.initCalls)
	assert.Equal(t, 1, p.confirmCalls)
}

func TestConfirmAuthorization_InitializeFails(t *testing.T) {
	p := &provider{
		initStatus: http.StatusUnprocessableEntity,
		initBody:   map[string]any{"message": "malformed client secret"},
	}
	c := newTestClient(t, p)

	err := c.ConfirmAuthorization(context.Background(), "garbage")
	var initErr *payment.InitError
	require.ErrorAs(t, err, &initErr)
	assert.Contains(t, initErr.Message, "malformed client secret")
	assert.Zero(t, p.confirmCalls, "confirm must not run after a failed initialize")
}

func TestConfirmAuthorization_Declined(t *testing.T) {
	p := &provider{
		initStatus:    http.StatusOK,
		initBody:      map[string]any{"ok": true},
		confirmStatus: http.StatusPaymentRequired,
		confirmBody:   map[string]any{"status": "declined", "message": "card declined"},
	}
	c := newTestClient(t, p)

	err := c.ConfirmAuthorization(context.Background(), "cs_live_1")
	var declined *payment.DeclinedError
	require.ErrorAs(t, err, &declined)
	assert.Equal(t, "card declined", declined.Message)
}

func TestConfirmAuthorization_UserCancelled(t *testing.T) {
	p := &provider{
		initStatus:    http.StatusOK,
		initBody:      map[string]any{"ok": true},
		confirmStatus: http.StatusOK,
		confirmBody:   map[string]any{"status": "canceled", "message": "user closed the payment sheet"},
	}
	c := newTestClient(t, p)

	err := c.ConfirmAuthorization(context.Background(), "cs_live_1")
	var declined *payment.DeclinedError
	require.ErrorAs(t, err, &declined)
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	p := &provider{
		intentStatus: http.StatusInternalServerError,
		intentBody:   map[string]any{"message": "boom"},
	}
	c := newTestClient(t, p)

	for i := 0; i < 5; i++ {
		_, err := c.CreateIntent(context.Background(), decimal.NewFromInt(10), "usd")
		require.Error(t, err)
	}

	// The breaker is open now: the call fails fast without reaching the
	// provider.
	before := p.intentCalls
	_, err := c.CreateIntent(context.Background(), decimal.NewFromInt(10), "usd")
	require.Error(t, err)
	assert.Equal(t, before, p.intentCalls)
}
