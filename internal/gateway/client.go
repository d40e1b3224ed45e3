// Package gateway is the HTTP client for the payment provider. It implements
// payment.Gateway: intents are minted per checkout attempt, and authorization
// is confirmed in two provider sub-calls (initialize, then confirm).
package gateway

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"

	"github.com/SHEHROZFF/ecom-sub000/internal/domain/payment"
)

// Config holds the provider endpoint and credentials.
type Config struct {
	BaseURL   string
	SecretKey string
	// Timeout is the HTTP client timeout; per-step deadlines come from the
	// caller's context.
	Timeout time.Duration
}

// response carries what the circuit breaker lets through: breaker failures
// are transport errors and 5xx responses, everything else reaches the caller.
type response struct {
	status int
	body   []byte
}

// Client talks to the payment provider over REST. A circuit breaker guards
// the provider: after consecutive transport/5xx failures the breaker opens
// and calls fail fast instead of waiting out timeouts.
type Client struct {
	http    *http.Client
	baseURL string
	secret  string
	cb      *gobreaker.CircuitBreaker[response]
}

var _ payment.Gateway = (*Client)(nil)

// NewClient creates a provider client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		secret:  cfg.SecretKey,
		cb: gobreaker.NewCircuitBreaker[response](gobreaker.Settings{
			Name:        "payment-provider",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// CreateIntent mints a payment intent for the given amount and returns its
// authorization handle.
func (c *Client) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (*payment.Intent, error) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("amount")
	// Provider expects minor units.
	e.Int64(amount.Shift(2).IntPart())
	e.FieldStart("currency")
	e.Str(currency)
	e.ObjEnd()

	resp, err := c.post(ctx, "/v1/payment-intents", e.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "create intent")
	}
	if resp.status != http.StatusOK && resp.status != http.StatusCreated {
		return nil, errors.Errorf("create intent: provider responded %d: %s", resp.status, apiMessage(resp.body))
	}

	handle, err := decodeClientSecret(resp.body)
	if err != nil {
		return nil, errors.Wrap(err, "create intent: malformed response")
	}

	return &payment.Intent{
		Amount:              amount,
		Currency:            currency,
		AuthorizationHandle: handle,
	}, nil
}

// ConfirmAuthorization runs both provider sub-calls for the handle. Both
// must succeed; initialize failures come back as *payment.InitError and
// declines or cancellations as *payment.DeclinedError.
func (c *Client) ConfirmAuthorization(ctx context.Context, handle string) error {
	body := encodeHandle(handle)

	resp, err := c.post(ctx, "/v1/payment-intents/initialize", body)
	if err != nil {
		return &payment.InitError{Message: err.Error()}
	}
	if resp.status != http.StatusOK {
		return &payment.InitError{Message: apiMessage(resp.body)}
	}

	resp, err = c.post(ctx, "/v1/payment-intents/confirm", body)
	if err != nil {
		return errors.Wrap(err, "confirm authorization")
	}

	status, message, err := decodeConfirm(resp.body)
	if err != nil {
		return errors.Wrap(err, "confirm authorization: malformed response")
	}
	switch status {
	case "succeeded":
		return nil
	case "declined", "canceled":
		return &payment.DeclinedError{Message: message}
	default:
		return errors.Errorf("confirm authorization: unexpected status %q: %s", status, message)
	}
}

// post sends a JSON request through the circuit breaker. Transport errors and
// 5xx responses count as breaker failures; 4xx responses pass through for
// the caller to interpret.
func (c *Client) post(ctx context.Context, path string, body []byte) (response, error) {
	return c.cb.Execute(func() (response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return response{}, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.secret)

		resp, err := c.http.Do(req)
		if err != nil {
			return response{}, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return response{}, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return response{}, errors.Errorf("provider responded %d", resp.StatusCode)
		}
		return response{status: resp.StatusCode, body: data}, nil
	})
}

func encodeHandle(handle string) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("authorization_handle")
	e.Str(handle)
	e.ObjEnd()
	return e.Bytes()
}

func decodeClientSecret(data []byte) (string, error) {
	var secret string
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "client_secret" {
			return d.Skip()
		}
		v, err := d.Str()
		secret = v
		return err
	}); err != nil {
		return "", err
	}
	return secret, nil
}

func decodeConfirm(data []byte) (status, message string, err error) {
	d := jx.DecodeBytes(data)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		var derr error
		switch key {
		case "status":
			status, derr = d.Str()
		case "message":
			message, derr = d.Str()
		default:
			derr = d.Skip()
		}
		return derr
	})
	return status, message, err
}

// apiMessage extracts the provider error message from a response body, or
// returns the raw body when it does not parse.
func apiMessage(data []byte) string {
	var message string
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "message" {
			return d.Skip()
		}
		v, err := d.Str()
		message = v
		return err
	}); err != nil || message == "" {
		return string(data)
	}
	return message
}
