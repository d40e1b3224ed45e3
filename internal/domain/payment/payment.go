// Package payment defines the payment-provider contract used by checkout.
package payment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Intent is a server-side payment authorization minted for a single checkout
// attempt. The handle is handed to the authorization step and later serves as
// the order's payment reference. Intents are never reused across attempts.
type Intent struct {
	Amount   decimal.Decimal
	Currency string
	// AuthorizationHandle is the provider-issued client secret.
	AuthorizationHandle string
}

// Gateway is the external payment provider. ConfirmAuthorization covers both
// provider sub-calls (initialize, then confirm); it returns nil only when the
// payment was captured.
type Gateway interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (*Intent, error)
	ConfirmAuthorization(ctx context.Context, handle string) error
}

// InitError indicates the authorization step could not be initialized:
// malformed handle, rejected merchant context, provider misconfiguration.
// No charge occurred.
type InitError struct {
	Message string
}

func (e *InitError) Error() string {
	return fmt.Sprintf("payment initialization failed: %s", e.Message)
}

// DeclinedError covers both a card decline and the user abandoning the
// authorization step. The two are distinguished only by the message; neither
// warrants further automated action and no charge occurred.
type DeclinedError struct {
	Message string
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("payment declined: %s", e.Message)
}
