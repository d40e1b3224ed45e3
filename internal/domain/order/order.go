// Package order defines the durable order record and the service that
// persists it.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// LineItem mirrors a cart line item inside a persisted order. Quantity is
// always 1: the storefront enforces one unit per line item.
type LineItem struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	SubjectCode string          `json:"subject_code"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// Record is the canonical order returned once persisted. Immutable after
// creation.
type Record struct {
	ID         string
	Items      []LineItem
	Total      decimal.Decimal
	PaymentRef string
	IsPaid     bool
	PaidAt     time.Time
	CreatedAt  time.Time
}

// SubmitRequest holds the input for committing an order. PaymentRef is the
// authorization handle of an already-captured payment; submitting the same
// reference twice must yield the same record.
type SubmitRequest struct {
	Items      []LineItem
	Total      decimal.Decimal
	PaymentRef string
}

// Service durably persists orders.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*Record, error)
	FindByPaymentRef(ctx context.Context, ref string) (*Record, error)
}

// ErrNotFound is returned when no order exists for a payment reference.
var ErrNotFound = errors.New("order not found")

// transientError marks a submit failure that is safe to retry with the same
// payment reference.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient wraps err so IsTransient reports true for it.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked as safe to retry.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
