package checkout

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrorKind classifies which checkout step failed. Every failed attempt maps
// to exactly one kind.
type ErrorKind string

const (
	// KindEmptyCart: local validation, no I/O performed.
	KindEmptyCart ErrorKind = "EMPTY_CART"
	// KindIntentUnavailable: the payment intent could not be minted. Nothing
	// was charged; a fresh attempt is fully safe.
	KindIntentUnavailable ErrorKind = "INTENT_UNAVAILABLE"
	// KindPaymentInitError: the authorization step could not be initialized.
	// Nothing was charged.
	KindPaymentInitError ErrorKind = "PAYMENT_INIT_ERROR"
	// KindPaymentDeclined: card declined or the user abandoned authorization.
	// Nothing was charged.
	KindPaymentDeclined ErrorKind = "PAYMENT_DECLINED"
	// KindOrderCommitFailed: payment was captured but the order was not
	// persisted. The payment reference is preserved in the failure so the
	// commit can be retried without re-charging.
	KindOrderCommitFailed ErrorKind = "ORDER_COMMIT_FAILED"
)

// Failure describes a terminal failed attempt.
type Failure struct {
	Kind    ErrorKind
	Message string
	// PaymentRef is set only for KindOrderCommitFailed: the captured payment's
	// authorization handle, needed to retry the order commit.
	PaymentRef string
}

func (f *Failure) Error() string {
	if f.Message == "" {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Retryable reports whether the failed attempt can be resumed via
// RetryOrderCommit instead of restarting from scratch.
func (f *Failure) Retryable() bool {
	return f.Kind == KindOrderCommitFailed && f.PaymentRef != ""
}

// ErrCheckoutInFlight is returned when BeginCheckout is called while the
// owner already has a non-terminal attempt.
var ErrCheckoutInFlight = errors.New("checkout already in flight")

// ErrNoRetryableAttempt is returned by RetryOrderCommit when the owner has no
// parked commit failure to resume.
var ErrNoRetryableAttempt = errors.New("no retryable checkout attempt")
