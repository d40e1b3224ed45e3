// Package presenter maps checkout outcomes to user-facing alert models.
// Orchestration logic never touches presentation: the mapping is a pure
// function of the Outcome value.
package presenter

import (
	"context"
	"fmt"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/SHEHROZFF/ecom-sub000/internal/domain/checkout"
)

// Model is everything an alert needs to render a terminal checkout outcome.
type Model struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Icon    string `json:"icon"`
	// CanRetryOrder tells the client to offer "try again" against the retry
	// endpoint instead of restarting checkout.
	CanRetryOrder bool `json:"can_retry_order"`
}

// ModelFor maps an outcome to its alert model.
func ModelFor(o checkout.Outcome) Model {
	if o.Completed {
		return Model{
			Title:   "Order placed",
			Message: fmt.Sprintf("Your order %s is confirmed.", o.Order.ID),
			Icon:    "success",
		}
	}

	switch o.Failure.Kind {
	case checkout.KindEmptyCart:
		return Model{
			Title:   "Cart is empty",
			Message: "Add a course to your cart before checking out.",
			Icon:    "info",
		}
	case checkout.KindIntentUnavailable:
		return Model{
			Title:   "Checkout unavailable",
			Message: "We could not start the payment. You have not been charged; please try again.",
			Icon:    "error",
		}
	case checkout.KindPaymentInitError:
		return Model{
			Title:   "Payment setup failed",
			Message: "The payment screen could not be opened. You have not been charged.",
			Icon:    "error",
		}
	case checkout.KindPaymentDeclined:
		return Model{
			Title:   "Payment not completed",
			Message: messageOr(o, "Your payment was declined or cancelled. Your cart is unchanged."),
			Icon:    "warning",
		}
	case checkout.KindOrderCommitFailed:
		return Model{
			Title:         "Order not confirmed",
			Message:       "Your payment went through but the order could not be saved. Tap retry; you will not be charged again.",
			Icon:          "error",
			CanRetryOrder: true,
		}
	default:
		return Model{
			Title:   "Checkout failed",
			Message: messageOr(o, "Something went wrong. Your cart is unchanged."),
			Icon:    "error",
		}
	}
}

func messageOr(o checkout.Outcome, fallback string) string {
	if o.Failure != nil && o.Failure.Message != "" {
		return o.Failure.Message
	}
	return fallback
}

// Log is the production presenter: a sink that records the alert that would
// be shown.
type Log struct{}

var _ checkout.Presenter = Log{}

// Present logs the alert model for the outcome.
func (Log) Present(ctx context.Context, o checkout.Outcome) {
	m := ModelFor(o)
	zctx.From(ctx).Info("Checkout alert",
		zap.String("attempt_id", o.AttemptID),
		zap.String("title", m.Title),
		zap.String("icon", m.Icon),
		zap.Bool("can_retry_order", m.CanRetryOrder),
	)
}
