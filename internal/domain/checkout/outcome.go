package checkout

import (
	"context"

	"github.com/SHEHROZFF/ecom-sub000/internal/domain/order"
)

// Outcome is the single terminal result of a checkout attempt, reported to
// the caller and to the presenter. Exactly one of Order and Failure is set.
type Outcome struct {
	AttemptID string
	Completed bool
	Order     *order.Record
	Failure   *Failure
}

// Presenter surfaces terminal outcomes to the user. It is a pure sink; the
// orchestrator never depends on what it does with the outcome.
type Presenter interface {
	Present(ctx context.Context, o Outcome)
}
