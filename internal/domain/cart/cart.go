// Package cart holds per-customer cart state and the immutable snapshots
// checkout operates on.
package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a single priced entry in a cart. Carts hold one unit per line
// item; quantity is implied.
type LineItem struct {
	ProductID   string
	Name        string
	SubjectCode string
	UnitPrice   decimal.Decimal
	ImageRef    string
}

// Snapshot is an immutable view of a cart taken when checkout starts. Later
// mutations of the live cart do not affect it.
type Snapshot struct {
	Items   []LineItem
	TakenAt time.Time
}

// Empty reports whether the snapshot holds no items.
func (s Snapshot) Empty() bool {
	return len(s.Items) == 0
}

// Total returns the sum of unit prices rounded to 2 decimal places. It is
// always derived from the items, never stored.
func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.UnitPrice)
	}
	return total.Round(2)
}
