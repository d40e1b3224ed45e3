package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SHEHROZFF/ecom-sub000/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, items, total, payment_ref, is_paid, paid_at)
	VALUES ($1, $2, $3, $4, TRUE, $5)
	ON CONFLICT (payment_ref) DO NOTHING`

	selectOrderByRefSQL = `SELECT id, items, total, payment_ref, is_paid, paid_at, created_at
	FROM orders WHERE payment_ref = $1`
)

var _ order.Service = (*OrderService)(nil)

// OrderService implements order.Service backed by PostgreSQL. The UNIQUE
// constraint on payment_ref makes Submit idempotent: resubmitting the same
// captured payment returns the already-persisted record instead of creating
// a duplicate.
type OrderService struct {
	pool *pgxpool.Pool
}

// NewOrderService returns an OrderService that uses the given pool.
func NewOrderService(pool *pgxpool.Pool) *OrderService {
	return &OrderService{pool: pool}
}

// Submit persists the order and returns the canonical record for its payment
// reference. Items are serialized to JSON for the JSONB column.
func (s *OrderService) Submit(ctx context.Context, req order.SubmitRequest) (*order.Record, error) {
	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		return nil, fmt.Errorf("marshaling order items: %w", err)
	}

	_, err = s.pool.Exec(ctx, insertOrderSQL,
		uuid.New().String(), itemsJSON, req.Total, req.PaymentRef, time.Now().UTC(),
	)
	if err != nil {
		return nil, classify(fmt.Errorf("creating order for payment %q: %w", req.PaymentRef, err))
	}

	// The insert may have been a no-op on conflict; either way the row for
	// this payment reference is now the canonical record.
	rec, err := s.FindByPaymentRef(ctx, req.PaymentRef)
	if err != nil {
		return nil, classify(err)
	}
	return rec, nil
}

// FindByPaymentRef returns the persisted order for a payment reference, or
// order.ErrNotFound.
func (s *OrderService) FindByPaymentRef(ctx context.Context, ref string) (*order.Record, error) {
	var (
		rec       order.Record
		itemsJSON []byte
	)
	err := s.pool.QueryRow(ctx, selectOrderByRefSQL, ref).Scan(
		&rec.ID, &itemsJSON, &rec.Total, &rec.PaymentRef, &rec.IsPaid, &rec.PaidAt, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("finding order by payment ref: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &rec.Items); err != nil {
		return nil, fmt.Errorf("unmarshaling order items: %w", err)
	}
	return &rec, nil
}

// classify marks connection-level and timeout errors as transient so the
// orchestrator's bounded retry only re-runs what is safe to re-run.
func classify(err error) error {
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return order.Transient(err)
	}
	return err
}
