// Package checkout drives a cart through payment-intent acquisition, payment
// authorization, and durable order commit. The flow spans the payment
// provider and the order store with no transaction covering both, so
// consistency is engineered explicitly: a per-attempt state machine, one
// failure kind per step, and an idempotent commit-retry path keyed by the
// captured payment reference.
package checkout

import (
	"context"
	"sync"
	"time"

	retry "github.com/avast/retry-go"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SHEHROZFF/ecom-sub000/internal/domain/cart"
	"github.com/SHEHROZFF/ecom-sub000/internal/domain/order"
	"github.com/SHEHROZFF/ecom-sub000/internal/domain/payment"
)

// Config holds per-step deadlines and the commit retry policy. Zero values
// fall back to defaults.
type Config struct {
	Currency string

	// IntentTimeout bounds the payment-intent request. A timeout surfaces as
	// IntentUnavailable.
	IntentTimeout time.Duration
	// ConfirmTimeout bounds the authorization step.
	ConfirmTimeout time.Duration
	// SubmitTimeout bounds a single order-commit attempt. A timeout surfaces
	// as OrderCommitFailed with the payment reference preserved.
	SubmitTimeout time.Duration

	// SubmitAttempts and SubmitDelay control the bounded in-step retry of
	// transient order-store errors. The commit is idempotent per payment
	// reference, so retrying here can never double-create an order.
	SubmitAttempts uint
	SubmitDelay    time.Duration
}

func (c *Config) setDefaults() {
	if c.Currency == "" {
		c.Currency = "usd"
	}
	if c.IntentTimeout <= 0 {
		c.IntentTimeout = 10 * time.Second
	}
	if c.ConfirmTimeout <= 0 {
		c.ConfirmTimeout = 2 * time.Minute
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = 10 * time.Second
	}
	if c.SubmitAttempts == 0 {
		c.SubmitAttempts = 3
	}
	if c.SubmitDelay <= 0 {
		c.SubmitDelay = 200 * time.Millisecond
	}
}

// attempt is the unit of work: one cart snapshot moving through the state
// machine. Owned exclusively by the orchestrator for its lifetime.
type attempt struct {
	id       string
	owner    string
	snapshot cart.Snapshot
	intent   *payment.Intent
	record   *order.Record
	state    State
	failure  *Failure
}

func (a *attempt) to(next State) {
	if !a.state.CanTransitionTo(next) {
		// The flow is strictly sequential, so an illegal transition is a
		// programming error, not a runtime condition.
		panic("checkout: illegal transition " + a.state.String() + " -> " + next.String())
	}
	a.state = next
}

func (a *attempt) fail(kind ErrorKind, message, paymentRef string) {
	a.failure = &Failure{Kind: kind, Message: message, PaymentRef: paymentRef}
	a.to(StateFailed)
}

func (a *attempt) outcome() Outcome {
	return Outcome{
		AttemptID: a.id,
		Completed: a.state == StateCompleted,
		Order:     a.record,
		Failure:   a.failure,
	}
}

// Orchestrator runs checkout attempts. At most one attempt per owner is in
// flight at a time; a failed commit is parked per owner so its payment
// reference can be resumed without re-charging.
type Orchestrator struct {
	cfg       Config
	carts     *cart.Store
	gateway   payment.Gateway
	orders    order.Service
	presenter Presenter

	mu     sync.Mutex
	active map[string]struct{}
	parked map[string]*attempt
}

// New creates an Orchestrator with explicit, injected collaborators.
func New(cfg Config, carts *cart.Store, gateway payment.Gateway, orders order.Service, presenter Presenter) *Orchestrator {
	cfg.setDefaults()
	return &Orchestrator{
		cfg:       cfg,
		carts:     carts,
		gateway:   gateway,
		orders:    orders,
		presenter: presenter,
		active:    make(map[string]struct{}),
		parked:    make(map[string]*attempt),
	}
}

// BeginCheckout snapshots the owner's cart and drives a fresh attempt to a
// terminal state. The returned error is non-nil only when the attempt never
// started (another one is in flight); every started attempt terminates in
// the Outcome, with the cart cleared only on completion.
func (o *Orchestrator) BeginCheckout(ctx context.Context, owner string) (Outcome, error) {
	a := &attempt{
		id:    uuid.New().String(),
		owner: owner,
		state: StateIdle,
	}

	o.mu.Lock()
	if _, busy := o.active[owner]; busy {
		o.mu.Unlock()
		return Outcome{}, ErrCheckoutInFlight
	}
	o.active[owner] = struct{}{}
	// Starting over forfeits any parked commit failure: a fresh attempt gets
	// a fresh intent, never a stale authorization handle.
	delete(o.parked, owner)
	a.snapshot = o.carts.Snapshot(owner)
	o.mu.Unlock()

	o.run(ctx, a)
	return o.finish(ctx, a), nil
}

// run executes the steps in order, stopping at the first failure.
func (o *Orchestrator) run(ctx context.Context, a *attempt) {
	if a.snapshot.Empty() {
		// Pure local validation: no external service is contacted.
		a.fail(KindEmptyCart, "cart is empty", "")
		return
	}
	a.to(StateIntentRequested)

	if !o.acquireIntent(ctx, a) {
		return
	}
	a.to(StateIntentAcquired)

	a.to(StateAuthorizationPending)
	if !o.confirmAuthorization(ctx, a) {
		return
	}
	a.to(StateAuthorizationConfirmed)

	a.to(StateOrderSubmitting)
	o.submitOrder(ctx, a)
}

func (o *Orchestrator) acquireIntent(ctx context.Context, a *attempt) bool {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.IntentTimeout)
	defer cancel()

	intent, err := o.gateway.CreateIntent(ctx, a.snapshot.Total(), o.cfg.Currency)
	if err != nil {
		a.fail(KindIntentUnavailable, err.Error(), "")
		return false
	}
	if intent == nil || intent.AuthorizationHandle == "" {
		// A partial handle must never reach the authorization step.
		a.fail(KindIntentUnavailable, "payment provider returned no authorization handle", "")
		return false
	}
	a.intent = intent
	return true
}

func (o *Orchestrator) confirmAuthorization(ctx context.Context, a *attempt) bool {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.ConfirmTimeout)
	defer cancel()

	err := o.gateway.ConfirmAuthorization(ctx, a.intent.AuthorizationHandle)
	if err == nil {
		return true
	}

	var declined *payment.DeclinedError
	if errors.As(err, &declined) {
		a.fail(KindPaymentDeclined, declined.Message, "")
		return false
	}
	// Initialization failures and infrastructure errors alike: nothing was
	// charged, the user restarts from scratch.
	a.fail(KindPaymentInitError, err.Error(), "")
	return false
}

func (o *Orchestrator) submitOrder(ctx context.Context, a *attempt) {
	rec, err := o.submit(ctx, a.snapshot, a.intent.AuthorizationHandle)
	if err != nil {
		// Payment is already captured. Preserve the reference so the commit
		// can be retried without a second authorization.
		a.fail(KindOrderCommitFailed, err.Error(), a.intent.AuthorizationHandle)
		return
	}
	a.record = rec
	a.to(StateCompleted)
}

// submit commits the order, retrying transient store errors. Safe to call
// repeatedly with the same payment reference: the store is idempotent on it.
func (o *Orchestrator) submit(ctx context.Context, snap cart.Snapshot, paymentRef string) (*order.Record, error) {
	items := make([]order.LineItem, len(snap.Items))
	for i, it := range snap.Items {
		items[i] = order.LineItem{
			ProductID:   it.ProductID,
			Name:        it.Name,
			SubjectCode: it.SubjectCode,
			UnitPrice:   it.UnitPrice,
			Quantity:    1,
		}
	}
	req := order.SubmitRequest{
		Items:      items,
		Total:      snap.Total(),
		PaymentRef: paymentRef,
	}

	var rec *order.Record
	err := retry.Do(
		func() error {
			subCtx, cancel := context.WithTimeout(ctx, o.cfg.SubmitTimeout)
			defer cancel()

			var err error
			rec, err = o.orders.Submit(subCtx, req)
			return err
		},
		retry.Attempts(o.cfg.SubmitAttempts),
		retry.Delay(o.cfg.SubmitDelay),
		retry.RetryIf(order.IsTransient),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// RetryOrderCommit resumes the owner's parked commit failure: the order is
// resubmitted with the preserved payment reference, without touching the
// payment provider. Succeeding here clears the cart and completes the
// original attempt.
func (o *Orchestrator) RetryOrderCommit(ctx context.Context, owner string) (Outcome, error) {
	o.mu.Lock()
	if _, busy := o.active[owner]; busy {
		o.mu.Unlock()
		return Outcome{}, ErrCheckoutInFlight
	}
	a, ok := o.parked[owner]
	if !ok {
		o.mu.Unlock()
		return Outcome{}, ErrNoRetryableAttempt
	}
	o.active[owner] = struct{}{}
	delete(o.parked, owner)
	o.mu.Unlock()

	// The one sanctioned way out of Failed: the payment was captured, so the
	// attempt resumes at order submission rather than restarting.
	a.failure = nil
	a.state = StateOrderSubmitting

	// The earlier failure may have lost the response, not the write. Check
	// before resubmitting.
	if rec, err := o.orders.FindByPaymentRef(ctx, a.intent.AuthorizationHandle); err == nil {
		a.record = rec
		a.to(StateCompleted)
	} else {
		o.submitOrder(ctx, a)
	}
	return o.finish(ctx, a), nil
}

// finish releases the owner slot, applies terminal side effects, reports the
// outcome to the presenter, and returns it.
func (o *Orchestrator) finish(ctx context.Context, a *attempt) Outcome {
	out := a.outcome()

	o.mu.Lock()
	delete(o.active, a.owner)
	if a.failure != nil && a.failure.Retryable() {
		o.parked[a.owner] = a
	}
	o.mu.Unlock()

	lg := zctx.From(ctx)
	if out.Completed {
		// The cart is cleared here and only here.
		o.carts.Clear(a.owner)
		lg.Info("Checkout completed",
			zap.String("attempt_id", a.id),
			zap.String("order_id", a.record.ID),
			zap.String("total", a.record.Total.StringFixed(2)),
		)
	} else {
		lg.Warn("Checkout failed",
			zap.String("attempt_id", a.id),
			zap.String("kind", string(a.failure.Kind)),
			zap.String("state", a.state.String()),
		)
	}

	o.presenter.Present(ctx, out)
	return out
}
