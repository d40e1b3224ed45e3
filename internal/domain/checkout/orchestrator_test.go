package checkout

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHEHROZFF/ecom-sub000/internal/domain/cart"
	"github.com/SHEHROZFF/ecom-sub000/internal/domain/order"
	"github.com/SHEHROZFF/ecom-sub000/internal/domain/payment"
)

// --- Mock implementations ---

type mockGateway struct {
	intentErr   error
	emptyHandle bool
	confirmErr  error

	intentCalls  atomic.Int32
	confirmCalls atomic.Int32

	// intentStarted/intentRelease let a test hold an attempt open inside the
	// intent step.
	intentStarted chan struct{}
	intentRelease chan struct{}
}

func (m *mockGateway) CreateIntent(_ context.Context, amount decimal.Decimal, currency string) (*payment.Intent, error) {
	m.intentCalls.Add(1)
	if m.intentStarted != nil {
		close(m.intentStarted)
		<-m.intentRelease
	}
	if m.intentErr != nil {
		return nil, m.intentErr
	}
	handle := "cs_test_123"
	if m.emptyHandle {
		handle = ""
	}
	return &payment.Intent{
		Amount:              amount,
		Currency:            currency,
		AuthorizationHandle: handle,
	}, nil
}

func (m *mockGateway) ConfirmAuthorization(_ context.Context, _ string) error {
	m.confirmCalls.Add(1)
	return m.confirmErr
}

type mockOrderService struct {
	submitErrs  []error // consumed one per call; nil entry means success
	submitCalls int
	lastReq     order.SubmitRequest
	byRef       map[string]*order.Record
}

func (m *mockOrderService) Submit(_ context.Context, req order.SubmitRequest) (*order.Record, error) {
	m.submitCalls++
	m.lastReq = req
	if len(m.submitErrs) > 0 {
		err := m.submitErrs[0]
		m.submitErrs = m.submitErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	rec := &order.Record{
		ID:         "ord_1",
		Items:      req.Items,
		Total:      req.Total,
		PaymentRef: req.PaymentRef,
		IsPaid:     true,
		PaidAt:     time.Now().UTC(),
	}
	if m.byRef == nil {
		m.byRef = make(map[string]*order.Record)
	}
	m.byRef[req.PaymentRef] = rec
	return rec, nil
}

func (m *mockOrderService) FindByPaymentRef(_ context.Context, ref string) (*order.Record, error) {
	if rec, ok := m.byRef[ref]; ok {
		return rec, nil
	}
	return nil, order.ErrNotFound
}

type mockPresenter struct {
	outcomes []Outcome
}

func (m *mockPresenter) Present(_ context.Context, o Outcome) {
	m.outcomes = append(m.outcomes, o)
}

// --- Helpers ---

const owner = "cust-1"

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newCart(prices ...string) *cart.Store {
	carts := cart.NewStore()
	for i, p := range prices {
		carts.Add(owner, cart.LineItem{
			ProductID:   "p" + string(rune('1'+i)),
			Name:        "Course",
			SubjectCode: "MATH",
			UnitPrice:   price(p),
		})
	}
	return carts
}

func newOrchestrator(carts *cart.Store, gw *mockGateway, orders *mockOrderService) (*Orchestrator, *mockPresenter) {
	p := &mockPresenter{}
	o := New(Config{
		SubmitAttempts: 3,
		SubmitDelay:    time.Millisecond,
	}, carts, gw, orders, p)
	return o, p
}

// --- Tests ---

func TestBeginCheckout_EmptyCart(t *testing.T) {
	gw := &mockGateway{}
	orders := &mockOrderService{}
	o, pres := newOrchestrator(cart.NewStore(), gw, orders)

	out, err := o.BeginCheckout(context.Background(), owner)
	require.NoError(t, err)
	require.False(t, out.Completed)
	assert.Equal(t, KindEmptyCart, out.Failure.Kind)

	// Pure local validation: no external service contacted.
	assert.Zero(t, gw.intentCalls.Load())
	assert.Zero(t, gw.confirmCalls.Load())
	assert.Zero(t, orders.submitCalls)
	assert.Len(t, pres.outcomes, 1)
}

func TestBeginCheckout_Completed(t *testing.T) {
	carts := newCart("19.99", "5.00")
	gw := &mockGateway{}
	orders := &mockOrderService{}
	o, pres := newOrchestrator(carts, gw, orders)

	out, err := o.BeginCheckout(context.Background(), owner)
	require.NoError(t, err)
	require.True(t, out.Completed)
	require.NotNil(t, out.Order)

	assert.True(t, price("24.99").Equal(out.Order.Total), "got %s", out.Order.Total)
	assert.Equal(t, "cs_test_123", out.Order.PaymentRef)
	assert.True(t, out.Order.IsPaid)
	require.Len(t, out.Order.Items, 2)
	assert.Equal(t, 1, out.Order.Items[0].Quantity)

	// Side effects fire at completion and only there.
	assert.Zero(t, carts.Len(owner))
	require.Len(t, pres.outcomes, 1)
	assert.True(t, pres.outcomes[0].Completed)
}

func TestBeginCheckout_IntentError(t *testing.T) {
	carts := newCart("10.00")
	gw := &mockGateway{intentErr: errors.New("provider down")}
	orders := &mockOrderService{}
	o, _ := newOrchestrator(carts, gw, orders)

	out, err := o.BeginCheckout(context.Background(), owner)
	require.NoError(t, err)
	require.False(t, out.Completed)
	assert.Equal(t, KindIntentUnavailable, out.Failure.Kind)

	assert.Equal(t, 1, carts.Len(owner))
	assert.Zero(t, gw.confirmCalls.Load())
	assert.Zero(t, orders.submitCalls)
}

func TestBeginCheckout_EmptyAuthorizationHandle(t *testing.T) {
	carts := newCart("10.00")
	gw := &mockGateway{emptyHandle: true}
	o, _ := newOrchestrator(carts, gw, &mockOrderService{})

	out, err := o.BeginCheckout(context.Background(), owner)
	require.NoError(t, err)
	require.False(t, out.Completed)
	assert.Equal(t, KindIntentUnavailable, out.Failure.Kind)
	assert.Zero(t, gw.confirmCalls.Load())
}

func TestBeginCheckout_PaymentInitError(t *testing.T) {
	carts := newCart("10.00")
	gw := &mockGateway{confirmErr: &payment.InitError{Message: "bad merchant context"}}
	orders := &mockOrderService{}
	o, _ := newOrchestrator(carts, gw, orders)

	out, err := o.BeginCheckout(context.Background(), owner)
	require.NoError(t, err)
	require.False(t, out.Completed)
	assert.Equal(t, KindPaymentInitError, out.Failure.Kind)
	assert.Zero(t, orders.submitCalls)
}

func TestBeginCheckout_PaymentDeclined(t *testing.T) {
	carts := newCart("10.00")
	gw := &mockGateway{confirmErr: &payment.DeclinedError{Message: "card declined"}}
	orders := &mockOrderService{}
	o, _ := newOrchestrator(carts, gw, orders)

	out, err := o.BeginCheckout(context.Background(), owner)
	require.NoError(t, err)
	require.False(t, out.Completed)
	assert.Equal(t, KindPaymentDeclined, out.Failure.Kind)
	assert.Equal(t, "card declined", out.Failure.Message)

	// No charge happened, nothing to retry: cart stays, order never touched.
	assert.Equal(t, 1, carts.Len(owner))
	assert.Zero(t, orders.submitCalls)
	assert.False(t, out.Failure.Retryable())
}

func TestBeginCheckout_OrderCommitFailed(t *testing.T) {
	carts := newCart("25.00")
	gw := &mockGateway{}
	orders := &mockOrderService{submitErrs: []error{errors.New("orders table gone")}}
	o, _ := newOrchestrator(carts, gw, orders)

	out, err := o.BeginCheckout(context.Background(), owner)
	require.NoError(t, err)
	require.False(t, out.Completed)
	assert.Equal(t, KindOrderCommitFailed, out.Failure.Kind)

	// Payment was captured; the reference survives for the retry path.
	assert.Equal(t, "cs_test_123", out.Failure.PaymentRef)
	assert.True(t, out.Failure.Retryable())
	assert.Equal(t, 1, carts.Len(owner))
}

func TestBeginCheckout_TransientSubmitRetried(t *testing.T) {
	carts := newCart("25.00")
	gw := &mockGateway{}
	orders := &mockOrderService{submitErrs: []error{
		order.Transient(errors.New("connection reset")),
		order.Transient(errors.New("connection reset")),
		nil,
	}}
	o, _ := newOrchestrator(carts, gw, orders)

	out, err := o.BeginCheckout(context.Background(), owner)
	require.NoError(t, err)
	assert.True(t, out.Completed)
	assert.Equal(t, 3, orders.submitCalls)
	assert.Equal(t, int32(1), gw.confirmCalls.Load())
}

func TestBeginCheckout_NonTransientSubmitNotRetried(t *testing.T) {
	carts := newCart("25.00")
	orders := &mockOrderService{submitErrs: []error{errors.New("constraint violation")}}
	o, _ := newOrchestrator(carts, &mockGateway{}, orders)

	out, err := o.BeginCheckout(context.Background(), owner)
	require.NoError(t, err)
	require.False(t, out.Completed)
	assert.Equal(t, 1, orders.submitCalls)
}

func TestRetryOrderCommit(t *testing.T) {
	carts := newCart("25.00")
	gw := &mockGateway{}
	orders := &mockOrderService{submitErrs: []error{errors.New("orders table gone")}}
	o, pres := newOrchestrator(carts, gw, orders)

	out, err := o.BeginCheckout(context.Background(), owner)
	require.NoError(t, err)
	require.Equal(t, KindOrderCommitFailed, out.Failure.Kind)

	// Store recovered; retry resumes the commit with the preserved reference.
	retried, err := o.RetryOrderCommit(context.Background(), owner)
	require.NoError(t, err)
	require.True(t, retried.Completed)
	assert.Equal(t, "cs_test_123", retried.Order.PaymentRef)

	// No second authorization: the gateway was not touched again.
	assert.Equal(t, int32(1), gw.confirmCalls.Load())
	assert.Equal(t, int32(1), gw.intentCalls.Load())
	assert.Zero(t, carts.Len(owner))
	assert.Len(t, pres.outcomes, 2)
}

func TestRetryOrderCommit_FindsLostWrite(t *testing.T) {
	carts := newCart("25.00")
	gw := &mockGateway{}
	// The write landed but the response was lost: Submit errored while the
	// record exists under the payment reference.
	orders := &mockOrderService{submitErrs: []error{errors.New("response lost")}}
	o, _ := newOrchestrator(carts, gw, orders)

	_, err := o.BeginCheckout(context.Background(), owner)
	require.NoError(t, err)
	orders.byRef = map[string]*order.Record{
		"cs_test_123": {ID: "ord_9", PaymentRef: "cs_test_123", IsPaid: true},
	}
	submitsBefore := orders.submitCalls

	out, err := o.RetryOrderCommit(context.Background(), owner)
	require.NoError(t, err)
	require.True(t, out.Completed)
	assert.Equal(t, "ord_9", out.Order.ID)
	assert.Equal(t, submitsBefore, orders.submitCalls, "no resubmit when the record already exists")
}

func TestRetryOrderCommit_NothingParked(t *testing.T) {
	o, _ := newOrchestrator(cart.NewStore(), &mockGateway{}, &mockOrderService{})

	_, err := o.RetryOrderCommit(context.Background(), owner)
	require.ErrorIs(t, err, ErrNoRetryableAttempt)
}

func TestBeginCheckout_FreshAttemptDropsParkedFailure(t *testing.T) {
	carts := newCart("25.00")
	gw := &mockGateway{}
	orders := &mockOrderService{submitErrs: []error{errors.New("down"), nil}}
	o, _ := newOrchestrator(carts, gw, orders)

	out, err := o.BeginCheckout(context.Background(), owner)
	require.NoError(t, err)
	require.Equal(t, KindOrderCommitFailed, out.Failure.Kind)

	// Restarting forfeits the parked reference and mints a fresh intent.
	out, err = o.BeginCheckout(context.Background(), owner)
	require.NoError(t, err)
	assert.True(t, out.Completed)
	assert.Equal(t, int32(2), gw.intentCalls.Load())

	_, err = o.RetryOrderCommit(context.Background(), owner)
	require.ErrorIs(t, err, ErrNoRetryableAttempt)
}

func TestBeginCheckout_RejectsOverlappingAttempt(t *testing.T) {
	carts := newCart("10.00")
	gw := &mockGateway{
		intentStarted: make(chan struct{}),
		intentRelease: make(chan struct{}),
	}
	o, _ := newOrchestrator(carts, gw, &mockOrderService{})

	done := make(chan Outcome, 1)
	go func() {
		out, _ := o.BeginCheckout(context.Background(), owner)
		done <- out
	}()

	// Second call arrives while the first is inside the intent step.
	<-gw.intentStarted
	_, err := o.BeginCheckout(context.Background(), owner)
	require.ErrorIs(t, err, ErrCheckoutInFlight)

	close(gw.intentRelease)
	out := <-done
	assert.True(t, out.Completed)

	// Only the first attempt reached the provider.
	assert.Equal(t, int32(1), gw.intentCalls.Load())
}

func TestBeginCheckout_SnapshotIsolatedFromCartEdits(t *testing.T) {
	carts := newCart("10.00")
	gw := &mockGateway{
		intentStarted: make(chan struct{}),
		intentRelease: make(chan struct{}),
	}
	orders := &mockOrderService{}
	o, _ := newOrchestrator(carts, gw, orders)

	done := make(chan Outcome, 1)
	go func() {
		out, _ := o.BeginCheckout(context.Background(), owner)
		done <- out
	}()

	// An item added mid-flight must not leak into the attempt.
	<-gw.intentStarted
	carts.Add(owner, cart.LineItem{ProductID: "late", UnitPrice: price("99.99")})
	close(gw.intentRelease)

	out := <-done
	require.True(t, out.Completed)
	assert.True(t, price("10.00").Equal(out.Order.Total), "got %s", out.Order.Total)
	require.Len(t, out.Order.Items, 1)
}
