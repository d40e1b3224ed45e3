package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/SHEHROZFF/ecom-sub000/internal/domain/checkout"
	"github.com/SHEHROZFF/ecom-sub000/internal/domain/order"
	"github.com/SHEHROZFF/ecom-sub000/internal/presenter"
)

type orderItemResponse struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	SubjectCode string          `json:"subjectCode"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	Items      []orderItemResponse `json:"items"`
	TotalPrice decimal.Decimal     `json:"totalPrice"`
	PaymentRef string              `json:"paymentRef"`
	IsPaid     bool                `json:"isPaid"`
	PaidAt     time.Time           `json:"paidAt"`
}

// outcomeResponse is the wire form of a terminal checkout outcome. Kind is
// "Completed" or "Failed"; Reason and Retryable are set only on failure.
type outcomeResponse struct {
	Kind      string          `json:"kind"`
	Order     *orderResponse  `json:"order,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Message   string          `json:"message,omitempty"`
	Retryable bool            `json:"retryable,omitempty"`
	Alert     presenter.Model `json:"alert"`
}

func (h *Handler) beginCheckout(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	out, err := h.orchestrator.BeginCheckout(r.Context(), ownerID)
	if err != nil {
		writeCheckoutError(w, err)
		return
	}
	writeJSON(w, outcomeStatus(out), outcomeToResponse(out))
}

func (h *Handler) retryOrderCommit(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	out, err := h.orchestrator.RetryOrderCommit(r.Context(), ownerID)
	if err != nil {
		writeCheckoutError(w, err)
		return
	}
	writeJSON(w, outcomeStatus(out), outcomeToResponse(out))
}

func writeCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrCheckoutInFlight):
		writeError(w, http.StatusConflict, "a checkout is already in progress")
	case errors.Is(err, checkout.ErrNoRetryableAttempt):
		writeError(w, http.StatusNotFound, "no failed order commit to retry")
	default:
		writeError(w, http.StatusInternalServerError, "checkout failed")
	}
}

func outcomeStatus(out checkout.Outcome) int {
	if out.Completed {
		return http.StatusOK
	}
	switch out.Failure.Kind {
	case checkout.KindEmptyCart:
		return http.StatusBadRequest
	case checkout.KindPaymentDeclined:
		return http.StatusPaymentRequired
	default:
		// Intent, init, and commit failures are upstream problems.
		return http.StatusBadGateway
	}
}

func outcomeToResponse(out checkout.Outcome) outcomeResponse {
	resp := outcomeResponse{Alert: presenter.ModelFor(out)}
	if out.Completed {
		resp.Kind = "Completed"
		resp.Order = orderToResponse(out.Order)
		return resp
	}
	resp.Kind = "Failed"
	resp.Reason = string(out.Failure.Kind)
	resp.Message = out.Failure.Message
	resp.Retryable = out.Failure.Retryable()
	return resp
}

func orderToResponse(rec *order.Record) *orderResponse {
	items := make([]orderItemResponse, len(rec.Items))
	for i, it := range rec.Items {
		items[i] = orderItemResponse{
			ProductID:   it.ProductID,
			Name:        it.Name,
			SubjectCode: it.SubjectCode,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
		}
	}
	return &orderResponse{
		ID:         rec.ID,
		Items:      items,
		TotalPrice: rec.Total,
		PaymentRef: rec.PaymentRef,
		IsPaid:     rec.IsPaid,
		PaidAt:     rec.PaidAt,
	}
}
