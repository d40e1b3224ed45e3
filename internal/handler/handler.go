// Package handler exposes the checkout service over HTTP.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/SHEHROZFF/ecom-sub000/internal/domain/auth"
	"github.com/SHEHROZFF/ecom-sub000/internal/domain/cart"
	"github.com/SHEHROZFF/ecom-sub000/internal/domain/checkout"
	"github.com/SHEHROZFF/ecom-sub000/internal/domain/progress"
)

// Handler wires the HTTP surface to the domain: cart edits, checkout, the
// order-commit retry path, and lesson progress.
type Handler struct {
	carts        *cart.Store
	orchestrator *checkout.Orchestrator
	progress     *progress.Service
}

// New constructs a Handler with the required domain dependencies.
func New(carts *cart.Store, orchestrator *checkout.Orchestrator, progress *progress.Service) *Handler {
	return &Handler{
		carts:        carts,
		orchestrator: orchestrator,
		progress:     progress,
	}
}

// Register mounts all API routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.removeCartItem)
	mux.HandleFunc("POST /api/checkout", h.beginCheckout)
	mux.HandleFunc("POST /api/checkout/retry", h.retryOrderCommit)
	mux.HandleFunc("POST /api/progress", h.markProgress)
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

// owner extracts the authenticated customer identity, writing 401 when the
// request slipped past authentication.
func owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	info := auth.FromContext(r.Context())
	if info == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return info.ID, true
}
