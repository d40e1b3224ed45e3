package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/SHEHROZFF/ecom-sub000/internal/domain/cart"
)

type cartItemRequest struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	SubjectCode string          `json:"subjectCode"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	ImageRef    string          `json:"imageRef"`
}

type cartItemResponse struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	SubjectCode string          `json:"subjectCode"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	ImageRef    string          `json:"imageRef"`
}

type cartResponse struct {
	Items []cartItemResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, cartToResponse(h.carts.Snapshot(ownerID)))
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}
	if req.UnitPrice.IsNegative() {
		writeError(w, http.StatusUnprocessableEntity, "unitPrice must not be negative")
		return
	}

	h.carts.Add(ownerID, cart.LineItem{
		ProductID:   req.ProductID,
		Name:        req.Name,
		SubjectCode: req.SubjectCode,
		UnitPrice:   req.UnitPrice.Round(2),
		ImageRef:    req.ImageRef,
	})
	writeJSON(w, http.StatusCreated, cartToResponse(h.carts.Snapshot(ownerID)))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	if !h.carts.Remove(ownerID, r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "item not in cart")
		return
	}
	writeJSON(w, http.StatusOK, cartToResponse(h.carts.Snapshot(ownerID)))
}

func cartToResponse(snap cart.Snapshot) cartResponse {
	items := make([]cartItemResponse, len(snap.Items))
	for i, it := range snap.Items {
		items[i] = cartItemResponse{
			ProductID:   it.ProductID,
			Name:        it.Name,
			SubjectCode: it.SubjectCode,
			UnitPrice:   it.UnitPrice,
			ImageRef:    it.ImageRef,
		}
	}
	return cartResponse{Items: items, Total: snap.Total()}
}
