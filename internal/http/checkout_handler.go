package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/vibecommerce/storefront/internal/checkout"
	"github.com/vibecommerce/storefront/internal/domain"
	"github.com/vibecommerce/storefront/internal/orders"
)

// CheckoutProcessor is the slice of the checkout service the HTTP layer uses.
type CheckoutProcessor interface {
	Checkout(ctx context.Context, owner domain.Owner, customerName, customerEmail string) (*checkout.Receipt, error)
	ListOrders(ctx context.Context, owner domain.Owner) ([]*orders.Order, error)
}

type CheckoutHandler struct {
	service CheckoutProcessor
	timeout time.Duration
}

func NewCheckoutHandler(service CheckoutProcessor, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		timeout: timeout,
	}
}

type CheckoutRequestDTO struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	UserID        string `json:"userId"`
}

type CheckoutResponseDTO struct {
	Message string            `json:"message"`
	Receipt *checkout.Receipt `json:"receipt"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	receipt, err := h.service.Checkout(ctx, domain.GuestOwner(req.UserID), req.CustomerName, req.CustomerEmail)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrInvalidCustomer):
			respondError(w, http.StatusBadRequest, "invalid_customer", "customer name and email are required")
		case errors.Is(err, checkout.ErrInvalidEmail):
			respondError(w, http.StatusBadRequest, "invalid_email", "invalid email format")
		case errors.Is(err, checkout.ErrEmptyCart):
			respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty")
		default:
			handleServiceError(w, err)
		}
		return
	}

	respondJSON(w, http.StatusOK, CheckoutResponseDTO{
		Message: "Checkout successful",
		Receipt: receipt,
	})
}

func (h *CheckoutHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	owner := domain.GuestOwner(r.URL.Query().Get("userId"))

	result, err := h.service.ListOrders(ctx, owner)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "error fetching orders")
		return
	}
	if result == nil {
		result = []*orders.Order{}
	}

	respondJSON(w, http.StatusOK, result)
}
