package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vibecommerce/storefront/internal/domain"
)

// CartOperations is the slice of the cart service the HTTP layer uses.
type CartOperations interface {
	GetCart(ctx context.Context, owner domain.Owner) (*domain.Cart, error)
	AddItem(ctx context.Context, owner domain.Owner, productID int64, quantity int) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, owner domain.Owner, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, owner domain.Owner, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, owner domain.Owner) (*domain.Cart, error)
	Merge(ctx context.Context, guestOwner, targetOwner domain.Owner) (*domain.Cart, error)
}

type CartHandler struct {
	service CartOperations
	timeout time.Duration
}

func NewCartHandler(service CartOperations, timeout time.Duration) *CartHandler {
	return &CartHandler{
		service: service,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	UserID    string `json:"userId"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int    `json:"quantity"`
	UserID   string `json:"userId"`
}

type MergeRequestDTO struct {
	GuestCartID string `json:"guestCartId"`
	UserID      string `json:"userId"`
}

// Carts are guest-owned until a merge promotes them; the session layer that
// would mint authenticated identities lives outside this service.
func cartOwner(userID string) domain.Owner {
	return domain.GuestOwner(userID)
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	owner := cartOwner(r.URL.Query().Get("userId"))

	cart, err := h.service.GetCart(ctx, owner)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == 0 || req.Quantity == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "productId and quantity are required")
		return
	}

	cart, err := h.service.AddItem(ctx, cartOwner(req.UserID), req.ProductID, req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID := chi.URLParam(r, "itemId")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "valid quantity is required")
		return
	}

	cart, err := h.service.UpdateQuantity(ctx, cartOwner(req.UserID), itemID, req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID := chi.URLParam(r, "itemId")
	owner := cartOwner(r.URL.Query().Get("userId"))

	cart, err := h.service.RemoveItem(ctx, owner, itemID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	owner := cartOwner(r.URL.Query().Get("userId"))

	cart, err := h.service.Clear(ctx, owner)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) Merge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req MergeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.GuestCartID == "" || req.UserID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "guestCartId and userId are required")
		return
	}

	cart, err := h.service.Merge(ctx, domain.GuestOwner(req.GuestCartID), domain.AuthenticatedOwner(req.UserID))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}
