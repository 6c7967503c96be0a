package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vibecommerce/storefront/internal/catalog"
	"github.com/vibecommerce/storefront/internal/domain"
	"github.com/vibecommerce/storefront/internal/wishlist"
)

type WishlistHandler struct {
	store   wishlist.Repository
	catalog ProductCatalog
	timeout time.Duration
}

func NewWishlistHandler(store wishlist.Repository, productCatalog ProductCatalog, timeout time.Duration) *WishlistHandler {
	return &WishlistHandler{
		store:   store,
		catalog: productCatalog,
		timeout: timeout,
	}
}

type AddWishlistItemRequestDTO struct {
	ProductID int64  `json:"productId"`
	UserID    string `json:"userId"`
}

func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = domain.GuestSentinel
	}

	list, err := h.store.GetOrCreate(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "error fetching wishlist")
		return
	}

	respondJSON(w, http.StatusOK, list)
}

func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddWishlistItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "productId is required")
		return
	}
	if req.UserID == "" {
		req.UserID = domain.GuestSentinel
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "error validating product")
		return
	}

	list, err := h.store.AddItem(ctx, req.UserID, wishlist.Item{
		ID:        uuid.NewString(),
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.ImageURL,
	})
	if err != nil {
		if errors.Is(err, wishlist.ErrDuplicateItem) {
			respondError(w, http.StatusBadRequest, "duplicate_item", "product already in wishlist")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "error adding to wishlist")
		return
	}

	respondJSON(w, http.StatusOK, list)
}

func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = domain.GuestSentinel
	}
	itemID := chi.URLParam(r, "itemId")

	list, err := h.store.RemoveItem(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, wishlist.ErrWishlistNotFound) {
			respondError(w, http.StatusNotFound, "wishlist_not_found", "wishlist not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "error removing from wishlist")
		return
	}

	respondJSON(w, http.StatusOK, list)
}
