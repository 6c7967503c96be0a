package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vibecommerce/storefront/internal/catalog"
	"github.com/vibecommerce/storefront/internal/reviews"
)

type ReviewHandler struct {
	store   reviews.Repository
	catalog ProductCatalog
	timeout time.Duration
}

func NewReviewHandler(store reviews.Repository, productCatalog ProductCatalog, timeout time.Duration) *ReviewHandler {
	return &ReviewHandler{
		store:   store,
		catalog: productCatalog,
		timeout: timeout,
	}
}

type AddReviewRequestDTO struct {
	ProductID int64  `json:"productId"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

func (h *ReviewHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	list, err := h.store.ListByProduct(ctx, productID, 50)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "error fetching reviews")
		return
	}

	respondJSON(w, http.StatusOK, reviews.Summarize(list))
}

func (h *ReviewHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == 0 || req.Rating == 0 || strings.TrimSpace(req.Comment) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "productId, rating and comment are required")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(w, http.StatusBadRequest, "invalid_rating", "rating must be between 1 and 5")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "userId is required")
		return
	}

	if _, err := h.catalog.GetProduct(ctx, req.ProductID); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "error validating product")
		return
	}

	review := &reviews.Review{
		ProductID: req.ProductID,
		UserID:    req.UserID,
		UserName:  req.UserName,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}

	if err := h.store.Create(ctx, review); err != nil {
		if errors.Is(err, reviews.ErrAlreadyReviewed) {
			respondError(w, http.StatusBadRequest, "already_reviewed", "you have already reviewed this product")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "error adding review")
		return
	}

	respondJSON(w, http.StatusCreated, review)
}

func (h *ReviewHandler) MarkHelpful(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	reviewID := chi.URLParam(r, "reviewId")

	review, err := h.store.MarkHelpful(ctx, reviewID)
	if err != nil {
		if errors.Is(err, reviews.ErrReviewNotFound) {
			respondError(w, http.StatusNotFound, "review_not_found", "review not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "error updating review")
		return
	}

	respondJSON(w, http.StatusOK, review)
}
