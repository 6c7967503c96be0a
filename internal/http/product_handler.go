package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vibecommerce/storefront/internal/catalog"
)

// ProductCatalog is the read surface the product endpoints expose.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
	ListProducts(ctx context.Context, page, limit int) (*catalog.ProductPage, error)
	SearchProducts(ctx context.Context, q string, limit int) ([]*catalog.Product, error)
	SimilarProducts(ctx context.Context, id int64, limit int) ([]*catalog.Product, error)
}

type ProductHandler struct {
	catalog ProductCatalog
	timeout time.Duration
}

func NewProductHandler(productCatalog ProductCatalog, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: productCatalog,
		timeout: timeout,
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}

	result, err := h.catalog.ListProducts(ctx, page, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "error fetching products")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query().Get("q")
	if q == "" {
		respondJSON(w, http.StatusOK, []*catalog.Product{})
		return
	}

	products, err := h.catalog.SearchProducts(ctx, q, 50)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "error searching products")
		return
	}
	if products == nil {
		products = []*catalog.Product{}
	}

	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	product, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "error fetching product")
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Similar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	similar, err := h.catalog.SimilarProducts(ctx, id, 4)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "error fetching similar products")
		return
	}
	if similar == nil {
		similar = []*catalog.Product{}
	}

	respondJSON(w, http.StatusOK, similar)
}
