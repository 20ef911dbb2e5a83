package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

const maxLineQuantity = 99

type CartHandler struct {
	sessions *cart.Sessions
	products catalog.Source
	timeout  time.Duration
}

func NewCartHandler(sessions *cart.Sessions, products catalog.Source, timeout time.Duration) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		products: products,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) cartFor(r *http.Request) *cart.Service {
	return h.sessions.For(r.Context(), identityOf(r))
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, status int, svc *cart.Service) {
	respondJSON(w, status, buildCartResponse(svc.Identity(), svc.Items(), requestLanguage(r)))
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r, http.StatusOK, h.cartFor(r))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 || req.Quantity > maxLineQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.products.GetProduct(ctx, req.ProductID)
	if errors.Is(err, catalog.ErrProductNotFound) || (err == nil && !product.IsActive) {
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not load product")
		return
	}

	svc := h.cartFor(r)
	svc.Add(ctx, *product, req.Quantity)
	h.respondCart(w, r, http.StatusCreated, svc)
}

// PUT /api/v1/cart/items/{product_id}
// A quantity of zero or below removes the line.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > maxLineQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not exceed 99")
		return
	}

	svc := h.cartFor(r)
	svc.SetQuantity(r.Context(), productID, req.Quantity)
	h.respondCart(w, r, http.StatusOK, svc)
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	svc := h.cartFor(r)
	svc.Remove(r.Context(), productID)
	h.respondCart(w, r, http.StatusOK, svc)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	svc := h.cartFor(r)
	svc.Clear(r.Context())
	h.respondCart(w, r, http.StatusOK, svc)
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}

// identityOf is the authenticated user, or the caller's guest session.
func identityOf(r *http.Request) domain.Identity {
	p := auth.FromContext(r.Context())
	if !p.IsGuest() {
		return p.Identity
	}
	return domain.NewGuestIdentity(getGuestSession(r.Context()))
}
