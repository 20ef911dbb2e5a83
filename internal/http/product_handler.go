package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	products catalog.Source
	timeout  time.Duration
}

func NewProductHandler(products catalog.Source, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		products: products,
		timeout:  timeout,
	}
}

type ProductResponse struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Price          float64  `json:"price"`
	SalePrice      *float64 `json:"sale_price,omitempty"`
	EffectivePrice float64  `json:"effective_price"`
	FormattedPrice string   `json:"formatted_price"`
	Category       string   `json:"category,omitempty"`
	Images         []string `json:"images"`
	Stock          int      `json:"stock"`
	IsFeatured     bool     `json:"is_featured"`
}

type ProductsResponse struct {
	Products   []ProductResponse `json:"products"`
	PriceRange string            `json:"price_range,omitempty"`
}

func toProductResponse(p *domain.Product, lang domain.Language) ProductResponse {
	description := p.DescriptionAr
	switch lang {
	case domain.English:
		description = p.DescriptionEn
	case domain.French:
		description = p.DescriptionFr
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return ProductResponse{
		ID:             p.ID,
		Name:           p.DisplayName(lang),
		Description:    description,
		Price:          p.Price,
		SalePrice:      p.SalePrice,
		EffectivePrice: p.EffectivePrice(),
		FormattedPrice: pricing.Format(p.EffectivePrice(), lang),
		Category:       p.Category,
		Images:         images,
		Stock:          p.Stock,
		IsFeatured:     p.IsFeatured,
	}
}

// GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.products.ListProducts(ctx, true)
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not load products")
		return
	}

	lang := requestLanguage(r)
	products := make([]ProductResponse, len(res))
	for i, p := range res {
		products[i] = toProductResponse(p, lang)
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products, PriceRange: priceRange(products, lang)})
}

// priceRange spans the effective prices of the listing; empty for no products.
func priceRange(products []ProductResponse, lang domain.Language) string {
	if len(products) == 0 {
		return ""
	}
	low, high := products[0].EffectivePrice, products[0].EffectivePrice
	for _, p := range products[1:] {
		low = min(low, p.EffectivePrice)
		high = max(high, p.EffectivePrice)
	}
	return pricing.FormatRange(low, high, lang)
}

// GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "id must be a positive integer")
		return
	}

	p, err := h.products.GetProduct(ctx, id)
	if errors.Is(err, catalog.ErrProductNotFound) || (err == nil && !p.IsActive) {
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not load product")
		return
	}

	respondJSON(w, http.StatusOK, toProductResponse(p, requestLanguage(r)))
}
