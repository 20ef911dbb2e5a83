package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("products?select=*&id=eq.%d", id),
		single: true,
	}, &p)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.noRows() {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (c *Client) ListProducts(ctx context.Context, activeOnly bool) ([]*domain.Product, error) {
	path := "products?select=*&order=created_at.desc"
	if activeOnly {
		path += "&is_active=eq.true"
	}

	list := []*domain.Product{}
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &list); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return list, nil
}
