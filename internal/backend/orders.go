package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/orders"
)

func (c *Client) CreateOrder(ctx context.Context, req *domain.OrderRequest) (*domain.Order, error) {
	body := *req
	if body.Status == "" {
		body.Status = domain.OrderStatusPending
	}

	var order domain.Order
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "orders",
		body:   body,
		single: true,
		write:  true,
	}, &order)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

func (c *Client) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("orders?select=*&id=eq.%d", id),
		single: true,
	}, &order)
	if err != nil {
		return nil, orderError(err, "get order")
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	list := []*domain.Order{}
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "orders?select=*&order=created_at.desc",
	}, &list)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return list, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, orders.ErrInvalidStatus
	}

	var order domain.Order
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   fmt.Sprintf("orders?id=eq.%d", id),
		body:   map[string]domain.OrderStatus{"status": status},
		single: true,
		write:  true,
	}, &order)
	if err != nil {
		return nil, orderError(err, "update order status")
	}
	return &order, nil
}

func orderError(err error, op string) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.noRows() {
		return orders.ErrOrderNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
