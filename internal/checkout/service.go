package checkout

import (
	"context"
	"log/slog"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// OrderCreator is the external order service.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req *domain.OrderRequest) (*domain.Order, error)
}

// Cart is the part of the cart facade checkout needs.
type Cart interface {
	Items() []domain.CartLine
	Settle(ctx context.Context, ordered []domain.CartLine)
}

// Notifier is told about placed orders. Its failures never fail a checkout.
type Notifier interface {
	OrderPlaced(ctx context.Context, order *domain.Order) error
}

type Service struct {
	orders   OrderCreator
	notifier Notifier
	logger   *slog.Logger
}

func NewService(orders OrderCreator, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{orders: orders, notifier: notifier, logger: logger}
}

// Submit turns the cart and form into exactly one order. Validation and empty
// cart errors happen before any network call. On a failed submission the
// cart is left as it was; on success the submitted lines are settled out of
// it, which empties a cart nobody touched meanwhile. There is no retry and no
// idempotency key, so two calls place two orders.
func (s *Service) Submit(ctx context.Context, cart Cart, form domain.DeliveryForm, lang domain.Language) (*domain.Order, error) {
	if err := Validate(form); err != nil {
		return nil, err
	}

	lines := cart.Items()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	draft := BuildDraft(lines, form, lang)
	order, err := s.orders.CreateOrder(ctx, draft.Request())
	if err != nil {
		s.logger.Error("order submission failed", "error", err, "items", len(draft.Items), "total", draft.Total.String())
		return nil, &SubmissionError{Cause: err}
	}

	cart.Settle(ctx, lines)
	s.logger.Info("order placed", "order_id", order.ID, "total", order.TotalAmount)

	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(ctx, order); err != nil {
			s.logger.Warn("order notification failed", "order_id", order.ID, "error", err)
		}
	}
	return order, nil
}
