package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/pricing"
)

type CheckoutHandler struct {
	sessions *cart.Sessions
	checkout *checkout.Service
	metrics  *metrics.ServerMetrics
	logger   *slog.Logger
	timeout  time.Duration
}

func NewCheckoutHandler(sessions *cart.Sessions, svc *checkout.Service, m *metrics.ServerMetrics, logger *slog.Logger, timeout time.Duration) *CheckoutHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutHandler{
		sessions: sessions,
		checkout: svc,
		metrics:  m,
		logger:   logger,
		timeout:  timeout,
	}
}

type CheckoutResponseDTO struct {
	Order          *domain.Order `json:"order"`
	FormattedTotal string        `json:"formatted_total"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var form domain.DeliveryForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	lang := requestLanguage(r)
	svc := h.sessions.For(r.Context(), identityOf(r))

	order, err := h.checkout.Submit(ctx, svc, form, lang)

	var validationErr *checkout.ValidationError
	switch {
	case err == nil:
		h.count(metrics.OutcomeSuccess)
		respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
			Order:          order,
			FormattedTotal: pricing.Format(order.TotalAmount, lang),
		})
	case errors.As(err, &validationErr):
		h.count(metrics.OutcomeValidation)
		respondErrorDetails(w, http.StatusBadRequest, "validation_failed", err.Error(), strings.Join(validationErr.Fields, ","))
	case errors.Is(err, checkout.ErrEmptyCart):
		h.count(metrics.OutcomeEmpty)
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	default:
		h.count(metrics.OutcomeFailed)
		h.logger.Error("checkout failed", "request_id", getRequestID(r.Context()), "identity", identityOf(r).Key(), "error", err)
		respondError(w, http.StatusBadGateway, "submission_failed", checkout.ErrSubmissionFailed.Error())
	}
}

func (h *CheckoutHandler) count(outcome string) {
	if h.metrics != nil {
		h.metrics.Checkouts.WithLabelValues(outcome).Inc()
	}
}
