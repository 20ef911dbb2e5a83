package checkout

import (
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

// OrderDraft exists only for the duration of one submission.
type OrderDraft struct {
	Form     domain.DeliveryForm
	Items    []domain.OrderItem
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Validate reports blank required fields. Email and notes are optional.
func Validate(form domain.DeliveryForm) error {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"customer_name", form.Name},
		{"customer_phone", form.Phone},
		{"customer_address", form.Address},
		{"customer_city", form.City},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func BuildDraft(lines []domain.CartLine, form domain.DeliveryForm, lang domain.Language) *OrderDraft {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.OrderItem{
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
			Price:     pricing.UnitPrice(l.Product).InexactFloat64(),
			Name:      l.Product.DisplayName(lang),
		})
	}

	subtotal := pricing.Subtotal(lines)
	return &OrderDraft{
		Form:     form,
		Items:    items,
		Subtotal: subtotal,
		Shipping: pricing.Shipping(subtotal),
		Total:    pricing.Total(subtotal),
	}
}

func (d *OrderDraft) Request() *domain.OrderRequest {
	return &domain.OrderRequest{
		CustomerName:    strings.TrimSpace(d.Form.Name),
		CustomerPhone:   strings.TrimSpace(d.Form.Phone),
		CustomerEmail:   strings.TrimSpace(d.Form.Email),
		CustomerAddress: strings.TrimSpace(d.Form.Address),
		CustomerCity:    strings.TrimSpace(d.Form.City),
		Notes:           strings.TrimSpace(d.Form.Notes),
		Items:           d.Items,
		TotalAmount:     d.Total.InexactFloat64(),
		Status:          domain.OrderStatusPending,
	}
}
