// Package pricing holds every money computation of the storefront so the
// sale-price rule and the shipping step are applied the same way in the cart,
// per line, and on orders.
package pricing

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	// ShippingFee is charged on orders below FreeShippingThreshold.
	ShippingFee = decimal.NewFromInt(30)
	// FreeShippingThreshold waives shipping entirely once reached.
	FreeShippingThreshold = decimal.NewFromInt(500)
)

func UnitPrice(p domain.Product) decimal.Decimal {
	return decimal.NewFromFloat(p.EffectivePrice())
}

func LineSubtotal(l domain.CartLine) decimal.Decimal {
	return UnitPrice(l.Product).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func Subtotal(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineSubtotal(l))
	}
	return total
}

// Shipping is a step function of the subtotal, not a sliding scale.
func Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return ShippingFee
}

func Total(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Add(Shipping(subtotal))
}
