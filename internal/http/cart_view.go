package http

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
)

type CartLineDTO struct {
	ProductID int64          `json:"product_id"`
	Name      string         `json:"name"`
	Quantity  int            `json:"quantity"`
	UnitPrice float64        `json:"unit_price"`
	LineTotal float64        `json:"line_total"`
	Product   domain.Product `json:"product"`
}

type CartTotalsDTO struct {
	Subtotal     float64 `json:"subtotal"`
	Shipping     float64 `json:"shipping"`
	Total        float64 `json:"total"`
	FreeShipping bool    `json:"free_shipping"`
}

type FormattedTotalsDTO struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Total    string `json:"total"`
}

type CartResponseDTO struct {
	Identity   string             `json:"identity"`
	Language   domain.Language    `json:"language"`
	Items      []CartLineDTO      `json:"items"`
	TotalItems int                `json:"total_items"`
	Totals     CartTotalsDTO      `json:"totals"`
	Formatted  FormattedTotalsDTO `json:"formatted"`
}

func buildCartResponse(identity domain.Identity, lines []domain.CartLine, lang domain.Language) CartResponseDTO {
	items := make([]CartLineDTO, 0, len(lines))
	count := 0
	for _, l := range lines {
		items = append(items, CartLineDTO{
			ProductID: l.Product.ID,
			Name:      l.Product.DisplayName(lang),
			Quantity:  l.Quantity,
			UnitPrice: pricing.UnitPrice(l.Product).InexactFloat64(),
			LineTotal: pricing.LineSubtotal(l).InexactFloat64(),
			Product:   l.Product,
		})
		count += l.Quantity
	}

	subtotal := pricing.Subtotal(lines)
	shipping := pricing.Shipping(subtotal)
	total := pricing.Total(subtotal)

	return CartResponseDTO{
		Identity:   identity.Key(),
		Language:   lang,
		Items:      items,
		TotalItems: count,
		Totals: CartTotalsDTO{
			Subtotal:     subtotal.InexactFloat64(),
			Shipping:     shipping.InexactFloat64(),
			Total:        total.InexactFloat64(),
			FreeShipping: shipping.IsZero(),
		},
		Formatted: FormattedTotalsDTO{
			Subtotal: pricing.Format(subtotal.InexactFloat64(), lang),
			Shipping: pricing.Format(shipping.InexactFloat64(), lang),
			Total:    pricing.Format(total.InexactFloat64(), lang),
		},
	}
}
