package domain

import "time"

// Product is the catalog row as served by the hosted backend. The cart keeps
// a copy of whatever was supplied at add time and never revalidates it.
type Product struct {
	ID            int64     `json:"id"`
	NameAr        string    `json:"name_ar"`
	NameEn        string    `json:"name_en"`
	NameFr        string    `json:"name_fr"`
	DescriptionAr string    `json:"description_ar,omitempty"`
	DescriptionEn string    `json:"description_en,omitempty"`
	DescriptionFr string    `json:"description_fr,omitempty"`
	Price         float64   `json:"price"`
	SalePrice     *float64  `json:"sale_price,omitempty"`
	Category      string    `json:"category,omitempty"`
	Images        []string  `json:"images"`
	Stock         int       `json:"stock"`
	IsActive      bool      `json:"is_active"`
	IsFeatured    bool      `json:"is_featured"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EffectivePrice is the price used everywhere money is computed: the sale
// price when one is set, the base price otherwise.
func (p Product) EffectivePrice() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// DisplayName returns the name in lang, falling back to English then Arabic.
func (p Product) DisplayName(lang Language) string {
	var name string
	switch lang {
	case English:
		name = p.NameEn
	case French:
		name = p.NameFr
	default:
		name = p.NameAr
	}
	if name != "" {
		return name
	}
	if p.NameEn != "" {
		return p.NameEn
	}
	return p.NameAr
}
