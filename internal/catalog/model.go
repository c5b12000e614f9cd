package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/sourcemart/storefront-api/internal/pricing"
)

// Variant describes a selectable product option. Cart additions reference
// variants by index into this slice.
type Variant struct {
	SKU        string            `json:"sku"`
	Label      string            `json:"label"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Product is the public catalog payload. VariablePricing carries the raw
// tier encodings as they arrive from upstream feeds; Tiers is the parsed
// schedule attached when the product is loaded into the store.
type Product struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Slug            string               `json:"slug"`
	Brand           string               `json:"brand"`
	Category        string               `json:"category"`
	SalePrice       decimal.Decimal      `json:"salePrice"`
	RegularPrice    decimal.Decimal      `json:"regularPrice"`
	MOQ             int                  `json:"moq"`
	Stock           int                  `json:"stock"`
	VariablePricing []map[string]float64 `json:"variable_pricing"`
	Variants        []Variant            `json:"variants"`
	Images          []string             `json:"images"`
	Tiers           []pricing.Tier       `json:"priceTiers"`
}

// InStock reports whether the product can currently be ordered.
func (p *Product) InStock() bool {
	return p != nil && p.Stock > 0
}

// HasVariant reports whether idx refers to an existing variant. Products
// without variants accept only the zero index.
func (p *Product) HasVariant(idx int) bool {
	if p == nil || idx < 0 {
		return false
	}
	if len(p.Variants) == 0 {
		return idx == 0
	}
	return idx < len(p.Variants)
}
