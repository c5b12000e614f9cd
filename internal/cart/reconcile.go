package cart

import (
	"github.com/shopspring/decimal"

	"github.com/sourcemart/storefront-api/internal/catalog"
	"github.com/sourcemart/storefront-api/internal/obs"
	"github.com/sourcemart/storefront-api/internal/pricing"
)

// LineItem is a render-ready cart row. Product is nil until the product
// batch resolves; unresolved rows keep their quantity and source so the
// row still renders as a placeholder instead of disappearing.
type LineItem struct {
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	Source    pricing.Source   `json:"source"`
	Product   *catalog.Product `json:"product"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
	LineTotal *decimal.Decimal `json:"lineTotal,omitempty"`
}

// Summary is the priced view of a cart. Subtotal carries full precision;
// rounding happens at the response boundary. Provisional is set while any
// line item still awaits its product record, meaning the subtotal covers
// only the resolved rows.
type Summary struct {
	Items       []LineItem      `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Provisional bool            `json:"provisional"`
}

// Reconcile merges authoritative cart entries with the product records
// fetched for them. One line item per entry, in insertion order. Entries
// whose product is missing from the map are kept with a nil Product and
// excluded from the subtotal.
func Reconcile(items []Item, products map[string]*catalog.Product) Summary {
	summary := Summary{
		Items:    make([]LineItem, 0, len(items)),
		Subtotal: decimal.Zero,
	}
	for _, item := range items {
		line := LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Source:    item.Source,
		}
		product := products[item.ProductID]
		if product == nil {
			summary.Provisional = true
			summary.Items = append(summary.Items, line)
			recordReconcile(false)
			continue
		}
		line.Product = product
		if !tierMatches(product.Tiers, item.Quantity) && obs.PricingFallbackTotal != nil {
			obs.PricingFallbackTotal.Inc()
		}
		unit := pricing.Resolve(product.Tiers, item.Quantity, item.Source, product.SalePrice)
		total := pricing.Extend(unit, item.Quantity)
		line.UnitPrice = &unit
		line.LineTotal = &total
		summary.Subtotal = summary.Subtotal.Add(total)
		summary.Items = append(summary.Items, line)
		recordReconcile(true)
	}
	return summary
}

// Display returns a copy of the summary with all money rounded for
// presentation.
func (s Summary) Display() Summary {
	out := s
	out.Items = make([]LineItem, len(s.Items))
	copy(out.Items, s.Items)
	for i := range out.Items {
		if out.Items[i].UnitPrice != nil {
			unit := pricing.Display(*out.Items[i].UnitPrice)
			out.Items[i].UnitPrice = &unit
		}
		if out.Items[i].LineTotal != nil {
			total := pricing.Display(*out.Items[i].LineTotal)
			out.Items[i].LineTotal = &total
		}
	}
	out.Subtotal = pricing.Display(s.Subtotal)
	return out
}

func tierMatches(tiers []pricing.Tier, qty int) bool {
	for _, t := range tiers {
		if t.Contains(qty) {
			return true
		}
	}
	return false
}

func recordReconcile(resolved bool) {
	if obs.ReconcileItemsTotal == nil {
		return
	}
	if resolved {
		obs.ReconcileItemsTotal.WithLabelValues("true").Inc()
	} else {
		obs.ReconcileItemsTotal.WithLabelValues("false").Inc()
	}
}
