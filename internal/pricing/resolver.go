package pricing

import "github.com/shopspring/decimal"

// Resolve computes the effective unit price for a quantity. The first tier in
// slice order whose inclusive range contains qty supplies the base price;
// when no tier matches (or none exist) the fallback sale price is used. The
// shipping-source multiplier is applied after tier selection, never before:
// tier boundaries are defined in base-currency units. The result keeps full
// precision; use Display for presentation rounding.
func Resolve(tiers []Tier, qty int, source Source, fallback decimal.Decimal) decimal.Decimal {
	base := fallback
	for _, t := range tiers {
		if t.Contains(qty) {
			base = t.Price
			break
		}
	}
	return base.Mul(source.Multiplier())
}

// Extend returns the line total for qty units at the resolved unit price.
func Extend(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

// Display rounds a price to two decimal places for rendering. Aggregation
// must always use the unrounded value.
func Display(price decimal.Decimal) decimal.Decimal {
	return price.Round(2)
}
