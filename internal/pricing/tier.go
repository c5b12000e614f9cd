package pricing

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sourcemart/storefront-api/internal/obs"
)

// UnboundedQty is the practical upper bound used for open-ended tiers. It is
// a sentinel rather than literal infinity so tiers sort and serialise
// predictably.
const UnboundedQty = 999999

// Tier maps an inclusive quantity range to a unit price in base currency.
type Tier struct {
	MinQty     int             `json:"minQuantity"`
	MaxQty     int             `json:"maxQuantity"`
	Price      decimal.Decimal `json:"price"`
	SavingsPct decimal.Decimal `json:"savingsPercentage"`
}

// Contains reports whether qty falls inside the tier's inclusive range.
func (t Tier) Contains(qty int) bool {
	return qty >= t.MinQty && qty <= t.MaxQty
}

// ParseEncodings converts backend tier encodings into Tiers. Each encoding is
// a single-key map: "min-max" denotes an inclusive closed range and ">min"
// an open-ended range starting at min+1 and capped at UnboundedQty.
// Unrecognised key shapes are dropped and logged; slice order is preserved
// because resolution is first-match.
func ParseEncodings(encodings []map[string]float64, logger zerolog.Logger) []Tier {
	tiers := make([]Tier, 0, len(encodings))
	for _, enc := range encodings {
		for key, price := range enc {
			tier, ok := parseTierKey(key, price)
			if !ok {
				logger.Warn().Str("tier_key", key).Msg("unrecognised tier encoding dropped")
				if obs.TierEncodingDroppedTotal != nil {
					obs.TierEncodingDroppedTotal.Inc()
				}
				continue
			}
			tiers = append(tiers, tier)
		}
	}
	return tiers
}

func parseTierKey(key string, price float64) (Tier, bool) {
	key = strings.TrimSpace(key)
	if price < 0 {
		return Tier{}, false
	}
	if rest, ok := strings.CutPrefix(key, ">"); ok {
		min, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil || min < 0 {
			return Tier{}, false
		}
		return Tier{MinQty: min + 1, MaxQty: UnboundedQty, Price: decimal.NewFromFloat(price)}, true
	}
	lo, hi, ok := strings.Cut(key, "-")
	if !ok {
		return Tier{}, false
	}
	min, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil || min < 1 {
		return Tier{}, false
	}
	max, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil || max < min {
		return Tier{}, false
	}
	return Tier{MinQty: min, MaxQty: max, Price: decimal.NewFromFloat(price)}, true
}

// AttachSavings fills SavingsPct on each tier relative to the product's
// regular price. Tiers priced at or above the regular price keep zero.
func AttachSavings(tiers []Tier, regularPrice decimal.Decimal) []Tier {
	if !regularPrice.IsPositive() {
		return tiers
	}
	hundred := decimal.NewFromInt(100)
	for i := range tiers {
		if tiers[i].Price.GreaterThanOrEqual(regularPrice) {
			continue
		}
		off := regularPrice.Sub(tiers[i].Price).Div(regularPrice).Mul(hundred)
		tiers[i].SavingsPct = off.Round(2)
	}
	return tiers
}
