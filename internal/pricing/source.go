package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownSource is returned when a shipping source value is not recognised.
var ErrUnknownSource = errors.New("pricing: unknown shipping source")

// Source identifies the fulfilment option for a line item. Each source scales
// the unit price by a fixed multiplier; ex-china is the baseline.
type Source string

const (
	SourceExChina  Source = "ex-china"
	SourceExIndia  Source = "ex-india"
	SourceDoorstep Source = "doorstep"
)

var sourceMultipliers = map[Source]decimal.Decimal{
	SourceExChina:  decimal.NewFromInt(1),
	SourceExIndia:  decimal.NewFromFloat(1.15),
	SourceDoorstep: decimal.NewFromFloat(1.25),
}

// ParseSource validates a raw shipping source value.
func ParseSource(raw string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := sourceMultipliers[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, raw)
	}
	return s, nil
}

// Multiplier returns the price multiplier for the source. Unknown sources
// fall back to the ex-china baseline; callers are expected to have validated
// the value with ParseSource at the input layer.
func (s Source) Multiplier() decimal.Decimal {
	if m, ok := sourceMultipliers[s]; ok {
		return m
	}
	return sourceMultipliers[SourceExChina]
}

// Valid reports whether the source is one of the known options.
func (s Source) Valid() bool {
	_, ok := sourceMultipliers[s]
	return ok
}
