package compensation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount reads a form-entered amount. Empty or non-numeric input counts
// as zero; the validator is responsible for rejecting garbage where it
// matters.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SumComponents adds the five components and rounds to two decimal places.
func SumComponents(basic, housing, vehicle, fuel, other decimal.Decimal) decimal.Decimal {
	return basic.Add(housing).Add(vehicle).Add(fuel).Add(other).Round(2)
}

// ComputeTotal is the single source of truth for a period's total. It is used
// both for live form previews and before every commit; a caller-supplied
// total is never persisted as-is.
func ComputeTotal(basic, housing, vehicle, fuel, other string) decimal.Decimal {
	return SumComponents(
		ParseAmount(basic),
		ParseAmount(housing),
		ParseAmount(vehicle),
		ParseAmount(fuel),
		ParseAmount(other),
	)
}
