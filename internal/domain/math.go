package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholder is rendered wherever a numeric dependency is unavailable.
// Missing market data must never surface as 0 or NaN.
const Placeholder = "--"

// SafeParse parses a string into a decimal, returning zero for invalid or
// empty input.
func SafeParse(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SafeMultiply multiplies two string values, returning zero if either is invalid.
func SafeMultiply(a, b string) decimal.Decimal {
	return SafeParse(a).Mul(SafeParse(b))
}

// SafeSum adds two decimals.
func SafeSum(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b)
}

// ScaleToHuman converts a raw smallest-unit balance to human units by
// shifting the decimal point left by the asset's precision.
func ScaleToHuman(raw string, precision int) decimal.Decimal {
	return SafeParse(raw).Shift(int32(-precision))
}

// FormatAmount rounds to the asset's precision and strips trailing zeros.
// Returns "0" for a zero value.
func FormatAmount(d decimal.Decimal, precision int) string {
	s := d.Round(int32(precision)).StringFixed(int32(precision))
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
