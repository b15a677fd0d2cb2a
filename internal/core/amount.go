// Package core holds the ledger data model and the small helpers shared by
// every layer: amount parsing, rounding and display formatting.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a float. Both dot (12.34) and
// comma (12,34) separators are accepted, as is a leading sign because asset
// initial balances may be negative.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return d.InexactFloat64(), nil
}

// Round2 rounds half away from zero to two decimals. NaN and infinities
// pass through so that an incomplete rate table stays visible.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatAmount renders an amount as "12.5 USD": two decimals at most,
// trailing zeros dropped.
func FormatAmount(amount float64, currency string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "NaN " + currency
	}
	return decimal.NewFromFloat(amount).Round(2).String() + " " + currency
}
