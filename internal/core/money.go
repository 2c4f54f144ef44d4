// Package core holds the domain model shared by every other package:
// transactions, budgets, goals, reports and the pure money/aggregation
// helpers that operate on them.
package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a decimal string into a positive monetary amount.
// Both dot (12.34) and comma (12,34) separators are accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrValidation)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	return d, nil
}

// PercentOf returns pct percent of amount (pct on the 0-100 scale).
func PercentOf(pct, amount decimal.Decimal) decimal.Decimal {
	return pct.Mul(amount).Div(hundred)
}

// MinAmount returns the smaller of a and b.
func MinAmount(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// FormatUSD renders an amount the way notification copy expects it: "$500".
// Whole amounts drop the decimals, everything else keeps two places.
func FormatUSD(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return "$" + d.Truncate(0).String()
	}
	return "$" + d.StringFixed(2)
}

// MonthName returns the English month name for t, e.g. "January".
func MonthName(t time.Time) string {
	return t.Month().String()
}

// MonthKey builds the "Month-Year" aggregation key, e.g. "January-2025".
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%s-%d", MonthName(t), t.Year())
}
