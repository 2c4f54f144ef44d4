package core

import "github.com/shopspring/decimal"

// SpendingSummary aggregates expense totals by calendar month and by
// category. It is built by SummarizeSpending and never shared between
// callers; every sweep gets its own accumulators.
type SpendingSummary struct {
	ByMonth    map[string]decimal.Decimal // keyed "Month-Year"
	ByCategory map[Category]decimal.Decimal
}

// SummarizeSpending folds the USD amounts of the given transactions into a
// fresh summary. Non-expense entries are skipped so callers can pass an
// unfiltered slice.
func SummarizeSpending(txs []Transaction) SpendingSummary {
	s := SpendingSummary{
		ByMonth:    make(map[string]decimal.Decimal),
		ByCategory: make(map[Category]decimal.Decimal),
	}
	for _, t := range txs {
		if t.Type != Expense {
			continue
		}
		key := MonthKey(t.Date)
		s.ByMonth[key] = s.ByMonth[key].Add(t.ConvertedAmount)
		s.ByCategory[t.Category] = s.ByCategory[t.Category].Add(t.ConvertedAmount)
	}
	return s
}

// MonthTotal returns the aggregated spend for the month containing the key,
// zero when nothing was recorded.
func (s SpendingSummary) MonthTotal(key string) decimal.Decimal {
	return s.ByMonth[key]
}

// Recommendation is a budget-adjustment suggestion produced by trend
// analysis. Category is "Monthly Budget" for the overall comparison.
type Recommendation struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}
