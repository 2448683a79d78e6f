package services

import (
	"time"

	"github.com/shopspring/decimal"
)

const monthLabelLayout = "January 2006"

// monthLabel is the human-readable period key invoices are deduplicated on,
// e.g. "March 2026".
func monthLabel(t time.Time) string {
	return t.Format(monthLabelLayout)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// proRatedFirstMonthRent computes the partial rent for a lease's starting
// month. Days remaining include the start day itself. Rounding to two
// decimals happens here exactly once; downstream balance math uses the
// stored figure as-is.
func proRatedFirstMonthRent(monthlyRent decimal.Decimal, startDate time.Time) decimal.Decimal {
	total := daysInMonth(startDate)
	remaining := total - startDate.Day() + 1
	if remaining >= total {
		return monthlyRent
	}
	return monthlyRent.
		Div(decimal.NewFromInt(int64(total))).
		Mul(decimal.NewFromInt(int64(remaining))).
		Round(2)
}
