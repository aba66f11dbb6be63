package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryTotal is the summed amount for one category
type CategoryTotal struct {
	Category Category
	Total    decimal.Decimal
}

// MonthTotal is the summed amount for one calendar month
type MonthTotal struct {
	Year  int
	Month int
	Total decimal.Decimal
}

// CategoryRangeTotal is the sum and count of one category over a date range
type CategoryRangeTotal struct {
	Total decimal.Decimal
	Count int64
}

// Summary is the report built for the summary endpoint
type Summary struct {
	// ByCategory covers the current month up to the reference instant
	ByCategory []CategoryTotal
	// Monthly covers the owner's whole history, oldest first
	Monthly []MonthTotal
	// LastMonthTotals covers the previous calendar month
	LastMonthTotals map[Category]decimal.Decimal
}

// SummaryExport points at a stored CSV copy of a summary
type SummaryExport struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}
