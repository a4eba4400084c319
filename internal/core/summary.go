package core

// CategoryTotal is an amount aggregated per category, as produced by the
// storage layer for summary and analytics queries.
type CategoryTotal struct {
	CategoryID string
	Name       string
	Icon       string
	Color      string
	Total      Money
	Count      int
}

// DayTotal is an amount aggregated per calendar day (YYYY-MM-DD).
type DayTotal struct {
	Day   string
	Total Money
}

// MonthTotal is an amount aggregated per calendar month.
type MonthTotal struct {
	Year  int
	Month int // 1-12
	Total Money
}
