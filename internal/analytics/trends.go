package analytics

import (
	"time"
)

const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// DefaultTrendMonths is the window used when the caller does not ask for one.
const DefaultTrendMonths = 6

var monthNames = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// MonthAgg is one calendar month of aggregated transaction flow.
type MonthAgg struct {
	Year  int
	Month int // 1-12
	Cents int64
	Count int
}

type TrendMonth struct {
	Month            string  `json:"month"`
	Year             int     `json:"year"`
	Expenses         float64 `json:"expenses"`
	Income           float64 `json:"income"`
	Savings          float64 `json:"savings"`
	TransactionCount int     `json:"transactionCount"`
}

type TrendDirectionInfo struct {
	Direction        string  `json:"direction"`
	PercentageChange float64 `json:"percentageChange"`
}

type TrendAverages struct {
	MonthlyExpense float64 `json:"monthlyExpense"`
	MonthlyIncome  float64 `json:"monthlyIncome"`
	MonthlySavings float64 `json:"monthlySavings"`
}

type TrendReport struct {
	MonthlyData []TrendMonth       `json:"monthlyData"`
	Trend       TrendDirectionInfo `json:"trend"`
	Averages    TrendAverages      `json:"averages"`
}

// AnalyzeTrends builds the month-by-month flow for the trailing window ending
// at the month containing now, zero-filling months without records. Direction
// compares the mean of the three most recent months against the mean of the
// three earliest; equal means report `stable` with zero change, and a zero
// earlier mean pins percentageChange to zero rather than dividing.
func AnalyzeTrends(expenses, income []MonthAgg, months int, now time.Time) TrendReport {
	if months <= 0 {
		months = DefaultTrendMonths
	}

	expenseByMonth := indexByMonth(expenses)
	incomeByMonth := indexByMonth(income)

	data := make([]TrendMonth, 0, months)
	for i := 0; i < months; i++ {
		date := time.Date(now.Year(), now.Month()-time.Month(months-1-i), 1, 0, 0, 0, 0, now.Location())
		key := monthKey(date.Year(), int(date.Month()))
		exp := expenseByMonth[key]
		inc := incomeByMonth[key]
		data = append(data, TrendMonth{
			Month:            monthNames[date.Month()-1],
			Year:             date.Year(),
			Expenses:         centsToUnits(exp.Cents),
			Income:           centsToUnits(inc.Cents),
			Savings:          centsToUnits(inc.Cents - exp.Cents),
			TransactionCount: exp.Count,
		})
	}

	recent := data
	if len(data) > 3 {
		recent = data[len(data)-3:]
	}
	previous := data
	if len(data) > 3 {
		previous = data[:3]
	}
	recentAvg := meanExpenses(recent)
	previousAvg := meanExpenses(previous)

	direction := TrendStable
	if recentAvg > previousAvg {
		direction = TrendIncreasing
	} else if recentAvg < previousAvg {
		direction = TrendDecreasing
	}
	percentageChange := 0.0
	if previousAvg > 0 {
		percentageChange = (recentAvg - previousAvg) / previousAvg * 100
	}

	var sumExp, sumInc, sumSav float64
	for _, m := range data {
		sumExp += m.Expenses
		sumInc += m.Income
		sumSav += m.Savings
	}
	n := float64(len(data))

	return TrendReport{
		MonthlyData: data,
		Trend: TrendDirectionInfo{
			Direction:        direction,
			PercentageChange: Round1(percentageChange),
		},
		Averages: TrendAverages{
			MonthlyExpense: Round2(sumExp / n),
			MonthlyIncome:  Round2(sumInc / n),
			MonthlySavings: Round2(sumSav / n),
		},
	}
}

func indexByMonth(ms []MonthAgg) map[int]MonthAgg {
	out := make(map[int]MonthAgg, len(ms))
	for _, m := range ms {
		out[monthKey(m.Year, m.Month)] = m
	}
	return out
}

func monthKey(year, month int) int {
	return year*100 + month
}

func meanExpenses(ms []TrendMonth) float64 {
	if len(ms) == 0 {
		return 0
	}
	var sum float64
	for _, m := range ms {
		sum += m.Expenses
	}
	return sum / float64(len(ms))
}
