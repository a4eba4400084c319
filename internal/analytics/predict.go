package analytics

import (
	"sort"
	"time"

	"smartspend/internal/core"
)

// Blend weights for the monthly estimate.
const (
	weightTrend         = 0.6
	weightHistorical    = 0.3
	weightSubscriptions = 0.1
)

type CurrentMonthSnapshot struct {
	Spent         float64 `json:"spent"`
	Income        float64 `json:"income"`
	DaysElapsed   int     `json:"daysElapsed"`
	DaysRemaining int     `json:"daysRemaining"`
	DailyAverage  float64 `json:"dailyAverage"`
}

type PredictionFigures struct {
	Estimated             float64 `json:"estimated"`
	TrendBased            float64 `json:"trendBased"`
	HistoricalBased       float64 `json:"historicalBased"`
	UpcomingSubscriptions float64 `json:"upcomingSubscriptions"`
}

type MonthComparison struct {
	Month int     `json:"month"`
	Year  int     `json:"year"`
	Total float64 `json:"total"`
}

type PredictionComparison struct {
	VsLastMonths      []MonthComparison `json:"vsLastMonths"`
	AverageLastMonths float64           `json:"averageLastMonths"`
}

// MonthlyPrediction is the full monthly spend forecast.
type MonthlyPrediction struct {
	CurrentMonth       CurrentMonthSnapshot `json:"currentMonth"`
	Prediction         PredictionFigures    `json:"prediction"`
	Comparison         PredictionComparison `json:"comparison"`
	SavingsOpportunity *float64             `json:"savingsOpportunity"`
}

// PredictionInput carries the already-aggregated records for PredictMonthly.
// PriorMonths holds up to three calendar months preceding the current one.
type PredictionInput struct {
	SpentCents    int64
	IncomeCents   int64
	PriorMonths   []core.MonthTotal
	Subscriptions []core.Subscription
	Now           time.Time
}

// PredictMonthly forecasts total spending for the month containing Now.
// The estimate blends a trend projection (60%), the historical average of
// the prior months (30%), and the trend adjusted by subscriptions still to
// bill this month (10%). SavingsOpportunity is nil when the month has no
// income; an estimate above income yields a negative value, not an error.
func PredictMonthly(in PredictionInput) MonthlyPrediction {
	now := in.Now
	currentDay := now.Day()
	daysInMonth := DaysInMonth(now)
	daysRemaining := daysInMonth - currentDay

	spent := centsToUnits(in.SpentCents)
	income := centsToUnits(in.IncomeCents)
	dailyAverage := 0.0
	if currentDay > 0 {
		dailyAverage = spent / float64(currentDay)
	}

	// Historical average falls back to a full-month projection of the daily
	// average when there is no prior history.
	var historical float64
	comparisons := make([]MonthComparison, 0, len(in.PriorMonths))
	if len(in.PriorMonths) > 0 {
		var sum float64
		for _, m := range in.PriorMonths {
			total := m.Total.Units()
			sum += total
			comparisons = append(comparisons, MonthComparison{
				Month: m.Month,
				Year:  m.Year,
				Total: Round2(total),
			})
		}
		historical = sum / float64(len(in.PriorMonths))
	} else {
		historical = dailyAverage * float64(daysInMonth)
	}

	// Active monthly subscriptions that have not billed yet this month.
	var upcomingCents int64
	for _, s := range in.Subscriptions {
		if s.IsActive && s.Frequency == core.Monthly && s.BillingDay > currentDay {
			upcomingCents += s.Amount.Cents
		}
	}
	upcoming := centsToUnits(upcomingCents)

	trendBased := spent + dailyAverage*float64(daysRemaining)
	subscriptionAdjusted := trendBased + upcoming
	estimated := trendBased*weightTrend + historical*weightHistorical + subscriptionAdjusted*weightSubscriptions

	out := MonthlyPrediction{
		CurrentMonth: CurrentMonthSnapshot{
			Spent:         Round2(spent),
			Income:        Round2(income),
			DaysElapsed:   currentDay,
			DaysRemaining: daysRemaining,
			DailyAverage:  Round2(dailyAverage),
		},
		Prediction: PredictionFigures{
			Estimated:             Round2(estimated),
			TrendBased:            Round2(trendBased),
			HistoricalBased:       Round2(historical),
			UpcomingSubscriptions: Round2(upcoming),
		},
		Comparison: PredictionComparison{
			VsLastMonths:      comparisons,
			AverageLastMonths: Round2(historical),
		},
	}
	if income > 0 {
		opportunity := Round2(income - estimated)
		out.SavingsOpportunity = &opportunity
	}
	return out
}

// CategoryPrediction projects a category's spend to the end of the month.
type CategoryPrediction struct {
	Category         CategoryRef `json:"category"`
	Spent            float64     `json:"spent"`
	TransactionCount int         `json:"transactionCount"`
	DailyAverage     float64     `json:"dailyAverage"`
	PredictedTotal   float64     `json:"predictedTotal"`
}

// PredictByCategory projects each category's current-month spending forward
// at its daily average. Results are ordered by descending current spend;
// ties keep the input order.
func PredictByCategory(totals []core.CategoryTotal, now time.Time) []CategoryPrediction {
	currentDay := now.Day()
	daysInMonth := DaysInMonth(now)

	sorted := make([]core.CategoryTotal, len(totals))
	copy(sorted, totals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Total.Cents > sorted[j].Total.Cents
	})

	out := make([]CategoryPrediction, 0, len(sorted))
	for _, ct := range sorted {
		total := ct.Total.Units()
		dailyAvg := 0.0
		if currentDay > 0 {
			dailyAvg = total / float64(currentDay)
		}
		out = append(out, CategoryPrediction{
			Category: CategoryRef{
				ID:    ct.CategoryID,
				Name:  ct.Name,
				Icon:  ct.Icon,
				Color: ct.Color,
			},
			Spent:            Round2(total),
			TransactionCount: ct.Count,
			DailyAverage:     Round2(dailyAvg),
			PredictedTotal:   Round2(dailyAvg * float64(daysInMonth)),
		})
	}
	return out
}
