package analytics

import (
	"fmt"
	"math"
	"sort"

	"smartspend/internal/core"
)

const (
	PatternDominantDay = "dominant-day"
	PatternWeekendSkew = "weekend-skew"
	PatternStreak      = "spending-streak"
)

// Component ceilings of the health score.
const (
	maxSavingsPoints   = 40
	maxAdherencePoints = 30
	maxTrendPoints     = 30
)

type HealthComponents struct {
	SavingsRate     int `json:"savingsRate"`
	BudgetAdherence int `json:"budgetAdherence"`
	Trend           int `json:"trend"`
}

type Pattern struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type HealthReport struct {
	Score      int              `json:"score"`
	Components HealthComponents `json:"components"`
	Patterns   []Pattern        `json:"patterns"`
}

// HealthInput is the current month of data behind the health report.
// DayOfWeekCents indexes expense totals by time.Weekday (Sunday first);
// DayTotals holds the month's per-day expense totals for streak detection.
type HealthInput struct {
	IncomeCents     int64
	ExpenseCents    int64
	BudgetsActive   int
	BudgetsExceeded int
	TrendDirection  string
	DayOfWeekCents  [7]int64
	DayTotals       []core.DayTotal
}

var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// ScoreHealth produces a 0-100 composite from three components: savings
// rate (40 points, full marks at a 20% rate), budget adherence (30 points,
// the share of active budgets not exceeded), and spending trend (30 points,
// rewarding a decreasing trend). Months without income or without budgets
// score the respective component at its neutral midpoint.
func ScoreHealth(in HealthInput) HealthReport {
	savings := maxSavingsPoints / 2
	if in.IncomeCents > 0 {
		rate := float64(in.IncomeCents-in.ExpenseCents) / float64(in.IncomeCents)
		scaled := rate / 0.2 * maxSavingsPoints
		savings = int(math.Round(math.Max(0, math.Min(maxSavingsPoints, scaled))))
	}

	adherence := maxAdherencePoints / 2
	if in.BudgetsActive > 0 {
		kept := float64(in.BudgetsActive-in.BudgetsExceeded) / float64(in.BudgetsActive)
		adherence = int(math.Round(kept * maxAdherencePoints))
	}

	trend := 20
	switch in.TrendDirection {
	case TrendDecreasing:
		trend = maxTrendPoints
	case TrendIncreasing:
		trend = 10
	}

	return HealthReport{
		Score: savings + adherence + trend,
		Components: HealthComponents{
			SavingsRate:     savings,
			BudgetAdherence: adherence,
			Trend:           trend,
		},
		Patterns: DetectPatterns(in),
	}
}

// DetectPatterns surfaces notable spending habits: a single weekday carrying
// over 30% of spending, a weekend share above 40%, and consecutive-day
// spending streaks of five days or longer.
func DetectPatterns(in HealthInput) []Pattern {
	patterns := []Pattern{}

	var weekTotal int64
	for _, c := range in.DayOfWeekCents {
		weekTotal += c
	}
	if weekTotal > 0 {
		topDay := 0
		for d := 1; d < 7; d++ {
			if in.DayOfWeekCents[d] > in.DayOfWeekCents[topDay] {
				topDay = d
			}
		}
		share := float64(in.DayOfWeekCents[topDay]) / float64(weekTotal)
		if share > 0.3 {
			patterns = append(patterns, Pattern{
				Type:  PatternDominantDay,
				Title: fmt.Sprintf("%ss drive your spending", weekdayNames[topDay]),
				Description: fmt.Sprintf("%d%% of this month's spending happened on %ss.",
					int(math.Round(share*100)), weekdayNames[topDay]),
			})
		}

		weekend := in.DayOfWeekCents[0] + in.DayOfWeekCents[6]
		weekendShare := float64(weekend) / float64(weekTotal)
		if weekendShare > 0.4 {
			patterns = append(patterns, Pattern{
				Type:  PatternWeekendSkew,
				Title: "Weekend-heavy spending",
				Description: fmt.Sprintf("%d%% of this month's spending happened on weekends.",
					int(math.Round(weekendShare*100))),
			})
		}
	}

	if streak := longestStreak(in.DayTotals); streak >= 5 {
		patterns = append(patterns, Pattern{
			Type:        PatternStreak,
			Title:       fmt.Sprintf("%d-day spending streak", streak),
			Description: fmt.Sprintf("You spent money on %d consecutive days this month.", streak),
		})
	}

	return patterns
}

// longestStreak finds the longest run of consecutive days with spending.
// Days are YYYY-MM-DD strings, so lexicographic order is date order.
func longestStreak(days []core.DayTotal) int {
	withSpend := make([]string, 0, len(days))
	for _, d := range days {
		if d.Total.Cents > 0 {
			withSpend = append(withSpend, d.Day)
		}
	}
	if len(withSpend) == 0 {
		return 0
	}
	sort.Strings(withSpend)

	best, run := 1, 1
	for i := 1; i < len(withSpend); i++ {
		if consecutiveDays(withSpend[i-1], withSpend[i]) {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 1
		}
	}
	return best
}

func consecutiveDays(a, b string) bool {
	ta, errA := parseDay(a)
	tb, errB := parseDay(b)
	if errA != nil || errB != nil {
		return false
	}
	return tb.Sub(ta).Hours() == 24
}
