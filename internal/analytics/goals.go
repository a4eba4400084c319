package analytics

import (
	"fmt"

	"smartspend/internal/core"
)

const (
	RecommendationSuccess    = "success"
	RecommendationInfo       = "info"
	RecommendationSuggestion = "suggestion"
)

// trailingWindowMonths is the history window behind savings-goal averages.
const trailingWindowMonths = 6

type GoalTarget struct {
	TargetAmount    float64 `json:"targetAmount"`
	TargetMonths    int     `json:"targetMonths"`
	MonthlyRequired float64 `json:"monthlyRequired"`
}

type GoalBaseline struct {
	AvgMonthlyIncome  float64 `json:"avgMonthlyIncome"`
	AvgMonthlyExpense float64 `json:"avgMonthlyExpense"`
	AvgMonthlySavings float64 `json:"avgMonthlySavings"`
}

type GoalRecommendation struct {
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Message  string `json:"message"`
}

type SavingsGoalPlan struct {
	Goal            GoalTarget           `json:"goal"`
	Current         GoalBaseline         `json:"current"`
	Feasible        bool                 `json:"feasible"`
	Recommendations []GoalRecommendation `json:"recommendations"`
}

// GoalInput carries the trailing six months of aggregates behind a plan.
// IncomeMonths and ExpenseMonths hold one entry per calendar month that had
// records of that type; TopCategories is the expense aggregation over the
// same window, from which the three largest are suggested for reduction.
type GoalInput struct {
	TargetAmount  float64
	TargetMonths  int
	IncomeMonths  []core.MonthTotal
	ExpenseMonths []core.MonthTotal
	TopCategories []core.CategoryTotal
}

// PlanSavingsGoal derives the monthly saving required for a goal and judges
// feasibility against the recent savings rate. The monthly averages divide
// by the number of months that actually had records (at least one), so a
// sparse history is not diluted by empty months. The goal is feasible when
// current savings reach 80% of the monthly target; an infeasible goal gets
// up to three "reduce by 20%" suggestions for the biggest expense categories.
func PlanSavingsGoal(in GoalInput) SavingsGoalPlan {
	monthlyTarget := 0.0
	if in.TargetMonths > 0 {
		monthlyTarget = in.TargetAmount / float64(in.TargetMonths)
	}

	avgIncome := monthlyMean(in.IncomeMonths)
	avgExpense := monthlyMean(in.ExpenseMonths)
	currentSavings := avgIncome - avgExpense

	var recommendations []GoalRecommendation
	if currentSavings >= monthlyTarget {
		recommendations = append(recommendations, GoalRecommendation{
			Type: RecommendationSuccess,
			Message: fmt.Sprintf("Great news! Your current savings rate of £%.2f/month already meets your goal.",
				currentSavings),
		})
	} else {
		gap := monthlyTarget - currentSavings
		gapPercentage := 0.0
		if avgExpense > 0 {
			gapPercentage = gap / avgExpense * 100
		}
		recommendations = append(recommendations, GoalRecommendation{
			Type: RecommendationInfo,
			Message: fmt.Sprintf("You need to save an additional £%.2f/month (%.1f%% of current spending) to reach your goal.",
				gap, gapPercentage),
		})

		top := in.TopCategories
		if len(top) > 3 {
			top = top[:3]
		}
		for _, cat := range top {
			avgMonthly := cat.Total.Units() / trailingWindowMonths
			recommendations = append(recommendations, GoalRecommendation{
				Type:     RecommendationSuggestion,
				Category: cat.Name,
				Icon:     cat.Icon,
				Message: fmt.Sprintf("Reduce %s spending by 20%% to save £%.2f/month",
					cat.Name, avgMonthly*0.2),
			})
		}
	}

	return SavingsGoalPlan{
		Goal: GoalTarget{
			TargetAmount:    in.TargetAmount,
			TargetMonths:    in.TargetMonths,
			MonthlyRequired: Round2(monthlyTarget),
		},
		Current: GoalBaseline{
			AvgMonthlyIncome:  Round2(avgIncome),
			AvgMonthlyExpense: Round2(avgExpense),
			AvgMonthlySavings: Round2(currentSavings),
		},
		Feasible:        currentSavings >= monthlyTarget*0.8,
		Recommendations: recommendations,
	}
}

func monthlyMean(months []core.MonthTotal) float64 {
	var cents int64
	for _, m := range months {
		cents += m.Total.Cents
	}
	n := len(months)
	if n < 1 {
		n = 1
	}
	return centsToUnits(cents) / float64(n)
}
