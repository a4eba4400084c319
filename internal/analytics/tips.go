package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"smartspend/internal/core"
)

const (
	TipWarning = "warning"
	TipAlert   = "alert"
	TipInsight = "insight"
	TipSuccess = "success"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// WeeksPerMonth normalizes weekly amounts to monthly ones.
const WeeksPerMonth = 4.33

var priorityOrder = map[string]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

type Tip struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	Category         string  `json:"category"`
	Icon             string  `json:"icon"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	PotentialSavings float64 `json:"potentialSavings"`
	Action           string  `json:"action"`
	Priority         string  `json:"priority"`
}

type TipSummary struct {
	TotalTips               int     `json:"totalTips"`
	HighPriority            int     `json:"highPriority"`
	PotentialMonthlySavings float64 `json:"potentialMonthlySavings"`
	PotentialYearlySavings  float64 `json:"potentialYearlySavings"`
}

type TipReport struct {
	Tips    []Tip      `json:"tips"`
	Summary TipSummary `json:"summary"`
}

// TipContext carries the pre-aggregated month of data the detectors inspect.
// CurrentByCategory is the current month's expense aggregation sorted by
// descending total; LastMonthCents maps category ID to last month's total.
type TipContext struct {
	CurrentByCategory   []core.CategoryTotal
	LastMonthCents      map[string]int64
	Budgets             []core.Budget
	Categories          map[string]core.Category
	Subscriptions       []core.Subscription
	SmallPurchaseCount  int
	SmallPurchaseCents  int64
	WeekendCents        int64
	WeekdayCents        int64
	Now                 time.Time
}

// GenerateTips runs every detector over the context and returns the matches
// sorted by priority. Detectors are independent: each inspects the context
// and either contributes a tip or stays silent. The sort is stable, so tips
// of equal priority keep detector order.
func GenerateTips(ctx TipContext) []Tip {
	tips := []Tip{}

	tips = append(tips, detectCategorySpikes(ctx)...)
	tips = append(tips, detectBudgetPressure(ctx)...)
	if tip, ok := detectSubscriptionOverload(ctx); ok {
		tips = append(tips, tip)
	}
	if tip, ok := detectSmallPurchases(ctx); ok {
		tips = append(tips, tip)
	}
	if tip, ok := detectWeekendSkew(ctx); ok {
		tips = append(tips, tip)
	}
	if tip, ok := detectProgress(ctx); ok {
		tips = append(tips, tip)
	}

	sort.SliceStable(tips, func(i, j int) bool {
		return priorityOrder[tips[i].Priority] < priorityOrder[tips[j].Priority]
	})
	return tips
}

// BuildTipReport attaches the summary block to a tip list.
func BuildTipReport(tips []Tip) TipReport {
	var total float64
	high := 0
	for _, t := range tips {
		total += t.PotentialSavings
		if t.Priority == PriorityHigh {
			high++
		}
	}
	return TipReport{
		Tips: tips,
		Summary: TipSummary{
			TotalTips:               len(tips),
			HighPriority:            high,
			PotentialMonthlySavings: Round2(total),
			PotentialYearlySavings:  Round2(total * 12),
		},
	}
}

// detectCategorySpikes flags categories whose spending rose more than 30%
// against last month. Above 50% the tip escalates to high priority.
func detectCategorySpikes(ctx TipContext) []Tip {
	var tips []Tip
	for _, curr := range ctx.CurrentByCategory {
		lastCents, ok := ctx.LastMonthCents[curr.CategoryID]
		if !ok || lastCents <= 0 {
			continue
		}
		currTotal := curr.Total.Units()
		lastTotal := centsToUnits(lastCents)
		increase := (currTotal - lastTotal) / lastTotal * 100
		if increase <= 30 {
			continue
		}
		priority := PriorityMedium
		if increase > 50 {
			priority = PriorityHigh
		}
		tips = append(tips, Tip{
			ID:       "spending-increase-" + curr.Name,
			Type:     TipWarning,
			Category: curr.Name,
			Icon:     curr.Icon,
			Title:    fmt.Sprintf("%s spending is up %d%%", curr.Name, int(math.Round(increase))),
			Description: fmt.Sprintf("You've spent £%.2f on %s this month, compared to £%.2f last month.",
				currTotal, curr.Name, lastTotal),
			PotentialSavings: Round2(currTotal - lastTotal),
			Action:           fmt.Sprintf("Try to reduce %s spending to last month's level", curr.Name),
			Priority:         priority,
		})
	}
	return tips
}

// detectBudgetPressure flags budgets at 90% or more with over a week left
// in the month.
func detectBudgetPressure(ctx TipContext) []Tip {
	var tips []Tip
	daysLeft := DaysInMonth(ctx.Now) - ctx.Now.Day()
	for _, b := range ctx.Budgets {
		var spentCents int64
		found := false
		for _, curr := range ctx.CurrentByCategory {
			if curr.CategoryID == b.CategoryID {
				spentCents = curr.Total.Cents
				found = true
				break
			}
		}
		if !found {
			continue
		}
		amount := b.Amount.Units()
		if amount <= 0 {
			continue
		}
		percentage := centsToUnits(spentCents) / amount * 100
		if percentage < 90 || daysLeft <= 7 {
			continue
		}
		cat := ctx.Categories[b.CategoryID]
		tips = append(tips, Tip{
			ID:       "budget-warning-" + cat.Name,
			Type:     TipAlert,
			Category: cat.Name,
			Icon:     cat.Icon,
			Title:    fmt.Sprintf("%s budget almost exhausted", cat.Name),
			Description: fmt.Sprintf("You've used %d%% of your £%s budget with %d days left.",
				int(math.Round(percentage)), formatAmount(amount), daysLeft),
			PotentialSavings: Round2(amount * 0.1),
			Action:           fmt.Sprintf("Limit %s spending for the rest of the month", cat.Name),
			Priority:         PriorityHigh,
		})
	}
	return tips
}

// detectSubscriptionOverload fires when more than five active subscriptions
// cost over 100 a month combined.
func detectSubscriptionOverload(ctx TipContext) (Tip, bool) {
	count := len(ctx.Subscriptions)
	monthlyCost := MonthlySubscriptionCost(ctx.Subscriptions)
	if count <= 5 || monthlyCost <= 100 {
		return Tip{}, false
	}
	return Tip{
		ID:       "subscription-review",
		Type:     TipInsight,
		Category: "Subscriptions",
		Icon:     "📺",
		Title:    "Review your subscriptions",
		Description: fmt.Sprintf("You have %d active subscriptions costing £%.2f/month. Consider reviewing which ones you actually use.",
			count, monthlyCost),
		PotentialSavings: Round2(monthlyCost * 0.2),
		Action:           "Cancel unused subscriptions to save up to 20%",
		Priority:         PriorityMedium,
	}, true
}

// detectSmallPurchases fires after more than twenty sub-10 purchases in the
// month.
func detectSmallPurchases(ctx TipContext) (Tip, bool) {
	if ctx.SmallPurchaseCount <= 20 {
		return Tip{}, false
	}
	total := centsToUnits(ctx.SmallPurchaseCents)
	return Tip{
		ID:       "small-purchases",
		Type:     TipInsight,
		Category: "General",
		Icon:     "💡",
		Title:    "Watch your small purchases",
		Description: fmt.Sprintf("You've made %d purchases under £10, totaling £%.2f. These add up quickly!",
			ctx.SmallPurchaseCount, total),
		PotentialSavings: Round2(total * 0.3),
		Action:           "Try to batch small purchases or use the 24-hour rule before buying",
		Priority:         PriorityLow,
	}, true
}

// detectWeekendSkew fires when over 40% of the month's spending lands on
// Saturday or Sunday.
func detectWeekendSkew(ctx TipContext) (Tip, bool) {
	weekend := centsToUnits(ctx.WeekendCents)
	total := weekend + centsToUnits(ctx.WeekdayCents)
	if total <= 0 || weekend/total <= 0.4 {
		return Tip{}, false
	}
	return Tip{
		ID:       "weekend-spending",
		Type:     TipInsight,
		Category: "General",
		Icon:     "📅",
		Title:    "Weekend spending is high",
		Description: fmt.Sprintf("%d%% of your spending happens on weekends. Plan budget-friendly weekend activities.",
			int(math.Round(weekend/total*100))),
		PotentialSavings: Round2(weekend * 0.15),
		Action:           "Set a weekend spending limit or plan free activities",
		Priority:         PriorityMedium,
	}, true
}

// detectProgress rewards a month tracking under 90% of last month's spend.
func detectProgress(ctx TipContext) (Tip, bool) {
	var currCents int64
	for _, c := range ctx.CurrentByCategory {
		currCents += c.Total.Cents
	}
	var lastCents int64
	for _, c := range ctx.LastMonthCents {
		lastCents += c
	}
	if lastCents <= 0 {
		return Tip{}, false
	}
	curr := centsToUnits(currCents)
	last := centsToUnits(lastCents)
	if curr >= last*0.9 {
		return Tip{}, false
	}
	return Tip{
		ID:       "great-progress",
		Type:     TipSuccess,
		Category: "General",
		Icon:     "🎉",
		Title:    "Great progress this month!",
		Description: fmt.Sprintf("You've spent %d%% less than last month so far. Keep it up!",
			int(math.Round((1-curr/last)*100))),
		PotentialSavings: Round2(last - curr),
		Action:           "Maintain your current spending habits",
		Priority:         PriorityLow,
	}, true
}

// MonthlySubscriptionCost normalizes subscription amounts to a monthly
// figure: weekly amounts scale by 4.33, yearly amounts divide by 12.
func MonthlySubscriptionCost(subs []core.Subscription) float64 {
	var total float64
	for _, s := range subs {
		amount := s.Amount.Units()
		switch s.Frequency {
		case core.Weekly:
			total += amount * WeeksPerMonth
		case core.Monthly:
			total += amount
		case core.Yearly:
			total += amount / 12
		}
	}
	return total
}

// YearlySubscriptionCost normalizes subscription amounts to a yearly figure.
func YearlySubscriptionCost(subs []core.Subscription) float64 {
	var total float64
	for _, s := range subs {
		amount := s.Amount.Units()
		switch s.Frequency {
		case core.Weekly:
			total += amount * 52
		case core.Monthly:
			total += amount * 12
		case core.Yearly:
			total += amount
		}
	}
	return total
}
