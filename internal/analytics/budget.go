package analytics

import (
	"fmt"
	"math"
	"strconv"

	"smartspend/internal/core"
)

const (
	AlertExceeded = "exceeded"
	AlertWarning  = "warning"
)

// CategoryRef is the compact category representation embedded in responses.
type CategoryRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func NewCategoryRef(c core.Category) CategoryRef {
	return CategoryRef{ID: c.ID, Name: c.Name, Icon: c.Icon, Color: c.Color}
}

// BudgetStanding decorates a budget with current-period spending for listings.
type BudgetStanding struct {
	ID             string      `json:"id"`
	Category       CategoryRef `json:"category"`
	Amount         float64     `json:"amount"`
	Period         core.Period `json:"period"`
	AlertThreshold int         `json:"alertThreshold"`
	IsActive       bool        `json:"isActive"`
	Spent          float64     `json:"spent"`
	Remaining      float64     `json:"remaining"`
	Percentage     float64     `json:"percentage"`
	IsOverBudget   bool        `json:"isOverBudget"`
	IsNearLimit    bool        `json:"isNearLimit"`
}

// BudgetAlert is raised when spending crosses the budget's alert threshold.
type BudgetAlert struct {
	BudgetID     string      `json:"budgetId"`
	Category     CategoryRef `json:"category"`
	BudgetAmount float64     `json:"budgetAmount"`
	Spent        float64     `json:"spent"`
	Percentage   int         `json:"percentage"`
	Type         string      `json:"type"`
	Message      string      `json:"message"`
}

// Standing computes the decorated listing entry for a budget given the
// spending of its current period. Percentage is 0 when the budget amount
// is zero; a zero-amount budget is therefore never over budget.
func Standing(b core.Budget, cat core.Category, spentCents int64) BudgetStanding {
	amount := b.Amount.Units()
	spent := centsToUnits(spentCents)
	percentage := 0.0
	if amount > 0 {
		percentage = spent / amount * 100
	}
	return BudgetStanding{
		ID:             b.ID,
		Category:       NewCategoryRef(cat),
		Amount:         amount,
		Period:         b.Period,
		AlertThreshold: b.AlertThreshold,
		IsActive:       b.IsActive,
		Spent:          spent,
		Remaining:      amount - spent,
		Percentage:     Round1(percentage),
		IsOverBudget:   spent > amount,
		IsNearLimit:    percentage >= float64(b.AlertThreshold) && percentage < 100,
	}
}

// CheckBudget evaluates a budget against current-period spending and returns
// an alert when the threshold is crossed. At or above 100% the alert is
// `exceeded` with the overage in the message, otherwise `warning` with the
// integer-rounded usage percentage.
func CheckBudget(b core.Budget, cat core.Category, spentCents int64) (BudgetAlert, bool) {
	amount := b.Amount.Units()
	spent := centsToUnits(spentCents)
	percentage := 0.0
	if amount > 0 {
		percentage = spent / amount * 100
	}
	if percentage < float64(b.AlertThreshold) {
		return BudgetAlert{}, false
	}
	alert := BudgetAlert{
		BudgetID:     b.ID,
		Category:     NewCategoryRef(cat),
		BudgetAmount: amount,
		Spent:        spent,
		Percentage:   int(math.Round(percentage)),
	}
	if percentage >= 100 {
		alert.Type = AlertExceeded
		alert.Message = fmt.Sprintf("You've exceeded your %s budget by £%.2f", cat.Name, spent-amount)
	} else {
		alert.Type = AlertWarning
		alert.Message = fmt.Sprintf("You've used %d%% of your %s budget", alert.Percentage, cat.Name)
	}
	return alert, true
}

// formatAmount renders a float the way it reads in user-facing messages,
// without trailing zeros (400 rather than 400.00).
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
