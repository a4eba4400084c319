package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
	CategoryBoth    CategoryType = "both"
)

type (
	TransactionType string

	// Period is shared by budget windows and subscription billing frequencies.
	Period string

	CategoryType string

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string
		UserID      string
		Type        TransactionType
		Amount      Money
		CategoryID  string
		Description string
		Date        time.Time
		Tags        []string
		Notes       string
		IsRecurring bool
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	Category struct {
		ID        string
		UserID    string
		Name      string
		Icon      string
		Color     string
		Type      CategoryType
		IsDefault bool
		CreatedAt time.Time
	}

	Budget struct {
		ID             string
		UserID         string
		CategoryID     string
		Amount         Money
		Period         Period
		AlertThreshold int // percent, 0-100
		StartDate      time.Time
		IsActive       bool
		CreatedAt      time.Time
		UpdatedAt      time.Time
	}

	Subscription struct {
		ID              string
		UserID          string
		Name            string
		Amount          Money
		CategoryID      string // optional
		Frequency       Period
		BillingDay      int // 1-31
		NextBillingDate time.Time
		Icon            string
		Color           string
		IsActive        bool
		Notes           string
		CreatedAt       time.Time
		UpdatedAt       time.Time
	}

	NotificationSettings struct {
		Email        bool
		Push         bool
		BudgetAlerts bool
		WeeklyReport bool
	}

	Settings struct {
		Theme         string
		Notifications NotificationSettings
	}

	User struct {
		ID            string
		Name          string
		Email         string
		PasswordHash  string
		Avatar        string
		Currency      string
		MonthlyIncome Money
		Settings      Settings
		CreatedAt     time.Time
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrInvalidPeriod     = errors.New("invalid period")
	ErrInvalidBillingDay = errors.New("billing day must be between 1 and 31")
	ErrInvalidThreshold  = errors.New("alert threshold must be between 0 and 100")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyCategory     = errors.New("empty category")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrInvalidCategory   = errors.New("invalid category type")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (p Period) Valid() bool {
	switch p {
	case Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (c CategoryType) Valid() bool {
	switch c {
	case CategoryIncome, CategoryExpense, CategoryBoth:
		return true
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 50 {
		return errors.New("name too long (max 50 characters)")
	}
	if !c.Type.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	if b.AlertThreshold < 0 || b.AlertThreshold > 100 {
		return ErrInvalidThreshold
	}
	return nil
}

func (s Subscription) Validate() error {
	if len(strings.TrimSpace(s.Name)) == 0 {
		return ErrEmptyName
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if !s.Frequency.Valid() {
		return ErrInvalidPeriod
	}
	if s.BillingDay < 1 || s.BillingDay > 31 {
		return ErrInvalidBillingDay
	}
	return nil
}

func (u User) Validate() error {
	if len(strings.TrimSpace(u.Name)) < 2 {
		return errors.New("name must be at least 2 characters")
	}
	if !strings.Contains(u.Email, "@") || strings.ContainsAny(u.Email, " \t") {
		return ErrInvalidEmail
	}
	return nil
}

// DefaultSettings returns the settings applied to a new account.
func DefaultSettings() Settings {
	return Settings{
		Theme: "light",
		Notifications: NotificationSettings{
			Email:        true,
			Push:         true,
			BudgetAlerts: true,
			WeeklyReport: false,
		},
	}
}

// NextBillingDate computes the next occurrence of billingDay strictly after now.
// When this month's billing day has already passed (or is today), the date rolls
// into the next month. Day numbers past the end of a month normalize forward.
// The value is fixed at creation time and never advanced afterwards.
func NextBillingDate(billingDay int, now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), billingDay, 0, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 1, 0)
	}
	return next
}

// NewSubscription builds a subscription with derived fields populated.
func NewSubscription(userID, name string, amount Money, categoryID string, frequency Period, billingDay int, now time.Time) Subscription {
	if frequency == "" {
		frequency = Monthly
	}
	if billingDay == 0 {
		billingDay = 1
	}
	return Subscription{
		UserID:          userID,
		Name:            strings.TrimSpace(name),
		Amount:          amount,
		CategoryID:      categoryID,
		Frequency:       frequency,
		BillingDay:      billingDay,
		NextBillingDate: NextBillingDate(billingDay, now),
		Icon:            "📦",
		Color:           "#6c5ce7",
		IsActive:        true,
	}
}

// DefaultCategories returns the category set seeded for every new account.
// Defaults cannot be deleted by their owner.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Salary", Icon: "💰", Color: "#2ecc71", Type: CategoryIncome, IsDefault: true},
		{Name: "Freelance", Icon: "💼", Color: "#3498db", Type: CategoryIncome, IsDefault: true},
		{Name: "Investments", Icon: "📈", Color: "#9b59b6", Type: CategoryIncome, IsDefault: true},
		{Name: "Food & Dining", Icon: "🍔", Color: "#e74c3c", Type: CategoryExpense, IsDefault: true},
		{Name: "Transportation", Icon: "🚗", Color: "#f39c12", Type: CategoryExpense, IsDefault: true},
		{Name: "Shopping", Icon: "🛒", Color: "#e91e63", Type: CategoryExpense, IsDefault: true},
		{Name: "Entertainment", Icon: "🎬", Color: "#9c27b0", Type: CategoryExpense, IsDefault: true},
		{Name: "Bills & Utilities", Icon: "📱", Color: "#00bcd4", Type: CategoryExpense, IsDefault: true},
		{Name: "Healthcare", Icon: "🏥", Color: "#4caf50", Type: CategoryExpense, IsDefault: true},
		{Name: "Education", Icon: "📚", Color: "#ff9800", Type: CategoryExpense, IsDefault: true},
		{Name: "Travel", Icon: "✈️", Color: "#03a9f4", Type: CategoryExpense, IsDefault: true},
		{Name: "Subscriptions", Icon: "📺", Color: "#6c5ce7", Type: CategoryExpense, IsDefault: true},
		{Name: "Other", Icon: "📁", Color: "#95a5a6", Type: CategoryBoth, IsDefault: true},
	}
}
