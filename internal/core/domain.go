package core

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Daily   RecurrencePattern = "daily"
	Weekly  RecurrencePattern = "weekly"
	Monthly RecurrencePattern = "monthly"
	Yearly  RecurrencePattern = "yearly"
)

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusMissed    TransactionStatus = "missed"
)

const (
	MonthlyBudget  BudgetType = "monthly"
	CategoryBudget BudgetType = "category"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	CategoryFood           Category = "Food"
	CategoryTransportation Category = "Transportation"
	CategoryEntertainment  Category = "Entertainment"
	CategorySalary         Category = "Salary"
	CategoryFixedInterest  Category = "Fixed income interest"
	CategoryOther          Category = "Other"
)

type (
	TransactionType   string
	RecurrencePattern string
	TransactionStatus string
	BudgetType        string
	Category          string

	// Transaction is a single income or expense entry. Amount is the value as
	// entered by the user in Currency; ConvertedAmount is the canonical USD
	// value every allocator and aggregation works with.
	Transaction struct {
		ID                uuid.UUID
		UserID            uuid.UUID
		Amount            decimal.Decimal
		Currency          string // ISO code, "USD" when absent
		ConvertedAmount   decimal.Decimal
		Type              TransactionType
		Category          Category
		Tags              []string
		Date              time.Time
		Recurring         bool
		RecurrencePattern RecurrencePattern // empty unless Recurring
		EndDate           time.Time         // zero unless Recurring
		Status            TransactionStatus
	}

	// Budget tracks a spending target. CurrentAmount accumulates posted
	// expenses (USD) and only ever grows within a budget period.
	Budget struct {
		ID            uuid.UUID
		UserID        uuid.UUID
		Type          BudgetType
		Category      Category // set only for category budgets
		Amount        decimal.Decimal
		CurrentAmount decimal.Decimal
		Month         string // English month name, e.g. "January"
		Year          int
	}

	// Goal is a savings target fed by income allocation. CurrentAmount grows
	// toward TargetAmount and is clamped there.
	Goal struct {
		ID                   uuid.UUID
		UserID               uuid.UUID
		Name                 string
		TargetAmount         decimal.Decimal
		CurrentAmount        decimal.Decimal
		Deadline             time.Time
		AllocationPercentage decimal.Decimal // 0-100
	}

	// Report is an immutable record of a generated report artifact.
	Report struct {
		ID          uuid.UUID
		UserID      uuid.UUID
		FilePath    string
		GeneratedAt time.Time
	}

	User struct {
		ID       uuid.UUID
		Username string
		Email    string
		Role     string
	}
)

var (
	// ErrValidation wraps every schema-constraint violation so callers can
	// map the whole family with errors.Is.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound reports an absent entity.
	ErrNotFound = errors.New("not found")
	// ErrConversion reports a failed currency lookup; transaction creation
	// must abort without persisting anything.
	ErrConversion = errors.New("currency conversion failed")
	// ErrUnauthorized reports a role or ownership mismatch.
	ErrUnauthorized = errors.New("unauthorized")
)

// transactionCategories is the closed category enum for transactions.
var transactionCategories = map[Category]bool{
	CategoryFood:           true,
	CategoryTransportation: true,
	CategoryEntertainment:  true,
	CategorySalary:         true,
	CategoryFixedInterest:  true,
	CategoryOther:          true,
}

// budgetCategories is the subset of categories a category budget may target.
var budgetCategories = map[Category]bool{
	CategoryFood:           true,
	CategoryTransportation: true,
	CategoryEntertainment:  true,
	CategoryOther:          true,
}

// ValidTransactionCategory reports whether c is in the transaction enum.
func ValidTransactionCategory(c Category) bool {
	return transactionCategories[c]
}

// ValidBudgetCategory reports whether c may have a category budget.
func ValidBudgetCategory(c Category) bool {
	return budgetCategories[c]
}

func (t Transaction) Validate() error {
	if t.UserID == uuid.Nil {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if t.Type != Income && t.Type != Expense {
		return fmt.Errorf("%w: type must be income or expense", ErrValidation)
	}
	if !ValidTransactionCategory(t.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, t.Category)
	}
	if t.Recurring {
		switch t.RecurrencePattern {
		case Daily, Weekly, Monthly, Yearly:
		default:
			return fmt.Errorf("%w: recurring transaction needs a recurrence pattern", ErrValidation)
		}
		if t.EndDate.IsZero() {
			return fmt.Errorf("%w: recurring transaction needs an end date", ErrValidation)
		}
		if !t.EndDate.After(t.Date) {
			return fmt.Errorf("%w: end date must be after the transaction date", ErrValidation)
		}
	}
	return nil
}

func (b Budget) Validate() error {
	if b.UserID == uuid.Nil {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if b.Amount.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: budget amount must be at least 1", ErrValidation)
	}
	if b.CurrentAmount.IsNegative() {
		return fmt.Errorf("%w: current amount cannot be negative", ErrValidation)
	}
	switch b.Type {
	case MonthlyBudget:
		if b.Category != "" {
			return fmt.Errorf("%w: monthly budgets cannot have a category", ErrValidation)
		}
		if b.Month == "" || b.Year == 0 {
			return fmt.Errorf("%w: monthly budget needs a month and year", ErrValidation)
		}
	case CategoryBudget:
		if !ValidBudgetCategory(b.Category) {
			return fmt.Errorf("%w: invalid budget category %q", ErrValidation, b.Category)
		}
	default:
		return fmt.Errorf("%w: budget type must be monthly or category", ErrValidation)
	}
	return nil
}

func (g Goal) Validate() error {
	if g.UserID == uuid.Nil {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	name := strings.TrimSpace(g.Name)
	if len(name) < 3 {
		return fmt.Errorf("%w: goal name must be at least 3 characters long", ErrValidation)
	}
	if len(name) > 50 {
		return fmt.Errorf("%w: goal name cannot exceed 50 characters", ErrValidation)
	}
	if g.TargetAmount.IsNegative() {
		return fmt.Errorf("%w: target amount cannot be negative", ErrValidation)
	}
	if g.CurrentAmount.IsNegative() {
		return fmt.Errorf("%w: current amount cannot be negative", ErrValidation)
	}
	if g.CurrentAmount.GreaterThan(g.TargetAmount) {
		return fmt.Errorf("%w: current amount cannot exceed target amount", ErrValidation)
	}
	if g.AllocationPercentage.IsNegative() || g.AllocationPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: allocation percentage must be between 0 and 100", ErrValidation)
	}
	return nil
}

func (u User) Validate() error {
	if u.ID == uuid.Nil {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	username := strings.TrimSpace(u.Username)
	if len(username) < 3 {
		return fmt.Errorf("%w: username must be at least 3 characters long", ErrValidation)
	}
	if len(username) > 30 {
		return fmt.Errorf("%w: username cannot exceed 30 characters", ErrValidation)
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("%w: invalid email address %q", ErrValidation, u.Email)
	}
	if u.Role != RoleUser && u.Role != RoleAdmin {
		return fmt.Errorf("%w: role must be user or admin", ErrValidation)
	}
	return nil
}

// Complete reports whether the goal already reached its target.
func (g Goal) Complete() bool {
	return g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}
