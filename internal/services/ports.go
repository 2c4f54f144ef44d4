// Package services holds the business logic: the budget and goal
// allocators, recurrence expansion, trend analysis, reminder sweeps and the
// entity services the HTTP layer calls into.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// The store interfaces below are what the services need from persistence;
// storage.SQLiteRepository implements all of them.

type UserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)
}

// UserDirectory adds account creation on top of the read-side UserStore the
// sweeps use.
type UserDirectory interface {
	UserStore
	CreateUser(ctx context.Context, u core.User) error
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error)
	ListUserTransactions(ctx context.Context, userID uuid.UUID, tags []string, sortBy string, descending bool) ([]core.Transaction, error)
	ListAllTransactions(ctx context.Context, tags []string, sortBy string, descending bool) ([]core.Transaction, error)
	ListExpensesSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]core.Transaction, error)
	ListTransactionsInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]core.Transaction, error)
	ListOpenRecurring(ctx context.Context, now time.Time) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status core.TransactionStatus) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

type BudgetStore interface {
	CreateBudget(ctx context.Context, b core.Budget) error
	GetBudget(ctx context.Context, id uuid.UUID) (core.Budget, error)
	ListBudgets(ctx context.Context, userID uuid.UUID) ([]core.Budget, error)
	FindMonthlyBudget(ctx context.Context, userID uuid.UUID, month string, year int) (core.Budget, error)
	FindCategoryBudget(ctx context.Context, userID uuid.UUID, category core.Category) (core.Budget, error)
	UpdateBudgetAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	SaveBudgetProgress(ctx context.Context, id uuid.UUID, current decimal.Decimal) error
	DeleteBudget(ctx context.Context, id uuid.UUID) error
}

type GoalStore interface {
	CreateGoal(ctx context.Context, g core.Goal) error
	GetGoal(ctx context.Context, id uuid.UUID) (core.Goal, error)
	ListGoals(ctx context.Context, userID uuid.UUID) ([]core.Goal, error)
	ListAllGoals(ctx context.Context) ([]core.Goal, error)
	UpdateGoal(ctx context.Context, g core.Goal) error
	SaveGoalProgress(ctx context.Context, id uuid.UUID, current decimal.Decimal) error
	DeleteGoal(ctx context.Context, id uuid.UUID) error
}

type ReportStore interface {
	CreateReport(ctx context.Context, r core.Report) error
	GetReport(ctx context.Context, id uuid.UUID) (core.Report, error)
	ListReports(ctx context.Context, userID uuid.UUID) ([]core.Report, error)
	DeleteReport(ctx context.Context, id uuid.UUID) error
}

// Converter normalizes an entered amount into USD.
type Converter interface {
	ToUSD(ctx context.Context, amount decimal.Decimal, code string) (decimal.Decimal, error)
}
