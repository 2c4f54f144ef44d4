package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// SpendingAggregator is the grouped-sum query the dashboard needs from
// storage.
type SpendingAggregator interface {
	SumByTypeAndCategory(ctx context.Context, userID uuid.UUID) ([]storage.CategoryTotal, error)
}

// Dashboard is the per-user overview: lifetime totals, spend per category,
// budget usage and goal progress.
type Dashboard struct {
	TotalIncome   decimal.Decimal                   `json:"total_income"`
	TotalExpenses decimal.Decimal                   `json:"total_expenses"`
	Net           decimal.Decimal                   `json:"net"`
	ByCategory    map[core.Category]decimal.Decimal `json:"spending_by_category"`
	Budgets       []BudgetUsage                     `json:"budgets"`
	Goals         []GoalProgress                    `json:"goals"`
}

type BudgetUsage struct {
	Budget       core.Budget     `json:"budget"`
	UsagePercent decimal.Decimal `json:"usage_percent"`
}

type GoalProgress struct {
	Goal            core.Goal       `json:"goal"`
	ProgressPercent decimal.Decimal `json:"progress_percent"`
	Complete        bool            `json:"complete"`
}

// DashboardService assembles the overview from the aggregation query plus
// the user's budgets and goals.
type DashboardService struct {
	aggregator SpendingAggregator
	budgets    BudgetStore
	goals      GoalStore
}

func NewDashboardService(aggregator SpendingAggregator, budgets BudgetStore, goals GoalStore) *DashboardService {
	return &DashboardService{aggregator: aggregator, budgets: budgets, goals: goals}
}

func (s *DashboardService) Summary(ctx context.Context, userID uuid.UUID) (Dashboard, error) {
	totals, err := s.aggregator.SumByTypeAndCategory(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("aggregate transactions: %w", err)
	}

	d := Dashboard{ByCategory: make(map[core.Category]decimal.Decimal)}
	for _, row := range totals {
		switch row.Type {
		case core.Income:
			d.TotalIncome = d.TotalIncome.Add(row.Total)
		case core.Expense:
			d.TotalExpenses = d.TotalExpenses.Add(row.Total)
			d.ByCategory[row.Category] = d.ByCategory[row.Category].Add(row.Total)
		}
	}
	d.Net = d.TotalIncome.Sub(d.TotalExpenses)

	budgets, err := s.budgets.ListBudgets(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list budgets: %w", err)
	}
	for _, b := range budgets {
		usage := decimal.Zero
		if b.Amount.IsPositive() {
			usage = b.CurrentAmount.Div(b.Amount).Mul(decimal.NewFromInt(100)).Round(2)
		}
		d.Budgets = append(d.Budgets, BudgetUsage{Budget: b, UsagePercent: usage})
	}

	goals, err := s.goals.ListGoals(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list goals: %w", err)
	}
	for _, g := range goals {
		progress := decimal.Zero
		if g.TargetAmount.IsPositive() {
			progress = g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2)
		}
		d.Goals = append(d.Goals, GoalProgress{Goal: g, ProgressPercent: progress, Complete: g.Complete()})
	}

	return d, nil
}
