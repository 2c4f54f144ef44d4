package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// BudgetService manages budget definitions and enforces their uniqueness at
// write time: one monthly budget per user and calendar month, one category
// budget per user and category. The storage layer backs this with unique
// indexes, so concurrent creates cannot slip a duplicate through.
type BudgetService struct {
	budgets BudgetStore
	now     func() time.Time
}

func NewBudgetService(budgets BudgetStore) *BudgetService {
	return &BudgetService{budgets: budgets, now: time.Now}
}

// CreateBudgetInput carries the user-entered fields of a new budget.
// Monthly budgets are always created for the current calendar month.
type CreateBudgetInput struct {
	UserID   uuid.UUID
	Type     core.BudgetType
	Category core.Category
	Amount   decimal.Decimal
}

func (s *BudgetService) Create(ctx context.Context, in CreateBudgetInput) (core.Budget, error) {
	b := core.Budget{
		ID:            uuid.New(),
		UserID:        in.UserID,
		Type:          in.Type,
		Category:      in.Category,
		Amount:        in.Amount,
		CurrentAmount: decimal.Zero,
	}
	if in.Type == core.MonthlyBudget {
		now := s.now()
		b.Month = core.MonthName(now)
		b.Year = now.Year()
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	switch b.Type {
	case core.MonthlyBudget:
		_, err := s.budgets.FindMonthlyBudget(ctx, b.UserID, b.Month, b.Year)
		if err == nil {
			return core.Budget{}, fmt.Errorf("%w: you can only have one monthly budget for the current month", core.ErrValidation)
		}
		if !errors.Is(err, core.ErrNotFound) {
			return core.Budget{}, err
		}
	case core.CategoryBudget:
		_, err := s.budgets.FindCategoryBudget(ctx, b.UserID, b.Category)
		if err == nil {
			return core.Budget{}, fmt.Errorf("%w: a budget for the category %q already exists", core.ErrValidation, b.Category)
		}
		if !errors.Is(err, core.ErrNotFound) {
			return core.Budget{}, err
		}
	}

	if err := s.budgets.CreateBudget(ctx, b); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// UpdateAmount changes a budget's target amount; accumulated spend is never
// touched here.
func (s *BudgetService) UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (core.Budget, error) {
	if amount.LessThan(decimal.NewFromInt(1)) {
		return core.Budget{}, fmt.Errorf("%w: budget amount must be at least 1", core.ErrValidation)
	}
	if err := s.budgets.UpdateBudgetAmount(ctx, id, amount); err != nil {
		return core.Budget{}, err
	}
	return s.budgets.GetBudget(ctx, id)
}

func (s *BudgetService) Get(ctx context.Context, id uuid.UUID) (core.Budget, error) {
	return s.budgets.GetBudget(ctx, id)
}

func (s *BudgetService) ListForUser(ctx context.Context, userID uuid.UUID) ([]core.Budget, error) {
	return s.budgets.ListBudgets(ctx, userID)
}

func (s *BudgetService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.budgets.DeleteBudget(ctx, id)
}
