package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/notify"
)

// BudgetAllocator accumulates posted expenses into the owner's monthly and
// category budgets and raises over-budget notifications. Everything here is
// best-effort: a failure on one budget is logged and the other budget is
// still attempted, so an expense can end up counted in one of the two.
type BudgetAllocator struct {
	budgets  BudgetStore
	users    UserStore
	notifier notify.Notifier
	now      func() time.Time
}

func NewBudgetAllocator(budgets BudgetStore, users UserStore, notifier notify.Notifier) *BudgetAllocator {
	return &BudgetAllocator{
		budgets:  budgets,
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
}

// ApplyExpense adds usdAmount to the user's current monthly budget and to
// the matching category budget. Either, both or neither may exist; each is
// handled independently.
func (a *BudgetAllocator) ApplyExpense(ctx context.Context, userID uuid.UUID, usdAmount decimal.Decimal, category core.Category) {
	user, err := a.users.GetUser(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Budget allocation skipped, owner lookup failed",
			"user_id", userID, "error", err)
		return
	}

	now := a.now()
	monthly, err := a.budgets.FindMonthlyBudget(ctx, userID, core.MonthName(now), now.Year())
	switch {
	case err == nil:
		a.accumulate(ctx, user, monthly, usdAmount)
	case !errors.Is(err, core.ErrNotFound):
		slog.ErrorContext(ctx, "Monthly budget lookup failed", "user_id", userID, "error", err)
	}

	byCategory, err := a.budgets.FindCategoryBudget(ctx, userID, category)
	switch {
	case err == nil:
		a.accumulate(ctx, user, byCategory, usdAmount)
	case !errors.Is(err, core.ErrNotFound):
		slog.ErrorContext(ctx, "Category budget lookup failed",
			"user_id", userID, "category", category, "error", err)
	}
}

func (a *BudgetAllocator) accumulate(ctx context.Context, user core.User, b core.Budget, usd decimal.Decimal) {
	b.CurrentAmount = b.CurrentAmount.Add(usd)
	if err := a.budgets.SaveBudgetProgress(ctx, b.ID, b.CurrentAmount); err != nil {
		slog.ErrorContext(ctx, "Failed to save budget progress",
			"budget_id", b.ID, "type", b.Type, "error", err)
		return
	}

	slog.InfoContext(ctx, "Budget progress updated",
		"budget_id", b.ID,
		"type", b.Type,
		"category", b.Category,
		"current", b.CurrentAmount.String(),
		"limit", b.Amount.String())

	if !b.CurrentAmount.GreaterThan(b.Amount) {
		return
	}

	subject, body := overBudgetMessage(b)
	if err := a.notifier.Send(ctx, user.Email, subject, body, ""); err != nil {
		slog.ErrorContext(ctx, "Failed to send over-budget notification",
			"budget_id", b.ID, "to", user.Email, "error", err)
	}
}

func overBudgetMessage(b core.Budget) (subject, body string) {
	limit := core.FormatUSD(b.Amount)
	spent := core.FormatUSD(b.CurrentAmount)
	if b.Type == core.MonthlyBudget {
		return "Monthly Budget Exceeded",
			fmt.Sprintf("You have exceeded your monthly budget of %s. You've spent %s this month.", limit, spent)
	}
	return fmt.Sprintf("Category Budget Exceeded - %s", b.Category),
		fmt.Sprintf("You have exceeded your %s budget of %s. You've spent %s this month.", b.Category, limit, spent)
}
