package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/notify"
)

// GoalAllocator distributes a share of each posted income across the
// owner's goals according to their allocation percentages. Like the budget
// side it is best-effort per goal; it never re-validates the 100% sum, which
// is enforced only when goals are created or updated.
type GoalAllocator struct {
	goals    GoalStore
	users    UserStore
	notifier notify.Notifier
}

func NewGoalAllocator(goals GoalStore, users UserStore, notifier notify.Notifier) *GoalAllocator {
	return &GoalAllocator{
		goals:    goals,
		users:    users,
		notifier: notifier,
	}
}

// ApplyIncome allocates allocationPercentage percent of usdAmount to every
// incomplete goal of the user, clamping each at its target. A goal crossing
// its target gets a completion notification exactly once, at the transition.
func (a *GoalAllocator) ApplyIncome(ctx context.Context, userID uuid.UUID, usdAmount decimal.Decimal) {
	user, err := a.users.GetUser(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Goal allocation skipped, owner lookup failed",
			"user_id", userID, "error", err)
		return
	}

	goals, err := a.goals.ListGoals(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Goal allocation skipped, listing failed",
			"user_id", userID, "error", err)
		return
	}

	for _, g := range goals {
		if g.Complete() {
			continue
		}

		delta := core.PercentOf(g.AllocationPercentage, usdAmount)
		updated := core.MinAmount(g.CurrentAmount.Add(delta), g.TargetAmount)

		if err := a.goals.SaveGoalProgress(ctx, g.ID, updated); err != nil {
			slog.ErrorContext(ctx, "Failed to save goal progress",
				"goal_id", g.ID, "name", g.Name, "error", err)
			continue
		}

		slog.InfoContext(ctx, "Goal progress updated",
			"goal_id", g.ID,
			"name", g.Name,
			"allocated", delta.String(),
			"current", updated.String(),
			"target", g.TargetAmount.String())

		if updated.GreaterThanOrEqual(g.TargetAmount) {
			a.notifyCompleted(ctx, user, g)
		}
	}
}

func (a *GoalAllocator) notifyCompleted(ctx context.Context, user core.User, g core.Goal) {
	subject := fmt.Sprintf("Goal Completed: %s", g.Name)
	body := fmt.Sprintf("Congratulations! You have completed your goal of saving for %s.", g.Name)
	if err := a.notifier.Send(ctx, user.Email, subject, body, ""); err != nil {
		slog.ErrorContext(ctx, "Failed to send goal-completion notification",
			"goal_id", g.ID, "to", user.Email, "error", err)
	}
}
