package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/notify"
)

// ReminderSweep notifies users about goal deadlines falling within the
// next week. The worker schedules it once a day.
type ReminderSweep struct {
	goals    GoalStore
	users    UserStore
	notifier notify.Notifier
	now      func() time.Time
}

func NewReminderSweep(goals GoalStore, users UserStore, notifier notify.Notifier) *ReminderSweep {
	return &ReminderSweep{goals: goals, users: users, notifier: notifier, now: time.Now}
}

// CheckGoalDeadlines scans every goal and sends a reminder for those that
// are incomplete with a deadline inside the inclusive [today, today+7d]
// window. It returns the number of reminders sent.
func (s *ReminderSweep) CheckGoalDeadlines(ctx context.Context) (int, error) {
	goals, err := s.goals.ListAllGoals(ctx)
	if err != nil {
		return 0, fmt.Errorf("list goals: %w", err)
	}

	today := dateOnly(s.now())
	cutoff := today.AddDate(0, 0, 7)
	sent := 0

	for _, g := range goals {
		if g.Complete() {
			continue
		}
		deadline := dateOnly(g.Deadline)
		if deadline.Before(today) || deadline.After(cutoff) {
			continue
		}

		user, err := s.users.GetUser(ctx, g.UserID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to resolve user for goal reminder",
				"goal_id", g.ID, "user_id", g.UserID, "error", err)
			continue
		}

		subject := fmt.Sprintf("Reminder: Deadline Approaching for Goal - %s", g.Name)
		body := fmt.Sprintf("Your goal %q has a deadline on %s. You have saved %s of your %s target so far.",
			g.Name, g.Deadline.Format("January 2, 2006"), core.FormatUSD(g.CurrentAmount), core.FormatUSD(g.TargetAmount))
		if err := s.notifier.Send(ctx, user.Email, subject, body, ""); err != nil {
			slog.ErrorContext(ctx, "Failed to send goal deadline reminder",
				"goal_id", g.ID, "user_id", g.UserID, "error", err)
			continue
		}
		sent++
	}

	slog.InfoContext(ctx, "Goal deadline sweep finished", "reminders_sent", sent, "goals_checked", len(goals))
	return sent, nil
}
