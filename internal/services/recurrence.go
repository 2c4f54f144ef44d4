package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/notify"
)

// NextOccurrence advances a date by one unit of the recurrence pattern.
// Monthly and yearly steps follow time.AddDate, so 2025-01-31 + monthly
// normalizes to 2025-03-03 the way the rest of the stack expects.
func NextOccurrence(date time.Time, pattern core.RecurrencePattern) time.Time {
	switch pattern {
	case core.Daily:
		return date.AddDate(0, 0, 1)
	case core.Weekly:
		return date.AddDate(0, 0, 7)
	case core.Monthly:
		return date.AddDate(0, 1, 0)
	case core.Yearly:
		return date.AddDate(1, 0, 0)
	default:
		return date
	}
}

// RecurringSweep inspects open recurring templates on a schedule. It emits
// "upcoming" reminders for occurrences due within the next three days and
// flips still-pending templates whose occurrence has passed to missed. The
// sweep never materializes transaction rows.
type RecurringSweep struct {
	transactions TransactionStore
	users        UserStore
	notifier     notify.Notifier
}

func NewRecurringSweep(transactions TransactionStore, users UserStore, notifier notify.Notifier) *RecurringSweep {
	return &RecurringSweep{
		transactions: transactions,
		users:        users,
		notifier:     notifier,
	}
}

// CheckDueRecurring runs one pass over all open recurring templates. It
// returns the number of notifications sent; per-template failures are
// logged and do not stop the sweep.
func (s *RecurringSweep) CheckDueRecurring(ctx context.Context, now time.Time) (int, error) {
	templates, err := s.transactions.ListOpenRecurring(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list open recurring transactions: %w", err)
	}

	slog.InfoContext(ctx, "Checking recurring transactions",
		"total_open", len(templates),
		"date", now.Format("2006-01-02"))

	today := dateOnly(now)
	horizon := today.AddDate(0, 0, 3)
	notified := 0

	for _, t := range templates {
		next := dateOnly(NextOccurrence(t.Date, t.RecurrencePattern))
		if next.Equal(dateOnly(t.Date)) {
			// Unknown pattern; nothing to schedule.
			continue
		}

		user, err := s.users.GetUser(ctx, t.UserID)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping recurring template, owner lookup failed",
				"transaction_id", t.ID, "error", err)
			continue
		}

		// Inclusive three-day window, compared at day granularity.
		if !next.Before(today) && !next.After(horizon) {
			subject := "Upcoming Recurring Transaction Reminder"
			body := fmt.Sprintf("Reminder: Your %s transaction of %s is due on %s.",
				t.Type, core.FormatUSD(t.Amount), next.Format("2006-01-02"))
			if err := s.notifier.Send(ctx, user.Email, subject, body, ""); err != nil {
				slog.ErrorContext(ctx, "Failed to send upcoming-transaction notification",
					"transaction_id", t.ID, "to", user.Email, "error", err)
			} else {
				notified++
			}
		}

		if next.Before(today) && t.Status == core.StatusPending {
			if err := s.transactions.UpdateTransactionStatus(ctx, t.ID, core.StatusMissed); err != nil {
				slog.ErrorContext(ctx, "Failed to mark transaction missed",
					"transaction_id", t.ID, "error", err)
				continue
			}

			subject := "Missed Recurring Transaction Alert"
			body := fmt.Sprintf("ALERT: You missed a scheduled %s transaction of %s on %s. Please take action.",
				t.Type, core.FormatUSD(t.Amount), next.Format("2006-01-02"))
			if err := s.notifier.Send(ctx, user.Email, subject, body, ""); err != nil {
				slog.ErrorContext(ctx, "Failed to send missed-transaction notification",
					"transaction_id", t.ID, "to", user.Email, "error", err)
			} else {
				notified++
			}
		}
	}

	slog.InfoContext(ctx, "Recurring transaction check complete",
		"notifications", notified,
		"total_checked", len(templates))

	return notified, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
