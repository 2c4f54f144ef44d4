// Package sweep runs the periodic jobs: recurring-transaction checks,
// trend analysis, goal-deadline reminders and monthly statements.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"fintrack/internal/services"
)

// Schedules holds the cron expressions for each job, standard five-field
// syntax.
type Schedules struct {
	Recurring string
	Trends    string
	Reminders string
	Reports   string
}

// Scheduler owns the cron runner. Jobs are skipped, not queued, when a
// previous run is still going.
type Scheduler struct {
	cron      *cron.Cron
	recurring *services.RecurringSweep
	trends    *services.TrendAnalyzer
	reminders *services.ReminderSweep
	reports   *services.ReportService
}

func NewScheduler(recurring *services.RecurringSweep, trends *services.TrendAnalyzer, reminders *services.ReminderSweep, reports *services.ReportService) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
			cron.Recover(cron.DefaultLogger),
		)),
		recurring: recurring,
		trends:    trends,
		reminders: reminders,
		reports:   reports,
	}
}

// Start registers the jobs and kicks off the cron loop. It returns after
// registration; jobs run on the cron goroutine until Stop.
func (s *Scheduler) Start(ctx context.Context, schedules Schedules) error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context)
	}{
		{"recurring_check", schedules.Recurring, func(ctx context.Context) {
			if _, err := s.recurring.CheckDueRecurring(ctx, time.Now()); err != nil {
				slog.ErrorContext(ctx, "Recurring sweep failed", "error", err)
			}
		}},
		{"trend_analysis", schedules.Trends, func(ctx context.Context) {
			if err := s.trends.AnalyzeAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Trend sweep failed", "error", err)
			}
		}},
		{"goal_reminders", schedules.Reminders, func(ctx context.Context) {
			if _, err := s.reminders.CheckGoalDeadlines(ctx); err != nil {
				slog.ErrorContext(ctx, "Reminder sweep failed", "error", err)
			}
		}},
		{"monthly_statements", schedules.Reports, func(ctx context.Context) {
			if err := s.reports.GenerateAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Statement sweep failed", "error", err)
			}
		}},
	}

	for _, job := range jobs {
		name, run := job.name, job.run
		if _, err := s.cron.AddFunc(job.spec, func() {
			start := time.Now()
			slog.InfoContext(ctx, "Sweep started", "job", name)
			run(ctx)
			slog.InfoContext(ctx, "Sweep finished", "job", name, "duration", time.Since(start).String())
		}); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Sweep scheduled", "job", name, "cron", job.spec)
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
