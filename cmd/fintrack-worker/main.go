package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	"fintrack/internal/sweep"
	"fintrack/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentWorker})
	slog.SetDefault(logger)

	logger.Info("Starting fintrack-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// Sweeps publish their notifications to the queue; this same process
	// consumes the queue and delivers over SMTP.
	notifier := notify.NewQueueNotifier(amqpClient)

	var sender notify.Notifier = notify.LogNotifier{}
	if cfg.SMTPHost != "" {
		sender = notify.NewSMTPSender(notify.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: strconv.Itoa(cfg.SMTPPort),
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		})
		logger.Info("SMTP delivery enabled", "host", cfg.SMTPHost, "from", cfg.SMTPFrom)
	} else {
		logger.Info("SMTP disabled - notifications will be logged only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationWorker := worker.NewNotificationWorker(amqpClient, sender)
	consumerDone := make(chan error, 1)
	go func() {
		consumerDone <- notificationWorker.Run(ctx)
	}()

	scheduler := sweep.NewScheduler(
		services.NewRecurringSweep(repo, repo, notifier),
		services.NewTrendAnalyzer(repo, repo, repo, notifier, cfg.TrendConcurrency),
		services.NewReminderSweep(repo, repo, notifier),
		services.NewReportService(repo, repo, repo, notifier, cfg.ReportDir),
	)
	if err := scheduler.Start(ctx, sweep.Schedules{
		Recurring: cfg.RecurringSweepSpec,
		Trends:    cfg.TrendSweepSpec,
		Reminders: cfg.ReminderSweepSpec,
		Reports:   cfg.ReportSweepSpec,
	}); err != nil {
		logger.Error("Failed to start sweep scheduler", "error", err)
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-consumerDone:
		if err != nil && err != context.Canceled {
			logger.Error("Notification consumption failed", "error", err)
		}
	}

	scheduler.Stop()
	logger.Info("Worker stopped gracefully")
}
