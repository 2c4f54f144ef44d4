package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/currency"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentAPI})
	slog.SetDefault(logger)

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

	converter := currency.NewConverter(currency.NewHTTPSource(cfg.RatesURL), cfg.RatesTTL)

	// Notifications go through the queue when a broker is reachable; the
	// API keeps working without one, notifications just land in the log.
	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, notifications will be logged only", "error", err)
		} else {
			defer amqpClient.Close()
			notifier = notify.NewQueueNotifier(amqpClient)
			logger.Info("AMQP notification queue connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	budgetAlloc := services.NewBudgetAllocator(repo, repo, notifier)
	goalAlloc := services.NewGoalAllocator(repo, repo, notifier)

	srv := apphttp.NewServer(cfg.Port, apphttp.Deps{
		Users:        services.NewUserService(repo),
		Transactions: services.NewTransactionService(repo, converter, budgetAlloc, goalAlloc, cfg.RecurrenceMaxInstances),
		Budgets:      services.NewBudgetService(repo),
		Goals:        services.NewGoalService(repo),
		Trends:       services.NewTrendAnalyzer(repo, repo, repo, notifier, cfg.TrendConcurrency),
		Reports:      services.NewReportService(repo, repo, repo, notifier, cfg.ReportDir),
		Dashboard:    services.NewDashboardService(repo, repo, repo),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting fintrack API", "port", cfg.Port)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
