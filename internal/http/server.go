// Package http exposes the JSON API: transactions, budgets, goals, trends,
// reports and the dashboard.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// Server wires the handlers and fronting middleware around the services.
type Server struct {
	http.Server

	users        *services.UserService
	transactions *services.TransactionService
	budgets      *services.BudgetService
	goals        *services.GoalService
	trends       *services.TrendAnalyzer
	reports      *services.ReportService
	dashboard    *services.DashboardService

	limiter   *ratelimit.Limiter
	extractIP *security.IPExtractor
}

// Deps collects everything the server needs; all fields are required.
type Deps struct {
	Users        *services.UserService
	Transactions *services.TransactionService
	Budgets      *services.BudgetService
	Goals        *services.GoalService
	Trends       *services.TrendAnalyzer
	Reports      *services.ReportService
	Dashboard    *services.DashboardService
}

func NewServer(port string, deps Deps) *Server {
	s := &Server{
		users:        deps.Users,
		transactions: deps.Transactions,
		budgets:      deps.Budgets,
		goals:        deps.Goals,
		trends:       deps.Trends,
		reports:      deps.Reports,
		dashboard:    deps.Dashboard,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		extractIP:    security.NewIPExtractor(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:              ":" + port,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/users", s.handleCreateUser)
	mux.HandleFunc("GET /api/users", s.handleListUsers)
	mux.HandleFunc("GET /api/users/me", s.handleCurrentUser)

	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /api/transactions/all", s.handleListAllTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /api/transactions/{id}/complete", s.handleCompleteTransaction)

	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("GET /api/budgets/{id}", s.handleGetBudget)
	mux.HandleFunc("PUT /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("GET /api/goals/{id}", s.handleGetGoal)
	mux.HandleFunc("PUT /api/goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)

	mux.HandleFunc("GET /api/trends", s.handleTrends)

	mux.HandleFunc("POST /api/reports", s.handleGenerateReport)
	mux.HandleFunc("GET /api/reports", s.handleListReports)
	mux.HandleFunc("GET /api/reports/{id}", s.handleDownloadReport)
	mux.HandleFunc("DELETE /api/reports/{id}", s.handleDeleteReport)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
}

func (s *Server) middleware(next http.Handler) http.Handler {
	extract := s.extractIP.ExtractClientIP

	handler := s.limiter.Middleware(extract, nil)(next)
	handler = trace.NewMiddleware(extract).Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "HTTP server listening", "addr", s.Addr)
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.limiter.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("HTTP server stopped")
	return nil
}
