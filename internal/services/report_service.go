package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/notify"
)

// ReportService writes monthly statements as CSV files on disk and records
// them so users can list and download past reports.
type ReportService struct {
	reports      ReportStore
	transactions TransactionStore
	users        UserStore
	notifier     notify.Notifier
	dir          string
	now          func() time.Time
}

func NewReportService(reports ReportStore, transactions TransactionStore, users UserStore, notifier notify.Notifier, dir string) *ReportService {
	return &ReportService{
		reports:      reports,
		transactions: transactions,
		users:        users,
		notifier:     notifier,
		dir:          dir,
		now:          time.Now,
	}
}

// GenerateMonthly writes the previous month's statement for one user: every
// transaction in the month plus income, expense and per-category totals. The
// resulting file is recorded and mailed to the user as an attachment.
func (s *ReportService) GenerateMonthly(ctx context.Context, userID uuid.UUID) (core.Report, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return core.Report{}, err
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevStart := monthStart.AddDate(0, -1, 0)

	entries, err := s.transactions.ListTransactionsInRange(ctx, userID, prevStart, monthStart)
	if err != nil {
		return core.Report{}, fmt.Errorf("gather statement entries: %w", err)
	}

	report := core.Report{
		ID:          uuid.New(),
		UserID:      userID,
		GeneratedAt: now,
	}
	name := fmt.Sprintf("statement-%s-%s.csv", prevStart.Format("2006-01"), report.ID)
	report.FilePath = filepath.Join(s.dir, name)

	if err := s.writeCSV(report.FilePath, entries); err != nil {
		return core.Report{}, err
	}
	if err := s.reports.CreateReport(ctx, report); err != nil {
		// Keep disk and table consistent when the insert fails.
		if rmErr := os.Remove(report.FilePath); rmErr != nil {
			slog.ErrorContext(ctx, "Failed to remove orphaned report file",
				"path", report.FilePath, "error", rmErr)
		}
		return core.Report{}, fmt.Errorf("record report: %w", err)
	}

	subject := fmt.Sprintf("Your Monthly Statement - %s %d", prevStart.Month(), prevStart.Year())
	body := fmt.Sprintf("Hi %s, your statement for %s %d is attached.", user.Username, prevStart.Month(), prevStart.Year())
	if err := s.notifier.Send(ctx, user.Email, subject, body, report.FilePath); err != nil {
		slog.ErrorContext(ctx, "Failed to send statement notification",
			"user_id", userID, "report_id", report.ID, "error", err)
	}

	return report, nil
}

// GenerateAll produces last month's statement for every user; the monthly
// sweep calls this. Per-user failures are logged and skipped.
func (s *ReportService) GenerateAll(ctx context.Context) error {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	for _, user := range users {
		if _, err := s.GenerateMonthly(ctx, user.ID); err != nil {
			slog.ErrorContext(ctx, "Monthly statement generation failed",
				"user_id", user.ID, "username", user.Username, "error", err)
		}
	}
	return nil
}

func (s *ReportService) writeCSV(path string, entries []core.Transaction) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "type", "category", "amount_usd", "currency", "original_amount", "status"}); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	income := decimal.Zero
	expense := decimal.Zero
	byCategory := map[core.Category]decimal.Decimal{}
	for _, t := range entries {
		record := []string{
			t.Date.Format("2006-01-02"),
			string(t.Type),
			string(t.Category),
			t.ConvertedAmount.String(),
			t.Currency,
			t.Amount.String(),
			string(t.Status),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
		switch t.Type {
		case core.Income:
			income = income.Add(t.ConvertedAmount)
		case core.Expense:
			expense = expense.Add(t.ConvertedAmount)
			byCategory[t.Category] = byCategory[t.Category].Add(t.ConvertedAmount)
		}
	}

	if err := w.Write([]string{}); err != nil {
		return fmt.Errorf("write report separator: %w", err)
	}
	totals := [][]string{
		{"total income", "", "", income.String(), "", "", ""},
		{"total expenses", "", "", expense.String(), "", "", ""},
		{"net", "", "", income.Sub(expense).String(), "", "", ""},
	}
	categories := make([]core.Category, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	for _, category := range categories {
		totals = append(totals, []string{"category total", "", string(category), byCategory[category].String(), "", "", ""})
	}
	for _, record := range totals {
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write report totals: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}

// Get returns a stored report after an ownership check.
func (s *ReportService) Get(ctx context.Context, userID, reportID uuid.UUID) (core.Report, error) {
	report, err := s.reports.GetReport(ctx, reportID)
	if err != nil {
		return core.Report{}, err
	}
	if report.UserID != userID {
		return core.Report{}, fmt.Errorf("%w: report belongs to another user", core.ErrUnauthorized)
	}
	return report, nil
}

func (s *ReportService) ListForUser(ctx context.Context, userID uuid.UUID) ([]core.Report, error) {
	return s.reports.ListReports(ctx, userID)
}

// Delete removes both the database row and the file on disk. A missing file
// is not an error; the row still goes away.
func (s *ReportService) Delete(ctx context.Context, userID, reportID uuid.UUID) error {
	report, err := s.Get(ctx, userID, reportID)
	if err != nil {
		return err
	}
	if err := s.reports.DeleteReport(ctx, report.ID); err != nil {
		return err
	}
	if err := os.Remove(report.FilePath); err != nil && !os.IsNotExist(err) {
		slog.ErrorContext(ctx, "Failed to remove report file", "path", report.FilePath, "error", err)
	}
	return nil
}
