package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/notify"
)

var half = decimal.NewFromFloat(0.5)

// TrendAnalyzer aggregates the last three months of a user's expenses and
// turns budget comparisons into recommendations. It serves both the
// on-demand trends endpoint and the daily all-users sweep.
type TrendAnalyzer struct {
	transactions TransactionStore
	budgets      BudgetStore
	users        UserStore
	notifier     notify.Notifier
	now          func() time.Time
	concurrency  int
}

func NewTrendAnalyzer(transactions TransactionStore, budgets BudgetStore, users UserStore, notifier notify.Notifier, concurrency int) *TrendAnalyzer {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &TrendAnalyzer{
		transactions: transactions,
		budgets:      budgets,
		users:        users,
		notifier:     notifier,
		now:          time.Now,
		concurrency:  concurrency,
	}
}

// Analyze builds the recommendation list for one user and emits one
// notification per recommendation. The current month's spend is compared
// against the monthly budget, then every spent category against its
// category budget; categories without a budget are skipped. Over budget
// suggests an increase, spending under half the budget suggests
// reallocating.
func (a *TrendAnalyzer) Analyze(ctx context.Context, userID uuid.UUID) ([]core.Recommendation, error) {
	user, err := a.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := a.now()
	since := now.AddDate(0, -3, 0)
	expenses, err := a.transactions.ListExpensesSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("gather expense history: %w", err)
	}

	summary := core.SummarizeSpending(expenses)
	recommendations := a.monthlyRecommendations(ctx, userID, summary, now)
	recommendations = append(recommendations, a.categoryRecommendations(ctx, userID, summary)...)

	for _, rec := range recommendations {
		subject := fmt.Sprintf("Budget Adjustment Recommendation for %s", rec.Category)
		if err := a.notifier.Send(ctx, user.Email, subject, rec.Message, ""); err != nil {
			slog.ErrorContext(ctx, "Failed to send recommendation notification",
				"user_id", userID, "category", rec.Category, "error", err)
		}
	}

	return recommendations, nil
}

func (a *TrendAnalyzer) monthlyRecommendations(ctx context.Context, userID uuid.UUID, summary core.SpendingSummary, now time.Time) []core.Recommendation {
	budget, err := a.budgets.FindMonthlyBudget(ctx, userID, core.MonthName(now), now.Year())
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "Monthly budget lookup failed during trend analysis",
			"user_id", userID, "error", err)
		return nil
	}

	spent := summary.MonthTotal(core.MonthKey(now))
	var recs []core.Recommendation

	if spent.GreaterThan(budget.Amount) {
		recs = append(recs, core.Recommendation{
			Category: "Monthly Budget",
			Message: fmt.Sprintf("You have exceeded your monthly budget of %s. You've spent %s this month. We recommend increasing your monthly budget.",
				core.FormatUSD(budget.Amount), core.FormatUSD(spent)),
		})
	}
	if spent.LessThan(budget.Amount.Mul(half)) {
		recs = append(recs, core.Recommendation{
			Category: "Monthly Budget",
			Message: fmt.Sprintf("You have underspent your monthly budget of %s. You've spent %s this month. Consider reallocating some of this budget to other categories.",
				core.FormatUSD(budget.Amount), core.FormatUSD(spent)),
		})
	}
	return recs
}

func (a *TrendAnalyzer) categoryRecommendations(ctx context.Context, userID uuid.UUID, summary core.SpendingSummary) []core.Recommendation {
	categories := make([]core.Category, 0, len(summary.ByCategory))
	for category := range summary.ByCategory {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	var recs []core.Recommendation
	for _, category := range categories {
		budget, err := a.budgets.FindCategoryBudget(ctx, userID, category)
		if errors.Is(err, core.ErrNotFound) {
			continue
		}
		if err != nil {
			slog.ErrorContext(ctx, "Category budget lookup failed during trend analysis",
				"user_id", userID, "category", category, "error", err)
			continue
		}

		spent := summary.ByCategory[category]
		if spent.GreaterThan(budget.Amount) {
			recs = append(recs, core.Recommendation{
				Category: string(category),
				Message: fmt.Sprintf("You have exceeded your %s budget of %s. You've spent %s in this category. We recommend increasing your %s budget.",
					category, core.FormatUSD(budget.Amount), core.FormatUSD(spent), category),
			})
		}
		if spent.LessThan(budget.Amount.Mul(half)) {
			recs = append(recs, core.Recommendation{
				Category: string(category),
				Message: fmt.Sprintf("You have underspent your %s budget of %s. You've spent %s in this category. Consider reallocating some of this budget to other categories.",
					category, core.FormatUSD(budget.Amount), core.FormatUSD(spent)),
			})
		}
	}
	return recs
}

// AnalyzeAll runs trend analysis for every user with bounded concurrency;
// the daily sweep calls this. Per-user failures are logged, not returned.
func (a *TrendAnalyzer) AnalyzeAll(ctx context.Context) error {
	users, err := a.users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for _, user := range users {
		g.Go(func() error {
			if _, err := a.Analyze(ctx, user.ID); err != nil {
				slog.ErrorContext(ctx, "Trend analysis failed for user",
					"user_id", user.ID, "username", user.Username, "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}
