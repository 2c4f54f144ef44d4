package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// In-memory fakes shared by the service tests. They mirror the storage
// behavior the services depend on, including ErrNotFound sentinels.

type sentNotification struct {
	To         string
	Subject    string
	Body       string
	Attachment string
}

type fakeNotifier struct {
	sends []sentNotification
	fail  bool
}

func (n *fakeNotifier) Send(_ context.Context, to, subject, body, attachment string) error {
	if n.fail {
		return fmt.Errorf("notifier unavailable")
	}
	n.sends = append(n.sends, sentNotification{To: to, Subject: subject, Body: body, Attachment: attachment})
	return nil
}

func (n *fakeNotifier) subjects() []string {
	out := make([]string, 0, len(n.sends))
	for _, s := range n.sends {
		out = append(out, s.Subject)
	}
	return out
}

type fakeUsers struct {
	users []core.User
}

func (f *fakeUsers) GetUser(_ context.Context, id uuid.UUID) (core.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return core.User{}, fmt.Errorf("%w: user %s", core.ErrNotFound, id)
}

func (f *fakeUsers) ListUsers(context.Context) ([]core.User, error) {
	return append([]core.User(nil), f.users...), nil
}

func (f *fakeUsers) CreateUser(_ context.Context, u core.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: a user with email %s already exists", core.ErrValidation, u.Email)
		}
	}
	f.users = append(f.users, u)
	return nil
}

type fakeTransactions struct {
	items     []core.Transaction
	createErr error
}

func (f *fakeTransactions) CreateTransaction(_ context.Context, t core.Transaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.items = append(f.items, t)
	return nil
}

func (f *fakeTransactions) GetTransaction(_ context.Context, id uuid.UUID) (core.Transaction, error) {
	for _, t := range f.items {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("%w: transaction %s", core.ErrNotFound, id)
}

func (f *fakeTransactions) ListUserTransactions(_ context.Context, userID uuid.UUID, tags []string, sortBy string, descending bool) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range f.items {
		if t.UserID == userID && matchesTags(t, tags) {
			out = append(out, t)
		}
	}
	sortTransactions(out, sortBy, descending)
	return out, nil
}

func (f *fakeTransactions) ListAllTransactions(_ context.Context, tags []string, sortBy string, descending bool) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range f.items {
		if matchesTags(t, tags) {
			out = append(out, t)
		}
	}
	sortTransactions(out, sortBy, descending)
	return out, nil
}

func (f *fakeTransactions) ListExpensesSince(_ context.Context, userID uuid.UUID, since time.Time) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range f.items {
		if t.UserID == userID && t.Type == core.Expense && !t.Date.Before(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTransactions) ListTransactionsInRange(_ context.Context, userID uuid.UUID, from, to time.Time) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range f.items {
		if t.UserID == userID && !t.Date.Before(from) && t.Date.Before(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTransactions) ListOpenRecurring(_ context.Context, now time.Time) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range f.items {
		if t.Recurring && !t.EndDate.Before(now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTransactions) UpdateTransaction(_ context.Context, t core.Transaction) error {
	for i := range f.items {
		if f.items[i].ID == t.ID {
			f.items[i] = t
			return nil
		}
	}
	return fmt.Errorf("%w: transaction %s", core.ErrNotFound, t.ID)
}

func (f *fakeTransactions) UpdateTransactionStatus(_ context.Context, id uuid.UUID, status core.TransactionStatus) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("%w: transaction %s", core.ErrNotFound, id)
}

func (f *fakeTransactions) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: transaction %s", core.ErrNotFound, id)
}

func matchesTags(t core.Transaction, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, want := range tags {
		for _, have := range t.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

func sortTransactions(out []core.Transaction, sortBy string, descending bool) {
	sort.SliceStable(out, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "amount":
			less = out[i].ConvertedAmount.LessThan(out[j].ConvertedAmount)
		default:
			less = out[i].Date.Before(out[j].Date)
		}
		if descending {
			return !less
		}
		return less
	})
}

type fakeBudgets struct {
	items []core.Budget
}

func (f *fakeBudgets) CreateBudget(_ context.Context, b core.Budget) error {
	f.items = append(f.items, b)
	return nil
}

func (f *fakeBudgets) GetBudget(_ context.Context, id uuid.UUID) (core.Budget, error) {
	for _, b := range f.items {
		if b.ID == id {
			return b, nil
		}
	}
	return core.Budget{}, fmt.Errorf("%w: budget %s", core.ErrNotFound, id)
}

func (f *fakeBudgets) ListBudgets(_ context.Context, userID uuid.UUID) ([]core.Budget, error) {
	var out []core.Budget
	for _, b := range f.items {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBudgets) FindMonthlyBudget(_ context.Context, userID uuid.UUID, month string, year int) (core.Budget, error) {
	for _, b := range f.items {
		if b.UserID == userID && b.Type == core.MonthlyBudget && b.Month == month && b.Year == year {
			return b, nil
		}
	}
	return core.Budget{}, fmt.Errorf("%w: monthly budget", core.ErrNotFound)
}

func (f *fakeBudgets) FindCategoryBudget(_ context.Context, userID uuid.UUID, category core.Category) (core.Budget, error) {
	for _, b := range f.items {
		if b.UserID == userID && b.Type == core.CategoryBudget && b.Category == category {
			return b, nil
		}
	}
	return core.Budget{}, fmt.Errorf("%w: category budget", core.ErrNotFound)
}

func (f *fakeBudgets) UpdateBudgetAmount(_ context.Context, id uuid.UUID, amount decimal.Decimal) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Amount = amount
			return nil
		}
	}
	return fmt.Errorf("%w: budget %s", core.ErrNotFound, id)
}

func (f *fakeBudgets) SaveBudgetProgress(_ context.Context, id uuid.UUID, current decimal.Decimal) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].CurrentAmount = current
			return nil
		}
	}
	return fmt.Errorf("%w: budget %s", core.ErrNotFound, id)
}

func (f *fakeBudgets) DeleteBudget(_ context.Context, id uuid.UUID) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: budget %s", core.ErrNotFound, id)
}

type fakeGoals struct {
	items []core.Goal
}

func (f *fakeGoals) CreateGoal(_ context.Context, g core.Goal) error {
	f.items = append(f.items, g)
	return nil
}

func (f *fakeGoals) GetGoal(_ context.Context, id uuid.UUID) (core.Goal, error) {
	for _, g := range f.items {
		if g.ID == id {
			return g, nil
		}
	}
	return core.Goal{}, fmt.Errorf("%w: goal %s", core.ErrNotFound, id)
}

func (f *fakeGoals) ListGoals(_ context.Context, userID uuid.UUID) ([]core.Goal, error) {
	var out []core.Goal
	for _, g := range f.items {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGoals) ListAllGoals(context.Context) ([]core.Goal, error) {
	return append([]core.Goal(nil), f.items...), nil
}

func (f *fakeGoals) UpdateGoal(_ context.Context, g core.Goal) error {
	for i := range f.items {
		if f.items[i].ID == g.ID {
			f.items[i] = g
			return nil
		}
	}
	return fmt.Errorf("%w: goal %s", core.ErrNotFound, g.ID)
}

func (f *fakeGoals) SaveGoalProgress(_ context.Context, id uuid.UUID, current decimal.Decimal) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].CurrentAmount = current
			return nil
		}
	}
	return fmt.Errorf("%w: goal %s", core.ErrNotFound, id)
}

func (f *fakeGoals) DeleteGoal(_ context.Context, id uuid.UUID) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: goal %s", core.ErrNotFound, id)
}

type fakeReports struct {
	items []core.Report
}

func (f *fakeReports) CreateReport(_ context.Context, r core.Report) error {
	f.items = append(f.items, r)
	return nil
}

func (f *fakeReports) GetReport(_ context.Context, id uuid.UUID) (core.Report, error) {
	for _, r := range f.items {
		if r.ID == id {
			return r, nil
		}
	}
	return core.Report{}, fmt.Errorf("%w: report %s", core.ErrNotFound, id)
}

func (f *fakeReports) ListReports(_ context.Context, userID uuid.UUID) ([]core.Report, error) {
	var out []core.Report
	for _, r := range f.items {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReports) DeleteReport(_ context.Context, id uuid.UUID) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: report %s", core.ErrNotFound, id)
}

// fakeConverter divides by a fixed per-code rate the way the live converter
// does, or fails outright when err is set.
type fakeConverter struct {
	rates map[string]decimal.Decimal
	err   error
	calls int
}

func (f *fakeConverter) ToUSD(_ context.Context, amount decimal.Decimal, code string) (decimal.Decimal, error) {
	if code == "" || code == "USD" {
		return amount, nil
	}
	f.calls++
	if f.err != nil {
		return decimal.Zero, f.err
	}
	rate, ok := f.rates[code]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rate for %s", core.ErrConversion, code)
	}
	return amount.Div(rate), nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testUser() core.User {
	return core.User{
		ID:       uuid.New(),
		Username: "ada",
		Email:    "ada@example.com",
		Role:     "user",
	}
}
