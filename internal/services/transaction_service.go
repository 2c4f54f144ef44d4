package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// TransactionService owns the transaction-creation flow: currency
// normalization, persistence, allocator dispatch and recurrence expansion.
type TransactionService struct {
	transactions TransactionStore
	converter    Converter
	budgets      *BudgetAllocator
	goals        *GoalAllocator
	maxInstances int
}

// NewTransactionService wires the creation flow. maxInstances caps eager
// recurrence expansion so a daily recurrence with a distant end date cannot
// flood the store.
func NewTransactionService(transactions TransactionStore, converter Converter, budgets *BudgetAllocator, goals *GoalAllocator, maxInstances int) *TransactionService {
	if maxInstances <= 0 {
		maxInstances = 100
	}
	return &TransactionService{
		transactions: transactions,
		converter:    converter,
		budgets:      budgets,
		goals:        goals,
		maxInstances: maxInstances,
	}
}

// CreateTransactionInput carries the user-entered fields of a new
// transaction.
type CreateTransactionInput struct {
	UserID            uuid.UUID
	Amount            decimal.Decimal
	Currency          string
	Type              core.TransactionType
	Category          core.Category
	Tags              []string
	Date              time.Time
	Recurring         bool
	RecurrencePattern core.RecurrencePattern
	EndDate           time.Time
}

// Create validates and persists a new transaction. The entered amount is
// normalized to USD first; a conversion failure aborts the whole flow with
// nothing persisted. Expenses feed the budget allocator, incomes the goal
// allocator, and recurring templates are expanded into future instances
// that go through the same dispatch.
func (s *TransactionService) Create(ctx context.Context, in CreateTransactionInput) (core.Transaction, error) {
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	t := core.Transaction{
		ID:                uuid.New(),
		UserID:            in.UserID,
		Amount:            in.Amount,
		Currency:          in.Currency,
		Type:              in.Type,
		Category:          in.Category,
		Tags:              in.Tags,
		Date:              in.Date,
		Recurring:         in.Recurring,
		RecurrencePattern: in.RecurrencePattern,
		EndDate:           in.EndDate,
		Status:            core.StatusPending,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	usd, err := s.converter.ToUSD(ctx, t.Amount, t.Currency)
	if err != nil {
		return core.Transaction{}, err
	}
	t.ConvertedAmount = usd

	if err := s.transactions.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.dispatch(ctx, t)

	if t.Recurring && !t.EndDate.IsZero() {
		created := s.expand(ctx, t)
		slog.InfoContext(ctx, "Recurring transaction expanded",
			"template_id", t.ID,
			"pattern", t.RecurrencePattern,
			"instances", created)
	}

	return t, nil
}

// dispatch routes the USD amount to the matching allocator. Allocators are
// best-effort and never fail the creation flow.
func (s *TransactionService) dispatch(ctx context.Context, t core.Transaction) {
	switch t.Type {
	case core.Expense:
		s.budgets.ApplyExpense(ctx, t.UserID, t.ConvertedAmount, t.Category)
	case core.Income:
		s.goals.ApplyIncome(ctx, t.UserID, t.ConvertedAmount)
	}
}

// expand eagerly materializes instances of a recurring template at every
// pattern step strictly before the end date, stopping at the instance cap.
func (s *TransactionService) expand(ctx context.Context, template core.Transaction) int {
	created := 0
	next := NextOccurrence(template.Date, template.RecurrencePattern)

	for next.Before(template.EndDate) {
		if created >= s.maxInstances {
			slog.WarnContext(ctx, "Recurrence expansion hit instance cap",
				"template_id", template.ID,
				"cap", s.maxInstances,
				"end_date", template.EndDate.Format("2006-01-02"))
			break
		}

		instance := template
		instance.ID = uuid.New()
		instance.Date = next
		instance.Status = core.StatusPending
		instance.Tags = append([]string(nil), template.Tags...)

		if err := s.transactions.CreateTransaction(ctx, instance); err != nil {
			slog.ErrorContext(ctx, "Failed to materialize recurring instance",
				"template_id", template.ID,
				"date", next.Format("2006-01-02"),
				"error", err)
		} else {
			s.dispatch(ctx, instance)
			created++
		}

		advanced := NextOccurrence(next, template.RecurrencePattern)
		if !advanced.After(next) {
			break
		}
		next = advanced
	}

	return created
}

// Get returns one transaction by ID.
func (s *TransactionService) Get(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	return s.transactions.GetTransaction(ctx, id)
}

// ListForUser returns a user's transactions with optional tag filtering and
// sorting by "date" or "amount".
func (s *TransactionService) ListForUser(ctx context.Context, userID uuid.UUID, tags []string, sortBy string, descending bool) ([]core.Transaction, error) {
	return s.transactions.ListUserTransactions(ctx, userID, tags, sortBy, descending)
}

// ListAll returns every transaction in the system and is restricted to
// admins by the caller.
func (s *TransactionService) ListAll(ctx context.Context, actor core.User, tags []string, sortBy string, descending bool) ([]core.Transaction, error) {
	if actor.Role != core.RoleAdmin {
		return nil, fmt.Errorf("%w: admins only", core.ErrUnauthorized)
	}
	return s.transactions.ListAllTransactions(ctx, tags, sortBy, descending)
}

// MarkCompleted flips a pending or missed transaction to completed and
// rejects double completion.
func (s *TransactionService) MarkCompleted(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	t, err := s.transactions.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.Status == core.StatusCompleted {
		return core.Transaction{}, fmt.Errorf("%w: transaction is already marked as completed", core.ErrValidation)
	}

	if err := s.transactions.UpdateTransactionStatus(ctx, id, core.StatusCompleted); err != nil {
		return core.Transaction{}, err
	}
	t.Status = core.StatusCompleted
	return t, nil
}

// Update rewrites the editable fields of an existing transaction. The
// amount is re-normalized when amount or currency changed.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	existing, err := s.transactions.GetTransaction(ctx, t.ID)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if !t.Amount.Equal(existing.Amount) || t.Currency != existing.Currency {
		usd, err := s.converter.ToUSD(ctx, t.Amount, t.Currency)
		if err != nil {
			return core.Transaction{}, err
		}
		t.ConvertedAmount = usd
	} else {
		t.ConvertedAmount = existing.ConvertedAmount
	}

	if err := s.transactions.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// Delete removes a transaction. Nothing cascades: budgets and goals keep
// whatever the allocators already accumulated.
func (s *TransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.transactions.DeleteTransaction(ctx, id)
}
