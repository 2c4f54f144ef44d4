package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const budgetColumns = `id, user_id, type, category, amount, current_amount, month, year`

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) error {
	var category, month sql.NullString
	var year sql.NullInt64
	if b.Category != "" {
		category = sql.NullString{String: string(b.Category), Valid: true}
	}
	if b.Month != "" {
		month = sql.NullString{String: b.Month, Valid: true}
	}
	if b.Year != 0 {
		year = sql.NullInt64{Int64: int64(b.Year), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID.String(), b.UserID.String(), string(b.Type), category,
		b.Amount.String(), b.CurrentAmount.String(), month, year)
	if isUniqueViolation(err) {
		if b.Type == core.MonthlyBudget {
			return fmt.Errorf("%w: a monthly budget for %s %d already exists", core.ErrValidation, b.Month, b.Year)
		}
		return fmt.Errorf("%w: a budget for the category %q already exists", core.ErrValidation, b.Category)
	}
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id uuid.UUID) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id.String())
	return scanBudget(row)
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID uuid.UUID) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? ORDER BY type, category`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// FindMonthlyBudget returns the single monthly budget for the given calendar
// month; the unique index guarantees at most one row.
func (r *SQLiteRepository) FindMonthlyBudget(ctx context.Context, userID uuid.UUID, month string, year int) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets
		 WHERE user_id = ? AND type = 'monthly' AND month = ? AND year = ?`,
		userID.String(), month, year)
	return scanBudget(row)
}

// FindCategoryBudget returns the single category budget for the given
// category; the unique index guarantees at most one row.
func (r *SQLiteRepository) FindCategoryBudget(ctx context.Context, userID uuid.UUID, category core.Category) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets
		 WHERE user_id = ? AND type = 'category' AND category = ?`,
		userID.String(), string(category))
	return scanBudget(row)
}

// UpdateBudgetAmount changes the budget's target amount.
func (r *SQLiteRepository) UpdateBudgetAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET amount = ? WHERE id = ?`, amount.String(), id.String())
	if err != nil {
		return fmt.Errorf("update budget amount: %w", err)
	}
	return requireRow(res, "budget")
}

// SaveBudgetProgress persists a new accumulated spend for the budget.
func (r *SQLiteRepository) SaveBudgetProgress(ctx context.Context, id uuid.UUID, current decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET current_amount = ? WHERE id = ?`, current.String(), id.String())
	if err != nil {
		return fmt.Errorf("save budget progress: %w", err)
	}
	return requireRow(res, "budget")
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res, "budget")
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b               core.Budget
		id, userID      string
		budgetType      string
		category, month sql.NullString
		amount, current string
		year            sql.NullInt64
	)
	err := row.Scan(&id, &userID, &budgetType, &category, &amount, &current, &month, &year)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("scan budget: %w", err)
	}

	if b.ID, err = decodeID(id); err != nil {
		return core.Budget{}, err
	}
	if b.UserID, err = decodeID(userID); err != nil {
		return core.Budget{}, err
	}
	if b.Amount, err = decodeAmount(amount); err != nil {
		return core.Budget{}, err
	}
	if b.CurrentAmount, err = decodeAmount(current); err != nil {
		return core.Budget{}, err
	}

	b.Type = core.BudgetType(budgetType)
	if category.Valid {
		b.Category = core.Category(category.String)
	}
	if month.Valid {
		b.Month = month.String
	}
	if year.Valid {
		b.Year = int(year.Int64)
	}
	return b, nil
}
