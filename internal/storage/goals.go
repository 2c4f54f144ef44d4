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

const goalColumns = `id, user_id, name, target_amount, current_amount, deadline, allocation_percentage`

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (`+goalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID.String(), g.UserID.String(), g.Name,
		g.TargetAmount.String(), g.CurrentAmount.String(),
		encodeTime(g.Deadline), g.AllocationPercentage.String())
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id uuid.UUID) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ?`, id.String())
	return scanGoal(row)
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID uuid.UUID) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY deadline`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()
	return collectGoals(rows)
}

// ListAllGoals returns every goal in the system; the deadline-reminder sweep
// is its caller.
func (r *SQLiteRepository) ListAllGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals ORDER BY deadline`)
	if err != nil {
		return nil, fmt.Errorf("list all goals: %w", err)
	}
	defer rows.Close()
	return collectGoals(rows)
}

// UpdateGoal rewrites the editable fields of a goal.
func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals
		 SET name = ?, target_amount = ?, current_amount = ?, deadline = ?, allocation_percentage = ?
		 WHERE id = ?`,
		g.Name, g.TargetAmount.String(), g.CurrentAmount.String(),
		encodeTime(g.Deadline), g.AllocationPercentage.String(),
		g.ID.String())
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res, "goal")
}

// SaveGoalProgress persists a new accumulated amount for the goal.
func (r *SQLiteRepository) SaveGoalProgress(ctx context.Context, id uuid.UUID, current decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET current_amount = ? WHERE id = ?`, current.String(), id.String())
	if err != nil {
		return fmt.Errorf("save goal progress: %w", err)
	}
	return requireRow(res, "goal")
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM goals WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireRow(res, "goal")
}

func collectGoals(rows *sql.Rows) ([]core.Goal, error) {
	var goals []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func scanGoal(row rowScanner) (core.Goal, error) {
	var (
		g                    core.Goal
		id, userID           string
		target, current, pct string
		deadline             string
	)
	err := row.Scan(&id, &userID, &g.Name, &target, &current, &deadline, &pct)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, fmt.Errorf("goal: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("scan goal: %w", err)
	}

	if g.ID, err = decodeID(id); err != nil {
		return core.Goal{}, err
	}
	if g.UserID, err = decodeID(userID); err != nil {
		return core.Goal{}, err
	}
	if g.TargetAmount, err = decodeAmount(target); err != nil {
		return core.Goal{}, err
	}
	if g.CurrentAmount, err = decodeAmount(current); err != nil {
		return core.Goal{}, err
	}
	if g.AllocationPercentage, err = decodeAmount(pct); err != nil {
		return core.Goal{}, err
	}
	if g.Deadline, err = decodeTime(deadline); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}
