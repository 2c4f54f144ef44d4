package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

func (r *SQLiteRepository) CreateReport(ctx context.Context, rep core.Report) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (id, user_id, file_path, generated_at) VALUES (?, ?, ?, ?)`,
		rep.ID.String(), rep.UserID.String(), rep.FilePath, encodeTime(rep.GeneratedAt))
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetReport(ctx context.Context, id uuid.UUID) (core.Report, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, file_path, generated_at FROM reports WHERE id = ?`, id.String())
	return scanReport(row)
}

func (r *SQLiteRepository) ListReports(ctx context.Context, userID uuid.UUID) ([]core.Report, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, file_path, generated_at FROM reports
		 WHERE user_id = ? ORDER BY generated_at DESC`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []core.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (r *SQLiteRepository) DeleteReport(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reports WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return requireRow(res, "report")
}

func scanReport(row rowScanner) (core.Report, error) {
	var (
		rep         core.Report
		id, userID  string
		generatedAt string
	)
	err := row.Scan(&id, &userID, &rep.FilePath, &generatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Report{}, fmt.Errorf("report: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.Report{}, fmt.Errorf("scan report: %w", err)
	}

	if rep.ID, err = decodeID(id); err != nil {
		return core.Report{}, err
	}
	if rep.UserID, err = decodeID(userID); err != nil {
		return core.Report{}, err
	}
	if rep.GeneratedAt, err = decodeTime(generatedAt); err != nil {
		return core.Report{}, err
	}
	return rep, nil
}
