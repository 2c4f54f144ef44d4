package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const transactionColumns = `id, user_id, amount, currency, converted_amount, type, category,
	tags, date, recurring, recurrence_pattern, end_date, status`

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	var pattern, endDate sql.NullString
	if t.RecurrencePattern != "" {
		pattern = sql.NullString{String: string(t.RecurrencePattern), Valid: true}
	}
	if !t.EndDate.IsZero() {
		endDate = sql.NullString{String: encodeTime(t.EndDate), Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.UserID.String(),
		t.Amount.String(), t.Currency, t.ConvertedAmount.String(),
		string(t.Type), string(t.Category), string(tags),
		encodeTime(t.Date), t.Recurring, pattern, endDate, string(t.Status))
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id.String())
	return scanTransaction(row)
}

// transactionSortColumns whitelists user-supplied sort fields.
var transactionSortColumns = map[string]string{
	"date":   "date",
	"amount": "CAST(converted_amount AS REAL)",
}

// ListUserTransactions returns a user's transactions, optionally filtered to
// those carrying at least one of the given tags, sorted by date or amount.
func (r *SQLiteRepository) ListUserTransactions(ctx context.Context, userID uuid.UUID, tags []string, sortBy string, descending bool) ([]core.Transaction, error) {
	return r.listTransactions(ctx, `WHERE user_id = ?`, []any{userID.String()}, tags, sortBy, descending)
}

// ListAllTransactions returns every transaction in the system; the admin
// listing endpoint is its only caller.
func (r *SQLiteRepository) ListAllTransactions(ctx context.Context, tags []string, sortBy string, descending bool) ([]core.Transaction, error) {
	return r.listTransactions(ctx, ``, nil, tags, sortBy, descending)
}

func (r *SQLiteRepository) listTransactions(ctx context.Context, where string, args []any, tags []string, sortBy string, descending bool) ([]core.Transaction, error) {
	order := "date"
	if col, ok := transactionSortColumns[sortBy]; ok {
		order = col
	}
	dir := "ASC"
	if descending {
		dir = "DESC"
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions `+where+` ORDER BY `+order+` `+dir, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return txs, nil
	}

	// Tag matching happens here rather than in SQL; tags are a JSON array
	// column and the lists involved are small.
	wanted := make(map[string]bool, len(tags))
	for _, tag := range tags {
		wanted[tag] = true
	}
	filtered := txs[:0]
	for _, t := range txs {
		for _, tag := range t.Tags {
			if wanted[tag] {
				filtered = append(filtered, t)
				break
			}
		}
	}
	return filtered, nil
}

// ListExpensesSince returns a user's expense transactions dated at or after
// the cutoff; the trend analyzer feeds on this.
func (r *SQLiteRepository) ListExpensesSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE user_id = ? AND type = 'expense' AND date >= ?
		 ORDER BY date`,
		userID.String(), encodeTime(since))
	if err != nil {
		return nil, fmt.Errorf("list expenses since: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListTransactionsInRange returns a user's transactions with from <= date < to.
func (r *SQLiteRepository) ListTransactionsInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE user_id = ? AND date >= ? AND date < ?
		 ORDER BY date`,
		userID.String(), encodeTime(from), encodeTime(to))
	if err != nil {
		return nil, fmt.Errorf("list transactions in range: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListOpenRecurring returns recurring templates whose end date has not
// passed yet; the upcoming/missed sweep scans these.
func (r *SQLiteRepository) ListOpenRecurring(ctx context.Context, now time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE recurring = 1 AND end_date >= ?
		 ORDER BY date`,
		encodeTime(now))
	if err != nil {
		return nil, fmt.Errorf("list open recurring: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// CategoryTotal is one row of the dashboard aggregation: total converted
// spend or income per (type, category).
type CategoryTotal struct {
	Type     core.TransactionType
	Category core.Category
	Total    decimal.Decimal
}

// SumByTypeAndCategory aggregates a user's converted amounts grouped by
// transaction type and category.
func (r *SQLiteRepository) SumByTypeAndCategory(ctx context.Context, userID uuid.UUID) ([]CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT type, category, SUM(CAST(converted_amount AS REAL))
		 FROM transactions
		 WHERE user_id = ?
		 GROUP BY type, category
		 ORDER BY type, category`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("sum by type and category: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var (
			txType, category string
			total            float64
		)
		if err := rows.Scan(&txType, &category, &total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, CategoryTotal{
			Type:     core.TransactionType(txType),
			Category: core.Category(category),
			Total:    decimal.NewFromFloat(total),
		})
	}
	return totals, rows.Err()
}

func (r *SQLiteRepository) UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status core.TransactionStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET status = ? WHERE id = ?`, string(status), id.String())
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	return requireRow(res, "transaction")
}

// UpdateTransaction rewrites the editable fields of an existing transaction.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	var pattern, endDate sql.NullString
	if t.RecurrencePattern != "" {
		pattern = sql.NullString{String: string(t.RecurrencePattern), Valid: true}
	}
	if !t.EndDate.IsZero() {
		endDate = sql.NullString{String: encodeTime(t.EndDate), Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET amount = ?, currency = ?, converted_amount = ?, type = ?, category = ?,
		     tags = ?, date = ?, recurring = ?, recurrence_pattern = ?, end_date = ?, status = ?
		 WHERE id = ?`,
		t.Amount.String(), t.Currency, t.ConvertedAmount.String(),
		string(t.Type), string(t.Category), string(tags),
		encodeTime(t.Date), t.Recurring, pattern, endDate, string(t.Status),
		t.ID.String())
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res, "transaction")
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res, "transaction")
}

func requireRow(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", entity, core.ErrNotFound)
	}
	return nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                          core.Transaction
		id, userID, amount, conv   string
		txType, category, tagsJSON string
		date                       string
		pattern, endDate           sql.NullString
		status                     string
	)
	err := row.Scan(&id, &userID, &amount, &t.Currency, &conv, &txType, &category,
		&tagsJSON, &date, &t.Recurring, &pattern, &endDate, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	if t.ID, err = decodeID(id); err != nil {
		return core.Transaction{}, err
	}
	if t.UserID, err = decodeID(userID); err != nil {
		return core.Transaction{}, err
	}
	if t.Amount, err = decodeAmount(amount); err != nil {
		return core.Transaction{}, err
	}
	if t.ConvertedAmount, err = decodeAmount(conv); err != nil {
		return core.Transaction{}, err
	}
	if t.Date, err = decodeTime(date); err != nil {
		return core.Transaction{}, err
	}
	if endDate.Valid {
		if t.EndDate, err = decodeTime(endDate.String); err != nil {
			return core.Transaction{}, err
		}
	}
	if err = json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil {
		return core.Transaction{}, fmt.Errorf("decode tags: %w", err)
	}

	t.Type = core.TransactionType(txType)
	t.Category = core.Category(category)
	if pattern.Valid {
		t.RecurrencePattern = core.RecurrencePattern(pattern.String)
	}
	t.Status = core.TransactionStatus(status)
	return t, nil
}
