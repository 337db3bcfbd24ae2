package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopkeeperpro/shopkeeper/internal/expense"
	"github.com/shopkeeperpro/shopkeeper/internal/syncstatus"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectExpenseColumns = `id, user_id, category, description, amount, image_uri, created_at, sync_status`

func scanExpense(s scanner) (*expense.Expense, error) {
	var (
		e         expense.Expense
		category  string
		status    string
		createdAt int64
	)

	if err := s.Scan(&e.ID, &e.UserID, &category, &e.Description, &e.Amount, &e.ImageURI, &createdAt, &status); err != nil {
		return nil, err
	}

	e.Category = expense.Category(category)
	e.CreatedAt = time.UnixMilli(createdAt)
	e.SyncStatus = syncstatus.Status(status)

	return &e, nil
}

func (s *Store) Insert(ctx context.Context, e *expense.Expense) error {
	query := `
		INSERT INTO expenses (id, user_id, category, description, amount, image_uri, created_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.UserID,
		e.Category,
		e.Description,
		e.Amount,
		e.ImageURI,
		e.CreatedAt.UnixMilli(),
		syncstatus.Pending,
	)
	if err != nil {
		return fmt.Errorf("inserting expense: %w", err)
	}

	e.SyncStatus = syncstatus.Pending

	return nil
}

// Update rewrites the mutable fields and resets sync status to pending.
func (s *Store) Update(ctx context.Context, e *expense.Expense) error {
	query := `
		UPDATE expenses
		SET category = ?, description = ?, amount = ?, image_uri = ?, sync_status = ?
		WHERE id = ?
	`

	_, err := s.db.ExecContext(ctx, query,
		e.Category,
		e.Description,
		e.Amount,
		e.ImageURI,
		syncstatus.Pending,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating expense: %w", err)
	}

	e.SyncStatus = syncstatus.Pending

	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}

	return nil
}

// DeleteAll clears every row. Irreversible.
func (s *Store) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM expenses`)
	if err != nil {
		return fmt.Errorf("clearing expenses: %w", err)
	}

	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*expense.Expense, error) {
	query := `SELECT ` + selectExpenseColumns + ` FROM expenses WHERE id = ?`

	e, err := scanExpense(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, expense.ErrNotFound
		}

		return nil, fmt.Errorf("getting expense: %w", err)
	}

	return e, nil
}

func (s *Store) List(ctx context.Context, filter expense.ListFilter) ([]*expense.Expense, error) {
	query := `SELECT ` + selectExpenseColumns + ` FROM expenses WHERE 1=1`

	var args []any

	if filter.Category != nil {
		query += " AND category = ?"

		args = append(args, *filter.Category)
	}

	if filter.StartDate != nil {
		query += " AND created_at >= ?"

		args = append(args, filter.StartDate.UnixMilli())
	}

	if filter.EndDate != nil {
		query += " AND created_at <= ?"

		args = append(args, filter.EndDate.UnixMilli())
	}

	query += " ORDER BY created_at DESC"

	return s.list(ctx, query, args...)
}

func (s *Store) ListUnsynced(ctx context.Context) ([]*expense.Expense, error) {
	query := `SELECT ` + selectExpenseColumns + ` FROM expenses WHERE sync_status != ? ORDER BY created_at`

	return s.list(ctx, query, syncstatus.Synced)
}

func (s *Store) MarkSynced(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, syncstatus.Synced)
}

func (s *Store) MarkFailed(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, syncstatus.Failed)
}

func (s *Store) setStatus(ctx context.Context, id string, status syncstatus.Status) error {
	_, err := s.db.ExecContext(ctx, `UPDATE expenses SET sync_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("setting expense sync status: %w", err)
	}

	return nil
}

func (s *Store) TotalForRange(ctx context.Context, start, end time.Time) (float64, int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM expenses
		WHERE created_at >= ? AND created_at <= ?
	`

	var (
		total float64
		count int64
	)

	err := s.db.QueryRowContext(ctx, query, start.UnixMilli(), end.UnixMilli()).Scan(&total, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("totaling expenses: %w", err)
	}

	return total, count, nil
}

func (s *Store) TotalsByCategory(ctx context.Context, start, end time.Time) (map[expense.Category]float64, error) {
	query := `
		SELECT category, COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE created_at >= ? AND created_at <= ?
		GROUP BY category
	`

	rows, err := s.db.QueryContext(ctx, query, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("totaling expenses by category: %w", err)
	}
	defer rows.Close()

	totals := make(map[expense.Category]float64)

	for rows.Next() {
		var (
			category string
			total    float64
		)

		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("scanning category total: %w", err)
		}

		totals[expense.Category(category)] = total
	}

	return totals, rows.Err()
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*expense.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*expense.Expense

	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}

		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}
