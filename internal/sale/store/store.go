package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopkeeperpro/shopkeeper/internal/sale"
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

const selectSaleColumns = `id, user_id, total_amount, items, payment_method, customer_name, customer_phone, created_at, sync_status`

func scanSale(s scanner) (*sale.Sale, error) {
	var (
		sl        sale.Sale
		items     string
		status    string
		createdAt int64
	)

	if err := s.Scan(
		&sl.ID, &sl.UserID, &sl.TotalAmount, &items, &sl.PaymentMethod,
		&sl.CustomerName, &sl.CustomerPhone, &createdAt, &status,
	); err != nil {
		return nil, err
	}

	// ParseItems also understands the pre-migration delimited text form.
	sl.Items = sale.ParseItems(items)
	sl.CreatedAt = time.UnixMilli(createdAt)
	sl.SyncStatus = syncstatus.Status(status)

	return &sl, nil
}

func (s *Store) Insert(ctx context.Context, sl *sale.Sale) error {
	items, err := sale.EncodeItems(sl.Items)
	if err != nil {
		return fmt.Errorf("encoding line items: %w", err)
	}

	query := `
		INSERT INTO sales (id, user_id, total_amount, items, payment_method, customer_name, customer_phone, created_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		sl.ID,
		sl.UserID,
		sl.TotalAmount,
		items,
		sl.PaymentMethod,
		sl.CustomerName,
		sl.CustomerPhone,
		sl.CreatedAt.UnixMilli(),
		syncstatus.Pending,
	)
	if err != nil {
		return fmt.Errorf("inserting sale: %w", err)
	}

	sl.SyncStatus = syncstatus.Pending

	return nil
}

// Update rewrites the mutable fields and unconditionally resets the sync
// status to pending: edited content must reach the remote store again.
func (s *Store) Update(ctx context.Context, sl *sale.Sale) error {
	items, err := sale.EncodeItems(sl.Items)
	if err != nil {
		return fmt.Errorf("encoding line items: %w", err)
	}

	query := `
		UPDATE sales
		SET total_amount = ?, items = ?, payment_method = ?, customer_name = ?, customer_phone = ?, sync_status = ?
		WHERE id = ?
	`

	_, err = s.db.ExecContext(ctx, query,
		sl.TotalAmount,
		items,
		sl.PaymentMethod,
		sl.CustomerName,
		sl.CustomerPhone,
		syncstatus.Pending,
		sl.ID,
	)
	if err != nil {
		return fmt.Errorf("updating sale: %w", err)
	}

	sl.SyncStatus = syncstatus.Pending

	return nil
}

// Delete is a hard delete. An already-synced remote copy is not removed;
// accepted drift for now.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting sale: %w", err)
	}

	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*sale.Sale, error) {
	query := `SELECT ` + selectSaleColumns + ` FROM sales WHERE id = ?`

	sl, err := scanSale(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sale.ErrNotFound
		}

		return nil, fmt.Errorf("getting sale: %w", err)
	}

	return sl, nil
}

func (s *Store) List(ctx context.Context, filter sale.ListFilter) ([]*sale.Sale, error) {
	query := `SELECT ` + selectSaleColumns + ` FROM sales WHERE 1=1`

	var args []any

	if filter.UserID != "" {
		query += " AND user_id = ?"

		args = append(args, filter.UserID)
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

// ListUnsynced returns a point-in-time snapshot of every sale not yet
// durably pushed, covering both pending and failed records.
func (s *Store) ListUnsynced(ctx context.Context) ([]*sale.Sale, error) {
	query := `SELECT ` + selectSaleColumns + ` FROM sales WHERE sync_status != ? ORDER BY created_at`

	return s.list(ctx, query, syncstatus.Synced)
}

func (s *Store) MarkSynced(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf("UPDATE sales SET sync_status = ? WHERE id IN (%s)", placeholders)

	args := make([]any, 0, len(ids)+1)
	args = append(args, syncstatus.Synced)

	for _, id := range ids {
		args = append(args, id)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("marking sales synced: %w", err)
	}

	return nil
}

func (s *Store) TotalForRange(ctx context.Context, start, end time.Time) (float64, int64, error) {
	query := `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM sales
		WHERE created_at >= ? AND created_at <= ?
	`

	var (
		total float64
		count int64
	)

	err := s.db.QueryRowContext(ctx, query, start.UnixMilli(), end.UnixMilli()).Scan(&total, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("totaling sales: %w", err)
	}

	return total, count, nil
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*sale.Sale, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	defer rows.Close()

	var sales []*sale.Sale

	for rows.Next() {
		sl, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sale: %w", err)
		}

		sales = append(sales, sl)
	}

	return sales, rows.Err()
}
