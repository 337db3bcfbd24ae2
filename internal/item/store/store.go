package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopkeeperpro/shopkeeper/internal/item"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectItemColumns = `id, name, category, reference_price, unit, active, created_at, created_by`

func scanItem(s scanner) (*item.Item, error) {
	var (
		it        item.Item
		category  string
		price     sql.NullFloat64
		active    int
		createdAt int64
	)

	if err := s.Scan(&it.ID, &it.Name, &category, &price, &it.Unit, &active, &createdAt, &it.CreatedBy); err != nil {
		return nil, err
	}

	it.Category = item.Category(category)
	it.Active = active != 0
	it.CreatedAt = time.UnixMilli(createdAt)

	if price.Valid {
		it.ReferencePrice = &price.Float64
	}

	return &it, nil
}

func (s *Store) Upsert(ctx context.Context, it *item.Item) error {
	query := `
		INSERT OR REPLACE INTO items (id, name, category, reference_price, unit, active, created_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		it.ID,
		it.Name,
		it.Category,
		nullFloat(it.ReferencePrice),
		it.Unit,
		boolToInt(it.Active),
		it.CreatedAt.UnixMilli(),
		it.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("upserting item: %w", err)
	}

	return nil
}

func (s *Store) Update(ctx context.Context, it *item.Item) error {
	query := `
		UPDATE items
		SET name = ?, category = ?, reference_price = ?, unit = ?, active = ?
		WHERE id = ?
	`

	_, err := s.db.ExecContext(ctx, query,
		it.Name,
		it.Category,
		nullFloat(it.ReferencePrice),
		it.Unit,
		boolToInt(it.Active),
		it.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}

	return nil
}

// Deactivate flips the active flag off. The row is intentionally preserved.
func (s *Store) Deactivate(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE items SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivating item: %w", err)
	}

	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*item.Item, error) {
	query := `SELECT ` + selectItemColumns + ` FROM items WHERE id = ?`

	it, err := scanItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, item.ErrNotFound
		}

		return nil, fmt.Errorf("getting item: %w", err)
	}

	return it, nil
}

func (s *Store) ListActive(ctx context.Context) ([]*item.Item, error) {
	query := `SELECT ` + selectItemColumns + ` FROM items WHERE active = 1 ORDER BY name`

	return s.list(ctx, query)
}

func (s *Store) Search(ctx context.Context, search string) ([]*item.Item, error) {
	query := `SELECT ` + selectItemColumns + ` FROM items
		WHERE active = 1 AND name LIKE '%' || ? || '%' ORDER BY name`

	return s.list(ctx, query, search)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*item.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []*item.Item

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}

		items = append(items, it)
	}

	return items, rows.Err()
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: *f, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
