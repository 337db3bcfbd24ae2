// Package pgstore backs the remote document contract with a Postgres JSONB
// table. Each document is one row keyed by (store_id, collection, doc_id);
// Delta sentinels resolve inside a row-locking transaction.
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/shopkeeperpro/shopkeeper/internal/remote"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Open connects with the pgx stdlib driver and ensures the schema.
func Open(ctx context.Context, url string) (*Store, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("opening remote store: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging remote store: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		return nil, err
	}

	return New(db), nil
}

func Migrate(ctx context.Context, db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			store_id   TEXT NOT NULL DEFAULT '',
			collection TEXT NOT NULL,
			doc_id     TEXT NOT NULL,
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (store_id, collection, doc_id)
		)
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrating remote store: %w", err)
	}

	return nil
}

func (s *Store) Set(ctx context.Context, path remote.Path, doc remote.Document) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.set(ctx, tx, path, doc)
	})
}

func (s *Store) BatchSet(ctx context.Context, writes []remote.Write) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, w := range writes {
			if err := s.set(ctx, tx, w.Path, w.Doc); err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *Store) Update(ctx context.Context, path remote.Path, fields remote.Document) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		existing, err := lockDoc(ctx, tx, path)
		if err != nil {
			return err
		}

		if existing == nil {
			return remote.ErrNotFound
		}

		merged := s.resolve(existing, fields)

		raw, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("encoding document %s: %w", path, err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE documents SET doc = $1, updated_at = now()
			WHERE store_id = $2 AND collection = $3 AND doc_id = $4
		`, raw, path.StoreID, path.Collection, path.DocID)
		if err != nil {
			return fmt.Errorf("updating document %s: %w", path, err)
		}

		return nil
	})
}

func (s *Store) Get(ctx context.Context, path remote.Path) (remote.Document, error) {
	var raw []byte

	err := s.db.QueryRowContext(ctx, `
		SELECT doc FROM documents
		WHERE store_id = $1 AND collection = $2 AND doc_id = $3
	`, path.StoreID, path.Collection, path.DocID).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, remote.ErrNotFound
		}

		return nil, fmt.Errorf("getting document %s: %w", path, err)
	}

	return decode(raw)
}

func (s *Store) ListWhere(ctx context.Context, storeID, collection string, filter remote.Document) (map[string]remote.Document, error) {
	query := `SELECT doc_id, doc FROM documents WHERE store_id = $1 AND collection = $2`
	args := []any{storeID, collection}

	if len(filter) > 0 {
		raw, err := json.Marshal(filter)
		if err != nil {
			return nil, fmt.Errorf("encoding filter: %w", err)
		}

		query += ` AND doc @> $3`

		args = append(args, raw)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s/%s: %w", storeID, collection, err)
	}
	defer rows.Close()

	out := make(map[string]remote.Document)

	for rows.Next() {
		var (
			docID string
			raw   []byte
		)

		if err := rows.Scan(&docID, &raw); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		doc, err := decode(raw)
		if err != nil {
			return nil, err
		}

		out[docID] = doc
	}

	return out, rows.Err()
}

// set resolves sentinels against the current row and upserts. Increments in
// a Set fold into whatever the document held before the overwrite.
func (s *Store) set(ctx context.Context, tx *sql.Tx, path remote.Path, doc remote.Document) error {
	existing, err := lockDoc(ctx, tx, path)
	if err != nil {
		return err
	}

	resolved := s.resolve(existing, doc)

	// A plain Set replaces the document rather than merging.
	for key := range existing {
		if _, ok := doc[key]; !ok {
			delete(resolved, key)
		}
	}

	raw, err := json.Marshal(resolved)
	if err != nil {
		return fmt.Errorf("encoding document %s: %w", path, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (store_id, collection, doc_id, doc)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (store_id, collection, doc_id)
		DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`, path.StoreID, path.Collection, path.DocID, raw)
	if err != nil {
		return fmt.Errorf("setting document %s: %w", path, err)
	}

	return nil
}

func (s *Store) resolve(base, fields remote.Document) remote.Document {
	out := make(remote.Document, len(base)+len(fields))
	for k, v := range base {
		out[k] = v
	}

	for key, value := range fields {
		delta, ok := value.(remote.Delta)
		if !ok {
			out[key] = value
			continue
		}

		switch delta.Kind {
		case remote.DeltaIncrement:
			current, _ := out[key].(float64)
			out[key] = current + delta.Amount
		case remote.DeltaServerTimestamp:
			out[key] = s.now().UnixMilli()
		}
	}

	return out
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning remote tx: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing remote tx: %w", err)
	}

	return nil
}

// lockDoc returns the current document under FOR UPDATE, or nil when the row
// does not exist.
func lockDoc(ctx context.Context, tx *sql.Tx, path remote.Path) (remote.Document, error) {
	var raw []byte

	err := tx.QueryRowContext(ctx, `
		SELECT doc FROM documents
		WHERE store_id = $1 AND collection = $2 AND doc_id = $3
		FOR UPDATE
	`, path.StoreID, path.Collection, path.DocID).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("locking document %s: %w", path, err)
	}

	return decode(raw)
}

func decode(raw []byte) (remote.Document, error) {
	var doc remote.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	return doc, nil
}
