package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// New opens the local sqlite database. sqlite is a single-writer store;
// keeping one connection avoids SQLITE_BUSY between the UI-facing handlers
// and the sync orchestrator's status flips.
func New(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return db, nil
}

// Migrate creates the schema and upgrades databases created before sync
// tracking existed by adding the sync_status column with a pending default.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			display_name  TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'user',
			password_hash TEXT NOT NULL DEFAULT '',
			active        INTEGER NOT NULL DEFAULT 1,
			created_at    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			category        TEXT NOT NULL,
			reference_price REAL,
			unit            TEXT NOT NULL DEFAULT 'pc',
			active          INTEGER NOT NULL DEFAULT 1,
			created_at      INTEGER NOT NULL,
			created_by      TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS sales (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			total_amount   REAL NOT NULL,
			items          TEXT NOT NULL DEFAULT '[]',
			payment_method TEXT NOT NULL DEFAULT 'cash',
			customer_name  TEXT NOT NULL DEFAULT '',
			customer_phone TEXT NOT NULL DEFAULT '',
			created_at     INTEGER NOT NULL,
			sync_status    TEXT NOT NULL DEFAULT 'pending'
		)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			category    TEXT NOT NULL,
			description TEXT NOT NULL,
			amount      REAL NOT NULL,
			image_uri   TEXT NOT NULL DEFAULT '',
			created_at  INTEGER NOT NULL,
			sync_status TEXT NOT NULL DEFAULT 'pending'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_sync_status ON sales (sync_status)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_sync_status ON expenses (sync_status)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_created_at ON expenses (created_at)`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	// Databases from before sync tracking lack the column entirely.
	for _, table := range []string{"sales", "expenses"} {
		ok, err := hasColumn(db, table, "sync_status")
		if err != nil {
			return err
		}

		if ok {
			continue
		}

		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN sync_status TEXT NOT NULL DEFAULT 'pending'", table)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("adding sync_status to %s: %w", table, err)
		}
	}

	return nil
}

func hasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("inspecting %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notnull    int
			dflt       sql.NullString
			primaryKey int
		)

		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &primaryKey); err != nil {
			return false, fmt.Errorf("scanning column info: %w", err)
		}

		if name == column {
			return true, nil
		}
	}

	return false, rows.Err()
}
