package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopkeeperpro/shopkeeper/internal/user"
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

const selectUserColumns = `id, username, password_hash, display_name, role, active, created_at`

func scanUser(s scanner) (*user.User, error) {
	var (
		u         user.User
		role      string
		active    int
		createdAt int64
	)

	if err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &role, &active, &createdAt); err != nil {
		return nil, err
	}

	u.Role = user.Role(role)
	u.Active = active != 0
	u.CreatedAt = time.UnixMilli(createdAt)

	return &u, nil
}

func (s *Store) Insert(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, display_name, role, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		u.ID,
		u.Username,
		u.PasswordHash,
		u.FullName,
		u.Role,
		boolToInt(u.Active),
		u.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

func (s *Store) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET username = ?, password_hash = ?, display_name = ?, role = ?, active = ?
		WHERE id = ?
	`

	_, err := s.db.ExecContext(ctx, query,
		u.Username,
		u.PasswordHash,
		u.FullName,
		u.Role,
		boolToInt(u.Active),
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	return nil
}

func (s *Store) Deactivate(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivating user: %w", err)
	}

	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT ` + selectUserColumns + ` FROM users WHERE id = ?`

	return s.get(ctx, query, id)
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `SELECT ` + selectUserColumns + ` FROM users WHERE username = ?`

	return s.get(ctx, query, username)
}

func (s *Store) get(ctx context.Context, query string, arg any) (*user.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	return u, nil
}

func (s *Store) List(ctx context.Context) ([]*user.User, error) {
	query := `SELECT ` + selectUserColumns + ` FROM users ORDER BY username`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*user.User

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		users = append(users, u)
	}

	return users, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
