package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopkeeperpro/shopkeeper/internal/database"
	"github.com/shopkeeperpro/shopkeeper/internal/user"
	"github.com/shopkeeperpro/shopkeeper/internal/user/store"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	return db
}

func TestStore_InsertAndGetByUsername(t *testing.T) {
	ctx := context.Background()
	s := store.New(newTestDB(t))

	u := &user.User{
		ID:           uuid.NewString(),
		Username:     "asha",
		PasswordHash: "hash",
		FullName:     "Asha Patel",
		Role:         user.RoleAdmin,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, s.Insert(ctx, u))

	got, err := s.GetByUsername(ctx, "asha")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, user.RoleAdmin, got.Role)
	assert.True(t, got.Active)

	_, err = s.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestStore_DeactivateKeepsRow(t *testing.T) {
	ctx := context.Background()
	s := store.New(newTestDB(t))

	u := &user.User{
		ID:        uuid.NewString(),
		Username:  "ravi",
		Role:      user.RoleUser,
		Active:    true,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.Insert(ctx, u))
	require.NoError(t, s.Deactivate(ctx, u.ID))

	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}
