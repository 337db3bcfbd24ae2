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
	"github.com/shopkeeperpro/shopkeeper/internal/item"
	"github.com/shopkeeperpro/shopkeeper/internal/item/store"
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

func newItem(name string) *item.Item {
	return &item.Item{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  item.CategoryProduct,
		Unit:      "kg",
		Active:    true,
		CreatedAt: time.Now(),
		CreatedBy: "tester",
	}
}

func TestStore_DeactivateKeepsRow(t *testing.T) {
	ctx := context.Background()
	s := store.New(newTestDB(t))

	it := newItem("Rice")
	require.NoError(t, s.Upsert(ctx, it))

	require.NoError(t, s.Deactivate(ctx, it.ID))

	// Selection reads exclude the item...
	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	// ...but the row itself survives with active=false.
	got, err := s.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, "Rice", got.Name)
}

func TestStore_ListActiveOrdersByName(t *testing.T) {
	ctx := context.Background()
	s := store.New(newTestDB(t))

	for _, name := range []string{"Sugar", "Rice", "Oil"} {
		require.NoError(t, s.Upsert(ctx, newItem(name)))
	}

	items, err := s.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Oil", items[0].Name)
	assert.Equal(t, "Rice", items[1].Name)
	assert.Equal(t, "Sugar", items[2].Name)
}

func TestStore_UpsertReplacesByID(t *testing.T) {
	ctx := context.Background()
	s := store.New(newTestDB(t))

	it := newItem("Rice")
	require.NoError(t, s.Upsert(ctx, it))

	it.Name = "Basmati Rice"
	price := 95.0
	it.ReferencePrice = &price
	require.NoError(t, s.Upsert(ctx, it))

	got, err := s.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Basmati Rice", got.Name)
	require.NotNil(t, got.ReferencePrice)
	assert.InDelta(t, 95.0, *got.ReferencePrice, 0.001)

	items, err := s.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestStore_Search(t *testing.T) {
	ctx := context.Background()
	s := store.New(newTestDB(t))

	require.NoError(t, s.Upsert(ctx, newItem("Cooking Oil")))
	require.NoError(t, s.Upsert(ctx, newItem("Rice")))

	inactive := newItem("Olive Oil")
	require.NoError(t, s.Upsert(ctx, inactive))
	require.NoError(t, s.Deactivate(ctx, inactive.ID))

	got, err := s.Search(ctx, "Oil")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cooking Oil", got[0].Name)
}

func TestStore_GetByID_NotFound(t *testing.T) {
	s := store.New(newTestDB(t))

	_, err := s.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, item.ErrNotFound)
}
