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
	"github.com/shopkeeperpro/shopkeeper/internal/sale"
	"github.com/shopkeeperpro/shopkeeper/internal/sale/store"
	"github.com/shopkeeperpro/shopkeeper/internal/syncstatus"
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

func newSale(total float64) *sale.Sale {
	return &sale.Sale{
		ID:          uuid.NewString(),
		UserID:      "user-1",
		TotalAmount: total,
		Items: []sale.LineItem{
			{ItemID: "i1", ItemName: "Rice", Quantity: 1, PricePerUnit: total, TotalPrice: total},
		},
		PaymentMethod: "cash",
		CreatedAt:     time.Now(),
	}
}

func TestStore_InsertAndListUnsynced(t *testing.T) {
	ctx := context.Background()
	s := store.New(newTestDB(t))

	first := newSale(100)
	second := newSale(250)
	require.NoError(t, s.Insert(ctx, first))
	require.NoError(t, s.Insert(ctx, second))

	unsynced, err := s.ListUnsynced(ctx)
	require.NoError(t, err)
	assert.Len(t, unsynced, 2)

	require.NoError(t, s.MarkSynced(ctx, first.ID))

	unsynced, err = s.ListUnsynced(ctx)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, second.ID, unsynced[0].ID)

	got, err := s.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, syncstatus.Synced, got.SyncStatus)
}

func TestStore_UpdateResetsSyncStatus(t *testing.T) {
	ctx := context.Background()
	s := store.New(newTestDB(t))

	sl := newSale(100)
	require.NoError(t, s.Insert(ctx, sl))
	require.NoError(t, s.MarkSynced(ctx, sl.ID))

	sl.TotalAmount = 150
	require.NoError(t, s.Update(ctx, sl))

	got, err := s.GetByID(ctx, sl.ID)
	require.NoError(t, err)
	assert.Equal(t, syncstatus.Pending, got.SyncStatus)
	assert.InDelta(t, 150.0, got.TotalAmount, 0.001)

	// The edited sale shows up for the next cycle again.
	unsynced, err := s.ListUnsynced(ctx)
	require.NoError(t, err)
	assert.Len(t, unsynced, 1)
}

func TestStore_LegacyItemsRow(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	s := store.New(db)

	// Row written by the pre-JSON schema.
	_, err := db.ExecContext(ctx, `
		INSERT INTO sales (id, user_id, total_amount, items, created_at)
		VALUES ('legacy-1', 'user-1', 220, 'Rice,2,50,100;BadSegment;Oil,1,120,120', ?)
	`, time.Now().UnixMilli())
	require.NoError(t, err)

	got, err := s.GetByID(ctx, "legacy-1")
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Rice", got.Items[0].ItemName)
	assert.Equal(t, "Oil", got.Items[1].ItemName)
	assert.Equal(t, syncstatus.Pending, got.SyncStatus)
}

func TestStore_TotalForRange(t *testing.T) {
	ctx := context.Background()
	s := store.New(newTestDB(t))

	old := newSale(100)
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, s.Insert(ctx, old))

	today := newSale(250)
	require.NoError(t, s.Insert(ctx, today))

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)

	total, count, err := s.TotalForRange(ctx, start, end)
	require.NoError(t, err)
	assert.InDelta(t, 250.0, total, 0.001)
	assert.Equal(t, int64(1), count)
}

func TestStore_DeleteIsHard(t *testing.T) {
	ctx := context.Background()
	s := store.New(newTestDB(t))

	sl := newSale(100)
	require.NoError(t, s.Insert(ctx, sl))
	require.NoError(t, s.Delete(ctx, sl.ID))

	_, err := s.GetByID(ctx, sl.ID)
	assert.ErrorIs(t, err, sale.ErrNotFound)
}
