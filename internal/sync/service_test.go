package sync_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shopkeeperpro/shopkeeper/internal/database"
	"github.com/shopkeeperpro/shopkeeper/internal/expense"
	expensestore "github.com/shopkeeperpro/shopkeeper/internal/expense/store"
	"github.com/shopkeeperpro/shopkeeper/internal/item"
	itemstore "github.com/shopkeeperpro/shopkeeper/internal/item/store"
	"github.com/shopkeeperpro/shopkeeper/internal/remote"
	"github.com/shopkeeperpro/shopkeeper/internal/remote/memstore"
	"github.com/shopkeeperpro/shopkeeper/internal/sale"
	salestore "github.com/shopkeeperpro/shopkeeper/internal/sale/store"
	"github.com/shopkeeperpro/shopkeeper/internal/sync"
	"github.com/shopkeeperpro/shopkeeper/internal/syncstatus"
	"github.com/shopkeeperpro/shopkeeper/internal/user"
	userstore "github.com/shopkeeperpro/shopkeeper/internal/user/store"
)

type fixture struct {
	db       *sql.DB
	items    *itemstore.Store
	sales    *salestore.Store
	expenses *expensestore.Store
	users    *userstore.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	return &fixture{
		db:       db,
		items:    itemstore.New(db),
		sales:    salestore.New(db),
		expenses: expensestore.New(db),
		users:    userstore.New(db),
	}
}

func (f *fixture) service(rs remote.Store) *sync.Service {
	return sync.NewService(rs, f.items, f.sales, f.expenses, f.users, "store-1", discardLogger())
}

func (f *fixture) addSale(t *testing.T, total float64, at time.Time) *sale.Sale {
	t.Helper()

	sl := &sale.Sale{
		ID:          uuid.NewString(),
		UserID:      "user-1",
		TotalAmount: total,
		Items: []sale.LineItem{
			{ItemID: "i1", ItemName: "Rice", Quantity: 1, PricePerUnit: total, TotalPrice: total},
		},
		PaymentMethod: "cash",
		CreatedAt:     at,
	}
	require.NoError(t, f.sales.Insert(context.Background(), sl))

	return sl
}

func (f *fixture) addExpense(t *testing.T, amount float64) *expense.Expense {
	t.Helper()

	e := &expense.Expense{
		ID:        uuid.NewString(),
		UserID:    "user-1",
		Category:  expense.CategoryBills,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	require.NoError(t, f.expenses.Insert(context.Background(), e))

	return e
}

func TestService_RunCycle_EndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rs := memstore.New()
	svc := f.service(rs)

	price := 45.5
	require.NoError(t, f.items.Upsert(ctx, &item.Item{
		ID: "i1", Name: "Rice", Category: item.CategoryProduct,
		ReferencePrice: &price, Unit: "kg", Active: true, CreatedAt: time.Now(),
	}))

	day := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	first := f.addSale(t, 500, day)
	second := f.addSale(t, 300, day.Add(time.Hour))
	exp := f.addExpense(t, 120)

	require.NoError(t, svc.RunCycle(ctx))

	// Item mirrored with the remote field name.
	itemDoc, err := rs.Get(ctx, remote.Path{StoreID: "store-1", Collection: "items", DocID: "i1"})
	require.NoError(t, err)
	assert.Equal(t, 45.5, itemDoc["pricePerKg"])

	// Sales landed and flipped to synced.
	for _, id := range []string{first.ID, second.ID} {
		_, err := rs.Get(ctx, remote.Path{StoreID: "store-1", Collection: "sales", DocID: id})
		require.NoError(t, err)

		got, err := f.sales.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, syncstatus.Synced, got.SyncStatus)
	}

	// Both sales fell on the same day, so the aggregate folds them.
	total, err := rs.Get(ctx, remote.Path{StoreID: "store-1", Collection: "dailyTotals", DocID: "2026-09-01"})
	require.NoError(t, err)
	assert.InDelta(t, 800.0, total["totalSales"].(float64), 0.001)
	assert.InDelta(t, 2.0, total["saleCount"].(float64), 0.001)

	gotExp, err := f.expenses.GetByID(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, syncstatus.Synced, gotExp.SyncStatus)

	// A second cycle finds nothing pending and re-pushing the catalog is a
	// harmless overwrite.
	require.NoError(t, svc.RunCycle(ctx))

	total, err = rs.Get(ctx, remote.Path{StoreID: "store-1", Collection: "dailyTotals", DocID: "2026-09-01"})
	require.NoError(t, err)
	assert.InDelta(t, 800.0, total["totalSales"].(float64), 0.001)
}

func TestService_RunCycle_BatchFailureLeavesSalesPending(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t)
	f.addSale(t, 500, time.Now())
	f.addSale(t, 300, time.Now())

	rs := remote.NewMockStore(ctrl)
	rs.EXPECT().BatchSet(gomock.Any(), gomock.Any()).Return(errors.New("remote unavailable"))

	svc := f.service(rs)
	err := svc.RunCycle(ctx)
	assert.Error(t, err)

	// No partial flips: the whole batch stays pending for the next cycle.
	unsynced, err := f.sales.ListUnsynced(ctx)
	require.NoError(t, err)
	assert.Len(t, unsynced, 2)

	for _, sl := range unsynced {
		assert.Equal(t, syncstatus.Pending, sl.SyncStatus)
	}
}

func TestService_RunCycle_ExpensePartialFailure(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t)
	first := f.addExpense(t, 100)
	second := f.addExpense(t, 200)
	third := f.addExpense(t, 300)

	rs := remote.NewMockStore(ctrl)
	rs.EXPECT().
		Set(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, path remote.Path, _ remote.Document) error {
			if path.DocID == second.ID {
				return errors.New("remote rejected document")
			}
			return nil
		}).
		Times(3)

	svc := f.service(rs)
	err := svc.RunCycle(ctx)
	assert.Error(t, err)

	wantStatus := map[string]syncstatus.Status{
		first.ID:  syncstatus.Synced,
		second.ID: syncstatus.Failed,
		third.ID:  syncstatus.Synced,
	}

	for id, want := range wantStatus {
		got, err := f.expenses.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.SyncStatus, "expense %s", id)
	}
}

func TestService_RunCycle_LocalErrorAborts(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(t)
	require.NoError(t, f.db.Close())

	rs := remote.NewMockStore(ctrl)

	svc := f.service(rs)
	assert.Error(t, svc.RunCycle(ctx))
}

func TestService_PullCatalog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rs := memstore.New()
	svc := f.service(rs)

	require.NoError(t, rs.Set(ctx, remote.Path{StoreID: "store-1", Collection: "items", DocID: "i1"},
		remote.Document{"name": "Rice", "pricePerKg": 45.5, "unit": "kg", "isActive": true, "category": "product"}))
	require.NoError(t, rs.Set(ctx, remote.Path{StoreID: "store-1", Collection: "items", DocID: "i2"},
		remote.Document{"name": "Old Stock", "isActive": false, "category": "product"}))

	n, err := svc.PullCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.items.GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "Rice", got.Name)
	require.NotNil(t, got.ReferencePrice)
	assert.InDelta(t, 45.5, *got.ReferencePrice, 0.001)

	// Inactive remote items are not pulled.
	_, err = f.items.GetByID(ctx, "i2")
	assert.ErrorIs(t, err, item.ErrNotFound)
}

func TestService_PullUsers_KeepsLocalPasswordHash(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rs := memstore.New()
	svc := f.service(rs)

	require.NoError(t, f.users.Insert(ctx, &user.User{
		ID: "u1", Username: "asha", PasswordHash: "local-hash",
		Role: user.RoleAdmin, Active: true, CreatedAt: time.Now(),
	}))

	require.NoError(t, rs.Set(ctx, remote.Path{Collection: "users", DocID: "u1"},
		remote.Document{"username": "asha", "displayName": "Asha Patel", "role": "admin", "isActive": true}))
	require.NoError(t, rs.Set(ctx, remote.Path{Collection: "users", DocID: "u2"},
		remote.Document{"username": "ravi"}))

	n, err := svc.PullUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	existing, err := f.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "local-hash", existing.PasswordHash)
	assert.Equal(t, "Asha Patel", existing.FullName)

	pulled, err := f.users.GetByID(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, pulled.Role)
	assert.Empty(t, pulled.PasswordHash)
}

func TestService_PushUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rs := memstore.New()
	svc := f.service(rs)

	require.NoError(t, svc.PushUser(ctx, &user.User{
		ID: "u1", Username: "asha", Role: user.RoleAdmin, Active: true, CreatedAt: time.Now(),
	}))

	doc, err := rs.Get(ctx, remote.Path{Collection: "users", DocID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "asha", doc["username"])

	// The credential never leaves the device.
	_, hasHash := doc["passwordHash"]
	assert.False(t, hasHash)
}
