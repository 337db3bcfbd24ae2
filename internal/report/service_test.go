package report_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopkeeperpro/shopkeeper/internal/database"
	"github.com/shopkeeperpro/shopkeeper/internal/expense"
	expensestore "github.com/shopkeeperpro/shopkeeper/internal/expense/store"
	"github.com/shopkeeperpro/shopkeeper/internal/report"
	"github.com/shopkeeperpro/shopkeeper/internal/sale"
	salestore "github.com/shopkeeperpro/shopkeeper/internal/sale/store"
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

func TestService_Range(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	sales := salestore.New(db)
	expenses := expensestore.New(db)
	svc := report.NewService(sales, expenses)

	at := time.Now()

	for _, total := range []float64{500, 300} {
		require.NoError(t, sales.Insert(ctx, &sale.Sale{
			ID: uuid.NewString(), UserID: "u1", TotalAmount: total,
			PaymentMethod: "cash", CreatedAt: at,
		}))
	}

	require.NoError(t, expenses.Insert(ctx, &expense.Expense{
		ID: uuid.NewString(), UserID: "u1", Category: expense.CategoryRent,
		Amount: 200, CreatedAt: at,
	}))
	require.NoError(t, expenses.Insert(ctx, &expense.Expense{
		ID: uuid.NewString(), UserID: "u1", Category: expense.CategoryBills,
		Amount: 100, CreatedAt: at,
	}))

	got, err := svc.Range(ctx, at.Add(-time.Hour), at.Add(time.Hour))
	require.NoError(t, err)

	assert.InDelta(t, 800.0, got.TotalSales, 0.001)
	assert.Equal(t, int64(2), got.SaleCount)
	assert.InDelta(t, 300.0, got.TotalExpenses, 0.001)
	assert.Equal(t, int64(2), got.ExpenseCount)
	assert.InDelta(t, 500.0, got.Profit, 0.001)
	assert.InDelta(t, 62.5, got.ProfitMargin, 0.001)
	assert.InDelta(t, 200.0, got.ExpensesByCategory[expense.CategoryRent], 0.001)
	assert.InDelta(t, 100.0, got.ExpensesByCategory[expense.CategoryBills], 0.001)
}

func TestService_Range_NoSales(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := report.NewService(salestore.New(db), expensestore.New(db))

	got, err := svc.Range(ctx, time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)

	assert.Zero(t, got.TotalSales)
	assert.Zero(t, got.ProfitMargin)
	assert.Zero(t, got.Profit)
}

func TestService_Today_ExcludesYesterday(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	sales := salestore.New(db)
	svc := report.NewService(sales, expensestore.New(db))

	require.NoError(t, sales.Insert(ctx, &sale.Sale{
		ID: uuid.NewString(), UserID: "u1", TotalAmount: 999,
		PaymentMethod: "cash", CreatedAt: time.Now().AddDate(0, 0, -1),
	}))
	require.NoError(t, sales.Insert(ctx, &sale.Sale{
		ID: uuid.NewString(), UserID: "u1", TotalAmount: 250,
		PaymentMethod: "cash", CreatedAt: time.Now(),
	}))

	got, err := svc.Today(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 250.0, got.TotalSales, 0.001)
	assert.Equal(t, int64(1), got.SaleCount)
}
