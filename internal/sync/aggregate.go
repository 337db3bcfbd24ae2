package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopkeeperpro/shopkeeper/internal/remote"
)

const dayFormat = "2006-01-02"

// UpdateDailyTotal folds one sale into the per-day aggregate document keyed
// by the sale's own calendar date. The first sale of a day creates the
// document with zeroed expense counters; later sales increment in place.
//
// The not-found fallback is check-then-act: two writers racing on a fresh
// day can drop one sale from the aggregate. Backends resolve increments
// atomically once the document exists, and the aggregate is a convenience
// view over the source-of-truth sales collection, so the window is accepted.
func (s *Service) UpdateDailyTotal(ctx context.Context, date time.Time, amount float64) error {
	day := date.Format(dayFormat)
	path := remote.Path{StoreID: s.storeID, Collection: collectionDailyTotals, DocID: day}

	err := s.remote.Update(ctx, path, remote.Document{
		"totalSales":  remote.Increment(amount),
		"saleCount":   remote.Increment(1),
		"lastUpdated": remote.ServerTimestamp(),
	})
	if err == nil {
		return nil
	}

	if !errors.Is(err, remote.ErrNotFound) {
		return fmt.Errorf("incrementing daily total %s: %w", day, err)
	}

	err = s.remote.Set(ctx, path, remote.Document{
		"date":          day,
		"totalSales":    amount,
		"saleCount":     1.0,
		"totalExpenses": 0.0,
		"expenseCount":  0.0,
		"lastUpdated":   remote.ServerTimestamp(),
	})
	if err != nil {
		return fmt.Errorf("creating daily total %s: %w", day, err)
	}

	return nil
}
