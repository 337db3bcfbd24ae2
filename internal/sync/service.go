// Package sync pushes local records to the remote document store and keeps
// per-row sync status honest. Documents are addressed by entity ID, so every
// push is an idempotent overwrite and a crashed cycle re-sends at worst.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopkeeperpro/shopkeeper/internal/expense"
	"github.com/shopkeeperpro/shopkeeper/internal/item"
	"github.com/shopkeeperpro/shopkeeper/internal/remote"
	"github.com/shopkeeperpro/shopkeeper/internal/sale"
	"github.com/shopkeeperpro/shopkeeper/internal/user"
)

const (
	collectionItems       = "items"
	collectionSales       = "sales"
	collectionExpenses    = "expenses"
	collectionDailyTotals = "dailyTotals"
	collectionUsers       = "users"
)

// The sources are the slices of the domain repositories the orchestrator
// needs. The store packages satisfy them as-is.

type ItemSource interface {
	ListActive(ctx context.Context) ([]*item.Item, error)
	Upsert(ctx context.Context, it *item.Item) error
}

type SaleSource interface {
	ListUnsynced(ctx context.Context) ([]*sale.Sale, error)
	MarkSynced(ctx context.Context, ids ...string) error
}

type ExpenseSource interface {
	ListUnsynced(ctx context.Context) ([]*expense.Expense, error)
	MarkSynced(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

type UserSource interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	Insert(ctx context.Context, u *user.User) error
	Update(ctx context.Context, u *user.User) error
}

type Service struct {
	remote   remote.Store
	items    ItemSource
	sales    SaleSource
	expenses ExpenseSource
	users    UserSource
	storeID  string
	log      *slog.Logger
	now      func() time.Time
}

func NewService(rs remote.Store, items ItemSource, sales SaleSource, expenses ExpenseSource, users UserSource, storeID string, log *slog.Logger) *Service {
	return &Service{
		remote:   rs,
		items:    items,
		sales:    sales,
		expenses: expenses,
		users:    users,
		storeID:  storeID,
		log:      log,
		now:      time.Now,
	}
}

// RunCycle pushes items, then sales, then expenses, in that order. Local
// store errors abort the cycle; remote push failures are contained within
// their step and reported in the returned error so the caller retries.
func (s *Service) RunCycle(ctx context.Context) error {
	var pushFailures int

	n, err := s.pushItems(ctx)
	if err != nil {
		return err
	}

	pushFailures += n

	n, err = s.pushSales(ctx)
	if err != nil {
		return err
	}

	pushFailures += n

	n, err = s.pushExpenses(ctx)
	if err != nil {
		return err
	}

	pushFailures += n

	if pushFailures > 0 {
		return fmt.Errorf("sync cycle finished with %d push failures", pushFailures)
	}

	return nil
}

// pushItems mirrors the full active catalog every cycle. Items carry no sync
// status; the overwrite-by-ID contract makes the re-push harmless.
func (s *Service) pushItems(ctx context.Context) (int, error) {
	items, err := s.items.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing items for sync: %w", err)
	}

	var failures int

	for _, it := range items {
		path := remote.Path{StoreID: s.storeID, Collection: collectionItems, DocID: it.ID}

		if err := s.remote.Set(ctx, path, s.docFromItem(it)); err != nil {
			failures++

			s.log.Warn("failed to push item", "id", it.ID, "error", err)
		}
	}

	s.log.Info("pushed catalog", "items", len(items)-failures, "failures", failures)

	return failures, nil
}

// pushSales sends every unsynced sale in one batch. The batch either lands
// whole or not at all, so statuses only flip after a confirmed write and a
// failed batch leaves every row pending for the next cycle.
func (s *Service) pushSales(ctx context.Context) (int, error) {
	sales, err := s.sales.ListUnsynced(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing unsynced sales: %w", err)
	}

	if len(sales) == 0 {
		return 0, nil
	}

	writes := make([]remote.Write, 0, len(sales))
	ids := make([]string, 0, len(sales))

	for _, sl := range sales {
		writes = append(writes, remote.Write{
			Path: remote.Path{StoreID: s.storeID, Collection: collectionSales, DocID: sl.ID},
			Doc:  s.docFromSale(sl),
		})
		ids = append(ids, sl.ID)
	}

	if err := s.remote.BatchSet(ctx, writes); err != nil {
		s.log.Warn("failed to push sales batch", "count", len(sales), "error", err)

		return 1, nil
	}

	if err := s.sales.MarkSynced(ctx, ids...); err != nil {
		return 0, fmt.Errorf("marking sales synced: %w", err)
	}

	var failures int

	for _, sl := range sales {
		if err := s.UpdateDailyTotal(ctx, sl.CreatedAt, sl.TotalAmount); err != nil {
			failures++

			s.log.Warn("failed to update daily total", "sale", sl.ID, "error", err)
		}
	}

	s.log.Info("pushed sales batch", "count", len(sales))

	return failures, nil
}

// pushExpenses sends expenses one by one. Each row's status reflects its own
// outcome, so one bad record never blocks the rest.
func (s *Service) pushExpenses(ctx context.Context) (int, error) {
	expenses, err := s.expenses.ListUnsynced(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing unsynced expenses: %w", err)
	}

	var failures int

	for _, e := range expenses {
		path := remote.Path{StoreID: s.storeID, Collection: collectionExpenses, DocID: e.ID}

		if err := s.remote.Set(ctx, path, s.docFromExpense(e)); err != nil {
			failures++

			s.log.Warn("failed to push expense", "id", e.ID, "error", err)

			if err := s.expenses.MarkFailed(ctx, e.ID); err != nil {
				return failures, fmt.Errorf("marking expense failed: %w", err)
			}

			continue
		}

		if err := s.expenses.MarkSynced(ctx, e.ID); err != nil {
			return failures, fmt.Errorf("marking expense synced: %w", err)
		}
	}

	if len(expenses) > 0 {
		s.log.Info("pushed expenses", "count", len(expenses)-failures, "failures", failures)
	}

	return failures, nil
}

// PullCatalog hydrates the local item table from the remote active-item
// snapshot. Upsert-by-ID makes repeated pulls converge.
func (s *Service) PullCatalog(ctx context.Context) (int, error) {
	docs, err := s.remote.ListWhere(ctx, s.storeID, collectionItems, remote.Document{"isActive": true})
	if err != nil {
		return 0, fmt.Errorf("pulling catalog: %w", err)
	}

	for id, doc := range docs {
		if err := s.items.Upsert(ctx, itemFromDoc(id, doc)); err != nil {
			return 0, fmt.Errorf("storing pulled item %s: %w", id, err)
		}
	}

	s.log.Info("pulled catalog", "items", len(docs))

	return len(docs), nil
}

// PullUsers hydrates local accounts from the shared users collection.
// Password hashes never travel through the remote store, so an existing
// local hash survives the refresh.
func (s *Service) PullUsers(ctx context.Context) (int, error) {
	docs, err := s.remote.ListWhere(ctx, "", collectionUsers, nil)
	if err != nil {
		return 0, fmt.Errorf("pulling users: %w", err)
	}

	for id, doc := range docs {
		u := userFromDoc(id, doc)

		existing, err := s.users.GetByID(ctx, id)
		switch {
		case errors.Is(err, user.ErrNotFound):
			err = s.users.Insert(ctx, u)
		case err == nil:
			u.PasswordHash = existing.PasswordHash
			err = s.users.Update(ctx, u)
		}

		if err != nil {
			return 0, fmt.Errorf("storing pulled user %s: %w", id, err)
		}
	}

	s.log.Info("pulled users", "count", len(docs))

	return len(docs), nil
}

// PushUser publishes one account to the shared users collection, typically
// right after registration.
func (s *Service) PushUser(ctx context.Context, u *user.User) error {
	path := remote.Path{Collection: collectionUsers, DocID: u.ID}

	if err := s.remote.Set(ctx, path, s.docFromUser(u)); err != nil {
		return fmt.Errorf("pushing user %s: %w", u.ID, err)
	}

	return nil
}
