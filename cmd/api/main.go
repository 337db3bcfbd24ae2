package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/shopkeeperpro/shopkeeper/internal/auth"
	"github.com/shopkeeperpro/shopkeeper/internal/config"
	"github.com/shopkeeperpro/shopkeeper/internal/database"
	"github.com/shopkeeperpro/shopkeeper/internal/expense"
	expenseStore "github.com/shopkeeperpro/shopkeeper/internal/expense/store"
	shopHttp "github.com/shopkeeperpro/shopkeeper/internal/http"
	expenseHandler "github.com/shopkeeperpro/shopkeeper/internal/http/expense"
	itemHandler "github.com/shopkeeperpro/shopkeeper/internal/http/item"
	reportHandler "github.com/shopkeeperpro/shopkeeper/internal/http/report"
	saleHandler "github.com/shopkeeperpro/shopkeeper/internal/http/sale"
	sessionHandler "github.com/shopkeeperpro/shopkeeper/internal/http/session"
	syncHandler "github.com/shopkeeperpro/shopkeeper/internal/http/syncapi"
	"github.com/shopkeeperpro/shopkeeper/internal/item"
	itemStore "github.com/shopkeeperpro/shopkeeper/internal/item/store"
	"github.com/shopkeeperpro/shopkeeper/internal/remote"
	"github.com/shopkeeperpro/shopkeeper/internal/remote/memstore"
	"github.com/shopkeeperpro/shopkeeper/internal/remote/pgstore"
	"github.com/shopkeeperpro/shopkeeper/internal/report"
	"github.com/shopkeeperpro/shopkeeper/internal/sale"
	saleStore "github.com/shopkeeperpro/shopkeeper/internal/sale/store"
	"github.com/shopkeeperpro/shopkeeper/internal/sync"
	"github.com/shopkeeperpro/shopkeeper/internal/user"
	userStore "github.com/shopkeeperpro/shopkeeper/internal/user/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.DB.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		items    = itemStore.New(db)
		sales    = saleStore.New(db)
		expenses = expenseStore.New(db)
		users    = userStore.New(db)
	)

	var (
		itemService    = item.NewService(items)
		saleService    = sale.NewService(sales)
		expenseService = expense.NewService(expenses)
		userService    = user.NewService(users)
		reportService  = report.NewService(sales, expenses)
	)

	ctx := context.Background()

	remoteStore, err := openRemote(ctx, cfg)
	if err != nil {
		slog.Error("failed to open remote store", "error", err)
		os.Exit(1)
	}

	var (
		syncService   *sync.Service
		syncScheduler *sync.Scheduler
	)

	if remoteStore != nil {
		syncService = sync.NewService(remoteStore, items, sales, expenses, users,
			cfg.Store.ID, slog.Default())

		syncScheduler = sync.NewScheduler(syncService,
			cfg.Sync.Period, cfg.Sync.MinBackoff, uint64(cfg.Sync.MaxRetries),
			nil, slog.Default())

		syncScheduler.Start(ctx)
		defer syncScheduler.Stop()
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)

	sessionH := sessionHandler.NewHandler(userService, tokens, nil, cfg.Store.ID)
	if syncService != nil {
		sessionH = sessionHandler.NewHandler(userService, tokens, syncService, cfg.Store.ID)
	}

	var (
		itemsH   = itemHandler.NewHandler(itemService)
		salesH   = saleHandler.NewHandler(saleService)
		expenseH = expenseHandler.NewHandler(expenseService)
		reportsH = reportHandler.NewHandler(reportService)
		syncH    = syncHandler.NewHandler(syncService, syncScheduler)
	)

	router := shopHttp.New(tokens, sessionH, itemsH, salesH, expenseH, reportsH, syncH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port,
		"remote", cfg.Remote.Driver, "store", cfg.Store.ID)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func openRemote(ctx context.Context, cfg *config.Config) (remote.Store, error) {
	switch cfg.Remote.Driver {
	case "postgres":
		return pgstore.Open(ctx, cfg.Remote.URL)
	case "memory":
		return memstore.New(), nil
	case "off":
		return nil, nil
	}

	return nil, fmt.Errorf("unknown remote driver %q", cfg.Remote.Driver)
}
