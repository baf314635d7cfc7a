package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/envelope/internal/common"
	"github.com/Veraticus/envelope/internal/config"
	"github.com/Veraticus/envelope/internal/currency"
	"github.com/Veraticus/envelope/internal/ledger"
	"github.com/Veraticus/envelope/internal/storage"
	"github.com/Veraticus/envelope/internal/widget"
)

// app is the wiring shared by every data command.
type app struct {
	store  *storage.SQLiteStorage
	ledger *ledger.Ledger
	mirror *widget.File
	cfg    config.Config
}

// openStorage opens and migrates the database without building a ledger.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, config.Config{}, err
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, cfg, common.NewUserError(
			fmt.Sprintf("Could not open the budget database at %s", cfg.DatabasePath),
			fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err))
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, cfg, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, cfg, nil
}

// openApp opens storage, loads the rate cache and initializes the ledger.
func openApp(ctx context.Context) (*app, error) {
	store, cfg, err := openStorage(ctx)
	if err != nil {
		return nil, err
	}

	rates := currency.NewCache(currency.NewHTTPFetcher(cfg.RatesEndpoint, cfg.RatesTimeout), store)
	mirror := widget.NewFile(cfg.WidgetPath)
	l := ledger.New(store, rates, mirror, cfg.Location, ledger.WithSubunitRate(cfg.AllowSubunitRate))
	if err := l.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize ledger: %w", err)
	}

	slog.Debug("ledger ready", "database", cfg.DatabasePath, "widget", cfg.WidgetPath, "timezone", cfg.Location)
	return &app{cfg: cfg, store: store, ledger: l, mirror: mirror}, nil
}

// closePeriods records any closed month or week that has no history row yet.
func (a *app) closePeriods(ctx context.Context) error {
	if _, err := a.ledger.ClosePeriods(ctx, nil); err != nil {
		return fmt.Errorf("failed to close periods: %w", err)
	}
	return nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
}
