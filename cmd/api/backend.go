package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jeffzycode/LittleLemonAPI/internal/cart"
	"github.com/Jeffzycode/LittleLemonAPI/internal/config"
	"github.com/Jeffzycode/LittleLemonAPI/internal/memstore"
	"github.com/Jeffzycode/LittleLemonAPI/internal/menu"
	"github.com/Jeffzycode/LittleLemonAPI/internal/orders"
	"github.com/Jeffzycode/LittleLemonAPI/internal/postgres"
	"github.com/Jeffzycode/LittleLemonAPI/internal/users"
)

// store is everything the services need from one persistence driver.
type store interface {
	menu.Store
	cart.Store
	orders.Store
	orders.UserLookup
	users.Store
}

type backend struct {
	store store
	ping  func(ctx context.Context) error
	close func()
}

func openBackend(ctx context.Context) (*backend, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on exit")
		return &backend{store: memstore.New(), close: func() {}}, nil
	case config.DriverPostgres:
		db, err := connectPostgres(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := postgres.Migrate(ctx, db, log); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return &backend{store: &postgres.Store{DB: db}, ping: db.Ping, close: db.Close}, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func connectPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, int32(cfg.PostgresMaxConn))
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return db, nil
}
