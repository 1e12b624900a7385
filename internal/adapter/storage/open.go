package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
	"github.com/ibrahimkeyboad/gostore/internal/metrics"
)

type Options struct {
	DatabaseURL string
	DataDir     string
	Metrics     *metrics.Registry
}

// Backends is the set of repositories the service runs against.
type Backends struct {
	Products    *FallbackProducts
	Orders      *FallbackOrders
	Users       domain.UserRepository
	Idempotency IdempotencyStore

	db *DB
}

// Open connects to the relational store when one is configured and falls
// back to JSON files under DataDir when it is absent or unreachable.
// Users get no runtime fallback: their backend is fixed here.
func Open(ctx context.Context, opts Options) (*Backends, error) {
	if strings.TrimSpace(opts.DataDir) == "" {
		return nil, fmt.Errorf("data dir is required")
	}

	jsonProducts := NewJSONProductRepository(opts.DataDir)
	jsonOrders := NewJSONOrderRepository(opts.DataDir)

	db := connectOptional(ctx, opts.DatabaseURL)
	if db == nil {
		slog.Info("📁 Using JSON file storage", "dir", opts.DataDir)
		return &Backends{
			Products:    NewFallbackProducts(nil, jsonProducts, opts.Metrics),
			Orders:      NewFallbackOrders(nil, jsonOrders, opts.Metrics),
			Users:       NewJSONUserRepository(opts.DataDir),
			Idempotency: NewMemoryIdempotencyStore(),
		}, nil
	}

	slog.Info("✅ Connected to relational storage", "dialect", db.Dialect.String())
	return &Backends{
		Products:    NewFallbackProducts(NewProductRepository(db), jsonProducts, opts.Metrics),
		Orders:      NewFallbackOrders(NewLedgerRepository(db), jsonOrders, opts.Metrics),
		Users:       NewAccountRepository(db),
		Idempotency: NewSQLIdempotencyStore(db),
		db:          db,
	}, nil
}

func connectOptional(ctx context.Context, databaseURL string) *DB {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}
	db, err := ConnectDB(ctx, databaseURL)
	if err != nil {
		slog.Warn("⚠️ Database unavailable, using JSON files", "error", err)
		return nil
	}
	schemaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := EnsureSchema(schemaCtx, db); err != nil {
		slog.Warn("⚠️ Schema setup failed, using JSON files", "error", err)
		_ = db.Close()
		return nil
	}
	return db
}

// Mode reports which backend currently serves orders.
func (b *Backends) Mode() string {
	if b.Orders.Degraded() {
		return "json"
	}
	return "relational"
}

// Ping checks the relational store, if any.
func (b *Backends) Ping(ctx context.Context) error {
	if b.db == nil {
		return nil
	}
	return b.db.PingContext(ctx)
}

func (b *Backends) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}
