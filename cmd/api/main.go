package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ibrahimkeyboad/gostore/internal/adapter/handler"
	"github.com/ibrahimkeyboad/gostore/internal/adapter/media"
	"github.com/ibrahimkeyboad/gostore/internal/adapter/storage"
	"github.com/ibrahimkeyboad/gostore/internal/core/catalog"
	"github.com/ibrahimkeyboad/gostore/internal/core/checkout"
	"github.com/ibrahimkeyboad/gostore/internal/core/config"
	"github.com/ibrahimkeyboad/gostore/internal/core/identity"
	"github.com/ibrahimkeyboad/gostore/internal/core/notifications"
	"github.com/ibrahimkeyboad/gostore/internal/core/pricing"
	"github.com/ibrahimkeyboad/gostore/internal/core/shopping"
	"github.com/ibrahimkeyboad/gostore/internal/core/worker"
	"github.com/ibrahimkeyboad/gostore/internal/metrics"
)

func main() {
	// 1. Setup Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Amounts go over the wire and into data files as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// 2. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("❌ Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Open Storage (relational if reachable, JSON files otherwise)
	reg := metrics.NewRegistry()
	backends, err := storage.Open(ctx, storage.Options{
		DatabaseURL: cfg.DatabaseURL,
		DataDir:     cfg.DataDir,
		Metrics:     reg,
	})
	if err != nil {
		slog.Error("❌ Storage setup failed", "error", err)
		os.Exit(1)
	}

	sessions, err := openSessions(cfg)
	if err != nil {
		slog.Error("❌ Session store setup failed", "error", err)
		os.Exit(1)
	}
	waitSweeper := worker.StartSessionSweeper(ctx, sessions, 10*time.Minute)

	// 4. Setup Services
	var images catalog.ImageResolver
	if cfg.CloudinaryURL != "" {
		resolver, err := media.NewCloudinaryResolver(cfg.CloudinaryURL)
		if err != nil {
			slog.Warn("⚠️ Cloudinary disabled", "error", err)
		} else {
			images = resolver
		}
	}

	cat := catalog.NewService(backends.Products, images)
	engine := pricing.NewEngine(cfg.Rates, cfg.Shipping, cat)
	gate := identity.NewGate(
		identity.AdminCredentials{Email: cfg.AdminEmail, Password: cfg.AdminPassword},
		backends.Users, backends.Orders,
	)

	// 5. Start Worker
	var notifier checkout.Notifier
	publishers, closers := buildPublishers(cfg)
	var dispatcher *worker.Dispatcher
	if len(publishers) > 0 {
		dispatcher = worker.NewDispatcher(publishers, reg, 256)
		dispatcher.Start(ctx)
		notifier = dispatcher
	}

	app := handler.NewApp(handler.Deps{
		Catalog:       cat,
		Pricing:       engine,
		Shopping:      shopping.NewService(cat, reg),
		Checkout:      checkout.NewService(engine, backends.Orders, notifier, reg),
		Identity:      gate,
		Sessions:      sessions,
		Idempotency:   backends.Idempotency,
		Metrics:       reg,
		Health:        backends,
		SecureCookies: cfg.Env == "production",
	})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("🚀 Server starting", "env", cfg.Env, "port", cfg.Port, "storage", backends.Mode())
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server forced to shutdown", "error", err)
		}
	}()

	<-stop
	slog.Info("🛑 Shutting down server...")

	// Stop accepting requests first so in-flight checkouts can finish
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	cancel()
	waitSweeper()
	if dispatcher != nil {
		dispatcher.Wait()
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			slog.Error("Publisher close failed", "error", err)
		}
	}
	if err := sessions.Close(); err != nil {
		slog.Error("Session store close failed", "error", err)
	}
	if err := backends.Close(); err != nil {
		slog.Error("Database close failed", "error", err)
	}
	slog.Info("✅ Storage closed")
	slog.Info("👋 Server exited successfully")
}

func openSessions(cfg *config.Config) (storage.SessionStore, error) {
	if cfg.SessionBackend == "pebble" {
		slog.Info("🗄️ Using pebble session store", "dir", cfg.SessionDir)
		return storage.NewPebbleSessionStore(cfg.SessionDir, cfg.SessionTTL)
	}
	return storage.NewMemorySessionStore(cfg.SessionTTL), nil
}

type closer interface{ Close() error }

func buildPublishers(cfg *config.Config) (notifications.Multi, []closer) {
	var (
		pubs    notifications.Multi
		closers []closer
	)
	if len(cfg.KafkaBrokers) > 0 {
		k := notifications.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		pubs = append(pubs, k)
		closers = append(closers, k)
		slog.Info("📣 Publishing order events to Kafka", "topic", cfg.KafkaOrderTopic)
	}
	if cfg.WebhookURL != "" {
		if cfg.WebhookSecret == "" {
			slog.Warn("⚠️ WEBHOOK_SECRET is empty, webhook payloads will be unsigned")
		}
		pubs = append(pubs, notifications.NewWebhookPublisher(cfg.WebhookURL, cfg.WebhookSecret))
		slog.Info("📣 Publishing order events to webhook", "url", cfg.WebhookURL)
	}
	return pubs, closers
}
