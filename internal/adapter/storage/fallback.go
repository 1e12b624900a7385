package storage

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
	"github.com/ibrahimkeyboad/gostore/internal/metrics"
)

// failover tracks whether a repository pair has given up on its primary.
// Once the primary fails it is never tried again for the life of the process.
type failover struct {
	name     string
	degraded atomic.Bool
	metrics  *metrics.Registry
}

func (f *failover) usePrimary() bool { return !f.degraded.Load() }

func (f *failover) degrade(err error) {
	if f.degraded.CompareAndSwap(false, true) {
		slog.Warn("⚠️ Relational backend failed, switching to JSON files",
			"repository", f.name, "error", err)
		f.metrics.Fallback(f.name)
	}
}

// backendFailure reports whether err means the store itself is unusable,
// as opposed to a not-found or conflict answer from a healthy store.
func backendFailure(err error) bool {
	return err != nil && errors.Is(err, domain.ErrPersistence)
}

// FallbackProducts reads from the relational catalog until it fails, then
// from products.json.
type FallbackProducts struct {
	failover
	primary   domain.ProductRepository
	secondary domain.ProductRepository
}

// NewFallbackProducts builds the pair. A nil primary starts degraded.
func NewFallbackProducts(primary, secondary domain.ProductRepository, m *metrics.Registry) *FallbackProducts {
	r := &FallbackProducts{primary: primary, secondary: secondary}
	r.name, r.metrics = "products", m
	if primary == nil {
		r.degraded.Store(true)
	}
	return r
}

func (r *FallbackProducts) Degraded() bool { return r.degraded.Load() }

func (r *FallbackProducts) List(ctx context.Context) ([]domain.Product, error) {
	if r.usePrimary() {
		products, err := r.primary.List(ctx)
		if !backendFailure(err) {
			return products, err
		}
		r.degrade(err)
	}
	return r.secondary.List(ctx)
}

func (r *FallbackProducts) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	if r.usePrimary() {
		p, err := r.primary.FindByID(ctx, id)
		if !backendFailure(err) {
			return p, err
		}
		r.degrade(err)
	}
	return r.secondary.FindByID(ctx, id)
}

// FallbackOrders writes to the relational ledger until it fails, then to
// orders.json. The failing call is retried against the JSON file.
type FallbackOrders struct {
	failover
	primary   domain.OrderRepository
	secondary domain.OrderRepository
}

func NewFallbackOrders(primary, secondary domain.OrderRepository, m *metrics.Registry) *FallbackOrders {
	r := &FallbackOrders{primary: primary, secondary: secondary}
	r.name, r.metrics = "orders", m
	if primary == nil {
		r.degraded.Store(true)
	}
	return r
}

func (r *FallbackOrders) Degraded() bool { return r.degraded.Load() }

func (r *FallbackOrders) Save(ctx context.Context, order domain.Order) (domain.Order, error) {
	if r.usePrimary() {
		saved, err := r.primary.Save(ctx, order)
		if !backendFailure(err) {
			return saved, err
		}
		r.degrade(err)
	}
	return r.secondary.Save(ctx, order)
}

func (r *FallbackOrders) List(ctx context.Context, email string) ([]domain.Order, error) {
	if r.usePrimary() {
		orders, err := r.primary.List(ctx, email)
		if !backendFailure(err) {
			return orders, err
		}
		r.degrade(err)
	}
	return r.secondary.List(ctx, email)
}

func (r *FallbackOrders) FindByID(ctx context.Context, id int64) (domain.Order, error) {
	if r.usePrimary() {
		o, err := r.primary.FindByID(ctx, id)
		if !backendFailure(err) {
			return o, err
		}
		r.degrade(err)
	}
	return r.secondary.FindByID(ctx, id)
}
