// Package checkout turns a session cart into a persisted order.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
	"github.com/ibrahimkeyboad/gostore/internal/metrics"
)

type Pricer interface {
	Currency(code string) domain.Currency
	CartTotals(ctx context.Context, lines []domain.CartLine, currency domain.Currency) (domain.CartTotals, error)
}

// Notifier is told about every committed order. It must not block.
type Notifier interface {
	Notify(ctx context.Context, order domain.Order)
}

type Request struct {
	CustomerName string `json:"customer_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Currency     string `json:"currency"`
}

type Service struct {
	pricing  Pricer
	orders   domain.OrderRepository
	notifier Notifier
	metrics  *metrics.Registry
	now      func() time.Time
}

func NewService(p Pricer, orders domain.OrderRepository, n Notifier, m *metrics.Registry) *Service {
	return &Service{pricing: p, orders: orders, notifier: n, metrics: m, now: time.Now}
}

// Checkout prices the cart, saves the order and only then clears the cart.
// A failed save leaves the session untouched.
func (s *Service) Checkout(ctx context.Context, sess *domain.Session, req Request) (domain.Order, error) {
	// 1. Price the cart
	currency := s.pricing.Currency(req.Currency)
	totals, err := s.pricing.CartTotals(ctx, sess.CartSnapshot(), currency)
	if err != nil {
		s.metrics.CheckoutFailed("pricing")
		return domain.Order{}, err
	}
	if len(totals.Items) == 0 {
		s.metrics.CheckoutFailed("cart_empty")
		return domain.Order{}, domain.ErrCartEmpty
	}

	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		name = "Guest"
	}

	// 2. Persist
	saved, err := s.orders.Save(ctx, domain.Order{
		CustomerName: name,
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		Currency:     totals.Currency,
		Items:        totals.Items,
		Subtotal:     totals.Subtotal,
		Shipping:     totals.Shipping,
		Total:        totals.Total,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		s.metrics.CheckoutFailed("persistence")
		slog.Error("❌ Checkout failed to save order", "error", err)
		var de *domain.Error
		if errors.As(err, &de) {
			return domain.Order{}, err
		}
		return domain.Order{}, domain.Persistence("Could not save order", err)
	}

	// 3. Clear the cart
	sess.ClearCart()
	s.metrics.OrderPlaced(string(saved.Currency))
	slog.Info("🛒 Order placed", "order_id", saved.ID, "currency", saved.Currency, "total", saved.Total.String())

	// 4. Tell subscribers
	if s.notifier != nil {
		s.notifier.Notify(ctx, saved)
	}
	return saved, nil
}
