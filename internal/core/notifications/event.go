package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
)

const EventOrderPlaced = "order.placed"

// OrderEvent is what subscribers receive after a checkout commits.
type OrderEvent struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OrderID    int64           `json:"order_id"`
	Email      string          `json:"email"`
	Currency   domain.Currency `json:"currency"`
	Total      decimal.Decimal `json:"total"`
	Items      int             `json:"items"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func NewOrderPlaced(order domain.Order, now time.Time) OrderEvent {
	items := 0
	for _, li := range order.Items {
		items += li.Quantity
	}
	return OrderEvent{
		ID:         uuid.NewString(),
		Type:       EventOrderPlaced,
		OrderID:    order.ID,
		Email:      order.Email,
		Currency:   order.Currency,
		Total:      order.Total,
		Items:      items,
		OccurredAt: now.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
}

// Multi sends every event to all publishers and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev OrderEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
