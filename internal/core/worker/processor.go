package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
	"github.com/ibrahimkeyboad/gostore/internal/core/notifications"
	"github.com/ibrahimkeyboad/gostore/internal/metrics"
)

const DefaultMaxAttempts = 5

type job struct {
	event    notifications.OrderEvent
	attempts int
}

// Dispatcher delivers order events in the background so checkout never
// waits on a subscriber. Failed deliveries are retried with a growing delay.
type Dispatcher struct {
	publisher   notifications.Publisher
	metrics     *metrics.Registry
	queue       chan job
	now         func() time.Time
	Backoff     func(attempts int) time.Duration
	MaxAttempts int

	wg sync.WaitGroup
}

func NewDispatcher(p notifications.Publisher, m *metrics.Registry, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Dispatcher{
		publisher:   p,
		metrics:     m,
		queue:       make(chan job, queueSize),
		now:         time.Now,
		Backoff:     defaultBackoff,
		MaxAttempts: DefaultMaxAttempts,
	}
}

func defaultBackoff(attempts int) time.Duration {
	return time.Duration(attempts*10+10) * time.Second
}

// Notify queues an order.placed event for the order.
func (d *Dispatcher) Notify(ctx context.Context, order domain.Order) {
	d.Enqueue(notifications.NewOrderPlaced(order, d.now()))
}

// Enqueue never blocks. It reports false when the queue is full and the
// event was dropped.
func (d *Dispatcher) Enqueue(ev notifications.OrderEvent) bool {
	select {
	case d.queue <- job{event: ev}:
		return true
	default:
		slog.Error("Worker: queue full, dropping event", "event_id", ev.ID, "order_id", ev.OrderID)
		d.metrics.EventFailed()
		return false
	}
}

// Start runs the delivery loop until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		slog.Info("👷 Event worker started")
		for {
			select {
			case <-ctx.Done():
				slog.Info("Event worker stopped")
				return
			case j := <-d.queue:
				d.process(ctx, j)
			}
		}
	}()
}

// Wait blocks until the loop and any pending retries have exited.
func (d *Dispatcher) Wait() { d.wg.Wait() }

func (d *Dispatcher) process(ctx context.Context, j job) {
	slog.Info("Worker: Processing event", "event_id", j.event.ID, "order_id", j.event.OrderID)

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err := d.publisher.Publish(sendCtx, j.event)
	cancel()

	if err == nil {
		slog.Info("✅ Worker: Event delivered", "event_id", j.event.ID)
		d.metrics.EventPublished()
		return
	}

	j.attempts++
	slog.Error("Worker: Delivery failed", "error", err, "attempts", j.attempts)
	if j.attempts >= d.MaxAttempts {
		slog.Error("Worker: Event marked as FAILED (Max attempts reached)", "event_id", j.event.ID)
		d.metrics.EventFailed()
		return
	}

	delay := d.Backoff(j.attempts - 1)
	slog.Info("Worker: Scheduled retry", "next_run", d.now().Add(delay))
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
			select {
			case d.queue <- j:
			case <-ctx.Done():
			}
		}
	}()
}
