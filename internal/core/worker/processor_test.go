package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
	"github.com/ibrahimkeyboad/gostore/internal/core/notifications"
	"github.com/ibrahimkeyboad/gostore/internal/metrics"
)

type recordingPublisher struct {
	mu       sync.Mutex
	failures int
	calls    int
	events   []notifications.OrderEvent
	done     chan struct{}
}

func (p *recordingPublisher) Publish(_ context.Context, ev notifications.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failures {
		return errors.New("subscriber down")
	}
	p.events = append(p.events, ev)
	close(p.done)
	return nil
}

func TestDispatcherDeliversAfterRetries(t *testing.T) {
	pub := &recordingPublisher{failures: 2, done: make(chan struct{})}
	m := metrics.NewRegistry()
	d := NewDispatcher(pub, m, 4)
	d.Backoff = func(int) time.Duration { return time.Millisecond }

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Notify(ctx, domain.Order{ID: 9, Currency: domain.AUD})

	select {
	case <-pub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
	cancel()
	d.Wait()

	require.Len(t, pub.events, 1)
	assert.Equal(t, int64(9), pub.events[0].OrderID)
	assert.Equal(t, 3, pub.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished))
}

type failingPublisher struct{ calls atomic.Int32 }

func (p *failingPublisher) Publish(context.Context, notifications.OrderEvent) error {
	p.calls.Add(1)
	return errors.New("nope")
}

func TestDispatcherGivesUpAfterMaxAttempts(t *testing.T) {
	pub := &failingPublisher{}
	m := metrics.NewRegistry()
	d := NewDispatcher(pub, m, 4)
	d.Backoff = func(int) time.Duration { return time.Millisecond }
	d.MaxAttempts = 3

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	d.Enqueue(notifications.OrderEvent{ID: "e1", OrderID: 1})

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.EventsFailed) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(3), pub.calls.Load())
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	m := metrics.NewRegistry()
	d := NewDispatcher(&failingPublisher{}, m, 1)

	assert.True(t, d.Enqueue(notifications.OrderEvent{ID: "a"}))
	assert.False(t, d.Enqueue(notifications.OrderEvent{ID: "b"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsFailed))
}

func TestDefaultBackoff(t *testing.T) {
	assert.Equal(t, 10*time.Second, defaultBackoff(0))
	assert.Equal(t, 40*time.Second, defaultBackoff(3))
}

type countingSweeper struct{ n atomic.Int32 }

func (s *countingSweeper) Sweep(context.Context) (int, error) {
	s.n.Add(1)
	return 1, nil
}

func TestSessionSweeperRunsOnInterval(t *testing.T) {
	s := &countingSweeper{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wait := StartSessionSweeper(ctx, s, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return s.n.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	wait()
}

// closableSweeper fails the test if Sweep runs after Close.
type closableSweeper struct {
	t      *testing.T
	closed atomic.Bool
	n      atomic.Int32
}

func (s *closableSweeper) Sweep(context.Context) (int, error) {
	if s.closed.Load() {
		s.t.Error("sweep ran on a closed store")
	}
	s.n.Add(1)
	time.Sleep(2 * time.Millisecond)
	return 0, nil
}

func TestSessionSweeperWaitBlocksUntilStopped(t *testing.T) {
	s := &closableSweeper{t: t}
	ctx, cancel := context.WithCancel(context.Background())

	wait := StartSessionSweeper(ctx, s, time.Millisecond)
	require.Eventually(t, func() bool { return s.n.Load() >= 1 }, time.Second, time.Millisecond)

	cancel()
	wait()
	s.closed.Store(true)
	stopped := s.n.Load()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, s.n.Load())
}
