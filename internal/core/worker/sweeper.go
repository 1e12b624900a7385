package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// StartSessionSweeper removes expired sessions every interval until ctx ends.
// The returned func blocks until the sweeper has stopped; call it before
// closing the store.
func StartSessionSweeper(ctx context.Context, s Sweeper, interval time.Duration) (wait func()) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.Sweep(ctx)
				if err != nil {
					slog.Error("Session sweep failed", "error", err)
					continue
				}
				if n > 0 {
					slog.Info("🧹 Expired sessions removed", "count", n)
				}
			}
		}
	}()
	return wg.Wait
}
