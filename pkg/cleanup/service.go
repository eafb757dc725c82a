// Package cleanup enforces session retention in the background.
package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// DefaultInterval is how often idle sessions are evicted.
const DefaultInterval = time.Minute

// Pruner evicts idle sessions and reports how many it removed.
// Implemented by session.Manager.
type Pruner interface {
	Prune() int
}

// Service periodically evicts sessions idle past their TTL. Idempotent;
// Manager.Create also prunes, the loop only bounds memory between creates.
type Service struct {
	pruner   Pruner
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a cleanup service; interval <= 0 means DefaultInterval.
func NewService(pruner Pruner, interval time.Duration) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Service{pruner: pruner, interval: interval}
}

// Start launches the background cleanup loop.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("Cleanup service started", "interval", s.interval)
}

// Stop signals the cleanup loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("Cleanup service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.prune()
		}
	}
}

func (s *Service) prune() {
	if n := s.pruner.Prune(); n > 0 {
		slog.Info("Retention: evicted idle sessions", "count", n)
	}
}
