package refresh

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Func performs one refresh pass. The scheduler does not interpret the
// result; the refresh function is responsible for routing data into the
// session store.
type Func func(ctx context.Context)

// Scheduler runs a refresh function on a fixed interval. At most one loop is
// active at a time: Start clears any running loop before launching the next
// one.
type Scheduler struct {
	mu      sync.Mutex
	refresh Func
	logger  *zap.Logger
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewScheduler(refresh Func, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{refresh: refresh, logger: logger}
}

// Start launches the refresh loop. A loop already running is cancelled and
// drained first, so exactly one timer is ever active. The first pass runs
// immediately; subsequent passes fire every interval until Stop or context
// cancellation.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		<-s.done
		s.logger.Debug("cleared running refresh loop")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	s.logger.Info("refresh loop started", zap.Duration("interval", interval))
	go s.loop(loopCtx, interval, done)
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	s.refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

// Stop cancels the loop and waits for the in-flight pass to finish. Stopping
// an idle scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("refresh loop stopped")
}

// Running reports whether a loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}
