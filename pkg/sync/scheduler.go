package sync

import (
	"context"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
)

// Scheduler runs the syncer periodically: once at start, then on every tick
type Scheduler struct {
	syncer   *Syncer
	interval time.Duration
	wg       sync.WaitGroup
	cancel   context.CancelFunc
}

// NewScheduler creates a scheduler driving the given syncer
func NewScheduler(syncer *Syncer, interval time.Duration) *Scheduler {
	if interval == 0 {
		interval = 30 * time.Minute
	}
	return &Scheduler{syncer: syncer, interval: interval}
}

// Start begins periodic syncing until the context is canceled or Stop is called
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.worker(ctx)

	lgr.Printf("[INFO] scheduler started with interval %v", s.interval)
}

// Stop cancels the scheduler and waits for the current run to settle
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

func (s *Scheduler) worker(ctx context.Context) {
	defer s.wg.Done()

	// run once immediately
	if _, err := s.syncer.Run(ctx); err != nil {
		lgr.Printf("[WARN] initial sync failed: %v", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.syncer.Run(ctx); err != nil {
				lgr.Printf("[WARN] scheduled sync failed: %v", err)
			}
		}
	}
}
