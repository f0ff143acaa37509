package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/bidfeed/pkg/feed"
)

//go:generate moq -out mocks/emitter.go -pkg mocks -skip-ensure -fmt goimports . Emitter

// Emitter produces the feed file
type Emitter interface {
	Emit(ctx context.Context) (feed.Report, error)
}

// Status is the state after the last completed run
type Status struct {
	Report   feed.Report
	WriteErr error // set if the feed file was not written
	Runs     int
}

// Scheduler runs the emitter once or on a fixed interval and keeps the last status
type Scheduler struct {
	emitter  Emitter
	interval time.Duration

	mu     sync.RWMutex
	status Status
}

// NewScheduler creates a scheduler, zero interval defaults to 30 minutes
func NewScheduler(emitter Emitter, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Scheduler{emitter: emitter, interval: interval}
}

// Run emits the feed immediately and then on every interval tick until ctx is done
func (s *Scheduler) Run(ctx context.Context) error {
	lgr.Printf("[INFO] scheduler started with interval %v", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// run immediately on start
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			lgr.Printf("[INFO] scheduler stopped")
			return nil
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single emit and records its status
func (s *Scheduler) RunOnce(ctx context.Context) (feed.Report, error) {
	report, err := s.emitter.Emit(ctx)
	if err != nil {
		lgr.Printf("[ERROR] feed run failed: %v", err)
	}

	s.mu.Lock()
	s.status = Status{Report: report, WriteErr: err, Runs: s.status.Runs + 1}
	s.mu.Unlock()
	return report, err
}

// Status returns the last run status, false if nothing has run yet
func (s *Scheduler) Status() (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.status.Runs > 0
}
