package vocabulary

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler refreshes a Store on a cron schedule.
//
// Common expressions:
//   - "0 * * * *"    - hourly
//   - "*/15 * * * *" - every 15 minutes
//   - "@every 10m"   - every ten minutes from start
type Scheduler struct {
	store    *Store
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a scheduler for store.
func NewScheduler(store *Store, schedule string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:    store,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "vocabulary.scheduler"),
	}
}

// Start registers the refresh job and starts the cron runner. An empty
// schedule does nothing. The scheduler stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("refresh schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}
	if _, err := s.cron.AddFunc(s.schedule, func() { s.refresh(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule vocabulary refresh: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("vocabulary scheduler started", "schedule", s.schedule, "source", s.store.Source())

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Scheduler) refresh(ctx context.Context) {
	s.logger.Debug("starting scheduled vocabulary refresh")
	if err := s.store.Reload(ctx); err != nil {
		s.logger.Error("scheduled vocabulary refresh failed", "error", err)
	}
}

// Stop stops the runner and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("vocabulary scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled refresh, or nil when not scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
