package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/calebreed/formpulse/internal/repository"
	"github.com/calebreed/formpulse/internal/worker"
)

// Scheduler enqueues recurring jobs on a fixed interval. It only writes
// queue rows; the worker does the actual sending, so a slow SMTP server
// never blocks scheduling.
type Scheduler struct {
	queries  *repository.Queries
	interval time.Duration
	logger   *slog.Logger

	wg     sync.WaitGroup
	stopCh chan struct{}
}

// NewScheduler creates a new Scheduler ticking at interval.
func NewScheduler(queries *repository.Queries, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		queries:  queries,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the scheduling loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
	s.logger.Info("Digest scheduler started", "interval", s.interval)
}

// Stop signals the loop to exit and waits for it.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("Digest scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.enqueueDigests(ctx)
			s.enqueueSessionCleanup(ctx)
		}
	}
}

// enqueueDigests creates one digest job per account. Individual enqueue
// failures are logged and skipped so one bad row cannot starve the rest.
func (s *Scheduler) enqueueDigests(ctx context.Context) {
	recipients, err := s.queries.ListDigestRecipients(ctx)
	if err != nil {
		s.logger.Error("Failed to list digest recipients", "error", err)
		return
	}

	enqueued := 0
	for _, r := range recipients {
		if _, err := worker.EnqueueWeeklyDigest(ctx, s.queries, r.AccountID, worker.WithPriority(worker.PriorityLow)); err != nil {
			s.logger.Error("Failed to enqueue digest", "account_id", r.AccountID, "error", err)
			continue
		}
		enqueued++
	}

	s.logger.Info("Digest jobs enqueued", "count", enqueued)
}

func (s *Scheduler) enqueueSessionCleanup(ctx context.Context) {
	if _, err := worker.EnqueueSessionCleanup(ctx, s.queries, worker.WithPriority(worker.PriorityLow)); err != nil {
		s.logger.Error("Failed to enqueue session cleanup", "error", err)
	}
}
