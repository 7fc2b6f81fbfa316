package scheduler

import (
	"context"
	"fmt"
	"time"

	"bikeshare/internal/external/service"
	"bikeshare/pkg/logger"

	"github.com/robfig/cron/v3"
)

const DefaultRunTimeout = time.Minute

// QueueProcessor is the part of the charge service the scheduler drives.
type QueueProcessor interface {
	ProcessQueue(ctx context.Context) (*service.QueueResult, error)
}

// Scheduler runs the charge queue on a cron schedule. Runs never overlap.
type Scheduler struct {
	cron       *cron.Cron
	charges    QueueProcessor
	log        *logger.Logger
	runTimeout time.Duration
}

func NewScheduler(schedule string, charges QueueProcessor, log *logger.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{
		cron:       c,
		charges:    charges,
		log:        log,
		runTimeout: DefaultRunTimeout,
	}

	if _, err := c.AddFunc(schedule, s.RunOnce); err != nil {
		return nil, fmt.Errorf("failed to register charge queue job %q: %w", schedule, err)
	}

	log.Info("Charge queue job registered", "schedule", schedule)
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started")
}

// Stop halts scheduling and waits for a running job, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce processes the queue a single time.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.charges.ProcessQueue(ctx)
	if err != nil {
		s.log.Error("Charge queue run failed", "error", err, "duration", time.Since(start))
		return
	}
	s.log.Debug("Charge queue run finished",
		"processed", result.Processed,
		"duration", time.Since(start),
	)
}
