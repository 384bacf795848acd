package cache

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"rrcore/internal/logging"
)

// Scheduler drives begin_frame/purge_memory on a fixed interval for
// deployments with no UI loop of their own (a headless ingester, a
// batch recompute job) — grounded on the teacher's
// internal/orchestrator cron job managers, which wrap exactly one
// gocron.Scheduler with named jobs. It is purely additive: callers with
// a UI loop drive Caches.BeginFrame/PurgeMemory directly and never need
// a Scheduler at all.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewScheduler creates a Scheduler. It does not start any jobs until
// Start is called.
func NewScheduler(logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create cache scheduler: %w", err)
	}
	return &Scheduler{
		scheduler: s,
		logger:    logging.Scope(logger, "cache_scheduler"),
	}, nil
}

// Start registers periodic begin_frame and purge_memory jobs against
// caches and starts the scheduler. frameInterval is typically much
// shorter than purgeInterval (e.g. one tick per rendered frame versus
// one purge sweep per several seconds of memory pressure).
func (s *Scheduler) Start(caches *Caches, frameInterval, purgeInterval time.Duration) error {
	if _, err := s.scheduler.NewJob(
		gocron.DurationJob(frameInterval),
		gocron.NewTask(caches.BeginFrame),
		gocron.WithName("cache-begin-frame"),
	); err != nil {
		return fmt.Errorf("schedule begin_frame: %w", err)
	}
	if _, err := s.scheduler.NewJob(
		gocron.DurationJob(purgeInterval),
		gocron.NewTask(caches.PurgeMemory),
		gocron.WithName("cache-purge-memory"),
	); err != nil {
		return fmt.Errorf("schedule purge_memory: %w", err)
	}
	s.scheduler.Start()
	s.logger.Info("cache scheduler started", "frame_interval", frameInterval, "purge_interval", purgeInterval)
	return nil
}

// Stop shuts the scheduler down, waiting for any in-flight job.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
