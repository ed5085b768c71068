package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/stockpinghq/stockping-backend/pkg/logger"
	"github.com/stockpinghq/stockping-backend/pkg/metrics"
)

// DefaultInterval is the tick cadence when no interval is configured.
const DefaultInterval = 60 * time.Minute

// SchedulerParams configure a scheduler.
type SchedulerParams struct {
	Logger     *logger.Logger
	Registry   *Registry
	Lock       Lock
	Metrics    *metrics.JobMetrics
	Interval   time.Duration
	RunOnStart bool
}

// Scheduler runs registered jobs on a fixed interval. Start and Stop are
// idempotent; scheduled runs log and swallow job failures, while RunNow
// returns them to the caller.
type Scheduler struct {
	logg       *logger.Logger
	registry   *Registry
	lock       Lock
	metrics    *metrics.JobMetrics
	interval   time.Duration
	runOnStart bool

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScheduler builds a scheduler.
func NewScheduler(params SchedulerParams) (*Scheduler, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		logg:       params.Logger,
		registry:   registry,
		lock:       params.Lock,
		metrics:    params.Metrics,
		interval:   interval,
		runOnStart: params.RunOnStart,
	}, nil
}

// Start launches the ticker loop. Calling Start on a running scheduler does
// nothing, so there is never more than one loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)
}

// Stop cancels the ticker loop and waits for an in-flight cycle to finish.
// Stopping an idle scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	<-done
}

// Running reports whether the ticker loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow executes every registered job immediately, bypassing the
// distributed lock, and returns the combined job failures. It never touches
// the ticker loop.
func (s *Scheduler) RunNow(ctx context.Context) error {
	var combined error
	for _, job := range s.registry.Jobs() {
		if err := s.runJob(ctx, job); err != nil {
			combined = multierr.Append(combined, fmt.Errorf("%s: %w", job.Name(), err))
		}
	}
	return combined
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	if s.runOnStart {
		s.runCycle(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "scheduler stopped")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle is the scheduled path: it respects the lock and never lets a job
// failure escape past logs and metrics.
func (s *Scheduler) runCycle(ctx context.Context) {
	if s.lock != nil {
		locked, err := s.lock.Acquire(ctx)
		if err != nil {
			s.logg.Error(ctx, "scheduler lock acquire failed", err)
			return
		}
		if !locked {
			s.logg.Info(ctx, "another instance holds the scheduler lock; skipping tick")
			return
		}
		defer func() {
			if err := s.lock.Release(ctx); err != nil {
				s.logg.Error(ctx, "scheduler lock release failed", err)
			}
		}()
	}

	for _, job := range s.registry.Jobs() {
		// runJob already logged and counted the failure.
		_ = s.runJob(ctx, job)
	}
}

func (s *Scheduler) runJob(ctx context.Context, job Job) error {
	jobCtx := s.logg.WithJob(ctx, job.Name())
	s.logg.Info(jobCtx, "job start")

	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	s.metrics.ObserveDuration(job.Name(), duration)

	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		s.metrics.IncFailure(job.Name())
		return err
	}
	s.logg.Info(jobCtx, "job completed")
	s.metrics.IncSuccess(job.Name())
	return nil
}
