package cron

import (
	"time"

	"github.com/stockpinghq/stockping-backend/pkg/logger"
	"github.com/stockpinghq/stockping-backend/pkg/metrics"
)

// SessionCleanupSchedulerParams configure the standalone session sweeper.
type SessionCleanupSchedulerParams struct {
	Logger     *logger.Logger
	Repository sessionCleanupRepo
	Lock       Lock
	Metrics    *metrics.JobMetrics
	Interval   time.Duration
	RunOnStart bool
}

// NewSessionCleanupScheduler builds a scheduler carrying only the session
// cleanup job. It is the generic recurring-job shape reused outside the
// digest context.
func NewSessionCleanupScheduler(params SessionCleanupSchedulerParams) (*Scheduler, error) {
	job, err := NewSessionCleanupJob(SessionCleanupJobParams{
		Logger:     params.Logger,
		Repository: params.Repository,
	})
	if err != nil {
		return nil, err
	}
	return NewScheduler(SchedulerParams{
		Logger:     params.Logger,
		Registry:   NewRegistry(job),
		Lock:       params.Lock,
		Metrics:    params.Metrics,
		Interval:   params.Interval,
		RunOnStart: params.RunOnStart,
	})
}
