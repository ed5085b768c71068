package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/stockpinghq/stockping-backend/pkg/logger"
)

type sessionCleanupRepo interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionCleanupJobParams configure the expired-session sweeper.
type SessionCleanupJobParams struct {
	Logger     *logger.Logger
	Repository sessionCleanupRepo
}

// NewSessionCleanupJob builds the job that purges expired sessions.
func NewSessionCleanupJob(params SessionCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("sessions repository required")
	}
	return &sessionCleanupJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type sessionCleanupJob struct {
	logg *logger.Logger
	repo sessionCleanupRepo
	now  func() time.Time
}

func (j *sessionCleanupJob) Name() string { return "session-cleanup" }

func (j *sessionCleanupJob) Run(ctx context.Context) error {
	deleted, err := j.repo.DeleteExpired(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("session cleanup: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "rows_deleted", deleted)
	j.logg.Info(logCtx, "session cleanup complete")
	return nil
}
