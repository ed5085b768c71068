package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/stockpinghq/stockping-backend/pkg/logger"
)

const alertRetentionDays = 90

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type alertCleanupRepo interface {
	DeleteSentOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// AlertCleanupJobParams configure the sent-alert retention sweeper.
type AlertCleanupJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository alertCleanupRepo
	Retention  int
}

// NewAlertCleanupJob builds the job that prunes delivered alerts past the
// retention window. Pending alerts are never touched; they stay until a
// digest delivers them.
func NewAlertCleanupJob(params AlertCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("alerts repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = alertRetentionDays
	}
	return &alertCleanupJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type alertCleanupJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      alertCleanupRepo
	retention int
	now       func() time.Time
}

func (j *alertCleanupJob) Name() string { return "alert-cleanup" }

func (j *alertCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeleteSentOlderThan(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("alert cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "alert cleanup complete")
	return nil
}
