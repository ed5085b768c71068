package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/stockpinghq/stockping-backend/pkg/enums"
	pkgerrors "github.com/stockpinghq/stockping-backend/pkg/errors"
	"github.com/stockpinghq/stockping-backend/pkg/logger"
	"github.com/stockpinghq/stockping-backend/pkg/metrics"
)

type runner interface {
	Run(ctx context.Context, frequency enums.DigestFrequency) (*Result, error)
}

// JobParams configures the scheduled digest job.
type JobParams struct {
	Logger    *logger.Logger
	Pipeline  runner
	Frequency enums.DigestFrequency
	Metrics   *metrics.DigestMetrics

	now func() time.Time
}

// Job is the scheduler-facing shell around the pipeline: it logs run
// boundaries, folds counters into metrics, and surfaces run-level failures
// to the scheduler.
type Job struct {
	logg      *logger.Logger
	pipeline  runner
	frequency enums.DigestFrequency
	metrics   *metrics.DigestMetrics
	now       func() time.Time
}

// NewJob validates wiring and builds the digest job.
func NewJob(params JobParams) (*Job, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Pipeline == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "digest pipeline required")
	}
	if params.Frequency == "" {
		params.Frequency = enums.DigestFrequencyDaily
	}
	if !params.Frequency.Schedulable() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("frequency %q is not schedulable", params.Frequency))
	}
	if params.now == nil {
		params.now = time.Now
	}
	return &Job{
		logg:      params.Logger,
		pipeline:  params.Pipeline,
		frequency: params.Frequency,
		metrics:   params.Metrics,
		now:       params.now,
	}, nil
}

// Name identifies the job in logs and lock keys.
func (j *Job) Name() string {
	return "alert-digest-" + string(j.frequency)
}

// Run executes one digest pass and reports the outcome.
func (j *Job) Run(ctx context.Context) error {
	ctx = j.logg.WithJob(ctx, j.Name())
	j.logg.Info(ctx, "digest run starting")

	start := j.now()
	result, err := j.pipeline.Run(ctx, j.frequency)
	if err != nil {
		j.logg.Error(ctx, "digest run failed", err)
		return err
	}

	j.metrics.ObserveRun(string(j.frequency), result.EmailsSent, result.EmailsFailed, result.AlertsMarkedSent, len(result.Errors))

	ctx = j.logg.WithFields(ctx, map[string]any{
		"tenants_processed":  result.TenantsProcessed,
		"emails_sent":        result.EmailsSent,
		"emails_failed":      result.EmailsFailed,
		"alerts_marked_sent": result.AlertsMarkedSent,
		"error_count":        len(result.Errors),
		"duration_ms":        j.now().Sub(start).Milliseconds(),
	})
	if len(result.Errors) > 0 {
		j.logg.Warn(ctx, "digest run completed with errors")
		return nil
	}
	j.logg.Info(ctx, "digest run completed")
	return nil
}
