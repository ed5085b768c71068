package digest

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stockpinghq/stockping-backend/pkg/enums"
	"github.com/stockpinghq/stockping-backend/pkg/metrics"
)

type fakeRunner struct {
	result *Result
	err    error
	calls  int
	last   enums.DigestFrequency
}

func (f *fakeRunner) Run(_ context.Context, frequency enums.DigestFrequency) (*Result, error) {
	f.calls++
	f.last = frequency
	return f.result, f.err
}

func TestJobNameCarriesFrequency(t *testing.T) {
	job, err := NewJob(JobParams{
		Logger:    testLogger(),
		Pipeline:  &fakeRunner{result: &Result{}},
		Frequency: enums.DigestFrequencyWeekly,
	})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if job.Name() != "alert-digest-weekly" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
}

func TestJobRunPropagatesPipelineFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("tenants unavailable")}
	job, err := NewJob(JobParams{Logger: testLogger(), Pipeline: runner})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected run-level failure to propagate")
	}
	if runner.last != enums.DigestFrequencyDaily {
		t.Fatalf("expected daily default, got %q", runner.last)
	}
}

func TestJobRunSwallowsTenantScopedErrors(t *testing.T) {
	runner := &fakeRunner{result: &Result{Errors: []string{"t1: boom"}}}
	job, err := NewJob(JobParams{Logger: testLogger(), Pipeline: runner})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("tenant-scoped errors must not fail the job: %v", err)
	}
}

func TestJobRunObservesMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	digestMetrics := metrics.NewDigestMetrics(registry)
	runner := &fakeRunner{result: &Result{EmailsSent: 4, EmailsFailed: 1, AlertsMarkedSent: 9}}
	job, err := NewJob(JobParams{
		Logger:    testLogger(),
		Pipeline:  runner,
		Frequency: enums.DigestFrequencyDaily,
		Metrics:   digestMetrics,
	})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			found[family.GetName()] = metric.GetCounter().GetValue()
		}
	}
	if found["digest_emails_sent_total"] != 4 {
		t.Fatalf("expected 4 sent, got %v", found["digest_emails_sent_total"])
	}
	if found["digest_emails_failed_total"] != 1 {
		t.Fatalf("expected 1 failed, got %v", found["digest_emails_failed_total"])
	}
	if found["digest_alerts_marked_sent_total"] != 9 {
		t.Fatalf("expected 9 marked, got %v", found["digest_alerts_marked_sent_total"])
	}
}

func TestJobRunWithoutMetricsIsSafe(t *testing.T) {
	job, err := NewJob(JobParams{Logger: testLogger(), Pipeline: &fakeRunner{result: &Result{}}})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestNewJobRejectsUnschedulableFrequency(t *testing.T) {
	if _, err := NewJob(JobParams{
		Logger:    testLogger(),
		Pipeline:  &fakeRunner{},
		Frequency: enums.DigestFrequencyNone,
	}); err == nil {
		t.Fatal("expected validation error")
	}
}
