package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"
)

type fakeAlertCleanupRepo struct {
	lastCutoff  time.Time
	deletedRows int64
	err         error
	called      int
}

func (f *fakeAlertCleanupRepo) DeleteSentOlderThan(_ context.Context, _ *gorm.DB, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.deletedRows, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newAlertCleanupJob(t *testing.T, repo *fakeAlertCleanupRepo, retention int) *alertCleanupJob {
	t.Helper()
	jobIface, err := NewAlertCleanupJob(AlertCleanupJobParams{
		Logger:     testLogger(),
		DB:         fakeTxRunner{},
		Repository: repo,
		Retention:  retention,
	})
	if err != nil {
		t.Fatalf("NewAlertCleanupJob: %v", err)
	}
	job, ok := jobIface.(*alertCleanupJob)
	if !ok {
		t.Fatalf("expected alertCleanupJob, got %T", jobIface)
	}
	return job
}

func TestAlertCleanupJobUsesDefaultRetention(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeAlertCleanupRepo{deletedRows: 12}
	job := newAlertCleanupJob(t, repo, 0)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expected := now.Add(-alertRetentionDays * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expected) {
		t.Fatalf("expected cutoff %s, got %s", expected, repo.lastCutoff)
	}
	if repo.called != 1 {
		t.Fatalf("expected one delete, got %d", repo.called)
	}
}

func TestAlertCleanupJobHonorsConfiguredRetention(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeAlertCleanupRepo{}
	job := newAlertCleanupJob(t, repo, 30)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if expected := now.Add(-30 * 24 * time.Hour); !repo.lastCutoff.Equal(expected) {
		t.Fatalf("expected cutoff %s, got %s", expected, repo.lastCutoff)
	}
}

func TestAlertCleanupJobPropagatesErrors(t *testing.T) {
	repo := &fakeAlertCleanupRepo{err: errors.New("boom")}
	job := newAlertCleanupJob(t, repo, 0)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
