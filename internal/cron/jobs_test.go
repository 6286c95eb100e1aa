package cron

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

type fakePruner struct {
	retention time.Duration
	removed   int64
	err       error
}

func (p *fakePruner) Prune(_ context.Context, retention time.Duration) (int64, error) {
	p.retention = retention
	return p.removed, p.err
}

func TestJournalPruneJob(t *testing.T) {
	t.Parallel()

	p := &fakePruner{removed: 3}
	job := &JournalPruneJob{Journal: p, Retention: 48 * time.Hour, Logger: slog.New(slog.DiscardHandler)}

	if job.Schedule() != DefaultPruneSchedule {
		t.Errorf("Schedule() = %q, want default", job.Schedule())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.retention != 48*time.Hour {
		t.Errorf("retention = %v, want 48h", p.retention)
	}

	job.ScheduleExpr = "*/10 * * * *"
	if job.Schedule() != "*/10 * * * *" {
		t.Errorf("Schedule() = %q", job.Schedule())
	}
}

func TestJournalPruneJob_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	job := &JournalPruneJob{Journal: &fakePruner{err: boom}}
	if err := job.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Run() = %v, want %v", err, boom)
	}
}
