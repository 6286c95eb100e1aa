package cron

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPruneSchedule prunes the journal once an hour.
const DefaultPruneSchedule = "17 * * * *"

// Pruner is the subset of journal.Journal the prune job needs.
type Pruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// JournalPruneJob deletes journal rows older than Retention.
type JournalPruneJob struct {
	Journal      Pruner
	Retention    time.Duration
	Logger       *slog.Logger
	ScheduleExpr string // empty = DefaultPruneSchedule
}

var _ Job = (*JournalPruneJob)(nil)

// Name implements Job.
func (j *JournalPruneJob) Name() string { return "journal_prune" }

// Schedule implements Job.
func (j *JournalPruneJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return DefaultPruneSchedule
}

// Run implements Job.
func (j *JournalPruneJob) Run(ctx context.Context) error {
	removed, err := j.Journal.Prune(ctx, j.Retention)
	if err != nil {
		return err
	}
	if removed > 0 && j.Logger != nil {
		j.Logger.Debug("journal pruned", "removed", removed, "retention", j.Retention)
	}
	return nil
}
