package scheduler

import (
	"context"
	"time"

	notificationdomain "github.com/haulmatic/fleetguard/internal/notification/domain"
	obsmetrics "github.com/haulmatic/fleetguard/internal/observability/metrics"
	"go.uber.org/zap"
)

type jobRun struct {
	job       string
	runID     string
	startedAt time.Time

	sentCount    int
	skippedCount int
	failedCount  int
	closedCount  int
	errorCount   int
}

type jobRunKey struct{}

func (r *jobRun) IncError() {
	if r == nil {
		return
	}
	r.errorCount++
}

func (s *Scheduler) ensureJobRun(ctx context.Context, job string) (context.Context, *jobRun, bool) {
	if existing := jobRunFromContext(ctx); existing != nil {
		return ctx, existing, false
	}
	run := &jobRun{
		job:       job,
		runID:     s.genID.Generate().String(),
		startedAt: s.clock.Now(),
	}
	return context.WithValue(ctx, jobRunKey{}, run), run, true
}

func jobRunFromContext(ctx context.Context) *jobRun {
	if run, ok := ctx.Value(jobRunKey{}).(*jobRun); ok {
		return run
	}
	return nil
}

func (s *Scheduler) logJobStart(run *jobRun) {
	if run == nil {
		return
	}
	s.log.Info("scheduler.job.start",
		zap.String("job", run.job),
		zap.String("run_id", run.runID),
		zap.Bool("dry_run", s.cfg.DryRun),
	)
}

func (s *Scheduler) logJobFinish(run *jobRun) {
	if run == nil {
		return
	}
	fields := []zap.Field{
		zap.String("job", run.job),
		zap.String("run_id", run.runID),
		zap.Int64("duration_ms", time.Since(run.startedAt).Milliseconds()),
		zap.Int("sent_count", run.sentCount),
		zap.Int("skipped_count", run.skippedCount),
		zap.Int("failed_count", run.failedCount),
		zap.Int("closed_count", run.closedCount),
		zap.Int("error_count", run.errorCount),
	}
	if run.errorCount > 0 || run.failedCount > 0 {
		s.log.Warn("scheduler.job.finish", fields...)
		return
	}
	s.log.Info("scheduler.job.finish", fields...)
}

// countOutcome folds one dispatch outcome into the run summary and metrics.
func (s *Scheduler) countOutcome(run *jobRun, outcome notificationdomain.Outcome) {
	obsmetrics.Scheduler().IncNotification(run.job, string(outcome))
	switch outcome {
	case notificationdomain.OutcomeSent:
		run.sentCount++
	case notificationdomain.OutcomeSkipped:
		run.skippedCount++
	case notificationdomain.OutcomeFailed:
		run.failedCount++
	}
}

func (s *Scheduler) logItemError(run *jobRun, job string, err error, fields ...zap.Field) {
	if err == nil {
		return
	}
	run.IncError()
	baseFields := []zap.Field{
		zap.String("job", job),
		zap.String("error_type", obsmetrics.ClassifySchedulerErrorType(err)),
		zap.Bool("retryable", obsmetrics.IsSchedulerErrorRetryable(err)),
		zap.Error(err),
	}
	s.log.Error("scheduler.item.error", append(baseFields, fields...)...)
}
