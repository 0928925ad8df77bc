package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	application "magnolia/contexts/operations/cron-service/application"
	"magnolia/contexts/operations/cron-service/ports"
)

const (
	JobDaily                 = "daily"
	JobResyncProfiles        = "resync_profiles"
	JobVerifyDeliverables    = "verify_deliverables"
	JobReconcileFulfillments = "reconcile_fulfillments"
	JobFlushNotifications    = "flush_notifications"

	defaultLockTTL  = 10 * time.Minute
	dailyWindowHour = 8
)

// SubJob is one schedulable unit: a name for its lock and a body that
// reports counters.
type SubJob struct {
	Name string
	Run  func(ctx context.Context) (map[string]int, error)
}

type JobResult struct {
	Name     string
	OK       bool
	Skipped  bool
	Error    string
	Counters map[string]int
}

type DailyReport struct {
	Skipped bool
	Jobs    []JobResult
}

// Orchestrator runs jobs under named locks. A lock that cannot be taken
// means another instance is already running the job, which is success
// with a skipped flag, not an error.
type Orchestrator struct {
	Locks    ports.LockRepository
	Clock    ports.Clock
	Holder   string
	TTL      time.Duration
	Location *time.Location
	Jobs     []SubJob
	Logger   *slog.Logger
}

// RunDaily executes every sub-job sequentially under its own lock. The
// composite only does work during the eight o'clock hour in the
// configured timezone, so an hourly scheduler is a no-op the rest of the
// day.
func (o Orchestrator) RunDaily(ctx context.Context) (DailyReport, error) {
	logger := application.ResolveLogger(o.Logger)
	now := o.Clock.Now()
	if o.Location != nil {
		now = now.In(o.Location)
	}
	if now.Hour() != dailyWindowHour {
		return DailyReport{Skipped: true}, nil
	}

	acquired, err := o.Locks.Acquire(ctx, JobDaily, o.Holder, o.ttl(), o.Clock.Now().UTC())
	if err != nil {
		return DailyReport{}, err
	}
	if !acquired {
		return DailyReport{Skipped: true}, nil
	}
	defer o.release(ctx, JobDaily)

	report := DailyReport{}
	for _, job := range o.Jobs {
		result := o.RunJob(ctx, job)
		report.Jobs = append(report.Jobs, result)
	}

	logger.Info("daily cron finished",
		"event", "cron_daily_finished",
		"module", "operations/cron-service",
		"layer", "application",
		"jobs", len(report.Jobs),
	)
	return report, nil
}

// RunJob runs one sub-job under its own lock, capturing panics so a bad
// job never takes down its siblings or the scheduler loop.
func (o Orchestrator) RunJob(ctx context.Context, job SubJob) JobResult {
	logger := application.ResolveLogger(o.Logger)

	acquired, err := o.Locks.Acquire(ctx, job.Name, o.Holder, o.ttl(), o.Clock.Now().UTC())
	if err != nil {
		return JobResult{Name: job.Name, Error: err.Error()}
	}
	if !acquired {
		return JobResult{Name: job.Name, OK: true, Skipped: true}
	}
	defer o.release(ctx, job.Name)

	counters, err := o.runBody(ctx, job)
	if err != nil {
		logger.Error("cron job failed",
			"event", "cron_job_failed",
			"module", "operations/cron-service",
			"layer", "application",
			"job", job.Name,
			"error", err.Error(),
		)
		return JobResult{Name: job.Name, Error: err.Error(), Counters: counters}
	}

	logger.Info("cron job finished",
		"event", "cron_job_finished",
		"module", "operations/cron-service",
		"layer", "application",
		"job", job.Name,
	)
	return JobResult{Name: job.Name, OK: true, Counters: counters}
}

// JobByName finds a configured sub-job for the per-job HTTP endpoints.
func (o Orchestrator) JobByName(name string) (SubJob, bool) {
	for _, job := range o.Jobs {
		if job.Name == name {
			return job, true
		}
	}
	return SubJob{}, false
}

func (o Orchestrator) runBody(ctx context.Context, job SubJob) (counters map[string]int, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()
	return job.Run(ctx)
}

func (o Orchestrator) release(ctx context.Context, job string) {
	if err := o.Locks.Release(ctx, job, o.Holder); err != nil {
		application.ResolveLogger(o.Logger).Warn("cron lock release failed",
			"event", "cron_lock_release_failed",
			"module", "operations/cron-service",
			"layer", "application",
			"job", job,
			"error", err.Error(),
		)
	}
}

func (o Orchestrator) ttl() time.Duration {
	if o.TTL > 0 {
		return o.TTL
	}
	return defaultLockTTL
}
