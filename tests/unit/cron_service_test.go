package unit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	cronservice "magnolia/contexts/operations/cron-service"
	cronworkers "magnolia/contexts/operations/cron-service/application/workers"
)

func countingJob(name string, counter *atomic.Int32) cronworkers.SubJob {
	return cronworkers.SubJob{
		Name: name,
		Run: func(_ context.Context) (map[string]int, error) {
			counter.Add(1)
			return map[string]int{"processed": 1}, nil
		},
	}
}

func TestDailySkipsOutsideMorningWindow(t *testing.T) {
	var ran atomic.Int32
	module := cronservice.NewInMemoryModule(cronservice.Dependencies{
		Holder: "worker-a",
		Jobs:   []cronworkers.SubJob{countingJob(cronworkers.JobVerifyDeliverables, &ran)},
	})
	module.Locks.SetNow(time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC))

	report, err := module.Orchestrator.RunDaily(context.Background())
	if err != nil {
		t.Fatalf("daily run: %v", err)
	}
	if !report.Skipped || len(report.Jobs) != 0 {
		t.Fatalf("expected off-window skip: %+v", report)
	}
	if ran.Load() != 0 {
		t.Fatalf("no job must run outside the window")
	}
}

func TestDailyHonorsConfiguredTimezone(t *testing.T) {
	var ran atomic.Int32
	berlin := time.FixedZone("Europe/Berlin", 2*60*60)
	module := cronservice.NewInMemoryModule(cronservice.Dependencies{
		Holder:   "worker-a",
		Location: berlin,
		Jobs:     []cronworkers.SubJob{countingJob(cronworkers.JobVerifyDeliverables, &ran)},
	})
	// 06:30 UTC is 08:30 in Berlin summer time.
	module.Locks.SetNow(time.Date(2024, 5, 1, 6, 30, 0, 0, time.UTC))

	report, err := module.Orchestrator.RunDaily(context.Background())
	if err != nil {
		t.Fatalf("daily run: %v", err)
	}
	if report.Skipped {
		t.Fatalf("expected the zoned morning window to open: %+v", report)
	}
	if ran.Load() != 1 {
		t.Fatalf("expected the job to run once, got %d", ran.Load())
	}
}

func TestDailyRunsEveryJobAndReleasesLocks(t *testing.T) {
	var verify, reconcile atomic.Int32
	module := cronservice.NewInMemoryModule(cronservice.Dependencies{
		Holder: "worker-a",
		Jobs: []cronworkers.SubJob{
			countingJob(cronworkers.JobVerifyDeliverables, &verify),
			countingJob(cronworkers.JobReconcileFulfillments, &reconcile),
		},
	})

	report, err := module.Orchestrator.RunDaily(context.Background())
	if err != nil {
		t.Fatalf("daily run: %v", err)
	}
	if report.Skipped || len(report.Jobs) != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	for _, result := range report.Jobs {
		if !result.OK || result.Skipped {
			t.Fatalf("job %s did not run cleanly: %+v", result.Name, result)
		}
		if result.Counters["processed"] != 1 {
			t.Fatalf("job %s counters: %+v", result.Name, result.Counters)
		}
	}
	if verify.Load() != 1 || reconcile.Load() != 1 {
		t.Fatalf("expected each job to run once")
	}
	for _, job := range []string{cronworkers.JobDaily, cronworkers.JobVerifyDeliverables, cronworkers.JobReconcileFulfillments} {
		if module.Locks.Held(job) {
			t.Fatalf("lock %s still held after the run", job)
		}
	}
}

func TestDailySkipsWhenAnotherInstanceHoldsTheLock(t *testing.T) {
	ctx := context.Background()
	var ran atomic.Int32
	module := cronservice.NewInMemoryModule(cronservice.Dependencies{
		Holder: "worker-a",
		Jobs:   []cronworkers.SubJob{countingJob(cronworkers.JobVerifyDeliverables, &ran)},
	})
	if _, err := module.Locks.Acquire(ctx, cronworkers.JobDaily, "worker-b", 10*time.Minute, module.Locks.Now()); err != nil {
		t.Fatalf("seed competing lock: %v", err)
	}

	report, err := module.Orchestrator.RunDaily(ctx)
	if err != nil {
		t.Fatalf("daily run: %v", err)
	}
	if !report.Skipped {
		t.Fatalf("a held lock means another instance runs: %+v", report)
	}
	if ran.Load() != 0 {
		t.Fatalf("losing the lock race must not run jobs")
	}
}

func TestExpiredLockIsStolen(t *testing.T) {
	ctx := context.Background()
	var ran atomic.Int32
	module := cronservice.NewInMemoryModule(cronservice.Dependencies{
		Holder: "worker-a",
		Jobs:   []cronworkers.SubJob{countingJob(cronworkers.JobVerifyDeliverables, &ran)},
	})
	// A crashed holder left a lock that expired two minutes ago.
	stale := module.Locks.Now().Add(-3 * time.Minute)
	if _, err := module.Locks.Acquire(ctx, cronworkers.JobDaily, "worker-crashed", time.Minute, stale); err != nil {
		t.Fatalf("seed stale lock: %v", err)
	}

	report, err := module.Orchestrator.RunDaily(ctx)
	if err != nil {
		t.Fatalf("daily run: %v", err)
	}
	if report.Skipped {
		t.Fatalf("expired locks must be stolen: %+v", report)
	}
	if ran.Load() != 1 {
		t.Fatalf("expected the job to run after the steal")
	}
}

func TestSubJobLockSkipDoesNotBlockSiblings(t *testing.T) {
	ctx := context.Background()
	var verify, reconcile atomic.Int32
	module := cronservice.NewInMemoryModule(cronservice.Dependencies{
		Holder: "worker-a",
		Jobs: []cronworkers.SubJob{
			countingJob(cronworkers.JobVerifyDeliverables, &verify),
			countingJob(cronworkers.JobReconcileFulfillments, &reconcile),
		},
	})
	if _, err := module.Locks.Acquire(ctx, cronworkers.JobVerifyDeliverables, "worker-b", 10*time.Minute, module.Locks.Now()); err != nil {
		t.Fatalf("seed competing sub-job lock: %v", err)
	}

	report, err := module.Orchestrator.RunDaily(ctx)
	if err != nil {
		t.Fatalf("daily run: %v", err)
	}
	if len(report.Jobs) != 2 {
		t.Fatalf("expected both job results: %+v", report)
	}
	if !report.Jobs[0].Skipped || !report.Jobs[0].OK {
		t.Fatalf("held sub-job lock should skip cleanly: %+v", report.Jobs[0])
	}
	if report.Jobs[1].Skipped || !report.Jobs[1].OK {
		t.Fatalf("sibling job should still run: %+v", report.Jobs[1])
	}
	if verify.Load() != 0 || reconcile.Load() != 1 {
		t.Fatalf("unexpected run counts: verify=%d reconcile=%d", verify.Load(), reconcile.Load())
	}
}

func TestPanickingJobIsCapturedAndIsolated(t *testing.T) {
	var sibling atomic.Int32
	module := cronservice.NewInMemoryModule(cronservice.Dependencies{
		Holder: "worker-a",
		Jobs: []cronworkers.SubJob{
			{
				Name: cronworkers.JobResyncProfiles,
				Run: func(_ context.Context) (map[string]int, error) {
					panic("social api client is nil")
				},
			},
			countingJob(cronworkers.JobFlushNotifications, &sibling),
		},
	})

	report, err := module.Orchestrator.RunDaily(context.Background())
	if err != nil {
		t.Fatalf("daily run: %v", err)
	}
	if report.Jobs[0].OK || !strings.Contains(report.Jobs[0].Error, "panic") {
		t.Fatalf("panic must surface as a job error: %+v", report.Jobs[0])
	}
	if sibling.Load() != 1 {
		t.Fatalf("a panicking job must not take down its siblings")
	}
	if module.Locks.Held(cronworkers.JobResyncProfiles) {
		t.Fatalf("panicking job must still release its lock")
	}
}

func TestCronEndpointsRequireSchedulerSecret(t *testing.T) {
	module := cronservice.NewInMemoryModule(cronservice.Dependencies{
		Holder: "worker-a",
		Secret: "scheduler-secret",
		Jobs:   []cronworkers.SubJob{countingJob(cronworkers.JobVerifyDeliverables, new(atomic.Int32))},
	})

	req := httptest.NewRequest(http.MethodGet, "/cron/daily", nil)
	recorder := httptest.NewRecorder()
	module.Handler.HandleDaily(recorder, req)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("missing secret: status %d, want 401", recorder.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/cron/daily", nil)
	req.Header.Set("X-Scheduler-Secret", "scheduler-secret")
	recorder = httptest.NewRecorder()
	module.Handler.HandleDaily(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("valid secret: status %d, want 200", recorder.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/cron/jobs/verify_deliverables", nil)
	req.Header.Set("Authorization", "Bearer scheduler-secret")
	recorder = httptest.NewRecorder()
	module.Handler.HandleJob(recorder, req, cronworkers.JobVerifyDeliverables)
	if recorder.Code != http.StatusOK {
		t.Fatalf("bearer token: status %d, want 200", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	req.Header.Set("Authorization", "Bearer wrong")
	module.Handler.HandleJob(recorder, req, cronworkers.JobVerifyDeliverables)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status %d, want 401", recorder.Code)
	}
}
