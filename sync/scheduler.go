// ABOUTME: Periodic job scheduler with reentrancy guards and inspectable state
// ABOUTME: Skips overlapping runs and disables jobs when credentials expire
package sync

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"syncmesh/db"
	"syncmesh/models"
)

// MinInterval is the floor for job intervals; anything shorter hammers the
// remote systems for no benefit.
const MinInterval = time.Minute

// RunFunc is one job's sync pass.
type RunFunc func(ctx context.Context) (*models.SyncResult, error)

// Job is one periodic sync, owning a disjoint entity-type namespace.
type Job struct {
	Name     string
	Interval time.Duration
	Run      RunFunc
	// FeatureKey is the automation flag turned off when the job's
	// credentials expire. Empty means the job name keys the flag.
	FeatureKey string

	flag RunFlag

	mu         sync.Mutex
	status     string
	lastRunAt  time.Time
	lastResult *models.SyncResult
	lastError  string
}

// JobSnapshot is the inspectable state of one job. Status reads never reach
// into the job's internals.
type JobSnapshot struct {
	Name       string             `json:"name"`
	Status     string             `json:"status"`
	LastRunAt  *time.Time         `json:"last_run_at,omitempty"`
	LastResult *models.SyncResult `json:"last_result,omitempty"`
	LastError  string             `json:"last_error,omitempty"`
}

// Snapshot returns the job's current state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	snap := JobSnapshot{
		Name:       j.Name,
		Status:     j.status,
		LastResult: j.lastResult,
		LastError:  j.lastError,
	}
	if snap.Status == "" {
		snap.Status = models.JobStatusIdle
	}
	if !j.lastRunAt.IsZero() {
		t := j.lastRunAt
		snap.LastRunAt = &t
	}
	return snap
}

func (j *Job) setStatus(status string) {
	j.mu.Lock()
	j.status = status
	j.mu.Unlock()
}

func (j *Job) recordResult(result *models.SyncResult, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.lastRunAt = time.Now()
	j.lastResult = result
	if err != nil {
		j.status = models.JobStatusError
		j.lastError = err.Error()
	} else {
		j.status = models.JobStatusIdle
		j.lastError = ""
	}
}

// Scheduler owns the timers for a set of jobs. Stopping it only prevents
// future invocations; an in-flight pass runs to completion before its
// reentrancy flag clears. There is no cancellation token threaded through a
// pass: a source adapter that hangs forever leaves its job permanently
// skipped. Fetch timeouts belong to the adapter, not the scheduler.
type Scheduler struct {
	DB     *sql.DB
	Logger *slog.Logger

	jobs []*Job
	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewScheduler creates a scheduler over the given jobs.
func NewScheduler(database *sql.DB, jobs ...*Job) *Scheduler {
	return &Scheduler{
		DB:   database,
		jobs: jobs,
		stop: make(chan struct{}),
	}
}

// Jobs returns snapshots for every job, for status surfaces.
func (s *Scheduler) Jobs() []JobSnapshot {
	snaps := make([]JobSnapshot, 0, len(s.jobs))
	for _, job := range s.jobs {
		snaps = append(snaps, job.Snapshot())
	}
	return snaps
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Start launches one ticker loop per job. Each job also runs once
// immediately so a freshly started daemon doesn't wait a full interval.
func (s *Scheduler) Start(ctx context.Context) {
	for _, job := range s.jobs {
		interval := job.Interval
		if interval < MinInterval {
			interval = MinInterval
		}

		s.wg.Add(1)
		go func(job *Job, interval time.Duration) {
			defer s.wg.Done()

			s.RunJob(ctx, job)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					s.RunJob(ctx, job)
				case <-s.stop:
					return
				case <-ctx.Done():
					return
				}
			}
		}(job, interval)
	}
}

// Stop prevents future invocations and waits for in-flight passes.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
}

// RunJob executes one pass of a job, honoring the reentrancy flag and the
// disabled state. A skip because the previous run is still in flight is a
// normal outcome reported through the job snapshot, not an error.
func (s *Scheduler) RunJob(ctx context.Context, job *Job) {
	if job.Snapshot().Status == models.JobStatusDisabled {
		return
	}

	if !job.flag.TryStart() {
		s.logger().Info("sync already running, skipping cycle", slog.String("job", job.Name))
		return
	}
	defer job.flag.Done()

	job.setStatus(models.JobStatusRunning)
	_ = db.UpdateSyncStatus(s.DB, job.Name, models.JobStatusRunning, nil)

	result, err := job.Run(ctx)
	job.recordResult(result, err)

	switch {
	case err == nil:
		_ = db.MarkSyncRun(s.DB, job.Name, models.JobStatusIdle)
	case IsAuthExpired(err):
		// A dead credential never heals by retrying. Disable the job and its
		// automation flag until someone re-authenticates.
		s.disableJob(job, err)
	default:
		msg := err.Error()
		_ = db.UpdateSyncStatus(s.DB, job.Name, models.JobStatusError, &msg)
		s.logger().Warn("sync pass failed",
			slog.String("job", job.Name),
			slog.String("error", msg))
	}
}

func (s *Scheduler) disableJob(job *Job, cause error) {
	job.setStatus(models.JobStatusDisabled)

	featureKey := job.FeatureKey
	if featureKey == "" {
		featureKey = job.Name
	}

	msg := cause.Error()
	_ = db.UpdateSyncStatus(s.DB, job.Name, models.JobStatusDisabled, &msg)
	_ = db.SetAutomationEnabled(s.DB, featureKey, false)

	s.logger().Error("credentials expired, job disabled",
		slog.String("job", job.Name),
		slog.String("feature", featureKey),
		slog.String("error", msg))
}
