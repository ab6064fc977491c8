// ABOUTME: Builds orchestrators and scheduler jobs from config entries
// ABOUTME: Shared wiring used by the sync, daemon, and serve commands
package cli

import (
	"database/sql"
	"fmt"

	"syncmesh/sync"
)

// BuildOrchestrator constructs the mirror pass for one configured job.
func BuildOrchestrator(database *sql.DB, jc sync.JobConfig) (*sync.Orchestrator, error) {
	if jc.SourcePath == "" {
		return nil, fmt.Errorf("job %s: source_path is required", jc.Name)
	}
	sourceName := jc.Source
	if sourceName == "" {
		sourceName = jc.Name
	}

	return &sync.Orchestrator{
		DB:            database,
		Source:        sync.NewFileSource(jc.SourcePath, sourceName),
		EntityType:    jc.EntityType,
		TrackedFields: jc.TrackedFields,
	}, nil
}

// BuildJob wraps one configured job's orchestrator for the scheduler.
func BuildJob(database *sql.DB, jc sync.JobConfig) (*sync.Job, error) {
	orchestrator, err := BuildOrchestrator(database, jc)
	if err != nil {
		return nil, err
	}

	interval, err := jc.ParseInterval()
	if err != nil {
		return nil, err
	}

	return &sync.Job{
		Name:       jc.Name,
		Interval:   interval,
		Run:        orchestrator.Run,
		FeatureKey: jc.FeatureKey,
	}, nil
}

// BuildJobs returns scheduler jobs for every enabled config entry.
// Disabled entries are left out; they can still be run manually.
func BuildJobs(database *sql.DB, cfg *sync.Config) ([]*sync.Job, error) {
	var jobs []*sync.Job
	for _, jc := range cfg.Jobs {
		if !jc.Enabled {
			continue
		}
		job, err := BuildJob(database, jc)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
