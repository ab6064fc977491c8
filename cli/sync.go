// ABOUTME: Manual sync command running one or all configured jobs
// ABOUTME: Prints per-job counters and per-record failures
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"time"

	"syncmesh/sync"
)

// SyncCommand runs one full mirror pass per selected job. A record-level
// failure is reported and the pass continues; a fetch failure fails the job.
func SyncCommand(database *sql.DB, cfg *sync.Config, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	jobName := fs.String("job", "", "Run only the named job (default: all)")
	_ = fs.Parse(args)

	var selected []sync.JobConfig
	if *jobName != "" {
		jc := cfg.JobByName(*jobName)
		if jc == nil {
			return fmt.Errorf("no job named %q in config", *jobName)
		}
		selected = []sync.JobConfig{*jc}
	} else {
		selected = cfg.Jobs
	}
	if len(selected) == 0 {
		return fmt.Errorf("no jobs configured")
	}

	ctx := context.Background()
	var failed int

	for _, jc := range selected {
		orchestrator, err := BuildOrchestrator(database, jc)
		if err != nil {
			return err
		}

		fmt.Printf("Syncing %s (%s)...\n", jc.Name, jc.EntityType)
		start := time.Now()

		result, err := orchestrator.Run(ctx)
		if err != nil {
			fmt.Printf("  ✗ %v\n", err)
			failed++
			continue
		}

		fmt.Printf("  ✓ %d synced, %d created, %d updated, %d changes in %.2fs\n",
			result.Counters.Synced, result.Counters.Created, result.Counters.Updated,
			result.Counters.Changes, time.Since(start).Seconds())

		for _, recordErr := range result.Errors {
			fmt.Printf("  ✗ %s: %s\n", recordErr.RemoteID, recordErr.Message)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(selected))
	}
	return nil
}
