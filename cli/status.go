// ABOUTME: Status command printing job states and recent audit activity
// ABOUTME: Read-only view over sync_state and the audit log
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"time"

	"syncmesh/db"
	"syncmesh/models"
	"syncmesh/sync"
)

// StatusCommand prints the persisted state of every job and the most
// recent audit entries.
func StatusCommand(database *sql.DB, cfg *sync.Config, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	limit := fs.Int("limit", 10, "Number of audit entries to show")
	_ = fs.Parse(args)

	states, err := db.GetAllSyncStates(database)
	if err != nil {
		return fmt.Errorf("failed to load sync state: %w", err)
	}

	fmt.Println("Sync Jobs:")
	if len(states) == 0 {
		fmt.Println("  (no jobs have run yet)")
	}
	for _, state := range states {
		marker := "✓"
		if state.Status == models.JobStatusError || state.Status == models.JobStatusDisabled {
			marker = "✗"
		}
		lastRun := "never"
		if state.LastRunAt != nil {
			lastRun = state.LastRunAt.Format(time.RFC3339)
		}
		fmt.Printf("  %s %-20s %-10s last run %s\n", marker, state.Job, state.Status, lastRun)
		if state.ErrorMessage != "" {
			fmt.Printf("      error: %s\n", state.ErrorMessage)
		}
	}

	count, err := db.CountRecords(database, "")
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}
	fmt.Printf("\nCanonical records: %d\n", count)

	entries, err := db.RecentAudit(database, *limit)
	if err != nil {
		return fmt.Errorf("failed to load audit log: %w", err)
	}
	if len(entries) > 0 {
		fmt.Println("\nRecent activity:")
		for _, entry := range entries {
			marker := "✓"
			if entry.Status == models.AuditError {
				marker = "✗"
			}
			fmt.Printf("  %s %s %-24s %s\n", marker,
				entry.CreatedAt.Format("2006-01-02 15:04:05"), entry.Action, entry.Details)
		}
	}

	return nil
}
