// ABOUTME: Retention purge command deleting old change events
// ABOUTME: Canonical records and links are never touched by the purge
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

// PurgeCommand deletes change events older than the retention window and
// reports how many were removed.
func PurgeCommand(database *sql.DB, cfg *sync.Config, args []string) error {
	fs := flag.NewFlagSet("purge", flag.ExitOnError)
	days := fs.Int("days", cfg.RetentionDays, "Delete change events older than this many days")
	entity := fs.String("entity", "", "Limit purge to one entity type")
	_ = fs.Parse(args)

	if *days <= 0 {
		return fmt.Errorf("retention days must be positive, got %d", *days)
	}

	cutoff := time.Now().AddDate(0, 0, -*days)
	deleted, err := db.PurgeChangesOlderThan(database, models.EntityType(*entity), cutoff)
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	fmt.Printf("✓ Purged %d change events older than %s\n", deleted, cutoff.Format("2006-01-02"))
	return nil
}
