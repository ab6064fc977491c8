// ABOUTME: Link command reconciling mirrored records into a target system
// ABOUTME: Builds Linkers from config so the automation flag gates real writes
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"

	"syncmesh/db"
	"syncmesh/sync"
)

// BuildLinker constructs the cross-system linker for one configured link.
// The resolver excludes the link's own source system so a record never
// matches its own mirror, and the feature key here is the same key the
// scheduler turns off when that source's credentials expire.
func BuildLinker(database *sql.DB, lc sync.LinkConfig) (*sync.Linker, error) {
	if lc.TargetPath == "" {
		return nil, fmt.Errorf("link %s: target_path is required", lc.Name)
	}
	targetSystem := lc.TargetSystem
	if targetSystem == "" {
		targetSystem = lc.Name
	}
	featureKey := lc.FeatureKey
	if featureKey == "" {
		featureKey = lc.Name
	}

	resolver := sync.NewResolver(database)
	resolver.ExcludeSource = lc.SourceSystem

	return &sync.Linker{
		DB:           database,
		Resolver:     resolver,
		Target:       sync.NewFileTarget(lc.TargetPath, targetSystem),
		SourceSystem: lc.SourceSystem,
		EntityType:   lc.EntityType,
		FeatureKey:   featureKey,
	}, nil
}

// LinkCommand runs one pass over the mirrored records of each selected
// link's source system, reconciling every record into the target.
func LinkCommand(database *sql.DB, cfg *sync.Config, args []string) error {
	fs := flag.NewFlagSet("link", flag.ExitOnError)
	linkName := fs.String("name", "", "Run only the named link (default: all)")
	limit := fs.Int("limit", 500, "Max records to link per pass")
	_ = fs.Parse(args)

	var selected []sync.LinkConfig
	if *linkName != "" {
		lc := cfg.LinkByName(*linkName)
		if lc == nil {
			return fmt.Errorf("no link named %q in config", *linkName)
		}
		selected = []sync.LinkConfig{*lc}
	} else {
		selected = cfg.Links
	}
	if len(selected) == 0 {
		return fmt.Errorf("no links configured")
	}

	ctx := context.Background()

	for _, lc := range selected {
		linker, err := BuildLinker(database, lc)
		if err != nil {
			return err
		}

		records, err := db.ListRecords(database, lc.EntityType, *limit)
		if err != nil {
			return fmt.Errorf("link %s: %w", lc.Name, err)
		}

		fmt.Printf("Linking %s (%s → %s)...\n", lc.Name, lc.SourceSystem, linker.Target.Name())

		outcomes := make(map[sync.LinkOutcome]int)
		for i := range records {
			if records[i].Source != lc.SourceSystem {
				continue
			}
			result, err := linker.LinkRecord(ctx, &records[i])
			if err != nil {
				fmt.Printf("  ✗ %s: %v\n", records[i].RemoteID, err)
			}
			if result != nil {
				outcomes[result.Outcome]++
			}
		}

		fmt.Printf("  ✓ updated=%d no-updates=%d created=%d skipped=%d errors=%d\n",
			outcomes[sync.OutcomeLinkedUpdated],
			outcomes[sync.OutcomeLinkedNoUpdates],
			outcomes[sync.OutcomeCreated],
			outcomes[sync.OutcomeSkippedMissingName]+outcomes[sync.OutcomeSkippedDisabled],
			outcomes[sync.OutcomeError])
	}

	return nil
}
