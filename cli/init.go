// ABOUTME: Init command writing a starter config file
// ABOUTME: Reports the database and token store paths in use
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"syncmesh/sync"
)

// InitCommand writes a starter config at the given path unless one already
// exists. The database schema is created by opening it, before commands run.
func InitCommand(database *sql.DB, cfg *sync.Config, configPath string, args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	_ = fs.Parse(args)

	if configPath == "" {
		return fmt.Errorf("no config path given")
	}

	if _, err := os.Stat(configPath); err == nil && !*force {
		fmt.Printf("✓ Config already exists at %s\n", configPath)
		printPaths(cfg)
		return nil
	}

	starter := sync.DefaultConfig()
	starter.Jobs = []sync.JobConfig{{
		Name:          "vendor_sync",
		EntityType:    "vendor",
		Interval:      "15m",
		Source:        "procore",
		SourcePath:    filepath.Join(filepath.Dir(configPath), "vendors.json"),
		TrackedFields: []string{"name", "email", "phone", "city"},
		Enabled:       false,
	}}

	data, err := toml.Marshal(starter)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("✓ Wrote starter config to %s\n", configPath)
	printPaths(cfg)
	fmt.Println("\nEdit the config to point jobs at real source exports, then run 'syncmesh sync'.")

	return nil
}

func printPaths(cfg *sync.Config) {
	fmt.Printf("  Database:    %s\n", cfg.DBPath)
	fmt.Printf("  Token store: %s\n", cfg.TokenPath)
}
