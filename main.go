// ABOUTME: Entry point for the syncmesh CLI and daemon
// ABOUTME: Routes flag-parsed subcommands and owns database bootstrap
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"syncmesh/cli"
	"syncmesh/db"
	"syncmesh/sync"
)

const version = "0.2.0"

func main() {
	// .env is optional; real env vars win either way
	_ = godotenv.Load()

	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config path (default: ~/.config/syncmesh/config.toml)")
	dbPath := flag.String("db-path", "", "Database path (overrides config)")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("syncmesh version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	finalConfigPath := *configPath
	if finalConfigPath == "" {
		finalConfigPath = filepath.Join(xdg.ConfigHome, "syncmesh", "config.toml")
	}

	cfg, err := sync.LoadConfig(finalConfigPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "sync":
		if err := cli.SyncCommand(database, cfg, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "link":
		if err := cli.LinkCommand(database, cfg, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "daemon":
		if err := cli.DaemonCommand(database, cfg, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "serve":
		if err := cli.ServeCommand(database, cfg, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "status":
		if err := cli.StatusCommand(database, cfg, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "purge":
		if err := cli.PurgeCommand(database, cfg, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "init":
		if err := cli.InitCommand(database, cfg, finalConfigPath, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`syncmesh v%s - Entity resolution and incremental sync engine

USAGE:
  syncmesh [global flags] <command> [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config path (default: ~/.config/syncmesh/config.toml)
  --db-path <path>       Database path (overrides config)

COMMANDS:
  syncmesh init          Write a starter config and initialize the database
    --force                Overwrite an existing config file

  syncmesh sync          Run configured jobs once
    --job <name>           Run only the named job

  syncmesh link          Reconcile mirrored records into configured targets
    --name <name>          Run only the named link
    --limit <n>            Max records per pass (default: 500)

  syncmesh daemon        Run all enabled jobs on their intervals

  syncmesh serve         Start the webhook receiver
    --addr <addr>          Listen address (default from config)

  syncmesh status        Show job states and recent activity
    --limit <n>            Audit entries to show (default: 10)

  syncmesh purge         Delete old change events
    --days <n>             Retention window in days (default from config)
    --entity <type>        Limit purge to one entity type

EXAMPLES:
  # Run every configured job once
  syncmesh sync

  # Run only the vendor job
  syncmesh sync --job vendor_sync

  # Start the daemon with a custom config
  syncmesh --config ./syncmesh.toml daemon

  # Drop change events older than 30 days
  syncmesh purge --days 30

`, version)
}
