// ABOUTME: Daemon command running all enabled jobs on their intervals
// ABOUTME: Handles SIGINT/SIGTERM for a clean scheduler shutdown
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"syncmesh/sync"
)

// DaemonCommand starts the scheduler and blocks until interrupted.
func DaemonCommand(database *sql.DB, cfg *sync.Config, args []string) error {
	fs := flag.NewFlagSet("daemon", flag.ExitOnError)
	_ = fs.Parse(args)

	jobs, err := BuildJobs(database, cfg)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no enabled jobs in config")
	}

	scheduler := sync.NewScheduler(database, jobs...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Starting sync daemon with %d jobs:\n", len(jobs))
	for _, job := range jobs {
		fmt.Printf("  • %s every %s\n", job.Name, job.Interval)
	}

	scheduler.Start(ctx)

	<-ctx.Done()
	fmt.Println("\nShutting down...")
	scheduler.Stop()
	fmt.Println("✓ Daemon stopped")

	return nil
}
