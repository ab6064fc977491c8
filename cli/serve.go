// ABOUTME: Webhook server command exposing the HTTP ingest surface
// ABOUTME: Wires the idempotency guard and per-resource orchestrators
package cli

import (
	"database/sql"
	"flag"
	"fmt"

	"syncmesh/sync"
	"syncmesh/web"
)

// ServeCommand starts the webhook receiver. Each configured job's entity
// type becomes a routable webhook resource.
func ServeCommand(database *sql.DB, cfg *sync.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.ListenAddr, "Listen address")
	_ = fs.Parse(args)

	guard, err := sync.OpenGuard(cfg.TokenPath)
	if err != nil {
		return fmt.Errorf("failed to open token store: %w", err)
	}
	defer func() { _ = guard.Close() }()

	dispatcher := sync.NewDispatcher(database, guard)
	for _, jc := range cfg.Jobs {
		orchestrator, err := BuildOrchestrator(database, jc)
		if err != nil {
			return err
		}
		dispatcher.Register(string(jc.EntityType), orchestrator)
	}

	server := web.NewServer(database, dispatcher, nil)
	fmt.Printf("✓ Webhook server listening on %s\n", *addr)
	return server.Start(*addr)
}
