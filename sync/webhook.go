// ABOUTME: Webhook event dispatch: dedup, route to an orchestrator, audit
// ABOUTME: Duplicate deliveries succeed upstream with zero local side effects
package sync

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"syncmesh/db"
	"syncmesh/models"
)

// EventResult reports what handling one webhook delivery did.
type EventResult struct {
	Duplicate bool               `json:"duplicate"`
	Result    *models.SyncResult `json:"result,omitempty"`
}

// Dispatcher routes webhook events to the orchestrator owning the event's
// resource type, behind the idempotency guard.
type Dispatcher struct {
	DB     *sql.DB
	Guard  *Guard
	Logger *slog.Logger

	orchestrators map[string]*Orchestrator
}

// NewDispatcher creates a dispatcher with no routes.
func NewDispatcher(database *sql.DB, guard *Guard) *Dispatcher {
	return &Dispatcher{
		DB:            database,
		Guard:         guard,
		orchestrators: make(map[string]*Orchestrator),
	}
}

// Register maps a webhook resource name to the orchestrator that refreshes it.
func (d *Dispatcher) Register(resource string, o *Orchestrator) {
	d.orchestrators[resource] = o
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// HandleEvent processes one delivery. The dedup check runs before any
// side-effecting work: a replayed event returns a duplicate result with zero
// writes and zero new audit rows, and the caller still reports success
// upstream, because at-least-once delivery must not produce duplicate side
// effects.
func (d *Dispatcher) HandleEvent(ctx context.Context, event *models.WebhookEvent) (*EventResult, error) {
	if !event.Valid() {
		return nil, &ValidationError{Field: "resource_id", Reason: "event missing resource or resource id"}
	}

	first, err := d.Guard.ShouldProcess(event.DedupKey())
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !first {
		d.logger().Info("duplicate event ignored", slog.String("event", event.String()))
		return &EventResult{Duplicate: true}, nil
	}

	orchestrator, ok := d.orchestrators[event.Resource]
	if !ok {
		return nil, fmt.Errorf("no sync registered for resource %q: %w", event.Resource, ErrNotFound)
	}

	start := time.Now()
	result, err := orchestrator.SyncOne(ctx, event.ResourceID)

	entry := &models.AuditEntry{
		Action:     "webhook_" + event.Resource,
		EntityType: orchestrator.EntityType,
		EntityID:   event.ResourceID,
		Source:     event.Source,
		Status:     models.AuditSuccess,
		Details:    event.EventType,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = models.AuditError
		entry.ErrorMessage = err.Error()
	}
	if auditErr := db.RecordAudit(d.DB, entry); auditErr != nil {
		d.logger().Warn("failed to write audit entry", slog.String("error", auditErr.Error()))
	}

	if err != nil {
		return &EventResult{Result: result}, err
	}
	return &EventResult{Result: result}, nil
}
