// ABOUTME: Per-entity-type sync orchestration: fetch, diff, upsert, count
// ABOUTME: Partial-failure tolerant loop producing counters and change history
package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"syncmesh/db"
	"syncmesh/models"
)

// RemoteRecord is one record as fetched from an external system, already
// mapped into canonical field names by the source adapter.
type RemoteRecord struct {
	ID     string
	Fields map[string]string
	Raw    json.RawMessage
}

// Source is the strategy an orchestrator is parametrized by: how to page
// through the remote set and how to fetch one record for webhook-driven
// refreshes. Implementations own their HTTP clients, auth, and timeouts.
type Source interface {
	Name() string
	FetchPage(ctx context.Context, pageToken string) ([]RemoteRecord, string, error)
	FetchByID(ctx context.Context, remoteID string) (*RemoteRecord, error)
}

// Orchestrator runs the mirror pass for one entity type: fetch the remote
// set, diff each record against the stored mirror, write change events, and
// upsert the canonical record. One orchestrator instance serves one entity
// type; separate jobs own disjoint entity-type namespaces.
type Orchestrator struct {
	DB            *sql.DB
	Source        Source
	EntityType    models.EntityType
	TrackedFields []string
	Logger        *slog.Logger
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Run executes one full mirror pass. Records are processed sequentially;
// one record's failure is recorded in the error list and the loop continues.
// A failed fetch phase aborts the pass and surfaces as its single error.
func (o *Orchestrator) Run(ctx context.Context) (*models.SyncResult, error) {
	result := &models.SyncResult{}
	start := time.Now()
	pageToken := ""

	for {
		records, next, err := o.Source.FetchPage(ctx, pageToken)
		if err != nil {
			o.auditPass(result, start, err)
			return result, fmt.Errorf("fetch phase failed: %w", err)
		}

		for i := range records {
			if err := o.syncRecord(&records[i], result); err != nil {
				o.logger().Warn("record sync failed",
					slog.String("entity_type", string(o.EntityType)),
					slog.String("remote_id", records[i].ID),
					slog.String("error", err.Error()))
				result.Errors = append(result.Errors, models.SyncError{
					RemoteID: records[i].ID,
					Message:  err.Error(),
				})
			}
		}

		pageToken = next
		if pageToken == "" {
			break
		}
	}

	o.auditPass(result, start, nil)
	return result, nil
}

// SyncOne refreshes a single record, the webhook-driven path.
func (o *Orchestrator) SyncOne(ctx context.Context, remoteID string) (*models.SyncResult, error) {
	result := &models.SyncResult{}

	remote, err := o.Source.FetchByID(ctx, remoteID)
	if err != nil {
		return result, fmt.Errorf("failed to fetch %s %s: %w", o.EntityType, remoteID, err)
	}
	if remote == nil {
		return result, fmt.Errorf("%s %s: %w", o.EntityType, remoteID, ErrNotFound)
	}

	if err := o.syncRecord(remote, result); err != nil {
		result.Errors = append(result.Errors, models.SyncError{RemoteID: remoteID, Message: err.Error()})
	}

	return result, nil
}

// syncRecord is the per-record step: look up the mirror by remote id, diff
// against tracked fields, persist change events, then upsert. The refresh
// path always writes the latest snapshot in full; the non-destructive merge
// policy applies only to cross-system linking, never to a source refreshing
// its own mirror.
func (o *Orchestrator) syncRecord(remote *RemoteRecord, result *models.SyncResult) error {
	existing, err := db.GetRecordByRemoteID(o.DB, o.EntityType, remote.ID)
	if err != nil {
		return err
	}

	events := DetectChanges(existing, remote.Fields, o.EntityType, remote.ID, o.TrackedFields)
	for i := range events {
		if err := db.RecordChange(o.DB, &events[i]); err != nil {
			return err
		}
	}

	record := &models.CanonicalRecord{
		EntityType: o.EntityType,
		RemoteID:   remote.ID,
		Source:     o.Source.Name(),
		Fields:     remote.Fields,
		Raw:        remote.Raw,
	}
	if existing != nil {
		record.CreatedAt = existing.CreatedAt
	}
	if err := db.UpsertRecord(o.DB, record); err != nil {
		return err
	}

	result.Counters.Synced++
	if existing == nil {
		result.Counters.Created++
	} else if len(events) > 0 {
		result.Counters.Updated++
	}
	result.Counters.Changes += len(events)

	return nil
}

// auditPass writes one audit row summarizing the pass.
func (o *Orchestrator) auditPass(result *models.SyncResult, start time.Time, passErr error) {
	entry := &models.AuditEntry{
		Action:     fmt.Sprintf("%s_sync", o.EntityType),
		EntityType: o.EntityType,
		Source:     o.Source.Name(),
		Status:     models.AuditSuccess,
		Details: fmt.Sprintf("synced=%d created=%d updated=%d changes=%d errors=%d",
			result.Counters.Synced, result.Counters.Created, result.Counters.Updated,
			result.Counters.Changes, len(result.Errors)),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if passErr != nil {
		entry.Status = models.AuditError
		entry.ErrorMessage = passErr.Error()
	}

	if err := db.RecordAudit(o.DB, entry); err != nil {
		o.logger().Warn("failed to write audit entry", slog.String("error", err.Error()))
	}
}
