// ABOUTME: Field-level change detection between stored and incoming records
// ABOUTME: Emits one event per changed tracked field, or one created event
package sync

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"

	"syncmesh/models"
)

// DetectChanges diffs an incoming field set against the stored record over
// the caller-supplied tracked field list. When existing is nil (first sync of
// this remote id) it emits exactly one created event carrying the full
// snapshot instead of per-field events.
//
// Comparison is string equality with missing values treated as "". Numeric
// formatting differences ("100" vs "100.0") therefore count as real changes;
// that false-positive tradeoff is intentional and keeps the detector
// source-agnostic.
func DetectChanges(existing *models.CanonicalRecord, incoming map[string]string, entityType models.EntityType, remoteID string, tracked []string) []models.ChangeEvent {
	now := time.Now()

	if existing == nil {
		snapshot, _ := json.Marshal(incoming)
		return []models.ChangeEvent{{
			ID:         ulid.Make().String(),
			EntityType: entityType,
			RemoteID:   remoteID,
			ChangeType: models.ChangeCreated,
			Snapshot:   snapshot,
			OccurredAt: now,
		}}
	}

	var events []models.ChangeEvent
	for _, field := range tracked {
		oldValue := existing.Field(field)
		newValue := incoming[field]
		if oldValue == newValue {
			continue
		}
		events = append(events, models.ChangeEvent{
			ID:         ulid.Make().String(),
			EntityType: entityType,
			RemoteID:   remoteID,
			ChangeType: models.ChangeFieldUpdate,
			FieldName:  field,
			OldValue:   oldValue,
			NewValue:   newValue,
			OccurredAt: now,
		})
	}

	return events
}
