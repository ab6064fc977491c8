// ABOUTME: Change event persistence for the field-level audit history
// ABOUTME: Append-only writes, per-record reads, and retention-based purge
package db

import (
	"database/sql"
	"fmt"
	"time"

	"syncmesh/models"
)

// RecordChange appends one change event. Events are immutable once written.
func RecordChange(db *sql.DB, event *models.ChangeEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	var snapshot any
	if len(event.Snapshot) > 0 {
		snapshot = string(event.Snapshot)
	}

	_, err := db.Exec(`
		INSERT INTO change_events (id, entity_type, remote_id, change_type, field_name, old_value, new_value, snapshot, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID, string(event.EntityType), event.RemoteID, event.ChangeType,
		event.FieldName, event.OldValue, event.NewValue, snapshot, event.OccurredAt)

	if err != nil {
		return fmt.Errorf("failed to record change: %w", err)
	}

	return nil
}

// FindChanges returns the most recent change events for one record, newest
// first. ULID ids sort lexically in time order, so the id is the secondary key.
func FindChanges(db *sql.DB, entityType models.EntityType, remoteID string, limit int) ([]models.ChangeEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(`
		SELECT id, entity_type, remote_id, change_type, field_name, old_value, new_value, snapshot, occurred_at
		FROM change_events
		WHERE entity_type = ? AND remote_id = ?
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?
	`, string(entityType), remoteID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []models.ChangeEvent
	for rows.Next() {
		var ev models.ChangeEvent
		var entityType string
		var fieldName, oldValue, newValue, snapshot sql.NullString

		err := rows.Scan(&ev.ID, &entityType, &ev.RemoteID, &ev.ChangeType,
			&fieldName, &oldValue, &newValue, &snapshot, &ev.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}

		ev.EntityType = models.EntityType(entityType)
		ev.FieldName = fieldName.String
		ev.OldValue = oldValue.String
		ev.NewValue = newValue.String
		if snapshot.Valid {
			ev.Snapshot = []byte(snapshot.String)
		}

		events = append(events, ev)
	}

	return events, rows.Err()
}

// PurgeChangesOlderThan deletes change events older than the cutoff and
// returns the number of rows removed. An empty entity type purges all types.
func PurgeChangesOlderThan(db *sql.DB, entityType models.EntityType, cutoff time.Time) (int64, error) {
	var result sql.Result
	var err error

	if entityType == "" {
		result, err = db.Exec(`DELETE FROM change_events WHERE occurred_at < ?`, cutoff)
	} else {
		result, err = db.Exec(`DELETE FROM change_events WHERE entity_type = ? AND occurred_at < ?`, string(entityType), cutoff)
	}

	if err != nil {
		return 0, fmt.Errorf("failed to purge changes: %w", err)
	}

	return result.RowsAffected()
}
