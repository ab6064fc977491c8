// ABOUTME: Audit log persistence for sync pass outcomes and webhook receipts
// ABOUTME: Append-only rows consumed by status tooling and tests
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"syncmesh/models"
)

// RecordAudit appends one audit entry.
func RecordAudit(db *sql.DB, entry *models.AuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := db.Exec(`
		INSERT INTO audit_log (id, action, entity_type, entity_id, source, status, details, error_message, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID.String(), entry.Action, string(entry.EntityType), entry.EntityID,
		entry.Source, entry.Status, entry.Details, entry.ErrorMessage, entry.DurationMs, entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	return nil
}

// RecentAudit returns the newest audit entries, newest first.
func RecentAudit(db *sql.DB, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT id, action, entity_type, entity_id, source, status, details, error_message, duration_ms, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		var id string
		var entityType, entityID, source, details, errorMessage sql.NullString
		var durationMs sql.NullInt64

		err := rows.Scan(&id, &entry.Action, &entityType, &entityID, &source,
			&entry.Status, &details, &errorMessage, &durationMs, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		entry.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("failed to parse audit id: %w", err)
		}
		entry.EntityType = models.EntityType(entityType.String)
		entry.EntityID = entityID.String
		entry.Source = source.String
		entry.Details = details.String
		entry.ErrorMessage = errorMessage.String
		entry.DurationMs = durationMs.Int64

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// CountAudit returns the number of audit rows, optionally filtered by action.
func CountAudit(db *sql.DB, action string) (int, error) {
	var count int
	var err error
	if action == "" {
		err = db.QueryRow(`SELECT COUNT(*) FROM audit_log`).Scan(&count)
	} else {
		err = db.QueryRow(`SELECT COUNT(*) FROM audit_log WHERE action = ?`, action).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return count, nil
}
