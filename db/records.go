// ABOUTME: Canonical record store operations
// ABOUTME: Upsert-by-remote-id, lookup, and bounded search over mirrored records
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"syncmesh/models"
)

// UpsertRecord inserts or updates a canonical record keyed by
// (entity_type, remote_id) and stamps last_synced_at. This is the only write
// path for records; there is no separate insert.
func UpsertRecord(db *sql.DB, record *models.CanonicalRecord) error {
	if record.EntityType == "" || record.RemoteID == "" {
		return fmt.Errorf("record requires entity type and remote id")
	}

	fieldsJSON, err := json.Marshal(record.Fields)
	if err != nil {
		return fmt.Errorf("failed to marshal fields: %w", err)
	}

	now := time.Now()
	record.LastSyncedAt = now
	record.UpdatedAt = now
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}

	var raw any
	if len(record.Raw) > 0 {
		raw = string(record.Raw)
	}

	_, err = db.Exec(`
		INSERT INTO records (entity_type, remote_id, source, name, email, domain, fields, raw, last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_type, remote_id) DO UPDATE SET
			source = excluded.source,
			name = excluded.name,
			email = excluded.email,
			domain = excluded.domain,
			fields = excluded.fields,
			raw = excluded.raw,
			last_synced_at = excluded.last_synced_at,
			updated_at = excluded.updated_at
	`, string(record.EntityType), record.RemoteID, record.Source,
		record.Field(models.FieldName), record.Field(models.FieldEmail), record.Field(models.FieldDomain),
		string(fieldsJSON), raw, record.LastSyncedAt, record.CreatedAt, record.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}

	return nil
}

// GetRecordByRemoteID returns the canonical record for one remote id, or nil
// when no mirror exists yet.
func GetRecordByRemoteID(db *sql.DB, entityType models.EntityType, remoteID string) (*models.CanonicalRecord, error) {
	row := db.QueryRow(`
		SELECT entity_type, remote_id, source, fields, raw, last_synced_at, created_at, updated_at
		FROM records
		WHERE entity_type = ? AND remote_id = ?
	`, string(entityType), remoteID)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// SearchRecords runs a bounded text search over name, email, and domain.
// Rows come back in insertion order, which is what the resolver's
// first-encountered tie-break depends on.
func SearchRecords(db *sql.DB, entityType models.EntityType, term string, limit int) ([]models.CanonicalRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + strings.ToLower(term) + "%"

	rows, err := db.Query(`
		SELECT entity_type, remote_id, source, fields, raw, last_synced_at, created_at, updated_at
		FROM records
		WHERE entity_type = ?
		  AND (LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(domain) LIKE ?)
		ORDER BY rowid
		LIMIT ?
	`, string(entityType), pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectRecords(rows)
}

// ListRecords returns the first limit records of an entity type, in insertion
// order. Used as the resolver's full-scan fallback for small datasets.
func ListRecords(db *sql.DB, entityType models.EntityType, limit int) ([]models.CanonicalRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(`
		SELECT entity_type, remote_id, source, fields, raw, last_synced_at, created_at, updated_at
		FROM records
		WHERE entity_type = ?
		ORDER BY rowid
		LIMIT ?
	`, string(entityType), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectRecords(rows)
}

// CountRecords returns how many records exist for an entity type, or for
// all types when entityType is empty.
func CountRecords(db *sql.DB, entityType models.EntityType) (int, error) {
	var count int
	var err error
	if entityType == "" {
		err = db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&count)
	} else {
		err = db.QueryRow(`SELECT COUNT(*) FROM records WHERE entity_type = ?`, string(entityType)).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.CanonicalRecord, error) {
	var record models.CanonicalRecord
	var entityType, fieldsJSON string
	var raw sql.NullString

	err := row.Scan(
		&entityType,
		&record.RemoteID,
		&record.Source,
		&fieldsJSON,
		&raw,
		&record.LastSyncedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.EntityType = models.EntityType(entityType)
	if err := json.Unmarshal([]byte(fieldsJSON), &record.Fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
	}
	if raw.Valid {
		record.Raw = json.RawMessage(raw.String)
	}

	return &record, nil
}

func collectRecords(rows *sql.Rows) ([]models.CanonicalRecord, error) {
	var records []models.CanonicalRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}
