// ABOUTME: Cross-system record link persistence
// ABOUTME: Maps a remote id in one system to its matched equivalent in another
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"syncmesh/models"
)

// UpsertLink inserts or refreshes the mapping from a source-system record to
// its target-system equivalent, keyed by (entity_type, source_system,
// source_remote_id).
func UpsertLink(db *sql.DB, link *models.Link) error {
	now := time.Now()
	link.UpdatedAt = now
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
		link.CreatedAt = now
	}

	_, err := db.Exec(`
		INSERT INTO record_links (id, entity_type, source_system, source_remote_id, target_system, target_remote_id, matched_score, match_reasons, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_type, source_system, source_remote_id) DO UPDATE SET
			target_system = excluded.target_system,
			target_remote_id = excluded.target_remote_id,
			matched_score = excluded.matched_score,
			match_reasons = excluded.match_reasons,
			updated_at = excluded.updated_at
	`, link.ID.String(), string(link.EntityType), link.SourceSystem, link.SourceRemoteID,
		link.TargetSystem, link.TargetRemoteID, link.MatchedScore, link.MatchReasons,
		link.CreatedAt, link.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert link: %w", err)
	}

	return nil
}

// GetLink returns the stored mapping for a source-system record, or nil when
// the record has never been linked.
func GetLink(db *sql.DB, entityType models.EntityType, sourceSystem, sourceRemoteID string) (*models.Link, error) {
	var link models.Link
	var id, et string
	var reasons sql.NullString

	err := db.QueryRow(`
		SELECT id, entity_type, source_system, source_remote_id, target_system, target_remote_id, matched_score, match_reasons, created_at, updated_at
		FROM record_links
		WHERE entity_type = ? AND source_system = ? AND source_remote_id = ?
	`, string(entityType), sourceSystem, sourceRemoteID).Scan(
		&id,
		&et,
		&link.SourceSystem,
		&link.SourceRemoteID,
		&link.TargetSystem,
		&link.TargetRemoteID,
		&link.MatchedScore,
		&reasons,
		&link.CreatedAt,
		&link.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	link.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse link id: %w", err)
	}
	link.EntityType = models.EntityType(et)
	link.MatchReasons = reasons.String

	return &link, nil
}
