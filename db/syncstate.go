// ABOUTME: Database operations for the sync_state table
// ABOUTME: Tracks per-job status, last run time, and error messages
package db

import (
	"database/sql"
	"fmt"

	"syncmesh/models"
)

// GetSyncState retrieves the sync state for a job, or nil when the job has
// never run.
func GetSyncState(db *sql.DB, job string) (*models.SyncState, error) {
	var state models.SyncState
	var lastRunAt sql.NullTime
	var errorMessage sql.NullString

	err := db.QueryRow(`
		SELECT job, last_run_at, status, error_message, created_at, updated_at
		FROM sync_state
		WHERE job = ?
	`, job).Scan(
		&state.Job,
		&lastRunAt,
		&state.Status,
		&errorMessage,
		&state.CreatedAt,
		&state.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	if lastRunAt.Valid {
		state.LastRunAt = &lastRunAt.Time
	}
	state.ErrorMessage = errorMessage.String

	return &state, nil
}

// UpdateSyncStatus upserts the status row for a job.
func UpdateSyncStatus(db *sql.DB, job, status string, errorMsg *string) error {
	var errorMsgVal sql.NullString
	if errorMsg != nil {
		errorMsgVal = sql.NullString{String: *errorMsg, Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO sync_state (job, status, error_message, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(job) DO UPDATE SET
			status = excluded.status,
			error_message = excluded.error_message,
			updated_at = CURRENT_TIMESTAMP
	`, job, status, errorMsgVal)

	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}

	return nil
}

// MarkSyncRun stamps a completed run: last_run_at plus the resulting status.
func MarkSyncRun(db *sql.DB, job, status string) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (job, last_run_at, status, created_at, updated_at)
		VALUES (?, CURRENT_TIMESTAMP, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(job) DO UPDATE SET
			last_run_at = CURRENT_TIMESTAMP,
			status = excluded.status,
			error_message = NULL,
			updated_at = CURRENT_TIMESTAMP
	`, job, status)

	if err != nil {
		return fmt.Errorf("failed to mark sync run: %w", err)
	}

	return nil
}

// GetAllSyncStates retrieves the sync state for all jobs.
func GetAllSyncStates(db *sql.DB) ([]models.SyncState, error) {
	rows, err := db.Query(`
		SELECT job, last_run_at, status, error_message, created_at, updated_at
		FROM sync_state
		ORDER BY job
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var states []models.SyncState
	for rows.Next() {
		var state models.SyncState
		var lastRunAt sql.NullTime
		var errorMessage sql.NullString

		err := rows.Scan(
			&state.Job,
			&lastRunAt,
			&state.Status,
			&errorMessage,
			&state.CreatedAt,
			&state.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync state: %w", err)
		}

		if lastRunAt.Valid {
			state.LastRunAt = &lastRunAt.Time
		}
		state.ErrorMessage = errorMessage.String

		states = append(states, state)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync states: %w", err)
	}

	return states, nil
}
