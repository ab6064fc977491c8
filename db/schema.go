// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation for the canonical mirror store
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	entity_type TEXT NOT NULL,
	remote_id TEXT NOT NULL,
	source TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	domain TEXT NOT NULL DEFAULT '',
	fields TEXT NOT NULL DEFAULT '{}',
	raw TEXT,
	last_synced_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (entity_type, remote_id)
);

CREATE INDEX IF NOT EXISTS idx_records_name ON records(entity_type, name);
CREATE INDEX IF NOT EXISTS idx_records_email ON records(entity_type, email);
CREATE INDEX IF NOT EXISTS idx_records_domain ON records(entity_type, domain);

CREATE TABLE IF NOT EXISTS record_links (
	id TEXT PRIMARY KEY,
	entity_type TEXT NOT NULL,
	source_system TEXT NOT NULL,
	source_remote_id TEXT NOT NULL,
	target_system TEXT NOT NULL,
	target_remote_id TEXT NOT NULL,
	matched_score INTEGER NOT NULL DEFAULT 0,
	match_reasons TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE(entity_type, source_system, source_remote_id)
);

CREATE INDEX IF NOT EXISTS idx_record_links_target ON record_links(target_system, target_remote_id);

CREATE TABLE IF NOT EXISTS change_events (
	id TEXT PRIMARY KEY,
	entity_type TEXT NOT NULL,
	remote_id TEXT NOT NULL,
	change_type TEXT NOT NULL CHECK(change_type IN ('created', 'field_update')),
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	snapshot TEXT,
	occurred_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_change_events_record ON change_events(entity_type, remote_id);
CREATE INDEX IF NOT EXISTS idx_change_events_occurred ON change_events(occurred_at);

CREATE TABLE IF NOT EXISTS sync_state (
	job TEXT PRIMARY KEY,
	last_run_at DATETIME,
	status TEXT CHECK(status IN ('idle', 'running', 'disabled', 'error')),
	error_message TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS automation_config (
	feature_key TEXT PRIMARY KEY,
	enabled INTEGER NOT NULL DEFAULT 0,
	settings TEXT,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS audit_log (
	id TEXT PRIMARY KEY,
	action TEXT NOT NULL,
	entity_type TEXT,
	entity_id TEXT,
	source TEXT,
	status TEXT NOT NULL CHECK(status IN ('success', 'error', 'received')),
	details TEXT,
	error_message TEXT,
	duration_ms INTEGER,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at DESC);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
