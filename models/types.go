// ABOUTME: Data models for canonical records, match results, and change events
// ABOUTME: Defines the types shared by the store, the resolver, and the sync engine
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EntityType identifies which kind of external record a canonical record mirrors.
type EntityType string

const (
	EntityCompany EntityType = "company"
	EntityContact EntityType = "contact"
	EntityDeal    EntityType = "deal"
	EntityVendor  EntityType = "vendor"
	EntityProject EntityType = "project"
	EntityUser    EntityType = "user"
)

// CanonicalRecord is the local mirror of one external entity, keyed by its
// remote id. Exactly one record exists per (entity type, remote id); all
// writes go through upsert-by-remote-id.
type CanonicalRecord struct {
	EntityType   EntityType        `json:"entity_type"`
	RemoteID     string            `json:"remote_id"`
	Source       string            `json:"source"`
	Fields       map[string]string `json:"fields"`
	Raw          json.RawMessage   `json:"raw,omitempty"`
	LastSyncedAt time.Time         `json:"last_synced_at"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Field returns a named field value, or "" when unset.
func (r *CanonicalRecord) Field(name string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// Well-known field names used by the scorer and resolver.
const (
	FieldName      = "name"
	FieldEmail     = "email"
	FieldWebsite   = "website"
	FieldDomain    = "domain"
	FieldLegalName = "legal_name"
	FieldTradeName = "trade_name"
	FieldPhone     = "phone"
	FieldCity      = "city"
)

// MatchCriteria is the bag of optional fields extracted from a record in one
// system and used to search for its equivalent in another.
type MatchCriteria struct {
	Email       string `json:"email,omitempty"`
	Domain      string `json:"domain,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
}

// Empty reports whether no criterion field is set.
func (c MatchCriteria) Empty() bool {
	return c.Email == "" && c.Domain == "" && c.CompanyName == "" &&
		c.FirstName == "" && c.LastName == ""
}

// MatchScore is a similarity score plus the reason codes that produced it.
type MatchScore struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// MatchCandidate pairs a candidate record with its computed score. Candidates
// live only for the duration of one resolution attempt and are not persisted.
type MatchCandidate struct {
	Record *CanonicalRecord
	MatchScore
}

// Change type constants.
const (
	ChangeCreated     = "created"
	ChangeFieldUpdate = "field_update"
)

// ChangeEvent is one audit row: a single field's before/after value, or a
// record's creation with its full snapshot. Immutable once written.
type ChangeEvent struct {
	ID         string          `json:"id"`
	EntityType EntityType      `json:"entity_type"`
	RemoteID   string          `json:"remote_id"`
	ChangeType string          `json:"change_type"`
	FieldName  string          `json:"field_name,omitempty"`
	OldValue   string          `json:"old_value,omitempty"`
	NewValue   string          `json:"new_value,omitempty"`
	Snapshot   json.RawMessage `json:"snapshot,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Link associates a remote id in one system with its matched equivalent in
// another system.
type Link struct {
	ID             uuid.UUID  `json:"id"`
	EntityType     EntityType `json:"entity_type"`
	SourceSystem   string     `json:"source_system"`
	SourceRemoteID string     `json:"source_remote_id"`
	TargetSystem   string     `json:"target_system"`
	TargetRemoteID string     `json:"target_remote_id"`
	MatchedScore   int        `json:"matched_score"`
	MatchReasons   string     `json:"match_reasons,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SyncCounters aggregates one sync pass. Derived, never persisted on its own.
type SyncCounters struct {
	Synced  int `json:"synced"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Changes int `json:"changes"`
}

// SyncError names one record that failed inside a batch.
type SyncError struct {
	RemoteID string `json:"remote_id"`
	Message  string `json:"message"`
}

// SyncResult is what a sync pass returns: explicit counters plus the list of
// per-record failures. A non-empty error list does not mean the pass failed.
type SyncResult struct {
	Counters SyncCounters `json:"counters"`
	Errors   []SyncError  `json:"errors,omitempty"`
}

// Audit status constants.
const (
	AuditSuccess  = "success"
	AuditError    = "error"
	AuditReceived = "received"
)

// AuditEntry is one row in the audit log.
type AuditEntry struct {
	ID           uuid.UUID  `json:"id"`
	Action       string     `json:"action"`
	EntityType   EntityType `json:"entity_type,omitempty"`
	EntityID     string     `json:"entity_id,omitempty"`
	Source       string     `json:"source,omitempty"`
	Status       string     `json:"status"`
	Details      string     `json:"details,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	DurationMs   int64      `json:"duration_ms,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// AutomationConfig gates a cross-system write path. Missing config means
// disabled; callers must consult it on every invocation, not cache it.
type AutomationConfig struct {
	FeatureKey string    `json:"feature_key"`
	Enabled    bool      `json:"enabled"`
	Settings   string    `json:"settings,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Job status constants.
const (
	JobStatusIdle     = "idle"
	JobStatusRunning  = "running"
	JobStatusDisabled = "disabled"
	JobStatusError    = "error"
)

// SyncState is the persisted per-job state row.
type SyncState struct {
	Job          string     `json:"job"`
	LastRunAt    *time.Time `json:"last_run_at,omitempty"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
