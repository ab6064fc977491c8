// ABOUTME: Webhook event shape consumed by the sync entry points
// ABOUTME: Normalizes alias field names and derives the idempotency dedup key
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// WebhookEvent is the minimal event shape external systems deliver. Different
// systems name the same attributes differently (resource_name vs object_type,
// resource_id vs object_id), so decoding folds the aliases together.
type WebhookEvent struct {
	Source     string `json:"-"`
	Resource   string `json:"resource_name"`
	EventType  string `json:"event_type"`
	ResourceID string `json:"resource_id"`
	ProjectID  string `json:"project_id,omitempty"`
	// OccurredAt is the event's own reported timestamp (or version counter),
	// not the receipt time. The dedup key depends on it staying stable across
	// redeliveries of the same logical event.
	OccurredAt string `json:"occurred_at,omitempty"`
}

// webhookAliases carries the alternate field names some systems send.
type webhookAliases struct {
	Resource   string `json:"resource_name"`
	ObjectType string `json:"object_type"`
	EventType  string `json:"event_type"`
	ResourceID string `json:"resource_id"`
	ObjectID   string `json:"object_id"`
	ProjectID  string `json:"project_id"`
	OccurredAt string `json:"occurred_at"`
	Timestamp  string `json:"timestamp"`
}

// UnmarshalJSON folds resource_name/object_type and resource_id/object_id
// into one set of fields.
func (e *WebhookEvent) UnmarshalJSON(data []byte) error {
	var a webhookAliases
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	e.Resource = a.Resource
	if e.Resource == "" {
		e.Resource = a.ObjectType
	}
	e.ResourceID = a.ResourceID
	if e.ResourceID == "" {
		e.ResourceID = a.ObjectID
	}
	e.EventType = a.EventType
	e.ProjectID = a.ProjectID
	e.OccurredAt = a.OccurredAt
	if e.OccurredAt == "" {
		e.OccurredAt = a.Timestamp
	}
	return nil
}

// Valid reports whether the event carries enough to be processed.
func (e *WebhookEvent) Valid() bool {
	return e.Resource != "" && e.ResourceID != ""
}

// DedupKey derives the idempotency key from stable event attributes only:
// source, resource, resource id, and the event's own timestamp. Receipt time
// never enters the key, so redeliveries of the same logical event collide
// regardless of how far apart they arrive.
func (e *WebhookEvent) DedupKey() string {
	parts := []string{e.Source, e.Resource, e.EventType, e.ResourceID}
	if e.OccurredAt != "" {
		parts = append(parts, e.OccurredAt)
	}
	return strings.Join(parts, ":")
}

// String implements fmt.Stringer for log lines.
func (e *WebhookEvent) String() string {
	return fmt.Sprintf("%s/%s %s %s", e.Source, e.Resource, e.EventType, e.ResourceID)
}
