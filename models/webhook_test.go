package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookEventAliases(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		resource string
		id       string
	}{
		{
			name:     "resource_name and resource_id",
			body:     `{"resource_name":"vendor","event_type":"update","resource_id":"v-42"}`,
			resource: "vendor",
			id:       "v-42",
		},
		{
			name:     "object_type and object_id",
			body:     `{"object_type":"deal","event_type":"create","object_id":"d-7"}`,
			resource: "deal",
			id:       "d-7",
		},
		{
			name:     "canonical names win over aliases",
			body:     `{"resource_name":"company","object_type":"deal","resource_id":"c-1","object_id":"d-1"}`,
			resource: "company",
			id:       "c-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ev WebhookEvent
			require.NoError(t, json.Unmarshal([]byte(tt.body), &ev))
			assert.Equal(t, tt.resource, ev.Resource)
			assert.Equal(t, tt.id, ev.ResourceID)
			assert.True(t, ev.Valid())
		})
	}
}

func TestWebhookEventDedupKeyStable(t *testing.T) {
	body := `{"resource_name":"project","event_type":"update","resource_id":"p-9","occurred_at":"2026-08-01T10:00:00Z"}`

	var first, second WebhookEvent
	require.NoError(t, json.Unmarshal([]byte(body), &first))
	require.NoError(t, json.Unmarshal([]byte(body), &second))
	first.Source = "procore"
	second.Source = "procore"

	// Redelivery of the same logical event must produce the same key no
	// matter when it arrives.
	assert.Equal(t, first.DedupKey(), second.DedupKey())
	assert.Equal(t, "procore:project:update:p-9:2026-08-01T10:00:00Z", first.DedupKey())
}

func TestWebhookEventDedupKeyDistinguishesEvents(t *testing.T) {
	a := WebhookEvent{Source: "s", Resource: "vendor", EventType: "update", ResourceID: "1", OccurredAt: "t1"}
	b := WebhookEvent{Source: "s", Resource: "vendor", EventType: "update", ResourceID: "1", OccurredAt: "t2"}
	assert.NotEqual(t, a.DedupKey(), b.DedupKey())
}

func TestWebhookEventValid(t *testing.T) {
	ev := WebhookEvent{Resource: "vendor"}
	assert.False(t, ev.Valid())
	ev.ResourceID = "v-1"
	assert.True(t, ev.Valid())
}
