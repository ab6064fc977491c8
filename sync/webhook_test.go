// ABOUTME: Tests for webhook event dispatch and replay suppression
// ABOUTME: Asserts duplicate deliveries perform zero writes and zero audit rows
package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncmesh/db"
	"syncmesh/models"
)

func TestHandleEventSyncsRecord(t *testing.T) {
	database := testStore(t)
	guard := testGuard(t)

	source := &fakeSource{byID: map[string]*RemoteRecord{
		"v-1": {ID: "v-1", Fields: map[string]string{"name": "Acme"}},
	}}
	dispatcher := NewDispatcher(database, guard)
	dispatcher.Register("vendor", &Orchestrator{
		DB:            database,
		Source:        source,
		EntityType:    models.EntityVendor,
		TrackedFields: []string{"name"},
	})

	event := &models.WebhookEvent{
		Source:     "procore",
		Resource:   "vendor",
		EventType:  "update",
		ResourceID: "v-1",
		OccurredAt: "2026-08-01T10:00:00Z",
	}

	result, err := dispatcher.HandleEvent(context.Background(), event)
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Equal(t, 1, result.Result.Counters.Created)

	stored, err := db.GetRecordByRemoteID(database, models.EntityVendor, "v-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestHandleEventDuplicateDelivery(t *testing.T) {
	database := testStore(t)
	guard := testGuard(t)

	source := &fakeSource{byID: map[string]*RemoteRecord{
		"v-1": {ID: "v-1", Fields: map[string]string{"name": "Acme"}},
	}}
	dispatcher := NewDispatcher(database, guard)
	dispatcher.Register("vendor", &Orchestrator{
		DB:            database,
		Source:        source,
		EntityType:    models.EntityVendor,
		TrackedFields: []string{"name"},
	})

	event := &models.WebhookEvent{
		Source:     "procore",
		Resource:   "vendor",
		EventType:  "update",
		ResourceID: "v-1",
		OccurredAt: "2026-08-01T10:00:00Z",
	}

	first, err := dispatcher.HandleEvent(context.Background(), event)
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	changesBefore, err := db.FindChanges(database, models.EntityVendor, "v-1", 10)
	require.NoError(t, err)
	auditBefore, err := db.CountAudit(database, "")
	require.NoError(t, err)

	// The same logical event redelivered: treated as handled, success
	// reported, no writes, no new audit rows.
	second, err := dispatcher.HandleEvent(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)

	changesAfter, err := db.FindChanges(database, models.EntityVendor, "v-1", 10)
	require.NoError(t, err)
	assert.Equal(t, len(changesBefore), len(changesAfter))

	auditAfter, err := db.CountAudit(database, "")
	require.NoError(t, err)
	assert.Equal(t, auditBefore, auditAfter)
}

func TestHandleEventInvalid(t *testing.T) {
	database := testStore(t)
	guard := testGuard(t)
	dispatcher := NewDispatcher(database, guard)

	_, err := dispatcher.HandleEvent(context.Background(), &models.WebhookEvent{Source: "procore"})
	require.Error(t, err)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestHandleEventUnknownResource(t *testing.T) {
	database := testStore(t)
	guard := testGuard(t)
	dispatcher := NewDispatcher(database, guard)

	event := &models.WebhookEvent{
		Source:     "procore",
		Resource:   "timecard",
		EventType:  "create",
		ResourceID: "t-1",
	}

	_, err := dispatcher.HandleEvent(context.Background(), event)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}
