// ABOUTME: Tests for the sync orchestrator's mirror pass and single-record path
// ABOUTME: Covers counters, change history, partial failure, and fetch aborts
package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncmesh/db"
	"syncmesh/models"
)

// fakeSource pages through a fixed record set.
type fakeSource struct {
	name     string
	pages    [][]RemoteRecord
	byID     map[string]*RemoteRecord
	fetchErr error
}

func (f *fakeSource) Name() string {
	if f.name == "" {
		return "faketool"
	}
	return f.name
}

func (f *fakeSource) FetchPage(_ context.Context, pageToken string) ([]RemoteRecord, string, error) {
	if f.fetchErr != nil {
		return nil, "", f.fetchErr
	}

	page := 0
	if pageToken != "" {
		page = int(pageToken[0] - '0')
	}
	if page >= len(f.pages) {
		return nil, "", nil
	}

	next := ""
	if page+1 < len(f.pages) {
		next = string(rune('0' + page + 1))
	}
	return f.pages[page], next, nil
}

func (f *fakeSource) FetchByID(_ context.Context, remoteID string) (*RemoteRecord, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.byID[remoteID], nil
}

func TestRunFirstPassCreatesRecords(t *testing.T) {
	database := testStore(t)
	source := &fakeSource{pages: [][]RemoteRecord{{
		{ID: "v-1", Fields: map[string]string{"name": "Acme", "phone": "555-1000"}},
		{ID: "v-2", Fields: map[string]string{"name": "Beta", "phone": "555-2000"}},
	}}}

	o := &Orchestrator{
		DB:            database,
		Source:        source,
		EntityType:    models.EntityVendor,
		TrackedFields: []string{"name", "phone"},
	}

	result, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Counters.Synced)
	assert.Equal(t, 2, result.Counters.Created)
	assert.Equal(t, 0, result.Counters.Updated)
	assert.Equal(t, 2, result.Counters.Changes)
	assert.Empty(t, result.Errors)

	// Each new record got exactly one created event with a snapshot.
	events, err := db.FindChanges(database, models.EntityVendor, "v-1", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.ChangeCreated, events[0].ChangeType)
	assert.NotEmpty(t, events[0].Snapshot)

	// One audit row for the pass.
	count, err := db.CountAudit(database, "vendor_sync")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunSecondPassDetectsFieldChanges(t *testing.T) {
	database := testStore(t)
	source := &fakeSource{pages: [][]RemoteRecord{{
		{ID: "v-1", Fields: map[string]string{"name": "Acme", "phone": "555-1000"}},
	}}}

	o := &Orchestrator{
		DB:            database,
		Source:        source,
		EntityType:    models.EntityVendor,
		TrackedFields: []string{"name", "phone"},
	}

	_, err := o.Run(context.Background())
	require.NoError(t, err)

	// Same data again: refresh, but no changes, so not counted as updated.
	result, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Counters.Synced)
	assert.Equal(t, 0, result.Counters.Created)
	assert.Equal(t, 0, result.Counters.Updated)
	assert.Equal(t, 0, result.Counters.Changes)

	// Changed phone: one field_update event, record counted as updated.
	source.pages = [][]RemoteRecord{{
		{ID: "v-1", Fields: map[string]string{"name": "Acme", "phone": "555-9999"}},
	}}
	result, err = o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Counters.Updated)
	assert.Equal(t, 1, result.Counters.Changes)

	events, err := db.FindChanges(database, models.EntityVendor, "v-1", 10)
	require.NoError(t, err)
	require.Len(t, events, 2) // created + field_update
	assert.Equal(t, models.ChangeFieldUpdate, events[0].ChangeType)
	assert.Equal(t, "phone", events[0].FieldName)
	assert.Equal(t, "555-1000", events[0].OldValue)
	assert.Equal(t, "555-9999", events[0].NewValue)

	// Refresh path always writes the full latest snapshot.
	stored, err := db.GetRecordByRemoteID(database, models.EntityVendor, "v-1")
	require.NoError(t, err)
	assert.Equal(t, "555-9999", stored.Field("phone"))
}

func TestRunPartialFailureContinues(t *testing.T) {
	database := testStore(t)
	// Record 2 has no remote id, so its upsert fails; records 1 and 3 must
	// still land.
	source := &fakeSource{pages: [][]RemoteRecord{{
		{ID: "v-1", Fields: map[string]string{"name": "One"}},
		{ID: "", Fields: map[string]string{"name": "Broken"}},
		{ID: "v-3", Fields: map[string]string{"name": "Three"}},
	}}}

	o := &Orchestrator{
		DB:            database,
		Source:        source,
		EntityType:    models.EntityVendor,
		TrackedFields: []string{"name"},
	}

	result, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Counters.Synced)
	assert.Equal(t, 2, result.Counters.Created)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "", result.Errors[0].RemoteID)
	assert.NotEmpty(t, result.Errors[0].Message)

	for _, id := range []string{"v-1", "v-3"} {
		stored, err := db.GetRecordByRemoteID(database, models.EntityVendor, id)
		require.NoError(t, err)
		assert.NotNil(t, stored, "record %s should have synced", id)
	}
}

func TestRunFetchFailureAbortsPass(t *testing.T) {
	database := testStore(t)
	source := &fakeSource{fetchErr: &RemoteAPIError{Source: "faketool", StatusCode: 500, Message: "boom"}}

	o := &Orchestrator{
		DB:         database,
		Source:     source,
		EntityType: models.EntityVendor,
	}

	result, err := o.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, result.Counters.Synced)

	// The failed pass still leaves an error audit row.
	entries, err := db.RecentAudit(database, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditError, entries[0].Status)
}

func TestRunPaginates(t *testing.T) {
	database := testStore(t)
	source := &fakeSource{pages: [][]RemoteRecord{
		{{ID: "v-1", Fields: map[string]string{"name": "One"}}},
		{{ID: "v-2", Fields: map[string]string{"name": "Two"}}},
		{{ID: "v-3", Fields: map[string]string{"name": "Three"}}},
	}}

	o := &Orchestrator{
		DB:            database,
		Source:        source,
		EntityType:    models.EntityVendor,
		TrackedFields: []string{"name"},
	}

	result, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Counters.Synced)
}

func TestSyncOne(t *testing.T) {
	database := testStore(t)
	source := &fakeSource{byID: map[string]*RemoteRecord{
		"v-1": {ID: "v-1", Fields: map[string]string{"name": "Acme"}},
	}}

	o := &Orchestrator{
		DB:            database,
		Source:        source,
		EntityType:    models.EntityVendor,
		TrackedFields: []string{"name"},
	}

	result, err := o.SyncOne(context.Background(), "v-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Counters.Created)

	// Unknown remote id is a not-found, reported as an error value.
	_, err = o.SyncOne(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}
