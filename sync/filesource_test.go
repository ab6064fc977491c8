// ABOUTME: Tests for the JSON file source adapter
// ABOUTME: Covers paging, lookup by id, and export reload between pages
package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileSourcePaging(t *testing.T) {
	path := writeExport(t, `[
		{"id": "v-1", "fields": {"name": "Acme"}},
		{"id": "v-2", "fields": {"name": "Globex"}},
		{"id": "v-3", "fields": {"name": "Initech"}}
	]`)

	source := NewFileSource(path, "procore")
	source.PageSize = 2

	ctx := context.Background()

	page1, next, err := source.FetchPage(ctx, "")
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "v-1", page1[0].ID)
	require.NotEmpty(t, next)

	page2, next, err := source.FetchPage(ctx, next)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "v-3", page2[0].ID)
	assert.Empty(t, next)
}

func TestFileSourceFetchByID(t *testing.T) {
	path := writeExport(t, `[{"id": "v-1", "fields": {"name": "Acme", "city": "Dallas"}}]`)
	source := NewFileSource(path, "procore")

	record, err := source.FetchByID(context.Background(), "v-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Dallas", record.Fields["city"])

	missing, err := source.FetchByID(context.Background(), "v-99")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFileSourceMissingFile(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "nope.json"), "procore")

	_, _, err := source.FetchPage(context.Background(), "")
	require.Error(t, err)
}

func TestFileSourceBadToken(t *testing.T) {
	path := writeExport(t, `[]`)
	source := NewFileSource(path, "procore")

	_, _, err := source.FetchPage(context.Background(), "notanumber")
	require.Error(t, err)
}
