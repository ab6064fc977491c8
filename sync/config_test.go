// ABOUTME: Tests for TOML configuration loading and validation
// ABOUTME: Covers defaults, file parsing, env overrides, and interval floors
package sync

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncmesh/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "syncmesh.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.DBPath)
	assert.Equal(t, ":8086", cfg.ListenAddr)
	assert.Equal(t, 14, cfg.RetentionDays)
	assert.Empty(t, cfg.Jobs)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.RetentionDays)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
db_path = "/tmp/test-syncmesh.db"
listen_addr = ":9999"
retention_days = 30

[[jobs]]
name = "vendor-sync"
entity_type = "vendor"
interval = "10m"
feature_key = "vendor_auto_create"
enabled = true

[[jobs]]
name = "company-sync"
entity_type = "company"
interval = "1h"
enabled = false
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test-syncmesh.db", cfg.DBPath)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, 30, cfg.RetentionDays)
	require.Len(t, cfg.Jobs, 2)

	job := cfg.JobByName("vendor-sync")
	require.NotNil(t, job)
	assert.Equal(t, models.EntityVendor, job.EntityType)
	assert.True(t, job.Enabled)

	interval, err := job.ParseInterval()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, interval)

	assert.Nil(t, cfg.JobByName("missing"))
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SYNCMESH_DB_PATH", "/tmp/env-override.db")
	t.Setenv("SYNCMESH_LISTEN_ADDR", ":7777")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env-override.db", cfg.DBPath)
	assert.Equal(t, ":7777", cfg.ListenAddr)
}

func TestLoadConfigRejectsShortInterval(t *testing.T) {
	path := writeConfig(t, `
[[jobs]]
name = "too-eager"
entity_type = "vendor"
interval = "10s"
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum")
}

func TestLoadConfigRejectsDuplicateJobs(t *testing.T) {
	path := writeConfig(t, `
[[jobs]]
name = "dup"
entity_type = "vendor"

[[jobs]]
name = "dup"
entity_type = "company"
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate job name")
}

func TestLoadConfigRejectsSharedEntityType(t *testing.T) {
	path := writeConfig(t, `
[[jobs]]
name = "vendor-a"
entity_type = "vendor"

[[jobs]]
name = "vendor-b"
entity_type = "vendor"
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "share entity type")
}

func TestLoadConfigLinks(t *testing.T) {
	path := writeConfig(t, `
[[links]]
name = "vendor-to-crm"
entity_type = "vendor"
source_system = "procore"
target_system = "crm"
target_path = "/tmp/crm-vendors.json"
feature_key = "vendor_auto_create"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Links, 1)

	link := cfg.LinkByName("vendor-to-crm")
	require.NotNil(t, link)
	assert.Equal(t, "procore", link.SourceSystem)
	assert.Equal(t, "vendor_auto_create", link.FeatureKey)
	assert.Nil(t, cfg.LinkByName("missing"))
}

func TestLoadConfigRejectsLinkWithoutTarget(t *testing.T) {
	path := writeConfig(t, `
[[links]]
name = "broken"
entity_type = "vendor"
source_system = "procore"
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target_path")
}

func TestJobConfigDefaultInterval(t *testing.T) {
	job := JobConfig{Name: "plain"}
	interval, err := job.ParseInterval()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, interval)
}
