// ABOUTME: Automation feature flag persistence
// ABOUTME: Gates cross-system write paths; missing config means disabled
package db

import (
	"database/sql"
	"fmt"

	"syncmesh/models"
)

// GetAutomationConfig returns the flag for one feature key. A missing row is
// returned as a disabled config, never an error; disabled is the default
// until someone explicitly enables the feature. Callers must consult this on
// every invocation rather than caching the result.
func GetAutomationConfig(db *sql.DB, featureKey string) (*models.AutomationConfig, error) {
	var cfg models.AutomationConfig
	var enabled int
	var settings sql.NullString

	err := db.QueryRow(`
		SELECT feature_key, enabled, settings, updated_at
		FROM automation_config
		WHERE feature_key = ?
	`, featureKey).Scan(&cfg.FeatureKey, &enabled, &settings, &cfg.UpdatedAt)

	if err == sql.ErrNoRows {
		return &models.AutomationConfig{FeatureKey: featureKey, Enabled: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get automation config: %w", err)
	}

	cfg.Enabled = enabled != 0
	cfg.Settings = settings.String

	return &cfg, nil
}

// SetAutomationEnabled flips one feature flag, creating the row if needed.
func SetAutomationEnabled(db *sql.DB, featureKey string, enabled bool) error {
	val := 0
	if enabled {
		val = 1
	}

	_, err := db.Exec(`
		INSERT INTO automation_config (feature_key, enabled, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(feature_key) DO UPDATE SET
			enabled = excluded.enabled,
			updated_at = CURRENT_TIMESTAMP
	`, featureKey, val)

	if err != nil {
		return fmt.Errorf("failed to set automation config: %w", err)
	}

	return nil
}
