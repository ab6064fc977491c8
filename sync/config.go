// ABOUTME: Runtime configuration loaded from TOML with environment overrides
// ABOUTME: Defines job definitions, store paths, and the webhook listen address
package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"

	"syncmesh/models"
)

// JobConfig is one periodic sync job as declared in the config file.
type JobConfig struct {
	Name          string            `toml:"name"`
	EntityType    models.EntityType `toml:"entity_type"`
	Interval      string            `toml:"interval"`
	FeatureKey    string            `toml:"feature_key"`
	Enabled       bool              `toml:"enabled"`
	Source        string            `toml:"source"`
	SourcePath    string            `toml:"source_path"`
	TrackedFields []string          `toml:"tracked_fields"`
}

// ParseInterval returns the job's interval, floored at MinInterval.
func (j JobConfig) ParseInterval() (time.Duration, error) {
	if j.Interval == "" {
		return 15 * time.Minute, nil
	}
	d, err := time.ParseDuration(j.Interval)
	if err != nil {
		return 0, fmt.Errorf("job %s: invalid interval %q: %w", j.Name, j.Interval, err)
	}
	if d < MinInterval {
		return 0, fmt.Errorf("job %s: interval %s below minimum %s", j.Name, d, MinInterval)
	}
	return d, nil
}

// LinkConfig is one cross-system linking surface: records mirrored from
// source_system are resolved against the rest of the store and written
// through to the target export.
type LinkConfig struct {
	Name         string            `toml:"name"`
	EntityType   models.EntityType `toml:"entity_type"`
	SourceSystem string            `toml:"source_system"`
	TargetSystem string            `toml:"target_system"`
	TargetPath   string            `toml:"target_path"`
	FeatureKey   string            `toml:"feature_key"`
}

// Config is the full runtime configuration.
type Config struct {
	DBPath        string       `toml:"db_path"`
	TokenPath     string       `toml:"token_path"`
	ListenAddr    string       `toml:"listen_addr"`
	RetentionDays int          `toml:"retention_days"`
	Jobs          []JobConfig  `toml:"jobs"`
	Links         []LinkConfig `toml:"links"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		DBPath:        filepath.Join(xdg.DataHome, "syncmesh", "syncmesh.db"),
		TokenPath:     filepath.Join(xdg.DataHome, "syncmesh", "tokens"),
		ListenAddr:    ":8086",
		RetentionDays: 14,
	}
}

// LoadConfig reads the TOML config at path, overlaying defaults and then
// environment variables (SYNCMESH_DB_PATH, SYNCMESH_TOKEN_PATH,
// SYNCMESH_LISTEN_ADDR). A missing file is not an error; defaults apply.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if v := os.Getenv("SYNCMESH_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("SYNCMESH_TOKEN_PATH"); v != "" {
		cfg.TokenPath = v
	}
	if v := os.Getenv("SYNCMESH_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.RetentionDays <= 0 {
		c.RetentionDays = 14
	}

	seen := make(map[string]bool)
	seenEntity := make(map[models.EntityType]string)
	for _, job := range c.Jobs {
		if job.Name == "" {
			return fmt.Errorf("job with empty name in config")
		}
		if seen[job.Name] {
			return fmt.Errorf("duplicate job name %q", job.Name)
		}
		seen[job.Name] = true

		// Webhook routes are keyed by entity type, so two jobs sharing one
		// would silently shadow each other.
		if other, ok := seenEntity[job.EntityType]; ok {
			return fmt.Errorf("jobs %q and %q share entity type %q", other, job.Name, job.EntityType)
		}
		seenEntity[job.EntityType] = job.Name

		if _, err := job.ParseInterval(); err != nil {
			return err
		}
	}

	seenLinks := make(map[string]bool)
	for _, link := range c.Links {
		if link.Name == "" {
			return fmt.Errorf("link with empty name in config")
		}
		if seenLinks[link.Name] {
			return fmt.Errorf("duplicate link name %q", link.Name)
		}
		seenLinks[link.Name] = true

		if link.TargetPath == "" {
			return fmt.Errorf("link %s: target_path is required", link.Name)
		}
		if link.SourceSystem == "" {
			return fmt.Errorf("link %s: source_system is required", link.Name)
		}
	}

	return nil
}

// LinkByName returns the named link config, or nil.
func (c *Config) LinkByName(name string) *LinkConfig {
	for i := range c.Links {
		if c.Links[i].Name == name {
			return &c.Links[i]
		}
	}
	return nil
}

// JobByName returns the named job config, or nil.
func (c *Config) JobByName(name string) *JobConfig {
	for i := range c.Jobs {
		if c.Jobs[i].Name == name {
			return &c.Jobs[i]
		}
	}
	return nil
}
