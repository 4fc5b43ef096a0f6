// Package config loads runtime settings from an optional YAML file and
// environment variables. Environment values win over the file; defaults fill
// whatever neither sets.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreSpanner  = "spanner"
	StoreS3       = "s3"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds application configuration.
type Config struct {
	Store   string        `yaml:"store"`
	Spanner SpannerConfig `yaml:"spanner"`
	SQL     SQLConfig     `yaml:"sql"`
	S3      S3Config      `yaml:"s3"`
	Log     LogConfig     `yaml:"log"`
	Tracker TrackerConfig `yaml:"tracker"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SpannerConfig selects the Spanner database.
type SpannerConfig struct {
	Database     string `yaml:"database"`
	EmulatorHost string `yaml:"emulator_host,omitempty"`
	Outbox       bool   `yaml:"outbox"`
}

// SQLConfig configures the SQLite and Postgres backends.
type SQLConfig struct {
	Path string `yaml:"path"`
	DSN  string `yaml:"dsn,omitempty"`
}

// S3Config configures the S3 document backend.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region,omitempty"`
	Prefix          string `yaml:"prefix,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	PathStyle       bool   `yaml:"path_style,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TrackerConfig tunes tracked objects.
type TrackerConfig struct {
	// SyncWhileDirty enables the sync command while there is something to
	// sync. Off keeps the historical enablement.
	SyncWhileDirty bool `yaml:"sync_while_dirty"`
	// SyncLimit caps concurrent syncs in bulk operations. Zero is unlimited.
	SyncLimit int `yaml:"sync_limit"`
}

// MetricsConfig toggles Prometheus counters.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Store: StoreSQLite,
		Spanner: SpannerConfig{
			// Default for local development with emulator
			Database: "projects/test-project/instances/dev-instance/databases/syncable-db",
			Outbox:   true,
		},
		SQL: SQLConfig{
			Path: "syncable.db",
		},
		S3: S3Config{
			Region: "us-east-1",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Tracker: TrackerConfig{
			SyncLimit: 8,
		},
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.SQL.Path == "" {
			return fmt.Errorf("%w: sql.path is required for sqlite", ErrInvalid)
		}
	case StorePostgres:
		if c.SQL.DSN == "" {
			return fmt.Errorf("%w: sql.dsn is required for postgres", ErrInvalid)
		}
	case StoreSpanner:
		if c.Spanner.Database == "" {
			return fmt.Errorf("%w: spanner.database is required", ErrInvalid)
		}
	case StoreS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("%w: s3.bucket is required", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalid, c.Store)
	}
	if c.Tracker.SyncLimit < 0 {
		return fmt.Errorf("%w: tracker.sync_limit must not be negative", ErrInvalid)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalid, key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalid, key, err))
				return
			}
			*dst = n
		}
	}

	str("SYNCABLE_STORE", &cfg.Store)
	cfg.Store = strings.ToLower(cfg.Store)

	str("SPANNER_DATABASE", &cfg.Spanner.Database)
	str("SPANNER_EMULATOR_HOST", &cfg.Spanner.EmulatorHost)
	boolean("SYNCABLE_SPANNER_OUTBOX", &cfg.Spanner.Outbox)

	str("SYNCABLE_SQLITE_PATH", &cfg.SQL.Path)
	str("SYNCABLE_SQL_DSN", &cfg.SQL.DSN)

	str("SYNCABLE_S3_BUCKET", &cfg.S3.Bucket)
	str("SYNCABLE_S3_REGION", &cfg.S3.Region)
	str("SYNCABLE_S3_PREFIX", &cfg.S3.Prefix)
	str("SYNCABLE_S3_ENDPOINT", &cfg.S3.Endpoint)
	boolean("SYNCABLE_S3_PATH_STYLE", &cfg.S3.PathStyle)
	str("AWS_ACCESS_KEY_ID", &cfg.S3.AccessKeyID)
	str("AWS_SECRET_ACCESS_KEY", &cfg.S3.SecretAccessKey)

	str("SYNCABLE_LOG_LEVEL", &cfg.Log.Level)
	str("SYNCABLE_LOG_FORMAT", &cfg.Log.Format)

	boolean("SYNCABLE_SYNC_WHILE_DIRTY", &cfg.Tracker.SyncWhileDirty)
	integer("SYNCABLE_SYNC_LIMIT", &cfg.Tracker.SyncLimit)
	boolean("SYNCABLE_METRICS", &cfg.Metrics.Enabled)

	return errors.Join(errs...)
}
