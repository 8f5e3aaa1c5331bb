// Package config provides configuration management for mlidb.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > .env > config.yaml >
// defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Store: driver, path, host, port, user, password, database, ssl_mode
//   - Reconcile: api_url, delay_ms, page_size, gbif_source_id, timeout_sec
//   - Import: inat_source_id, delimiter
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - Reconcile.WithProgress
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use MLIDB_ prefix with underscores for nesting:
//
//	MLIDB_STORE_DRIVER=sqlite
//	MLIDB_STORE_PATH=/data/lichens.sqlite
//	MLIDB_RECONCILE_DELAY_MS=500
//	MLIDB_LOG_LEVEL=info
package config

import (
	"runtime"
)

// Config represents the complete mlidb configuration.
type Config struct {
	// Store contains settings of the relational store.
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// Reconcile contains settings of the external reconciliation service.
	Reconcile ReconcileConfig `mapstructure:"reconcile" yaml:"reconcile"`

	// Import contains settings of the cross-reference importers.
	Import ImportConfig `mapstructure:"import" yaml:"import"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers used to normalize
	// remote records.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, data and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// StoreConfig describes how to open the relational store.
type StoreConfig struct {
	// Driver is either "sqlite" or "postgres".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// Path is the SQLite database file. If empty, the file is placed
	// into the data directory of the user.
	Path string `mapstructure:"path" yaml:"path"`

	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// ReconcileConfig contains settings for talking to the GBIF-like species
// API.
type ReconcileConfig struct {
	// APIURL is the base URL of the species API, without trailing slash.
	APIURL string `mapstructure:"api_url" yaml:"api_url"`

	// DelayMs is the fixed pause between two outgoing requests.
	DelayMs int `mapstructure:"delay_ms" yaml:"delay_ms"`

	// PageSize is the limit used for children and synonyms pages.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`

	// GBIFSourceID is the id of the data source that keeps remote keys
	// in cross-references.
	GBIFSourceID int `mapstructure:"gbif_source_id" yaml:"gbif_source_id"`

	// TimeoutSec limits a single HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// WithProgress shows a progress bar during reconciliation.
	WithProgress bool `mapstructure:"-" yaml:"-"`
}

// ImportConfig contains settings of CSV cross-reference imports.
type ImportConfig struct {
	// INatSourceID is the data source id of iNaturalist.
	INatSourceID int `mapstructure:"inat_source_id" yaml:"inat_source_id"`

	// Delimiter is the field separator of imported CSV files.
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Store: StoreConfig{
			Driver:   "sqlite",
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "mlidb",
			SSLMode:  "disable",
		},
		Reconcile: ReconcileConfig{
			APIURL:       "https://api.gbif.org/v1",
			DelayMs:      500,
			PageSize:     1000,
			GBIFSourceID: 12,
			TimeoutSec:   30,
		},
		Import: ImportConfig{
			INatSourceID: 1,
			Delimiter:    ";",
		},
		Log: LogConfig{
			Format:      "json",
			Level:       "info",
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
