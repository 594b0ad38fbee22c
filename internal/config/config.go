// Package config defines process configuration and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer sources.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SnapshotDir points at the directory holding the NDJSON snapshot files.
	SnapshotDir string `koanf:"snapshot_dir"`

	// QueueSize bounds the in-memory ingest queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingest workers.
	WorkerCount int `koanf:"worker_count"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// DuplicatePolicy selects how duplicate run rows are resolved during a
	// rebuild: "drop_all" or "keep_earliest".
	DuplicatePolicy string `koanf:"duplicate_policy"`

	// RefreshInterval re-imports the snapshot periodically when set,
	// e.g. "15m". Empty disables periodic refresh.
	RefreshInterval string `koanf:"refresh_interval"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		SnapshotDir:         "snapshot",
		QueueSize:           100_000,
		WorkerCount:         runtime.NumCPU() * 2,
		MaxLeaderboardLimit: 100,
		DuplicatePolicy:     "drop_all",
	}
}
