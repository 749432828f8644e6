// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer file/env.
// - External errors are wrapped via this package's sentinel kinds.
package config

type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath locates the SQLite database file.
	DBPath string `koanf:"db_path"`

	// SnapshotEventLimit caps the recent-events section of a snapshot.
	SnapshotEventLimit int `koanf:"snapshot_event_limit"`

	// ExportEventLimit caps the events section of an export payload.
	ExportEventLimit int `koanf:"export_event_limit"`

	// BroadcastBuffer bounds the per-observer send queue.
	BroadcastBuffer int `koanf:"broadcast_buffer"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":8090",
		DBPath:             "data/bakeboard.sqlite3",
		SnapshotEventLimit: 60,
		ExportEventLimit:   500,
		BroadcastBuffer:    16,
	}
}
