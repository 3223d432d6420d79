// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers an optional file and env vars on top.
// - External errors are wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// DBPath locates the SQLite ledger database file.
	DBPath string `koanf:"db_path"`

	// RosterDir holds troop.csv and patrol.csv with the entity roster.
	// Empty disables roster import.
	RosterDir string `koanf:"roster_dir"`

	// GamesDir holds common.json and games/*.json game configuration.
	// Empty disables the /games.json endpoint content.
	GamesDir string `koanf:"games_dir"`

	// MaxExportRows caps the number of rows in a flattened export.
	// Zero means unlimited.
	MaxExportRows int `koanf:"max_export_rows"`

	// SeedDemoData seeds a demo patrol/troop pair when the entity
	// directory is empty, so a fresh install can accept scores.
	SeedDemoData bool `koanf:"seed_demo_data"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:      "info",
		Addr:          ":3000",
		DBPath:        "data/camporee.db",
		RosterDir:     "",
		GamesDir:      "",
		MaxExportRows: 0,
		SeedDemoData:  false,
	}
}
