// Package repository defines the score ledger store interface and errors.
package repository

import (
	"database/sql"
	"time"
)

// Option applies a configuration option to the opened database handle.
type Option func(*sql.DB)

// WithMaxOpenConns overrides the single-connection default.
func WithMaxOpenConns(n int) Option {
	return func(db *sql.DB) {
		if n > 0 {
			db.SetMaxOpenConns(n)
		}
	}
}

// WithConnMaxLifetime bounds how long a pooled connection may live.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(db *sql.DB) {
		if d > 0 {
			db.SetConnMaxLifetime(d)
		}
	}
}
