// Package config holds daemon-wide tunables, following the reference
// engine's ServerConfig / DefaultServerConfig shape.
package config

import "time"

// DaemonConfig holds configuration for the svcschedd daemon.
type DaemonConfig struct {
	Addr      string // Admin API listen address (default ":7770")
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: text, json

	// UnitFileDir is where the unitfile loader looks for YAML unit
	// definitions.
	UnitFileDir string

	// JobTimeout is the default per-job dispatch timeout. The original
	// daemon hardcodes 700ms as "JOB TIMEOUT MSEC"; this repo treats it
	// as a tunable.
	JobTimeout time.Duration

	// AuditDBPath, if non-empty, enables the sqlite audit log of job
	// completions. ":memory:" is accepted for tests.
	AuditDBPath string
}

// DefaultDaemonConfig returns sensible defaults.
func DefaultDaemonConfig() DaemonConfig {
	return DaemonConfig{
		Addr:        ":7770",
		LogLevel:    "info",
		LogFormat:   "text",
		UnitFileDir: "",
		JobTimeout:  700 * time.Millisecond,
		AuditDBPath: "",
	}
}
