// Package config provides configuration management for go-shell-swarm.
package config

import (
	"time"

	"github.com/randomizedcoder/go-shell-swarm/pkg/shell"
)

// Config holds all configuration options for the runner.
type Config struct {
	// Orchestration
	Command    string        `json:"command"`
	Workers    int           `json:"workers"`
	RampRate   int           `json:"ramp_rate"`
	RampJitter time.Duration `json:"ramp_jitter"`
	Duration   time.Duration `json:"duration"` // 0 = forever
	Once       bool          `json:"once"`     // Run each worker a single time

	// Shell
	ShellPath string   `json:"shell_path"`
	WorkDir   string   `json:"work_dir"`
	Env       []string `json:"env"` // KEY=VALUE pairs merged over the inherited environment
	Encoding  string   `json:"encoding"`

	// Restart policy
	MaxRestarts     int           `json:"max_restarts"` // 0 = unlimited
	BackoffInitial  time.Duration `json:"backoff_initial"`
	BackoffMax      time.Duration `json:"backoff_max"`
	BackoffMultiply float64       `json:"backoff_multiply"`

	// Observability
	MetricsAddr string `json:"metrics_addr"`
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text
	LogLevel    string `json:"log_level"`
	TUIEnabled  bool   `json:"tui"`

	// Diagnostic modes
	PrintCmd      bool `json:"print_cmd"`
	SkipPreflight bool `json:"skip_preflight"`
}

// EffectiveShell returns the configured shell path, falling back to the
// platform default.
func (c *Config) EffectiveShell() string {
	if c.ShellPath != "" {
		return c.ShellPath
	}
	return shell.DefaultShell()
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		// Orchestration
		Workers:    1,
		RampRate:   5,
		RampJitter: 200 * time.Millisecond,
		Duration:   0, // Forever
		Once:       false,

		// Shell: empty means the pkg/shell platform default
		ShellPath: "",
		Encoding:  "",

		// Restart policy
		MaxRestarts:     0, // Unlimited
		BackoffInitial:  250 * time.Millisecond,
		BackoffMax:      5 * time.Second,
		BackoffMultiply: 1.7,

		// Observability
		MetricsAddr: "0.0.0.0:17092",
		Verbose:     false,
		LogFormat:   "json",
		LogLevel:    "info",
	}
}
