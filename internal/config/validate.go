package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing the problem.
func Validate(cfg *Config) error {
	var errs []error

	// A command is required (unless -print-cmd without one)
	if strings.TrimSpace(cfg.Command) == "" && !cfg.PrintCmd {
		errs = append(errs, ValidationError{
			Field:   "command",
			Message: "a shell command is required",
		})
	}

	// Workers must be positive
	if cfg.Workers < 1 {
		errs = append(errs, ValidationError{
			Field:   "workers",
			Message: "must be at least 1",
		})
	}

	// Ramp rate must be positive
	if cfg.RampRate < 1 {
		errs = append(errs, ValidationError{
			Field:   "ramp_rate",
			Message: "must be at least 1",
		})
	}

	// Env entries must be KEY=VALUE
	for _, kv := range cfg.Env {
		key, _, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			errs = append(errs, ValidationError{
				Field:   "env",
				Message: fmt.Sprintf("expected KEY=VALUE, got %q", kv),
			})
		}
	}

	// Log format must be valid
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be json or text (got %q)", cfg.LogFormat),
		})
	}

	// Backoff policy sanity
	if cfg.BackoffInitial <= 0 {
		errs = append(errs, ValidationError{
			Field:   "backoff_initial",
			Message: "must be positive",
		})
	}
	if cfg.BackoffMax < cfg.BackoffInitial {
		errs = append(errs, ValidationError{
			Field:   "backoff_max",
			Message: "must be >= backoff_initial",
		})
	}
	if cfg.BackoffMultiply < 1.0 {
		errs = append(errs, ValidationError{
			Field:   "backoff_multiply",
			Message: "must be >= 1.0",
		})
	}

	// Max restarts cannot be negative
	if cfg.MaxRestarts < 0 {
		errs = append(errs, ValidationError{
			Field:   "max_restarts",
			Message: "cannot be negative",
		})
	}

	return errors.Join(errs...)
}

// EnvMap converts the KEY=VALUE env entries to a map. Later entries win.
func (c *Config) EnvMap() map[string]string {
	if len(c.Env) == 0 {
		return nil
	}
	m := make(map[string]string, len(c.Env))
	for _, kv := range c.Env {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		m[key] = value
	}
	return m
}
