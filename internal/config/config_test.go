package config

import (
	"strings"
	"testing"
	"time"
)

// Test envList type
func TestEnvList_String(t *testing.T) {
	testCases := []struct {
		input    envList
		expected string
	}{
		{envList{}, ""},
		{envList{"FOO=bar"}, "FOO=bar"},
		{envList{"FOO=bar", "BAZ=qux"}, "FOO=bar, BAZ=qux"},
	}

	for _, tc := range testCases {
		result := tc.input.String()
		if result != tc.expected {
			t.Errorf("String() = %q, want %q", result, tc.expected)
		}
	}
}

func TestEnvList_Set(t *testing.T) {
	var e envList

	// Set first value
	err := e.Set("FOO=bar")
	if err != nil {
		t.Errorf("Set returned error: %v", err)
	}
	if len(e) != 1 || e[0] != "FOO=bar" {
		t.Errorf("After first Set: %v", e)
	}

	// Set second value (should append)
	err = e.Set("BAZ=qux")
	if err != nil {
		t.Errorf("Set returned error: %v", err)
	}
	if len(e) != 2 || e[1] != "BAZ=qux" {
		t.Errorf("After second Set: %v", e)
	}

	// Missing '=' is rejected
	if err := e.Set("NOEQUALS"); err == nil {
		t.Error("Set without '=' should fail")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Workers", cfg.Workers, 1},
		{"RampRate", cfg.RampRate, 5},
		{"RampJitter", cfg.RampJitter, 200 * time.Millisecond},
		{"Duration", cfg.Duration, time.Duration(0)},
		{"MaxRestarts", cfg.MaxRestarts, 0},
		{"BackoffInitial", cfg.BackoffInitial, 250 * time.Millisecond},
		{"BackoffMax", cfg.BackoffMax, 5 * time.Second},
		{"BackoffMultiply", cfg.BackoffMultiply, 1.7},
		{"LogFormat", cfg.LogFormat, "json"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"MetricsAddr", cfg.MetricsAddr, "0.0.0.0:17092"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestValidate_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Command = "echo hello"

	if err := Validate(cfg); err != nil {
		t.Errorf("default config with command should validate, got: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			"missing command",
			func(c *Config) { c.Command = "" },
			"command",
		},
		{
			"zero workers",
			func(c *Config) { c.Workers = 0 },
			"workers",
		},
		{
			"zero ramp rate",
			func(c *Config) { c.RampRate = 0 },
			"ramp_rate",
		},
		{
			"bad env entry",
			func(c *Config) { c.Env = []string{"NOEQUALS"} },
			"env",
		},
		{
			"bad log format",
			func(c *Config) { c.LogFormat = "xml" },
			"log_format",
		},
		{
			"zero backoff initial",
			func(c *Config) { c.BackoffInitial = 0 },
			"backoff_initial",
		},
		{
			"backoff max below initial",
			func(c *Config) { c.BackoffMax = c.BackoffInitial / 2 },
			"backoff_max",
		},
		{
			"backoff multiplier below one",
			func(c *Config) { c.BackoffMultiply = 0.5 },
			"backoff_multiply",
		},
		{
			"negative max restarts",
			func(c *Config) { c.MaxRestarts = -1 },
			"max_restarts",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Command = "echo hello"
			tc.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestEnvMap(t *testing.T) {
	cfg := &Config{Env: []string{"FOO=bar", "BAZ=qux=quux", "FOO=override"}}

	m := cfg.EnvMap()
	if m["FOO"] != "override" {
		t.Errorf(`EnvMap()["FOO"] = %q, want "override"`, m["FOO"])
	}
	if m["BAZ"] != "qux=quux" {
		t.Errorf(`EnvMap()["BAZ"] = %q, want "qux=quux"`, m["BAZ"])
	}

	if (&Config{}).EnvMap() != nil {
		t.Error("EnvMap of empty Env should be nil")
	}
}
