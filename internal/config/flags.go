package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// envList is a custom flag type for repeatable -env flags.
type envList []string

func (e *envList) String() string {
	return strings.Join(*e, ", ")
}

func (e *envList) Set(value string) error {
	if !strings.Contains(value, "=") {
		return fmt.Errorf("expected KEY=VALUE, got %q", value)
	}
	*e = append(*e, value)
	return nil
}

// ParseFlags parses command-line flags and returns a Config.
// Returns an error if required arguments are missing or invalid.
func ParseFlags() (*Config, error) {
	cfg := DefaultConfig()
	var env envList

	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `go-shell-swarm - concurrent shell command execution with supervision

Usage:
  go-shell-swarm [flags] <COMMAND>

Orchestration Flags:
`)
		// Print flags by category
		printFlagCategory([]string{"workers", "ramp-rate", "ramp-jitter", "duration", "once"})

		fmt.Fprintf(os.Stderr, "\nShell:\n")
		printFlagCategory([]string{"shell", "dir", "env", "encoding"})

		fmt.Fprintf(os.Stderr, "\nRestart Policy:\n")
		printFlagCategory([]string{"max-restarts", "backoff-initial", "backoff-max", "backoff-multiply"})

		fmt.Fprintf(os.Stderr, "\nObservability:\n")
		printFlagCategory([]string{"metrics", "v", "log-format", "log-level", "tui"})

		fmt.Fprintf(os.Stderr, "\nDiagnostics:\n")
		printFlagCategory([]string{"print-cmd", "skip-preflight"})

		fmt.Fprintf(os.Stderr, `
Examples:
  # Run one command to completion
  go-shell-swarm -once 'du -sh /var/log'

  # Keep 20 workers hammering an endpoint, live dashboard
  go-shell-swarm -workers 20 -tui 'curl -sf http://localhost:8080/health'

  # Batch run with environment overrides
  go-shell-swarm -once -workers 4 -env REGION=eu-west-1 './backup.sh'

`)
	}

	// Orchestration flags
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of concurrent workers")
	flag.IntVar(&cfg.RampRate, "ramp-rate", cfg.RampRate, "Workers to start per second")
	flag.DurationVar(&cfg.RampJitter, "ramp-jitter", cfg.RampJitter, "Random jitter per worker start")
	flag.DurationVar(&cfg.Duration, "duration", cfg.Duration, "Run duration (0 = forever)")
	flag.BoolVar(&cfg.Once, "once", cfg.Once, "Run each worker a single time, no restarts")

	// Shell
	flag.StringVar(&cfg.ShellPath, "shell", cfg.ShellPath, "Shell executable (default: platform shell)")
	flag.StringVar(&cfg.WorkDir, "dir", cfg.WorkDir, "Working directory for spawned commands")
	flag.Var(&env, "env", "Extra environment variable KEY=VALUE (can repeat)")
	flag.StringVar(&cfg.Encoding, "encoding", cfg.Encoding, "Output encoding by IANA name (default: platform encoding)")

	// Restart policy
	flag.IntVar(&cfg.MaxRestarts, "max-restarts", cfg.MaxRestarts, "Max restarts per worker (0 = unlimited)")
	flag.DurationVar(&cfg.BackoffInitial, "backoff-initial", cfg.BackoffInitial, "Initial restart backoff delay")
	flag.DurationVar(&cfg.BackoffMax, "backoff-max", cfg.BackoffMax, "Maximum restart backoff delay")
	flag.Float64Var(&cfg.BackoffMultiply, "backoff-multiply", cfg.BackoffMultiply, "Backoff multiplier per attempt")

	// Observability
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics address")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, `Log level: "trace", "debug", "info", "warn", "error"`)
	flag.BoolVar(&cfg.TUIEnabled, "tui", cfg.TUIEnabled, "Show live terminal dashboard")

	// Diagnostics
	flag.BoolVar(&cfg.PrintCmd, "print-cmd", cfg.PrintCmd, "Print the composed shell invocation and exit")
	flag.BoolVar(&cfg.SkipPreflight, "skip-preflight", cfg.SkipPreflight, "Skip preflight checks")

	flag.Parse()

	cfg.Env = env

	// Positional argument: the shell command line
	if flag.NArg() > 0 {
		cfg.Command = strings.Join(flag.Args(), " ")
	}

	return cfg, nil
}

// printFlagCategory prints usage lines for the named flags.
func printFlagCategory(names []string) {
	for _, name := range names {
		f := flag.Lookup(name)
		if f == nil {
			continue
		}
		fmt.Fprintf(os.Stderr, "  -%-18s %s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "0s" {
			fmt.Fprintf(os.Stderr, " (default: %s)", f.DefValue)
		}
		fmt.Fprintln(os.Stderr)
	}
}
