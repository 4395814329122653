// Package main provides the go-shell-swarm CLI entry point.
//
// go-shell-swarm is a tool that supervises a swarm of shell command
// workers: it ramps them up at a configurable rate, restarts them with
// backoff when they exit, and exposes run statistics via Prometheus.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/randomizedcoder/go-shell-swarm/internal/config"
	"github.com/randomizedcoder/go-shell-swarm/internal/logging"
	"github.com/randomizedcoder/go-shell-swarm/internal/orchestrator"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/go-shell-swarm
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Handle version flag early (before flag parsing)
	if len(os.Args) > 1 {
		arg := os.Args[1]
		if arg == "-version" || arg == "--version" || arg == "version" {
			fmt.Printf("go-shell-swarm %s\n", version)
			return 0
		}
	}

	// Parse command-line flags
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return 1
	}

	// Initialize logger
	// When TUI is enabled, suppress logs to avoid interfering with TUI rendering
	var logger *slog.Logger
	if cfg.TUIEnabled {
		logger = logging.NewLoggerWithWriter(io.Discard, "json", "info")
	} else {
		logger = logging.NewLogger(cfg.LogFormat, cfg.LogLevel, cfg.Verbose)
	}
	logging.SetDefault(logger)

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	// Handle -print-cmd mode
	if cfg.PrintCmd {
		printShellCommand(cfg)
		return 0
	}

	// Log startup
	logger.Info("starting",
		"version", version,
		"workers", cfg.Workers,
		"ramp_rate", cfg.RampRate,
		"command", cfg.Command,
		"shell", cfg.EffectiveShell(),
		"metrics_addr", cfg.MetricsAddr,
	)

	// Print startup banner
	if !cfg.TUIEnabled {
		printBanner(cfg)
	}

	// Create and run orchestrator
	orch := orchestrator.New(cfg, version, logger)
	if err := orch.Run(context.Background()); err != nil {
		logger.Error("orchestrator_failed", "error", err)
		return 1
	}

	return 0
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config) {
	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                         go-shell-swarm                            ║")
	fmt.Println("║          Supervised Shell Command Process Orchestration           ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Target:      %d workers at %d/sec\n", cfg.Workers, cfg.RampRate)
	fmt.Printf("  Command:     %s\n", cfg.Command)
	fmt.Printf("  Shell:       %s\n", cfg.EffectiveShell())
	fmt.Printf("  Metrics:     http://%s/metrics\n", cfg.MetricsAddr)
	if cfg.Once {
		fmt.Println("  Mode:        once (no restarts)")
	}
	if cfg.Duration > 0 {
		fmt.Printf("  Duration:    %s\n", cfg.Duration)
	}
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop.")
	fmt.Println()
}

// printShellCommand prints the invocation that would be run for each worker.
func printShellCommand(cfg *config.Config) {
	fmt.Println("# Invocation that would be run for each worker:")
	fmt.Println()
	for _, kv := range cfg.Env {
		fmt.Printf("%s \\\n", kv)
	}
	fmt.Printf("%s -c %q\n", cfg.EffectiveShell(), cfg.Command)
}
