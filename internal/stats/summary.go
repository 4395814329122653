// Package stats provides aggregated run statistics for go-shell-swarm.
//
// This file implements the exit summary formatter which displays
// statistics at program exit.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SummaryConfig holds configuration for summary formatting.
type SummaryConfig struct {
	// Command is the supervised shell command line
	Command string

	// TargetWorkers is the number of workers that were requested
	TargetWorkers int

	// Duration is the total run duration
	Duration time.Duration

	// MetricsAddr is the Prometheus metrics endpoint address
	MetricsAddr string

	// TotalStarts is the total number of worker starts
	TotalStarts int64

	// TotalRestarts is the total number of worker restarts
	TotalRestarts int64
}

// FormatExitSummary formats aggregated stats for display at program exit.
func FormatExitSummary(snap *Snapshot, cfg SummaryConfig) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("═══════════════════════════════════════════════════════════════\n")
	b.WriteString("  go-shell-swarm exit summary\n")
	b.WriteString("═══════════════════════════════════════════════════════════════\n")

	// Run information
	fmt.Fprintf(&b, "  Command:      %s\n", cfg.Command)
	fmt.Fprintf(&b, "  Workers:      %d\n", cfg.TargetWorkers)
	fmt.Fprintf(&b, "  Ran for:      %s\n", cfg.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "  Starts:       %d (restarts: %d)\n", cfg.TotalStarts, cfg.TotalRestarts)

	if snap == nil || snap.Runs == 0 {
		b.WriteString("\n  No completed runs.\n")
		if cfg.MetricsAddr != "" {
			fmt.Fprintf(&b, "\n  Metrics: http://%s/metrics\n", cfg.MetricsAddr)
		}
		return b.String()
	}

	// Run statistics
	b.WriteString("\n  Runs\n")
	fmt.Fprintf(&b, "    Completed:  %d\n", snap.Runs)
	fmt.Fprintf(&b, "    Failed:     %d (%.1f%%)\n", snap.Failures, snap.FailureRate()*100)

	// Exit code distribution, sorted for stable output
	codes := make([]int, 0, len(snap.ExitCodes))
	for code := range snap.ExitCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	b.WriteString("    Exit codes:")
	for _, code := range codes {
		fmt.Fprintf(&b, " %d×%d", code, snap.ExitCodes[code])
	}
	b.WriteString("\n")

	// Duration percentiles
	b.WriteString("\n  Duration\n")
	fmt.Fprintf(&b, "    min/avg/max: %s / %s / %s\n",
		snap.MinDuration.Round(time.Millisecond),
		snap.AvgDuration.Round(time.Millisecond),
		snap.MaxDuration.Round(time.Millisecond),
	)
	fmt.Fprintf(&b, "    p50/p95/p99: %s / %s / %s\n",
		snap.DurationP50.Round(time.Millisecond),
		snap.DurationP95.Round(time.Millisecond),
		snap.DurationP99.Round(time.Millisecond),
	)

	if cfg.MetricsAddr != "" {
		fmt.Fprintf(&b, "\n  Metrics: http://%s/metrics\n", cfg.MetricsAddr)
	}

	return b.String()
}
