// Package stats provides aggregated run statistics for go-shell-swarm.
//
// This file implements Aggregator, which merges results across all workers:
// run and failure counts, the exit-code distribution, and wall-clock
// duration percentiles (T-Digest).
package stats

import (
	"sync"
	"time"

	"github.com/influxdata/tdigest"

	"github.com/randomizedcoder/go-shell-swarm/pkg/shell"
)

// Snapshot holds metrics across all workers.
//
// Values are computed at the time of the Snapshot() call.
type Snapshot struct {
	// Timestamp when this snapshot was taken
	Timestamp time.Time

	// Run totals
	Runs     int64
	Failures int64

	// Exit code distribution
	ExitCodes map[int]int64

	// Duration distribution
	MinDuration time.Duration
	MaxDuration time.Duration
	AvgDuration time.Duration

	// Percentiles (from T-Digest)
	DurationP50 time.Duration
	DurationP95 time.Duration
	DurationP99 time.Duration
}

// FailureRate returns failures / runs, or 0 before the first run.
func (s *Snapshot) FailureRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.Runs)
}

// Aggregator accumulates completed runs. All methods are safe for
// concurrent use by the supervisor callbacks.
type Aggregator struct {
	mu sync.Mutex

	runs     int64
	failures int64

	exitCodes map[int]int64

	digest *tdigest.TDigest
	minD   time.Duration
	maxD   time.Duration
	totalD time.Duration
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		exitCodes: make(map[int]int64),
		digest:    tdigest.NewWithCompression(100), // ~100 centroids, ~10KB
	}
}

// RecordRun folds one completed run into the aggregate.
func (a *Aggregator) RecordRun(result *shell.Result) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.runs++
	if result.Failed() {
		a.failures++
	}
	a.exitCodes[result.ExitCode]++

	d := result.Elapsed
	a.digest.Add(float64(d.Nanoseconds()), 1)
	a.totalD += d
	if a.runs == 1 || d < a.minD {
		a.minD = d
	}
	if d > a.maxD {
		a.maxD = d
	}
}

// Snapshot returns a copy of the current aggregate state.
func (a *Aggregator) Snapshot() *Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := &Snapshot{
		Timestamp: time.Now(),
		Runs:      a.runs,
		Failures:  a.failures,
		ExitCodes: make(map[int]int64, len(a.exitCodes)),
	}
	for code, count := range a.exitCodes {
		s.ExitCodes[code] = count
	}

	if a.runs > 0 {
		s.MinDuration = a.minD
		s.MaxDuration = a.maxD
		s.AvgDuration = a.totalD / time.Duration(a.runs)
		s.DurationP50 = time.Duration(a.digest.Quantile(0.50))
		s.DurationP95 = time.Duration(a.digest.Quantile(0.95))
		s.DurationP99 = time.Duration(a.digest.Quantile(0.99))
	}
	return s
}
