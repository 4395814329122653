// Package metrics provides Prometheus metrics for go-shell-swarm.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CollectorConfig holds configuration for creating a Collector.
type CollectorConfig struct {
	Version string
	Command string
	Shell   string
	Workers int
}

// Collector owns the Prometheus metrics for a swarm run.
type Collector struct {
	info          *prometheus.GaugeVec
	targetWorkers prometheus.Gauge
	activeWorkers prometheus.Gauge
	rampProgress  prometheus.Gauge

	startsTotal   prometheus.Counter
	restartsTotal prometheus.Counter
	exitsTotal    *prometheus.CounterVec
	runDuration   prometheus.Histogram
}

// NewCollector creates a Collector registered with the default registerer.
func NewCollector(cfg CollectorConfig) *Collector {
	return NewCollectorWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a Collector registered with the given
// registerer. Tests use this with a fresh registry.
func NewCollectorWithRegistry(cfg CollectorConfig, registry prometheus.Registerer) *Collector {
	c := &Collector{
		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "shell_swarm_info",
				Help: "Information about the swarm run (value always 1)",
			},
			[]string{"version", "command", "shell"},
		),
		targetWorkers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_swarm_target_workers",
				Help: "Target number of workers to reach",
			},
		),
		activeWorkers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_swarm_active_workers",
				Help: "Currently running workers",
			},
		),
		rampProgress: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_swarm_ramp_progress",
				Help: "Worker ramp-up progress (0.0 to 1.0)",
			},
		),
		startsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_swarm_starts_total",
				Help: "Total worker process starts",
			},
		),
		restartsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_swarm_restarts_total",
				Help: "Total worker restarts",
			},
		),
		exitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_swarm_exits_total",
				Help: "Total process exits by exit code",
			},
			[]string{"exit_code"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shell_swarm_run_duration_seconds",
				Help:    "Wall-clock duration of completed runs",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms .. ~32s
			},
		),
	}

	registry.MustRegister(
		c.info,
		c.targetWorkers,
		c.activeWorkers,
		c.rampProgress,
		c.startsTotal,
		c.restartsTotal,
		c.exitsTotal,
		c.runDuration,
	)

	c.info.WithLabelValues(cfg.Version, cfg.Command, cfg.Shell).Set(1)
	c.targetWorkers.Set(float64(cfg.Workers))

	return c
}

// WorkerStarted records a worker process start.
func (c *Collector) WorkerStarted() {
	c.startsTotal.Inc()
}

// WorkerRestarted records a worker restart attempt.
func (c *Collector) WorkerRestarted() {
	c.restartsTotal.Inc()
}

// RecordExit records a completed run.
func (c *Collector) RecordExit(exitCode int, elapsed time.Duration) {
	c.exitsTotal.WithLabelValues(strconv.Itoa(exitCode)).Inc()
	c.runDuration.Observe(elapsed.Seconds())
}

// SetActiveWorkers updates the active worker gauge.
func (c *Collector) SetActiveWorkers(n int) {
	c.activeWorkers.Set(float64(n))
}

// SetRampProgress updates the ramp-up progress gauge (0.0 to 1.0).
func (c *Collector) SetRampProgress(progress float64) {
	c.rampProgress.Set(progress)
}
