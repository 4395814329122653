// Package orchestrator coordinates the components of a swarm run.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/go-shell-swarm/internal/config"
	"github.com/randomizedcoder/go-shell-swarm/internal/metrics"
	"github.com/randomizedcoder/go-shell-swarm/internal/preflight"
	"github.com/randomizedcoder/go-shell-swarm/internal/stats"
	"github.com/randomizedcoder/go-shell-swarm/internal/supervisor"
	"github.com/randomizedcoder/go-shell-swarm/internal/tui"
	"github.com/randomizedcoder/go-shell-swarm/pkg/shell"
)

// Orchestrator coordinates all components for a swarm run.
type Orchestrator struct {
	config *config.Config
	logger *slog.Logger

	builder       *commandBuilder
	metrics       *metrics.Collector
	metricsServer *metrics.Server
	aggregator    *stats.Aggregator

	supervisors   []*supervisor.Supervisor
	supervisorsMu sync.Mutex

	startsTotal   atomic.Int64
	restartsTotal atomic.Int64

	startTime time.Time
}

// New creates a new Orchestrator with the given configuration.
func New(cfg *config.Config, version string, logger *slog.Logger) *Orchestrator {
	collector := metrics.NewCollector(metrics.CollectorConfig{
		Version: version,
		Command: cfg.Command,
		Shell:   cfg.EffectiveShell(),
		Workers: cfg.Workers,
	})

	return &Orchestrator{
		config:        cfg,
		logger:        logger,
		builder:       newCommandBuilder(cfg, logger),
		metrics:       collector,
		metricsServer: metrics.NewServer(cfg.MetricsAddr, logger),
		aggregator:    stats.NewAggregator(),
	}
}

// Run executes the swarm. It blocks until completion or signal.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.startTime = time.Now()

	// Run preflight checks
	if !o.config.SkipPreflight {
		result := preflight.RunAll(o.config.Workers, o.config.EffectiveShell())
		preflight.PrintResults(result)
		if !result.Passed {
			return fmt.Errorf("preflight checks failed (use -skip-preflight to override)")
		}
	}

	// Start metrics server
	if err := o.metricsServer.Start(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	// Setup signal handling
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	// Start ramp-up
	o.logger.Info("ramp_starting",
		"workers", o.config.Workers,
		"rate", o.config.RampRate,
		"command", o.config.Command,
	)

	var workersWG sync.WaitGroup
	go o.rampUp(ctx, &workersWG)

	// Setup duration timer if configured
	var durationTimer <-chan time.Time
	if o.config.Duration > 0 {
		durationTimer = time.After(o.config.Duration)
	}

	// Optional live dashboard. The TUI owns the terminal until it quits.
	var program *tea.Program
	tuiDone := make(chan struct{})
	if o.config.TUIEnabled {
		program = tea.NewProgram(tui.New(tui.Config{
			TargetWorkers: o.config.Workers,
			Command:       o.config.Command,
			MetricsAddr:   o.config.MetricsAddr,
			StatsSource:   o,
		}), tea.WithAltScreen())

		go func() {
			defer close(tuiDone)
			if _, err := program.Run(); err != nil {
				o.logger.Error("tui_error", "error", err)
			}
		}()
	}

	// Wait for completion signal
	select {
	case sig := <-sigCh:
		o.logger.Info("received_signal", "signal", sig.String())
	case <-durationTimer:
		o.logger.Info("duration_elapsed", "duration", o.config.Duration.String())
	case <-ctx.Done():
		o.logger.Info("context_cancelled")
	case <-tuiDoneOrNever(o.config.TUIEnabled, tuiDone):
		o.logger.Info("tui_quit")
	}

	// Cancel context to stop all workers
	cancel()

	if program != nil {
		tui.SendQuit(program)
		<-tuiDone
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := o.waitWorkers(shutdownCtx, &workersWG); err != nil {
		o.logger.Warn("shutdown_incomplete", "error", err)
	}

	if err := o.metricsServer.Shutdown(shutdownCtx); err != nil {
		o.logger.Warn("metrics_server_shutdown_error", "error", err)
	}

	// Print exit summary
	fmt.Println(o.exitSummary())

	return nil
}

// rampUp starts workers at the configured rate.
func (o *Orchestrator) rampUp(ctx context.Context, wg *sync.WaitGroup) {
	for i := 0; i < o.config.Workers; i++ {
		// Check for cancellation
		select {
		case <-ctx.Done():
			o.logger.Info("ramp_cancelled", "started", i, "target", o.config.Workers)
			return
		default:
		}

		// Wait according to ramp schedule. The first worker starts
		// immediately.
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(o.rampDelay()):
			}
		}

		o.startWorker(ctx, i, wg)
		o.metrics.SetRampProgress(float64(i+1) / float64(o.config.Workers))

		// Log progress periodically
		if (i+1)%10 == 0 || i == o.config.Workers-1 {
			o.logger.Info("ramp_progress",
				"started", i+1,
				"target", o.config.Workers,
				"active", o.activeWorkers(),
			)
		}
	}

	o.logger.Info("ramp_complete",
		"workers", o.config.Workers,
		"active", o.activeWorkers(),
	)
}

// rampDelay returns the pause before the next worker start: the base
// interval from the ramp rate plus uniform jitter to avoid thundering
// herds.
func (o *Orchestrator) rampDelay() time.Duration {
	base := time.Second / time.Duration(o.config.RampRate)
	if o.config.RampJitter <= 0 {
		return base
	}
	return base + time.Duration(rand.Int63n(int64(o.config.RampJitter)))
}

// startWorker creates a supervisor for one worker and runs it in a
// goroutine.
func (o *Orchestrator) startWorker(ctx context.Context, workerID int, wg *sync.WaitGroup) {
	sup := supervisor.New(supervisor.Config{
		WorkerID: workerID,
		Builder:  o.builder,
		Backoff: supervisor.NewBackoff(workerID, time.Now().UnixNano(), supervisor.BackoffConfig{
			Initial:    o.config.BackoffInitial,
			Max:        o.config.BackoffMax,
			Multiplier: o.config.BackoffMultiply,
			JitterPct:  0.4,
		}),
		Logger: o.logger,
		Callbacks: supervisor.Callbacks{
			OnStateChange: o.onStateChange,
			OnStart:       o.onStart,
			OnExit:        o.onExit,
			OnRestart:     o.onRestart,
		},
		MaxRestarts: o.config.MaxRestarts,
		Once:        o.config.Once,
		Verbose:     o.config.Verbose,
	})

	o.supervisorsMu.Lock()
	o.supervisors = append(o.supervisors, sup)
	o.supervisorsMu.Unlock()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := sup.Run(ctx); err != nil && ctx.Err() == nil {
			o.logger.Warn("worker_finished", "worker_id", workerID, "error", err)
		}
	}()
}

// waitWorkers waits for all worker goroutines, bounded by ctx.
func (o *Orchestrator) waitWorkers(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for workers: %w", ctx.Err())
	}
}

// tuiDoneOrNever returns a channel that never fires when the TUI is
// disabled, so the completion select has a stable shape.
func tuiDoneOrNever(enabled bool, done chan struct{}) <-chan struct{} {
	if enabled {
		return done
	}
	return nil
}

// Callback handlers

func (o *Orchestrator) onStateChange(workerID int, oldState, newState supervisor.State) {
	o.metrics.SetActiveWorkers(o.activeWorkers())
}

func (o *Orchestrator) onStart(workerID int, pid int) {
	o.startsTotal.Add(1)
	o.metrics.WorkerStarted()

	if o.config.Verbose {
		o.logger.Debug("worker_process_started", "worker_id", workerID, "pid", pid)
	}
}

func (o *Orchestrator) onExit(workerID int, result *shell.Result) {
	o.metrics.RecordExit(result.ExitCode, result.Elapsed)
	o.aggregator.RecordRun(result)
}

func (o *Orchestrator) onRestart(workerID int, attempt int, delay time.Duration) {
	o.restartsTotal.Add(1)
	o.metrics.WorkerRestarted()

	if o.config.Verbose {
		o.logger.Debug("worker_restart_scheduled",
			"worker_id", workerID,
			"attempt", attempt,
			"delay", delay.String(),
		)
	}
}

// activeWorkers counts supervisors currently in the Running state.
func (o *Orchestrator) activeWorkers() int {
	o.supervisorsMu.Lock()
	defer o.supervisorsMu.Unlock()

	n := 0
	for _, sup := range o.supervisors {
		if sup.State() == supervisor.StateRunning {
			n++
		}
	}
	return n
}

// exitSummary renders the end-of-run report.
func (o *Orchestrator) exitSummary() string {
	return stats.FormatExitSummary(o.aggregator.Snapshot(), stats.SummaryConfig{
		Command:       o.config.Command,
		TargetWorkers: o.config.Workers,
		Duration:      time.Since(o.startTime),
		MetricsAddr:   o.config.MetricsAddr,
		TotalStarts:   o.startsTotal.Load(),
		TotalRestarts: o.restartsTotal.Load(),
	})
}

// =============================================================================
// Dashboard state (tui.StatsSource)
// =============================================================================

// StatsSnapshot returns the aggregated run statistics.
func (o *Orchestrator) StatsSnapshot() *stats.Snapshot {
	return o.aggregator.Snapshot()
}

// WorkerStates returns a count of supervisors per state.
func (o *Orchestrator) WorkerStates() map[supervisor.State]int {
	o.supervisorsMu.Lock()
	defer o.supervisorsMu.Unlock()

	states := make(map[supervisor.State]int, 5)
	for _, sup := range o.supervisors {
		states[sup.State()]++
	}
	return states
}

// TotalStarts returns the total number of worker process starts.
func (o *Orchestrator) TotalStarts() int64 {
	return o.startsTotal.Load()
}

// TotalRestarts returns the total number of worker restarts.
func (o *Orchestrator) TotalRestarts() int64 {
	return o.restartsTotal.Load()
}

// Metrics returns the metrics collector for external access.
func (o *Orchestrator) Metrics() *metrics.Collector {
	return o.metrics
}
