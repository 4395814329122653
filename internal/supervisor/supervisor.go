package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/randomizedcoder/go-shell-swarm/internal/logging"
	"github.com/randomizedcoder/go-shell-swarm/pkg/shell"
)

// HandleBuilder creates shell handles for workers.
// This interface keeps the supervisor decoupled from how commands are
// configured; one fresh handle is built per attempt, since a handle is
// single-use.
type HandleBuilder interface {
	// BuildShell returns a never-started handle for the given worker.
	BuildShell(workerID int) *shell.Shell

	// Name returns a human-readable name for this command type.
	Name() string
}

// Callbacks contains optional callback functions for supervisor events.
type Callbacks struct {
	// OnStateChange is called when the worker state changes.
	OnStateChange func(workerID int, oldState, newState State)

	// OnStart is called when a worker process starts.
	OnStart func(workerID int, pid int)

	// OnExit is called when a worker process exits.
	OnExit func(workerID int, result *shell.Result)

	// OnRestart is called before a restart attempt.
	OnRestart func(workerID int, attempt int, delay time.Duration)
}

// Supervisor manages the lifecycle of a single shell command worker.
// It handles starting, monitoring, and restarting the command with backoff.
type Supervisor struct {
	workerID  int
	builder   HandleBuilder
	backoff   *Backoff
	logger    *slog.Logger
	callbacks Callbacks
	output    *logging.OutputHandler

	// State management
	state   State
	stateMu sync.RWMutex

	// Configuration
	maxRestarts int // 0 = unlimited
	once        bool
	restarts    int
}

// Config holds configuration for creating a new Supervisor.
type Config struct {
	WorkerID    int
	Builder     HandleBuilder
	Backoff     *Backoff
	Logger      *slog.Logger
	Callbacks   Callbacks
	MaxRestarts int  // 0 = unlimited
	Once        bool // Run a single attempt, never restart
	Verbose     bool
}

// New creates a new Supervisor with the given configuration.
func New(cfg Config) *Supervisor {
	backoff := cfg.Backoff
	if backoff == nil {
		backoff = NewBackoff(cfg.WorkerID, time.Now().UnixNano(), DefaultBackoffConfig())
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Supervisor{
		workerID:    cfg.WorkerID,
		builder:     cfg.Builder,
		backoff:     backoff,
		logger:      logger,
		callbacks:   cfg.Callbacks,
		output:      logging.NewOutputHandler(cfg.WorkerID, logger, cfg.Verbose),
		state:       StateCreated,
		maxRestarts: cfg.MaxRestarts,
		once:        cfg.Once,
	}
}

// Run starts the supervision loop. It blocks until the context is
// cancelled, a single run completes in once mode, or the restart cap is
// reached.
func (s *Supervisor) Run(ctx context.Context) error {
	s.logger.Debug("supervisor_starting", "worker_id", s.workerID, "command", s.builder.Name())

	for {
		// Check if we should stop
		select {
		case <-ctx.Done():
			s.setState(StateStopped)
			s.logger.Debug("supervisor_stopped", "worker_id", s.workerID, "reason", "context_cancelled")
			return ctx.Err()
		default:
		}

		// Check max restarts
		if s.maxRestarts > 0 && s.restarts >= s.maxRestarts {
			s.setState(StateStopped)
			s.logger.Warn("max_restarts_reached",
				"worker_id", s.workerID,
				"restarts", s.restarts,
				"max", s.maxRestarts,
			)
			return errors.New("max restarts reached")
		}

		// Run the command once
		result, err := s.runOnce(ctx)
		if ctx.Err() != nil {
			// Context cancelled during execution
			s.setState(StateStopped)
			return ctx.Err()
		}

		var uptime time.Duration
		exitCode := -1
		if err != nil {
			s.logger.Error("run_failed", "worker_id", s.workerID, "error", err)
		} else {
			uptime = result.Elapsed
			exitCode = result.ExitCode
			if s.callbacks.OnExit != nil {
				s.callbacks.OnExit(s.workerID, result)
			}
			s.logger.Debug("worker_exited",
				"worker_id", s.workerID,
				"exit_code", exitCode,
				"uptime", uptime,
			)
		}

		if s.once {
			s.setState(StateStopped)
			return err
		}

		// Stable runs and clean exits reset the backoff curve
		if ShouldReset(uptime, exitCode) {
			s.backoff.Reset()
		}

		s.stateMu.Lock()
		s.restarts++
		attempt := s.restarts
		s.stateMu.Unlock()

		delay := s.backoff.Next()
		if s.callbacks.OnRestart != nil {
			s.callbacks.OnRestart(s.workerID, attempt, delay)
		}
		s.setState(StateBackoff)
		s.logger.Debug("worker_backoff",
			"worker_id", s.workerID,
			"attempt", attempt,
			"delay", delay,
		)

		select {
		case <-ctx.Done():
			s.setState(StateStopped)
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// runOnce executes one attempt: builds a fresh handle, streams its output
// while it runs, and returns the completed result. The handle is finalized
// on every path.
func (s *Supervisor) runOnce(ctx context.Context) (*shell.Result, error) {
	s.setState(StateStarting)

	sh := s.builder.BuildShell(s.workerID)
	defer sh.Finalize()

	if err := sh.Start(ctx); err != nil {
		return nil, err
	}

	s.setState(StateRunning)
	if s.callbacks.OnStart != nil {
		s.callbacks.OnStart(s.workerID, sh.PID())
	}

	// Consume both streams line by line until the process closes them.
	// Stderr feeds the output handler; stdout is logged only when verbose.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for line, err := range sh.StdoutLines(ctx, true) {
			if err != nil {
				s.logger.Debug("stdout_read_error", "worker_id", s.workerID, "error", err)
				return
			}
			s.logger.Debug("command_stdout", "worker_id", s.workerID, "line", line)
		}
	}()
	go func() {
		defer wg.Done()
		for line, err := range sh.StderrLines(ctx, true) {
			if err != nil {
				s.logger.Debug("stderr_read_error", "worker_id", s.workerID, "error", err)
				return
			}
			s.output.HandleLine(line)
		}
	}()
	wg.Wait()

	// Streams are at EOF; Result just reaps the process and fills in the
	// exit code and elapsed time.
	return sh.Result(ctx)
}

// setState updates the state and fires the state-change callback.
func (s *Supervisor) setState(newState State) {
	s.stateMu.Lock()
	oldState := s.state
	s.state = newState
	s.stateMu.Unlock()

	if oldState != newState && s.callbacks.OnStateChange != nil {
		s.callbacks.OnStateChange(s.workerID, oldState, newState)
	}
}

// State returns the current worker state.
func (s *Supervisor) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Restarts returns how many restarts have occurred.
func (s *Supervisor) Restarts() int {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.restarts
}

// RecentStderr returns the most recent buffered stderr lines.
func (s *Supervisor) RecentStderr(n int) []string {
	return s.output.RecentLines(n)
}
