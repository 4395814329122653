// Package shell wraps the platform process primitives with a lazily
// spawning, awaitable handle over a single shell invocation.
//
// A Shell is constructed without doing any I/O; the underlying OS process
// is created at most once, by the first operation that needs it (awaiting
// the result, reading a stream, or entering a scoped lifecycle). Output is
// captured through pipes and decoded with a configurable character
// encoding. Teardown is idempotent and guarantees the process is reaped
// even when it has to be killed first.
//
// A handle is single-use: once finalized it cannot be restarted. Within
// one handle, each of the two output streams must be consumed by at most
// one reader at a time; streaming a pipe and awaiting the result both
// drain the same OS pipe and compete for the same bytes.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/randomizedcoder/go-shell-swarm/internal/logging"
)

// state guards both the spawn and the teardown paths.
type state int

const (
	stateNotStarted state = iota
	stateRunning
	stateFinalized
)

// Shell is a handle over one shell command invocation.
//
// The zero value is not usable; construct with New.
type Shell struct {
	command    string
	encoding   string
	env        map[string]string
	dir        string
	executable string
	logger     *slog.Logger

	postValidate bool

	mu         sync.Mutex
	state      state
	cmd        *exec.Cmd
	stdout     io.ReadCloser
	stderr     io.ReadCloser
	startTime  time.Time
	waited     bool
	exitCode   int
	wasStopped bool
}

// Option configures a Shell at construction time.
type Option func(*Shell)

// WithEncoding sets the character encoding used to decode captured output.
// The name is looked up in the IANA character set registry (e.g. "utf-8",
// "cp866", "latin1"). The default is cp866 on Windows and UTF-8 elsewhere.
func WithEncoding(name string) Option {
	return func(s *Shell) { s.encoding = name }
}

// WithEnv adds environment variables for the spawned process, merged over
// the inherited environment. Without this option the process inherits the
// parent environment unchanged.
func WithEnv(env map[string]string) Option {
	return func(s *Shell) { s.env = env }
}

// WithDir overrides the working directory of the spawned process.
func WithDir(dir string) Option {
	return func(s *Shell) { s.dir = dir }
}

// WithExecutable overrides which shell binary interprets the command.
func WithExecutable(path string) Option {
	return func(s *Shell) { s.executable = path }
}

// WithLogger sets the logger used for lifecycle observability messages.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) { s.logger = logger }
}

// New creates a handle for the given shell command line. No process is
// spawned until the first consuming operation.
func New(command string, opts ...Option) *Shell {
	s := &Shell{
		command:    command,
		encoding:   defaultEncodingName(),
		executable: defaultShellPath(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Command returns the shell command line this handle was built for.
func (s *Shell) Command() string { return s.command }

// Encoding returns the name of the configured output encoding.
func (s *Shell) Encoding() string { return s.encoding }

// Validate marks the handle so that a non-zero exit code is promoted to an
// *ExitError when the result is produced. Returns the handle for chaining.
func (s *Shell) Validate() *Shell {
	s.postValidate = true
	return s
}

// WasStopped reports whether teardown had to kill a still-running process.
func (s *Shell) WasStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wasStopped
}

// PID returns the OS process identifier, or MissingProcessPID when the
// process has not been spawned yet.
func (s *Shell) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil || s.cmd.Process == nil {
		return MissingProcessPID
	}
	return s.cmd.Process.Pid
}

// Poll reports, without blocking, whether the process has been spawned and
// its exit status has already been recorded.
func (s *Shell) Poll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil && s.waited
}

// Start makes sure the underlying shell process is running. It is
// idempotent: only the first call spawns; later calls are no-ops.
//
// The context is wired into the process via exec.CommandContext, so
// cancelling it kills the process. Finalize remains the only path that
// guarantees the process is reaped.
func (s *Shell) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(ctx)
}

func (s *Shell) startLocked(ctx context.Context) error {
	if s.cmd != nil {
		return nil
	}

	s.logger.Log(ctx, logging.LevelTrace, "starting_subprocess", "command", s.command)

	cmd := exec.CommandContext(ctx, s.executable, shellCommandFlag(), s.command)
	if s.dir != "" {
		cmd.Dir = s.dir
	}
	if len(s.env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range s.env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	spawnedAt := time.Now()
	if err := cmd.Start(); err != nil {
		// Leave the handle untouched so startTime is only ever recorded
		// together with a live process.
		return fmt.Errorf("start shell %q: %w", s.command, err)
	}
	s.startTime = spawnedAt
	s.cmd = cmd
	s.stdout = stdout
	s.stderr = stderr
	s.state = stateRunning

	s.logger.Debug("subprocess_started", "pid", cmd.Process.Pid)
	return nil
}

// pipes returns the output pipes, spawning the process first if needed.
func (s *Shell) pipes(ctx context.Context) (stdout, stderr io.ReadCloser, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.startLocked(ctx); err != nil {
		return nil, nil, err
	}
	return s.stdout, s.stderr, nil
}

// wait reaps the process at most once and records its exit code.
// Callers must have drained the pipes first.
func (s *Shell) wait() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.waited {
		err := s.cmd.Wait()
		s.waited = true
		s.exitCode = exitCodeOf(err)
	}
	return s.exitCode
}

// exitCodeOf extracts the exit status from a Wait error. A process killed
// by a signal reports -1, matching (*os.ProcessState).ExitCode.
func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Result runs the command to completion and returns the captured output.
//
// It triggers the lazy spawn, drains stdout and stderr concurrently, waits
// for the process to exit, and decodes both buffers with the configured
// encoding. When Validate was requested and the exit code is non-zero, the
// error is an *ExitError carrying the full Result. Finalize always runs
// before Result returns, on success and on failure alike.
func (s *Shell) Result(ctx context.Context) (*Result, error) {
	defer s.Finalize()

	stdout, stderr, err := s.pipes(ctx)
	if err != nil {
		return nil, err
	}

	var (
		wg                       sync.WaitGroup
		stdoutBytes, stderrBytes []byte
		stdoutErr, stderrErr     error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		stdoutBytes, stdoutErr = io.ReadAll(stdout)
	}()
	go func() {
		defer wg.Done()
		stderrBytes, stderrErr = io.ReadAll(stderr)
	}()
	wg.Wait()

	code := s.wait()
	elapsed := time.Since(s.startTime)

	if stdoutErr != nil {
		return nil, fmt.Errorf("drain stdout: %w", stdoutErr)
	}
	if stderrErr != nil {
		return nil, fmt.Errorf("drain stderr: %w", stderrErr)
	}

	enc, err := resolveEncoding(s.encoding)
	if err != nil {
		return nil, err
	}
	outText, err := decode(enc, stdoutBytes)
	if err != nil {
		return nil, err
	}
	errText, err := decode(enc, stderrBytes)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Stdout:   outText,
		Stderr:   errText,
		ExitCode: code,
		Elapsed:  elapsed,
	}
	if s.postValidate {
		if verr := res.Validate(); verr != nil {
			return nil, verr
		}
	}
	return res, nil
}

// With runs fn inside a scoped lifecycle: the process is started on entry
// and finalized on every exit path. The error from fn is propagated
// unchanged; With never swallows it.
func (s *Shell) With(ctx context.Context, fn func(*Shell) error) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	defer s.Finalize()
	return fn(s)
}

// Finalize makes sure the process has been properly reaped. It is a no-op
// after the first call. A still-running process is killed (WasStopped then
// reports true) and the pipe resources are released either way.
//
// Finalizing a handle that never spawned logs a warning and does nothing;
// that is benign misuse, not an error.
func (s *Shell) Finalize() {
	s.mu.Lock()
	if s.state == stateFinalized {
		s.mu.Unlock()
		return
	}
	if s.cmd == nil {
		s.mu.Unlock()
		s.logger.Warn("finalizing_non_started_process", "command", s.command)
		return
	}
	// Claim teardown before releasing the lock so a concurrent Finalize
	// cannot run the kill/drain path a second time.
	s.state = stateFinalized
	cmd := s.cmd
	stdout, stderr := s.stdout, s.stderr
	waited := s.waited
	s.mu.Unlock()

	s.logger.Debug("finalizing_process", "pid", cmd.Process.Pid)

	if !waited {
		s.logger.Log(context.Background(), logging.LevelTrace, "killing_process", "pid", cmd.Process.Pid)
		_ = cmd.Process.Kill()
		s.mu.Lock()
		s.wasStopped = true
		s.mu.Unlock()
	}

	// Drain and close the pipes even when the process was killed, so the
	// OS pipe resources are released. Reads on pipes already closed by a
	// previous Wait fail immediately; that is fine here.
	for _, stream := range []io.ReadCloser{stdout, stderr} {
		if stream == nil {
			continue
		}
		_, _ = io.Copy(io.Discard, stream)
		s.logger.Log(context.Background(), logging.LevelTrace, "closing_stream", "pid", cmd.Process.Pid)
		_ = stream.Close()
	}

	s.wait()
}
