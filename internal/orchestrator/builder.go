package orchestrator

import (
	"log/slog"

	"github.com/randomizedcoder/go-shell-swarm/internal/config"
	"github.com/randomizedcoder/go-shell-swarm/pkg/shell"
)

// commandBuilder builds one-shot shell handles from the run configuration.
// A handle is single-use, so the supervisor asks for a fresh one per
// attempt.
type commandBuilder struct {
	command string
	opts    []shell.Option
}

func newCommandBuilder(cfg *config.Config, logger *slog.Logger) *commandBuilder {
	opts := []shell.Option{shell.WithLogger(logger)}

	if cfg.ShellPath != "" {
		opts = append(opts, shell.WithExecutable(cfg.ShellPath))
	}
	if cfg.WorkDir != "" {
		opts = append(opts, shell.WithDir(cfg.WorkDir))
	}
	if cfg.Encoding != "" {
		opts = append(opts, shell.WithEncoding(cfg.Encoding))
	}
	if env := cfg.EnvMap(); len(env) > 0 {
		opts = append(opts, shell.WithEnv(env))
	}

	return &commandBuilder{
		command: cfg.Command,
		opts:    opts,
	}
}

// BuildShell returns a never-started handle for the given worker.
func (b *commandBuilder) BuildShell(workerID int) *shell.Shell {
	return shell.New(b.command, b.opts...)
}

// Name returns the supervised command line.
func (b *commandBuilder) Name() string {
	return b.command
}
