package shell

import (
	"fmt"
	"strings"
	"time"
)

// Result is the immutable record of one finished shell invocation.
type Result struct {
	// Stdout and Stderr hold the fully decoded captured output.
	Stdout string
	Stderr string

	// ExitCode is the process exit status. -1 means killed by a signal.
	ExitCode int

	// Elapsed is the wall-clock time between spawn and completion.
	Elapsed time.Duration
}

// Failed reports whether the command exited with a non-zero status.
func (r *Result) Failed() bool {
	return r.ExitCode != 0
}

// Validate returns an *ExitError when the command failed, nil otherwise.
func (r *Result) Validate() error {
	if r.Failed() {
		return &ExitError{Result: r}
	}
	return nil
}

// ExitError is returned from validated runs when the process exited with a
// non-zero status. It carries the full Result for diagnostics.
type ExitError struct {
	Result *Result
}

const indentPrefix = "    "

func (e *ExitError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "shell command failed with exit code %d", e.Result.ExitCode)
	if e.Result.Stdout != "" {
		b.WriteString("\n" + indentPrefix + "PROCESS STDOUT:\n")
		b.WriteString(indent(e.Result.Stdout, indentPrefix+indentPrefix))
	}
	if e.Result.Stderr != "" {
		b.WriteString("\n" + indentPrefix + "PROCESS STDERR:\n")
		b.WriteString(indent(e.Result.Stderr, indentPrefix+indentPrefix))
	}
	return b.String()
}

// indent prefixes every non-empty line of s.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
