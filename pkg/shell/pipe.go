package shell

import (
	"errors"
	"fmt"
)

var (
	// ErrEncodingMismatch is returned by Pipe when the two handles decode
	// their output with different encodings.
	ErrEncodingMismatch = errors.New("cannot pipe shells with different encodings")

	// ErrAlreadyStarted is returned by Pipe when either handle has already
	// spawned its process. Pipelines must be assembled before any side runs.
	ErrAlreadyStarted = errors.New("cannot pipe a shell that has already started")
)

// Pipe composes two never-started handles into a new one whose command is
// the shell-level pipeline "<s> | <other>". The pipe is interpreted by the
// shell itself; the two commands run inside a single shell invocation
// rather than being wired together programmatically.
//
// The composed handle uses the shared encoding and takes its environment,
// working directory, executable and logger from the left-hand side. It
// inherits validation if either input requested it.
func (s *Shell) Pipe(other *Shell) (*Shell, error) {
	if s.encoding != other.encoding {
		return nil, fmt.Errorf("%w: %q vs %q", ErrEncodingMismatch, s.encoding, other.encoding)
	}
	if s.started() || other.started() {
		return nil, ErrAlreadyStarted
	}

	combined := New(s.command + " | " + other.command)
	combined.encoding = s.encoding
	combined.env = s.env
	combined.dir = s.dir
	combined.executable = s.executable
	combined.logger = s.logger
	combined.postValidate = s.postValidate || other.postValidate
	return combined, nil
}

func (s *Shell) started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil
}
