package shell

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"iter"
	"strings"
)

// StdoutLines returns a lazy iterator over decoded stdout lines. It
// triggers the lazy spawn if the process is not running yet and ends when
// the stream reaches end-of-data, typically at process exit.
//
// When strip is true the trailing platform line separator is removed from
// each line before decoding; when false it is preserved.
//
// Do not combine streaming a pipe with Result on the same handle while the
// process is producing output: both drain the same OS pipe.
func (s *Shell) StdoutLines(ctx context.Context, strip bool) iter.Seq2[string, error] {
	return s.lines(ctx, strip, func(stdout, _ io.ReadCloser) io.Reader { return stdout })
}

// StderrLines is StdoutLines for the standard error stream.
func (s *Shell) StderrLines(ctx context.Context, strip bool) iter.Seq2[string, error] {
	return s.lines(ctx, strip, func(_, stderr io.ReadCloser) io.Reader { return stderr })
}

func (s *Shell) lines(ctx context.Context, strip bool, pick func(stdout, stderr io.ReadCloser) io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stdout, stderr, err := s.pipes(ctx)
		if err != nil {
			yield("", err)
			return
		}
		enc, err := resolveEncoding(s.encoding)
		if err != nil {
			yield("", err)
			return
		}

		sep := lineSeparator()
		r := bufio.NewReader(pick(stdout, stderr))
		for {
			line, readErr := r.ReadString('\n')
			if line != "" {
				if strip {
					line = strings.TrimRight(line, sep)
				}
				text, decErr := decode(enc, []byte(line))
				if decErr != nil {
					yield("", decErr)
					return
				}
				if !yield(text, nil) {
					return
				}
			}
			if readErr != nil {
				// A pipe closed by teardown ends the sequence like EOF.
				if !errors.Is(readErr, io.EOF) && !errors.Is(readErr, fs.ErrClosed) {
					yield("", readErr)
				}
				return
			}
		}
	}
}
