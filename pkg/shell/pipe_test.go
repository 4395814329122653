package shell

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestPipe_ComposesCommand(t *testing.T) {
	left := New("echo hello")
	right := New("tr a-z A-Z")

	combined, err := left.Pipe(right)
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}

	want := "echo hello | tr a-z A-Z"
	if combined.Command() != want {
		t.Errorf("Command() = %q, want %q", combined.Command(), want)
	}

	// Composition must not spawn anything
	if left.PID() != MissingProcessPID || right.PID() != MissingProcessPID ||
		combined.PID() != MissingProcessPID {
		t.Error("Pipe spawned a process")
	}
}

func TestPipe_Executes(t *testing.T) {
	combined, err := New("echo hello").Pipe(New("tr a-z A-Z"))
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}

	res, err := combined.Result(context.Background())
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if res.Stdout != "HELLO\n" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "HELLO\n")
	}
}

func TestPipe_ChainsThreeStages(t *testing.T) {
	ab, err := New("printf 'c\\nb\\na\\n'").Pipe(New("sort"))
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	abc, err := ab.Pipe(New("head -n 1"))
	if err != nil {
		t.Fatalf("second Pipe: %v", err)
	}

	res, err := abc.Result(context.Background())
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if res.Stdout != "a\n" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "a\n")
	}
}

func TestPipe_AlreadyStarted(t *testing.T) {
	t.Run("left_started", func(t *testing.T) {
		left := New("sleep 0.5")
		defer left.Finalize()
		if err := left.Start(context.Background()); err != nil {
			t.Fatalf("Start: %v", err)
		}

		_, err := left.Pipe(New("cat"))
		if !errors.Is(err, ErrAlreadyStarted) {
			t.Errorf("err = %v, want ErrAlreadyStarted", err)
		}
	})

	t.Run("right_started", func(t *testing.T) {
		right := New("sleep 0.5")
		defer right.Finalize()
		if err := right.Start(context.Background()); err != nil {
			t.Fatalf("Start: %v", err)
		}

		_, err := New("echo hi").Pipe(right)
		if !errors.Is(err, ErrAlreadyStarted) {
			t.Errorf("err = %v, want ErrAlreadyStarted", err)
		}
	})
}

func TestPipe_EncodingMismatch(t *testing.T) {
	left := New("echo hi", WithEncoding("utf-8"))
	right := New("cat", WithEncoding("latin1"))

	_, err := left.Pipe(right)
	if !errors.Is(err, ErrEncodingMismatch) {
		t.Fatalf("err = %v, want ErrEncodingMismatch", err)
	}
	for _, name := range []string{"utf-8", "latin1"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q should name encoding %q", err, name)
		}
	}
}

func TestPipe_TakesLeftConfiguration(t *testing.T) {
	left := New("echo $PIPE_TEST_VAR", WithEnv(map[string]string{"PIPE_TEST_VAR": "xyz"}))

	combined, err := left.Pipe(New("tr a-z A-Z"))
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}

	res, err := combined.Result(context.Background())
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if res.Stdout != "XYZ\n" {
		t.Errorf("Stdout = %q, want left-hand environment applied", res.Stdout)
	}
}

func TestPipe_InheritsValidation(t *testing.T) {
	// Validation requested on either side survives composition
	combined, err := New("echo hi").Pipe(New("exit 4").Validate())
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}

	_, err = combined.Result(context.Background())

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error is %T, want *ExitError", err)
	}
	if exitErr.Result.ExitCode != 4 {
		t.Errorf("ExitCode = %d, want 4", exitErr.Result.ExitCode)
	}
}
