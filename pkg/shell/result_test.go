package shell

import (
	"strings"
	"testing"
)

func TestResult_Failed(t *testing.T) {
	tests := []struct {
		name string
		code int
		want bool
	}{
		{"clean", 0, false},
		{"error", 1, true},
		{"not_found", 127, true},
		{"signal", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Result{ExitCode: tt.code}
			if r.Failed() != tt.want {
				t.Errorf("Failed() = %v, want %v", r.Failed(), tt.want)
			}
		})
	}
}

func TestResult_Validate(t *testing.T) {
	if err := (&Result{ExitCode: 0}).Validate(); err != nil {
		t.Errorf("Validate() = %v for clean exit, want nil", err)
	}

	err := (&Result{ExitCode: 5}).Validate()
	exitErr, ok := err.(*ExitError)
	if !ok {
		t.Fatalf("Validate() returned %T, want *ExitError", err)
	}
	if exitErr.Result.ExitCode != 5 {
		t.Errorf("carried ExitCode = %d, want 5", exitErr.Result.ExitCode)
	}
}

func TestExitError_Message(t *testing.T) {
	err := &ExitError{Result: &Result{
		ExitCode: 3,
		Stdout:   "line one\nline two\n",
		Stderr:   "bad thing\n",
	}}

	msg := err.Error()

	if !strings.Contains(msg, "exit code 3") {
		t.Errorf("message %q should contain the exit code", msg)
	}
	if !strings.Contains(msg, "PROCESS STDOUT:") {
		t.Error("message should have a stdout section")
	}
	if !strings.Contains(msg, "PROCESS STDERR:") {
		t.Error("message should have a stderr section")
	}
	// Captured lines are indented under their section header
	if !strings.Contains(msg, indentPrefix+indentPrefix+"line one") {
		t.Errorf("stdout lines should be indented:\n%s", msg)
	}
	if !strings.Contains(msg, indentPrefix+indentPrefix+"bad thing") {
		t.Errorf("stderr lines should be indented:\n%s", msg)
	}
}

func TestExitError_OmitsEmptyStreams(t *testing.T) {
	msg := (&ExitError{Result: &Result{ExitCode: 1}}).Error()

	if strings.Contains(msg, "PROCESS STDOUT") || strings.Contains(msg, "PROCESS STDERR") {
		t.Errorf("empty streams should be omitted: %q", msg)
	}
	if msg != "shell command failed with exit code 1" {
		t.Errorf("message = %q", msg)
	}
}

func TestIndent(t *testing.T) {
	got := indent("a\n\nb\n", "  ")
	want := "  a\n\n  b\n"
	if got != want {
		t.Errorf("indent() = %q, want %q (blank lines stay blank)", got, want)
	}
}
