package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/go-shell-swarm/internal/stats"
	"github.com/randomizedcoder/go-shell-swarm/internal/supervisor"
)

// fakeSource is a canned StatsSource for tests.
type fakeSource struct {
	snap     *stats.Snapshot
	states   map[supervisor.State]int
	starts   int64
	restarts int64
}

func (f *fakeSource) StatsSnapshot() *stats.Snapshot         { return f.snap }
func (f *fakeSource) WorkerStates() map[supervisor.State]int { return f.states }
func (f *fakeSource) TotalStarts() int64                     { return f.starts }
func (f *fakeSource) TotalRestarts() int64                   { return f.restarts }

func testSource() *fakeSource {
	return &fakeSource{
		snap: &stats.Snapshot{
			Runs:        10,
			Failures:    2,
			ExitCodes:   map[int]int64{0: 8, 1: 2},
			MinDuration: 5 * time.Millisecond,
			AvgDuration: 10 * time.Millisecond,
			MaxDuration: 20 * time.Millisecond,
			DurationP50: 9 * time.Millisecond,
			DurationP95: 18 * time.Millisecond,
			DurationP99: 19 * time.Millisecond,
		},
		states:   map[supervisor.State]int{supervisor.StateRunning: 3, supervisor.StateBackoff: 1},
		starts:   14,
		restarts: 4,
	}
}

func TestNew_Defaults(t *testing.T) {
	m := New(Config{TargetWorkers: 4, Command: "echo hi"})

	if m.TargetWorkers() != 4 {
		t.Errorf("TargetWorkers() = %d, want 4", m.TargetWorkers())
	}
	if m.ActiveWorkers() != 0 {
		t.Errorf("ActiveWorkers() = %d, want 0 before first tick", m.ActiveWorkers())
	}
	if m.width != 80 || m.height != 24 {
		t.Errorf("default size = %dx%d, want 80x24", m.width, m.height)
	}
}

func TestUpdate_Tick(t *testing.T) {
	src := testSource()
	m := New(Config{TargetWorkers: 4, Command: "echo hi", StatsSource: src})

	updated, cmd := m.Update(TickMsg(time.Now()))
	m = updated.(Model)

	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if m.ActiveWorkers() != 3 {
		t.Errorf("ActiveWorkers() = %d, want 3", m.ActiveWorkers())
	}
	if m.snap == nil || m.snap.Runs != 10 {
		t.Error("tick should pull the stats snapshot")
	}
	if got := m.RampProgress(); got != 0.75 {
		t.Errorf("RampProgress() = %v, want 0.75", got)
	}
}

func TestUpdate_QuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c", "esc"} {
		t.Run(key, func(t *testing.T) {
			m := New(Config{TargetWorkers: 1})

			var msg tea.KeyMsg
			switch key {
			case "ctrl+c":
				msg = tea.KeyMsg{Type: tea.KeyCtrlC}
			case "esc":
				msg = tea.KeyMsg{Type: tea.KeyEsc}
			default:
				msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
			}

			updated, cmd := m.Update(msg)
			m = updated.(Model)

			if !m.quitting {
				t.Errorf("key %q should set quitting", key)
			}
			if cmd == nil {
				t.Errorf("key %q should return tea.Quit", key)
			}
			if m.View() != "" {
				t.Error("quitting model should render nothing")
			}
		})
	}
}

func TestUpdate_WindowSize(t *testing.T) {
	m := New(Config{TargetWorkers: 1})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)

	if m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d, want 120x40", m.width, m.height)
	}
}

func TestView_RendersSections(t *testing.T) {
	src := testSource()
	m := New(Config{
		TargetWorkers: 4,
		Command:       "echo hi",
		MetricsAddr:   "127.0.0.1:17092",
		StatsSource:   src,
	})
	updated, _ := m.Update(TickMsg(time.Now()))
	m = updated.(Model)

	view := m.View()

	for _, want := range []string{
		"go-shell-swarm",
		"echo hi",
		"Ramp Progress",
		"Workers",
		"Runs",
		"Run Duration",
		"127.0.0.1:17092",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestFormatExitCodes(t *testing.T) {
	tests := []struct {
		name  string
		codes map[int]int64
		want  string
	}{
		{"empty", nil, "-"},
		{"single", map[int]int64{0: 5}, "0×5"},
		{"sorted", map[int]int64{1: 2, 0: 8}, "0×8 1×2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatExitCodes(tt.codes); got != tt.want {
				t.Errorf("formatExitCodes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatDuration(90 * time.Second); got != "00:01:30" {
		t.Errorf("formatDuration = %q, want 00:01:30", got)
	}
	if got := formatNumber(1500); got != "1.5K" {
		t.Errorf("formatNumber = %q, want 1.5K", got)
	}
	if got := formatNumber(2_500_000); got != "2.5M" {
		t.Errorf("formatNumber = %q, want 2.5M", got)
	}
	if got := formatPercent(0.125); got != "12.5%" {
		t.Errorf("formatPercent = %q, want 12.5%%", got)
	}
	if got := formatMs(15 * time.Millisecond); got != "15 ms" {
		t.Errorf("formatMs = %q, want 15 ms", got)
	}
}

func TestRenderProgressBar_Bounds(t *testing.T) {
	// Out-of-range progress must clamp, not panic
	for _, progress := range []float64{-0.5, 0, 0.5, 1.0, 1.5} {
		bar := RenderProgressBar(progress, 20)
		if bar == "" {
			t.Errorf("empty bar for progress %v", progress)
		}
	}
}
