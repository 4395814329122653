package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/randomizedcoder/go-shell-swarm/internal/supervisor"
)

// =============================================================================
// Main View Rendering
// =============================================================================

// renderDashboard renders the swarm dashboard.
func (m Model) renderDashboard() string {
	var sections []string

	// Header
	sections = append(sections, m.renderHeader())

	// Progress section
	sections = append(sections, m.renderProgress())

	// Worker states
	sections = append(sections, m.renderWorkerStates())

	// Run stats (only once runs have completed)
	if m.snap != nil && m.snap.Runs > 0 {
		sections = append(sections, m.renderRunStats())
		sections = append(sections, m.renderDurationStats())
	}

	// Footer
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// =============================================================================
// Header
// =============================================================================

func (m Model) renderHeader() string {
	command := m.command
	if len(command) > 40 {
		command = command[:37] + "..."
	}

	header := fmt.Sprintf(
		" go-shell-swarm │ %s │ Workers: %d/%d │ Elapsed: %s ",
		command,
		m.ActiveWorkers(),
		m.targetWorkers,
		formatDuration(m.Elapsed()),
	)

	return headerStyle.Width(m.width).Render(header)
}

// =============================================================================
// Progress Section
// =============================================================================

func (m Model) renderProgress() string {
	progress := m.RampProgress()

	// Progress bar
	barWidth := m.width - 30
	if barWidth < 20 {
		barWidth = 20
	}
	progressBar := RenderProgressBar(progress, barWidth)

	// Status text
	var status string
	if progress >= 1.0 {
		status = statusOK.Render("✓ All workers running")
	} else {
		status = mutedStyle.Render(fmt.Sprintf("Ramping up... %d/%d", m.ActiveWorkers(), m.targetWorkers))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		sectionHeaderStyle.Render("Ramp Progress"),
		progressBar,
		status,
	)

	return boxStyle.Width(m.width - 2).Render(content)
}

// =============================================================================
// Worker States
// =============================================================================

func (m Model) renderWorkerStates() string {
	order := []supervisor.State{
		supervisor.StateRunning,
		supervisor.StateStarting,
		supervisor.StateBackoff,
		supervisor.StateCreated,
		supervisor.StateStopped,
	}

	var parts []string
	for _, state := range order {
		n := m.states[state]
		if n == 0 {
			continue
		}
		style := GetStateStyle(state)
		parts = append(parts, style.Render(fmt.Sprintf("● %s: %d", state, n)))
	}
	if len(parts) == 0 {
		parts = append(parts, dimStyle.Render("no workers yet"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		sectionHeaderStyle.Render("Workers"),
		strings.Join(parts, "   "),
		RenderKeyValue("Starts", fmt.Sprintf("%s (restarts: %s)",
			formatNumber(m.starts), formatNumber(m.restarts))),
	)

	return boxStyle.Width(m.width - 2).Render(content)
}

// =============================================================================
// Run Statistics
// =============================================================================

func (m Model) renderRunStats() string {
	s := m.snap

	failRate := GetFailureRateStyle(s.FailureRate()).Render(formatPercent(s.FailureRate()))

	rows := []string{
		RenderKeyValue("Completed", formatNumber(s.Runs)),
		RenderKeyValue("Failed", fmt.Sprintf("%s (%s)", formatNumber(s.Failures), failRate)),
		RenderKeyValue("Exit codes", formatExitCodes(s.ExitCodes)),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{sectionHeaderStyle.Render("Runs")}, rows...)...,
	)

	return boxStyle.Width(m.width - 2).Render(content)
}

func (m Model) renderDurationStats() string {
	s := m.snap

	rows := []string{
		RenderKeyValue("min/avg/max", fmt.Sprintf("%s / %s / %s",
			formatMs(s.MinDuration), formatMs(s.AvgDuration), formatMs(s.MaxDuration))),
		RenderKeyValue("p50/p95/p99", fmt.Sprintf("%s / %s / %s",
			formatMs(s.DurationP50), formatMs(s.DurationP95), formatMs(s.DurationP99))),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{sectionHeaderStyle.Render("Run Duration")}, rows...)...,
	)

	return boxStyle.Width(m.width - 2).Render(content)
}

// formatExitCodes renders an exit code histogram as "0×12 1×3", sorted by code.
func formatExitCodes(codes map[int]int64) string {
	if len(codes) == 0 {
		return "-"
	}
	keys := make([]int, 0, len(codes))
	for code := range codes {
		keys = append(keys, code)
	}
	sort.Ints(keys)

	parts := make([]string, 0, len(keys))
	for _, code := range keys {
		parts = append(parts, fmt.Sprintf("%d×%d", code, codes[code]))
	}
	return strings.Join(parts, " ")
}

// =============================================================================
// Footer
// =============================================================================

func (m Model) renderFooter() string {
	age := time.Since(m.lastUpdate).Round(100 * time.Millisecond)

	left := dimStyle.Render(fmt.Sprintf("updated %s ago", age))
	right := mutedStyle.Render("q: quit  r: refresh")

	var metrics string
	if m.metricsAddr != "" {
		metrics = dimStyle.Render(fmt.Sprintf("  metrics: http://%s/metrics", m.metricsAddr))
	}

	return footerStyle.Render(left + metrics + "  " + right)
}
