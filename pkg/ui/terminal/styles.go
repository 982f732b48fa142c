package terminal

import (
	"github.com/arthur-debert/jobtx/pkg/types"
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the semantic styles used by the terminal renderer. Colors
// adapt to light and dark backgrounds.
var Styles = struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Muted   lipgloss.Style
}{
	Success: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1a7f37", Dark: "#3fb950"}),
	Error:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#cf222e", Dark: "#f85149"}).Bold(true),
	Warning: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9a6700", Dark: "#d29922"}),
	Info:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0969da", Dark: "#58a6ff"}),
	Muted:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6e7781", Dark: "#8b949e"}),
}

// StatusStyle returns the style for a task status
func StatusStyle(status types.TaskStatus) lipgloss.Style {
	switch status {
	case types.TaskCompleted:
		return Styles.Success
	case types.TaskFailed, types.TaskRollbackFailed:
		return Styles.Error
	case types.TaskRolledBack:
		return Styles.Warning
	default:
		return Styles.Muted
	}
}

// StatusIcon returns the glyph shown before a task name
func StatusIcon(status types.TaskStatus) string {
	switch status {
	case types.TaskCompleted:
		return "✓"
	case types.TaskFailed:
		return "✗"
	case types.TaskRolledBack:
		return "↺"
	case types.TaskRollbackFailed:
		return "!"
	case types.TaskSkipped:
		return "-"
	default:
		return "·"
	}
}
