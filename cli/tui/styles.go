// Package tui provides the Bubble Tea views for the flightreplay CLI.
//
// inspect and stats views render the same payloads as their json output.
// The console view follows a running playback.
package tui

import "github.com/charmbracelet/lipgloss"

// Palette loosely follows a glass cockpit: cyan for data, green for
// nominal, amber for caution, red for alerts.
var (
	colorHorizon = lipgloss.Color("#0EA5E9")
	colorSky     = lipgloss.Color("#38BDF8")
	colorGo      = lipgloss.Color("#22C55E")
	colorCaution = lipgloss.Color("#FBBF24")
	colorAlert   = lipgloss.Color("#F87171")
	colorDim     = lipgloss.Color("#94A3B8")
	colorText    = lipgloss.Color("#F8FAFC")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorHorizon).MarginBottom(1)
	fieldLabel  = lipgloss.NewStyle().Foreground(colorDim).Width(16)
	fieldValue  = lipgloss.NewStyle().Foreground(colorText)
	hintStyle   = lipgloss.NewStyle().Foreground(colorDim).MarginTop(1)

	okStyle      = lipgloss.NewStyle().Foreground(colorGo)
	cautionStyle = lipgloss.NewStyle().Foreground(colorCaution)
	alertStyle   = lipgloss.NewStyle().Foreground(colorAlert)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(1, 2)

	// Counter tiles on the stats view.
	counterBox = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorSky).
			Padding(0, 1).
			Width(16).
			Align(lipgloss.Center)
	counterLabel = lipgloss.NewStyle().Foreground(colorDim).Align(lipgloss.Center)
	counterValue = lipgloss.NewStyle().Bold(true).Foreground(colorText).Align(lipgloss.Center)
)

// OutcomeStyle returns a style for a file or session outcome.
func OutcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case "completed":
		return okStyle
	case "canceled", "empty":
		return cautionStyle
	case "truncated", "error", "no_images":
		return alertStyle
	default:
		return fieldValue
	}
}
