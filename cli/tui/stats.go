package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/flightreplay/cli/reader"
)

// StatsModel shows the metrics of a stored session.
type StatsModel struct {
	stats    *reader.SessionStats
	width    int
	quitting bool
}

// NewStatsModel creates the stats view for a *reader.SessionStats.
func NewStatsModel(data any) (StatsModel, error) {
	stats, ok := data.(*reader.SessionStats)
	if !ok || stats.Metrics == nil {
		return StatsModel{}, fmt.Errorf("invalid data type for %s: %T", ViewStatsSession, data)
	}
	return StatsModel{stats: stats}, nil
}

// Init implements tea.Model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}
	s := m.stats.Metrics

	var b strings.Builder
	b.WriteString(headerStyle.Render("Session " + s.SessionID))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", fieldLabel.Render("Completed:"), fieldValue.Render(s.Ts))
	fmt.Fprintf(&b, "%s %s\n", fieldLabel.Render("Link:"), fieldValue.Render(s.Link))
	b.WriteString("\n")

	boxes := []string{
		renderStatBox("Emitted", s.MessagesEmitted, colorSky),
		renderStatBox("Images", s.ImagesPublished, colorGo),
		renderStatBox("Params", s.ParamsReplayed, colorHorizon),
		renderStatBox("Dropped", s.MessagesDropped, colorCaution),
		renderStatBox("Failures", s.LinkWriteFailures+s.PublishFailures, colorAlert),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n")

	if len(m.stats.Files) > 0 {
		b.WriteString("\n")
		for _, f := range m.stats.Files {
			fmt.Fprintf(&b, "%s %-32s %s %6d msgs %4d imgs %8s\n",
				fieldLabel.Width(4).Render(fmt.Sprintf("#%d", f.Pass)),
				f.File,
				OutcomeStyle(f.Outcome).Width(10).Render(f.Outcome),
				f.Emitted, f.Images, f.Recorded)
		}
	}

	return b.String() + hintStyle.Render("Press q or Ctrl+C to quit")
}

func renderStatBox(label string, value int64, color lipgloss.Color) string {
	valueStr := counterValue.Foreground(color).Render(fmt.Sprintf("%d", value))
	labelStr := counterLabel.Render(label)
	return counterBox.BorderForeground(color).Width(14).Render(
		lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr),
	)
}
