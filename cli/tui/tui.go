package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// View types with an interactive rendering.
const (
	ViewInspectLog   = "inspect_log"
	ViewStatsSession = "stats_session"
)

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Run starts the view for viewType.
func Run(viewType string, data any) error {
	model, err := newViewModel(viewType, data)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// RenderStatic renders a view once without running a program.
func RenderStatic(viewType string, data any) (string, error) {
	model, err := newViewModel(viewType, data)
	if err != nil {
		return "", err
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View()), nil
}

func newViewModel(viewType string, data any) (tea.Model, error) {
	switch viewType {
	case ViewInspectLog:
		return NewInspectModel(data)
	case ViewStatsSession:
		return NewStatsModel(data)
	default:
		return nil, fmt.Errorf("TUI mode is not supported for %s", viewType)
	}
}

// IsTUISupported reports whether viewType has an interactive rendering.
func IsTUISupported(viewType string) bool {
	for _, v := range SupportedTUIViews() {
		if v == viewType {
			return true
		}
	}
	return false
}

// SupportedTUIViews returns the view types that support --tui.
func SupportedTUIViews() []string {
	return []string{ViewInspectLog, ViewStatsSession}
}
