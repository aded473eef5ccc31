package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pithecene-io/flightreplay/cli/reader"
)

// InspectModel shows a recording summary with a scrollable type table.
type InspectModel struct {
	summary  *reader.LogSummary
	types    table.Model
	quitting bool
}

// NewInspectModel creates the inspect view for a *reader.LogSummary.
func NewInspectModel(data any) (InspectModel, error) {
	summary, ok := data.(*reader.LogSummary)
	if !ok {
		return InspectModel{}, fmt.Errorf("invalid data type for %s: %T", ViewInspectLog, data)
	}

	rows := make([]table.Row, 0, len(summary.Types))
	for _, tc := range summary.Types {
		rows = append(rows, table.Row{tc.Type, strconv.FormatInt(tc.Count, 10)})
	}
	height := len(rows)
	if height > 15 {
		height = 15
	}
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Type", Width: 24},
			{Title: "Count", Width: 10},
		}),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height+1),
	)
	return InspectModel{summary: summary, types: t}, nil
}

// Init implements tea.Model.
func (m InspectModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.types, cmd = m.types.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m InspectModel) View() string {
	if m.quitting {
		return ""
	}
	s := m.summary

	var b strings.Builder
	b.WriteString(headerStyle.Render("Recording " + s.File))
	b.WriteString("\n")

	state := "completed"
	if s.Truncated {
		state = "truncated"
	}
	rows := [][2]string{
		{"Messages", strconv.FormatInt(s.Messages, 10)},
		{"Diagnostic", strconv.FormatInt(s.Diagnostic, 10)},
		{"Decode errors", strconv.FormatInt(s.DecodeErrors, 10)},
		{"Start", s.Start},
		{"Span", s.Span},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "%s %s\n", fieldLabel.Render(row[0]+":"), fieldValue.Render(row[1]))
	}
	fmt.Fprintf(&b, "%s %s\n", fieldLabel.Render("State:"), OutcomeStyle(state).Render(state))

	out := panelStyle.Render(b.String())
	if len(s.Types) > 0 {
		out += "\n" + m.types.View()
	}
	return out + "\n" + hintStyle.Render("↑/↓ scroll • q quit")
}
