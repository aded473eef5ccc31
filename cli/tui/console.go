package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pithecene-io/flightreplay/console"
	"github.com/pithecene-io/flightreplay/replay"
)

// consoleRefresh is how often the console redraws between ticks.
const consoleRefresh = 250 * time.Millisecond

type refreshMsg time.Time

// DoneMsg tells the console that playback has finished.
type DoneMsg struct {
	Err error
}

// ConsoleModel follows a running playback through a console.Monitor.
type ConsoleModel struct {
	monitor   *console.Monitor
	interrupt func()
	snap      console.Snapshot
	done      bool
	err       error
	quitting  bool
}

// NewConsoleModel creates a console over monitor. interrupt is called when
// the operator quits before playback ends; it may be nil.
func NewConsoleModel(monitor *console.Monitor, interrupt func()) ConsoleModel {
	if interrupt == nil {
		interrupt = func() {}
	}
	return ConsoleModel{monitor: monitor, interrupt: interrupt}
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(consoleRefresh, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

// Init implements tea.Model.
func (m ConsoleModel) Init() tea.Cmd {
	return scheduleRefresh()
}

// Update implements tea.Model.
func (m ConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.monitor.Refresh()
		m.snap = m.monitor.Snapshot()
		return m, scheduleRefresh()
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		m.snap = m.monitor.Snapshot()
		return m, tea.Quit
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			m.interrupt()
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m ConsoleModel) View() string {
	st := m.snap.Status

	var b strings.Builder
	b.WriteString(headerStyle.Render("flightreplay"))
	b.WriteString("\n")

	file := "-"
	if st.File != "" {
		file = filepath.Base(st.File)
	}
	recorded := "-"
	if st.Clock > 0 {
		recorded = replay.RecordedTime(st.Clock).UTC().Format("2006-01-02 15:04:05.00")
	}
	pacing := "real time"
	if st.FastSkip {
		pacing = "fast skip"
	}

	rows := [][2]string{
		{"Pass", fmt.Sprintf("%d", st.Pass)},
		{"File", file},
		{"Recorded", recorded},
		{"Emitted", fmt.Sprintf("%d", st.Emitted)},
		{"Images left", fmt.Sprintf("%d", st.ImagesRemaining)},
		{"Params", fmt.Sprintf("%d pending", st.ParamsPending)},
		{"Pacing", pacing},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "%s %s\n", fieldLabel.Render(row[0]+":"), fieldValue.Render(row[1]))
	}

	buttonStyle := fieldValue
	if m.snap.Button.Active {
		buttonStyle = cautionStyle
	}
	fmt.Fprintf(&b, "%s %s\n", fieldLabel.Render("Button:"), buttonStyle.Render(strings.TrimPrefix(m.snap.Button.String(), "Button: ")))

	flight, flightStyle := "on ground", fieldValue
	if m.snap.Flying {
		flight, flightStyle = "flying", okStyle
	}
	if m.snap.Mode != "" {
		flight += " (" + m.snap.Mode + ")"
	}
	fmt.Fprintf(&b, "%s %s\n", fieldLabel.Render("Flight:"), flightStyle.Render(flight))

	if m.snap.LastAnnouncement != "" {
		fmt.Fprintf(&b, "%s %s\n", fieldLabel.Render("Announced:"), fieldValue.Render(m.snap.LastAnnouncement))
	}

	out := panelStyle.Render(b.String())
	switch {
	case m.done && m.err != nil:
		out += "\n" + alertStyle.Render("stopped: "+m.err.Error())
	case m.done:
		out += "\n" + okStyle.Render("playback finished")
	default:
		out += "\n" + hintStyle.Render("Press q or Ctrl+C to stop playback")
	}
	return out
}

// Console runs a ConsoleModel as a program.
type Console struct {
	program *tea.Program
}

// NewConsole creates a console program.
func NewConsole(monitor *console.Monitor, interrupt func(), opts ...tea.ProgramOption) *Console {
	return &Console{program: tea.NewProgram(NewConsoleModel(monitor, interrupt), opts...)}
}

// Run blocks until playback finishes or the operator quits.
func (c *Console) Run() error {
	_, err := c.program.Run()
	return err
}

// Done reports the playback outcome and closes the console.
func (c *Console) Done(err error) {
	c.program.Send(DoneMsg{Err: err})
}
