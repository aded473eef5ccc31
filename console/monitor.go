package console

import (
	"sync"
	"time"

	"github.com/pithecene-io/flightreplay/replay"
)

// refreshInterval is how often the button display is recomputed between
// BUTTON_CHANGE messages.
const refreshInterval = 500 * time.Millisecond

// Snapshot is the monitor state for display.
type Snapshot struct {
	Button ButtonState
	Flying bool
	Mode   string
	// LastAnnouncement is the most recent spoken line.
	LastAnnouncement string
	Status           replay.Status
}

// Monitor feeds replayed messages to the button and flight trackers and
// passes announcements to Say. It implements replay.Observer.
type Monitor struct {
	button *Button
	flight *Flight
	now    func() time.Time
	say    func(string)

	mu          sync.Mutex
	lastRefresh time.Time
	snap        Snapshot
}

// NewMonitor creates a monitor. say receives announcements and may be nil.
// now defaults to time.Now.
func NewMonitor(say func(string), now func() time.Time) *Monitor {
	if now == nil {
		now = time.Now
	}
	if say == nil {
		say = func(string) {}
	}
	return &Monitor{
		button: NewButton(now),
		flight: &Flight{},
		now:    now,
		say:    say,
	}
}

// Tick implements replay.Observer.
func (m *Monitor) Tick(s replay.Status) {
	var (
		state    ButtonState
		announce string
	)
	if s.Message != nil {
		if m.flight.Observe(s.Message) {
			m.announce("Flying")
		}
		state, announce = m.button.Observe(s.Message)
	} else {
		state, announce = m.button.Update()
	}

	m.mu.Lock()
	m.snap.Button = state
	m.snap.Flying = m.flight.Flying()
	m.snap.Mode = m.flight.Mode()
	m.snap.Status = s
	m.lastRefresh = m.now()
	m.mu.Unlock()

	if announce != "" {
		m.announce(announce)
	}
}

// Refresh recomputes the countdown if it has not been updated recently.
// Called from the display loop while playback is waiting.
func (m *Monitor) Refresh() {
	m.mu.Lock()
	stale := m.now().Sub(m.lastRefresh) > refreshInterval
	m.mu.Unlock()
	if !stale {
		return
	}
	state, announce := m.button.Update()
	m.mu.Lock()
	m.snap.Button = state
	m.lastRefresh = m.now()
	m.mu.Unlock()
	if announce != "" {
		m.announce(announce)
	}
}

// Snapshot returns the current state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func (m *Monitor) announce(text string) {
	m.mu.Lock()
	m.snap.LastAnnouncement = text
	m.mu.Unlock()
	m.say(text)
}
