// Package console derives operator-facing status from a replayed stream:
// the capture-button countdown and whether the vehicle is flying.
package console

import (
	"fmt"
	"sync"
	"time"

	"github.com/pithecene-io/flightreplay/types"
)

// Button countdown timing.
const (
	// ButtonCountdown is how long the button stays active after a press.
	ButtonCountdown = 60 * time.Second
	// ButtonRepeatWindow discards copies of an older press relayed over another link.
	ButtonRepeatWindow = 30 * time.Second
	// PressedAnnounceInterval is the minimum gap between "Button pressed" announcements.
	PressedAnnounceInterval = 60 * time.Second
	// CountdownAnnounceInterval is the minimum gap between countdown announcements.
	CountdownAnnounceInterval = 10 * time.Second
	// countdownGrace keeps the zero announcement after the countdown ends.
	countdownGrace = 65 * time.Second
)

// ButtonState is the countdown as displayed.
type ButtonState struct {
	// Seen is false until the first BUTTON_CHANGE arrives.
	Seen bool
	// Remaining is the whole seconds left in the countdown.
	Remaining int
	// Active is true while the countdown is running.
	Active bool
	// SinceChange is the time since the button last changed.
	SinceChange time.Duration
}

// String renders the state like the console status line.
func (s ButtonState) String() string {
	if !s.Seen {
		return "Button: --"
	}
	return fmt.Sprintf("Button: %d", s.Remaining)
}

// Button tracks BUTTON_CHANGE reports. Safe for concurrent use.
type Button struct {
	mu           sync.Mutex
	now          func() time.Time
	bootMS       int64
	lastChangeMS int64
	seen         bool
	received     time.Time
	announced    time.Time
}

// NewButton creates a tracker. now defaults to time.Now.
func NewButton(now func() time.Time) *Button {
	if now == nil {
		now = time.Now
	}
	return &Button{now: now}
}

// Observe records a BUTTON_CHANGE message and returns any announcement due.
// Other message types are ignored.
func (b *Button) Observe(m *types.Message) (ButtonState, string) {
	if m.Type != types.MsgButtonChange {
		return b.Update()
	}
	bootMS, _ := m.Int("time_boot_ms")
	lastChangeMS, _ := m.Int("last_change_ms")

	b.mu.Lock()
	repeat := b.seen && bootMS < b.bootMS && time.Duration(b.bootMS-bootMS)*time.Millisecond < ButtonRepeatWindow
	if !repeat {
		b.bootMS = bootMS
		b.lastChangeMS = lastChangeMS
		b.seen = true
		b.received = b.now()
	}
	b.mu.Unlock()

	return b.Update()
}

// Update recomputes the countdown and returns any announcement due.
func (b *Button) Update() (ButtonState, string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.seen {
		return ButtonState{}, ""
	}
	now := b.now()
	since := time.Duration(b.bootMS-b.lastChangeMS)*time.Millisecond + now.Sub(b.received)

	state := ButtonState{Seen: true, SinceChange: since}
	if since <= ButtonCountdown {
		state.Active = true
		state.Remaining = int((ButtonCountdown - since) / time.Second)
	}

	if state.Remaining > 0 && now.Sub(b.announced) > PressedAnnounceInterval {
		b.announced = now
		return state, "Button pressed"
	}
	if now.Sub(b.announced) >= CountdownAnnounceInterval && state.Remaining%10 == 0 && since < countdownGrace {
		b.announced = now
		return state, fmt.Sprintf("%d seconds", state.Remaining)
	}
	return state, ""
}
