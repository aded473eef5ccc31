package console

import (
	"strings"
	"sync"

	"github.com/pithecene-io/flightreplay/types"
)

// MsgHeartbeat carries the flight mode.
const MsgHeartbeat = "HEARTBEAT"

// Flying thresholds.
const (
	FlyingAirspeed    = 20.0
	FlyingGroundspeed = 10.0
	autoMode          = "AUTO"
)

// Flight tracks whether the vehicle is airborne. Safe for concurrent use.
type Flight struct {
	mu     sync.Mutex
	mode   string
	flying bool
}

// Observe updates the state from HEARTBEAT and VFR_HUD messages.
// Returns true when the vehicle has just been detected as flying.
func (f *Flight) Observe(m *types.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch m.Type {
	case MsgHeartbeat:
		if mode, ok := m.String("mode"); ok {
			f.mode = strings.TrimRight(mode, "\x00")
		}
	case types.MsgVFRHUD:
		airspeed, _ := m.Float("airspeed")
		groundspeed, _ := m.Float("groundspeed")
		flying := f.mode == autoMode || airspeed > FlyingAirspeed || groundspeed > FlyingGroundspeed
		became := flying && !f.flying
		f.flying = flying
		return became
	}
	return false
}

// Flying reports the last computed state.
func (f *Flight) Flying() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flying
}

// Mode returns the last reported flight mode.
func (f *Flight) Mode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}
