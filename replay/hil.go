package replay

import (
	"time"

	"github.com/pithecene-io/flightreplay/types"
)

// hilSources lists the message types a HIL_STATE frame is built from.
var hilSources = []string{
	types.MsgAttitude,
	types.MsgGlobalPositionInt,
	types.MsgRawIMU,
}

// hilFields maps each HIL_STATE field to its source message type and field.
var hilFields = []struct {
	out, src, field string
}{
	{"roll", types.MsgAttitude, "roll"},
	{"pitch", types.MsgAttitude, "pitch"},
	{"yaw", types.MsgAttitude, "yaw"},
	{"rollspeed", types.MsgAttitude, "rollspeed"},
	{"pitchspeed", types.MsgAttitude, "pitchspeed"},
	{"yawspeed", types.MsgAttitude, "yawspeed"},
	{"lat", types.MsgGlobalPositionInt, "lat"},
	{"lon", types.MsgGlobalPositionInt, "lon"},
	{"alt", types.MsgGlobalPositionInt, "relative_alt"},
	{"vx", types.MsgGlobalPositionInt, "vx"},
	{"vy", types.MsgGlobalPositionInt, "vy"},
	{"vz", types.MsgGlobalPositionInt, "vz"},
	{"xacc", types.MsgRawIMU, "xacc"},
	{"yacc", types.MsgRawIMU, "yacc"},
	{"zacc", types.MsgRawIMU, "zacc"},
}

// LatestFunc looks up the most recent message of a type.
type LatestFunc func(msgType string) (*types.Message, bool)

// Synthesizer builds HIL_STATE frames from the latest attitude, position and
// IMU messages, stamped with wall-clock time.
type Synthesizer struct {
	now func() time.Time
}

// NewSynthesizer creates a synthesizer. now defaults to time.Now.
func NewSynthesizer(now func() time.Time) *Synthesizer {
	if now == nil {
		now = time.Now
	}
	return &Synthesizer{now: now}
}

// Synthesize returns a HIL_STATE message, or false if any source message has
// not been seen yet.
func (s *Synthesizer) Synthesize(latest LatestFunc) (*types.Message, bool) {
	byType := make(map[string]*types.Message, len(hilSources))
	for _, t := range hilSources {
		m, ok := latest(t)
		if !ok || m == nil {
			return nil, false
		}
		byType[t] = m
	}

	now := s.now()
	fields := make(map[string]any, len(hilFields)+1)
	fields["time_usec"] = now.UnixMicro()
	for _, f := range hilFields {
		v, ok := byType[f.src].Fields[f.field]
		if !ok {
			v = 0
		}
		fields[f.out] = v
	}

	return &types.Message{
		Type:      types.MsgHILState,
		Timestamp: float64(now.UnixNano()) / float64(time.Second),
		Fields:    fields,
	}, true
}
