// Package types defines core domain types for the flightreplay engine.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"fmt"
	"strings"
)

// Well-known message types. Recordings may contain any type string; these are
// the ones the engine interprets.
const (
	MsgParamValue        = "PARAM_VALUE"
	MsgParamRequestList  = "PARAM_REQUEST_LIST"
	MsgParamSet          = "PARAM_SET"
	MsgAttitude          = "ATTITUDE"
	MsgGlobalPositionInt = "GLOBAL_POSITION_INT"
	MsgRawIMU            = "RAW_IMU"
	MsgHILState          = "HIL_STATE"
	MsgButtonChange      = "BUTTON_CHANGE"
	MsgVFRHUD            = "VFR_HUD"
)

// diagnosticPrefix marks bulk diagnostic telemetry (DATA16, DATA32, ...).
const diagnosticPrefix = "DATA"

// Message is one timestamped protocol record.
// Immutable once read; Fields must not be mutated by consumers.
type Message struct {
	// Type is the message type tag (e.g. "ATTITUDE").
	Type string `msgpack:"type" json:"type"`
	// Timestamp is the recording-time receive timestamp in fractional seconds.
	Timestamp float64 `msgpack:"ts" json:"ts"`
	// Fields holds the typed payload fields.
	Fields map[string]any `msgpack:"fields" json:"fields"`
	// Raw is the exact encoded payload as recorded. Nil for synthesized messages.
	Raw []byte `msgpack:"-" json:"-"`
}

// IsDiagnostic reports whether the message is bulk DATA* telemetry that
// never reaches playback.
func (m *Message) IsDiagnostic() bool {
	return strings.HasPrefix(m.Type, diagnosticPrefix)
}

// Float returns the named field as float64.
// Accepts any numeric encoding the codec may produce.
func (m *Message) Float(name string) (float64, bool) {
	v, ok := m.Fields[name]
	if !ok {
		return 0, false
	}
	return ToFloat(v)
}

// String returns the named field as a string.
func (m *Message) String(name string) (string, bool) {
	v, ok := m.Fields[name]
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}

// Int returns the named field truncated to int64.
func (m *Message) Int(name string) (int64, bool) {
	f, ok := m.Float(name)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// ToFloat converts a decoded numeric value to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// ParamValue is a decoded PARAM_VALUE report.
type ParamValue struct {
	ID    string
	Value float64
	// Message is the originating message, forwarded verbatim on replay.
	Message *Message
}

// ParamValueFrom decodes a PARAM_VALUE message.
// Returns an error if the message is not a parameter report or lacks an id.
func ParamValueFrom(m *Message) (ParamValue, error) {
	if m.Type != MsgParamValue {
		return ParamValue{}, fmt.Errorf("not a %s message: %s", MsgParamValue, m.Type)
	}
	id, ok := m.String("param_id")
	if !ok {
		return ParamValue{}, fmt.Errorf("%s without param_id", MsgParamValue)
	}
	// Fixed-width ids are NUL padded on the wire.
	id = strings.TrimRight(id, "\x00")
	if id == "" {
		return ParamValue{}, fmt.Errorf("%s with empty param_id", MsgParamValue)
	}
	value, _ := m.Float("param_value")
	return ParamValue{ID: id, Value: value, Message: m}, nil
}
