package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/flightreplay/types"
)

// encodeFrame encodes a payload with length prefix.
func encodeFrame(payload []byte) []byte {
	buf := make([]byte, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(buf[:LengthPrefixSize], uint32(len(payload)))
	copy(buf[LengthPrefixSize:], payload)
	return buf
}

func encodeMessageFrame(t *testing.T, m *types.Message) []byte {
	t.Helper()
	payload, err := msgpack.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return encodeFrame(payload)
}

func TestReader_SingleMessage(t *testing.T) {
	m := &types.Message{
		Type:      types.MsgAttitude,
		Timestamp: 1371651945.25,
		Fields:    map[string]any{"roll": 0.1, "pitch": -0.2},
	}

	r := NewReader(bytes.NewReader(encodeMessageFrame(t, m)))
	got, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got.Type != types.MsgAttitude {
		t.Errorf("Type = %q, want %q", got.Type, types.MsgAttitude)
	}
	if got.Timestamp != m.Timestamp {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, m.Timestamp)
	}
	if roll, ok := got.Float("roll"); !ok || roll != 0.1 {
		t.Errorf("roll = %v, %v", roll, ok)
	}
	if got.Raw == nil {
		t.Error("Raw should hold the recorded payload")
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after last frame, got %v", err)
	}
}

func TestReader_IntegerTimestamp(t *testing.T) {
	payload, err := msgpack.Marshal(map[string]any{"type": "HEARTBEAT", "ts": 42, "fields": map[string]any{}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := NewReader(bytes.NewReader(encodeFrame(payload))).Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got.Timestamp != 42 {
		t.Errorf("Timestamp = %v, want 42", got.Timestamp)
	}
}

func TestReader_EmptyStream(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	if _, err := r.ReadPayload(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReader_PartialPrefix(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x00, 0x00}))
	_, err := r.ReadPayload()
	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("expected FrameError, got %T", err)
	}
	if frameErr.Kind != FrameErrorPartial {
		t.Errorf("Kind = %v, want partial", frameErr.Kind)
	}
	if !IsFatalFrameError(err) {
		t.Error("partial prefix should be fatal")
	}
}

func TestReader_TruncatedPayloadOffset(t *testing.T) {
	first := encodeFrame([]byte("ok"))
	second := encodeFrame([]byte("abcdef"))
	stream := append(append([]byte{}, first...), second[:len(second)-2]...)

	r := NewReader(bytes.NewReader(stream))
	if _, err := r.ReadPayload(); err != nil {
		t.Fatalf("first frame: %v", err)
	}
	_, err := r.ReadPayload()
	var frameErr *FrameError
	if !errors.As(err, &frameErr) || !frameErr.IsFatal() {
		t.Fatalf("expected fatal frame error, got %v", err)
	}
	if frameErr.Offset != int64(len(first)) {
		t.Errorf("Offset = %d, want %d", frameErr.Offset, len(first))
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected unexpected EOF cause, got %v", err)
	}
}

func TestReader_TooLarge(t *testing.T) {
	var prefix [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], MaxPayloadSize+1)
	_, err := NewReader(bytes.NewReader(prefix[:])).ReadPayload()
	var frameErr *FrameError
	if !errors.As(err, &frameErr) || frameErr.Kind != FrameErrorTooLarge {
		t.Fatalf("expected too-large FrameError, got %v", err)
	}
}

func TestParseFrame(t *testing.T) {
	buf := append(encodeFrame([]byte("one")), encodeFrame([]byte("two"))...)
	payload, rest, err := ParseFrame(buf)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if string(payload) != "one" {
		t.Errorf("payload = %q, want one", payload)
	}
	payload, rest, err = ParseFrame(rest)
	if err != nil || string(payload) != "two" || len(rest) != 0 {
		t.Errorf("second frame = %q, rest %d, err %v", payload, len(rest), err)
	}

	for name, bad := range map[string][]byte{
		"short prefix":  {0x00},
		"short payload": encodeFrame([]byte("abcdef"))[:6],
	} {
		if _, _, err := ParseFrame(bad); !IsFatalFrameError(err) {
			t.Errorf("%s: expected fatal frame error, got %v", name, err)
		}
	}
}

func TestReader_DecodeErrorIsRecoverable(t *testing.T) {
	good := &types.Message{Type: "HEARTBEAT", Timestamp: 2}
	var buf bytes.Buffer
	buf.Write(encodeFrame([]byte{0xc1})) // 0xc1 is never valid msgpack
	buf.Write(encodeMessageFrame(t, good))

	r := NewReader(&buf)
	_, err := r.Next()
	var frameErr *FrameError
	if !errors.As(err, &frameErr) || frameErr.Kind != FrameErrorDecode {
		t.Fatalf("expected decode FrameError, got %v", err)
	}
	if IsFatalFrameError(err) {
		t.Error("decode errors must not be fatal")
	}
	if frameErr.Offset != 0 {
		t.Errorf("Offset = %d, want 0", frameErr.Offset)
	}

	got, err := r.Next()
	if err != nil {
		t.Fatalf("Next after decode error: %v", err)
	}
	if got.Type != "HEARTBEAT" {
		t.Errorf("Type = %q, want HEARTBEAT", got.Type)
	}
}

func TestDecodeMessage_MissingType(t *testing.T) {
	payload, _ := msgpack.Marshal(map[string]any{"ts": 1.0})
	if _, err := DecodeMessage(payload); err == nil {
		t.Error("expected error for message without type")
	}
}

func TestWriteMessage_VerbatimRaw(t *testing.T) {
	raw, _ := msgpack.Marshal(&types.Message{Type: "VFR_HUD", Timestamp: 9})
	m := &types.Message{Type: "something-else", Raw: raw}

	var buf bytes.Buffer
	if err := WriteMessage(&buf, m); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), encodeFrame(raw)) {
		t.Error("recorded messages must be written byte for byte")
	}
}

func TestWriteMessage_SynthesizedRoundTrip(t *testing.T) {
	m := &types.Message{Type: types.MsgHILState, Timestamp: 5, Fields: map[string]any{"lat": int64(-353632610)}}

	var buf bytes.Buffer
	if err := WriteMessage(&buf, m); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	got, err := NewReader(&buf).Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if lat, ok := got.Int("lat"); !ok || lat != -353632610 {
		t.Errorf("lat = %v, %v", lat, ok)
	}
}

func TestWriteFrame_TooLarge(t *testing.T) {
	err := WriteFrame(io.Discard, make([]byte, MaxPayloadSize+1))
	if err == nil {
		t.Fatal("expected error")
	}
}
