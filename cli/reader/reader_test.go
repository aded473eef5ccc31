package reader

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pithecene-io/flightreplay/log"
	"github.com/pithecene-io/flightreplay/replay"
	"github.com/pithecene-io/flightreplay/types"
	"github.com/pithecene-io/flightreplay/wire"
)

func writeRecording(t *testing.T, msgs []*types.Message, trailer []byte) string {
	t.Helper()
	var buf bytes.Buffer
	for _, m := range msgs {
		if err := wire.WriteMessage(&buf, m); err != nil {
			t.Fatalf("WriteMessage: %v", err)
		}
	}
	buf.Write(trailer)
	path := filepath.Join(t.TempDir(), "flight.tlog")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func msg(typ string, ts float64, fields map[string]any) *types.Message {
	return &types.Message{Type: typ, Timestamp: ts, Fields: fields}
}

func TestInspectLog(t *testing.T) {
	start := float64(time.Date(2013, 6, 19, 14, 25, 45, 0, time.UTC).Unix())
	path := writeRecording(t, []*types.Message{
		msg(types.MsgAttitude, start, map[string]any{"roll": 0.1}),
		msg("DATA16", start+0.5, nil),
		msg(types.MsgAttitude, start+1, map[string]any{"roll": 0.2}),
		msg(types.MsgVFRHUD, start+2.25, map[string]any{"airspeed": 21.0}),
	}, nil)

	s, err := InspectLog(path)
	if err != nil {
		t.Fatalf("InspectLog: %v", err)
	}
	if s.Messages != 4 {
		t.Errorf("Messages = %d, want 4", s.Messages)
	}
	if s.Diagnostic != 1 {
		t.Errorf("Diagnostic = %d, want 1", s.Diagnostic)
	}
	if s.Truncated {
		t.Error("should not be truncated")
	}
	if s.Span != "2.25s" {
		t.Errorf("Span = %q, want 2.25s", s.Span)
	}
	if s.Start != "2013-06-19T14:25:45Z" {
		t.Errorf("Start = %q", s.Start)
	}
	if len(s.Types) != 3 || s.Types[0].Type != types.MsgAttitude || s.Types[0].Count != 2 {
		t.Errorf("Types = %+v, want ATTITUDE first with 2", s.Types)
	}
	// Equal counts sort by name.
	if s.Types[1].Type != "DATA16" || s.Types[2].Type != types.MsgVFRHUD {
		t.Errorf("tie order = %s, %s", s.Types[1].Type, s.Types[2].Type)
	}
}

func TestInspectLog_Truncated(t *testing.T) {
	// A length prefix promising more bytes than remain.
	path := writeRecording(t, []*types.Message{
		msg(types.MsgAttitude, 100, nil),
	}, []byte{0, 0, 0, 50, 1, 2})

	s, err := InspectLog(path)
	if err != nil {
		t.Fatalf("InspectLog: %v", err)
	}
	if !s.Truncated {
		t.Error("expected truncated")
	}
	if s.Messages != 1 {
		t.Errorf("Messages = %d, want 1", s.Messages)
	}
}

func TestInspectLog_DecodeErrorSkipped(t *testing.T) {
	var garbage bytes.Buffer
	if err := wire.WriteFrame(&garbage, []byte{0xc1}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := wire.WriteMessage(&garbage, msg(types.MsgAttitude, 101, nil)); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	path := writeRecording(t, []*types.Message{msg(types.MsgAttitude, 100, nil)}, garbage.Bytes())

	s, err := InspectLog(path)
	if err != nil {
		t.Fatalf("InspectLog: %v", err)
	}
	if s.DecodeErrors != 1 || s.Messages != 2 {
		t.Errorf("DecodeErrors/Messages = %d/%d, want 1/2", s.DecodeErrors, s.Messages)
	}
}

func TestInspectLog_Missing(t *testing.T) {
	if _, err := InspectLog(filepath.Join(t.TempDir(), "nope.tlog")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadParamValues(t *testing.T) {
	path := writeRecording(t, []*types.Message{
		msg(types.MsgParamValue, 1, map[string]any{"param_id": "SR1_POSITION", "param_value": 2.0}),
		msg(types.MsgAttitude, 2, nil),
		msg(types.MsgParamValue, 3, map[string]any{"param_value": 1.0}),
		msg(types.MsgParamValue, 4, map[string]any{"param_id": "SR1_EXTRA1\x00\x00", "param_value": 10.0}),
	}, nil)

	values, err := ReadParamValues(path)
	if err != nil {
		t.Fatalf("ReadParamValues: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("got %d values, want 2", len(values))
	}
	if values[1].ID != "SR1_EXTRA1" || values[1].Value != 10 {
		t.Errorf("values[1] = %+v", values[1])
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	base := float64(time.Date(2013, 6, 19, 14, 25, 45, 0, time.UTC).Unix())
	for _, ts := range []float64{base + 2, base, base + 0.2} {
		name := replay.FrameName("raw", ts, types.ImageFormatPGM)
		if err := os.WriteFile(filepath.Join(dir, name), []byte("P5"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.pgm"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := ListImages(dir, types.ImageFormatPGM, log.Nop())
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].CaptureTime != "2013-06-19 14:25:45.00" {
		t.Errorf("entries[0].CaptureTime = %q", entries[0].CaptureTime)
	}
	if entries[1].CaptureTime != "2013-06-19 14:25:45.20" {
		t.Errorf("entries[1].CaptureTime = %q", entries[1].CaptureTime)
	}
}

func TestListImages_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ListImages(path, types.ImageFormatPGM, log.Nop()); err == nil {
		t.Fatal("expected error")
	}
}
