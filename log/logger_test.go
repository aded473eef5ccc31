package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestLogger_SessionContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("01HZXSESSION", &buf)

	l.WithPass(2).WithFile("flight.tlog").Info("opened recording", map[string]any{"first_ts": 12.5})

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e["session_id"] != "01HZXSESSION" {
		t.Errorf("session_id = %v", e["session_id"])
	}
	if e["pass"] != float64(2) {
		t.Errorf("pass = %v", e["pass"])
	}
	if e["file"] != "flight.tlog" {
		t.Errorf("file = %v", e["file"])
	}
	if e["level"] != "info" {
		t.Errorf("level = %v", e["level"])
	}
	if e["message"] != "opened recording" {
		t.Errorf("message = %v", e["message"])
	}
	fields, ok := e["fields"].(map[string]any)
	if !ok || fields["first_ts"] != 12.5 {
		t.Errorf("fields = %v", e["fields"])
	}
}

func TestSugaredLogger_Printf(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("s", &buf)
	l.Sugar().With("component", "cli").Warnf("found %d images", 3)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0]["message"] != "found 3 images" {
		t.Errorf("message = %v", entries[0]["message"])
	}
	if entries[0]["component"] != "cli" {
		t.Errorf("component = %v", entries[0]["component"])
	}
}

func TestNop_DoesNotPanic(_ *testing.T) {
	l := Nop()
	l.Info("ignored", nil)
	l.WithPass(1).Error("ignored", map[string]any{"x": 1})
}
