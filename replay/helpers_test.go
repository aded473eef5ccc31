package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pithecene-io/flightreplay/types"
	"github.com/pithecene-io/flightreplay/wire"
)

// writeRecording writes msgs as a framed recording and returns its path.
func writeRecording(t *testing.T, dir, name string, msgs ...*types.Message) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create recording: %v", err)
	}
	defer f.Close()
	for _, m := range msgs {
		if err := wire.WriteMessage(f, m); err != nil {
			t.Fatalf("write message: %v", err)
		}
	}
	return path
}

// writeImage creates an empty capture named for captureTime.
func writeImage(t *testing.T, dir string, captureTime float64) string {
	t.Helper()
	path := filepath.Join(dir, FrameName("raw", captureTime, types.ImageFormatPGM))
	if err := os.WriteFile(path, []byte("P5\n1 1\n255\n\x00"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

func msgAt(typ string, ts float64, fields map[string]any) *types.Message {
	if fields == nil {
		fields = map[string]any{}
	}
	return &types.Message{Type: typ, Timestamp: ts, Fields: fields}
}

func paramAt(id string, value, ts float64) *types.Message {
	return msgAt(types.MsgParamValue, ts, map[string]any{
		"param_id":    id,
		"param_value": value,
	})
}
