package replay

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pithecene-io/flightreplay/types"
)

func TestParseFrameTime(t *testing.T) {
	base := float64(time.Date(2013, 6, 19, 14, 25, 45, 0, time.UTC).Unix())
	tests := []struct {
		name    string
		want    float64
		wantErr bool
	}{
		{"raw2013061914254520Z.pgm", base + 0.20, false},
		{"/data/images/raw2013061914254599Z.jpg", base + 0.99, false},
		{"2013061914254500.pgm", base, false},
		// The first 16-digit run wins.
		{"cam1_2013061914254501_2014010100000000.pgm", base + 0.01, false},
		{"raw201306191425.pgm", 0, true},
		{"notes.pgm", 0, true},
		{"raw2013139914254520Z.pgm", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFrameTime(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("ParseFrameTime = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestFrameName_RoundTrip(t *testing.T) {
	ts := float64(time.Date(2013, 6, 19, 14, 25, 45, 0, time.UTC).Unix()) + 0.2
	name := FrameName("raw", ts, types.ImageFormatPGM)
	if name != "raw2013061914254520Z.pgm" {
		t.Errorf("FrameName = %q", name)
	}
	got, err := ParseFrameTime(name)
	if err != nil {
		t.Fatalf("ParseFrameTime: %v", err)
	}
	if math.Abs(got-ts) > 1e-6 {
		t.Errorf("round trip = %f, want %f", got, ts)
	}
	if jpg := FrameName("raw", ts, types.ImageFormatJPEG); filepath.Ext(jpg) != ".jpg" {
		t.Errorf("jpeg name = %q", jpg)
	}
}

func TestScanImages(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, 1000.5)
	writeImage(t, dir, 1000.1)
	writeImage(t, dir, 1002)
	// Wrong extension, unparseable name, and a directory are all ignored.
	if err := os.WriteFile(filepath.Join(dir, FrameName("raw", 999, types.ImageFormatJPEG)), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "junk.pgm"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, FrameName("sub", 1, types.ImageFormatPGM)), 0o755); err != nil {
		t.Fatal(err)
	}

	index := ScanImages(dir, types.ImageFormatPGM, nil)
	if index.Len() != 3 {
		t.Fatalf("Len = %d, want 3", index.Len())
	}
	frames := index.Frames()
	for i := 1; i < len(frames); i++ {
		if frames[i].CaptureTime < frames[i-1].CaptureTime {
			t.Errorf("frames out of order: %v before %v", frames[i-1].CaptureTime, frames[i].CaptureTime)
		}
	}
	if math.Abs(frames[0].CaptureTime-1000.1) > 1e-6 {
		t.Errorf("first frame = %f, want 1000.1", frames[0].CaptureTime)
	}
	if span := index.Span(); span < 1890*time.Millisecond || span > 1910*time.Millisecond {
		t.Errorf("Span = %s, want 1.9s", span)
	}

	jpegs := ScanImages(dir, types.ImageFormatJPEG, nil)
	if jpegs.Len() != 1 {
		t.Errorf("jpeg Len = %d, want 1", jpegs.Len())
	}
}

func TestScanImages_MissingDir(t *testing.T) {
	index := ScanImages(filepath.Join(t.TempDir(), "nope"), types.ImageFormatPGM, nil)
	if index.Len() != 0 {
		t.Errorf("Len = %d, want 0", index.Len())
	}
	if _, ok := index.Front(); ok {
		t.Error("Front on empty index returned a frame")
	}
}

func TestImageIndex_StableTies(t *testing.T) {
	index := NewImageIndex([]types.ImageFrame{
		{CaptureTime: 2, Path: "c"},
		{CaptureTime: 1, Path: "a"},
		{CaptureTime: 2, Path: "d"},
		{CaptureTime: 1, Path: "b"},
	})
	var got string
	for {
		f, ok := index.Pop()
		if !ok {
			break
		}
		got += f.Path
	}
	if got != "abcd" {
		t.Errorf("order = %q, want abcd", got)
	}
}

func TestImageIndex_SkipBefore(t *testing.T) {
	index := NewImageIndex([]types.ImageFrame{
		{CaptureTime: 1}, {CaptureTime: 2}, {CaptureTime: 3}, {CaptureTime: 4},
	})
	if n := index.SkipBefore(3); n != 2 {
		t.Errorf("SkipBefore(3) = %d, want 2", n)
	}
	if f, _ := index.Front(); f.CaptureTime != 3 {
		t.Errorf("Front = %v, want 3", f.CaptureTime)
	}
	if n := index.SkipBefore(0); n != 0 {
		t.Errorf("SkipBefore(0) = %d, want 0", n)
	}
	if n := index.SkipBefore(100); n != 2 {
		t.Errorf("SkipBefore(100) = %d, want 2", n)
	}
	if index.Len() != 0 {
		t.Errorf("Len = %d, want 0", index.Len())
	}
}
