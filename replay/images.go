package replay

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pithecene-io/flightreplay/log"
	"github.com/pithecene-io/flightreplay/types"
)

// frameTimePattern matches YYYYMMDDHHMMSS followed by two digits of hundredths.
var frameTimePattern = regexp.MustCompile(`(\d{14})(\d{2})`)

// frameTimeLayout is the layout of the first 14 digits.
const frameTimeLayout = "20060102150405"

// ParseFrameTime extracts the capture time from an image filename.
// The first run of 16 digits is read as UTC YYYYMMDDHHMMSS plus hundredths,
// so raw2013061914254520Z.pgm is 2013-06-19 14:25:45.20 UTC.
func ParseFrameTime(name string) (float64, error) {
	base := filepath.Base(name)
	m := frameTimePattern.FindStringSubmatch(base)
	if m == nil {
		return 0, fmt.Errorf("no timestamp in image name %q", base)
	}
	t, err := time.ParseInLocation(frameTimeLayout, m[1], time.UTC)
	if err != nil {
		return 0, fmt.Errorf("bad timestamp in image name %q: %w", base, err)
	}
	hundredths, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, fmt.Errorf("bad timestamp in image name %q: %w", base, err)
	}
	return float64(t.Unix()) + float64(hundredths)/100, nil
}

// FrameName formats a capture time with the naming convention ParseFrameTime reads.
func FrameName(prefix string, captureTime float64, format types.ImageFormat) string {
	sec := int64(captureTime)
	hundredths := int64((captureTime-float64(sec))*100 + 0.5)
	if hundredths >= 100 {
		sec++
		hundredths -= 100
	}
	stamp := time.Unix(sec, 0).UTC().Format(frameTimeLayout)
	return fmt.Sprintf("%s%s%02dZ%s", prefix, stamp, hundredths, format.Extension())
}

// ImageIndex is the time-ordered queue of captures for one pass.
// Consumed front to back; never re-sorted.
type ImageIndex struct {
	frames []types.ImageFrame
	head   int
}

// NewImageIndex builds an index from frames, sorting by capture time.
// Ties keep their input order.
func NewImageIndex(frames []types.ImageFrame) *ImageIndex {
	sorted := make([]types.ImageFrame, len(frames))
	copy(sorted, frames)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CaptureTime < sorted[j].CaptureTime
	})
	return &ImageIndex{frames: sorted}
}

// ScanImages lists the captures of the given format in dir.
// A missing or empty directory yields an empty index, not an error.
// Files whose names carry no timestamp are skipped with a warning.
func ScanImages(dir string, format types.ImageFormat, logger *log.Logger) *ImageIndex {
	if logger == nil {
		logger = log.Nop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("image directory unreadable", map[string]any{
			"dir":   dir,
			"error": err.Error(),
		})
		return NewImageIndex(nil)
	}

	ext := format.Extension()
	var frames []types.ImageFrame
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		ts, err := ParseFrameTime(e.Name())
		if err != nil {
			logger.Warn("skipping image", map[string]any{
				"name":  e.Name(),
				"error": err.Error(),
			})
			continue
		}
		frames = append(frames, types.ImageFrame{
			CaptureTime: ts,
			Path:        filepath.Join(dir, e.Name()),
		})
	}
	return NewImageIndex(frames)
}

// Len returns the number of frames not yet consumed.
func (x *ImageIndex) Len() int {
	return len(x.frames) - x.head
}

// Front returns the next frame without consuming it.
func (x *ImageIndex) Front() (types.ImageFrame, bool) {
	if x.Len() == 0 {
		return types.ImageFrame{}, false
	}
	return x.frames[x.head], true
}

// Pop consumes the front frame.
func (x *ImageIndex) Pop() (types.ImageFrame, bool) {
	f, ok := x.Front()
	if ok {
		x.head++
	}
	return f, ok
}

// SkipBefore discards frames captured before ts and returns how many.
func (x *ImageIndex) SkipBefore(ts float64) int {
	n := 0
	for {
		f, ok := x.Front()
		if !ok || f.CaptureTime >= ts {
			return n
		}
		x.head++
		n++
	}
}

// Span returns the recorded time between the first and last remaining frames.
func (x *ImageIndex) Span() time.Duration {
	if x.Len() < 2 {
		return 0
	}
	first := x.frames[x.head].CaptureTime
	last := x.frames[len(x.frames)-1].CaptureTime
	return time.Duration((last - first) * float64(time.Second))
}

// Frames returns a copy of the remaining frames.
func (x *ImageIndex) Frames() []types.ImageFrame {
	out := make([]types.ImageFrame, x.Len())
	copy(out, x.frames[x.head:])
	return out
}
