package reader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pithecene-io/flightreplay/iox"
	"github.com/pithecene-io/flightreplay/log"
	"github.com/pithecene-io/flightreplay/replay"
	"github.com/pithecene-io/flightreplay/types"
	"github.com/pithecene-io/flightreplay/wire"
)

// InspectLog reads a whole recording and summarizes it.
// Unlike playback, DATA* records are counted.
func InspectLog(path string) (*LogSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer iox.DiscardClose(f)

	summary := &LogSummary{File: path, FormatVersion: types.FormatVersion}
	counts := make(map[string]int64)
	first := true

	err = eachMessage(f, func(m *types.Message) {
		summary.Messages++
		if m.IsDiagnostic() {
			summary.Diagnostic++
		}
		counts[m.Type]++
		if first {
			summary.FirstTimestamp = m.Timestamp
			first = false
		}
		summary.LastTimestamp = m.Timestamp
	}, func() { summary.DecodeErrors++ })
	if err != nil {
		if !wire.IsFatalFrameError(err) {
			return nil, err
		}
		summary.Truncated = true
	}

	for t, n := range counts {
		summary.Types = append(summary.Types, TypeCount{Type: t, Count: n})
	}
	sort.Slice(summary.Types, func(i, j int) bool {
		if summary.Types[i].Count != summary.Types[j].Count {
			return summary.Types[i].Count > summary.Types[j].Count
		}
		return summary.Types[i].Type < summary.Types[j].Type
	})

	if summary.Messages > 0 {
		summary.Start = replay.RecordedTime(summary.FirstTimestamp).UTC().Format(time.RFC3339Nano)
		span := time.Duration((summary.LastTimestamp - summary.FirstTimestamp) * float64(time.Second))
		summary.Span = span.Round(time.Millisecond).String()
	}
	return summary, nil
}

// ReadParamValues collects the last reported value of every parameter.
func ReadParamValues(path string) ([]types.ParamValue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer iox.DiscardClose(f)

	var values []types.ParamValue
	err = eachMessage(f, func(m *types.Message) {
		if m.Type != types.MsgParamValue {
			return
		}
		if pv, perr := types.ParamValueFrom(m); perr == nil {
			values = append(values, pv)
		}
	}, nil)
	if err != nil && !wire.IsFatalFrameError(err) {
		return nil, err
	}
	return values, nil
}

// ListImages scans dir for captures in capture-time order.
func ListImages(dir string, format types.ImageFormat, logger *log.Logger) ([]ImageEntry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("image directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("image directory: %s is not a directory", dir)
	}

	index := replay.ScanImages(dir, format, logger)
	frames := index.Frames()
	entries := make([]ImageEntry, 0, len(frames))
	for _, fr := range frames {
		entries = append(entries, ImageEntry{
			Name:        filepath.Base(fr.Path),
			CaptureTime: captureTime(fr.CaptureTime).Format("2006-01-02 15:04:05.00"),
			Timestamp:   fr.CaptureTime,
		})
	}
	return entries, nil
}

// captureTime rounds to the hundredths the filename carries.
func captureTime(ts float64) time.Time {
	return time.Unix(0, int64(math.Round(ts*100))*int64(10*time.Millisecond)).UTC()
}

// eachMessage visits every decodable message. Non-fatal decode errors call
// onDecodeError and continue. A fatal frame error is returned; io.EOF is not.
func eachMessage(r io.Reader, visit func(*types.Message), onDecodeError func()) error {
	wr := wire.NewReader(bufio.NewReaderSize(r, 64*1024))
	for {
		m, err := wr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var fe *wire.FrameError
			if errors.As(err, &fe) && !fe.IsFatal() {
				if onDecodeError != nil {
					onDecodeError()
				}
				continue
			}
			return err
		}
		visit(m)
	}
}
