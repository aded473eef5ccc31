package reader

import (
	"context"
	"errors"

	lodeapi "github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/flightreplay/lode"
)

// StatsReader loads stored session statistics.
type StatsReader interface {
	// SessionStats returns the latest session matching sessionID and source.
	// Empty filters match any session.
	SessionStats(ctx context.Context, sessionID, source string) (*SessionStats, error)
}

// LodeStatsReader reads stats from a lode report dataset.
type LodeStatsReader struct {
	ds lodeapi.Dataset
}

// NewLodeStatsReader creates a reader over ds.
func NewLodeStatsReader(ds lodeapi.Dataset) *LodeStatsReader {
	return &LodeStatsReader{ds: ds}
}

// SessionStats implements StatsReader.
func (r *LodeStatsReader) SessionStats(ctx context.Context, sessionID, source string) (*SessionStats, error) {
	record, err := lode.QueryLatestMetrics(ctx, r.ds, sessionID, source)
	if err != nil {
		return nil, err
	}
	snap, err := ParseMetricsRecord(record)
	if err != nil {
		return nil, err
	}
	files, err := lode.QueryFileResults(ctx, r.ds, snap.SessionID)
	if err != nil {
		return nil, err
	}
	return &SessionStats{Metrics: snap, Files: FileRows(files)}, nil
}

// StubStatsReader returns fixed stats for testing commands.
type StubStatsReader struct {
	Stats *SessionStats
	Err   error
}

// SessionStats implements StatsReader.
func (s *StubStatsReader) SessionStats(_ context.Context, _, _ string) (*SessionStats, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Stats == nil {
		return nil, lode.ErrNoMetricsFound
	}
	return s.Stats, nil
}

// ErrNoSessions reports whether err means nothing has been recorded yet.
func ErrNoSessions(err error) bool {
	return errors.Is(err, lode.ErrNoMetricsFound)
}

var (
	_ StatsReader = (*LodeStatsReader)(nil)
	_ StatsReader = (*StubStatsReader)(nil)
)
