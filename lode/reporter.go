// Package lode persists replay reports to a Lode dataset.
//
// Every played recording produces one file_result record; every session
// ends with one metrics record. Records are Hive-partitioned by
// source/day/session_id/record_kind so the stats command can find the
// latest session without scanning everything.
package lode

import (
	"context"
	"time"

	"github.com/pithecene-io/flightreplay/metrics"
	"github.com/pithecene-io/flightreplay/types"
)

// DefaultDataset is the dataset ID reports are written to.
const DefaultDataset = "flightreplay"

// DefaultSource is the source partition when none is configured.
const DefaultSource = "flightreplay"

// partitionKeys is the Hive layout shared by the write and read paths.
var partitionKeys = []string{"source", "day", "session_id", "record_kind"}

// DeriveDay computes the partition day from session start time.
// Format: YYYY-MM-DD in UTC.
func DeriveDay(startTime time.Time) string {
	return startTime.UTC().Format("2006-01-02")
}

// Config holds report partitioning.
type Config struct {
	// Dataset is the Lode dataset ID.
	Dataset string
	// Source is the partition key for the mission or vehicle being replayed.
	Source string
	// Day is derived from session start time (YYYY-MM-DD UTC).
	Day string
	// SessionID is the replay session identifier.
	SessionID string
}

// withDefaults fills empty partition values.
func (c Config) withDefaults() Config {
	if c.Dataset == "" {
		c.Dataset = DefaultDataset
	}
	if c.Source == "" {
		c.Source = DefaultSource
	}
	if c.Day == "" {
		c.Day = DeriveDay(time.Now())
	}
	return c
}

// Reporter persists replay reports.
type Reporter interface {
	// WriteFileResult records the outcome of one played recording.
	WriteFileResult(ctx context.Context, result types.FileResult) error
	// WriteMetrics records the end-of-session metrics snapshot.
	WriteMetrics(ctx context.Context, snap metrics.Snapshot, completedAt time.Time) error
	// Close releases reporter resources.
	Close() error
}

// InstrumentedReporter wraps a Reporter and counts write outcomes.
type InstrumentedReporter struct {
	inner     Reporter
	collector *metrics.Collector
}

// NewInstrumentedReporter wraps inner with metrics instrumentation.
func NewInstrumentedReporter(inner Reporter, collector *metrics.Collector) *InstrumentedReporter {
	return &InstrumentedReporter{inner: inner, collector: collector}
}

// WriteFileResult delegates to the inner reporter and records success or failure.
func (r *InstrumentedReporter) WriteFileResult(ctx context.Context, result types.FileResult) error {
	err := r.inner.WriteFileResult(ctx, result)
	r.record(err)
	return err
}

// WriteMetrics delegates to the inner reporter and records success or failure.
// The snapshot is taken by the caller, so this write is not part of it.
func (r *InstrumentedReporter) WriteMetrics(ctx context.Context, snap metrics.Snapshot, completedAt time.Time) error {
	err := r.inner.WriteMetrics(ctx, snap, completedAt)
	r.record(err)
	return err
}

// Close delegates to the inner reporter.
func (r *InstrumentedReporter) Close() error {
	return r.inner.Close()
}

func (r *InstrumentedReporter) record(err error) {
	if err != nil {
		r.collector.IncReportWriteFailure()
	} else {
		r.collector.IncReportWriteSuccess()
	}
}

// StubReporter records writes in memory for testing.
type StubReporter struct {
	Results []types.FileResult
	Metrics []metrics.Snapshot
	Closed  bool
	// Err, if set, is returned by every write.
	Err error
}

// NewStubReporter creates a stub reporter.
func NewStubReporter() *StubReporter {
	return &StubReporter{}
}

// WriteFileResult implements Reporter.
func (s *StubReporter) WriteFileResult(_ context.Context, result types.FileResult) error {
	if s.Err != nil {
		return s.Err
	}
	s.Results = append(s.Results, result)
	return nil
}

// WriteMetrics implements Reporter.
func (s *StubReporter) WriteMetrics(_ context.Context, snap metrics.Snapshot, _ time.Time) error {
	if s.Err != nil {
		return s.Err
	}
	s.Metrics = append(s.Metrics, snap)
	return nil
}

// Close implements Reporter.
func (s *StubReporter) Close() error {
	s.Closed = true
	return nil
}

// Verify implementations.
var (
	_ Reporter = (*InstrumentedReporter)(nil)
	_ Reporter = (*StubReporter)(nil)
)
