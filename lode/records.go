package lode

import (
	"time"

	"github.com/pithecene-io/flightreplay/metrics"
	"github.com/pithecene-io/flightreplay/types"
)

// RecordKind discriminator values. Also the last partition key.
const (
	RecordKindFileResult = "file_result"
	RecordKindMetrics    = "metrics"
)

// FileResultRecord is the storage format for one played recording.
type FileResultRecord struct {
	RecordKind string `json:"record_kind"`

	Pass             int     `json:"pass"`
	File             string  `json:"file"`
	Outcome          string  `json:"outcome"`
	MessagesEmitted  int64   `json:"messages_emitted"`
	MessagesFiltered int64   `json:"messages_filtered"`
	MessagesDropped  int64   `json:"messages_dropped"`
	DecodeErrors     int64   `json:"decode_errors"`
	ImagesPublished  int64   `json:"images_published"`
	ImagesSkipped    int64   `json:"images_skipped"`
	ParamsReplayed   int64   `json:"params_replayed"`
	FirstTimestamp   float64 `json:"first_timestamp"`
	LastTimestamp    float64 `json:"last_timestamp"`
	RecordedSpanMS   int64   `json:"recorded_span_ms"`
	WallDurationMS   int64   `json:"wall_duration_ms"`

	// Partition keys
	Source    string `json:"source"`
	Day       string `json:"day"`
	SessionID string `json:"session_id"`
}

// toFileResultRecordMap converts a FileResult to a map for Lode storage.
// Lode HiveLayout requires records as map[string]any.
func toFileResultRecordMap(r types.FileResult, cfg Config) map[string]any {
	return map[string]any{
		"record_kind":       RecordKindFileResult,
		"pass":              r.Pass,
		"file":              r.File,
		"outcome":           string(r.Outcome),
		"messages_emitted":  r.MessagesEmitted,
		"messages_filtered": r.MessagesFiltered,
		"messages_dropped":  r.MessagesDropped,
		"decode_errors":     r.DecodeErrors,
		"images_published":  r.ImagesPublished,
		"images_skipped":    r.ImagesSkipped,
		"params_replayed":   r.ParamsReplayed,
		"first_timestamp":   r.FirstTimestamp,
		"last_timestamp":    r.LastTimestamp,
		"recorded_span_ms":  r.RecordedSpan().Milliseconds(),
		"wall_duration_ms":  r.WallDuration.Milliseconds(),
		"source":            cfg.Source,
		"day":               cfg.Day,
		"session_id":        cfg.SessionID,
	}
}

// toMetricsRecordMap converts a metrics snapshot to a map for Lode storage.
func toMetricsRecordMap(snap metrics.Snapshot, completedAt time.Time, cfg Config) map[string]any {
	return map[string]any{
		"record_kind":          RecordKindMetrics,
		"ts":                   completedAt.UTC().Format(time.RFC3339Nano),
		"passes_started":       snap.PassesStarted,
		"files_played":         snap.FilesPlayed,
		"files_truncated":      snap.FilesTruncated,
		"messages_emitted":     snap.MessagesEmitted,
		"messages_filtered":    snap.MessagesFiltered,
		"messages_dropped":     snap.MessagesDropped,
		"decode_errors":        snap.DecodeErrors,
		"link_write_failures":  snap.LinkWriteFailure,
		"images_published":     snap.ImagesPublished,
		"images_skipped":       snap.ImagesSkipped,
		"publish_failures":     snap.PublishFailures,
		"param_requests":       snap.ParamRequests,
		"params_replayed":      snap.ParamsReplayed,
		"hil_synthesized":      snap.HILSynthesized,
		"hil_incomplete":       snap.HILIncomplete,
		"report_write_success": snap.ReportWriteSuccess,
		"report_write_failure": snap.ReportWriteFailure,
		"link":                 snap.Link,
		"image_format":         snap.ImageFormat,
		"report_backend":       snap.ReportBackend,
		"source":               cfg.Source,
		"day":                  cfg.Day,
		"session_id":           cfg.SessionID,
	}
}

// FileResultFromRecord parses a stored file_result record.
// Numbers may come back as float64 after a JSON round trip.
func FileResultFromRecord(record map[string]any) FileResultRecord {
	return FileResultRecord{
		RecordKind:       toString(record["record_kind"]),
		Pass:             int(toInt64(record["pass"])),
		File:             toString(record["file"]),
		Outcome:          toString(record["outcome"]),
		MessagesEmitted:  toInt64(record["messages_emitted"]),
		MessagesFiltered: toInt64(record["messages_filtered"]),
		MessagesDropped:  toInt64(record["messages_dropped"]),
		DecodeErrors:     toInt64(record["decode_errors"]),
		ImagesPublished:  toInt64(record["images_published"]),
		ImagesSkipped:    toInt64(record["images_skipped"]),
		ParamsReplayed:   toInt64(record["params_replayed"]),
		FirstTimestamp:   toFloat64(record["first_timestamp"]),
		LastTimestamp:    toFloat64(record["last_timestamp"]),
		RecordedSpanMS:   toInt64(record["recorded_span_ms"]),
		WallDurationMS:   toInt64(record["wall_duration_ms"]),
		Source:           toString(record["source"]),
		Day:              toString(record["day"]),
		SessionID:        toString(record["session_id"]),
	}
}

// toString converts a value to string, returning empty string for nil/non-string.
func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// toInt64 converts a stored number to int64.
func toInt64(v any) int64 {
	f, ok := types.ToFloat(v)
	if !ok {
		return 0
	}
	return int64(f)
}

// toFloat64 converts a stored number to float64.
func toFloat64(v any) float64 {
	f, _ := types.ToFloat(v)
	return f
}
