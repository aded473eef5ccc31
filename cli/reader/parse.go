package reader

import (
	"errors"
	"time"

	"github.com/pithecene-io/flightreplay/lode"
	"github.com/pithecene-io/flightreplay/types"
)

// ParseMetricsRecord converts a stored metrics record to a MetricsSnapshot.
// Numeric fields may be int64 (direct writes) or float64 (JSON round trip).
func ParseMetricsRecord(record map[string]any) (*MetricsSnapshot, error) {
	if record == nil {
		return nil, errors.New("nil record")
	}

	snap := &MetricsSnapshot{
		Ts:        toString(record["ts"]),
		SessionID: toString(record["session_id"]),
		Source:    toString(record["source"]),

		PassesStarted:  toInt64(record["passes_started"]),
		FilesPlayed:    toInt64(record["files_played"]),
		FilesTruncated: toInt64(record["files_truncated"]),

		MessagesEmitted:   toInt64(record["messages_emitted"]),
		MessagesFiltered:  toInt64(record["messages_filtered"]),
		MessagesDropped:   toInt64(record["messages_dropped"]),
		DecodeErrors:      toInt64(record["decode_errors"]),
		LinkWriteFailures: toInt64(record["link_write_failures"]),

		ImagesPublished: toInt64(record["images_published"]),
		ImagesSkipped:   toInt64(record["images_skipped"]),
		PublishFailures: toInt64(record["publish_failures"]),

		ParamRequests:  toInt64(record["param_requests"]),
		ParamsReplayed: toInt64(record["params_replayed"]),

		HILSynthesized: toInt64(record["hil_synthesized"]),
		HILIncomplete:  toInt64(record["hil_incomplete"]),

		Link:          toString(record["link"]),
		ImageFormat:   toString(record["image_format"]),
		ReportBackend: toString(record["report_backend"]),
	}

	// The write path always sets these; absence means a malformed record.
	if snap.Ts == "" {
		return nil, errors.New("metrics record missing required field: ts")
	}
	if snap.SessionID == "" {
		return nil, errors.New("metrics record missing required field: session_id")
	}
	return snap, nil
}

// FileRows converts stored file results for display.
func FileRows(records []lode.FileResultRecord) []FileRow {
	rows := make([]FileRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, FileRow{
			Pass:     r.Pass,
			File:     r.File,
			Outcome:  r.Outcome,
			Emitted:  r.MessagesEmitted,
			Images:   r.ImagesPublished,
			Params:   r.ParamsReplayed,
			Recorded: (time.Duration(r.RecordedSpanMS) * time.Millisecond).String(),
			Wall:     (time.Duration(r.WallDurationMS) * time.Millisecond).String(),
		})
	}
	return rows
}

func toInt64(v any) int64 {
	f, ok := types.ToFloat(v)
	if !ok {
		return 0
	}
	return int64(f)
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
