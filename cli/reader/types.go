// Package reader provides the read-only data behind inspect, images,
// check-rates and stats. Commands render what it returns; nothing here
// writes to a link or the image directory.
package reader

// TypeCount is the number of messages of one type in a recording.
type TypeCount struct {
	Type  string `json:"type" yaml:"type"`
	Count int64  `json:"count" yaml:"count"`
}

// LogSummary describes a recording.
type LogSummary struct {
	File           string      `json:"file" yaml:"file"`
	FormatVersion  string      `json:"format_version" yaml:"format_version"`
	Messages       int64       `json:"messages" yaml:"messages"`
	Diagnostic     int64       `json:"diagnostic" yaml:"diagnostic"`
	DecodeErrors   int64       `json:"decode_errors" yaml:"decode_errors"`
	Truncated      bool        `json:"truncated" yaml:"truncated"`
	FirstTimestamp float64     `json:"first_timestamp" yaml:"first_timestamp"`
	LastTimestamp  float64     `json:"last_timestamp" yaml:"last_timestamp"`
	Start          string      `json:"start" yaml:"start"`
	Span           string      `json:"span" yaml:"span"`
	Types          []TypeCount `json:"types" yaml:"types"`
}

// ImageEntry is one capture in an image directory listing.
type ImageEntry struct {
	Name        string  `json:"name" yaml:"name"`
	CaptureTime string  `json:"capture_time" yaml:"capture_time"`
	Timestamp   float64 `json:"timestamp" yaml:"timestamp"`
}

// RateReport is the outcome of a stream-rate check.
type RateReport struct {
	File          string   `json:"file" yaml:"file"`
	ParamsSeen    int      `json:"params_seen" yaml:"params_seen"`
	Discrepancies []string `json:"discrepancies" yaml:"discrepancies"`
	Corrected     int      `json:"corrected" yaml:"corrected"`
}

// MetricsSnapshot is the stored end-of-session metrics record.
type MetricsSnapshot struct {
	Ts        string `json:"ts" yaml:"ts"`
	SessionID string `json:"session_id" yaml:"session_id"`
	Source    string `json:"source" yaml:"source"`

	PassesStarted  int64 `json:"passes_started" yaml:"passes_started"`
	FilesPlayed    int64 `json:"files_played" yaml:"files_played"`
	FilesTruncated int64 `json:"files_truncated" yaml:"files_truncated"`

	MessagesEmitted   int64 `json:"messages_emitted" yaml:"messages_emitted"`
	MessagesFiltered  int64 `json:"messages_filtered" yaml:"messages_filtered"`
	MessagesDropped   int64 `json:"messages_dropped" yaml:"messages_dropped"`
	DecodeErrors      int64 `json:"decode_errors" yaml:"decode_errors"`
	LinkWriteFailures int64 `json:"link_write_failures" yaml:"link_write_failures"`

	ImagesPublished int64 `json:"images_published" yaml:"images_published"`
	ImagesSkipped   int64 `json:"images_skipped" yaml:"images_skipped"`
	PublishFailures int64 `json:"publish_failures" yaml:"publish_failures"`

	ParamRequests  int64 `json:"param_requests" yaml:"param_requests"`
	ParamsReplayed int64 `json:"params_replayed" yaml:"params_replayed"`

	HILSynthesized int64 `json:"hil_synthesized" yaml:"hil_synthesized"`
	HILIncomplete  int64 `json:"hil_incomplete" yaml:"hil_incomplete"`

	Link          string `json:"link" yaml:"link"`
	ImageFormat   string `json:"image_format" yaml:"image_format"`
	ReportBackend string `json:"report_backend" yaml:"report_backend"`
}

// FileRow is one played recording in a stats view.
type FileRow struct {
	Pass     int    `json:"pass" yaml:"pass"`
	File     string `json:"file" yaml:"file"`
	Outcome  string `json:"outcome" yaml:"outcome"`
	Emitted  int64  `json:"emitted" yaml:"emitted"`
	Images   int64  `json:"images" yaml:"images"`
	Params   int64  `json:"params" yaml:"params"`
	Recorded string `json:"recorded" yaml:"recorded"`
	Wall     string `json:"wall" yaml:"wall"`
}

// SessionStats is the stats command payload.
type SessionStats struct {
	Metrics *MetricsSnapshot `json:"metrics" yaml:"metrics"`
	Files   []FileRow        `json:"files" yaml:"files"`
}
