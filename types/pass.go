//nolint:revive // types is a common Go package naming convention
package types

import "time"

// FileOutcome is how playback of one recording ended.
type FileOutcome string

const (
	// FileOutcomeCompleted means the recording was read to its end.
	FileOutcomeCompleted FileOutcome = "completed"
	// FileOutcomeTruncated means a malformed frame stopped playback early.
	FileOutcomeTruncated FileOutcome = "truncated"
	// FileOutcomeCanceled means an external stop interrupted playback.
	FileOutcomeCanceled FileOutcome = "canceled"
	// FileOutcomeEmpty means no qualifying message was found.
	FileOutcomeEmpty FileOutcome = "empty"
)

// FileResult summarizes playback of one recording within a pass.
type FileResult struct {
	Pass             int           `json:"pass"`
	File             string        `json:"file"`
	Outcome          FileOutcome   `json:"outcome"`
	MessagesEmitted  int64         `json:"messages_emitted"`
	MessagesFiltered int64         `json:"messages_filtered"`
	MessagesDropped  int64         `json:"messages_dropped"`
	DecodeErrors     int64         `json:"decode_errors"`
	ImagesPublished  int64         `json:"images_published"`
	ImagesSkipped    int64         `json:"images_skipped"`
	ParamsReplayed   int64         `json:"params_replayed"`
	FirstTimestamp   float64       `json:"first_timestamp"`
	LastTimestamp    float64       `json:"last_timestamp"`
	WallDuration     time.Duration `json:"wall_duration"`
}

// RecordedSpan returns the recorded time covered by the file.
func (r *FileResult) RecordedSpan() time.Duration {
	if r.LastTimestamp <= r.FirstTimestamp {
		return 0
	}
	return time.Duration((r.LastTimestamp - r.FirstTimestamp) * float64(time.Second))
}

// SessionResult summarizes a whole replay session.
type SessionResult struct {
	SessionID string        `json:"session_id"`
	Passes    int           `json:"passes"`
	Files     []FileResult  `json:"files"`
	Duration  time.Duration `json:"duration"`
	Canceled  bool          `json:"canceled"`
}

// TotalEmitted sums emitted messages across all files.
func (s *SessionResult) TotalEmitted() int64 {
	var n int64
	for i := range s.Files {
		n += s.Files[i].MessagesEmitted
	}
	return n
}

// TotalImages sums published images across all files.
func (s *SessionResult) TotalImages() int64 {
	var n int64
	for i := range s.Files {
		n += s.Files[i].ImagesPublished
	}
	return n
}
