package lode

import "testing"

func TestMatchesPartitionValue(t *testing.T) {
	path := "datasets/flightreplay/partitions/source=m/day=2026-10-14/session_id=s-10/record_kind=metrics/data.jsonl"
	tests := []struct {
		key, value string
		want       bool
	}{
		{"session_id", "s-10", true},
		{"session_id", "s-1", false},
		{"record_kind", "metrics", true},
		{"record_kind", "file_result", false},
		{"source", "m", true},
	}
	for _, tt := range tests {
		if got := matchesPartitionValue(path, tt.key, tt.value); got != tt.want {
			t.Errorf("matchesPartitionValue(%s=%s) = %v, want %v", tt.key, tt.value, got, tt.want)
		}
	}
}

func TestParseS3Path(t *testing.T) {
	tests := []struct {
		in, bucket, prefix string
	}{
		{"reports", "reports", ""},
		{"reports/flightreplay", "reports", "flightreplay"},
		{"reports/a/b", "reports", "a/b"},
	}
	for _, tt := range tests {
		b, p := ParseS3Path(tt.in)
		if b != tt.bucket || p != tt.prefix {
			t.Errorf("ParseS3Path(%q) = %q, %q; want %q, %q", tt.in, b, p, tt.bucket, tt.prefix)
		}
	}
}

func TestS3Config_Validate(t *testing.T) {
	cfg := S3Config{}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty bucket")
	}
	cfg.Bucket = "reports"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewReadDatasetS3_RequiresBucket(t *testing.T) {
	if _, err := NewReadDatasetS3(t.Context(), "", S3Config{}); err == nil {
		t.Error("expected error for empty bucket")
	}
}
