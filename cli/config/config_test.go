package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pithecene-io/flightreplay/replay"
)

func TestLoad_FullConfig(t *testing.T) {
	yaml := `source: mission-7
files:
  - flight1.tlog
  - flight2.tlog
images: ./images
image_format: jpeg
stable_path: /tmp/live.jpg
publish_mode: copy
out: udp:127.0.0.1:14550
baud: 115200
speedup: 4
loop: true
hil: true
types: [ATTITUDE, GLOBAL_POSITION_INT]
condition: "VFR_HUD.airspeed > 20"
metrics_addr: ":9464"

pacing:
  fast_skip_divisor: 30
  lookahead: 3s
  max_wait: 10s

report:
  dataset: flightreplay
  backend: s3
  path: reports/prefix
  region: us-east-1
  endpoint: https://minio.local
  s3_path_style: true

adapter:
  type: webhook
  url: https://hooks.example.com/replay
  headers:
    Authorization: Bearer token123
  timeout: 10s
  retries: 3
`
	cfg, err := Load(writeTemp(t, yaml))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	assertEqual(t, "source", cfg.Source, "mission-7")
	assertEqual(t, "images", cfg.Images, "./images")
	assertEqual(t, "image_format", cfg.ImageFormat, "jpeg")
	assertEqual(t, "publish_mode", cfg.PublishMode, "copy")
	assertEqual(t, "out", cfg.Out, "udp:127.0.0.1:14550")
	assertEqual(t, "condition", cfg.Condition, "VFR_HUD.airspeed > 20")
	assertEqual(t, "metrics_addr", cfg.MetricsAddr, ":9464")
	if len(cfg.Files) != 2 || cfg.Files[1] != "flight2.tlog" {
		t.Errorf("files: got %v", cfg.Files)
	}
	if cfg.Baud != 115200 {
		t.Errorf("baud: got %d", cfg.Baud)
	}
	if cfg.Speedup != 4 {
		t.Errorf("speedup: got %v", cfg.Speedup)
	}
	if !cfg.Loop || !cfg.HIL {
		t.Error("loop and hil should be true")
	}
	if len(cfg.Types) != 2 || cfg.Types[0] != "ATTITUDE" {
		t.Errorf("types: got %v", cfg.Types)
	}

	if cfg.Pacing.FastSkipDivisor != 30 {
		t.Errorf("pacing.fast_skip_divisor: got %v", cfg.Pacing.FastSkipDivisor)
	}
	if cfg.Pacing.Lookahead.Duration != 3*time.Second {
		t.Errorf("pacing.lookahead: got %v", cfg.Pacing.Lookahead.Duration)
	}
	if cfg.Pacing.MaxWait.Duration != 10*time.Second {
		t.Errorf("pacing.max_wait: got %v", cfg.Pacing.MaxWait.Duration)
	}

	assertEqual(t, "report.backend", cfg.Report.Backend, "s3")
	assertEqual(t, "report.path", cfg.Report.Path, "reports/prefix")
	assertEqual(t, "report.region", cfg.Report.Region, "us-east-1")
	assertEqual(t, "report.endpoint", cfg.Report.Endpoint, "https://minio.local")
	if !cfg.Report.S3PathStyle {
		t.Error("report.s3_path_style should be true")
	}

	assertEqual(t, "adapter.type", cfg.Adapter.Type, "webhook")
	assertEqual(t, "adapter.headers.Authorization", cfg.Adapter.Headers["Authorization"], "Bearer token123")
	if cfg.Adapter.Timeout.Duration != 10*time.Second {
		t.Errorf("adapter.timeout: got %v", cfg.Adapter.Timeout.Duration)
	}
	if cfg.Adapter.Retries == nil || *cfg.Adapter.Retries != 3 {
		t.Errorf("adapter.retries: got %v", cfg.Adapter.Retries)
	}
}

func TestLoad_EmptyAndCommentOnly(t *testing.T) {
	for _, content := range []string{"", "   \n  \n", "# only a comment\n"} {
		cfg, err := Load(writeTemp(t, content))
		if err != nil {
			t.Fatalf("Load(%q) failed: %v", content, err)
		}
		if cfg.Source != "" || cfg.Speedup != 0 {
			t.Errorf("expected zero config, got %+v", cfg)
		}
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeTemp(t, "source: [unclosed")); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("FR_IMAGES", "/data/cam")
	cfg, err := Load(writeTemp(t, "images: ${FR_IMAGES}\nout: ${FR_OUT_UNSET:-udp:127.0.0.1:14550}\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertEqual(t, "images", cfg.Images, "/data/cam")
	assertEqual(t, "out", cfg.Out, "udp:127.0.0.1:14550")
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	tests := []struct {
		name, yaml, key string
	}{
		{"top level", "source: x\nbogus_key: 1\n", "bogus_key"},
		{"nested", "pacing:\n  lookahead: 1s\n  warp: 9\n", "warp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTemp(t, tt.yaml))
			if err == nil {
				t.Fatal("expected error for unknown key")
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error should mention %q, got: %v", tt.key, err)
			}
		})
	}
}

func TestLoad_RetriesZeroDistinctFromNil(t *testing.T) {
	cfg, err := Load(writeTemp(t, "adapter:\n  type: redis\n  url: redis://localhost\n  retries: 0\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Adapter.Retries == nil || *cfg.Adapter.Retries != 0 {
		t.Errorf("expected retries=0, got %v", cfg.Adapter.Retries)
	}

	cfg, err = Load(writeTemp(t, "adapter:\n  type: redis\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Adapter.Retries != nil {
		t.Errorf("expected nil retries, got %d", *cfg.Adapter.Retries)
	}
}

func TestDuration_InvalidFormat(t *testing.T) {
	_, err := Load(writeTemp(t, "pacing:\n  max_wait: soon\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Fatalf("expected invalid duration error, got %v", err)
	}
}

func TestPacingConfig_Apply(t *testing.T) {
	base := replay.DefaultPacing()

	got, err := PacingConfig{}.Apply(base)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got != base {
		t.Errorf("zero config should keep defaults: got %+v", got)
	}

	got, err = PacingConfig{
		FastSkipDivisor: 10,
		MaxWait:         Duration{Duration: time.Second},
	}.Apply(base)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got.FastSkipDivisor != 10 || got.MaxWait != time.Second || got.Lookahead != base.Lookahead {
		t.Errorf("unexpected pacing %+v", got)
	}

	if _, err := (PacingConfig{FastSkipDivisor: -1}).Apply(base); err == nil {
		t.Error("expected validation error for negative divisor")
	}
}

// writeTemp writes content to a temp file and returns the path.
func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flightreplay.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func assertEqual(t *testing.T, field, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %q, want %q", field, got, want)
	}
}
