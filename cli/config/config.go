package config

import (
	"fmt"
	"time"

	"github.com/pithecene-io/flightreplay/replay"
)

// Config represents a flightreplay.yaml configuration file.
// All values are optional and act as defaults for play flags.
// Explicitly set CLI flags always override config values.
type Config struct {
	Source      string        `yaml:"source"`
	Files       []string      `yaml:"files"`
	Images      string        `yaml:"images"`
	ImageFormat string        `yaml:"image_format"`
	StablePath  string        `yaml:"stable_path"`
	PublishMode string        `yaml:"publish_mode"`
	Out         string        `yaml:"out"`
	Baud        int           `yaml:"baud"`
	Speedup     float64       `yaml:"speedup"`
	Loop        bool          `yaml:"loop"`
	HIL         bool          `yaml:"hil"`
	Types       []string      `yaml:"types"`
	Condition   string        `yaml:"condition"`
	MetricsAddr string        `yaml:"metrics_addr"`
	Pacing      PacingConfig  `yaml:"pacing"`
	Report      ReportConfig  `yaml:"report"`
	Adapter     AdapterConfig `yaml:"adapter"`
}

// PacingConfig overrides the pacing constants. Zero fields keep defaults.
type PacingConfig struct {
	FastSkipDivisor float64  `yaml:"fast_skip_divisor"`
	Lookahead       Duration `yaml:"lookahead"`
	MaxWait         Duration `yaml:"max_wait"`
}

// Apply overlays the configured values onto base and validates the result.
func (p PacingConfig) Apply(base replay.Pacing) (replay.Pacing, error) {
	if p.FastSkipDivisor != 0 {
		base.FastSkipDivisor = p.FastSkipDivisor
	}
	if p.Lookahead.Duration != 0 {
		base.Lookahead = p.Lookahead.Duration
	}
	if p.MaxWait.Duration != 0 {
		base.MaxWait = p.MaxWait.Duration
	}
	if err := base.Validate(); err != nil {
		return replay.Pacing{}, fmt.Errorf("pacing: %w", err)
	}
	return base, nil
}

// ReportConfig holds report store defaults from the config file.
type ReportConfig struct {
	Dataset     string `yaml:"dataset"`
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// AdapterConfig holds notification adapter defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	// Retries is a pointer so an explicit 0 is distinct from unset.
	Retries *int `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
