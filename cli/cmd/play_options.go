package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/flightreplay/cli/config"
	"github.com/pithecene-io/flightreplay/replay"
	"github.com/pithecene-io/flightreplay/types"
)

// playOptions is the resolved play configuration: explicit flags, then
// config file values, then flag defaults.
type playOptions struct {
	files       []string
	images      string
	imageFormat types.ImageFormat
	stablePath  string
	publishMode replay.PublishMode
	out         string
	baud        int
	speedup     float64
	loop        bool
	hil         bool
	types       []string
	condition   string
	source      string
	metricsAddr string
	pacing      replay.Pacing
	console     bool
	logFile     string
	quiet       bool
	report      reportChoice
	adapter     adapterChoice
}

// reportChoice holds the resolved report store configuration.
type reportChoice struct {
	backend   string // "fs" or "s3"
	path      string // fs: directory, s3: bucket/prefix
	dataset   string
	region    string
	endpoint  string
	pathStyle bool
}

// backendName is the metrics dimension for the report store.
func (r reportChoice) backendName() string {
	if r.path == "" {
		return "none"
	}
	return r.backend
}

// adapterChoice holds the resolved notification adapter configuration.
type adapterChoice struct {
	kind    string
	url     string
	channel string
	headers map[string]string
	timeout time.Duration
	retries int
}

func resolvePlayOptions(c *cli.Context, cfg *config.Config) (*playOptions, error) {
	opts := &playOptions{
		files:       c.Args().Slice(),
		images:      resolveString(c, "images", configVal(cfg, func(c *config.Config) string { return c.Images })),
		imageFormat: types.ImageFormat(resolveString(c, "image-format", configVal(cfg, func(c *config.Config) string { return c.ImageFormat }))),
		stablePath:  resolveString(c, "stable-path", configVal(cfg, func(c *config.Config) string { return c.StablePath })),
		publishMode: replay.PublishMode(resolveString(c, "publish-mode", configVal(cfg, func(c *config.Config) string { return c.PublishMode }))),
		out:         resolveString(c, "out", configVal(cfg, func(c *config.Config) string { return c.Out })),
		baud:        resolveInt(c, "baud", configVal(cfg, func(c *config.Config) int { return c.Baud })),
		speedup:     resolveFloat(c, "speedup", configVal(cfg, func(c *config.Config) float64 { return c.Speedup })),
		loop:        resolveBool(c, "loop", configVal(cfg, func(c *config.Config) bool { return c.Loop })),
		hil:         resolveBool(c, "hil", configVal(cfg, func(c *config.Config) bool { return c.HIL })),
		types:       resolveStringSlice(c, "types", configVal(cfg, func(c *config.Config) []string { return c.Types })),
		condition:   resolveString(c, "condition", configVal(cfg, func(c *config.Config) string { return c.Condition })),
		source:      resolveString(c, "source", configVal(cfg, func(c *config.Config) string { return c.Source })),
		metricsAddr: resolveString(c, "metrics-addr", configVal(cfg, func(c *config.Config) string { return c.MetricsAddr })),
		console:     c.Bool("console"),
		logFile:     c.String("log-file"),
		quiet:       c.Bool("quiet"),
	}
	if len(opts.files) == 0 {
		opts.files = configVal(cfg, func(c *config.Config) []string { return c.Files })
	}

	opts.report = reportChoice{
		backend:   resolveString(c, "report-backend", configVal(cfg, func(c *config.Config) string { return c.Report.Backend })),
		path:      resolveString(c, "report-path", configVal(cfg, func(c *config.Config) string { return c.Report.Path })),
		dataset:   resolveString(c, "report-dataset", configVal(cfg, func(c *config.Config) string { return c.Report.Dataset })),
		region:    resolveString(c, "report-s3-region", configVal(cfg, func(c *config.Config) string { return c.Report.Region })),
		endpoint:  resolveString(c, "report-s3-endpoint", configVal(cfg, func(c *config.Config) string { return c.Report.Endpoint })),
		pathStyle: resolveBool(c, "report-s3-path-style", configVal(cfg, func(c *config.Config) bool { return c.Report.S3PathStyle })),
	}

	opts.adapter = adapterChoice{
		kind:    resolveString(c, "adapter", configVal(cfg, func(c *config.Config) string { return c.Adapter.Type })),
		url:     resolveString(c, "adapter-url", configVal(cfg, func(c *config.Config) string { return c.Adapter.URL })),
		channel: resolveString(c, "adapter-channel", configVal(cfg, func(c *config.Config) string { return c.Adapter.Channel })),
		headers: configVal(cfg, func(c *config.Config) map[string]string { return c.Adapter.Headers }),
		timeout: resolveDuration(c, "adapter-timeout", configVal(cfg, func(c *config.Config) time.Duration { return c.Adapter.Timeout.Duration })),
		retries: c.Int("adapter-retries"),
	}
	// Retries is a pointer in config so an explicit 0 disables retrying.
	if !c.IsSet("adapter-retries") && cfg != nil && cfg.Adapter.Retries != nil {
		opts.adapter.retries = *cfg.Adapter.Retries
	}

	pacing := replay.DefaultPacing()
	if cfg != nil {
		p, err := cfg.Pacing.Apply(pacing)
		if err != nil {
			return nil, err
		}
		pacing = p
	}
	opts.pacing = pacing

	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *playOptions) validate() error {
	if len(o.files) == 0 {
		return errors.New("at least one recording is required (pass <log> arguments or set files: in --config)")
	}
	if o.images == "" {
		return errors.New("--images is required (flag or images: in --config)")
	}
	if !o.imageFormat.Valid() {
		return fmt.Errorf("invalid --image-format %q (must be pgm or jpeg)", o.imageFormat)
	}
	if !o.publishMode.Valid() {
		return fmt.Errorf("invalid --publish-mode %q (must be symlink or copy)", o.publishMode)
	}
	if !(o.speedup > 0) {
		return fmt.Errorf("--speedup must be positive, got %v", o.speedup)
	}
	if o.baud <= 0 {
		return fmt.Errorf("--baud must be positive, got %d", o.baud)
	}
	if o.report.path != "" {
		switch o.report.backend {
		case "fs", "s3":
		default:
			return fmt.Errorf("invalid --report-backend %q (must be fs or s3)", o.report.backend)
		}
	}
	switch o.adapter.kind {
	case "":
	case "webhook", "redis":
		if o.adapter.url == "" {
			return fmt.Errorf("--adapter-url is required when --adapter=%s", o.adapter.kind)
		}
	default:
		return fmt.Errorf("invalid --adapter %q (must be webhook or redis)", o.adapter.kind)
	}
	if o.adapter.retries < 0 {
		return fmt.Errorf("--adapter-retries must be >= 0, got %d", o.adapter.retries)
	}
	return nil
}

// configVal reads a field from cfg, returning the zero value when cfg is nil.
func configVal[T any](cfg *config.Config, get func(*config.Config) T) T {
	if cfg == nil {
		var zero T
		return zero
	}
	return get(cfg)
}

// resolveString prefers an explicitly set flag, then a non-empty config
// value, then the flag default.
func resolveString(c *cli.Context, name, cfgVal string) string {
	if c.IsSet(name) || cfgVal == "" {
		return c.String(name)
	}
	return cfgVal
}

func resolveInt(c *cli.Context, name string, cfgVal int) int {
	if c.IsSet(name) || cfgVal == 0 {
		return c.Int(name)
	}
	return cfgVal
}

func resolveFloat(c *cli.Context, name string, cfgVal float64) float64 {
	if c.IsSet(name) || cfgVal == 0 {
		return c.Float64(name)
	}
	return cfgVal
}

// resolveBool lets config turn a switch on; only an explicit flag turns it off.
func resolveBool(c *cli.Context, name string, cfgVal bool) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	return cfgVal || c.Bool(name)
}

func resolveDuration(c *cli.Context, name string, cfgVal time.Duration) time.Duration {
	if c.IsSet(name) || cfgVal == 0 {
		return c.Duration(name)
	}
	return cfgVal
}

func resolveStringSlice(c *cli.Context, name string, cfgVal []string) []string {
	if c.IsSet(name) || len(cfgVal) == 0 {
		return c.StringSlice(name)
	}
	return cfgVal
}
