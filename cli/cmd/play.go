package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/flightreplay/adapter"
	redisadapter "github.com/pithecene-io/flightreplay/adapter/redis"
	"github.com/pithecene-io/flightreplay/adapter/webhook"
	"github.com/pithecene-io/flightreplay/cli/config"
	"github.com/pithecene-io/flightreplay/cli/tui"
	"github.com/pithecene-io/flightreplay/console"
	"github.com/pithecene-io/flightreplay/iox"
	"github.com/pithecene-io/flightreplay/link"
	"github.com/pithecene-io/flightreplay/lode"
	"github.com/pithecene-io/flightreplay/log"
	"github.com/pithecene-io/flightreplay/metrics"
	"github.com/pithecene-io/flightreplay/replay"
	"github.com/pithecene-io/flightreplay/types"
)

// Exit codes for play.
const (
	exitSuccess     = 0
	exitError       = 1
	exitNoImages    = 2
	exitInterrupted = 130
)

// metricsShutdownTimeout bounds how long the metrics server may drain.
const metricsShutdownTimeout = 2 * time.Second

// PlayCommand returns the play command.
func PlayCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Replay recordings and images as a paced live stream",
		ArgsUsage: "<log>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to flightreplay.yaml (flags override config values)",
			},
			&cli.StringFlag{
				Name:  "images",
				Usage: "Image directory, rescanned at the start of every pass",
			},
			&cli.StringFlag{
				Name:  "image-format",
				Usage: "Capture format: pgm or jpeg",
				Value: string(types.ImageFormatPGM),
			},
			&cli.StringFlag{
				Name:  "stable-path",
				Usage: "Where the current image is published (default fake_chameleon.<ext>)",
			},
			&cli.StringFlag{
				Name:  "publish-mode",
				Usage: "Publication mode: symlink or copy",
				Value: string(replay.PublishSymlink),
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output endpoint: [udp|udpin|tcp:]host:port or a serial device",
				Value: "127.0.0.1:14550",
			},
			&cli.IntFlag{
				Name:  "baud",
				Usage: "Baud rate for serial output",
				Value: link.DefaultBaudRate,
			},
			&cli.Float64Flag{
				Name:  "speedup",
				Usage: "Playback speed multiplier (1 is real time)",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  "loop",
				Usage: "Restart from the first recording after the last one",
			},
			&cli.BoolFlag{
				Name:  "hil",
				Usage: "Emit synthesized HIL_STATE frames instead of recorded messages",
			},
			&cli.StringSliceFlag{
				Name:  "types",
				Usage: "Only emit these message types (repeatable)",
			},
			&cli.StringFlag{
				Name:  "condition",
				Usage: "Lua predicate over the latest messages, e.g. 'VFR_HUD.alt > 10'",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Source identifier for report partitioning",
				Value: lode.DefaultSource,
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address (e.g. :9090)",
			},
			&cli.BoolFlag{
				Name:  "console",
				Usage: "Show the live console (logs go to --log-file)",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file instead of stderr",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress the session summary",
			},
			// Report flags
			&cli.StringFlag{
				Name:  "report-backend",
				Usage: "Report store backend: fs or s3",
				Value: "fs",
			},
			&cli.StringFlag{
				Name:  "report-path",
				Usage: "Report store path (fs: directory, s3: bucket/prefix); reports are off when empty",
			},
			&cli.StringFlag{
				Name:  "report-dataset",
				Usage: "Report dataset name",
				Value: lode.DefaultDataset,
			},
			&cli.StringFlag{
				Name:  "report-s3-region",
				Usage: "AWS region for the s3 backend (optional, uses default chain)",
			},
			&cli.StringFlag{
				Name:  "report-s3-endpoint",
				Usage: "Custom S3 endpoint (e.g. MinIO)",
			},
			&cli.BoolFlag{
				Name:  "report-s3-path-style",
				Usage: "Use path-style S3 addressing",
			},
			// Adapter flags
			&cli.StringFlag{
				Name:  "adapter",
				Usage: "Completion notification adapter: webhook or redis",
			},
			&cli.StringFlag{
				Name:  "adapter-url",
				Usage: "Webhook URL or redis://host:port/db",
			},
			&cli.StringFlag{
				Name:  "adapter-channel",
				Usage: "Redis pub/sub channel",
			},
			&cli.DurationFlag{
				Name:  "adapter-timeout",
				Usage: "Per-attempt publish timeout",
			},
			&cli.IntFlag{
				Name:  "adapter-retries",
				Usage: "Publish retry attempts",
				Value: webhook.DefaultRetries,
			},
		},
		Action: playAction,
	}
}

func playAction(c *cli.Context) error {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to load config: %v", err), exitError)
		}
		cfg = loaded
	}

	opts, err := resolvePlayOptions(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	endpoint, err := link.ParseEndpoint(opts.out, opts.baud)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid --out: %v", err), exitError)
	}

	sessionID := ulid.Make().String()
	startTime := time.Now()

	logger, closeLog, err := openLogger(sessionID, opts)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	// Report writes and notifications must still happen after an interrupt.
	finishCtx := context.WithoutCancel(ctx)

	collector := metrics.NewCollector(sessionID, string(endpoint.Kind), string(opts.imageFormat), opts.report.backendName())

	reportCfg := lode.Config{
		Dataset:   opts.report.dataset,
		Source:    opts.source,
		Day:       lode.DeriveDay(startTime),
		SessionID: sessionID,
	}
	sink, err := buildReportSink(ctx, opts.report, reportCfg, collector)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open report store: %v", err), exitError)
	}
	defer iox.DiscardClose(sink.reporter)

	notifier, err := buildAdapter(opts.adapter)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid adapter config: %v", err), exitError)
	}
	if notifier != nil {
		defer iox.DiscardClose(notifier)
	}

	if opts.metricsAddr != "" {
		shutdown := serveMetrics(opts.metricsAddr, collector, logger)
		defer shutdown()
	}

	observers := replay.Observers{replay.NewLogObserver(logger)}
	var live *tui.Console
	if opts.console {
		monitor := console.NewMonitor(func(text string) {
			logger.Info("announcement", map[string]any{"text": text})
		}, nil)
		observers = append(observers, monitor)
		live = tui.NewConsole(monitor, stop)
	}

	driver, err := replay.NewDriver(replay.Config{
		Files:       opts.files,
		ImageDir:    opts.images,
		ImageFormat: opts.imageFormat,
		StablePath:  opts.stablePath,
		PublishMode: opts.publishMode,
		Filter:      replay.FilterSpec{Types: opts.types, Condition: opts.condition},
		Speedup:     opts.speedup,
		Pacing:      opts.pacing,
		Loop:        opts.loop,
		HIL:         opts.hil,
		Dial: func(ctx context.Context) (replay.Link, error) {
			conn, err := link.Dial(ctx, endpoint)
			if err != nil {
				return nil, err
			}
			return conn, nil
		},
		Observer: observers,
		OnFileDone: func(fr types.FileResult) {
			if err := sink.reporter.WriteFileResult(finishCtx, fr); err != nil {
				logger.Warn("failed to write file result", map[string]any{
					"file":  fr.File,
					"error": err.Error(),
				})
			}
		},
		Logger:    logger,
		Collector: collector,
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid playback config: %v", err), exitError)
	}

	logger.Info("session starting", map[string]any{
		"files":   len(opts.files),
		"images":  opts.images,
		"out":     endpoint.String(),
		"speedup": opts.speedup,
		"loop":    opts.loop,
		"hil":     opts.hil,
	})

	result, runErr := runDriver(ctx, driver, live, logger)
	if result == nil {
		result = &types.SessionResult{}
	}
	result.SessionID = sessionID
	outcome := sessionOutcome(runErr)
	finishedAt := time.Now()

	logger.Info("session finished", map[string]any{
		"outcome":  outcome,
		"passes":   result.Passes,
		"files":    len(result.Files),
		"emitted":  result.TotalEmitted(),
		"images":   result.TotalImages(),
		"duration": result.Duration.String(),
	})

	sink.finish(finishCtx, result, collector, finishedAt, logger)

	if notifier != nil {
		event := adapter.NewSessionCompletedEvent(result, outcome, opts.source, reportCfg.Day, sink.path, finishedAt)
		if err := notifier.Publish(finishCtx, event); err != nil {
			logger.Warn("failed to publish session event", map[string]any{"error": err.Error()})
		}
	}

	if !opts.quiet {
		printSessionResult(c.App.Writer, result, outcome)
	}

	return exitFor(outcome, runErr)
}

// runDriver plays the session, in the foreground or behind the live console.
func runDriver(ctx context.Context, driver *replay.Driver, live *tui.Console, logger *log.Logger) (*types.SessionResult, error) {
	if live == nil {
		return driver.Run(ctx)
	}

	var (
		result *types.SessionResult
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, runErr = driver.Run(ctx)
		live.Done(runErr)
	}()
	if err := live.Run(); err != nil {
		logger.Warn("console exited", map[string]any{"error": err.Error()})
	}
	<-done
	return result, runErr
}

// openLogger returns the session logger and a function that flushes it.
func openLogger(sessionID string, opts *playOptions) (*log.Logger, func(), error) {
	if opts.logFile == "" {
		if opts.console {
			// The console owns the terminal.
			logger := log.NewLoggerWithWriter(sessionID, io.Discard)
			return logger, func() {}, nil
		}
		logger := log.NewLogger(sessionID)
		return logger, func() { iox.DiscardErr(logger.Sync) }, nil
	}
	f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open --log-file: %w", err)
	}
	logger := log.NewLoggerWithWriter(sessionID, f)
	return logger, func() {
		iox.DiscardErr(logger.Sync)
		iox.DiscardClose(f)
	}, nil
}

// reportSink holds the report writer for a session.
type reportSink struct {
	reporter lode.Reporter
	// client is nil when reporting is disabled.
	client *lode.LodeClient
	// path is the human-readable store location, empty when disabled.
	path string
}

func buildReportSink(ctx context.Context, choice reportChoice, cfg lode.Config, collector *metrics.Collector) (*reportSink, error) {
	if choice.path == "" {
		return &reportSink{reporter: lode.NewStubReporter()}, nil
	}

	var (
		client *lode.LodeClient
		err    error
		path   string
	)
	switch choice.backend {
	case "fs", "":
		client, err = lode.NewLodeClient(cfg, choice.path)
		path = choice.path
	case "s3":
		bucket, prefix := lode.ParseS3Path(choice.path)
		client, err = lode.NewLodeS3Client(ctx, cfg, lode.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       choice.region,
			Endpoint:     choice.endpoint,
			UsePathStyle: choice.pathStyle,
		})
		path = "s3://" + choice.path
	default:
		return nil, fmt.Errorf("unknown --report-backend %q (must be fs or s3)", choice.backend)
	}
	if err != nil {
		return nil, err
	}

	return &reportSink{
		reporter: lode.NewInstrumentedReporter(client, collector),
		client:   client,
		path:     path,
	}, nil
}

// finish writes the end-of-session metrics record and summary document.
// Failures are logged; they never change the session outcome.
func (s *reportSink) finish(ctx context.Context, result *types.SessionResult, collector *metrics.Collector, finishedAt time.Time, logger *log.Logger) {
	if s.client == nil {
		return
	}
	if err := s.reporter.WriteMetrics(ctx, collector.Snapshot(), finishedAt); err != nil {
		logger.Warn("failed to write session metrics", map[string]any{"error": err.Error()})
	}
	summary, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Warn("failed to encode session summary", map[string]any{"error": err.Error()})
		return
	}
	if err := s.client.PutFile(ctx, "summary.json", summary); err != nil {
		logger.Warn("failed to write session summary", map[string]any{"error": err.Error()})
	}
}

func buildAdapter(choice adapterChoice) (adapter.Adapter, error) {
	switch choice.kind {
	case "":
		return nil, nil
	case "webhook":
		a, err := webhook.New(webhook.Config{
			URL:     choice.url,
			Headers: choice.headers,
			Timeout: choice.timeout,
			Retries: choice.retries,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	case "redis":
		a, err := redisadapter.New(redisadapter.Config{
			URL:     choice.url,
			Channel: choice.channel,
			Timeout: choice.timeout,
			Retries: choice.retries,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown --adapter %q (must be webhook or redis)", choice.kind)
	}
}

// serveMetrics exposes the collector on addr/metrics until shutdown is called.
func serveMetrics(addr string, collector *metrics.Collector, logger *log.Logger) (shutdown func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(collector))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server failed", map[string]any{
				"addr":  addr,
				"error": err.Error(),
			})
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		iox.DiscardErr(func() error { return srv.Shutdown(ctx) })
	}
}

// sessionOutcome classifies the error returned by Driver.Run.
func sessionOutcome(err error) string {
	switch {
	case err == nil:
		return adapter.OutcomeCompleted
	case errors.Is(err, replay.ErrNoImages):
		return adapter.OutcomeNoImages
	case errors.Is(err, context.Canceled):
		return adapter.OutcomeCanceled
	default:
		return adapter.OutcomeError
	}
}

// exitFor maps a session outcome to the process exit code.
func exitFor(outcome string, err error) error {
	switch outcome {
	case adapter.OutcomeCompleted:
		return nil
	case adapter.OutcomeCanceled:
		return cli.Exit("interrupted", exitInterrupted)
	case adapter.OutcomeNoImages:
		return cli.Exit(err.Error(), exitNoImages)
	default:
		return cli.Exit(fmt.Sprintf("playback failed: %v", err), exitError)
	}
}

func printSessionResult(w io.Writer, result *types.SessionResult, outcome string) {
	fmt.Fprintf(w, "\nsession_id=%s, outcome=%s, passes=%d, duration=%s\n",
		result.SessionID,
		outcome,
		result.Passes,
		result.Duration.Round(time.Millisecond),
	)

	fmt.Fprintf(w, "\n=== Files ===\n")
	for _, fr := range result.Files {
		fmt.Fprintf(w, "pass %d  %-10s  %s\n", fr.Pass, fr.Outcome, fr.File)
		fmt.Fprintf(w, "  emitted=%d filtered=%d dropped=%d decode_errors=%d\n",
			fr.MessagesEmitted, fr.MessagesFiltered, fr.MessagesDropped, fr.DecodeErrors)
		fmt.Fprintf(w, "  images=%d skipped=%d params=%d recorded=%s wall=%s\n",
			fr.ImagesPublished, fr.ImagesSkipped, fr.ParamsReplayed,
			fr.RecordedSpan().Round(time.Millisecond), fr.WallDuration.Round(time.Millisecond))
	}

	fmt.Fprintf(w, "\n=== Totals ===\n")
	fmt.Fprintf(w, "Messages:     %d\n", result.TotalEmitted())
	fmt.Fprintf(w, "Images:       %d\n", result.TotalImages())
}
