package cmd

import (
	"context"
	"fmt"
	"time"

	lodelibrary "github.com/justapithecus/lode/lode"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/flightreplay/cli/reader"
	"github.com/pithecene-io/flightreplay/cli/render"
	"github.com/pithecene-io/flightreplay/cli/tui"
	"github.com/pithecene-io/flightreplay/lode"
)

// statsReadTimeout bounds a report store query.
const statsReadTimeout = 30 * time.Second

// StatsCommand returns the stats command.
// Stats reads the latest session report written by play.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show the latest replay session report",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{Name: "report-dataset", Usage: "Report dataset name", Value: lode.DefaultDataset},
			&cli.StringFlag{Name: "report-backend", Usage: "Report store backend: fs or s3", Value: "fs"},
			&cli.StringFlag{Name: "report-path", Usage: "Report store path (fs: directory, s3: bucket/prefix)"},
			&cli.StringFlag{Name: "report-s3-region", Usage: "AWS region for the s3 backend"},
			&cli.StringFlag{Name: "report-s3-endpoint", Usage: "Custom S3 endpoint (e.g. MinIO)"},
			&cli.BoolFlag{Name: "report-s3-path-style", Usage: "Use path-style S3 addressing"},
			&cli.StringFlag{Name: "session-id", Usage: "Read a specific session instead of the latest"},
			&cli.StringFlag{Name: "source", Usage: "Filter by source partition"},
		),
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) error {
	path := c.String("report-path")
	if path == "" {
		return cli.Exit("--report-path is required", exitError)
	}

	ctx, cancel := context.WithTimeout(c.Context, statsReadTimeout)
	defer cancel()

	ds, err := buildReadDataset(ctx, c.String("report-dataset"), c.String("report-backend"), path, lode.S3Config{
		Region:       c.String("report-s3-region"),
		Endpoint:     c.String("report-s3-endpoint"),
		UsePathStyle: c.Bool("report-s3-path-style"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize report reader: %w", err)
	}

	stats, err := reader.NewLodeStatsReader(ds).SessionStats(ctx, c.String("session-id"), c.String("source"))
	if err != nil {
		if reader.ErrNoSessions(err) {
			return cli.Exit("no session reports found", exitError)
		}
		return fmt.Errorf("failed to read session report: %w", err)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewStatsSession, stats)
	}
	return r.Render(stats)
}

// buildReadDataset opens the report dataset for reading. s3 carries the
// connection options; bucket and prefix come from path.
func buildReadDataset(ctx context.Context, dataset, backend, path string, s3 lode.S3Config) (lodelibrary.Dataset, error) {
	switch backend {
	case "fs", "":
		return lode.NewReadDatasetFS(dataset, path)
	case "s3":
		s3.Bucket, s3.Prefix = lode.ParseS3Path(path)
		return lode.NewReadDatasetS3(ctx, dataset, s3)
	default:
		return nil, fmt.Errorf("unsupported --report-backend: %s (must be fs or s3)", backend)
	}
}
