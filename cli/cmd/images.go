package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/flightreplay/cli/reader"
	"github.com/pithecene-io/flightreplay/cli/render"
	"github.com/pithecene-io/flightreplay/log"
	"github.com/pithecene-io/flightreplay/types"
)

// imagesWarningThreshold is the number of captures above which we suggest --limit.
const imagesWarningThreshold = 100

// ImagesCommand returns the images command.
// Images lists captures in the order play would publish them.
func ImagesCommand() *cli.Command {
	return &cli.Command{
		Name:      "images",
		Usage:     "List captures in an image directory in capture-time order",
		ArgsUsage: "<dir>",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{
				Name:  "image-format",
				Usage: "Capture format: pgm or jpeg",
				Value: string(types.ImageFormatPGM),
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of captures to list (0 = no limit)",
			},
		),
		Action: imagesAction,
	}
}

func imagesAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("image directory required", exitError)
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for images command", exitError)
	}

	format := types.ImageFormat(c.String("image-format"))
	if !format.Valid() {
		return cli.Exit(fmt.Sprintf("invalid --image-format %q (must be pgm or jpeg)", format), exitError)
	}
	limit := c.Int("limit")
	if limit < 0 {
		return cli.Exit("--limit must be >= 0", exitError)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	// Unparseable names are reported on stderr, never mixed into the listing.
	logger := log.NewLoggerWithWriter("", c.App.ErrWriter)
	entries, err := reader.ListImages(c.Args().First(), format, logger)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}

	if len(entries) > imagesWarningThreshold && limit == 0 && isStderrTTY() {
		fmt.Fprintf(os.Stderr, "Warning: listing %d captures. Use --limit to reduce output.\n", len(entries))
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return r.Render(entries)
}
