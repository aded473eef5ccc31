// Package main provides the flightreplay CLI entrypoint.
//
// play is the only command that writes to a link or an image directory.
// All other commands are read-only.
//
// Usage:
//
//	flightreplay <command> [options]
//
// Exit codes for play:
//   - 0: every recording played (or loop mode stopped cleanly)
//   - 1: configuration or runtime error
//   - 2: no images found at the start of a pass
//   - 130: interrupted
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/flightreplay/cli/cmd"
	"github.com/pithecene-io/flightreplay/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "flightreplay",
		Usage:          "Replay recorded flight telemetry and imagery as a live stream",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.PlayCommand(),
			cmd.InspectCommand(),
			cmd.ImagesCommand(),
			cmd.CheckRatesCommand(),
			cmd.StatsCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already exited for cli.ExitCoder errors.
		os.Exit(1)
	}
}

// exitErrHandler preserves exit codes from cli.Exit, including wrapped ones.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() is "exit status N"; don't print those.
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
