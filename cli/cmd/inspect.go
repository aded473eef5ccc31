package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/flightreplay/cli/reader"
	"github.com/pithecene-io/flightreplay/cli/render"
	"github.com/pithecene-io/flightreplay/cli/tui"
)

// InspectCommand returns the inspect command.
// Inspect summarizes one recording without playing it.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Summarize a recording (message types, timestamps, decode errors)",
		ArgsUsage: "<log>",
		Flags:     ReadOnlyFlags(),
		Action:    inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("log path required", exitError)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	summary, err := reader.InspectLog(c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewInspectLog, summary)
	}
	return r.Render(summary)
}
