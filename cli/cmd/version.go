package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/flightreplay/cli/render"
	"github.com/pithecene-io/flightreplay/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version       string `json:"version" yaml:"version"`
	FormatVersion string `json:"format_version" yaml:"format_version"`
	Commit        string `json:"commit" yaml:"commit"`
}

// VersionCommand returns the version command.
// The binary, the recording format and the link framing share one version.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  ReadOnlyFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := render.NewRenderer(c)
		if err != nil {
			return err
		}

		if c.Bool("tui") {
			return cli.Exit("--tui is not supported for version command", exitError)
		}

		return r.Render(VersionResponse{
			Version:       types.Version,
			FormatVersion: types.FormatVersion,
			Commit:        commit,
		})
	}
}
