package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/flightreplay/cli/reader"
	"github.com/pithecene-io/flightreplay/cli/render"
	"github.com/pithecene-io/flightreplay/iox"
	"github.com/pithecene-io/flightreplay/link"
	"github.com/pithecene-io/flightreplay/paramcheck"
)

// CheckRatesCommand returns the check-rates command.
// Without --set it only reads the recording.
func CheckRatesCommand() *cli.Command {
	return &cli.Command{
		Name:      "check-rates",
		Usage:     "Compare recorded stream-rate parameters against their targets",
		ArgsUsage: "<log>",
		Flags: append(ReadOnlyFlags(),
			&cli.BoolFlag{
				Name:  "set",
				Usage: "Send PARAM_SET corrections to --out",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Endpoint for corrections: [udp|udpin|tcp:]host:port or a serial device",
			},
			&cli.IntFlag{
				Name:  "baud",
				Usage: "Baud rate for serial output",
				Value: link.DefaultBaudRate,
			},
			&cli.IntFlag{
				Name:  "target-system",
				Usage: "System id addressed by corrections",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "target-component",
				Usage: "Component id addressed by corrections",
				Value: 1,
			},
		),
		Action: checkRatesAction,
	}
}

func checkRatesAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("log path required", exitError)
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for check-rates command", exitError)
	}
	if c.Bool("set") && c.String("out") == "" {
		return cli.Exit("--out is required with --set", exitError)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	path := c.Args().First()
	params, err := reader.ReadParamValues(path)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}

	discrepancies := paramcheck.Check(paramcheck.Values(params), paramcheck.StreamRates())
	report := &reader.RateReport{
		File:          path,
		ParamsSeen:    len(params),
		Discrepancies: make([]string, 0, len(discrepancies)),
	}
	for _, d := range discrepancies {
		report.Discrepancies = append(report.Discrepancies, d.String())
	}

	if c.Bool("set") && len(discrepancies) > 0 {
		sent, err := sendCorrections(c, discrepancies)
		report.Corrected = sent
		if err != nil {
			if renderErr := r.Render(report); renderErr != nil {
				return renderErr
			}
			return cli.Exit(fmt.Sprintf("failed to send corrections: %v", err), exitError)
		}
	}

	return r.Render(report)
}

// sendCorrections writes one PARAM_SET per discrepancy and returns how many
// were written before the first failure.
func sendCorrections(c *cli.Context, ds []paramcheck.Discrepancy) (int, error) {
	ep, err := link.ParseEndpoint(c.String("out"), c.Int("baud"))
	if err != nil {
		return 0, err
	}
	conn, err := link.Dial(c.Context, ep)
	if err != nil {
		return 0, err
	}
	defer iox.DiscardClose(conn)

	sent := 0
	for _, m := range paramcheck.Corrections(ds, c.Int("target-system"), c.Int("target-component")) {
		if err := conn.WriteMessage(m); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
