package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/stagehand-ci/stagehand/internal/fancy"
	"github.com/stagehand-ci/stagehand/internal/gate"
	"github.com/stagehand-ci/stagehand/internal/logging"
)

// gateCheckNames lists every check a complete run executes, in order.
var gateCheckNames = []string{"logic", "integration"}

var checkCmd = &cli.Command{
	Name:  "check",
	Usage: "Run the promotion gate checks; exit 0 only when every check passes",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path to TOML configuration file (optional, defaults apply without it)",
			Aliases: []string{"c"},
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (trace, debug, info, warn, error)",
			Value: "warn",
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		SetupLogger(cmd.String("log-level"))
		logger := slog.Default()

		cfg, err := loadConfig(cmd.String("config"), "")
		if err != nil {
			return cli.Exit(err, 1)
		}

		run, err := gate.NewRun(cfg, logger.Handler())
		if err != nil {
			return cli.Exit(fmt.Errorf("failed to create gate run: %w", err), 1)
		}

		gateErr := run.Execute(ctx)
		fmt.Print(renderReport(run))

		if gateErr != nil {
			// Replay the run's full log history at debug so the failure has
			// complete context even when the live log level suppressed it.
			diag := logging.SetupHandlerText("debug", os.Stderr)
			if err := run.PlayLogs(diag); err != nil {
				logger.Error("Failed to replay gate run logs", "error", err)
			}
			return cli.Exit(fmt.Errorf("gate check failed: %w", gateErr), 1)
		}
		return nil
	},
}

// renderReport produces one line per check plus the verdict line.
func renderReport(run *gate.Run) string {
	var out string

	ran := make(map[string]bool, len(gateCheckNames))
	for _, res := range run.Results() {
		ran[res.Name] = true
		if res.Err != nil {
			out += fancy.Fail(res.Name, res.Err.Error()) + "\n"
		} else {
			out += fancy.Pass(res.Name) + "\n"
		}
	}

	// Checks after a terminal failure never run; show them as skipped.
	for _, name := range gateCheckNames {
		if !ran[name] {
			out += fancy.Skip(name) + "\n"
		}
	}

	out += fancy.Verdict(run.Passed(), run.GetState()) + "\n"
	return out
}
