package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-supervisor/supervisor"
	"github.com/urfave/cli/v3"

	"github.com/stagehand-ci/stagehand/internal/config"
	"github.com/stagehand-ci/stagehand/internal/responder"
)

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "Start the responder",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path to TOML configuration file (optional, defaults apply without it)",
			Aliases: []string{"c"},
		},
		&cli.StringFlag{
			Name:    "listen",
			Usage:   "Address to bind the responder (overrides the config file)",
			Aliases: []string{"l"},
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (trace, debug, info, warn, error)",
			Value: "info",
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		SetupLogger(cmd.String("log-level"))
		logger := slog.Default()

		cfg, err := loadConfig(cmd.String("config"), cmd.String("listen"))
		if err != nil {
			return cli.Exit(err, 1)
		}

		app := responder.NewApp(cfg.Responder.Message, cfg.Responder.Stage)
		runner, err := responder.NewRunner(
			cfg.Responder.Listen,
			app,
			responder.WithLogger(logger.With("component", "responder")),
		)
		if err != nil {
			return cli.Exit(fmt.Errorf("failed to create responder: %w", err), 1)
		}

		super, err := supervisor.New(
			supervisor.WithContext(ctx),
			supervisor.WithLogHandler(logger.Handler()),
			supervisor.WithRunnables(runner),
		)
		if err != nil {
			return cli.Exit(fmt.Errorf("failed to create supervisor: %w", err), 1)
		}
		if err := super.Run(); err != nil {
			return cli.Exit(fmt.Errorf("failed to run responder: %w", err), 1)
		}

		logger.Info("Responder shutdown complete")
		return nil
	},
}

// loadConfig is the composition point: the config file is read, the listen
// override applied, and environment references resolved exactly once.
func loadConfig(configPath, listenOverride string) (*config.Config, error) {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if listenOverride != "" {
		cfg.Responder.Listen = listenOverride
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
