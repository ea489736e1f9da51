package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/stagehand-ci/stagehand/internal/config"
)

var validateCmd = &cli.Command{
	Name:    "validate",
	Aliases: []string{"lint"},
	Usage:   "Validate a configuration file",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the configuration file",
		},
	},
	Suggest: true,
	Action:  validateAction,
}

func validateAction(_ context.Context, cmd *cli.Command) error {
	// Check for config flag first
	configPath := cmd.String("config")

	// If no config flag, check for positional argument
	if configPath == "" {
		if cmd.Args().Len() < 1 {
			return fmt.Errorf(
				"config file path required (use the --config flag, or provide the config file as positional argument)",
			)
		}
		configPath = cmd.Args().Get(0)
	}

	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("Configuration file %s is valid\n\n", configPath)
	fmt.Println(cfg)
	return nil
}
