package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:    "stagehand",
		Version: Version,
		Usage:   "Deploy-gate demo: an env-driven responder and its promotion checks",
		Commands: []*cli.Command{
			serveCmd,
			checkCmd,
			validateCmd,
			versionCmd,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
