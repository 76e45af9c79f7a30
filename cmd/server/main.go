// Package main implements the entry point for the TaskPilot API server,
// a multi-tenant task management backend with optional AI summaries.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "taskpilot: %v\n", err)
		os.Exit(1)
	}
}

// newRootCommand builds the command tree. Running the binary without a
// subcommand starts the server.
func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "taskpilot",
		Usage:   "Task management API server",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a config file (default: ./config.yaml or ./config.toml)",
			},
		},
		Action: runServe,
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API server",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "migrate",
				Usage: "Apply pending migrations before serving",
			},
		},
		Action: runServe,
	}
}
