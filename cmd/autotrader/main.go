package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "autotrader",
		Usage: "Trade forecasts through a risk-gated engine",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the autopilot until interrupted",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to the YAML config `FILE`. Defaults are used when omitted.",
					},
					&cli.StringFlag{
						Name:  "log-level",
						Usage: "Override the config's log level (debug, info, warn, error)",
					},
				},
				Action: runAction,
			},
			{
				Name:  "schema",
				Usage: "Print the config JSON schema",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the schema to `FILE` instead of stdout",
					},
				},
				Action: schemaAction,
			},
			{
				Name:  "init",
				Usage: "Write the config schema and a sample config",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Output `DIR`",
						Value:   "config",
					},
				},
				Action: initAction,
			},
			{
				Name:   "version",
				Usage:  "Print the autopilot version",
				Action: versionAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
