// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Command abrsim simulates playback sessions driven by the decision engine
// and serves the engine to players over HTTP.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var baseFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "env-file",
		Usage: "file of environment variables to load before reading flags",
		Value: ".env",
	},
	&cli.StringFlag{
		Name:    "config",
		Usage:   "path to the engine config file",
		EnvVars: []string{"ABRCC_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "catalog",
		Usage:   "path to the segment catalog",
		EnvVars: []string{"ABRCC_CATALOG"},
		Value:   "testdata/catalog.yaml",
	},
	&cli.StringFlag{
		Name:    "scores",
		Usage:   "path to a CSV of per-segment scores, one column per bitrate",
		EnvVars: []string{"ABRCC_SCORES"},
	},
	&cli.StringFlag{
		Name:    "algorithm",
		Usage:   "overrides the algorithm of the config file",
		EnvVars: []string{"ABRCC_ALGORITHM"},
	},
}

func main() {
	app := &cli.App{
		Name:   "abrsim",
		Usage:  "adaptive bitrate decisions with congestion control feedback",
		Flags:  baseFlags,
		Before: loadEnv,
		Commands: []*cli.Command{
			{
				Name:   "simulate",
				Usage:  "play the catalog over a simulated link",
				Action: simulate,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "sim-config",
						Usage: "path to the simulation config file",
					},
					&cli.Float64Flag{
						Name:  "capacity",
						Usage: "constant link capacity in kbps, overrides the trace",
					},
					&cli.BoolFlag{
						Name:  "compare",
						Usage: "simulate every algorithm",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "serve decisions over HTTP",
				Action: serve,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "bind",
						Usage:   "address to listen on",
						EnvVars: []string{"ABRCC_BIND"},
						Value:   ":8080",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadEnv(c *cli.Context) error {
	err := godotenv.Load(c.String("env-file"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}
