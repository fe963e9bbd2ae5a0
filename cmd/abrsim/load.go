// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pion/abrcc"
	"github.com/pion/abrcc/pkg/abr"
	"github.com/pion/abrcc/pkg/catalog"
	"github.com/pion/abrcc/pkg/sim"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func loadCatalog(c *cli.Context) (*catalog.Catalog, error) {
	f, err := os.Open(c.String("catalog"))
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	cat, err := catalog.LoadYAML(f)
	if err != nil || c.String("scores") == "" {
		return cat, err
	}

	scoresFile, err := os.Open(c.String("scores"))
	if err != nil {
		return nil, err
	}
	defer scoresFile.Close() //nolint:errcheck

	columns := make([]string, cat.Qualities())
	for q, bitrate := range cat.Bitrates() {
		columns[q] = strconv.Itoa(bitrate)
	}
	scores, err := catalog.LoadScoresCSV(scoresFile, columns)
	if err != nil {
		return nil, err
	}

	return cat.WithScores(scores)
}

func loadConfig(c *cli.Context) (abrcc.Config, error) {
	config := abrcc.DefaultConfig()
	if path := c.String("config"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return config, err
		}
		defer f.Close() //nolint:errcheck

		if config, err = abrcc.LoadConfig(f); err != nil {
			return config, err
		}
	}
	if algorithm := c.String("algorithm"); algorithm != "" {
		config.Algorithm = abr.Kind(algorithm)
	}

	return config, config.Validate()
}

func loadSimConfig(c *cli.Context) (sim.Config, error) {
	config := sim.DefaultConfig()
	if path := c.String("sim-config"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return config, err
		}
		defer f.Close() //nolint:errcheck

		decoder := yaml.NewDecoder(f)
		decoder.KnownFields(true)
		if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
			return config, fmt.Errorf("decode sim config: %w", err)
		}
	}
	if c.IsSet("capacity") {
		config.Trace = sim.ConstantTrace(c.Float64("capacity"))
	}

	return config, config.Validate()
}
