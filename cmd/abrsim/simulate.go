// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/pion/abrcc"
	"github.com/pion/abrcc/pkg/abr"
	"github.com/pion/abrcc/pkg/bbr"
	"github.com/pion/abrcc/pkg/catalog"
	"github.com/pion/abrcc/pkg/sim"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func simulate(c *cli.Context) error {
	cat, err := loadCatalog(c)
	if err != nil {
		return err
	}
	config, err := loadConfig(c)
	if err != nil {
		return err
	}
	simConfig, err := loadSimConfig(c)
	if err != nil {
		return err
	}

	kinds := []abr.Kind{config.Algorithm}
	if c.Bool("compare") {
		kinds = abr.Kinds()
		if !cat.HasScores() {
			kinds = []abr.Kind{abr.KindBufferBased, abr.KindRandom, abr.KindWorthed}
		}
	}

	results := make([]sim.Result, len(kinds))
	g, ctx := errgroup.WithContext(c.Context)
	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			engineConfig := config
			engineConfig.Algorithm = kind
			s, err := newSimulator(cat, engineConfig, simConfig)
			if err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			results[i], err = s.Run(ctx)

			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	printResults(cat, kinds, results)

	return nil
}

func newSimulator(cat *catalog.Catalog, config abrcc.Config, simConfig sim.Config) (*sim.Simulator, error) {
	sender, err := bbr.NewSender()
	if err != nil {
		return nil, err
	}
	engine, err := abrcc.NewEngine(cat, sender, abrcc.WithConfig(config))
	if err != nil {
		return nil, err
	}

	return sim.New(cat, engine, sender, sim.WithConfig(simConfig))
}

func printResults(cat *catalog.Catalog, kinds []abr.Kind, results []sim.Result) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Algorithm", "Segments", "Average Bitrate", "Downloaded", "Rebuffer", "Switches", "Elapsed"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})

	for i, res := range results {
		var downloaded uint64
		for index, q := range res.Qualities {
			size, _ := cat.Size(q, index+1)
			downloaded += uint64(size)
		}
		segments := fmt.Sprintf("%d / %d", len(res.Qualities), cat.Segments())
		if res.Truncated {
			segments += " (truncated)"
		}
		table.Append([]string{
			string(kinds[i]),
			segments,
			fmt.Sprintf("%s kbps", humanize.CommafWithDigits(res.AverageBitrate, 0)),
			humanize.Bytes(downloaded),
			res.Rebuffer.String(),
			humanize.Comma(int64(res.Switches)),
			res.Elapsed.String(),
		})
	}
	table.Render()
}
