// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package abr

import (
	"testing"
	"time"

	"github.com/pion/abrcc/pkg/catalog"
	"github.com/pion/abrcc/pkg/cc"
	"github.com/pion/abrcc/pkg/schema"
	"github.com/stretchr/testify/require"
)

var testLadder = []int{300, 750, 1200, 1850, 2850, 4300}

// newTestCatalog returns a catalog whose segment sizes match the ladder
// exactly, with per-quality scores when scores is not nil.
func newTestCatalog(t *testing.T, segments int, bitrates []int, duration time.Duration, scores []float64) *catalog.Catalog {
	t.Helper()

	qualities := make([]catalog.Quality, len(bitrates))
	for q, bitrate := range bitrates {
		qualities[q].Bitrate = bitrate
		for i := 0; i < segments; i++ {
			qualities[q].Sizes = append(qualities[q].Sizes, int64(bitrate)*duration.Milliseconds()/8)
		}
		if scores != nil {
			for i := 0; i < segments; i++ {
				qualities[q].Scores = append(qualities[q].Scores, scores[q])
			}
		}
	}
	c, err := catalog.New(duration, qualities...)
	require.NoError(t, err)

	return c
}

func testParams(c *catalog.Catalog, controller cc.Controller) Params {
	p := Params{Catalog: c, Controller: controller}
	p.setDefaults()

	return p
}

type countingObserver struct {
	noopObserver
	decisions []schema.Decision
	degraded  int
	rates     []float64
	aggr      []float64
}

func (c *countingObserver) OnDecision(d schema.Decision) { c.decisions = append(c.decisions, d) }
func (c *countingObserver) OnDegraded() { c.degraded++ }
func (c *countingObserver) OnTargetRate(kbps float64) { c.rates = append(c.rates, kbps) }
func (c *countingObserver) OnAggressivity(a float64) { c.aggr = append(c.aggr, a) }

func downloaded(index int, ts int64) schema.Segment {
	return schema.Segment{Index: index, State: schema.Downloaded, Loaded: 1000, Total: 1000, Timestamp: ts}
}

func progress(index int, loaded int64, ts int64) schema.Segment {
	return schema.Segment{Index: index, State: schema.Progress, Loaded: loaded, Total: 1000, Timestamp: ts}
}

func buffer(ms, ts int64) []schema.Value[int64] {
	return []schema.Value[int64]{{Value: ms, Timestamp: ts}}
}
