// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package abr

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/pion/abrcc/internal/test"
	"github.com/pion/abrcc/pkg/cc"
	"github.com/pion/abrcc/pkg/schema"
	"github.com/stretchr/testify/assert"
)

func TestLimitUpjump(t *testing.T) {
	type step struct {
		preferred, last, expected, ban int
	}
	cases := [][]step{
		{
			{5, 0, 1, 0},
			{5, 1, 2, 0},
			{0, 2, 0, 2},
			{5, 0, 0, 1},
			{5, 0, 0, 0},
			{5, 0, 1, 0},
		},
		{
			{1, 3, 1, 2},
			{1, 1, 1, 1},
			{3, 1, 1, 0},
			{3, 1, 2, 0},
		},
		{
			{2, 3, 2, 2},
			{1, 2, 1, 2},
			{4, 1, 1, 1},
		},
	}
	for i, steps := range cases {
		t.Run(fmt.Sprintf("%v", i), func(t *testing.T) {
			c := newTestCatalog(t, 5, testLadder, 4*time.Second, nil)
			w := newWorthed(testParams(c, nil))
			for j, s := range steps {
				assert.Equal(t, s.expected, w.limitUpjump(s.preferred, s.last), "step %d", j)
				assert.Equal(t, s.ban, w.ban, "step %d", j)
			}
		})
	}
}

func TestWorthedReward(t *testing.T) {
	c := newTestCatalog(t, 5, testLadder, 4*time.Second, nil)
	w := newWorthed(testParams(c, nil))

	// 1200 ms then 13200 ms of rebuffering, one switch of 4000 kbps
	assert.InDelta(t, 4600-4.3*14400-4000, w.reward([]int{0, 5}, 1, 1000, 0, 0), 1e-6)
	// enough buffer for both downloads
	assert.InDelta(t, 4600-4000, w.reward([]int{0, 5}, 1, 1000, 20000, 0), 1e-6)
	// segment 6 is past the end of the stream
	assert.InDelta(t, 300-4.3*1200, w.reward([]int{0, 0}, 5, 1000, 0, 0), 1e-6)

	reward, quality := w.bestRollout(6, 1000, 0, 3, false)
	assert.Equal(t, 0.0, reward)
	assert.Equal(t, 3, quality)

	// ample bandwidth and buffer: go straight for the top
	_, quality = w.bestRollout(1, 100000, 30000, 0, false)
	assert.Equal(t, 5, quality)
	// starved: stay at the bottom
	_, quality = w.bestRollout(1, 100, 0, 3, false)
	assert.Equal(t, 0, quality)
}

func TestWorthedComputeRates(t *testing.T) {
	for _, stochastic := range []bool{false, true} {
		t.Run(fmt.Sprintf("stochastic=%v", stochastic), func(t *testing.T) {
			c := newTestCatalog(t, 20, testLadder, 4*time.Second, nil)
			controller := test.NewMockController()
			w := newWorthed(testParams(c, controller))

			safe, _ := w.ComputeRates(stochastic)
			assert.InDelta(t, 225, safe, 1e-9, "lowest bitrate without samples")

			controller.SetBandwidth(1000)
			w.RegisterMetrics(schema.Metrics{BufferLevel: buffer(8000, 10)})
			safe, worthed := w.ComputeRates(stochastic)
			assert.InDelta(t, 750, safe, 1e-9)
			assert.Greater(t, worthed, safe)

			step := w.config.Step
			if stochastic {
				step = w.config.StochasticStep
			}
			assert.LessOrEqual(t, worthed, 2*4300+step)
			steps := (worthed - safe) / step
			assert.InDelta(t, math.Round(steps), steps, 1e-6)
		})
	}
}

func TestAggressivity(t *testing.T) {
	last := math.Inf(1)
	for _, safe := range []float64{225, 500, 1000, 1500, 2000, 3000, 4000} {
		a := aggressivity(safe, 1000, 4300)
		assert.GreaterOrEqual(t, a, 0.0)
		assert.LessOrEqual(t, a, 1.0)
		assert.Less(t, a, last, "aggressivity must decrease as the safe rate grows")
		last = a
	}
	assert.Equal(t, 0.0, aggressivity(4300, 1000, 4300))
	assert.Equal(t, 0.0, aggressivity(9000, 1000, 4300))
}

func TestWorthedAdjustCC(t *testing.T) {
	c := newTestCatalog(t, 20, testLadder, 4*time.Second, nil)
	controller := test.NewMockController()
	observer := &countingObserver{}
	p := testParams(c, controller)
	p.Observer = observer
	w := newWorthed(p)

	controller.SetBandwidth(1000)
	w.RegisterMetrics(schema.Metrics{BufferLevel: buffer(2000, 10)})
	assert.Empty(t, controller.Cycles, "nothing to adjust before the first decision")

	assert.Equal(t, 1, w.Decide().Index)
	w.RegisterMetrics(schema.Metrics{BufferLevel: buffer(2000, 20)})
	assert.Equal(t, 1.0, w.Aggressivity())
	assert.Equal(t, cc.CycleAggressive, controller.LastCycle())
	assert.Empty(t, controller.RTTProbing)

	w.RegisterMetrics(schema.Metrics{BufferLevel: buffer(20000, 30)})
	assert.Equal(t, 0.0, w.Aggressivity())
	assert.Equal(t, cc.CycleDefault, controller.LastCycle())

	// same cycle again is not proposed twice
	w.RegisterMetrics(schema.Metrics{BufferLevel: buffer(21000, 40)})
	assert.Len(t, controller.Cycles, 2)

	ts := int64(50)
	for index := 1; index <= 2; index++ {
		w.RegisterMetrics(schema.Metrics{
			Segments:    []schema.Segment{downloaded(index, ts)},
			BufferLevel: buffer(20000, ts),
		})
		assert.Equal(t, index+1, w.Decide().Index)
		ts += 10
	}

	w.RegisterMetrics(schema.Metrics{BufferLevel: buffer(2000, ts)})
	assert.Equal(t, []bool{false}, controller.RTTProbing)

	w.RegisterMetrics(schema.Metrics{BufferLevel: buffer(12000, ts+10)})
	assert.Equal(t, []bool{false, true}, controller.RTTProbing)
	assert.GreaterOrEqual(t, w.Aggressivity(), 0.0)
	assert.LessOrEqual(t, w.Aggressivity(), 1.0)
	assert.Equal(t, cc.AggressivityCycle(w.Aggressivity()), controller.LastCycle())
	assert.Equal(t, w.Aggressivity(), observer.aggr[len(observer.aggr)-1])
}

func TestWorthedUpjumpBan(t *testing.T) {
	c := newTestCatalog(t, 20, testLadder, 4*time.Second, nil)
	controller := test.NewMockController()
	p := testParams(c, controller)
	p.State.BandwidthWindow = 1
	w := newWorthed(p)

	assert.Equal(t, schema.Decision{Index: 1}, w.Decide())

	type step struct {
		bandwidth float64
		buffer    int64
	}
	fast, starved := step{4300, 30000}, step{300, 0}
	steps := []step{fast, fast, fast, starved, fast, fast, fast}

	qualities := []int{0}
	for i, s := range steps {
		index := i + 2
		ts := int64(index * 100)
		controller.SetBandwidth(s.bandwidth)
		w.RegisterMetrics(schema.Metrics{
			Segments:    []schema.Segment{downloaded(index-1, ts)},
			BufferLevel: buffer(s.buffer, ts),
		})
		d := w.Decide()
		assert.Equal(t, index, d.Index)
		qualities = append(qualities, d.Quality)
	}

	// one rung at a time, then down, then banned for two decisions
	assert.Equal(t, []int{0, 1, 2, 3, 0, 0, 0, 1}, qualities)
}
