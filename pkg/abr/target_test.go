// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package abr

import (
	"testing"
	"time"

	"github.com/pion/abrcc/internal/test"
	"github.com/pion/abrcc/pkg/cc"
	"github.com/pion/abrcc/pkg/schema"
	"github.com/stretchr/testify/assert"
)

var ladderScores = []float64{30, 55, 65, 75, 85, 95}

type estimateOnly struct {
	cc.NoOp
	bandwidth, gain float64
}

func (e estimateOnly) BandwidthEstimate() (float64, bool) {
	return e.bandwidth, true
}

func (e estimateOnly) PacingGain() (float64, bool) {
	return e.gain, e.gain > 0
}

func TestTargetAdjustCC(t *testing.T) {
	c := newTestCatalog(t, 20, testLadder, 4*time.Second, ladderScores)
	controller := test.NewMockController()
	algo := newTarget(testParams(c, controller))

	algo.RegisterMetrics(schema.Metrics{BufferLevel: buffer(1000, 10)})
	assert.Empty(t, controller.Cycles, "no bandwidth sample yet")

	// 600 against the initial target of 300
	controller.SetBandwidth(600)
	algo.RegisterMetrics(schema.Metrics{BufferLevel: buffer(1000, 20)})
	assert.Equal(t, cc.CycleDrain, controller.LastCycle())
	assert.Equal(t, 1, algo.linefit.Len())

	algo.RegisterMetrics(schema.Metrics{BufferLevel: buffer(1000, 30)})
	assert.Len(t, controller.Cycles, 1)
	assert.Equal(t, 1, algo.linefit.Len(), "unchanged samples are not fitted twice")

	controller.SetBandwidth(200)
	algo.RegisterMetrics(schema.Metrics{BufferLevel: buffer(1000, 40)})
	assert.Equal(t, cc.CycleProbeMild, controller.LastCycle())
	assert.Equal(t, 2, algo.linefit.Len())

	controller.SetBandwidth(100)
	algo.RegisterMetrics(schema.Metrics{BufferLevel: buffer(1000, 50)})
	assert.Equal(t, cc.CycleAggressive, controller.LastCycle())
}

func TestTargetDecide(t *testing.T) {
	c := newTestCatalog(t, 20, testLadder, 4*time.Second, ladderScores)
	controller := test.NewMockController()
	observer := &countingObserver{}
	p := testParams(c, controller)
	p.Observer = observer
	algo := newTarget(p)

	controller.SetBandwidth(2000)
	algo.RegisterMetrics(schema.Metrics{BufferLevel: buffer(8000, 10)})
	assert.Equal(t, schema.Decision{Index: 1}, algo.Decide())
	assert.Empty(t, observer.rates)

	algo.RegisterMetrics(schema.Metrics{
		Segments:    []schema.Segment{downloaded(1, 20)},
		BufferLevel: buffer(8000, 20),
	})
	average := algo.state.averageBandwidth()
	projected := algo.linefit.ValueOr(average)
	d := algo.Decide()
	assert.Equal(t, 2, d.Index)
	assert.LessOrEqual(t, d.Quality, 1)

	assert.Len(t, observer.rates, 1)
	assert.Equal(t, algo.TargetRate(), observer.rates[0])
	assert.GreaterOrEqual(t, algo.TargetRate(), min(average, projected)*0.85)
	assert.LessOrEqual(t, algo.TargetRate(), projected*1.15)
	assert.Empty(t, controller.TargetRates, "target rate is only pushed by target2")
}

func TestTarget2DeliveryRates(t *testing.T) {
	c := newTestCatalog(t, 20, testLadder, 4*time.Second, ladderScores)
	controller := test.NewMockController()
	algo := newTarget2(testParams(c, controller))

	controller.SetBandwidth(50)
	controller.PushDeliveryRates(800, 1000, 900)
	algo.RegisterMetrics(schema.Metrics{BufferLevel: buffer(3000, 10)})
	assert.Equal(t, 1000.0, algo.state.lastBandwidth())
	assert.Equal(t, 1000.0, algo.state.averageBandwidth())
	assert.Equal(t, 1, algo.linefit.Len())

	// nothing measured since the last batch
	algo.RegisterMetrics(schema.Metrics{BufferLevel: buffer(3000, 20)})
	assert.Equal(t, 1, algo.state.average.Count())

	assert.Equal(t, schema.Decision{Index: 1}, algo.Decide())
	assert.Empty(t, controller.TargetRates)

	controller.PushDeliveryRates(9000)
	controller.SetRTT(30)
	algo.RegisterMetrics(schema.Metrics{
		Segments:    []schema.Segment{downloaded(1, 30)},
		BufferLevel: buffer(3000, 30),
	})
	assert.Equal(t, 4300.0, algo.state.lastBandwidth())
	assert.Equal(t, 2, algo.linefit.Len())
	assert.Equal(t, 30.0, algo.state.rtt.Value)

	average := algo.state.averageBandwidth()
	projected := algo.linefit.ValueOr(average)
	assert.Equal(t, 2, algo.Decide().Index)
	assert.Equal(t, []float64{algo.TargetRate()}, controller.TargetRates)
	assert.GreaterOrEqual(t, algo.TargetRate(), min(average, projected)*0.85)
	assert.LessOrEqual(t, algo.TargetRate(), projected*1.15)
	assert.Empty(t, controller.Cycles)
}

func TestTarget2EstimateFallback(t *testing.T) {
	c := newTestCatalog(t, 20, testLadder, 4*time.Second, ladderScores)
	algo := newTarget2(testParams(c, estimateOnly{bandwidth: 1200, gain: 1.25}))

	algo.RegisterMetrics(schema.Metrics{})
	algo.RegisterMetrics(schema.Metrics{})
	assert.Equal(t, 1200.0, algo.state.lastBandwidth(), "estimate taken without gain correction")
	assert.Equal(t, 2, algo.state.average.Count())
	assert.Equal(t, 2, algo.linefit.Len())
}

func TestTargetSteepDrop(t *testing.T) {
	c := newTestCatalog(t, 20, testLadder, 4*time.Second, ladderScores)
	floor := float64(c.LowestBitrate()) * (1 - DefaultTargetConfig().QoEDelta)

	t.Run("target", func(t *testing.T) {
		controller := test.NewMockController()
		algo := newTarget(testParams(c, controller))

		controller.SetBandwidth(4300)
		algo.RegisterMetrics(schema.Metrics{BufferLevel: buffer(8000, 10)})
		assert.Equal(t, schema.Decision{Index: 1}, algo.Decide())

		controller.SetBandwidth(300)
		algo.RegisterMetrics(schema.Metrics{
			Segments:    []schema.Segment{downloaded(1, 20)},
			BufferLevel: buffer(8000, 20),
		})
		assert.Less(t, algo.linefit.ValueOr(algo.state.averageBandwidth()), 0.0)

		assert.Equal(t, 2, algo.Decide().Index)
		assert.GreaterOrEqual(t, algo.TargetRate(), floor)

		controller.SetBandwidth(310)
		algo.RegisterMetrics(schema.Metrics{BufferLevel: buffer(8000, 30)})
		assert.NotEqual(t, cc.CycleAggressive, controller.LastCycle())
	})

	t.Run("target2", func(t *testing.T) {
		controller := test.NewMockController()
		algo := newTarget2(testParams(c, controller))

		controller.PushDeliveryRates(4300)
		algo.RegisterMetrics(schema.Metrics{BufferLevel: buffer(8000, 10)})
		assert.Equal(t, schema.Decision{Index: 1}, algo.Decide())

		controller.PushDeliveryRates(300)
		algo.RegisterMetrics(schema.Metrics{
			Segments:    []schema.Segment{downloaded(1, 20)},
			BufferLevel: buffer(8000, 20),
		})
		assert.Less(t, algo.linefit.ValueOr(algo.state.averageBandwidth()), 0.0)

		assert.Equal(t, 2, algo.Decide().Index)
		if assert.Len(t, controller.TargetRates, 1) {
			assert.GreaterOrEqual(t, controller.TargetRates[0], floor)
		}
	})
}
