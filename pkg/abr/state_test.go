// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package abr

import (
	"fmt"
	"testing"
	"time"

	"github.com/pion/abrcc/internal/test"
	"github.com/pion/abrcc/pkg/schema"
	"github.com/stretchr/testify/assert"
)

func TestStateTrackerTelemetry(t *testing.T) {
	c := newTestCatalog(t, 5, testLadder, 4*time.Second, nil)
	s := newStateTracker(testParams(c, nil), DefaultStateConfig())

	s.registerTelemetry(schema.Metrics{
		Segments:    []schema.Segment{downloaded(1, 90), downloaded(2, 40)},
		BufferLevel: []schema.Value[int64]{{Value: 100, Timestamp: 10}, {Value: 50, Timestamp: 10}},
		PlayerTime:  []schema.Value[int64]{{Value: 7, Timestamp: 3}},
	})
	assert.Equal(t, int64(100), s.buffer())
	assert.Equal(t, int64(7), s.playerTime.Value)
	assert.Equal(t, int64(90), s.lastTimestamp)

	s.registerTelemetry(schema.Metrics{
		BufferLevel: []schema.Value[int64]{{Value: 30, Timestamp: 5}},
		PlayerTime:  []schema.Value[int64]{{Value: 9, Timestamp: 3}},
	})
	assert.Equal(t, int64(100), s.buffer())
	assert.Equal(t, int64(7), s.playerTime.Value)

	s.registerTelemetry(schema.Metrics{BufferLevel: buffer(70, 11)})
	assert.Equal(t, int64(70), s.buffer())
}

func TestStateTrackerBandwidthCorrection(t *testing.T) {
	cases := []struct {
		bandwidth float64
		gain      float64
		hasGain   bool
		expected  float64
	}{
		{bandwidth: 1000, expected: 1000},
		{bandwidth: 5000, expected: 4300},
		{bandwidth: 1000, gain: 1.25, hasGain: true, expected: 800},
		{bandwidth: 5000, gain: 1.25, hasGain: true, expected: 3440},
		{bandwidth: 1000, gain: 0.75, hasGain: true, expected: 1000},
		{bandwidth: 1000, gain: 1, hasGain: true, expected: 1000},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("%v", i), func(t *testing.T) {
			c := newTestCatalog(t, 5, testLadder, 4*time.Second, nil)
			controller := test.NewMockController()
			s := newStateTracker(testParams(c, controller), DefaultStateConfig())

			assert.Equal(t, 300.0, s.lastBandwidth())
			assert.Equal(t, 300.0, s.averageBandwidth())

			controller.SetBandwidth(tc.bandwidth)
			if tc.hasGain {
				controller.SetGain(tc.gain)
			}
			assert.True(t, s.registerMetrics(schema.Metrics{}))
			assert.InDelta(t, tc.expected, s.lastBandwidth(), 1e-9)
			assert.InDelta(t, tc.expected, s.averageBandwidth(), 1e-9)
		})
	}
}

func TestStateTrackerAverage(t *testing.T) {
	c := newTestCatalog(t, 5, testLadder, 4*time.Second, nil)
	controller := test.NewMockController()
	s := newStateTracker(testParams(c, controller), DefaultStateConfig())

	assert.False(t, s.registerMetrics(schema.Metrics{}))
	assert.True(t, s.average.Empty())

	controller.SetBandwidth(1000)
	s.registerMetrics(schema.Metrics{})
	s.registerMetrics(schema.Metrics{})
	assert.Equal(t, 1, s.average.Count(), "repeated samples are not averaged again")
	assert.InDelta(t, 1000, s.averageBandwidth(), 1e-9)

	// a drop under 70% of the average counts twice
	controller.SetBandwidth(600)
	s.registerMetrics(schema.Metrics{})
	assert.Equal(t, 3, s.average.Count())
	assert.InDelta(t, 2200.0/3, s.averageBandwidth(), 1e-9)

	controller.SetBandwidth(700)
	s.registerMetrics(schema.Metrics{})
	assert.Equal(t, 4, s.average.Count())
	assert.InDelta(t, 725, s.averageBandwidth(), 1e-9)
	assert.Equal(t, 700.0, s.lastBandwidth())
}

func TestStateTrackerRTT(t *testing.T) {
	c := newTestCatalog(t, 5, testLadder, 4*time.Second, nil)
	controller := test.NewMockController()
	s := newStateTracker(testParams(c, controller), DefaultStateConfig())

	s.registerMetrics(schema.Metrics{})
	assert.False(t, s.hasRTT)

	controller.SetRTT(42)
	s.registerMetrics(schema.Metrics{Segments: []schema.Segment{downloaded(1, 15)}})
	assert.True(t, s.hasRTT)
	assert.Equal(t, schema.Value[float64]{Value: 42, Timestamp: 15}, s.rtt)
}
