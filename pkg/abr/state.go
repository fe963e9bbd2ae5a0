// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package abr

import (
	"github.com/pion/abrcc/pkg/cc"
	"github.com/pion/abrcc/pkg/estimator"
	"github.com/pion/abrcc/pkg/schema"
	"github.com/pion/logging"
)

// stateTracker keeps the latest player telemetry and the bandwidth and RTT
// samples pulled from the congestion controller.
type stateTracker struct {
	log        logging.LeveledLogger
	observer   Observer
	controller cc.Controller

	topBitrate    float64
	lowestBitrate float64
	dropThreshold float64

	lastTimestamp int64
	playerTime    schema.Value[int64]
	bufferLevel   schema.Value[int64]

	bandwidth    schema.Value[float64]
	hasBandwidth bool
	rtt          schema.Value[float64]
	hasRTT       bool

	average *estimator.WilderEMA
}

func newStateTracker(p Params, config StateConfig) *stateTracker {
	return &stateTracker{
		log:           p.log,
		observer:      p.Observer,
		controller:    p.Controller,
		topBitrate:    float64(p.Catalog.TopBitrate()),
		lowestBitrate: float64(p.Catalog.LowestBitrate()),
		dropThreshold: config.DropThreshold,
		average:       estimator.NewWilderEMA(config.BandwidthWindow),
	}
}

// registerTelemetry applies the player reported samples of a batch.
func (s *stateTracker) registerTelemetry(metrics schema.Metrics) {
	for _, segment := range metrics.Segments {
		s.lastTimestamp = max(s.lastTimestamp, segment.Timestamp)
	}
	for _, v := range metrics.PlayerTime {
		if v.Newer(s.playerTime) {
			s.playerTime = v
		}
	}
	for _, v := range metrics.BufferLevel {
		if v.Newer(s.bufferLevel) {
			s.bufferLevel = v
		}
	}
}

// registerMetrics applies a batch and samples the controller estimates. It
// reports whether a bandwidth sample was taken.
func (s *stateTracker) registerMetrics(metrics schema.Metrics) bool {
	s.registerTelemetry(metrics)

	bw, sampled := s.controller.BandwidthEstimate()
	if sampled {
		bw = min(bw, s.topBitrate)
		if gain, ok := s.controller.PacingGain(); ok && gain > 1 {
			bw /= gain
		}
		s.setBandwidth(bw)

		if s.average.Empty() || bw != s.average.Last() {
			if !s.average.Empty() && bw <= s.average.Value()*s.dropThreshold {
				s.average.Sample(bw)
			}
			s.average.Sample(bw)
		}
		s.observer.OnBandwidth(bw, s.average.Value())
	}
	s.sampleRTT()

	s.log.Debugf("buffer %d ms, bandwidth %.0f kbps, average %.0f kbps",
		s.bufferLevel.Value, s.bandwidth.Value, s.average.ValueOr(0))

	return sampled
}

func (s *stateTracker) setBandwidth(kbps float64) {
	s.bandwidth = schema.Value[float64]{Value: kbps, Timestamp: s.lastTimestamp}
	s.hasBandwidth = true
}

func (s *stateTracker) sampleRTT() {
	if rtt, ok := s.controller.RTTEstimate(); ok {
		s.rtt = schema.Value[float64]{Value: rtt, Timestamp: s.lastTimestamp}
		s.hasRTT = true
	}
}

// lastBandwidth returns the last corrected bandwidth sample, or the lowest
// bitrate of the ladder when none was taken yet.
func (s *stateTracker) lastBandwidth() float64 {
	if !s.hasBandwidth {
		return s.lowestBitrate
	}

	return s.bandwidth.Value
}

// averageBandwidth returns the smoothed bandwidth, or the lowest bitrate of the
// ladder when none was taken yet.
func (s *stateTracker) averageBandwidth() float64 {
	return s.average.ValueOr(s.lowestBitrate)
}

// buffer returns the last reported buffer level in milliseconds.
func (s *stateTracker) buffer() int64 {
	return s.bufferLevel.Value
}
