// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package abr

import (
	"time"

	"github.com/pion/abrcc/pkg/catalog"
	"github.com/pion/abrcc/pkg/schema"
)

// BufferBased maps the buffer occupancy to a bitrate: the lowest one up to a
// reservoir, the highest one past the cushion above it, and a linear ramp in
// between.
type BufferBased struct {
	progress *progressTracker
	state    *stateTracker
	catalog  *catalog.Catalog
	config   BufferBasedConfig
}

func newBufferBased(p Params) *BufferBased {
	return &BufferBased{
		progress: newProgressTracker(p.log, p.Observer),
		state:    newStateTracker(p, p.State),
		catalog:  p.Catalog,
		config:   p.BufferBased,
	}
}

// RegisterMetrics implements Algorithm.
func (b *BufferBased) RegisterMetrics(metrics schema.Metrics) {
	b.progress.registerMetrics(metrics)
	b.state.registerTelemetry(metrics)
}

// Decide implements Algorithm.
func (b *BufferBased) Decide() schema.Decision {
	return b.progress.decide(b)
}

func (b *BufferBased) decideQuality(index int) int {
	if index == 1 {
		return 0
	}

	level := adjustedBufferLevel(b.progress, b.state, b.catalog.SegmentDuration(), index)
	b.progress.log.Debugf("adjusted buffer level %.0f ms", level)

	return bufferBasedQuality(b.catalog, b.config, level)
}

// bufferBasedQuality returns the highest rung whose bitrate does not exceed
// the bitrate mapped from level.
func bufferBasedQuality(c *catalog.Catalog, config BufferBasedConfig, level float64) int {
	reservoir := milliseconds(config.Reservoir)
	cushion := milliseconds(config.Cushion)
	lowest, top := float64(c.LowestBitrate()), float64(c.TopBitrate())

	var bitrate float64
	switch {
	case level <= reservoir:
		bitrate = lowest
	case level >= reservoir+cushion:
		bitrate = top
	default:
		bitrate = lowest + (top-lowest)*(level-reservoir)/cushion
	}

	quality := 0
	for q := c.Qualities() - 1; q >= 0; q-- {
		quality = q
		if bitrate >= float64(c.Bitrate(q)) {
			break
		}
	}

	return quality
}

// adjustedBufferLevel returns the last buffer level plus, while segment
// index-1 is still downloading, the playback it will add minus the time left
// to download it, extrapolated from the fraction received so far.
func adjustedBufferLevel(progress *progressTracker, state *stateTracker, duration time.Duration, index int) float64 {
	level := float64(state.buffer())

	prev, ok := progress.segment(index - 1)
	if !ok || prev.State != schema.Progress {
		return level
	}
	fraction := prev.Fraction()
	if fraction <= 0 {
		return level
	}

	var start int64
	if index > 2 {
		if s, ok := progress.segment(index - 2); ok {
			start = s.Timestamp
		}
	}
	remaining := float64(prev.Timestamp-start) * (1 - fraction) / fraction

	return level + milliseconds(duration) - remaining
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
