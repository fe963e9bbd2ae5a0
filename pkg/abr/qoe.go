// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package abr

import (
	"math"

	"github.com/pion/abrcc/pkg/catalog"
	"github.com/pion/logging"
)

// node is one (buffer bucket, quality) state of a lattice layer.
type node struct {
	reached bool
	qoe     float64
	score   float64
	// index of the predecessor in the previous layer, -1 for the start state
	from int
}

// qoeOptimizer searches, over a fixed horizon of segments, the quality
// sequence maximizing the QoE reachable at a constant bandwidth. States are
// (segment, buffer bucket, quality); layer d of the lattice holds the states
// of the d-th segment after the last decision, indexed by
// bucket*qualities+quality.
type qoeOptimizer struct {
	log      logging.LeveledLogger
	observer Observer
	catalog  *catalog.Catalog
	config   TargetConfig

	unit     float64
	buckets  int
	duration float64
	layers   [][]node
}

func newQoEOptimizer(p Params) *qoeOptimizer {
	buckets := int(p.Target.MaxBuffer / p.Target.BufferUnit)
	layers := make([][]node, p.Target.Horizon)
	for i := range layers {
		layers[i] = make([]node, (buckets+1)*p.Catalog.Qualities())
	}

	return &qoeOptimizer{
		log:      p.log,
		observer: p.Observer,
		catalog:  p.Catalog,
		config:   p.Target,
		unit:     milliseconds(p.Target.BufferUnit),
		buckets:  buckets,
		duration: milliseconds(p.Catalog.SegmentDuration()),
		layers:   layers,
	}
}

// qoe returns the best QoE reachable at bandwidth from the state reached by
// the last decision, and the quality of the first segment on the way to it.
// When the stream ends at lastIndex it keeps current with a zero score.
func (o *qoeOptimizer) qoe(bandwidth float64, lastIndex, current int, buffer int64) (float64, int) {
	depth := 0
	for depth < o.config.Horizon && o.catalog.Contains(lastIndex+1+depth) {
		depth++
	}
	if depth == 0 {
		o.log.Warnf("no reachable state after segment %d, keeping quality %d", lastIndex, current)
		o.observer.OnDegraded()

		return 0, current
	}

	if !(bandwidth > 0) {
		bandwidth = math.SmallestNonzeroFloat64
	}

	qualities := o.catalog.Qualities()
	maxBuffer := float64(o.buckets) * o.unit
	startScore, _ := o.catalog.Score(current, lastIndex)
	startBucket := min(max(int(float64(buffer)/o.unit), 0), o.buckets)
	start := node{reached: true, score: startScore, from: -1}

	for d := 0; d < depth; d++ {
		layer := o.layers[d]
		clear(layer)
		segment := lastIndex + 1 + d

		relax := func(fromIndex int, from node, bucket, quality int) {
			for next := max(0, quality-2); next <= min(qualities-1, quality+1); next++ {
				size, _ := o.catalog.Size(next, segment)
				download := 8 * float64(size) / 1000 / bandwidth * 1000

				level := float64(bucket) * o.unit
				var rebuffer float64
				if level < download {
					rebuffer = download - level
					level = 0
				} else {
					level -= download
				}
				level = math.Min(level+o.duration, maxBuffer)

				score, _ := o.catalog.Score(next, segment)
				value := from.qoe +
					o.config.Alpha*score -
					o.config.Beta*math.Abs(score-from.score) -
					o.config.Gamma*rebuffer/1000

				to := &layer[int(level/o.unit)*qualities+next]
				if !to.reached || to.qoe < value {
					*to = node{reached: true, qoe: value, score: score, from: fromIndex}
				}
			}
		}

		if d == 0 {
			relax(-1, start, startBucket, current)

			continue
		}
		for i, from := range o.layers[d-1] {
			if from.reached {
				relax(i, from, i/qualities, i%qualities)
			}
		}
	}

	terminal := o.layers[depth-1]
	best := -1
	for i, n := range terminal {
		if n.reached && (best < 0 || n.qoe >= terminal[best].qoe) {
			best = i
		}
	}

	first := best
	for d := depth - 1; d > 0; d-- {
		first = o.layers[d][first].from
	}
	o.log.Tracef("qoe at %.0f kbps: %.2f, first quality %d", bandwidth, terminal[best].qoe, first%qualities)

	return terminal[best].qoe, first % qualities
}
