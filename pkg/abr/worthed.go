// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package abr

import (
	"math"

	"github.com/pion/abrcc/pkg/catalog"
	"github.com/pion/abrcc/pkg/cc"
	"github.com/pion/abrcc/pkg/schema"
	"github.com/pion/logging"
	"github.com/pion/randutil"
)

// Worthed compares the reward reachable at a safe rate with the rate at which
// probing for more bandwidth would be worth it, and derives from both the
// aggressivity of the congestion controller.
type Worthed struct {
	log      logging.LeveledLogger
	observer Observer
	progress *progressTracker
	state    *stateTracker
	feedback *cc.FeedbackAdapter
	catalog  *catalog.Catalog
	config   WorthedConfig
	rng      randutil.MathRandomGenerator

	ban          int
	aggressivity float64
	rollout      []int
}

func newWorthed(p Params) *Worthed {
	return &Worthed{
		log:      p.log,
		observer: p.Observer,
		progress: newProgressTracker(p.log, p.Observer),
		state:    newStateTracker(p, p.State),
		feedback: cc.NewFeedbackAdapter(p.Controller, p.log),
		catalog:  p.Catalog,
		config:   p.Worthed,
		rng:      p.Random,
		rollout:  make([]int, 0, max(p.Worthed.Horizon, p.Worthed.StochasticHorizon)),
	}
}

// RegisterMetrics implements Algorithm.
func (w *Worthed) RegisterMetrics(metrics schema.Metrics) {
	w.progress.registerMetrics(metrics)
	w.state.registerMetrics(metrics)
	w.adjustCC()
}

// Decide implements Algorithm.
func (w *Worthed) Decide() schema.Decision {
	return w.progress.decide(w)
}

// Aggressivity returns the last aggressivity proposed to the controller.
func (w *Worthed) Aggressivity() float64 {
	return w.aggressivity
}

func (w *Worthed) adjustCC() {
	index := w.progress.nextIndex()
	if index <= 1 {
		return
	}

	level := adjustedBufferLevel(w.progress, w.state, w.catalog.SegmentDuration(), index-1)
	safe, worthed := w.ComputeRates(true)

	decided := len(w.progress.decisions)
	w.feedback.SetRTTProbing(!(level <= milliseconds(w.config.SafeToRTTProbe) &&
		decided >= w.config.RTTProbeMinDecisions))

	reservoir := milliseconds(w.config.Reservoir)
	switch {
	case level <= reservoir:
		w.aggressivity = 1
	case level >= reservoir+milliseconds(w.config.Cushion):
		w.aggressivity = 0
	default:
		w.aggressivity = aggressivity(safe, worthed-safe, float64(w.catalog.TopBitrate()))
	}
	w.log.Debugf("rates safe %.0f worthed %.0f kbps, aggressivity %.3f", safe, worthed, w.aggressivity)
	w.observer.OnAggressivity(w.aggressivity)
	w.feedback.ProposeAggressivity(w.aggressivity)
}

// ComputeRates returns the safe rate, a fraction of the last bandwidth
// sample, and the worthed rate: the smallest rate above it, searched in fixed
// steps, whose best rollout beats the safe one by the configured reward delta.
func (w *Worthed) ComputeRates(stochastic bool) (safe, worthed float64) {
	last := w.progress.lastDecision()
	level := float64(w.state.buffer())

	safe = w.state.lastBandwidth() * w.config.SafeDownscale
	rewardSafe, _ := w.bestRollout(last.Index+1, safe, level, last.Quality, stochastic)

	step, needed := w.config.Step, w.config.RewardDelta
	if stochastic {
		step, needed = w.config.StochasticStep, w.config.StochasticRewardDelta
	}

	limit := 2 * float64(w.catalog.TopBitrate())
	worthed = safe
	for worthed <= limit {
		worthed += step
		reward, _ := w.bestRollout(last.Index+1, worthed, level, last.Quality, stochastic)
		if reward-rewardSafe >= needed {
			break
		}
	}

	return safe, worthed
}

func (w *Worthed) decideQuality(index int) int {
	if index == 1 {
		return 0
	}

	last := w.progress.lastDecision()
	level := math.Max(0, float64(w.state.buffer())-milliseconds(w.config.Reservoir))
	bandwidth := w.state.averageBandwidth()

	_, quality := w.bestRollout(last.Index+1, bandwidth*w.config.SafeDownscale, level, last.Quality, false)
	limited := w.limitUpjump(quality, last.Quality)
	w.log.Debugf("bandwidth %.0f kbps, buffer %.0f ms, quality %d limited to %d", bandwidth, level, quality, limited)

	return limited
}

// limitUpjump lets the quality rise by at most one rung per decision, and not
// at all during the ban that follows a downward switch.
func (w *Worthed) limitUpjump(quality, last int) int {
	if quality < last {
		w.ban = w.config.UpjumpBan

		return quality
	}

	if quality > last {
		if w.ban > 0 {
			quality = last
		} else {
			quality = last + 1
		}
	}
	if w.ban > 0 {
		w.ban--
	}

	return quality
}

// bestRollout enumerates every quality sequence over the horizon starting at
// segment start and returns the best reward with the first quality of the
// sequence reaching it. The stochastic search uses a shorter horizon and keeps
// each sequence with a fixed probability.
func (w *Worthed) bestRollout(start int, bandwidth, level float64, current int, stochastic bool) (float64, int) {
	depth := min(w.config.Horizon, w.catalog.Segments()-start+1)
	if stochastic {
		depth = min(depth, w.config.StochasticHorizon)
	}
	depth = max(depth, 0)

	qualities := w.catalog.Qualities()
	seq := w.rollout[:depth]
	clear(seq)

	best, quality := math.Inf(-1), 0
	for {
		if !stochastic || w.probability() <= w.config.StochasticKeep {
			reward := w.reward(seq, start, bandwidth, level, current)
			if reward > best {
				best = reward
				if depth > 0 {
					quality = seq[0]
				} else {
					quality = current
				}
			}
		}

		i := depth - 1
		for ; i >= 0; i-- {
			seq[i]++
			if seq[i] < qualities {
				break
			}
			seq[i] = 0
		}
		if i < 0 {
			break
		}
	}

	return best, quality
}

// reward simulates downloading seq at a constant bandwidth from segment start
// and scores it by total bitrate minus rebuffering and switching penalties.
// Segments past the end of the stream are skipped.
func (w *Worthed) reward(seq []int, start int, bandwidth, level float64, current int) float64 {
	duration := milliseconds(w.catalog.SegmentDuration())

	var rebuffer, bitrates, switches float64
	last := current
	for i, q := range seq {
		size, ok := w.catalog.Size(q, start+i)
		if !ok {
			continue
		}

		download := 8 * float64(size) / 1000 / bandwidth * 1000
		if level < download {
			rebuffer += download - level
			level = 0
		} else {
			level -= download
		}
		level += duration

		bitrate := float64(w.catalog.Bitrate(q))
		bitrates += bitrate
		switches += math.Abs(bitrate - float64(w.catalog.Bitrate(last)))
		last = q
	}

	return bitrates - w.config.RebufferPenalty*rebuffer - switches
}

func (w *Worthed) probability() float64 {
	return float64(w.rng.Uint64()>>11) / (1 << 53)
}
