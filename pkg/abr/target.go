// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package abr

import (
	"github.com/pion/abrcc/pkg/catalog"
	"github.com/pion/abrcc/pkg/cc"
	"github.com/pion/abrcc/pkg/estimator"
	"github.com/pion/abrcc/pkg/schema"
	"github.com/pion/logging"
)

// lookahead holds what Target and Target2 share: the QoE optimizer and the
// search of the cheapest bandwidth target that keeps most of the QoE.
type lookahead struct {
	log        logging.LeveledLogger
	observer   Observer
	controller cc.Controller
	catalog    *catalog.Catalog
	config     TargetConfig

	progress  *progressTracker
	state     *stateTracker
	linefit   *estimator.LineFit
	optimizer *qoeOptimizer
	feedback  *cc.FeedbackAdapter

	target float64
}

func newLookahead(p Params) *lookahead {
	return &lookahead{
		log:        p.log,
		observer:   p.Observer,
		controller: p.Controller,
		catalog:    p.Catalog,
		config:     p.Target,
		progress:   newProgressTracker(p.log, p.Observer),
		state:      newStateTracker(p, p.State),
		linefit:    estimator.NewLineFit(p.Target.BandwidthWindow, p.Target.TimeDelta, p.Target.ProjectionWindow),
		optimizer:  newQoEOptimizer(p),
		feedback:   cc.NewFeedbackAdapter(p.Controller, p.log),
		target:     float64(p.Catalog.LowestBitrate()),
	}
}

// TargetRate returns the last bandwidth target.
func (l *lookahead) TargetRate() float64 {
	return l.target
}

func (l *lookahead) qoe(bandwidth float64) (float64, int) {
	last := l.progress.lastDecision()

	return l.optimizer.qoe(bandwidth, last.Index, last.Quality, l.state.buffer())
}

// searchTarget lowers the bandwidth target from the top of the search
// interval in fixed steps while the QoE stays above the configured
// percentile of the QoE at the top. It returns the average bandwidth the
// interval was derived from. The projection is floored at the lowest
// bitrate so a steep drop never yields a non-positive target.
func (l *lookahead) searchTarget() float64 {
	bandwidth := l.state.averageBandwidth()
	projected := max(l.linefit.ValueOr(bandwidth), float64(l.catalog.LowestBitrate()))
	low := min(projected, bandwidth) * (1 - l.config.QoEDelta)
	high := projected * (1 + l.config.QoEDelta)

	l.target = high
	best, _ := l.qoe(high)
	for l.target-l.config.Step >= low {
		score, _ := l.qoe(l.target - l.config.Step)
		if score < l.config.QoEPercentile*best {
			break
		}
		l.target -= l.config.Step
	}
	l.log.Debugf("bandwidth interval [%.0f, %.0f], average %.0f, projected %.0f, target %.0f",
		low, high, bandwidth, projected, l.target)
	l.observer.OnTargetRate(l.target)

	return bandwidth
}

// Target steers the controller through gain cycles chosen from the ratio of
// the observed bandwidth to the bandwidth target.
type Target struct {
	*lookahead

	adjusted    float64
	hasAdjusted bool
}

func newTarget(p Params) *Target {
	return &Target{lookahead: newLookahead(p)}
}

// RegisterMetrics implements Algorithm.
func (t *Target) RegisterMetrics(metrics schema.Metrics) {
	t.progress.registerMetrics(metrics)
	if t.state.registerMetrics(metrics) {
		bw := t.state.lastBandwidth()
		if t.linefit.Empty() || bw != t.linefit.Last() {
			t.linefit.Sample(bw)
		}
	}
	t.adjustCC()
}

// Decide implements Algorithm.
func (t *Target) Decide() schema.Decision {
	return t.progress.decide(t)
}

func (t *Target) adjustCC() {
	if !t.state.hasBandwidth {
		return
	}

	bw := t.state.lastBandwidth()
	if t.hasAdjusted && bw == t.adjusted {
		return
	}
	ratio := bw / t.target
	t.log.Debugf("bandwidth %.0f kbps, target ratio %.2f", bw, ratio)
	t.feedback.ProposeRatio(ratio)
	t.adjusted, t.hasAdjusted = bw, true
}

func (t *Target) decideQuality(index int) int {
	if index <= 1 {
		return 0
	}

	bandwidth := t.searchTarget()
	_, quality := t.qoe(t.config.SafeDownscale * bandwidth)

	return quality
}

// Target2 pins the controller to the bandwidth target and estimates bandwidth
// from the delivery rates the controller measured.
type Target2 struct {
	*lookahead
}

func newTarget2(p Params) *Target2 {
	return &Target2{lookahead: newLookahead(p)}
}

// RegisterMetrics implements Algorithm.
func (t *Target2) RegisterMetrics(metrics schema.Metrics) {
	t.progress.registerMetrics(metrics)
	t.state.registerTelemetry(metrics)

	if bw := t.deliveryRate(); bw > 0 {
		bw = min(bw, float64(t.catalog.TopBitrate()))
		t.state.setBandwidth(bw)
		t.state.average.Sample(bw)
		t.linefit.Sample(bw)
		t.observer.OnBandwidth(bw, t.state.average.Value())
	}
	t.state.sampleRTT()
}

// deliveryRate returns the highest delivery rate measured since the previous
// batch, or the bandwidth estimate for controllers that do not expose them.
// Delivery rates are measured, not paced, so no pacing-gain correction applies;
// the fallback estimate is used as is.
func (t *Target2) deliveryRate() float64 {
	source, ok := t.controller.(cc.DeliveryRateSource)
	if !ok {
		bw, _ := t.controller.BandwidthEstimate()

		return bw
	}

	var best float64
	for _, rate := range source.PopDeliveryRates() {
		best = max(best, rate)
	}

	return best
}

// Decide implements Algorithm.
func (t *Target2) Decide() schema.Decision {
	return t.progress.decide(t)
}

func (t *Target2) decideQuality(index int) int {
	if index <= 1 {
		return 0
	}

	bandwidth := t.searchTarget()
	t.feedback.SetTargetRate(t.target)
	_, quality := t.qoe(t.config.SafeDownscale * bandwidth)

	return quality
}
