// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package abr

import (
	"github.com/pion/abrcc/pkg/schema"
	"github.com/pion/logging"
)

// decideThreshold is the loaded fraction of the previous segment from which
// the next segment may be decided.
const decideThreshold = 0.8

type qualityDecider interface {
	decideQuality(index int) int
}

// progressTracker keeps the latest state of every segment and the ledger of
// committed decisions.
type progressTracker struct {
	log      logging.LeveledLogger
	observer Observer

	segments      map[int]schema.Segment
	decisions     []schema.Decision
	lastTimestamp int64
}

func newProgressTracker(log logging.LeveledLogger, observer Observer) *progressTracker {
	return &progressTracker{
		log:       log,
		observer:  observer,
		segments:  map[int]schema.Segment{},
		decisions: []schema.Decision{},
	}
}

func (p *progressTracker) registerMetrics(metrics schema.Metrics) {
	for _, segment := range metrics.Segments {
		p.lastTimestamp = max(p.lastTimestamp, segment.Timestamp)
		if segment.Index < 0 {
			continue
		}

		prev, known := p.segments[segment.Index]
		switch segment.State {
		case schema.Downloaded:
			if !known || prev.State == schema.Progress {
				p.update(segment)
			}
		case schema.Progress:
			if segment.Total <= 0 {
				continue
			}
			if !known || (prev.State == schema.Progress &&
				prev.Timestamp < segment.Timestamp &&
				prev.Fraction() <= segment.Fraction()) {
				p.update(segment)
			}
		case schema.Loading:
		}
	}
}

func (p *progressTracker) update(segment schema.Segment) {
	p.segments[segment.Index] = segment
	if segment.State == schema.Progress {
		p.log.Tracef("segment %d [%s] %.3f", segment.Index, segment.State, segment.Fraction())
	} else {
		p.log.Tracef("segment %d [%s]", segment.Index, segment.State)
	}
}

// segment returns the latest known state of index.
func (p *progressTracker) segment(index int) (schema.Segment, bool) {
	s, ok := p.segments[index]

	return s, ok
}

// nextIndex returns the first undecided segment index.
func (p *progressTracker) nextIndex() int {
	return len(p.decisions) + 1
}

// lastDecision returns the most recent decision, the zero Decision if none.
func (p *progressTracker) lastDecision() schema.Decision {
	if len(p.decisions) == 0 {
		return schema.Decision{}
	}

	return p.decisions[len(p.decisions)-1]
}

func (p *progressTracker) shouldDecide(index int) bool {
	if index == 1 {
		return true
	}

	prev, ok := p.segments[index-1]
	if !ok {
		return false
	}
	if prev.State != schema.Progress {
		return true
	}

	return prev.Fraction() >= decideThreshold
}

// decide commits the next decision if it is safe to do so, otherwise it
// returns the last committed one.
func (p *progressTracker) decide(decider qualityDecider) schema.Decision {
	index := p.nextIndex()
	if !p.shouldDecide(index) {
		return p.lastDecision()
	}

	decision := schema.Decision{
		Index:     index,
		Quality:   decider.decideQuality(index),
		Timestamp: p.lastTimestamp,
	}
	p.decisions = append(p.decisions, decision)
	p.log.Infof("new decision: index %d quality %d", decision.Index, decision.Quality)
	p.observer.OnDecision(decision)

	return decision
}
