// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package abr implements the adaptive bitrate strategies that pick the quality
// of each segment of a playback session and tune the congestion controller of
// the connection serving it.
package abr

import (
	"errors"
	"fmt"

	"github.com/pion/abrcc/pkg/catalog"
	"github.com/pion/abrcc/pkg/cc"
	"github.com/pion/abrcc/pkg/schema"
	"github.com/pion/logging"
	"github.com/pion/randutil"
)

var (
	// ErrMissingScores is returned when a lookahead strategy is built over a
	// catalog without perceptual scores.
	ErrMissingScores = errors.New("catalog has no perceptual scores")

	errNilCatalog = errors.New("nil catalog")
)

// Kind names a strategy.
type Kind string

// Available strategies.
const (
	KindBufferBased Kind = "bb"
	KindRandom      Kind = "random"
	KindWorthed     Kind = "worthed"
	KindTarget      Kind = "target"
	KindTarget2     Kind = "target2"
)

// Kinds returns every known strategy kind.
func Kinds() []Kind {
	return []Kind{KindBufferBased, KindRandom, KindWorthed, KindTarget, KindTarget2}
}

// Algorithm decides the quality of each segment of one playback session.
// Implementations are not safe for concurrent use.
type Algorithm interface {
	// RegisterMetrics ingests one telemetry batch.
	RegisterMetrics(metrics schema.Metrics)
	// Decide commits the decision for the next segment when it is safe to do
	// so and returns it, otherwise it returns the last committed decision.
	Decide() schema.Decision
}

// Params holds the collaborators and configuration shared by all strategies.
// Zero fields are replaced by defaults.
type Params struct {
	Catalog       *catalog.Catalog
	Controller    cc.Controller
	LoggerFactory logging.LoggerFactory
	Observer      Observer
	Random        randutil.MathRandomGenerator

	BufferBased BufferBasedConfig
	Worthed     WorthedConfig
	Target      TargetConfig
	State       StateConfig

	log logging.LeveledLogger
}

func (p *Params) setDefaults() {
	if p.Controller == nil {
		p.Controller = cc.NoOp{}
	}
	if p.LoggerFactory == nil {
		p.LoggerFactory = logging.NewDefaultLoggerFactory()
	}
	if p.Observer == nil {
		p.Observer = noopObserver{}
	}
	if p.Random == nil {
		p.Random = randutil.NewMathRandomGenerator()
	}
	if p.BufferBased == (BufferBasedConfig{}) {
		p.BufferBased = DefaultBufferBasedConfig()
	}
	if p.Worthed == (WorthedConfig{}) {
		p.Worthed = DefaultWorthedConfig()
	}
	if p.Target == (TargetConfig{}) {
		p.Target = DefaultTargetConfig()
	}
	if p.State == (StateConfig{}) {
		p.State = DefaultStateConfig()
	}
	p.log = p.LoggerFactory.NewLogger("abr")
}

// New builds the strategy of the given kind. Unknown kinds fall back to the
// buffer based strategy.
func New(kind Kind, p Params) (Algorithm, error) {
	if p.Catalog == nil {
		return nil, errNilCatalog
	}
	p.setDefaults()
	if err := p.State.Validate(); err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}

	switch kind {
	case KindBufferBased:
	case KindRandom:
		p.log.Infof("random abr selected")

		return newRandom(p), nil
	case KindWorthed:
		if err := p.Worthed.Validate(); err != nil {
			return nil, fmt.Errorf("worthed: %w", err)
		}
		p.log.Infof("worthed abr selected")

		return newWorthed(p), nil
	case KindTarget, KindTarget2:
		if !p.Catalog.HasScores() {
			return nil, fmt.Errorf("%w: %s", ErrMissingScores, kind)
		}
		if err := p.Target.Validate(); err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
		p.log.Infof("%s abr selected", kind)
		if kind == KindTarget {
			return newTarget(p), nil
		}

		return newTarget2(p), nil
	default:
		p.log.Warnf("unknown abr %q, defaulting to %s", kind, KindBufferBased)
	}

	if err := p.BufferBased.Validate(); err != nil {
		return nil, fmt.Errorf("buffer based: %w", err)
	}
	p.log.Infof("bb abr selected")

	return newBufferBased(p), nil
}
