// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package abrcc drives adaptive bitrate decisions for one playback session
// and feeds the congestion controller of the connection serving it.
package abrcc

import (
	"errors"
	"sync"

	"github.com/pion/abrcc/pkg/abr"
	"github.com/pion/abrcc/pkg/catalog"
	"github.com/pion/abrcc/pkg/cc"
	"github.com/pion/abrcc/pkg/schema"
	"github.com/pion/logging"
	"github.com/pion/randutil"
)

var errNilCatalog = errors.New("engine requires a catalog")

// Option configures an Engine.
type Option func(*Engine) error

// WithConfig sets the strategy and its settings.
func WithConfig(config Config) Option {
	return func(e *Engine) error {
		if err := config.Validate(); err != nil {
			return err
		}
		e.config = config

		return nil
	}
}

// WithLoggerFactory sets the logger factory of the engine and its strategy.
func WithLoggerFactory(factory logging.LoggerFactory) Option {
	return func(e *Engine) error {
		e.loggerFactory = factory

		return nil
	}
}

// WithObserver registers an observer of the values computed by the strategy.
func WithObserver(observer abr.Observer) Option {
	return func(e *Engine) error {
		e.observer = observer

		return nil
	}
}

// WithRandom sets the random source of the stochastic strategies.
func WithRandom(random randutil.MathRandomGenerator) Option {
	return func(e *Engine) error {
		e.random = random

		return nil
	}
}

// Engine is the decision engine of one playback session. Telemetry ingestion
// and decision requests may come from different goroutines; each call sees and
// leaves the session state consistent.
type Engine struct {
	lock      sync.Mutex
	algorithm abr.Algorithm

	config        Config
	loggerFactory logging.LoggerFactory
	observer      abr.Observer
	random        randutil.MathRandomGenerator
	log           logging.LeveledLogger
}

// NewEngine returns an engine deciding over c. A nil controller is replaced
// by one that has no estimates and ignores every hint.
func NewEngine(c *catalog.Catalog, controller cc.Controller, opts ...Option) (*Engine, error) {
	if c == nil {
		return nil, errNilCatalog
	}
	if controller == nil {
		controller = cc.NoOp{}
	}

	e := &Engine{
		config:        DefaultConfig(),
		loggerFactory: logging.NewDefaultLoggerFactory(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.log = e.loggerFactory.NewLogger("abrcc")

	algorithm, err := abr.New(e.config.Algorithm, abr.Params{
		Catalog:       c,
		Controller:    controller,
		LoggerFactory: e.loggerFactory,
		Observer:      e.observer,
		Random:        e.random,
		BufferBased:   e.config.BufferBased,
		Worthed:       e.config.Worthed,
		Target:        e.config.Target,
		State:         e.config.State,
	})
	if err != nil {
		return nil, err
	}
	e.algorithm = algorithm
	e.log.Infof("engine started: %s over %d segments of %d qualities",
		e.config.Algorithm, c.Segments(), c.Qualities())

	return e, nil
}

// RegisterMetrics ingests one telemetry batch as a whole.
func (e *Engine) RegisterMetrics(metrics schema.Metrics) {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.algorithm.RegisterMetrics(metrics)
}

// Decide returns the decision for the next segment when it can be committed,
// otherwise the last committed decision. Repeated calls without new telemetry
// return the same decision.
func (e *Engine) Decide() schema.Decision {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.algorithm.Decide()
}

// Config returns the configuration of the engine.
func (e *Engine) Config() Config {
	return e.config
}
