// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package sim plays a stream over a simulated link, asking a decision engine
// for the quality of every segment and reporting the resulting experience.
package sim

import (
	"context"
	"errors"
	"time"

	"github.com/pion/abrcc/internal/types"
	"github.com/pion/abrcc/pkg/bbr"
	"github.com/pion/abrcc/pkg/catalog"
	"github.com/pion/abrcc/pkg/schema"
	"github.com/pion/logging"
)

var errNilDependency = errors.New("simulation requires a catalog, an engine and a sender")

// Engine decides the quality of segments from telemetry.
type Engine interface {
	RegisterMetrics(metrics schema.Metrics)
	Decide() schema.Decision
}

// Option configures a Simulator.
type Option func(*Simulator) error

// WithConfig sets the settings of the simulation.
func WithConfig(config Config) Option {
	return func(s *Simulator) error {
		if err := config.Validate(); err != nil {
			return err
		}
		s.config = config

		return nil
	}
}

// WithLoggerFactory sets the logger factory of the simulation.
func WithLoggerFactory(factory logging.LoggerFactory) Option {
	return func(s *Simulator) error {
		s.loggerFactory = factory

		return nil
	}
}

// Result summarizes a playback.
type Result struct {
	// Qualities holds the quality of every downloaded segment.
	Qualities []int
	// Rebuffer is the time playback stalled after it started.
	Rebuffer time.Duration
	// Elapsed is the simulated time.
	Elapsed time.Duration
	// AverageBitrate is the mean bitrate of the downloaded segments in kbps.
	AverageBitrate float64
	// Switches counts quality changes between consecutive segments.
	Switches int
	// Truncated is set when the stream did not finish within MaxDuration.
	Truncated bool
}

// Simulator drives one playback session.
type Simulator struct {
	loggerFactory logging.LoggerFactory
	log           logging.LeveledLogger
	config        Config
	catalog       *catalog.Catalog
	engine        Engine
	sender        *bbr.Sender
}

// New returns a simulator playing c through engine over a link paced by
// sender. The sender is expected to be the controller of the engine.
func New(c *catalog.Catalog, engine Engine, sender *bbr.Sender, opts ...Option) (*Simulator, error) {
	if c == nil || engine == nil || sender == nil {
		return nil, errNilDependency
	}

	s := &Simulator{
		loggerFactory: logging.NewDefaultLoggerFactory(),
		config:        DefaultConfig(),
		catalog:       c,
		engine:        engine,
		sender:        sender,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.log = s.loggerFactory.NewLogger("sim")

	return s, nil
}

type download struct {
	index   int
	quality int
	size    int64
	loaded  int64
}

type session struct {
	epoch    time.Time
	elapsed  time.Duration
	played   time.Duration
	buffer   time.Duration
	playing  bool
	next     int
	current  *download
	decided  map[int]int
	result   Result
	segments int
}

func (s *session) finished() bool {
	return s.next > s.segments && s.current == nil && s.buffer <= 0
}

// Run plays the stream until its end, MaxDuration or the cancellation of
// ctx.
func (s *Simulator) Run(ctx context.Context) (Result, error) {
	sess := &session{
		epoch:    time.Now(),
		next:     1,
		decided:  map[int]int{},
		segments: s.catalog.Segments(),
	}

	for !sess.finished() {
		if err := ctx.Err(); err != nil {
			return sess.result, err
		}
		if sess.elapsed >= s.config.MaxDuration {
			sess.result.Truncated = true
			s.log.Warnf("truncated after %v with %d of %d segments", sess.elapsed, sess.next-1, sess.segments)

			break
		}
		s.step(sess)
	}

	res := sess.result
	res.Elapsed = sess.elapsed
	for i, q := range res.Qualities {
		res.AverageBitrate += float64(s.catalog.Bitrate(q))
		if i > 0 && q != res.Qualities[i-1] {
			res.Switches++
		}
	}
	if len(res.Qualities) > 0 {
		res.AverageBitrate /= float64(len(res.Qualities))
	}
	s.log.Infof("played %d segments in %v: rebuffer %v, average bitrate %.0f kbps, %d switches",
		len(res.Qualities), res.Elapsed, res.Rebuffer, res.AverageBitrate, res.Switches)

	return res, nil
}

func (s *Simulator) step(sess *session) {
	tick := s.config.Tick
	capacity := s.config.Trace.CapacityAt(sess.elapsed)
	sess.elapsed += tick
	now := sess.epoch.Add(sess.elapsed)
	ts := sess.elapsed.Milliseconds()
	metrics := schema.Metrics{}

	s.play(sess, tick)

	duration := s.catalog.SegmentDuration()
	if sess.current == nil && sess.next <= sess.segments && sess.buffer+duration <= s.config.MaxBuffer {
		if q, ok := sess.decided[sess.next]; ok {
			size, _ := s.catalog.Size(q, sess.next)
			sess.current = &download{index: sess.next, quality: q, size: size}
			metrics.Segments = append(metrics.Segments, schema.Segment{
				Index: sess.next, State: schema.Loading, Total: size, Timestamp: ts, Quality: q,
			})
		}
	}

	var delivered int64
	if d := sess.current; d != nil {
		want := min(d.size-d.loaded, types.Kbps(capacity).BytesIn(tick))
		delivered = int64(s.sender.Pace(now, int(want)))
		d.loaded += delivered

		segment := schema.Segment{
			Index: d.index, State: schema.Progress, Loaded: d.loaded, Total: d.size, Timestamp: ts, Quality: d.quality,
		}
		if d.loaded >= d.size {
			segment.State = schema.Downloaded
			sess.buffer += duration
			sess.playing = true
			sess.result.Qualities = append(sess.result.Qualities, d.quality)
			sess.next++
			sess.current = nil
		}
		metrics.Segments = append(metrics.Segments, segment)
	}

	rtt := s.config.BaseRTT
	if capacity > 0 {
		rtt = time.Duration(float64(rtt) * max(1, s.sender.PacingRate()/capacity))
	}
	s.sender.OnRoundTrip(now, delivered, tick, rtt)

	metrics.BufferLevel = []schema.Value[int64]{{Value: sess.buffer.Milliseconds(), Timestamp: ts}}
	metrics.PlayerTime = []schema.Value[int64]{{Value: sess.played.Milliseconds(), Timestamp: ts}}
	s.engine.RegisterMetrics(metrics)

	if d := s.engine.Decide(); !d.IsZero() {
		sess.decided[d.Index] = d.Quality
	}
}

func (s *Simulator) play(sess *session, tick time.Duration) {
	if !sess.playing {
		return
	}
	if sess.buffer >= tick {
		sess.buffer -= tick
		sess.played += tick

		return
	}

	sess.played += sess.buffer
	if sess.next <= sess.segments {
		sess.result.Rebuffer += tick - sess.buffer
	}
	sess.buffer = 0
}
