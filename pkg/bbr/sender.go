// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package bbr implements a sender modelled after the PROBE_BW and PROBE_RTT
// states of BBR. It exposes its estimates to the decision engine and obeys
// the hints the engine sends back.
package bbr

import (
	"sync"
	"time"

	"github.com/pion/abrcc/internal/types"
	"github.com/pion/abrcc/pkg/cc"
	"github.com/pion/logging"
	"go.uber.org/atomic"
)

// Option configures a Sender.
type Option func(*Sender) error

// WithConfig sets the settings of the sender.
func WithConfig(config Config) Option {
	return func(s *Sender) error {
		if err := config.Validate(); err != nil {
			return err
		}
		s.config = config

		return nil
	}
}

// WithLoggerFactory sets the logger factory of the sender.
func WithLoggerFactory(factory logging.LoggerFactory) Option {
	return func(s *Sender) error {
		s.loggerFactory = factory

		return nil
	}
}

// Sender is a simulated BBR sender. Estimates are readable without locking;
// round trips, pacing and hints are serialized.
type Sender struct {
	loggerFactory logging.LoggerFactory
	log           logging.LeveledLogger
	config        Config

	lock          sync.Mutex
	pacer         *rateLimitPacer
	filter        maxFilter
	cycle         cc.GainCycle
	phase         int
	round         int
	deliveryRates []float64
	lastProbeRTT  time.Time
	inProbeRTT    bool
	minRTT        time.Duration

	bandwidth  *atomic.Float64
	rtt        *atomic.Float64
	gain       *atomic.Float64
	targetRate *atomic.Float64
	rttProbing *atomic.Bool
}

// NewSender returns a sender in PROBE_BW.
func NewSender(opts ...Option) (*Sender, error) {
	s := &Sender{
		loggerFactory: logging.NewDefaultLoggerFactory(),
		config:        DefaultConfig(),
		bandwidth:     atomic.NewFloat64(0),
		rtt:           atomic.NewFloat64(0),
		gain:          atomic.NewFloat64(1),
		targetRate:    atomic.NewFloat64(0),
		rttProbing:    atomic.NewBool(true),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.log = s.loggerFactory.NewLogger("bbr")
	s.filter.window = s.config.BandwidthWindow
	s.cycle = append(cc.GainCycle(nil), s.config.Cycle...)
	s.gain.Store(s.cycle.At(0))
	s.phase = 1
	s.pacer = newRateLimitPacer(types.Kbps(s.PacingRate()), s.config.BurstWindow, s.config.MinBurst)

	return s, nil
}

// BandwidthEstimate implements cc.Controller. It is the windowed max of the
// delivery rates.
func (s *Sender) BandwidthEstimate() (float64, bool) {
	bw := s.bandwidth.Load()

	return bw, bw > 0
}

// RTTEstimate implements cc.Controller. It is the minimum RTT in milliseconds.
func (s *Sender) RTTEstimate() (float64, bool) {
	rtt := s.rtt.Load()

	return rtt, rtt > 0
}

// PacingGain implements cc.Controller.
func (s *Sender) PacingGain() (float64, bool) {
	return s.gain.Load(), true
}

// ProposePacingGainCycle implements cc.Controller. The new cycle starts at
// the next round.
func (s *Sender) ProposePacingGainCycle(cycle cc.GainCycle) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.cycle = append(cc.GainCycle(nil), cycle...)
	s.phase = 0
	s.log.Debugf("gain cycle %v", s.cycle)
}

// SetRTTProbing implements cc.Controller.
func (s *Sender) SetRTTProbing(enabled bool) {
	if s.rttProbing.Swap(enabled) != enabled {
		s.log.Infof("rtt probing %v", enabled)
	}
}

// SetTargetRate implements cc.Controller. A non-positive rate releases the
// sender back to its own estimate.
func (s *Sender) SetTargetRate(kbps float64) {
	s.targetRate.Store(max(kbps, 0))
}

// PopDeliveryRates implements cc.DeliveryRateSource.
func (s *Sender) PopDeliveryRates() []float64 {
	s.lock.Lock()
	defer s.lock.Unlock()

	rates := s.deliveryRates
	s.deliveryRates = nil

	return rates
}

// PacingRate returns the current sending rate in kbps: the target rate when
// one is set, otherwise the bandwidth estimate scaled by the pacing gain.
func (s *Sender) PacingRate() float64 {
	if target := s.targetRate.Load(); target > 0 {
		return target
	}
	bw, ok := s.BandwidthEstimate()
	if !ok {
		bw = s.config.InitialRate
	}

	return bw * s.gain.Load()
}

// OnRoundTrip ends a round in which deliveredBytes were acknowledged over
// interval with the given round-trip time.
func (s *Sender) OnRoundTrip(now time.Time, deliveredBytes int64, interval, rtt time.Duration) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if rate := types.RateOf(deliveredBytes, interval).Kbps(); rate > 0 {
		s.deliveryRates = append(s.deliveryRates, rate)
		s.filter.update(s.round, rate)
	} else {
		s.filter.expire(s.round)
	}
	if bw, ok := s.filter.best(); ok {
		s.bandwidth.Store(bw)
	}

	s.updateRTT(now, rtt)
	s.round++
	if s.inProbeRTT {
		s.gain.Store(s.config.ProbeRTTGain)
	} else {
		s.gain.Store(s.cycle.At(s.phase))
		s.phase++
	}
	s.pacer.SetRate(now, types.Kbps(s.PacingRate()))
	s.log.Tracef("round %d: bw %.0f kbps, min rtt %v, gain %.2f", s.round, s.bandwidth.Load(), s.minRTT, s.gain.Load())
}

func (s *Sender) updateRTT(now time.Time, rtt time.Duration) {
	if s.lastProbeRTT.IsZero() {
		s.lastProbeRTT = now
	}

	switch {
	case s.inProbeRTT:
		s.inProbeRTT = false
		if rtt > 0 {
			s.minRTT = rtt
		}
	case rtt > 0 && (s.minRTT == 0 || rtt < s.minRTT):
		s.minRTT = rtt
	}
	if s.minRTT > 0 {
		s.rtt.Store(float64(s.minRTT) / float64(time.Millisecond))
	}

	if s.rttProbing.Load() && now.Sub(s.lastProbeRTT) >= s.config.ProbeRTTInterval {
		s.inProbeRTT = true
		s.lastProbeRTT = now
		s.log.Debug("entering probe rtt")
	}
}

// InProbeRTT reports whether the current round is a PROBE_RTT round.
func (s *Sender) InProbeRTT() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.inProbeRTT
}

// Pace returns how many of want bytes may be sent at now.
func (s *Sender) Pace(now time.Time, want int) int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.pacer.Take(now, want)
}
