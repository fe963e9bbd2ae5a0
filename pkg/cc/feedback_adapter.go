// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package cc

import (
	"github.com/pion/logging"
)

// FeedbackAdapter forwards engine signals to a Controller, dropping any signal
// equal to the last one sent.
type FeedbackAdapter struct {
	log        logging.LeveledLogger
	controller Controller

	cycle      GainCycle
	targetRate float64
	hasTarget  bool
	rttProbing bool
}

// NewFeedbackAdapter returns an adapter for the given controller. RTT probing
// is assumed to be enabled on the controller.
func NewFeedbackAdapter(controller Controller, log logging.LeveledLogger) *FeedbackAdapter {
	if controller == nil {
		controller = NoOp{}
	}

	return &FeedbackAdapter{
		log:        log,
		controller: controller,
		rttProbing: true,
	}
}

// Controller returns the wrapped controller.
func (f *FeedbackAdapter) Controller() Controller {
	return f.controller
}

// ProposeCycle sends cycle unless it was the last cycle sent. It reports
// whether the controller was called.
func (f *FeedbackAdapter) ProposeCycle(cycle GainCycle) bool {
	if f.cycle != nil && f.cycle.Equal(cycle) {
		return false
	}
	f.cycle = append(GainCycle(nil), cycle...)
	f.log.Debugf("proposing pacing gain cycle %v", cycle)
	f.controller.ProposePacingGainCycle(f.cycle)

	return true
}

// ProposeAggressivity maps aggressivity to a cycle and proposes it.
func (f *FeedbackAdapter) ProposeAggressivity(aggressivity float64) bool {
	return f.ProposeCycle(AggressivityCycle(aggressivity))
}

// ProposeRatio maps a bandwidth ratio to a cycle and proposes it.
func (f *FeedbackAdapter) ProposeRatio(ratio float64) bool {
	return f.ProposeCycle(RatioCycle(ratio))
}

// SetTargetRate sends the target rate unless it was the last rate sent.
func (f *FeedbackAdapter) SetTargetRate(kbps float64) bool {
	if f.hasTarget && f.targetRate == kbps {
		return false
	}
	f.targetRate, f.hasTarget = kbps, true
	f.log.Debugf("setting target rate %.0f kbps", kbps)
	f.controller.SetTargetRate(kbps)

	return true
}

// SetRTTProbing toggles RTT probing when the state changes.
func (f *FeedbackAdapter) SetRTTProbing(enabled bool) bool {
	if f.rttProbing == enabled {
		return false
	}
	f.rttProbing = enabled
	f.log.Debugf("rtt probing %v", enabled)
	f.controller.SetRTTProbing(enabled)

	return true
}

// Cycle returns the last cycle sent, nil if none.
func (f *FeedbackAdapter) Cycle() GainCycle {
	return f.cycle
}
