// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package cc

import "slices"

// GainCycle is a sequence of pacing rate multipliers applied round by round,
// wrapping around at the end.
type GainCycle []float64

// Equal reports whether both cycles hold the same gains.
func (c GainCycle) Equal(other GainCycle) bool {
	return slices.Equal(c, other)
}

// At returns the gain of the given round.
func (c GainCycle) At(round int) float64 {
	if len(c) == 0 {
		return 1
	}

	return c[round%len(c)]
}

// Gain cycles proposed to the controller, from the most to the least
// aggressive.
var (
	CycleAggressive = GainCycle{1.5, 1, 1.5, 1, 1, 1, 1, 1}
	CycleModerate   = GainCycle{1.3, 0.8, 1.3, 0.8, 0.8, 1, 1, 1}
	CycleProbeMild  = GainCycle{1.2, 1, 1.2, 1, 1, 1, 1, 1}
	CycleDefault    = GainCycle{1.25, 0.75, 1, 1, 1, 1, 1, 1}
	CycleDrain      = GainCycle{1, 0.8, 1, 0.8, 1, 1, 1, 1}
)

// AggressivityCycle maps an aggressivity in [0, 1] to a gain cycle.
func AggressivityCycle(aggressivity float64) GainCycle {
	switch {
	case aggressivity >= 1:
		return CycleAggressive
	case aggressivity >= 0.4:
		return CycleModerate
	default:
		return CycleDefault
	}
}

// RatioCycle maps the ratio of observed bandwidth to target bandwidth to a
// gain cycle: the further below target, the harder the controller probes.
func RatioCycle(ratio float64) GainCycle {
	switch {
	case ratio >= 1.3:
		return CycleDrain
	case ratio >= 0.9:
		return CycleDefault
	case ratio >= 0.5:
		return CycleProbeMild
	default:
		return CycleAggressive
	}
}
