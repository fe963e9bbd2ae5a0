// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package cc defines the contract between the decision engine and the
// congestion controller of the transport, and maps engine signals onto that
// contract.
package cc

// Controller is the congestion controller of the connection serving the
// playback session. All methods are cheap, non-blocking queries or hints.
// Bandwidths and rates are in kbps, RTTs in milliseconds.
type Controller interface {
	// BandwidthEstimate returns the current bandwidth estimate, if any.
	BandwidthEstimate() (float64, bool)
	// RTTEstimate returns the current round-trip time estimate, if any.
	RTTEstimate() (float64, bool)
	// PacingGain returns the gain currently applied to the pacing rate, if any.
	PacingGain() (float64, bool)
	// ProposePacingGainCycle replaces the cycle of pacing gains.
	ProposePacingGainCycle(cycle GainCycle)
	// SetRTTProbing enables or disables periodic minimum RTT probing.
	SetRTTProbing(enabled bool)
	// SetTargetRate pins the sending rate to the given value.
	SetTargetRate(kbps float64)
}

// DeliveryRateSource is implemented by controllers that expose the raw
// delivery rate samples measured since the previous call.
type DeliveryRateSource interface {
	PopDeliveryRates() []float64
}

// NoOp is a Controller without estimates that ignores every hint.
type NoOp struct{}

// BandwidthEstimate implements Controller.
func (NoOp) BandwidthEstimate() (float64, bool) {
	return 0, false
}

// RTTEstimate implements Controller.
func (NoOp) RTTEstimate() (float64, bool) {
	return 0, false
}

// PacingGain implements Controller.
func (NoOp) PacingGain() (float64, bool) {
	return 0, false
}

// ProposePacingGainCycle implements Controller.
func (NoOp) ProposePacingGainCycle(GainCycle) {}

// SetRTTProbing implements Controller.
func (NoOp) SetRTTProbing(bool) {}

// SetTargetRate implements Controller.
func (NoOp) SetTargetRate(float64) {}
