// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package test provides helpers shared by the package tests.
package test

import (
	"sync"

	"github.com/pion/abrcc/pkg/cc"
)

// MockController is a cc.Controller whose estimates are set by the test and
// which records every hint it receives.
type MockController struct {
	mu sync.Mutex

	bandwidth, rtt, gain          float64
	hasBandwidth, hasRTT, hasGain bool
	deliveryRates                 []float64

	Cycles      []cc.GainCycle
	TargetRates []float64
	RTTProbing  []bool
}

// NewMockController returns a controller without estimates.
func NewMockController() *MockController {
	return &MockController{}
}

// SetBandwidth sets the bandwidth estimate in kbps.
func (m *MockController) SetBandwidth(kbps float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bandwidth, m.hasBandwidth = kbps, true
}

// SetRTT sets the RTT estimate in milliseconds.
func (m *MockController) SetRTT(ms float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rtt, m.hasRTT = ms, true
}

// SetGain sets the current pacing gain.
func (m *MockController) SetGain(gain float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gain, m.hasGain = gain, true
}

// PushDeliveryRates queues delivery rate samples for PopDeliveryRates.
func (m *MockController) PushDeliveryRates(kbps ...float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveryRates = append(m.deliveryRates, kbps...)
}

// BandwidthEstimate implements cc.Controller.
func (m *MockController) BandwidthEstimate() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.bandwidth, m.hasBandwidth
}

// RTTEstimate implements cc.Controller.
func (m *MockController) RTTEstimate() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.rtt, m.hasRTT
}

// PacingGain implements cc.Controller.
func (m *MockController) PacingGain() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.gain, m.hasGain
}

// ProposePacingGainCycle implements cc.Controller.
func (m *MockController) ProposePacingGainCycle(cycle cc.GainCycle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cycles = append(m.Cycles, cycle)
}

// SetRTTProbing implements cc.Controller.
func (m *MockController) SetRTTProbing(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RTTProbing = append(m.RTTProbing, enabled)
}

// SetTargetRate implements cc.Controller.
func (m *MockController) SetTargetRate(kbps float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TargetRates = append(m.TargetRates, kbps)
}

// PopDeliveryRates implements cc.DeliveryRateSource.
func (m *MockController) PopDeliveryRates() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	rates := m.deliveryRates
	m.deliveryRates = nil

	return rates
}

// LastCycle returns the last proposed cycle, nil if none.
func (m *MockController) LastCycle() cc.GainCycle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Cycles) == 0 {
		return nil
	}

	return m.Cycles[len(m.Cycles)-1]
}
