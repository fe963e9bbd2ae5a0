// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package bbr

import (
	"errors"
	"time"

	"github.com/pion/abrcc/pkg/cc"
)

var (
	errNonPositiveRate   = errors.New("initial rate must be positive")
	errNonPositiveWindow = errors.New("window must be positive")
	errInvalidGain       = errors.New("probe rtt gain must be in (0, 1]")
)

// Config holds the settings of a Sender. Rates are in kbps.
type Config struct {
	// InitialRate is the bandwidth assumed until the first delivery sample.
	InitialRate float64 `yaml:"initial_rate"`
	// BandwidthWindow is the number of rounds covered by the max filter.
	BandwidthWindow int `yaml:"bandwidth_window"`
	// ProbeRTTInterval is the time between two PROBE_RTT rounds.
	ProbeRTTInterval time.Duration `yaml:"probe_rtt_interval"`
	// ProbeRTTGain is the pacing gain of a PROBE_RTT round.
	ProbeRTTGain float64 `yaml:"probe_rtt_gain"`
	// BurstWindow is the sending time the pacer may burst at once.
	BurstWindow time.Duration `yaml:"burst_window"`
	// MinBurst is the smallest burst of the pacer in bytes.
	MinBurst int `yaml:"min_burst"`
	// Cycle is the gain cycle used until another one is proposed.
	Cycle cc.GainCycle `yaml:"cycle"`
}

// DefaultConfig returns the PROBE_BW defaults.
func DefaultConfig() Config {
	return Config{
		InitialRate:      300,
		BandwidthWindow:  10,
		ProbeRTTInterval: 10 * time.Second,
		ProbeRTTGain:     0.5,
		BurstWindow:      200 * time.Millisecond,
		MinBurst:         1500,
		Cycle:            cc.CycleDefault,
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	switch {
	case c.InitialRate <= 0:
		return errNonPositiveRate
	case c.BandwidthWindow <= 0 || c.ProbeRTTInterval <= 0 || c.BurstWindow <= 0:
		return errNonPositiveWindow
	case c.ProbeRTTGain <= 0 || c.ProbeRTTGain > 1:
		return errInvalidGain
	}

	return nil
}
