// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package abr

import (
	"errors"
	"fmt"
	"time"
)

var (
	errNonPositiveWindow = errors.New("window must be positive")
	errInvalidRatio      = errors.New("ratio must be in (0, 1]")
	errNonPositiveStep   = errors.New("step must be positive")
	errNonPositiveUnit   = errors.New("buffer unit must be positive")
)

// BufferBasedConfig configures the buffer occupancy strategy.
type BufferBasedConfig struct {
	// Buffer level at or below which the lowest bitrate is chosen
	Reservoir time.Duration `yaml:"reservoir"`
	// Width of the band above the reservoir in which the bitrate grows linearly
	Cushion time.Duration `yaml:"cushion"`
}

// DefaultBufferBasedConfig returns the default buffer based configuration.
func DefaultBufferBasedConfig() BufferBasedConfig {
	return BufferBasedConfig{
		Reservoir: 5 * time.Second,
		Cushion:   10 * time.Second,
	}
}

// Validate checks the configuration.
func (c BufferBasedConfig) Validate() error {
	if c.Reservoir < 0 || c.Cushion <= 0 {
		return fmt.Errorf("%w: reservoir %v, cushion %v", errNonPositiveWindow, c.Reservoir, c.Cushion)
	}

	return nil
}

// WorthedConfig configures the safe/worthed rate strategy.
type WorthedConfig struct {
	// Fraction of the bandwidth estimate considered safe
	SafeDownscale float64 `yaml:"safe_downscale"`
	// Weight of one millisecond of rebuffering against one kbps of bitrate
	RebufferPenalty float64 `yaml:"rebuffer_penalty"`
	// Rollout depth of the deterministic search
	Horizon int `yaml:"horizon"`
	// Rollout depth of the stochastic search
	StochasticHorizon int `yaml:"stochastic_horizon"`
	// Probability of keeping a rollout in the stochastic search
	StochasticKeep float64 `yaml:"stochastic_keep"`
	// Reward gain over the safe rate that makes a rate worth probing for
	RewardDelta           float64 `yaml:"reward_delta"`
	StochasticRewardDelta float64 `yaml:"stochastic_reward_delta"`
	// Increment, in kbps, of the worthed rate search
	Step           float64 `yaml:"step"`
	StochasticStep float64 `yaml:"stochastic_step"`

	Reservoir time.Duration `yaml:"reservoir"`
	Cushion   time.Duration `yaml:"cushion"`
	// Buffer level at or below which RTT probing is disabled
	SafeToRTTProbe time.Duration `yaml:"safe_to_rtt_probe"`
	// Number of decisions that may not raise the quality after a downward switch
	UpjumpBan int `yaml:"upjump_ban"`
	// Number of decisions after which RTT probing may be disabled
	RTTProbeMinDecisions int `yaml:"rtt_probe_min_decisions"`
}

// DefaultWorthedConfig returns the default worthed configuration.
func DefaultWorthedConfig() WorthedConfig {
	return WorthedConfig{
		SafeDownscale:         0.75,
		RebufferPenalty:       4.3,
		Horizon:               5,
		StochasticHorizon:     4,
		StochasticKeep:        0.2,
		RewardDelta:           5000,
		StochasticRewardDelta: 4000,
		Step:                  100,
		StochasticStep:        150,
		Reservoir:             5 * time.Second,
		Cushion:               10 * time.Second,
		SafeToRTTProbe:        10 * time.Second,
		UpjumpBan:             2,
		RTTProbeMinDecisions:  3,
	}
}

// Validate checks the configuration.
func (c WorthedConfig) Validate() error {
	switch {
	case c.Horizon < 1 || c.StochasticHorizon < 1:
		return fmt.Errorf("%w: horizon %d, stochastic horizon %d", errNonPositiveWindow, c.Horizon, c.StochasticHorizon)
	case c.SafeDownscale <= 0 || c.SafeDownscale > 1:
		return fmt.Errorf("%w: safe downscale %v", errInvalidRatio, c.SafeDownscale)
	case c.StochasticKeep <= 0 || c.StochasticKeep > 1:
		return fmt.Errorf("%w: stochastic keep %v", errInvalidRatio, c.StochasticKeep)
	case c.Step <= 0 || c.StochasticStep <= 0:
		return fmt.Errorf("%w: %v, %v", errNonPositiveStep, c.Step, c.StochasticStep)
	case c.Reservoir < 0 || c.Cushion <= 0:
		return fmt.Errorf("%w: reservoir %v, cushion %v", errNonPositiveWindow, c.Reservoir, c.Cushion)
	}

	return nil
}

// TargetConfig configures the lookahead strategies.
type TargetConfig struct {
	// Number of segments simulated ahead of the last decision
	Horizon int `yaml:"horizon"`
	// Weights of the perceptual score, its variation and rebuffering seconds
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
	Gamma float64 `yaml:"gamma"`
	// Granularity and cap of the simulated buffer
	BufferUnit time.Duration `yaml:"buffer_unit"`
	MaxBuffer  time.Duration `yaml:"max_buffer"`
	// Line-fit window, projection in samples and sample cadence
	BandwidthWindow  int           `yaml:"bandwidth_window"`
	ProjectionWindow int           `yaml:"projection_window"`
	TimeDelta        time.Duration `yaml:"time_delta"`
	// Fraction of the best score a cheaper target must still reach
	QoEPercentile float64 `yaml:"qoe_percentile"`
	// Relative widening of the bandwidth search interval
	QoEDelta float64 `yaml:"qoe_delta"`
	// Decrement, in kbps, of the target search
	Step float64 `yaml:"step"`
	// Fraction of the average bandwidth used to pick the quality
	SafeDownscale float64 `yaml:"safe_downscale"`
}

// DefaultTargetConfig returns the default lookahead configuration.
func DefaultTargetConfig() TargetConfig {
	return TargetConfig{
		Horizon:          10,
		Alpha:            1,
		Beta:             2.5,
		Gamma:            25,
		BufferUnit:       40 * time.Millisecond,
		MaxBuffer:        40 * time.Second,
		BandwidthWindow:  6,
		ProjectionWindow: 2,
		TimeDelta:        100 * time.Millisecond,
		QoEPercentile:    0.95,
		QoEDelta:         0.15,
		Step:             100,
		SafeDownscale:    0.8,
	}
}

// Validate checks the configuration.
func (c TargetConfig) Validate() error {
	switch {
	case c.Horizon < 1 || c.BandwidthWindow < 1:
		return fmt.Errorf("%w: horizon %d, bandwidth window %d", errNonPositiveWindow, c.Horizon, c.BandwidthWindow)
	case c.BufferUnit <= 0 || c.MaxBuffer < c.BufferUnit:
		return fmt.Errorf("%w: unit %v, max %v", errNonPositiveUnit, c.BufferUnit, c.MaxBuffer)
	case c.QoEPercentile <= 0 || c.QoEPercentile > 1:
		return fmt.Errorf("%w: percentile %v", errInvalidRatio, c.QoEPercentile)
	case c.SafeDownscale <= 0 || c.SafeDownscale > 1:
		return fmt.Errorf("%w: safe downscale %v", errInvalidRatio, c.SafeDownscale)
	case c.QoEDelta < 0 || c.QoEDelta >= 1:
		return fmt.Errorf("%w: delta %v", errInvalidRatio, c.QoEDelta)
	case c.Step <= 0:
		return fmt.Errorf("%w: %v", errNonPositiveStep, c.Step)
	}

	return nil
}

// StateConfig configures the bandwidth state tracker.
type StateConfig struct {
	// Window of the bandwidth moving average
	BandwidthWindow int `yaml:"bandwidth_window"`
	// Drop ratio under which a sample counts twice in the average
	DropThreshold float64 `yaml:"drop_threshold"`
}

// DefaultStateConfig returns the default state tracker configuration.
func DefaultStateConfig() StateConfig {
	return StateConfig{
		BandwidthWindow: 10,
		DropThreshold:   0.7,
	}
}

// Validate checks the configuration.
func (c StateConfig) Validate() error {
	if c.BandwidthWindow < 1 {
		return fmt.Errorf("%w: %d", errNonPositiveWindow, c.BandwidthWindow)
	}
	if c.DropThreshold < 0 || c.DropThreshold > 1 {
		return fmt.Errorf("%w: drop threshold %v", errInvalidRatio, c.DropThreshold)
	}

	return nil
}
