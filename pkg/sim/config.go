// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package sim

import (
	"errors"
	"time"
)

var (
	errEmptyTrace        = errors.New("trace has no capacity")
	errNonPositiveTick   = errors.New("tick must be positive")
	errNegativeCapacity  = errors.New("trace capacity must not be negative")
	errNonPositiveBuffer = errors.New("max buffer must be positive")
)

// Trace is the capacity of the simulated link over time, in kbps. Each
// capacity lasts one interval; the trace repeats once exhausted.
type Trace struct {
	Interval   time.Duration `yaml:"interval"`
	Capacities []float64     `yaml:"capacities"`
}

// ConstantTrace returns a trace of a link with a fixed capacity.
func ConstantTrace(kbps float64) Trace {
	return Trace{Interval: time.Second, Capacities: []float64{kbps}}
}

// CapacityAt returns the link capacity after elapsed time.
func (t Trace) CapacityAt(elapsed time.Duration) float64 {
	if len(t.Capacities) == 0 || t.Interval <= 0 {
		return 0
	}

	return t.Capacities[int(elapsed/t.Interval)%len(t.Capacities)]
}

func (t Trace) validate() error {
	if len(t.Capacities) == 0 || t.Interval <= 0 {
		return errEmptyTrace
	}
	for _, c := range t.Capacities {
		if c < 0 {
			return errNegativeCapacity
		}
	}

	return nil
}

// Config holds the settings of a simulation.
type Config struct {
	// Tick is the simulated time between two telemetry batches.
	Tick time.Duration `yaml:"tick"`
	// BaseRTT is the round-trip time of the idle link.
	BaseRTT time.Duration `yaml:"base_rtt"`
	// MaxBuffer stops downloads while the buffer is full.
	MaxBuffer time.Duration `yaml:"max_buffer"`
	// MaxDuration truncates the simulation.
	MaxDuration time.Duration `yaml:"max_duration"`
	Trace       Trace         `yaml:"trace"`
}

// DefaultConfig returns a simulation over a constant 3 Mbps link.
func DefaultConfig() Config {
	return Config{
		Tick:        100 * time.Millisecond,
		BaseRTT:     40 * time.Millisecond,
		MaxBuffer:   60 * time.Second,
		MaxDuration: time.Hour,
		Trace:       ConstantTrace(3000),
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	switch {
	case c.Tick <= 0:
		return errNonPositiveTick
	case c.MaxBuffer <= 0:
		return errNonPositiveBuffer
	}

	return c.Trace.validate()
}
