// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package types holds unit types shared by the simulated transport.
package types

import (
	"math"
	"time"
)

const (
	// BitPerSecond is a data rate of 1 bit per second.
	BitPerSecond = DataRate(1)
	// KiloBitPerSecond is a data rate of 1 kilobit per second.
	KiloBitPerSecond = 1000 * BitPerSecond
	// MegaBitPerSecond is a data rate of 1 megabit per second.
	MegaBitPerSecond = 1000 * KiloBitPerSecond
)

// DataRate in bit per second.
type DataRate float64

// Kbps returns r in kilobits per second.
func Kbps(kbps float64) DataRate {
	return DataRate(kbps) * KiloBitPerSecond
}

// RateOf returns the rate at which bytes were delivered over interval, 0 for
// a non-positive interval.
func RateOf(bytes int64, interval time.Duration) DataRate {
	if interval <= 0 {
		return 0
	}

	return DataRate(float64(bytes*8) / interval.Seconds())
}

// Kbps returns the data rate in kilobits per second.
func (r DataRate) Kbps() float64 {
	return float64(r / KiloBitPerSecond)
}

// BytesPerSecond returns the data rate in bytes per second.
func (r DataRate) BytesPerSecond() float64 {
	return float64(r) / 8
}

// BytesIn returns the number of bytes sent at r during d, rounded to the
// nearest byte.
func (r DataRate) BytesIn(d time.Duration) int64 {
	return int64(math.Round(r.BytesPerSecond() * d.Seconds()))
}
