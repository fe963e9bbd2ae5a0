// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package estimator implements the scalar smoothers and projectors used to
// track bandwidth samples.
package estimator

// WilderEMA is an exponential moving average with Wilder's smoothing factor
// 1/window. The first window samples are averaged cumulatively so that the
// initial value does not dominate.
type WilderEMA struct {
	window  int
	count   int
	average float64
	last    float64
}

// NewWilderEMA returns an empty average over the given window. Windows below
// one are treated as one.
func NewWilderEMA(window int) *WilderEMA {
	if window < 1 {
		window = 1
	}

	return &WilderEMA{window: window}
}

// Sample adds a new value.
func (a *WilderEMA) Sample(value float64) {
	a.count++
	a.last = value
	n := a.count
	if n > a.window {
		n = a.window
	}
	a.average += (value - a.average) / float64(n)
}

// Empty reports whether no sample has been added yet.
func (a *WilderEMA) Empty() bool {
	return a.count == 0
}

// Count returns the number of samples added.
func (a *WilderEMA) Count() int {
	return a.count
}

// Value returns the current average, 0 if empty.
func (a *WilderEMA) Value() float64 {
	return a.average
}

// ValueOr returns the current average or def if empty.
func (a *WilderEMA) ValueOr(def float64) float64 {
	if a.Empty() {
		return def
	}

	return a.average
}

// Last returns the most recently sampled value.
func (a *WilderEMA) Last() float64 {
	return a.last
}
