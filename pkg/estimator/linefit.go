// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package estimator

import (
	"math"
	"time"

	"github.com/gammazero/deque"
	"gonum.org/v1/gonum/stat"
)

type point struct {
	at    float64
	value float64
}

// LineFit projects a short-term trend of a scalar series. It keeps the last
// window samples, stamped on a fixed cadence of timeDelta, and extrapolates the
// least-squares line projection steps past the newest sample.
type LineFit struct {
	window     int
	timeDelta  float64
	projection int

	next    float64
	history deque.Deque[point]
	xs, ys  []float64
}

// NewLineFit returns an empty projector.
func NewLineFit(window int, timeDelta time.Duration, projection int) *LineFit {
	if window < 1 {
		window = 1
	}

	return &LineFit{
		window:     window,
		timeDelta:  float64(timeDelta.Milliseconds()),
		projection: projection,
		xs:         make([]float64, 0, window),
		ys:         make([]float64, 0, window),
	}
}

// Sample appends a value one cadence step after the previous one.
func (l *LineFit) Sample(value float64) {
	l.history.PushBack(point{at: l.next, value: value})
	l.next += l.timeDelta
	for l.history.Len() > l.window {
		l.history.PopFront()
	}
}

// Len returns the number of samples in the window.
func (l *LineFit) Len() int {
	return l.history.Len()
}

// Empty reports whether the window holds no sample.
func (l *LineFit) Empty() bool {
	return l.history.Len() == 0
}

// Last returns the newest sample, 0 if empty.
func (l *LineFit) Last() float64 {
	if l.Empty() {
		return 0
	}

	return l.history.Back().value
}

// ValueOr returns the projected value, or def while the window is empty.
func (l *LineFit) ValueOr(def float64) float64 {
	n := l.history.Len()
	if n == 0 {
		return def
	}
	if n == 1 {
		return l.Last()
	}

	l.xs, l.ys = l.xs[:0], l.ys[:0]
	for i := 0; i < n; i++ {
		p := l.history.At(i)
		l.xs = append(l.xs, p.at)
		l.ys = append(l.ys, p.value)
	}
	if stat.Variance(l.xs, nil) == 0 {
		return stat.Mean(l.ys, nil)
	}

	alpha, beta := stat.LinearRegression(l.xs, l.ys, nil, false)
	at := l.history.Back().at + float64(l.projection)*l.timeDelta
	projected := alpha + beta*at
	if math.IsNaN(projected) || math.IsInf(projected, 0) {
		return l.Last()
	}

	return projected
}
