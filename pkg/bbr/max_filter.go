// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package bbr

import "github.com/gammazero/deque"

type roundSample struct {
	round int
	value float64
}

// maxFilter tracks the maximum of the samples taken during the last window
// rounds. Candidates are kept in decreasing order of value.
type maxFilter struct {
	window     int
	candidates deque.Deque[roundSample]
}

func (f *maxFilter) update(round int, value float64) {
	for f.candidates.Len() > 0 && f.candidates.Back().value <= value {
		f.candidates.PopBack()
	}
	f.candidates.PushBack(roundSample{round: round, value: value})
	f.expire(round)
}

func (f *maxFilter) expire(round int) {
	for f.candidates.Len() > 0 && round-f.candidates.Front().round >= f.window {
		f.candidates.PopFront()
	}
}

func (f *maxFilter) best() (float64, bool) {
	if f.candidates.Len() == 0 {
		return 0, false
	}

	return f.candidates.Front().value, true
}
