// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package schema contains the telemetry and decision types exchanged between a
// DASH player front end and the decision engine.
package schema

import (
	"errors"
	"fmt"
)

var errUnknownSegmentState = errors.New("unknown segment state")

// SegmentState is the download state a player reports for a segment.
type SegmentState int

const (
	// Loading means the request for the segment has been issued.
	Loading SegmentState = iota
	// Progress means part of the segment has been received.
	Progress
	// Downloaded means the segment has been fully received.
	Downloaded
)

func (s SegmentState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Progress:
		return "progress"
	case Downloaded:
		return "downloaded"
	default:
		return fmt.Sprintf("invalid segment state: %d", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s SegmentState) MarshalText() ([]byte, error) {
	switch s {
	case Loading, Progress, Downloaded:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownSegmentState, int(s))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SegmentState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "loading":
		*s = Loading
	case "progress":
		*s = Progress
	case "downloaded":
		*s = Downloaded
	default:
		return fmt.Errorf("%w: %q", errUnknownSegmentState, string(text))
	}

	return nil
}

// Segment is the latest known state of one media segment. Timestamps are
// monotonic milliseconds as seen by the player.
type Segment struct {
	Index     int          `json:"index"`
	State     SegmentState `json:"state"`
	Loaded    int64        `json:"loaded"`
	Total     int64        `json:"total"`
	Timestamp int64        `json:"timestamp"`
	Quality   int          `json:"quality,omitempty"`
}

// Fraction returns the downloaded share of the segment, or 0 if the total size
// is unknown.
func (s Segment) Fraction() float64 {
	if s.Total <= 0 {
		return 0
	}

	return float64(s.Loaded) / float64(s.Total)
}

// Decision is the quality chosen for a segment index. The zero Decision means
// that nothing has been decided yet.
type Decision struct {
	Index     int   `json:"index"`
	Quality   int   `json:"quality"`
	Timestamp int64 `json:"timestamp"`
}

// IsZero reports whether d carries no decision.
func (d Decision) IsZero() bool {
	return d == Decision{}
}

// Value is a timestamped sample.
type Value[T int64 | float64] struct {
	Value     T     `json:"value"`
	Timestamp int64 `json:"timestamp"`
}

// Newer reports whether v was taken strictly after other.
func (v Value[T]) Newer(other Value[T]) bool {
	return v.Timestamp > other.Timestamp
}

// Metrics is one telemetry batch. Player time and buffer level are in
// milliseconds.
type Metrics struct {
	Segments    []Segment      `json:"segments,omitempty"`
	PlayerTime  []Value[int64] `json:"playerTime,omitempty"`
	BufferLevel []Value[int64] `json:"bufferLevel,omitempty"`
}

// Empty reports whether the batch carries no samples.
func (m Metrics) Empty() bool {
	return len(m.Segments) == 0 && len(m.PlayerTime) == 0 && len(m.BufferLevel) == 0
}
