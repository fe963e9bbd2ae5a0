// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package catalog holds the static per-quality segment sizes and perceptual
// quality scores of one video.
package catalog

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyCatalog is returned when a catalog has no quality levels or no segments.
	ErrEmptyCatalog = errors.New("catalog has no qualities or segments")
	// ErrMismatchedSegments is returned when quality levels list different segment counts.
	ErrMismatchedSegments = errors.New("quality levels have different segment counts")
	// ErrMismatchedScores is returned when the score table does not match the size table.
	ErrMismatchedScores = errors.New("score table does not match segment table")
	// ErrUnorderedLadder is returned when bitrates are not strictly ascending.
	ErrUnorderedLadder = errors.New("bitrate ladder is not strictly ascending")
	// ErrInvalidDuration is returned for a non-positive segment duration.
	ErrInvalidDuration = errors.New("segment duration must be positive")
)

// Quality is one rung of the bitrate ladder.
type Quality struct {
	// Bitrate in kbps.
	Bitrate int `yaml:"bitrate"`
	// Sizes in bytes, one per segment position.
	Sizes []int64 `yaml:"sizes"`
	// Scores is the perceptual quality (e.g. VMAF) per segment position.
	Scores []float64 `yaml:"scores,omitempty"`
}

// Catalog is an immutable table of segment sizes and scores. Segment index i
// (1-based, as used by decisions) is stored at position i-1.
type Catalog struct {
	duration  time.Duration
	bitrates  []int
	sizes     [][]int64
	scores    [][]float64
	segments  int
	hasScores bool
}

// New validates the qualities and builds a Catalog. Qualities must be given
// from the lowest to the highest bitrate.
func New(segmentDuration time.Duration, qualities ...Quality) (*Catalog, error) {
	if segmentDuration <= 0 {
		return nil, ErrInvalidDuration
	}
	if len(qualities) == 0 || len(qualities[0].Sizes) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		duration: segmentDuration,
		bitrates: make([]int, len(qualities)),
		sizes:    make([][]int64, len(qualities)),
		segments: len(qualities[0].Sizes),
	}
	withScores := 0
	for q, quality := range qualities {
		if len(quality.Sizes) != c.segments {
			return nil, fmt.Errorf("%w: quality %d has %d segments, expected %d",
				ErrMismatchedSegments, q, len(quality.Sizes), c.segments)
		}
		if q > 0 && quality.Bitrate <= qualities[q-1].Bitrate {
			return nil, fmt.Errorf("%w: %d kbps after %d kbps", ErrUnorderedLadder, quality.Bitrate, qualities[q-1].Bitrate)
		}
		c.bitrates[q] = quality.Bitrate
		c.sizes[q] = append([]int64(nil), quality.Sizes...)
		if len(quality.Scores) > 0 {
			withScores++
		}
	}

	if withScores == 0 {
		return c, nil
	}
	if withScores != len(qualities) {
		return nil, fmt.Errorf("%w: %d of %d qualities have scores", ErrMismatchedScores, withScores, len(qualities))
	}
	scores := make([][]float64, len(qualities))
	for q, quality := range qualities {
		scores[q] = quality.Scores
	}

	return c.WithScores(scores)
}

// WithScores returns a copy of the catalog using the given perceptual scores,
// indexed by quality and then by segment position.
func (c *Catalog) WithScores(scores [][]float64) (*Catalog, error) {
	if len(scores) != len(c.bitrates) {
		return nil, fmt.Errorf("%w: %d score columns for %d qualities", ErrMismatchedScores, len(scores), len(c.bitrates))
	}
	next := *c
	next.scores = make([][]float64, len(scores))
	for q, column := range scores {
		if len(column) != c.segments {
			return nil, fmt.Errorf("%w: quality %d has %d scores, expected %d",
				ErrMismatchedScores, q, len(column), c.segments)
		}
		next.scores[q] = append([]float64(nil), column...)
	}
	next.hasScores = true

	return &next, nil
}

// Qualities returns the number of ladder rungs.
func (c *Catalog) Qualities() int {
	return len(c.bitrates)
}

// Segments returns the number of segments in the stream.
func (c *Catalog) Segments() int {
	return c.segments
}

// SegmentDuration returns the playback duration of one segment.
func (c *Catalog) SegmentDuration() time.Duration {
	return c.duration
}

// Bitrate returns the bitrate of quality q in kbps.
func (c *Catalog) Bitrate(q int) int {
	return c.bitrates[q]
}

// Bitrates returns a copy of the ladder in kbps.
func (c *Catalog) Bitrates() []int {
	return append([]int(nil), c.bitrates...)
}

// LowestBitrate returns the bottom of the ladder in kbps.
func (c *Catalog) LowestBitrate() int {
	return c.bitrates[0]
}

// TopBitrate returns the top of the ladder in kbps.
func (c *Catalog) TopBitrate() int {
	return c.bitrates[len(c.bitrates)-1]
}

// Contains reports whether segment index is part of the stream.
func (c *Catalog) Contains(index int) bool {
	return index >= 1 && index <= c.segments
}

// Size returns the size in bytes of segment index at quality q.
func (c *Catalog) Size(q, index int) (int64, bool) {
	if !c.Contains(index) || q < 0 || q >= len(c.sizes) {
		return 0, false
	}

	return c.sizes[q][index-1], true
}

// HasScores reports whether perceptual scores are available.
func (c *Catalog) HasScores() bool {
	return c.hasScores
}

// Score returns the perceptual score of segment index at quality q.
func (c *Catalog) Score(q, index int) (float64, bool) {
	if !c.hasScores || !c.Contains(index) || q < 0 || q >= len(c.scores) {
		return 0, false
	}

	return c.scores[q][index-1], true
}
