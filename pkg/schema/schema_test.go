// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsUnmarshal(t *testing.T) {
	body := `{
		"segments": [
			{"index": 1, "state": "downloaded", "loaded": 100, "total": 100, "timestamp": 10},
			{"index": 2, "state": "progress", "loaded": 40, "total": 100, "timestamp": 20},
			{"index": 3, "state": "loading", "timestamp": 25}
		],
		"playerTime": [{"value": 1500, "timestamp": 20}],
		"bufferLevel": [{"value": 7000, "timestamp": 21}]
	}`

	var m Metrics
	require.NoError(t, json.Unmarshal([]byte(body), &m))

	assert.Len(t, m.Segments, 3)
	assert.Equal(t, Downloaded, m.Segments[0].State)
	assert.Equal(t, Progress, m.Segments[1].State)
	assert.Equal(t, Loading, m.Segments[2].State)
	assert.InDelta(t, 0.4, m.Segments[1].Fraction(), 1e-9)
	assert.Equal(t, Value[int64]{Value: 1500, Timestamp: 20}, m.PlayerTime[0])
	assert.Equal(t, int64(7000), m.BufferLevel[0].Value)
	assert.False(t, m.Empty())
}

func TestSegmentStateText(t *testing.T) {
	var s SegmentState
	assert.Error(t, s.UnmarshalText([]byte("paused")))

	_, err := SegmentState(7).MarshalText()
	assert.Error(t, err)

	for _, state := range []SegmentState{Loading, Progress, Downloaded} {
		text, err := state.MarshalText()
		require.NoError(t, err)

		var back SegmentState
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, state, back)
	}
}

func TestFractionUnknownTotal(t *testing.T) {
	assert.Equal(t, 0.0, Segment{Loaded: 10}.Fraction())
	assert.Equal(t, 0.799, Segment{Loaded: 799, Total: 1000}.Fraction())
}

func TestValueNewer(t *testing.T) {
	a := Value[int64]{Value: 1, Timestamp: 5}
	b := Value[int64]{Value: 2, Timestamp: 5}
	c := Value[int64]{Value: 3, Timestamp: 6}

	assert.False(t, b.Newer(a))
	assert.True(t, c.Newer(a))
	assert.True(t, Decision{}.IsZero())
	assert.False(t, Decision{Index: 1}.IsZero())
}
