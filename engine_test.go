// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package abrcc

import (
	"sync"
	"testing"
	"time"

	mock "github.com/pion/abrcc/internal/test"
	"github.com/pion/abrcc/pkg/abr"
	"github.com/pion/abrcc/pkg/catalog"
	"github.com/pion/abrcc/pkg/schema"
	"github.com/pion/logging"
	"github.com/pion/transport/v3/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T, segments int, scored bool) *catalog.Catalog {
	t.Helper()

	bitrates := []int{300, 750, 1200, 1850, 2850, 4300}
	qualities := make([]catalog.Quality, len(bitrates))
	for q, bitrate := range bitrates {
		qualities[q].Bitrate = bitrate
		for i := 0; i < segments; i++ {
			qualities[q].Sizes = append(qualities[q].Sizes, int64(bitrate)*4000/8)
			if scored {
				qualities[q].Scores = append(qualities[q].Scores, float64(30+10*q))
			}
		}
	}
	c, err := catalog.New(4*time.Second, qualities...)
	require.NoError(t, err)

	return c
}

func TestNewEngine(t *testing.T) {
	c := newTestCatalog(t, 10, false)

	_, err := NewEngine(nil, nil)
	assert.ErrorIs(t, err, errNilCatalog)

	invalid := DefaultConfig()
	invalid.Algorithm = "mpc"
	_, err = NewEngine(c, nil, WithConfig(invalid))
	assert.ErrorIs(t, err, errUnknownAlgorithm)

	target := DefaultConfig()
	target.Algorithm = abr.KindTarget
	_, err = NewEngine(c, nil, WithConfig(target))
	assert.ErrorIs(t, err, abr.ErrMissingScores)

	e, err := NewEngine(newTestCatalog(t, 10, true), mock.NewMockController(),
		WithConfig(target), WithLoggerFactory(logging.NewDefaultLoggerFactory()))
	require.NoError(t, err)
	assert.Equal(t, abr.KindTarget, e.Config().Algorithm)
	assert.Equal(t, schema.Decision{Index: 1}, e.Decide())
}

func TestEngineConcurrentUse(t *testing.T) {
	lim := test.TimeOut(time.Second * 20)
	defer lim.Stop()

	report := test.CheckRoutines(t)
	defer report()

	for _, kind := range abr.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			const segments = 12

			controller := mock.NewMockController()
			controller.SetBandwidth(2000)
			config := DefaultConfig()
			config.Algorithm = kind
			e, err := NewEngine(newTestCatalog(t, segments, true), controller, WithConfig(config))
			require.NoError(t, err)

			done := make(chan struct{})
			var decisions []schema.Decision
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-done:
						return
					default:
					}
					d := e.Decide()
					if len(decisions) == 0 || decisions[len(decisions)-1] != d {
						decisions = append(decisions, d)
					}
					time.Sleep(time.Millisecond)
				}
			}()

			ts := int64(0)
			for index := 1; index <= segments; index++ {
				for _, loaded := range []int64{300, 600, 900} {
					ts += 10
					e.RegisterMetrics(schema.Metrics{
						Segments:    []schema.Segment{{Index: index, State: schema.Progress, Loaded: loaded, Total: 1000, Timestamp: ts}},
						BufferLevel: []schema.Value[int64]{{Value: 8000, Timestamp: ts}},
					})
				}
				ts += 10
				e.RegisterMetrics(schema.Metrics{
					Segments: []schema.Segment{{Index: index, State: schema.Downloaded, Loaded: 1000, Total: 1000, Timestamp: ts}},
				})
				time.Sleep(2 * time.Millisecond)
			}
			close(done)
			wg.Wait()

			require.NotEmpty(t, decisions)
			for i, d := range decisions {
				assert.Equal(t, i+1, d.Index, "decisions must be gapless")
			}
			last := e.Decide()
			assert.GreaterOrEqual(t, last.Index, decisions[len(decisions)-1].Index)
		})
	}
}
