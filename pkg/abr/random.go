// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package abr

import (
	"github.com/pion/abrcc/pkg/schema"
	"github.com/pion/randutil"
)

// Random picks a uniformly random quality for every segment but the first.
type Random struct {
	progress  *progressTracker
	rng       randutil.MathRandomGenerator
	qualities int
}

func newRandom(p Params) *Random {
	return &Random{
		progress:  newProgressTracker(p.log, p.Observer),
		rng:       p.Random,
		qualities: p.Catalog.Qualities(),
	}
}

// RegisterMetrics implements Algorithm.
func (r *Random) RegisterMetrics(metrics schema.Metrics) {
	r.progress.registerMetrics(metrics)
}

// Decide implements Algorithm.
func (r *Random) Decide() schema.Decision {
	return r.progress.decide(r)
}

func (r *Random) decideQuality(index int) int {
	if index == 1 {
		return 0
	}

	return r.rng.Intn(r.qualities)
}
