// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package bbr

import (
	"time"

	"github.com/pion/abrcc/internal/types"
	"golang.org/x/time/rate"
)

// rateLimitPacer is a token bucket counting bytes.
type rateLimitPacer struct {
	limiter     *rate.Limiter
	burstWindow time.Duration
	minBurst    int
}

func newRateLimitPacer(initial types.DataRate, burstWindow time.Duration, minBurst int) *rateLimitPacer {
	p := &rateLimitPacer{burstWindow: burstWindow, minBurst: minBurst}
	p.limiter = rate.NewLimiter(rate.Limit(initial.BytesPerSecond()), p.burst(initial))

	return p
}

func (p *rateLimitPacer) burst(r types.DataRate) int {
	return max(p.minBurst, int(r.BytesIn(p.burstWindow)))
}

func (p *rateLimitPacer) SetRate(now time.Time, r types.DataRate) {
	p.limiter.SetLimitAt(now, rate.Limit(r.BytesPerSecond()))
	p.limiter.SetBurstAt(now, p.burst(r))
}

func (p *rateLimitPacer) Budget(now time.Time) float64 {
	return p.limiter.TokensAt(now)
}

// Take consumes up to want bytes of budget and returns how many were taken.
func (p *rateLimitPacer) Take(now time.Time, want int) int {
	n := min(want, int(p.Budget(now)))
	if n <= 0 || !p.limiter.AllowN(now, n) {
		return 0
	}

	return n
}
