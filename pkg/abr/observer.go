// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package abr

import "github.com/pion/abrcc/pkg/schema"

// Observer is notified of the values computed by a strategy. Calls happen
// synchronously on the calling path and must not block.
type Observer interface {
	OnDecision(decision schema.Decision)
	OnBandwidth(last, average float64)
	OnAggressivity(aggressivity float64)
	OnTargetRate(kbps float64)
	OnDegraded()
}

type noopObserver struct{}

func (noopObserver) OnDecision(schema.Decision) {}
func (noopObserver) OnBandwidth(float64, float64) {}
func (noopObserver) OnAggressivity(float64) {}
func (noopObserver) OnTargetRate(float64) {}
func (noopObserver) OnDegraded() {}
