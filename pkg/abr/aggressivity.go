// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package abr

import "math"

// aggressivity scores in [0, 1] how hard the controller should probe for
// bandwidth, given the safe rate and the gap to the worthed rate. All rates
// are in kbps and evaluated in Mbit against the top of the ladder.
func aggressivity(safe, delta, top float64) float64 {
	bwMax := top / 1000
	bw := math.Min(safe/1000, bwMax)
	deltaMbit := delta / 1000

	// strictly decreasing in bw
	partial := math.Log(bwMax+1-bw) / 2 / math.Log(bwMax+1)

	base := math.Pow(math.Log(bwMax+1-bw), 2) / (bwMax * 0.8) / math.Pow(bw, 2/bwMax)
	factor := 1 - (1-base)*((deltaMbit+1)/(bwMax+1))

	value := partial * factor
	if math.IsNaN(value) {
		return 0
	}

	return math.Max(math.Min(value, 1), 0)
}
