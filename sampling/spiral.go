// SPDX-License-Identifier: Unlicense OR MIT

package sampling

import (
	"math"

	"echorenderer/geometry"
)

const goldenRatio = 1.618033988749895

// SpiralOffsets precomputes the M golden-ratio sub-pixel offsets a
// tile worker draws its per-pixel-sample jitter from (spec §4.5): for
// i in [0, M), theta = 2*pi*phi*i, r = sqrt((i+1/2)/M) * sqrt(2) *
// square(theta)/2, where square(theta) is the inverse-square-to-disk
// correction, and the resulting point is offset by (1/2, 1/2) so it
// lands within the unit pixel footprint.
func SpiralOffsets(m int) []geometry.Sample2D {
	out := make([]geometry.Sample2D, m)
	for i := 0; i < m; i++ {
		theta := 2 * math.Pi * goldenRatio * float64(i)
		r := math.Sqrt((float64(i)+0.5)/float64(m)) * math.Sqrt2 * square(theta) / 2
		out[i] = geometry.Sample2D{
			U: r*math.Cos(theta) + 0.5,
			V: r*math.Sin(theta) + 0.5,
		}
	}
	return out
}

// square is the inverse-square-to-disk Jacobian correction: mapping a
// uniform disk sample through a square aperture needs the reciprocal
// of the L-infinity-to-L2 radius ratio at angle theta+pi/4.
func square(theta float64) float64 {
	return 1 / (math.Abs(math.Cos(theta+math.Pi/4)) + math.Abs(math.Sin(theta+math.Pi/4)))
}
