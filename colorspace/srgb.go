// SPDX-License-Identifier: Unlicense OR MIT

package colorspace

import "math"

// sRGB transfer function constants (spec §6).
const (
	srgbThreshold  = 0.0031308
	srgbLinearSlope = 12.92
	srgbPower       = 2.4
	srgbOffset      = 0.055
)

// ForwardSRGB converts a linear-light channel value in [0, 1] to its
// gamma-encoded sRGB counterpart.
func ForwardSRGB(x float64) float64 {
	if x <= srgbThreshold {
		return x * srgbLinearSlope
	}
	return (1+srgbOffset)*math.Pow(x, 1/srgbPower) - srgbOffset
}

// InverseSRGB converts a gamma-encoded sRGB channel value back to
// linear light.
func InverseSRGB(x float64) float64 {
	if x <= srgbThreshold*srgbLinearSlope {
		return x / srgbLinearSlope
	}
	return math.Pow((x+srgbOffset)/(1+srgbOffset), srgbPower)
}

// ForwardSRGB3 applies ForwardSRGB to all three channels of c.
func ForwardSRGB3(c RGB128) RGB128 {
	return RGB128{R: ForwardSRGB(c.R), G: ForwardSRGB(c.G), B: ForwardSRGB(c.B)}
}

// InverseSRGB3 applies InverseSRGB to all three channels of c.
func InverseSRGB3(c RGB128) RGB128 {
	return RGB128{R: InverseSRGB(c.R), G: InverseSRGB(c.G), B: InverseSRGB(c.B)}
}
