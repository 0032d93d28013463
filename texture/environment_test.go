// SPDX-License-Identifier: Unlicense OR MIT

package texture

import (
	"math"
	"testing"

	"echorenderer/colorspace"
	"echorenderer/geometry"
)

func uniformGrid(w, h int, c colorspace.RGB128) []colorspace.RGB128 {
	out := make([]colorspace.RGB128, w*h)
	for i := range out {
		out[i] = c
	}
	return out
}

func TestEnvironmentSampleDensityRoundTrip(t *testing.T) {
	env := NewEnvironment(uniformGrid(64, 32, colorspace.RGB128{R: 1, G: 1, B: 1}), 64, 32)
	direction, radiance, pdf := env.Sample(geometry.Sample2D{U: 0.37, V: 0.61})
	if pdf <= 0 {
		t.Fatalf("expected positive pdf, got %v", pdf)
	}
	if math.Abs(direction.Magnitude()-1) > 1e-6 {
		t.Errorf("direction should be unit length, got %v (|d|=%v)", direction, direction.Magnitude())
	}
	if radiance.IsBlack() {
		t.Errorf("expected non-black radiance on a uniform white texture")
	}

	got := env.Density(direction)
	if math.Abs(got-pdf) > 1e-6 {
		t.Errorf("Density(sampled direction) = %v, want pdf %v", got, pdf)
	}
}

func TestEnvironmentEmitMatchesLookupAtSampledDirection(t *testing.T) {
	values := uniformGrid(16, 8, colorspace.RGB128{})
	// Put a bright cell near the middle row/column.
	values[4*16+8] = colorspace.RGB128{R: 10, G: 10, B: 10}
	env := NewEnvironment(values, 16, 8)

	direction, radiance, pdf := env.Sample(geometry.Sample2D{U: 0.52, V: 0.56})
	if pdf == 0 {
		t.Skip("sample landed on a zero-weight cell; not the bright one")
	}
	got := env.Emit(direction)
	if got != radiance {
		t.Errorf("Emit(direction) = %v, want %v (the radiance Sample returned)", got, radiance)
	}
}

func TestEnvironmentPoleReturnsZeroPdf(t *testing.T) {
	env := NewEnvironment(uniformGrid(8, 8, colorspace.RGB128{R: 1, G: 1, B: 1}), 8, 8)
	pdf := env.Density(geometry.Float3{X: 0, Y: 1, Z: 0})
	if pdf != 0 {
		t.Errorf("expected 0 pdf at the pole, got %v", pdf)
	}
}
