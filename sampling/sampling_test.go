// SPDX-License-Identifier: Unlicense OR MIT

package sampling

import (
	"math"
	"testing"

	"echorenderer/geometry"
)

func TestDiscrete1DPickMatchesWeight(t *testing.T) {
	d := NewDiscrete1D([]float64{1, 0, 3})
	if got := d.Total(); got != 4 {
		t.Fatalf("Total() = %v, want 4", got)
	}
	if _, pdf := d.Pick(0.99); math.Abs(pdf-0.75) > 1e-9 {
		t.Errorf("Pick(0.99) pdf = %v, want 0.75", pdf)
	}
	if idx, pdf := d.Pick(0.1); idx != 0 || math.Abs(pdf-0.25) > 1e-9 {
		t.Errorf("Pick(0.1) = (%v, %v), want (0, 0.25)", idx, pdf)
	}
}

func TestDiscrete2DRoundTrip(t *testing.T) {
	weights := []float64{1, 1, 1, 1}
	d := NewDiscrete2D(weights, 2, 2)
	uv, pdf := d.Pick(geometry.Sample2D{U: 0.1, V: 0.1})
	if pdf <= 0 {
		t.Errorf("expected positive pdf, got %v", pdf)
	}
	if got := d.Density(uv); math.Abs(got-pdf) > 1e-9 {
		t.Errorf("Density(%v) = %v, want Pick's pdf %v", uv, got, pdf)
	}
}

func TestSpiralOffsetsCentered(t *testing.T) {
	offsets := SpiralOffsets(64)
	var sumU, sumV float64
	for _, o := range offsets {
		sumU += o.U
		sumV += o.V
	}
	meanU, meanV := sumU/float64(len(offsets)), sumV/float64(len(offsets))
	if math.Abs(meanU-0.5) > 0.1 || math.Abs(meanV-0.5) > 0.1 {
		t.Errorf("spiral offsets not centered: mean=(%v, %v)", meanU, meanV)
	}
}

func TestStratifiedFillsUnitInterval(t *testing.T) {
	d := New(Config{Pattern: PatternStratified, Jitter: false, SinglesPerPixel: 16}, 1)
	d.BeginPixel([2]int{0, 0}, 0)
	seen := make([]bool, 16)
	for i := 0; i < 16; i++ {
		d.BeginSample(i)
		u := float64(d.Next1D())
		bucket := int(u * 16)
		if bucket < 0 || bucket >= 16 {
			t.Fatalf("sample %v out of [0,1)", u)
		}
		seen[bucket] = true
	}
	for i, ok := range seen {
		if !ok {
			t.Errorf("stratum %d never sampled", i)
		}
	}
}
