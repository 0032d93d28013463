// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"math"
	"testing"

	"echorenderer/colorspace"
	"echorenderer/geometry"
	"echorenderer/instance"
	"echorenderer/internal/accel"
	"echorenderer/internal/arena"
	"echorenderer/material"
	"echorenderer/prim"
	"echorenderer/sampling"
)

func singleSphereScene(mat material.Material, background colorspace.RGB128) *Scene {
	swatch := instance.NewPreparedSwatch([]material.Material{mat})
	sph := prim.Sphere{Center: geometry.Float3{}, Radius: 1, Material: 0}
	pack := instance.NewPreparedPack(nil, []prim.Sphere{sph}, nil, swatch, accel.Profile{}, sph.AABB())
	return &Scene{Root: pack, Background: background}
}

func newDist(seed uint64) *sampling.ContinuousDistribution {
	return sampling.New(sampling.Config{Pattern: sampling.PatternStratified, Jitter: false, SinglesPerPixel: 1}, seed)
}

// TestEvaluateMatchesSingleBounceLambertianScenario exercises spec
// §8 scenario 1: a unit sphere with Lambertian albedo (0.8,0.8,0.8)
// under a constant ambient (1,1,1), ray from (0,0,-3) toward (0,0,1),
// should return close to 0.8 on each channel at shallow depth.
func TestEvaluateMatchesSingleBounceLambertianScenario(t *testing.T) {
	scene := singleSphereScene(material.Diffuse{Albedo: colorspace.RGB128{R: 0.8, G: 0.8, B: 0.8}}, colorspace.White)
	eval := NewEvaluator(scene, 3)
	a := arena.New(8)

	var sum colorspace.RGB128
	const n = 2000
	for i := 0; i < n; i++ {
		dist := newDist(uint64(i) + 1)
		dist.BeginPixel([2]int{0, 0}, 0)
		dist.BeginSample(0)
		ray := geometry.NewRay(geometry.Float3{Z: -3}, geometry.Float3{Z: 1})
		sum = sum.Add(eval.Evaluate(ray, a, dist))
	}
	mean := sum.Scale(1.0 / n)
	if math.Abs(mean.R-0.8) > 0.1 {
		t.Errorf("mean.R = %v, want ~0.8", mean.R)
	}
}

func TestEvaluateMissReturnsAmbient(t *testing.T) {
	scene := singleSphereScene(material.Diffuse{Albedo: colorspace.White}, colorspace.RGB128{R: 0.3, G: 0.4, B: 0.5})
	eval := NewEvaluator(scene, 3)
	a := arena.New(8)
	dist := newDist(1)
	dist.BeginPixel([2]int{0, 0}, 0)
	dist.BeginSample(0)

	ray := geometry.NewRay(geometry.Float3{X: 100}, geometry.Float3{Z: 1})
	got := eval.Evaluate(ray, a, dist)
	if got != (colorspace.RGB128{R: 0.3, G: 0.4, B: 0.5}) {
		t.Errorf("Evaluate on a miss = %v, want ambient background", got)
	}
}

func TestEvaluateEmissiveSphereReturnsItsRadiance(t *testing.T) {
	radiance := colorspace.RGB128{R: 5, G: 5, B: 5}
	scene := singleSphereScene(material.Emissive{Radiance: radiance}, colorspace.Black)
	eval := NewEvaluator(scene, 3)
	a := arena.New(8)
	dist := newDist(1)
	dist.BeginPixel([2]int{0, 0}, 0)
	dist.BeginSample(0)

	ray := geometry.NewRay(geometry.Float3{Z: -3}, geometry.Float3{Z: 1})
	got := eval.Evaluate(ray, a, dist)
	if got.R < radiance.R-1e-9 {
		t.Errorf("Evaluate on an emitter = %v, want at least its own radiance %v", got, radiance)
	}
}

func TestPixelAccumulateWelfordMeanMatchesSampleMean(t *testing.T) {
	var p Pixel
	samples := []colorspace.RGB128{
		{R: 1}, {R: 2}, {R: 3}, {R: 4},
	}
	for _, s := range samples {
		if !p.Accumulate(s) {
			t.Fatal("finite sample unexpectedly rejected")
		}
	}
	if math.Abs(p.Mean().R-2.5) > 1e-9 {
		t.Errorf("mean.R = %v, want 2.5", p.Mean().R)
	}
	if p.Count() != 4 {
		t.Errorf("Count() = %d, want 4", p.Count())
	}
}

func TestPixelAccumulateRejectsNonFinite(t *testing.T) {
	var p Pixel
	if p.Accumulate(colorspace.RGB128{R: math.NaN()}) {
		t.Error("expected NaN sample to be rejected")
	}
	if p.Accumulate(colorspace.RGB128{R: math.Inf(1)}) {
		t.Error("expected +Inf sample to be rejected")
	}
	if p.Rejected() != 2 {
		t.Errorf("Rejected() = %d, want 2", p.Rejected())
	}
	if p.Count() != 0 {
		t.Errorf("Count() = %d, want 0", p.Count())
	}
}

func TestRenderBufferSetGetRoundTrip(t *testing.T) {
	buf := NewRenderBuffer(4, 4)
	color := colorspace.RGB128{R: 1, G: 2, B: 3}
	albedo := colorspace.RGB128{R: 0.5}
	normal := geometry.Float3{Z: 1}
	buf.Set(2, 1, color, albedo, normal)
	if got := buf.Color(2, 1); got != color {
		t.Errorf("Color(2,1) = %v, want %v", got, color)
	}
	if got := buf.Albedo(2, 1); got != albedo {
		t.Errorf("Albedo(2,1) = %v, want %v", got, albedo)
	}
	if got := buf.Normal(2, 1); got != normal {
		t.Errorf("Normal(2,1) = %v, want %v", got, normal)
	}
}

func TestRenderBufferOutOfBoundsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic writing out of bounds")
		}
	}()
	buf := NewRenderBuffer(2, 2)
	buf.Set(5, 5, colorspace.White, colorspace.Black, geometry.Float3{})
}

func TestAcceleratorQualityWorkerAccumulatesAtomically(t *testing.T) {
	scene := singleSphereScene(material.Diffuse{}, colorspace.Black)
	w := NewAcceleratorQualityWorker(scene)
	ray := geometry.NewRay(geometry.Float3{Z: -3}, geometry.Float3{Z: 1})

	_, sum1, n1 := w.Evaluate(ray)
	_, sum2, n2 := w.Evaluate(ray)
	if n2 != n1+1 {
		t.Errorf("sample count did not increment: %d -> %d", n1, n2)
	}
	if sum2 < sum1 {
		t.Errorf("running cost sum decreased: %d -> %d", sum1, sum2)
	}
}
