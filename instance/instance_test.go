// SPDX-License-Identifier: Unlicense OR MIT

package instance

import (
	"math"
	"testing"

	"echorenderer/colorspace"
	"echorenderer/geometry"
	"echorenderer/internal/accel"
	"echorenderer/material"
	"echorenderer/prim"
	"echorenderer/token"
)

func singleSphereSwatch(mat material.Material) *PreparedSwatch {
	return NewPreparedSwatch([]material.Material{mat})
}

func TestPreparedPackDirectSphereHit(t *testing.T) {
	swatch := singleSphereSwatch(material.Diffuse{})
	sph := prim.Sphere{Center: geometry.Float3{}, Radius: 1, Material: 0}
	pack := NewPreparedPack(nil, []prim.Sphere{sph}, nil, swatch, accel.Profile{}, sph.AABB())

	ray := geometry.NewRay(geometry.Float3{X: 0, Y: 0, Z: -5}, geometry.Float3{X: 0, Y: 0, Z: 1})
	q := prim.NewTraceQuery(ray, math.Inf(1), token.Hierarchy{})
	pack.Trace(&q)

	if q.Token.IsEmpty() {
		t.Fatal("expected a hit")
	}
	if math.Abs(q.Distance-4) > 1e-9 {
		t.Errorf("distance = %v, want 4", q.Distance)
	}
}

func TestPreparedInstanceScalesDistanceAndUnscales(t *testing.T) {
	swatch := singleSphereSwatch(material.Diffuse{})
	sph := prim.Sphere{Center: geometry.Float3{}, Radius: 1, Material: 0}
	childPack := NewPreparedPack(nil, []prim.Sphere{sph}, nil, swatch, accel.Profile{}, sph.AABB())

	// Place the unit sphere at a 2x uniform scale, offset 10 along Z.
	transform := geometry.Translation(geometry.Float3{Z: 10}).Mul(geometry.UniformScale(2))
	inst := NewPreparedInstance(childPack, transform, childPack.PowerTotal())

	parentPack := NewPreparedPack(nil, nil, []*PreparedInstance{inst}, swatch, accel.Profile{}, inst.WorldAABB())

	// The scaled sphere's world radius is 2, centered at z=10, so a ray
	// from z=0 toward +Z should hit its near surface at distance 8.
	ray := geometry.NewRay(geometry.Float3{}, geometry.Float3{Z: 1})
	q := prim.NewTraceQuery(ray, math.Inf(1), token.Hierarchy{})
	parentPack.Trace(&q)

	if q.Token.IsEmpty() {
		t.Fatal("expected a hit through the instance")
	}
	if math.Abs(q.Distance-8) > 1e-6 {
		t.Errorf("distance = %v, want 8", q.Distance)
	}
}

func TestPreparedPackEmptyMisses(t *testing.T) {
	swatch := singleSphereSwatch(material.Diffuse{})
	pack := NewPreparedPack(nil, nil, nil, swatch, accel.Profile{}, geometry.EmptyAABB())
	ray := geometry.NewRay(geometry.Float3{}, geometry.Float3{Z: 1})
	q := prim.NewTraceQuery(ray, math.Inf(1), token.Hierarchy{})
	pack.Trace(&q)
	if !q.Token.IsEmpty() {
		t.Error("expected a miss on an empty pack")
	}
}

func TestPowerDistributionGatedOnEmitters(t *testing.T) {
	dark := singleSphereSwatch(material.Diffuse{})
	sph := prim.Sphere{Center: geometry.Float3{}, Radius: 1, Material: 0}
	darkPack := NewPreparedPack(nil, []prim.Sphere{sph}, nil, dark, accel.Profile{}, sph.AABB())
	if darkPack.Power != nil {
		t.Error("pack with no emitters should have a nil PowerDistribution")
	}

	bright := singleSphereSwatch(material.Emissive{Radiance: colorspace.RGB128{R: 1, G: 1, B: 1}})
	brightPack := NewPreparedPack(nil, []prim.Sphere{sph}, nil, bright, accel.Profile{}, sph.AABB())
	if brightPack.Power == nil || brightPack.Power.Total() <= 0 {
		t.Error("pack with an emitter should have a positive-total PowerDistribution")
	}
}
