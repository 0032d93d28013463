// SPDX-License-Identifier: Unlicense OR MIT

package prim

import (
	"math"
	"testing"

	"echorenderer/geometry"
)

func TestTriangleIntersect(t *testing.T) {
	tri := NewTriangle(
		geometry.Float3{X: 0, Y: 0, Z: 0},
		geometry.Float3{X: 1, Y: 0, Z: 0},
		geometry.Float3{X: 0, Y: 1, Z: 0},
		geometry.Float3{}, geometry.Float3{}, geometry.Float3{},
		geometry.Float3{}, geometry.Float3{}, geometry.Float3{},
		0,
	)
	ray := geometry.NewRay(geometry.Float3{X: 0.25, Y: 0.25, Z: 1}, geometry.Float3{X: 0, Y: 0, Z: -1})
	dist, uv, hit := tri.Intersect(ray, math.Inf(1))
	if !hit {
		t.Fatal("expected hit")
	}
	if math.Abs(dist-1) > 1e-9 {
		t.Errorf("distance = %v, want 1", dist)
	}
	if math.Abs(uv.U-0.25) > 1e-9 || math.Abs(uv.V-0.25) > 1e-9 {
		t.Errorf("uv = %v, want (0.25, 0.25)", uv)
	}
}

func TestTriangleParallelMisses(t *testing.T) {
	tri := NewTriangle(
		geometry.Float3{X: 0, Y: 0, Z: 0},
		geometry.Float3{X: 1, Y: 0, Z: 0},
		geometry.Float3{X: 0, Y: 1, Z: 0},
		geometry.Float3{}, geometry.Float3{}, geometry.Float3{},
		geometry.Float3{}, geometry.Float3{}, geometry.Float3{},
		0,
	)
	ray := geometry.NewRay(geometry.Float3{X: 0, Y: 0, Z: 1}, geometry.Float3{X: 1, Y: 0, Z: 0})
	dist, _, hit := tri.Intersect(ray, math.Inf(1))
	if hit || !math.IsInf(dist, 1) {
		t.Errorf("expected miss (+Inf), got dist=%v hit=%v", dist, hit)
	}
}

func TestSphereOriginCentered(t *testing.T) {
	s := Sphere{Center: geometry.Float3{}, Radius: 2}
	ray := geometry.NewRay(geometry.Float3{}, geometry.Float3{X: 1})
	near, hit := s.Intersect(ray, math.Inf(1), false)
	if !hit || math.Abs(near-2) > 1e-9 {
		t.Errorf("near = %v, hit=%v, want 2, true", near, hit)
	}
	far, hit := s.Intersect(ray, math.Inf(1), true)
	if !hit || math.Abs(far-2) > 1e-9 {
		t.Errorf("far = %v, hit=%v, want 2, true", far, hit)
	}
}
