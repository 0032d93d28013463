// SPDX-License-Identifier: Unlicense OR MIT

package geometry

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approxOpt = cmpopts.EquateApprox(0, 1e-5)

func eq(p1, p2 Float3) bool {
	return cmp.Equal(p1, p2, approxOpt)
}

func TestTransformOffset(t *testing.T) {
	p := Float3{X: 1, Y: 2, Z: 3}
	o := Float3{X: 2, Y: -3, Z: 1}

	r := Identity.Offset(o).TransformPoint(p)
	want := Float3{X: 3, Y: -1, Z: 4}
	if !eq(r, want) {
		t.Errorf("offset transformation mismatch: have %v, want %v", r, want)
	}
	i := Identity.Offset(o).Invert().TransformPoint(r)
	if !eq(i, p) {
		t.Errorf("offset inverse mismatch: have %v, want %v", i, p)
	}
}

func TestTransformUniformScale(t *testing.T) {
	p := Float3{X: 1, Y: 2, Z: -1}
	s := UniformScale(2)

	r := s.TransformPoint(p)
	want := Float3{X: 2, Y: 4, Z: -2}
	if !eq(r, want) {
		t.Errorf("scale transformation mismatch: have %v, want %v", r, want)
	}
	i := s.Invert().TransformPoint(r)
	if !eq(i, p) {
		t.Errorf("scale inverse mismatch: have %v, want %v", i, p)
	}
	mag, ok := s.UniformScaleMagnitude()
	if !ok || math.Abs(mag-2) > 1e-9 {
		t.Errorf("UniformScaleMagnitude = %v, %v; want 2, true", mag, ok)
	}
}

func TestUniformScaleRejectsNonUniform(t *testing.T) {
	a := NewAffine([3]Float3{
		{X: 1}, {Y: 2}, {Z: 3},
	}, Float3{})
	if _, ok := a.UniformScaleMagnitude(); ok {
		t.Error("expected non-uniform scale to be rejected")
	}
}

func TestMulOrder(t *testing.T) {
	a := Identity.Offset(Float3{X: 100, Y: 100})
	b := UniformScale(2)

	t1 := Identity.Offset(Float3{X: 100, Y: 100})
	t1 = b.Mul(t1)
	t2 := b.Mul(a)

	p := Float3{X: 1, Y: 1, Z: 1}
	if !eq(t1.TransformPoint(p), t2.TransformPoint(p)) {
		t.Error("multiplication order not as expected")
	}
}

func TestAABBIntersect(t *testing.T) {
	box := AABB{Min: Float3{X: -1, Y: -1, Z: -1}, Max: Float3{X: 1, Y: 1, Z: 1}}
	ray := NewRay(Float3{X: 0, Y: 0, Z: -5}, Float3{X: 0, Y: 0, Z: 1})
	inv := Float3{X: math.Inf(1), Y: math.Inf(1), Z: 1}
	dist := box.Intersect(ray, inv, math.Inf(1))
	if math.Abs(dist-4) > 1e-9 {
		t.Errorf("distance = %v, want 4", dist)
	}

	miss := NewRay(Float3{X: 5, Y: 5, Z: -5}, Float3{X: 0, Y: 0, Z: 1})
	if d := box.Intersect(miss, inv, math.Inf(1)); !math.IsInf(d, 1) {
		t.Errorf("expected miss, got %v", d)
	}
}
