// SPDX-License-Identifier: Unlicense OR MIT

package geometry

import "math"

// AABB is an axis-aligned bounding box. Invariant: Min <= Max
// componentwise.
type AABB struct {
	Min, Max Float3
}

// EmptyAABB returns a degenerate box that Encapsulate/Union treat as
// the identity element.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: Float3{X: inf, Y: inf, Z: inf},
		Max: Float3{X: -inf, Y: -inf, Z: -inf},
	}
}

// FromPoint returns the degenerate box containing only p.
func FromPoint(p Float3) AABB {
	return AABB{Min: p, Max: p}
}

// Encapsulate returns the smallest box containing both a and p.
func (a AABB) Encapsulate(p Float3) AABB {
	return AABB{Min: a.Min.Min(p), Max: a.Max.Max(p)}
}

// Union returns the smallest box containing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max)}
}

// Extend returns a grown by a fixed margin on every side, used to
// absorb floating point error at leaf construction.
func (a AABB) Extend(margin float64) AABB {
	m := Float3{X: margin, Y: margin, Z: margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// Center returns the box's centroid.
func (a AABB) Center() Float3 {
	return a.Min.Add(a.Max).Scale(0.5)
}

// Extent returns Max-Min.
func (a AABB) Extent() Float3 {
	return a.Max.Sub(a.Min)
}

// SurfaceArea returns the box's total surface area, used by the SAH
// builder. A degenerate (zero-volume) box has zero area on the
// collapsed axes and is handled naturally by the formula.
func (a AABB) SurfaceArea() float64 {
	e := a.Extent()
	if e.X < 0 || e.Y < 0 || e.Z < 0 {
		return 0
	}
	return 2 * (e.X*e.Y + e.Y*e.Z + e.Z*e.X)
}

// Intersect returns the entry distance of ray into a, or +Inf if the
// ray misses, using the slab method. invDirection is the componentwise
// reciprocal of ray.Direction (callers precompute it once per ray to
// avoid repeated division across many AABB tests).
func (a AABB) Intersect(ray Ray, invDirection Float3, distanceBound float64) float64 {
	tx1 := (a.Min.X - ray.Origin.X) * invDirection.X
	tx2 := (a.Max.X - ray.Origin.X) * invDirection.X
	tMin, tMax := math.Min(tx1, tx2), math.Max(tx1, tx2)

	ty1 := (a.Min.Y - ray.Origin.Y) * invDirection.Y
	ty2 := (a.Max.Y - ray.Origin.Y) * invDirection.Y
	tMin = math.Max(tMin, math.Min(ty1, ty2))
	tMax = math.Min(tMax, math.Max(ty1, ty2))

	tz1 := (a.Min.Z - ray.Origin.Z) * invDirection.Z
	tz2 := (a.Max.Z - ray.Origin.Z) * invDirection.Z
	tMin = math.Max(tMin, math.Min(tz1, tz2))
	tMax = math.Min(tMax, math.Max(tz1, tz2))

	if tMax < tMin || tMin > distanceBound || tMax < 0 {
		return math.Inf(1)
	}
	if tMin < 0 {
		return 0
	}
	return tMin
}

// Transformed returns a conservative AABB containing every corner of a
// after applying transform, used to build parent-level bounds for
// instance nodes (spec §4.3 GetTransformedAABB).
func (a AABB) Transformed(transform Affine) AABB {
	corners := [8]Float3{
		{X: a.Min.X, Y: a.Min.Y, Z: a.Min.Z},
		{X: a.Max.X, Y: a.Min.Y, Z: a.Min.Z},
		{X: a.Min.X, Y: a.Max.Y, Z: a.Min.Z},
		{X: a.Max.X, Y: a.Max.Y, Z: a.Min.Z},
		{X: a.Min.X, Y: a.Min.Y, Z: a.Max.Z},
		{X: a.Max.X, Y: a.Min.Y, Z: a.Max.Z},
		{X: a.Min.X, Y: a.Max.Y, Z: a.Max.Z},
		{X: a.Max.X, Y: a.Max.Y, Z: a.Max.Z},
	}
	out := EmptyAABB()
	for _, c := range corners {
		out = out.Encapsulate(transform.TransformPoint(c))
	}
	return out
}
