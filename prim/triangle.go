// SPDX-License-Identifier: Unlicense OR MIT

// Package prim implements the two leaf primitive types EchoRenderer
// traces against (triangles and spheres) and the query structs the
// aggregator layer fills in as it walks toward a hit.
package prim

import (
	"math"

	"echorenderer/geometry"
)

// MaterialIndex identifies an entry in a PreparedSwatch.
type MaterialIndex int32

// Triangle is a prepared triangle: a vertex plus two edge vectors
// (edge1 = v1-v0, edge2 = v2-v0), per-vertex unit normals and UVs, and
// a material reference. Invariant: normals are unit-length, or all
// zero to mean "flat" (the geometric normal is used instead).
type Triangle struct {
	Vertex0            geometry.Float3
	Edge1, Edge2       geometry.Float3
	Normal0, Normal1, Normal2 geometry.Float3
	UV0, UV1, UV2      geometry.Float3 // Z unused, kept Float3 to reuse arithmetic helpers
	Material           MaterialIndex
}

// NewTriangle constructs a prepared Triangle from three vertices and
// per-vertex normals/UVs.
func NewTriangle(v0, v1, v2, n0, n1, n2 geometry.Float3, uv0, uv1, uv2 geometry.Float3, material MaterialIndex) Triangle {
	return Triangle{
		Vertex0: v0,
		Edge1:   v1.Sub(v0),
		Edge2:   v2.Sub(v0),
		Normal0: n0, Normal1: n1, Normal2: n2,
		UV0: uv0, UV1: uv1, UV2: uv2,
		Material: material,
	}
}

// GeometricNormal returns edge1 x edge2, unnormalized (its magnitude
// is twice the triangle's area).
func (t Triangle) GeometricNormal() geometry.Float3 {
	return t.Edge1.Cross(t.Edge2)
}

// Area returns the triangle's surface area, 1/2 |edge1 x edge2| (spec
// §4.1).
func (t Triangle) Area() float64 {
	return 0.5 * t.GeometricNormal().Magnitude()
}

// AABB returns the triangle's tight bounding box.
func (t Triangle) AABB() geometry.AABB {
	v1 := t.Vertex0.Add(t.Edge1)
	v2 := t.Vertex0.Add(t.Edge2)
	box := geometry.FromPoint(t.Vertex0)
	box = box.Encapsulate(v1)
	box = box.Encapsulate(v2)
	return box
}

// Intersect implements Möller-Trumbore: rejects a parallel ray
// (det == 0), requires u in [0,1], v in [0,1], u+v <= 1, t >= 0;
// returns +Inf on miss. uv carries the barycentric (u, v) on hit.
func (t Triangle) Intersect(ray geometry.Ray, distanceBound float64) (distance float64, uv geometry.Sample2D, hit bool) {
	pVec := ray.Direction.Cross(t.Edge2)
	det := t.Edge1.Dot(pVec)
	if det == 0 {
		return math.Inf(1), geometry.Sample2D{}, false
	}
	invDet := 1 / det

	tVec := ray.Origin.Sub(t.Vertex0)
	u := tVec.Dot(pVec) * invDet
	if u < 0 || u > 1 {
		return math.Inf(1), geometry.Sample2D{}, false
	}

	qVec := tVec.Cross(t.Edge1)
	v := ray.Direction.Dot(qVec) * invDet
	if v < 0 || u+v > 1 {
		return math.Inf(1), geometry.Sample2D{}, false
	}

	dist := t.Edge2.Dot(qVec) * invDet
	if dist < 0 || dist > distanceBound {
		return math.Inf(1), geometry.Sample2D{}, false
	}
	return dist, geometry.Sample2D{U: u, V: v}, true
}

// Occlude shares Intersect's branches but skips computing uv and
// exits as soon as it knows distance < travel, since occlusion queries
// never need the barycentric coordinates.
func (t Triangle) Occlude(ray geometry.Ray, travel float64) bool {
	pVec := ray.Direction.Cross(t.Edge2)
	det := t.Edge1.Dot(pVec)
	if det == 0 {
		return false
	}
	invDet := 1 / det

	tVec := ray.Origin.Sub(t.Vertex0)
	u := tVec.Dot(pVec) * invDet
	if u < 0 || u > 1 {
		return false
	}

	qVec := tVec.Cross(t.Edge1)
	v := ray.Direction.Dot(qVec) * invDet
	if v < 0 || u+v > 1 {
		return false
	}

	dist := t.Edge2.Dot(qVec) * invDet
	return dist >= 0 && dist < travel
}

// Interpolate barycentrically weights n0/n1/n2 (or uv0/uv1/uv2) by
// (1-u-v, u, v); normals are renormalized afterward, UVs are not.
func interpolate(a, b, c geometry.Float3, u, v float64) geometry.Float3 {
	w := 1 - u - v
	return a.Scale(w).Add(b.Scale(u)).Add(c.Scale(v))
}

// InterpolatedNormal returns the barycentrically interpolated,
// renormalized shading normal at (u, v). If all three vertex normals
// are zero (flat shading), the geometric normal is returned instead.
func (t Triangle) InterpolatedNormal(uv geometry.Sample2D) geometry.Float3 {
	if t.Normal0 == (geometry.Float3{}) && t.Normal1 == (geometry.Float3{}) && t.Normal2 == (geometry.Float3{}) {
		return t.GeometricNormal().Normalized()
	}
	return interpolate(t.Normal0, t.Normal1, t.Normal2, uv.U, uv.V).Normalized()
}

// InterpolatedUV returns the barycentrically interpolated (unnormalized) UV.
func (t Triangle) InterpolatedUV(uv geometry.Sample2D) geometry.Float3 {
	return interpolate(t.UV0, t.UV1, t.UV2, uv.U, uv.V)
}

// Point returns the world-space point at barycentric (u, v).
func (t Triangle) Point(uv geometry.Sample2D) geometry.Float3 {
	return t.Vertex0.Add(t.Edge1.Scale(uv.U)).Add(t.Edge2.Scale(uv.V))
}

// SampleArea maps xi to the barycentric coordinates of a uniformly
// distributed point on the triangle for direct-light sampling (spec
// §4.2): (u, v) = (1 - sqrt(xi1), xi2*sqrt(xi1)); Point turns them into
// a position. SolidAnglePdf converts the resulting area-measure pdf (1/Area) to a
// solid-angle measure pdf given the shading point and surface normal
// at the sampled point.
func (t Triangle) SampleArea(xi geometry.Sample2D) geometry.Sample2D {
	sqrtXi1 := math.Sqrt(xi.U)
	u := 1 - sqrtXi1
	v := xi.V * sqrtXi1
	return geometry.Sample2D{U: u, V: v}
}

// SolidAnglePdf converts the uniform-area pdf (1/Area) to a
// solid-angle pdf: d^2 / (|n.w| * Area), where d is the distance from
// the shading point to the sampled point, n is the sampled point's
// normal, and w is the unit direction from the shading point to it.
func (t Triangle) SolidAnglePdf(distance float64, normal, toSampled geometry.Float3) float64 {
	cos := math.Abs(normal.Dot(toSampled))
	if cos <= 0 {
		return 0
	}
	area := t.Area()
	if area <= 0 {
		return 0
	}
	return (distance * distance) / (cos * area)
}
