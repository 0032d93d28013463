// SPDX-License-Identifier: Unlicense OR MIT

package prim

import (
	"math"

	"echorenderer/geometry"
)

// Sphere is a prepared sphere primitive.
type Sphere struct {
	Center   geometry.Float3
	Radius   float64
	Material MaterialIndex
}

// Area returns 4*pi*r^2 (spec §4.1).
func (s Sphere) Area() float64 {
	return 4 * math.Pi * s.Radius * s.Radius
}

// AABB returns the sphere's tight bounding box.
func (s Sphere) AABB() geometry.AABB {
	r := geometry.Float3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return geometry.AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

// Intersect solves |d|^2 t^2 + 2(oc.d) t + (|oc|^2-r^2) = 0, the
// general quadratic that holds even when ray.Direction is not unit
// length. A non-unit direction arises crossing an instance boundary
// (spec §4.4): the ray parameter t must stay numerically identical in
// parent and local space, so PreparedInstance.Trace leaves the
// transformed direction unnormalized rather than renormalizing it and
// losing that invariant. findFar selects the second (farther) root
// instead of the first, used to suppress self-shadowing when an
// emissive sphere samples itself (spec §4.2).
func (s Sphere) Intersect(ray geometry.Ray, distanceBound float64, findFar bool) (distance float64, hit bool) {
	oc := ray.Origin.Sub(s.Center)
	a := ray.Direction.SquaredMagnitude()
	halfB := oc.Dot(ray.Direction)
	c := oc.SquaredMagnitude() - s.Radius*s.Radius
	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return math.Inf(1), false
	}
	root := math.Sqrt(discriminant)

	near := (-halfB - root) / a
	far := (-halfB + root) / a
	t := near
	if findFar {
		t = far
	}
	if t < 0 || t > distanceBound {
		// If the preferred root is invalid, the other root is still a
		// legitimate (if less expected) hit; fall back to it.
		alt := far
		if findFar {
			alt = near
		}
		if alt < 0 || alt > distanceBound {
			return math.Inf(1), false
		}
		t = alt
	}
	return t, true
}

// Occlude mirrors Intersect but only needs a boolean, so it exits
// before computing which root is nearer.
func (s Sphere) Occlude(ray geometry.Ray, travel float64) bool {
	oc := ray.Origin.Sub(s.Center)
	a := ray.Direction.SquaredMagnitude()
	halfB := oc.Dot(ray.Direction)
	c := oc.SquaredMagnitude() - s.Radius*s.Radius
	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return false
	}
	root := math.Sqrt(discriminant)
	near, far := (-halfB-root)/a, (-halfB+root)/a
	if near >= 0 && near < travel {
		return true
	}
	return far >= 0 && far < travel
}

// NormalAt returns the outward unit normal at a point on the sphere's
// surface.
func (s Sphere) NormalAt(point geometry.Float3) geometry.Float3 {
	return point.Sub(s.Center).Scale(1 / s.Radius)
}

// SampleArea draws a uniform point on the sphere's surface from two
// canonical samples, returning the surface point and its outward
// normal.
func (s Sphere) SampleArea(xi geometry.Sample2D) (point, normal geometry.Float3) {
	z := 1 - 2*xi.U
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * xi.V
	local := geometry.Float3{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
	return s.Center.Add(local.Scale(s.Radius)), local
}
