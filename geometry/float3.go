// SPDX-License-Identifier: Unlicense OR MIT

// Package geometry provides the float64 vector, ray, bounding-box, and
// affine-transform primitives shared by every other package in this
// module.
//
// The coordinate space is right-handed; no axis is privileged. Types
// here are small value types meant to be passed and returned by value,
// following the shape of gio's f32.Point/f32.Rectangle.
package geometry

import "math"

// Float3 is a three dimensional vector or point.
type Float3 struct {
	X, Y, Z float64
}

// Zero3 is the additive identity.
var Zero3 = Float3{}

// One3 is the vector (1, 1, 1).
var One3 = Float3{X: 1, Y: 1, Z: 1}

// Add returns v+u.
func (v Float3) Add(u Float3) Float3 {
	return Float3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns v-u.
func (v Float3) Sub(u Float3) Float3 {
	return Float3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Mul returns v scaled componentwise by u.
func (v Float3) Mul(u Float3) Float3 {
	return Float3{X: v.X * u.X, Y: v.Y * u.Y, Z: v.Z * u.Z}
}

// Scale returns v scaled by s.
func (v Float3) Scale(s float64) Float3 {
	return Float3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product v·u.
func (v Float3) Dot(u Float3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// Cross returns v×u.
func (v Float3) Cross(u Float3) Float3 {
	return Float3{
		X: v.Y*u.Z - v.Z*u.Y,
		Y: v.Z*u.X - v.X*u.Z,
		Z: v.X*u.Y - v.Y*u.X,
	}
}

// SquaredMagnitude returns |v|².
func (v Float3) SquaredMagnitude() float64 {
	return v.Dot(v)
}

// Magnitude returns |v|.
func (v Float3) Magnitude() float64 {
	return math.Sqrt(v.SquaredMagnitude())
}

// Normalized returns v/|v|. The zero vector is returned unchanged.
func (v Float3) Normalized() Float3 {
	m := v.Magnitude()
	if m == 0 {
		return v
	}
	return v.Scale(1 / m)
}

// Min returns the componentwise minimum of v and u.
func (v Float3) Min(u Float3) Float3 {
	return Float3{X: math.Min(v.X, u.X), Y: math.Min(v.Y, u.Y), Z: math.Min(v.Z, u.Z)}
}

// Max returns the componentwise maximum of v and u.
func (v Float3) Max(u Float3) Float3 {
	return Float3{X: math.Max(v.X, u.X), Y: math.Max(v.Y, u.Y), Z: math.Max(v.Z, u.Z)}
}

// Component returns the axis-indexed component (0=X, 1=Y, 2=Z).
func (v Float3) Component(axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// MaxAxis returns the index of the largest-magnitude component.
func (v Float3) MaxAxis() int {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	if ax >= ay && ax >= az {
		return 0
	}
	if ay >= az {
		return 1
	}
	return 2
}

// Clamp restricts the scalar x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Reflect returns the reflection of incoming about normal n (both
// expected to point away from the surface, as in the local BxDF
// convention).
func Reflect(incoming, n Float3) Float3 {
	return n.Scale(2 * incoming.Dot(n)).Sub(incoming)
}

// Refract bends incoming (pointing away from the surface) across a
// boundary with relative index of refraction eta = etaIncident/etaTransmitted.
// ok is false on total internal reflection.
func Refract(incoming, n Float3, eta float64) (refracted Float3, ok bool) {
	cosThetaI := incoming.Dot(n)
	sin2ThetaI := math.Max(0, 1-cosThetaI*cosThetaI)
	sin2ThetaT := sin2ThetaI * eta * eta
	if sin2ThetaT >= 1 {
		return Float3{}, false
	}
	cosThetaT := math.Sqrt(1 - sin2ThetaT)
	refracted = incoming.Scale(-eta).Add(n.Scale(eta*cosThetaI - cosThetaT))
	return refracted, true
}
