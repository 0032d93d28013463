// SPDX-License-Identifier: Unlicense OR MIT

package geometry

import (
	"fmt"
	"math"
)

// Affine is a 3x4 affine transform (a 4x4 matrix whose bottom row is
// implicitly [0 0 0 1]), stored row-major. It plays the same role for
// this module's 3D geometry that f32.Affine2D plays for gio's 2D
// drawing: a composable, invertible builder applied to points and
// directions.
type Affine struct {
	// Rows 0-2 of the 4x4 matrix; row 3 is implicit.
	m [3][4]float64
}

// Identity is the affine identity transform.
var Identity = Affine{m: [3][4]float64{
	{1, 0, 0, 0},
	{0, 1, 0, 0},
	{0, 0, 1, 0},
}}

// NewAffine builds an affine transform from a 3x3 linear part and a
// translation.
func NewAffine(linear [3]Float3, translation Float3) Affine {
	a := Affine{}
	a.m[0] = [4]float64{linear[0].X, linear[0].Y, linear[0].Z, translation.X}
	a.m[1] = [4]float64{linear[1].X, linear[1].Y, linear[1].Z, translation.Y}
	a.m[2] = [4]float64{linear[2].X, linear[2].Y, linear[2].Z, translation.Z}
	return a
}

// Offset returns a translated by v.
func (a Affine) Offset(v Float3) Affine {
	return Translation(v).Mul(a)
}

// Translation returns a pure translation transform.
func Translation(v Float3) Affine {
	a := Identity
	a.m[0][3] = v.X
	a.m[1][3] = v.Y
	a.m[2][3] = v.Z
	return a
}

// UniformScale returns a pure uniform-scale transform.
func UniformScale(s float64) Affine {
	a := Identity
	a.m[0][0], a.m[1][1], a.m[2][2] = s, s, s
	return a
}

// Row0 returns the transform's first linear-part row, used at
// preparation time to extract uniform scale magnitude (spec §4.1).
func (a Affine) Row0() Float3 {
	return Float3{X: a.m[0][0], Y: a.m[0][1], Z: a.m[0][2]}
}

// TransformPoint applies a to a point (translation included).
func (a Affine) TransformPoint(p Float3) Float3 {
	return Float3{
		X: a.m[0][0]*p.X + a.m[0][1]*p.Y + a.m[0][2]*p.Z + a.m[0][3],
		Y: a.m[1][0]*p.X + a.m[1][1]*p.Y + a.m[1][2]*p.Z + a.m[1][3],
		Z: a.m[2][0]*p.X + a.m[2][1]*p.Y + a.m[2][2]*p.Z + a.m[2][3],
	}
}

// TransformVector applies only a's linear part (no translation) to a
// direction vector.
func (a Affine) TransformVector(v Float3) Float3 {
	return Float3{
		X: a.m[0][0]*v.X + a.m[0][1]*v.Y + a.m[0][2]*v.Z,
		Y: a.m[1][0]*v.X + a.m[1][1]*v.Y + a.m[1][2]*v.Z,
		Z: a.m[2][0]*v.X + a.m[2][1]*v.Y + a.m[2][2]*v.Z,
	}
}

// Mul returns the transform equivalent to applying a first, then b
// (matches f32.Affine2D.Mul's convention: b.Mul(a) applies a then b).
func (b Affine) Mul(a Affine) Affine {
	var out Affine
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += b.m[r][k] * a.m[k][c]
			}
			if c == 3 {
				sum += b.m[r][3]
			}
			out.m[r][c] = sum
		}
	}
	return out
}

// Invert returns a's inverse. a must be affine-invertible (non-zero
// determinant linear part); EchoRenderer only ever inverts validated
// instance transforms, so Invert panics on a singular matrix rather
// than returning an error.
func (a Affine) Invert() Affine {
	m := a.m
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	if det == 0 {
		panic(fmt.Sprintf("geometry: singular affine transform %v", a))
	}
	invDet := 1 / det

	var inv [3][3]float64
	inv[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) * invDet
	inv[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * invDet
	inv[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * invDet
	inv[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) * invDet
	inv[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * invDet
	inv[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * invDet
	inv[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) * invDet
	inv[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * invDet
	inv[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * invDet

	t := Float3{X: m[0][3], Y: m[1][3], Z: m[2][3]}
	invT := Float3{
		X: -(inv[0][0]*t.X + inv[0][1]*t.Y + inv[0][2]*t.Z),
		Y: -(inv[1][0]*t.X + inv[1][1]*t.Y + inv[1][2]*t.Z),
		Z: -(inv[2][0]*t.X + inv[2][1]*t.Y + inv[2][2]*t.Z),
	}
	var out Affine
	for r := 0; r < 3; r++ {
		out.m[r][0], out.m[r][1], out.m[r][2] = inv[r][0], inv[r][1], inv[r][2]
	}
	out.m[0][3], out.m[1][3], out.m[2][3] = invT.X, invT.Y, invT.Z
	return out
}

// UniformScaleMagnitude extracts the uniform scale factor implied by
// the transform's first linear row, per spec §4.1 ("uniform scale
// extracted as the magnitude of the first transform row"). ok is
// false if the transform is not uniformly scaled within tolerance.
func (a Affine) UniformScaleMagnitude() (scale float64, ok bool) {
	row0 := a.Row0()
	row1 := Float3{X: a.m[1][0], Y: a.m[1][1], Z: a.m[1][2]}
	row2 := Float3{X: a.m[2][0], Y: a.m[2][1], Z: a.m[2][2]}
	s0, s1, s2 := row0.Magnitude(), row1.Magnitude(), row2.Magnitude()
	const tolerance = 1e-4
	if math.Abs(s0-s1) > tolerance*s0 || math.Abs(s0-s2) > tolerance*s0 {
		return s0, false
	}
	return s0, true
}
