// SPDX-License-Identifier: Unlicense OR MIT

// Package texture implements directional (environment-map) texture
// sampling (spec §4.8): importance sampling an equirectangular grid of
// radiance values by building a row-weighted 2D discrete distribution
// over it, with the matching direction<->(u,v) mapping and its
// Jacobian in both the sample and evaluate directions.
package texture

import (
	"math"

	"echorenderer/colorspace"
	"echorenderer/geometry"
	"echorenderer/sampling"
)

// Environment is a prepared directional texture: a row-major radiance
// grid plus the Discrete2D built over its sin(theta)-weighted
// luminance (the cylindrical-parameterization Jacobian).
type Environment struct {
	width, height int
	values        []colorspace.RGB128
	distribution  *sampling.Discrete2D
	average       colorspace.RGB128
}

// NewEnvironment builds an Environment from a row-major grid of
// width*height radiance values.
func NewEnvironment(values []colorspace.RGB128, width, height int) *Environment {
	weights := make([]float64, width*height)
	var sum colorspace.RGB128
	for y := 0; y < height; y++ {
		sinTheta := math.Sin(math.Pi * (float64(y) + 0.5) / float64(height))
		for x := 0; x < width; x++ {
			v := values[y*width+x]
			weights[y*width+x] = v.Luminance() * sinTheta
			sum = sum.Add(v.Scale(sinTheta))
		}
	}
	average := sum.Scale(2 * math.Pi * math.Pi / float64(width*height))
	return &Environment{
		width:        width,
		height:       height,
		values:       values,
		distribution: sampling.NewDiscrete2D(weights, width, height),
		average:      average,
	}
}

// Average returns the sum of the sin(theta)-weighted radiance samples
// scaled by 2*pi^2/(W*H) (spec §4.8 "Average = sum weighted samples *
// 2*pi^2/(W*H)"); for a uniform grid of radiance L it approaches
// 4*pi*L. Nothing else in this module calls it.
func (e *Environment) Average() colorspace.RGB128 {
	return e.average
}

func (e *Environment) lookup(uv geometry.Sample2D) colorspace.RGB128 {
	x := int(uv.U * float64(e.width))
	y := int(uv.V * float64(e.height))
	x = clampIndex(x, e.width)
	y = clampIndex(y, e.height)
	return e.values[y*e.width+x]
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Sample draws a direction from the importance distribution and
// returns it with the emitted radiance and pdf over solid angle (spec
// §4.8). pdf is 0 (and direction/radiance are the zero value) when the
// drawn row lands on the degenerate sinPhi<=0 pole.
func (e *Environment) Sample(sample geometry.Sample2D) (direction geometry.Float3, radiance colorspace.RGB128, pdf float64) {
	uv, pdf2D := e.distribution.Pick(sample)
	if pdf2D == 0 {
		return geometry.Float3{}, colorspace.Black, 0
	}
	theta := 2 * math.Pi * uv.U
	phi := math.Pi * uv.V
	sinPhi := math.Sin(phi)
	if sinPhi <= 0 {
		return geometry.Float3{}, colorspace.Black, 0
	}
	direction = geometry.Float3{
		X: -sinPhi * math.Sin(theta),
		Y: -math.Cos(phi),
		Z: -sinPhi * math.Cos(theta),
	}
	pdf = pdf2D * (1 / (2 * math.Pi * math.Pi)) / sinPhi
	return direction, e.lookup(uv), pdf
}

// directionToUV inverts Sample's mapping, returning the (u,v) a given
// unit direction corresponds to and sin(phi) for the Jacobian.
func directionToUV(direction geometry.Float3) (uv geometry.Sample2D, sinPhi float64) {
	cosPhi := -direction.Y
	cosPhi = geometry.Clamp(cosPhi, -1, 1)
	phi := math.Acos(cosPhi)
	sinPhi = math.Sin(phi)
	if sinPhi <= 0 {
		return geometry.Sample2D{}, 0
	}
	sinTheta := -direction.X / sinPhi
	cosTheta := -direction.Z / sinPhi
	theta := math.Atan2(sinTheta, cosTheta)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return geometry.Sample2D{U: theta / (2 * math.Pi), V: phi / math.Pi}, sinPhi
}

// Emit returns the radiance this texture emits toward -direction (the
// evaluator's ambient() fallback on a trace miss, spec §4.7), looking
// up the grid cell direction maps to under Sample's mapping.
func (e *Environment) Emit(direction geometry.Float3) colorspace.RGB128 {
	uv, sinPhi := directionToUV(direction)
	if sinPhi <= 0 {
		return colorspace.Black
	}
	return e.lookup(uv)
}

// Density returns Sample's pdf had it drawn direction, by inverting
// the mapping and evaluating the same Jacobian (spec §4.8 "Evaluation
// of a given direction inverts the mapping").
func (e *Environment) Density(direction geometry.Float3) float64 {
	uv, sinPhi := directionToUV(direction)
	if sinPhi <= 0 {
		return 0
	}
	pdf2D := e.distribution.Density(uv)
	if pdf2D == 0 {
		return 0
	}
	return pdf2D * (1 / (2 * math.Pi * math.Pi)) / sinPhi
}
