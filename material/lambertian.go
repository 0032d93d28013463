// SPDX-License-Identifier: Unlicense OR MIT

package material

import (
	"math"

	"echorenderer/colorspace"
	"echorenderer/geometry"
)

// Lambertian is a perfectly diffuse reflector: f is constant, and
// Sample draws a cosine-weighted direction so that f*cos/pdf == albedo
// with no further weighting needed.
type Lambertian struct {
	Albedo colorspace.RGB128
}

func (l Lambertian) Type() Type { return Reflection | DiffuseLobe }

func (l Lambertian) Evaluate(outgoing, incident geometry.Float3) colorspace.RGB128 {
	if !SameHemisphere(outgoing, incident) {
		return colorspace.Black
	}
	return l.Albedo.Scale(1 / math.Pi)
}

func (l Lambertian) Sample(outgoing geometry.Float3, sample2D geometry.Sample2D) (incident geometry.Float3, f colorspace.RGB128, pdf float64) {
	incident = cosineSampleHemisphere(sample2D)
	if outgoing.Z < 0 {
		incident.Z = -incident.Z
	}
	pdf = l.ProbabilityDensity(outgoing, incident)
	f = l.Evaluate(outgoing, incident)
	return incident, f, pdf
}

func (l Lambertian) ProbabilityDensity(outgoing, incident geometry.Float3) float64 {
	if !SameHemisphere(outgoing, incident) {
		return 0
	}
	return AbsCosine(incident) / math.Pi
}
