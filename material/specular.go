// SPDX-License-Identifier: Unlicense OR MIT

package material

import (
	"echorenderer/colorspace"
	"echorenderer/geometry"
)

// SpecularReflection is a perfect mirror, weighted by a Fresnel term
// evaluated at the incident angle.
type SpecularReflection struct {
	Tint        colorspace.RGB128
	EtaIncident float64
	EtaTransmit float64
}

func (s SpecularReflection) Type() Type { return Reflection | Specular }

func (s SpecularReflection) Evaluate(outgoing, incident geometry.Float3) colorspace.RGB128 {
	return colorspace.Black // delta distribution: zero measure except at the exact reflection
}

func (s SpecularReflection) Sample(outgoing geometry.Float3, sample2D geometry.Sample2D) (incident geometry.Float3, f colorspace.RGB128, pdf float64) {
	incident = geometry.Float3{X: -outgoing.X, Y: -outgoing.Y, Z: outgoing.Z}
	fr := FresnelDielectric(Cosine(outgoing), s.EtaIncident, s.EtaTransmit)
	pdf = 1
	f = s.Tint.Scale(fr / AbsCosine(incident))
	return incident, f, pdf
}

func (s SpecularReflection) ProbabilityDensity(outgoing, incident geometry.Float3) float64 {
	return 0 // delta components never respond to explicit-direction MIS queries
}

// SpecularTransmission is a dielectric interface that refracts when
// possible (this module's resolution of spec.md §9's open question on
// SpecularTransmission: standard dielectric transmission via
// geometry.Refract). When Refract detects total internal reflection,
// Sample returns a zero direction, black and pdf 0; no reflected
// direction is produced.
type SpecularTransmission struct {
	Tint        colorspace.RGB128
	EtaIncident float64
	EtaTransmit float64
}

func (s SpecularTransmission) Type() Type { return Transmission | Specular }

func (s SpecularTransmission) Evaluate(outgoing, incident geometry.Float3) colorspace.RGB128 {
	return colorspace.Black
}

func (s SpecularTransmission) Sample(outgoing geometry.Float3, sample2D geometry.Sample2D) (incident geometry.Float3, f colorspace.RGB128, pdf float64) {
	entering := Cosine(outgoing) > 0
	etaIncident, etaTransmit := s.EtaIncident, s.EtaTransmit
	normal := geometry.Float3{Z: 1}
	if !entering {
		etaIncident, etaTransmit = etaTransmit, etaIncident
		normal = geometry.Float3{Z: -1}
	}

	refracted, ok := geometry.Refract(outgoing, normal, etaIncident/etaTransmit)
	if !ok {
		// Total internal reflection: spec.md §9 resolution reports
		// pdf 0 rather than silently substituting a reflection sample,
		// so the caller's path-tracer treats this bounce as absorbed.
		return geometry.Float3{}, colorspace.Black, 0
	}

	fr := FresnelDielectric(Cosine(outgoing), s.EtaIncident, s.EtaTransmit)
	transmittance := 1 - fr
	// Radiance scales by (etaIncident/etaTransmit)^2 crossing a
	// boundary (non-symmetric transmission, solid-angle compression).
	scale := (etaIncident / etaTransmit) * (etaIncident / etaTransmit)
	f = s.Tint.Scale(transmittance * scale / AbsCosine(refracted))
	return refracted, f, 1
}

func (s SpecularTransmission) ProbabilityDensity(outgoing, incident geometry.Float3) float64 {
	return 0
}

// PerfectMirror is a Fresnel-free ideal reflector: f = tint/|cos|,
// used by plain metallic materials that want full reflectance rather
// than a dielectric Fresnel curve.
type PerfectMirror struct {
	Tint colorspace.RGB128
}

func (m PerfectMirror) Type() Type { return Reflection | Specular }

func (m PerfectMirror) Evaluate(outgoing, incident geometry.Float3) colorspace.RGB128 {
	return colorspace.Black
}

func (m PerfectMirror) Sample(outgoing geometry.Float3, sample2D geometry.Sample2D) (incident geometry.Float3, f colorspace.RGB128, pdf float64) {
	incident = geometry.Float3{X: -outgoing.X, Y: -outgoing.Y, Z: outgoing.Z}
	return incident, m.Tint.Scale(1 / AbsCosine(incident)), 1
}

func (m PerfectMirror) ProbabilityDensity(outgoing, incident geometry.Float3) float64 {
	return 0
}
