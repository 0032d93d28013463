// SPDX-License-Identifier: Unlicense OR MIT

package material

import (
	"echorenderer/colorspace"
	"echorenderer/internal/arena"
)

// Diffuse is the plain matte Material: one Lambertian BxDF, no
// emission.
type Diffuse struct {
	Albedo colorspace.RGB128
}

func (d Diffuse) Scatter(touch *Touch, a *arena.Allocator) {
	touch.BSDF.Add(Lambertian{Albedo: d.Albedo})
}

// Mirror is a perfectly specular reflective Material.
type Mirror struct {
	Tint colorspace.RGB128
}

func (m Mirror) Scatter(touch *Touch, a *arena.Allocator) {
	touch.BSDF.Add(PerfectMirror{Tint: m.Tint})
}

// Glass is a dielectric Material combining Fresnel-weighted specular
// reflection and transmission.
type Glass struct {
	Tint              colorspace.RGB128
	IndexOfRefraction float64
}

func (g Glass) Scatter(touch *Touch, a *arena.Allocator) {
	ior := g.IndexOfRefraction
	if ior == 0 {
		ior = 1.5
	}
	touch.BSDF.Add(SpecularReflection{Tint: g.Tint, EtaIncident: 1, EtaTransmit: ior})
	touch.BSDF.Add(SpecularTransmission{Tint: g.Tint, EtaIncident: 1, EtaTransmit: ior})
}

var (
	_ Material = Diffuse{}
	_ Material = Mirror{}
	_ Material = Glass{}
)
