// SPDX-License-Identifier: Unlicense OR MIT

package material

import (
	"echorenderer/colorspace"
	"echorenderer/geometry"
	"echorenderer/internal/arena"
)

// Emissive pairs a diffuse emitter with an optional diffuse
// reflective component (most area lights in practice also bounce a
// little light rather than acting as a perfect black body).
type Emissive struct {
	Radiance colorspace.RGB128
	Albedo   colorspace.RGB128 // zero value: pure emitter, no reflection
}

func (e Emissive) Scatter(touch *Touch, a *arena.Allocator) {
	if !e.Albedo.IsBlack() {
		touch.BSDF.Add(Lambertian{Albedo: e.Albedo})
	}
}

func (e Emissive) Emit(origin, outgoing geometry.Float3) colorspace.RGB128 {
	return e.Radiance
}

func (e Emissive) EmittedPower() float64 {
	return e.Radiance.Average()
}

var _ Material = Emissive{}
var _ Emitter = Emissive{}
