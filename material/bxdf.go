// SPDX-License-Identifier: Unlicense OR MIT

// Package material implements the BxDF layer (spec §4.6): the
// scattering-function interface and its Lambertian/specular/Fresnel
// concrete types, plus the Touch/Interaction the aggregator-facing
// evaluator populates at a hit and the IEmissive predicate used by
// scene preparation to find emitters.
package material

import (
	"math"

	"echorenderer/colorspace"
	"echorenderer/geometry"
	"echorenderer/internal/arena"
	"echorenderer/prim"
)

// Type is a bitmask describing what a BxDF supports, used by the
// evaluator and by multiple-importance-sampling callers (not
// implemented here; spec scopes EchoRenderer to a single BxDF sample
// per bounce) to reason about delta vs. non-delta behavior.
type Type uint8

const (
	Reflection Type = 1 << iota
	Transmission
	DiffuseLobe
	Glossy
	Specular
)

// Has reports whether t includes every bit in mask.
func (t Type) Has(mask Type) bool {
	return t&mask == mask
}

// BxDF is one bidirectional scattering component of a Touch's
// populated scattering-function set.
type BxDF interface {
	// Type reports this component's reflection/transmission/diffuse/
	// glossy/specular bits.
	Type() Type
	// Evaluate returns f(outgoing, incident) for explicit directions,
	// both in the local shading frame (normal along +Z).
	Evaluate(outgoing, incident geometry.Float3) colorspace.RGB128
	// Sample draws an incident direction from sample2D (for non-delta
	// BxDFs, cosine-weighted about the hemisphere containing
	// outgoing) and returns f and its pdf. Delta BxDFs compute
	// incident analytically and report pdf == 1.
	Sample(outgoing geometry.Float3, sample2D geometry.Sample2D) (incident geometry.Float3, f colorspace.RGB128, pdf float64)
	// ProbabilityDensity returns the pdf Sample would have reported
	// had it drawn (outgoing, incident); 0 when the pair
	// is not in the same hemisphere (unless the BxDF is transmissive).
	ProbabilityDensity(outgoing, incident geometry.Float3) float64
}

// Cosine returns the cosine of the angle a local-frame direction makes
// with the +Z shading normal.
func Cosine(w geometry.Float3) float64 { return w.Z }

// AbsCosine returns |Cosine(w)|.
func AbsCosine(w geometry.Float3) float64 { return math.Abs(w.Z) }

// Sine returns sin(theta) for a local-frame direction, clamped to
// avoid a negative radicand from floating-point error.
func Sine(w geometry.Float3) float64 {
	return math.Sqrt(math.Max(0, 1-w.Z*w.Z))
}

// CosinePhi returns cos(phi), 1 when sin(theta) == 0 (azimuth is
// undefined at the poles; returning 1 keeps downstream products finite
// instead of propagating a 0/0 NaN).
func CosinePhi(w geometry.Float3) float64 {
	s := Sine(w)
	if s == 0 {
		return 1
	}
	return geometry.Clamp(w.X/s, -1, 1)
}

// SinePhi mirrors CosinePhi for sin(phi).
func SinePhi(w geometry.Float3) float64 {
	s := Sine(w)
	if s == 0 {
		return 0
	}
	return geometry.Clamp(w.Y/s, -1, 1)
}

// SameHemisphere reports whether a and b's Z components share a sign,
// the local-frame reflection-vs-transmission test.
func SameHemisphere(a, b geometry.Float3) bool {
	return a.Z*b.Z > 0
}

// cosineSampleHemisphere draws a direction about +Z with pdf
// |cos theta|/pi via the Malley concentric-disk method's simpler
// (non-concentric) form.
func cosineSampleHemisphere(sample geometry.Sample2D) geometry.Float3 {
	r := math.Sqrt(sample.U)
	phi := 2 * math.Pi * sample.V
	x, y := r*math.Cos(phi), r*math.Sin(phi)
	z := math.Sqrt(math.Max(0, 1-sample.U))
	return geometry.Float3{X: x, Y: y, Z: z}
}

// BSDF is the heterogeneous set of BxDF components populated on a
// Touch by the material at a hit. All components share one local
// frame (tangent, bitangent, shading normal) built once per hit.
type BSDF struct {
	components []BxDF
	tangent    geometry.Float3
	bitangent  geometry.Float3
	normal     geometry.Float3
}

// NewBSDF builds an empty BSDF oriented about normal, constructing an
// arbitrary orthonormal tangent frame.
func NewBSDF(normal geometry.Float3) *BSDF {
	t, b := orthonormalBasis(normal)
	return &BSDF{tangent: t, bitangent: b, normal: normal}
}

// Add appends a component, returning the BSDF for chaining.
func (b *BSDF) Add(c BxDF) *BSDF {
	b.components = append(b.components, c)
	return b
}

// Len reports how many components are present.
func (b *BSDF) Len() int { return len(b.components) }

func (b *BSDF) toLocal(w geometry.Float3) geometry.Float3 {
	return geometry.Float3{X: w.Dot(b.tangent), Y: w.Dot(b.bitangent), Z: w.Dot(b.normal)}
}

func (b *BSDF) toWorld(w geometry.Float3) geometry.Float3 {
	return b.tangent.Scale(w.X).Add(b.bitangent.Scale(w.Y)).Add(b.normal.Scale(w.Z))
}

// Sample picks one component uniformly (matching the BSDF's single-
// sample-per-bounce evaluator contract, spec §4.7) and draws an
// incident direction from it in world space.
func (b *BSDF) Sample(outgoingWorld geometry.Float3, sample2D geometry.Sample2D, componentPick float64) (incidentWorld geometry.Float3, f colorspace.RGB128, pdf float64) {
	if len(b.components) == 0 {
		return geometry.Float3{}, colorspace.Black, 0
	}
	idx := int(componentPick * float64(len(b.components)))
	if idx >= len(b.components) {
		idx = len(b.components) - 1
	}
	outgoing := b.toLocal(outgoingWorld)
	incident, value, p := b.components[idx].Sample(outgoing, sample2D)
	if p == 0 {
		return geometry.Float3{}, colorspace.Black, 0
	}
	return b.toWorld(incident), value, p / float64(len(b.components))
}

func orthonormalBasis(n geometry.Float3) (tangent, bitangent geometry.Float3) {
	var up geometry.Float3
	if math.Abs(n.X) > 0.9 {
		up = geometry.Float3{Y: 1}
	} else {
		up = geometry.Float3{X: 1}
	}
	tangent = up.Cross(n).Normalized()
	bitangent = n.Cross(tangent)
	return tangent, bitangent
}

// AllocateBSDF places a freshly built BSDF in the per-hit arena. The
// arena contract (spec §5) requires every allocated value to be
// trivially destructible; *BSDF qualifies since it owns no external
// resources.
func AllocateBSDF(a *arena.Allocator, normal geometry.Float3) (*BSDF, int) {
	b := NewBSDF(normal)
	idx := arena.Alloc(a, b)
	return b, idx
}

// Material is the interface a prepared swatch entry implements:
// populate a Touch's BSDF from the arena at a hit.
type Material interface {
	Scatter(touch *Touch, a *arena.Allocator)
}

// Emitter is implemented by materials that emit radiance (spec §3's
// "IEmissive"). Following this module's resolution of spec.md §9's
// Open Question on the Cullable.Emit free-variable bug, Emit's first
// parameter is always bound as origin.
type Emitter interface {
	// Emit returns the radiance leaving origin toward outgoing.
	Emit(origin, outgoing geometry.Float3) colorspace.RGB128
	// EmittedPower is a cheap analytic upper bound on radiant power,
	// used at preparation time as the positive-power emissive
	// predicate (spec.md §9 Open Question resolution: a material
	// counts as emissive iff EmittedPower() > 0, rather than Monte
	// Carlo sampling Emit).
	EmittedPower() float64
}

// MaterialIndex re-exports prim.MaterialIndex so swatch/material code
// doesn't need to import prim solely for the index type.
type MaterialIndex = prim.MaterialIndex
