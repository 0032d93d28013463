// SPDX-License-Identifier: Unlicense OR MIT

package instance

import (
	"echorenderer/geometry"
	"echorenderer/sampling"
	"echorenderer/token"
)

// PowerDistribution is a pack's light-source importance table: a flat
// weighted sampler over every emissive leaf (triangle, sphere, or
// nested instance with positive Power), weight = geometric area times
// emitted radiant power for a primitive, or the precomputed Power for
// a nested instance (spec §4.2 "power-weighted light selection").
type PowerDistribution struct {
	tokens []token.EntityToken
	sample *sampling.Discrete1D
}

// powerWeight reports a leaf's distribution weight, and whether it has
// any weight at all (a primitive using a non-emissive material, or an
// instance wrapping a pack with no emitters, contributes nothing and
// is omitted from the table entirely).
func powerWeight(pack *PreparedPack, tok token.EntityToken) (weight float64, ok bool) {
	switch tok.Kind() {
	case token.KindTriangle:
		tri := pack.Triangles[tok.Index()]
		em, isEmitter := pack.Swatch.EmitterAt(tri.Material)
		if !isEmitter || em.EmittedPower() <= 0 {
			return 0, false
		}
		return tri.Area() * em.EmittedPower(), true
	case token.KindSphere:
		sph := pack.Spheres[tok.Index()]
		em, isEmitter := pack.Swatch.EmitterAt(sph.Material)
		if !isEmitter || em.EmittedPower() <= 0 {
			return 0, false
		}
		return sph.Area() * em.EmittedPower(), true
	case token.KindInstance:
		inst := pack.Instances[tok.Index()]
		if inst.Power <= 0 {
			return 0, false
		}
		return inst.Power, true
	default:
		return 0, false
	}
}

// NewPowerDistribution scans pack's triangles, spheres, and instances
// for emissive weight and builds the sampler over whatever it finds.
// A pack with no emitters at all yields a distribution whose Total()
// is 0 and whose Pick always reports pdf 0 (prepare gates whether a
// pack even gets a PowerDistribution on this being nonzero, spec §4.2
// "no direct-light sampling when a scene has no lights").
func NewPowerDistribution(pack *PreparedPack) *PowerDistribution {
	var tokens []token.EntityToken
	var weights []float64

	for i := range pack.Triangles {
		tok := token.NewEntityToken(token.KindTriangle, i)
		if w, ok := powerWeight(pack, tok); ok {
			tokens = append(tokens, tok)
			weights = append(weights, w)
		}
	}
	for i := range pack.Spheres {
		tok := token.NewEntityToken(token.KindSphere, i)
		if w, ok := powerWeight(pack, tok); ok {
			tokens = append(tokens, tok)
			weights = append(weights, w)
		}
	}
	for i := range pack.Instances {
		tok := token.NewEntityToken(token.KindInstance, i)
		if w, ok := powerWeight(pack, tok); ok {
			tokens = append(tokens, tok)
			weights = append(weights, w)
		}
	}

	return &PowerDistribution{tokens: tokens, sample: sampling.NewDiscrete1D(weights)}
}

// Pick draws one emissive leaf token with probability proportional to
// its power weight.
func (d *PowerDistribution) Pick(u geometry.Sample1D) (tok token.EntityToken, pdf float64) {
	if len(d.tokens) == 0 {
		return token.Empty, 0
	}
	i, p := d.sample.Pick(u)
	return d.tokens[i], p
}

// Total returns the sum of every emissive leaf's power weight, 0 if
// the pack has no emitters.
func (d *PowerDistribution) Total() float64 {
	return d.sample.Total()
}

// ProbabilityOf returns tok's selection probability, 0 if tok is not
// in the table.
func (d *PowerDistribution) ProbabilityOf(tok token.EntityToken) float64 {
	for i, t := range d.tokens {
		if t == tok {
			return d.sample.ProbabilityOf(i)
		}
	}
	return 0
}
