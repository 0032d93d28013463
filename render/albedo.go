// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"math"

	"echorenderer/colorspace"
	"echorenderer/geometry"
	"echorenderer/internal/arena"
	"echorenderer/material"
	"echorenderer/sampling"
	"echorenderer/token"
)

// AlbedoEvaluator is a single-bounce debug evaluator used to populate
// a render buffer's auxiliary albedo layer (spec §3's RenderBuffer
// "parallel albedo ... layers"): it reports the hit surface's own
// reflectance or emission, never recursing into indirect light.
//
// A single BSDF sample's throughput f*|cos|/pdf is itself an unbiased
// one-sample Monte Carlo estimate of the material's hemispherical
// reflectance (its "albedo"), so no separate closed-form reflectance
// query is needed on the Material interface.
type AlbedoEvaluator struct {
	Scene *Scene
}

// NewAlbedoEvaluator builds an AlbedoEvaluator over scene.
func NewAlbedoEvaluator(scene *Scene) *AlbedoEvaluator {
	return &AlbedoEvaluator{Scene: scene}
}

// Evaluate reports ray's primary hit's albedo (or emitted radiance for
// an emitter, or the scene's ambient color on a miss) together with
// the hit's world-space shading normal (zero on a miss), the pair a
// tile worker's auxiliary pass accumulates (spec §4.9's "separate
// running sums for albedo and normal").
func (e *AlbedoEvaluator) Evaluate(ray geometry.Ray, a *arena.Allocator, dist *sampling.ContinuousDistribution) (colorspace.RGB128, geometry.Float3) {
	a.Restart()

	q := e.Scene.trace(ray, token.Hierarchy{})
	if q.Token.IsEmpty() {
		return e.Scene.ambientRadiance(ray.Direction), geometry.Float3{}
	}

	touch, mat := e.Scene.interact(ray, &q)
	touch.Scatter(mat, a)

	if em, ok := mat.(material.Emitter); ok {
		return em.Emit(touch.Point, touch.Outgoing), touch.Normal
	}
	if touch.BSDF.Len() == 0 {
		return colorspace.White, touch.Normal
	}

	incident, f, pdf := touch.BSDF.Sample(touch.Outgoing, dist.Next2D(), float64(dist.Next1D()))
	if pdf == 0 || f.IsBlack() {
		return colorspace.Black, touch.Normal
	}
	cosine := math.Abs(touch.Normal.Dot(incident))
	return f.Scale(cosine / pdf), touch.Normal
}
