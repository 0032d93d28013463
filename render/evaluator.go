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

// Evaluator is the brute-force path tracer (spec §4.7): depth-limited
// recursion with an explicit counter (no tail-call assumption), one
// BSDF sample per bounce, and an ambient fallback on a trace miss.
// It is re-entrant and carries no state of its own; every per-worker
// resource (arena, sample stream) is passed in by the caller.
type Evaluator struct {
	Scene       *Scene
	BounceLimit int
}

// NewEvaluator builds an Evaluator over scene with the given hard
// bounce cap (spec §4.7 "default 128").
func NewEvaluator(scene *Scene, bounceLimit int) *Evaluator {
	if bounceLimit <= 0 {
		bounceLimit = 128
	}
	return &Evaluator{Scene: scene, BounceLimit: bounceLimit}
}

// Evaluate traces ray through the scene and returns its estimated
// incident radiance, using a with a fresh per-bounce arena restart
// and dist as the per-pixel sample stream.
func (e *Evaluator) Evaluate(ray geometry.Ray, a *arena.Allocator, dist *sampling.ContinuousDistribution) colorspace.RGB128 {
	return e.evaluate(ray, token.Hierarchy{}, a, dist, e.BounceLimit)
}

func (e *Evaluator) evaluate(ray geometry.Ray, ignore token.Hierarchy, a *arena.Allocator, dist *sampling.ContinuousDistribution, depth int) colorspace.RGB128 {
	depth--
	if depth == 0 {
		return colorspace.Black
	}
	a.Restart()

	q := e.Scene.trace(ray, ignore)
	if q.Token.IsEmpty() {
		return e.Scene.ambientRadiance(ray.Direction)
	}

	touch, mat := e.Scene.interact(ray, &q)
	touch.Scatter(mat, a)

	var emit colorspace.RGB128
	if em, ok := mat.(material.Emitter); ok {
		emit = em.Emit(touch.Point, touch.Outgoing)
	}

	if touch.BSDF.Len() == 0 {
		continuation := geometry.NewRay(touch.OffsetPoint(ray.Direction), ray.Direction)
		return emit.Add(e.evaluate(continuation, touch.HitPath(), a, dist, depth))
	}

	incident, f, pdf := touch.BSDF.Sample(touch.Outgoing, dist.Next2D(), float64(dist.Next1D()))
	if pdf == 0 || f.IsBlack() {
		return emit
	}
	cosine := math.Abs(touch.Normal.Dot(incident))
	throughput := f.Scale(cosine / pdf)

	continuation := geometry.NewRay(touch.OffsetPoint(incident), incident)
	bounced := e.evaluate(continuation, touch.HitPath(), a, dist, depth)
	return emit.Add(throughput.Mul(bounced))
}
