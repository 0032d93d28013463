// SPDX-License-Identifier: Unlicense OR MIT

// Package render implements the evaluator and tile-local accumulation
// layer (spec §4.7, §4.9): the brute-force path tracer that turns one
// camera ray into a radiance estimate, its albedo/cost debug variants,
// and the online Pixel/RenderBuffer types a tile worker merges
// samples into.
package render

import (
	"math"

	"echorenderer/colorspace"
	"echorenderer/geometry"
	"echorenderer/instance"
	"echorenderer/material"
	"echorenderer/prim"
	"echorenderer/texture"
	"echorenderer/token"
)

// Scene bundles the traceable prepared pack with the directional
// texture (or flat color) the evaluator falls back on when a ray
// escapes the scene entirely (spec §4.7's "ambient(...)").
type Scene struct {
	Root       *instance.PreparedPack
	Ambient    *texture.Environment
	Background colorspace.RGB128
}

// ambientRadiance returns what a ray leaving the scene along direction
// sees: the environment texture if one is set, else a flat background.
func (s *Scene) ambientRadiance(direction geometry.Float3) colorspace.RGB128 {
	if s.Ambient != nil {
		return s.Ambient.Emit(direction)
	}
	return s.Background
}

// trace finds the nearest hit for ray, ignoring the path in ignore.
func (s *Scene) trace(ray geometry.Ray, ignore token.Hierarchy) prim.TraceQuery {
	q := prim.NewTraceQuery(ray, math.Inf(1), ignore)
	s.Root.Trace(&q)
	return q
}

// occlude reports whether anything blocks ray before travel.
func (s *Scene) occlude(ray geometry.Ray, travel float64, ignore token.Hierarchy) bool {
	q := prim.NewOccludeQuery(ray, travel, ignore)
	return s.Root.Occlude(&q)
}

// interact resolves a completed hit query into a world-space Touch and
// the Material that hit leaf names, by descending the hit's token path
// a second time (mirroring PreparedInstance.Trace's own descent) to
// find the leaf primitive and its owning pack's swatch, then composing
// the hit point and normal back out through every instance transform
// crossed along the way.
func (s *Scene) interact(ray geometry.Ray, q *prim.TraceQuery) (material.Touch, material.Material) {
	pack := s.Root
	localRay := ray
	path := q.Token

	var crossed []*instance.PreparedInstance
	for i := 0; i < path.Len()-1; i++ {
		inst := pack.Instances[path.At(i).Index()]
		crossed = append(crossed, inst)
		localRay = geometry.Ray{
			Origin:    inst.InverseTransform().TransformPoint(localRay.Origin),
			Direction: inst.InverseTransform().TransformVector(localRay.Direction),
		}
		pack = inst.Pack
	}

	leaf := path.At(path.Len() - 1)
	var localPoint, localNormal geometry.Float3
	var uv geometry.Sample2D
	var matIdx material.MaterialIndex
	switch leaf.Kind() {
	case token.KindTriangle:
		tri := pack.Triangles[leaf.Index()]
		localPoint = tri.Point(q.UV)
		localNormal = tri.InterpolatedNormal(q.UV)
		texUV := tri.InterpolatedUV(q.UV)
		uv = geometry.Sample2D{U: texUV.X, V: texUV.Y}
		matIdx = tri.Material
	case token.KindSphere:
		sph := pack.Spheres[leaf.Index()]
		localPoint = localRay.At(q.Distance)
		localNormal = sph.NormalAt(localPoint)
		matIdx = sph.Material
	}

	worldPoint, worldNormal := localPoint, localNormal
	for i := len(crossed) - 1; i >= 0; i-- {
		worldPoint = crossed[i].ForwardTransform().TransformPoint(worldPoint)
		worldNormal = crossed[i].ForwardTransform().TransformVector(worldNormal)
	}
	if worldNormal != (geometry.Float3{}) {
		worldNormal = worldNormal.Normalized()
	}

	outgoing := ray.Direction.Scale(-1).Normalized()
	touch := material.NewTouch(worldPoint, worldNormal, outgoing, uv, matIdx)
	touch.SetHitPath(q.Token)
	return touch, pack.Swatch.At(matIdx)
}
