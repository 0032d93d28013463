// SPDX-License-Identifier: Unlicense OR MIT

package material

import (
	"echorenderer/geometry"
	"echorenderer/internal/arena"
	"echorenderer/token"
)

// Touch is the world-space record of a ray/surface hit, populated by
// the evaluator from a successful TraceQuery before the hit
// material's Scatter is invoked to build its BSDF.
type Touch struct {
	Point     geometry.Float3
	Normal    geometry.Float3
	Outgoing  geometry.Float3
	UV        geometry.Sample2D
	Material  MaterialIndex
	BSDF      *BSDF
	arenaSlot int
	hitPath   token.Hierarchy
}

// NewTouch builds a Touch at point with shading normal and outgoing
// view direction, both in world space.
func NewTouch(point, normal, outgoing geometry.Float3, uv geometry.Sample2D, mat MaterialIndex) Touch {
	return Touch{Point: point, Normal: normal, Outgoing: outgoing, UV: uv, Material: mat}
}

// Scatter has mat populate t.BSDF, allocating the BSDF from a; the
// component BxDFs a material stacks are added to it by value. The arena is restarted once per
// bounce by the evaluator, so Touch never needs to free anything
// itself.
func (t *Touch) Scatter(mat Material, a *arena.Allocator) {
	bsdf, slot := AllocateBSDF(a, t.Normal)
	t.BSDF = bsdf
	t.arenaSlot = slot
	mat.Scatter(t, a)
}

// SetHitPath records the full instance/leaf token path this Touch was
// resolved from, so a ray spawned from it can ignore re-hitting the
// same primitive (spec §4.4's "ignore path compares the full
// TokenHierarchy").
func (t *Touch) SetHitPath(path token.Hierarchy) {
	t.hitPath = path
}

// HitPath returns the token path SetHitPath recorded.
func (t *Touch) HitPath() token.Hierarchy {
	return t.hitPath
}

// OffsetPoint nudges Point along Normal by a small epsilon oriented
// toward direction, avoiding self-intersection on the next ray cast
// from this hit.
func (t *Touch) OffsetPoint(direction geometry.Float3) geometry.Float3 {
	const epsilon = 1e-4
	n := t.Normal
	if n.Dot(direction) < 0 {
		n = n.Scale(-1)
	}
	return t.Point.Add(n.Scale(epsilon))
}
