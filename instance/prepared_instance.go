// SPDX-License-Identifier: Unlicense OR MIT

package instance

import (
	"math"

	"echorenderer/geometry"
	"echorenderer/prim"
)

// PreparedInstance binds a shared *PreparedPack to one placement in a
// parent pack: a forward transform from the instance's local space
// into the parent's space, its precomputed inverse, and the uniform
// scale factor extracted from the transform (spec §4.1 "uniform scale
// extracted as the magnitude of the first transform row" — validated
// at preparation time, stored here as a plain float since the pack
// this instance wraps is immutable and shared).
type PreparedInstance struct {
	Pack *PreparedPack

	forwardTransform geometry.Affine
	inverseTransform geometry.Affine
	forwardScale     float64
	inverseScale     float64

	worldBounds geometry.AABB

	// Power is this instance's contribution to its parent's light
	// importance table: the wrapped pack's own total emitted power,
	// scaled by forwardScale^2 (the square of the scale the transform
	// applies to the pack) to account for the area distortion a
	// uniform scale introduces (spec.md's power bookkeeping: area
	// scales with the square of a uniform linear scale).
	Power float64
}

// NewPreparedInstance binds pack under transform. distributionTotal is
// the wrapped pack's PowerDistribution.Total() (0 if the pack has no
// emitters), used to precompute Power once rather than on every query.
func NewPreparedInstance(pack *PreparedPack, transform geometry.Affine, distributionTotal float64) *PreparedInstance {
	scale, ok := transform.UniformScaleMagnitude()
	if !ok {
		panic("instance: non-uniform scale reached NewPreparedInstance; prepare must reject this earlier")
	}
	inst := &PreparedInstance{
		Pack:             pack,
		forwardTransform: transform,
		inverseTransform: transform.Invert(),
		forwardScale:     scale,
		inverseScale:     1 / scale,
		Power:            distributionTotal * scale * scale,
	}
	inst.worldBounds = pack.GetTransformedAABB(transform)
	return inst
}

// WorldAABB returns this instance's bounding box in its parent's
// space, precomputed at construction time.
func (inst *PreparedInstance) WorldAABB() geometry.AABB {
	return inst.worldBounds
}

// ForwardTransform returns the instance's local-to-parent transform.
func (inst *PreparedInstance) ForwardTransform() geometry.Affine {
	return inst.forwardTransform
}

// InverseTransform returns the instance's parent-to-local transform.
func (inst *PreparedInstance) InverseTransform() geometry.Affine {
	return inst.inverseTransform
}

func localInvDirection(v geometry.Float3) geometry.Float3 {
	recip := func(x float64) float64 {
		if x == 0 {
			return math.Inf(1)
		}
		return 1 / x
	}
	return geometry.Float3{X: recip(v.X), Y: recip(v.Y), Z: recip(v.Z)}
}

// Trace implements spec §4.4's instance-traversal algorithm:
//  1. Save the parent-space ray.
//  2. Transform it into this instance's local space, deliberately
//     leaving the local direction unnormalized (magnitude
//     inverseScale) rather than renormalizing it to unit length.
//  3. Delegate to the wrapped pack's aggregator.
//  4. Restore the parent-space ray.
//
// Leaving the local direction unnormalized makes the ray parameter t
// invariant across the instance boundary: forward(origin' + t*direction')
// equals origin + t*direction for every t, since the forward and
// inverse transforms are exact inverses of each other. That identity
// is what lets q.Distance pass through untouched instead of needing a
// forwardScale/inverseScale conversion on the way in and out — the
// conversion both cancel against the unnormalized direction's own
// implicit scale factor, so applying either in addition to leaving
// the direction unnormalized double-counts the scale and produces the
// wrong hit distance. forwardScale/inverseScale remain useful
// elsewhere (Power bookkeeping), just not here.
//
// The instance token itself is pushed onto q.Current by the caller
// (PreparedPack.IntersectLeaf), so Trace only manages the ray state,
// not the hierarchy path.
func (inst *PreparedInstance) Trace(q *prim.TraceQuery) bool {
	savedRay := q.Ray
	savedInv := q.InvDirection
	savedDistance := q.Distance

	localOrigin := inst.inverseTransform.TransformPoint(savedRay.Origin)
	localDirection := inst.inverseTransform.TransformVector(savedRay.Direction)
	q.Ray = geometry.Ray{Origin: localOrigin, Direction: localDirection}
	q.InvDirection = localInvDirection(localDirection)

	inst.Pack.Trace(q)

	hit := q.Distance < savedDistance
	q.Ray = savedRay
	q.InvDirection = savedInv
	return hit
}

// Occlude mirrors Trace for any-hit queries.
func (inst *PreparedInstance) Occlude(q *prim.OccludeQuery) bool {
	savedRay := q.Ray
	savedInv := q.InvDirection

	localOrigin := inst.inverseTransform.TransformPoint(savedRay.Origin)
	localDirection := inst.inverseTransform.TransformVector(savedRay.Direction)
	q.Ray = geometry.Ray{Origin: localOrigin, Direction: localDirection}
	q.InvDirection = localInvDirection(localDirection)

	hit := inst.Pack.Occlude(q)

	q.Ray = savedRay
	q.InvDirection = savedInv
	return hit
}
