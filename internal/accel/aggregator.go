// SPDX-License-Identifier: Unlicense OR MIT

// Package accel implements the ray aggregator family (spec §4.3):
// Linear, BVH, and QBVH variants sharing one Aggregator contract, plus
// the SAH-driven builder and the profile-based auto-selection policy.
//
// An Aggregator holds only bounding-volume structure over a set of
// token.EntityToken leaves; it never touches the primitive data that
// backs those tokens. Callers supply a Source implementation (the
// instance package's PreparedPack) at query time, which is how
// EchoRenderer breaks the otherwise-circular dependency between "the
// aggregator tests instanced content" and "instances are built from
// aggregators" (spec §9 "object graph with cycles").
package accel

import (
	"echorenderer/geometry"
	"echorenderer/prim"
	"echorenderer/token"
)

// Source resolves a leaf EntityToken to its actual geometry and
// performs the ray test against it. Implemented by instance.PreparedPack.
type Source interface {
	// IntersectLeaf tests the ray in q against the primitive or nested
	// instance named by tok, pushing tok onto q.Current for the
	// duration of the call and updating q via RecordHit on a nearer
	// hit. Returns whether a hit (nearer than q.Distance at call time)
	// was recorded.
	IntersectLeaf(tok token.EntityToken, q *prim.TraceQuery) bool
	// OccludeLeaf mirrors IntersectLeaf for occlusion queries.
	OccludeLeaf(tok token.EntityToken, q *prim.OccludeQuery) bool
	// LeafAABB returns the world(-of-this-pack)-space bounding box of
	// the primitive or nested instance named by tok.
	LeafAABB(tok token.EntityToken) geometry.AABB
	// LeafCost returns the relative intersection cost of tok, used by
	// TraceCost (1 for a primitive, >1 for a nested instance since it
	// recurses into another aggregator).
	LeafCost(tok token.EntityToken) int
}

// Aggregator answers nearest-hit and any-hit queries over a fixed set
// of leaves built once at preparation time and shared read-only by
// every concurrent caller afterward (spec §4.3's reentrancy
// requirement).
type Aggregator interface {
	// Trace narrows q to the nearest leaf hit at distance < q.Distance
	// on entry, respecting q.Ignore.
	Trace(source Source, q *prim.TraceQuery)
	// Occlude reports whether any leaf is hit before q.Travel.
	Occlude(source Source, q *prim.OccludeQuery) bool
	// TraceCost returns a count proportional to the boxes and
	// primitives tested tracing ray up to *distance, and narrows
	// *distance to the nearest hit found (used by the debug quality
	// worker, spec §4.7).
	TraceCost(source Source, ray geometry.Ray, distance *float64) int
	// GetTransformedAABB returns a conservative AABB of every leaf
	// under an affine transform, used to build a parent-level AABB for
	// an instance node (spec §4.3).
	GetTransformedAABB(source Source, transform geometry.Affine) geometry.AABB
}

// Kind names a concrete Aggregator implementation, used by
// Profile.Explicit to force a specific type instead of auto-selecting.
type Kind int

const (
	// KindAuto makes Profile.Select choose based on its thresholds
	// (the zero value, so an unset profile field means "auto"). Build
	// itself treats KindAuto as KindLinear.
	KindAuto Kind = iota
	KindLinear
	KindBVH
	KindQBVH
)

func (k Kind) String() string {
	switch k {
	case KindLinear:
		return "linear"
	case KindBVH:
		return "bvh"
	case KindQBVH:
		return "qbvh"
	default:
		return "auto"
	}
}

// Profile controls automatic aggregator selection (spec §4.3, §6
// "AcceleratorType"/"LinearForInstances").
type Profile struct {
	// Explicit forces a specific Kind; KindAuto (the zero value) defers
	// to the thresholds below.
	Explicit Kind
	// LinearForInstances allows the Linear aggregator even when the
	// pack being built contains nested instances; if false, a pack
	// with instances below the BVH threshold still gets a BVH.
	LinearForInstances bool
}

const (
	// BVHThreshold is the minimum primitive count for automatic BVH
	// selection (spec §4.3).
	BVHThreshold = 32
	// QBVHThreshold is the minimum primitive count for automatic QBVH
	// selection.
	QBVHThreshold = 512
)

// Select applies spec §4.3's auto-selection policy for a pack of
// `total` leaves, `hasInstances` of which include at least one nested
// instance.
func (p Profile) Select(total int, hasInstances bool) Kind {
	if p.Explicit != KindAuto {
		return p.Explicit
	}
	switch {
	case total >= QBVHThreshold:
		return KindQBVH
	case total >= BVHThreshold:
		return KindBVH
	case hasInstances && !p.LinearForInstances:
		return KindBVH
	default:
		return KindLinear
	}
}

// Leaf pairs a token with its bounding box, the input the Build
// functions consume (spec §4.1 "AABB assembly").
type Leaf struct {
	Token token.EntityToken
	Box   geometry.AABB
}

// Build constructs the Aggregator kind's Select picked, from leaves.
func Build(kind Kind, leaves []Leaf) Aggregator {
	switch kind {
	case KindBVH:
		return buildBVH(leaves)
	case KindQBVH:
		return buildQBVH(leaves)
	default:
		return buildLinear(leaves)
	}
}
