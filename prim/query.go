// SPDX-License-Identifier: Unlicense OR MIT

package prim

import (
	"math"

	"echorenderer/geometry"
	"echorenderer/token"
)

// TraceQuery drives a nearest-hit search through the aggregator and
// instance layers. Ray starts in parent space and is transformed into
// local space as instances are pushed (instance.PreparedInstance.Trace);
// Distance is an upper bound that only ever shrinks.
type TraceQuery struct {
	Ray          geometry.Ray
	InvDirection geometry.Float3
	Distance     float64
	UV           geometry.Sample2D
	Ignore       token.Hierarchy
	Current      token.Hierarchy
	Token        token.Hierarchy
}

// NewTraceQuery builds a TraceQuery for ray, bounded by distance
// (use math.Inf(1) for an unbounded search), ignoring the primitive
// path in ignore (pass a zero-value Hierarchy for none).
func NewTraceQuery(ray geometry.Ray, distance float64, ignore token.Hierarchy) TraceQuery {
	return TraceQuery{
		Ray:          ray,
		InvDirection: reciprocal(ray.Direction),
		Distance:     distance,
		Ignore:       ignore,
	}
}

// RecordHit updates the query with a strictly-nearer hit.
func (q *TraceQuery) RecordHit(distance float64, uv geometry.Sample2D) {
	q.Distance = distance
	q.UV = uv
	q.Token = q.Current.Clone()
}

// IsIgnored reports whether q.Current (with candidate appended) names
// the same full path as q.Ignore, i.e. this candidate must be skipped
// (spec §4.4: the ignore path compares the full TokenHierarchy, not
// just the leaf primitive).
func (q *TraceQuery) IsIgnored(candidate token.EntityToken) bool {
	if q.Ignore.Len() != q.Current.Len()+1 {
		return false
	}
	for i := 0; i < q.Current.Len(); i++ {
		if q.Ignore.At(i) != q.Current.At(i) {
			return false
		}
	}
	return q.Ignore.At(q.Current.Len()) == candidate
}

// OccludeQuery drives an any-hit-before-limit search.
type OccludeQuery struct {
	Ray          geometry.Ray
	InvDirection geometry.Float3
	Travel       float64
	Ignore       token.Hierarchy
	Current      token.Hierarchy
}

// NewOccludeQuery builds an OccludeQuery for ray, occluded by anything
// closer than travel, ignoring the path in ignore.
func NewOccludeQuery(ray geometry.Ray, travel float64, ignore token.Hierarchy) OccludeQuery {
	return OccludeQuery{
		Ray:          ray,
		InvDirection: reciprocal(ray.Direction),
		Travel:       travel,
		Ignore:       ignore,
	}
}

// IsIgnored mirrors TraceQuery.IsIgnored.
func (q *OccludeQuery) IsIgnored(candidate token.EntityToken) bool {
	if q.Ignore.Len() != q.Current.Len()+1 {
		return false
	}
	for i := 0; i < q.Current.Len(); i++ {
		if q.Ignore.At(i) != q.Current.At(i) {
			return false
		}
	}
	return q.Ignore.At(q.Current.Len()) == candidate
}

func reciprocal(v geometry.Float3) geometry.Float3 {
	recip := func(x float64) float64 {
		if x == 0 {
			return math.Inf(1)
		}
		return 1 / x
	}
	return geometry.Float3{X: recip(v.X), Y: recip(v.Y), Z: recip(v.Z)}
}
