// SPDX-License-Identifier: Unlicense OR MIT

package accel

import (
	"math"
	"math/rand"
	"testing"

	"echorenderer/geometry"
	"echorenderer/prim"
	"echorenderer/token"
)

// sphereSource is a minimal Source backed by a flat sphere array, used
// to exercise the three Aggregator implementations identically
// without pulling in the instance package (which itself depends on
// accel).
type sphereSource struct {
	spheres []prim.Sphere
}

func (s sphereSource) IntersectLeaf(tok token.EntityToken, q *prim.TraceQuery) bool {
	sph := s.spheres[tok.Index()]
	q.Current.Push(tok)
	defer q.Current.Pop()
	if dist, hit := sph.Intersect(q.Ray, q.Distance, false); hit {
		q.RecordHit(dist, geometry.Sample2D{})
		return true
	}
	return false
}

func (s sphereSource) OccludeLeaf(tok token.EntityToken, q *prim.OccludeQuery) bool {
	sph := s.spheres[tok.Index()]
	return sph.Occlude(q.Ray, q.Travel)
}

func (s sphereSource) LeafAABB(tok token.EntityToken) geometry.AABB {
	return s.spheres[tok.Index()].AABB()
}

func (s sphereSource) LeafCost(token.EntityToken) int { return 1 }

func randomScene(n int, seed int64) (sphereSource, []Leaf) {
	rng := rand.New(rand.NewSource(seed))
	src := sphereSource{spheres: make([]prim.Sphere, n)}
	leaves := make([]Leaf, n)
	for i := 0; i < n; i++ {
		center := geometry.Float3{
			X: rng.Float64()*200 - 100,
			Y: rng.Float64()*200 - 100,
			Z: rng.Float64()*200 - 100,
		}
		radius := 0.5 + rng.Float64()*2
		sph := prim.Sphere{Center: center, Radius: radius}
		src.spheres[i] = sph
		tok := token.NewEntityToken(token.KindSphere, i)
		leaves[i] = Leaf{Token: tok, Box: sph.AABB()}
	}
	return src, leaves
}

func traceWith(agg Aggregator, source Source, ray geometry.Ray) (float64, bool) {
	q := prim.NewTraceQuery(ray, math.Inf(1), token.Hierarchy{})
	agg.Trace(source, &q)
	return q.Distance, !q.Token.IsEmpty()
}

func TestAggregatorParity(t *testing.T) {
	src, leaves := randomScene(2000, 42)
	linearAgg := Build(KindLinear, leaves)
	bvhAgg := Build(KindBVH, leaves)
	qbvhAgg := Build(KindQBVH, leaves)

	rng := rand.New(rand.NewSource(7))
	var hitsLinear, hitsBVH, hitsQBVH int
	var sumLinear, sumBVH, sumQBVH float64

	for i := 0; i < 2000; i++ {
		origin := geometry.Float3{
			X: rng.Float64()*200 - 100,
			Y: rng.Float64()*200 - 100,
			Z: rng.Float64()*200 - 100,
		}
		dir := geometry.Float3{
			X: rng.Float64()*2 - 1,
			Y: rng.Float64()*2 - 1,
			Z: rng.Float64()*2 - 1,
		}.Normalized()
		ray := geometry.NewRay(origin, dir)

		dl, hl := traceWith(linearAgg, src, ray)
		db, hb := traceWith(bvhAgg, src, ray)
		dq, hq := traceWith(qbvhAgg, src, ray)

		if hl {
			hitsLinear++
			sumLinear += dl
		}
		if hb {
			hitsBVH++
			sumBVH += db
		}
		if hq {
			hitsQBVH++
			sumQBVH += dq
		}
	}

	if hitsLinear != hitsBVH || hitsLinear != hitsQBVH {
		t.Errorf("hit counts differ: linear=%d bvh=%d qbvh=%d", hitsLinear, hitsBVH, hitsQBVH)
	}
	if math.Abs(sumLinear-sumBVH) > 1e-3*math.Max(1, sumLinear) {
		t.Errorf("distance sums differ: linear=%v bvh=%v", sumLinear, sumBVH)
	}
	if math.Abs(sumLinear-sumQBVH) > 1e-3*math.Max(1, sumLinear) {
		t.Errorf("distance sums differ: linear=%v qbvh=%v", sumLinear, sumQBVH)
	}
}

func TestAggregatorSinglePrimitiveEqualsDirect(t *testing.T) {
	sph := prim.Sphere{Center: geometry.Float3{}, Radius: 1}
	src := sphereSource{spheres: []prim.Sphere{sph}}
	leaves := []Leaf{{Token: token.NewEntityToken(token.KindSphere, 0), Box: sph.AABB()}}

	ray := geometry.NewRay(geometry.Float3{X: 0, Y: 0, Z: -5}, geometry.Float3{X: 0, Y: 0, Z: 1})
	want, _ := sph.Intersect(ray, math.Inf(1), false)

	for _, kind := range []Kind{KindLinear, KindBVH, KindQBVH} {
		agg := Build(kind, leaves)
		got, hit := traceWith(agg, src, ray)
		if !hit || math.Abs(got-want) > 1e-9 {
			t.Errorf("%v: got (%v, %v), want (%v, true)", kind, got, hit, want)
		}
	}
}

func TestAggregatorEmptyMisses(t *testing.T) {
	src := sphereSource{}
	for _, kind := range []Kind{KindLinear, KindBVH, KindQBVH} {
		agg := Build(kind, nil)
		ray := geometry.NewRay(geometry.Float3{}, geometry.Float3{X: 0, Y: 0, Z: 1})
		_, hit := traceWith(agg, src, ray)
		if hit {
			t.Errorf("%v: expected miss on empty aggregator", kind)
		}
	}
}

func TestProfileAutoSelection(t *testing.T) {
	p := Profile{}
	if k := p.Select(10, false); k != KindLinear {
		t.Errorf("Select(10, false) = %v, want linear", k)
	}
	if k := p.Select(10, true); k != KindBVH {
		t.Errorf("Select(10, true) = %v, want bvh (LinearForInstances defaults false)", k)
	}
	if k := p.Select(100, false); k != KindBVH {
		t.Errorf("Select(100, false) = %v, want bvh", k)
	}
	if k := p.Select(1000, false); k != KindQBVH {
		t.Errorf("Select(1000, false) = %v, want qbvh", k)
	}
	explicit := Profile{Explicit: KindLinear}
	if k := explicit.Select(10000, true); k != KindLinear {
		t.Errorf("explicit override not honored: got %v", k)
	}
}
