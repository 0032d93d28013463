// SPDX-License-Identifier: Unlicense OR MIT

// Package sampling implements the renderer's per-pixel sample stream
// (stratified and Latin-hypercube continuous patterns, a golden-ratio
// sub-pixel spiral) and the precomputed discrete distributions used
// for area-light and environment-map importance sampling.
package sampling

import (
	"math/rand"

	"echorenderer/geometry"
)

// Pattern selects how ContinuousDistribution fills its precomputed
// per-pixel sample arrays.
type Pattern int

const (
	// PatternStratified divides the unit interval/square into a grid
	// of equal strata and jitters one sample per stratum.
	PatternStratified Pattern = iota
	// PatternLatinHypercube shuffles each axis independently so that
	// array samples within a pixel hit one row and one column each.
	PatternLatinHypercube
)

// ContinuousDistribution is a per-worker stream of Sample1D/Sample2D
// values. Its lifecycle (spec §4.5): BeginPixel reseeds and refills
// the precomputed arrays, BeginSample selects which row of those
// arrays the next Next1D/Next2D calls draw from, and samples beyond
// the precomputed count fall back to the underlying PRNG.
type ContinuousDistribution struct {
	pattern  Pattern
	jitter   bool
	rng      *rand.Rand
	epoch    uint64
	position [2]int

	singles1D []float64
	singles2D []geometry.Sample2D
	sampleSize [2]int // Config.ArrayGrid, kept for Replicate; no fill reads it

	sampleIndex int
	next1D      int
	next2D      int
}

// Config controls the fill pattern, jitter and how many single samples
// per pixel are precomputed. ArrayGrid is stored and carried over by
// Replicate, but no fill consults it: the stratified 2D fill derives a
// near-square grid from SinglesPerPixel, and Array2D uses an n-by-n
// Latin hypercube.
type Config struct {
	Pattern       Pattern
	Jitter        bool
	SinglesPerPixel int
	ArrayGrid     [2]int // sampleSize.x * sampleSize.y cells; recorded only, see above
}

// New constructs a ContinuousDistribution seeded from seed.
func New(cfg Config, seed uint64) *ContinuousDistribution {
	d := &ContinuousDistribution{
		pattern:    cfg.Pattern,
		jitter:     cfg.Jitter,
		rng:        rand.New(rand.NewSource(int64(seed))),
		sampleSize: cfg.ArrayGrid,
	}
	d.singles1D = make([]float64, cfg.SinglesPerPixel)
	d.singles2D = make([]geometry.Sample2D, cfg.SinglesPerPixel)
	return d
}

// Replicate clones d's configuration for an independently-seeded new
// worker thread (spec §4.5). The clone shares no mutable state with d.
func (d *ContinuousDistribution) Replicate(seed uint64) *ContinuousDistribution {
	return New(Config{
		Pattern:         d.pattern,
		Jitter:          d.jitter,
		SinglesPerPixel: len(d.singles1D),
		ArrayGrid:       d.sampleSize,
	}, seed)
}

// BeginPixel reseeds the PRNG from (position, epoch) and refills the
// precomputed single-sample arrays.
func (d *ContinuousDistribution) BeginPixel(position [2]int, epoch uint64) {
	d.position = position
	d.epoch = epoch
	mix := mixSeed(position, epoch)
	d.rng = rand.New(rand.NewSource(int64(mix)))

	fill1D(d.rng, d.singles1D, d.jitter)
	if d.pattern == PatternLatinHypercube {
		copy(d.singles2D, d.Array2D(len(d.singles2D)))
	} else {
		fill2D(d.rng, d.singles2D, d.jitter)
	}
}

// BeginSample resets the per-sample cursors for pixel sample index i.
func (d *ContinuousDistribution) BeginSample(i int) {
	d.sampleIndex = i
	d.next1D = 0
	d.next2D = 0
}

// Next1D returns the next 1D sample for the current pixel sample,
// drawing from the precomputed array while the sample index is in
// range and falling back to uniform PRNG draws afterward.
func (d *ContinuousDistribution) Next1D() geometry.Sample1D {
	if d.sampleIndex < len(d.singles1D) && d.next1D == 0 {
		d.next1D++
		return geometry.Sample1D(d.singles1D[d.sampleIndex])
	}
	d.next1D++
	return geometry.Sample1D(d.rng.Float64())
}

// Next2D returns the next 2D sample, per the same precompute/fallback
// rule as Next1D: only the first call per pixel sample reads the
// precomputed array, and every later call returns a uniform PRNG pair.
func (d *ContinuousDistribution) Next2D() geometry.Sample2D {
	if d.sampleIndex < len(d.singles2D) && d.next2D == 0 {
		d.next2D++
		return d.singles2D[d.sampleIndex]
	}
	d.next2D++
	return geometry.Sample2D{U: d.rng.Float64(), V: d.rng.Float64()}
}

// Array2D draws n Latin-hypercube-stratified 2D samples for a single
// array request within one pixel sample (e.g. per-bounce BSDF
// directions), per spec §4.5: shuffle [0,n) independently on each
// axis, pair index-wise, offset by jitter.
func (d *ContinuousDistribution) Array2D(n int) []geometry.Sample2D {
	out := make([]geometry.Sample2D, n)
	xs := permutation(d.rng, n)
	ys := permutation(d.rng, n)
	for i := 0; i < n; i++ {
		jx, jy := 0.5, 0.5
		if d.jitter {
			jx, jy = d.rng.Float64(), d.rng.Float64()
		}
		out[i] = geometry.Sample2D{
			U: (float64(xs[i]) + jx) / float64(n),
			V: (float64(ys[i]) + jy) / float64(n),
		}
	}
	return out
}

func permutation(rng *rand.Rand, n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	rng.Shuffle(n, func(i, j int) { p[i], p[j] = p[j], p[i] })
	return p
}

func fill1D(rng *rand.Rand, dst []float64, jitter bool) {
	n := len(dst)
	if n == 0 {
		return
	}
	for i := range dst {
		j := 0.5
		if jitter {
			j = rng.Float64()
		}
		dst[i] = (float64(i) + j) / float64(n)
	}
	rng.Shuffle(n, func(i, j int) { dst[i], dst[j] = dst[j], dst[i] })
}

func fill2D(rng *rand.Rand, dst []geometry.Sample2D, jitter bool) {
	n := len(dst)
	if n == 0 {
		return
	}
	// Approximate the grid as square-ish: gx*gy >= n.
	gx := 1
	for gx*gx < n {
		gx++
	}
	gy := (n + gx - 1) / gx
	i := 0
	for y := 0; y < gy && i < n; y++ {
		for x := 0; x < gx && i < n; x++ {
			jx, jy := 0.5, 0.5
			if jitter {
				jx, jy = rng.Float64(), rng.Float64()
			}
			dst[i] = geometry.Sample2D{U: (float64(x) + jx) / float64(gx), V: (float64(y) + jy) / float64(gy)}
			i++
		}
	}
	rng.Shuffle(n, func(i, j int) { dst[i], dst[j] = dst[j], dst[i] })
}

func mixSeed(position [2]int, epoch uint64) uint64 {
	h := uint64(1469598103934665603) // FNV offset basis
	mix := func(x uint64) {
		h ^= x
		h *= 1099511628211
	}
	mix(uint64(uint32(position[0])))
	mix(uint64(uint32(position[1])))
	mix(epoch)
	return h
}
