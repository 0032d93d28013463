// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"math"

	"echorenderer/colorspace"
	"echorenderer/geometry"
)

// Pixel is the per-pixel online accumulator (spec §4.9): a Welford
// mean/variance estimator over accepted radiance samples, plus
// separate running sums for the albedo and normal auxiliary layers.
// It is thread-local during one tile worker's pass over its pixels;
// nothing here is safe for concurrent use by more than one goroutine.
type Pixel struct {
	mean      colorspace.RGB128
	m2        colorspace.RGB128
	count     int
	rejected  int
	albedoSum colorspace.RGB128
	normalSum geometry.Float3
}

// Accumulate folds one radiance sample into the online estimator
// (spec §4.9's Welford update: mean += (x-mean)/n; M2 += (x-meanOld)*(x-mean)).
// Non-finite samples are rejected (counted, not folded in) rather than
// poisoning the running mean/variance.
func (p *Pixel) Accumulate(sample colorspace.RGB128) bool {
	if !sample.IsFinite() {
		p.rejected++
		return false
	}
	p.count++
	n := float64(p.count)
	delta := sample.Add(p.mean.Scale(-1))
	p.mean = p.mean.Add(delta.Scale(1 / n))
	deltaNew := sample.Add(p.mean.Scale(-1))
	p.m2 = p.m2.Add(delta.Mul(deltaNew))
	return true
}

// AccumulateAuxiliary folds one albedo sample and one world-space
// normal sample into their respective running sums (spec §4.9:
// "separate running sums for albedo and normal").
func (p *Pixel) AccumulateAuxiliary(albedo colorspace.RGB128, normal geometry.Float3) {
	p.albedoSum = p.albedoSum.Add(albedo)
	p.normalSum = p.normalSum.Add(normal)
}

// Count returns the number of accepted samples.
func (p *Pixel) Count() int { return p.count }

// Rejected returns the number of non-finite samples rejected.
func (p *Pixel) Rejected() int { return p.rejected }

// Mean returns the current radiance mean estimate.
func (p *Pixel) Mean() colorspace.RGB128 { return p.mean }

// Albedo returns the mean of the accumulated albedo samples.
func (p *Pixel) Albedo() colorspace.RGB128 {
	if p.count == 0 {
		return colorspace.Black
	}
	return p.albedoSum.Scale(1 / float64(p.count))
}

// Normal returns the normalized mean of the accumulated normal
// samples (spec §4.9: "normal is normalized at the end").
func (p *Pixel) Normal() geometry.Float3 {
	if p.normalSum == (geometry.Float3{}) {
		return geometry.Float3{}
	}
	return p.normalSum.Normalized()
}

// Deviation returns the normalized standard deviation used to drive
// adaptive sampling (spec §4.9: sqrt(M2.avg/n) / max(mean.avg, 0.3)).
func (p *Pixel) Deviation() float64 {
	if p.count == 0 {
		return 0
	}
	variance := p.m2.Average() / float64(p.count)
	return math.Sqrt(math.Max(0, variance)) / math.Max(p.mean.Average(), 0.3)
}
