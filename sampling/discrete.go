// SPDX-License-Identifier: Unlicense OR MIT

package sampling

import (
	"sort"

	"echorenderer/geometry"
)

// Discrete1D is a weighted-segment sampler over a finite set of
// indices: Pick(u) selects index i with probability proportional to
// weights[i], in O(log n) via the cumulative-distribution table.
type Discrete1D struct {
	cdf    []float64 // cdf[i] = sum(weights[0..i]), cdf[n-1] == total
	total  float64
}

// NewDiscrete1D builds a Discrete1D over weights. Zero-weight entries
// are retained (they simply have zero probability of being picked) so
// indices stay stable with the caller's array.
func NewDiscrete1D(weights []float64) *Discrete1D {
	cdf := make([]float64, len(weights))
	var running float64
	for i, w := range weights {
		if w < 0 {
			w = 0
		}
		running += w
		cdf[i] = running
	}
	return &Discrete1D{cdf: cdf, total: running}
}

// Total returns the sum of all weights.
func (d *Discrete1D) Total() float64 {
	return d.total
}

// Pick selects an index using u in [0, 1); pdf is the selection
// probability (0 if the distribution has no weight at all, i.e.
// Total() == 0).
func (d *Discrete1D) Pick(u geometry.Sample1D) (index int, pdf float64) {
	if d.total <= 0 || len(d.cdf) == 0 {
		return 0, 0
	}
	target := float64(u) * d.total
	i := sort.Search(len(d.cdf), func(i int) bool { return d.cdf[i] > target })
	if i >= len(d.cdf) {
		i = len(d.cdf) - 1
	}
	w := d.cdf[i]
	if i > 0 {
		w -= d.cdf[i-1]
	}
	return i, w / d.total
}

// ProbabilityOf returns the selection probability of index i.
func (d *Discrete1D) ProbabilityOf(i int) float64 {
	if d.total <= 0 {
		return 0
	}
	w := d.cdf[i]
	if i > 0 {
		w -= d.cdf[i-1]
	}
	return w / d.total
}

// Discrete2D is a 2D discrete distribution built as a marginal over
// rows and, per selected row, a conditional over columns (spec §4.8),
// used for importance-sampling an environment map's luminance.
type Discrete2D struct {
	width, height int
	marginal      *Discrete1D
	conditional   []*Discrete1D // one per row
}

// NewDiscrete2D builds a Discrete2D from a row-major weight grid of
// size width*height.
func NewDiscrete2D(weights []float64, width, height int) *Discrete2D {
	rowTotals := make([]float64, height)
	conditional := make([]*Discrete1D, height)
	for y := 0; y < height; y++ {
		row := weights[y*width : (y+1)*width]
		conditional[y] = NewDiscrete1D(row)
		rowTotals[y] = conditional[y].Total()
	}
	return &Discrete2D{
		width:       width,
		height:      height,
		marginal:    NewDiscrete1D(rowTotals),
		conditional: conditional,
	}
}

// Pick draws (u, v) with combined pdf = pdf(row) * pdf(column | row) /
// (cell area), returning normalized [0,1)x[0,1) coordinates plus the
// joint pdf over that unit square.
func (d *Discrete2D) Pick(sample geometry.Sample2D) (uv geometry.Sample2D, pdf float64) {
	row, rowPdf := d.marginal.Pick(geometry.Sample1D(sample.V))
	if rowPdf == 0 {
		return geometry.Sample2D{}, 0
	}
	col, colPdf := d.conditional[row].Pick(geometry.Sample1D(sample.U))
	if colPdf == 0 {
		return geometry.Sample2D{}, 0
	}
	uv = geometry.Sample2D{
		U: (float64(col) + 0.5) / float64(d.width),
		V: (float64(row) + 0.5) / float64(d.height),
	}
	pdf = rowPdf * colPdf * float64(d.width*d.height)
	return uv, pdf
}

// Density returns the pdf over the unit square at normalized (u, v),
// used to evaluate the pdf of a direction chosen some other way (spec
// §4.8 "Evaluation of a given direction inverts the mapping").
func (d *Discrete2D) Density(uv geometry.Sample2D) float64 {
	col := int(uv.U * float64(d.width))
	row := int(uv.V * float64(d.height))
	if col < 0 || col >= d.width || row < 0 || row >= d.height {
		return 0
	}
	rowPdf := d.marginal.ProbabilityOf(row)
	colPdf := d.conditional[row].ProbabilityOf(col)
	return rowPdf * colPdf * float64(d.width*d.height)
}

// Total returns the sum of all weights in the grid.
func (d *Discrete2D) Total() float64 {
	return d.marginal.Total()
}
