// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"math"
	"sync/atomic"

	"echorenderer/geometry"
)

// AcceleratorQualityWorker is the debug evaluator from spec §4.7: it
// sums Aggregator.TraceCost across every pixel it's asked to evaluate
// and reports three channels per call: this pixel's cost, the running
// total across every worker sharing it, and the running sample count.
// The running counters are atomic since every tile worker thread
// shares one instance (spec §5 "Global counters ... use atomic add").
type AcceleratorQualityWorker struct {
	Scene *Scene

	totalCost   uint64
	totalSample uint64
}

// NewAcceleratorQualityWorker builds a quality worker over scene.
func NewAcceleratorQualityWorker(scene *Scene) *AcceleratorQualityWorker {
	return &AcceleratorQualityWorker{Scene: scene}
}

// Evaluate traces ray once purely to measure traversal cost, returning
// (cost_this_pixel, sum_so_far, sample_count_so_far).
func (w *AcceleratorQualityWorker) Evaluate(ray geometry.Ray) (cost int, sumSoFar uint64, sampleCountSoFar uint64) {
	distance := math.Inf(1)
	cost = w.Scene.Root.TraceCost(ray, &distance)

	sumSoFar = atomic.AddUint64(&w.totalCost, uint64(cost))
	sampleCountSoFar = atomic.AddUint64(&w.totalSample, 1)
	return cost, sumSoFar, sampleCountSoFar
}
