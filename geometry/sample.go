// SPDX-License-Identifier: Unlicense OR MIT

package geometry

// Sample1D is a single scalar sample in [0, 1), drawn from a
// sampling.ContinuousDistribution.
type Sample1D float64

// Sample2D is a pair of scalar samples in [0, 1)x[0, 1).
type Sample2D struct {
	U, V float64
}

// Probable pairs a sampled value with its probability density. By
// convention Pdf == 0 marks a degenerate (unusable) sample: callers
// must check Pdf before dividing by it.
type Probable[T any] struct {
	Value T
	Pdf   float64
}

// NewProbable constructs a Probable, clamping a negative pdf to zero.
func NewProbable[T any](value T, pdf float64) Probable[T] {
	if pdf < 0 {
		pdf = 0
	}
	return Probable[T]{Value: value, Pdf: pdf}
}

// Degenerate reports whether p carries no usable density.
func (p Probable[T]) Degenerate() bool {
	return p.Pdf <= 0
}

// Summation accumulates float64 values with Kahan compensation, for
// adding many small contributions where naive summation would lose
// precision. No other package in this module uses it.
type Summation struct {
	sum, compensation float64
}

// Add folds x into the running sum.
func (s *Summation) Add(x float64) {
	y := x - s.compensation
	t := s.sum + y
	s.compensation = (t - s.sum) - y
	s.sum = t
}

// Total returns the compensated running sum.
func (s *Summation) Total() float64 {
	return s.sum
}
