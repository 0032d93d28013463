// SPDX-License-Identifier: Unlicense OR MIT

// Package arena implements the per-thread bump allocator the material
// layer uses to populate a Touch's scattering-function set without a
// per-hit heap allocation.
//
// The growth strategy (append into a reused backing slice, never
// shrink, reset a cursor instead of freeing) is adapted from gio's
// internal/ops encoder, which grows one reused []byte per frame rather
// than allocating fresh buffers; here the buffer holds opaque typed
// slots reset once per pixel sample instead of once per frame.
package arena

// Allocator is a single-threaded bump allocator. Every value placed in
// it must be trivially destructible: Restart drops all references
// without running finalizers (spec §5 "Arena contract").
type Allocator struct {
	slots []any
	used  int
}

// New returns an Allocator pre-sized for capacity slots, avoiding
// reallocation during the first few pixel samples.
func New(capacity int) *Allocator {
	return &Allocator{slots: make([]any, 0, capacity)}
}

// Alloc reserves one slot holding value and returns its index, stable
// until the next Restart.
func Alloc[T any](a *Allocator, value T) int {
	if a.used < len(a.slots) {
		a.slots[a.used] = value
	} else {
		a.slots = append(a.slots, value)
	}
	idx := a.used
	a.used++
	return idx
}

// Get retrieves the value stored at idx, which must have come from a
// call to Alloc on the same Allocator since its last Restart.
func Get[T any](a *Allocator, idx int) T {
	return a.slots[idx].(T)
}

// Restart resets the bump pointer to the beginning without releasing
// the backing slice, so the next pixel sample's allocations reuse the
// same storage. It does not call any destructor.
func (a *Allocator) Restart() {
	a.used = 0
}

// Used reports how many slots are currently live, useful for tests
// asserting the arena is actually being reset between samples.
func (a *Allocator) Used() int {
	return a.used
}
