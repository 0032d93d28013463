// SPDX-License-Identifier: Unlicense OR MIT

package device

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"echorenderer/render"
)

// Device owns N TileWorkers (N approx. hardware concurrency, spec
// §5) and drives them across a buffer's full tile grid, propagating
// the first worker error and supporting whole-render cancellation
// through context — the same shape `golang.org/x/sync/errgroup` gives
// any fan-out-then-join goroutine pool, here specialized to tiles
// instead of arbitrary tasks.
type Device struct {
	workers []*TileWorker
	buffer  *render.RenderBuffer
	profile EvaluatorProfile
}

// NewDevice builds a Device with workerCount TileWorkers (runtime.NumCPU()
// if workerCount <= 0) rendering scene into buffer through camera.
func NewDevice(workerCount int, profile EvaluatorProfile, scene *render.Scene, buffer *render.RenderBuffer, camera Camera) *Device {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	d := &Device{
		buffer:  buffer,
		profile: profile,
	}
	for i := 0; i < workerCount; i++ {
		d.workers = append(d.workers, NewTileWorker(i, profile, scene, buffer, camera))
	}
	return d
}

// Workers returns the Device's TileWorkers, e.g. to report per-worker
// progress (CompletedPixel/TotalPixel) to a caller.
func (d *Device) Workers() []*TileWorker {
	return d.workers
}

// tileOffsets enumerates every tile origin covering the buffer in
// row-major order (spec §4.9's row-major tile traversal).
func (d *Device) tileOffsets() [][2]int {
	var offsets [][2]int
	size := d.profile.TileSize
	for y := 0; y < d.buffer.Height(); y += size {
		for x := 0; x < d.buffer.Width(); x += size {
			offsets = append(offsets, [2]int{x, y})
		}
	}
	return offsets
}

// Render dispatches every tile across the Device's worker pool and
// blocks until the whole buffer is rendered, an error occurs, or ctx
// is canceled. Tiles may complete out of order; the render buffer
// tolerates concurrent writes to disjoint positions (spec §5). Each
// worker pulls its next tile off a shared queue as soon as it
// finishes the last one, rather than owning a fixed static slice of
// tiles, so a fast worker does proportionally more of the image.
func (d *Device) Render(ctx context.Context) error {
	offsets := d.tileOffsets()
	queue := make(chan [2]int, len(offsets))
	for _, offset := range offsets {
		queue <- offset
	}
	close(queue)

	group, ctx := errgroup.WithContext(ctx)
	for _, w := range d.workers {
		w := w
		group.Go(func() error {
			return d.drive(ctx, w, queue)
		})
	}
	return group.Wait()
}

// drive pulls tiles off queue and runs w against each one until the
// queue is drained or ctx is canceled.
func (d *Device) drive(ctx context.Context, w *TileWorker, queue <-chan [2]int) error {
	for {
		select {
		case <-ctx.Done():
			w.Abort()
			return ctx.Err()
		case offset, ok := <-queue:
			if !ok {
				return nil
			}
			if err := d.runOne(ctx, w, offset); err != nil {
				return err
			}
		}
	}
}

// runOne resets w onto offset, dispatches it, and blocks until that
// one tile completes or ctx is canceled, in which case w is aborted.
func (d *Device) runOne(ctx context.Context, w *TileWorker, offset [2]int) error {
	if err := w.Reset(offset, d.profile.TileSize); err != nil {
		return err
	}
	done := make(chan struct{})
	w.OnWorkCompleted = func(*TileWorker) { close(done) }
	if err := w.Dispatch(); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		w.Abort()
		return ctx.Err()
	}
}
