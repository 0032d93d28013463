// SPDX-License-Identifier: Unlicense OR MIT

package device

import (
	"math"
	"sync"
	"sync/atomic"

	"echorenderer/geometry"
	"echorenderer/internal/arena"
	"echorenderer/render"
	"echorenderer/sampling"
)

// TileWorker owns one dedicated goroutine bound to one tile of a
// RenderBuffer at a time (spec §4.9/§5): a manual-reset-event-style
// handshake (here a sync.Cond guarding a "dispatched" flag) wakes the
// goroutine when Dispatch is called, and a cooperative cancellation
// flag checked between pixel samples lets Abort unwind it cleanly
// without the os-thread-kill sledgehammer gio avoids for its own
// per-window event-loop goroutine (app/window.go).
type TileWorker struct {
	id         int
	evaluator  *render.Evaluator
	albedo     *render.AlbedoEvaluator
	profile    EvaluatorProfile
	buffer     *render.RenderBuffer
	camera     Camera
	spiral     []geometry.Sample2D
	arena      *arena.Allocator
	dist       *sampling.ContinuousDistribution

	// OnWorkCompleted is invoked (off the caller's goroutine) every
	// time the worker finishes one dispatched tile.
	OnWorkCompleted func(*TileWorker)

	mu         sync.Mutex
	cond       *sync.Cond
	state      State
	dispatched bool
	paused     bool
	stopped    bool
	started    bool
	done       chan struct{}

	offset        [2]int
	tileSize      int
	clippedWidth  int
	clippedHeight int

	cancel uint32 // atomic

	completedPixel  uint64 // atomic
	completedSample uint64 // atomic; every Evaluate call across both passes
	tick            uint64 // atomic; mixed into adaptive-pass seeding
}

// NewTileWorker builds a TileWorker with identity id, rendering
// against scene through evaluator/albedo, writing into buffer via
// camera's ray generation, governed by profile.
func NewTileWorker(id int, profile EvaluatorProfile, scene *render.Scene, buffer *render.RenderBuffer, camera Camera) *TileWorker {
	w := &TileWorker{
		id:        id,
		evaluator: render.NewEvaluator(scene, profile.BounceLimit),
		albedo:    render.NewAlbedoEvaluator(scene),
		profile:   profile,
		buffer:    buffer,
		camera:    camera,
		spiral:    sampling.SpiralOffsets(max1(profile.PixelSample)),
		arena:     arena.New(64),
		done:      make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	w.dist = sampling.New(sampling.Config{Pattern: sampling.PatternStratified, Jitter: true, SinglesPerPixel: 1}, mixWorkerSeed(id, 0))
	return w
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func mixWorkerSeed(id int, tick uint64) uint64 {
	h := uint64(1469598103934665603)
	h ^= uint64(uint32(id))
	h *= 1099511628211
	h ^= tick
	h *= 1099511628211
	return h
}

// State reports the worker's current lifecycle state.
func (w *TileWorker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// CompletedPixel returns the number of pixels the current (or most
// recently completed) tile has finished.
func (w *TileWorker) CompletedPixel() uint64 {
	return atomic.LoadUint64(&w.completedPixel)
}

// CompletedSample returns the total number of Evaluate calls (initial
// plus adaptive passes, across every pixel) the worker has performed
// since its last Reset (spec §5's global `completedSample` counter).
func (w *TileWorker) CompletedSample() uint64 {
	return atomic.LoadUint64(&w.completedSample)
}

// TotalPixel returns the clipped tile's pixel count (spec §4.9:
// "intersection of the [offset, offset+size) square with the buffer").
func (w *TileWorker) TotalPixel() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clippedWidth * w.clippedHeight
}

// Reset assigns a new tile origin and clears counters. Disallowed
// while the worker is Running.
func (w *TileWorker) Reset(offset [2]int, tileSize int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateRunning {
		return &InvalidStateError{Operation: "Reset", Current: w.state}
	}
	w.offset = offset
	w.tileSize = tileSize
	w.clippedWidth = clip(offset[0], tileSize, w.buffer.Width())
	w.clippedHeight = clip(offset[1], tileSize, w.buffer.Height())
	atomic.StoreUint64(&w.completedPixel, 0)
	atomic.StoreUint64(&w.completedSample, 0)
	w.state = StateUnassigned
	return nil
}

func clip(origin, size, bound int) int {
	if origin >= bound {
		return 0
	}
	room := bound - origin
	if size < room {
		return size
	}
	return room
}

// Dispatch starts the worker's background goroutine on first call and
// signals the dispatch event for the currently Reset tile.
func (w *TileWorker) Dispatch() error {
	w.mu.Lock()
	if w.state == StateRunning {
		w.mu.Unlock()
		return &InvalidStateError{Operation: "Dispatch", Current: w.state}
	}
	if !w.started {
		w.started = true
		go w.run()
	}
	w.state = StateRunning
	w.dispatched = true
	w.cond.Broadcast()
	w.mu.Unlock()
	return nil
}

// Pause requests the worker suspend between pixels; it transitions
// through Pausing to Paused once the in-flight pixel sample finishes.
func (w *TileWorker) Pause() {
	w.mu.Lock()
	if w.state == StateRunning {
		w.state = StatePausing
		w.paused = true
	}
	w.mu.Unlock()
}

// Resume releases a paused worker back to Running.
func (w *TileWorker) Resume() {
	w.mu.Lock()
	w.paused = false
	if w.state == StatePaused || w.state == StatePausing {
		w.state = StateRunning
	}
	w.cond.Broadcast()
	w.mu.Unlock()
}

// Abort cancels the worker's cooperative token, releases the dispatch
// wait, and joins the goroutine.
func (w *TileWorker) Abort() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	atomic.StoreUint32(&w.cancel, 1)
	w.state = StateAborting
	w.stopped = true
	w.paused = false
	w.cond.Broadcast()
	w.mu.Unlock()
	<-w.done
}

func (w *TileWorker) canceled() bool {
	return atomic.LoadUint32(&w.cancel) != 0
}

// await blocks until dispatched (the manual-reset event) or the
// worker is stopped, mirroring spec §5's Await(event) suspension
// point.
func (w *TileWorker) await() (ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for !w.dispatched && !w.stopped {
		w.state = StateAwaiting
		w.cond.Wait()
	}
	if w.stopped {
		return false
	}
	w.dispatched = false
	w.state = StateRunning
	return true
}

// checkSchedule is the per-sample cooperative suspension point (spec
// §5's CheckSchedule): it blocks while paused and reports whether the
// caller should keep going.
func (w *TileWorker) checkSchedule() bool {
	if w.canceled() {
		return false
	}
	w.mu.Lock()
	for w.paused && !w.stopped {
		w.state = StatePaused
		w.cond.Wait()
	}
	stopped := w.stopped
	if !stopped {
		w.state = StateRunning
	}
	w.mu.Unlock()
	return !stopped && !w.canceled()
}

func (w *TileWorker) run() {
	defer close(w.done)
	for {
		if !w.await() {
			return
		}

		w.runTile()

		w.mu.Lock()
		stopped := w.stopped
		if !stopped {
			w.state = StateUnassigned
		}
		w.mu.Unlock()
		if stopped {
			return
		}
		if w.OnWorkCompleted != nil {
			w.OnWorkCompleted(w)
		}
	}
}

func (w *TileWorker) runTile() {
	tick := atomic.AddUint64(&w.tick, 1)
	random := sampling.New(sampling.Config{Pattern: sampling.PatternLatinHypercube, Jitter: true, SinglesPerPixel: 1}, mixWorkerSeed(w.id, tick))

	w.mu.Lock()
	width, height := w.clippedWidth, w.clippedHeight
	offset := w.offset
	w.mu.Unlock()

	for y := 0; y < w.tileSize; y++ {
		for x := 0; x < w.tileSize; x++ {
			if x >= width || y >= height {
				continue
			}
			if !w.checkSchedule() {
				return
			}
			w.workPixel(offset, x, y, random)
			atomic.AddUint64(&w.completedPixel, 1)
		}
	}
}

// workPixel implements spec §4.9's WorkPixel: an initial deterministic
// pass over spiral sub-pixel offsets, followed by an adaptive pass
// sized from the accumulator's normalized deviation.
func (w *TileWorker) workPixel(offset [2]int, x, y int, random *sampling.ContinuousDistribution) {
	position := [2]int{offset[0] + x, offset[1] + y}
	bufferSize := [2]int{w.buffer.Width(), w.buffer.Height()}
	aspect := float64(bufferSize[0]) / float64(bufferSize[1])

	var pixel render.Pixel

	for i := 0; i < w.profile.PixelSample; i++ {
		uv := pixelUV(position, bufferSize, w.spiral[i%len(w.spiral)], aspect)
		w.dist.BeginPixel(position, 0)
		w.dist.BeginSample(i)
		ray := w.camera(uv)

		sample := w.evaluator.Evaluate(ray, w.arena, w.dist)
		pixel.Accumulate(sample)
		albedo, normal := w.albedo.Evaluate(ray, w.arena, w.dist)
		pixel.AccumulateAuxiliary(albedo, normal)
		atomic.AddUint64(&w.completedSample, 1)

		if !w.checkSchedule() {
			w.store(x, y, &pixel)
			return
		}
	}

	extraSamples := int(math.Round(pixel.Deviation() * float64(w.profile.AdaptiveSample)))
	for i := 0; i < extraSamples; i++ {
		offsetUV := random.Next2D()
		uv := pixelUV(position, bufferSize, offsetUV, aspect)
		w.dist.BeginPixel(position, 1)
		w.dist.BeginSample(i)
		ray := w.camera(uv)

		sample := w.evaluator.Evaluate(ray, w.arena, w.dist)
		pixel.Accumulate(sample)
		albedo, normal := w.albedo.Evaluate(ray, w.arena, w.dist)
		pixel.AccumulateAuxiliary(albedo, normal)
		atomic.AddUint64(&w.completedSample, 1)

		if !w.checkSchedule() {
			break
		}
	}

	w.store(x, y, &pixel)
}

func (w *TileWorker) store(x, y int, pixel *render.Pixel) {
	position := [2]int{w.offset[0] + x, w.offset[1] + y}
	w.buffer.Set(position[0], position[1], pixel.Mean(), pixel.Albedo(), pixel.Normal())
}

func pixelUV(position, bufferSize [2]int, offset geometry.Sample2D, aspect float64) geometry.Sample2D {
	u := (float64(position[0])+float64(offset.U))/float64(bufferSize[0]) - 0.5
	v := (float64(position[1])+float64(offset.V))/float64(bufferSize[1]) - 0.5
	v /= aspect
	return geometry.Sample2D{U: u, V: v}
}
