// SPDX-License-Identifier: Unlicense OR MIT

package device

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"echorenderer/colorspace"
	"echorenderer/geometry"
	"echorenderer/instance"
	"echorenderer/internal/accel"
	"echorenderer/material"
	"echorenderer/prim"
	"echorenderer/render"
)

func testScene(t *testing.T) *render.Scene {
	t.Helper()
	swatch := instance.NewPreparedSwatch([]material.Material{material.Diffuse{Albedo: colorspace.RGB128{R: 0.6, G: 0.6, B: 0.6}}})
	sph := prim.Sphere{Center: geometry.Float3{}, Radius: 1, Material: 0}
	pack := instance.NewPreparedPack(nil, []prim.Sphere{sph}, nil, swatch, accel.Profile{}, sph.AABB())
	return &render.Scene{Root: pack, Background: colorspace.RGB128{R: 0.2, G: 0.2, B: 0.3}}
}

func pinholeCamera(uv geometry.Sample2D) geometry.Ray {
	origin := geometry.Float3{Z: -3}
	target := geometry.Float3{X: uv.U, Y: uv.V, Z: 0}
	return geometry.NewRay(origin, target.Sub(origin))
}

func testProfile() EvaluatorProfile {
	p := DefaultEvaluatorProfile()
	p.TileSize = 2
	p.PixelSample = 2
	p.AdaptiveSample = 1
	p.BounceLimit = 2
	return p
}

func TestTileWorkerDispatchRendersEveryPixelInTile(t *testing.T) {
	scene := testScene(t)
	buffer := render.NewRenderBuffer(4, 4)
	w := NewTileWorker(0, testProfile(), scene, buffer, pinholeCamera)

	done := make(chan struct{})
	w.OnWorkCompleted = func(*TileWorker) { close(done) }

	require.NoError(t, w.Reset([2]int{0, 0}, 2))
	require.NoError(t, w.Dispatch())
	<-done

	require.Equal(t, uint64(4), w.CompletedPixel())
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			c := buffer.Color(x, y)
			require.True(t, c.IsFinite(), "pixel (%d,%d) = %v not finite", x, y, c)
		}
	}
	w.Abort()
}

func TestTileWorkerTracksCompletedSampleAndPixel(t *testing.T) {
	scene := testScene(t)
	buffer := render.NewRenderBuffer(16, 16)
	profile := testProfile()
	profile.TileSize = 16
	profile.PixelSample = 4
	profile.AdaptiveSample = 0
	w := NewTileWorker(0, profile, scene, buffer, pinholeCamera)

	done := make(chan struct{})
	w.OnWorkCompleted = func(*TileWorker) { close(done) }

	require.NoError(t, w.Reset([2]int{0, 0}, 16))
	require.NoError(t, w.Dispatch())
	<-done

	require.Equal(t, uint64(256), w.CompletedPixel())
	require.Equal(t, uint64(1024), w.CompletedSample())
	w.Abort()
}

func TestTileWorkerDispatchWhileRunningReturnsInvalidState(t *testing.T) {
	scene := testScene(t)
	buffer := render.NewRenderBuffer(2, 2)
	w := NewTileWorker(0, testProfile(), scene, buffer, pinholeCamera)
	require.NoError(t, w.Reset([2]int{0, 0}, 2))

	w.state = StateRunning
	err := w.Dispatch()
	require.Error(t, err)
	var invalid *InvalidStateError
	require.ErrorAs(t, err, &invalid)
}

func TestTileWorkerResetWhileRunningReturnsInvalidState(t *testing.T) {
	scene := testScene(t)
	buffer := render.NewRenderBuffer(2, 2)
	w := NewTileWorker(0, testProfile(), scene, buffer, pinholeCamera)

	w.state = StateRunning
	err := w.Reset([2]int{0, 0}, 2)
	require.Error(t, err)
}

func TestTileWorkerResetClipsTileToBufferBounds(t *testing.T) {
	scene := testScene(t)
	buffer := render.NewRenderBuffer(3, 3)
	w := NewTileWorker(0, testProfile(), scene, buffer, pinholeCamera)

	require.NoError(t, w.Reset([2]int{2, 2}, 4))
	require.Equal(t, 1, w.TotalPixel())
}

func TestDeviceRenderFillsWholeBuffer(t *testing.T) {
	scene := testScene(t)
	buffer := render.NewRenderBuffer(4, 4)
	profile := testProfile()
	d := NewDevice(2, profile, scene, buffer, pinholeCamera)

	require.NoError(t, d.Render(context.Background()))

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			require.True(t, buffer.Color(x, y).IsFinite())
		}
	}
}

func TestDeviceRenderRespectsCancellation(t *testing.T) {
	scene := testScene(t)
	buffer := render.NewRenderBuffer(64, 64)
	profile := testProfile()
	profile.TileSize = 1
	d := NewDevice(1, profile, scene, buffer, pinholeCamera)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.Render(ctx)
	require.Error(t, err)
}

func TestLoadEvaluatorProfileDecodesAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.toml")
	contents := `
tile_size = 16
pixel_sample = 8
adaptive_sample = 4
bounce_limit = 6
accelerator_type = "bvh"
linear_for_instances = true
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	profile, err := LoadEvaluatorProfile(path)
	require.NoError(t, err)
	require.Equal(t, 16, profile.TileSize)
	require.Equal(t, accel.KindBVH, profile.AcceleratorProfile().Explicit)
	require.True(t, profile.AcceleratorProfile().LinearForInstances)
}

func TestEvaluatorProfileValidateRejectsBadFields(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*EvaluatorProfile)
	}{
		{"non-positive tile size", func(p *EvaluatorProfile) { p.TileSize = 0 }},
		{"non-positive pixel sample", func(p *EvaluatorProfile) { p.PixelSample = -1 }},
		{"negative adaptive sample", func(p *EvaluatorProfile) { p.AdaptiveSample = -1 }},
		{"non-positive bounce limit", func(p *EvaluatorProfile) { p.BounceLimit = 0 }},
		{"unknown accelerator type", func(p *EvaluatorProfile) { p.AcceleratorType = "octree" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			profile := DefaultEvaluatorProfile()
			c.mutate(&profile)
			require.Error(t, profile.Validate())
		})
	}
}
