// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"fmt"

	"echorenderer/colorspace"
	"echorenderer/geometry"
)

// RenderBuffer is the canonical render output (spec §3): a 2D grid of
// RGB128 color plus parallel albedo and normal auxiliary layers, with
// bounds-checked writes so a misbehaving tile worker fails loudly
// instead of corrupting a neighboring tile's row.
type RenderBuffer struct {
	width, height int
	color         []colorspace.RGB128
	albedo        []colorspace.RGB128
	normal        []geometry.Float3
}

// NewRenderBuffer allocates a width*height buffer, zero-initialized.
func NewRenderBuffer(width, height int) *RenderBuffer {
	n := width * height
	return &RenderBuffer{
		width:  width,
		height: height,
		color:  make([]colorspace.RGB128, n),
		albedo: make([]colorspace.RGB128, n),
		normal: make([]geometry.Float3, n),
	}
}

// Width returns the buffer's pixel width.
func (b *RenderBuffer) Width() int { return b.width }

// Height returns the buffer's pixel height.
func (b *RenderBuffer) Height() int { return b.height }

func (b *RenderBuffer) index(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		panic(fmt.Sprintf("render: position (%d, %d) out of bounds for %dx%d buffer", x, y, b.width, b.height))
	}
	return y*b.width + x
}

// Set writes a pixel's color, albedo, and normal layers at (x, y).
func (b *RenderBuffer) Set(x, y int, color, albedo colorspace.RGB128, normal geometry.Float3) {
	i := b.index(x, y)
	b.color[i] = color
	b.albedo[i] = albedo
	b.normal[i] = normal
}

// Color returns the color layer's value at (x, y).
func (b *RenderBuffer) Color(x, y int) colorspace.RGB128 { return b.color[b.index(x, y)] }

// Albedo returns the albedo layer's value at (x, y).
func (b *RenderBuffer) Albedo(x, y int) colorspace.RGB128 { return b.albedo[b.index(x, y)] }

// Normal returns the normal layer's value at (x, y).
func (b *RenderBuffer) Normal(x, y int) geometry.Float3 { return b.normal[b.index(x, y)] }
