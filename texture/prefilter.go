// SPDX-License-Identifier: Unlicense OR MIT

package texture

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"echorenderer/colorspace"
)

// Prefilter resizes src to width*height using a bilinear scaler
// (golang.org/x/image/draw's ApproxBiLinear, grounded on the same
// scaling pass a GPU texture upload would otherwise need a shader
// for — here done once at preparation time on the CPU) and linearizes
// each resulting sRGB-encoded pixel into a row-major RGB128 grid ready
// for NewEnvironment.
func Prefilter(src image.Image, width, height int) []colorspace.RGB128 {
	dst := image.NewRGBA64(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	out := make([]colorspace.RGB128, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA64Model.Convert(dst.At(x, y)).(color.RGBA64)
			out[y*width+x] = colorspace.RGB128{
				R: colorspace.InverseSRGB(float64(c.R) / 65535),
				G: colorspace.InverseSRGB(float64(c.G) / 65535),
				B: colorspace.InverseSRGB(float64(c.B) / 65535),
			}
		}
	}
	return out
}
