// SPDX-License-Identifier: Unlicense OR MIT

package device

import "echorenderer/geometry"

// Camera generates the primary ray for a screen-space sample, where
// uv is (0,0) at the image center and its Y axis already carries
// whatever aspect correction the caller wants (spec §4.9 WorkPixel:
// "divide uv.y by aspect" happens before Camera ever sees the sample,
// keeping the camera itself aspect-agnostic).
type Camera func(uv geometry.Sample2D) geometry.Ray
