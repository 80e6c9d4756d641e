// Package render draws a simulation frame onto any Surface, back to front:
// background, stars, sun, belt, streak, bodies with their rings and
// satellite, then name labels.
package render

import (
	"image/color"

	"github.com/san-kum/orrery/internal/orbit"
)

type Align int

const (
	AlignCenter Align = iota
	AlignLeft
)

// Surface is a 2D drawing target in pixel coordinates with y pointing down.
// Colors carry straight, non-premultiplied alpha.
type Surface interface {
	Size() (width, height int)
	Clear(c color.RGBA)
	// Rect fills an axis-aligned rectangle whose top-left corner is (x, y).
	Rect(x, y, w, h float64, c color.RGBA)
	Disc(center orbit.Vec2, radius float64, c color.RGBA)
	// Glow fills a disc of the core color surrounded by a halo that fades
	// out over blur pixels.
	Glow(center orbit.Vec2, radius, blur float64, core, halo color.RGBA)
	// Ellipse strokes an ellipse rotated by rotation radians.
	Ellipse(center orbit.Vec2, rx, ry, rotation, width float64, c color.RGBA)
	Line(from, to orbit.Vec2, width float64, c color.RGBA)
	// Text draws s with its baseline at at.Y.
	Text(at orbit.Vec2, size float64, s string, c color.RGBA, align Align)
}
