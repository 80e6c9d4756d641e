// Package raster is a software render.Surface backed by an image.RGBA. Shapes
// are filled with an anti-aliasing vector rasterizer and labels use a fixed
// bitmap face.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/render"
)

const (
	minSegments = 12
	maxSegments = 160
	glowSteps   = 12
)

type Canvas struct {
	img  *image.RGBA
	z    *vector.Rasterizer
	face font.Face
}

func New(width, height int) *Canvas {
	width, height = max(0, width), max(0, height)
	return &Canvas{
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		z:    vector.NewRasterizer(0, 0),
		face: basicfont.Face7x13,
	}
}

// Image returns the backing image. It is reused across frames.
func (c *Canvas) Image() *image.RGBA { return c.img }

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) Clear(col color.RGBA) {
	draw.Draw(c.img, c.img.Bounds(), uniform(col), image.Point{}, draw.Src)
}

func (c *Canvas) Rect(x, y, w, h float64, col color.RGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	c.fill(col, x, y, x+w, y+h, func(p pen) {
		p.move(x, y)
		p.line(x+w, y)
		p.line(x+w, y+h)
		p.line(x, y+h)
		p.close()
	})
}

func (c *Canvas) Disc(center orbit.Vec2, r float64, col color.RGBA) {
	if r <= 0 {
		return
	}
	c.fill(col, center.X-r, center.Y-r, center.X+r, center.Y+r, func(p pen) {
		ellipse(p, center, r, r, 0, false)
	})
}

func (c *Canvas) Glow(center orbit.Vec2, r, blur float64, core, halo color.RGBA) {
	if blur > 0 {
		ramp := render.HaloRamp(core, halo, glowSteps)
		for i, col := range ramp {
			c.Disc(center, r+blur*(1-float64(i)/glowSteps), col)
		}
	}
	c.Disc(center, r, core)
}

func (c *Canvas) Ellipse(center orbit.Vec2, rx, ry, rotation, width float64, col color.RGBA) {
	if width <= 0 || rx <= 0 || ry <= 0 {
		return
	}
	half := width / 2
	ext := math.Max(rx, ry) + half
	c.fill(col, center.X-ext, center.Y-ext, center.X+ext, center.Y+ext, func(p pen) {
		ellipse(p, center, rx+half, ry+half, rotation, false)
		if rx > half && ry > half {
			ellipse(p, center, rx-half, ry-half, rotation, true)
		}
	})
}

func (c *Canvas) Line(from, to orbit.Vec2, width float64, col color.RGBA) {
	l := from.Dist(to)
	if l == 0 || width <= 0 {
		return
	}
	nx := -(to.Y - from.Y) / l * width / 2
	ny := (to.X - from.X) / l * width / 2
	minX := math.Min(from.X, to.X) - width
	minY := math.Min(from.Y, to.Y) - width
	maxX := math.Max(from.X, to.X) + width
	maxY := math.Max(from.Y, to.Y) + width
	c.fill(col, minX, minY, maxX, maxY, func(p pen) {
		p.move(from.X+nx, from.Y+ny)
		p.line(to.X+nx, to.Y+ny)
		p.line(to.X-nx, to.Y-ny)
		p.line(from.X-nx, from.Y-ny)
		p.close()
	})
}

// Text draws with the fixed 7x13 face; size is ignored.
func (c *Canvas) Text(at orbit.Vec2, size float64, s string, col color.RGBA, align render.Align) {
	d := font.Drawer{Dst: c.img, Src: uniform(col), Face: c.face}
	x := at.X
	if align == render.AlignCenter {
		x -= float64(d.MeasureString(s)) / 64 / 2
	}
	d.Dot = fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(at.Y * 64)}
	d.DrawString(s)
}

// pen writes path coordinates relative to the rasterizer's origin.
type pen struct {
	z    *vector.Rasterizer
	x, y float64
}

func (p pen) move(x, y float64) { p.z.MoveTo(float32(x-p.x), float32(y-p.y)) }
func (p pen) line(x, y float64) { p.z.LineTo(float32(x-p.x), float32(y-p.y)) }
func (p pen) close()            { p.z.ClosePath() }

// fill rasterizes the path built by draw over the clipped bounding box and
// composites col onto the image.
func (c *Canvas) fill(col color.RGBA, x0, y0, x1, y1 float64, build func(pen)) {
	if col.A == 0 {
		return
	}
	r := image.Rect(
		int(math.Floor(x0)), int(math.Floor(y0)),
		int(math.Ceil(x1)), int(math.Ceil(y1)),
	).Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	c.z.Reset(r.Dx(), r.Dy())
	c.z.DrawOp = draw.Over
	build(pen{z: c.z, x: float64(r.Min.X), y: float64(r.Min.Y)})
	c.z.Draw(c.img, r, uniform(col), image.Point{})
}

func ellipse(p pen, center orbit.Vec2, rx, ry, rotation float64, reverse bool) {
	n := int(math.Max(rx, ry) * 2 * math.Pi / 3)
	n = max(minSegments, min(maxSegments, n))
	sinR, cosR := math.Sincos(rotation)
	point := func(i int) (float64, float64) {
		t := 2 * math.Pi * float64(i) / float64(n)
		if reverse {
			t = -t
		}
		sin, cos := orbit.FastSinCos(t)
		ex, ey := rx*cos, ry*sin
		return center.X + ex*cosR - ey*sinR, center.Y + ex*sinR + ey*cosR
	}
	p.move(point(0))
	for i := 1; i < n; i++ {
		p.line(point(i))
	}
	p.close()
}

func uniform(c color.RGBA) *image.Uniform {
	return image.NewUniform(color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A})
}
