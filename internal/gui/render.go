package gui

import (
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/render"
)

const glowSteps = 12

// surface draws onto the current raylib frame buffer.
type surface struct {
	font rl.Font
}

func vec(v orbit.Vec2) rl.Vector2 { return rl.NewVector2(float32(v.X), float32(v.Y)) }

func (s *surface) Size() (int, int) {
	return rl.GetScreenWidth(), rl.GetScreenHeight()
}

func (s *surface) Clear(c color.RGBA) {
	rl.ClearBackground(c)
}

func (s *surface) Rect(x, y, w, h float64, c color.RGBA) {
	rl.DrawRectangleRec(rl.NewRectangle(float32(x), float32(y), float32(w), float32(h)), c)
}

func (s *surface) Disc(center orbit.Vec2, r float64, c color.RGBA) {
	if r <= 0 {
		return
	}
	rl.DrawCircleV(vec(center), float32(r), c)
}

func (s *surface) Glow(center orbit.Vec2, r, blur float64, core, halo color.RGBA) {
	if blur > 0 {
		for i, col := range render.HaloRamp(core, halo, glowSteps) {
			s.Disc(center, r+blur*(1-float64(i)/glowSteps), col)
		}
	}
	s.Disc(center, r, core)
}

func (s *surface) Ellipse(center orbit.Vec2, rx, ry, rotation, width float64, c color.RGBA) {
	if rx <= 0 || ry <= 0 || width <= 0 {
		return
	}
	rl.DrawSplineLinear(ellipsePoints(center, rx, ry, rotation), float32(width), c)
}

func (s *surface) Line(from, to orbit.Vec2, width float64, c color.RGBA) {
	rl.DrawLineEx(vec(from), vec(to), float32(width), c)
}

func (s *surface) Text(at orbit.Vec2, size float64, text string, c color.RGBA, align render.Align) {
	fs := float32(size)
	pos := rl.NewVector2(float32(at.X), float32(at.Y)-fs*0.8)
	if align == render.AlignCenter {
		pos.X -= rl.MeasureTextEx(s.font, text, fs, 1).X / 2
	}
	rl.DrawTextEx(s.font, text, pos, fs, 1, c)
}

// ellipsePoints returns a closed polyline around a rotated ellipse.
func ellipsePoints(center orbit.Vec2, rx, ry, rotation float64) []rl.Vector2 {
	n := int(math.Max(rx, ry) * 2 * math.Pi / 4)
	n = max(16, min(128, n))
	sinR, cosR := math.Sincos(rotation)
	pts := make([]rl.Vector2, n+1)
	for i := 0; i <= n; i++ {
		sin, cos := orbit.FastSinCos(2 * math.Pi * float64(i) / float64(n))
		ex, ey := rx*cos, ry*sin
		pts[i] = rl.NewVector2(
			float32(center.X+ex*cosR-ey*sinR),
			float32(center.Y+ex*sinR+ey*cosR),
		)
	}
	return pts
}
