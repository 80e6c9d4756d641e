package render

import (
	"image/color"

	"github.com/san-kum/orrery/internal/field"
	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/sim"
)

// Scene exposes the populations a frame is drawn from. *sim.Context
// satisfies it.
type Scene interface {
	Registry() *orbit.Registry
	Field() *field.Field
}

type Pipeline struct {
	Theme Theme
}

func NewPipeline(theme Theme) *Pipeline {
	return &Pipeline{Theme: theme}
}

// Draw renders one frame back to front.
func (p *Pipeline) Draw(s Surface, scene Scene, f sim.Frame) {
	v := f.View
	fl := scene.Field()
	reg := scene.Registry()

	s.Clear(p.Theme.Background)
	p.stars(s, fl.Stars)

	sun := v.Center()
	s.Glow(sun, v.Scale(p.Theme.SunRadius), v.Scale(p.Theme.SunGlow), p.Theme.SunColor, p.Theme.SunHalo)

	p.belt(s, v, sun, fl.Belt)
	if f.Streak.Active {
		p.streak(s, v, f.Streak)
	}

	sat, parent := reg.Satellite()
	for _, b := range reg.Bodies() {
		pos := v.Body(b)
		r := v.Scale(b.Radius)
		if b.HasRings {
			t := p.Theme
			s.Ellipse(pos, r*t.RingRX, r*t.RingRY, t.RingTilt, v.Scale(t.RingWidth), t.Ring)
		}
		s.Disc(pos, r, b.Color)
		if sat != nil && b == parent {
			s.Disc(v.Around(pos, sat.Distance, sat.Angle), v.Scale(sat.Radius), sat.Color)
		}
	}

	for _, b := range reg.Bodies() {
		if !f.Highlighted(b) {
			continue
		}
		pos := v.Body(b)
		at := orbit.Vec2{X: pos.X, Y: pos.Y - (v.Scale(b.Radius) + p.Theme.LabelLift)}
		s.Text(at, p.Theme.LabelSize, b.Name, p.Theme.Label, AlignCenter)
	}
}

func (p *Pipeline) stars(s Surface, stars []field.Star) {
	for _, st := range stars {
		s.Rect(st.X, st.Y, st.Size, st.Size, WithAlpha(color.RGBA{255, 255, 255, 255}, st.Opacity))
	}
}

func (p *Pipeline) belt(s Surface, v orbit.View, center orbit.Vec2, belt field.Belt) {
	for _, d := range belt {
		sin, cos := orbit.FastSinCos(d.Angle)
		r := v.Scale(d.Distance)
		size := v.Scale(d.Size)
		s.Rect(center.X+cos*r, center.Y+sin*r, size, size, p.Theme.Debris)
	}
}

func (p *Pipeline) streak(s Surface, v orbit.View, st field.Streak) {
	tx, ty := st.Tail(p.Theme.StreakTrail)
	s.Line(orbit.Vec2{X: st.X, Y: st.Y}, orbit.Vec2{X: tx, Y: ty}, v.Scale(p.Theme.StreakWidth), p.Theme.Streak)
}
