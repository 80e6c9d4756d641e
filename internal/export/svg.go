package export

import (
	"fmt"
	"html"
	"image/color"
	"math"
	"strings"

	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/render"
)

// SVG is a render.Surface that records vector markup.
type SVG struct {
	width, height int
	body          strings.Builder
	gradients     int
}

func NewSVG(width, height int) *SVG {
	return &SVG{width: max(0, width), height: max(0, height)}
}

func (s *SVG) Size() (int, int) { return s.width, s.height }

func (s *SVG) Clear(c color.RGBA) {
	s.body.Reset()
	s.gradients = 0
	s.body.WriteString(fmt.Sprintf(`<rect width="100%%" height="100%%" fill="%s"/>`+"\n", hex(c)))
}

func (s *SVG) Rect(x, y, w, h float64, c color.RGBA) {
	s.body.WriteString(fmt.Sprintf(`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"%s/>`+"\n",
		x, y, w, h, hex(c), opacity("fill", c)))
}

func (s *SVG) Disc(center orbit.Vec2, r float64, c color.RGBA) {
	s.body.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"%s/>`+"\n",
		center.X, center.Y, r, hex(c), opacity("fill", c)))
}

func (s *SVG) Glow(center orbit.Vec2, r, blur float64, core, halo color.RGBA) {
	if blur > 0 {
		id := fmt.Sprintf("glow%d", s.gradients)
		s.gradients++
		outer := r + blur
		stop := r / outer
		s.body.WriteString(fmt.Sprintf(`<defs><radialGradient id="%s"><stop offset="%.3f" stop-color="%s"/><stop offset="1" stop-color="%s" stop-opacity="0"/></radialGradient></defs>`+"\n",
			id, stop, hex(halo), hex(halo)))
		s.body.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="url(#%s)"/>`+"\n",
			center.X, center.Y, outer, id))
	}
	s.Disc(center, r, core)
}

func (s *SVG) Ellipse(center orbit.Vec2, rx, ry, rotation, width float64, c color.RGBA) {
	deg := rotation * 180 / math.Pi
	s.body.WriteString(fmt.Sprintf(`<ellipse cx="%.2f" cy="%.2f" rx="%.2f" ry="%.2f" transform="rotate(%.2f %.2f %.2f)" fill="none" stroke="%s" stroke-width="%.2f"%s/>`+"\n",
		center.X, center.Y, rx, ry, deg, center.X, center.Y, hex(c), width, opacity("stroke", c)))
}

func (s *SVG) Line(from, to orbit.Vec2, width float64, c color.RGBA) {
	s.body.WriteString(fmt.Sprintf(`<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"%s/>`+"\n",
		from.X, from.Y, to.X, to.Y, hex(c), width, opacity("stroke", c)))
}

func (s *SVG) Text(at orbit.Vec2, size float64, text string, c color.RGBA, align render.Align) {
	anchor := "middle"
	if align == render.AlignLeft {
		anchor = "start"
	}
	s.body.WriteString(fmt.Sprintf(`<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.0f" text-anchor="%s" fill="%s">%s</text>`+"\n",
		at.X, at.Y, size, anchor, hex(c), html.EscapeString(text)))
}

// String returns the complete document.
func (s *SVG) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, s.width, s.height, s.width, s.height))
	sb.WriteString(s.body.String())
	sb.WriteString("</svg>\n")
	return sb.String()
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func opacity(attr string, c color.RGBA) string {
	if c.A == 255 {
		return ""
	}
	return fmt.Sprintf(` %s-opacity="%.3f"`, attr, float64(c.A)/255)
}
