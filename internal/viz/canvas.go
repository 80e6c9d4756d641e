package viz

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/render"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const (
	blank = 0x2800
	// minAlpha hides fills too faint to read as a whole dot.
	minAlpha = 96
)

// Canvas is a braille render.Surface. Drawing happens in virtual pixels that
// are Scale times larger than the 2x4 dot grid of each cell.
type Canvas struct {
	Width, Height int
	Scale         float64
	Grid          [][]rune
	Colors        [][]color.RGBA
	Labels        [][]rune
}

func NewCanvas(w, h int, scale float64) *Canvas {
	c := &Canvas{Scale: scale}
	c.Resize(w, h)
	return c
}

// Resize reallocates the canvas to w by h cells.
func (c *Canvas) Resize(w, h int) {
	c.Width, c.Height = max(0, w), max(0, h)
	c.Grid = make([][]rune, c.Height)
	c.Colors = make([][]color.RGBA, c.Height)
	c.Labels = make([][]rune, c.Height)
	for i := range c.Grid {
		c.Grid[i] = make([]rune, c.Width)
		c.Colors[i] = make([]color.RGBA, c.Width)
		c.Labels[i] = make([]rune, c.Width)
	}
	c.reset()
}

func (c *Canvas) reset() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Colors[i][j] = color.RGBA{}
			c.Labels[i][j] = 0
		}
	}
}

// Set sets a dot at (x, y) in dot coordinates. The canvas is
// (Width*2) x (Height*4) dots.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Unset clears a dot.
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

// DrawLine draws a line between two dots using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// dot converts virtual pixels to dot coordinates.
func (c *Canvas) dot(x, y float64) (int, int) {
	return int(math.Floor(x / c.Scale)), int(math.Floor(y / c.Scale))
}

// Cell maps a terminal cell to the virtual pixel at its center.
func (c *Canvas) Cell(col, row int) orbit.Vec2 {
	return orbit.Vec2{
		X: (float64(col)*2 + 1) * c.Scale,
		Y: (float64(row)*4 + 2) * c.Scale,
	}
}

func (c *Canvas) paint(x, y int, col color.RGBA) {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return
	}
	c.Set(x, y)
	c.Colors[y/4][x/2] = color.RGBA{col.R, col.G, col.B, 0xFF}
}

func (c *Canvas) Size() (int, int) {
	return int(float64(c.Width*2) * c.Scale), int(float64(c.Height*4) * c.Scale)
}

func (c *Canvas) Clear(color.RGBA) { c.reset() }

func (c *Canvas) Rect(x, y, w, h float64, col color.RGBA) {
	if col.A < minAlpha {
		return
	}
	x0, y0 := c.dot(x, y)
	x1, y1 := c.dot(x+w, y+h)
	for py := y0; py <= max(y0, y1-1); py++ {
		for px := x0; px <= max(x0, x1-1); px++ {
			c.paint(px, py, col)
		}
	}
}

func (c *Canvas) Disc(center orbit.Vec2, r float64, col color.RGBA) {
	if col.A < minAlpha {
		return
	}
	cx, cy := center.X/c.Scale, center.Y/c.Scale
	rd := r / c.Scale
	if rd < 0.75 {
		x, y := c.dot(center.X, center.Y)
		c.paint(x, y, col)
		return
	}
	for py := int(math.Floor(cy - rd)); py <= int(math.Ceil(cy+rd)); py++ {
		for px := int(math.Floor(cx - rd)); px <= int(math.Ceil(cx+rd)); px++ {
			dx, dy := float64(px)+0.5-cx, float64(py)+0.5-cy
			if dx*dx+dy*dy <= rd*rd {
				c.paint(px, py, col)
			}
		}
	}
}

// Glow draws only the core; a halo has no useful braille rendition.
func (c *Canvas) Glow(center orbit.Vec2, r, _ float64, core, _ color.RGBA) {
	c.Disc(center, r, core)
}

func (c *Canvas) Ellipse(center orbit.Vec2, rx, ry, rotation, _ float64, col color.RGBA) {
	if col.A < minAlpha/2 || rx <= 0 || ry <= 0 {
		return
	}
	n := max(24, int(2*math.Pi*math.Max(rx, ry)/c.Scale*2))
	sinR, cosR := math.Sincos(rotation)
	for i := 0; i < n; i++ {
		sin, cos := orbit.FastSinCos(2 * math.Pi * float64(i) / float64(n))
		ex, ey := rx*cos, ry*sin
		x, y := c.dot(center.X+ex*cosR-ey*sinR, center.Y+ex*sinR+ey*cosR)
		c.paint(x, y, col)
	}
}

func (c *Canvas) Line(from, to orbit.Vec2, _ float64, col color.RGBA) {
	if col.A < minAlpha {
		return
	}
	x0, y0 := c.dot(from.X, from.Y)
	x1, y1 := c.dot(to.X, to.Y)
	c.DrawLine(x0, y0, x1, y1)
	if x1 >= 0 && y1 >= 0 && x1/2 < c.Width && y1/4 < c.Height {
		c.Colors[y1/4][x1/2] = color.RGBA{col.R, col.G, col.B, 0xFF}
	}
}

// Text writes s into the cell row containing the middle of the glyphs.
func (c *Canvas) Text(at orbit.Vec2, size float64, s string, col color.RGBA, align render.Align) {
	runes := []rune(s)
	row := int(math.Floor((at.Y - size/2) / (c.Scale * 4)))
	start := int(math.Floor(at.X / (c.Scale * 2)))
	if align == render.AlignCenter {
		start -= len(runes) / 2
	}
	if row < 0 || row >= c.Height {
		return
	}
	for i, r := range runes {
		x := start + i
		if x < 0 || x >= c.Width {
			continue
		}
		c.Labels[row][x] = r
		c.Colors[row][x] = color.RGBA{col.R, col.G, col.B, 0xFF}
	}
}

// String returns the canvas without colors.
func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			if t := c.Labels[i][j]; t != 0 {
				r = t
			}
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Render returns the canvas with each run of same-colored cells styled.
func (c *Canvas) Render() string {
	var b strings.Builder
	for i, row := range c.Grid {
		var run []rune
		var runColor color.RGBA
		flush := func() {
			if len(run) == 0 {
				return
			}
			if runColor.A == 0 {
				b.WriteString(string(run))
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hexOf(runColor))).Render(string(run)))
			}
			run = run[:0]
		}
		for j, r := range row {
			if t := c.Labels[i][j]; t != 0 {
				r = t
			}
			col := c.Colors[i][j]
			if r == blank {
				col = color.RGBA{}
			}
			if col != runColor {
				flush()
				runColor = col
			}
			run = append(run, r)
		}
		flush()
		if i < len(c.Grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func hexOf(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
