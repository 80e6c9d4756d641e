package render

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/sim"
)

var printer = message.NewPrinter(language.English)

// DayLabel formats the day counter with thousands separators.
func DayLabel(day int64) string {
	return printer.Sprintf("%d", day)
}

// HUD is the text shown around the diagram.
type HUD struct {
	Day    string
	Date   string
	Speed  string
	Status string
	Focus  string
}

// NewHUD builds the overlay text for f. A zero epoch omits the date.
func NewHUD(f sim.Frame, epoch time.Time) HUD {
	h := HUD{
		Day:    "Day " + DayLabel(f.Day),
		Speed:  fmt.Sprintf("%.1fx", f.Multiplier),
		Status: "running",
	}
	if !epoch.IsZero() {
		h.Date = orbit.CalendarDate(epoch, f.Day).Format("2 Jan 2006")
	}
	if f.Paused {
		h.Status = "paused"
	}
	if f.Followed != nil {
		h.Focus = "following " + f.Followed.Name
	}
	return h
}

// Lines returns the non-empty HUD lines, top to bottom.
func (h HUD) Lines() []string {
	lines := make([]string, 0, 4)
	for _, s := range []string{h.Day, h.Date, h.Speed + "  " + h.Status, h.Focus} {
		if s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}

// Overlay draws the HUD in the top-left corner and, while a body is being
// inspected, a detail panel with its name and fact.
func (p *Pipeline) Overlay(s Surface, f sim.Frame, h HUD) {
	size := p.Theme.HUDSize
	for i, line := range h.Lines() {
		at := orbit.Vec2{X: 20, Y: 20 + float64(i)*(size+6)}
		s.Text(at, size, line, p.Theme.Dim, AlignLeft)
	}

	b := f.Inspecting
	if b == nil {
		return
	}
	w, hgt := s.Size()
	pw, ph := 420.0, 140.0
	x := (float64(w) - pw) / 2
	y := (float64(hgt) - ph) / 2
	s.Rect(x, y, pw, ph, p.Theme.Panel)
	mid := x + pw/2
	s.Text(orbit.Vec2{X: mid, Y: y + 28}, size+6, b.Name, b.Color, AlignCenter)
	s.Text(orbit.Vec2{X: mid, Y: y + 70}, p.Theme.LabelSize, b.Fact, p.Theme.Label, AlignCenter)
	s.Text(orbit.Vec2{X: mid, Y: y + ph - 24}, p.Theme.LabelSize-2, "press enter to close", p.Theme.Dim, AlignCenter)
}
