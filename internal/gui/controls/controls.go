// Package controls turns one polled frame of window input into simulation
// intents. It has no window dependency so hosts and tests can share it.
package controls

import (
	"strings"

	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/sim"
)

type Key int

const (
	KeyPause Key = iota
	KeyReset
	KeyFaster
	KeySlower
	KeySnapshot
	KeyDismiss
	KeyHelp
	KeyAudio
	KeyQuit
)

// Input is one frame of polled window input.
type Input struct {
	Mouse   orbit.Vec2
	Moved   bool
	Click   bool
	Wheel   float64 // positive scrolls up
	Resized bool
	Width   int
	Height  int
	Pressed map[Key]bool
}

// Gesture reports whether the user actively did something this frame.
func (in Input) Gesture() bool {
	return in.Click || len(in.Pressed) > 0
}

// Intents maps a frame of input onto simulation intents. The click is queued
// before the wheel so it is picked against the zoom on screen. Scrolling up
// zooms in, so the wheel sign is flipped.
func Intents(in Input) []sim.Intent {
	var out []sim.Intent
	if in.Resized {
		out = append(out, sim.Resize{Width: in.Width, Height: in.Height})
	}
	if in.Moved || in.Click {
		out = append(out, sim.PointerMove{X: in.Mouse.X, Y: in.Mouse.Y})
	}
	if in.Click {
		out = append(out, sim.Click{X: in.Mouse.X, Y: in.Mouse.Y})
	}
	if in.Wheel != 0 {
		out = append(out, sim.Wheel{Delta: -in.Wheel})
	}
	if in.Pressed[KeyDismiss] {
		out = append(out, sim.Dismiss{})
	}
	if in.Pressed[KeyPause] {
		out = append(out, sim.TogglePause{})
	}
	if in.Pressed[KeyReset] {
		out = append(out, sim.ResetView{})
	}
	if in.Pressed[KeyFaster] {
		out = append(out, sim.AdjustSpeed{Steps: 1})
	}
	if in.Pressed[KeySlower] {
		out = append(out, sim.AdjustSpeed{Steps: -1})
	}
	return out
}

// Meter renders the mean of the band levels as a bar of width cells.
func Meter(bass, mid, high float64, width int) string {
	level := (bass + mid + high) / 3
	bars := min(width, max(0, int(level*float64(width))))
	return "[" + strings.Repeat("|", bars) + strings.Repeat(" ", width-bars) + "]"
}
