package sim

import (
	"github.com/san-kum/orrery/internal/field"
	"github.com/san-kum/orrery/internal/orbit"
)

// Intent is an input queued by a host and applied at the start of the next
// frame.
type Intent interface {
	intent()
}

// PointerMove records the last known pointer position on the surface.
type PointerMove struct{ X, Y float64 }

// Click selects at the given position. Clicking an unfollowed body follows
// it; clicking the followed body pauses and requests its details.
type Click struct{ X, Y float64 }

// Follow makes the named body the camera target without picking. Unknown
// names and the body already followed are ignored.
type Follow struct{ Body string }

// Inspect follows the named body if needed, then pauses and requests its
// details.
type Inspect struct{ Body string }

// Wheel zooms by one step. Delta follows the DOM convention: negative scrolls
// up and zooms in. A zero delta is ignored.
type Wheel struct{ Delta float64 }

// TogglePause and SetPaused are ignored while a detail is shown; only
// Dismiss resumes from there.
type TogglePause struct{}

type SetPaused struct{ Paused bool }

// SetSpeed sets the global time multiplier, clamped to the configured range.
type SetSpeed struct{ Multiplier float64 }

// AdjustSpeed moves the multiplier by Steps slider steps.
type AdjustSpeed struct{ Steps int }

// Resize regenerates the field for a new surface size and recenters the
// origin.
type Resize struct{ Width, Height int }

// ResetView clears the followed body and restores the default zoom.
type ResetView struct{}

// Dismiss closes the detail view and resumes the simulation.
type Dismiss struct{}

func (PointerMove) intent() {}
func (Click) intent()       {}
func (Follow) intent()      {}
func (Inspect) intent()     {}
func (Wheel) intent()       {}
func (TogglePause) intent() {}
func (SetPaused) intent()   {}
func (SetSpeed) intent()    {}
func (AdjustSpeed) intent() {}
func (Resize) intent()      {}
func (ResetView) intent()   {}
func (Dismiss) intent()     {}

type EventKind int

const (
	EventFollow EventKind = iota
	EventInspect
	EventDismiss
	EventPause
	EventResume
	EventReset
	EventResize
	EventStreakSpawned
	EventStreakRetired
)

var eventNames = [...]string{
	EventFollow:        "follow",
	EventInspect:       "inspect",
	EventDismiss:       "dismiss",
	EventPause:         "pause",
	EventResume:        "resume",
	EventReset:         "reset",
	EventResize:        "resize",
	EventStreakSpawned: "streak_spawned",
	EventStreakRetired: "streak_retired",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// Event is something observable that happened during a frame. Body and Fact
// are set for follow and inspect events.
type Event struct {
	Kind EventKind
	Body string
	Fact string
}

// Cursor is the pointer shape hint for the host.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorPointer
)

// Frame is the state a host needs to render one frame.
type Frame struct {
	Index      uint64
	Day        int64
	HomeAngle  float64
	Paused     bool
	Multiplier float64

	View       orbit.View
	Width      int
	Height     int
	Hovered    *orbit.Body
	Followed   *orbit.Body
	Inspecting *orbit.Body
	Cursor     Cursor
	Streak     field.Streak

	Events []Event
}

// Highlighted reports whether b should carry a name label this frame.
func (f Frame) Highlighted(b *orbit.Body) bool {
	return b != nil && (b == f.Hovered || b == f.Followed)
}

type Observer interface {
	OnFrame(f Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

// SpeedRange bounds the global time multiplier.
type SpeedRange struct {
	Default float64
	Min     float64
	Max     float64
	Step    float64
}

func (r SpeedRange) clamp(m float64) float64 {
	if m < r.Min {
		return r.Min
	}
	if m > r.Max {
		return r.Max
	}
	return m
}
