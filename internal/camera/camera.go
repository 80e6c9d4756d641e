// Package camera holds the viewport state: zoom scale and the optional
// followed body.
package camera

import (
	"math"

	"github.com/san-kum/orrery/internal/orbit"
)

// Limits bounds and steps the zoom scale.
type Limits struct {
	Default float64
	Min     float64
	Max     float64
	// Step multiplies the scale on zoom-in; zoom-out divides by it so that an
	// in/out pair is an identity away from the clamp.
	Step float64
}

func DefaultLimits() Limits {
	return Limits{Default: 0.8, Min: 0.05, Max: 10, Step: 1.1}
}

// Direction of a zoom step.
type Direction int

const (
	ZoomOut Direction = -1
	ZoomIn  Direction = 1
)

// DirectionOf maps a wheel delta to a zoom direction: scrolling up (negative
// delta in DOM convention) zooms in.
func DirectionOf(wheelDelta float64) Direction {
	if wheelDelta < 0 {
		return ZoomIn
	}
	return ZoomOut
}

// Camera is the viewport controller. Followed is a back-reference into the
// registry and is never owned by the camera.
type Camera struct {
	limits   Limits
	zoom     float64
	followed *orbit.Body
}

func New(limits Limits) *Camera {
	c := &Camera{limits: limits}
	c.zoom = c.clamp(limits.Default)
	return c
}

func (c *Camera) Zoom() float64         { return c.zoom }
func (c *Camera) Followed() *orbit.Body { return c.followed }
func (c *Camera) Limits() Limits        { return c.limits }
func (c *Camera) Follow(b *orbit.Body)  { c.followed = b }

func (c *Camera) IsFollowing(b *orbit.Body) bool {
	return b != nil && c.followed == b
}

// ZoomBy applies one zoom step in the given direction and clamps the result.
func (c *Camera) ZoomBy(dir Direction) {
	switch {
	case dir > 0:
		c.zoom = c.clamp(c.zoom * c.limits.Step)
	case dir < 0:
		c.zoom = c.clamp(c.zoom / c.limits.Step)
	}
}

// Reset clears the followed body and restores the default zoom.
func (c *Camera) Reset() {
	c.followed = nil
	c.zoom = c.clamp(c.limits.Default)
}

// Offset is recomputed from the followed body's current phase on every call.
func (c *Camera) Offset() orbit.Vec2 {
	return orbit.FollowOffset(c.followed, c.zoom)
}

// View builds the frame transform for a surface centered at origin.
func (c *Camera) View(origin orbit.Vec2) orbit.View {
	return orbit.View{Origin: origin, Offset: c.Offset(), Zoom: c.zoom}
}

func (c *Camera) clamp(z float64) float64 {
	return math.Min(math.Max(z, c.limits.Min), c.limits.Max)
}
