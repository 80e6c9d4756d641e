// Package pick hit-tests the pointer against the rendered bodies.
package pick

import "github.com/san-kum/orrery/internal/orbit"

// DefaultMargin is added to every body's rendered radius to ease targeting.
const DefaultMargin = 20.0

// At returns the first body, in registry order, whose rendered disc grown by
// margin contains the pointer. Overlaps resolve to the earliest-declared body
// rather than the topmost one drawn.
func At(pointer orbit.Vec2, bodies []*orbit.Body, view orbit.View, margin float64) *orbit.Body {
	for _, b := range bodies {
		if pointer.Dist(view.Body(b)) < view.Scale(b.Radius)+margin {
			return b
		}
	}
	return nil
}
