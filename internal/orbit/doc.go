// Package orbit provides the kinematic core of the orrery.
//
// The package defines the static body registry and the pieces that move it:
//
//   - [Body], [Satellite]: bodies on fixed circular orbits with a mutable phase
//   - [Registry]: the fixed, ordered set of bodies built once at startup
//   - [Clock]: advances every phase by a per-body rate times a global multiplier
//   - [View]: the world-to-surface transform shared by picking and rendering
//
// Motion is kinematic. Each frame adds angularSpeed*multiplier to every phase;
// there is no force integration and no dependency on wall-clock time.
//
// # Example
//
//	reg := orbit.NewRegistry(specs, sat, "Earth", rng)
//	clock := orbit.NewClock(1)
//	clock.Advance(reg)
//	view := orbit.View{Origin: orbit.Vec2{X: 640, Y: 360}, Zoom: 0.8}
//	p := view.Body(reg.Bodies()[0])
package orbit
