package orbit

import (
	"image/color"
	"math/rand"
)

// initialPhaseSpan bounds the random starting phase of a body without a
// configured angle.
const initialPhaseSpan = 6.0

// Body is an orbiting body. Angle is the only field mutated after startup.
type Body struct {
	Name         string
	Distance     float64
	Radius       float64
	Color        color.RGBA
	Speed        float64
	Angle        float64
	Fact         string
	HasSatellite bool
	HasRings     bool
}

// Satellite orbits the rendered position of its parent body.
type Satellite struct {
	Distance float64
	Radius   float64
	Color    color.RGBA
	Speed    float64
	Angle    float64
}

// BodySpec is the static description of a body. A nil Angle means the
// starting phase is drawn at random.
type BodySpec struct {
	Name         string
	Distance     float64
	Radius       float64
	Color        color.RGBA
	Speed        float64
	Angle        *float64
	Fact         string
	HasSatellite bool
	HasRings     bool
}

type SatelliteSpec struct {
	Distance float64
	Radius   float64
	Color    color.RGBA
	Speed    float64
	Angle    float64
}

// Registry owns the fixed, ordered list of bodies and the single satellite.
// Declaration order is significant: it is both the draw order and the pick
// priority.
type Registry struct {
	bodies    []*Body
	satellite *Satellite
	parent    *Body
	home      *Body
}

// NewRegistry builds the registry from static configuration. home names the
// body whose cumulative phase drives the day counter; it may be empty.
// The satellite is attached to the first body flagged HasSatellite.
func NewRegistry(specs []BodySpec, sat SatelliteSpec, home string, rng *rand.Rand) *Registry {
	r := &Registry{bodies: make([]*Body, 0, len(specs))}
	for _, s := range specs {
		angle := rng.Float64() * initialPhaseSpan
		if s.Angle != nil {
			angle = *s.Angle
		}
		b := &Body{
			Name:         s.Name,
			Distance:     s.Distance,
			Radius:       s.Radius,
			Color:        s.Color,
			Speed:        s.Speed,
			Angle:        angle,
			Fact:         s.Fact,
			HasSatellite: s.HasSatellite,
			HasRings:     s.HasRings,
		}
		r.bodies = append(r.bodies, b)
		if b.HasSatellite && r.parent == nil {
			r.parent = b
		}
		if b.Name == home && r.home == nil {
			r.home = b
		}
	}
	if r.parent != nil {
		r.satellite = &Satellite{
			Distance: sat.Distance,
			Radius:   sat.Radius,
			Color:    sat.Color,
			Speed:    sat.Speed,
			Angle:    sat.Angle,
		}
	}
	return r
}

// Bodies returns the bodies in declaration order. The slice must not be
// modified.
func (r *Registry) Bodies() []*Body { return r.bodies }

// Satellite returns the satellite and its parent, or nils when no body
// carries one.
func (r *Registry) Satellite() (*Satellite, *Body) { return r.satellite, r.parent }

// Home returns the body that drives the day counter, or nil.
func (r *Registry) Home() *Body { return r.home }

// Lookup finds a body by name.
func (r *Registry) Lookup(name string) *Body {
	for _, b := range r.bodies {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Rotate advances every body and the satellite by speed*multiplier.
func (r *Registry) Rotate(multiplier float64) {
	for _, b := range r.bodies {
		b.Angle += b.Speed * multiplier
	}
	if r.satellite != nil {
		r.satellite.Angle += r.satellite.Speed * multiplier
	}
}
