package orbit

import "math"

// DaysPerRevolution converts one full revolution of the home body into days.
const DaysPerRevolution = 365.25

// Rotor is anything whose phase is driven by the clock.
type Rotor interface {
	Rotate(multiplier float64)
}

// Clock advances phases once per rendered frame. It is not a fixed-timestep
// integrator: each call to Advance is one unit of frame time regardless of how
// much wall-clock time elapsed.
type Clock struct {
	Paused     bool
	Multiplier float64

	homeTotal float64
	frames    uint64
}

func NewClock(multiplier float64) *Clock {
	return &Clock{Multiplier: multiplier}
}

// Advance rotates the registry and any extra rotors by one frame unless the
// clock is paused. It reports whether anything moved.
func (c *Clock) Advance(reg *Registry, extra ...Rotor) bool {
	if c.Paused {
		return false
	}
	m := c.Multiplier
	reg.Rotate(m)
	for _, r := range extra {
		r.Rotate(m)
	}
	if h := reg.Home(); h != nil {
		c.homeTotal += h.Speed * m
	}
	c.frames++
	return true
}

// HomeAngle is the cumulative, never wrapped phase of the home body since the
// clock started.
func (c *Clock) HomeAngle() float64 { return c.homeTotal }

// Frames counts the unpaused advances.
func (c *Clock) Frames() uint64 { return c.frames }

// Day is floor(cumulativeHomeAngle / 2π * 365.25).
func (c *Clock) Day() int64 {
	return int64(math.Floor(c.homeTotal / (2 * math.Pi) * DaysPerRevolution))
}
