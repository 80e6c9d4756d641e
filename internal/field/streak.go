package field

import "math/rand"

// Streak is the single transient comet-like object, in surface coordinates.
type Streak struct {
	X, Y   float64
	VX, VY float64
	Active bool
}

// Tail returns the far end of the trail drawn behind the streak.
func (s Streak) Tail(factor float64) (float64, float64) {
	return s.X - s.VX*factor, s.Y - s.VY*factor
}

func (s *Streak) step() {
	s.X += s.VX
	s.Y += s.VY
}

func (s Streak) outside(width, margin float64) bool {
	return s.X < -margin || s.X > width+margin
}

// StreakConfig holds the Bernoulli spawn rate and the spawn distribution.
type StreakConfig struct {
	// Rate is the per-frame activation probability while inactive.
	Rate float64
	// Margin is how far past the horizontal edges the streak travels before
	// it retires.
	Margin float64
	SpawnY float64
	// Drift scales the horizontal velocity, drawn from (U-0.5)*Drift.
	Drift float64
	Fall  float64
	Trail float64
}

func DefaultStreakConfig() StreakConfig {
	return StreakConfig{
		Rate:   0.002,
		Margin: 1000,
		SpawnY: -100,
		Drift:  20,
		Fall:   15,
		Trail:  8,
	}
}

func (c StreakConfig) spawn(rng *rand.Rand, width float64) Streak {
	return Streak{
		X:      rng.Float64() * width,
		Y:      c.SpawnY,
		VX:     (rng.Float64() - 0.5) * c.Drift,
		VY:     c.Fall,
		Active: true,
	}
}
