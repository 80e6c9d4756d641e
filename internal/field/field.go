// Package field owns the decorative populations around the bodies: the
// static starfield, the debris belt and the single transient streak.
package field

import (
	"math"
	"math/rand"
)

// Star is a background point in surface coordinates. Immutable once created.
type Star struct {
	X, Y    float64
	Size    float64
	Opacity float64
}

// Debris is one belt particle orbiting the central body.
type Debris struct {
	Distance float64
	Angle    float64
	Size     float64
	Speed    float64
}

// Belt is the fixed debris population. It is a rotor driven by the clock.
type Belt []Debris

func (b Belt) Rotate(multiplier float64) {
	for i := range b {
		b[i].Angle += b[i].Speed * multiplier
	}
}

type Config struct {
	Stars       int
	StarMaxSize float64

	Debris         int
	BeltInner      float64
	BeltWidth      float64
	DebrisMaxSize  float64
	DebrisMinSpeed float64
	DebrisSpread   float64

	Streak StreakConfig
}

func DefaultConfig() Config {
	return Config{
		Stars:          800,
		StarMaxSize:    1.2,
		Debris:         500,
		BeltInner:      300,
		BeltWidth:      70,
		DebrisMaxSize:  1.5,
		DebrisMinSpeed: 0.003,
		DebrisSpread:   0.002,
		Streak:         DefaultStreakConfig(),
	}
}

// Field is the ephemeral field manager.
type Field struct {
	cfg    Config
	rng    *rand.Rand
	width  float64
	height float64

	Stars  []Star
	Belt   Belt
	Streak Streak
}

// New creates an empty field. Call Resize before the first frame to populate
// it.
func New(cfg Config, rng *rand.Rand) *Field {
	return &Field{
		cfg:    cfg,
		rng:    rng,
		Streak: Streak{X: -500, Y: -500},
	}
}

// Resize regenerates the starfield and the belt for a surface of the given
// size. Negative sizes are treated as zero.
func (f *Field) Resize(width, height int) {
	f.width = math.Max(0, float64(width))
	f.height = math.Max(0, float64(height))

	f.Stars = make([]Star, f.cfg.Stars)
	for i := range f.Stars {
		f.Stars[i] = Star{
			X:       f.rng.Float64() * f.width,
			Y:       f.rng.Float64() * f.height,
			Size:    f.rng.Float64() * f.cfg.StarMaxSize,
			Opacity: f.rng.Float64(),
		}
	}

	f.Belt = make(Belt, f.cfg.Debris)
	for i := range f.Belt {
		f.Belt[i] = Debris{
			Distance: f.cfg.BeltInner + f.rng.Float64()*f.cfg.BeltWidth,
			Angle:    f.rng.Float64() * math.Pi * 2,
			Size:     f.rng.Float64() * f.cfg.DebrisMaxSize,
			Speed:    f.cfg.DebrisMinSpeed + f.rng.Float64()*f.cfg.DebrisSpread,
		}
	}
}

// Size returns the surface size the field was last populated for.
func (f *Field) Size() (float64, float64) { return f.width, f.height }

// StreakEvent reports a streak lifecycle transition within one frame.
type StreakEvent int

const (
	StreakNone StreakEvent = iota
	StreakSpawned
	StreakRetired
)

// Advance runs the streak policy for one frame. The belt is rotated by the
// clock; the starfield is static.
func (f *Field) Advance(paused bool) StreakEvent {
	if f.Streak.Active {
		if paused {
			return StreakNone
		}
		f.Streak.step()
		if f.Streak.outside(f.width, f.cfg.Streak.Margin) {
			f.Streak.Active = false
			return StreakRetired
		}
		return StreakNone
	}
	if paused {
		return StreakNone
	}
	if f.rng.Float64() < f.cfg.Streak.Rate {
		f.Streak = f.cfg.Streak.spawn(f.rng, f.width)
		return StreakSpawned
	}
	return StreakNone
}
