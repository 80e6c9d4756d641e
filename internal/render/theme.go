package render

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/orrery/internal/config"
)

type Theme struct {
	Background color.RGBA
	Debris     color.RGBA
	Streak     color.RGBA
	Ring       color.RGBA
	Label      color.RGBA
	Dim        color.RGBA
	Panel      color.RGBA

	SunColor  color.RGBA
	SunHalo   color.RGBA
	SunRadius float64
	SunGlow   float64

	// Ring geometry relative to the body radius.
	RingRX    float64
	RingRY    float64
	RingTilt  float64
	RingWidth float64

	StreakWidth float64
	StreakTrail float64

	LabelSize float64
	LabelLift float64
	HUDSize   float64
}

func DefaultTheme() Theme {
	return ThemeFrom(config.DefaultConfig())
}

// ThemeFrom takes the sun and streak settings from cfg.
func ThemeFrom(cfg *config.Config) Theme {
	return Theme{
		Background: color.RGBA{0x02, 0x02, 0x06, 0xFF},
		Debris:     color.RGBA{0x88, 0x88, 0x88, 0xFF},
		Streak:     color.RGBA{255, 255, 255, 153},
		Ring:       color.RGBA{194, 178, 128, 102},
		Label:      color.RGBA{255, 255, 255, 255},
		Dim:        color.RGBA{140, 140, 140, 255},
		Panel:      color.RGBA{10, 10, 20, 220},

		SunColor:  config.ParseColor(cfg.Sun.Color),
		SunHalo:   config.ParseColor(cfg.Sun.Halo),
		SunRadius: cfg.Sun.Radius,
		SunGlow:   cfg.Sun.Glow,

		RingRX:    2.4,
		RingRY:    0.9,
		RingTilt:  math.Pi / 8,
		RingWidth: 5,

		StreakWidth: 2,
		StreakTrail: cfg.Field.Streak.Trail,

		LabelSize: 14,
		LabelLift: 30,
		HUDSize:   16,
	}
}

// HaloRamp returns steps colors for concentric halo discs, outermost first:
// faint halo color at the edge, warming toward the core color inside.
func HaloRamp(core, halo color.RGBA, steps int) []color.RGBA {
	if steps <= 0 {
		return nil
	}
	a := toColorful(core)
	b := toColorful(halo)
	ramp := make([]color.RGBA, steps)
	for i := 0; i < steps; i++ {
		k := float64(i+1) / float64(steps)
		r, g, bl := b.BlendLab(a, k).Clamped().RGB255()
		alpha := uint8(math.Round(float64(halo.A) * k * k / 2))
		ramp[i] = color.RGBA{r, g, bl, alpha}
	}
	return ramp
}

// WithAlpha scales c's alpha by f in [0, 1].
func WithAlpha(c color.RGBA, f float64) color.RGBA {
	f = math.Max(0, math.Min(1, f))
	c.A = uint8(math.Round(float64(c.A) * f))
	return c
}

func toColorful(c color.RGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}
