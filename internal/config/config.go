package config

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/orrery/internal/camera"
	"github.com/san-kum/orrery/internal/field"
	"github.com/san-kum/orrery/internal/logging"
	"github.com/san-kum/orrery/internal/orbit"
)

const (
	DefaultWidth       = 1280
	DefaultHeight      = 720
	DefaultFPS         = 60
	DefaultPickMargin  = 20.0
	DefaultVolume      = 0.4
	DefaultHome        = "Earth"
	DefaultEpoch       = "2000-01-01"
	DefaultSnapshotOut = "space_snap.png"
)

type Config struct {
	Window     WindowConfig    `yaml:"window"`
	Camera     CameraConfig    `yaml:"camera"`
	PickMargin float64         `yaml:"pick_margin"`
	Speed      SpeedConfig     `yaml:"speed"`
	Field      FieldConfig     `yaml:"field"`
	Sun        SunConfig       `yaml:"sun"`
	Bodies     []BodyConfig    `yaml:"bodies"`
	Satellite  SatelliteConfig `yaml:"satellite"`
	Home       string          `yaml:"home"`
	Epoch      string          `yaml:"epoch"`
	Seed       int64           `yaml:"seed"`
	Audio      AudioConfig     `yaml:"audio"`
	Log        logging.Config  `yaml:"log"`
	Metrics    MetricsConfig   `yaml:"metrics"`
	Snapshot   string          `yaml:"snapshot"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	FPS    int    `yaml:"fps"`
	Font   string `yaml:"font"`
}

type CameraConfig struct {
	Zoom    float64 `yaml:"zoom"`
	MinZoom float64 `yaml:"min_zoom"`
	MaxZoom float64 `yaml:"max_zoom"`
	Step    float64 `yaml:"step"`
}

type SpeedConfig struct {
	Default float64 `yaml:"default"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Step    float64 `yaml:"step"`
}

type FieldConfig struct {
	Stars          int          `yaml:"stars"`
	StarMaxSize    float64      `yaml:"star_max_size"`
	Debris         int          `yaml:"debris"`
	BeltInner      float64      `yaml:"belt_inner"`
	BeltWidth      float64      `yaml:"belt_width"`
	DebrisMaxSize  float64      `yaml:"debris_max_size"`
	DebrisMinSpeed float64      `yaml:"debris_min_speed"`
	DebrisSpread   float64      `yaml:"debris_spread"`
	Streak         StreakConfig `yaml:"streak"`
}

type StreakConfig struct {
	Rate   float64 `yaml:"rate"`
	Margin float64 `yaml:"margin"`
	SpawnY float64 `yaml:"spawn_y"`
	Drift  float64 `yaml:"drift"`
	Fall   float64 `yaml:"fall"`
	Trail  float64 `yaml:"trail"`
}

type SunConfig struct {
	Radius float64 `yaml:"radius"`
	Glow   float64 `yaml:"glow"`
	Color  string  `yaml:"color"`
	Halo   string  `yaml:"halo"`
}

type BodyConfig struct {
	Name      string   `yaml:"name"`
	Distance  float64  `yaml:"distance"`
	Radius    float64  `yaml:"radius"`
	Color     string   `yaml:"color"`
	Speed     float64  `yaml:"speed"`
	Angle     *float64 `yaml:"angle,omitempty"`
	Fact      string   `yaml:"fact"`
	Satellite bool     `yaml:"satellite,omitempty"`
	Rings     bool     `yaml:"rings,omitempty"`
}

type SatelliteConfig struct {
	Distance float64 `yaml:"distance"`
	Radius   float64 `yaml:"radius"`
	Color    string  `yaml:"color"`
	Speed    float64 `yaml:"speed"`
	Angle    float64 `yaml:"angle"`
}

type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
	// Track is a wav or mp3 file looped in the background. Empty selects the
	// synthesized drone.
	Track string `yaml:"track"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

func DefaultConfig() *Config {
	fc := field.DefaultConfig()
	limits := camera.DefaultLimits()
	return &Config{
		Window: WindowConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Title:  "orrery",
			FPS:    DefaultFPS,
		},
		Camera: CameraConfig{
			Zoom:    limits.Default,
			MinZoom: limits.Min,
			MaxZoom: limits.Max,
			Step:    limits.Step,
		},
		PickMargin: DefaultPickMargin,
		Speed:      SpeedConfig{Default: 1, Min: 0.1, Max: 5, Step: 0.1},
		Field: FieldConfig{
			Stars:          fc.Stars,
			StarMaxSize:    fc.StarMaxSize,
			Debris:         fc.Debris,
			BeltInner:      fc.BeltInner,
			BeltWidth:      fc.BeltWidth,
			DebrisMaxSize:  fc.DebrisMaxSize,
			DebrisMinSpeed: fc.DebrisMinSpeed,
			DebrisSpread:   fc.DebrisSpread,
			Streak: StreakConfig{
				Rate:   fc.Streak.Rate,
				Margin: fc.Streak.Margin,
				SpawnY: fc.Streak.SpawnY,
				Drift:  fc.Streak.Drift,
				Fall:   fc.Streak.Fall,
				Trail:  fc.Streak.Trail,
			},
		},
		Sun: SunConfig{Radius: 35, Glow: 50, Color: "#FFD700", Halo: "#FFA500"},
		Bodies: []BodyConfig{
			{Name: "Mercury", Distance: 80, Radius: 4, Color: "#A5A5A5", Speed: 0.03,
				Fact: "The smallest planet. A year is only 88 days!"},
			{Name: "Venus", Distance: 130, Radius: 7, Color: "#E3BB76", Speed: 0.015,
				Fact: "The hottest planet. Its thick atmosphere traps heat."},
			{Name: "Earth", Distance: 190, Radius: 8, Color: "#2271B3", Speed: 0.01,
				Fact: "The only planet known to harbor life.", Satellite: true},
			{Name: "Mars", Distance: 260, Radius: 6, Color: "#E27B58", Speed: 0.008,
				Fact: "Home to the largest canyons and volcanoes in the system."},
			{Name: "Jupiter", Distance: 410, Radius: 22, Color: "#D39C7E", Speed: 0.004,
				Fact: "A gas giant that acts as a gravity shield for Earth."},
			{Name: "Saturn", Distance: 540, Radius: 18, Color: "#F4D03F", Speed: 0.003,
				Fact: "Its iconic rings are made of ice and rock particles.", Rings: true},
		},
		Satellite: SatelliteConfig{Distance: 16, Radius: 2, Color: "#AAAAAA", Speed: 0.04},
		Home:      DefaultHome,
		Epoch:     DefaultEpoch,
		Audio:     AudioConfig{Volume: DefaultVolume},
		Log:       logging.Config{Level: "info", Format: "text"},
		Snapshot:  DefaultSnapshotOut,
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver overlays a YAML file onto base, typically a preset. Keys absent
// from the file keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BodySpecs converts the body table to registry specs. Call Validate first;
// unparsable colors fall back to white.
func (c *Config) BodySpecs() []orbit.BodySpec {
	specs := make([]orbit.BodySpec, 0, len(c.Bodies))
	for _, b := range c.Bodies {
		specs = append(specs, orbit.BodySpec{
			Name:         b.Name,
			Distance:     b.Distance,
			Radius:       b.Radius,
			Color:        ParseColor(b.Color),
			Speed:        b.Speed,
			Angle:        b.Angle,
			Fact:         b.Fact,
			HasSatellite: b.Satellite,
			HasRings:     b.Rings,
		})
	}
	return specs
}

func (c *Config) SatelliteSpec() orbit.SatelliteSpec {
	return orbit.SatelliteSpec{
		Distance: c.Satellite.Distance,
		Radius:   c.Satellite.Radius,
		Color:    ParseColor(c.Satellite.Color),
		Speed:    c.Satellite.Speed,
		Angle:    c.Satellite.Angle,
	}
}

func (c *Config) FieldConfig() field.Config {
	f := c.Field
	return field.Config{
		Stars:          f.Stars,
		StarMaxSize:    f.StarMaxSize,
		Debris:         f.Debris,
		BeltInner:      f.BeltInner,
		BeltWidth:      f.BeltWidth,
		DebrisMaxSize:  f.DebrisMaxSize,
		DebrisMinSpeed: f.DebrisMinSpeed,
		DebrisSpread:   f.DebrisSpread,
		Streak: field.StreakConfig{
			Rate:   f.Streak.Rate,
			Margin: f.Streak.Margin,
			SpawnY: f.Streak.SpawnY,
			Drift:  f.Streak.Drift,
			Fall:   f.Streak.Fall,
			Trail:  f.Streak.Trail,
		},
	}
}

func (c *Config) CameraLimits() camera.Limits {
	return camera.Limits{
		Default: c.Camera.Zoom,
		Min:     c.Camera.MinZoom,
		Max:     c.Camera.MaxZoom,
		Step:    c.Camera.Step,
	}
}

// EpochTime parses Epoch as a date. An empty epoch disables the calendar.
func (c *Config) EpochTime() (time.Time, bool) {
	if c.Epoch == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, c.Epoch)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseColor parses a #RRGGBB or #RGB string. Invalid input yields opaque
// white.
func ParseColor(hex string) color.RGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{255, 255, 255, 255}
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}
}
