package config

import "sort"

// Presets tweak the defaults for a particular mood. Each entry mutates a
// fresh DefaultConfig.
var Presets = map[string]func(*Config){
	"default": func(*Config) {},
	"calm": func(c *Config) {
		c.Field.Streak.Rate = 0
		c.Field.Debris = 150
		c.Speed.Default = 0.5
	},
	"meteor-shower": func(c *Config) {
		c.Field.Streak.Rate = 0.02
		c.Field.Streak.Fall = 22
	},
	"deep-field": func(c *Config) {
		c.Field.Stars = 2000
		c.Field.StarMaxSize = 1.6
		c.Camera.Zoom = 0.4
	},
}

func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
