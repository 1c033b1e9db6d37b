package config

import "sort"

var Presets = map[string]func(*Config){
	"default": func(*Config) {},
	"moon": func(c *Config) {
		c.Physics.Gravity = -1.62
		c.Duration = 20
	},
	"bouncy": func(c *Config) {
		c.Material.Restitution = 0.9
		c.Material.Friction = 0.05
	},
	"pile": func(c *Config) {
		c.Startup.RandomBoxes = 6
		c.Startup.RandomSpheres = 6
		c.Duration = 15
	},
}

// GetPreset returns a fresh config with the named preset applied, or nil.
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
