package config

import "slices"

// Presets are named starting positions for the simulated plate.
var Presets = map[string]PlateConfig{
	"centered": {MaxAngle: DefaultMaxAngle, InitialX: 0, InitialY: 0},
	"offset":   {MaxAngle: DefaultMaxAngle, InitialX: DefaultInitialX, InitialY: DefaultInitialY},
	"edge":     {MaxAngle: DefaultMaxAngle, InitialX: 0.09, InitialY: 0.04},
	"corner":   {MaxAngle: DefaultMaxAngle, InitialX: -0.07, InitialY: -0.07},
}

// ApplyPreset replaces the plate section with the named preset. It reports
// whether the preset exists.
func (c *Config) ApplyPreset(name string) bool {
	p, ok := Presets[name]
	if !ok {
		return false
	}
	c.Plate = p
	return true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
