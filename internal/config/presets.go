package config

import (
	"sort"

	"github.com/san-kum/elastosim/internal/elastic"
)

var (
	fixed = elastic.EdgeCondition{Normal: elastic.Fixed, Tangential: elastic.Fixed}
	free  = elastic.EdgeCondition{Normal: elastic.Free, Tangential: elastic.Free}
)

func preset(desc string, mutate func(c *Config)) *Config {
	c := DefaultConfig()
	c.Description = desc
	mutate(c)
	return c
}

var Presets = map[string]*Config{
	"floor": preset("block resting on a floor against a wall, both sliding", func(c *Config) {}),
	"suspended": preset("block hanging from a clamped ceiling", func(c *Config) {
		c.Boundary = elastic.Boundary{Left: free, Right: free, Bottom: free, Top: fixed}
		c.Solver.Iterations = 6000
	}),
	"bridge": preset("slab clamped at both ends sagging in the middle", func(c *Config) {
		c.Boundary = elastic.Boundary{Left: fixed, Right: fixed, Bottom: free, Top: free}
		c.Solver.Iterations = 6000
	}),
	"cantilever": preset("slab clamped on the left, free elsewhere", func(c *Config) {
		c.Boundary = elastic.Boundary{Left: fixed, Right: free, Bottom: free, Top: free}
		c.Solver.Iterations = 10000
	}),
	"clamped": preset("block with every edge clamped", func(c *Config) {
		c.Boundary = elastic.Boundary{Left: fixed, Right: fixed, Bottom: fixed, Top: fixed}
		c.Solver.Iterations = 5000
	}),
	"windy": preset("floor scenario with a sideways external force", func(c *Config) {
		c.Load.External = ExternalConfig{Fx: 2}
	}),
	"coarse": preset("floor scenario on an 11x11 grid", func(c *Config) {
		c.GridSize = 11
	}),
	"fine": preset("floor scenario on a 41x41 grid", func(c *Config) {
		c.GridSize = 41
		c.Solver.Iterations = 10000
		c.Solver.Parallel = true
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
