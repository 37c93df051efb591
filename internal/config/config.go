package config

import (
	"fmt"
	"os"

	"github.com/san-kum/elastosim/internal/elastic"
	"github.com/san-kum/elastosim/internal/relax"
	"gopkg.in/yaml.v3"
)

const DefaultStepFactor = 1.0

type Config struct {
	Description string           `yaml:"description,omitempty"`
	GridSize    int              `yaml:"grid_size"`
	Material    elastic.Material `yaml:"material"`
	Load        LoadConfig       `yaml:"load"`
	Boundary    elastic.Boundary `yaml:"boundary"`
	Solver      SolverConfig     `yaml:"solver"`
}

type LoadConfig struct {
	Density  float64        `yaml:"density"`
	Gravity  float64        `yaml:"gravity"`
	External ExternalConfig `yaml:"external"`
}

// ExternalConfig is a uniform external force density.
type ExternalConfig struct {
	Fx float64 `yaml:"fx"`
	Fy float64 `yaml:"fy"`
}

type SolverConfig struct {
	Iterations int `yaml:"iterations"`
	// StepSize overrides StepFactor when positive.
	StepSize         float64 `yaml:"step_size"`
	StepFactor       float64 `yaml:"step_factor"`
	CheckFinite      bool    `yaml:"check_finite"`
	DivergenceFactor float64 `yaml:"divergence_factor"`
	Tolerance        float64 `yaml:"tolerance"`
	Parallel         bool    `yaml:"parallel"`
}

func DefaultConfig() *Config {
	return &Config{
		GridSize: relax.DefaultGridSize,
		Material: elastic.Material{Young: relax.DefaultYoung, Poisson: relax.DefaultPoisson},
		Load: LoadConfig{
			Density: relax.DefaultDensity,
			Gravity: relax.DefaultGravity,
		},
		Boundary: elastic.DefaultBoundary(),
		Solver: SolverConfig{
			Iterations:       relax.DefaultIterations,
			StepFactor:       DefaultStepFactor,
			CheckFinite:      true,
			DivergenceFactor: relax.DefaultDivergenceFactor,
		},
	}
}

// Load reads a YAML config. Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
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

// Dx is the grid spacing implied by GridSize.
func (c *Config) Dx() float64 {
	if c.GridSize < 2 {
		return 0
	}
	return 1.0 / float64(c.GridSize-1)
}

// StepSize resolves the relaxation step: the explicit value when set,
// otherwise StepFactor times the reference stable step.
func (c *Config) StepSize() float64 {
	if c.Solver.StepSize > 0 {
		return c.Solver.StepSize
	}
	factor := c.Solver.StepFactor
	if factor <= 0 {
		factor = DefaultStepFactor
	}
	return factor * relax.StableStep(c.Material.Young, c.Dx())
}

// ToSolverConfig converts the document into a validated solver config.
func (c *Config) ToSolverConfig() (relax.Config, error) {
	load := elastic.BodyLoad{Density: c.Load.Density, Gravity: c.Load.Gravity}
	if ext := c.Load.External; ext.Fx != 0 || ext.Fy != 0 {
		if c.GridSize >= 1 {
			load.External = elastic.UniformForce(c.GridSize, ext.Fx, ext.Fy)
		}
	}

	rc := relax.Config{
		N:                c.GridSize,
		Material:         c.Material,
		Load:             load,
		Boundary:         c.Boundary,
		Iterations:       c.Solver.Iterations,
		StepSize:         c.StepSize(),
		CheckFinite:      c.Solver.CheckFinite,
		DivergenceFactor: c.Solver.DivergenceFactor,
		Tolerance:        c.Solver.Tolerance,
		Parallel:         c.Solver.Parallel,
	}
	if err := rc.Validate(); err != nil {
		return relax.Config{}, err
	}
	return rc, nil
}
