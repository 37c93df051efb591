package relax

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/elastosim/internal/elastic"
	"github.com/san-kum/elastosim/internal/grid"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultGridSize         = 21
	DefaultYoung            = 20.0
	DefaultPoisson          = 1.0 / 3.0
	DefaultDensity          = 1.0
	DefaultGravity          = 9.81
	DefaultIterations       = 2500
	DefaultDivergenceFactor = 1e6
)

// Metric accumulates a scalar over the iterations of a run.
type Metric interface {
	Name() string
	Observe(it int, residual float64, s *Solver)
	Value() float64
	Reset()
}

// Observer is notified after every completed iteration.
type Observer interface {
	OnIteration(it int, residual float64, s *Solver)
}

type Config struct {
	N        int
	Material elastic.Material
	Load     elastic.BodyLoad
	Boundary elastic.Boundary

	Iterations int
	StepSize   float64

	// CheckFinite stops the run when NaN or Inf shows up in the
	// displacement or force fields.
	CheckFinite bool
	// DivergenceFactor stops the run when the residual exceeds this
	// multiple of the first residual. Zero disables the check.
	DivergenceFactor float64
	// Tolerance stops the run early once the residual falls below this
	// fraction of the first residual. Zero runs the full iteration count.
	Tolerance float64
	// Parallel splits the per-point field math over goroutines.
	Parallel bool
}

// StableStep returns the reference step size 0.45*dx^2/E.
func StableStep(young, dx float64) float64 {
	return 0.45 * dx * dx / young
}

func DefaultConfig() Config {
	dx := 1.0 / float64(DefaultGridSize-1)
	return Config{
		N:                DefaultGridSize,
		Material:         elastic.Material{Young: DefaultYoung, Poisson: DefaultPoisson},
		Load:             elastic.BodyLoad{Density: DefaultDensity, Gravity: DefaultGravity},
		Boundary:         elastic.DefaultBoundary(),
		Iterations:       DefaultIterations,
		StepSize:         StableStep(DefaultYoung, dx),
		CheckFinite:      true,
		DivergenceFactor: DefaultDivergenceFactor,
	}
}

func (c Config) Validate() error {
	if c.N < grid.MinSize {
		return fmt.Errorf("grid size %d below minimum %d: %w", c.N, grid.MinSize, elastic.ErrConfig)
	}
	if err := c.Material.Validate(); err != nil {
		return err
	}
	if err := c.Load.Validate(c.N); err != nil {
		return err
	}
	if err := c.Boundary.Validate(); err != nil {
		return err
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d: %w", c.Iterations, elastic.ErrConfig)
	}
	if !(c.StepSize > 0) || math.IsInf(c.StepSize, 0) {
		return fmt.Errorf("step size must be positive and finite, got %v: %w", c.StepSize, elastic.ErrConfig)
	}
	if c.DivergenceFactor < 0 {
		return fmt.Errorf("divergence factor must be non-negative, got %v: %w", c.DivergenceFactor, elastic.ErrConfig)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance must be non-negative, got %v: %w", c.Tolerance, elastic.ErrConfig)
	}
	return nil
}

// Result is the hand-off to plotting and storage. Its fields are copies and
// do not alias solver state.
type Result struct {
	Geometry   grid.Geometry
	X, Y       []float64
	Ux, Uy     *mat.Dense
	Sxx        *mat.Dense
	Syy        *mat.Dense
	Sxy        *mat.Dense
	Syx        *mat.Dense
	Trace      []float64
	Iterations int
	Converged  bool
	Metrics    map[string]float64
	Elapsed    time.Duration
}

// Residual returns the last recorded trace value.
func (r *Result) Residual() float64 {
	if len(r.Trace) == 0 {
		return 0
	}
	return r.Trace[len(r.Trace)-1]
}

// Displaced returns the deformed particle positions x+Ux and y+Uy.
func (r *Result) Displaced() (px, py *mat.Dense) {
	xx, yy := r.Geometry.MeshGrid()
	px, py = grid.New(r.Geometry.N), grid.New(r.Geometry.N)
	px.Add(xx, r.Ux)
	py.Add(yy, r.Uy)
	return px, py
}

// Stress returns the reported stress fields. Sxy and Syx differ only on
// edges where the boundary zeroed one of them.
func (r *Result) Stress() *elastic.Stress {
	return &elastic.Stress{Sxx: r.Sxx, Syy: r.Syy, Sxy: r.Sxy, Syx: r.Syx}
}

// IterationError carries the context of a numerical failure.
type IterationError struct {
	Iteration int
	StepSize  float64
	Residual  float64
	Err       error
}

func (e *IterationError) Error() string {
	return fmt.Sprintf("iteration %d (step %.3e, residual %.3e): %v", e.Iteration, e.StepSize, e.Residual, e.Err)
}

func (e *IterationError) Unwrap() error {
	return e.Err
}
