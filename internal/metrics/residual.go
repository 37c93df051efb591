package metrics

import (
	"github.com/san-kum/elastosim/internal/grid"
	"github.com/san-kum/elastosim/internal/relax"
)

type Residual struct {
	name string
	last float64
}

func NewResidual() *Residual {
	return &Residual{name: "residual"}
}

func (r *Residual) Name() string { return r.name }

func (r *Residual) Observe(it int, residual float64, s *relax.Solver) {
	r.last = residual
}

func (r *Residual) Value() float64 { return r.last }

func (r *Residual) Reset() { r.last = 0 }

// Deflection records the largest vertical displacement magnitude.
type Deflection struct {
	name string
	max  float64
}

func NewDeflection() *Deflection {
	return &Deflection{name: "max_deflection"}
}

func (d *Deflection) Name() string { return d.name }

func (d *Deflection) Observe(it int, residual float64, s *relax.Solver) {
	_, uy := s.Displacement()
	d.max = grid.MaxAbs(uy)
}

func (d *Deflection) Value() float64 { return d.max }

func (d *Deflection) Reset() { d.max = 0 }

// Defaults returns a fresh set of the standard run metrics.
func Defaults() []relax.Metric {
	return []relax.Metric{
		NewResidual(),
		NewDecay(),
		NewMonotonicity(),
		NewStrainEnergy(),
		NewDeflection(),
	}
}
