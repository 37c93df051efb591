package relax

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/elastosim/internal/elastic"
	"github.com/san-kum/elastosim/internal/grid"
	"gonum.org/v1/gonum/mat"
)

type Solver struct {
	cfg       Config
	geom      grid.Geometry
	mu        float64
	lambda    float64
	pool      *grid.Pool
	ux, uy    *mat.Dense
	strain    *elastic.Strain
	stress    *elastic.Stress
	force     *elastic.Force
	trace     []float64
	iteration int
	metrics   []Metric
	observers []Observer
}

// New builds a solver starting from zero deformation.
func New(cfg Config) (*Solver, error) {
	return NewWithPool(cfg, nil)
}

// NewWithPool draws the solver's fields from pool. A nil pool, or one sized
// for a different grid, is replaced by a fresh one.
func NewWithPool(cfg Config, pool *grid.Pool) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	geom, err := grid.NewGeometry(cfg.N)
	if err != nil {
		return nil, err
	}
	if pool == nil || pool.Size() != cfg.N {
		pool = grid.NewPool(cfg.N)
	}
	mu, lambda := cfg.Material.Lame()
	s := &Solver{
		cfg:    cfg,
		geom:   geom,
		mu:     mu,
		lambda: lambda,
		pool:   pool,
		ux:     pool.Get(),
		uy:     pool.Get(),
		strain: &elastic.Strain{Uxx: pool.Get(), Uyy: pool.Get(), Uxy: pool.Get()},
		stress: &elastic.Stress{Sxx: pool.Get(), Syy: pool.Get(), Sxy: pool.Get(), Syx: pool.Get()},
		force:  &elastic.Force{Fx: pool.Get(), Fy: pool.Get()},
		trace:  make([]float64, 0, cfg.Iterations),
	}
	return s, nil
}

func (s *Solver) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Solver) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Solver) Config() Config          { return s.cfg }
func (s *Solver) Geometry() grid.Geometry { return s.geom }
func (s *Solver) Iteration() int          { return s.iteration }
func (s *Solver) Trace() []float64        { return s.trace }
func (s *Solver) Strain() *elastic.Strain { return s.strain }
func (s *Solver) Stress() *elastic.Stress { return s.stress }
func (s *Solver) Force() *elastic.Force   { return s.force }

// Displacement returns the live displacement fields. Callers must not
// modify them.
func (s *Solver) Displacement() (ux, uy *mat.Dense) {
	return s.ux, s.uy
}

// Done reports whether the configured iteration count has been reached.
func (s *Solver) Done() bool {
	return s.iteration >= s.cfg.Iterations
}

// Reset returns the body to zero deformation and clears the trace.
func (s *Solver) Reset() {
	for _, f := range s.fields() {
		f.Zero()
	}
	s.trace = s.trace[:0]
	s.iteration = 0
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Release hands the solver's fields back to its pool. The solver must not
// be used afterwards.
func (s *Solver) Release() {
	for _, f := range s.fields() {
		s.pool.Put(f)
	}
	s.ux, s.uy, s.strain, s.stress, s.force = nil, nil, nil, nil, nil
}

func (s *Solver) fields() []*mat.Dense {
	return []*mat.Dense{
		s.ux, s.uy,
		s.strain.Uxx, s.strain.Uyy, s.strain.Uxy,
		s.stress.Sxx, s.stress.Syy, s.stress.Sxy, s.stress.Syx,
		s.force.Fx, s.force.Fy,
	}
}

// Step performs one relaxation iteration and returns its residual.
func (s *Solver) Step() (float64, error) {
	dx, par := s.geom.Dx, s.cfg.Parallel

	if err := elastic.StrainInto(s.strain, s.ux, s.uy, dx, par); err != nil {
		return 0, err
	}
	if err := elastic.StressInto(s.stress, s.strain, s.mu, s.lambda, par); err != nil {
		return 0, err
	}
	if err := s.cfg.Boundary.ApplyStress(s.stress); err != nil {
		return 0, err
	}
	if err := elastic.ForceInto(s.force, s.stress, s.cfg.Load, dx, par); err != nil {
		return 0, err
	}

	h := s.cfg.StepSize
	grid.Rows(s.geom.N, par, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			ux, uy := s.ux.RawRowView(i), s.uy.RawRowView(i)
			fx, fy := s.force.Fx.RawRowView(i), s.force.Fy.RawRowView(i)
			for j := range ux {
				ux[j] += h * fx[j]
				uy[j] += h * fy[j]
			}
		}
	})
	residual := s.force.Integral(dx)
	s.trace = append(s.trace, residual)

	if err := s.cfg.Boundary.ApplyDisplacement(s.ux, s.uy); err != nil {
		return residual, err
	}

	it := s.iteration
	if s.cfg.CheckFinite {
		if math.IsNaN(residual) || math.IsInf(residual, 0) || !grid.IsFinite(s.ux) || !grid.IsFinite(s.uy) {
			return residual, s.fail(it, residual, elastic.ErrNonFinite)
		}
	}
	if f := s.cfg.DivergenceFactor; f > 0 && residual > f*s.trace[0] {
		return residual, s.fail(it, residual, elastic.ErrDiverged)
	}

	s.iteration++
	for _, m := range s.metrics {
		m.Observe(it, residual, s)
	}
	for _, obs := range s.observers {
		obs.OnIteration(it, residual, s)
	}
	return residual, nil
}

func (s *Solver) fail(it int, residual float64, err error) error {
	s.iteration++
	return &IterationError{Iteration: it, StepSize: s.cfg.StepSize, Residual: residual, Err: err}
}

// Run iterates until the configured count, early convergence, a numerical
// failure or cancellation. On failure or cancellation the partial result is
// returned together with the error.
func (s *Solver) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	converged := false

	for !s.Done() {
		select {
		case <-ctx.Done():
			return s.finish(false, start, ctx.Err())
		default:
		}

		residual, err := s.Step()
		if err != nil {
			return s.finish(false, start, err)
		}
		if tol := s.cfg.Tolerance; tol > 0 && residual <= tol*s.trace[0] {
			converged = true
			break
		}
	}

	return s.finish(converged, start, nil)
}

// finish snapshots the result; runErr takes precedence over snapshot errors.
func (s *Solver) finish(converged bool, start time.Time, runErr error) (*Result, error) {
	res, err := s.Result(converged, time.Since(start))
	if runErr != nil {
		return res, runErr
	}
	return res, err
}

// Result snapshots the current state. Stress is recomputed from the current
// displacement so that it matches the reported deformation. The result is
// always returned; an error means its stress fields are incomplete.
func (s *Solver) Result(converged bool, elapsed time.Duration) (*Result, error) {
	st := elastic.NewStress(s.geom.N)
	err := s.finalStress(st)

	x, y := s.geom.Coords()
	res := &Result{
		Geometry:   s.geom,
		X:          x,
		Y:          y,
		Ux:         grid.Clone(s.ux),
		Uy:         grid.Clone(s.uy),
		Sxx:        st.Sxx,
		Syy:        st.Syy,
		Sxy:        st.Sxy,
		Syx:        st.Syx,
		Trace:      append([]float64(nil), s.trace...),
		Iterations: s.iteration,
		Converged:  converged,
		Metrics:    make(map[string]float64, len(s.metrics)),
		Elapsed:    elapsed,
	}
	for _, m := range s.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	if err != nil {
		return res, fmt.Errorf("final stress: %w", err)
	}
	return res, nil
}

func (s *Solver) finalStress(st *elastic.Stress) error {
	strain := elastic.NewStrain(s.geom.N)
	if err := elastic.StrainInto(strain, s.ux, s.uy, s.geom.Dx, false); err != nil {
		return err
	}
	if err := elastic.StressInto(st, strain, s.mu, s.lambda, false); err != nil {
		return err
	}
	return s.cfg.Boundary.ApplyStress(st)
}
