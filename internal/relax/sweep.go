package relax

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/san-kum/elastosim/internal/grid"
)

// SweepPoint is the outcome of one solve in a step-size sweep.
type SweepPoint struct {
	StepSize   float64
	First      float64
	Final      float64
	Iterations int
	Stable     bool
	Err        error
}

// Sweep solves base once per step size, concurrently, and reports which
// steps relaxed the residual. Numerical failures are recorded per point;
// configuration errors and cancellation abort the sweep.
func Sweep(ctx context.Context, base Config, steps []float64) ([]SweepPoint, error) {
	points := make([]SweepPoint, len(steps))
	errs := make([]error, len(steps))
	pool := grid.NewPool(base.N)

	var wg sync.WaitGroup
	for i, h := range steps {
		wg.Add(1)
		go func(idx int, h float64) {
			defer wg.Done()

			cfg := base
			cfg.StepSize = h
			cfg.Tolerance = 0

			s, err := NewWithPool(cfg, pool)
			if err != nil {
				errs[idx] = err
				return
			}
			defer s.Release()

			res, err := s.Run(ctx)
			p := SweepPoint{StepSize: h, Iterations: res.Iterations, Err: err}
			if len(res.Trace) > 0 {
				p.First = res.Trace[0]
				p.Final = res.Residual()
			}
			var iterErr *IterationError
			switch {
			case err == nil:
				p.Stable = p.Final <= p.First
			case errors.As(err, &iterErr):
			default:
				errs[idx] = err
			}
			points[idx] = p
		}(i, h)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return points, nil
}

// StabilityLimit returns the largest stable step below the smallest
// unstable one, or zero when no step was stable.
func StabilityLimit(points []SweepPoint) float64 {
	sorted := append([]SweepPoint(nil), points...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StepSize < sorted[j].StepSize })

	limit := 0.0
	for _, p := range sorted {
		if !p.Stable {
			break
		}
		limit = p.StepSize
	}
	return limit
}
