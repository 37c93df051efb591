package elastic

import (
	"fmt"
	"math"

	"github.com/san-kum/elastosim/internal/grid"
	"gonum.org/v1/gonum/mat"
)

// ExternalForce is an optional body-force density added on top of gravity.
// The zero value applies no external force; a nil component is treated as
// zero everywhere.
type ExternalForce struct {
	Fx, Fy *mat.Dense
}

// UniformForce returns a constant external force density on an n x n grid.
func UniformForce(n int, fx, fy float64) ExternalForce {
	x, y := grid.New(n), grid.New(n)
	for i := 0; i < n; i++ {
		grid.SetRow(x, i, fx)
		grid.SetRow(y, i, fy)
	}
	return ExternalForce{Fx: x, Fy: y}
}

// BodyLoad collects the volume forces acting on the material. Gravity
// points along -y.
type BodyLoad struct {
	Density  float64
	Gravity  float64
	External ExternalForce
}

func (l BodyLoad) Validate(n int) error {
	if l.Density <= 0 {
		return fmt.Errorf("density %v must be positive: %w", l.Density, ErrConfig)
	}
	if l.Gravity < 0 {
		return fmt.Errorf("gravity %v must be non-negative: %w", l.Gravity, ErrConfig)
	}
	for _, f := range []*mat.Dense{l.External.Fx, l.External.Fy} {
		if f == nil {
			continue
		}
		if err := grid.CheckShape(n, f); err != nil {
			return fmt.Errorf("external force: %w", err)
		}
	}
	return nil
}

// Force is the net force-density field.
type Force struct {
	Fx, Fy *mat.Dense
}

func NewForce(n int) *Force {
	return &Force{Fx: grid.New(n), Fy: grid.New(n)}
}

// ComputeForce evaluates
//
//	Fx = dSxx/dx + dSxy/dy + Ex
//	Fy = dSyx/dx + dSyy/dy - rho g + Ey
func ComputeForce(st *Stress, load BodyLoad, dx float64) (*Force, error) {
	n, err := checkDiff(st.Sxx, dx)
	if err != nil {
		return nil, err
	}
	f := NewForce(n)
	if err := ForceInto(f, st, load, dx, false); err != nil {
		return nil, err
	}
	return f, nil
}

// ForceInto is ComputeForce writing into preallocated fields.
func ForceInto(dst *Force, st *Stress, load BodyLoad, dx float64, par bool) error {
	n, err := checkDiff(st.Sxx, dx)
	if err != nil {
		return err
	}
	if err := grid.CheckShape(n, st.Syy, st.Sxy, st.Syx, dst.Fx, dst.Fy); err != nil {
		return err
	}
	ext := load.External
	for _, f := range []*mat.Dense{ext.Fx, ext.Fy} {
		if f != nil {
			if err := grid.CheckShape(n, f); err != nil {
				return fmt.Errorf("external force: %w", err)
			}
		}
	}

	gradX(dst.Fx, st.Sxx, dx, false, par)
	gradY(dst.Fx, st.Sxy, dx, true, par)
	gradX(dst.Fy, st.Syx, dx, false, par)
	gradY(dst.Fy, st.Syy, dx, true, par)

	weight := load.Density * load.Gravity
	grid.Rows(n, par, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			fy := dst.Fy.RawRowView(i)
			for j := range fy {
				fy[j] -= weight
			}
			if ext.Fx != nil {
				fx, ex := dst.Fx.RawRowView(i), ext.Fx.RawRowView(i)
				for j := range fx {
					fx[j] += ex[j]
				}
			}
			if ext.Fy != nil {
				ey := ext.Fy.RawRowView(i)
				for j := range fy {
					fy[j] += ey[j]
				}
			}
		}
	})
	return nil
}

// Integral returns sum(dx^2 * |F|) over every grid point, the discrete
// integral of the force magnitude over the domain.
func (f *Force) Integral(dx float64) float64 {
	n, _ := f.Fx.Dims()
	cell := dx * dx
	sum := 0.0
	for i := 0; i < n; i++ {
		fx, fy := f.Fx.RawRowView(i), f.Fy.RawRowView(i)
		for j := range fx {
			sum += cell * math.Hypot(fx[j], fy[j])
		}
	}
	return sum
}

// IsFinite reports whether both components are free of NaN and Inf.
func (f *Force) IsFinite() bool {
	return grid.IsFinite(f.Fx) && grid.IsFinite(f.Fy)
}
