package elastic

import (
	"fmt"

	"github.com/san-kum/elastosim/internal/grid"
	"gonum.org/v1/gonum/mat"
)

func edgeLow(f0, f1, f2, inv float64) float64  { return (-3*f0 + 4*f1 - f2) * inv }
func edgeHigh(f0, f1, f2, inv float64) float64 { return (3*f0 - 4*f1 + f2) * inv }
func central(fm, fp, inv float64) float64      { return (fp - fm) * inv }

// DiffX returns df/dx, the derivative along columns.
func DiffX(f *mat.Dense, dx float64) (*mat.Dense, error) {
	n, err := checkDiff(f, dx)
	if err != nil {
		return nil, err
	}
	dst := grid.New(n)
	gradX(dst, f, dx, false, false)
	return dst, nil
}

// DiffY returns df/dy, the derivative along rows.
func DiffY(f *mat.Dense, dx float64) (*mat.Dense, error) {
	n, err := checkDiff(f, dx)
	if err != nil {
		return nil, err
	}
	dst := grid.New(n)
	gradY(dst, f, dx, false, false)
	return dst, nil
}

func checkDiff(f *mat.Dense, dx float64) (int, error) {
	if dx <= 0 {
		return 0, fmt.Errorf("grid spacing %v must be positive: %w", dx, ErrConfig)
	}
	n, err := grid.Size(f)
	if err != nil {
		return 0, err
	}
	return n, grid.CheckShape(n, f)
}

// gradX writes (or adds, when add is set) df/dx into dst. dst must not
// alias f.
func gradX(dst, f *mat.Dense, dx float64, add, par bool) {
	n, _ := f.Dims()
	inv := 1 / (2 * dx)
	grid.Rows(n, par, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			r, o := f.RawRowView(i), dst.RawRowView(i)
			if !add {
				for j := range o {
					o[j] = 0
				}
			}
			o[0] += edgeLow(r[0], r[1], r[2], inv)
			for j := 1; j < n-1; j++ {
				o[j] += central(r[j-1], r[j+1], inv)
			}
			o[n-1] += edgeHigh(r[n-1], r[n-2], r[n-3], inv)
		}
	})
}

// gradY writes (or adds) df/dy into dst. dst must not alias f.
func gradY(dst, f *mat.Dense, dx float64, add, par bool) {
	n, _ := f.Dims()
	inv := 1 / (2 * dx)
	grid.Rows(n, par, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			o := dst.RawRowView(i)
			if !add {
				for j := range o {
					o[j] = 0
				}
			}
			switch i {
			case 0:
				a, b, c := f.RawRowView(0), f.RawRowView(1), f.RawRowView(2)
				for j := range o {
					o[j] += edgeLow(a[j], b[j], c[j], inv)
				}
			case n - 1:
				a, b, c := f.RawRowView(n-1), f.RawRowView(n-2), f.RawRowView(n-3)
				for j := range o {
					o[j] += edgeHigh(a[j], b[j], c[j], inv)
				}
			default:
				m, p := f.RawRowView(i-1), f.RawRowView(i+1)
				for j := range o {
					o[j] += central(m[j], p[j], inv)
				}
			}
		}
	})
}
