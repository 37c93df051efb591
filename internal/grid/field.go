package grid

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrShape reports a field whose dimensions do not match the grid.
var ErrShape = errors.New("grid: field shape mismatch")

// New allocates a zero n x n field.
func New(n int) *mat.Dense {
	return mat.NewDense(n, n, nil)
}

// Clone returns an independent copy of f.
func Clone(f *mat.Dense) *mat.Dense {
	return mat.DenseCopyOf(f)
}

// Size returns n for an n x n field and an error for anything else.
func Size(f *mat.Dense) (int, error) {
	if f == nil {
		return 0, fmt.Errorf("nil field: %w", ErrShape)
	}
	r, c := f.Dims()
	if r != c {
		return 0, fmt.Errorf("field is %dx%d, want square: %w", r, c, ErrShape)
	}
	return r, nil
}

// CheckShape verifies that every field is n x n with n >= MinSize.
func CheckShape(n int, fields ...*mat.Dense) error {
	if n < MinSize {
		return fmt.Errorf("grid size %d below minimum %d: %w", n, MinSize, ErrShape)
	}
	for i, f := range fields {
		if f == nil {
			return fmt.Errorf("field %d is nil: %w", i, ErrShape)
		}
		r, c := f.Dims()
		if r != n || c != n {
			return fmt.Errorf("field %d is %dx%d, want %dx%d: %w", i, r, c, n, n, ErrShape)
		}
	}
	return nil
}

// IsFinite reports whether f holds no NaN or Inf entries.
func IsFinite(f *mat.Dense) bool {
	r, _ := f.Dims()
	for i := 0; i < r; i++ {
		for _, v := range f.RawRowView(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// MaxAbs returns the largest absolute entry of f.
func MaxAbs(f *mat.Dense) float64 {
	r, _ := f.Dims()
	m := 0.0
	for i := 0; i < r; i++ {
		for _, v := range f.RawRowView(i) {
			m = math.Max(m, math.Abs(v))
		}
	}
	return m
}

// SetRow assigns v to every entry of row i.
func SetRow(f *mat.Dense, i int, v float64) {
	row := f.RawRowView(i)
	for j := range row {
		row[j] = v
	}
}

// SetCol assigns v to every entry of column j.
func SetCol(f *mat.Dense, j int, v float64) {
	r, _ := f.Dims()
	for i := 0; i < r; i++ {
		f.Set(i, j, v)
	}
}
