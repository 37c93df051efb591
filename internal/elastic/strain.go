package elastic

import (
	"github.com/san-kum/elastosim/internal/grid"
	"gonum.org/v1/gonum/mat"
)

// Strain is the symmetric small-strain tensor field.
type Strain struct {
	Uxx, Uyy, Uxy *mat.Dense
}

func NewStrain(n int) *Strain {
	return &Strain{Uxx: grid.New(n), Uyy: grid.New(n), Uxy: grid.New(n)}
}

// ComputeStrain evaluates Uxx = dUx/dx, Uyy = dUy/dy and
// Uxy = (dUx/dy + dUy/dx)/2.
func ComputeStrain(ux, uy *mat.Dense, dx float64) (*Strain, error) {
	n, err := checkDiff(ux, dx)
	if err != nil {
		return nil, err
	}
	s := NewStrain(n)
	if err := StrainInto(s, ux, uy, dx, false); err != nil {
		return nil, err
	}
	return s, nil
}

// StrainInto is ComputeStrain writing into preallocated fields.
func StrainInto(dst *Strain, ux, uy *mat.Dense, dx float64, par bool) error {
	n, err := checkDiff(ux, dx)
	if err != nil {
		return err
	}
	if err := grid.CheckShape(n, uy, dst.Uxx, dst.Uyy, dst.Uxy); err != nil {
		return err
	}

	gradX(dst.Uxx, ux, dx, false, par)
	gradY(dst.Uyy, uy, dx, false, par)

	gradY(dst.Uxy, ux, dx, false, par)
	gradX(dst.Uxy, uy, dx, true, par)
	dst.Uxy.Scale(0.5, dst.Uxy)
	return nil
}
