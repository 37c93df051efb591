package elastic

import (
	"math"

	"github.com/san-kum/elastosim/internal/grid"
	"gonum.org/v1/gonum/mat"
)

// Stress holds the four stress components. Sxy and Syx carry the same
// values until a boundary override zeroes one of them on an edge.
type Stress struct {
	Sxx, Syy, Sxy, Syx *mat.Dense
}

func NewStress(n int) *Stress {
	return &Stress{Sxx: grid.New(n), Syy: grid.New(n), Sxy: grid.New(n), Syx: grid.New(n)}
}

// ComputeStress applies Hooke's law:
//
//	Sxx = (2mu+lambda)Uxx + lambda Uyy
//	Syy = (2mu+lambda)Uyy + lambda Uxx
//	Sxy = Syx = 2mu Uxy
//
// mu and lambda are not checked. The caller must supply mu > 0 and
// 2mu+lambda > 0; other values silently produce an indefinite stiffness
// and the relaxation will not converge.
func ComputeStress(s *Strain, mu, lambda float64) (*Stress, error) {
	n, err := grid.Size(s.Uxx)
	if err != nil {
		return nil, err
	}
	st := NewStress(n)
	if err := StressInto(st, s, mu, lambda, false); err != nil {
		return nil, err
	}
	return st, nil
}

// StressInto is ComputeStress writing into preallocated fields.
func StressInto(dst *Stress, s *Strain, mu, lambda float64, par bool) error {
	n, err := grid.Size(s.Uxx)
	if err != nil {
		return err
	}
	if err := grid.CheckShape(n, s.Uxx, s.Uyy, s.Uxy, dst.Sxx, dst.Syy, dst.Sxy, dst.Syx); err != nil {
		return err
	}

	p := 2*mu + lambda
	grid.Rows(n, par, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			exx, eyy, exy := s.Uxx.RawRowView(i), s.Uyy.RawRowView(i), s.Uxy.RawRowView(i)
			sxx, syy, sxy, syx := dst.Sxx.RawRowView(i), dst.Syy.RawRowView(i), dst.Sxy.RawRowView(i), dst.Syx.RawRowView(i)
			for j := 0; j < n; j++ {
				sxx[j] = p*exx[j] + lambda*eyy[j]
				syy[j] = p*eyy[j] + lambda*exx[j]
				sxy[j] = 2 * mu * exy[j]
				syx[j] = sxy[j]
			}
		}
	})
	return nil
}

// VonMises returns the plane-strain equivalent stress, taking
// Szz = nu(Sxx+Syy) and the shear from Sxy.
func VonMises(st *Stress, nu float64) *mat.Dense {
	n, _ := st.Sxx.Dims()
	out := grid.New(n)
	for i := 0; i < n; i++ {
		sxx, syy, sxy, o := st.Sxx.RawRowView(i), st.Syy.RawRowView(i), st.Sxy.RawRowView(i), out.RawRowView(i)
		for j := range o {
			szz := nu * (sxx[j] + syy[j])
			a, b, c := sxx[j]-syy[j], syy[j]-szz, szz-sxx[j]
			o[j] = math.Sqrt(0.5*(a*a+b*b+c*c) + 3*sxy[j]*sxy[j])
		}
	}
	return out
}
