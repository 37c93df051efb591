package metrics

import (
	"github.com/san-kum/elastosim/internal/elastic"
	"github.com/san-kum/elastosim/internal/relax"
)

// Energy returns the stored elastic energy 1/2 sum(S:U) dx^2 for matching
// strain and stress fields.
func Energy(s *elastic.Strain, st *elastic.Stress, dx float64) float64 {
	r, c := s.Uxx.Dims()
	w := 0.0
	for i := 0; i < r; i++ {
		exx, eyy, exy := s.Uxx.RawRowView(i), s.Uyy.RawRowView(i), s.Uxy.RawRowView(i)
		sxx, syy := st.Sxx.RawRowView(i), st.Syy.RawRowView(i)
		sxy, syx := st.Sxy.RawRowView(i), st.Syx.RawRowView(i)
		for j := 0; j < c; j++ {
			w += sxx[j]*exx[j] + syy[j]*eyy[j] + (sxy[j]+syx[j])*exy[j]
		}
	}
	return 0.5 * w * dx * dx
}

// StrainEnergy tracks the energy of the last observed iteration and the
// peak seen during the run.
type StrainEnergy struct {
	name    string
	current float64
	peak    float64
}

func NewStrainEnergy() *StrainEnergy {
	return &StrainEnergy{name: "strain_energy"}
}

func (e *StrainEnergy) Name() string { return e.name }

func (e *StrainEnergy) Observe(it int, residual float64, s *relax.Solver) {
	e.current = Energy(s.Strain(), s.Stress(), s.Geometry().Dx)
	if e.current > e.peak {
		e.peak = e.current
	}
}

func (e *StrainEnergy) Value() float64 { return e.current }

func (e *StrainEnergy) Peak() float64 { return e.peak }

func (e *StrainEnergy) Reset() {
	e.current = 0
	e.peak = 0
}
