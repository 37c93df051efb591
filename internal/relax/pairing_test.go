package relax_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/elastosim/internal/elastic"
	"github.com/san-kum/elastosim/internal/grid"
	"github.com/san-kum/elastosim/internal/relax"
)

// relaxManually repeats the solver iteration with the elastic evaluators.
// With swapShear the force takes dSyx/dy in Fx and dSxy/dx in Fy.
func relaxManually(cfg relax.Config, iterations int, swapShear bool) []float64 {
	geom, err := grid.NewGeometry(cfg.N)
	Expect(err).NotTo(HaveOccurred())
	mu, lambda := cfg.Material.Lame()

	ux, uy := geom.New(), geom.New()
	strain := elastic.NewStrain(cfg.N)
	stress := elastic.NewStress(cfg.N)
	force := elastic.NewForce(cfg.N)

	var trace []float64
	for it := 0; it < iterations; it++ {
		Expect(elastic.StrainInto(strain, ux, uy, geom.Dx, false)).To(Succeed())
		Expect(elastic.StressInto(stress, strain, mu, lambda, false)).To(Succeed())
		Expect(cfg.Boundary.ApplyStress(stress)).To(Succeed())

		st := stress
		if swapShear {
			st = &elastic.Stress{Sxx: stress.Sxx, Syy: stress.Syy, Sxy: stress.Syx, Syx: stress.Sxy}
		}
		Expect(elastic.ForceInto(force, st, cfg.Load, geom.Dx, false)).To(Succeed())

		for i := 0; i < cfg.N; i++ {
			rx, ry := ux.RawRowView(i), uy.RawRowView(i)
			fx, fy := force.Fx.RawRowView(i), force.Fy.RawRowView(i)
			for j := range rx {
				rx[j] += cfg.StepSize * fx[j]
				ry[j] += cfg.StepSize * fy[j]
			}
		}
		r := force.Integral(geom.Dx)
		trace = append(trace, r)
		Expect(cfg.Boundary.ApplyDisplacement(ux, uy)).To(Succeed())
		if math.IsNaN(r) || math.IsInf(r, 0) {
			break
		}
	}
	return trace
}

var _ = Describe("Shear pairing", func() {
	const iterations = 600

	It("matches the solver iteration", func() {
		cfg := relax.DefaultConfig()
		cfg.Iterations = 50
		s, err := relax.New(cfg)
		Expect(err).NotTo(HaveOccurred())
		res, err := s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(relaxManually(cfg, 50, false)).To(Equal(res.Trace))
	})

	It("relaxes the reference scenario with the implemented pairing", func() {
		trace := relaxManually(relax.DefaultConfig(), iterations, false)
		Expect(trace).To(HaveLen(iterations))
		Expect(trace[iterations-1]).To(BeNumerically("<", trace[0]))
	})

	It("diverges at the reference step with the swapped pairing", func() {
		trace := relaxManually(relax.DefaultConfig(), iterations, true)
		peak := 0.0
		for _, r := range trace {
			if math.IsNaN(r) || math.IsInf(r, 0) {
				peak = math.Inf(1)
				break
			}
			peak = math.Max(peak, r)
		}
		Expect(peak).To(BeNumerically(">", 1e3*trace[0]))
	})
})
