package relax_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/elastosim/internal/elastic"
	"github.com/san-kum/elastosim/internal/grid"
	"github.com/san-kum/elastosim/internal/relax"
	"gonum.org/v1/gonum/mat"
)

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func run(cfg relax.Config) (*relax.Result, error) {
	s, err := relax.New(cfg)
	Expect(err).NotTo(HaveOccurred())
	return s.Run(context.Background())
}

var _ = Describe("Config", func() {
	It("defaults to the reference scenario", func() {
		cfg := relax.DefaultConfig()
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.N).To(Equal(21))
		Expect(cfg.StepSize).To(BeNumerically("~", 5.625e-5, 1e-15))
		Expect(cfg.Boundary).To(Equal(elastic.DefaultBoundary()))
	})

	It("computes the stable step from stiffness and spacing", func() {
		Expect(relax.StableStep(20, 0.05)).To(BeNumerically("~", 5.625e-5, 1e-15))
		Expect(relax.StableStep(40, 0.05)).To(BeNumerically("~", 5.625e-5/2, 1e-15))
		Expect(relax.StableStep(20, 0.025)).To(BeNumerically("~", 5.625e-5/4, 1e-15))
	})

	DescribeTable("rejects invalid parameters",
		func(mutate func(*relax.Config)) {
			cfg := relax.DefaultConfig()
			mutate(&cfg)
			Expect(cfg.Validate()).To(MatchError(elastic.ErrConfig))
			_, err := relax.New(cfg)
			Expect(err).To(MatchError(elastic.ErrConfig))
		},
		Entry("grid too small", func(c *relax.Config) { c.N = 2 }),
		Entry("zero stiffness", func(c *relax.Config) { c.Material.Young = 0 }),
		Entry("poisson at one half", func(c *relax.Config) { c.Material.Poisson = 0.5 }),
		Entry("zero density", func(c *relax.Config) { c.Load.Density = 0 }),
		Entry("negative gravity", func(c *relax.Config) { c.Load.Gravity = -1 }),
		Entry("zero iterations", func(c *relax.Config) { c.Iterations = 0 }),
		Entry("zero step", func(c *relax.Config) { c.StepSize = 0 }),
		Entry("NaN step", func(c *relax.Config) { c.StepSize = math.NaN() }),
		Entry("negative divergence factor", func(c *relax.Config) { c.DivergenceFactor = -1 }),
		Entry("negative tolerance", func(c *relax.Config) { c.Tolerance = -0.1 }),
		Entry("unknown condition", func(c *relax.Config) { c.Boundary.Top.Normal = "sliding" }),
	)

	It("rejects an external force of the wrong shape", func() {
		cfg := relax.DefaultConfig()
		cfg.Load.External = elastic.UniformForce(cfg.N+1, 1, 0)
		Expect(cfg.Validate()).To(MatchError(grid.ErrShape))
	})
})

var _ = Describe("Solver", func() {
	var cfg relax.Config

	BeforeEach(func() {
		cfg = relax.DefaultConfig()
	})

	Context("without load", func() {
		It("keeps zero deformation fixed", func() {
			cfg.Load.Gravity = 0
			cfg.Iterations = 50

			res, err := run(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Trace).To(HaveLen(50))
			for _, r := range res.Trace {
				Expect(r).To(BeZero())
			}
			Expect(grid.MaxAbs(res.Ux)).To(BeZero())
			Expect(grid.MaxAbs(res.Uy)).To(BeZero())
			Expect(grid.MaxAbs(res.Sxx)).To(BeZero())
		})
	})

	Context("on the reference scenario", func() {
		var res *relax.Result

		BeforeEach(func() {
			var err error
			res, err = run(cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("records one residual per iteration", func() {
			Expect(res.Iterations).To(Equal(cfg.Iterations))
			Expect(res.Trace).To(HaveLen(cfg.Iterations))
			Expect(res.Converged).To(BeFalse())
		})

		It("starts from the integrated weight", func() {
			// Zero stress on the first iteration leaves only rho*g.
			Expect(res.Trace[0]).To(BeNumerically("~", 9.81*21*21*0.05*0.05, 1e-9))
		})

		It("relaxes the residual", func() {
			n := len(res.Trace)
			Expect(res.Residual()).To(BeNumerically("<", 1e-2*res.Trace[0]))
			Expect(mean(res.Trace[3*n/4:])).To(BeNumerically("<=", mean(res.Trace[n/2:3*n/4])))
		})

		It("sags under gravity", func() {
			n := res.Geometry.N
			Expect(res.Uy.At(n-1, n-1)).To(BeNumerically("<", -0.1))
			Expect(res.Uy.At(n-1, n/2)).To(BeNumerically("<", 0))
		})

		It("keeps the fixed edges pinned", func() {
			n := res.Geometry.N
			for k := 0; k < n; k++ {
				Expect(res.Ux.At(k, 0)).To(BeZero())
				Expect(res.Uy.At(0, k)).To(BeZero())
			}
		})

		It("reports free-edge stress as zero", func() {
			n := res.Geometry.N
			for k := 0; k < n; k++ {
				Expect(res.Sxx.At(k, n-1)).To(BeZero())
				Expect(res.Syy.At(n-1, k)).To(BeZero())
				Expect(res.Sxy.At(0, k)).To(BeZero())
				Expect(res.Sxy.At(n-1, k)).To(BeZero())
				Expect(res.Syx.At(k, 0)).To(BeZero())
				Expect(res.Syx.At(k, n-1)).To(BeZero())
			}
		})

		It("keeps Syx distinct from Sxy on the side edges", func() {
			n := res.Geometry.N
			st := res.Stress()
			Expect(st.Syx).To(BeIdenticalTo(res.Syx))
			Expect(st.Sxy).To(BeIdenticalTo(res.Sxy))
			Expect(res.Syx.At(n/2, 0)).To(BeZero())
			Expect(res.Syx.At(n/2, n/2)).To(Equal(res.Sxy.At(n/2, n/2)))
		})

		It("returns displaced positions", func() {
			px, py := res.Displaced()
			n := res.Geometry.N
			Expect(px.At(0, 0)).To(BeZero())
			Expect(py.At(n-1, n-1)).To(BeNumerically("~", 1+res.Uy.At(n-1, n-1), 1e-12))
			Expect(px.At(3, n-1)).To(BeNumerically("~", 1+res.Ux.At(3, n-1), 1e-12))
		})
	})

	It("pins the fixed edges after every iteration", func() {
		cfg.Iterations = 100
		s, err := relax.New(cfg)
		Expect(err).NotTo(HaveOccurred())

		calls := 0
		s.AddObserver(relax.FuncObserver(func(it int, residual float64, s *relax.Solver) {
			Expect(it).To(Equal(calls))
			calls++
			ux, uy := s.Displacement()
			n := s.Geometry().N
			for k := 0; k < n; k++ {
				Expect(ux.At(k, 0)).To(BeZero())
				Expect(uy.At(0, k)).To(BeZero())
			}
		}))

		_, err = s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal(100))
	})

	It("is deterministic", func() {
		cfg.Iterations = 300
		a, err := run(cfg)
		Expect(err).NotTo(HaveOccurred())
		b, err := run(cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(a.Trace).To(Equal(b.Trace))
		Expect(mat.Equal(a.Ux, b.Ux)).To(BeTrue())
		Expect(mat.Equal(a.Uy, b.Uy)).To(BeTrue())
		Expect(mat.Equal(a.Sxx, b.Sxx)).To(BeTrue())
	})

	It("gives the same answer in parallel", func() {
		cfg.N = grid.MinParallelRows + 1
		cfg.StepSize = relax.StableStep(cfg.Material.Young, 1/float64(cfg.N-1))
		cfg.Iterations = 20

		serial, err := run(cfg)
		Expect(err).NotTo(HaveOccurred())
		cfg.Parallel = true
		par, err := run(cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(par.Trace).To(Equal(serial.Trace))
		Expect(mat.Equal(par.Ux, serial.Ux)).To(BeTrue())
		Expect(mat.Equal(par.Uy, serial.Uy)).To(BeTrue())
	})

	It("stops early once the tolerance is met", func() {
		cfg.Tolerance = 0.5
		res, err := run(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Converged).To(BeTrue())
		Expect(res.Iterations).To(BeNumerically("<", cfg.Iterations))
		Expect(res.Residual()).To(BeNumerically("<=", 0.5*res.Trace[0]))
	})

	It("honours cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s, err := relax.New(cfg)
		Expect(err).NotTo(HaveOccurred())
		res, err := s.Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.Iterations).To(BeZero())
	})

	It("resets to zero deformation", func() {
		cfg.Iterations = 10
		s, err := relax.New(cfg)
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		s.Reset()
		ux, uy := s.Displacement()
		Expect(grid.MaxAbs(ux)).To(BeZero())
		Expect(grid.MaxAbs(uy)).To(BeZero())
		Expect(s.Trace()).To(BeEmpty())
		Expect(s.Done()).To(BeFalse())
	})

	Context("with an oversized step", func() {
		It("reports divergence with iteration context", func() {
			cfg.StepSize *= 4
			res, err := run(cfg)
			Expect(err).To(MatchError(elastic.ErrDiverged))

			var iterErr *relax.IterationError
			Expect(errors.As(err, &iterErr)).To(BeTrue())
			Expect(iterErr.Iteration).To(BeNumerically("<", 50))
			Expect(iterErr.StepSize).To(Equal(cfg.StepSize))
			Expect(iterErr.Residual).To(BeNumerically(">", 1e6*res.Trace[0]))
		})

		It("reports non-finite values when divergence checks are off", func() {
			cfg.StepSize *= 10
			cfg.DivergenceFactor = 0
			cfg.Iterations = 2000
			res, err := run(cfg)
			Expect(err).To(MatchError(elastic.ErrNonFinite))
			Expect(res.Iterations).To(BeNumerically("<", cfg.Iterations))
		})
	})
})
