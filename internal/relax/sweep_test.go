package relax_test

import (
	"context"
	"log"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/elastosim/internal/elastic"
	"github.com/san-kum/elastosim/internal/relax"
)

var _ = Describe("Sweep", func() {
	It("separates stable from unstable steps", func() {
		cfg := relax.DefaultConfig()
		cfg.Iterations = 200
		h := cfg.StepSize

		points, err := relax.Sweep(context.Background(), cfg, []float64{4 * h, 0.5 * h, h})
		Expect(err).NotTo(HaveOccurred())
		Expect(points).To(HaveLen(3))

		Expect(points[0].Stable).To(BeFalse())
		Expect(points[0].Err).To(MatchError(elastic.ErrDiverged))
		Expect(points[1].Stable).To(BeTrue())
		Expect(points[2].Stable).To(BeTrue())
		Expect(points[2].Final).To(BeNumerically("<", points[1].Final))

		Expect(relax.StabilityLimit(points)).To(Equal(h))
	})

	It("aborts on invalid configuration", func() {
		cfg := relax.DefaultConfig()
		_, err := relax.Sweep(context.Background(), cfg, []float64{-1})
		Expect(err).To(MatchError(elastic.ErrConfig))
	})

	It("finds no limit when nothing is stable", func() {
		Expect(relax.StabilityLimit([]relax.SweepPoint{{StepSize: 1}})).To(BeZero())
	})
})

var _ = Describe("LogObserver", func() {
	It("logs at the requested interval and on the last iteration", func() {
		var buf strings.Builder
		cfg := relax.DefaultConfig()
		cfg.Iterations = 25

		s, err := relax.New(cfg)
		Expect(err).NotTo(HaveOccurred())
		s.AddObserver(relax.NewLogObserver(log.New(&buf, "", 0), 10))
		_, err = s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(4))
		Expect(lines[0]).To(HavePrefix("iteration 1/25 residual"))
		Expect(lines[3]).To(HavePrefix("iteration 25/25 residual"))
	})
})
