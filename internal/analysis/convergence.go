package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrShortTrace indicates too few positive residuals to fit.
var ErrShortTrace = errors.New("analysis: trace too short to fit")

// Fit is a log-linear model log(r_i) = Intercept - Rate*i.
type Fit struct {
	Rate      float64
	Intercept float64
	// R2 is the coefficient of determination of the log fit.
	R2 float64
	// From is the first trace index used in the fit.
	From int
}

// ConvergenceRate fits the tail of trace, skipping the leading fraction
// skip of iterations. Zero or non-finite residuals are ignored.
func ConvergenceRate(trace []float64, skip float64) (Fit, error) {
	if skip < 0 || skip >= 1 {
		skip = 0
	}
	from := int(skip * float64(len(trace)))

	xs := make([]float64, 0, len(trace)-from)
	ys := make([]float64, 0, len(trace)-from)
	for i := from; i < len(trace); i++ {
		r := trace[i]
		if r <= 0 || math.IsInf(r, 0) || math.IsNaN(r) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, math.Log(r))
	}
	if len(xs) < 2 {
		return Fit{}, ErrShortTrace
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Fit{
		Rate:      -beta,
		Intercept: alpha,
		R2:        stat.RSquared(xs, ys, nil, alpha, beta),
		From:      from,
	}, nil
}

// IterationsFor estimates how many more iterations past the end of the
// fitted trace are needed to shrink the residual by factor. It returns
// +Inf when the fit does not decay.
func (f Fit) IterationsFor(factor float64) float64 {
	if f.Rate <= 0 || factor <= 0 {
		return math.Inf(1)
	}
	if factor >= 1 {
		return 0
	}
	return math.Log(1/factor) / f.Rate
}
