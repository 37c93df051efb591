package analysis

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestConvergenceRateExponential(t *testing.T) {
	trace := make([]float64, 200)
	for i := range trace {
		trace[i] = 10 * math.Exp(-0.01*float64(i))
	}

	fit, err := ConvergenceRate(trace, 0.5)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if math.Abs(fit.Rate-0.01) > 1e-9 {
		t.Errorf("expected rate 0.01, got %g", fit.Rate)
	}
	if math.Abs(fit.Intercept-math.Log(10)) > 1e-6 {
		t.Errorf("expected intercept ln 10, got %g", fit.Intercept)
	}
	if fit.From != 100 {
		t.Errorf("expected fit from 100, got %d", fit.From)
	}
	if fit.R2 < 0.999999 {
		t.Errorf("expected perfect fit, got R2 %g", fit.R2)
	}
	if got := fit.IterationsFor(math.Exp(-1)); math.Abs(got-100) > 1e-6 {
		t.Errorf("expected 100 iterations per e-fold, got %g", got)
	}
}

func TestConvergenceRateSkipsInvalid(t *testing.T) {
	trace := []float64{0, math.NaN(), 4, 2, 1, math.Inf(1)}
	fit, err := ConvergenceRate(trace, 0)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if math.Abs(fit.Rate-math.Ln2) > 1e-9 {
		t.Errorf("expected rate ln 2, got %g", fit.Rate)
	}
}

func TestConvergenceRateShort(t *testing.T) {
	tests := []struct {
		name  string
		trace []float64
	}{
		{"empty", nil},
		{"single", []float64{1}},
		{"all zero", []float64{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ConvergenceRate(tt.trace, 0); err != ErrShortTrace {
				t.Errorf("expected ErrShortTrace, got %v", err)
			}
		})
	}
}

func TestIterationsForNonDecaying(t *testing.T) {
	if got := (Fit{Rate: -0.1}).IterationsFor(0.5); !math.IsInf(got, 1) {
		t.Errorf("expected +Inf, got %g", got)
	}
	if got := (Fit{Rate: 0.1}).IterationsFor(2); got != 0 {
		t.Errorf("expected 0, got %g", got)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{8, 9, 4, 2})
	if s.Iterations != 4 || s.First != 8 || s.Final != 2 || s.Min != 2 || s.Max != 9 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.Ratio != 0.25 {
		t.Errorf("expected ratio 0.25, got %g", s.Ratio)
	}
	if (Summarize(nil) != TraceSummary{}) {
		t.Error("expected zero summary for empty trace")
	}
}

func TestField(t *testing.T) {
	f := mat.NewDense(2, 2, []float64{1, 2, 3, 6})
	s := Field(f)
	if s.Min != 1 || s.Max != 6 || s.Mean != 3 {
		t.Errorf("unexpected stats %+v", s)
	}
	// sample standard deviation of {1,2,3,6}
	if math.Abs(s.StdDev-math.Sqrt(14.0/3.0)) > 1e-12 {
		t.Errorf("expected std %g, got %g", math.Sqrt(14.0/3.0), s.StdDev)
	}
}
