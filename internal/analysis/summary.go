package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type TraceSummary struct {
	Iterations int     `json:"iterations"`
	First      float64 `json:"first"`
	Final      float64 `json:"final"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	// Ratio is Final/First, zero when First is zero.
	Ratio float64 `json:"ratio"`
}

func Summarize(trace []float64) TraceSummary {
	if len(trace) == 0 {
		return TraceSummary{}
	}
	s := TraceSummary{
		Iterations: len(trace),
		First:      trace[0],
		Final:      trace[len(trace)-1],
		Min:        floats.Min(trace),
		Max:        floats.Max(trace),
	}
	if s.First != 0 {
		s.Ratio = s.Final / s.First
	}
	return s
}

type FieldStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Field summarizes every value of f.
func Field(f *mat.Dense) FieldStats {
	r, c := f.Dims()
	vals := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		vals = append(vals, f.RawRowView(i)...)
	}
	mean, std := stat.MeanStdDev(vals, nil)
	return FieldStats{
		Min:    floats.Min(vals),
		Max:    floats.Max(vals),
		Mean:   mean,
		StdDev: std,
	}
}
