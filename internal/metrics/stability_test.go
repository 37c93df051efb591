package metrics

import (
	"math"
	"testing"
)

func TestMonotonicity(t *testing.T) {
	tests := []struct {
		name  string
		trace []float64
		want  float64
	}{
		{"empty", nil, 1},
		{"single", []float64{3}, 1},
		{"decreasing", []float64{4, 3, 2, 1}, 1},
		{"flat", []float64{2, 2, 2}, 1},
		{"one rise", []float64{4, 5, 3, 2, 1}, 0.75},
		{"increasing", []float64{1, 2, 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMonotonicity()
			for i, r := range tt.trace {
				m.Observe(i, r, nil)
			}
			if got := m.Value(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %g, got %g", tt.want, got)
			}
		})
	}
}

func TestDecay(t *testing.T) {
	d := NewDecay()
	if d.Value() != 0 {
		t.Errorf("expected 0 before any sample, got %g", d.Value())
	}
	for i, r := range []float64{10, 5, 2} {
		d.Observe(i, r, nil)
	}
	if got := d.Value(); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("expected 0.2, got %g", got)
	}
	d.Reset()
	d.Observe(0, 4, nil)
	if d.Value() != 1 {
		t.Errorf("expected 1 after reset, got %g", d.Value())
	}
}

func TestDefaultsOnReferenceRun(t *testing.T) {
	ms := Defaults()
	res := runWith(t, 500, ms...)

	names := map[string]bool{}
	for _, m := range ms {
		if names[m.Name()] {
			t.Errorf("duplicate metric name %q", m.Name())
		}
		names[m.Name()] = true
	}

	if got := res.Metrics["residual"]; got != res.Residual() {
		t.Errorf("residual metric %g, trace ends at %g", got, res.Residual())
	}
	if got := res.Metrics["decay"]; got <= 0 || got >= 1 {
		t.Errorf("expected decay in (0, 1), got %g", got)
	}
	if got := res.Metrics["monotonicity"]; got < 0.99 {
		t.Errorf("expected monotone relaxation, got %g", got)
	}
	if got := res.Metrics["max_deflection"]; got <= 0 {
		t.Errorf("expected positive deflection, got %g", got)
	}
}
