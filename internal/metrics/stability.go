package metrics

import "github.com/san-kum/elastosim/internal/relax"

// Monotonicity is the fraction of iterations whose residual did not exceed
// the previous one. A stable relaxation stays close to 1.
type Monotonicity struct {
	name    string
	last    float64
	rises   int
	samples int
}

func NewMonotonicity() *Monotonicity {
	return &Monotonicity{name: "monotonicity"}
}

func (m *Monotonicity) Name() string {
	return m.name
}

func (m *Monotonicity) Observe(it int, residual float64, s *relax.Solver) {
	if m.samples > 0 && residual > m.last {
		m.rises++
	}
	m.last = residual
	m.samples++
}

func (m *Monotonicity) Value() float64 {
	if m.samples < 2 {
		return 1.0
	}
	return 1.0 - float64(m.rises)/float64(m.samples-1)
}

func (m *Monotonicity) Reset() {
	m.last = 0
	m.rises = 0
	m.samples = 0
}

// Decay is the ratio of the latest residual to the first one.
type Decay struct {
	name  string
	first float64
	last  float64
	seen  bool
}

func NewDecay() *Decay {
	return &Decay{name: "decay"}
}

func (d *Decay) Name() string {
	return d.name
}

func (d *Decay) Observe(it int, residual float64, s *relax.Solver) {
	if !d.seen {
		d.first = residual
		d.seen = true
	}
	d.last = residual
}

func (d *Decay) Value() float64 {
	if d.first == 0 {
		return 0
	}
	return d.last / d.first
}

func (d *Decay) Reset() {
	d.first, d.last = 0, 0
	d.seen = false
}
