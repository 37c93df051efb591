package grid

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewGeometry(t *testing.T) {
	tests := []struct {
		n       int
		wantErr bool
		dx      float64
	}{
		{2, true, 0},
		{0, true, 0},
		{3, false, 0.5},
		{21, false, 0.05},
	}

	for _, tt := range tests {
		g, err := NewGeometry(tt.n)
		if tt.wantErr {
			if !errors.Is(err, ErrShape) {
				t.Errorf("n=%d: expected ErrShape, got %v", tt.n, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("n=%d: unexpected error %v", tt.n, err)
		}
		if math.Abs(g.Dx-tt.dx) > 1e-15 {
			t.Errorf("n=%d: dx = %v, want %v", tt.n, g.Dx, tt.dx)
		}
	}
}

func TestGeometry_Coords(t *testing.T) {
	g, _ := NewGeometry(5)
	x, y := g.Coords()
	if len(x) != 5 || len(y) != 5 {
		t.Fatalf("expected 5 coords, got %d and %d", len(x), len(y))
	}
	if x[0] != 0 || math.Abs(x[4]-1) > 1e-15 {
		t.Errorf("x axis spans [%v, %v], want [0, 1]", x[0], x[4])
	}
	if math.Abs(y[1]-g.Dx) > 1e-15 {
		t.Errorf("y[1] = %v, want %v", y[1], g.Dx)
	}
}

func TestGeometry_MeshGrid(t *testing.T) {
	g, _ := NewGeometry(4)
	xx, yy := g.MeshGrid()
	if xx.At(2, 3) != xx.At(0, 3) {
		t.Error("X should be constant along rows")
	}
	if yy.At(2, 0) != yy.At(2, 3) {
		t.Error("Y should be constant along columns")
	}
	if math.Abs(xx.At(0, 3)-1) > 1e-15 || math.Abs(yy.At(3, 0)-1) > 1e-15 {
		t.Error("mesh should reach the far corner at (1, 1)")
	}
}

func TestCheckShape(t *testing.T) {
	a := New(4)
	b := mat.NewDense(4, 3, nil)

	if err := CheckShape(4, a, New(4)); err != nil {
		t.Errorf("matching fields: %v", err)
	}

	tests := []struct {
		name   string
		n      int
		fields []*mat.Dense
	}{
		{"non-square", 4, []*mat.Dense{a, b}},
		{"wrong size", 5, []*mat.Dense{a}},
		{"nil field", 4, []*mat.Dense{a, nil}},
		{"too small", 2, []*mat.Dense{New(2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckShape(tt.n, tt.fields...); !errors.Is(err, ErrShape) {
				t.Errorf("expected ErrShape, got %v", err)
			}
		})
	}
}

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  bool
	}{
		{"normal", 1.5, true},
		{"NaN", math.NaN(), false},
		{"+Inf", math.Inf(1), false},
		{"-Inf", math.Inf(-1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(3)
			f.Set(2, 1, tt.value)
			if got := IsFinite(f); got != tt.want {
				t.Errorf("IsFinite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEdgeSetters(t *testing.T) {
	f := New(3)
	SetRow(f, 0, 2)
	SetCol(f, 2, -1)
	if f.At(0, 0) != 2 || f.At(0, 1) != 2 {
		t.Errorf("row 0 not set: %v", mat.Formatted(f))
	}
	if f.At(1, 2) != -1 || f.At(0, 2) != -1 {
		t.Errorf("column 2 not set: %v", mat.Formatted(f))
	}
	if MaxAbs(f) != 2 {
		t.Errorf("MaxAbs = %v, want 2", MaxAbs(f))
	}
}

func TestRows_CoversEveryRow(t *testing.T) {
	for _, par := range []bool{false, true} {
		n := 2 * MinParallelRows
		var visited [2 * MinParallelRows]int32
		Rows(n, par, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				atomic.AddInt32(&visited[i], 1)
			}
		})
		for i, v := range visited {
			if v != 1 {
				t.Fatalf("parallel=%v: row %d visited %d times", par, i, v)
			}
		}
	}
}

func TestPool(t *testing.T) {
	p := NewPool(4)

	f := p.Get()
	if r, c := f.Dims(); r != 4 || c != 4 {
		t.Fatalf("pool returned %dx%d field", r, c)
	}
	f.Set(1, 1, 3)
	p.Put(f)

	g := p.Get()
	if g.At(1, 1) != 0 {
		t.Error("pool did not reset field")
	}

	p.Put(New(5))
	p.Put(nil)
}

func TestClone(t *testing.T) {
	f := New(3)
	f.Set(0, 0, 1)
	c := Clone(f)
	c.Set(0, 0, 99)
	if f.At(0, 0) == 99 {
		t.Error("Clone did not create independent copy")
	}
}
