package grid

import (
	"fmt"

	"github.com/cpmech/gosl/utl"
	"gonum.org/v1/gonum/mat"
)

// MinSize is the smallest grid that supports the second-order edge stencil.
const MinSize = 3

// Geometry describes the N x N sampling of the unit square.
type Geometry struct {
	N  int
	Dx float64
}

func NewGeometry(n int) (Geometry, error) {
	if n < MinSize {
		return Geometry{}, fmt.Errorf("grid size %d below minimum %d: %w", n, MinSize, ErrShape)
	}
	return Geometry{N: n, Dx: 1.0 / float64(n-1)}, nil
}

// New allocates a zero field of the geometry's size.
func (g Geometry) New() *mat.Dense {
	return New(g.N)
}

// Coords returns the x (column) and y (row) coordinate axes.
func (g Geometry) Coords() (x, y []float64) {
	return utl.LinSpace(0, 1, g.N), utl.LinSpace(0, 1, g.N)
}

// MeshGrid expands the axes into full coordinate fields, X varying along
// columns and Y along rows.
func (g Geometry) MeshGrid() (xx, yy *mat.Dense) {
	x, y := g.Coords()
	xx, yy = g.New(), g.New()
	for i := 0; i < g.N; i++ {
		copy(xx.RawRowView(i), x)
		row := yy.RawRowView(i)
		for j := range row {
			row[j] = y[i]
		}
	}
	return xx, yy
}

// Cell is the area weight of one grid point in discrete integrals.
func (g Geometry) Cell() float64 {
	return g.Dx * g.Dx
}
