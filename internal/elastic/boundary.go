package elastic

import (
	"fmt"

	"github.com/san-kum/elastosim/internal/grid"
	"gonum.org/v1/gonum/mat"
)

// Condition selects which field an edge pins to zero for one component.
type Condition string

const (
	// Fixed pins the displacement component to zero.
	Fixed Condition = "fixed"
	// Free pins the matching stress component to zero.
	Free Condition = "free"
)

func (c Condition) Validate() error {
	switch c {
	case Fixed, Free:
		return nil
	}
	return fmt.Errorf("unknown boundary condition %q (want %q or %q): %w", string(c), Fixed, Free, ErrConfig)
}

// EdgeCondition pairs the condition on the component normal to an edge
// with the one tangential to it.
//
// On the left and right edges the normal pair is Ux / Sxx and the
// tangential pair is Uy / Syx. On the bottom and top edges the normal pair
// is Uy / Syy and the tangential pair is Ux / Sxy.
type EdgeCondition struct {
	Normal     Condition `yaml:"normal" json:"normal"`
	Tangential Condition `yaml:"tangential" json:"tangential"`
}

func (e EdgeCondition) Validate() error {
	if err := e.Normal.Validate(); err != nil {
		return fmt.Errorf("normal: %w", err)
	}
	if err := e.Tangential.Validate(); err != nil {
		return fmt.Errorf("tangential: %w", err)
	}
	return nil
}

// Boundary selects the condition on each edge of the unit square.
type Boundary struct {
	Left   EdgeCondition `yaml:"left" json:"left"`
	Right  EdgeCondition `yaml:"right" json:"right"`
	Bottom EdgeCondition `yaml:"bottom" json:"bottom"`
	Top    EdgeCondition `yaml:"top" json:"top"`
}

// DefaultBoundary models a body resting on a floor it can slide along,
// leaning on a wall it can slide up, free elsewhere.
func DefaultBoundary() Boundary {
	return Boundary{
		Left:   EdgeCondition{Normal: Fixed, Tangential: Free},
		Right:  EdgeCondition{Normal: Free, Tangential: Free},
		Bottom: EdgeCondition{Normal: Fixed, Tangential: Free},
		Top:    EdgeCondition{Normal: Free, Tangential: Free},
	}
}

func (b Boundary) Validate() error {
	edges := []struct {
		name string
		e    EdgeCondition
	}{{"left", b.Left}, {"right", b.Right}, {"bottom", b.Bottom}, {"top", b.Top}}
	for _, ed := range edges {
		if err := ed.e.Validate(); err != nil {
			return fmt.Errorf("%s edge %w", ed.name, err)
		}
	}
	return nil
}

// Apply enforces every edge condition on the stress and displacement
// fields in place.
func (b Boundary) Apply(st *Stress, ux, uy *mat.Dense) error {
	if err := b.ApplyStress(st); err != nil {
		return err
	}
	return b.ApplyDisplacement(ux, uy)
}

// ApplyStress zeroes the stress components of free edge conditions.
func (b Boundary) ApplyStress(st *Stress) error {
	n, err := grid.Size(st.Sxx)
	if err != nil {
		return err
	}
	if err := grid.CheckShape(n, st.Sxx, st.Syy, st.Sxy, st.Syx); err != nil {
		return err
	}
	last := n - 1

	for _, v := range []struct {
		e   EdgeCondition
		col int
	}{{b.Left, 0}, {b.Right, last}} {
		if v.e.Normal == Free {
			grid.SetCol(st.Sxx, v.col, 0)
		}
		if v.e.Tangential == Free {
			grid.SetCol(st.Syx, v.col, 0)
		}
	}
	for _, h := range []struct {
		e   EdgeCondition
		row int
	}{{b.Bottom, 0}, {b.Top, last}} {
		if h.e.Normal == Free {
			grid.SetRow(st.Syy, h.row, 0)
		}
		if h.e.Tangential == Free {
			grid.SetRow(st.Sxy, h.row, 0)
		}
	}
	return nil
}

// ApplyDisplacement zeroes the displacement components of fixed edge
// conditions.
func (b Boundary) ApplyDisplacement(ux, uy *mat.Dense) error {
	n, err := grid.Size(ux)
	if err != nil {
		return err
	}
	if err := grid.CheckShape(n, ux, uy); err != nil {
		return err
	}
	last := n - 1

	for _, v := range []struct {
		e   EdgeCondition
		col int
	}{{b.Left, 0}, {b.Right, last}} {
		if v.e.Normal == Fixed {
			grid.SetCol(ux, v.col, 0)
		}
		if v.e.Tangential == Fixed {
			grid.SetCol(uy, v.col, 0)
		}
	}
	for _, h := range []struct {
		e   EdgeCondition
		row int
	}{{b.Bottom, 0}, {b.Top, last}} {
		if h.e.Normal == Fixed {
			grid.SetRow(uy, h.row, 0)
		}
		if h.e.Tangential == Fixed {
			grid.SetRow(ux, h.row, 0)
		}
	}
	return nil
}
