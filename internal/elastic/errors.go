package elastic

import (
	"errors"

	"github.com/san-kum/elastosim/internal/grid"
)

var (
	// ErrConfig indicates a parameter outside its valid range.
	ErrConfig = errors.New("elastic: invalid configuration")

	// ErrShape indicates fields whose dimensions disagree with the grid.
	ErrShape = grid.ErrShape

	// ErrNonFinite indicates NaN or Inf in a displacement or force field.
	ErrNonFinite = errors.New("elastic: non-finite value in field")

	// ErrDiverged indicates the force residual grew past the divergence limit.
	ErrDiverged = errors.New("elastic: relaxation diverged")
)
