// Package grid provides the uniform square discretization shared by the
// elasticity evaluators and the relaxation driver.
//
// The domain is the unit square sampled on an N x N grid with spacing
// dx = 1/(N-1). Fields are stored as [*mat.Dense] with rows indexing y and
// columns indexing x:
//
//	g, _ := grid.NewGeometry(21)
//	ux := g.New()
//	x, y := g.Coords()
//
// # Thread Safety
//
// Fields are plain matrices and carry no locking. [Rows] may split a loop
// over goroutines, but it returns only after every row range has finished,
// so callers can treat it as a barrier.
package grid
