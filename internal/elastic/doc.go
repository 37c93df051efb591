// Package elastic evaluates the fields of 2D linear elastostatics on a
// uniform grid.
//
// One relaxation iteration chains the evaluators in a fixed order:
//
//   - [ComputeStrain]: symmetric strain from the displacement field
//   - [ComputeStress]: Hooke's law for a homogeneous isotropic material
//   - [Boundary.Apply]: per-edge fixed/free overrides
//   - [ComputeForce]: stress divergence plus body and external forces
//
// Spatial derivatives are second-order accurate everywhere: central
// differences inside the grid, one-sided three-point stencils on the first
// and last row/column.
//
// # Index Convention
//
// S_ij is the i-component of traction on a face with normal j, so the
// traction on an edge is (S_xn, S_yn) with n the edge normal. The force
// density is F_i = dS_ix/dx + dS_iy/dy + b_i. Under this convention every
// stress entry that a free edge sets to zero is one that is differentiated
// across that edge.
package elastic
