// Package relax drives the explicit gradient-descent relaxation of a 2D
// elastic body toward static equilibrium.
//
// Each iteration recomputes strain, stress and force density from the
// current displacement, applies U += h*F and records the integrated force
// magnitude in the convergence trace:
//
//	cfg := relax.DefaultConfig()
//	s, _ := relax.New(cfg)
//	res, err := s.Run(ctx)
//
// # Step Size
//
// The update is an explicit scheme. It is stable only while h times the
// largest eigenvalue of the discrete stiffness operator stays below 2, and
// that eigenvalue scales like (2mu+lambda)/dx^2. A stiffer material or a
// finer grid therefore needs a smaller step, and a smaller step means more
// iterations to reach the same residual. [StableStep] gives the reference
// value 0.45*dx^2/E. A step about 1.5x larger already diverges on the
// reference scenario; [Sweep] locates the limit for other setups.
//
// # Thread Safety
//
// A Solver is NOT thread-safe. [Sweep] runs independent solves in parallel,
// one Solver per goroutine.
package relax
