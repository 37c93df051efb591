// Package viz renders relaxation runs in the terminal.
//
// The live view is a Bubble Tea program that steps a [relax.Solver] a batch
// of iterations per frame and shows the deforming body next to the
// residual trace:
//
//   - [Model]: live relaxation view
//   - [Picker]: preset menu that launches the live view
//   - [Canvas]: Braille canvas for the deformed lattice
//   - [Heatmap]: coloured cell rendering of a field
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to zero deformation
//	F     - Cycle the displayed field
//	T     - Cycle colour themes
//	+/-   - Change displacement exaggeration
//	./,   - More or fewer iterations per frame
//	?     - Show help overlay
package viz
