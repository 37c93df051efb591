package grid

import "github.com/exascience/pargo/parallel"

// MinParallelRows is the grid size below which Rows stays on the caller's
// goroutine.
const MinParallelRows = 64

// Rows calls fn over [0, n) either directly or split into row ranges on
// several goroutines. It returns after all ranges complete.
func Rows(n int, par bool, fn func(lo, hi int)) {
	if !par || n < MinParallelRows {
		fn(0, n)
		return
	}
	parallel.Range(0, n, 0, fn)
}
