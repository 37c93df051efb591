package relax

import "log"

// LogObserver prints the residual every Every iterations.
type LogObserver struct {
	Logger *log.Logger
	Every  int
}

func NewLogObserver(l *log.Logger, every int) *LogObserver {
	if every <= 0 {
		every = 1
	}
	return &LogObserver{Logger: l, Every: every}
}

func (o *LogObserver) OnIteration(it int, residual float64, s *Solver) {
	if it%o.Every != 0 && it != s.Config().Iterations-1 {
		return
	}
	o.Logger.Printf("iteration %d/%d residual %.6e", it+1, s.Config().Iterations, residual)
}

// FuncObserver adapts a plain function to Observer.
type FuncObserver func(it int, residual float64, s *Solver)

func (f FuncObserver) OnIteration(it int, residual float64, s *Solver) {
	f(it, residual, s)
}
