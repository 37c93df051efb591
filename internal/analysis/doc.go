// Package analysis post-processes relaxation runs.
//
//   - [ConvergenceRate]: exponential decay rate of the residual trace
//   - [Summarize]: first, final and extreme residuals of a trace
//   - [Field]: min, max, mean and spread of a field
//
// # Convergence Rate
//
// Once the stiffest modes have been damped the residual of a stable run
// decays roughly like exp(-k*i). A least-squares fit of log(residual)
// against the iteration index estimates k:
//
//	fit, err := analysis.ConvergenceRate(res.Trace, 0.5)
//	if fit.Rate > 0 {
//	    // residual is shrinking
//	}
package analysis
