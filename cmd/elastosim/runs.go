package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/elastosim/internal/analysis"
	"github.com/san-kum/elastosim/internal/elastic"
	"github.com/san-kum/elastosim/internal/relax"
	"github.com/san-kum/elastosim/internal/storage"
	"github.com/san-kum/elastosim/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

const fieldNames = "ux, uy, sxx, syy, sxy, syx, vonmises"

func scenarioName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// logSeries maps a residual trace to log10, dropping values asciigraph
// cannot draw.
func logSeries(trace []float64) []float64 {
	out := make([]float64, 0, len(trace))
	for _, r := range trace {
		if r <= 0 || math.IsInf(r, 0) || math.IsNaN(r) {
			continue
		}
		out = append(out, math.Log10(r))
	}
	return out
}

func pickField(res *relax.Result, name string, nu float64) (*mat.Dense, error) {
	switch name {
	case "ux":
		return res.Ux, nil
	case "uy":
		return res.Uy, nil
	case "sxx":
		return res.Sxx, nil
	case "syy":
		return res.Syy, nil
	case "sxy":
		return res.Sxy, nil
	case "syx":
		return res.Syx, nil
	case "vonmises":
		return elastic.VonMises(res.Stress(), nu), nil
	}
	return nil, fmt.Errorf("unknown field: %s (available: %s)", name, fieldNames)
}

func openStore() (*storage.Store, error) {
	return storage.Open(dataDir)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(context.Background())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tGRID\tSTEP\tITERS\tRESIDUAL\tSTATUS")
	for _, run := range runs {
		status := "ok"
		switch {
		case run.Error != "":
			status = "failed"
		case run.Converged:
			status = "converged"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3e\t%d\t%.3e\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.GridSize,
			run.StepSize,
			run.Iterations,
			run.FinalResidual,
			status,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("time: %s\n", meta.Timestamp.Format(time.RFC3339))
	fmt.Printf("grid: %dx%d\n", meta.GridSize, meta.GridSize)
	fmt.Printf("material: E=%g nu=%g\n", meta.Young, meta.Poisson)
	fmt.Printf("step: %.6e\n", meta.StepSize)
	fmt.Printf("iterations: %d\n", meta.Iterations)
	fmt.Printf("residual: %.6e -> %.6e\n", meta.FirstResidual, meta.FinalResidual)
	fmt.Printf("elapsed: %v\n", meta.Elapsed.Round(time.Millisecond))
	if meta.Converged {
		fmt.Println("converged: yes")
	}
	if meta.Error != "" {
		fmt.Printf("error: %s\n", meta.Error)
	}
	if meta.Config != nil && meta.Config.Description != "" {
		fmt.Printf("scenario: %s\n", meta.Config.Description)
	}

	if len(meta.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for _, k := range sortedKeys(meta.Metrics) {
			fmt.Printf("  %s: %.6e\n", k, meta.Metrics[k])
		}
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	meta, err := st.Load(ctx, args[0])
	if err != nil {
		return err
	}
	res, err := st.LoadResult(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("iterations: %d\n\n", len(res.Trace))

	if data := logSeries(res.Trace); len(data) > 1 {
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("log10 residual vs iteration"),
		))
		fmt.Println()
	}

	f, err := pickField(res, field, meta.Poisson)
	if err != nil {
		return err
	}
	stats := analysis.Field(f)
	fmt.Printf("%s  min %.4e  max %.4e  mean %.4e  std %.4e\n", field, stats.Min, stats.Max, stats.Mean, stats.StdDev)
	cells := min(meta.GridSize, 40)
	fmt.Print(viz.Heatmap(f, cells, cells))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	trace, err := st.LoadTrace(context.Background(), args[0])
	if err != nil {
		return err
	}

	sum := analysis.Summarize(trace)
	fmt.Printf("run: %s\n", args[0])
	fmt.Printf("iterations: %d\n", sum.Iterations)
	fmt.Printf("residual first: %.6e\n", sum.First)
	fmt.Printf("residual final: %.6e\n", sum.Final)
	fmt.Printf("residual range: [%.6e, %.6e]\n", sum.Min, sum.Max)
	fmt.Printf("reduction ratio: %.6e\n", sum.Ratio)

	fit, err := analysis.ConvergenceRate(trace, 0.5)
	if err != nil {
		return err
	}
	fmt.Printf("\nconvergence (fit from iteration %d):\n", fit.From)
	fmt.Printf("  rate per iteration: %.6e\n", fit.Rate)
	fmt.Printf("  r squared: %.4f\n", fit.R2)
	if n := fit.IterationsFor(0.1); !math.IsInf(n, 1) {
		fmt.Printf("  iterations per decade: %.0f\n", n)
	} else {
		fmt.Println("  residual is not decaying")
	}
	return nil
}

func deleteRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}
