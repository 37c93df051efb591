package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/san-kum/elastosim/internal/config"
	"github.com/san-kum/elastosim/internal/relax"
	"github.com/san-kum/elastosim/internal/storage"
	"github.com/san-kum/elastosim/internal/watcher"
	"github.com/spf13/cobra"
)

func watchConfig(cmd *cobra.Command, args []string) error {
	path := args[0]
	name := scenarioName(path)

	var st *storage.Store
	if !noSave {
		var err error
		if st, err = openStore(); err != nil {
			return err
		}
		defer st.Close()
	}

	resolve := func(ctx context.Context) {
		cfg, err := config.Load(path)
		if err != nil {
			logger.Printf("failed to load config: %v", err)
			return
		}
		res, runErr := solve(ctx, cfg, 0)
		if res == nil {
			logger.Printf("invalid config: %v", runErr)
			return
		}
		if errors.Is(runErr, context.Canceled) {
			logger.Printf("superseded after %d iterations", res.Iterations)
			return
		}
		if st != nil {
			id, err := st.Save(context.Background(), name, cfg, res, runErr)
			if err != nil {
				logger.Printf("failed to save run: %v", err)
				return
			}
			fmt.Printf("run id: %s\n", id)
		}
		printSummary(res)
		if runErr != nil {
			logger.Printf("run failed: %v", runErr)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("watching %s (ctrl-c to stop)\n", path)
	resolve(ctx)

	err := watcher.New(path, resolve).WithLogger(logger).Watch(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	base, err := cfg.ToSolverConfig()
	if err != nil {
		return err
	}

	ref := relax.StableStep(cfg.Material.Young, cfg.Dx())
	steps := make([]float64, len(factors))
	for i, f := range factors {
		steps[i] = f * ref
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %s: %d step sizes, %d iterations each\n", name, len(steps), base.Iterations)
	points, err := relax.Sweep(ctx, base, steps)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FACTOR\tSTEP\tITERS\tFIRST\tFINAL\tSTABLE\tERROR")
	for _, p := range points {
		msg := "-"
		if p.Err != nil {
			msg = p.Err.Error()
		}
		fmt.Fprintf(w, "%.3g\t%.4e\t%d\t%.4e\t%.4e\t%v\t%s\n",
			p.StepSize/ref, p.StepSize, p.Iterations, p.First, p.Final, p.Stable, msg)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if limit := relax.StabilityLimit(points); limit > 0 {
		fmt.Printf("\nlargest stable step: %.4e (%.3g x reference)\n", limit, limit/ref)
	} else {
		fmt.Println("\nno stable step found")
	}
	return nil
}
