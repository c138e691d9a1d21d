package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fumin/vqe/store"
	"github.com/fumin/vqe/vqe"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run every ansatz on every backend",
	Long:  `Runs VQE for each configured ansatz kind on each configured backend and plots one convergence figure per backend.`,
	RunE:  runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := newExperiment()
	if err != nil {
		return errors.Wrap(err, "")
	}
	names, ansatze, err := e.cfg.NewAnsatze(e.op.NumQubits(), e.device)
	if err != nil {
		return errors.Wrap(err, "")
	}
	backends, err := e.cfg.NewBackends(e.device)
	if err != nil {
		return errors.Wrap(err, "")
	}
	opt, err := e.cfg.NewOptimizer()
	if err != nil {
		return errors.Wrap(err, "")
	}
	exact, err := vqe.Exact(e.op)
	if err != nil {
		return errors.Wrap(err, "")
	}

	opts := vqe.NewRunOptions().PrintCircuit(e.cfg.Output.PrintCircuit).Output(os.Stdout).Seed(e.cfg.Optimizer.Seed)
	sr, err := vqe.Sweep(ctx, e.op, names, ansatze, backends, opt, opts)
	if err != nil {
		return errors.Wrap(err, "")
	}

	dir := filepath.Join(e.cfg.Output.Dir, "sweep")
	fpaths, err := sr.Plot(dir, exact)
	if err != nil {
		return errors.Wrap(err, "")
	}

	s, err := e.openStore()
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer s.Close()
	for i, b := range sr.Backends {
		for j, res := range sr.Results[i] {
			series := sr.Series[i][j]
			printResult(series.Label, res, exact)

			its := make([]store.Iteration, len(series.Counts))
			for k := range its {
				its[k] = store.Iteration{Count: series.Counts[k], Mean: series.Values[k], Std: series.Stds[k], Params: series.Params[k]}
			}
			if _, err := e.saveRun(ctx, s, series.Label, names[j], b, opt.Name(), res, its); err != nil {
				return errors.Wrap(err, "")
			}
		}
	}
	for _, fpath := range fpaths {
		fmt.Println(fpath)
	}
	return nil
}
