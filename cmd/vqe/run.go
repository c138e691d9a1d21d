package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fumin/vqe/plot"
	"github.com/fumin/vqe/store"
	"github.com/fumin/vqe/vqe"
)

const (
	fnameIterations = "iterations.csv"
)

var (
	runBackend string
	runAnsatz  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ansatz on one backend",
	Long:  `Runs VQE for the configured molecule, printing progress, and stores every evaluation.`,
	RunE:  runSingle,
}

func init() {
	runCmd.Flags().StringVar(&runBackend, "backend", "", "backend name, the first configured backend when empty")
	runCmd.Flags().StringVar(&runAnsatz, "ansatz", "", "ansatz kind, the first configured kind when empty")
	rootCmd.AddCommand(runCmd)
}

func runSingle(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := newExperiment()
	if err != nil {
		return errors.Wrap(err, "")
	}
	if runAnsatz != "" {
		e.cfg.Ansatz.Kinds = []string{runAnsatz}
	}
	names, ansatze, err := e.cfg.NewAnsatze(e.op.NumQubits(), e.device)
	if err != nil {
		return errors.Wrap(err, "")
	}
	backends, err := e.cfg.NewBackends(e.device)
	if err != nil {
		return errors.Wrap(err, "")
	}
	b, err := pick(backends, runBackend)
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

	label := vqe.Label(names[0], b)
	opts := vqe.NewRunOptions().PrintCircuit(e.cfg.Output.PrintCircuit).Output(os.Stdout).Seed(e.cfg.Optimizer.Seed)
	rec, res, err := vqe.Run(ctx, e.op, ansatze[0], b, opt, opts)
	if err != nil {
		return errors.Wrap(err, "")
	}
	printResult(label, res, exact)

	dir := filepath.Join(e.cfg.Output.Dir, "run", fmt.Sprintf("%s_%s", names[0], b.Name))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}
	its := iterations(rec)
	if err := writeIterations(filepath.Join(dir, fnameIterations), its); err != nil {
		return errors.Wrap(err, "")
	}
	line := plot.Line{Label: label, Y: rec.Values()}
	for _, c := range rec.Counts() {
		line.X = append(line.X, float64(c))
	}
	if err := plot.Convergence(filepath.Join(dir, "convergence.png"), b.Name, []plot.Line{line}, exact); err != nil {
		return errors.Wrap(err, "")
	}

	s, err := e.openStore()
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer s.Close()
	id, err := e.saveRun(ctx, s, label, names[0], b, opt.Name(), res, its)
	if err != nil {
		return errors.Wrap(err, "")
	}
	fmt.Printf("run %s saved to %s\n", id, s.Path)
	return nil
}

func writeIterations(fpath string, its []store.Iteration) error {
	f, err := os.Create(fpath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	w := csv.NewWriter(f)

	header := []string{"count", "mean", "std"}
	if len(its) > 0 {
		for i := range its[0].Params {
			header = append(header, fmt.Sprintf("p%d", i))
		}
	}
	if err1 := w.Write(header); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	for _, it := range its {
		row := []string{strconv.Itoa(it.Count), strconv.FormatFloat(it.Mean, 'f', -1, 64), strconv.FormatFloat(it.Std, 'f', -1, 64)}
		for _, p := range it.Params {
			row = append(row, strconv.FormatFloat(p, 'f', -1, 64))
		}
		if err1 := w.Write(row); err1 != nil && err == nil {
			err = errors.Wrap(err1, "")
			break
		}
	}

	w.Flush()
	if err1 := w.Error(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	if err1 := f.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}
