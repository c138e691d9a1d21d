package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs [id]",
	Short: "List stored runs",
	Long:  `Lists every stored run, or prints the evaluations of the run with the given id.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := newExperiment()
	if err != nil {
		return errors.Wrap(err, "")
	}
	s, err := e.openStore()
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer s.Close()

	if len(args) == 1 {
		run, err := s.Run(ctx, args[0])
		if err != nil {
			return errors.Wrap(err, "")
		}
		its, err := s.Iterations(ctx, run.ID)
		if err != nil {
			return errors.Wrap(err, "")
		}
		fmt.Printf("%s %s %s %s %.6f\n", run.ID, run.Label, run.Backend, run.Optimizer, run.Eigenvalue)
		for _, it := range its {
			fmt.Printf("%d %.6f %.6f %v\n", it.Count, it.Mean, it.Std, it.Params)
		}
		return nil
	}

	runs, err := s.Runs(ctx)
	if err != nil {
		return errors.Wrap(err, "")
	}
	for _, r := range runs {
		fmt.Printf("%s %s %-24s %.6f %d %s\n", r.ID, r.Created.Format("2006-01-02 15:04:05"), r.Label, r.Eigenvalue, r.Evaluations, r.OptimizerTime)
	}
	return nil
}
