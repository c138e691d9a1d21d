package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var scansCmd = &cobra.Command{
	Use:   "scans [id]",
	Short: "List stored bond length scans",
	Long:  `Lists every stored scan, or prints the samples of the scan with the given id.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScans,
}

func init() {
	rootCmd.AddCommand(scansCmd)
}

func runScans(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "")
	}
	e := &experiment{cfg: cfg}
	s, err := e.openStore()
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer s.Close()

	if len(args) == 1 {
		samples, err := s.Scan(ctx, args[0])
		if err != nil {
			return errors.Wrap(err, "")
		}
		printScan(samples)
		return nil
	}

	scans, err := s.Scans(ctx)
	if err != nil {
		return errors.Wrap(err, "")
	}
	for _, sc := range scans {
		fmt.Printf("%s %d samples %.3f..%.3f\n", sc.ID, sc.NumSamples, sc.MinDistance, sc.MaxDistance)
	}
	return nil
}
