package main

import (
	"encoding/csv"
	"fmt"
	"io"
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
	fnameScan = "scan.csv"
)

var (
	scanBackend string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the bond length",
	Long: `Computes the ground state energy of the configured diatomic molecule over a range of bond lengths,
exactly and with VQE, and plots the dissociation curve. A finished scan is printed without recomputing.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanBackend, "backend", "", "backend name, the first configured backend when empty")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := newExperiment()
	if err != nil {
		return errors.Wrap(err, "")
	}
	backendName := scanBackend
	if backendName == "" {
		backendName = e.cfg.Backends[0].Name
	}
	dir, err := scanDir(e.cfg, e.cfg.Ansatz.Kinds[0], backendName)
	if err != nil {
		return errors.Wrap(err, "")
	}
	done, err := runDir(dir)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if done {
		samples, err := readScan(filepath.Join(dir, fnameScan))
		if err != nil {
			return errors.Wrap(err, "")
		}
		printScan(samples)
		return nil
	}

	_, ansatze, err := e.cfg.NewAnsatze(e.op.NumQubits(), e.device)
	if err != nil {
		return errors.Wrap(err, "")
	}
	backends, err := e.cfg.NewBackends(e.device)
	if err != nil {
		return errors.Wrap(err, "")
	}
	b, err := pick(backends, backendName)
	if err != nil {
		return errors.Wrap(err, "")
	}
	opt, err := e.cfg.NewOptimizer()
	if err != nil {
		return errors.Wrap(err, "")
	}
	solver := &vqe.VQE{Ansatz: ansatze[0], Backend: b, Optimizer: opt, Seed: e.cfg.Optimizer.Seed}
	sr, err := vqe.Scan(ctx, e.cfg.ScanConfig(), vqe.VQESolver(solver))
	if err != nil {
		return errors.Wrap(err, "")
	}

	samples := make([]store.Sample, len(sr.Distances))
	for i, d := range sr.Distances {
		samples[i] = store.Sample{Distance: d, Exact: sr.ExactEnergies[i], VQE: sr.VQEEnergies[i]}
	}
	if err := writeScan(filepath.Join(dir, fnameScan), samples); err != nil {
		return errors.Wrap(err, "")
	}
	lines := []plot.Line{
		{Label: "exact", X: sr.Distances, Y: sr.ExactEnergies},
		{Label: vqe.Label("vqe", b), X: sr.Distances, Y: sr.VQEEnergies},
	}
	if err := plot.BondEnergy(filepath.Join(dir, "bond_energy.png"), lines); err != nil {
		return errors.Wrap(err, "")
	}

	s, err := e.openStore()
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer s.Close()
	id, err := s.SaveScan(ctx, samples)
	if err != nil {
		return errors.Wrap(err, "")
	}
	printScan(samples)
	fmt.Printf("scan %s saved to %s and %s\n", id, s.Path, dir)

	if err := markDone(dir); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func printScan(samples []store.Sample) {
	fmt.Printf("distance,exact,vqe\n")
	for _, smp := range samples {
		fmt.Printf("%f,%f,%f\n", smp.Distance, smp.Exact, smp.VQE)
	}
}

func readScan(fpath string) ([]store.Sample, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = 3

	// Skip the header.
	if _, err := r.Read(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	samples := make([]store.Sample, 0)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "")
		}

		var v [3]float64
		for j, s := range record {
			v[j], err = strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("%#v", record))
			}
		}
		samples = append(samples, store.Sample{Distance: v[0], Exact: v[1], VQE: v[2]})
	}
	return samples, nil
}

func writeScan(fpath string, samples []store.Sample) error {
	f, err := os.Create(fpath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	w := csv.NewWriter(f)

	if err1 := w.Write([]string{"distance", "exact", "vqe"}); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	for _, smp := range samples {
		row := []string{
			strconv.FormatFloat(smp.Distance, 'f', -1, 64),
			strconv.FormatFloat(smp.Exact, 'f', -1, 64),
			strconv.FormatFloat(smp.VQE, 'f', -1, 64),
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
