package vqe

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/fumin/vqe/backend"
	"github.com/fumin/vqe/circuit"
	"github.com/fumin/vqe/optimizer"
	"github.com/fumin/vqe/pauli"
	"github.com/fumin/vqe/plot"
)

// Series is the convergence of one run.
type Series struct {
	Label  string
	Counts []int
	Values []float64
	Stds   []float64
	// Params are the parameters of every evaluation.
	Params [][]float64
}

// SweepResult holds, per backend index, one series and one result for every ansatz.
type SweepResult struct {
	Backends []*backend.Backend
	Series   map[int][]Series
	Results  map[int][]*Result
}

// Label names the run of an ansatz on a backend, marking noisy and mitigated backends.
func Label(ansatzName string, b *backend.Backend) string {
	return ansatzName + b.NoiseLabel().Suffix()
}

// Sweep runs every ansatz on every backend.
func Sweep(ctx context.Context, op *pauli.Op, names []string, ansatze []*circuit.Circuit, backends []*backend.Backend, opt optimizer.Optimizer, options ...RunOptions) (*SweepResult, error) {
	if len(names) != len(ansatze) {
		return nil, errors.Errorf("%d names for %d ansatze", len(names), len(ansatze))
	}
	sr := &SweepResult{Backends: backends, Series: make(map[int][]Series), Results: make(map[int][]*Result)}
	for i, b := range backends {
		for j, ansatz := range ansatze {
			label := Label(names[j], b)
			rec, res, err := Run(ctx, op, ansatz, b, opt, options...)
			if err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("backend %d %s", i, label))
			}
			log.Printf("backend %d %s: %f after %d evaluations", i, label, res.Eigenvalue, res.Evaluations)

			s := Series{Label: label, Counts: rec.Counts(), Values: rec.Values(), Stds: rec.Stds(), Params: rec.Params()}
			sr.Series[i] = append(sr.Series[i], s)
			sr.Results[i] = append(sr.Results[i], res)
		}
	}
	return sr, nil
}

// Plot draws one convergence figure per backend into dir, with the reference eigenvalue as a horizontal line.
func (sr *SweepResult) Plot(dir string, reference float64) ([]string, error) {
	fpaths := make([]string, 0, len(sr.Backends))
	for i, b := range sr.Backends {
		lines := make([]plot.Line, 0, len(sr.Series[i]))
		for _, s := range sr.Series[i] {
			x := make([]float64, len(s.Counts))
			for k, c := range s.Counts {
				x[k] = float64(c)
			}
			lines = append(lines, plot.Line{Label: s.Label, X: x, Y: s.Values})
		}
		fpath := filepath.Join(dir, fmt.Sprintf("convergence_%d.png", i))
		if err := plot.Convergence(fpath, b.String(), lines, reference); err != nil {
			return nil, errors.Wrap(err, "")
		}
		fpaths = append(fpaths, fpath)
	}
	return fpaths, nil
}
