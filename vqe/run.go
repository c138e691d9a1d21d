package vqe

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/fumin/vqe/backend"
	"github.com/fumin/vqe/circuit"
	"github.com/fumin/vqe/optimizer"
	"github.com/fumin/vqe/pauli"
)

type RunOptions struct {
	printCircuit bool
	output       io.Writer
	initialPoint []float64
	seed         uint64
}

func NewRunOptions() RunOptions {
	return RunOptions{}
}

// PrintCircuit prints the decomposed ansatz before running.
func (o RunOptions) PrintCircuit(p bool) RunOptions {
	o.printCircuit = p
	return o
}

// Output receives the printed circuit and the progress line.
func (o RunOptions) Output(w io.Writer) RunOptions {
	o.output = w
	return o
}

func (o RunOptions) InitialPoint(x []float64) RunOptions {
	o.initialPoint = x
	return o
}

// Seed seeds the random initial point.
func (o RunOptions) Seed(s uint64) RunOptions {
	o.seed = s
	return o
}

// Run solves for the lowest eigenvalue of op on a single backend, recording every evaluation.
func Run(ctx context.Context, op *pauli.Op, ansatz *circuit.Circuit, b *backend.Backend, opt optimizer.Optimizer, options ...RunOptions) (*Recorder, *Result, error) {
	opts := NewRunOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	if opts.printCircuit && opts.output != nil {
		fmt.Fprintf(opts.output, "%s on %s\n%s\n", ansatz.Name, b, ansatz.Decompose().Draw())
	}
	rec := NewRecorder(fmt.Sprintf("%s %s", ansatz.Name, b.Name), opts.output)
	solver := &VQE{
		Ansatz:       ansatz,
		Backend:      b,
		Optimizer:    opt,
		InitialPoint: opts.initialPoint,
		Seed:         opts.seed,
		Callback:     rec.Callback,
	}
	res, err := solver.ComputeMinimumEigenvalue(ctx, op)
	rec.Done()
	if err != nil {
		return nil, nil, errors.Wrap(err, fmt.Sprintf("%s %s", ansatz.Name, b))
	}
	return rec, res, nil
}
