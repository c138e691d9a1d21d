// Package vqe finds the lowest eigenvalue of qubit Hamiltonians with the variational quantum eigensolver,
// and drives runs, sweeps and bond length scans of it.
package vqe

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"

	"github.com/fumin/vqe/backend"
	"github.com/fumin/vqe/circuit"
	"github.com/fumin/vqe/optimizer"
	"github.com/fumin/vqe/pauli"
)

// Callback receives the evaluation count, parameters, energy mean and standard error of every evaluation.
type Callback func(evalCount int, params []float64, mean, std float64)

// Result is the outcome of a solver run.
type Result struct {
	Eigenvalue    float64
	OptimalParams []float64
	Evaluations   int
	OptimizerTime time.Duration
}

// VQE minimizes the energy of an ansatz state estimated on a backend.
type VQE struct {
	Ansatz    *circuit.Circuit
	Backend   *backend.Backend
	Optimizer optimizer.Optimizer
	// InitialPoint defaults to angles drawn uniformly from [-π, π) with Seed.
	InitialPoint []float64
	Seed         uint64
	Callback     Callback
}

func (v *VQE) initialPoint() ([]float64, error) {
	n := v.Ansatz.NumParams
	if v.InitialPoint != nil {
		if len(v.InitialPoint) != n {
			return nil, errors.Errorf("%d initial parameters, expected %d", len(v.InitialPoint), n)
		}
		return v.InitialPoint, nil
	}
	rng := rand.New(rand.NewPCG(v.Seed, v.Seed+1))
	x0 := make([]float64, n)
	for i := range x0 {
		x0[i] = (2*rng.Float64() - 1) * math.Pi
	}
	return x0, nil
}

// Energy returns the estimated energy and its standard error at params.
func (v *VQE) Energy(op *pauli.Op, params []float64) (float64, float64, error) {
	c, err := v.Ansatz.Bind(params)
	if err != nil {
		return 0, 0, errors.Wrap(err, "")
	}
	mean, std, err := v.Backend.Estimate(op, c)
	if err != nil {
		return 0, 0, errors.Wrap(err, "")
	}
	return mean, std, nil
}

// ComputeMinimumEigenvalue runs the optimizer over the ansatz parameters.
// The first estimation error stops the optimization and is returned.
func (v *VQE) ComputeMinimumEigenvalue(ctx context.Context, op *pauli.Op) (*Result, error) {
	if !op.IsHermitian(1e-10) {
		return nil, errors.Errorf("operator is not hermitian")
	}
	if op.NumQubits() != v.Ansatz.NumQubits {
		return nil, errors.Errorf("%d qubit operator, %d qubit ansatz", op.NumQubits(), v.Ansatz.NumQubits)
	}
	if err := v.Backend.Validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	x0, err := v.initialPoint()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	v.Backend.Reset()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var evalErr error
	var evalCount int
	objective := func(params []float64) float64 {
		if evalErr != nil {
			return math.Inf(1)
		}
		mean, std, err := v.Energy(op, params)
		if err != nil {
			evalErr = err
			cancel()
			return math.Inf(1)
		}
		evalCount++
		if v.Callback != nil {
			v.Callback(evalCount, params, mean, std)
		}
		return mean
	}

	start := time.Now()
	res, err := v.Optimizer.Minimize(ctx, objective, x0)
	if evalErr != nil {
		return nil, evalErr
	}
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return &Result{
		Eigenvalue:    res.F,
		OptimalParams: res.X,
		Evaluations:   res.Evaluations,
		OptimizerTime: time.Since(start),
	}, nil
}
