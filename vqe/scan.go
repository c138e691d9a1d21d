package vqe

import (
	"context"
	"fmt"
	"log"

	"github.com/pkg/errors"

	"github.com/fumin/vqe/chem"
	"github.com/fumin/vqe/fermion"
	"github.com/fumin/vqe/pauli"
)

// ScanConfig describes a bond length scan of a diatomic molecule, in Angstrom.
type ScanConfig struct {
	Total float64
	Start float64
	// SmallStep is used below half the total distance, LargeStep from there on.
	SmallStep float64
	LargeStep float64
	// Atoms default to H, H.
	Atoms  [2]string
	Charge int
}

// distanceTol absorbs rounding when accumulated steps land on the total distance.
const distanceTol = 1e-9

// Distances returns the sampled bond lengths.
func (c ScanConfig) Distances() ([]float64, error) {
	if c.SmallStep <= 0 || c.LargeStep <= 0 {
		return nil, errors.Errorf("non-positive steps %#v", c)
	}
	if c.Start <= 0 {
		return nil, errors.Errorf("start %#v", c)
	}
	ds := make([]float64, 0)
	d := c.Start
	for {
		ds = append(ds, d)
		if d >= c.Total-distanceTol {
			break
		}
		if d < c.Total/2 {
			d += c.SmallStep
		} else {
			d += c.LargeStep
		}
	}
	return ds, nil
}

// Molecule returns the molecule at bond length d.
func (c ScanConfig) Molecule(d float64) chem.Molecule {
	a, b := c.Atoms[0], c.Atoms[1]
	if a == "" {
		a = "H"
	}
	if b == "" {
		b = "H"
	}
	m := chem.Diatomic(a, b, d)
	m.Charge = c.Charge
	return m
}

// ScanResult holds the energies at every sampled distance.
type ScanResult struct {
	Distances     []float64
	ExactEnergies []float64
	VQEEnergies   []float64
}

// Solver returns the lowest eigenvalue of a qubit Hamiltonian.
type Solver func(ctx context.Context, op *pauli.Op) (float64, error)

// VQESolver adapts a VQE to a Solver.
func VQESolver(v *VQE) Solver {
	return func(ctx context.Context, op *pauli.Op) (float64, error) {
		res, err := v.ComputeMinimumEigenvalue(ctx, op)
		if err != nil {
			return 0, errors.Wrap(err, "")
		}
		return res.Eigenvalue, nil
	}
}

// Hamiltonian returns the parity mapped, two qubit reduced Hamiltonian of m, including the nuclear repulsion.
func Hamiltonian(m chem.Molecule) (*pauli.Op, *chem.ElectronicStructure, error) {
	es, err := chem.RHF(m)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	op, err := fermion.QubitHamiltonian(es)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	return op, es, nil
}

// Scan computes the ground state energy along the bond length, exactly and with solve.
func Scan(ctx context.Context, c ScanConfig, solve Solver) (*ScanResult, error) {
	distances, err := c.Distances()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	sr := &ScanResult{}
	for _, d := range distances {
		op, _, err := Hamiltonian(c.Molecule(d))
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%f", d))
		}
		exact, err := Exact(op)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%f", d))
		}
		e, err := solve(ctx, op)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%f", d))
		}
		log.Printf("distance %.3f exact %.6f vqe %.6f", d, exact, e)

		sr.Distances = append(sr.Distances, d)
		sr.ExactEnergies = append(sr.ExactEnergies, exact)
		sr.VQEEnergies = append(sr.VQEEnergies, e)
	}
	return sr, nil
}
