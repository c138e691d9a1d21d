package vqe

import (
	"math/cmplx"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"

	"github.com/fumin/vqe/pauli"
)

// Exact returns the lowest eigenvalue of op by dense diagonalization.
func Exact(op *pauli.Op) (float64, error) {
	vvs, err := op.Matrix().Eigen()
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	return vvs[0].Val, nil
}

// Arnoldi returns the lowest eigenvalue of op by Arnoldi iteration in single precision.
// The eigenvalue is the Rayleigh quotient of the returned eigenvector in double precision.
func Arnoldi(op *pauli.Op) (float64, error) {
	m := op.Matrix()
	dense := m.Dense()
	h64 := make([][]complex64, len(dense))
	for i, row := range dense {
		h64[i] = make([]complex64, len(row))
		for j, v := range row {
			h64[i][j] = complex64(v)
		}
	}

	h := tensor.T2(h64)
	eigvals, eigvecs := tensor.Zeros(1), tensor.Zeros(1)
	var bufs [7]*tensor.Dense
	for i := range len(bufs) {
		bufs[i] = tensor.Zeros(1)
	}
	if err := tensor.Arnoldi(eigvals, eigvecs, h, 1, bufs); err != nil {
		return 0, errors.Wrap(err, "")
	}

	v := eigvecs.Reshape(-1)
	psi := make([]complex128, len(dense))
	var norm float64
	for i := range psi {
		psi[i] = complex128(v.At(i))
		norm += real(psi[i] * cmplx.Conj(psi[i]))
	}
	if norm == 0 {
		return 0, errors.Errorf("zero eigenvector")
	}
	return real(m.Expectation(psi)) / norm, nil
}
