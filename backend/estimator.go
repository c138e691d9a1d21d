package backend

import (
	"math"
	"math/bits"

	"github.com/pkg/errors"

	"github.com/fumin/vqe/circuit"
	"github.com/fumin/vqe/pauli"
)

// Estimate returns the expectation value of a Hermitian operator in the state prepared by a bound circuit, and its standard error.
// The standard error is zero for the exact method.
func (b *Backend) Estimate(op *pauli.Op, c *circuit.Circuit) (float64, float64, error) {
	if op.NumQubits() != c.NumQubits {
		return 0, 0, errors.Errorf("%d qubit operator on %d qubit circuit", op.NumQubits(), c.NumQubits)
	}
	switch b.Method {
	case Exact:
		if b.Noise == nil {
			psi, err := Statevector(c)
			if err != nil {
				return 0, 0, errors.Wrap(err, "")
			}
			return real(op.Expectation(psi)), 0, nil
		}
		e, err := b.densityExpectation(op, c)
		if err != nil {
			return 0, 0, errors.Wrap(err, "")
		}
		return e, 0, nil
	case Sampling:
		mean, std, err := b.sampledExpectation(op, c)
		if err != nil {
			return 0, 0, errors.Wrap(err, "")
		}
		return mean, std, nil
	}
	return 0, 0, errors.Errorf("%v", b.Method)
}

// densityExpectation returns Tr(op rho) of the noisy final state, without readout errors.
func (b *Backend) densityExpectation(op *pauli.Op, c *circuit.Circuit) (float64, error) {
	t, err := b.transpile(c)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	rho := NewDensityMatrix(t.NumQubits)
	if err := rho.Evolve(t, b.Noise); err != nil {
		return 0, errors.Wrap(err, "")
	}
	var e complex128
	for _, term := range op.Terms() {
		// Tr(P rho) = Σ_b phase(b) rho[b, b^x], where P|b> = phase(b)|b^x>.
		var tr complex128
		for i := range 1 << t.NumQubits {
			phase, j := term.Apply(uint64(i))
			tr += phase * rho.At(i, int(j))
		}
		e += term.Coeff * tr
	}
	return real(e), nil
}

// measurementCircuit appends the rotations that map the basis of a group onto Z, followed by measurements.
func measurementCircuit(c *circuit.Circuit, basis []byte) *circuit.Circuit {
	m := c.Copy()
	for q, op := range basis {
		switch op {
		case 'X':
			m.H(q)
		case 'Y':
			m.SX(q)
		}
	}
	m.MeasureAll()
	return m
}

// sampledExpectation measures each qubit-wise commuting group of op with the configured number of shots.
func (b *Backend) sampledExpectation(op *pauli.Op, c *circuit.Circuit) (float64, float64, error) {
	groups, identity := op.GroupQubitWise()
	mean := real(identity)
	var variance float64
	for _, g := range groups {
		mc := measurementCircuit(c, g.Basis)
		var probs []float64
		if b.Mitigation && b.Noise != nil {
			p, err := b.MitigatedProbabilities(mc)
			if err != nil {
				return 0, 0, errors.Wrap(err, "")
			}
			probs = p
		} else {
			counts, err := b.Run(mc)
			if err != nil {
				return 0, 0, errors.Wrap(err, "")
			}
			probs = make([]float64, 1<<c.NumQubits)
			for k, n := range counts {
				probs[k] = float64(n) / float64(b.Shots)
			}
		}

		var m1, m2 float64
		for k, p := range probs {
			if p == 0 {
				continue
			}
			v := groupValue(g, uint64(k))
			m1 += p * v
			m2 += p * v * v
		}
		mean += m1
		variance += max(0, m2-m1*m1) / float64(b.Shots)
	}
	return mean, math.Sqrt(variance), nil
}

// groupValue returns the eigenvalue of the group's operator on a measured basis state.
func groupValue(g pauli.Group, k uint64) float64 {
	var v float64
	for _, t := range g.Terms {
		sign := 1.0
		if bits.OnesCount64(k&t.Support())%2 == 1 {
			sign = -1
		}
		v += real(t.Coeff) * sign
	}
	return v
}
