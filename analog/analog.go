// Package analog runs the time evolution of an Ising Hamiltonian as a single analog block inside a gate circuit.
package analog

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/pkg/errors"

	"github.com/fumin/vqe/backend"
	"github.com/fumin/vqe/circuit"
	"github.com/fumin/vqe/mat"
	"github.com/fumin/vqe/pauli"
)

var (
	identity = mat.M(mat.Identity)
)

// Ising is H = J Σ Z_i Z_j - Field Σ X_i over the bonds of a chain, or of all pairs when AllToAll is set.
type Ising struct {
	NumQubits int
	J         float64
	Field     float64
	AllToAll  bool
}

// Chain returns a nearest neighbour ZZ chain without field.
func Chain(numQubits int, j float64) Ising {
	return Ising{NumQubits: numQubits, J: j}
}

func (m Ising) Validate() error {
	if m.NumQubits < 2 {
		return errors.Errorf("%d qubits", m.NumQubits)
	}
	return nil
}

// Bonds returns the coupled pairs i < j.
func (m Ising) Bonds() [][2]int {
	bonds := make([][2]int, 0)
	for i := range m.NumQubits {
		for j := i + 1; j < m.NumQubits; j++ {
			if !m.AllToAll && j != i+1 {
				continue
			}
			bonds = append(bonds, [2]int{i, j})
		}
	}
	return bonds
}

// Hamiltonian returns the matrix of m built from tensor products of single qubit Paulis, qubit 0 being the least significant bit.
func (m Ising) Hamiltonian() (*mat.COO, error) {
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	dim := 1 << m.NumQubits
	hamiltonian := mat.COOZeros(dim, dim)
	system := mat.COOZeros(1, 1)
	for _, b := range m.Bonds() {
		coupling(hamiltonian, m.NumQubits, b, complex(m.J, 0), system)
	}
	if m.Field != 0 {
		for q := range m.NumQubits {
			magnetic(hamiltonian, m.NumQubits, q, complex(m.Field, 0), system)
		}
	}
	return hamiltonian, nil
}

func coupling(hamiltonian *mat.COO, n int, bond [2]int, j complex128, system *mat.COO) {
	system.Scalar(1)
	for q := n - 1; q >= 0; q-- {
		switch {
		case q == bond[0] || q == bond[1]:
			system.Kron(mat.M(mat.PauliZ))
		default:
			system.Kron(identity)
		}
	}

	hamiltonian.Add(j, system)
}

func magnetic(hamiltonian *mat.COO, n int, i int, h complex128, system *mat.COO) {
	system.Scalar(1)
	for q := n - 1; q >= 0; q-- {
		switch {
		case q == i:
			system.Kron(mat.M(mat.PauliX))
		default:
			system.Kron(identity)
		}
	}

	hamiltonian.Add(-h, system)
}

// Op returns m as a sum of Pauli strings.
func (m Ising) Op() *pauli.Op {
	op := pauli.NewOp(m.NumQubits)
	for _, b := range m.Bonds() {
		zz := pauli.Single(m.NumQubits, b[0], 'Z')
		_, zz = zz.Mul(pauli.Single(m.NumQubits, b[1], 'Z'))
		op.AddTerm(zz, complex(m.J, 0))
	}
	if m.Field != 0 {
		for q := range m.NumQubits {
			op.AddTerm(pauli.Single(m.NumQubits, q, 'X'), complex(-m.Field, 0))
		}
	}
	return op
}

// Circuit returns a circuit that evolves |+...+> under m for time t and measures in the X basis.
// The evolution exp(-iHt) is a single unitary gate between two Hadamard layers.
func (m Ising) Circuit(t float64) (*circuit.Circuit, error) {
	h, err := m.Hamiltonian()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	u, err := h.Propagator(t)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	c := circuit.New(m.NumQubits)
	c.Name = fmt.Sprintf("ising_%d", m.NumQubits)
	qubits := make([]int, m.NumQubits)
	for q := range m.NumQubits {
		qubits[q] = q
		c.H(q)
	}
	c.Barrier()
	if err := c.Unitary(fmt.Sprintf("exp(-iHt) t=%g", t), u, qubits...); err != nil {
		return nil, errors.Wrap(err, "")
	}
	c.Barrier()
	for q := range m.NumQubits {
		c.H(q)
	}
	c.MeasureAll()
	return c, nil
}

// Result is the outcome of an analog evolution on a backend.
type Result struct {
	Circuit       *circuit.Circuit
	Probabilities []float64
	// Counts is nil for backends without shots.
	Counts     backend.Counts
	Statistics Statistics
}

// Run evolves m for time t on b.
func Run(b *backend.Backend, m Ising, t float64) (*Result, error) {
	c, err := m.Circuit(t)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := b.Validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	b.Reset()

	res := &Result{Circuit: c}
	res.Probabilities, err = b.Probabilities(c)
	if err != nil {
		return nil, errors.Wrap(err, b.String())
	}
	if b.Method == backend.Sampling {
		res.Counts = b.Sample(res.Probabilities, b.Shots)
	}
	res.Statistics, err = GetStatistics(m.NumQubits, res.Probabilities)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return res, nil
}

// Statistics are moments of the measured magnetization, with bit 0 as spin up.
type Statistics struct {
	// Magnetization is the mean of |M| per spin.
	Magnetization float64
	// BinderCumulant is 1 - <M^4> / (3 <M^2>^2).
	BinderCumulant float64
}

func GetStatistics(numSpins int, probs []float64) (Statistics, error) {
	if len(probs) != 1<<numSpins {
		return Statistics{}, errors.Errorf("%d %d", len(probs), 1<<numSpins)
	}
	var stats Statistics
	var totalProb, m2, m4 float64
	for i, p := range probs {
		down := bits.OnesCount(uint(i))
		basisM := float64(numSpins - 2*down)

		totalProb += p
		stats.Magnetization += p * math.Abs(basisM)
		m2 += p * basisM * basisM
		m4 += p * math.Pow(basisM, 4)
	}
	if math.Abs(totalProb-1) > 1e-3 {
		return Statistics{}, errors.Errorf("%f", totalProb)
	}

	stats.Magnetization /= float64(numSpins)
	if m2 > 0 {
		stats.BinderCumulant = 1 - m4/(3*m2*m2)
	}
	return stats, nil
}
