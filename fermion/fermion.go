// Package fermion builds second quantized electronic Hamiltonians and maps them onto qubits.
//
// Spin orbitals use block spin ordering: the n alpha orbitals come first, followed by the n beta orbitals.
package fermion

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/fumin/vqe/chem"
	"github.com/fumin/vqe/pauli"
)

// Ladder is a creation operator if Dagger is set, otherwise an annihilation operator, on a spin orbital.
type Ladder struct {
	Mode   int
	Dagger bool
}

func (l Ladder) String() string {
	if l.Dagger {
		return fmt.Sprintf("+_%d", l.Mode)
	}
	return fmt.Sprintf("-_%d", l.Mode)
}

// Term is a product of ladder operators, applied right to left, with a coefficient.
type Term struct {
	Ops   []Ladder
	Coeff complex128
}

// Op is a sum of products of ladder operators on NumModes spin orbitals.
type Op struct {
	NumModes int
	Terms    []Term
}

// Add appends a term.
func (o *Op) Add(coeff complex128, ops ...Ladder) {
	o.Terms = append(o.Terms, Term{Ops: ops, Coeff: coeff})
}

func (o *Op) String() string {
	lines := make([]string, 0, len(o.Terms))
	for _, t := range o.Terms {
		ops := make([]string, 0, len(t.Ops))
		for _, l := range t.Ops {
			ops = append(ops, l.String())
		}
		lines = append(lines, fmt.Sprintf("%v %s", t.Coeff, strings.Join(ops, " ")))
	}
	return strings.Join(lines, "\n")
}

func create(p int) Ladder  { return Ladder{Mode: p, Dagger: true} }
func destroy(p int) Ladder { return Ladder{Mode: p} }

// Hamiltonian returns the electronic Hamiltonian
// H = Σ h_pq a†_p a_q + 1/2 Σ (pq|rs) a†_pσ a†_rτ a_sτ a_qσ,
// excluding the nuclear repulsion.
func Hamiltonian(es *chem.ElectronicStructure, tol float64) *Op {
	n := es.NumSpatial
	op := &Op{NumModes: 2 * n}
	for spin := range 2 {
		off := spin * n
		for p := range n {
			for q := range n {
				h := es.H1.At(p, q)
				if math.Abs(h) <= tol {
					continue
				}
				op.Add(complex(h, 0), create(p+off), destroy(q+off))
			}
		}
	}

	for sigma := range 2 {
		for tau := range 2 {
			for p := range n {
				for q := range n {
					for r := range n {
						for s := range n {
							v := es.ERI.At(p, q, r, s)
							if math.Abs(v) <= tol {
								continue
							}
							pp, qq := p+sigma*n, q+sigma*n
							rr, ss := r+tau*n, s+tau*n
							if pp == rr || qq == ss {
								continue
							}
							op.Add(complex(v/2, 0), create(pp), create(rr), destroy(ss), destroy(qq))
						}
					}
				}
			}
		}
	}
	return op
}

// Mapper maps single ladder operators onto qubit operators.
type Mapper interface {
	Map(l Ladder, numModes int) *pauli.Op
}

// JordanWigner maps a_j to 1/2 (X_j + iY_j) Z_{j-1} ... Z_0.
type JordanWigner struct{}

func (JordanWigner) Map(l Ladder, numModes int) *pauli.Op {
	var zs uint64
	for q := range l.Mode {
		zs |= 1 << q
	}
	x := strWith(numModes, zs, 0, l.Mode, 'X')
	y := strWith(numModes, zs, 0, l.Mode, 'Y')
	sign := complex(0, 0.5)
	if l.Dagger {
		sign = -sign
	}
	return pauli.NewOp(numModes, pauli.Term{String: x, Coeff: 0.5}, pauli.Term{String: y, Coeff: sign})
}

// Parity maps a_j to 1/2 (Z_{j-1} X_j + iY_j) X_{j+1} ... X_{N-1}, where qubit j stores the parity of modes 0 to j.
type Parity struct{}

func (Parity) Map(l Ladder, numModes int) *pauli.Op {
	var xs uint64
	for q := l.Mode + 1; q < numModes; q++ {
		xs |= 1 << q
	}
	var zs uint64
	if l.Mode > 0 {
		zs = 1 << (l.Mode - 1)
	}
	x := strWith(numModes, zs, xs, l.Mode, 'X')
	y := strWith(numModes, 0, xs, l.Mode, 'Y')
	sign := complex(0, 0.5)
	if l.Dagger {
		sign = -sign
	}
	return pauli.NewOp(numModes, pauli.Term{String: x, Coeff: 0.5}, pauli.Term{String: y, Coeff: sign})
}

// strWith builds the Pauli string with Z on zs, X on xs and op on qubit q.
func strWith(n int, zs, xs uint64, q int, op byte) pauli.String {
	ops := make([]byte, n)
	for i := range n {
		switch {
		case i == q:
			ops[i] = op
		case zs>>i&1 == 1:
			ops[i] = 'Z'
		case xs>>i&1 == 1:
			ops[i] = 'X'
		default:
			ops[i] = 'I'
		}
	}
	return pauli.MustParse(string(ops))
}

// Map returns the qubit operator of op under m, dropping coefficients at most tol.
func Map(op *Op, m Mapper, tol float64) *pauli.Op {
	n := op.NumModes
	cache := make(map[Ladder]*pauli.Op)
	mapped := func(l Ladder) *pauli.Op {
		if p, ok := cache[l]; ok {
			return p
		}
		p := m.Map(l, n)
		cache[l] = p
		return p
	}

	result := pauli.NewOp(n)
	for _, t := range op.Terms {
		prod := pauli.NewOp(n, pauli.Term{String: pauli.Identity(n), Coeff: t.Coeff})
		for _, l := range t.Ops {
			prod = prod.Mul(mapped(l))
		}
		result.Add(1, prod)
	}
	return result.Simplify(tol)
}

// TwoQubitReduction removes the two qubits of a parity mapped operator whose values are fixed by the particle numbers.
// Qubit n-1 holds the alpha parity and qubit 2n-1 the total parity, where n is the number of spatial orbitals.
func TwoQubitReduction(op *pauli.Op, numAlpha, numBeta int) (*pauli.Op, error) {
	numModes := op.NumQubits()
	if numModes%2 != 0 || numModes < 2 {
		return nil, errors.Errorf("%d qubits", numModes)
	}
	n := numModes / 2
	if numAlpha < 0 || numBeta < 0 || numAlpha > n || numBeta > n {
		return nil, errors.Errorf("%d %d %d", numAlpha, numBeta, n)
	}
	total := parity(numAlpha + numBeta)
	reduced, err := op.Taper(2*n-1, total)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	reduced, err = reduced.Taper(n-1, parity(numAlpha))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return reduced, nil
}

func parity(k int) float64 {
	if k%2 == 0 {
		return 1
	}
	return -1
}

// QubitHamiltonian maps the electronic structure onto qubits with the parity mapping and two qubit reduction.
// The returned operator includes the nuclear repulsion as an identity term.
func QubitHamiltonian(es *chem.ElectronicStructure) (*pauli.Op, error) {
	const tol = 1e-10
	fop := Hamiltonian(es, tol)
	qop := Map(fop, Parity{}, tol)
	reduced, err := TwoQubitReduction(qop, es.NumAlpha, es.NumBeta)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	reduced.AddTerm(pauli.Identity(reduced.NumQubits()), complex(es.NuclearRepulsion, 0))
	return reduced.Simplify(tol), nil
}
