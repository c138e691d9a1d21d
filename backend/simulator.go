package backend

import (
	"math/cmplx"

	"github.com/pkg/errors"

	"github.com/fumin/vqe/circuit"
)

// applyLocal applies the 2^k by 2^k matrix u to the qubits of state psi, in place.
// Bit i of the local index of u corresponds to qubits[i].
func applyLocal(psi []complex128, u [][]complex128, qubits []int) {
	dim := 1 << len(qubits)
	var mask int
	offsets := make([]int, dim)
	for i, q := range qubits {
		mask |= 1 << q
		for l := range dim {
			offsets[l] |= (l >> i & 1) << q
		}
	}
	in := make([]complex128, dim)
	for b := range psi {
		if b&mask != 0 {
			continue
		}
		for l, off := range offsets {
			in[l] = psi[b|off]
		}
		for r, off := range offsets {
			var v complex128
			for l, a := range in {
				v += u[r][l] * a
			}
			psi[b|off] = v
		}
	}
}

func conjugate(u [][]complex128) [][]complex128 {
	c := make([][]complex128, len(u))
	for i, row := range u {
		c[i] = make([]complex128, len(row))
		for j, v := range row {
			c[i][j] = cmplx.Conj(v)
		}
	}
	return c
}

// Statevector returns the final state of a bound circuit started from |0...0>.
// Measurements and barriers are ignored.
func Statevector(c *circuit.Circuit) ([]complex128, error) {
	if !c.IsBound() {
		return nil, errors.Errorf("unbound parameters")
	}
	psi := make([]complex128, 1<<c.NumQubits)
	psi[0] = 1
	for _, g := range c.Gates {
		switch g.Kind {
		case circuit.Barrier, circuit.Measure:
			continue
		}
		u, err := g.Unitary(nil)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		applyLocal(psi, u, g.Qubits)
	}
	return psi, nil
}

// DensityMatrix is a mixed state of n qubits, stored as a vector with the row index in the low n bits and the column index in the high n bits.
type DensityMatrix struct {
	n    int
	data []complex128
}

// NewDensityMatrix returns |0...0><0...0|.
func NewDensityMatrix(n int) *DensityMatrix {
	rho := &DensityMatrix{n: n, data: make([]complex128, 1<<(2*n))}
	rho.data[0] = 1
	return rho
}

func (rho *DensityMatrix) NumQubits() int { return rho.n }

// At returns the element at row i and column j.
func (rho *DensityMatrix) At(i, j int) complex128 {
	return rho.data[i|j<<rho.n]
}

func (rho *DensityMatrix) shifted(qubits []int) []int {
	s := make([]int, len(qubits))
	for i, q := range qubits {
		s[i] = q + rho.n
	}
	return s
}

// Apply performs rho = U rho U^†.
func (rho *DensityMatrix) Apply(u [][]complex128, qubits []int) {
	applyLocal(rho.data, u, qubits)
	applyLocal(rho.data, conjugate(u), rho.shifted(qubits))
}

// ApplyChannel performs rho = Σ K rho K^† over the Kraus operators of a channel.
func (rho *DensityMatrix) ApplyChannel(kraus [][][]complex128, qubits []int) {
	out := make([]complex128, len(rho.data))
	tmp := make([]complex128, len(rho.data))
	shifted := rho.shifted(qubits)
	for _, k := range kraus {
		copy(tmp, rho.data)
		applyLocal(tmp, k, qubits)
		applyLocal(tmp, conjugate(k), shifted)
		for i, v := range tmp {
			out[i] += v
		}
	}
	rho.data = out
}

// Probabilities returns the diagonal of rho.
func (rho *DensityMatrix) Probabilities() []float64 {
	p := make([]float64, 1<<rho.n)
	for i := range p {
		p[i] = max(0, real(rho.At(i, i)))
	}
	return p
}

// Trace returns the trace of rho.
func (rho *DensityMatrix) Trace() complex128 {
	var t complex128
	for i := range 1 << rho.n {
		t += rho.At(i, i)
	}
	return t
}

// Evolve runs a bound circuit on rho, applying the noise channels of m after every gate.
// A nil noise model evolves without noise.
func (rho *DensityMatrix) Evolve(c *circuit.Circuit, m *NoiseModel) error {
	if !c.IsBound() {
		return errors.Errorf("unbound parameters")
	}
	if c.NumQubits != rho.n {
		return errors.Errorf("%d qubits, expected %d", c.NumQubits, rho.n)
	}
	for _, g := range c.Gates {
		switch g.Kind {
		case circuit.Barrier, circuit.Measure:
			continue
		}
		u, err := g.Unitary(nil)
		if err != nil {
			return errors.Wrap(err, "")
		}
		rho.Apply(u, g.Qubits)
		if m == nil {
			continue
		}
		channels, err := m.Channels(g)
		if err != nil {
			return errors.Wrap(err, "")
		}
		for _, ch := range channels {
			rho.ApplyChannel(ch.Kraus, ch.Qubits)
		}
	}
	return nil
}

func probabilities(psi []complex128) []float64 {
	p := make([]float64, len(psi))
	for i, a := range psi {
		p[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return p
}
