// Package circuit represents parameterized quantum circuits.
//
// Qubit q is bit q of a basis state index.
// Gates are stored in time order; angles may reference a flat parameter vector that is bound later.
package circuit

import (
	"fmt"
	"math/cmplx"
	"slices"

	"github.com/pkg/errors"

	"github.com/fumin/vqe/mat"
	"github.com/fumin/vqe/pulse"
)

// Circuit is a sequence of gates on NumQubits qubits with NumParams free parameters.
type Circuit struct {
	Name      string
	NumQubits int
	NumParams int
	Gates     []Gate
}

// New returns an empty circuit.
func New(numQubits int) *Circuit {
	return &Circuit{NumQubits: numQubits}
}

// Param allocates a new parameter.
func (c *Circuit) Param() Angle {
	a := Angle{Param: c.NumParams, Scale: 1}
	c.NumParams++
	return a
}

// Append adds a gate, panicking on invalid qubits.
func (c *Circuit) Append(g Gate) *Circuit {
	for i, q := range g.Qubits {
		if q < 0 || q >= c.NumQubits {
			panic(fmt.Sprintf("%s qubit %d out of %d", g, q, c.NumQubits))
		}
		if slices.Contains(g.Qubits[:i], q) {
			panic(fmt.Sprintf("%s repeated qubit %d", g, q))
		}
	}
	if g.Angle.IsParam() && g.Angle.Param >= c.NumParams {
		panic(fmt.Sprintf("%s parameter %d out of %d", g, g.Angle.Param, c.NumParams))
	}
	c.Gates = append(c.Gates, g)
	return c
}

func (c *Circuit) gate1(k Kind, q int) *Circuit {
	return c.Append(Gate{Kind: k, Qubits: []int{q}, Angle: Const(0)})
}

func (c *Circuit) I(q int) *Circuit   { return c.gate1(I, q) }
func (c *Circuit) H(q int) *Circuit   { return c.gate1(H, q) }
func (c *Circuit) X(q int) *Circuit   { return c.gate1(X, q) }
func (c *Circuit) Y(q int) *Circuit   { return c.gate1(Y, q) }
func (c *Circuit) Z(q int) *Circuit   { return c.gate1(Z, q) }
func (c *Circuit) S(q int) *Circuit   { return c.gate1(S, q) }
func (c *Circuit) Sdg(q int) *Circuit { return c.gate1(Sdg, q) }
func (c *Circuit) SX(q int) *Circuit  { return c.gate1(SX, q) }

func (c *Circuit) RX(q int, a Angle) *Circuit {
	return c.Append(Gate{Kind: RX, Qubits: []int{q}, Angle: a})
}

func (c *Circuit) RY(q int, a Angle) *Circuit {
	return c.Append(Gate{Kind: RY, Qubits: []int{q}, Angle: a})
}

func (c *Circuit) RZ(q int, a Angle) *Circuit {
	return c.Append(Gate{Kind: RZ, Qubits: []int{q}, Angle: a})
}

func (c *Circuit) CX(control, target int) *Circuit {
	return c.Append(Gate{Kind: CX, Qubits: []int{control, target}, Angle: Const(0)})
}

func (c *Circuit) CZ(a, b int) *Circuit {
	return c.Append(Gate{Kind: CZ, Qubits: []int{a, b}, Angle: Const(0)})
}

func (c *Circuit) Swap(a, b int) *Circuit {
	return c.Append(Gate{Kind: Swap, Qubits: []int{a, b}, Angle: Const(0)})
}

// RZX appends exp(-iθ/2 Z_control X_target) with an optional pulse calibration.
func (c *Circuit) RZX(control, target int, a Angle, schedule *pulse.Schedule) *Circuit {
	return c.Append(Gate{Kind: RZX, Qubits: []int{control, target}, Angle: a, Schedule: schedule})
}

// Unitary appends an arbitrary unitary on qubits, the first qubit being the least significant bit of m.
func (c *Circuit) Unitary(label string, m *mat.COO, qubits ...int) error {
	if m.Rows() != 1<<len(qubits) || m.Cols() != m.Rows() {
		return errors.Errorf("%dx%d matrix on %d qubits", m.Rows(), m.Cols(), len(qubits))
	}
	if !isUnitary(m, 1e-8) {
		return errors.Errorf("not unitary %s", label)
	}
	c.Append(Gate{Kind: Unitary, Qubits: slices.Clone(qubits), Angle: Const(0), Label: label, Matrix: m})
	return nil
}

func isUnitary(m *mat.COO, tol float64) bool {
	dense := m.Dense()
	n := len(dense)
	for i := range n {
		for j := range n {
			var v complex128
			for k := range n {
				v += cmplx.Conj(dense[k][i]) * dense[k][j]
			}
			if i == j {
				v -= 1
			}
			if cmplx.Abs(v) > tol {
				return false
			}
		}
	}
	return true
}

// Measure appends measurements of qubits into the classical bits of the same index.
func (c *Circuit) Measure(qubits ...int) *Circuit {
	for _, q := range qubits {
		c.Append(Gate{Kind: Measure, Qubits: []int{q}, Angle: Const(0)})
	}
	return c
}

// MeasureAll measures every qubit.
func (c *Circuit) MeasureAll() *Circuit {
	for q := range c.NumQubits {
		c.Measure(q)
	}
	return c
}

// Barrier appends a barrier across qubits, or all qubits if none are given.
func (c *Circuit) Barrier(qubits ...int) *Circuit {
	if len(qubits) == 0 {
		for q := range c.NumQubits {
			qubits = append(qubits, q)
		}
	}
	return c.Append(Gate{Kind: Barrier, Qubits: slices.Clone(qubits), Angle: Const(0)})
}

// Copy returns a deep copy of the gate list.
func (c *Circuit) Copy() *Circuit {
	d := *c
	d.Gates = make([]Gate, len(c.Gates))
	for i, g := range c.Gates {
		g.Qubits = slices.Clone(g.Qubits)
		d.Gates[i] = g
	}
	return &d
}

// Bind returns the circuit with every parameter replaced by its value.
func (c *Circuit) Bind(params []float64) (*Circuit, error) {
	if len(params) != c.NumParams {
		return nil, errors.Errorf("%d parameters, expected %d", len(params), c.NumParams)
	}
	b := c.Copy()
	for i, g := range b.Gates {
		if g.Angle.IsParam() {
			b.Gates[i].Angle = Const(g.Angle.Value(params))
		}
	}
	b.NumParams = 0
	return b, nil
}

// IsBound reports whether no gate references a parameter.
func (c *Circuit) IsBound() bool {
	for _, g := range c.Gates {
		if g.Angle.IsParam() {
			return false
		}
	}
	return true
}

// Compose appends other, mapping its qubit i to qubits[i], or to qubit i if qubits is empty.
// Parameters of other are renumbered after those of c.
func (c *Circuit) Compose(other *Circuit, qubits ...int) error {
	if len(qubits) == 0 {
		for q := range other.NumQubits {
			qubits = append(qubits, q)
		}
	}
	if len(qubits) != other.NumQubits {
		return errors.Errorf("%d qubits for %d", len(qubits), other.NumQubits)
	}
	for _, q := range qubits {
		if q < 0 || q >= c.NumQubits {
			return errors.Errorf("qubit %d out of %d", q, c.NumQubits)
		}
	}
	offset := c.NumParams
	c.NumParams += other.NumParams
	for _, g := range other.Gates {
		mapped := g
		mapped.Qubits = make([]int, len(g.Qubits))
		for i, q := range g.Qubits {
			mapped.Qubits[i] = qubits[q]
		}
		if g.Angle.IsParam() {
			mapped.Angle.Param += offset
		}
		c.Append(mapped)
	}
	return nil
}

// CountOps returns the number of gates of each kind.
func (c *Circuit) CountOps() map[Kind]int {
	counts := make(map[Kind]int)
	for _, g := range c.Gates {
		counts[g.Kind]++
	}
	return counts
}

// NumParamRotations returns the number of single qubit rotations that depend on a parameter.
func (c *Circuit) NumParamRotations() int {
	var n int
	for _, g := range c.Gates {
		if len(g.Qubits) == 1 && g.Kind.Rotation() && g.Angle.IsParam() {
			n++
		}
	}
	return n
}

// NumTwoQubit returns the number of two qubit gates.
func (c *Circuit) NumTwoQubit() int {
	var n int
	for _, g := range c.Gates {
		if len(g.Qubits) == 2 && g.Kind != Barrier {
			n++
		}
	}
	return n
}

// Depth returns the number of layers of gates, not counting barriers.
func (c *Circuit) Depth() int {
	level := make([]int, c.NumQubits)
	var depth int
	for _, g := range c.Gates {
		l := 0
		for _, q := range g.Qubits {
			l = max(l, level[q])
		}
		if g.Kind != Barrier {
			l++
		}
		for _, q := range g.Qubits {
			level[q] = l
		}
		depth = max(depth, l)
	}
	return depth
}

// Duration returns the scheduled length in dt of the decomposed circuit on a device with the given calibrations.
// Virtual RZ gates take no time.
func (c *Circuit) Duration(cal *pulse.CalibrationMap) (int, error) {
	end := make([]int, c.NumQubits)
	for _, g := range c.Decompose().Gates {
		d, err := GateDuration(g, cal)
		if err != nil {
			return -1, errors.Wrap(err, "")
		}
		start := 0
		for _, q := range g.Qubits {
			start = max(start, end[q])
		}
		for _, q := range g.Qubits {
			end[q] = start + d
		}
	}
	return slices.Max(append(end, 0)), nil
}

// GateDuration returns the duration in dt of a basis gate.
func GateDuration(g Gate, cal *pulse.CalibrationMap) (int, error) {
	switch g.Kind {
	case RZ, Barrier, I, Measure:
		return 0, nil
	case X, SX:
		qc, err := cal.Qubit(g.Qubits[0])
		if err != nil {
			return -1, errors.Wrap(err, "")
		}
		if g.Kind == X {
			return qc.X.Duration, nil
		}
		return qc.SX.Duration, nil
	case CX:
		d, err := cal.CXDuration(g.Qubits[0], g.Qubits[1])
		if err != nil {
			return -1, errors.Wrap(err, "")
		}
		return d, nil
	case RZX:
		if g.Schedule == nil {
			return -1, errors.Errorf("uncalibrated %s", g)
		}
		return g.Schedule.Duration(), nil
	}
	return -1, errors.Errorf("no duration for %s", g)
}
