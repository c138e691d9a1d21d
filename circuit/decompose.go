package circuit

import (
	"math"
)

// Decompose rewrites the circuit into the basis RZ, SX, X, CX, up to a global phase.
// Calibrated RZX gates, unitaries, measurements and barriers are kept.
func (c *Circuit) Decompose() *Circuit {
	d := &Circuit{Name: c.Name, NumQubits: c.NumQubits, NumParams: c.NumParams}
	for _, g := range c.Gates {
		decompose(d, g)
	}
	return d
}

func decompose(d *Circuit, g Gate) {
	q := g.Qubits
	switch g.Kind {
	case I:
	case H:
		d.RZ(q[0], Const(math.Pi/2)).SX(q[0]).RZ(q[0], Const(math.Pi/2))
	case Y:
		d.RZ(q[0], Const(math.Pi)).X(q[0])
	case Z:
		d.RZ(q[0], Const(math.Pi))
	case S:
		d.RZ(q[0], Const(math.Pi/2))
	case Sdg:
		d.RZ(q[0], Const(-math.Pi/2))
	case RX:
		// H RZ(θ) H.
		d.RZ(q[0], Const(math.Pi/2)).SX(q[0]).RZ(q[0], g.Angle.Shift(math.Pi)).SX(q[0]).RZ(q[0], Const(math.Pi/2))
	case RY:
		// S RX(θ) Sdg.
		d.SX(q[0]).RZ(q[0], g.Angle.Shift(math.Pi)).SX(q[0]).RZ(q[0], Const(math.Pi))
	case CZ:
		decompose(d, Gate{Kind: H, Qubits: []int{q[1]}})
		d.CX(q[0], q[1])
		decompose(d, Gate{Kind: H, Qubits: []int{q[1]}})
	case Swap:
		d.CX(q[0], q[1]).CX(q[1], q[0]).CX(q[0], q[1])
	case RZX:
		if g.Schedule != nil {
			d.Append(g)
			return
		}
		// H_t RZZ(θ) H_t with RZZ(θ) = CX RZ_t(θ) CX.
		decompose(d, Gate{Kind: H, Qubits: []int{q[1]}})
		d.CX(q[0], q[1]).RZ(q[1], g.Angle).CX(q[0], q[1])
		decompose(d, Gate{Kind: H, Qubits: []int{q[1]}})
	default:
		d.Append(g)
	}
}
