// Package ansatz builds layered hardware efficient ansatz circuits on a linear chain of qubits.
//
// Layer l = 0..depth applies RY then RZ on every qubit; all layers but the last are followed by entanglers (q, q+1).
// Parameter l*2Q + r*Q + q is the angle of rotation r (0 for RY, 1 for RZ) on qubit q in layer l.
package ansatz

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/fumin/vqe/circuit"
	"github.com/fumin/vqe/pulse"
)

// NumParams returns the number of parameters of an ansatz on numQubits qubits with the given depth.
func NumParams(numQubits, depth int) int {
	return 2 * numQubits * (depth + 1)
}

// NumEntanglers returns the number of two qubit entanglers.
func NumEntanglers(numQubits, depth int) int {
	return (numQubits - 1) * depth
}

type entangler func(c *circuit.Circuit, control, target int) error

func build(name string, numQubits, depth int, entangle entangler) (*circuit.Circuit, error) {
	if numQubits < 1 || depth < 0 {
		return nil, errors.Errorf("%d qubits depth %d", numQubits, depth)
	}
	c := circuit.New(numQubits)
	c.Name = name
	for l := range depth + 1 {
		for q := range numQubits {
			c.RY(q, c.Param())
		}
		for q := range numQubits {
			c.RZ(q, c.Param())
		}
		if l == depth {
			break
		}
		for q := 0; q+1 < numQubits; q++ {
			if err := entangle(c, q, q+1); err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("layer %d", l))
			}
		}
	}
	return c, nil
}

// Naive returns the ansatz entangled by generic CX gates.
func Naive(numQubits, depth int) (*circuit.Circuit, error) {
	return build("naive", numQubits, depth, func(c *circuit.Circuit, control, target int) error {
		c.CX(control, target)
		return nil
	})
}

// Aware returns the ansatz whose CX gates are synthesized from calibrated cross resonance:
// CX = e^{iπ/4} RZ_c(π/2) RX_t(π/2) RZX_{c,t}(-π/2), the three factors commuting.
// The RZX carries a non-echoed schedule scaled from the calibration.
// If only target to control is calibrated, the RZX is conjugated by Hadamards on both qubits.
func Aware(numQubits, depth int, cals *pulse.CalibrationMap) (*circuit.Circuit, error) {
	builder := pulse.RZXBuilder{Calibrations: cals}
	const theta = -math.Pi / 2
	return build("aware", numQubits, depth, func(c *circuit.Circuit, control, target int) error {
		if cals == nil {
			return errors.Wrap(pulse.ErrNotCalibrated, "no calibrations")
		}
		switch _, forward := cals.CR(control, target); {
		case forward:
			s, err := builder.Schedule(control, target, theta)
			if err != nil {
				return errors.Wrap(err, "")
			}
			c.RZX(control, target, circuit.Const(theta), s)
		default:
			if _, ok := cals.CR(target, control); !ok {
				return errors.Wrap(pulse.ErrNotCalibrated, fmt.Sprintf("%d %d", control, target))
			}
			s, err := builder.Schedule(target, control, theta)
			if err != nil {
				return errors.Wrap(err, "")
			}
			c.H(control).H(target)
			c.RZX(target, control, circuit.Const(theta), s)
			c.H(control).H(target)
		}
		c.RZ(control, circuit.Const(math.Pi/2))
		c.RX(target, circuit.Const(math.Pi/2))
		return nil
	})
}
