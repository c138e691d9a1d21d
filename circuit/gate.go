package circuit

import (
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/fumin/vqe/mat"
	"github.com/fumin/vqe/pulse"
)

// Kind is the name of a gate, following OpenQASM naming.
type Kind string

const (
	I       Kind = "id"
	H       Kind = "h"
	X       Kind = "x"
	Y       Kind = "y"
	Z       Kind = "z"
	S       Kind = "s"
	Sdg     Kind = "sdg"
	SX      Kind = "sx"
	RX      Kind = "rx"
	RY      Kind = "ry"
	RZ      Kind = "rz"
	CX      Kind = "cx"
	CZ      Kind = "cz"
	Swap    Kind = "swap"
	RZX     Kind = "rzx"
	Unitary Kind = "unitary"
	Measure Kind = "measure"
	Barrier Kind = "barrier"
)

// Rotation reports whether k takes an angle.
func (k Kind) Rotation() bool {
	switch k {
	case RX, RY, RZ, RZX:
		return true
	}
	return false
}

// Angle is the constant Offset plus Scale times parameter Param, or just Offset if Param is negative.
type Angle struct {
	Param  int
	Scale  float64
	Offset float64
}

// Const returns a constant angle.
func Const(v float64) Angle {
	return Angle{Param: -1, Offset: v}
}

// IsParam reports whether a depends on a parameter.
func (a Angle) IsParam() bool { return a.Param >= 0 }

// Value returns the angle for the given parameters.
func (a Angle) Value(params []float64) float64 {
	if !a.IsParam() {
		return a.Offset
	}
	return a.Scale*params[a.Param] + a.Offset
}

// Shift returns a + d.
func (a Angle) Shift(d float64) Angle {
	a.Offset += d
	return a
}

func (a Angle) String() string {
	if !a.IsParam() {
		return formatFloat(a.Offset)
	}
	s := fmt.Sprintf("θ[%d]", a.Param)
	if a.Scale != 1 {
		s = formatFloat(a.Scale) + "*" + s
	}
	switch {
	case a.Offset > 0:
		s += "+" + formatFloat(a.Offset)
	case a.Offset < 0:
		s += formatFloat(a.Offset)
	}
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

// Gate is an operation on an ordered list of qubits.
// For two qubit controlled gates the first qubit is the control.
type Gate struct {
	Kind   Kind
	Qubits []int
	Angle  Angle
	// Label names a unitary gate.
	Label string
	// Matrix is the matrix of a unitary gate, with the first qubit as the least significant bit.
	Matrix *mat.COO
	// Schedule is the pulse calibration attached to the gate, if any.
	Schedule *pulse.Schedule
}

func (g Gate) String() string {
	name := string(g.Kind)
	switch {
	case g.Kind == Unitary:
		name = g.Label
	case g.Kind.Rotation():
		name = fmt.Sprintf("%s(%s)", g.Kind, g.Angle)
	}
	qs := make([]string, 0, len(g.Qubits))
	for _, q := range g.Qubits {
		qs = append(qs, fmt.Sprintf("q%d", q))
	}
	return fmt.Sprintf("%s %s", name, strings.Join(qs, ","))
}

var (
	sqrtHalf = complex(1/math.Sqrt2, 0)
)

// Unitary returns the matrix of g, with the first qubit as the least significant bit of the index.
func (g Gate) Unitary(params []float64) ([][]complex128, error) {
	theta := 0.0
	if g.Kind.Rotation() {
		if g.Angle.IsParam() && g.Angle.Param >= len(params) {
			return nil, errors.Errorf("unbound %s", g)
		}
		theta = g.Angle.Value(params)
	}
	c, s := complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
	switch g.Kind {
	case I:
		return [][]complex128{{1, 0}, {0, 1}}, nil
	case H:
		return [][]complex128{{sqrtHalf, sqrtHalf}, {sqrtHalf, -sqrtHalf}}, nil
	case X:
		return [][]complex128{{0, 1}, {1, 0}}, nil
	case Y:
		return [][]complex128{{0, -1i}, {1i, 0}}, nil
	case Z:
		return [][]complex128{{1, 0}, {0, -1}}, nil
	case S:
		return [][]complex128{{1, 0}, {0, 1i}}, nil
	case Sdg:
		return [][]complex128{{1, 0}, {0, -1i}}, nil
	case SX:
		return [][]complex128{{complex(0.5, 0.5), complex(0.5, -0.5)}, {complex(0.5, -0.5), complex(0.5, 0.5)}}, nil
	case RX:
		return [][]complex128{{c, -1i * s}, {-1i * s, c}}, nil
	case RY:
		return [][]complex128{{c, -s}, {s, c}}, nil
	case RZ:
		return [][]complex128{{cmplx.Exp(complex(0, -theta/2)), 0}, {0, cmplx.Exp(complex(0, theta/2))}}, nil
	case CX:
		return [][]complex128{{1, 0, 0, 0}, {0, 0, 0, 1}, {0, 0, 1, 0}, {0, 1, 0, 0}}, nil
	case CZ:
		return [][]complex128{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, -1}}, nil
	case Swap:
		return [][]complex128{{1, 0, 0, 0}, {0, 0, 1, 0}, {0, 1, 0, 0}, {0, 0, 0, 1}}, nil
	case RZX:
		// cos(θ/2) I - i sin(θ/2) Z_c X_t, where Z_c X_t |c,t> = (-1)^c |c,1-t>.
		u := make([][]complex128, 4)
		for i := range u {
			u[i] = make([]complex128, 4)
			u[i][i] = c
		}
		for i := range 4 {
			sign := complex(1, 0)
			if i&1 == 1 {
				sign = -1
			}
			u[i^2][i] = -1i * s * sign
		}
		return u, nil
	case Unitary:
		if g.Matrix == nil {
			return nil, errors.Errorf("no matrix %s", g)
		}
		return g.Matrix.Dense(), nil
	}
	return nil, errors.Errorf("not unitary %s", g)
}
