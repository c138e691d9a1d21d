package circuit

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const rzxDefinition = "gate rzx(param0) q0,q1 { h q1; cx q0,q1; rz(param0) q1; cx q0,q1; h q1; }\n"

// QASM returns the bound circuit in OpenQASM 2.0.
func (c *Circuit) QASM() (string, error) {
	if !c.IsBound() {
		return "", errors.Errorf("unbound parameters")
	}
	var body strings.Builder
	usesRZX := false
	for _, g := range c.Gates {
		qs := make([]string, 0, len(g.Qubits))
		for _, q := range g.Qubits {
			qs = append(qs, fmt.Sprintf("q[%d]", q))
		}
		args := strings.Join(qs, ",")
		switch {
		case g.Kind == Unitary:
			return "", errors.Errorf("unitary gate %s has no OpenQASM 2.0 form", g.Label)
		case g.Kind == Measure:
			fmt.Fprintf(&body, "measure q[%d] -> c[%d];\n", g.Qubits[0], g.Qubits[0])
		case g.Kind.Rotation():
			if g.Kind == RZX {
				usesRZX = true
			}
			fmt.Fprintf(&body, "%s(%.17g) %s;\n", g.Kind, g.Angle.Offset, args)
		default:
			fmt.Fprintf(&body, "%s %s;\n", g.Kind, args)
		}
	}

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n")
	if usesRZX {
		sb.WriteString(rzxDefinition)
	}
	fmt.Fprintf(&sb, "qreg q[%d];\n", c.NumQubits)
	fmt.Fprintf(&sb, "creg c[%d];\n", c.NumQubits)
	sb.WriteString(body.String())
	return sb.String(), nil
}
