package circuit

import (
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"github.com/fumin/vqe/mat"
	"github.com/fumin/vqe/pauli"
	"github.com/fumin/vqe/pulse"
)

// simulate returns the final state of a bound circuit started from |0...0>.
func simulate(t *testing.T, c *Circuit) []complex128 {
	psi := make([]complex128, 1<<c.NumQubits)
	psi[0] = 1
	for _, g := range c.Gates {
		if g.Kind == Barrier || g.Kind == Measure {
			continue
		}
		u, err := g.Unitary(nil)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		next := make([]complex128, len(psi))
		for b, amp := range psi {
			var local int
			for i, q := range g.Qubits {
				local |= (b >> q & 1) << i
			}
			for row := range u {
				v := u[row][local]
				if v == 0 {
					continue
				}
				nb := b
				for i, q := range g.Qubits {
					nb = nb&^(1<<q) | (row>>i&1)<<q
				}
				next[nb] += v * amp
			}
		}
		psi = next
	}
	return psi
}

// equalUpToPhase reports whether a = e^{iφ} b.
func equalUpToPhase(a, b []complex128, tol float64) bool {
	var overlap complex128
	for i := range a {
		overlap += cmplx.Conj(a[i]) * b[i]
	}
	return math.Abs(cmplx.Abs(overlap)-1) < tol
}

func TestDecompose(t *testing.T) {
	t.Parallel()
	type testcase struct {
		name  string
		build func(c *Circuit)
	}
	tests := []testcase{
		{name: "h", build: func(c *Circuit) { c.H(0) }},
		{name: "y", build: func(c *Circuit) { c.RX(1, Const(0.3)).Y(1) }},
		{name: "s", build: func(c *Circuit) { c.H(0).S(0).Sdg(1).Z(1) }},
		{name: "rx", build: func(c *Circuit) { c.RX(0, Const(0.7)).RX(1, Const(-1.1)) }},
		{name: "ry", build: func(c *Circuit) { c.RY(0, Const(0.7)).RY(1, Const(2.1)) }},
		{name: "cz", build: func(c *Circuit) { c.H(0).RY(1, Const(0.4)).CZ(0, 1) }},
		{name: "swap", build: func(c *Circuit) { c.RX(0, Const(0.4)).Swap(0, 1) }},
		{name: "rzx", build: func(c *Circuit) { c.H(0).RY(1, Const(0.2)).RZX(0, 1, Const(0.9), nil) }},
		{name: "rzx reversed", build: func(c *Circuit) { c.RY(0, Const(1.2)).H(1).RZX(1, 0, Const(-0.5), nil) }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			c := New(2)
			test.build(c)
			d := c.Decompose()
			for _, g := range d.Gates {
				switch g.Kind {
				case RZ, SX, X, CX:
				default:
					t.Fatalf("%s", g)
				}
			}
			if !equalUpToPhase(simulate(t, c), simulate(t, d), 1e-10) {
				t.Fatalf("%v\n%v", simulate(t, c), simulate(t, d))
			}
		})
	}
}

func TestRZXUnitary(t *testing.T) {
	t.Parallel()
	for _, theta := range []float64{0, 0.3, -math.Pi / 2, 2} {
		t.Run(fmt.Sprintf("%f", theta), func(t *testing.T) {
			t.Parallel()
			u, err := Gate{Kind: RZX, Qubits: []int{0, 1}, Angle: Const(theta)}.Unitary(nil)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			h := pauli.NewOp(2, pauli.T("ZX", 1)).Matrix()
			expected, err := h.Propagator(theta / 2)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if !mat.M(u).EqualApprox(expected, 1e-12) {
				t.Fatalf("%v, expected %v", mat.M(u), expected)
			}
		})
	}
}

func TestBind(t *testing.T) {
	t.Parallel()
	c := New(2)
	a, b := c.Param(), c.Param()
	c.RY(0, a).RZ(1, b.Shift(1)).CX(0, 1)
	if c.IsBound() {
		t.Fatalf("bound")
	}
	if _, err := c.Bind([]float64{1}); err == nil {
		t.Fatalf("expected error")
	}
	bound, err := c.Bind([]float64{0.5, 2})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !bound.IsBound() || bound.Gates[0].Angle.Offset != 0.5 || bound.Gates[1].Angle.Offset != 3 {
		t.Fatalf("%#v", bound.Gates)
	}
	// The receiver is untouched.
	if !c.Gates[0].Angle.IsParam() {
		t.Fatalf("%#v", c.Gates[0])
	}
	if s := c.Gates[1].Angle.String(); s != "θ[1]+1" {
		t.Fatalf("%s", s)
	}
}

func TestCompose(t *testing.T) {
	t.Parallel()
	c := New(3)
	c.RX(0, c.Param())
	other := New(2)
	other.RY(0, other.Param()).CX(0, 1)
	if err := c.Compose(other, 2, 1); err != nil {
		t.Fatalf("%+v", err)
	}
	if c.NumParams != 2 {
		t.Fatalf("%d", c.NumParams)
	}
	if g := c.Gates[1]; g.Qubits[0] != 2 || g.Angle.Param != 1 {
		t.Fatalf("%#v", g)
	}
	if g := c.Gates[2]; g.Qubits[0] != 2 || g.Qubits[1] != 1 {
		t.Fatalf("%#v", g)
	}
	if err := c.Compose(other, 0); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCounts(t *testing.T) {
	t.Parallel()
	c := New(3)
	c.RY(0, c.Param()).RY(1, c.Param()).RZ(2, Const(1)).CX(0, 1).Barrier().CX(1, 2).MeasureAll()
	counts := c.CountOps()
	if counts[RY] != 2 || counts[CX] != 2 || counts[Measure] != 3 {
		t.Fatalf("%#v", counts)
	}
	if n := c.NumParamRotations(); n != 2 {
		t.Fatalf("%d", n)
	}
	if n := c.NumTwoQubit(); n != 2 {
		t.Fatalf("%d", n)
	}
	if d := c.Depth(); d != 4 {
		t.Fatalf("%d", d)
	}
}

func TestDuration(t *testing.T) {
	t.Parallel()
	cals := pulse.FakeLinear(2)
	c := New(2)
	c.RZ(0, Const(1)).SX(0).CX(0, 1).X(1)
	d, err := c.Duration(cals)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if expected := 160 + 2*704 + 2*160 + 160; d != expected {
		t.Fatalf("%d, expected %d", d, expected)
	}

	// Unitary gates have no calibration.
	u := New(1)
	if err := u.Unitary("u", mat.M(mat.PauliX), 0); err != nil {
		t.Fatalf("%+v", err)
	}
	if _, err := u.Duration(cals); err == nil {
		t.Fatalf("expected error")
	}
}

func TestUnitaryValidation(t *testing.T) {
	t.Parallel()
	c := New(2)
	if err := c.Unitary("bad", mat.M([][]complex128{{1, 1}, {0, 1}}), 0); err == nil {
		t.Fatalf("expected error")
	}
	if err := c.Unitary("bad", mat.M(mat.PauliX), 0, 1); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := func() (string, error) {
		if err := c.Unitary("x", mat.M(mat.PauliX), 1); err != nil {
			return "", err
		}
		return c.QASM()
	}(); err == nil {
		t.Fatalf("expected error")
	}
}

func ExampleCircuit_Draw() {
	c := New(2)
	c.H(0).CX(0, 1).RY(1, c.Param()).MeasureAll()
	fmt.Println(c.Draw())
	// Output:
	// q0: ─H─■────M───────
	// q1: ───X─RY(θ[0])─M─
}

func ExampleCircuit_QASM() {
	c := New(2)
	c.H(0).CX(0, 1).RZ(1, Const(0.5)).Measure(0)
	qasm, err := c.QASM()
	if err != nil {
		fmt.Printf("%+v\n", err)
	}
	fmt.Print(qasm)
	// Output:
	// OPENQASM 2.0;
	// include "qelib1.inc";
	// qreg q[2];
	// creg c[2];
	// h q[0];
	// cx q[0],q[1];
	// rz(0.5) q[1];
	// measure q[0] -> c[0];
}
