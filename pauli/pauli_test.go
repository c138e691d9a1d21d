package pauli

import (
	"fmt"
	"math/cmplx"
	"testing"

	"github.com/fumin/vqe/mat"
)

func TestMul(t *testing.T) {
	t.Parallel()
	type testcase struct {
		a     string
		b     string
		phase complex128
		c     string
	}
	tests := []testcase{
		{a: "X", b: "Y", phase: 1i, c: "Z"},
		{a: "Y", b: "Z", phase: 1i, c: "X"},
		{a: "Z", b: "X", phase: 1i, c: "Y"},
		{a: "Y", b: "X", phase: -1i, c: "Z"},
		{a: "Z", b: "Y", phase: -1i, c: "X"},
		{a: "X", b: "Z", phase: -1i, c: "Y"},
		{a: "Y", b: "Y", phase: 1, c: "I"},
		{a: "XY", b: "YX", phase: 1, c: "ZZ"},
		{a: "XZI", b: "IZX", phase: 1, c: "XIX"},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s*%s", test.a, test.b), func(t *testing.T) {
			t.Parallel()
			phase, c := MustParse(test.a).Mul(MustParse(test.b))
			if phase != test.phase || c.Label() != test.c {
				t.Fatalf("%v %s, expected %v %s", phase, c.Label(), test.phase, test.c)
			}

			// Cross check against matrices.
			ma := MustParse(test.a).Matrix().MatMul(MustParse(test.b).Matrix())
			mc := mat.COOZeros(ma.Rows(), ma.Cols())
			mc.Add(test.phase, MustParse(test.c).Matrix())
			if !ma.EqualApprox(mc, 1e-12) {
				t.Fatalf("%v, expected %v", ma, mc)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()
	for _, label := range []string{"", "XA", "x"} {
		if _, err := Parse(label); err == nil {
			t.Fatalf("%q expected error", label)
		}
	}
	s := MustParse("IXYZ")
	if s.Label() != "IXYZ" {
		t.Fatalf("%s", s.Label())
	}
	if s.XMask() != 0b0110 || s.ZMask() != 0b1100 {
		t.Fatalf("%b %b", s.XMask(), s.ZMask())
	}
	if Single(4, 2, 'Y') != MustParse("IIYI") {
		t.Fatalf("%s", Single(4, 2, 'Y'))
	}
}

func TestMatrix(t *testing.T) {
	t.Parallel()
	// Qubit 0 is the least significant bit.
	m := MustParse("XI").Matrix()
	expected := mat.M(mat.Identity)
	expected.Kron(mat.M(mat.PauliX))
	if !m.Equal(expected) {
		t.Fatalf("%v, expected %v", m, expected)
	}

	op := NewOp(2, T("ZI", 0.5), T("IZ", -0.25), T("XX", 2))
	zi := mat.M(mat.Identity)
	zi.Kron(mat.M(mat.PauliZ))
	iz := mat.M(mat.PauliZ)
	iz.Kron(mat.M(mat.Identity))
	xx := mat.M(mat.PauliX)
	xx.Kron(mat.M(mat.PauliX))
	expected = mat.COOZeros(4, 4)
	expected.Add(0.5, zi)
	expected.Add(-0.25, iz)
	expected.Add(2, xx)
	if !op.Matrix().EqualApprox(expected, 1e-12) {
		t.Fatalf("%v, expected %v", op.Matrix(), expected)
	}
}

func TestExpectation(t *testing.T) {
	t.Parallel()
	op := NewOp(2, T("ZI", 0.5), T("YY", -0.3), T("XZ", 1.5), T("II", 0.1))
	psi := []complex128{0.5, 0.5i, -0.5, complex(0.5/1.0, 0) * cmplx.Exp(0.3i)}
	e := op.Expectation(psi)
	expected := op.Matrix().Expectation(psi)
	if cmplx.Abs(e-expected) > 1e-12 {
		t.Fatalf("%v, expected %v", e, expected)
	}
}

func TestOpAlgebra(t *testing.T) {
	t.Parallel()
	a := NewOp(1, T("X", 1), T("Z", 1))
	sq := a.Mul(a)
	// (X+Z)^2 = 2I.
	if !sq.Equal(NewOp(1, T("I", 2)), 1e-12) {
		t.Fatalf("%v", sq)
	}

	b := a.Copy().Add(-1, a)
	if b.Len() != 0 {
		t.Fatalf("%v", b)
	}

	c := NewOp(1, T("X", 1e-14), T("Z", complex(1, 1e-14))).Simplify(1e-10)
	if !c.Equal(NewOp(1, T("Z", 1)), 0) {
		t.Fatalf("%v", c)
	}
	if !c.IsHermitian(0) {
		t.Fatalf("%v", c)
	}
}

func TestTaper(t *testing.T) {
	t.Parallel()
	op := NewOp(3, T("ZIZ", 1), T("XIZ", 2), T("IZI", 3))
	tapered, err := op.Taper(2, -1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	expected := NewOp(2, T("ZI", -1), T("XI", -2), T("IZ", 3))
	if !tapered.Equal(expected, 1e-12) {
		t.Fatalf("%v, expected %v", tapered, expected)
	}

	tapered, err = op.Taper(1, 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	expected = NewOp(2, T("ZZ", 1), T("XZ", 2), T("II", 3))
	if !tapered.Equal(expected, 1e-12) {
		t.Fatalf("%v, expected %v", tapered, expected)
	}

	if _, err := op.Taper(0, 1); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGroupQubitWise(t *testing.T) {
	t.Parallel()
	op := NewOp(2, T("II", -1), T("ZI", 1), T("IZ", 1), T("ZZ", 1), T("XX", 1), T("XI", 1))
	groups, identity := op.GroupQubitWise()
	if identity != -1 {
		t.Fatalf("%v", identity)
	}
	// IZ,XI | XX | ZI,ZZ
	if len(groups) != 3 {
		t.Fatalf("%#v", groups)
	}
	var n int
	for _, g := range groups {
		n += len(g.Terms)
		for i, a := range g.Terms {
			for _, b := range g.Terms[i+1:] {
				if !a.QubitWiseCommutes(b.String) {
					t.Fatalf("%s %s", a.Label(), b.Label())
				}
			}
			for q := range 2 {
				if op := a.Op(q); op != 'I' && op != g.Basis[q] {
					t.Fatalf("%s %s", a.Label(), g.Basis)
				}
			}
		}
	}
	if n != 5 {
		t.Fatalf("%d", n)
	}
}
