package mat

import (
	"fmt"
	"math"
	"math/cmplx"
	"path/filepath"
	"strings"
	"testing"
)

func TestSlice(t *testing.T) {
	t.Parallel()
	tests := []struct {
		m *COO
		y [2]int
		x [2]int
		s *COO
	}{
		{
			m: M([][]complex128{
				{0, 1, 2, 3, 4},
				{5, 6, 7, 8, 9},
				{10, 11, 12, 13, 14},
				{15, 16, 17, 18, 19},
				{20, 21, 22, 23, 24},
				{25, 26, 27, 28, 29},
			}),
			y: [2]int{-5, -2},
			x: [2]int{1, 3},
			s: M([][]complex128{
				{6, 7},
				{11, 12},
				{16, 17},
			}),
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s", test.m), func(t *testing.T) {
			t.Parallel()
			s := test.m.Slice(test.y, test.x)
			if !s.Equal(test.s) {
				t.Fatalf("%s, expected %s", s, test.s)
			}
		})
	}
}

func TestAdd(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a          *COO
		c          complex128
		b          *COO
		z          *COO
		numNonZero int
	}{
		{
			a: M([][]complex128{
				{1, 0},
				{0, 2i},
			}),
			c: 1i,
			b: M([][]complex128{
				{1i, 0},
				{2, -5},
			}),
			z: M([][]complex128{
				{0, 0},
				{2i, -3i},
			}),
			numNonZero: 2,
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s", test.a), func(t *testing.T) {
			t.Parallel()
			test.a.Add(test.c, test.b)
			if !test.a.Equal(test.z) {
				t.Fatalf("%s, expected %s", test.a, test.z)
			}
			if len(test.a.Data) != test.numNonZero {
				t.Fatalf("%d, expected %d", len(test.a.Data), test.numNonZero)
			}
		})
	}
}

func TestMul(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a *COO
		b *COO
		c *COO
	}{
		{
			a: M([][]complex128{
				{0, 0},
				{-1, 2},
			}),
			b: M([][]complex128{
				{0, 1},
				{0, 2},
			}),
			c: M([][]complex128{
				{0, 0},
				{0, 4},
			}),
		},
		// Multiply scalar using broadcast.
		{
			a: M([][]complex128{
				{0, 3},
				{-1, 2},
			}),
			b: M([][]complex128{{-2}}),
			c: M([][]complex128{
				{0, -6},
				{2, -4},
			}),
		},
		// Multiply vector using broadcast.
		{
			a: M([][]complex128{
				{0, 3},
				{-1, 2},
			}),
			b: M([][]complex128{{3}, {-2}}),
			c: M([][]complex128{
				{0, 9},
				{2, -4},
			}),
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s", test.a), func(t *testing.T) {
			t.Parallel()
			test.a.Mul(test.b)
			if !test.a.Equal(test.c) {
				t.Fatalf("%s, expected %s", test.a, test.c)
			}
		})
	}
}

func TestKron(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a *COO
		b *COO
		c *COO
	}{
		{
			a: M([][]complex128{
				{1, -4, 7},
				{-2, 0, 3},
			}),
			b: M([][]complex128{
				{8, -9, -6, 5},
				{1, -3, 0, 7},
				{2, 8, -8, -3},
				{1, 2, -5, -1},
			}),
			c: M([][]complex128{
				{8, -9, -6, 5, -32, 36, 24, -20, 56, -63, -42, 35},
				{1, -3, 0, 7, -4, 12, 0, -28, 7, -21, 0, 49},
				{2, 8, -8, -3, -8, -32, 32, 12, 14, 56, -56, -21},
				{1, 2, -5, -1, -4, -8, 20, 4, 7, 14, -35, -7},
				{-16, 18, 12, -10, 0, 0, 0, 0, 24, -27, -18, 15},
				{-2, 6, 0, -14, 0, 0, 0, 0, 3, -9, 0, 21},
				{-4, -16, 16, 6, 0, 0, 0, 0, 6, 24, -24, -9},
				{-2, -4, 10, 2, 0, 0, 0, 0, 3, 6, -15, -3},
			}),
		},
		// Scalar kronecker.
		{
			a: M([][]complex128{{1}}),
			b: M([][]complex128{
				{1, 2},
				{3, 4},
			}),
			c: M([][]complex128{
				{1, 2},
				{3, 4},
			}),
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s", test.a), func(t *testing.T) {
			t.Parallel()
			test.a.Kron(test.b)
			if !test.a.Equal(test.c) {
				t.Fatalf("%s, expected %s", test.a, test.c)
			}
		})
	}
}

func TestEigen(t *testing.T) {
	t.Parallel()
	tests := []struct {
		m    *COO
		vals []float64
	}{
		{
			m:    M(PauliZ),
			vals: []float64{-1, 1},
		},
		{
			m:    M(PauliY),
			vals: []float64{-1, 1},
		},
		{
			m: M([][]complex128{
				{2, 1 - 1i, 0},
				{1 + 1i, 3, 0},
				{0, 0, -1},
			}),
			vals: []float64{-1, 1, 4},
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s", test.m), func(t *testing.T) {
			t.Parallel()
			vvs, err := test.m.Eigen()
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if len(vvs) != len(test.vals) {
				t.Fatalf("%d, expected %d", len(vvs), len(test.vals))
			}
			buf := make([]complex128, 0)
			for i, vv := range vvs {
				if math.Abs(vv.Val-test.vals[i]) > 1e-9 {
					t.Fatalf("%d %f, expected %f", i, vv.Val, test.vals[i])
				}
				// Check m v = lambda v.
				buf = test.m.MulVec(buf, vv.Vec)
				for j, v := range buf {
					if cmplx.Abs(v-complex(vv.Val, 0)*vv.Vec[j]) > 1e-9 {
						t.Fatalf("%d %d %v %v", i, j, v, vv.Vec[j])
					}
				}
			}
		})
	}
}

func TestEigenNotHermitian(t *testing.T) {
	t.Parallel()
	m := M([][]complex128{
		{0, 1},
		{0, 0},
	})
	if _, err := m.Eigen(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestExpectation(t *testing.T) {
	t.Parallel()
	m := M(PauliX)
	s := complex(1/math.Sqrt2, 0)
	if e := m.Expectation([]complex128{s, s}); cmplx.Abs(e-1) > 1e-12 {
		t.Fatalf("%v", e)
	}
	if e := m.Expectation([]complex128{s, -s}); cmplx.Abs(e+1) > 1e-12 {
		t.Fatalf("%v", e)
	}
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()
	m := M([][]complex128{
		{1.5, 0, 0},
		{0, -2 + 0.25i, 0},
		{0, 0, 0},
		{7, 0, 1i},
	})
	fpath := filepath.Join(t.TempDir(), "m.csv")
	if err := m.Save(fpath); err != nil {
		t.Fatalf("%+v", err)
	}
	read, err := Load(fpath)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !read.Equal(m) || read.Rows() != 4 || read.Cols() != 3 {
		t.Fatalf("%s, expected %s", read, m)
	}
}

func TestReadCSV(t *testing.T) {
	t.Parallel()
	tests := []struct {
		s   string
		ok  bool
		nnz int
	}{
		{s: "2,2\n1,0,0,0\n-1,0,1,1\n", ok: true, nnz: 2},
		{s: "2,2\n0,0.5,1,0\n0,-0.5,0,1\n", ok: true, nnz: 2},
		{s: "2,2\n", ok: true, nnz: 0},
		{s: "", ok: false},
		{s: "2\n", ok: false},
		{s: "2,2\n1,0,2,0\n", ok: false},
		{s: "2,2\n1,0,0\n", ok: false},
		{s: "2,2\nx,0,0,0\n", ok: false},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			t.Parallel()
			m, err := ReadCSV(strings.NewReader(test.s))
			if !test.ok {
				if err == nil {
					t.Fatalf("expected error %s", m)
				}
				return
			}
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if m.NumNonZero() != test.nnz {
				t.Fatalf("%d, expected %d", m.NumNonZero(), test.nnz)
			}
		})
	}
}

func TestPropagator(t *testing.T) {
	t.Parallel()
	type testcase struct {
		m        [][]complex128
		t        float64
		expected [][]complex128
	}
	c, s := complex(math.Cos(0.3), 0), complex(math.Sin(0.3), 0)
	tests := []testcase{
		{m: PauliZ, t: 0.3, expected: [][]complex128{{cmplx.Exp(-0.3i), 0}, {0, cmplx.Exp(0.3i)}}},
		{m: PauliX, t: 0.3, expected: [][]complex128{{c, -1i * s}, {-1i * s, c}}},
		{m: PauliY, t: 0.3, expected: [][]complex128{{c, -s}, {s, c}}},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v", test.m), func(t *testing.T) {
			t.Parallel()
			u, err := M(test.m).Propagator(test.t)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if !u.EqualApprox(M(test.expected), 1e-12) {
				t.Fatalf("%v, expected %v", u, M(test.expected))
			}
		})
	}
}

func TestMatMul(t *testing.T) {
	t.Parallel()
	a := M([][]complex128{{1, 2i}, {0, 3}})
	b := M([][]complex128{{0, 1}, {1i, 0}})
	expected := M([][]complex128{{-2, 1}, {3i, 0}})
	if c := a.MatMul(b); !c.Equal(expected) {
		t.Fatalf("%v, expected %v", c, expected)
	}
}
