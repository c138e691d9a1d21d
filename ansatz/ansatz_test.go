package ansatz

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"github.com/pkg/errors"

	"github.com/fumin/vqe/backend"
	"github.com/fumin/vqe/circuit"
	"github.com/fumin/vqe/pulse"
)

func equalUpToPhase(a, b []complex128, tol float64) bool {
	var inner complex128
	for i := range a {
		inner += cmplx.Conj(a[i]) * b[i]
	}
	return math.Abs(cmplx.Abs(inner)-1) < tol
}

func TestCounts(t *testing.T) {
	t.Parallel()
	type testcase struct {
		numQubits int
		depth     int
	}
	tests := []testcase{
		{numQubits: 1, depth: 0},
		{numQubits: 2, depth: 1},
		{numQubits: 4, depth: 3},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d_%d", test.numQubits, test.depth), func(t *testing.T) {
			t.Parallel()
			naive, err := Naive(test.numQubits, test.depth)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			aware, err := Aware(test.numQubits, test.depth, pulse.FakeLinear(test.numQubits))
			if err != nil {
				t.Fatalf("%+v", err)
			}
			params := NumParams(test.numQubits, test.depth)
			entanglers := NumEntanglers(test.numQubits, test.depth)
			for _, c := range []*circuit.Circuit{naive, aware} {
				if c.NumParams != params {
					t.Fatalf("%s %d, expected %d", c.Name, c.NumParams, params)
				}
				if n := c.NumParamRotations(); n != params {
					t.Fatalf("%s %d, expected %d", c.Name, n, params)
				}
				if n := c.NumTwoQubit(); n != entanglers {
					t.Fatalf("%s %d, expected %d", c.Name, n, entanglers)
				}
			}
			if n := naive.CountOps()[circuit.CX]; n != entanglers {
				t.Fatalf("%d, expected %d", n, entanglers)
			}
			if n := aware.CountOps()[circuit.RZX]; n != entanglers {
				t.Fatalf("%d, expected %d", n, entanglers)
			}
		})
	}
}

func paramGates(c *circuit.Circuit) []circuit.Gate {
	gates := make([]circuit.Gate, 0)
	for _, g := range c.Gates {
		if g.Angle.IsParam() {
			gates = append(gates, g)
		}
	}
	return gates
}

func TestRotationPlacement(t *testing.T) {
	t.Parallel()
	naive, err := Naive(3, 2)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	aware, err := Aware(3, 2, pulse.FakeLinear(3))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	ng, ag := paramGates(naive), paramGates(aware)
	if len(ng) != len(ag) {
		t.Fatalf("%d, expected %d", len(ag), len(ng))
	}
	for i := range ng {
		if ng[i].Kind != ag[i].Kind || ng[i].Qubits[0] != ag[i].Qubits[0] || ng[i].Angle != ag[i].Angle {
			t.Fatalf("%d %s, expected %s", i, ag[i], ng[i])
		}
		q := ng[i].Qubits[0]
		l, r := i/(2*3), i%(2*3)/3
		if ng[i].Angle.Param != l*2*3+r*3+q {
			t.Fatalf("%s layer %d rotation %d", ng[i], l, r)
		}
	}
}

func TestEquivalence(t *testing.T) {
	t.Parallel()
	type testcase struct {
		numQubits int
		depth     int
	}
	tests := []testcase{
		{numQubits: 2, depth: 1},
		{numQubits: 3, depth: 2},
		{numQubits: 4, depth: 2},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d_%d", test.numQubits, test.depth), func(t *testing.T) {
			t.Parallel()
			naive, err := Naive(test.numQubits, test.depth)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			aware, err := Aware(test.numQubits, test.depth, pulse.FakeLinear(test.numQubits))
			if err != nil {
				t.Fatalf("%+v", err)
			}

			rng := rand.New(rand.NewPCG(uint64(test.numQubits), uint64(test.depth)))
			params := make([]float64, naive.NumParams)
			for i := range params {
				params[i] = (2*rng.Float64() - 1) * math.Pi
			}
			var states [][]complex128
			for _, c := range []*circuit.Circuit{naive, aware} {
				b, err := c.Bind(params)
				if err != nil {
					t.Fatalf("%+v", err)
				}
				psi, err := backend.Statevector(b)
				if err != nil {
					t.Fatalf("%+v", err)
				}
				states = append(states, psi)
			}
			if !equalUpToPhase(states[0], states[1], 1e-9) {
				t.Fatalf("%v, expected %v", states[1], states[0])
			}
		})
	}
}

func TestAwareNotCalibrated(t *testing.T) {
	t.Parallel()
	cals := pulse.FakeLinear(3)
	cals.CrossResonance = cals.CrossResonance[:1]
	if _, err := Aware(3, 1, cals); !errors.Is(err, pulse.ErrNotCalibrated) {
		t.Fatalf("%+v", err)
	}
	if _, err := Aware(2, 1, nil); !errors.Is(err, pulse.ErrNotCalibrated) {
		t.Fatalf("%+v", err)
	}
	// Without entanglers no calibration is needed.
	if _, err := Aware(3, 0, nil); err != nil {
		t.Fatalf("%+v", err)
	}
}

func TestInvalid(t *testing.T) {
	t.Parallel()
	if _, err := Naive(0, 1); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := Naive(2, -1); err == nil {
		t.Fatalf("expected error")
	}
}
