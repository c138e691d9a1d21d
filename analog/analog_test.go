package analog

import (
	"fmt"
	"log"
	"math"
	"os"
	"testing"

	"github.com/fumin/vqe/backend"
	"github.com/fumin/vqe/circuit"
)

func TestHamiltonian(t *testing.T) {
	t.Parallel()
	tests := []struct {
		m     Ising
		bonds int
	}{
		{m: Chain(2, 1), bonds: 1},
		{m: Chain(4, 0.5), bonds: 3},
		{m: Ising{NumQubits: 3, J: -1, Field: 0.7}, bonds: 2},
		{m: Ising{NumQubits: 4, J: 1, Field: 0.3, AllToAll: true}, bonds: 6},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			t.Parallel()
			if len(test.m.Bonds()) != test.bonds {
				t.Fatalf("%v, expected %d", test.m.Bonds(), test.bonds)
			}
			h, err := test.m.Hamiltonian()
			if err != nil {
				t.Fatalf("%+v", err)
			}
			expected := test.m.Op().Matrix()
			if !h.EqualApprox(expected, 1e-12) {
				t.Fatalf("%v, expected %v", h, expected)
			}
		})
	}
}

func TestInvalid(t *testing.T) {
	t.Parallel()
	if _, err := Chain(1, 1).Hamiltonian(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCircuit(t *testing.T) {
	t.Parallel()
	c, err := Chain(3, 1).Circuit(0.4)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	ops := c.CountOps()
	if ops[circuit.Unitary] != 1 || ops[circuit.H] != 6 || ops[circuit.Measure] != 3 {
		t.Fatalf("%#v", ops)
	}
}

func TestRun(t *testing.T) {
	t.Parallel()
	// H⊗H exp(-iJt ZZ) H⊗H |00> = cos(Jt)|00> - i sin(Jt)|11>.
	jt := math.Pi / 8
	tests := []struct {
		b   *backend.Backend
		tol float64
	}{
		{b: &backend.Backend{Name: "statevector", Method: backend.Exact}, tol: 1e-9},
		{b: &backend.Backend{Name: "shots", Method: backend.Sampling, Shots: 100000, Seed: 5}, tol: 1e-9},
	}
	for _, test := range tests {
		t.Run(test.b.Name, func(t *testing.T) {
			t.Parallel()
			res, err := Run(test.b, Chain(2, 2), jt/2)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			expected := []float64{math.Pow(math.Cos(jt), 2), 0, 0, math.Pow(math.Sin(jt), 2)}
			for i, p := range res.Probabilities {
				if math.Abs(p-expected[i]) > test.tol {
					t.Fatalf("%v, expected %v", res.Probabilities, expected)
				}
			}
			if math.Abs(res.Statistics.Magnetization-1) > 1e-9 || math.Abs(res.Statistics.BinderCumulant-2./3) > 1e-9 {
				t.Fatalf("%#v", res.Statistics)
			}

			if test.b.Method != backend.Sampling {
				if res.Counts != nil {
					t.Fatalf("%v", res.Counts)
				}
				return
			}
			if res.Counts.Total() != test.b.Shots || res.Counts[1] != 0 || res.Counts[2] != 0 {
				t.Fatalf("%v", res.Counts)
			}
			p00 := float64(res.Counts[0]) / float64(test.b.Shots)
			if math.Abs(p00-expected[0]) > 0.01 {
				t.Fatalf("%f, expected %f", p00, expected[0])
			}
		})
	}
}

func TestRunNoisy(t *testing.T) {
	t.Parallel()
	b := &backend.Backend{Name: "noisy", Method: backend.Exact, Noise: backend.NewNoiseModel(backend.FakeLinear(3))}
	res, err := Run(b, Ising{NumQubits: 3, J: 1, Field: 0.5}, 0.3)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	var sum float64
	for _, p := range res.Probabilities {
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("%f %v", sum, res.Probabilities)
	}
}

func TestMain(m *testing.M) {
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	os.Exit(m.Run())
}
