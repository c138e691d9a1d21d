package optimizer

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pkg/errors"
)

// quadratic has its minimum 0 at (0, 1, 2, ...).
func quadratic(x []float64) float64 {
	var f float64
	for i, v := range x {
		d := v - float64(i)
		f += d * d
	}
	return f
}

func TestMinimize(t *testing.T) {
	t.Parallel()
	type testcase struct {
		name    string
		maxIter int
		tol     float64
	}
	tests := []testcase{
		{name: "nelder-mead", maxIter: 1000, tol: 1e-6},
		{name: "bfgs", maxIter: 100, tol: 1e-6},
		{name: "lbfgs", maxIter: 100, tol: 1e-6},
		{name: "spsa", maxIter: 300, tol: 1e-2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			opt, err := New(test.name, test.maxIter, 1)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if opt.Name() != test.name {
				t.Fatalf("%s, expected %s", opt.Name(), test.name)
			}
			res, err := opt.Minimize(context.Background(), quadratic, []float64{0.5, -0.5, 0.3})
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if res.F > test.tol {
				t.Fatalf("%f %v, expected 0", res.F, res.X)
			}
			if f := quadratic(res.X); f != res.F {
				t.Fatalf("%f, expected %f", f, res.F)
			}
			if res.Evaluations <= 0 {
				t.Fatalf("%d evaluations", res.Evaluations)
			}
		})
	}
}

func TestMayfly(t *testing.T) {
	t.Parallel()
	target := []float64{0.5, -0.3}
	f := func(x []float64) float64 {
		var s float64
		for i := range x {
			d := x[i] - target[i]
			s += d * d
		}
		return s
	}
	var costs []float64
	for range 2 {
		res, err := NewMayfly(100, 20, 123).Minimize(context.Background(), f, []float64{0, 0})
		if err != nil {
			t.Fatalf("%+v", err)
		}
		if res.F > 0.1 {
			t.Fatalf("%f %v", res.F, res.X)
		}
		costs = append(costs, res.F)
	}
	if costs[0] != costs[1] {
		t.Fatalf("%f, expected %f", costs[1], costs[0])
	}
}

func TestCancel(t *testing.T) {
	t.Parallel()
	for _, name := range Names {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			opt, err := New(name, 50, 1)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			if _, err := opt.Minimize(ctx, quadratic, []float64{0.5, 0.5}); !errors.Is(err, context.Canceled) {
				t.Fatalf("%+v, expected %v", err, context.Canceled)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()
	if _, err := New("gradient-descent", 10, 0); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := New("spsa", 0, 0); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMain(m *testing.M) {
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)
	os.Exit(m.Run())
}
