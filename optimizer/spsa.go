package optimizer

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

const (
	spsaAlpha = 0.602
	spsaGamma = 0.101
	// spsaTarget is the magnitude of the first step when the learning rate is calibrated.
	spsaTarget         = 2 * math.Pi / 10
	spsaCalibrationRun = 25
)

// SPSA is simultaneous perturbation stochastic approximation.
// Each iteration estimates the gradient from two evaluations along a random ±1 direction,
// with gains a_k = a/(k+1+A)^0.602 and c_k = c/(k+1)^0.101.
type SPSA struct {
	maxIter int
	seed    uint64
	// LearningRate is a, calibrated from the objective when zero.
	LearningRate float64
	// Perturbation is c.
	Perturbation float64
	// Stability is A, a tenth of the iterations when zero.
	Stability float64
}

func NewSPSA(maxIter int, seed uint64) *SPSA {
	return &SPSA{maxIter: maxIter, seed: seed, Perturbation: 0.1}
}

func (s *SPSA) Name() string { return "spsa" }

func (s *SPSA) Minimize(ctx context.Context, f Objective, x0 []float64) (*Result, error) {
	if len(x0) == 0 {
		return nil, errors.Errorf("empty initial point")
	}
	t := newTracker(ctx, s.Name(), f)
	rng := rand.New(rand.NewPCG(s.seed, s.seed+1))
	stability := s.Stability
	if stability == 0 {
		stability = 0.1 * float64(s.maxIter)
	}

	x := append([]float64(nil), x0...)
	delta := make([]float64, len(x))
	plus := make([]float64, len(x))
	minus := make([]float64, len(x))
	// diff returns (f(x+cΔ) - f(x-cΔ)) / 2c for a fresh direction Δ.
	diff := func(c float64) float64 {
		for i := range delta {
			delta[i] = float64(2*rng.IntN(2) - 1)
		}
		floats.AddScaledTo(plus, x, c, delta)
		floats.AddScaledTo(minus, x, -c, delta)
		return (t.eval(plus) - t.eval(minus)) / (2 * c)
	}

	a := s.LearningRate
	if a == 0 {
		var avg float64
		for range spsaCalibrationRun {
			if err := t.err(); err != nil {
				return nil, err
			}
			avg += math.Abs(diff(s.Perturbation)) / spsaCalibrationRun
		}
		if avg == 0 {
			avg = 1
		}
		a = spsaTarget * math.Pow(stability+1, spsaAlpha) / avg
	}

	for k := range s.maxIter {
		if err := t.err(); err != nil {
			return nil, err
		}
		ak := a / math.Pow(float64(k+1)+stability, spsaAlpha)
		ck := s.Perturbation / math.Pow(float64(k+1), spsaGamma)
		g := diff(ck)
		// Δ_i = ±1, so dividing by it is multiplying.
		floats.AddScaled(x, -ak*g, delta)
	}
	t.eval(x)
	return t.result(), nil
}
