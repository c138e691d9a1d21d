package optimizer

import (
	"context"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"
	"github.com/pkg/errors"
)

// Mayfly wraps the mayfly swarm optimizer.
// The search box is x0 ± π in every dimension, which covers a full period of rotation angles.
type Mayfly struct {
	maxIter int
	popSize int
	seed    uint64
}

// NewMayfly returns a swarm optimizer; the library requires popSize of at least 20.
func NewMayfly(maxIter, popSize int, seed uint64) *Mayfly {
	return &Mayfly{maxIter: maxIter, popSize: max(20, popSize), seed: seed}
}

func (m *Mayfly) Name() string { return "mayfly" }

func (m *Mayfly) Minimize(ctx context.Context, f Objective, x0 []float64) (*Result, error) {
	if len(x0) == 0 {
		return nil, errors.Errorf("empty initial point")
	}
	t := newTracker(ctx, m.Name(), f)
	// The library takes scalar bounds, so search in offsets from x0.
	shifted := make([]float64, len(x0))
	eval := func(d []float64) float64 {
		if t.err() != nil {
			return math.Inf(1)
		}
		for i := range d {
			shifted[i] = x0[i] + d[i]
		}
		return t.eval(shifted)
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = eval
	config.ProblemSize = len(x0)
	config.MaxIterations = m.maxIter
	config.NPop = m.popSize
	config.LowerBound = -math.Pi
	config.UpperBound = math.Pi
	config.Rand = rand.New(rand.NewSource(int64(m.seed)))

	if _, err := mayfly.Optimize(config); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := t.err(); err != nil {
		return nil, err
	}
	return t.result(), nil
}
