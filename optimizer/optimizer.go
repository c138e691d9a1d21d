// Package optimizer minimizes noisy scalar objectives of real parameter vectors.
package optimizer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/fumin/vqe/util"
)

// Objective is the function to minimize.
type Objective func(x []float64) float64

// Result is the best point found.
type Result struct {
	X []float64
	F float64
	// Evaluations is the number of objective evaluations.
	Evaluations int
}

// An Optimizer minimizes an objective starting from x0.
// Minimize returns the context's error when ctx is cancelled between evaluations.
type Optimizer interface {
	Minimize(ctx context.Context, f Objective, x0 []float64) (*Result, error)
	Name() string
}

// Names lists the optimizers constructible by New.
var Names = []string{"nelder-mead", "bfgs", "lbfgs", "spsa", "mayfly"}

// New returns the optimizer called name, limited to maxIter iterations.
func New(name string, maxIter int, seed uint64) (Optimizer, error) {
	if maxIter <= 0 {
		return nil, errors.Errorf("%d iterations", maxIter)
	}
	switch name {
	case "nelder-mead":
		return NewNelderMead(maxIter), nil
	case "bfgs":
		return NewBFGS(maxIter), nil
	case "lbfgs":
		return NewLBFGS(maxIter), nil
	case "spsa":
		return NewSPSA(maxIter, seed), nil
	case "mayfly":
		return NewMayfly(maxIter, 20, seed), nil
	}
	return nil, errors.Errorf("unknown optimizer %q, expected one of %v", name, Names)
}

// tracker counts evaluations, remembers the best point and polls the context.
type tracker struct {
	ctx       context.Context
	f         Objective
	n         int
	best      []float64
	bestF     float64
	throttler *util.SkipThrottler
	name      string
}

func newTracker(ctx context.Context, name string, f Objective) *tracker {
	return &tracker{ctx: ctx, f: f, name: name, throttler: util.NewSkipThrottler(60 * time.Second)}
}

func (t *tracker) eval(x []float64) float64 {
	v := t.f(x)
	t.n++
	if t.best == nil || v < t.bestF {
		t.best = append(t.best[:0], x...)
		t.bestF = v
	}
	if t.throttler.Ok() && t.n > 1 {
		log.Printf("%s evaluation %d best %f, %d quiet", t.name, t.n, t.bestF, t.throttler.Skipped())
	}
	return v
}

func (t *tracker) err() error {
	if err := t.ctx.Err(); err != nil {
		return errors.Wrap(err, fmt.Sprintf("%s after %d evaluations", t.name, t.n))
	}
	return nil
}

func (t *tracker) result() *Result {
	return &Result{X: append([]float64(nil), t.best...), F: t.bestF, Evaluations: t.n}
}
