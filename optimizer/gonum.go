package optimizer

import (
	"context"
	"log"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

// Local runs one of the local methods of gonum/optimize, with finite difference gradients for the gradient based ones.
type Local struct {
	name    string
	method  func() optimize.Method
	maxIter int
	grad    bool
	// Step is the finite difference step.
	Step float64
}

// NewNelderMead returns the downhill simplex method.
func NewNelderMead(maxIter int) *Local {
	return &Local{name: "nelder-mead", maxIter: maxIter, method: func() optimize.Method { return &optimize.NelderMead{} }}
}

// NewBFGS returns the quasi-Newton BFGS method.
func NewBFGS(maxIter int) *Local {
	return &Local{name: "bfgs", maxIter: maxIter, grad: true, Step: 1e-4, method: func() optimize.Method { return &optimize.BFGS{} }}
}

// NewLBFGS returns the limited memory BFGS method.
func NewLBFGS(maxIter int) *Local {
	return &Local{name: "lbfgs", maxIter: maxIter, grad: true, Step: 1e-4, method: func() optimize.Method { return &optimize.LBFGS{} }}
}

func (l *Local) Name() string { return l.name }

func (l *Local) Minimize(ctx context.Context, f Objective, x0 []float64) (*Result, error) {
	if len(x0) == 0 {
		return nil, errors.Errorf("empty initial point")
	}
	t := newTracker(ctx, l.name, f)
	method := l.method()
	problem := optimize.Problem{
		Func: t.eval,
		Status: func() (optimize.Status, error) {
			if err := t.err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}
	if l.grad {
		settings := &fd.Settings{Formula: fd.Central, Step: l.Step}
		problem.Grad = func(grad, x []float64) {
			fd.Gradient(grad, t.eval, x, settings)
		}
	}
	settings := &optimize.Settings{MajorIterations: l.maxIter}

	res, err := optimize.Minimize(problem, x0, settings, method)
	if err := t.err(); err != nil {
		return nil, err
	}
	switch {
	case errors.Is(err, optimize.ErrLinesearcherFailure), errors.Is(err, optimize.ErrNoProgress):
		// Line searches stall on flat or noisy objectives, keep the best point.
		log.Printf("%s stopped: %v", l.name, err)
	case err != nil:
		return nil, errors.Wrap(err, "")
	}
	if t.best == nil {
		return nil, errors.Errorf("no evaluations, status %v", res.Status)
	}
	return t.result(), nil
}
