package vqe

import (
	"fmt"
	"io"
	"slices"
)

// Recorder accumulates the progress reported by the solver after every energy evaluation.
type Recorder struct {
	// Name prefixes the progress line.
	Name string

	w      io.Writer
	counts []int
	params [][]float64
	values []float64
	stds   []float64
}

// NewRecorder returns a recorder that redraws a progress line on w; a nil w disables it.
func NewRecorder(name string, w io.Writer) *Recorder {
	return &Recorder{Name: name, w: w}
}

// Callback appends an evaluation.
func (r *Recorder) Callback(evalCount int, params []float64, mean, std float64) {
	r.counts = append(r.counts, evalCount)
	r.params = append(r.params, slices.Clone(params))
	r.values = append(r.values, mean)
	r.stds = append(r.stds, std)
	if r.w != nil {
		fmt.Fprintf(r.w, "\r%s evaluation %d: %.6f ± %.6f", r.Name, evalCount, mean, std)
	}
}

// Done ends the progress line.
func (r *Recorder) Done() {
	if r.w != nil && len(r.counts) > 0 {
		fmt.Fprintln(r.w)
	}
}

func (r *Recorder) Counts() []int { return r.counts }
func (r *Recorder) Values() []float64 { return r.values }
func (r *Recorder) Params() [][]float64 { return r.params }
func (r *Recorder) Stds() []float64 { return r.stds }
func (r *Recorder) Len() int { return len(r.counts) }

// Best returns the index of the lowest recorded value, or -1 if empty.
func (r *Recorder) Best() int {
	if len(r.values) == 0 {
		return -1
	}
	best := 0
	for i, v := range r.values {
		if v < r.values[best] {
			best = i
		}
	}
	return best
}
