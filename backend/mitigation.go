package backend

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fumin/vqe/circuit"
)

// calibration is the assignment matrix A[measured][prepared] of a complete measurement calibration.
type calibration struct {
	numQubits int
	lu        mat.LU
}

// calibrate runs one circuit per basis state and records the distribution of measured outcomes.
func (b *Backend) calibrate(numQubits int) (*calibration, error) {
	if cal, ok := b.calibration[numQubits]; ok {
		return cal, nil
	}
	dim := 1 << numQubits
	a := mat.NewDense(dim, dim, nil)
	for prepared := range dim {
		c := circuit.New(numQubits)
		for q := range numQubits {
			if prepared>>q&1 == 1 {
				c.X(q)
			}
		}
		c.MeasureAll()
		probs, err := b.Probabilities(c)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		counts := b.Sample(probs, b.Shots)
		for measured, n := range counts {
			a.Set(measured, prepared, float64(n)/float64(b.Shots))
		}
	}

	cal := &calibration{numQubits: numQubits}
	cal.lu.Factorize(a)
	if cond := cal.lu.Cond(); cond > 1e12 {
		return nil, errors.Errorf("singular assignment matrix, condition %g", cond)
	}
	if b.calibration == nil {
		b.calibration = make(map[int]*calibration)
	}
	b.calibration[numQubits] = cal
	return cal, nil
}

// mitigate solves A p = counts/shots, clips negative quasi probabilities and renormalizes.
func (cal *calibration) mitigate(counts Counts) ([]float64, error) {
	dim := 1 << cal.numQubits
	shots := float64(counts.Total())
	noisy := mat.NewVecDense(dim, nil)
	for k, n := range counts {
		noisy.SetVec(k, float64(n)/shots)
	}
	var p mat.VecDense
	if err := cal.lu.SolveVecTo(&p, false, noisy); err != nil {
		return nil, errors.Wrap(err, "")
	}
	out := make([]float64, dim)
	var sum float64
	for i := range dim {
		out[i] = max(0, p.AtVec(i))
		sum += out[i]
	}
	if sum == 0 {
		return nil, errors.Errorf("no mass after mitigation")
	}
	for i := range out {
		out[i] /= sum
	}
	return out, nil
}

// MitigatedProbabilities samples a bound circuit and returns the readout corrected distribution.
func (b *Backend) MitigatedProbabilities(c *circuit.Circuit) ([]float64, error) {
	counts, err := b.Run(c)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	cal, err := b.calibrate(c.NumQubits)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	probs, err := cal.mitigate(counts)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return probs, nil
}
