// Package backend simulates quantum circuits, ideally or under a device noise model, and estimates expectation values.
package backend

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/fumin/vqe/circuit"
)

// Method selects how expectation values are obtained.
type Method int

const (
	// Exact evaluates expectation values from the simulated state.
	Exact Method = iota
	// Sampling estimates expectation values from measurement shots.
	Sampling
)

func (m Method) String() string {
	switch m {
	case Exact:
		return "statevector"
	case Sampling:
		return "shots"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod parses the names returned by Method.String.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "statevector":
		return Exact, nil
	case "shots":
		return Sampling, nil
	}
	return -1, errors.Errorf("%q", s)
}

// NoiseLabel classifies a backend by its noise and mitigation settings.
type NoiseLabel int

const (
	Plain NoiseLabel = iota
	Noisy
	NoisyMitigated
)

// Suffix returns the text appended to the names of results from backends with this label.
func (l NoiseLabel) Suffix() string {
	switch l {
	case Noisy:
		return " (noisy)"
	case NoisyMitigated:
		return " (noisy, mitigated)"
	}
	return ""
}

func (l NoiseLabel) String() string {
	switch l {
	case Plain:
		return "plain"
	case Noisy:
		return "noisy"
	case NoisyMitigated:
		return "noisy, mitigated"
	}
	return fmt.Sprintf("NoiseLabel(%d)", int(l))
}

// Backend is a configured simulator.
type Backend struct {
	Name   string
	Method Method
	Shots  int
	Seed   uint64
	// Noise is nil for an ideal backend.
	Noise *NoiseModel
	// Mitigation enables measurement error mitigation of sampled counts.
	Mitigation bool

	rng         *rand.Rand
	calibration map[int]*calibration
}

// NoiseLabel returns Plain for ideal backends, and Noisy or NoisyMitigated depending on Mitigation otherwise.
func (b *Backend) NoiseLabel() NoiseLabel {
	switch {
	case b.Noise == nil:
		return Plain
	case b.Mitigation:
		return NoisyMitigated
	default:
		return Noisy
	}
}

// Validate checks that the settings are consistent.
func (b *Backend) Validate() error {
	switch b.Method {
	case Exact:
		if b.Mitigation {
			return errors.Errorf("mitigation requires shots %#v", b.Name)
		}
	case Sampling:
		if b.Shots <= 0 {
			return errors.Errorf("%d shots", b.Shots)
		}
	default:
		return errors.Errorf("%v", b.Method)
	}
	if b.Mitigation && b.Noise == nil {
		return errors.Errorf("mitigation without noise %#v", b.Name)
	}
	if b.Noise != nil {
		if b.Noise.Device == nil {
			return errors.Errorf("noise without device")
		}
		if err := b.Noise.Device.Validate(); err != nil {
			return errors.Wrap(err, "")
		}
	}
	return nil
}

func (b *Backend) String() string {
	parts := []string{b.Method.String()}
	if b.Method == Sampling {
		parts = append(parts, fmt.Sprintf("shots=%d", b.Shots))
	}
	if b.Noise != nil {
		parts = append(parts, "noise="+b.Noise.Device.Name)
	}
	if b.Mitigation {
		parts = append(parts, "mitigation")
	}
	return fmt.Sprintf("%s(%s)", b.Name, strings.Join(parts, ", "))
}

// Reset restarts the random number generator from the seed.
func (b *Backend) Reset() {
	b.rng = rand.New(rand.NewPCG(b.Seed, b.Seed^0x9e3779b97f4a7c15))
}

// transpile rewrites the circuit into the basis gates of the device and checks its couplings.
func (b *Backend) transpile(c *circuit.Circuit) (*circuit.Circuit, error) {
	if b.Noise == nil {
		return c, nil
	}
	d := b.Noise.Device
	if c.NumQubits > d.NumQubits {
		return nil, errors.Errorf("%d qubits on %s", c.NumQubits, d)
	}
	t := c.Decompose()
	for _, g := range t.Gates {
		if len(g.Qubits) == 2 && g.Kind != circuit.Barrier {
			if _, err := d.Pair(g.Qubits[0], g.Qubits[1]); err != nil {
				return nil, errors.Wrap(err, g.String())
			}
		}
	}
	return t, nil
}

// Probabilities returns the distribution of measuring every qubit of a bound circuit.
// Under noise, readout errors are included.
func (b *Backend) Probabilities(c *circuit.Circuit) ([]float64, error) {
	t, err := b.transpile(c)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if b.Noise == nil {
		psi, err := Statevector(t)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		return probabilities(psi), nil
	}

	rho := NewDensityMatrix(t.NumQubits)
	if err := rho.Evolve(t, b.Noise); err != nil {
		return nil, errors.Wrap(err, "")
	}
	probs, err := b.Noise.ApplyReadout(rho.Probabilities(), t.NumQubits)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return probs, nil
}

// Counts maps measured basis states to the number of shots.
type Counts map[int]int

// Total returns the number of shots.
func (c Counts) Total() int {
	var n int
	for _, v := range c {
		n += v
	}
	return n
}

// Bitstring formats a basis state with qubit 0 rightmost.
func Bitstring(b, numQubits int) string {
	s := make([]byte, numQubits)
	for q := range numQubits {
		s[numQubits-1-q] = '0' + byte(b>>q&1)
	}
	return string(s)
}

// Format returns the counts as bitstrings, sorted by bitstring.
func (c Counts) Format(numQubits int) string {
	keys := make([]int, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", Bitstring(k, numQubits), c[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Sample draws shots outcomes from probs.
func (b *Backend) Sample(probs []float64, shots int) Counts {
	if b.rng == nil {
		b.Reset()
	}
	cdf := make([]float64, len(probs))
	var acc float64
	for i, p := range probs {
		acc += p
		cdf[i] = acc
	}
	counts := make(Counts)
	for range shots {
		r := b.rng.Float64() * acc
		i, _ := slices.BinarySearch(cdf, r)
		// Skip zero probability outcomes sharing the cumulative value.
		for i < len(probs)-1 && probs[i] == 0 {
			i++
		}
		counts[min(i, len(probs)-1)]++
	}
	return counts
}

// Run samples the bound circuit with the configured number of shots, measuring every qubit.
func (b *Backend) Run(c *circuit.Circuit) (Counts, error) {
	shots := b.Shots
	if shots <= 0 {
		return nil, errors.Errorf("%d shots", shots)
	}
	probs, err := b.Probabilities(c)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return b.Sample(probs, shots), nil
}
