package backend

import (
	"math"

	"github.com/pkg/errors"

	"github.com/fumin/vqe/circuit"
	"github.com/fumin/vqe/pauli"
)

// Channel is a quantum channel given by Kraus operators on qubits.
type Channel struct {
	Qubits []int
	Kraus  [][][]complex128
}

// NoiseModel derives gate and readout errors from device properties.
type NoiseModel struct {
	Device *Device
	// Depolarizing applies the gate errors after each gate.
	Depolarizing bool
	// ThermalRelaxation applies T1 and T2 decay over the duration of each gate.
	ThermalRelaxation bool
	// Readout applies assignment errors to measurement outcomes.
	Readout bool
}

// NewNoiseModel returns the full noise model of a device.
func NewNoiseModel(d *Device) *NoiseModel {
	return &NoiseModel{Device: d, Depolarizing: true, ThermalRelaxation: true, Readout: true}
}

// Channels returns the noise channels following a basis gate.
// Unitary gates are noiseless since they have no calibration.
func (m *NoiseModel) Channels(g circuit.Gate) ([]Channel, error) {
	switch g.Kind {
	case circuit.RZ, circuit.I, circuit.Unitary:
		return nil, nil
	}
	for _, q := range g.Qubits {
		if q >= m.Device.NumQubits {
			return nil, errors.Errorf("%s on a %d qubit device", g, m.Device.NumQubits)
		}
	}
	cal := m.Device.Calibrations
	duration, err := circuit.GateDuration(g, cal)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	channels := make([]Channel, 0)
	if m.Depolarizing {
		var p float64
		switch len(g.Qubits) {
		case 1:
			props, err := m.Device.Qubit(g.Qubits[0])
			if err != nil {
				return nil, errors.Wrap(err, "")
			}
			p = props.GateError
		case 2:
			pair, err := m.Device.Pair(g.Qubits[0], g.Qubits[1])
			if err != nil {
				return nil, errors.Wrap(err, "")
			}
			p = pair.GateError
			if g.Kind != circuit.CX {
				// Scale by the pulse duration relative to the native CX.
				cx, err := cal.CXDuration(g.Qubits[0], g.Qubits[1])
				if err != nil {
					return nil, errors.Wrap(err, "")
				}
				p = min(1, p*float64(duration)/float64(cx))
			}
		default:
			return nil, errors.Errorf("%s", g)
		}
		if p > 0 {
			channels = append(channels, Channel{Qubits: g.Qubits, Kraus: depolarizing(len(g.Qubits), p)})
		}
	}

	if m.ThermalRelaxation && duration > 0 {
		t := float64(duration) * cal.Dt
		for _, q := range g.Qubits {
			props, err := m.Device.Qubit(q)
			if err != nil {
				return nil, errors.Wrap(err, "")
			}
			channels = append(channels, Channel{Qubits: []int{q}, Kraus: thermalRelaxation(props.T1, props.T2, t)})
		}
	}
	return channels, nil
}

// depolarizing returns the Kraus operators of rho -> (1-p) rho + p I/2^k.
func depolarizing(k int, p float64) [][][]complex128 {
	numPaulis := 1 << (2 * k)
	kraus := make([][][]complex128, 0, numPaulis)
	for i := range numPaulis {
		ops := make([]byte, k)
		for q := range k {
			ops[q] = "IXYZ"[i>>(2*q)&3]
		}
		w := p / float64(numPaulis)
		if i == 0 {
			w = 1 - p + p/float64(numPaulis)
		}
		m := pauli.MustParse(string(ops)).Matrix().Dense()
		scale := complex(math.Sqrt(w), 0)
		for _, row := range m {
			for j := range row {
				row[j] *= scale
			}
		}
		kraus = append(kraus, m)
	}
	return kraus
}

// thermalRelaxation returns amplitude damping followed by the pure dephasing that completes the T2 decay, over time t.
func thermalRelaxation(t1, t2, t float64) [][][]complex128 {
	gamma := 1 - math.Exp(-t/t1)
	// 1/T2 = 1/(2T1) + 1/Tphi.
	rate := max(0, 1/t2-1/(2*t1))
	lambda := 1 - math.Exp(-2*t*rate)

	ad := [][][]complex128{
		{{1, 0}, {0, complex(math.Sqrt(1-gamma), 0)}},
		{{0, complex(math.Sqrt(gamma), 0)}, {0, 0}},
	}
	pd := [][][]complex128{
		{{1, 0}, {0, complex(math.Sqrt(1-lambda), 0)}},
		{{0, 0}, {0, complex(math.Sqrt(lambda), 0)}},
	}
	kraus := make([][][]complex128, 0, 4)
	for _, b := range pd {
		for _, a := range ad {
			kraus = append(kraus, matMul(b, a))
		}
	}
	return kraus
}

func matMul(a, b [][]complex128) [][]complex128 {
	n := len(a)
	c := make([][]complex128, n)
	for i := range n {
		c[i] = make([]complex128, n)
		for j := range n {
			for k := range n {
				c[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return c
}

// ApplyReadout returns the distribution of measured outcomes given the distribution of prepared states.
func (m *NoiseModel) ApplyReadout(probs []float64, numQubits int) ([]float64, error) {
	if !m.Readout {
		return probs, nil
	}
	out := append([]float64(nil), probs...)
	for q := range numQubits {
		props, err := m.Device.Qubit(q)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		e01, e10 := props.ProbMeas1Prep0, props.ProbMeas0Prep1
		bit := 1 << q
		for b := range out {
			if b&bit != 0 {
				continue
			}
			p0, p1 := out[b], out[b|bit]
			out[b] = (1-e01)*p0 + e10*p1
			out[b|bit] = e01*p0 + (1-e10)*p1
		}
	}
	return out, nil
}
