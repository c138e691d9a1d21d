package backend

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/fumin/vqe/pulse"
)

// QubitProperties are the measured properties of a single qubit.
type QubitProperties struct {
	Qubit int `yaml:"qubit"`
	// T1 and T2 are in seconds.
	T1 float64 `yaml:"t1"`
	T2 float64 `yaml:"t2"`
	// ProbMeas1Prep0 is the probability of reading 1 after preparing 0.
	ProbMeas1Prep0 float64 `yaml:"probMeas1Prep0"`
	ProbMeas0Prep1 float64 `yaml:"probMeas0Prep1"`
	// GateError is the depolarizing error of X and SX.
	GateError float64 `yaml:"gateError"`
}

// PairProperties are the properties of a coupled pair, in either direction.
type PairProperties struct {
	Qubits []int `yaml:"qubits"`
	// GateError is the depolarizing error of the native CX.
	GateError float64 `yaml:"gateError"`
}

// Device describes a quantum processor.
type Device struct {
	Name         string                `yaml:"name"`
	NumQubits    int                   `yaml:"numQubits"`
	Qubits       []QubitProperties     `yaml:"qubits"`
	Pairs        []PairProperties      `yaml:"pairs"`
	Calibrations *pulse.CalibrationMap `yaml:"calibrations"`
}

// ParseDevice parses YAML device properties.
func ParseDevice(b []byte) (*Device, error) {
	d := &Device{}
	if err := yaml.UnmarshalStrict(b, d); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := d.Validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return d, nil
}

// LoadDevice reads YAML device properties from a file.
func LoadDevice(fpath string) (*Device, error) {
	b, err := os.ReadFile(fpath)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	d, err := ParseDevice(b)
	if err != nil {
		return nil, errors.Wrap(err, fpath)
	}
	return d, nil
}

// Validate checks the device is physically consistent and fully calibrated.
func (d *Device) Validate() error {
	if d.NumQubits <= 0 {
		return errors.Errorf("%d qubits", d.NumQubits)
	}
	if d.Calibrations == nil {
		return errors.Errorf("no calibrations")
	}
	if err := d.Calibrations.Validate(); err != nil {
		return errors.Wrap(err, "")
	}
	for q := range d.NumQubits {
		p, err := d.Qubit(q)
		if err != nil {
			return errors.Wrap(err, "")
		}
		if p.T1 <= 0 || p.T2 <= 0 || p.T2 > 2*p.T1 {
			return errors.Errorf("%#v", p)
		}
		for _, prob := range []float64{p.ProbMeas0Prep1, p.ProbMeas1Prep0, p.GateError} {
			if prob < 0 || prob >= 0.5 {
				return errors.Errorf("%#v", p)
			}
		}
		if _, err := d.Calibrations.Qubit(q); err != nil {
			return errors.Wrap(err, "")
		}
	}
	for _, pp := range d.Pairs {
		if len(pp.Qubits) != 2 {
			return errors.Errorf("%#v", pp)
		}
		a, b := pp.Qubits[0], pp.Qubits[1]
		if a < 0 || b < 0 || a >= d.NumQubits || b >= d.NumQubits || a == b {
			return errors.Errorf("%#v", pp)
		}
		if pp.GateError < 0 || pp.GateError >= 0.5 {
			return errors.Errorf("%#v", pp)
		}
		if _, err := d.Calibrations.CXDuration(a, b); err != nil {
			return errors.Wrap(err, "")
		}
	}
	return nil
}

// Qubit returns the properties of qubit q.
func (d *Device) Qubit(q int) (QubitProperties, error) {
	for _, p := range d.Qubits {
		if p.Qubit == q {
			return p, nil
		}
	}
	return QubitProperties{}, errors.Errorf("no properties for qubit %d", q)
}

// Pair returns the properties of the coupled pair a, b.
func (d *Device) Pair(a, b int) (PairProperties, error) {
	for _, p := range d.Pairs {
		if (p.Qubits[0] == a && p.Qubits[1] == b) || (p.Qubits[0] == b && p.Qubits[1] == a) {
			return p, nil
		}
	}
	return PairProperties{}, errors.Errorf("qubits %d %d not coupled", a, b)
}

// CouplingMap returns the coupled pairs.
func (d *Device) CouplingMap() [][2]int {
	m := make([][2]int, 0, len(d.Pairs))
	for _, p := range d.Pairs {
		m = append(m, [2]int{p.Qubits[0], p.Qubits[1]})
	}
	return m
}

func (d *Device) String() string {
	return fmt.Sprintf("%s(%d qubits)", d.Name, d.NumQubits)
}

// FakeLinear returns a device of n qubits coupled in a chain, with properties typical of superconducting processors.
func FakeLinear(n int) *Device {
	d := &Device{Name: fmt.Sprintf("fake_linear_%d", n), NumQubits: n, Calibrations: pulse.FakeLinear(n)}
	for q := range n {
		d.Qubits = append(d.Qubits, QubitProperties{
			Qubit:          q,
			T1:             (110 + 7*float64(q)) * 1e-6,
			T2:             (95 - 5*float64(q)) * 1e-6,
			ProbMeas1Prep0: 0.012 + 0.002*float64(q),
			ProbMeas0Prep1: 0.025 + 0.003*float64(q),
			GateError:      2.5e-4,
		})
	}
	for q := 0; q+1 < n; q++ {
		d.Pairs = append(d.Pairs, PairProperties{Qubits: []int{q, q + 1}, GateError: 8e-3 + 1e-3*float64(q)})
	}
	return d
}
