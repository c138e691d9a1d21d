// Package config loads YAML experiment files.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/fumin/vqe/ansatz"
	"github.com/fumin/vqe/backend"
	"github.com/fumin/vqe/chem"
	"github.com/fumin/vqe/circuit"
	"github.com/fumin/vqe/optimizer"
	"github.com/fumin/vqe/vqe"
)

const (
	defaultDistance      = 0.735
	defaultDepth         = 1
	defaultOptimizer     = "spsa"
	defaultMaxIterations = 100
	defaultShots         = 4096
	defaultOutputDir     = "runs"
	defaultDBName        = "vqe.db"
)

type MoleculeConfig struct {
	Atoms []string `yaml:"atoms"`
	// Distance is the bond length in Angstrom.
	Distance float64 `yaml:"distance"`
	Charge   int     `yaml:"charge"`
}

func (c MoleculeConfig) WithDefaults() MoleculeConfig {
	cpy := c
	if len(cpy.Atoms) == 0 {
		cpy.Atoms = []string{"H", "H"}
	}
	if cpy.Distance == 0 {
		cpy.Distance = defaultDistance
	}
	return cpy
}

type AnsatzConfig struct {
	// Kinds are "naive" or "aware".
	Kinds []string `yaml:"kinds"`
	// Depth is the number of entangling layers, zero for a single rotation layer.
	Depth *int `yaml:"depth"`
}

func (c AnsatzConfig) WithDefaults() AnsatzConfig {
	cpy := c
	if len(cpy.Kinds) == 0 {
		cpy.Kinds = []string{"naive", "aware"}
	}
	if cpy.Depth == nil {
		d := defaultDepth
		cpy.Depth = &d
	}
	return cpy
}

type OptimizerConfig struct {
	Name          string `yaml:"name"`
	MaxIterations int    `yaml:"maxIterations"`
	Seed          uint64 `yaml:"seed"`
}

func (c OptimizerConfig) WithDefaults() OptimizerConfig {
	cpy := c
	if cpy.Name == "" {
		cpy.Name = defaultOptimizer
	}
	if cpy.MaxIterations == 0 {
		cpy.MaxIterations = defaultMaxIterations
	}
	return cpy
}

type BackendConfig struct {
	Name string `yaml:"name"`
	// Method is "statevector" or "shots".
	Method string `yaml:"method"`
	Shots  int    `yaml:"shots"`
	Seed   uint64 `yaml:"seed"`
	Noisy  bool   `yaml:"noisy"`
	// Mitigation must be stated for noisy backends.
	Mitigation *bool `yaml:"mitigation"`
}

func (c BackendConfig) WithDefaults() BackendConfig {
	cpy := c
	if cpy.Method == "" {
		cpy.Method = backend.Exact.String()
	}
	if cpy.Shots == 0 && cpy.Method == backend.Sampling.String() {
		cpy.Shots = defaultShots
	}
	if cpy.Name == "" {
		cpy.Name = cpy.Method
		if cpy.Noisy {
			cpy.Name += "_noisy"
		}
	}
	return cpy
}

type ScanConfig struct {
	Total     float64 `yaml:"total"`
	Start     float64 `yaml:"start"`
	SmallStep float64 `yaml:"smallStep"`
	LargeStep float64 `yaml:"largeStep"`
}

func (c ScanConfig) WithDefaults() ScanConfig {
	cpy := c
	if cpy.Total == 0 {
		cpy.Total = 2
	}
	if cpy.Start == 0 {
		cpy.Start = 0.5
	}
	if cpy.SmallStep == 0 {
		cpy.SmallStep = 0.1
	}
	if cpy.LargeStep == 0 {
		cpy.LargeStep = 0.1
	}
	return cpy
}

type OutputConfig struct {
	Dir          string `yaml:"dir"`
	DB           string `yaml:"db"`
	PrintCircuit bool   `yaml:"printCircuit"`
}

func (c OutputConfig) WithDefaults() OutputConfig {
	cpy := c
	if cpy.Dir == "" {
		cpy.Dir = defaultOutputDir
	}
	if cpy.DB == "" {
		cpy.DB = defaultDBName
	}
	return cpy
}

// Config is an experiment.
type Config struct {
	Molecule  MoleculeConfig  `yaml:"molecule"`
	Ansatz    AnsatzConfig    `yaml:"ansatz"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	// Device is a YAML device file, defaulting to a fake linear device as wide as the Hamiltonian.
	Device   string          `yaml:"device"`
	Backends []BackendConfig `yaml:"backends"`
	Scan     ScanConfig      `yaml:"scan"`
	Output   OutputConfig    `yaml:"output"`
}

func (c Config) WithDefaults() Config {
	cpy := c
	cpy.Molecule = c.Molecule.WithDefaults()
	cpy.Ansatz = c.Ansatz.WithDefaults()
	cpy.Optimizer = c.Optimizer.WithDefaults()
	backends := c.Backends
	if len(backends) == 0 {
		backends = []BackendConfig{{}}
	}
	cpy.Backends = make([]BackendConfig, len(backends))
	for i, b := range backends {
		cpy.Backends[i] = b.WithDefaults()
	}
	cpy.Scan = c.Scan.WithDefaults()
	cpy.Output = c.Output.WithDefaults()
	return cpy
}

// Parse parses YAML, fills in defaults and validates the result.
func Parse(b []byte) (Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(b, &c); err != nil {
		return Config{}, errors.Wrap(err, "")
	}
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "")
	}
	return c, nil
}

// Load reads the experiment at fpath.
func Load(fpath string) (Config, error) {
	b, err := os.ReadFile(fpath)
	if err != nil {
		return Config{}, errors.Wrap(err, "")
	}
	c, err := Parse(b)
	if err != nil {
		return Config{}, errors.Wrap(err, fpath)
	}
	return c, nil
}

// Validate checks a config with defaults applied.
func (c Config) Validate() error {
	if len(c.Molecule.Atoms) != 2 {
		return errors.Errorf("diatomic molecules only %#v", c.Molecule.Atoms)
	}
	if err := c.Molecule.Molecule().Validate(); err != nil {
		return errors.Wrap(err, "")
	}
	for _, k := range c.Ansatz.Kinds {
		if k != "naive" && k != "aware" {
			return errors.Errorf("ansatz %q", k)
		}
	}
	if c.Ansatz.Depth == nil || *c.Ansatz.Depth < 0 {
		return errors.Errorf("depth %v", c.Ansatz.Depth)
	}
	if _, err := optimizer.New(c.Optimizer.Name, c.Optimizer.MaxIterations, c.Optimizer.Seed); err != nil {
		return errors.Wrap(err, "")
	}
	names := make(map[string]bool)
	for i, b := range c.Backends {
		if names[b.Name] {
			return errors.Errorf("duplicate backend %q", b.Name)
		}
		names[b.Name] = true
		if _, err := backend.ParseMethod(b.Method); err != nil {
			return errors.Wrap(err, b.Name)
		}
		if b.Noisy && b.Mitigation == nil {
			return errors.Errorf("backend %d %q is noisy but does not state mitigation", i, b.Name)
		}
		if !b.Noisy && b.Mitigation != nil && *b.Mitigation {
			return errors.Errorf("backend %d %q mitigates without noise", i, b.Name)
		}
	}
	if _, err := c.ScanConfig().Distances(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Molecule returns the configured molecule.
func (c MoleculeConfig) Molecule() chem.Molecule {
	m := chem.Diatomic(c.Atoms[0], c.Atoms[1], c.Distance)
	m.Charge = c.Charge
	return m
}

// ScanConfig returns the bond length scan of the configured atoms.
func (c Config) ScanConfig() vqe.ScanConfig {
	return vqe.ScanConfig{
		Total:     c.Scan.Total,
		Start:     c.Scan.Start,
		SmallStep: c.Scan.SmallStep,
		LargeStep: c.Scan.LargeStep,
		Atoms:     [2]string{c.Molecule.Atoms[0], c.Molecule.Atoms[1]},
		Charge:    c.Molecule.Charge,
	}
}

// LoadDevice returns the configured device, or a fake linear device of numQubits.
func (c Config) LoadDevice(numQubits int) (*backend.Device, error) {
	if c.Device == "" {
		return backend.FakeLinear(numQubits), nil
	}
	d, err := backend.LoadDevice(c.Device)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if d.NumQubits < numQubits {
		return nil, errors.Errorf("%s for %d qubits", d, numQubits)
	}
	return d, nil
}

// NewBackends builds the configured backends on device.
func (c Config) NewBackends(device *backend.Device) ([]*backend.Backend, error) {
	backends := make([]*backend.Backend, 0, len(c.Backends))
	for _, bc := range c.Backends {
		method, err := backend.ParseMethod(bc.Method)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		b := &backend.Backend{Name: bc.Name, Method: method, Shots: bc.Shots, Seed: bc.Seed}
		if bc.Noisy {
			b.Noise = backend.NewNoiseModel(device)
			b.Mitigation = *bc.Mitigation
		}
		if err := b.Validate(); err != nil {
			return nil, errors.Wrap(err, bc.Name)
		}
		backends = append(backends, b)
	}
	return backends, nil
}

// NewAnsatze builds the configured ansatz kinds.
func (c Config) NewAnsatze(numQubits int, device *backend.Device) ([]string, []*circuit.Circuit, error) {
	names := make([]string, 0, len(c.Ansatz.Kinds))
	circuits := make([]*circuit.Circuit, 0, len(c.Ansatz.Kinds))
	for _, k := range c.Ansatz.Kinds {
		var a *circuit.Circuit
		var err error
		switch k {
		case "naive":
			a, err = ansatz.Naive(numQubits, *c.Ansatz.Depth)
		case "aware":
			a, err = ansatz.Aware(numQubits, *c.Ansatz.Depth, device.Calibrations)
		default:
			err = errors.Errorf("ansatz %q", k)
		}
		if err != nil {
			return nil, nil, errors.Wrap(err, "")
		}
		names = append(names, k)
		circuits = append(circuits, a)
	}
	return names, circuits, nil
}

// NewOptimizer builds the configured optimizer.
func (c Config) NewOptimizer() (optimizer.Optimizer, error) {
	opt, err := optimizer.New(c.Optimizer.Name, c.Optimizer.MaxIterations, c.Optimizer.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return opt, nil
}
