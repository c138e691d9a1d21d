package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/fumin/vqe/backend"
)

const experiment = `
molecule:
  distance: 0.8
ansatz:
  kinds: [aware]
  depth: 2
optimizer:
  name: nelder-mead
  maxIterations: 50
backends:
  - method: statevector
  - name: noisy
    method: shots
    noisy: true
    mitigation: false
  - name: mitigated
    method: shots
    shots: 1000
    noisy: true
    mitigation: true
`

func TestParse(t *testing.T) {
	t.Parallel()
	c, err := Parse([]byte(experiment))
	require.NoError(t, err)

	assert.Equal(t, []string{"H", "H"}, c.Molecule.Atoms)
	assert.Equal(t, 0.8, c.Molecule.Distance)
	require.NotNil(t, c.Ansatz.Depth)
	assert.Equal(t, 2, *c.Ansatz.Depth)
	assert.Equal(t, "runs", c.Output.Dir)
	assert.Equal(t, ScanConfig{Total: 2, Start: 0.5, SmallStep: 0.1, LargeStep: 0.1}, c.Scan)
	require.Len(t, c.Backends, 3)
	assert.Equal(t, "statevector", c.Backends[0].Name)
	assert.Equal(t, defaultShots, c.Backends[1].Shots)
	assert.Equal(t, 1000, c.Backends[2].Shots)

	device, err := c.LoadDevice(2)
	require.NoError(t, err)
	backends, err := c.NewBackends(device)
	require.NoError(t, err)
	labels := []backend.NoiseLabel{backend.Plain, backend.Noisy, backend.NoisyMitigated}
	for i, b := range backends {
		assert.Equal(t, labels[i], b.NoiseLabel(), b.Name)
	}

	names, ansatze, err := c.NewAnsatze(2, device)
	require.NoError(t, err)
	assert.Equal(t, []string{"aware"}, names)
	assert.Equal(t, 12, ansatze[0].NumParams)

	opt, err := c.NewOptimizer()
	require.NoError(t, err)
	assert.Equal(t, "nelder-mead", opt.Name())
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	c, err := Parse([]byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, []string{"naive", "aware"}, c.Ansatz.Kinds)
	assert.Equal(t, "spsa", c.Optimizer.Name)
	require.NotNil(t, c.Ansatz.Depth)
	assert.Equal(t, defaultDepth, *c.Ansatz.Depth)
	require.Len(t, c.Backends, 1)
	assert.Equal(t, BackendConfig{Name: "statevector", Method: "statevector"}, c.Backends[0])
}

func TestZeroDepth(t *testing.T) {
	t.Parallel()
	c, err := Parse([]byte("ansatz:\n  kinds: [naive]\n  depth: 0\n"))
	require.NoError(t, err)
	require.NotNil(t, c.Ansatz.Depth)
	assert.Equal(t, 0, *c.Ansatz.Depth)

	const numQubits = 2
	device, err := c.LoadDevice(numQubits)
	require.NoError(t, err)
	_, ansatze, err := c.NewAnsatze(numQubits, device)
	require.NoError(t, err)
	assert.Equal(t, 2*numQubits, ansatze[0].NumParams)
}

func TestInvalid(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"mitigation not stated":    "backends:\n  - method: shots\n    noisy: true\n",
		"mitigation without noise": "backends:\n  - method: shots\n    mitigation: true\n",
		"unknown field":            "molecule:\n  distanse: 1\n",
		"unknown optimizer":        "optimizer:\n  name: adam\n",
		"unknown ansatz":           "ansatz:\n  kinds: [random]\n",
		"unknown method":           "backends:\n  - method: pulse\n",
		"duplicate backend":        "backends:\n  - name: a\n  - name: a\n",
		"negative step":            "scan:\n  smallStep: -0.1\n",
		"negative depth":           "ansatz:\n  depth: -1\n",
		"triatomic":                "molecule:\n  atoms: [H, H, H]\n",
		"unsupported atom":         "molecule:\n  atoms: [H, Xe]\n",
	}
	for name, y := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(y))
			assert.Error(t, err)
		})
	}
}

func TestLoadDevice(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	b, err := yaml.Marshal(backend.FakeLinear(3))
	require.NoError(t, err)
	fpath := filepath.Join(dir, "device.yaml")
	require.NoError(t, os.WriteFile(fpath, b, 0644))

	c := Config{Device: fpath}
	d, err := c.LoadDevice(2)
	require.NoError(t, err)
	assert.Equal(t, 3, d.NumQubits)

	_, err = c.LoadDevice(4)
	assert.Error(t, err)
}
