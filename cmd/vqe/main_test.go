package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/fumin/vqe/backend"
	"github.com/fumin/vqe/config"
	"github.com/fumin/vqe/mat"
	"github.com/fumin/vqe/store"
	"github.com/fumin/vqe/vqe"
)

func TestScanCSV(t *testing.T) {
	t.Parallel()
	samples := []store.Sample{
		{Distance: 0.5, Exact: -1.0551597944706257, VQE: -1.05},
		{Distance: 0.6, Exact: -1.1162860068695766, VQE: -1.1162},
	}
	fpath := filepath.Join(t.TempDir(), fnameScan)
	if err := writeScan(fpath, samples); err != nil {
		t.Fatalf("%+v", err)
	}
	got, err := readScan(fpath)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if len(got) != len(samples) {
		t.Fatalf("%v, expected %v", got, samples)
	}
	for i := range got {
		if got[i] != samples[i] {
			t.Fatalf("%v, expected %v", got, samples)
		}
	}
}

func TestIterationsCSV(t *testing.T) {
	t.Parallel()
	its := []store.Iteration{
		{Count: 1, Mean: -0.5, Std: 0.25, Params: []float64{1, 2}},
		{Count: 2, Mean: -0.75, Params: []float64{1.5, -2}},
	}
	fpath := filepath.Join(t.TempDir(), fnameIterations)
	if err := writeIterations(fpath, its); err != nil {
		t.Fatalf("%+v", err)
	}
	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	expected := "count,mean,std,p0,p1\n1,-0.5,0.25,1,2\n2,-0.75,0,1.5,-2\n"
	if string(b) != expected {
		t.Fatalf("%q, expected %q", b, expected)
	}
}

func TestPick(t *testing.T) {
	t.Parallel()
	backends := []*backend.Backend{{Name: "a"}, {Name: "b"}}
	if b, err := pick(backends, ""); err != nil || b.Name != "a" {
		t.Fatalf("%v %+v", b, err)
	}
	if b, err := pick(backends, "b"); err != nil || b.Name != "b" {
		t.Fatalf("%v %+v", b, err)
	}
	if _, err := pick(backends, "c"); err == nil || !strings.Contains(err.Error(), "c") {
		t.Fatalf("%+v", err)
	}
}

func TestExact(t *testing.T) {
	outDir := t.TempDir()
	cfg := useConfig(t, fmt.Sprintf("output:\n  dir: %s\n", outDir))
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	for range 2 {
		if err := runExact(cmd, nil); err != nil {
			t.Fatalf("%+v", err)
		}
	}

	dir := exactDir(cfg)
	if _, err := os.Stat(filepath.Join(dir, fnameDone)); err != nil {
		t.Fatalf("%+v", err)
	}
	h, err := mat.Load(filepath.Join(dir, fnameHamiltonian))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	op, _, err := vqe.Hamiltonian(cfg.Molecule.Molecule())
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !h.Equal(op.Matrix()) {
		t.Fatalf("%v, expected %v", h, op.Matrix())
	}
}

func TestScanDir(t *testing.T) {
	t.Parallel()
	parse := func(y string) config.Config {
		c, err := config.Parse([]byte(y))
		if err != nil {
			t.Fatalf("%+v", err)
		}
		return c
	}
	base, err := scanDir(parse("{}"), "naive", "statevector")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if same, err := scanDir(parse("{}"), "naive", "statevector"); err != nil || same != base {
		t.Fatalf("%s %+v, expected %s", same, err, base)
	}

	tests := []struct {
		yaml    string
		kind    string
		backend string
	}{
		{yaml: "scan:\n  total: 1.2\n", kind: "naive", backend: "statevector"},
		{yaml: "{}", kind: "aware", backend: "statevector"},
		{yaml: "ansatz:\n  depth: 2\n", kind: "naive", backend: "statevector"},
		{yaml: "optimizer:\n  seed: 7\n", kind: "naive", backend: "statevector"},
		{yaml: "molecule:\n  atoms: [H, He]\n  charge: 1\n", kind: "naive", backend: "statevector"},
		{yaml: "backends:\n  - name: statevector\n    method: shots\n", kind: "naive", backend: "statevector"},
		{yaml: "backends:\n  - name: statevector\n    method: shots\n    shots: 100\n", kind: "naive", backend: "statevector"},
	}
	seen := map[string]int{base: -1}
	for i, test := range tests {
		dir, err := scanDir(parse(test.yaml), test.kind, test.backend)
		if err != nil {
			t.Fatalf("%d %+v", i, err)
		}
		if j, ok := seen[dir]; ok {
			t.Fatalf("%d %q shares %s with %d", i, test.yaml, dir, j)
		}
		seen[dir] = i
	}

	if _, err := scanDir(parse("{}"), "naive", "noisy"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestScanKeyedByConfig(t *testing.T) {
	outDir := t.TempDir()
	yamlFor := func(total float64) string {
		return fmt.Sprintf(`ansatz:
  kinds: [naive]
optimizer:
  name: nelder-mead
  maxIterations: 5
scan:
  total: %g
output:
  dir: %s
`, total, outDir)
	}
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	tests := []struct {
		total      float64
		numSamples int
	}{
		{total: 0.7, numSamples: 3},
		{total: 1.2, numSamples: 8},
		// Rerunning the first config reads its own finished scan.
		{total: 0.7, numSamples: 3},
	}
	dirs := make([]string, len(tests))
	for i, test := range tests {
		cfg := useConfig(t, yamlFor(test.total))
		if err := runScan(cmd, nil); err != nil {
			t.Fatalf("%d %+v", i, err)
		}
		dir, err := scanDir(cfg, "naive", cfg.Backends[0].Name)
		if err != nil {
			t.Fatalf("%d %+v", i, err)
		}
		dirs[i] = dir
		samples, err := readScan(filepath.Join(dir, fnameScan))
		if err != nil {
			t.Fatalf("%d %+v", i, err)
		}
		if len(samples) != test.numSamples {
			t.Fatalf("%d %v, expected %d samples", i, samples, test.numSamples)
		}
		if last := samples[len(samples)-1].Distance; math.Abs(last-test.total) > 1e-6 {
			t.Fatalf("%d %f, expected %f", i, last, test.total)
		}
	}
	if dirs[0] == dirs[1] {
		t.Fatalf("%s shared by totals %f and %f", dirs[0], tests[0].total, tests[1].total)
	}
	if dirs[0] != dirs[2] {
		t.Fatalf("%s, expected %s", dirs[2], dirs[0])
	}
}

// useConfig points the config flag at an experiment file holding y for the duration of t.
func useConfig(t *testing.T, y string) config.Config {
	fpath := filepath.Join(t.TempDir(), "experiment.yaml")
	if err := os.WriteFile(fpath, []byte(y), 0644); err != nil {
		t.Fatalf("%+v", err)
	}
	cfg, err := config.Load(fpath)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	prev := configPath
	configPath = fpath
	t.Cleanup(func() { configPath = prev })
	return cfg
}

func TestMain(m *testing.M) {
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	os.Exit(m.Run())
}
