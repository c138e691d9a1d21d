package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/fumin/vqe/backend"
	"github.com/fumin/vqe/chem"
	"github.com/fumin/vqe/config"
	"github.com/fumin/vqe/pauli"
	"github.com/fumin/vqe/store"
	"github.com/fumin/vqe/vqe"
)

const (
	fnameDone = "done.txt"
)

var (
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "vqe",
	Short: "Variational quantum eigensolver workbench",
	Long: `vqe finds molecular ground state energies with hardware efficient ansatze
on ideal, noisy and mitigated simulators, and compares them with exact diagonalization.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "experiment YAML file, defaults are used when empty")
}

// experiment is a loaded configuration with the Hamiltonian of its molecule.
type experiment struct {
	cfg    config.Config
	op     *pauli.Op
	es     *chem.ElectronicStructure
	device *backend.Device
}

func loadConfig() (config.Config, error) {
	if configPath == "" {
		c, err := config.Parse([]byte("{}"))
		if err != nil {
			return config.Config{}, errors.Wrap(err, "")
		}
		return c, nil
	}
	c, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, errors.Wrap(err, "")
	}
	return c, nil
}

func newExperiment() (*experiment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	op, es, err := vqe.Hamiltonian(cfg.Molecule.Molecule())
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	device, err := cfg.LoadDevice(op.NumQubits())
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return &experiment{cfg: cfg, op: op, es: es, device: device}, nil
}

// runDir creates dir if needed and reports whether it holds a finished run.
func runDir(dir string) (bool, error) {
	if _, err := os.Stat(filepath.Join(dir, fnameDone)); err == nil {
		return true, nil
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return false, errors.Wrap(err, "")
	}
	return false, nil
}

// moleculeKey names the atoms and charge of m, such as "HH+0".
func moleculeKey(m config.MoleculeConfig) string {
	return fmt.Sprintf("%s%s%+d", m.Atoms[0], m.Atoms[1], m.Charge)
}

// exactDir is the run directory of the exact solution of the configured molecule.
func exactDir(cfg config.Config) string {
	return filepath.Join(cfg.Output.Dir, "exact", fmt.Sprintf("%s_%g", moleculeKey(cfg.Molecule), cfg.Molecule.Distance))
}

// scanDir is the run directory of a scan with the ansatz kind on the named backend.
// Every input that changes the samples is part of the name.
func scanDir(cfg config.Config, kind, backendName string) (string, error) {
	bi := slices.IndexFunc(cfg.Backends, func(bc config.BackendConfig) bool { return bc.Name == backendName })
	if bi < 0 {
		return "", errors.Errorf("no backend %q", backendName)
	}
	solver := struct {
		Kind      string                 `yaml:"kind"`
		Depth     int                    `yaml:"depth"`
		Optimizer config.OptimizerConfig `yaml:"optimizer"`
		Backend   config.BackendConfig   `yaml:"backend"`
		Device    string                 `yaml:"device"`
	}{Kind: kind, Depth: *cfg.Ansatz.Depth, Optimizer: cfg.Optimizer, Backend: cfg.Backends[bi], Device: cfg.Device}
	b, err := yaml.Marshal(solver)
	if err != nil {
		return "", errors.Wrap(err, "")
	}
	sc := cfg.Scan
	steps := fmt.Sprintf("%g_%g_%g_%g", sc.Total, sc.Start, sc.SmallStep, sc.LargeStep)
	id := uuid.NewSHA1(uuid.NameSpaceOID, b).String()[:8]
	name := fmt.Sprintf("%s_%s_%s_%s", kind, cfg.Backends[bi].Name, cfg.Optimizer.Name, id)
	return filepath.Join(cfg.Output.Dir, "scan", moleculeKey(cfg.Molecule), steps, name), nil
}

func markDone(dir string) error {
	if err := os.WriteFile(filepath.Join(dir, fnameDone), nil, 0644); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func (e *experiment) openStore() (*store.Store, error) {
	if err := os.MkdirAll(e.cfg.Output.Dir, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "")
	}
	s, err := store.Open(filepath.Join(e.cfg.Output.Dir, e.cfg.Output.DB))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return s, nil
}

func (e *experiment) saveRun(ctx context.Context, s *store.Store, label, ansatzName string, b *backend.Backend, optName string, res *vqe.Result, its []store.Iteration) (string, error) {
	run := store.Run{
		Label:         label,
		Ansatz:        ansatzName,
		Backend:       b.String(),
		Optimizer:     optName,
		Eigenvalue:    res.Eigenvalue,
		Evaluations:   res.Evaluations,
		OptimizerTime: res.OptimizerTime,
		Params:        res.OptimalParams,
	}
	id, err := s.SaveRun(ctx, run, its)
	if err != nil {
		return "", errors.Wrap(err, label)
	}
	return id, nil
}

func iterations(rec *vqe.Recorder) []store.Iteration {
	its := make([]store.Iteration, rec.Len())
	for i := range its {
		its[i] = store.Iteration{Count: rec.Counts()[i], Mean: rec.Values()[i], Std: rec.Stds()[i], Params: rec.Params()[i]}
	}
	return its
}

// pick returns the backend named name, or the first backend when name is empty.
func pick(backends []*backend.Backend, name string) (*backend.Backend, error) {
	if name == "" {
		return backends[0], nil
	}
	for _, b := range backends {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, errors.Errorf("no backend %q", name)
}

func printResult(label string, res *vqe.Result, exact float64) {
	fmt.Printf("%s: %.6f (exact %.6f, error %.2e) after %d evaluations in %s\n", label, res.Eigenvalue, exact, res.Eigenvalue-exact, res.Evaluations, res.OptimizerTime)
}
