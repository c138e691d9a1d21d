package main

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fumin/vqe/mat"
	"github.com/fumin/vqe/vqe"
)

const (
	fnameHamiltonian = "hamiltonian.csv"
)

var exactCmd = &cobra.Command{
	Use:   "exact",
	Short: "Diagonalize the qubit Hamiltonian",
	Long: `Prints the reduced qubit Hamiltonian of the configured molecule with its Hartree-Fock, exact and Arnoldi energies.
The Hamiltonian matrix is saved under the output directory and diagonalized from there on later runs.`,
	RunE: runExact,
}

func init() {
	rootCmd.AddCommand(exactCmd)
}

func runExact(cmd *cobra.Command, args []string) error {
	e, err := newExperiment()
	if err != nil {
		return errors.Wrap(err, "")
	}
	dir := exactDir(e.cfg)
	done, err := runDir(dir)
	if err != nil {
		return errors.Wrap(err, "")
	}
	fpath := filepath.Join(dir, fnameHamiltonian)

	var h *mat.COO
	if done {
		h, err = mat.Load(fpath)
		if err != nil {
			return errors.Wrap(err, "")
		}
		if dim := 1 << e.op.NumQubits(); h.Rows() != dim {
			return errors.Errorf("%s is %dx%d, expected %d qubits", fpath, h.Rows(), h.Cols(), e.op.NumQubits())
		}
	} else {
		h = e.op.Matrix()
		if err := h.Save(fpath); err != nil {
			return errors.Wrap(err, "")
		}
	}
	vvs, err := h.Eigen()
	if err != nil {
		return errors.Wrap(err, "")
	}
	arnoldi, err := vqe.Arnoldi(e.op)
	if err != nil {
		return errors.Wrap(err, "")
	}

	fmt.Printf("%d qubits, %d terms\n%s\n", e.op.NumQubits(), e.op.Len(), e.op)
	fmt.Printf("hartree-fock %.6f\nexact %.6f\narnoldi %.6f\nnuclear repulsion %.6f\n", e.es.HFEnergy, vvs[0].Val, arnoldi, e.es.NuclearRepulsion)
	fmt.Printf("matrix %s\n", fpath)

	if !done {
		if err := markDone(dir); err != nil {
			return errors.Wrap(err, "")
		}
	}
	return nil
}
