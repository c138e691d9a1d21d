package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fumin/vqe/analog"
	"github.com/fumin/vqe/backend"
)

var (
	hybridQubits   int
	hybridJ        float64
	hybridField    float64
	hybridTime     float64
	hybridAllToAll bool
	hybridBackend  string
)

var hybridCmd = &cobra.Command{
	Use:   "hybrid",
	Short: "Run an analog Ising evolution inside a digital circuit",
	Long:  `Builds a ZZ Hamiltonian from tensor products, injects exp(-iHt) between Hadamard layers and runs it on a configured backend.`,
	RunE:  runHybrid,
}

func init() {
	hybridCmd.Flags().IntVar(&hybridQubits, "qubits", 3, "number of qubits")
	hybridCmd.Flags().Float64Var(&hybridJ, "j", 1, "ZZ coupling")
	hybridCmd.Flags().Float64Var(&hybridField, "field", 0, "transverse field")
	hybridCmd.Flags().Float64Var(&hybridTime, "time", 0.5, "evolution time")
	hybridCmd.Flags().BoolVar(&hybridAllToAll, "all-to-all", false, "couple every pair instead of a chain")
	hybridCmd.Flags().StringVar(&hybridBackend, "backend", "", "backend name, the first configured backend when empty")
	rootCmd.AddCommand(hybridCmd)
}

func runHybrid(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "")
	}
	device, err := cfg.LoadDevice(hybridQubits)
	if err != nil {
		return errors.Wrap(err, "")
	}
	backends, err := cfg.NewBackends(device)
	if err != nil {
		return errors.Wrap(err, "")
	}
	b, err := pick(backends, hybridBackend)
	if err != nil {
		return errors.Wrap(err, "")
	}

	m := analog.Ising{NumQubits: hybridQubits, J: hybridJ, Field: hybridField, AllToAll: hybridAllToAll}
	res, err := analog.Run(b, m, hybridTime)
	if err != nil {
		return errors.Wrap(err, "")
	}

	fmt.Printf("%s on %s\n%s\n", m.Op(), b, res.Circuit.Draw())
	for i, p := range res.Probabilities {
		fmt.Printf("%s %.6f\n", backend.Bitstring(i, m.NumQubits), p)
	}
	if res.Counts != nil {
		fmt.Printf("counts %s\n", res.Counts.Format(m.NumQubits))
	}
	fmt.Printf("magnetization %f binder %f\n", res.Statistics.Magnetization, res.Statistics.BinderCumulant)
	return nil
}
