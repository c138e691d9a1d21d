// Package chem computes the electronic structure of small molecules in the STO-3G basis.
//
// The restricted Hartree-Fock driver produces the molecular orbital integrals from which the second quantized
// electronic Hamiltonian is built.
// See Szabo and Ostlund, Modern Quantum Chemistry, Chapter 3.
package chem

import (
	"math"

	"github.com/pkg/errors"
)

// AngstromToBohr converts lengths in angstrom to atomic units.
const AngstromToBohr = 1.8897261246

var atomicNumbers = map[string]int{
	"H":  1,
	"He": 2,
}

// Atom is a nucleus at a position in angstrom.
type Atom struct {
	Symbol string
	Coords [3]float64
}

// Z returns the nuclear charge.
func (a Atom) Z() int {
	return atomicNumbers[a.Symbol]
}

func (a Atom) bohr() [3]float64 {
	return [3]float64{a.Coords[0] * AngstromToBohr, a.Coords[1] * AngstromToBohr, a.Coords[2] * AngstromToBohr}
}

// Molecule is a set of atoms with a total charge and spin multiplicity.
type Molecule struct {
	Atoms        []Atom
	Charge       int
	Multiplicity int
}

// Diatomic returns a neutral singlet two atom molecule along the z axis with the given bond length in angstrom.
func Diatomic(a, b string, distance float64) Molecule {
	return Molecule{
		Atoms: []Atom{
			{Symbol: a, Coords: [3]float64{0, 0, 0}},
			{Symbol: b, Coords: [3]float64{0, 0, distance}},
		},
		Multiplicity: 1,
	}
}

// H2 returns the hydrogen molecule with the given bond length in angstrom.
func H2(distance float64) Molecule {
	return Diatomic("H", "H", distance)
}

// Validate checks that every atom is supported and the electron count is consistent with the multiplicity.
func (m Molecule) Validate() error {
	if len(m.Atoms) == 0 {
		return errors.Errorf("no atoms")
	}
	for i, a := range m.Atoms {
		if _, ok := atomicNumbers[a.Symbol]; !ok {
			return errors.Errorf("unsupported atom %d %#v", i, a)
		}
		for j := range i {
			if dist2(a.Coords, m.Atoms[j].Coords) < 1e-12 {
				return errors.Errorf("atoms %d and %d coincide", j, i)
			}
		}
	}
	n := m.NumElectrons()
	if n <= 0 {
		return errors.Errorf("%d electrons", n)
	}
	if m.Multiplicity < 1 || (n-(m.Multiplicity-1))%2 != 0 || m.Multiplicity-1 > n {
		return errors.Errorf("%d electrons with multiplicity %d", n, m.Multiplicity)
	}
	return nil
}

// NumElectrons returns the number of electrons.
func (m Molecule) NumElectrons() int {
	var n int
	for _, a := range m.Atoms {
		n += a.Z()
	}
	return n - m.Charge
}

// NuclearRepulsion returns the nuclear repulsion energy in hartree.
func (m Molecule) NuclearRepulsion() float64 {
	var e float64
	for i, a := range m.Atoms {
		for _, b := range m.Atoms[:i] {
			e += float64(a.Z()*b.Z()) / math.Sqrt(dist2(a.bohr(), b.bohr()))
		}
	}
	return e
}

func dist2(a, b [3]float64) float64 {
	var d float64
	for i := range a {
		d += (a[i] - b[i]) * (a[i] - b[i])
	}
	return d
}
