package chem

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotConverged = errors.New("not converged")
)

// ElectronicStructure is the result of a Hartree-Fock calculation expressed in the molecular orbital basis.
type ElectronicStructure struct {
	NumSpatial int
	NumAlpha   int
	NumBeta    int
	// H1 is the core Hamiltonian in the molecular orbital basis.
	H1 *mat.Dense
	// ERI are the electron repulsion integrals in the molecular orbital basis.
	ERI              *ERI
	NuclearRepulsion float64
	// HFEnergy is the total Hartree-Fock energy including nuclear repulsion.
	HFEnergy        float64
	OrbitalEnergies []float64
	Iterations      int
}

// RHFOptions are options for the restricted Hartree-Fock calculation.
type RHFOptions struct {
	maxIterations int
	tol           float64
}

// NewRHFOptions returns the default options.
func NewRHFOptions() RHFOptions {
	opt := RHFOptions{}
	opt.maxIterations = 128
	opt.tol = 1e-10
	return opt
}

// MaxIterations sets the maximum number of SCF iterations.
func (opt RHFOptions) MaxIterations(i int) RHFOptions {
	opt.maxIterations = i
	return opt
}

// Tol sets the energy convergence threshold in hartree.
func (opt RHFOptions) Tol(tol float64) RHFOptions {
	opt.tol = tol
	return opt
}

// RHF runs a closed shell restricted Hartree-Fock calculation.
func RHF(m Molecule, options ...RHFOptions) (*ElectronicStructure, error) {
	opt := NewRHFOptions()
	if len(options) > 0 {
		opt = options[0]
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	nelec := m.NumElectrons()
	if m.Multiplicity != 1 {
		return nil, errors.Errorf("open shell %#v", m)
	}
	nocc := nelec / 2

	ints := ComputeIntegrals(m)
	n := ints.Overlap.SymmetricDim()
	if nocc > n {
		return nil, errors.Errorf("%d occupied orbitals %d basis functions", nocc, n)
	}
	x, err := inverseSqrt(ints.Overlap)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	hcore := ints.Core()

	// Core Hamiltonian guess.
	c, eps, err := diagonalize(hcore, x)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	d := density(c, nocc)
	var energy float64
	converged := false
	var iter int
	for iter = range opt.maxIterations {
		f := fock(hcore, ints.ERI, d)
		e := electronicEnergy(hcore, f, d)
		c, eps, err = diagonalize(f, x)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		dNew := density(c, nocc)
		if iter > 0 && math.Abs(e-energy) < opt.tol && maxDiff(d, dNew) < math.Sqrt(opt.tol) {
			energy = e
			d = dNew
			converged = true
			break
		}
		energy = e
		d = dNew
	}
	if !converged {
		return nil, errors.Wrap(ErrNotConverged, "")
	}

	h1 := mat.NewDense(n, n, nil)
	h1.Product(c.T(), hcore, c)
	es := &ElectronicStructure{
		NumSpatial:       n,
		NumAlpha:         nocc,
		NumBeta:          nocc,
		H1:               h1,
		ERI:              ints.ERI.Transform(c),
		NuclearRepulsion: m.NuclearRepulsion(),
		OrbitalEnergies:  eps,
		Iterations:       iter + 1,
	}
	es.HFEnergy = energy + es.NuclearRepulsion
	return es, nil
}

// inverseSqrt returns S^{-1/2}.
func inverseSqrt(s *mat.SymDense) (*mat.Dense, error) {
	var eig mat.EigenSym
	if ok := eig.Factorize(s, true); !ok {
		return nil, errors.Errorf("eigen factorization failed")
	}
	vals := eig.Values(nil)
	var u mat.Dense
	eig.VectorsTo(&u)
	n := len(vals)
	diag := mat.NewDiagDense(n, nil)
	for i, v := range vals {
		if v <= 1e-10 {
			return nil, errors.Errorf("linearly dependent basis %v", vals)
		}
		diag.SetDiag(i, 1/math.Sqrt(v))
	}
	x := mat.NewDense(n, n, nil)
	x.Product(&u, diag, u.T())
	return x, nil
}

// diagonalize solves F C = S C e via the orthogonalizing transform x.
func diagonalize(f mat.Symmetric, x *mat.Dense) (*mat.Dense, []float64, error) {
	n := f.SymmetricDim()
	var fp mat.Dense
	fp.Product(x.T(), f, x)
	sym := mat.NewSymDense(n, nil)
	for i := range n {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, (fp.At(i, j)+fp.At(j, i))/2)
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, nil, errors.Errorf("eigen factorization failed")
	}
	var cp mat.Dense
	eig.VectorsTo(&cp)
	c := mat.NewDense(n, n, nil)
	c.Mul(x, &cp)
	return c, eig.Values(nil), nil
}

// density returns D_{μν} = Σ_a C_{μa} C_{νa} over occupied orbitals.
func density(c *mat.Dense, nocc int) *mat.SymDense {
	n, _ := c.Dims()
	d := mat.NewSymDense(n, nil)
	for mu := range n {
		for nu := mu; nu < n; nu++ {
			var v float64
			for a := range nocc {
				v += c.At(mu, a) * c.At(nu, a)
			}
			d.SetSym(mu, nu, v)
		}
	}
	return d
}

func fock(hcore *mat.SymDense, eri *ERI, d *mat.SymDense) *mat.SymDense {
	n := hcore.SymmetricDim()
	f := mat.NewSymDense(n, nil)
	for mu := range n {
		for nu := mu; nu < n; nu++ {
			g := hcore.At(mu, nu)
			for la := range n {
				for si := range n {
					g += d.At(la, si) * (2*eri.At(mu, nu, la, si) - eri.At(mu, la, nu, si))
				}
			}
			f.SetSym(mu, nu, g)
		}
	}
	return f
}

func electronicEnergy(hcore, f, d *mat.SymDense) float64 {
	n := hcore.SymmetricDim()
	var e float64
	for mu := range n {
		for nu := range n {
			e += d.At(mu, nu) * (hcore.At(mu, nu) + f.At(mu, nu))
		}
	}
	return e
}

func maxDiff(a, b *mat.SymDense) float64 {
	n := a.SymmetricDim()
	var m float64
	for i := range n {
		for j := range n {
			m = max(m, math.Abs(a.At(i, j)-b.At(i, j)))
		}
	}
	return m
}
