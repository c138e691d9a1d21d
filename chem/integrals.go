package chem

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"
)

// sto3g holds the STO-3G 1s exponents and contraction coefficients.
var sto3g = map[string]struct {
	exponents [3]float64
	coeffs    [3]float64
}{
	"H": {
		exponents: [3]float64{3.42525091, 0.62391373, 0.16885540},
		coeffs:    [3]float64{0.15432897, 0.53532814, 0.44463454},
	},
	"He": {
		exponents: [3]float64{6.36242139, 1.15892300, 0.31364979},
		coeffs:    [3]float64{0.15432897, 0.53532814, 0.44463454},
	},
}

type primitive struct {
	alpha float64
	// coeff includes the primitive normalization.
	coeff float64
}

// BasisFunction is a contracted s type Gaussian centered at an atom, in bohr.
type BasisFunction struct {
	Center     [3]float64
	primitives []primitive
}

// Basis returns the STO-3G basis functions of m, one per atom.
func Basis(m Molecule) []BasisFunction {
	basis := make([]BasisFunction, 0, len(m.Atoms))
	for _, a := range m.Atoms {
		set := sto3g[a.Symbol]
		bf := BasisFunction{Center: a.bohr()}
		for i, alpha := range set.exponents {
			norm := math.Pow(2*alpha/math.Pi, 0.75)
			bf.primitives = append(bf.primitives, primitive{alpha: alpha, coeff: set.coeffs[i] * norm})
		}
		basis = append(basis, bf)
	}
	return basis
}

// boys0 is the zeroth order Boys function.
func boys0(t float64) float64 {
	if t < 1e-12 {
		return 1 - t/3
	}
	return mathext.GammaIncReg(0.5, t) * math.Gamma(0.5) / (2 * math.Sqrt(t))
}

func gaussianProduct(a float64, ra [3]float64, b float64, rb [3]float64) [3]float64 {
	p := a + b
	return [3]float64{(a*ra[0] + b*rb[0]) / p, (a*ra[1] + b*rb[1]) / p, (a*ra[2] + b*rb[2]) / p}
}

func overlapPrim(a float64, ra [3]float64, b float64, rb [3]float64) float64 {
	p := a + b
	return math.Pow(math.Pi/p, 1.5) * math.Exp(-a*b/p*dist2(ra, rb))
}

func kineticPrim(a float64, ra [3]float64, b float64, rb [3]float64) float64 {
	mu := a * b / (a + b)
	r2 := dist2(ra, rb)
	return mu * (3 - 2*mu*r2) * overlapPrim(a, ra, b, rb)
}

func nuclearPrim(a float64, ra [3]float64, b float64, rb [3]float64, z float64, rc [3]float64) float64 {
	p := a + b
	rp := gaussianProduct(a, ra, b, rb)
	return -z * 2 * math.Pi / p * math.Exp(-a*b/p*dist2(ra, rb)) * boys0(p*dist2(rp, rc))
}

func eriPrim(a float64, ra [3]float64, b float64, rb [3]float64, c float64, rc [3]float64, d float64, rd [3]float64) float64 {
	p, q := a+b, c+d
	rp := gaussianProduct(a, ra, b, rb)
	rq := gaussianProduct(c, rc, d, rd)
	pre := 2 * math.Pow(math.Pi, 2.5) / (p * q * math.Sqrt(p+q))
	return pre * math.Exp(-a*b/p*dist2(ra, rb)-c*d/q*dist2(rc, rd)) * boys0(p*q/(p+q)*dist2(rp, rq))
}

// Integrals are the one and two electron integrals over atomic orbitals.
type Integrals struct {
	Overlap *mat.SymDense
	Kinetic *mat.SymDense
	Nuclear *mat.SymDense
	ERI     *ERI
}

// Core returns the core Hamiltonian T + V.
func (ints Integrals) Core() *mat.SymDense {
	n := ints.Kinetic.SymmetricDim()
	h := mat.NewSymDense(n, nil)
	h.AddSym(ints.Kinetic, ints.Nuclear)
	return h
}

// ComputeIntegrals evaluates all integrals of m over its STO-3G basis.
func ComputeIntegrals(m Molecule) Integrals {
	basis := Basis(m)
	n := len(basis)
	ints := Integrals{
		Overlap: mat.NewSymDense(n, nil),
		Kinetic: mat.NewSymDense(n, nil),
		Nuclear: mat.NewSymDense(n, nil),
		ERI:     NewERI(n),
	}
	for i := range n {
		for j := i; j < n; j++ {
			var s, t, v float64
			for _, pa := range basis[i].primitives {
				for _, pb := range basis[j].primitives {
					c := pa.coeff * pb.coeff
					ra, rb := basis[i].Center, basis[j].Center
					s += c * overlapPrim(pa.alpha, ra, pb.alpha, rb)
					t += c * kineticPrim(pa.alpha, ra, pb.alpha, rb)
					for _, atom := range m.Atoms {
						v += c * nuclearPrim(pa.alpha, ra, pb.alpha, rb, float64(atom.Z()), atom.bohr())
					}
				}
			}
			ints.Overlap.SetSym(i, j, s)
			ints.Kinetic.SetSym(i, j, t)
			ints.Nuclear.SetSym(i, j, v)
		}
	}

	for i := range n {
		for j := range i + 1 {
			for k := range n {
				for l := range k + 1 {
					if i*(i+1)/2+j < k*(k+1)/2+l {
						continue
					}
					v := contractedERI(basis[i], basis[j], basis[k], basis[l])
					ints.ERI.setSymmetric(i, j, k, l, v)
				}
			}
		}
	}
	return ints
}

func contractedERI(a, b, c, d BasisFunction) float64 {
	var v float64
	for _, pa := range a.primitives {
		for _, pb := range b.primitives {
			for _, pc := range c.primitives {
				for _, pd := range d.primitives {
					coeff := pa.coeff * pb.coeff * pc.coeff * pd.coeff
					v += coeff * eriPrim(pa.alpha, a.Center, pb.alpha, b.Center, pc.alpha, c.Center, pd.alpha, d.Center)
				}
			}
		}
	}
	return v
}

// ERI holds two electron repulsion integrals (ij|kl) in chemist notation.
type ERI struct {
	n    int
	data []float64
}

// NewERI returns zero integrals over n orbitals.
func NewERI(n int) *ERI {
	return &ERI{n: n, data: make([]float64, n*n*n*n)}
}

func (e *ERI) N() int { return e.n }

func (e *ERI) At(i, j, k, l int) float64 {
	return e.data[((i*e.n+j)*e.n+k)*e.n+l]
}

func (e *ERI) Set(i, j, k, l int, v float64) {
	e.data[((i*e.n+j)*e.n+k)*e.n+l] = v
}

// setSymmetric sets all eight permutationally equivalent elements.
func (e *ERI) setSymmetric(i, j, k, l int, v float64) {
	for _, idx := range [8][4]int{
		{i, j, k, l}, {j, i, k, l}, {i, j, l, k}, {j, i, l, k},
		{k, l, i, j}, {l, k, i, j}, {k, l, j, i}, {l, k, j, i},
	} {
		e.Set(idx[0], idx[1], idx[2], idx[3], v)
	}
}

// Transform returns the integrals in the basis of the columns of c.
func (e *ERI) Transform(c mat.Matrix) *ERI {
	n := e.n
	// Four quarter transformations, each contracting one index.
	cur := e.data
	for range 4 {
		next := make([]float64, len(cur))
		// Contract the first index and rotate it to the last position.
		for p := range n {
			for j := range n {
				for k := range n {
					for l := range n {
						var v float64
						for mu := range n {
							v += c.At(mu, p) * cur[((mu*n+j)*n+k)*n+l]
						}
						next[((j*n+k)*n+l)*n+p] = v
					}
				}
			}
		}
		cur = next
	}
	return &ERI{n: n, data: cur}
}
