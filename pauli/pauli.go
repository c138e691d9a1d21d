// Package pauli implements Pauli strings and weighted sums of them, which represent qubit Hamiltonians.
//
// A label such as "XIZ" puts X on qubit 0, I on qubit 1 and Z on qubit 2.
// In matrix form qubit 0 is the least significant bit of the basis index, so the matrix of "XIZ" is Z ⊗ I ⊗ X.
package pauli

import (
	"cmp"
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/fumin/vqe/mat"
)

// MaxQubits is the largest supported number of qubits.
const MaxQubits = 64

// String is a tensor product of single qubit Pauli operators.
// Qubit q carries X if bit q of x is set, Z if bit q of z is set, and Y if both are set.
type String struct {
	n int
	x uint64
	z uint64
}

// Identity returns the identity on n qubits.
func Identity(n int) String {
	return String{n: n}
}

// Parse parses a label of I, X, Y, Z characters.
func Parse(label string) (String, error) {
	if len(label) == 0 || len(label) > MaxQubits {
		return String{}, errors.Errorf("%q", label)
	}
	s := String{n: len(label)}
	for q, c := range label {
		switch c {
		case 'I':
		case 'X':
			s.x |= 1 << q
		case 'Y':
			s.x |= 1 << q
			s.z |= 1 << q
		case 'Z':
			s.z |= 1 << q
		default:
			return String{}, errors.Errorf("%q %d", label, q)
		}
	}
	return s, nil
}

// MustParse is like Parse but panics on error.
func MustParse(label string) String {
	s, err := Parse(label)
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return s
}

// Single returns the string with op on qubit q and identity elsewhere.
func Single(n, q int, op byte) String {
	s := String{n: n}
	bit := uint64(1) << q
	switch op {
	case 'X':
		s.x = bit
	case 'Y':
		s.x, s.z = bit, bit
	case 'Z':
		s.z = bit
	}
	return s
}

func (s String) NumQubits() int { return s.n }

// XMask returns the qubits on which s acts with X or Y.
func (s String) XMask() uint64 { return s.x }

// ZMask returns the qubits on which s acts with Z or Y.
func (s String) ZMask() uint64 { return s.z }

// Op returns the single qubit operator on qubit q as one of 'I', 'X', 'Y', 'Z'.
func (s String) Op(q int) byte {
	xb, zb := s.x>>q&1, s.z>>q&1
	switch {
	case xb == 1 && zb == 1:
		return 'Y'
	case xb == 1:
		return 'X'
	case zb == 1:
		return 'Z'
	default:
		return 'I'
	}
}

// Support returns the qubits on which s is not the identity.
func (s String) Support() uint64 { return s.x | s.z }

func (s String) IsIdentity() bool { return s.x == 0 && s.z == 0 }

func (s String) Label() string {
	var b strings.Builder
	for q := range s.n {
		b.WriteByte(s.Op(q))
	}
	return b.String()
}

func (s String) String() string { return s.Label() }

// Mul returns the product s*t = phase * p.
func (s String) Mul(t String) (complex128, String) {
	if s.n != t.n {
		panic(fmt.Sprintf("%d %d", s.n, t.n))
	}
	p := String{n: s.n, x: s.x ^ t.x, z: s.z ^ t.z}
	// With P = i^{|x&z|} X^x Z^z, moving Z^z1 past X^x2 contributes (-1)^{|z1&x2|}.
	e := bits.OnesCount64(s.x&s.z) + bits.OnesCount64(t.x&t.z) - bits.OnesCount64(p.x&p.z) + 2*bits.OnesCount64(s.z&t.x)
	return iPow(e), p
}

// Commutes reports whether s and t commute.
func (s String) Commutes(t String) bool {
	return (bits.OnesCount64(s.x&t.z)+bits.OnesCount64(s.z&t.x))%2 == 0
}

// QubitWiseCommutes reports whether s and t commute on every qubit individually.
func (s String) QubitWiseCommutes(t String) bool {
	both := s.Support() & t.Support()
	return (s.x^t.x)&both == 0 && (s.z^t.z)&both == 0
}

// Apply returns the amplitude transformation of s on basis state b: s|b> = phase |b'>.
func (s String) Apply(b uint64) (complex128, uint64) {
	e := bits.OnesCount64(s.x&s.z) + 2*bits.OnesCount64(s.z&b)
	return iPow(e), b ^ s.x
}

// Matrix returns the 2^n by 2^n matrix of s.
func (s String) Matrix() *mat.COO {
	m := mat.M([][]complex128{{1}})
	for q := s.n - 1; q >= 0; q-- {
		m.Kron(single(s.Op(q)))
	}
	return m
}

// remove deletes qubit q, shifting higher qubits down.
func (s String) remove(q int) String {
	low := uint64(1)<<q - 1
	return String{
		n: s.n - 1,
		x: s.x&low | (s.x>>(q+1))<<q,
		z: s.z&low | (s.z>>(q+1))<<q,
	}
}

func single(op byte) *mat.COO {
	switch op {
	case 'X':
		return mat.M(mat.PauliX)
	case 'Y':
		return mat.M(mat.PauliY)
	case 'Z':
		return mat.M(mat.PauliZ)
	default:
		return mat.M(mat.Identity)
	}
}

func iPow(e int) complex128 {
	switch ((e % 4) + 4) % 4 {
	case 0:
		return 1
	case 1:
		return 1i
	case 2:
		return -1
	default:
		return -1i
	}
}

// Term is a Pauli string with a coefficient.
type Term struct {
	String
	Coeff complex128
}

// T returns a term from a label, panicking on malformed labels.
func T(label string, coeff complex128) Term {
	return Term{String: MustParse(label), Coeff: coeff}
}

// Op is a weighted sum of Pauli strings on a fixed number of qubits.
type Op struct {
	n     int
	terms map[String]complex128
}

// NewOp returns the sum of terms on n qubits.
func NewOp(n int, terms ...Term) *Op {
	o := &Op{n: n, terms: make(map[String]complex128)}
	for _, t := range terms {
		o.AddTerm(t.String, t.Coeff)
	}
	return o
}

func (o *Op) NumQubits() int { return o.n }

// Len returns the number of non-zero terms.
func (o *Op) Len() int { return len(o.terms) }

func (o *Op) Copy() *Op {
	c := NewOp(o.n)
	for s, v := range o.terms {
		c.terms[s] = v
	}
	return c
}

// AddTerm performs o += c*s.
func (o *Op) AddTerm(s String, c complex128) {
	if s.n != o.n {
		panic(fmt.Sprintf("%d %d", s.n, o.n))
	}
	v := o.terms[s] + c
	if v == 0 {
		delete(o.terms, s)
		return
	}
	o.terms[s] = v
}

// Coeff returns the coefficient of s.
func (o *Op) Coeff(s String) complex128 {
	return o.terms[s]
}

// Add performs o += c*p.
func (o *Op) Add(c complex128, p *Op) *Op {
	for s, v := range p.terms {
		o.AddTerm(s, c*v)
	}
	return o
}

// Scale multiplies every coefficient by c.
func (o *Op) Scale(c complex128) *Op {
	for s, v := range o.terms {
		o.terms[s] = c * v
	}
	if c == 0 {
		clear(o.terms)
	}
	return o
}

// Mul returns the operator product o*p.
func (o *Op) Mul(p *Op) *Op {
	r := NewOp(o.n)
	for s, a := range o.terms {
		for t, b := range p.terms {
			phase, st := s.Mul(t)
			r.AddTerm(st, phase*a*b)
		}
	}
	return r
}

// Simplify drops real and imaginary parts whose magnitude is at most tol.
func (o *Op) Simplify(tol float64) *Op {
	for s, v := range o.terms {
		re, im := real(v), imag(v)
		if math.Abs(re) <= tol {
			re = 0
		}
		if math.Abs(im) <= tol {
			im = 0
		}
		switch {
		case re == 0 && im == 0:
			delete(o.terms, s)
		default:
			o.terms[s] = complex(re, im)
		}
	}
	return o
}

// Terms returns the terms sorted by label.
func (o *Op) Terms() []Term {
	terms := make([]Term, 0, len(o.terms))
	for s, v := range o.terms {
		terms = append(terms, Term{String: s, Coeff: v})
	}
	slices.SortFunc(terms, func(a, b Term) int { return cmp.Compare(a.Label(), b.Label()) })
	return terms
}

// IsHermitian reports whether every coefficient is real within tol.
func (o *Op) IsHermitian(tol float64) bool {
	for _, v := range o.terms {
		if math.Abs(imag(v)) > tol {
			return false
		}
	}
	return true
}

// Equal reports whether o and p have the same terms within tol.
func (o *Op) Equal(p *Op, tol float64) bool {
	if o.n != p.n {
		return false
	}
	for s, v := range o.terms {
		if cmplx.Abs(v-p.terms[s]) > tol {
			return false
		}
	}
	for s, v := range p.terms {
		if cmplx.Abs(v-o.terms[s]) > tol {
			return false
		}
	}
	return true
}

// Matrix returns the 2^n by 2^n matrix of o.
func (o *Op) Matrix() *mat.COO {
	m := mat.COOZeros(1<<o.n, 1<<o.n)
	for _, t := range o.Terms() {
		m.Add(t.Coeff, t.String.Matrix())
	}
	return m
}

// Expectation returns <psi|o|psi> for a state vector indexed with qubit 0 as the least significant bit.
func (o *Op) Expectation(psi []complex128) complex128 {
	if len(psi) != 1<<o.n {
		panic(fmt.Sprintf("%d %d", len(psi), o.n))
	}
	var e complex128
	for s, c := range o.terms {
		var es complex128
		for b, amp := range psi {
			if amp == 0 {
				continue
			}
			phase, b2 := s.Apply(uint64(b))
			es += cmplx.Conj(psi[b2]) * phase * amp
		}
		e += c * es
	}
	return e
}

// Taper removes qubit q, replacing Z on it by the eigenvalue eig.
// It fails if any term acts on q with X or Y.
func (o *Op) Taper(q int, eig float64) (*Op, error) {
	if q < 0 || q >= o.n {
		return nil, errors.Errorf("%d %d", q, o.n)
	}
	if eig != 1 && eig != -1 {
		return nil, errors.Errorf("%f", eig)
	}
	r := NewOp(o.n - 1)
	for s, c := range o.terms {
		if s.x>>q&1 == 1 {
			return nil, errors.Errorf("%s acts on %d with %c", s.Label(), q, s.Op(q))
		}
		if s.z>>q&1 == 1 {
			c *= complex(eig, 0)
		}
		r.AddTerm(s.remove(q), c)
	}
	return r, nil
}

// Group is a set of qubit-wise commuting terms measurable in a single basis.
type Group struct {
	Terms []Term
	// Basis holds the measurement basis per qubit, one of 'I', 'X', 'Y', 'Z'.
	Basis []byte
}

// GroupQubitWise greedily partitions the terms into qubit-wise commuting groups.
// The identity term, if any, is returned separately since it needs no measurement.
func (o *Op) GroupQubitWise() ([]Group, complex128) {
	var identity complex128
	groups := make([]Group, 0)
	for _, t := range o.Terms() {
		if t.IsIdentity() {
			identity += t.Coeff
			continue
		}
		placed := false
		for i := range groups {
			ok := true
			for _, u := range groups[i].Terms {
				if !t.QubitWiseCommutes(u.String) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			groups[i].Terms = append(groups[i].Terms, t)
			placed = true
			break
		}
		if !placed {
			groups = append(groups, Group{Terms: []Term{t}})
		}
	}

	for i, g := range groups {
		basis := make([]byte, o.n)
		for q := range basis {
			basis[q] = 'I'
			for _, t := range g.Terms {
				if op := t.Op(q); op != 'I' {
					basis[q] = op
					break
				}
			}
		}
		groups[i].Basis = basis
	}
	return groups, identity
}

func (o *Op) String() string {
	lines := make([]string, 0, len(o.terms))
	for _, t := range o.Terms() {
		lines = append(lines, fmt.Sprintf("%s * %s", formatCoeff(t.Coeff), t.Label()))
	}
	return strings.Join(lines, "\n")
}

func formatCoeff(c complex128) string {
	if imag(c) == 0 {
		return fmt.Sprintf("%+.8f", real(c))
	}
	return fmt.Sprintf("(%+.8f%+.8fi)", real(c), imag(c))
}
