package mat

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	Identity = [][]complex128{
		{1, 0},
		{0, 1},
	}
	PauliX = [][]complex128{
		{0, 1},
		{1, 0},
	}
	PauliY = [][]complex128{
		{0, -1i},
		{1i, 0},
	}
	PauliZ = [][]complex128{
		{1, 0},
		{0, -1},
	}
)

type vRowCol struct {
	v   complex128
	row int
	col int
}

// COO is a sparse matrix in coordinate format.
// Data is kept in row major order without zero entries.
type COO struct {
	rows int
	cols int
	Data []vRowCol

	m map[[2]int]complex128
}

func M(dense [][]complex128) *COO {
	m := &COO{rows: len(dense), cols: len(dense[0]), Data: make([]vRowCol, 0), m: make(map[[2]int]complex128)}
	for i, row := range dense {
		for j, v := range row {
			if v == 0 {
				continue
			}
			m.Data = append(m.Data, vRowCol{v: v, row: i, col: j})
		}
	}
	return m
}

func COOZeros(rows, cols int) *COO {
	m := M([][]complex128{{0}})
	m.Zeros(rows, cols)
	return m
}

func COOIdentity(rows int) *COO {
	m := M([][]complex128{{0}})
	m.Zeros(rows, rows)
	for i := 0; i < rows; i++ {
		m.Data = append(m.Data, vRowCol{v: 1, row: i, col: i})
	}
	return m
}

func (m *COO) Rows() int { return m.rows }
func (m *COO) Cols() int { return m.cols }

// NumNonZero returns the number of stored entries.
func (m *COO) NumNonZero() int { return len(m.Data) }

func (m *COO) Zeros(rows, cols int) {
	m.rows, m.cols = rows, cols
	m.Data = m.Data[:0]
}

func (m *COO) Scalar(v complex128) {
	m.rows, m.cols = 1, 1
	m.Data = m.Data[:0]
	m.Data = append(m.Data, vRowCol{v: v, row: 0, col: 0})
}

func (m *COO) Copy() *COO {
	c := &COO{rows: m.rows, cols: m.cols, Data: slices.Clone(m.Data), m: make(map[[2]int]complex128)}
	return c
}

func (m *COO) At(i, j int) complex128 {
	idx, ok := slices.BinarySearchFunc(m.Data, vRowCol{row: i, col: j}, rowMajor)
	if !ok {
		return 0
	}
	return m.Data[idx].v
}

func (a *COO) Equal(b *COO) bool {
	return a.EqualApprox(b, 0)
}

// EqualApprox reports whether a and b have the same shape and all entries within tol.
func (a *COO) EqualApprox(b *COO, tol float64) bool {
	if a.rows != b.rows || a.cols != b.cols {
		return false
	}
	if tol == 0 {
		if len(a.Data) != len(b.Data) {
			return false
		}
		for i, av := range a.Data {
			if av != b.Data[i] {
				return false
			}
		}
		return true
	}

	for _, av := range a.Data {
		if cmplx.Abs(av.v-b.At(av.row, av.col)) > tol {
			return false
		}
	}
	for _, bv := range b.Data {
		if cmplx.Abs(bv.v-a.At(bv.row, bv.col)) > tol {
			return false
		}
	}
	return true
}

func (m *COO) Slice(yBoundN, xBoundN [2]int) *COO {
	yBound, xBound := yBoundN, xBoundN
	for i := 0; i < 2; i++ {
		if yBound[i] < 0 {
			yBound[i] += m.rows
		}
		if xBound[i] < 0 {
			xBound[i] += m.cols
		}
	}

	s := &COO{rows: yBound[1] - yBound[0], cols: xBound[1] - xBound[0], Data: make([]vRowCol, 0), m: make(map[[2]int]complex128)}
	for _, v := range m.Data {
		if v.row < yBound[0] {
			continue
		}
		if v.row >= yBound[1] {
			break
		}
		if v.col < xBound[0] || v.col >= xBound[1] {
			continue
		}
		s.Data = append(s.Data, vRowCol{v: v.v, row: v.row - yBound[0], col: v.col - xBound[0]})
	}
	return s
}

// Add performs a += c*b.
func (a *COO) Add(c complex128, b *COO) {
	if !(a.rows == b.rows && a.cols == b.cols) {
		panic(fmt.Sprintf("wrong dimensions %dx%d %dx%d", a.rows, a.cols, b.rows, b.cols))
	}
	if b.m == nil {
		b.m = make(map[[2]int]complex128)
	}
	clear(b.m)
	for _, v := range b.Data {
		b.m[[2]int{v.row, v.col}] = v.v
	}

	for i, av := range a.Data {
		byx := [2]int{av.row, av.col}
		bv := b.m[byx]
		delete(b.m, byx)

		a.Data[i].v = av.v + c*bv
	}

	a.Data = slices.DeleteFunc(a.Data, func(v vRowCol) bool {
		return v.v == 0
	})
	for yx, bv := range b.m {
		if c*bv == 0 {
			continue
		}
		a.Data = append(a.Data, vRowCol{v: c * bv, row: yx[0], col: yx[1]})
	}
	slices.SortFunc(a.Data, rowMajor)
	clear(b.m)
}

// Mul performs elementwise multiplication, broadcasting b if it is a scalar or a column vector.
func (a *COO) Mul(b *COO) {
	if b.m == nil {
		b.m = make(map[[2]int]complex128)
	}
	clear(b.m)
	for _, v := range b.Data {
		b.m[[2]int{v.row, v.col}] = v.v
	}

	for i, av := range a.Data {
		var byx [2]int
		switch {
		case b.rows == 1 && b.cols == 1:
		case b.rows == a.rows && b.cols == 1:
			byx[0] = av.row
		case b.rows == a.rows && b.cols == a.cols:
			byx[0], byx[1] = av.row, av.col
		default:
			panic(fmt.Sprintf("wrong dimensions"))
		}
		bv := b.m[byx]

		a.Data[i].v = av.v * bv
	}

	a.Data = slices.DeleteFunc(a.Data, func(v vRowCol) bool {
		return v.v == 0
	})
	clear(b.m)
}

func (a *COO) Kron(b *COO) {
	rows := a.rows * b.rows
	cols := a.cols * b.cols
	a.rows, a.cols = rows, cols

	prevElemNum := len(a.Data)
	for i := prevElemNum - 1; i >= 0; i-- {
		av := a.Data[i]
		a.Data[i].v = 0
		for _, bv := range b.Data {
			ky := av.row*b.rows + bv.row
			kx := av.col*b.cols + bv.col
			a.Data = append(a.Data, vRowCol{v: av.v * bv.v, row: ky, col: kx})
		}
	}

	a.Data = slices.DeleteFunc(a.Data, func(v vRowCol) bool {
		return v.v == 0
	})
	slices.SortFunc(a.Data, rowMajor)
}

// MatMul returns the matrix product a b.
func (a *COO) MatMul(b *COO) *COO {
	if a.cols != b.rows {
		panic(fmt.Sprintf("wrong dimensions %dx%d %dx%d", a.rows, a.cols, b.rows, b.cols))
	}
	bRows := make(map[int][]vRowCol)
	for _, bv := range b.Data {
		bRows[bv.row] = append(bRows[bv.row], bv)
	}
	acc := make(map[[2]int]complex128)
	for _, av := range a.Data {
		for _, bv := range bRows[av.col] {
			acc[[2]int{av.row, bv.col}] += av.v * bv.v
		}
	}

	c := COOZeros(a.rows, b.cols)
	for yx, v := range acc {
		if v == 0 {
			continue
		}
		c.Data = append(c.Data, vRowCol{v: v, row: yx[0], col: yx[1]})
	}
	slices.SortFunc(c.Data, rowMajor)
	return c
}

// MulVec computes dst = m x.
func (m *COO) MulVec(dst, x []complex128) []complex128 {
	if len(x) != m.cols {
		panic(fmt.Sprintf("%d %d", len(x), m.cols))
	}
	dst = slices.Grow(dst[:0], m.rows)[:m.rows]
	clear(dst)
	for _, v := range m.Data {
		dst[v.row] += v.v * x[v.col]
	}
	return dst
}

// Expectation returns <x|m|x>.
func (m *COO) Expectation(x []complex128) complex128 {
	var e complex128
	for _, v := range m.Data {
		e += cmplx.Conj(x[v.row]) * v.v * x[v.col]
	}
	return e
}

// IsHermitian reports whether m equals its conjugate transpose within tol.
func (m *COO) IsHermitian(tol float64) bool {
	if m.rows != m.cols {
		return false
	}
	for _, v := range m.Data {
		if cmplx.Abs(v.v-cmplx.Conj(m.At(v.col, v.row))) > tol {
			return false
		}
	}
	return true
}

func (m *COO) Dense() [][]complex128 {
	dense := make([][]complex128, m.rows)
	for i := range dense {
		dense[i] = make([]complex128, m.cols)
	}

	for _, v := range m.Data {
		dense[v.row][v.col] = v.v
	}

	return dense
}

// WriteCSV writes the shape as "rows,cols" followed by one "real,imag,row,col" record per stored element.
func (m *COO) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{strconv.Itoa(m.rows), strconv.Itoa(m.cols)}); err != nil {
		return errors.Wrap(err, "")
	}
	record := make([]string, 4)
	for _, v := range m.Data {
		record[0] = strconv.FormatFloat(real(v.v), 'g', -1, 64)
		record[1] = strconv.FormatFloat(imag(v.v), 'g', -1, 64)
		record[2] = strconv.Itoa(v.row)
		record[3] = strconv.Itoa(v.col)
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, fmt.Sprintf("%#v", v))
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// ReadCSV reads a matrix written by WriteCSV.
func ReadCSV(r io.Reader) (*COO, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	shape, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if len(shape) != 2 {
		return nil, errors.Errorf("shape %#v", shape)
	}
	rows, err := strconv.Atoi(shape[0])
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	cols, err := strconv.Atoi(shape[1])
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	m := COOZeros(rows, cols)

	for i := 0; ; i++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%d", i))
		}
		if len(record) != 4 {
			return nil, errors.Errorf("%d %#v", i, record)
		}
		var parts [2]float64
		for j := range parts {
			parts[j], err = strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("%d %#v", i, record))
			}
		}
		var v vRowCol
		v.v = complex(parts[0], parts[1])
		if v.row, err = strconv.Atoi(record[2]); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%d %#v", i, record))
		}
		if v.col, err = strconv.Atoi(record[3]); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%d %#v", i, record))
		}
		if v.row < 0 || v.row >= rows || v.col < 0 || v.col >= cols {
			return nil, errors.Errorf("%d out of %dx%d %#v", i, rows, cols, record)
		}
		m.Data = append(m.Data, v)
	}
	slices.SortFunc(m.Data, rowMajor)
	return m, nil
}

// Save writes m to fpath in the format of WriteCSV.
func (m *COO) Save(fpath string) error {
	f, err := os.Create(fpath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err1 := m.WriteCSV(f); err1 != nil && err == nil {
		err = errors.Wrap(err1, fpath)
	}
	if err1 := f.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

// Load reads a matrix saved by Save.
func Load(fpath string) (*COO, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer f.Close()
	m, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrap(err, fpath)
	}
	return m, nil
}

func (m *COO) String() string {
	lines := []string{}
	for i := 0; i < m.rows; i++ {
		cs := []string{}
		for j := 0; j < m.cols; j++ {
			v := m.At(i, j)
			switch {
			case imag(v) == 0:
				cs = append(cs, format(real(v)))
			case real(v) == 0:
				cs = append(cs, format(imag(v))+"i")
			default:
				cs = append(cs, format(real(v))+"+"+format(imag(v))+"i")
			}
		}
		l := strings.Join(cs, "\t")
		lines = append(lines, l)
	}

	return strings.Join(lines, "\n")
}

type ValVec struct {
	Val float64
	Vec []complex128
}

// Eigen returns the eigen decomposition of a Hermitian matrix sorted by ascending eigenvalue.
//
// Real symmetric matrices are factorized directly.
// For complex matrices A = B + iC, the real symmetric embedding [[B, -C], [C, B]] is factorized,
// whose spectrum is that of A with every eigenvalue doubled.
func (m *COO) Eigen() ([]ValVec, error) {
	if m.rows != m.cols {
		return nil, errors.Errorf("not square %d %d", m.rows, m.cols)
	}
	if !m.IsHermitian(1e-10) {
		return nil, errors.Errorf("not hermitian")
	}

	isReal := true
	for _, v := range m.Data {
		if imag(v.v) != 0 {
			isReal = false
			break
		}
	}

	n := m.rows
	dim := n
	if !isReal {
		dim = 2 * n
	}
	sym := mat.NewSymDense(dim, nil)
	for _, v := range m.Data {
		if v.row > v.col {
			continue
		}
		sym.SetSym(v.row, v.col, real(v.v))
		if !isReal {
			sym.SetSym(v.row+n, v.col+n, real(v.v))
			// Lower-left block is C, upper-right block is -C.
			sym.SetSym(v.row, v.col+n, -imag(v.v))
			sym.SetSym(v.col, v.row+n, imag(v.v))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, errors.Errorf("eigen factorization failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	vvs := make([]ValVec, 0, dim)
	for i, v := range vals {
		vec := make([]complex128, n)
		for j := range n {
			switch {
			case isReal:
				vec[j] = complex(vecs.At(j, i), 0)
			default:
				vec[j] = complex(vecs.At(j, i), vecs.At(j+n, i))
			}
		}
		vvs = append(vvs, ValVec{Val: v, Vec: vec})
	}
	slices.SortStableFunc(vvs, func(a, b ValVec) int { return cmp.Compare(a.Val, b.Val) })

	if !isReal {
		// Keep one representative out of each doubled pair.
		halved := make([]ValVec, 0, n)
		for i := 0; i < len(vvs); i += 2 {
			halved = append(halved, vvs[i])
		}
		vvs = halved
	}
	for _, vv := range vvs {
		normalize(vv.Vec)
	}
	return vvs, nil
}

// Propagator returns exp(-i m t) for a Hermitian matrix m.
//
// With R the real embedding of m and J the embedding of i, exp(-iRt) maps to cos(Rt) - J sin(Rt),
// whose upper left and lower left blocks are the real and imaginary parts of the result.
func (m *COO) Propagator(t float64) (*COO, error) {
	if m.rows != m.cols {
		return nil, errors.Errorf("not square %d %d", m.rows, m.cols)
	}
	if !m.IsHermitian(1e-10) {
		return nil, errors.Errorf("not hermitian")
	}
	n := m.rows
	sym := mat.NewSymDense(2*n, nil)
	for _, v := range m.Data {
		if v.row > v.col {
			continue
		}
		sym.SetSym(v.row, v.col, real(v.v))
		sym.SetSym(v.row+n, v.col+n, real(v.v))
		sym.SetSym(v.row, v.col+n, -imag(v.v))
		sym.SetSym(v.col, v.row+n, imag(v.v))
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, errors.Errorf("eigen factorization failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	cosD := mat.NewDiagDense(2*n, nil)
	sinD := mat.NewDiagDense(2*n, nil)
	for i, v := range vals {
		cosD.SetDiag(i, math.Cos(v*t))
		sinD.SetDiag(i, math.Sin(v*t))
	}
	var c, s mat.Dense
	c.Product(&vecs, cosD, vecs.T())
	s.Product(&vecs, sinD, vecs.T())

	dense := make([][]complex128, n)
	for i := range n {
		dense[i] = make([]complex128, n)
		for j := range n {
			re := c.At(i, j) + s.At(i+n, j)
			im := c.At(i+n, j) - s.At(i, j)
			dense[i][j] = complex(cleanZero(re), cleanZero(im))
		}
	}
	return M(dense), nil
}

func cleanZero(v float64) float64 {
	if math.Abs(v) < 1e-15 {
		return 0
	}
	return v
}

func normalize(v []complex128) {
	var norm float64
	for _, c := range v {
		norm += real(c)*real(c) + imag(c)*imag(c)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] /= complex(norm, 0)
	}
}

func rowMajor(a, b vRowCol) int {
	if c := cmp.Compare(a.row, b.row); c != 0 {
		return c
	}
	return cmp.Compare(a.col, b.col)
}

func format(v float64) string {
	// If v is 0 or -0, return "0" immediately to avoid returning "-0".
	if v == 0 {
		return " 0"
	}

	s := strconv.FormatFloat(v, 'g', 6, 64)

	// Add a space before non-negative numbers to align with other negative numbers in the same column.
	if v >= 0 {
		s = " " + s
	}

	return s
}
