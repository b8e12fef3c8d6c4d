// Package sparse provides the compressed sparse row matrix used for
// document-term features.
package sparse

import (
	"fmt"
	"sort"
)

// Entry is a single non-zero value of a row
type Entry struct {
	Index int
	Value float64
}

// Matrix is a read-only CSR matrix. Row i holds the column indices
// Indices[Indptr[i]:Indptr[i+1]] (strictly increasing) and matching Data.
// Fields are exported so the matrix can be gob/json encoded as-is.
type Matrix struct {
	Rows    int       `json:"rows"`
	Cols    int       `json:"cols"`
	Indptr  []int     `json:"indptr"`
	Indices []int     `json:"indices"`
	Data    []float64 `json:"data"`
}

// Builder assembles a Matrix row by row
type Builder struct {
	cols    int
	indptr  []int
	indices []int
	data    []float64
}

// NewBuilder creates a builder for a matrix with the given column count
func NewBuilder(cols int) *Builder {
	return &Builder{
		cols:   cols,
		indptr: []int{0},
	}
}

// AddRow appends a row. Entries may arrive in any order; zero values are
// dropped and duplicate indices are summed.
func (b *Builder) AddRow(entries []Entry) error {
	row := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Index < 0 || e.Index >= b.cols {
			return fmt.Errorf("column %d out of range [0,%d)", e.Index, b.cols)
		}
		row = append(row, e)
	}
	sort.Slice(row, func(i, j int) bool { return row[i].Index < row[j].Index })

	for i := 0; i < len(row); {
		j := i
		sum := 0.0
		for j < len(row) && row[j].Index == row[i].Index {
			sum += row[j].Value
			j++
		}
		if sum != 0 {
			b.indices = append(b.indices, row[i].Index)
			b.data = append(b.data, sum)
		}
		i = j
	}
	b.indptr = append(b.indptr, len(b.indices))
	return nil
}

// Build returns the assembled matrix. The builder must not be reused.
func (b *Builder) Build() *Matrix {
	return &Matrix{
		Rows:    len(b.indptr) - 1,
		Cols:    b.cols,
		Indptr:  b.indptr,
		Indices: b.indices,
		Data:    b.data,
	}
}

// FromDense builds a matrix from a dense row-major slice (handy in tests)
func FromDense(rows [][]float64, cols int) (*Matrix, error) {
	b := NewBuilder(cols)
	for _, r := range rows {
		if len(r) > cols {
			return nil, fmt.Errorf("row has %d values, matrix has %d columns", len(r), cols)
		}
		entries := make([]Entry, 0, len(r))
		for j, v := range r {
			if v != 0 {
				entries = append(entries, Entry{Index: j, Value: v})
			}
		}
		if err := b.AddRow(entries); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// Row returns the column indices and values of row i. The slices alias the
// matrix storage and must not be modified.
func (m *Matrix) Row(i int) ([]int, []float64) {
	lo, hi := m.Indptr[i], m.Indptr[i+1]
	return m.Indices[lo:hi], m.Data[lo:hi]
}

// NNZ returns the number of stored values
func (m *Matrix) NNZ() int {
	return len(m.Data)
}

// At returns the value at (i, j)
func (m *Matrix) At(i, j int) float64 {
	idx, vals := m.Row(i)
	k := sort.SearchInts(idx, j)
	if k < len(idx) && idx[k] == j {
		return vals[k]
	}
	return 0
}

// Dot returns the inner product of row i with a dense vector w.
// Columns beyond len(w) contribute nothing.
func (m *Matrix) Dot(i int, w []float64) float64 {
	idx, vals := m.Row(i)
	sum := 0.0
	for k, j := range idx {
		if j < len(w) {
			sum += vals[k] * w[j]
		}
	}
	return sum
}

// AddScaled adds scale * row i into the dense vector w
func (m *Matrix) AddScaled(i int, scale float64, w []float64) {
	idx, vals := m.Row(i)
	for k, j := range idx {
		if j < len(w) {
			w[j] += scale * vals[k]
		}
	}
}

// NormSq returns the squared L2 norm of row i
func (m *Matrix) NormSq(i int) float64 {
	_, vals := m.Row(i)
	sum := 0.0
	for _, v := range vals {
		sum += v * v
	}
	return sum
}

// Validate checks the structural invariants of the CSR layout
func (m *Matrix) Validate() error {
	if m == nil {
		return fmt.Errorf("nil matrix")
	}
	if len(m.Indptr) != m.Rows+1 {
		return fmt.Errorf("indptr has %d entries, want %d", len(m.Indptr), m.Rows+1)
	}
	if len(m.Indices) != len(m.Data) {
		return fmt.Errorf("indices/data length mismatch: %d vs %d", len(m.Indices), len(m.Data))
	}
	if m.Indptr[0] != 0 || m.Indptr[m.Rows] != len(m.Data) {
		return fmt.Errorf("indptr bounds [%d,%d] do not cover %d values", m.Indptr[0], m.Indptr[m.Rows], len(m.Data))
	}
	for i := 0; i < m.Rows; i++ {
		if m.Indptr[i] > m.Indptr[i+1] {
			return fmt.Errorf("row %d: indptr decreases", i)
		}
		idx, _ := m.Row(i)
		for k, j := range idx {
			if j < 0 || j >= m.Cols {
				return fmt.Errorf("row %d: column %d out of range", i, j)
			}
			if k > 0 && idx[k-1] >= j {
				return fmt.Errorf("row %d: columns not strictly increasing", i)
			}
		}
	}
	return nil
}
