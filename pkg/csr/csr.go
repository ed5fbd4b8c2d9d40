// Package csr converts coordinate lists to Compressed Sparse Row form
// and writes the three-array binary layout expected by the GPU loader.
package csr

import (
	"github.com/dd0wney/cluso-datasets/pkg/mtx"
)

// Matrix is a sparse matrix in CSR form. Indptr has NumRows+1 entries;
// Indices and Data have one entry per stored non-zero.
type Matrix struct {
	NumRows int
	NumCols int

	Indptr  []uint64
	Indices []uint64
	Data    []float32
}

// NNZ returns the stored entry count.
func (m *Matrix) NNZ() int { return len(m.Indices) }

// FromCOO builds a CSR matrix from a coordinate list with a counting
// sort over rows. The sort is stable: entries sharing a row keep their
// input order, so conversion output is a deterministic function of
// input order.
func FromCOO(coo *mtx.Coordinates) *Matrix {
	nnz := coo.NNZ()
	m := &Matrix{
		NumRows: coo.NumRows,
		NumCols: coo.NumCols,
		Indptr:  make([]uint64, coo.NumRows+1),
		Indices: make([]uint64, nnz),
		Data:    make([]float32, nnz),
	}

	// Pass 1: row degree counts into Indptr[row+1].
	for _, r := range coo.Rows {
		m.Indptr[r+1]++
	}

	// Prefix sum turns counts into row start offsets.
	for i := 1; i <= coo.NumRows; i++ {
		m.Indptr[i] += m.Indptr[i-1]
	}

	// Pass 2: scatter entries to their row segments in input order.
	next := make([]uint64, coo.NumRows)
	copy(next, m.Indptr[:coo.NumRows])
	for i, r := range coo.Rows {
		pos := next[r]
		next[r]++
		m.Indices[pos] = coo.Cols[i]
		m.Data[pos] = float32(coo.Vals[i])
	}

	return m
}
