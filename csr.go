// Package bsets implements construction of the compressed sparse row
// (CSR) matrix from the raw coordinate streams.
//
// WHAT IS CSR?
// CSR (compressed sparse row) is a sparse-matrix layout with two arrays:
// row_ptr, giving the start offset of each row's nonzero columns inside
// col_idx, and col_idx itself, holding the column index of every nonzero
// cell, row by row, each row's slice sorted ascending. Binary matrices
// like this one don't need a values array: presence is the cell.
//
// HOW CONSTRUCTION WORKS:
//  1. Count how many coordinate pairs land in each row (before dedup).
//  2. Allocate col_idx sized to that provisional count and scatter every
//     pair into it, using a moving per-row cursor derived from the
//     prefix sum of the counts.
//  3. Sort each row's slice of col_idx ascending and compact duplicate
//     columns in place, recording the row's new (deduplicated) length.
//  4. Recompute row_ptr as the exact prefix sum of the compacted
//     lengths and left-shift col_idx so that rows are contiguous again.
//
// TIME COMPLEXITY: O(nnz * log(maxRowLen)) for the per-row sorts.
package bsets

import "sort"

// CSRMatrix is a read-only, deduplicated, row-sorted binary sparse
// matrix of shape N x M.
type CSRMatrix struct {
	N, M   int
	RowPtr []int32 // len N+1; non-decreasing; RowPtr[0]=0, RowPtr[N]=NNZ
	ColIdx []int32 // len NNZ; strictly ascending within each row
}

// NNZ returns the number of stored (nonzero) cells.
func (c *CSRMatrix) NNZ() int { return len(c.ColIdx) }

// Row returns the (sorted, deduplicated) column indices of row r.
func (c *CSRMatrix) Row(r int) []int32 {
	return c.ColIdx[c.RowPtr[r]:c.RowPtr[r+1]]
}

// Has reports whether row r has column j set. It binary searches the
// row's column slice, which is O(log(rowLen)).
func (c *CSRMatrix) Has(r, j int) bool {
	row := c.Row(r)
	idx := sort.Search(len(row), func(i int) bool { return row[i] >= int32(j) })
	return idx < len(row) && row[idx] == int32(j)
}

// ColumnSums returns s_j, the document frequency of every column j: the
// number of rows that have column j set.
func (c *CSRMatrix) ColumnSums() []int64 {
	s := make([]int64, c.M)
	for _, j := range c.ColIdx {
		s[j]++
	}
	return s
}

// buildCSR constructs a canonical CSR matrix from parallel coordinate
// arrays, where (xco[k], yco[k]) for k in range is one presence pair.
// Duplicate pairs are permitted and are collapsed; out-of-range
// coordinates are a caller bug and are not checked here (callers
// validate ranges before calling, see ComputedIndexFromParts in index.go).
func buildCSR(n, m int, xco, yco []int32) *CSRMatrix {
	if n == 0 {
		return &CSRMatrix{N: 0, M: m, RowPtr: []int32{0}, ColIdx: nil}
	}

	// Step 1: provisional per-row counts (pre-dedup).
	counts := make([]int32, n)
	for _, r := range xco {
		counts[r]++
	}

	// Provisional row_ptr is the prefix sum of the raw counts; it also
	// doubles as the scatter cursor's starting point for each row.
	provisionalPtr := make([]int32, n+1)
	for r := 0; r < n; r++ {
		provisionalPtr[r+1] = provisionalPtr[r] + counts[r]
	}
	nnzProvisional := provisionalPtr[n]

	colIdx := make([]int32, nnzProvisional)
	cursor := make([]int32, n)
	copy(cursor, provisionalPtr[:n])

	for k := range xco {
		r := xco[k]
		colIdx[cursor[r]] = yco[k]
		cursor[r]++
	}

	// Step 3: sort each row's slice and compact duplicates in place,
	// recording the new (deduplicated) row length.
	newLen := make([]int32, n)
	for r := 0; r < n; r++ {
		start, end := provisionalPtr[r], provisionalPtr[r+1]
		row := colIdx[start:end]
		sort.Slice(row, func(i, j int) bool { return row[i] < row[j] })

		w := 0
		for i := 0; i < len(row); i++ {
			if i == 0 || row[i] != row[w-1] {
				row[w] = row[i]
				w++
			}
		}
		newLen[r] = int32(w)
	}

	// Step 4: recompute row_ptr as the exact prefix sum of compacted
	// lengths, left-shifting col_idx into the final contiguous layout.
	rowPtr := make([]int32, n+1)
	for r := 0; r < n; r++ {
		rowPtr[r+1] = rowPtr[r] + newLen[r]
	}
	finalColIdx := make([]int32, rowPtr[n])
	for r := 0; r < n; r++ {
		src := colIdx[provisionalPtr[r] : provisionalPtr[r]+newLen[r]]
		copy(finalColIdx[rowPtr[r]:rowPtr[r+1]], src)
	}

	return &CSRMatrix{N: n, M: m, RowPtr: rowPtr, ColIdx: finalColIdx}
}
