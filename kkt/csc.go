// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package kkt assembles and solves the sparse symmetric quasi-definite KKT
// systems of the conic interior-point iteration. The nonzero pattern of the
// KKT matrix is fixed at assembly; numeric updates are pure gather/scatter
// through precomputed index maps.
package kkt

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Matrix is a compressed sparse column matrix with open storage, so the
// assembler can record the position of every logical slot. Note: gosl's
// Triplet/CCMatrix pair is still used for the residual products in the ipm
// package; this type exists because in-place pattern-preserving updates need
// direct access to the column structure.
type Matrix struct {
	M, N int       // dimensions
	Ap   []int     // column pointers (N+1)
	Ai   []int     // row indices
	Ax   []float64 // values
}

// NewMatrix allocates an M×N matrix with space for nnz entries; Ap must be
// filled by the caller
func NewMatrix(m, n, nnz int) *Matrix {
	return &Matrix{M: m, N: n, Ap: make([]int, n+1), Ai: make([]int, nnz), Ax: make([]float64, nnz)}
}

// Nnz returns the number of stored entries
func (o *Matrix) Nnz() int { return o.Ap[o.N] }

// FromDense builds the CSC form of a dense matrix, dropping zeros
func FromDense(a [][]float64) (o *Matrix) {
	m := len(a)
	n := len(a[0])
	o = &Matrix{M: m, N: n, Ap: make([]int, n+1)}
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			if a[i][j] != 0 {
				o.Ai = append(o.Ai, i)
				o.Ax = append(o.Ax, a[i][j])
			}
		}
		o.Ap[j+1] = len(o.Ai)
	}
	return
}

// TriuFromDense builds the CSC form of the upper triangle of a dense
// symmetric matrix, dropping zeros
func TriuFromDense(a [][]float64) (o *Matrix) {
	n := len(a)
	o = &Matrix{M: n, N: n, Ap: make([]int, n+1)}
	for j := 0; j < n; j++ {
		for i := 0; i <= j; i++ {
			if a[i][j] != 0 {
				o.Ai = append(o.Ai, i)
				o.Ax = append(o.Ax, a[i][j])
			}
		}
		o.Ap[j+1] = len(o.Ai)
	}
	return
}

// MulAdd computes y += α A x
func (o *Matrix) MulAdd(y []float64, alpha float64, x []float64) {
	for j := 0; j < o.N; j++ {
		for p := o.Ap[j]; p < o.Ap[j+1]; p++ {
			y[o.Ai[p]] += alpha * o.Ax[p] * x[j]
		}
	}
}

// TrMulAdd computes y += α Aᵀ x
func (o *Matrix) TrMulAdd(y []float64, alpha float64, x []float64) {
	for j := 0; j < o.N; j++ {
		t := 0.0
		for p := o.Ap[j]; p < o.Ap[j+1]; p++ {
			t += o.Ax[p] * x[o.Ai[p]]
		}
		y[j] += alpha * t
	}
}

// SymMulAdd computes y += α A x where A holds the upper triangle of a
// symmetric matrix
func (o *Matrix) SymMulAdd(y []float64, alpha float64, x []float64) {
	for j := 0; j < o.N; j++ {
		for p := o.Ap[j]; p < o.Ap[j+1]; p++ {
			i := o.Ai[p]
			v := o.Ax[p]
			y[i] += alpha * v * x[j]
			if i != j {
				y[j] += alpha * v * x[i]
			}
		}
	}
}

// SymQuad computes xᵀ A y for upper-triangle symmetric storage
func (o *Matrix) SymQuad(x, y []float64) (res float64) {
	for j := 0; j < o.N; j++ {
		for p := o.Ap[j]; p < o.Ap[j+1]; p++ {
			i := o.Ai[p]
			v := o.Ax[p]
			res += v * x[i] * y[j]
			if i != j {
				res += v * x[j] * y[i]
			}
		}
	}
	return
}

// UpdateValues overwrites the entries addressed by idx with vals
func (o *Matrix) UpdateValues(idx []int, vals []float64) {
	for k, ix := range idx {
		o.Ax[ix] = vals[k]
	}
}

// ScaleValues multiplies the entries addressed by idx by scale
func (o *Matrix) ScaleValues(idx []int, scale float64) {
	for _, ix := range idx {
		o.Ax[ix] *= scale
	}
}

// OffsetValues adds offset times the given signs to the entries addressed
// by idx
func (o *Matrix) OffsetValues(idx []int, offset float64, signs []float64) {
	for k, ix := range idx {
		o.Ax[ix] += offset * signs[k]
	}
}

// CheckTriu returns an error unless the matrix is square upper-triangular
func (o *Matrix) CheckTriu(name string) error {
	if o.M != o.N {
		return chk.Err("%s must be square. %d×%d is invalid", name, o.M, o.N)
	}
	for j := 0; j < o.N; j++ {
		for p := o.Ap[j]; p < o.Ap[j+1]; p++ {
			if o.Ai[p] > j {
				return chk.Err("%s must be upper triangular. entry (%d,%d) is below the diagonal", name, o.Ai[p], j)
			}
		}
	}
	return nil
}

// vecHasNaN reports whether v contains NaN or Inf entries
func vecHasNaN(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return true
		}
	}
	return false
}
