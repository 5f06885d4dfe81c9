// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kkt

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/goconic/cone"
	"github.com/cpmech/goconic/inp"
)

// Maps records the position in K of every logical slot, so numeric updates
// never repeat symbolic work. All indices point into K.Ax.
type Maps struct {
	P    []int    // one position per P entry, in P's CSC order
	A    []int    // one position per A entry, in A's CSC order
	Hs   [][]int  // per cone: scaling block (diagonal or packed triangle)
	SocU [][]int  // per second-order cone: u rank-one column
	SocV [][]int  // per second-order cone: v rank-one column
	SocD [][2]int // per second-order cone: extended diagonal pair (v row, u row)
	Diag []int    // position of every diagonal entry of K
}

// Assemble builds the upper triangle of the KKT matrix
//
//	[ P + εI    Aᵀ        0     ]
//	[   A     -WᵀW        U     ]
//	[   0       Uᵀ     ±η² I_p  ]
//
// of order n+m+p (p = 2 × number of second-order cones) together with the
// index maps and the expected signs of D in the LDLᵀ factorisation. The
// scaling blocks start at zero and are filled by the numeric update; the +ε
// static regularisation of the leading block is applied here, once.
func Assemble(P, A *Matrix, cones *cone.Cones, set *inp.Settings) (K *Matrix, maps *Maps, signs []float64, err error) {

	// dimensions
	err = P.CheckTriu("P")
	if err != nil {
		return
	}
	n := P.N
	m := A.M
	if A.N != n {
		err = chk.Err("A must have %d columns to match P. A is %d×%d", n, A.M, A.N)
		return
	}
	if cones.M != m {
		err = chk.Err("cone dimensions sum to %d but A has %d rows", cones.M, m)
		return
	}
	p := 2 * cones.Nsoc
	N := n + m + p

	// missing diagonal entries of P get explicit zeros
	pHasDiag := make([]bool, n)
	for j := 0; j < n; j++ {
		for ip := P.Ap[j]; ip < P.Ap[j+1]; ip++ {
			if P.Ai[ip] == j {
				pHasDiag[j] = true
			}
		}
	}

	// nonzeros of each row of A
	arownnz := make([]int, m)
	for ip := 0; ip < A.Nnz(); ip++ {
		arownnz[A.Ai[ip]]++
	}

	// column counts
	colnnz := make([]int, N)
	for j := 0; j < n; j++ {
		colnnz[j] = P.Ap[j+1] - P.Ap[j]
		if !pHasDiag[j] {
			colnnz[j]++
		}
	}
	for i := 0; i < m; i++ {
		colnnz[n+i] = arownnz[i]
	}
	for ci, c := range cones.Kinds {
		r0 := cones.Spans[ci]
		d := c.Dim()
		for l := 0; l < d; l++ {
			if c.HsIsDiagonal() {
				colnnz[n+r0+l]++
			} else {
				colnnz[n+r0+l] += l + 1
			}
		}
	}
	// soc extension columns carry the cone rows plus one diagonal entry
	socIdx := 0
	for _, c := range cones.Kinds {
		if _, issoc := c.(*cone.Soc); issoc {
			d := c.Dim()
			colnnz[n+m+2*socIdx] = d + 1
			colnnz[n+m+2*socIdx+1] = d + 1
			socIdx++
		}
	}

	// allocate
	nnz := 0
	for _, c := range colnnz {
		nnz += c
	}
	K = NewMatrix(N, N, nnz)
	for j := 0; j < N; j++ {
		K.Ap[j+1] = K.Ap[j] + colnnz[j]
	}
	next := make([]int, N)
	copy(next, K.Ap)
	put := func(col, row int, val float64) int {
		pos := next[col]
		K.Ai[pos] = row
		K.Ax[pos] = val
		next[col]++
		return pos
	}

	maps = new(Maps)
	maps.P = make([]int, P.Nnz())
	maps.A = make([]int, A.Nnz())
	maps.Diag = make([]int, N)
	signs = make([]float64, N)

	// P block with completed diagonal and static regularisation
	for j := 0; j < n; j++ {
		signs[j] = 1
		for ip := P.Ap[j]; ip < P.Ap[j+1]; ip++ {
			pos := put(j, P.Ai[ip], P.Ax[ip])
			maps.P[ip] = pos
			if P.Ai[ip] == j {
				maps.Diag[j] = pos
			}
		}
		if !pHasDiag[j] {
			maps.Diag[j] = put(j, j, 0)
		}
		K.Ax[maps.Diag[j]] += set.Reg()
	}

	// Aᵀ block: entry (i,j) of A lands in column n+i, row j; traversing A
	// column-wise keeps the rows of each K column sorted
	for j := 0; j < A.N; j++ {
		for ip := A.Ap[j]; ip < A.Ap[j+1]; ip++ {
			maps.A[ip] = put(n+A.Ai[ip], j, A.Ax[ip])
		}
	}

	// cone scaling blocks and second-order extensions
	socIdx = 0
	for ci, c := range cones.Kinds {
		r0 := cones.Spans[ci]
		d := c.Dim()
		if c.HsIsDiagonal() {
			idx := make([]int, d)
			for l := 0; l < d; l++ {
				g := n + r0 + l
				signs[g] = -1
				idx[l] = put(g, g, 0)
				maps.Diag[g] = idx[l]
			}
			maps.Hs = append(maps.Hs, idx)
		} else {
			idx := make([]int, d*(d+1)/2)
			k := 0
			for lj := 0; lj < d; lj++ {
				g := n + r0 + lj
				signs[g] = -1
				for li := 0; li <= lj; li++ {
					idx[k] = put(g, n+r0+li, 0)
					if li == lj {
						maps.Diag[g] = idx[k]
					}
					k++
				}
			}
			maps.Hs = append(maps.Hs, idx)
		}
		if _, issoc := c.(*cone.Soc); issoc {
			cv := n + m + 2*socIdx
			cu := cv + 1
			vIdx := make([]int, d)
			uIdx := make([]int, d)
			for l := 0; l < d; l++ {
				vIdx[l] = put(cv, n+r0+l, 0)
			}
			dv := put(cv, cv, 0)
			for l := 0; l < d; l++ {
				uIdx[l] = put(cu, n+r0+l, 0)
			}
			du := put(cu, cu, 0)
			maps.Diag[cv] = dv
			maps.Diag[cu] = du
			signs[cv] = -1
			signs[cu] = 1
			maps.SocV = append(maps.SocV, vIdx)
			maps.SocU = append(maps.SocU, uIdx)
			maps.SocD = append(maps.SocD, [2]int{dv, du})
			socIdx++
		}
	}
	return
}
