// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kkt

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/goconic/inp"
)

// LdlSolver is a pure-Go simplicial LDLᵀ factoriser for upper-triangular
// quasi-definite matrices, in the up-looking style of QDLDL: the elimination
// tree fixes the symbolic structure once, and numeric refactorisations reuse
// it. No pivoting is performed; static regularisation keeps the pivots away
// from zero.
type LdlSolver struct {
	n     int
	K     *Matrix
	signs []float64

	// symbolic
	parent []int // elimination tree
	lnz    []int // column counts of L
	lp     []int
	li     []int

	// numeric
	lx   []float64
	d    []float64
	dinv []float64

	// workspaces
	ytmp    []float64
	yidx    []int
	elim    []int
	nextpos []int
	marker  []bool
}

// set factory
func init() {
	solverallocators["ldl"] = func() LinSolver { return new(LdlSolver) }
}

// InitR performs the symbolic analysis of the upper triangle of K
func (o *LdlSolver) InitR(K *Matrix, signs []float64, set *inp.Settings) (err error) {
	o.n = K.N
	o.K = K
	o.signs = signs
	o.parent = make([]int, o.n)
	o.lnz = make([]int, o.n)
	work := make([]int, o.n)
	for i := 0; i < o.n; i++ {
		o.parent[i] = -1
		work[i] = -1
	}

	// elimination tree and column counts
	for j := 0; j < o.n; j++ {
		work[j] = j
		hasDiag := false
		for p := K.Ap[j]; p < K.Ap[j+1]; p++ {
			i := K.Ai[p]
			if i > j {
				return chk.Err("KKT matrix must be upper triangular. entry (%d,%d) is invalid", i, j)
			}
			if i == j {
				hasDiag = true
				continue
			}
			for work[i] != j {
				if o.parent[i] == -1 {
					o.parent[i] = j
				}
				o.lnz[i]++
				work[i] = j
				i = o.parent[i]
			}
		}
		if !hasDiag {
			return chk.Err("KKT matrix is missing diagonal entry (%d,%d)", j, j)
		}
	}

	// allocate L and workspaces
	o.lp = make([]int, o.n+1)
	for i := 0; i < o.n; i++ {
		o.lp[i+1] = o.lp[i] + o.lnz[i]
	}
	nnzl := o.lp[o.n]
	o.li = make([]int, nnzl)
	o.lx = make([]float64, nnzl)
	o.d = make([]float64, o.n)
	o.dinv = make([]float64, o.n)
	o.ytmp = make([]float64, o.n)
	o.yidx = make([]int, o.n)
	o.elim = make([]int, o.n)
	o.nextpos = make([]int, o.n)
	o.marker = make([]bool, o.n)
	return
}

// Fact performs the numeric factorisation reading the current values of K
func (o *LdlSolver) Fact() (err error) {
	K := o.K
	copy(o.nextpos, o.lp[:o.n])
	for i := 0; i < o.n; i++ {
		o.ytmp[i] = 0
		o.marker[i] = false
	}

	for k := 0; k < o.n; k++ {

		// scatter column k of K and collect the elimination set by
		// walking the etree up to k
		nnzy := 0
		for p := K.Ap[k]; p < K.Ap[k+1]; p++ {
			b := K.Ai[p]
			if b == k {
				o.d[k] = K.Ax[p]
				continue
			}
			o.ytmp[b] = K.Ax[p]
			next := b
			if !o.marker[next] {
				o.marker[next] = true
				o.elim[0] = next
				nnze := 1
				next = o.parent[next]
				for next != -1 && next < k && !o.marker[next] {
					o.marker[next] = true
					o.elim[nnze] = next
					nnze++
					next = o.parent[next]
				}
				for nnze > 0 {
					nnze--
					o.yidx[nnzy] = o.elim[nnze]
					nnzy++
				}
			}
		}

		// eliminate in reverse topological order
		for i := nnzy - 1; i >= 0; i-- {
			c := o.yidx[i]
			yv := o.ytmp[c]
			top := o.nextpos[c]
			for j := o.lp[c]; j < top; j++ {
				o.ytmp[o.li[j]] -= o.lx[j] * yv
			}
			o.li[top] = k
			o.lx[top] = yv * o.dinv[c]
			o.d[k] -= yv * o.lx[top]
			o.nextpos[c]++
			o.ytmp[c] = 0
			o.marker[c] = false
		}

		if o.d[k] == 0 || math.IsNaN(o.d[k]) {
			return chk.Err("LDLᵀ factorisation failed: pivot %d is %v", k, o.d[k])
		}
		o.dinv[k] = 1 / o.d[k]
	}
	return
}

// SolveR solves K x = b using the current factors
func (o *LdlSolver) SolveR(x, b []float64) error {
	copy(x, b)
	for i := 0; i < o.n; i++ {
		xi := x[i]
		for p := o.lp[i]; p < o.lp[i+1]; p++ {
			x[o.li[p]] -= o.lx[p] * xi
		}
	}
	for i := 0; i < o.n; i++ {
		x[i] *= o.dinv[i]
	}
	for i := o.n - 1; i >= 0; i-- {
		for p := o.lp[i]; p < o.lp[i+1]; p++ {
			x[i] -= o.lx[p] * x[o.li[p]]
		}
	}
	return nil
}
