// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kkt

import (
	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/goconic/inp"
)

// DenseSolver mirrors K into a dense matrix and factorises it with a pivoted
// LU from gonum. It serves small problems and cross-checks of the sparse
// LDLᵀ backend; the quasi-definite structure is not exploited.
type DenseSolver struct {
	n  int
	K  *Matrix
	a  *mat.Dense
	lu mat.LU
	xv *mat.VecDense
}

// set factory
func init() {
	solverallocators["dense"] = func() LinSolver { return new(DenseSolver) }
}

// InitR stores the reference to K and allocates the mirror
func (o *DenseSolver) InitR(K *Matrix, signs []float64, set *inp.Settings) error {
	o.n = K.N
	o.K = K
	o.a = mat.NewDense(o.n, o.n, nil)
	o.xv = mat.NewVecDense(o.n, nil)
	return nil
}

// Fact rebuilds the symmetric dense mirror and factorises it
func (o *DenseSolver) Fact() error {
	o.a.Zero()
	K := o.K
	for j := 0; j < o.n; j++ {
		for p := K.Ap[j]; p < K.Ap[j+1]; p++ {
			i := K.Ai[p]
			o.a.Set(i, j, K.Ax[p])
			if i != j {
				o.a.Set(j, i, K.Ax[p])
			}
		}
	}
	o.lu.Factorize(o.a)
	if o.lu.Cond() > 1e17 {
		return chk.Err("dense LU factorisation failed: matrix is numerically singular")
	}
	return nil
}

// SolveR solves K x = b using the current factors
func (o *DenseSolver) SolveR(x, b []float64) error {
	err := o.lu.SolveVecTo(o.xv, false, mat.NewVecDense(o.n, b))
	if err != nil {
		return chk.Err("dense LU solve failed:\n%v", err)
	}
	for i := 0; i < o.n; i++ {
		x[i] = o.xv.AtVec(i)
	}
	return nil
}
