// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ipm implements the homogeneous self-dual interior-point iteration
// for convex quadratic conic programs
//
//	minimize    (1/2) xᵀP x + qᵀx
//	subject to  A x + s = b,  s ∈ K
//
// where K is a Cartesian product of the cones implemented in package cone.
package ipm

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/cpmech/goconic/cone"
	"github.com/cpmech/goconic/kkt"
)

// Problem holds the immutable problem data. P keeps only the upper triangle;
// compressed column copies (P symmetrised) are kept for the residual
// products, with the matrices rebuilt once at construction.
type Problem struct {

	// input data
	P     *kkt.Matrix  // n×n upper triangle of the quadratic cost
	Q     []float64    // linear cost (length n)
	A     *kkt.Matrix  // m×n constraint matrix
	B     []float64    // constraint RHS (length m)
	Specs []*cone.Spec // ordered cone specification

	// derived
	N  int          // number of variables
	M  int          // number of constraint rows
	Pm *la.CCMatrix // compressed symmetric P for products
	Am *la.CCMatrix // compressed A for products
}

// NewProblem validates the data and builds the compressed copies
func NewProblem(P *kkt.Matrix, q []float64, A *kkt.Matrix, b []float64, specs []*cone.Spec) (o *Problem, err error) {
	err = P.CheckTriu("P")
	if err != nil {
		return
	}
	if len(q) != P.N {
		return nil, chk.Err("q must have length %d to match P. len(q)=%d", P.N, len(q))
	}
	if A.N != P.N {
		return nil, chk.Err("A must have %d columns. A is %d×%d", P.N, A.M, A.N)
	}
	if len(b) != A.M {
		return nil, chk.Err("b must have length %d to match A. len(b)=%d", A.M, len(b))
	}
	o = new(Problem)
	o.P = P
	o.Q = q
	o.A = A
	o.B = b
	o.Specs = specs
	o.N = P.N
	o.M = A.M

	// symmetrise P into a triplet and compress
	var tp la.Triplet
	tp.Init(o.N, o.N, max(2*P.Nnz(), 1))
	for j := 0; j < P.N; j++ {
		for ip := P.Ap[j]; ip < P.Ap[j+1]; ip++ {
			i := P.Ai[ip]
			tp.Put(i, j, P.Ax[ip])
			if i != j {
				tp.Put(j, i, P.Ax[ip])
			}
		}
	}
	o.Pm = tp.ToMatrix(nil)

	// compress A
	var ta la.Triplet
	ta.Init(o.M, o.N, max(A.Nnz(), 1))
	for j := 0; j < A.N; j++ {
		for ip := A.Ap[j]; ip < A.Ap[j+1]; ip++ {
			ta.Put(A.Ai[ip], j, A.Ax[ip])
		}
	}
	o.Am = ta.ToMatrix(nil)
	return
}
