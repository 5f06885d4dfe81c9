// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kkt

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/goconic/cone"
	"github.com/cpmech/goconic/inp"
)

// kktTestProblem builds a small problem with one equality row and one
// second-order cone: n = 2, m = 3, p = 2
func kktTestProblem(tst *testing.T) (P, A *Matrix, cones *cone.Cones, set *inp.Settings) {
	P = TriuFromDense([][]float64{
		{2, 0.5},
		{0.5, 1},
	})
	A = FromDense([][]float64{
		{1, 1},
		{-1, 0},
		{0, -1},
	})
	var err error
	cones, err = cone.New([]*cone.Spec{
		{Kind: "zero", Dim: 1},
		{Kind: "soc", Dim: 2},
	})
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	set = new(inp.Settings)
	set.SetDefault()
	return
}

func Test_assemble01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("assemble01. pattern, signs and index maps")

	P, A, cones, set := kktTestProblem(tst)
	K, maps, signs, err := Assemble(P, A, cones, set)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	// order n+m+p and expected D signs
	chk.Scalar(tst, "N", 1e-17, float64(K.N), 7)
	chk.Vector(tst, "signs", 1e-17, signs, []float64{1, 1, -1, -1, -1, -1, 1})

	// every diagonal position addresses a true diagonal entry
	for i, pos := range maps.Diag {
		if K.Ai[pos] != i {
			tst.Errorf("test failed: Diag[%d] points at row %d\n", i, K.Ai[pos])
			return
		}
	}

	// the P slots carry P (+ε on the diagonal) and the A slots carry A
	eps := set.StaticRegEps
	chk.Scalar(tst, "K[P00]", 1e-17, K.Ax[maps.P[0]], 2+eps)
	chk.Scalar(tst, "K[P01]", 1e-17, K.Ax[maps.P[1]], 0.5)
	chk.Scalar(tst, "K[P11]", 1e-17, K.Ax[maps.P[2]], 1+eps)
	for ip := 0; ip < A.Nnz(); ip++ {
		chk.Scalar(tst, "K[A]", 1e-17, K.Ax[maps.A[ip]], A.Ax[ip])
	}

	// update idempotence: rewriting the currently stored values is a no-op
	vals := make([]float64, len(maps.P))
	for k, ix := range maps.P {
		vals[k] = K.Ax[ix]
	}
	before := make([]float64, len(K.Ax))
	copy(before, K.Ax)
	K.UpdateValues(maps.P, vals)
	chk.Vector(tst, "idempotence", 1e-17, K.Ax, before)

	// scale and offset round-trip on the A slots
	K.ScaleValues(maps.A, 2)
	chk.Scalar(tst, "scaled", 1e-17, K.Ax[maps.A[0]], 2*A.Ax[0])
	K.ScaleValues(maps.A, 0.5)
	ones := make([]float64, len(maps.A))
	for k := range ones {
		ones[k] = 1
	}
	K.OffsetValues(maps.A, 0.25, ones)
	K.OffsetValues(maps.A, -0.25, ones)
	chk.Vector(tst, "restored", 1e-17, K.Ax, before)
}

func Test_system01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("system01. refined solve hits the true residual")

	P, A, cones, set := kktTestProblem(tst)
	q := []float64{1, -0.5}
	b := []float64{1, 0, 0}
	sys, err := NewSystem(P, A, q, b, cones, set)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	// scale the cones at an off-centre interior pair
	svec := []float64{0, 2, 0.5}
	zvec := []float64{0, 1.5, -0.2}
	if !cones.UpdateScaling(svec, zvec, 1) {
		tst.Errorf("test failed: scaling update rejected a feasible pair\n")
		return
	}
	err = sys.Update()
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	// refined solve satisfies the symmetric-view residual bound
	rhs := []float64{0.3, -1, 0.7, 0.2, 1.1, 0, 0}
	x := make([]float64, 7)
	err = sys.solveRefined(x, rhs)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	enorm := sys.refineResidual(sys.ework, x, rhs, set.Reg())
	if enorm > 1e-9 {
		tst.Errorf("test failed: refined residual %g is too large\n", enorm)
	}
}

func Test_system02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("system02. sparsified SOC block matches the dense Hessian")

	P, A, cones, set := kktTestProblem(tst)
	q := []float64{1, -0.5}
	b := []float64{1, 0, 0}
	sys, err := NewSystem(P, A, q, b, cones, set)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	svec := []float64{0, 2, 0.5}
	zvec := []float64{0, 1.5, -0.2}
	cones.UpdateScaling(svec, zvec, 1)
	err = sys.Update()
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	// dense reduced reference [P Aᵀ; A −Hs] without regularisation: the
	// refined solve converges to the solution of the true matrix
	n, m := 2, 3
	red := mat.NewDense(n+m, n+m, nil)
	red.Set(0, 0, 2)
	red.Set(0, 1, 0.5)
	red.Set(1, 0, 0.5)
	red.Set(1, 1, 1)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var v float64
			switch {
			case i == 0:
				v = []float64{1, 1}[j]
			case i == 1:
				v = []float64{-1, 0}[j]
			default:
				v = []float64{0, -1}[j]
			}
			red.Set(n+i, j, v)
			red.Set(j, n+i, v)
		}
	}
	ei := make([]float64, m)
	hcol := make([]float64, m)
	for j := 0; j < m; j++ {
		for k := range ei {
			ei[k] = 0
		}
		ei[j] = 1
		for i := range cones.Kinds {
			cones.Kinds[i].MulHs(cones.Blk(hcol, i), cones.Blk(ei, i), nil)
		}
		for i := 0; i < m; i++ {
			red.Set(n+i, n+j, -hcol[i])
		}
	}

	rhs := []float64{0.3, -1, 0.7, 0.2, 1.1}
	var lu mat.LU
	lu.Factorize(red)
	ref := mat.NewVecDense(n+m, nil)
	err = lu.SolveVecTo(ref, false, mat.NewVecDense(n+m, rhs))
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	// the extended sparse system gives the same (x, z)
	full := make([]float64, 7)
	copy(full, rhs)
	x := make([]float64, 7)
	err = sys.solveRefined(x, full)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	for i := 0; i < n+m; i++ {
		chk.Scalar(tst, "x", 1e-7, x[i], ref.AtVec(i))
	}
}
