// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kkt

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/goconic/inp"
)

// quasi-definite test matrix (upper triangle); D signs are (+, +, −, −)
var ldlTestDense = [][]float64{
	{4, 1, 2, 0},
	{1, 3, 0, 1},
	{2, 0, -2, 0.5},
	{0, 1, 0.5, -3},
}

func Test_ldl01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ldl01. sparse LDLᵀ against the dense backend")

	K := TriuFromDense(ldlTestDense)
	signs := []float64{1, 1, -1, -1}
	set := new(inp.Settings)
	set.SetDefault()

	b := []float64{1, -2, 0.5, 3}
	x1 := make([]float64, 4)
	x2 := make([]float64, 4)

	for name, x := range map[string][]float64{"ldl": x1, "dense": x2} {
		sol, err := GetSolver(name)
		if err != nil {
			tst.Errorf("test failed: %v\n", err)
			return
		}
		err = sol.InitR(K, signs, set)
		if err != nil {
			tst.Errorf("test failed: %v\n", err)
			return
		}
		err = sol.Fact()
		if err != nil {
			tst.Errorf("test failed: %v\n", err)
			return
		}
		err = sol.SolveR(x, b)
		if err != nil {
			tst.Errorf("test failed: %v\n", err)
			return
		}
	}
	chk.Vector(tst, "x ldl vs dense", 1e-12, x1, x2)

	// the residual of the sparse solve vanishes
	r := make([]float64, 4)
	copy(r, b)
	K.SymMulAdd(r, -1, x1)
	chk.Vector(tst, "residual", 1e-12, r, []float64{0, 0, 0, 0})
}

func Test_ldl02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ldl02. repeated refactorisation with new values")

	K := TriuFromDense(ldlTestDense)
	signs := []float64{1, 1, -1, -1}
	set := new(inp.Settings)
	set.SetDefault()
	sol, err := GetSolver("ldl")
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	err = sol.InitR(K, signs, set)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	b := []float64{0.3, 1, -1, 2}
	x := make([]float64, 4)
	r := make([]float64, 4)
	for _, scale := range []float64{1, 2.5, 0.1} {
		for p := 0; p < K.Nnz(); p++ {
			K.Ax[p] *= scale
		}
		err = sol.Fact()
		if err != nil {
			tst.Errorf("test failed: %v\n", err)
			return
		}
		err = sol.SolveR(x, b)
		if err != nil {
			tst.Errorf("test failed: %v\n", err)
			return
		}
		copy(r, b)
		K.SymMulAdd(r, -1, x)
		chk.Vector(tst, "residual", 1e-11, r, []float64{0, 0, 0, 0})
	}
}

func Test_ldl03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ldl03. singular matrix is refused")

	// the (1,1) pivot vanishes after eliminating the first column
	K := TriuFromDense([][]float64{
		{1, 1, 0},
		{1, 1, 0},
		{0, 0, 1},
	})
	signs := []float64{1, -1, -1}
	set := new(inp.Settings)
	set.SetDefault()
	sol, _ := GetSolver("ldl")
	err := sol.InitR(K, signs, set)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	err = sol.Fact()
	if err == nil {
		tst.Errorf("test failed: zero pivot must be refused\n")
	}
}
