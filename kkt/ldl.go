// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kkt

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/goconic/inp"
)

// LinSolver defines direct solvers of the quasi-definite KKT system. The
// backend keeps a reference to K set at InitR; Fact reads the current values
// and must accept repeated refactorisations with the same pattern.
type LinSolver interface {
	InitR(K *Matrix, signs []float64, set *inp.Settings) error // symbolic initialisation
	Fact() error                                               // numeric (re)factorisation
	SolveR(x, b []float64) error                               // solve K x = b
}

// solverallocators holds all available direct solvers
var solverallocators = make(map[string]func() LinSolver)

// GetSolver allocates a direct solver by name
func GetSolver(name string) (LinSolver, error) {
	alloc, ok := solverallocators[name]
	if !ok {
		return nil, chk.Err("cannot find direct solver named %q", name)
	}
	return alloc(), nil
}
