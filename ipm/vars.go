// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import "github.com/cpmech/gosl/la"

// Vars holds the augmented homogeneous variables (x, s, z, τ, κ). Throughout
// the iteration τ and κ stay positive and (s, z) stay in the interiors of
// the cone product and its dual.
type Vars struct {
	X   []float64
	S   []float64
	Z   []float64
	Tau float64
	Kap float64
}

// NewVars allocates variables for n primal entries and m cone rows
func NewVars(n, m int) (o *Vars) {
	o = new(Vars)
	o.X = make([]float64, n)
	o.S = make([]float64, m)
	o.Z = make([]float64, m)
	o.Tau = 1
	o.Kap = 1
	return
}

// Mu returns the centrality parameter (sᵀz + τκ)/(ν+1)
func (o *Vars) Mu(nu int) float64 {
	return (la.VecDot(o.S, o.Z) + o.Tau*o.Kap) / float64(nu+1)
}

// Step holds a direction of the augmented variables
type Step struct {
	X   []float64
	S   []float64
	Z   []float64
	Tau float64
	Kap float64
}

// NewStep allocates a direction for n primal entries and m cone rows
func NewStep(n, m int) (o *Step) {
	o = new(Step)
	o.X = make([]float64, n)
	o.S = make([]float64, m)
	o.Z = make([]float64, m)
	return
}

// AddStep advances the variables atomically: v += α d
func (o *Vars) AddStep(d *Step, alpha float64) {
	la.VecAdd(o.X, alpha, d.X)
	la.VecAdd(o.S, alpha, d.S)
	la.VecAdd(o.Z, alpha, d.Z)
	o.Tau += alpha * d.Tau
	o.Kap += alpha * d.Kap
}
