// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements settings structures for the conic solver
package inp

import (
	"github.com/cpmech/gosl/chk"
)

// Settings holds all parameters controlling the interior-point solver
type Settings struct {

	// outer loop
	MaxIter   int     `json:"maxiter"`   // maximum number of interior-point iterations
	TimeLimit float64 `json:"timelimit"` // wall-clock limit [s]; 0 means no limit
	Verbose   bool    `json:"verbose"`   // print per-iteration residual table

	// convergence tolerances
	EpsAbs        float64 `json:"epsabs"`        // absolute residual tolerance
	EpsRel        float64 `json:"epsrel"`        // relative residual tolerance
	EpsInfeasible float64 `json:"epsinfeasible"` // infeasibility certificate threshold
	ReducedEpsAbs float64 `json:"redepsabs"`     // absolute tolerance of the AlmostSolved band
	ReducedEpsRel float64 `json:"redepsrel"`     // relative tolerance of the AlmostSolved band

	// static regularisation
	StaticRegEnable bool    `json:"staticreg"`    // enable static regularisation of the KKT matrix
	StaticRegEps    float64 `json:"staticregeps"` // magnitude ε of the diagonal perturbation

	// iterative refinement
	RefineEnable    bool    `json:"refine"`          // enable iterative refinement of KKT solves
	RefineRelTol    float64 `json:"refinereltol"`    // relative residual tolerance
	RefineAbsTol    float64 `json:"refineabstol"`    // absolute residual tolerance
	RefineMaxIter   int     `json:"refinemaxiter"`   // maximum refinement passes per solve
	RefineStopRatio float64 `json:"refinestopratio"` // minimum residual reduction ratio to continue

	// line search
	BacktrackStep   float64 `json:"backtrackstep"`   // geometric reduction factor of the barrier backtracking
	MinStepLength   float64 `json:"minsteplength"`   // step length below which the iteration terminates
	MaxStepFraction float64 `json:"maxstepfraction"` // fraction of the maximum cone step taken

	// linear solver
	DirectSolveMethod string `json:"linsol"` // direct solver kind: "ldl" or "dense"
}

// SetDefault sets default values
func (o *Settings) SetDefault() {
	o.MaxIter = 200
	o.TimeLimit = 0
	o.EpsAbs = 1e-8
	o.EpsRel = 1e-8
	o.EpsInfeasible = 1e-8
	o.ReducedEpsAbs = 1e-5
	o.ReducedEpsRel = 1e-5
	o.StaticRegEnable = true
	o.StaticRegEps = 1e-8
	o.RefineEnable = true
	o.RefineRelTol = 1e-10
	o.RefineAbsTol = 1e-12
	o.RefineMaxIter = 10
	o.RefineStopRatio = 2.0
	o.BacktrackStep = 0.8
	o.MinStepLength = 1e-4
	o.MaxStepFraction = 0.99
	o.DirectSolveMethod = "ldl"
}

// PostProcess validates settings; the derived regularisation magnitude is
// given by Reg
func (o *Settings) PostProcess() (err error) {
	if o.MaxIter < 1 {
		return chk.Err("maxiter must be at least 1. maxiter=%d is invalid", o.MaxIter)
	}
	if o.EpsAbs <= 0 || o.EpsRel <= 0 {
		return chk.Err("convergence tolerances must be positive. epsabs=%g, epsrel=%g", o.EpsAbs, o.EpsRel)
	}
	if o.BacktrackStep <= 0 || o.BacktrackStep >= 1 {
		return chk.Err("backtrackstep must be within (0,1). backtrackstep=%g is invalid", o.BacktrackStep)
	}
	if o.MaxStepFraction <= 0 || o.MaxStepFraction > 1 {
		return chk.Err("maxstepfraction must be within (0,1]. maxstepfraction=%g is invalid", o.MaxStepFraction)
	}
	if o.StaticRegEnable && o.StaticRegEps <= 0 {
		return chk.Err("staticregeps must be positive when static regularisation is enabled. staticregeps=%g", o.StaticRegEps)
	}
	if o.RefineStopRatio <= 1 {
		return chk.Err("refinestopratio must be greater than 1. refinestopratio=%g is invalid", o.RefineStopRatio)
	}
	return
}

// Reg returns the static regularisation magnitude; zero if disabled
func (o *Settings) Reg() float64 {
	if o.StaticRegEnable {
		return o.StaticRegEps
	}
	return 0
}
