// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import (
	"math"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"

	"github.com/cpmech/goconic/cone"
	"github.com/cpmech/goconic/inp"
	"github.com/cpmech/goconic/kkt"
)

// Solver drives the Mehrotra predictor-corrector iteration over the
// homogeneous embedding. It owns the variables, the residuals, the cone set
// and the KKT system; all workspaces are allocated at construction.
type Solver struct {

	// problem and configuration
	Prob  *Problem
	Set   *inp.Settings
	Cones *cone.Cones
	Sys   *kkt.System

	// state
	Vars *Vars
	Res  *Residuals

	// CancelFcn, when given, is polled between outer iterations; returning
	// true stops the solve with a TimeLimit status, or AlmostSolved when
	// the reduced tolerances already hold
	CancelFcn func() bool

	// step workspaces
	stepAff *Step
	stepCmb *Step
	dsRhs   []float64 // complementarity RHS: λ∘λ, then the combined shift added
	shift   []float64
	rxC     []float64 // (1−σ)-scaled combined residual parts
	rzC     []float64

	// derived
	normQ  float64
	normB  float64
	allSym bool
}

// New builds a solver for the given problem and settings
func New(prob *Problem, set *inp.Settings) (o *Solver, err error) {
	err = set.PostProcess()
	if err != nil {
		return
	}
	cones, err := cone.New(prob.Specs)
	if err != nil {
		return
	}
	if cones.M != prob.M {
		return nil, chk.Err("cone dimensions sum to %d but A has %d rows", cones.M, prob.M)
	}
	o = new(Solver)
	o.Prob = prob
	o.Set = set
	o.Cones = cones
	o.Sys, err = kkt.NewSystem(prob.P, prob.A, prob.Q, prob.B, cones, set)
	if err != nil {
		return nil, err
	}
	o.Vars = NewVars(prob.N, prob.M)
	o.Res = NewResiduals(prob.N, prob.M)
	o.stepAff = NewStep(prob.N, prob.M)
	o.stepCmb = NewStep(prob.N, prob.M)
	o.dsRhs = make([]float64, prob.M)
	o.shift = make([]float64, prob.M)
	o.rxC = make([]float64, prob.N)
	o.rzC = make([]float64, prob.M)
	o.normQ = la.VecLargest(prob.Q, 1)
	o.normB = la.VecLargest(prob.B, 1)
	o.allSym = true
	for _, c := range cones.Kinds {
		if !c.IsSymmetric() {
			o.allSym = false
		}
	}
	return
}

// init computes the starting point: unit cone initialisation fixes the first
// scaling, then two linear solves give (x, s, z), shifted into the interior
func (o *Solver) init() Status {
	la.VecFill(o.Vars.X, 0)
	o.Vars.Tau = 1
	o.Vars.Kap = 1
	o.Cones.UnitInit(o.Vars.S, o.Vars.Z)
	mu := o.Vars.Mu(o.Cones.Nu)
	if !o.Cones.UpdateScaling(o.Vars.S, o.Vars.Z, mu) {
		return NumericalError
	}
	if o.Sys.Update() != nil {
		return NumericalError
	}
	if o.Sys.SolveInitial(o.Vars.X, o.Vars.S, o.Vars.Z) != nil {
		return NumericalError
	}
	o.Cones.ShiftInit(o.Vars.S, o.Vars.Z)
	return Solving
}

// convergent tests the primal, dual and gap criteria at the given tolerances
func (o *Solver) convergent(epsabs, epsrel float64) bool {
	r := o.Res
	tau := o.Vars.Tau
	cp := (r.Qx + 0.5*r.XPx/tau) / tau
	cd := -(r.Bz + 0.5*r.XPx/tau) / tau
	gap := math.Abs(cp - cd)
	okp := r.NormRz/tau <= epsabs+epsrel*(1+o.normB)
	okd := r.NormRx/tau <= epsabs+epsrel*(1+o.normQ)
	okg := gap <= epsabs+epsrel*math.Max(1, math.Max(math.Abs(cp), math.Abs(cd)))
	return okp && okd && okg
}

// checkTermination maps the current residuals to a terminal status, or
// Solving to continue
func (o *Solver) checkTermination() Status {
	r := o.Res
	if math.IsNaN(r.Rtau) || math.IsNaN(r.Sz) || math.IsNaN(o.Vars.Tau) {
		return NumericalError
	}
	if o.Vars.Tau <= 0 || o.Vars.Kap < 0 {
		return NumericalError
	}
	if o.convergent(o.Set.EpsAbs, o.Set.EpsRel) {
		return Solved
	}
	if r.Bz < 0 && r.NormAtz <= o.Set.EpsInfeasible*(-r.Bz) {
		return PrimalInfeasible
	}
	if r.Qx < 0 && r.NormPx <= o.Set.EpsInfeasible*(-r.Qx) && r.NormRzInf <= o.Set.EpsInfeasible*(-r.Qx) {
		return DualInfeasible
	}
	return Solving
}

// finishStatus downgrades a non-optimal exit to AlmostSolved when the
// reduced tolerance band is already satisfied
func (o *Solver) finishStatus(fallback Status) Status {
	if o.convergent(o.Set.ReducedEpsAbs, o.Set.ReducedEpsRel) {
		return AlmostSolved
	}
	return fallback
}

// maxStep returns the largest feasible step for direction d, from the cone
// step lengths and the scalar ratio tests on τ and κ, capped at one
func (o *Solver) maxStep(d *Step) float64 {
	a := o.Cones.StepLength(d.Z, d.S, o.Vars.Z, o.Vars.S, 1.0)
	if d.Tau < 0 {
		if r := -o.Vars.Tau / d.Tau; r < a {
			a = r
		}
	}
	if d.Kap < 0 {
		if r := -o.Vars.Kap / d.Kap; r < a {
			a = r
		}
	}
	return a
}

// Solve runs the interior-point iteration until a terminal status
func (o *Solver) Solve() (sol *Solution) {
	t0 := time.Now()
	status := o.init()
	iter := 0
	if o.Set.Verbose {
		io.Pf("%4s%15s%15s%15s%15s%15s%8s\n", "it", "mu", "res_p", "res_d", "gap", "step", "sigma")
	}

	for status == Solving {

		// residuals and centrality at the loop head reflect the current
		// variables; the cone scaling below reflects the same variables
		o.Res.Update(o.Vars, o.Prob)
		mu := o.Vars.Mu(o.Cones.Nu)

		// termination
		status = o.checkTermination()
		if status != Solving {
			break
		}
		if iter >= o.Set.MaxIter {
			status = o.finishStatus(MaxIters)
			break
		}
		if o.Set.TimeLimit > 0 && time.Since(t0).Seconds() > o.Set.TimeLimit {
			status = o.finishStatus(TimeLimit)
			break
		}
		if o.CancelFcn != nil && o.CancelFcn() {
			status = o.finishStatus(TimeLimit)
			break
		}
		iter++

		// cone scalings from (s, z, μ)
		if mu <= 0 || math.IsNaN(mu) {
			status = NumericalError
			break
		}
		if !o.Cones.UpdateScaling(o.Vars.S, o.Vars.Z, mu) {
			status = NumericalError
			break
		}
		if o.Sys.Update() != nil {
			status = NumericalError
			break
		}

		// predictor (affine step)
		o.Cones.AffineDs(o.dsRhs, o.Vars.S)
		err := o.Sys.SolveStep(o.stepAff.X, o.stepAff.Z, o.stepAff.S, &o.stepAff.Tau, &o.stepAff.Kap,
			o.Res.Rx, o.Res.Rz, o.dsRhs, o.Res.Rtau, o.Vars.Tau*o.Vars.Kap,
			o.Vars.X, o.Vars.S, o.Vars.Z, o.Vars.Tau, o.Vars.Kap, true)
		if err != nil {
			status = NumericalError
			break
		}
		alphaAff := o.maxStep(o.stepAff)

		// Mehrotra centering
		sigma := (1 - alphaAff) * (1 - alphaAff) * (1 - alphaAff)
		if sigma > 1 {
			sigma = 1
		}
		if sigma < 0 {
			sigma = 0
		}
		sm := sigma * mu

		// corrector (combined step)
		o.Cones.CombinedDsShift(o.shift, o.stepAff.Z, o.stepAff.S, sm)
		la.VecAdd(o.dsRhs, 1, o.shift)
		la.VecCopy(o.rxC, 1-sigma, o.Res.Rx)
		la.VecCopy(o.rzC, 1-sigma, o.Res.Rz)
		rkap := o.Vars.Tau*o.Vars.Kap - sm + o.stepAff.Tau*o.stepAff.Kap
		err = o.Sys.SolveStep(o.stepCmb.X, o.stepCmb.Z, o.stepCmb.S, &o.stepCmb.Tau, &o.stepCmb.Kap,
			o.rxC, o.rzC, o.dsRhs, (1-sigma)*o.Res.Rtau, rkap,
			o.Vars.X, o.Vars.S, o.Vars.Z, o.Vars.Tau, o.Vars.Kap, false)
		if err != nil {
			status = NumericalError
			break
		}

		// step length; asymmetric cones additionally require a finite
		// barrier at the tentative point
		alpha := o.maxStep(o.stepCmb) * o.Set.MaxStepFraction
		if !o.allSym {
			for alpha >= o.Set.MinStepLength {
				bar := o.Cones.ComputeBarrier(o.Vars.Z, o.Vars.S, o.stepCmb.Z, o.stepCmb.S, alpha)
				if bar < 1e299 && !math.IsNaN(bar) {
					break
				}
				alpha *= o.Set.BacktrackStep
			}
		}
		if alpha < o.Set.MinStepLength {
			status = o.finishStatus(InsufficientProgress)
			break
		}

		if o.Set.Verbose {
			cp := (o.Res.Qx + 0.5*o.Res.XPx/o.Vars.Tau) / o.Vars.Tau
			cd := -(o.Res.Bz + 0.5*o.Res.XPx/o.Vars.Tau) / o.Vars.Tau
			io.Pf("%4d%15.6e%15.6e%15.6e%15.6e%15.6e%8.3f\n", iter, mu,
				o.Res.NormRz/o.Vars.Tau, o.Res.NormRx/o.Vars.Tau, math.Abs(cp-cd), alpha, sigma)
		}

		// advance all variables together
		o.Vars.AddStep(o.stepCmb, alpha)
	}

	sol = newSolution(o.Vars, o.Res, status, iter, time.Now().Sub(t0))
	if o.Set.Verbose {
		io.Pf("status = %v  iterations = %d\n", status, iter)
	}
	return
}
