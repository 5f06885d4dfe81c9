// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import (
	"math"
	"time"

	"github.com/cpmech/gosl/la"
)

// Solution holds the result of a solve with the homogenisation undone. For
// infeasible statuses X or Y carry the normalised certificate instead of a
// solution and the complementary fields are NaN.
type Solution struct {
	X         []float64     // primal variables
	Y         []float64     // dual variables (= z)
	S         []float64     // constraint slacks
	Status    Status        // termination status
	Iter      int           // number of interior-point iterations
	ObjVal    float64       // primal objective at X
	ObjValD   float64       // dual objective
	Gap       float64       // absolute duality gap
	ResPrimal float64       // primal residual norm
	ResDual   float64       // dual residual norm
	Time      time.Duration // wall-clock time of the solve
}

// newSolution extracts the solution from the final iterate
func newSolution(v *Vars, res *Residuals, status Status, iter int, elapsed time.Duration) (o *Solution) {
	o = new(Solution)
	o.X = la.VecClone(v.X)
	o.Y = la.VecClone(v.Z)
	o.S = la.VecClone(v.S)
	o.Status = status
	o.Iter = iter
	o.Time = elapsed

	nan := math.NaN()
	switch status {
	case PrimalInfeasible:
		// y is a certificate: Aᵀy ≈ 0, bᵀy < 0, normalised to bᵀy = −1
		scale := -1.0 / res.Bz
		la.VecCopy(o.Y, scale, v.Z)
		la.VecCopy(o.S, scale, v.S)
		la.VecFill(o.X, nan)
		o.ObjVal, o.ObjValD, o.Gap = nan, nan, nan
	case DualInfeasible:
		// x is a certificate: Px ≈ 0, Ax + s ≈ 0, qᵀx < 0, normalised to qᵀx = −1
		scale := -1.0 / res.Qx
		la.VecCopy(o.X, scale, v.X)
		la.VecCopy(o.S, scale, v.S)
		la.VecFill(o.Y, nan)
		o.ObjVal, o.ObjValD, o.Gap = nan, nan, nan
	default:
		la.VecCopy(o.X, 1/v.Tau, v.X)
		la.VecCopy(o.Y, 1/v.Tau, v.Z)
		la.VecCopy(o.S, 1/v.Tau, v.S)
		half := 0.5 * res.XPx / (v.Tau * v.Tau)
		o.ObjVal = res.Qx/v.Tau + half
		o.ObjValD = -res.Bz/v.Tau - half
		o.Gap = math.Abs(o.ObjVal - o.ObjValD)
		o.ResPrimal = res.NormRz / v.Tau
		o.ResDual = res.NormRx / v.Tau
	}
	return
}
