// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kkt

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/cpmech/goconic/cone"
	"github.com/cpmech/goconic/inp"
)

// System owns the KKT matrix, the index maps and the factoriser, and
// implements the reduced solves of the interior-point iteration. All
// workspaces are allocated at construction; the hot path does not allocate.
type System struct {

	// data
	n, m, p int
	ntot    int // n + m + p
	P       *Matrix
	q, b    []float64
	cones   *cone.Cones
	set     *inp.Settings

	// matrix, maps and factoriser
	K     *Matrix
	maps  *Maps
	signs []float64
	lin   LinSolver

	// constant RHS cache, solution of K [x₂; z₂] = [−q; b]
	x2 []float64
	z2 []float64

	// workspaces
	hs     []float64 // cone scaling block scratch
	rhs    []float64 // full-size RHS
	lhs    []float64 // full-size LHS
	ework  []float64 // refinement residual
	dwork  []float64 // refinement correction
	xi     []float64 // ξ = x/τ, then ξ − x₂
	pwork  []float64 // P products
	wtlds  []float64 // Wᵀ(λ∖ds)
	mwork  []float64 // m-length scratch
	x2Px2  float64   // cached x₂ᵀPx₂
	qx2    float64   // cached qᵀx₂
	bz2    float64   // cached bᵀz₂
}

// NewSystem assembles K and initialises the direct solver
func NewSystem(P, A *Matrix, q, b []float64, cones *cone.Cones, set *inp.Settings) (o *System, err error) {
	o = new(System)
	o.n = P.N
	o.m = A.M
	o.p = 2 * cones.Nsoc
	o.ntot = o.n + o.m + o.p
	o.P = P
	o.q = q
	o.b = b
	o.cones = cones
	o.set = set
	o.K, o.maps, o.signs, err = Assemble(P, A, cones, set)
	if err != nil {
		return
	}
	o.lin, err = GetSolver(set.DirectSolveMethod)
	if err != nil {
		return
	}
	err = o.lin.InitR(o.K, o.signs, set)
	if err != nil {
		return
	}
	maxhs := 0
	for _, c := range cones.Kinds {
		if c.NumelHs() > maxhs {
			maxhs = c.NumelHs()
		}
	}
	o.hs = make([]float64, maxhs)
	o.x2 = make([]float64, o.n)
	o.z2 = make([]float64, o.m)
	o.rhs = make([]float64, o.ntot)
	o.lhs = make([]float64, o.ntot)
	o.ework = make([]float64, o.ntot)
	o.dwork = make([]float64, o.ntot)
	o.xi = make([]float64, o.n)
	o.pwork = make([]float64, o.n)
	o.wtlds = make([]float64, o.m)
	o.mwork = make([]float64, o.m)
	return
}

// Update overwrites the cone scaling slots of K with the current Hessian
// blocks, writes the second-order sparse expansions, re-applies the static
// regularisation of the trailing m+p diagonal, and refactorises
func (o *System) Update() (err error) {
	for ci, c := range o.cones.Kinds {
		nh := c.NumelHs()
		c.GetHsBlock(o.hs[:nh])
		la.VecCopy(o.hs[:nh], -1, o.hs[:nh])
		o.K.UpdateValues(o.maps.Hs[ci], o.hs[:nh])
	}
	socIdx := 0
	for _, c := range o.cones.Kinds {
		if soc, issoc := c.(*cone.Soc); issoc {
			eta2, u, v := soc.SparseExpansion()
			for l, iu := range o.maps.SocU[socIdx] {
				o.K.Ax[iu] = -eta2 * u[l]
			}
			for l, iv := range o.maps.SocV[socIdx] {
				o.K.Ax[iv] = -eta2 * v[l]
			}
			o.K.Ax[o.maps.SocD[socIdx][0]] = -eta2
			o.K.Ax[o.maps.SocD[socIdx][1]] = +eta2
			socIdx++
		}
	}
	if eps := o.set.Reg(); eps > 0 {
		o.K.OffsetValues(o.maps.Diag[o.n:], eps, o.signs[o.n:])
	}
	err = o.lin.Fact()
	if err != nil {
		return chk.Err("cannot refactorise KKT matrix:\n%v", err)
	}

	// refresh the constant RHS cache
	la.VecFill(o.rhs, 0)
	la.VecCopy(o.rhs[:o.n], -1, o.q)
	la.VecCopy(o.rhs[o.n:o.n+o.m], 1, o.b)
	err = o.solveRefined(o.lhs, o.rhs)
	if err != nil {
		return
	}
	if vecHasNaN(o.lhs) {
		return chk.Err("constant RHS solve produced NaN")
	}
	copy(o.x2, o.lhs[:o.n])
	copy(o.z2, o.lhs[o.n:o.n+o.m])
	o.qx2 = la.VecDot(o.q, o.x2)
	o.bz2 = la.VecDot(o.b, o.z2)
	la.VecFill(o.pwork, 0)
	o.P.SymMulAdd(o.pwork, 1, o.x2)
	o.x2Px2 = la.VecDot(o.x2, o.pwork)
	return
}

// SolveInitial computes the starting point from the two fixed systems
// K [x; ẑ] = [0; b] (giving x and s = −ẑ) and K [x̂; z] = [−q; 0]
func (o *System) SolveInitial(x, s, z []float64) (err error) {
	la.VecFill(o.rhs, 0)
	la.VecCopy(o.rhs[o.n:o.n+o.m], 1, o.b)
	err = o.solveRefined(o.lhs, o.rhs)
	if err != nil {
		return
	}
	copy(x, o.lhs[:o.n])
	la.VecCopy(s, -1, o.lhs[o.n:o.n+o.m])

	la.VecFill(o.rhs, 0)
	la.VecCopy(o.rhs[:o.n], -1, o.q)
	err = o.solveRefined(o.lhs, o.rhs)
	if err != nil {
		return
	}
	copy(z, o.lhs[o.n:o.n+o.m])
	if vecHasNaN(x) || vecHasNaN(s) || vecHasNaN(z) {
		return chk.Err("initialisation solve produced NaN")
	}
	return
}

// SolveStep solves the reduced 2×2 system and recovers the full direction
// (Δx, Δz, Δs, Δτ, Δκ) from the RHS (rx, rz, rds, rτ, rκ) and the current
// iterate. For the affine step the offset Wᵀ(λ∖ds) collapses to s.
func (o *System) SolveStep(dx, dz, ds []float64, dtau, dkap *float64,
	rx, rz, rds []float64, rtau, rkap float64,
	x, s, z []float64, tau, kap float64, affine bool) (err error) {

	// Wᵀ(λ∖ds); asymmetric cones short-circuit to ds
	if affine {
		la.VecCopy(o.wtlds, 1, s)
	} else {
		for i := range o.cones.Kinds {
			o.cones.Kinds[i].DsFromDzOffset(o.cones.Blk(o.wtlds, i), o.cones.Blk(rds, i),
				o.cones.Blk(o.mwork, i), o.cones.Blk(z, i))
		}
	}

	// solve K [x₁; z₁] = [rx; Wᵀ(λ∖ds) − rz]
	la.VecFill(o.rhs, 0)
	la.VecCopy(o.rhs[:o.n], 1, rx)
	la.VecAdd2(o.rhs[o.n:o.n+o.m], 1, o.wtlds, -1, rz)
	err = o.solveRefined(o.lhs, o.rhs)
	if err != nil {
		return
	}
	x1 := o.lhs[:o.n]
	z1 := o.lhs[o.n : o.n+o.m]
	if vecHasNaN(o.lhs) {
		return chk.Err("KKT solve produced NaN")
	}

	// Δτ from the closed-form numerator and denominator
	la.VecCopy(o.xi, 1/tau, x)
	la.VecFill(o.pwork, 0)
	o.P.SymMulAdd(o.pwork, 1, x1)
	num := rtau - rkap/tau + la.VecDot(o.q, x1) + la.VecDot(o.b, z1) + 2*la.VecDot(o.xi, o.pwork)
	la.VecAdd(o.xi, -1, o.x2) // ξ − x₂
	den := kap/tau - o.qx2 - o.bz2 + o.P.SymQuad(o.xi, o.xi) - o.x2Px2
	*dtau = num / den

	// Δx, Δz, Δs, Δκ
	la.VecAdd2(dx, 1, x1, *dtau, o.x2)
	la.VecAdd2(dz, 1, z1, *dtau, o.z2)
	for i, c := range o.cones.Kinds {
		c.MulHs(o.cones.Blk(ds, i), o.cones.Blk(dz, i), o.cones.Blk(o.mwork, i))
	}
	la.VecAdd2(ds, -1, ds, -1, o.wtlds)
	*dkap = -(rkap + kap*(*dtau)) / tau
	return
}

// solveRefined solves K x = b and applies iterative refinement against the
// symmetric view of the unregularised matrix: with K̃ = K + εD stored, the
// true residual is e = b − K̃x + εDx
func (o *System) solveRefined(x, b []float64) (err error) {
	err = o.lin.SolveR(x, b)
	if err != nil {
		return
	}
	if !o.set.RefineEnable {
		return
	}
	eps := o.set.Reg()
	normb := la.VecLargest(b, 1)
	enorm := o.refineResidual(o.ework, x, b, eps)
	for it := 0; it < o.set.RefineMaxIter; it++ {
		if enorm <= o.set.RefineAbsTol+o.set.RefineRelTol*normb {
			return
		}
		err = o.lin.SolveR(o.dwork, o.ework)
		if err != nil {
			return
		}
		la.VecAdd(o.dwork, 1, x) // ξ' = ξ + Δ
		enew := o.refineResidual(o.ework, o.dwork, b, eps)
		if enorm/enew < o.set.RefineStopRatio {
			// insufficient progress; keep the last accepted iterate
			return
		}
		copy(x, o.dwork)
		enorm = enew
	}
	return
}

// refineResidual computes e = b − Kx + εDx and returns its infinity norm
func (o *System) refineResidual(e, x, b []float64, eps float64) float64 {
	copy(e, b)
	o.K.SymMulAdd(e, -1, x)
	if eps > 0 {
		for i := 0; i < o.ntot; i++ {
			e[i] += eps * o.signs[i] * x[i]
		}
	}
	return la.VecLargest(e, 1)
}
