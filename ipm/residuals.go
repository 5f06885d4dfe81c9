// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

import (
	"github.com/cpmech/gosl/la"
)

// Residuals holds the homogeneous residuals, their τ-independent variants
// used by the infeasibility certificates, and the cached dot products of the
// iteration. Update computes everything in a fixed order so intermediates
// are reused.
type Residuals struct {

	// residual vectors
	Rx    []float64 // −Px − Aᵀz − qτ
	Rz    []float64 // Ax + s − bτ
	RxInf []float64 // −Px − Aᵀz
	RzInf []float64 // Ax + s
	Rtau  float64   // qᵀx + bᵀz + κ + xᵀPx/τ

	// cached products
	Qx  float64   // qᵀx
	Bz  float64   // bᵀz
	Sz  float64   // sᵀz
	XPx float64   // xᵀPx
	Px  []float64 // P x

	// norms for the convergence and certificate tests
	NormRx    float64 // ‖rx‖∞
	NormRz    float64 // ‖rz‖∞
	NormRzInf float64 // ‖Ax + s‖∞
	NormAtz   float64 // ‖Aᵀz‖∞
	NormPx    float64 // ‖Px‖∞
}

// NewResiduals allocates residuals for n primal entries and m cone rows
func NewResiduals(n, m int) (o *Residuals) {
	o = new(Residuals)
	o.Rx = make([]float64, n)
	o.Rz = make([]float64, m)
	o.RxInf = make([]float64, n)
	o.RzInf = make([]float64, m)
	o.Px = make([]float64, n)
	return
}

// Update recomputes all residuals and cached products at the current iterate
func (o *Residuals) Update(v *Vars, pr *Problem) {

	// dot products
	o.Qx = la.VecDot(pr.Q, v.X)
	o.Bz = la.VecDot(pr.B, v.Z)
	o.Sz = la.VecDot(v.S, v.Z)

	// P x and xᵀPx
	la.VecFill(o.Px, 0)
	la.SpMatVecMulAdd(o.Px, 1, pr.Pm, v.X)
	o.XPx = la.VecDot(v.X, o.Px)

	// τ-independent parts
	la.VecCopy(o.RxInf, -1, o.Px)
	la.SpMatTrVecMulAdd(o.RxInf, -1, pr.Am, v.Z) // rx_inf = −Px − Aᵀz
	la.VecCopy(o.RzInf, 1, v.S)
	la.SpMatVecMulAdd(o.RzInf, 1, pr.Am, v.X) // rz_inf = Ax + s

	// full residuals
	la.VecAdd2(o.Rx, 1, o.RxInf, -v.Tau, pr.Q)
	la.VecAdd2(o.Rz, 1, o.RzInf, -v.Tau, pr.B)
	o.Rtau = o.Qx + o.Bz + v.Kap + o.XPx/v.Tau

	// norms; ‖Aᵀz‖ follows from rx_inf + Px = −Aᵀz
	o.NormRx = la.VecLargest(o.Rx, 1)
	o.NormRz = la.VecLargest(o.Rz, 1)
	o.NormRzInf = la.VecLargest(o.RzInf, 1)
	o.NormPx = la.VecLargest(o.Px, 1)
	o.NormAtz = 0
	for i := 0; i < len(o.RxInf); i++ {
		t := o.RxInf[i] + o.Px[i]
		if t < 0 {
			t = -t
		}
		if t > o.NormAtz {
			o.NormAtz = t
		}
	}
}
