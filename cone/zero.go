// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Zero implements the zero cone {0}. Its dual is the free cone, the barrier
// degree is zero and the scaling vanishes, so equality constraints cost
// nothing in the complementarity rows.
type Zero struct {
	dim int
}

// set factory
func init() {
	allocators["zero"] = func() Cone { return new(Zero) }
}

// Init initialises the cone
func (o *Zero) Init(dim int, alpha []float64) error {
	if dim < 1 {
		return chk.Err("zero cone must have positive dimension. dim=%d is invalid", dim)
	}
	o.dim = dim
	return nil
}

func (o *Zero) Dim() int           { return o.dim }
func (o *Zero) Degree() int        { return 0 }
func (o *Zero) IsSymmetric() bool  { return true }
func (o *Zero) HsIsDiagonal() bool { return true }
func (o *Zero) NumelHs() int       { return o.dim }

// UnitInit sets s = z = 0
func (o *Zero) UnitInit(s, z []float64) {
	la.VecFill(s, 0)
	la.VecFill(z, 0)
}

// ShiftToCone projects x onto {0}
func (o *Zero) ShiftToCone(x []float64) {
	la.VecFill(x, 0)
}

// UpdateScaling is a no-op; the zero cone has no scaling state
func (o *Zero) UpdateScaling(s, z []float64, mu float64) bool { return true }

// GetHsBlock writes the vanishing diagonal block
func (o *Zero) GetHsBlock(hs []float64) { la.VecFill(hs, 0) }

// MulHs computes y = Hs x = 0
func (o *Zero) MulHs(y, x, work []float64) { la.VecFill(y, 0) }

// AffineDs writes the vanishing complementarity RHS
func (o *Zero) AffineDs(ds, s []float64) { la.VecFill(ds, 0) }

// CombinedDsShift leaves the shift at zero
func (o *Zero) CombinedDsShift(shift, stepz, steps []float64, sigmamu float64) {
	la.VecFill(shift, 0)
}

// DsFromDzOffset writes the vanishing offset
func (o *Zero) DsFromDzOffset(out, ds, work, z []float64) { la.VecFill(out, 0) }

// LambdaInvCirc writes zero; ds vanishes on this cone
func (o *Zero) LambdaInvCirc(out, v []float64) { la.VecFill(out, 0) }

// GemvW computes y = α W x + β y with W = 0
func (o *Zero) GemvW(trans bool, x, y []float64, alpha, beta float64) {
	for i := range y {
		y[i] *= beta
	}
}

// StepLength imposes no restriction
func (o *Zero) StepLength(dz, ds, z, s []float64, amax float64) (az, as float64) {
	return amax, amax
}

// ComputeBarrier returns zero; the zero cone carries no barrier
func (o *Zero) ComputeBarrier(z, s, dz, ds []float64, alpha float64) float64 { return 0 }
