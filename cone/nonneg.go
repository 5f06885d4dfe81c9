// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Nonneg implements the nonnegative orthant. The Nesterov-Todd scaling is
// diagonal, W = diag(√(s/z)), with λ = √(s∘z).
type Nonneg struct {
	dim int
	w   []float64 // diagonal of W
	lam []float64 // scaled variable λ
}

// set factory
func init() {
	allocators["nonneg"] = func() Cone { return new(Nonneg) }
}

// Init initialises the cone
func (o *Nonneg) Init(dim int, alpha []float64) error {
	if dim < 1 {
		return chk.Err("nonneg cone must have positive dimension. dim=%d is invalid", dim)
	}
	o.dim = dim
	o.w = make([]float64, dim)
	o.lam = make([]float64, dim)
	return nil
}

func (o *Nonneg) Dim() int           { return o.dim }
func (o *Nonneg) Degree() int        { return o.dim }
func (o *Nonneg) IsSymmetric() bool  { return true }
func (o *Nonneg) HsIsDiagonal() bool { return true }
func (o *Nonneg) NumelHs() int       { return o.dim }

// UnitInit sets s = z = e
func (o *Nonneg) UnitInit(s, z []float64) {
	la.VecFill(s, 1)
	la.VecFill(z, 1)
}

// ShiftToCone shifts x along e to a unit margin when its smallest entry is
// below 1e-12
func (o *Nonneg) ShiftToCone(x []float64) {
	m := x[0]
	for _, v := range x {
		if v < m {
			m = v
		}
	}
	if m < 1e-12 {
		for i := range x {
			x[i] += 1 - m
		}
	}
}

// UpdateScaling refreshes W and λ from the current pair
func (o *Nonneg) UpdateScaling(s, z []float64, mu float64) bool {
	for i := 0; i < o.dim; i++ {
		if s[i] <= 0 || z[i] <= 0 {
			return false
		}
		o.w[i] = math.Sqrt(s[i] / z[i])
		o.lam[i] = math.Sqrt(s[i] * z[i])
	}
	return true
}

// GetHsBlock writes the diagonal of WᵀW = diag(s/z)
func (o *Nonneg) GetHsBlock(hs []float64) {
	for i := 0; i < o.dim; i++ {
		hs[i] = o.w[i] * o.w[i]
	}
}

// MulHs computes y = WᵀW x
func (o *Nonneg) MulHs(y, x, work []float64) {
	for i := 0; i < o.dim; i++ {
		y[i] = o.w[i] * o.w[i] * x[i]
	}
}

// AffineDs writes λ∘λ
func (o *Nonneg) AffineDs(ds, s []float64) {
	for i := 0; i < o.dim; i++ {
		ds[i] = o.lam[i] * o.lam[i]
	}
}

// CombinedDsShift adds the Mehrotra correction (W⁻ᵀΔs)∘(WΔz) − σμ e;
// the diagonal W cancels in the circle product
func (o *Nonneg) CombinedDsShift(shift, stepz, steps []float64, sigmamu float64) {
	for i := 0; i < o.dim; i++ {
		shift[i] = stepz[i]*steps[i] - sigmamu
	}
}

// DsFromDzOffset computes Wᵀ(λ∖ds) = ds/z
func (o *Nonneg) DsFromDzOffset(out, ds, work, z []float64) {
	for i := 0; i < o.dim; i++ {
		out[i] = ds[i] / z[i]
	}
}

// LambdaInvCirc computes out = λ∖v
func (o *Nonneg) LambdaInvCirc(out, v []float64) {
	for i := 0; i < o.dim; i++ {
		out[i] = v[i] / o.lam[i]
	}
}

// GemvW computes y = α W x + β y; W is diagonal and symmetric
func (o *Nonneg) GemvW(trans bool, x, y []float64, alpha, beta float64) {
	for i := 0; i < o.dim; i++ {
		y[i] = alpha*o.w[i]*x[i] + beta*y[i]
	}
}

// StepLength performs scalar ratio tests on both halves
func (o *Nonneg) StepLength(dz, ds, z, s []float64, amax float64) (az, as float64) {
	return stepRatio(z, dz, amax), stepRatio(s, ds, amax)
}

// ComputeBarrier evaluates the log barrier at the shifted pair
func (o *Nonneg) ComputeBarrier(z, s, dz, ds []float64, alpha float64) (b float64) {
	for i := 0; i < o.dim; i++ {
		b -= logsafe((s[i] + alpha*ds[i]) * (z[i] + alpha*dz[i]))
	}
	return
}
