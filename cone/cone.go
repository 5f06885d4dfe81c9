// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package cone implements the convex cones supported by the conic solver:
// zero, nonnegative orthant, second-order, positive-semidefinite and
// generalized power cones. Symmetric cones carry Nesterov-Todd scalings
// with the convention
//
//	λ = W z = W⁻ᵀ s,   Hs = WᵀW   (thus Hs z = s at the scaling point)
//
// whereas the generalized power cone uses the dual scaling μH(z) with H the
// Hessian of its dual barrier.
package cone

import (
	"github.com/cpmech/gosl/chk"
)

// Cone defines the per-cone operations consumed by the interior-point
// iteration and by the KKT layer. All vector arguments are restricted to the
// rows of this cone.
type Cone interface {
	Init(dim int, alpha []float64) error // initialises and allocates buffers
	Dim() int                            // number of rows
	Degree() int                         // barrier degree ν
	IsSymmetric() bool                   // whether a Nesterov-Todd scaling exists
	HsIsDiagonal() bool                  // whether the Hs block of K is diagonal
	NumelHs() int                        // number of entries of the Hs block (dim or packed triangle)

	UnitInit(s, z []float64)                           // canonical interior point
	ShiftToCone(x []float64)                           // shift x into the interior (symmetric cones)
	UpdateScaling(s, z []float64, mu float64) bool     // refresh scaling; false if (s,z) is numerically infeasible
	GetHsBlock(hs []float64)                           // diagonal or packed upper triangle of Hs
	MulHs(y, x, work []float64)                        // y = Hs x
	AffineDs(ds, s []float64)                          // affine complementarity RHS: λ∘λ (symmetric) or s
	CombinedDsShift(shift, stepz, steps []float64, sigmamu float64) // Mehrotra corrector shift
	DsFromDzOffset(out, ds, work, z []float64)         // Wᵀ(λ∖ds) (symmetric) or ds
	LambdaInvCirc(out, v []float64)                    // out = λ∖v
	GemvW(trans bool, x, y []float64, alpha, beta float64) // y = α W x + β y (trans: Wᵀ)
	StepLength(dz, ds, z, s []float64, amax float64) (az, as float64)
	ComputeBarrier(z, s, dz, ds []float64, alpha float64) float64
}

// allocators holds all available cone kinds
var allocators = make(map[string]func() Cone)

// Spec defines one cone block of the ordered cone specification
type Spec struct {
	Kind  string    `json:"kind"`  // "zero", "nonneg", "soc", "psd", "genpow"
	Dim   int       `json:"dim"`   // number of rows taken from the m constraint rows
	Alpha []float64 `json:"alpha"` // genpow exponents; nil otherwise
}

// Cones holds an ordered set of cones covering all m constraint rows
type Cones struct {
	Kinds []Cone // cones in row order
	Spans []int  // first row of each cone
	M     int    // total number of rows
	Nu    int    // total barrier degree
	Nsoc  int    // number of second-order cones
}

// New builds the cone set from the ordered specification
func New(specs []*Spec) (o *Cones, err error) {
	o = new(Cones)
	for _, sp := range specs {
		alloc, ok := allocators[sp.Kind]
		if !ok {
			return nil, chk.Err("cannot find cone kind named %q", sp.Kind)
		}
		c := alloc()
		err = c.Init(sp.Dim, sp.Alpha)
		if err != nil {
			return nil, err
		}
		o.Kinds = append(o.Kinds, c)
		o.Spans = append(o.Spans, o.M)
		o.M += c.Dim()
		o.Nu += c.Degree()
		if _, issoc := c.(*Soc); issoc {
			o.Nsoc++
		}
	}
	return
}

// Blk returns the sub-slice of x belonging to cone i
func (o *Cones) Blk(x []float64, i int) []float64 {
	return x[o.Spans[i] : o.Spans[i]+o.Kinds[i].Dim()]
}

// UnitInit sets (s, z) to the canonical interior point of every cone
func (o *Cones) UnitInit(s, z []float64) {
	for i, c := range o.Kinds {
		c.UnitInit(o.Blk(s, i), o.Blk(z, i))
	}
}

// ShiftInit shifts (s, z) into the interior of K × K*. Symmetric cones are
// shifted along their unit vector when the margin is insufficient;
// asymmetric cones are reset to their canonical interior point.
func (o *Cones) ShiftInit(s, z []float64) {
	for i, c := range o.Kinds {
		if c.IsSymmetric() {
			c.ShiftToCone(o.Blk(s, i))
			c.ShiftToCone(o.Blk(z, i))
		} else {
			c.UnitInit(o.Blk(s, i), o.Blk(z, i))
		}
	}
}

// UpdateScaling refreshes all cone scalings. Returns false as soon as one
// cone reports a numerically infeasible pair.
func (o *Cones) UpdateScaling(s, z []float64, mu float64) bool {
	for i, c := range o.Kinds {
		if !c.UpdateScaling(o.Blk(s, i), o.Blk(z, i), mu) {
			return false
		}
	}
	return true
}

// AffineDs assembles the affine-step complementarity RHS
func (o *Cones) AffineDs(ds, s []float64) {
	for i, c := range o.Kinds {
		c.AffineDs(o.Blk(ds, i), o.Blk(s, i))
	}
}

// CombinedDsShift adds the Mehrotra corrector shift of every cone
func (o *Cones) CombinedDsShift(shift, stepz, steps []float64, sigmamu float64) {
	for i, c := range o.Kinds {
		c.CombinedDsShift(o.Blk(shift, i), o.Blk(stepz, i), o.Blk(steps, i), sigmamu)
	}
}

// StepLength computes the largest feasible step for (dz, ds) capped at amax
func (o *Cones) StepLength(dz, ds, z, s []float64, amax float64) float64 {
	a := amax
	for i, c := range o.Kinds {
		az, as := c.StepLength(o.Blk(dz, i), o.Blk(ds, i), o.Blk(z, i), o.Blk(s, i), a)
		a = min3(a, az, as)
	}
	return a
}

// ComputeBarrier evaluates the sum of cone barriers at the shifted point
func (o *Cones) ComputeBarrier(z, s, dz, ds []float64, alpha float64) (b float64) {
	for i, c := range o.Kinds {
		b += c.ComputeBarrier(o.Blk(z, i), o.Blk(s, i), o.Blk(dz, i), o.Blk(ds, i), alpha)
	}
	return
}
