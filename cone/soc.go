// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Soc implements the second-order cone {x : x₀ ≥ ‖x₁:‖}. The Nesterov-Todd
// scaling is the hyperbolic rotation W = η W̄ where W̄ is the arrow matrix of
// the unit-hyperbolic vector w̄. Since
//
//	W̄² = 2 w̄ w̄ᵀ − J = I + u uᵀ − v vᵀ,  u = √2 w̄,  v = √2 e₁
//
// the WᵀW block of the KKT matrix is sparsified into an η² diagonal plus two
// rank-one columns with ∓η² entries on the extended diagonal.
type Soc struct {
	dim   int
	wb    []float64 // w̄: unit-hyperbolic scaling point
	jwb   []float64 // J w̄ (defines the arrow form of W̄⁻¹)
	lam   []float64 // scaled variable λ = W z
	eta   float64   // η = √(sscale/zscale)
	u     []float64 // √2 w̄ rank-one column
	v     []float64 // √2 e₁ rank-one column
	sb    []float64 // workspace: normalised s
	zb    []float64 // workspace: normalised z
	work  []float64 // workspace
	work2 []float64 // workspace
}

// set factory
func init() {
	allocators["soc"] = func() Cone { return new(Soc) }
}

// Init initialises the cone
func (o *Soc) Init(dim int, alpha []float64) error {
	if dim < 2 {
		return chk.Err("soc cone must have dimension at least 2. dim=%d is invalid", dim)
	}
	o.dim = dim
	o.wb = make([]float64, dim)
	o.jwb = make([]float64, dim)
	o.lam = make([]float64, dim)
	o.u = make([]float64, dim)
	o.v = make([]float64, dim)
	o.sb = make([]float64, dim)
	o.zb = make([]float64, dim)
	o.work = make([]float64, dim)
	o.work2 = make([]float64, dim)
	return nil
}

func (o *Soc) Dim() int           { return o.dim }
func (o *Soc) Degree() int        { return 1 }
func (o *Soc) IsSymmetric() bool  { return true }
func (o *Soc) HsIsDiagonal() bool { return true }
func (o *Soc) NumelHs() int       { return o.dim }

// UnitInit sets s = z = e₁
func (o *Soc) UnitInit(s, z []float64) {
	la.VecFill(s, 0)
	la.VecFill(z, 0)
	s[0] = 1
	z[0] = 1
}

// ShiftToCone shifts x along e₁ when its margin to the boundary is insufficient
func (o *Soc) ShiftToCone(x []float64) {
	m := x[0] - math.Sqrt(sumsq(x[1:]))
	if m < 1e-12 {
		x[0] += 1 - m
	}
}

// arrowMul computes out = arrow(w0, w1) x where the arrow matrix of a
// unit-hyperbolic vector is [w0 w1ᵀ; w1 I + w1w1ᵀ/(1+w0)]
func arrowMul(out []float64, w0 float64, w1, x []float64) {
	t := 0.0
	for i := 0; i < len(w1); i++ {
		t += w1[i] * x[i+1]
	}
	c := x[0] + t/(1+w0)
	out[0] = w0*x[0] + t
	for i := 0; i < len(w1); i++ {
		out[i+1] = x[i+1] + c*w1[i]
	}
}

// UpdateScaling refreshes w̄, η, λ and the sparse expansion from (s, z)
func (o *Soc) UpdateScaling(s, z []float64, mu float64) bool {
	ss2 := s[0]*s[0] - sumsq(s[1:])
	zz2 := z[0]*z[0] - sumsq(z[1:])
	if s[0] <= 0 || z[0] <= 0 || ss2 <= 0 || zz2 <= 0 {
		return false
	}
	sscale := math.Sqrt(ss2)
	zscale := math.Sqrt(zz2)
	la.VecCopy(o.sb, 1.0/sscale, s)
	la.VecCopy(o.zb, 1.0/zscale, z)
	gamma := math.Sqrt((1 + la.VecDot(o.sb, o.zb)) / 2)

	// scaling point
	o.wb[0] = (o.sb[0] + o.zb[0]) / (2 * gamma)
	o.jwb[0] = o.wb[0]
	for i := 1; i < o.dim; i++ {
		o.wb[i] = (o.sb[i] - o.zb[i]) / (2 * gamma)
		o.jwb[i] = -o.wb[i]
	}
	o.eta = math.Sqrt(sscale / zscale)

	// scaled variable λ = η W̄ z
	arrowMul(o.lam, o.wb[0], o.wb[1:], z)
	for i := 0; i < o.dim; i++ {
		o.lam[i] *= o.eta
	}

	// sparse expansion
	sq2 := math.Sqrt2
	for i := 0; i < o.dim; i++ {
		o.u[i] = sq2 * o.wb[i]
		o.v[i] = 0
	}
	o.v[0] = sq2
	return true
}

// SparseExpansion returns η² and the u, v rank-one columns of the
// sparsified WᵀW = η²(I + uuᵀ − vvᵀ)
func (o *Soc) SparseExpansion() (eta2 float64, u, v []float64) {
	return o.eta * o.eta, o.u, o.v
}

// GetHsBlock writes the η² diagonal of the sparsified block
func (o *Soc) GetHsBlock(hs []float64) {
	la.VecFill(hs, o.eta*o.eta)
}

// MulHs computes y = WᵀW x = η²(2(w̄ᵀx)w̄ − Jx)
func (o *Soc) MulHs(y, x, work []float64) {
	e2 := o.eta * o.eta
	t := 2 * la.VecDot(o.wb, x)
	y[0] = e2 * (t*o.wb[0] - x[0])
	for i := 1; i < o.dim; i++ {
		y[i] = e2 * (t*o.wb[i] + x[i])
	}
}

// AffineDs writes λ∘λ
func (o *Soc) AffineDs(ds, s []float64) {
	ds[0] = sumsq(o.lam)
	for i := 1; i < o.dim; i++ {
		ds[i] = 2 * o.lam[0] * o.lam[i]
	}
}

// CombinedDsShift adds the Mehrotra correction (W⁻ᵀΔs)∘(WΔz) − σμ e;
// W̄⁻¹ is the arrow matrix of J w̄
func (o *Soc) CombinedDsShift(shift, stepz, steps []float64, sigmamu float64) {
	arrowMul(o.work, o.wb[0], o.wb[1:], stepz)
	arrowMul(o.work2, o.jwb[0], o.jwb[1:], steps)
	for i := 0; i < o.dim; i++ {
		o.work[i] *= o.eta
		o.work2[i] /= o.eta
	}
	circ(shift, o.work2, o.work)
	shift[0] -= sigmamu
}

// circ computes out = a∘b (Jordan product); out may alias a
func circ(out, a, b []float64) {
	t := 0.0
	for i := 0; i < len(a); i++ {
		t += a[i] * b[i]
	}
	a0 := a[0]
	for i := 1; i < len(a); i++ {
		out[i] = a0*b[i] + b[0]*a[i]
	}
	out[0] = t
}

// DsFromDzOffset computes Wᵀ(λ∖ds)
func (o *Soc) DsFromDzOffset(out, ds, work, z []float64) {
	o.LambdaInvCirc(work, ds)
	o.GemvW(true, work, out, 1, 0)
}

// LambdaInvCirc computes out = λ∖v using the arrow-matrix inverse
func (o *Soc) LambdaInvCirc(out, v []float64) {
	a := o.lam[0]*o.lam[0] - sumsq(o.lam[1:])
	c1 := 0.0
	for i := 1; i < o.dim; i++ {
		c1 += o.lam[i] * v[i]
	}
	out[0] = (o.lam[0]*v[0] - c1) / a
	cc := c1/(a*o.lam[0]) - v[0]/a
	for i := 1; i < o.dim; i++ {
		out[i] = v[i]/o.lam[0] + cc*o.lam[i]
	}
}

// GemvW computes y = α W x + β y; W is symmetric so trans is immaterial
func (o *Soc) GemvW(trans bool, x, y []float64, alpha, beta float64) {
	arrowMul(o.work, o.wb[0], o.wb[1:], x)
	for i := 0; i < o.dim; i++ {
		y[i] = alpha*o.eta*o.work[i] + beta*y[i]
	}
}

// socStepToBoundary finds the largest a in [0, amax] keeping x + a*dx inside
// the cone, from the roots of the boundary quadratic
func socStepToBoundary(x, dx []float64, amax float64) float64 {
	c := x[0]*x[0] - sumsq(x[1:])
	b := 2 * x[0] * dx[0]
	for i := 1; i < len(x); i++ {
		b -= 2 * x[i] * dx[i]
	}
	a := dx[0]*dx[0] - sumsq(dx[1:])
	alpha := amax
	if a != 0 {
		disc := b*b - 4*a*c
		if disc >= 0 {
			sq := math.Sqrt(disc)
			for _, r := range []float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
				if r > 0 && r < alpha {
					alpha = r
				}
			}
		}
	} else if b < 0 {
		if r := -c / b; r > 0 && r < alpha {
			alpha = r
		}
	}
	if dx[0] < 0 {
		if r := -x[0] / dx[0]; r < alpha {
			alpha = r
		}
	}
	return alpha
}

// StepLength computes the maximum feasible steps for both halves
func (o *Soc) StepLength(dz, ds, z, s []float64, amax float64) (az, as float64) {
	return socStepToBoundary(z, dz, amax), socStepToBoundary(s, ds, amax)
}

// socBarrierHalf evaluates the shifted log barrier of one half
func socBarrierHalf(x, dx []float64, alpha float64) float64 {
	x0 := x[0] + alpha*dx[0]
	if x0 <= 0 {
		return 1e300
	}
	d := x0 * x0
	for i := 1; i < len(x); i++ {
		xi := x[i] + alpha*dx[i]
		d -= xi * xi
	}
	return -logsafe(d)
}

// ComputeBarrier evaluates the log barrier at the shifted pair
func (o *Soc) ComputeBarrier(z, s, dz, ds []float64, alpha float64) float64 {
	return socBarrierHalf(s, ds, alpha) + socBarrierHalf(z, dz, alpha)
}
