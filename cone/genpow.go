// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Genpow implements the generalized power cone
//
//	K = {(u, w) ∈ ℝ^{d1}₊ × ℝ^{d2} : ∏ uᵢ^{αᵢ} ≥ ‖w‖},  αᵢ > 0, Σαᵢ = 1
//
// This cone is not symmetric: the scaling is μH(z) with H the Hessian of the
// dual barrier
//
//	f*(z) = −log(∏(zᵢ/αᵢ)^{2αᵢ} − ‖z_{d1+1:}‖²) − Σ(1−αᵢ) log zᵢ
//
// H has the diagonal plus rank-three structure D + ppᵀ − qqᵀ − rrᵀ, so
// products with Hs run in O(dim). Feasibility predicates work in log space
// to avoid overflow of the power products.
type Genpow struct {
	dim   int
	d1    int
	d2    int
	alpha []float64

	// scaling state at z
	mu   float64
	grad []float64 // ∇f*(z)
	dd   []float64 // diagonal D
	p    []float64
	q    []float64
	r    []float64

	// workspaces
	ws []float64
	wz []float64
}

// set factory
func init() {
	allocators["genpow"] = func() Cone { return new(Genpow) }
}

// Init initialises the cone; alpha carries the d1 exponents
func (o *Genpow) Init(dim int, alpha []float64) error {
	d1 := len(alpha)
	if d1 < 1 || dim <= d1 {
		return chk.Err("genpow cone needs 0 < len(alpha) < dim. dim=%d, len(alpha)=%d", dim, d1)
	}
	sum := 0.0
	for _, a := range alpha {
		if a <= 0 {
			return chk.Err("genpow exponents must be positive. alpha=%v is invalid", alpha)
		}
		sum += a
	}
	if math.Abs(sum-1) > 1e-12 {
		return chk.Err("genpow exponents must sum to one. sum=%v", sum)
	}
	o.dim = dim
	o.d1 = d1
	o.d2 = dim - d1
	o.alpha = la.VecClone(alpha)
	o.grad = make([]float64, dim)
	o.dd = make([]float64, dim)
	o.p = make([]float64, dim)
	o.q = make([]float64, dim)
	o.r = make([]float64, dim)
	o.ws = make([]float64, dim)
	o.wz = make([]float64, dim)
	return nil
}

func (o *Genpow) Dim() int           { return o.dim }
func (o *Genpow) Degree() int        { return o.d1 + 1 }
func (o *Genpow) IsSymmetric() bool  { return false }
func (o *Genpow) HsIsDiagonal() bool { return false }
func (o *Genpow) NumelHs() int       { return o.dim * (o.dim + 1) / 2 }

// UnitInit sets s = z to the canonical interior point (√(1+αᵢ), 0)
func (o *Genpow) UnitInit(s, z []float64) {
	la.VecFill(s, 0)
	for i := 0; i < o.d1; i++ {
		s[i] = math.Sqrt(1 + o.alpha[i])
	}
	la.VecCopy(z, 1, s)
}

// ShiftToCone resets x to the canonical interior point
func (o *Genpow) ShiftToCone(x []float64) {
	la.VecFill(x, 0)
	for i := 0; i < o.d1; i++ {
		x[i] = math.Sqrt(1 + o.alpha[i])
	}
}

// logPhiPrimal returns log ∏ uᵢ^{2αᵢ}
func (o *Genpow) logPhiPrimal(u []float64) (lp float64) {
	for i := 0; i < o.d1; i++ {
		lp += 2 * o.alpha[i] * logsafe(u[i])
	}
	return
}

// logPhiDual returns log ∏ (zᵢ/αᵢ)^{2αᵢ}
func (o *Genpow) logPhiDual(z []float64) (lp float64) {
	for i := 0; i < o.d1; i++ {
		lp += 2 * o.alpha[i] * (logsafe(z[i]) - math.Log(o.alpha[i]))
	}
	return
}

// logDiff returns log(exp(lp) − w2) computed in log space; the second value
// reports positivity of the difference
func logDiff(lp, w2 float64) (float64, bool) {
	if w2 <= 0 {
		return lp, true
	}
	t := math.Log(w2) - lp
	if t >= 0 {
		return 0, false
	}
	return lp + math.Log1p(-math.Exp(t)), true
}

// isPrimalFeasible tests strict membership of the primal cone in log space
func (o *Genpow) isPrimalFeasible(s []float64) bool {
	for i := 0; i < o.d1; i++ {
		if s[i] <= 0 {
			return false
		}
	}
	_, pos := logDiff(o.logPhiPrimal(s), sumsq(s[o.d1:]))
	return pos
}

// isDualFeasible tests strict membership of the dual cone in log space
func (o *Genpow) isDualFeasible(z []float64) bool {
	for i := 0; i < o.d1; i++ {
		if z[i] <= 0 {
			return false
		}
	}
	_, pos := logDiff(o.logPhiDual(z), sumsq(z[o.d1:]))
	return pos
}

// UpdateScaling refreshes the dual gradient and the D + ppᵀ − qqᵀ − rrᵀ
// split of the dual Hessian at z
func (o *Genpow) UpdateScaling(s, z []float64, mu float64) bool {
	if !o.isPrimalFeasible(s) || !o.isDualFeasible(z) {
		return false
	}
	o.mu = mu
	w := z[o.d1:]
	w2 := sumsq(w)
	phi := math.Exp(o.logPhiDual(z))
	zeta := phi - w2
	if zeta <= 0 {
		return false
	}

	// gradient
	for i := 0; i < o.d1; i++ {
		o.grad[i] = -2*o.alpha[i]*phi/(zeta*z[i]) - (1-o.alpha[i])/z[i]
	}
	for j := 0; j < o.d2; j++ {
		o.grad[o.d1+j] = 2 * w[j] / zeta
	}

	// rank-three split with τᵢ = 2αᵢ/zᵢ
	c1 := math.Sqrt(phi*(phi+w2)/2) / zeta
	c2 := -2 * phi / (c1 * zeta * zeta)
	c3 := math.Sqrt(phi / (2 * zeta))
	c4 := 2 / math.Sqrt(zeta*(phi+w2))
	for i := 0; i < o.d1; i++ {
		tau := 2 * o.alpha[i] / z[i]
		o.p[i] = c1 * tau
		o.q[i] = c3 * tau
		o.r[i] = 0
		o.dd[i] = 2*o.alpha[i]*phi/(zeta*z[i]*z[i]) + (1-o.alpha[i])/(z[i]*z[i])
	}
	for j := 0; j < o.d2; j++ {
		o.p[o.d1+j] = c2 * w[j]
		o.q[o.d1+j] = 0
		o.r[o.d1+j] = c4 * w[j]
		o.dd[o.d1+j] = 2 / zeta
	}
	return true
}

// GetHsBlock writes the packed upper triangle of μH, column-wise
func (o *Genpow) GetHsBlock(hs []float64) {
	idx := 0
	for b := 0; b < o.dim; b++ {
		for a := 0; a <= b; a++ {
			e := o.p[a]*o.p[b] - o.q[a]*o.q[b] - o.r[a]*o.r[b]
			if a == b {
				e += o.dd[a]
			}
			hs[idx] = o.mu * e
			idx++
		}
	}
}

// MulHs computes y = μH x using the rank-three split
func (o *Genpow) MulHs(y, x, work []float64) {
	cp := la.VecDot(o.p, x)
	cq := la.VecDot(o.q, x)
	cr := la.VecDot(o.r, x)
	for i := 0; i < o.dim; i++ {
		y[i] = o.mu * (o.dd[i]*x[i] + cp*o.p[i] - cq*o.q[i] - cr*o.r[i])
	}
}

// AffineDs copies s; asymmetric cones use the unscaled complementarity row
func (o *Genpow) AffineDs(ds, s []float64) {
	la.VecCopy(ds, 1, s)
}

// CombinedDsShift writes the centering shift σμ ∇f*(z)
func (o *Genpow) CombinedDsShift(shift, stepz, steps []float64, sigmamu float64) {
	la.VecCopy(shift, sigmamu, o.grad)
}

// DsFromDzOffset short-circuits to ds
func (o *Genpow) DsFromDzOffset(out, ds, work, z []float64) {
	la.VecCopy(out, 1, ds)
}

// LambdaInvCirc is the identity for asymmetric cones
func (o *Genpow) LambdaInvCirc(out, v []float64) {
	la.VecCopy(out, 1, v)
}

// GemvW is the identity for asymmetric cones
func (o *Genpow) GemvW(trans bool, x, y []float64, alpha, beta float64) {
	for i := 0; i < o.dim; i++ {
		y[i] = alpha*x[i] + beta*y[i]
	}
}

// feasStep backtracks from amax until the shifted point is strictly feasible
func (o *Genpow) feasStep(x, dx []float64, amax float64, feasible func([]float64) bool, work []float64) float64 {
	a := amax
	for iter := 0; iter < 200; iter++ {
		for i := 0; i < o.dim; i++ {
			work[i] = x[i] + a*dx[i]
		}
		if feasible(work) {
			return a
		}
		a *= 0.8
	}
	return 0
}

// StepLength backtracks both halves to strict feasibility
func (o *Genpow) StepLength(dz, ds, z, s []float64, amax float64) (az, as float64) {
	az = o.feasStep(z, dz, amax, o.isDualFeasible, o.wz)
	as = o.feasStep(s, ds, amax, o.isPrimalFeasible, o.ws)
	return
}

// barrierPrimal evaluates f(s) = −log(∏uᵢ^{2αᵢ} − ‖w‖²) − Σ(1−αᵢ) log uᵢ
func (o *Genpow) barrierPrimal(s []float64) float64 {
	ld, pos := logDiff(o.logPhiPrimal(s), sumsq(s[o.d1:]))
	if !pos {
		return 1e300
	}
	b := -ld
	for i := 0; i < o.d1; i++ {
		b -= (1 - o.alpha[i]) * logsafe(s[i])
	}
	return b
}

// barrierDual evaluates f*(z)
func (o *Genpow) barrierDual(z []float64) float64 {
	ld, pos := logDiff(o.logPhiDual(z), sumsq(z[o.d1:]))
	if !pos {
		return 1e300
	}
	b := -ld
	for i := 0; i < o.d1; i++ {
		b -= (1 - o.alpha[i]) * logsafe(z[i])
	}
	return b
}

// ComputeBarrier evaluates primal plus dual barrier at the shifted pair
func (o *Genpow) ComputeBarrier(z, s, dz, ds []float64, alpha float64) float64 {
	for i := 0; i < o.dim; i++ {
		o.ws[i] = s[i] + alpha*ds[i]
		o.wz[i] = z[i] + alpha*dz[i]
	}
	return o.barrierPrimal(o.ws) + o.barrierDual(o.wz)
}

// GradientPrimal computes g = ∇f̃(s), the conjugate-barrier gradient at the
// primal point, so that ∇f*(−g) = −s. With w = s[d1:] ≠ 0 the problem
// reduces to the scalar root of
//
//	f(T) = log φ(T) + log ‖w‖² − log(4T(T−1)),  T ∈ (1, ∞)
//	φ(T) = ∏((2αᵢT + 1 − αᵢ)/(αᵢ uᵢ))^{2αᵢ}
//
// which is strictly decreasing, so a Newton-Raphson iteration safeguarded by
// the bracket [1, hi] converges from the bracketing start hi. Returns the
// number of iterations spent.
func (o *Genpow) GradientPrimal(g, s []float64) (nit int) {
	u := s[:o.d1]
	w := s[o.d1:]
	w2 := sumsq(w)
	if w2 < 1e-30 {
		for i := 0; i < o.d1; i++ {
			g[i] = -(1 + o.alpha[i]) / u[i]
		}
		for j := 0; j < o.d2; j++ {
			g[o.d1+j] = 0
		}
		return 0
	}

	fval := func(t float64) (f, df float64) {
		f = math.Log(w2) - math.Log(4) - math.Log(t) - math.Log(t-1)
		df = -1/t - 1/(t-1)
		for i := 0; i < o.d1; i++ {
			ai := o.alpha[i]
			f += 2 * ai * math.Log((2*ai*t+1-ai)/(ai*u[i]))
			df += 4 * ai * ai / (2*ai*t + 1 - ai)
		}
		return
	}

	// bracket: f(1⁺) = +∞ and f decreases; double hi until f(hi) < 0
	lo, hi := 1.0, 2.0
	fhi, _ := fval(hi)
	for fhi > 0 {
		lo = hi
		hi *= 2
		fhi, _ = fval(hi)
	}

	// safeguarded Newton-Raphson from the bracketing end
	t := hi
	for nit = 1; nit <= 50; nit++ {
		f, df := fval(t)
		if math.Abs(f) < 1e-12 {
			break
		}
		if f > 0 {
			lo = t
		} else {
			hi = t
		}
		t -= f / df
		if t <= lo || t >= hi {
			t = (lo + hi) / 2
		}
	}

	zeta := 4 * (t - 1) / w2
	for i := 0; i < o.d1; i++ {
		g[i] = -(2*o.alpha[i]*t + 1 - o.alpha[i]) / u[i]
	}
	for j := 0; j < o.d2; j++ {
		g[o.d1+j] = zeta / 2 * w[j]
	}
	return
}
