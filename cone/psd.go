// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"gonum.org/v1/gonum/mat"
)

// Psd implements the cone of positive-semidefinite matrices in packed svec
// storage: the upper triangle is stacked column-wise with off-diagonal
// entries scaled by √2, so the packed inner product matches the matrix one.
// The Nesterov-Todd factors follow from Cholesky decompositions of S and Z
// and one SVD:
//
//	Lzᵀ Ls = U Σ Vᵀ,  R = Ls V Σ^{-1/2},  R⁻¹ = Σ^{-1/2} Uᵀ Lzᵀ
//
// so that R⁻¹ S R⁻ᵀ = Rᵀ Z R = Σ = Λ and Hs x = svec(RRᵀ mat(x) RRᵀ).
type Psd struct {
	n   int // matrix side
	dim int // packed dimension n(n+1)/2

	// scaling state
	R    *mat.Dense // NT factor
	Rinv *mat.Dense // inverse NT factor
	B    *mat.Dense // R Rᵀ
	lam  []float64  // Λ: scaled-point eigenvalues

	// pair[k] holds the (row, col) of packed index k
	pair [][2]int

	// workspaces
	mS, mZ     *mat.SymDense
	mX, t1, t2 *mat.Dense
	sym        *mat.SymDense
	ls, lz     *mat.TriDense
	u, v       *mat.Dense
	isqrt      []float64
	wvec       []float64
}

// set factory
func init() {
	allocators["psd"] = func() Cone { return new(Psd) }
}

// Init initialises the cone; dim is the packed triangle length
func (o *Psd) Init(dim int, alpha []float64) error {
	n := int((math.Sqrt(float64(8*dim+1)) - 1) / 2)
	if n*(n+1)/2 != dim {
		return chk.Err("psd cone dimension must be a triangular number. dim=%d is invalid", dim)
	}
	o.n = n
	o.dim = dim
	o.R = mat.NewDense(n, n, nil)
	o.Rinv = mat.NewDense(n, n, nil)
	o.B = mat.NewDense(n, n, nil)
	o.lam = make([]float64, n)
	o.pair = make([][2]int, dim)
	k := 0
	for j := 0; j < n; j++ {
		for i := 0; i <= j; i++ {
			o.pair[k] = [2]int{i, j}
			k++
		}
	}
	o.mS = mat.NewSymDense(n, nil)
	o.mZ = mat.NewSymDense(n, nil)
	o.mX = mat.NewDense(n, n, nil)
	o.t1 = mat.NewDense(n, n, nil)
	o.t2 = mat.NewDense(n, n, nil)
	o.sym = mat.NewSymDense(n, nil)
	o.ls = mat.NewTriDense(n, mat.Lower, nil)
	o.lz = mat.NewTriDense(n, mat.Lower, nil)
	o.u = mat.NewDense(n, n, nil)
	o.v = mat.NewDense(n, n, nil)
	o.isqrt = make([]float64, n)
	o.wvec = make([]float64, dim)
	return nil
}

func (o *Psd) Dim() int           { return o.dim }
func (o *Psd) Degree() int        { return o.n }
func (o *Psd) IsSymmetric() bool  { return true }
func (o *Psd) HsIsDiagonal() bool { return false }
func (o *Psd) NumelHs() int       { return o.dim * (o.dim + 1) / 2 }

// svecToSym unpacks x into the symmetric matrix M
func (o *Psd) svecToSym(M *mat.SymDense, x []float64) {
	for k, p := range o.pair {
		i, j := p[0], p[1]
		if i == j {
			M.SetSym(i, j, x[k])
		} else {
			M.SetSym(i, j, x[k]/math.Sqrt2)
		}
	}
}

// symToSvec packs the symmetric part of M into x
func (o *Psd) symToSvec(x []float64, M mat.Matrix) {
	for k, p := range o.pair {
		i, j := p[0], p[1]
		if i == j {
			x[k] = M.At(i, i)
		} else {
			x[k] = (M.At(i, j) + M.At(j, i)) / math.Sqrt2
		}
	}
}

// UnitInit sets s = z = svec(I)
func (o *Psd) UnitInit(s, z []float64) {
	la.VecFill(s, 0)
	la.VecFill(z, 0)
	for k, p := range o.pair {
		if p[0] == p[1] {
			s[k] = 1
			z[k] = 1
		}
	}
}

// ShiftToCone shifts x along svec(I) when its smallest eigenvalue is
// insufficient
func (o *Psd) ShiftToCone(x []float64) {
	o.svecToSym(o.mS, x)
	var es mat.EigenSym
	if !es.Factorize(o.mS, false) {
		return
	}
	ev := es.Values(nil)
	m := ev[0]
	for _, e := range ev {
		if e < m {
			m = e
		}
	}
	if m < 1e-12 {
		for k, p := range o.pair {
			if p[0] == p[1] {
				x[k] += 1 - m
			}
		}
	}
}

// UpdateScaling refreshes the NT factors from (s, z)
func (o *Psd) UpdateScaling(s, z []float64, mu float64) bool {
	o.svecToSym(o.mS, s)
	o.svecToSym(o.mZ, z)
	var chs, chz mat.Cholesky
	if !chs.Factorize(o.mS) || !chz.Factorize(o.mZ) {
		return false
	}
	chs.LTo(o.ls)
	chz.LTo(o.lz)

	// SVD of Lzᵀ Ls
	o.t1.Mul(o.lz.T(), o.ls)
	var svd mat.SVD
	if !svd.Factorize(o.t1, mat.SVDFull) {
		return false
	}
	svd.Values(o.lam)
	for i, e := range o.lam {
		if e <= 0 {
			return false
		}
		o.isqrt[i] = 1 / math.Sqrt(e)
	}
	svd.UTo(o.u)
	svd.VTo(o.v)

	// R = Ls V Σ^{-1/2}
	o.t1.Mul(o.ls, o.v)
	for j := 0; j < o.n; j++ {
		for i := 0; i < o.n; i++ {
			o.R.Set(i, j, o.t1.At(i, j)*o.isqrt[j])
		}
	}

	// R⁻¹ = Σ^{-1/2} Uᵀ Lzᵀ
	o.t1.Mul(o.u.T(), o.lz.T())
	for i := 0; i < o.n; i++ {
		for j := 0; j < o.n; j++ {
			o.Rinv.Set(i, j, o.t1.At(i, j)*o.isqrt[i])
		}
	}

	o.B.Mul(o.R, o.R.T())
	return true
}

// GetHsBlock writes the packed upper triangle of the symmetrised Kronecker
// operator of B = RRᵀ, column-wise
func (o *Psd) GetHsBlock(hs []float64) {
	idx := 0
	for b := 0; b < o.dim; b++ {
		k, l := o.pair[b][0], o.pair[b][1]
		for a := 0; a <= b; a++ {
			i, j := o.pair[a][0], o.pair[a][1]
			var e float64
			switch {
			case i == j && k == l:
				e = o.B.At(i, k) * o.B.At(i, k)
			case i == j:
				e = math.Sqrt2 * o.B.At(i, k) * o.B.At(i, l)
			case k == l:
				e = math.Sqrt2 * o.B.At(k, i) * o.B.At(k, j)
			default:
				e = o.B.At(i, k)*o.B.At(j, l) + o.B.At(i, l)*o.B.At(j, k)
			}
			hs[idx] = e
			idx++
		}
	}
}

// MulHs computes y = svec(B mat(x) B)
func (o *Psd) MulHs(y, x, work []float64) {
	o.svecToSym(o.mS, x)
	o.t1.Mul(o.B, o.mS)
	o.t2.Mul(o.t1, o.B)
	o.symToSvec(y, o.t2)
}

// AffineDs writes λ∘λ = svec(Λ²)
func (o *Psd) AffineDs(ds, s []float64) {
	la.VecFill(ds, 0)
	i := 0
	for k, p := range o.pair {
		if p[0] == p[1] {
			ds[k] = o.lam[i] * o.lam[i]
			i++
		}
	}
}

// CombinedDsShift adds the Mehrotra correction (W⁻ᵀΔs)∘(WΔz) − σμ svec(I)
func (o *Psd) CombinedDsShift(shift, stepz, steps []float64, sigmamu float64) {
	// A = R⁻¹ mat(Δs) R⁻ᵀ
	o.svecToSym(o.mS, steps)
	o.t1.Mul(o.Rinv, o.mS)
	o.mX.Mul(o.t1, o.Rinv.T())

	// C = Rᵀ mat(Δz) R
	o.svecToSym(o.mZ, stepz)
	o.t1.Mul(o.R.T(), o.mZ)
	o.t2.Mul(o.t1, o.R)

	// (A∘C) = (AC + CA)/2; t1 = AC
	o.t1.Mul(o.mX, o.t2)
	for k, p := range o.pair {
		i, j := p[0], p[1]
		e := (o.t1.At(i, j) + o.t1.At(j, i)) / 2
		if i == j {
			shift[k] = e - sigmamu
		} else {
			shift[k] = math.Sqrt2 * e
		}
	}
}

// DsFromDzOffset computes Wᵀ(λ∖ds)
func (o *Psd) DsFromDzOffset(out, ds, work, z []float64) {
	o.LambdaInvCirc(work, ds)
	o.GemvW(true, work, out, 1, 0)
}

// LambdaInvCirc computes out = λ∖v: mat(out)ᵢⱼ = 2 mat(v)ᵢⱼ/(λᵢ+λⱼ)
func (o *Psd) LambdaInvCirc(out, v []float64) {
	for k, p := range o.pair {
		i, j := p[0], p[1]
		out[k] = 2 * v[k] / (o.lam[i] + o.lam[j])
	}
}

// GemvW computes y = α W x + β y with W x = svec(Rᵀ mat(x) R) and
// Wᵀ x = svec(R mat(x) Rᵀ)
func (o *Psd) GemvW(trans bool, x, y []float64, alpha, beta float64) {
	o.svecToSym(o.mS, x)
	if trans {
		o.t1.Mul(o.R, o.mS)
		o.t2.Mul(o.t1, o.R.T())
	} else {
		o.t1.Mul(o.R.T(), o.mS)
		o.t2.Mul(o.t1, o.R)
	}
	for k, p := range o.pair {
		i, j := p[0], p[1]
		e := o.t2.At(i, j)
		if i != j {
			e = (e + o.t2.At(j, i)) / math.Sqrt2
		}
		y[k] = alpha*e + beta*y[k]
	}
}

// stepToBoundary returns the largest feasible step from the smallest
// eigenvalue of the congruence-transformed direction
func (o *Psd) stepToBoundary(d []float64, left, right mat.Matrix, amax float64) float64 {
	o.svecToSym(o.mS, d)
	o.t1.Mul(left, o.mS)
	o.t2.Mul(o.t1, right)
	for j := 0; j < o.n; j++ {
		for i := 0; i <= j; i++ {
			e := (o.t2.At(i, j) + o.t2.At(j, i)) / 2 * o.isqrt[i] * o.isqrt[j]
			o.sym.SetSym(i, j, e)
		}
	}
	var es mat.EigenSym
	if !es.Factorize(o.sym, false) {
		return 0
	}
	ev := es.Values(nil)
	m := ev[0]
	for _, e := range ev {
		if e < m {
			m = e
		}
	}
	if m >= 0 {
		return amax
	}
	if r := -1 / m; r < amax {
		return r
	}
	return amax
}

// StepLength computes the maximum feasible steps for both halves
func (o *Psd) StepLength(dz, ds, z, s []float64, amax float64) (az, as float64) {
	az = o.stepToBoundary(dz, o.R.T(), o.R, amax)
	as = o.stepToBoundary(ds, o.Rinv, o.Rinv.T(), amax)
	return
}

// barrierHalf evaluates the shifted log-det barrier of one half
func (o *Psd) barrierHalf(x, dx []float64, alpha float64) float64 {
	for k := range x {
		o.wvec[k] = x[k] + alpha*dx[k]
	}
	o.svecToSym(o.mS, o.wvec)
	var ch mat.Cholesky
	if !ch.Factorize(o.mS) {
		return 1e300
	}
	return -ch.LogDet()
}

// ComputeBarrier evaluates the log-det barrier at the shifted pair
func (o *Psd) ComputeBarrier(z, s, dz, ds []float64, alpha float64) float64 {
	return o.barrierHalf(s, ds, alpha) + o.barrierHalf(z, dz, alpha)
}
