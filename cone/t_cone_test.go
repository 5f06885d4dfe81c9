// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

// ntPair builds a cone from spec and refreshes its scaling at (s, z)
func ntPair(tst *testing.T, kind string, dim int, alpha, s, z []float64) Cone {
	c := allocators[kind]()
	err := c.Init(dim, alpha)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return nil
	}
	if !c.UpdateScaling(s, z, 1) {
		tst.Errorf("test failed: scaling update rejected a feasible pair\n")
		return nil
	}
	return c
}

func Test_nonneg01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("nonneg01. Nesterov-Todd scaling")

	s := []float64{2, 0.5, 1.5, 3}
	z := []float64{1, 0.2, 2.5, 0.7}
	c := ntPair(tst, "nonneg", 4, nil, s, z)
	if c == nil {
		return
	}

	// Hs z = s at the scaling point
	y := make([]float64, 4)
	c.MulHs(y, z, nil)
	chk.Vector(tst, "Hs z", 1e-14, y, s)

	// Wᵀ(W x) = Hs x
	x := []float64{0.3, -1.2, 0.8, 2.1}
	w1 := make([]float64, 4)
	w2 := make([]float64, 4)
	c.GemvW(false, x, w1, 1, 0)
	c.GemvW(true, w1, w2, 1, 0)
	c.MulHs(y, x, nil)
	chk.Vector(tst, "WᵀW x", 1e-14, w2, y)

	// λ∘(λ∖v) = v
	v := []float64{1.1, -0.4, 0.9, 0.25}
	li := make([]float64, 4)
	c.LambdaInvCirc(li, v)
	nn := c.(*Nonneg)
	for i := 0; i < 4; i++ {
		chk.Scalar(tst, "λ∘(λ∖v)", 1e-15, nn.lam[i]*li[i], v[i])
	}

	// step length reaches the boundary exactly
	dz := []float64{-2, 1, 1, 1}
	ds := []float64{1, 1, 1, 1}
	az, _ := c.StepLength(dz, ds, z, s, 10)
	chk.Scalar(tst, "az", 1e-15, az, 0.5)
}

func Test_soc01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("soc01. hyperbolic scaling and sparse expansion")

	s := []float64{2, 0.5, 0.3, -0.1}
	z := []float64{1.5, -0.2, 0.4, 0.3}
	c := ntPair(tst, "soc", 4, nil, s, z)
	if c == nil {
		return
	}
	soc := c.(*Soc)

	// w̄ has unit hyperbolic norm
	chk.Scalar(tst, "w̄ᵀJw̄", 1e-14, soc.wb[0]*soc.wb[0]-sumsq(soc.wb[1:]), 1)

	// Hs z = s at the scaling point
	y := make([]float64, 4)
	c.MulHs(y, z, nil)
	chk.Vector(tst, "Hs z", 1e-13, y, s)

	// λᵀλ = sᵀz
	sz := 0.0
	for i := range s {
		sz += s[i] * z[i]
	}
	chk.Scalar(tst, "λᵀλ", 1e-13, sumsq(soc.lam), sz)

	// sparse expansion matches the dense operator: Hs x = η²(x + u(uᵀx) − v(vᵀx))
	eta2, u, v := soc.SparseExpansion()
	x := []float64{0.7, -0.6, 0.2, 1.1}
	ux, vx := 0.0, 0.0
	for i := range x {
		ux += u[i] * x[i]
		vx += v[i] * x[i]
	}
	ref := make([]float64, 4)
	for i := range x {
		ref[i] = eta2 * (x[i] + ux*u[i] - vx*v[i])
	}
	c.MulHs(y, x, nil)
	chk.Vector(tst, "sparse Hs", 1e-13, y, ref)

	// Wᵀ(W x) = Hs x
	w1 := make([]float64, 4)
	w2 := make([]float64, 4)
	c.GemvW(false, x, w1, 1, 0)
	c.GemvW(true, w1, w2, 1, 0)
	chk.Vector(tst, "WᵀW x", 1e-13, w2, y)

	// λ∘(λ∖v) = v
	vv := []float64{0.9, 0.1, -0.3, 0.2}
	li := make([]float64, 4)
	out := make([]float64, 4)
	c.LambdaInvCirc(li, vv)
	circ(out, li, soc.lam)
	chk.Vector(tst, "λ∘(λ∖v)", 1e-13, out, vv)

	// step length lands on the boundary
	dz := []float64{-1, 0, 0, 0}
	az, _ := c.StepLength(dz, dz, z, s, 10)
	zb := make([]float64, 4)
	for i := range z {
		zb[i] = z[i] + az*dz[i]
	}
	chk.Scalar(tst, "boundary det", 1e-12, zb[0]*zb[0]-sumsq(zb[1:]), 0)
}

func Test_psd01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("psd01. NT factors from Cholesky and SVD")

	// svec of S = [4 1 0; 1 3 1; 0 1 2] and Z = [2 -1 0; -1 2 0; 0 0 1]
	sq2 := math.Sqrt2
	s := []float64{4, 1 * sq2, 3, 0, 1 * sq2, 2}
	z := []float64{2, -1 * sq2, 2, 0, 0, 1}
	c := ntPair(tst, "psd", 6, nil, s, z)
	if c == nil {
		return
	}

	// Hs z = s at the scaling point
	y := make([]float64, 6)
	work := make([]float64, 6)
	c.MulHs(y, z, work)
	chk.Vector(tst, "Hs z", 1e-12, y, s)

	// W z = svec(Λ)
	psd := c.(*Psd)
	wz := make([]float64, 6)
	c.GemvW(false, z, wz, 1, 0)
	lamsvec := make([]float64, 6)
	i := 0
	for k, p := range psd.pair {
		if p[0] == p[1] {
			lamsvec[k] = psd.lam[i]
			i++
		}
	}
	chk.Vector(tst, "W z", 1e-12, wz, lamsvec)

	// Wᵀ(W x) = Hs x
	x := []float64{0.5, -0.2, 1.1, 0.4, 0.1, 0.9}
	w1 := make([]float64, 6)
	w2 := make([]float64, 6)
	c.GemvW(false, x, w1, 1, 0)
	c.GemvW(true, w1, w2, 1, 0)
	c.MulHs(y, x, work)
	chk.Vector(tst, "WᵀW x", 1e-12, w2, y)

	// the dense Hs block agrees with MulHs on the packed basis
	nh := c.NumelHs()
	hs := make([]float64, nh)
	c.GetHsBlock(hs)
	e := make([]float64, 6)
	col := make([]float64, 6)
	for b := 0; b < 6; b++ {
		for k := range e {
			e[k] = 0
		}
		e[b] = 1
		c.MulHs(col, e, work)
		for a := 0; a <= b; a++ {
			chk.Scalar(tst, "Hs block", 1e-12, hs[b*(b+1)/2+a], col[a])
		}
	}

	// step to the boundary along −z is exactly one
	dz := make([]float64, 6)
	for k := range z {
		dz[k] = -z[k]
	}
	az, _ := c.StepLength(dz, dz, z, s, 10)
	chk.Scalar(tst, "az", 1e-12, az, 1)
}

func Test_zero01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("zero01. zero cone is inert")

	c := allocators["zero"]()
	err := c.Init(3, nil)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	s := make([]float64, 3)
	z := make([]float64, 3)
	c.UnitInit(s, z)
	chk.Vector(tst, "s", 1e-17, s, []float64{0, 0, 0})
	if !c.UpdateScaling(s, z, 1) {
		tst.Errorf("test failed: zero cone scaling must always succeed\n")
	}
	az, as := c.StepLength(z, s, z, s, 2)
	chk.Scalar(tst, "az", 1e-17, az, 2)
	chk.Scalar(tst, "as", 1e-17, as, 2)
	chk.Scalar(tst, "degree", 1e-17, float64(c.Degree()), 0)
}

func Test_cones01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cones01. composite construction")

	specs := []*Spec{
		{Kind: "zero", Dim: 2},
		{Kind: "nonneg", Dim: 3},
		{Kind: "soc", Dim: 3},
		{Kind: "genpow", Dim: 3, Alpha: []float64{0.5, 0.5}},
	}
	cones, err := New(specs)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "M", 1e-17, float64(cones.M), 11)
	chk.Scalar(tst, "Nu", 1e-17, float64(cones.Nu), 0+3+1+3)
	chk.Scalar(tst, "Nsoc", 1e-17, float64(cones.Nsoc), 1)

	// unit initialisation lands strictly inside every cone
	s := make([]float64, 11)
	z := make([]float64, 11)
	cones.UnitInit(s, z)
	if !cones.UpdateScaling(s, z, 1) {
		tst.Errorf("test failed: unit point must be scalable\n")
	}

	// unknown kind is rejected
	_, err = New([]*Spec{{Kind: "unknown", Dim: 1}})
	if err == nil {
		tst.Errorf("test failed: unknown cone kind must be rejected\n")
	}
}
