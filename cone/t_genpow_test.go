// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/num"
)

func Test_genpow01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("genpow01. log-space feasibility boundary")

	c := new(Genpow)
	err := c.Init(3, []float64{0.5, 0.5})
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	// boundary √(u₁u₂) = ‖w‖ with u = (2, 0.5): √(u₁u₂) = 1
	if !c.isPrimalFeasible([]float64{2, 0.5, 1 - 1e-10}) {
		tst.Errorf("test failed: interior point flagged infeasible\n")
	}
	if c.isPrimalFeasible([]float64{2, 0.5, 1 + 1e-10}) {
		tst.Errorf("test failed: exterior point flagged feasible\n")
	}
	if c.isPrimalFeasible([]float64{2, 0.5, 1}) {
		tst.Errorf("test failed: boundary point must not be strictly feasible\n")
	}

	// huge components must not overflow the product test
	if !c.isPrimalFeasible([]float64{1e200, 1e200, 1e150}) {
		tst.Errorf("test failed: log-space test overflowed\n")
	}

	// dual cone boundary: ∏(zᵢ/αᵢ)^{αᵢ} = ‖y‖; z = (1, 1) gives radius 2
	if !c.isDualFeasible([]float64{1, 1, 2 - 1e-10}) {
		tst.Errorf("test failed: dual interior point flagged infeasible\n")
	}
	if c.isDualFeasible([]float64{1, 1, 2 + 1e-10}) {
		tst.Errorf("test failed: dual exterior point flagged feasible\n")
	}
}

func Test_genpow02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("genpow02. Newton-Raphson primal gradient recovery")

	c := new(Genpow)
	err := c.Init(4, []float64{0.3, 0.7})
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	// deterministic sweep of interior points: u on a grid, w at a fraction
	// of the boundary radius
	g := make([]float64, 4)
	y := make([]float64, 4)
	for _, u1 := range []float64{0.4, 1.0, 2.5} {
		for _, u2 := range []float64{0.6, 1.3, 3.1} {
			for _, frac := range []float64{0, 0.3, 0.9, 0.999} {
				rad := math.Pow(u1, 0.3) * math.Pow(u2, 0.7)
				w := frac * rad / math.Sqrt2
				s := []float64{u1, u2, w, w}
				nit := c.GradientPrimal(g, s)
				if nit > 20 {
					tst.Errorf("test failed: Newton-Raphson took %d > 20 iterations\n", nit)
					return
				}

				// log-homogeneity: ⟨s, −g⟩ = ν
				dot := 0.0
				for i := range s {
					dot -= s[i] * g[i]
				}
				chk.Scalar(tst, "sᵀ(−g)", 1e-8, dot, float64(c.Degree()))

				// −g is strictly dual feasible and inverts the dual
				// gradient map: ∇f*(−g) = −s
				for i := range g {
					y[i] = -g[i]
				}
				if !c.isDualFeasible(y) {
					tst.Errorf("test failed: −g is not dual feasible\n")
					return
				}
				if !c.UpdateScaling(s, y, 1) {
					tst.Errorf("test failed: scaling rejected (s, −g)\n")
					return
				}
				for i := range s {
					chk.Scalar(tst, "∇f*(−g)", 1e-7, c.grad[i], -s[i])
				}
			}
		}
	}
}

func Test_genpow03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("genpow03. dual Hessian vs finite differences")

	c := new(Genpow)
	err := c.Init(4, []float64{0.4, 0.6})
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	s := []float64{1.2, 1.1, 0.2, -0.1}
	z := []float64{0.9, 1.4, 0.5, -0.3}
	if !c.UpdateScaling(s, z, 1) {
		tst.Errorf("test failed: scaling rejected a feasible pair\n")
		return
	}

	// H from the rank-three split against ∂gᵢ/∂zⱼ
	work := make([]float64, 4)
	e := make([]float64, 4)
	col := make([]float64, 4)
	probe := new(Genpow)
	probe.Init(4, []float64{0.4, 0.6})
	zp := make([]float64, 4)
	for j := 0; j < 4; j++ {
		for k := range e {
			e[k] = 0
		}
		e[j] = 1
		c.MulHs(col, e, work)
		for i := 0; i < 4; i++ {
			dnum := num.DerivCen(func(x float64, args ...interface{}) (res float64) {
				copy(zp, z)
				zp[j] = x
				probe.UpdateScaling(s, zp, 1)
				return probe.grad[i]
			}, z[j])
			chk.Scalar(tst, "H", 1e-6, col[i], dnum)
		}
	}

	// the packed block agrees with the operator
	hs := make([]float64, c.NumelHs())
	c.GetHsBlock(hs)
	for b := 0; b < 4; b++ {
		for k := range e {
			e[k] = 0
		}
		e[b] = 1
		c.MulHs(col, e, work)
		for a := 0; a <= b; a++ {
			chk.Scalar(tst, "Hs block", 1e-13, hs[b*(b+1)/2+a], col[a])
		}
	}
}
