// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import "math"

// logsafe returns log(x) for positive x and a large negative finite value
// otherwise, so that feasibility predicates never produce NaN
func logsafe(x float64) float64 {
	if x <= 0 {
		return -1e300
	}
	return math.Log(x)
}

// min3 returns the smallest of three values
func min3(a, b, c float64) float64 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// sumsq returns the sum of squares of v
func sumsq(v []float64) (s float64) {
	for _, x := range v {
		s += x * x
	}
	return
}

// stepRatio returns the largest a in [0, amax] with x + a*dx >= 0 for all
// components, by scalar ratio tests
func stepRatio(x, dx []float64, amax float64) float64 {
	a := amax
	for i := 0; i < len(x); i++ {
		if dx[i] < 0 {
			r := -x[i] / dx[i]
			if r < a {
				a = r
			}
		}
	}
	return a
}
