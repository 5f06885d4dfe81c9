// Copyright 2017 The Goconic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipm

// Status represents the state of the solver and the kind of termination.
// All faults surface as a status; the solver never panics mid-iteration.
type Status int

const (
	Unsolved Status = iota
	Solving
	Solved
	AlmostSolved
	PrimalInfeasible
	DualInfeasible
	MaxIters
	TimeLimit
	NumericalError
	InsufficientProgress
)

// statusnames maps status codes to printable names
var statusnames = map[Status]string{
	Unsolved:             "Unsolved",
	Solving:              "Solving",
	Solved:               "Solved",
	AlmostSolved:         "AlmostSolved",
	PrimalInfeasible:     "PrimalInfeasible",
	DualInfeasible:       "DualInfeasible",
	MaxIters:             "MaxIters",
	TimeLimit:            "TimeLimit",
	NumericalError:       "NumericalError",
	InsufficientProgress: "InsufficientProgress",
}

func (o Status) String() string { return statusnames[o] }

// IsOptimal tells whether the status corresponds to a solution within the
// full or the reduced tolerance band
func (o Status) IsOptimal() bool { return o == Solved || o == AlmostSolved }
