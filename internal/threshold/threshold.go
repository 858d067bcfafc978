// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package threshold

import (
	"errors"
	"fmt"
)

var (
	// One side of the partition was empty, so its mean is undefined
	ErrDegenerateThreshold    = errors.New("degenerate threshold")
	ErrIterationLimitExceeded = errors.New("threshold iteration limit exceeded")
)

// Default bound on the number of partition passes. Zero or negative bounds disable the check
const DefaultMaxIterations = 10000

// Maximum step between two thresholds which counts as converged
const convergenceStep = 0.5

// A converged binarization cutoff
type Result struct {
	Threshold  float64 `json:"threshold"`  // The cutoff
	Seed       float64 `json:"seed"`       // Where iteration started
	Iterations int     `json:"iterations"` // Number of partition passes taken
	Step       float64 `json:"step"`       // Threshold minus its predecessor in the final pass, at most 0.5
}

func (r Result) String() string {
	return fmt.Sprintf("threshold %.4f from seed %g after %d iterations", r.Threshold, r.Seed, r.Iterations)
}

// Finds a stable binarization cutoff by fixed-point iteration. Each pass splits the data into
// values above the current threshold and values at or below it, and moves the threshold to the
// midpoint of both group means. Iteration stops as soon as the new threshold exceeds the current
// one by no more than 0.5. The step is signed: a threshold that drops by any amount is accepted.
func Solve(data []float64, seed float64, maxIterations int) (Result, error) {
	current:=seed
	for i:=1; ; i++ {
		if maxIterations>0 && i>maxIterations {
			return Result{}, fmt.Errorf("no convergence from seed %g within %d iterations, last threshold %g: %w",
			                            seed, maxIterations, current, ErrIterationLimitExceeded)
		}

		sumHigh, numHigh, sumLow, numLow:=0.0, 0, 0.0, 0
		for _, v:=range data {
			if v>current {
				sumHigh+=v
				numHigh++
			} else {
				sumLow+=v
				numLow++
			}
		}
		if numHigh==0 || numLow==0 {
			return Result{}, fmt.Errorf("threshold %g leaves %d values above and %d at or below: %w",
			                            current, numHigh, numLow, ErrDegenerateThreshold)
		}

		next:=(sumHigh/float64(numHigh) + sumLow/float64(numLow)) / 2
		if next-current<=convergenceStep {
			return Result{Threshold: next, Seed: seed, Iterations: i, Step: next-current}, nil
		}
		current=next
	}
}

// Writes 1 to dst for every src value strictly above t, and 0 otherwise. dst and src may alias
func Binarize(dst, src []float64, t float64) {
	for i, v:=range src {
		if v>t {
			dst[i]=1
		} else {
			dst[i]=0
		}
	}
}
