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

package filter

import (
	"fmt"
	"math"
	"gonum.org/v1/gonum/mat"
)

// Builds the filter for the given method code from its parameter tokens, in stream order:
//
//   1  threshold seed
//   2  kernel size K, then K weights
//   3  kernel size K, then K rows of K weights, then threshold seed
//   4  kernel size K
//
// Kernel sizes must be odd and positive, and the token count must match exactly.
// All tokens must be integers. Violations yield ErrInvalidParameter
func Select(method int, tokens []float64) (Filter, error) {
	for i, t:=range tokens {
		if t!=math.Trunc(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("token %d is %g, want an integer: %w", i, t, ErrInvalidParameter)
		}
	}

	switch m:=Method(method); m {
	case MethodThreshold:
		if err:=wantTokens(m, tokens, 1); err!=nil { return nil, err }
		return &Threshold{Seed: tokens[0]}, nil

	case MethodConvolution1D:
		k, err:=kernelSize(m, tokens)
		if err!=nil { return nil, err }
		if err:=wantTokens(m, tokens, 1+k); err!=nil { return nil, err }
		return &Convolution1D{Kernel: append([]float64(nil), tokens[1:]...)}, nil

	case MethodConvolution2DThresh:
		k, err:=kernelSize(m, tokens)
		if err!=nil { return nil, err }
		if err:=wantTokens(m, tokens, 1+k*k+1); err!=nil { return nil, err }
		kernel:=mat.NewDense(k, k, append([]float64(nil), tokens[1:1+k*k]...))
		return &Convolution2DThresh{Kernel: kernel, Seed: tokens[1+k*k]}, nil

	case MethodMedian:
		k, err:=kernelSize(m, tokens)
		if err!=nil { return nil, err }
		if err:=wantTokens(m, tokens, 1); err!=nil { return nil, err }
		return &Median{Size: k}, nil

	default:
		return nil, fmt.Errorf("unknown method %d, want 1 to 4: %w", method, ErrInvalidParameter)
	}
}

func wantTokens(m Method, tokens []float64, n int) error {
	if len(tokens)!=n {
		return fmt.Errorf("%v takes %d parameters, got %d: %w", m, n, len(tokens), ErrInvalidParameter)
	}
	return nil
}

// Reads the leading kernel size token and checks it is odd and positive
func kernelSize(m Method, tokens []float64) (int, error) {
	if len(tokens)==0 {
		return 0, fmt.Errorf("%v needs a kernel size: %w", m, ErrInvalidParameter)
	}
	k:=tokens[0]
	if k<1 || math.Mod(k, 2)!=1 || k>math.MaxInt32 {
		return 0, fmt.Errorf("%v kernel size %g is not odd and positive: %w", m, k, ErrInvalidParameter)
	}
	return int(k), nil
}
