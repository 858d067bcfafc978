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

// Package convolve implements true (kernel-flipped) convolution over rasters
// with the two boundary policies used by the filters: circular wraparound of
// the row-major flattened raster, and interior-only with border pass-through.
package convolve

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"github.com/mlnoga/filterscore/internal/raster"
)

// Number of cells a kernel of odd size k reaches beyond its center
func Padding(k int) int { return (k-1)/2 }

// Returns a reversed copy of the kernel
func Reverse(kernel []float64) []float64 {
	rev:=make([]float64, len(kernel))
	for i, w:=range kernel { rev[len(kernel)-1-i]=w }
	return rev
}

// Returns the sequence prefixed with its last p elements and suffixed with its first p elements.
// Wraps around more than once if p exceeds the sequence length
func CircularPad(data []float64, p int) []float64 {
	n:=len(data)
	padded:=make([]float64, n+2*p)
	copy(padded[p:], data)
	for i:=0; i<p; i++ {
		padded[p-1-i]  =data[((n-1-i)%n+n)%n]
		padded[p+n+i]  =data[i%n]
	}
	return padded
}

// Convolves data with an odd-sized 1D kernel and writes len(data) values to dst.
// The data is treated as one circular sequence, so for a flattened raster the ends
// of a row wrap into the neighbouring rows, and the first and last samples wrap into each other.
// dst must not alias data
func Circular1D(dst, data, kernel []float64) {
	k:=len(kernel)
	padded:=CircularPad(data, Padding(k))
	rev:=Reverse(kernel)
	for i:=range data {
		dst[i]=floats.Dot(rev, padded[i:i+k])
	}
}

// Returns the kernel rotated by 180 degrees, i.e. flipped along both axes
func Rotate180(kernel mat.Matrix) *mat.Dense {
	r, c:=kernel.Dims()
	rot:=mat.NewDense(r, c, nil)
	for y:=0; y<r; y++ {
		for x:=0; x<c; x++ {
			rot.Set(r-1-y, c-1-x, kernel.At(y, x))
		}
	}
	return rot
}

// Convolves src with a square, odd-sized 2D kernel and writes the result to dst.
// Only cells whose full neighbourhood lies inside the raster are convolved; cells within
// the padding of any edge are copied from src unchanged. Rows run in parallel on up
// to maxThreads goroutines. dst must have the shape of src and must not alias it
func Interior2D(dst, src *raster.Raster, kernel mat.Matrix, maxThreads int) {
	copy(dst.Data, src.Data)
	k, _:=kernel.Dims()
	p:=Padding(k)
	rows, cols:=src.Height-2*p, src.Width-2*p
	if rows<=0 || cols<=0 { return }

	rot:=Rotate180(kernel)
	weights:=make([][]float64, k)
	for ky:=range weights { weights[ky]=rot.RawRowView(ky) }

	raster.ForEachRow(rows, maxThreads, func(i int) {
		y:=i+p
		out:=dst.Row(y)
		for x:=p; x<src.Width-p; x++ {
			sum:=0.0
			for ky:=0; ky<k; ky++ {
				in:=src.Row(y-p+ky)[x-p : x+p+1]
				sum+=floats.Dot(weights[ky], in)
			}
			out[x]=sum
		}
	})
}
