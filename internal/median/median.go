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

package median

import (
	"github.com/mlnoga/filterscore/internal/qsort"
	"github.com/mlnoga/filterscore/internal/raster"
)

// Applies a kxk median filter to src and stores the results in dst, which must have the same shape
// and must not alias src. k must be odd and positive. The raster is zero-padded by (k-1)/2 cells on
// all sides, so cells near the edges take zeros into their neighbourhood. Each output cell is the
// element at sorted index (k*k-1)/2 of its neighbourhood. Rows run in parallel on up to maxThreads goroutines
func Filter(dst, src *raster.Raster, k int, maxThreads int) {
	if k==1 {
		copy(dst.Data, src.Data)
		return
	}
	p:=(k-1)/2
	padded:=zeroPad(src, p)
	pw:=src.Width+2*p

	raster.ForEachRow(src.Height, maxThreads, func(y int) {
		gathered:=make([]float64, k*k)
		out:=dst.Row(y)
		for x:=range out {
			j:=0
			for ky:=0; ky<k; ky++ {
				start:=(y+ky)*pw + x
				j+=copy(gathered[j:], padded[start:start+k])
			}
			out[x]=medianOf(gathered)
		}
	})
}

// Returns the raster data with p rows and columns of zeros added on all four sides
func zeroPad(src *raster.Raster, p int) []float64 {
	pw:=src.Width+2*p
	padded:=make([]float64, pw*(src.Height+2*p))
	for y:=0; y<src.Height; y++ {
		copy(padded[(y+p)*pw+p:], src.Row(y))
	}
	return padded
}

// Element at sorted index (len-1)/2. Modifies the elements in place
func medianOf(a []float64) float64 {
	if len(a)==9 { return MedianFloat64Slice9(a) }
	return qsort.QSelectLowerMedianFloat64(a)
}

// Calculates the median of a float64 slice of length nine
// Modifies the elements in place
// From https://stackoverflow.com/questions/45453537/optimal-9-element-sorting-network-that-reduces-to-an-optimal-median-of-9-network
// See also http://ndevilla.free.fr/median/median/src/optmed.c for other sizes
// Array must not contain IEEE NaN
func MedianFloat64Slice9(a []float64) float64 {       // 30x min/max
    if a[0]>a[1] { a[0], a[1] = a[1], a[0]}  // swap(a,0,1)
    if a[3]>a[4] { a[3], a[4] = a[4], a[3]}  // swap(a,3,4)
    if a[6]>a[7] { a[6], a[7] = a[7], a[6]}  // swap(a,6,7)
    if a[1]>a[2] { a[1], a[2] = a[2], a[1]}  // swap(a,1,2)
    if a[4]>a[5] { a[4], a[5] = a[5], a[4]}  // swap(a,4,5)
    if a[7]>a[8] { a[7], a[8] = a[8], a[7]}  // swap(a,7,8)
    if a[0]>a[1] { a[0], a[1] = a[1], a[0]}  // swap(a,0,1)
    if a[3]>a[4] { a[3], a[4] = a[4], a[3]}  // swap(a,3,4)
    if a[6]>a[7] { a[6], a[7] = a[7], a[6]}  // swap(a,6,7)
    if a[0]>a[3] { a[3]       = a[0]      }  // max (a,0,3)
    if a[3]>a[6] { a[6]       = a[3]      }  // max (a,3,6)
    if a[1]>a[4] { a[1], a[4] = a[4], a[1]}  // swap(a,1,4)
    if a[4]>a[7] { a[4]       = a[7]      }  // min (a,4,7)
    if a[1]>a[4] { a[4]       = a[1]      }  // max (a,1,4)
    if a[5]>a[8] { a[5]       = a[8]      }  // min (a,5,8)
    if a[2]>a[5] { a[2]       = a[5]      }  // min (a,2,5)
    if a[2]>a[4] { a[2], a[4] = a[4], a[2]}  // swap(a,2,4)
    if a[4]>a[6] { a[4]       = a[6]      }  // min (a,4,6)
    if a[2]>a[4] { a[4]       = a[2]      }  // max (a,2,4)
    return a[4]
}
