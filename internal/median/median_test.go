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
	"sort"
	"testing"
	"github.com/valyala/fastrand"
	"github.com/mlnoga/filterscore/internal/raster"
)

// Reference implementation: zero-padded neighbourhood, full sort, element (k*k-1)/2
func bruteForce(src *raster.Raster, k int) []float64 {
	p:=(k-1)/2
	res:=make([]float64, len(src.Data))
	for y:=0; y<src.Height; y++ {
		for x:=0; x<src.Width; x++ {
			n:=[]float64{}
			for dy:=-p; dy<=p; dy++ {
				for dx:=-p; dx<=p; dx++ {
					xx, yy:=x+dx, y+dy
					if xx<0 || yy<0 || xx>=src.Width || yy>=src.Height {
						n=append(n, 0)
					} else {
						n=append(n, src.At(xx, yy))
					}
				}
			}
			sort.Float64s(n)
			res[y*src.Width+x]=n[(k*k-1)/2]
		}
	}
	return res
}

func randomRaster(rng *fastrand.RNG, w, h int) *raster.Raster {
	r, _:=raster.NewRaster(w, h, nil)
	for i:=range r.Data { r.Data[i]=float64(rng.Uint32n(256)) }
	return r
}

func TestFilterIdentityForK1(t *testing.T) {
	src, _:=raster.NewRasterFromRows([][]float64{{10, 20}, {30, 40}})
	dst:=raster.NewRasterFromRaster(src)
	Filter(dst, src, 1, 1)
	for i:=range src.Data {
		if dst.Data[i]!=src.Data[i] {
			t.Errorf("dst[%d]=%g; want %g", i, dst.Data[i], src.Data[i])
		}
	}
}

func TestFilterZeroPadding(t *testing.T) {
	src, _:=raster.NewRasterFromRows([][]float64{
		{9, 9, 9},
		{9, 9, 9},
		{9, 9, 9},
	})
	dst:=raster.NewRasterFromRaster(src)
	Filter(dst, src, 3, 1)
	// corners see 5 zeros of 9, edges 3 zeros, the center none
	want:=[]float64{
		0, 9, 0,
		9, 9, 9,
		0, 9, 0,
	}
	for i:=range want {
		if dst.Data[i]!=want[i] {
			t.Errorf("dst[%d]=%g; want %g", i, dst.Data[i], want[i])
		}
	}
}

func TestFilterMatchesBruteForce(t *testing.T) {
	rng:=fastrand.RNG{}
	for _, k:=range []int{3, 5, 7} {
		for _, threads:=range []int{1, 3} {
			src:=randomRaster(&rng, 13, 9)
			dst:=raster.NewRasterFromRaster(src)
			Filter(dst, src, k, threads)
			want:=bruteForce(src, k)
			for i:=range want {
				if dst.Data[i]!=want[i] {
					t.Errorf("k=%d threads=%d: dst[%d]=%g; want %g", k, threads, i, dst.Data[i], want[i])
				}
			}
		}
	}
}

func TestMedianFloat64Slice9(t *testing.T) {
	rng:=fastrand.RNG{}
	for n:=0; n<10000; n++ {
		a:=make([]float64, 9)
		for i:=range a { a[i]=float64(rng.Uint32n(6)) }
		s:=append([]float64(nil), a...)
		sort.Float64s(s)
		if got:=MedianFloat64Slice9(a); got!=s[4] {
			t.Fatalf("median(%v)=%g; want %g", s, got, s[4])
		}
	}
}
