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

package raster

import (
	"math"
	"sync/atomic"
	"testing"
)

func TestNewRaster(t *testing.T) {
	if _, err:=NewRaster(0, 3, nil); err==nil {
		t.Errorf("zero width: want error")
	}
	if _, err:=NewRaster(math.MaxInt/2, 3, nil); err==nil {
		t.Errorf("overflowing dimensions: want error")
	}
	if _, err:=NewRaster(2, 2, []float64{1, 2, 3}); err==nil {
		t.Errorf("short data: want error")
	}
	r, err:=NewRaster(3, 2, nil)
	if err!=nil || len(r.Data)!=6 {
		t.Fatalf("got %v, %v", r, err)
	}
	r.Set(2, 1, 7)
	if r.At(2, 1)!=7 || r.Data[5]!=7 || r.Row(1)[2]!=7 {
		t.Errorf("row-major layout broken: %v", r.Data)
	}
	if r.DimensionsToString()!="3x2" {
		t.Errorf("dims %q; want 3x2", r.DimensionsToString())
	}
}

func TestNewRasterFromRows(t *testing.T) {
	r, err:=NewRasterFromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	if err!=nil { t.Fatal(err) }
	if r.Width!=3 || r.Height!=2 || r.At(0, 1)!=4 {
		t.Errorf("got %dx%d %v", r.Width, r.Height, r.Data)
	}
	if _, err:=NewRasterFromRows([][]float64{{1, 2}, {3}}); err==nil {
		t.Errorf("ragged rows: want error")
	}
	if _, err:=NewRasterFromRows(nil); err==nil {
		t.Errorf("no rows: want error")
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	r, _:=NewRasterFromRows([][]float64{{1, 2}, {3, 4}})
	r.CalcStats()
	c:=r.Clone()
	c.Data[0]=99
	c.Stats.Max=99
	if r.Data[0]!=1 || r.Stats.Max!=4 {
		t.Errorf("clone aliases original")
	}
	if !c.SameShape(r) {
		t.Errorf("clone changed shape")
	}
}

func TestForEachRow(t *testing.T) {
	for _, threads:=range []int{0, 1, 3, 64} {
		var calls int64
		seen:=make([]int32, 17)
		ForEachRow(len(seen), threads, func(y int) {
			atomic.AddInt64(&calls, 1)
			atomic.AddInt32(&seen[y], 1)
		})
		if calls!=int64(len(seen)) {
			t.Errorf("threads %d: %d calls; want %d", threads, calls, len(seen))
		}
		for y, n:=range seen {
			if n!=1 { t.Errorf("threads %d: row %d visited %d times", threads, y, n) }
		}
	}
}
