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

package score

import (
	"errors"
	"fmt"
	"math"
	"gonum.org/v1/gonum/floats"
	"github.com/mlnoga/filterscore/internal/raster"
)

var ErrShapeMismatch = errors.New("raster shape mismatch")

// Bit depth of the scoring path
const DefaultBits = 8

// Number of decimal digits an RMSE is reported with
const Digits = 4

// Linearly rescales the raster so its minimum maps to 0 and its maximum to 2^bits-1,
// truncating the scaled values to integers. Returns a new raster. A constant raster
// has no range to scale and yields all zeros
func Normalize(r *raster.Raster, bits int) *raster.Raster {
	out:=raster.NewRasterFromRaster(r)
	s:=r.Stats
	if s==nil { s=r.CalcStats() }
	if s.Max==s.Min {
		out.CalcStats()
		return out
	}
	top:=math.Exp2(float64(bits))-1
	min, rng:=s.Min, s.Max-s.Min
	for i, v:=range r.Data {
		out.Data[i]=math.Trunc((v-min)/rng*top)
	}
	out.CalcStats()
	return out
}

// Root-mean-square deviation between two rasters of identical shape, rounded to Digits decimals
func RMSE(a, b *raster.Raster) (float64, error) {
	if !a.SameShape(b) {
		return 0, fmt.Errorf("comparing %s with %s: %w", a.DimensionsToString(), b.DimensionsToString(), ErrShapeMismatch)
	}
	dist:=floats.Distance(a.Data, b.Data, 2)
	return Round(dist/math.Sqrt(float64(len(a.Data))), Digits), nil
}

// Rounds x to the given number of decimal digits, halves away from zero
func Round(x float64, digits int) float64 {
	p:=math.Pow10(digits)
	return math.Round(x*p)/p
}
