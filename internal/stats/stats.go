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

package stats

import (
	"fmt"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistics on raster data
type Stats struct {
	Min    float64  // Minimum
	Max    float64  // Maximum
	Mean   float64  // Mean (average)
	StdDev float64  // Population standard deviation
}

// Calculate basic statistics for a data array. Empty arrays yield all zeros
func NewStats(data []float64) (s *Stats) {
	s=&Stats{}
	if len(data)==0 { return s }
	s.Min, s.Max=floats.Min(data), floats.Max(data)
	s.Mean, s.StdDev=stat.PopMeanStdDev(data, nil)
	return s
}

// Returns max-min
func (s *Stats) Range() float64 {
	return s.Max-s.Min
}

// Pretty print basic stats to string
func (s *Stats) String() string {
	return fmt.Sprintf("Min %.6g Max %.6g Mean %.6g StdDev %.6g", s.Min, s.Max, s.Mean, s.StdDev)
}
