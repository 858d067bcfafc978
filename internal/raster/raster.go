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
	"fmt"
	"math"
	"github.com/mlnoga/filterscore/internal/stats"
)

// A single-channel raster. Samples are stored row-major, x varying fastest
type Raster struct {
	ID       int          // Sequential ID number, for log output
	FileName string       // Original file name, if any, for log output

	Width    int          // Number of columns
	Height   int          // Number of rows
	Data     []float64    // The sample data, len(Data)==Width*Height

	Stats    *stats.Stats // Basic raster statistics: min, mean, max. Nil until calculated
}

// Vets raster dimensions before any sample memory is allocated, e.g. against a memory budget
type SizeCheck func(width, height int) error

// Creates a raster of given dimensions. Data is not copied, allocated if nil
func NewRaster(width, height int, data []float64) (*Raster, error) {
	if width<=0 || height<=0 {
		return nil, fmt.Errorf("invalid raster dimensions %dx%d", width, height)
	}
	if width>math.MaxInt/height {
		return nil, fmt.Errorf("raster dimensions %dx%d overflow", width, height)
	}
	if data==nil {
		data=make([]float64, width*height)
	} else if len(data)!=width*height {
		return nil, fmt.Errorf("raster data has %d samples, want %dx%d=%d", len(data), width, height, width*height)
	}
	return &Raster{Width: width, Height: height, Data: data}, nil
}

// Creates a raster from given rows, which must all have the same length
func NewRasterFromRows(rows [][]float64) (*Raster, error) {
	if len(rows)==0 || len(rows[0])==0 { return nil, fmt.Errorf("empty raster") }
	width:=len(rows[0])
	data:=make([]float64, 0, width*len(rows))
	for y, row:=range rows {
		if len(row)!=width { return nil, fmt.Errorf("row %d has %d samples, want %d", y, len(row), width) }
		data=append(data, row...)
	}
	return NewRaster(width, len(rows), data)
}

// Creates a raster with the same ID, name and shape as the given one. A new zeroed data array is allocated
func NewRasterFromRaster(r *Raster) *Raster {
	return &Raster{
		ID:       r.ID,
		FileName: r.FileName,
		Width:    r.Width,
		Height:   r.Height,
		Data:     make([]float64, len(r.Data)),
	}
}

// Returns a deep copy of the raster
func (r *Raster) Clone() *Raster {
	c:=NewRasterFromRaster(r)
	copy(c.Data, r.Data)
	if r.Stats!=nil { s:=*r.Stats; c.Stats=&s }
	return c
}

func (r *Raster) At(x, y int) float64 { return r.Data[y*r.Width+x] }

func (r *Raster) Set(x, y int, v float64) { r.Data[y*r.Width+x]=v }

// Returns the samples of row y. Shares the underlying array
func (r *Raster) Row(y int) []float64 { return r.Data[y*r.Width : (y+1)*r.Width] }

// True if both rasters have the same width and height
func (r *Raster) SameShape(o *Raster) bool {
	return r.Width==o.Width && r.Height==o.Height
}

// (Re)calculates basic statistics and stores them in r.Stats
func (r *Raster) CalcStats() *stats.Stats {
	r.Stats=stats.NewStats(r.Data)
	return r.Stats
}

func (r *Raster) DimensionsToString() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}
