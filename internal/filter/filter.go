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

// Package filter holds the four spatial filter variants and the selector
// which builds one of them from a method code and its parameter tokens.
package filter

import (
	"errors"
	"fmt"
	"gonum.org/v1/gonum/mat"
	"github.com/mlnoga/filterscore/internal/convolve"
	"github.com/mlnoga/filterscore/internal/median"
	"github.com/mlnoga/filterscore/internal/raster"
	"github.com/mlnoga/filterscore/internal/threshold"
)

var ErrInvalidParameter = errors.New("invalid filter parameter")

// Filter method codes, as given on the parameter stream
type Method int
const (
	MethodThreshold           Method = 1
	MethodConvolution1D       Method = 2
	MethodConvolution2DThresh Method = 3
	MethodMedian              Method = 4
)

func (m Method) String() string {
	switch m {
	case MethodThreshold:           return "threshold"
	case MethodConvolution1D:       return "convolution1d"
	case MethodConvolution2DThresh: return "convolution2d+threshold"
	case MethodMedian:              return "median"
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// Execution limits for a filter pass
type Options struct {
	MaxIterations int  // Bound on threshold iterations, <=0 for none
	MaxThreads    int  // Maximum number of rows filtered concurrently
}

func DefaultOptions() Options {
	return Options{MaxIterations: threshold.DefaultMaxIterations, MaxThreads: 1}
}

// The output of a filter pass
type Output struct {
	Raster    *raster.Raster     // Filtered raster, same shape as the input
	Threshold *threshold.Result  // Converged cutoff, for the thresholding variants only
}

// One of the four filter variants. The set is closed: only the types in this package implement it
type Filter interface {
	Method() Method
	Apply(in *raster.Raster, opts Options) (*Output, error)
	String() string
	filter()
}

var (
	_ Filter = (*Threshold)(nil)
	_ Filter = (*Convolution1D)(nil)
	_ Filter = (*Convolution2DThresh)(nil)
	_ Filter = (*Median)(nil)
)


// Binarizes a raster at an iteratively converged threshold. Output cells are 0 or 1
type Threshold struct {
	Seed float64  `json:"seed"`
}

func (f *Threshold) Method() Method { return MethodThreshold }
func (f *Threshold) String() string { return fmt.Sprintf("%v seed=%g", f.Method(), f.Seed) }
func (f *Threshold) filter() {}

func (f *Threshold) Apply(in *raster.Raster, opts Options) (*Output, error) {
	return binarize(in, f.Seed, opts)
}

// Shared by both thresholding variants: converge a cutoff on in, then binarize in
func binarize(in *raster.Raster, seed float64, opts Options) (*Output, error) {
	res, err:=threshold.Solve(in.Data, seed, opts.MaxIterations)
	if err!=nil { return nil, err }
	out:=raster.NewRasterFromRaster(in)
	threshold.Binarize(out.Data, in.Data, res.Threshold)
	return &Output{Raster: out, Threshold: &res}, nil
}


// Convolves the row-major flattened raster with a 1D kernel, wrapping around circularly
// across the whole sequence rather than per row
type Convolution1D struct {
	Kernel []float64  `json:"kernel"`
}

func (f *Convolution1D) Method() Method { return MethodConvolution1D }
func (f *Convolution1D) String() string { return fmt.Sprintf("%v k=%d kernel=%v", f.Method(), len(f.Kernel), f.Kernel) }
func (f *Convolution1D) filter() {}

func (f *Convolution1D) Apply(in *raster.Raster, opts Options) (*Output, error) {
	out:=raster.NewRasterFromRaster(in)
	convolve.Circular1D(out.Data, in.Data, f.Kernel)
	return &Output{Raster: out}, nil
}


// Convolves the raster interior with a square 2D kernel, passing border cells through,
// then binarizes the result like Threshold
type Convolution2DThresh struct {
	Kernel *mat.Dense  `json:"-"`
	Seed   float64     `json:"seed"`
}

func (f *Convolution2DThresh) Method() Method { return MethodConvolution2DThresh }
func (f *Convolution2DThresh) filter() {}

func (f *Convolution2DThresh) String() string {
	k, _:=f.Kernel.Dims()
	return fmt.Sprintf("%v k=%d seed=%g kernel=%v", f.Method(), k, f.Seed, f.Kernel.RawMatrix().Data)
}

// Returns the convolved raster before thresholding
func (f *Convolution2DThresh) Convolve(in *raster.Raster, opts Options) *raster.Raster {
	out:=raster.NewRasterFromRaster(in)
	convolve.Interior2D(out, in, f.Kernel, opts.MaxThreads)
	return out
}

func (f *Convolution2DThresh) Apply(in *raster.Raster, opts Options) (*Output, error) {
	return binarize(f.Convolve(in, opts), f.Seed, opts)
}


// Replaces each cell with the median of its zero-padded KxK neighbourhood
type Median struct {
	Size int  `json:"size"`
}

func (f *Median) Method() Method { return MethodMedian }
func (f *Median) String() string { return fmt.Sprintf("%v k=%d", f.Method(), f.Size) }
func (f *Median) filter() {}

func (f *Median) Apply(in *raster.Raster, opts Options) (*Output, error) {
	out:=raster.NewRasterFromRaster(in)
	median.Filter(out, in, f.Size, opts.MaxThreads)
	return &Output{Raster: out}, nil
}
