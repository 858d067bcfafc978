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
	"errors"
	"testing"
	"github.com/valyala/fastrand"
	"github.com/mlnoga/filterscore/internal/raster"
	"github.com/mlnoga/filterscore/internal/score"
	"github.com/mlnoga/filterscore/internal/threshold"
)

func mustRows(t *testing.T, rows [][]float64) *raster.Raster {
	r, err:=raster.NewRasterFromRows(rows)
	if err!=nil { t.Fatal(err) }
	return r
}

func randomRaster(rng *fastrand.RNG, w, h int) *raster.Raster {
	r, _:=raster.NewRaster(w, h, nil)
	for i:=range r.Data { r.Data[i]=float64(rng.Uint32n(256)) }
	r.Data[0], r.Data[len(r.Data)-1]=0, 255
	return r
}

func TestSelect(t *testing.T) {
	tcs:=[]struct{
		Method int
		Tokens []float64
		Want   Method
	}{
		{1, []float64{128}, MethodThreshold},
		{2, []float64{3, 1, 2, 1}, MethodConvolution1D},
		{2, []float64{1, 5}, MethodConvolution1D},
		{3, []float64{3, 0, 1, 0, 1, -4, 1, 0, 1, 0, 100}, MethodConvolution2DThresh},
		{4, []float64{5}, MethodMedian},
	}
	for _, tc:=range tcs {
		f, err:=Select(tc.Method, tc.Tokens)
		if err!=nil {
			t.Errorf("method %d %v: unexpected error %v", tc.Method, tc.Tokens, err)
			continue
		}
		if f.Method()!=tc.Want {
			t.Errorf("method %d: got %v; want %v", tc.Method, f.Method(), tc.Want)
		}
	}
}

func TestSelectParameters(t *testing.T) {
	f, _:=Select(3, []float64{3, 1, 2, 3, 4, 5, 6, 7, 8, 9, 42})
	c:=f.(*Convolution2DThresh)
	if c.Seed!=42 || c.Kernel.At(0, 2)!=3 || c.Kernel.At(2, 0)!=7 {
		t.Errorf("got seed %g kernel %v", c.Seed, c.Kernel.RawMatrix().Data)
	}
	f, _=Select(2, []float64{3, 4, 5, 6})
	if k:=f.(*Convolution1D).Kernel; len(k)!=3 || k[0]!=4 || k[2]!=6 {
		t.Errorf("got kernel %v", k)
	}
}

func TestSelectInvalid(t *testing.T) {
	tcs:=[]struct{
		Method int
		Tokens []float64
	}{
		{0, []float64{1}},
		{5, []float64{1}},
		{1, nil},
		{1, []float64{1, 2}},
		{1, []float64{1.5}},
		{2, []float64{2, 1, 1}},          // even size
		{2, []float64{0}},                // zero size
		{2, []float64{-3, 1, 1, 1}},      // negative size
		{2, []float64{3, 1, 1}},          // too few weights
		{2, []float64{3, 1, 1, 1, 1}},    // too many weights
		{2, []float64{3, 0.25, 0.5, 0.25}},                              // fractional 1D weights
		{3, []float64{3, 1, 1, 1, 1, 0.5, 1, 1, 1, 1, 4}},              // fractional 2D weight
		{3, []float64{3, 1, 1, 1, 1, 1, 1, 1, 1, 1}}, // seed missing
		{3, []float64{4}},
		{4, []float64{2}},
		{4, []float64{3, 3}},
		{4, nil},
	}
	for _, tc:=range tcs {
		if _, err:=Select(tc.Method, tc.Tokens); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("method %d %v: got %v; want ErrInvalidParameter", tc.Method, tc.Tokens, err)
		}
	}
}

func TestThresholdOutputIsBinary(t *testing.T) {
	rng:=fastrand.RNG{}
	for n:=0; n<20; n++ {
		in:=randomRaster(&rng, 9, 7)
		f:=&Threshold{Seed: float64(1+rng.Uint32n(250))}
		out, err:=f.Apply(in, DefaultOptions())
		if err!=nil { t.Fatalf("unexpected error %v", err) }
		for i, v:=range out.Raster.Data {
			if v!=0 && v!=1 { t.Fatalf("out[%d]=%g; want 0 or 1", i, v) }
			if (v==1)!=(in.Data[i]>out.Threshold.Threshold) {
				t.Fatalf("out[%d]=%g for input %g and threshold %g", i, v, in.Data[i], out.Threshold.Threshold)
			}
		}
	}
}

func TestThresholdDegenerate(t *testing.T) {
	in:=mustRows(t, [][]float64{{7, 7}, {7, 7}})
	_, err:=(&Threshold{Seed: 100}).Apply(in, DefaultOptions())
	if !errors.Is(err, threshold.ErrDegenerateThreshold) {
		t.Errorf("got %v; want ErrDegenerateThreshold", err)
	}
}

func TestConvolution1DScenario(t *testing.T) {
	in:=mustRows(t, [][]float64{{1, 2, 3, 4}})
	out, err:=(&Convolution1D{Kernel: []float64{1, 1, 1}}).Apply(in, DefaultOptions())
	if err!=nil { t.Fatal(err) }
	want:=[]float64{7, 6, 9, 8}
	for i:=range want {
		if out.Raster.Data[i]!=want[i] {
			t.Errorf("out[%d]=%g; want %g", i, out.Raster.Data[i], want[i])
		}
	}
	if !out.Raster.SameShape(in) || out.Threshold!=nil {
		t.Errorf("unexpected shape %s or threshold %v", out.Raster.DimensionsToString(), out.Threshold)
	}
}

func TestConvolution2DThreshBorderPassThrough(t *testing.T) {
	rng:=fastrand.RNG{}
	in:=randomRaster(&rng, 8, 6)
	f, err:=Select(3, []float64{3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 128})
	if err!=nil { t.Fatal(err) }
	c:=f.(*Convolution2DThresh)
	mid:=c.Convolve(in, Options{MaxThreads: 2})
	for y:=0; y<in.Height; y++ {
		for x:=0; x<in.Width; x++ {
			border:=y==0 || x==0 || y==in.Height-1 || x==in.Width-1
			if border && mid.At(x, y)!=in.At(x, y) {
				t.Errorf("border (%d,%d)=%g; want %g", x, y, mid.At(x, y), in.At(x, y))
			}
		}
	}
	sum:=0.0
	for dy:=-1; dy<=1; dy++ { for dx:=-1; dx<=1; dx++ { sum+=in.At(3+dx, 2+dy) } }
	if mid.At(3, 2)!=sum {
		t.Errorf("interior (3,2)=%g; want %g", mid.At(3, 2), sum)
	}
}

func TestConvolution2DThreshApply(t *testing.T) {
	in:=mustRows(t, [][]float64{
		{0, 0, 0, 0},
		{0, 1, 1, 0},
		{0, 1, 1, 0},
		{0, 0, 0, 0},
	})
	// identity kernel: interior keeps its ones, border its zeros
	f, _:=Select(3, []float64{3, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0})
	out, err:=f.Apply(in, DefaultOptions())
	if err!=nil { t.Fatal(err) }
	for i, v:=range out.Raster.Data {
		if v!=in.Data[i] {
			t.Errorf("out[%d]=%g; want %g", i, v, in.Data[i])
		}
	}
	if out.Threshold==nil || out.Threshold.Threshold!=0.5 {
		t.Errorf("threshold %v; want 0.5", out.Threshold)
	}
}

func TestMedianK1IsIdentity(t *testing.T) {
	in:=mustRows(t, [][]float64{{10, 20}, {30, 40}})
	out, err:=(&Median{Size: 1}).Apply(in, DefaultOptions())
	if err!=nil { t.Fatal(err) }
	for i, v:=range out.Raster.Data {
		if v!=in.Data[i] {
			t.Errorf("out[%d]=%g; want %g", i, v, in.Data[i])
		}
	}
	n:=score.Normalize(out.Raster, score.DefaultBits)
	if rmse, err:=score.RMSE(n, n); err!=nil || rmse!=0 {
		t.Errorf("rmse=%g err=%v; want 0", rmse, err)
	}
}

func TestMethodString(t *testing.T) {
	if MethodMedian.String()!="median" || Method(9).String()!="method(9)" {
		t.Errorf("got %q and %q", MethodMedian.String(), Method(9).String())
	}
}
