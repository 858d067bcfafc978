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

package ops

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog"

	"github.com/mlnoga/filterscore/internal/filter"
	"github.com/mlnoga/filterscore/internal/raster"
	"github.com/mlnoga/filterscore/internal/score"
	"github.com/mlnoga/filterscore/internal/threshold"
)

var ErrRasterTooLarge = errors.New("raster too large for available memory")

// Number of full-size float64 buffers a pipeline run holds at its peak:
// input, intermediate, filtered and normalized
const buffersPerRun = 4

// An execution context for pipeline runs
type Context struct {
	Log            zerolog.Logger
	MemoryMB       int   `json:"memoryMB"`      // memory.TotalMemory()/1024/1024
	WorkMemoryMB   int   `json:"workMemoryMB"`  // MemoryMB*7/10
	MaxThreads     int   `json:"maxThreads"`
	Bits           int   `json:"bits"`          // Bit depth of the normalized output
	MaxIterations  int   `json:"maxIterations"` // Bound on threshold iterations, <=0 for none
}

func NewContext(log zerolog.Logger) *Context {
	memoryMB:=int(memory.TotalMemory()/1024/1024)
	threads:=cpuid.CPU.LogicalCores
	if threads<=0 { threads=runtime.GOMAXPROCS(0) }
	return &Context{
		Log           : log,
		MemoryMB      : memoryMB,
		WorkMemoryMB  : memoryMB*7/10,
		MaxThreads    : threads,
		Bits          : score.DefaultBits,
		MaxIterations : threshold.DefaultMaxIterations,
	}
}

// Filter options derived from this context
func (c *Context) Options() filter.Options {
	return filter.Options{MaxIterations: c.MaxIterations, MaxThreads: c.MaxThreads}
}

// Upper bound on the bytes of a single run, enforced even when WorkMemoryMB is zero
const maxRunBytes = float64(1<<47)

// Checks that a pipeline run over a raster of the given size fits into the work memory.
// k is the side length of the zero-padded neighbourhood the filter gathers per cell, or 1 for none.
// A zero WorkMemoryMB, e.g. if physical memory could not be determined, only enforces maxRunBytes
func (c *Context) CheckMemory(width, height, k int) error {
	w, h:=float64(width), float64(height)
	need:=w*h*buffersPerRun
	if k>1 {
		p:=float64((k-1)/2)
		threads:=float64(max(c.MaxThreads, 1))
		need+=(w+2*p)*(h+2*p) + threads*float64(k)*float64(k)  // padded copy, per-row scratch
	}
	need*=8
	needMB:=need/1024/1024
	if need>maxRunBytes || (c.WorkMemoryMB>0 && needMB>float64(c.WorkMemoryMB)) {
		return fmt.Errorf("%dx%d raster with %dx%d neighbourhood needs %.0f MiB, have %d MiB: %w",
			width, height, k, k, needMB, c.WorkMemoryMB, ErrRasterTooLarge)
	}
	return nil
}

// Side length of the zero-padded neighbourhood a filter gathers per cell
func neighbourhood(f filter.Filter) int {
	if m, ok:=f.(*filter.Median); ok { return m.Size }
	return 1
}

// The outcome of a pipeline run
type Result struct {
	Input      *raster.Raster
	Filter     filter.Filter
	Filtered   *raster.Raster
	Normalized *raster.Raster
	Threshold  *threshold.Result  // Nil unless the filter thresholds
	Score      float64            // RMSE of the input against the normalized filtered raster
}

// Builds the filter for the given method and parameter tokens, applies it to the input raster,
// normalizes the result and scores it against the input
func Run(c *Context, in *raster.Raster, method int, tokens []float64) (*Result, error) {
	f, err:=filter.Select(method, tokens)
	if err!=nil { return nil, err }
	if err:=c.CheckMemory(in.Width, in.Height, neighbourhood(f)); err!=nil { return nil, err }
	c.Log.Info().Int("id", in.ID).Stringer("filter", f).Msg("selected filter")

	out, err:=f.Apply(in, c.Options())
	if err!=nil { return nil, fmt.Errorf("%d: applying %v: %w", in.ID, f.Method(), err) }
	if out.Threshold!=nil {
		c.Log.Info().Int("id", in.ID).Float64("threshold", out.Threshold.Threshold).
			Int("iterations", out.Threshold.Iterations).Msg("threshold converged")
	}

	filtered:=out.Raster
	filtered.CalcStats()
	normalized:=score.Normalize(filtered, c.Bits)
	if filtered.Stats.Max==filtered.Stats.Min {
		c.Log.Warn().Int("id", in.ID).Float64("value", filtered.Stats.Min).
			Msg("filtered raster is of uniform intensity, normalizing to zero")
	} else {
		c.Log.Info().Int("id", in.ID).Float64("min", filtered.Stats.Min).Float64("max", filtered.Stats.Max).
			Int("bits", c.Bits).Msg("normalized filtered raster")
	}

	rmse, err:=score.RMSE(in, normalized)
	if err!=nil { return nil, err }
	c.Log.Info().Int("id", in.ID).Float64("rmse", rmse).Msg("scored")

	return &Result{
		Input      : in,
		Filter     : f,
		Filtered   : filtered,
		Normalized : normalized,
		Threshold  : out.Threshold,
		Score      : rmse,
	}, nil
}

// Loads the named raster file and runs the pipeline on it
func RunFile(c *Context, fileName string, method int, tokens []float64) (*Result, error) {
	in, err:=Load(c, fileName, 0)
	if err!=nil { return nil, err }
	return Run(c, in, method, tokens)
}

// Loads a raster from the named file. Dimensions are checked against the work memory before decoding
func Load(c *Context, fileName string, id int) (*raster.Raster, error) {
	check:=func(width, height int) error { return c.CheckMemory(width, height, 1) }
	in, err:=raster.NewRasterFromFile(fileName, id, check, c.Log)
	if err!=nil { return nil, err }

	ev:=c.Log.Info()
	if in.Stats.Range()<1e-8 { ev=c.Log.Warn().Bool("lowDynamicRange", true) }
	ev.Int("id", in.ID).Str("file", in.FileName).Str("dims", in.DimensionsToString()).
		Stringer("stats", in.Stats).Msg("loaded raster")
	return in, nil
}

// Returns true if a path is considered safe, i.e. not an absolute path,
// and doesn't contain the ".." characters to change to a parent directory
func IsPathAllowed(p string) bool {
	if filepath.IsAbs(p) { return false }          // relative paths only
	if strings.Contains(p, "..") { return false }  // no going outside the tree
	return true
}
