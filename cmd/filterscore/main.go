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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/klauspost/cpuid"
	"github.com/rs/zerolog"

	"github.com/mlnoga/filterscore/internal/logging"
	"github.com/mlnoga/filterscore/internal/ops"
	"github.com/mlnoga/filterscore/internal/params"
	"github.com/mlnoga/filterscore/internal/rest"
	"github.com/mlnoga/filterscore/internal/score"
	"github.com/mlnoga/filterscore/internal/threshold"
)

const version = "0.1.0"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var log     = flag.String("log", "", "save log output to `file` in addition to stderr")
var quiet   = flag.Bool("quiet", false, "only log warnings and errors")

var bits    = flag.Int("bits", score.DefaultBits, "bit depth B of the normalized output range [0, 2^B-1]")
var maxIter = flag.Int("maxIter", threshold.DefaultMaxIterations, "maximum threshold iterations, 0=unbounded")
var threads = flag.Int("threads", 0, "maximum rows filtered concurrently, 0=number of logical CPU cores")
var memMB   = flag.Int("mem", 0, "MiB of memory a run may use, 0=0.7x physical memory")

var addr    = flag.String("addr", ":8080", "listen address for the serve command")
var chroot  = flag.String("chroot", "", "serve: change filesystem root to `dir` before serving (requires root)")
var setuid  = flag.Int("setuid", -1, "serve: change user id to `uid` before serving, -1=keep")

func main() {
	start:=time.Now()
	flag.Usage=func(){
		fmt.Fprintf(os.Stderr, `Filterscore Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (score|serve|legal|version|help)

Commands:
  score   Read a filter request from stdin, print the RMSE of the input against the
          normalized filtered raster. Default command. Request format:
            line 1: raster file name (PNG, JPEG, GIF, BMP, TIFF or FITS)
            then:   method code 1-4 followed by its parameters
              1 threshold seed
              2 kernel size K, K weights
              3 kernel size K, K rows of K weights, threshold seed
              4 kernel size K
  serve   Serve the REST API on -addr
  legal   Show license and attribution information
  version Show version information

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *quiet { logging.SetLevel(zerolog.WarnLevel) }
	if *log!="" {
		if err:=logging.LogAlsoToFile(*log); err!=nil { logging.LogFatalf("Unable to open logfile '%s': %s", *log, err) }
	}
	defer logging.LogSync()

	// Enable CPU profiling if flagged
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			logging.LogFatal(err, "Could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logging.LogFatal(err, "Could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	c:=ops.NewContext(logging.Log)
	c.Bits, c.MaxIterations=*bits, *maxIter
	if *threads>0 { c.MaxThreads=*threads }
	if *memMB>0 { c.WorkMemoryMB=*memMB }
	if c.Bits<1 || c.Bits>52 { logging.LogFatalf("Bit depth %d outside [1,52]", c.Bits) }

	args:=flag.Args()
	cmd:="score"
	if len(args)>0 { cmd=args[0] }

	switch cmd {
	case "score":
		logging.Log.Debug().Str("cpu", cpuid.CPU.BrandName).Int("threads", c.MaxThreads).
			Int("workMemoryMB", c.WorkMemoryMB).Msg("starting")
		rmse, err:=cmdScore(c, os.Stdin)
		if err!=nil { logging.LogFatal(err, "Scoring failed") }
		fmt.Fprintf(os.Stdout, "%.*f\n", score.Digits, rmse)
		logging.Log.Info().Dur("elapsed", time.Since(start)).Msg("done")

	case "serve":
		logging.Log.Info().Str("addr", *addr).Str("cpu", cpuid.CPU.BrandName).Int("threads", c.MaxThreads).
			Int("workMemoryMB", c.WorkMemoryMB).Msg("serving")
		if err:=rest.MakeSandbox(*chroot, *setuid, logging.Log); err!=nil { logging.LogFatal(err, "Sandboxing failed") }
		if err:=rest.Serve(c, *addr); err!=nil { logging.LogFatal(err, "Server failed") }

	case "legal":
		fmt.Fprint(os.Stdout, legal)

	case "version":
		fmt.Fprintf(os.Stdout, "Version %s\n", version)

	case "help", "?":
		flag.Usage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command '%s'\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
}

// Reads a request from r, runs it and returns the score
func cmdScore(c *ops.Context, r io.Reader) (float64, error) {
	req, err:=params.Read(r)
	if err!=nil { return 0, err }
	res, err:=ops.RunFile(c, req.FileName, req.Method, req.Params)
	if err!=nil { return 0, err }
	return res.Score, nil
}
