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

// Calls fn for every row index in [0, height), running at most maxThreads rows concurrently.
// Returns once all rows are done. fn must only write output belonging to its own row
func ForEachRow(height, maxThreads int, fn func(y int)) {
	if maxThreads<=1 || height<=1 {
		for y:=0; y<height; y++ { fn(y) }
		return
	}
	limiter:=make(chan bool, maxThreads)
	for y:=0; y<height; y++ {
		limiter <- true
		go func(y int) {
			defer func() { <-limiter }()
			fn(y)
		}(y)
	}
	for i:=0; i<cap(limiter); i++ {  // wait for goroutines to finish
		limiter <- true
	}
}
