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

// Package params reads a filter request from the plain text protocol: the raster
// file name on the first line, then whitespace-separated numbers giving the
// method code and the method's parameters.
package params

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mlnoga/filterscore/internal/filter"
)

// A filter request as read from the stream
type Request struct {
	FileName string     `json:"fileName"`
	Method   int        `json:"method"`
	Params   []float64  `json:"params"`
}

// Reads a request. Parameter counts are not checked here, see filter.Select
func Read(r io.Reader) (*Request, error) {
	br:=bufio.NewReader(r)
	line, err:=br.ReadString('\n')
	if err!=nil && err!=io.EOF { return nil, err }
	name:=strings.TrimSpace(line)
	if name=="" { return nil, fmt.Errorf("missing raster file name") }

	sc:=bufio.NewScanner(br)
	sc.Split(bufio.ScanWords)
	var tokens []float64
	for sc.Scan() {
		v, err:=strconv.ParseFloat(sc.Text(), 64)
		if err!=nil {
			return nil, fmt.Errorf("token %d %q is not a number: %w", len(tokens), sc.Text(), filter.ErrInvalidParameter)
		}
		tokens=append(tokens, v)
	}
	if err:=sc.Err(); err!=nil { return nil, err }
	if len(tokens)==0 { return nil, fmt.Errorf("missing method: %w", filter.ErrInvalidParameter) }

	m:=tokens[0]
	if m!=float64(int(m)) { return nil, fmt.Errorf("method %g is not an integer: %w", m, filter.ErrInvalidParameter) }
	return &Request{FileName: name, Method: int(m), Params: tokens[1:]}, nil
}
