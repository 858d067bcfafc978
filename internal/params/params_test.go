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

package params

import (
	"errors"
	"strings"
	"testing"

	"github.com/mlnoga/filterscore/internal/filter"
)

func TestRead(t *testing.T) {
	tcs:=[]struct{
		In     string
		Name   string
		Method int
		Params []float64
	}{
		{"img.png\n1\n120\n",                    "img.png",    1, []float64{120}},
		{"  my image.png  \n2\n3\n-1 0 1\n",     "my image.png", 2, []float64{3, -1, 0, 1}},
		{"a.png\n3\n3\n0 1 0\n1 -4 1\n0 1 0\n100", "a.png",    3, []float64{3, 0, 1, 0, 1, -4, 1, 0, 1, 0, 100}},
		{"b.tif\r\n4\r\n5\r\n",                   "b.tif",      4, []float64{5}},
	}
	for _, tc:=range tcs {
		req, err:=Read(strings.NewReader(tc.In))
		if err!=nil {
			t.Errorf("%q: unexpected error %v", tc.In, err)
			continue
		}
		if req.FileName!=tc.Name || req.Method!=tc.Method || len(req.Params)!=len(tc.Params) {
			t.Errorf("%q: got %+v", tc.In, req)
			continue
		}
		for i:=range tc.Params {
			if req.Params[i]!=tc.Params[i] {
				t.Errorf("%q: param %d=%g; want %g", tc.In, i, req.Params[i], tc.Params[i])
			}
		}
	}
}

func TestReadInvalid(t *testing.T) {
	for _, in:=range []string{"img.png\n", "img.png\nfoo\n", "img.png\n1.5\n", "img.png\n1\nx\n"} {
		if _, err:=Read(strings.NewReader(in)); !errors.Is(err, filter.ErrInvalidParameter) {
			t.Errorf("%q: got %v; want ErrInvalidParameter", in, err)
		}
	}
	if _, err:=Read(strings.NewReader("")); err==nil {
		t.Errorf("empty input: want error")
	}
}
