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
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

var ErrUnsupportedFormat = errors.New("unsupported raster format")

// Reads a raster from the file with the given name, and calculates its stats.
// FITS files may be gzip compressed; all other formats go through image.Decode.
// The optional check sees the dimensions from the file header before the samples are decoded
func NewRasterFromFile(fileName string, id int, check SizeCheck, log zerolog.Logger) (r *Raster, err error) {
	f, err:=os.Open(fileName)
	if err!=nil { return nil, err }
	defer f.Close()

	lExt:=strings.ToLower(path.Ext(fileName))
	var in io.Reader=f
	if lExt==".gz" || lExt==".gzip" {
		var zr *gzip.Reader
		if zr, err=gzip.NewReader(f); err!=nil { return nil, err }
		defer zr.Close()
		in=zr
		lExt=strings.ToLower(path.Ext(strings.TrimSuffix(fileName, path.Ext(fileName))))
	}

	switch lExt {
	case ".fits", ".fit", ".fts":
		r, err=ReadFITS(in, id, check, log)
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff":
		r, err=ReadImage(in, check)
	default:
		return nil, fmt.Errorf("%d: %s: %w", id, fileName, ErrUnsupportedFormat)
	}
	if err!=nil { return nil, fmt.Errorf("%d: %s: %w", id, fileName, err) }

	r.ID, r.FileName=id, fileName
	r.CalcStats()
	return r, nil
}

// Decodes an image and turns it into a single-channel raster. Gray images keep their
// sample values (0..255 for 8 bit, 0..65535 for 16 bit). Colour images are reduced to
// their relative luminance, gamma-encoded again and quantized to 0..255. The optional
// check sees the dimensions from the image header before the pixels are decoded
func ReadImage(in io.Reader, check SizeCheck) (*Raster, error) {
	var head bytes.Buffer
	cfg, _, err:=image.DecodeConfig(io.TeeReader(in, &head))
	if err!=nil { return nil, err }
	if check!=nil {
		if err:=check(cfg.Width, cfg.Height); err!=nil { return nil, err }
	}
	img, _, err:=image.Decode(io.MultiReader(&head, in))
	if err!=nil { return nil, err }
	b:=img.Bounds()
	r, err:=NewRaster(b.Dx(), b.Dy(), nil)
	if err!=nil { return nil, err }

	switch g:=img.(type) {
	case *image.Gray:
		for y:=0; y<r.Height; y++ {
			off:=g.PixOffset(b.Min.X, b.Min.Y+y)
			row:=g.Pix[off : off+r.Width]
			out:=r.Row(y)
			for x, v:=range row { out[x]=float64(v) }
		}
	case *image.Gray16:
		for y:=0; y<r.Height; y++ {
			out:=r.Row(y)
			for x:=range out { out[x]=float64(g.Gray16At(b.Min.X+x, b.Min.Y+y).Y) }
		}
	default:
		for y:=0; y<r.Height; y++ {
			out:=r.Row(y)
			for x:=range out { out[x]=float64(luminance8(img.At(b.Min.X+x, b.Min.Y+y))) }
		}
	}
	return r, nil
}

// Relative luminance of a colour, gamma-encoded to 8 bits. Gray input values map onto themselves
func luminance8(c color.Color) uint8 {
	col, ok:=colorful.MakeColor(c)
	if !ok { return 0 } // fully transparent
	lr, lg, lb:=col.LinearRgb()
	l:=0.2126*lr + 0.7152*lg + 0.0722*lb
	v, _, _:=colorful.LinearRgb(l, l, l).Clamped().RGB255()
	return v
}
