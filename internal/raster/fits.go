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
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"
)

const fitsBlockSize int  = 2880 // Block size of FITS header and data units
const fitsLineSize  int  = 80   // Line size of a FITS header

var reParser *regexp.Regexp = compileRE() // Regexp parser for FITS header lines

// FITS header keys and values. Only the subset needed to decode a mono primary HDU
type fitsHeader struct {
	Bools    map[string]bool
	Ints     map[string]int64
	Floats   map[string]float64
	Strings  map[string]string
	End      bool
}

func newFITSHeader() *fitsHeader {
	return &fitsHeader{
		Bools:   make(map[string]bool),
		Ints:    make(map[string]int64),
		Floats:  make(map[string]float64),
		Strings: make(map[string]string),
	}
}

// Reads the primary HDU of a FITS stream into a raster. Format reference: https://fits.gsfc.nasa.gov/standard40/fits_standard40aa-le.pdf
// NAXIS must be 2. Applies BZERO and BSCALE. The optional check sees NAXIS1 and NAXIS2 before the data unit is read
func ReadFITS(r io.Reader, id int, check SizeCheck, log zerolog.Logger) (*Raster, error) {
	h:=newFITSHeader()
	if err:=h.read(r, id, log); err!=nil { return nil, err }

	if !h.Bools["SIMPLE"] { return nil, fmt.Errorf("not a valid FITS file; SIMPLE=T missing in header") }
	bitpix, ok:=h.Ints["BITPIX"]
	if !ok { return nil, fmt.Errorf("FITS header does not contain key BITPIX") }
	if naxis:=h.Ints["NAXIS"]; naxis!=2 {
		return nil, fmt.Errorf("FITS image has %d axes, want 2: %w", naxis, ErrUnsupportedFormat)
	}
	width, height:=h.Ints["NAXIS1"], h.Ints["NAXIS2"]
	if width<=0 || height<=0 || width>math.MaxInt32 || height>math.MaxInt32 {
		return nil, fmt.Errorf("invalid FITS dimensions %dx%d", width, height)
	}
	if check!=nil {
		if err:=check(int(width), int(height)); err!=nil { return nil, err }
	}
	bzero, bscale:=h.intOrFloat("BZERO", 0), h.intOrFloat("BSCALE", 1)

	ras, err:=NewRaster(int(width), int(height), nil)
	if err!=nil { return nil, err }

	var bytesPerValue int
	switch bitpix {
	case 8:       bytesPerValue=1
	case 16:      bytesPerValue=2
	case 32, -32: bytesPerValue=4
	case 64, -64: bytesPerValue=8
	default:
		return nil, fmt.Errorf("unknown BITPIX value %d", bitpix)
	}

	buf:=make([]byte, len(ras.Data)*bytesPerValue)
	if _, err:=io.ReadFull(r, buf); err!=nil { return nil, err }

	be:=binary.BigEndian
	for i:=range ras.Data {
		b:=buf[i*bytesPerValue:]
		var v float64
		switch bitpix {
		case 8:   v=float64(b[0])
		case 16:  v=float64(int16(be.Uint16(b)))
		case 32:  v=float64(int32(be.Uint32(b)))
		case 64:  v=float64(int64(be.Uint64(b)))
		case -32: v=float64(math.Float32frombits(be.Uint32(b)))
		case -64: v=math.Float64frombits(be.Uint64(b))
		}
		ras.Data[i]=v*bscale + bzero
	}
	return ras, nil
}

func (h *fitsHeader) intOrFloat(key string, def float64) float64 {
	if v, ok:=h.Ints[key]; ok { return float64(v) }
	if v, ok:=h.Floats[key]; ok { return v }
	return def
}

func (h *fitsHeader) read(r io.Reader, id int, log zerolog.Logger) error {
	buf:=make([]byte, fitsBlockSize)

	for !h.End {
		// read next header unit
		if _, err:=io.ReadFull(r, buf); err!=nil { return fmt.Errorf("reading FITS header: %w", err) }

		// parse all lines in this header unit
		for lineNo:=0; lineNo<fitsBlockSize/fitsLineSize && !h.End; lineNo++ {
			line:=buf[lineNo*fitsLineSize : (lineNo+1)*fitsLineSize]
			subValues:=reParser.FindSubmatch(line)
			if subValues==nil {
				log.Warn().Int("id", id).Str("line", string(line)).Msg("cannot parse FITS header line, ignoring")
				continue
			}
			h.readLine(reParser.SubexpNames(), subValues)
		}
	}
	return nil
}

func (h *fitsHeader) readLine(subNames []string, subValues [][]byte) {
	key:=""
	// ignore index 0 which is the whole line
	for i:=1; i<len(subNames); i++ {
		if subValues[i]==nil || len(subNames[i])!=1 { continue }
		switch subNames[i][0] {
		case 'E': // end line
			h.End=true
		case 'k': // key
			key=string(subValues[i])
		case 'b': // boolean
			if len(subValues[i])>0 {
				v:=subValues[i][0]
				h.Bools[key]=v=='t' || v=='T'
			}
		case 'i': // int
			if val, err:=strconv.ParseInt(string(subValues[i]), 10, 64); err==nil { h.Ints[key]=val }
		case 'f': // float, FITS allows D exponents
			s:=[]byte(string(subValues[i]))
			for j:=range s { if s[j]=='D' { s[j]='E' } }
			if val, err:=strconv.ParseFloat(string(s), 64); err==nil { h.Floats[key]=val }
		case 's': // string
			h.Strings[key]=string(subValues[i])
		}
	}
}

// Build regexp parser for FITS header lines
func compileRE() *regexp.Regexp {
	white   :="\\s+"
	whiteOpt:="\\s*"

	histLine:="HISTORY"+white+"(?P<H>.*)"
	commLine:="COMMENT"+white+"(?P<C>.*)"
	endLine :="(?P<E>END)"+whiteOpt

	key :="(?P<k>[A-Z0-9_-]+)"
	boo :="(?P<b>[TF])"
	inte:="(?P<i>[+-]?[0-9]+)"
	floa:="(?P<f>[+-]?[0-9]*\\.[0-9]*(?:[ED][-+]?[0-9]+)?)"
	stri:="'(?P<s>[^']*)'"
	val :="(?:"+boo+"|"+inte+"|"+floa+"|"+stri+")"

	commOpt:="(?:/(?P<c>.*))?"
	keyLine:=key+whiteOpt+"="+whiteOpt+val+whiteOpt+commOpt

	return regexp.MustCompile("^(?:"+white+"|"+histLine+"|"+commLine+"|"+keyLine+"|"+endLine+")$")
}
