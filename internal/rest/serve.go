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

package rest

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlnoga/filterscore/internal/filter"
	"github.com/mlnoga/filterscore/internal/ops"
	"github.com/mlnoga/filterscore/internal/params"
	"github.com/mlnoga/filterscore/internal/raster"
	"github.com/mlnoga/filterscore/internal/score"
	"github.com/mlnoga/filterscore/internal/threshold"
)

// Serves the API on the given address, e.g. ":8080". Blocks until the server fails
func Serve(c *ops.Context, addr string) error {
	return NewRouter(c).Run(addr)
}

func NewRouter(c *ops.Context) *gin.Engine {
	r := gin.Default()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET ("/ping",   getPing)
			v1.POST("/filter", postFilter(c))
		}
	}
	return r
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

type postFilterResponse struct {
	FileName   string            `json:"fileName"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	Filter     string            `json:"filter"`
	Threshold  *threshold.Result `json:"threshold,omitempty"`
	RMSE       float64           `json:"rmse"`
}

func postFilter(oc *ops.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var args params.Request
		if err:=c.ShouldBindJSON(&args); err!=nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if args.FileName=="" || !ops.IsPathAllowed(args.FileName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "filename missing or outside current directory tree"})
			return
		}

		res, err:=ops.RunFile(oc, args.FileName, args.Method, args.Params)
		if err!=nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, postFilterResponse{
			FileName  : args.FileName,
			Width     : res.Input.Width,
			Height    : res.Input.Height,
			Filter    : res.Filter.String(),
			Threshold : res.Threshold,
			RMSE      : res.Score,
		})
	}
}

// Maps pipeline errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, filter.ErrInvalidParameter), errors.Is(err, score.ErrShapeMismatch),
	     errors.Is(err, raster.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, threshold.ErrDegenerateThreshold), errors.Is(err, threshold.ErrIterationLimitExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ops.ErrRasterTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
