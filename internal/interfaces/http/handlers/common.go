// Package handlers contains the gin request handlers for the dashboard
// API. Handlers parse and validate transport concerns only; business rules
// live in the application services they call.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/types/common"
)

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an application error to its HTTP status and writes the
// standard error body. Internal errors are masked.
func respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	message := err.Error()
	if status >= 500 {
		message = "internal server error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorBody{Code: string(code), Message: message})
}

// parsePagination reads page and page_size query parameters. Out-of-range
// values fall back to the Pagination defaults downstream.
func parsePagination(c *gin.Context) common.Pagination {
	p := common.Pagination{}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Page = n
		}
	}
	if v := c.Query("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.PageSize = n
		}
	}
	return p
}

// queryInt reads an integer query parameter, returning def when absent or
// malformed.
func queryInt(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
