// Package pagination normalises page/page_size query parameters.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 12
	MaxPageSize     = 100
)

type Params struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize clamps out of range values to the defaults.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		p.PageSize = DefaultPageSize
	}
	return p
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// FromQuery reads ?page= and ?page_size=.
func FromQuery(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(DefaultPageSize)))
	return Params{Page: page, PageSize: size}.Normalize()
}

// Page is one slice of a listing.
type Page[T any] struct {
	Items      []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
}

func NewPage[T any](items []T, total int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := int64(1)
	if p.PageSize > 0 && total > 0 {
		pages = total / int64(p.PageSize)
		if total%int64(p.PageSize) != 0 {
			pages++
		}
	}
	return Page[T]{Items: items, Total: total, Page: p.Page, PageSize: p.PageSize, TotalPages: pages}
}
