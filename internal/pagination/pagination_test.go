package pagination_test

import (
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/gin-gonic/gin"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/pagination"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want pagination.Params
	}{
		{in: pagination.Params{}, want: pagination.Params{Page: 1, PageSize: 12}},
		{in: pagination.Params{Page: 3, PageSize: 50}, want: pagination.Params{Page: 3, PageSize: 50}},
		{in: pagination.Params{Page: -1, PageSize: 101}, want: pagination.Params{Page: 1, PageSize: 12}},
	}
	for _, tt := range tests {
		qt.Assert(t, tt.in.Normalize(), qt.Equals, tt.want)
	}
	qt.Assert(t, pagination.Params{Page: 3, PageSize: 10}.Offset(), qt.Equals, 20)
}

func TestFromQuery(t *testing.T) {
	c := qt.New(t)
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest("GET", "/x?page=2&page_size=abc", nil)
	c.Assert(pagination.FromQuery(ctx), qt.Equals, pagination.Params{Page: 2, PageSize: 12})
}

func TestNewPage(t *testing.T) {
	c := qt.New(t)
	p := pagination.NewPage([]int(nil), 0, pagination.Params{Page: 1, PageSize: 10})
	c.Assert(p.Items, qt.DeepEquals, []int{})
	c.Assert(p.TotalPages, qt.Equals, int64(1))

	p = pagination.NewPage([]int{1, 2}, 21, pagination.Params{Page: 3, PageSize: 10})
	c.Assert(p.TotalPages, qt.Equals, int64(3))
}
