package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/auth"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/catalog"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/db"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/pagination"
)

func (a *api) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := db.Ping(ctx, a.DB); err != nil {
		a.logger.Error().Err(err).Msg("health check: database unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "db": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (a *api) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Informe e-mail e senha válidos")
		return
	}
	res, err := a.Auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *api) me(c *gin.Context) {
	u, err := a.Auth.Me(c.Request.Context(), auth.CurrentClaims(c).AdminID())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func queryInt64(c *gin.Context, key string) int64 {
	n, _ := strconv.ParseInt(c.Query(key), 10, 64)
	return n
}

func queryBool(c *gin.Context, key string) *bool {
	v, err := strconv.ParseBool(c.Query(key))
	if err != nil {
		return nil
	}
	return &v
}

func (a *api) listProducts(c *gin.Context) {
	f := catalog.ProductFilter{
		Category:   c.Query("category"),
		Collection: c.Query("collection"),
		Query:      strings.TrimSpace(c.Query("q")),
		Featured:   queryBool(c, "featured"),
		MinPrice:   queryInt64(c, "min_price"),
		MaxPrice:   queryInt64(c, "max_price"),
		Sort:       c.Query("sort"),
		Params:     pagination.FromQuery(c),
	}
	page, err := a.Catalog.ListProducts(c.Request.Context(), f)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (a *api) getProduct(c *gin.Context) {
	p, err := a.Catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *api) listCategories(c *gin.Context) {
	items, err := a.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (a *api) listCollections(c *gin.Context) {
	items, err := a.Catalog.ListCollections(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (a *api) listCarousel(c *gin.Context) {
	items, err := a.Catalog.ListCarousel(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (a *api) publicSettings(c *gin.Context) {
	settings, err := a.Catalog.PublicSettings(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
