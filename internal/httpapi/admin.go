package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/admin"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/auth"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/orders"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/pagination"
)

func actor(c *gin.Context) admin.Actor {
	claims := auth.CurrentClaims(c)
	if claims == nil {
		return admin.Actor{}
	}
	return admin.Actor{ID: claims.AdminID(), Email: claims.Email}
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Identificador inválido")
		return 0, false
	}
	return uint(id), true
}

// bind decodes the JSON body into dst, answering 400 when it cannot.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "Dados inválidos")
		return false
	}
	return true
}

func (a *api) dashboard(c *gin.Context) {
	d, err := a.Admin.Dashboard(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (a *api) auditLogs(c *gin.Context) {
	adminID, _ := strconv.ParseUint(c.Query("admin_id"), 10, 64)
	page, err := a.Admin.ListAuditLogs(c.Request.Context(), admin.AuditFilter{
		Entity:  c.Query("entity"),
		AdminID: uint(adminID),
		Params:  pagination.FromQuery(c),
	})
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// products

func (a *api) adminListProducts(c *gin.Context) {
	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 64)
	page, err := a.Admin.ListProducts(c.Request.Context(), admin.ProductQuery{
		Query:      c.Query("q"),
		CategoryID: uint(categoryID),
		Active:     queryBool(c, "active"),
		Params:     pagination.FromQuery(c),
	})
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (a *api) adminGetProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := a.Admin.GetProduct(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *api) adminCreateProduct(c *gin.Context) {
	var in admin.ProductInput
	if !bind(c, &in) {
		return
	}
	p, err := a.Admin.CreateProduct(c.Request.Context(), actor(c), in)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (a *api) adminUpdateProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in admin.ProductInput
	if !bind(c, &in) {
		return
	}
	p, err := a.Admin.UpdateProduct(c.Request.Context(), actor(c), id, in)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *api) adminDeleteProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := a.Admin.DeleteProduct(c.Request.Context(), actor(c), id); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type stockRequest struct {
	Stock *int `json:"stock" binding:"required"`
}

func (a *api) adminSetStock(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req stockRequest
	if !bind(c, &req) {
		return
	}
	p, err := a.Admin.SetStock(c.Request.Context(), actor(c), id, *req.Stock)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// product images

func (a *api) adminAddImage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "Nenhuma imagem enviada")
		return
	}
	img, err := a.Admin.AddImage(c.Request.Context(), actor(c), id, file, c.PostForm("alt"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

type reorderRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

func (a *api) adminReorderImages(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if !bind(c, &req) {
		return
	}
	imgs, err := a.Admin.ReorderImages(c.Request.Context(), actor(c), id, req.IDs)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": imgs})
}

func (a *api) adminUpdateImage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := idParam(c, "imageId")
	if !ok {
		return
	}
	var in admin.ImageInput
	if !bind(c, &in) {
		return
	}
	img, err := a.Admin.UpdateImage(c.Request.Context(), actor(c), id, imageID, in)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, img)
}

func (a *api) adminDeleteImage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := idParam(c, "imageId")
	if !ok {
		return
	}
	if err := a.Admin.DeleteImage(c.Request.Context(), actor(c), id, imageID); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// categories and collections

func (a *api) adminListCategories(c *gin.Context) {
	items, err := a.Admin.ListCategories(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (a *api) adminCreateCategory(c *gin.Context) {
	var in admin.GroupInput
	if !bind(c, &in) {
		return
	}
	cat, err := a.Admin.CreateCategory(c.Request.Context(), actor(c), in)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (a *api) adminUpdateCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in admin.GroupInput
	if !bind(c, &in) {
		return
	}
	cat, err := a.Admin.UpdateCategory(c.Request.Context(), actor(c), id, in)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (a *api) adminDeleteCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := a.Admin.DeleteCategory(c.Request.Context(), actor(c), id); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *api) adminListCollections(c *gin.Context) {
	items, err := a.Admin.ListCollections(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (a *api) adminCreateCollection(c *gin.Context) {
	var in admin.GroupInput
	if !bind(c, &in) {
		return
	}
	col, err := a.Admin.CreateCollection(c.Request.Context(), actor(c), in)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, col)
}

func (a *api) adminUpdateCollection(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in admin.GroupInput
	if !bind(c, &in) {
		return
	}
	col, err := a.Admin.UpdateCollection(c.Request.Context(), actor(c), id, in)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, col)
}

func (a *api) adminDeleteCollection(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := a.Admin.DeleteCollection(c.Request.Context(), actor(c), id); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// carousel

func (a *api) adminListCarousel(c *gin.Context) {
	items, err := a.Admin.ListCarousel(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (a *api) adminCreateCarousel(c *gin.Context) {
	var in admin.CarouselInput
	if !bind(c, &in) {
		return
	}
	it, err := a.Admin.CreateCarouselItem(c.Request.Context(), actor(c), in)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (a *api) adminUpdateCarousel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in admin.CarouselInput
	if !bind(c, &in) {
		return
	}
	it, err := a.Admin.UpdateCarouselItem(c.Request.Context(), actor(c), id, in)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (a *api) adminDeleteCarousel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := a.Admin.DeleteCarouselItem(c.Request.Context(), actor(c), id); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *api) adminReorderCarousel(c *gin.Context) {
	var req reorderRequest
	if !bind(c, &req) {
		return
	}
	items, err := a.Admin.ReorderCarousel(c.Request.Context(), actor(c), req.IDs)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// settings

func (a *api) adminListSettings(c *gin.Context) {
	items, err := a.Admin.ListSettings(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (a *api) adminGetSetting(c *gin.Context) {
	st, err := a.Admin.GetSetting(c.Request.Context(), c.Param("key"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

type settingRequest struct {
	Value  string `json:"value"`
	Public bool   `json:"public"`
}

func (a *api) adminSetSetting(c *gin.Context) {
	var req settingRequest
	if !bind(c, &req) {
		return
	}
	st, err := a.Admin.SetSetting(c.Request.Context(), actor(c), c.Param("key"), req.Value, req.Public)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (a *api) adminDeleteSetting(c *gin.Context) {
	if err := a.Admin.DeleteSetting(c.Request.Context(), actor(c), c.Param("key")); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// orders

func (a *api) adminListOrders(c *gin.Context) {
	status := models.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		badRequest(c, "Status de pedido inválido")
		return
	}
	page, err := a.Admin.ListOrders(c.Request.Context(), orders.ListFilter{
		Status: status,
		Query:  c.Query("q"),
		Params: pagination.FromQuery(c),
	})
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (a *api) adminGetOrder(c *gin.Context) {
	o, err := a.Admin.GetOrder(c.Request.Context(), c.Param("number"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type statusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

func (a *api) adminUpdateOrderStatus(c *gin.Context) {
	var req statusRequest
	if !bind(c, &req) {
		return
	}
	o, err := a.Admin.UpdateOrderStatus(c.Request.Context(), actor(c), c.Param("number"), req.Status)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// uploads

func (a *api) adminUpload(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "Nenhuma imagem enviada")
		return
	}
	obj, err := a.Admin.Upload(c.Request.Context(), actor(c), file, c.PostForm("folder"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, obj)
}

func (a *api) adminDeleteUpload(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		badRequest(c, "Informe a chave do arquivo")
		return
	}
	if err := a.Admin.DeleteUpload(c.Request.Context(), actor(c), key); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
