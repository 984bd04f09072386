package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/cart"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/checkout"
)

func (a *api) getCart(c *gin.Context) {
	ct, err := a.Carts.Get(c.Request.Context(), currentCart(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (a *api) clearCart(c *gin.Context) {
	id := currentCart(c)
	if err := a.Carts.Clear(c.Request.Context(), id); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart.Cart{ID: id, Items: []cart.Line{}})
}

type addItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

func (a *api) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Produto inválido")
		return
	}
	ct, err := a.Carts.Add(c.Request.Context(), currentCart(c), req.ProductID, req.Quantity)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func productParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Produto inválido")
		return 0, false
	}
	return uint(id), true
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (a *api) updateCartItem(c *gin.Context) {
	productID, ok := productParam(c)
	if !ok {
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Quantidade inválida")
		return
	}
	ct, err := a.Carts.SetQuantity(c.Request.Context(), currentCart(c), productID, *req.Quantity)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (a *api) removeCartItem(c *gin.Context) {
	productID, ok := productParam(c)
	if !ok {
		return
	}
	ct, err := a.Carts.Remove(c.Request.Context(), currentCart(c), productID)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (a *api) checkout(c *gin.Context) {
	var req checkout.Customer
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Dados do pedido inválidos")
		return
	}
	order, err := a.Checkout.Checkout(c.Request.Context(), currentCart(c), req, c.GetHeader(idempotencyHeader))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "message": "Pedido realizado com sucesso"})
}
