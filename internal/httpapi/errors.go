package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/admin"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/auth"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/cart"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/catalog"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/checkout"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/orders"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/storage"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/validate"
)

const msgInternal = "Erro interno do servidor"

type mapping struct {
	err     error
	status  int
	message string
}

// Specific errors come before the generic ones they wrap.
var errorTable = []mapping{
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "E-mail ou senha inválidos"},
	{auth.ErrTooManyAttempts, http.StatusTooManyRequests, "Muitas tentativas de login. Aguarde um minuto e tente novamente"},
	{auth.ErrEmailTaken, http.StatusConflict, "E-mail já cadastrado"},
	{auth.ErrAdminNotFound, http.StatusNotFound, "Usuário não encontrado"},
	{auth.ErrWeakPassword, http.StatusBadRequest, "A senha deve ter pelo menos 8 caracteres"},
	{auth.ErrInvalidEmail, http.StatusBadRequest, "E-mail inválido"},
	{auth.ErrInvalidRole, http.StatusBadRequest, "Perfil inválido"},

	{cart.ErrInvalidCartID, http.StatusBadRequest, "Identificador de carrinho inválido"},
	{cart.ErrProductNotFound, http.StatusNotFound, "Produto não encontrado"},
	{cart.ErrOutOfStock, http.StatusUnprocessableEntity, "Produto sem estoque"},
	{cart.ErrItemNotFound, http.StatusNotFound, "Item não encontrado no carrinho"},
	{catalog.ErrProductNotFound, http.StatusNotFound, "Produto não encontrado"},

	{checkout.ErrEmptyCart, http.StatusUnprocessableEntity, "Seu carrinho está vazio"},
	{checkout.ErrDuplicateCheckout, http.StatusConflict, "Este pedido já foi enviado"},

	{orders.ErrOrderNotFound, http.StatusNotFound, "Pedido não encontrado"},
	{orders.ErrInvalidStatus, http.StatusBadRequest, "Status de pedido inválido"},

	{admin.ErrProductNotFound, http.StatusNotFound, "Produto não encontrado"},
	{admin.ErrImageNotFound, http.StatusNotFound, "Imagem não encontrada"},
	{admin.ErrCategoryNotFound, http.StatusNotFound, "Categoria não encontrada"},
	{admin.ErrCollectionNotFound, http.StatusNotFound, "Coleção não encontrada"},
	{admin.ErrCarouselNotFound, http.StatusNotFound, "Banner não encontrado"},
	{admin.ErrSettingNotFound, http.StatusNotFound, "Configuração não encontrada"},
	{admin.ErrNotFound, http.StatusNotFound, "Registro não encontrado"},
	{admin.ErrSlugTaken, http.StatusConflict, "Já existe um registro com este slug"},

	{storage.ErrUnsupportedFormat, http.StatusBadRequest, "Formato de imagem não suportado. Use JPG, PNG, WEBP ou GIF"},
	{storage.ErrTooLarge, http.StatusBadRequest, "Imagem muito grande"},
	{storage.ErrInvalidKey, http.StatusBadRequest, "Chave de arquivo inválida"},
}

// classify maps a service error to an HTTP status and a message fit for
// the storefront.
func classify(err error) (int, string) {
	var verr *validate.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Message
	}
	var serr *checkout.StockError
	if errors.As(err, &serr) {
		return http.StatusUnprocessableEntity, "Estoque insuficiente para " + serr.Product
	}
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, msgInternal
}

// fail writes {"error": ...}; unexpected errors are logged with their detail
// and answered with a generic message.
func (a *api) fail(c *gin.Context, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		a.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// badRequest answers malformed bodies and parameters.
func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
