package httpapi

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/cart"
)

const (
	cartHeader        = "X-Cart-ID"
	idempotencyHeader = "Idempotency-Key"
	cartSessionKey    = "cart_id"
	cartContextKey    = "cartID"
)

// cartID resolves the anonymous cart: X-Cart-ID header, then the session
// cookie, then a fresh id. The id is kept in the session and echoed back.
func cartID(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		stored, _ := sess.Get(cartSessionKey).(string)

		id := strings.TrimSpace(c.GetHeader(cartHeader))
		switch {
		case id != "":
			if !cart.ValidID(id) {
				badRequest(c, "Identificador de carrinho inválido")
				return
			}
		case cart.ValidID(stored):
			id = stored
		default:
			id = cart.NewID()
		}

		if id != stored {
			sess.Set(cartSessionKey, id)
			if err := sess.Save(); err != nil {
				logger.Warn().Err(err).Msg("could not save cart session")
			}
		}
		c.Header(cartHeader, id)
		c.Set(cartContextKey, id)
		c.Next()
	}
}

func currentCart(c *gin.Context) string {
	return c.GetString(cartContextKey)
}
