package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
)

const claimsKey = "authClaims"

// RequireAdmin rejects requests without a valid Bearer token or whose admin
// has since been deactivated. The stored claims carry the current role.
func RequireAdmin(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token de acesso não fornecido"})
			return
		}
		claims, err := s.Authenticate(c.Request.Context(), strings.TrimSpace(raw))
		if errors.Is(err, ErrInvalidToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token inválido ou expirado"})
			return
		}
		if err != nil {
			s.logger.Error().Err(err).Msg("could not load admin for token")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole must run after RequireAdmin.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token de acesso não fornecido"})
			return
		}
		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Permissão insuficiente"})
	}
}

// CurrentClaims returns the claims stored by RequireAdmin, or nil.
func CurrentClaims(c *gin.Context) *Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
