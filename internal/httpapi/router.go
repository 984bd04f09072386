// Package httpapi exposes the storefront and back-office over JSON/HTTP.
package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/admin"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/auth"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/cart"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/catalog"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/checkout"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/logging"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/notify"
)

const sessionName = "ravic_session"

// Dispatcher is satisfied by *notify.Dispatcher.
type Dispatcher interface {
	Dispatch(ev notify.Event)
}

// Deps are the services behind the routes.
type Deps struct {
	DB         *gorm.DB
	Catalog    *catalog.Service
	Carts      *cart.Service
	Checkout   *checkout.Service
	Admin      *admin.Service
	Auth       *auth.Service
	Dispatcher Dispatcher
	Logger     zerolog.Logger

	SessionSecret string
	// SecureCookies marks the session cookie Secure (HTTPS deployments).
	SecureCookies bool
	CORSOrigins   []string
	// UploadDir is served at /uploads when set (local storage driver).
	UploadDir     string
	MaxUploadSize int64

	// TrustedProxies are the addresses or CIDRs whose X-Forwarded-For is
	// believed when resolving the client IP; none when empty.
	TrustedProxies []string
}

type api struct {
	Deps
	logger zerolog.Logger
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", cartHeader, idempotencyHeader},
		ExposeHeaders: []string{cartHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(d Deps) (*gin.Engine, error) {
	a := &api{Deps: d, logger: logging.Component(d.Logger, "http")}

	r := gin.New()
	// the login limiter keys on ClientIP
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), logging.Middleware(a.logger), cors.New(corsConfig(d.CORSOrigins)))
	if d.MaxUploadSize > 0 {
		// multipart overhead on top of the image itself
		r.MaxMultipartMemory = d.MaxUploadSize + 1<<20
	}

	store := cookie.NewStore([]byte(d.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   d.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	r.GET("/health", a.health)

	pub := r.Group("/api")
	{
		pub.POST("/auth/login", a.login)
		pub.GET("/auth/me", auth.RequireAdmin(d.Auth), a.me)

		pub.GET("/products", a.listProducts)
		pub.GET("/products/:id", a.getProduct)
		pub.GET("/categories", a.listCategories)
		pub.GET("/collections", a.listCollections)
		pub.GET("/carousel", a.listCarousel)
		pub.GET("/settings/public", a.publicSettings)

		shop := pub.Group("", cartID(a.logger))
		shop.GET("/cart", a.getCart)
		shop.DELETE("/cart", a.clearCart)
		shop.POST("/cart/items", a.addCartItem)
		shop.PATCH("/cart/items/:productId", a.updateCartItem)
		shop.DELETE("/cart/items/:productId", a.removeCartItem)
		shop.POST("/checkout", a.checkout)

		pub.POST("/webhooks/order", a.orderWebhook)
		pub.POST("/webhooks/contact", a.contactWebhook)
	}

	adm := r.Group("/api/admin", auth.RequireAdmin(d.Auth))
	{
		adm.GET("/dashboard", a.dashboard)
		adm.GET("/audit-logs", a.auditLogs)

		adm.GET("/products", a.adminListProducts)
		adm.POST("/products", a.adminCreateProduct)
		adm.GET("/products/:id", a.adminGetProduct)
		adm.PATCH("/products/:id", a.adminUpdateProduct)
		adm.PUT("/products/:id", a.adminUpdateProduct)
		adm.DELETE("/products/:id", a.adminDeleteProduct)
		adm.PATCH("/products/:id/stock", a.adminSetStock)
		adm.POST("/products/:id/images", a.adminAddImage)
		adm.PUT("/products/:id/images/order", a.adminReorderImages)
		adm.PATCH("/products/:id/images/:imageId", a.adminUpdateImage)
		adm.DELETE("/products/:id/images/:imageId", a.adminDeleteImage)

		adm.GET("/categories", a.adminListCategories)
		adm.POST("/categories", a.adminCreateCategory)
		adm.PATCH("/categories/:id", a.adminUpdateCategory)
		adm.DELETE("/categories/:id", a.adminDeleteCategory)

		adm.GET("/collections", a.adminListCollections)
		adm.POST("/collections", a.adminCreateCollection)
		adm.PATCH("/collections/:id", a.adminUpdateCollection)
		adm.DELETE("/collections/:id", a.adminDeleteCollection)

		adm.GET("/carousel", a.adminListCarousel)
		adm.POST("/carousel", a.adminCreateCarousel)
		adm.PUT("/carousel/order", a.adminReorderCarousel)
		adm.PATCH("/carousel/:id", a.adminUpdateCarousel)
		adm.DELETE("/carousel/:id", a.adminDeleteCarousel)

		adm.GET("/settings", a.adminListSettings)
		adm.GET("/settings/:key", a.adminGetSetting)
		adm.PUT("/settings/:key", auth.RequireRole(models.RoleAdmin), a.adminSetSetting)
		adm.DELETE("/settings/:key", auth.RequireRole(models.RoleAdmin), a.adminDeleteSetting)

		adm.GET("/orders", a.adminListOrders)
		adm.GET("/orders/:number", a.adminGetOrder)
		adm.PATCH("/orders/:number/status", a.adminUpdateOrderStatus)

		adm.POST("/upload", a.adminUpload)
		adm.DELETE("/upload", a.adminDeleteUpload)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rota não encontrada"})
	})
	return r, nil
}
