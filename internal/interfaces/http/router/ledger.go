package router

import (
	"github.com/gin-gonic/gin"
	"github.com/saleledger/backend/internal/interfaces/http/handler"
)

// Handlers bundles the handlers served by the ledger API
type Handlers struct {
	Auth    *handler.AuthHandler
	Sale    *handler.SaleHandler
	Product *handler.ProductHandler
	Client  *handler.ClientHandler
	Health  *handler.HealthHandler
}

// Guards holds middleware that only some routes get
type Guards struct {
	// Login runs before POST /auth/login (rate limiting)
	Login []gin.HandlerFunc
	// CreateSale runs before POST /sales (Idempotency-Key handling)
	CreateSale []gin.HandlerFunc
}

func chain(guards []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(guards)+1)
	out = append(out, guards...)
	return append(out, h)
}

// LedgerGroups returns the domain groups of the versioned API
func LedgerGroups(h Handlers, g Guards) []RouteRegistrar {
	system := NewDomainGroup("system", "")
	system.GET("/health", h.Health.Health)
	system.GET("/system/info", h.Health.SystemInfo)

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", chain(g.Login, h.Auth.Login)...)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me)

	sales := NewDomainGroup("sales", "/sales")
	sales.POST("", chain(g.CreateSale, h.Sale.Create)...)
	sales.POST("/quote", h.Sale.Quote)
	sales.GET("", h.Sale.List)
	sales.GET("/:id", h.Sale.GetByID)
	sales.PUT("/:id", h.Sale.Update)
	sales.DELETE("/:id", h.Sale.Delete)

	products := NewDomainGroup("products", "/products")
	products.POST("", h.Product.Create)
	products.GET("", h.Product.List)
	products.GET("/:id", h.Product.GetByID)
	products.PUT("/:id", h.Product.Update)
	products.PUT("/:id/stock", h.Product.SetStock)
	products.DELETE("/:id", h.Product.Delete)

	clients := NewDomainGroup("clients", "/clients")
	clients.POST("", h.Client.Create)
	clients.GET("", h.Client.List)
	clients.GET("/:id", h.Client.GetByID)
	clients.PUT("/:id", h.Client.Update)
	clients.DELETE("/:id", h.Client.Delete)
	clients.GET("/:id/balance-entries", h.Client.BalanceEntries)

	return []RouteRegistrar{system, auth, sales, products, clients}
}

// RegisterProbes exposes the unversioned liveness probe used by orchestrators
func RegisterProbes(engine *gin.Engine, health *handler.HealthHandler) {
	engine.GET("/health", health.Health)
}
