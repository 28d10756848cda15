package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/saleledger/backend/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.BasePath())

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("sales", "/sales")
	reply := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
	g.GET("/:id", reply).
		POST("", reply).
		PUT("/:id", reply).
		PATCH("/:id", reply).
		DELETE("/:id", reply)

	NewRouter(engine).Register(g).Setup()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/sales/1"},
		{http.MethodPost, "/api/v1/sales"},
		{http.MethodPut, "/api/v1/sales/1"},
		{http.MethodPatch, "/api/v1/sales/1"},
		{http.MethodDelete, "/api/v1/sales/1"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.method, w.Body.String())
		})
	}
	assert.Equal(t, "sales", g.Name())
	assert.Equal(t, "/sales", g.Prefix())
}

func TestRouter_UseScopesToVersionedRoutes(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	g := NewDomainGroup("clients", "/clients")
	g.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })

	NewRouter(engine).
		Use(func(c *gin.Context) {
			c.AbortWithStatus(http.StatusUnauthorized)
		}).
		Register(g).
		Setup()

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/clients").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
}

func TestDomainGroup_MiddlewareAndSubgroups(t *testing.T) {
	engine := gin.New()
	clients := NewDomainGroup("clients", "/clients")
	clients.Use(func(c *gin.Context) {
		c.Header("X-Group", "clients")
		c.Next()
	})
	history := clients.Group("history", "/:id")
	history.GET("/balance-entries", func(c *gin.Context) {
		c.String(http.StatusOK, c.Param("id"))
	})

	NewRouter(engine).Register(clients).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/clients/abc/balance-entries")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", w.Body.String())
	assert.Equal(t, "clients", w.Header().Get("X-Group"))
	assert.Equal(t, []string{"GET /clients/:id/balance-entries"}, clients.Routes())
}

func emptyHandlers() Handlers {
	return Handlers{
		Auth:    &handler.AuthHandler{},
		Sale:    &handler.SaleHandler{},
		Product: &handler.ProductHandler{},
		Client:  &handler.ClientHandler{},
		Health:  handler.NewHealthHandler("sale-ledger", "test", nil),
	}
}

func TestLedgerGroups_RouteTable(t *testing.T) {
	var routes []string
	for _, registrar := range LedgerGroups(emptyHandlers(), Guards{}) {
		group, ok := registrar.(*DomainGroup)
		require.True(t, ok)
		routes = append(routes, group.Routes()...)
	}

	for _, want := range []string{
		"GET /health",
		"POST /auth/login",
		"POST /auth/logout",
		"GET /auth/me",
		"POST /sales",
		"POST /sales/quote",
		"GET /sales",
		"GET /sales/:id",
		"PUT /sales/:id",
		"DELETE /sales/:id",
		"PUT /products/:id/stock",
		"GET /clients/:id/balance-entries",
	} {
		assert.Contains(t, routes, want)
	}
}

func TestLedgerGroups_GuardsRunFirst(t *testing.T) {
	engine := gin.New()
	reject := func(status int) gin.HandlerFunc {
		return func(c *gin.Context) { c.AbortWithStatus(status) }
	}
	NewRouter(engine).Register(LedgerGroups(emptyHandlers(), Guards{
		Login:      []gin.HandlerFunc{reject(http.StatusTooManyRequests)},
		CreateSale: []gin.HandlerFunc{reject(http.StatusConflict)},
	})...).Setup()
	RegisterProbes(engine, emptyHandlers().Health)

	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodPost, "/api/v1/auth/login").Code)
	assert.Equal(t, http.StatusConflict, serve(engine, http.MethodPost, "/api/v1/sales").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/health").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
}
