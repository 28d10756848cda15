package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/saleledger/backend/internal/application/catalog"
	identityapp "github.com/saleledger/backend/internal/application/identity"
	partnerapp "github.com/saleledger/backend/internal/application/partner"
	saleapp "github.com/saleledger/backend/internal/application/sale"
	"github.com/saleledger/backend/internal/domain/catalog"
	"github.com/saleledger/backend/internal/domain/identity"
	"github.com/saleledger/backend/internal/domain/partner"
	"github.com/saleledger/backend/internal/infrastructure/auth"
	"github.com/saleledger/backend/internal/infrastructure/config"
	"github.com/saleledger/backend/internal/infrastructure/persistence/memory"
	"github.com/saleledger/backend/internal/interfaces/http/dto"
	"github.com/saleledger/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "balcao-2024!"

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// envelope mirrors dto.Response with a raw data payload for typed decoding
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

type apiFixture struct {
	t         *testing.T
	engine    *gin.Engine
	store     *memory.Store
	blacklist *auth.StoreBlacklist
	operator  *identity.User
	token     string
}

func newAPIFixture(t *testing.T, opts ...saleapp.LedgerOption) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	log := zap.NewNop()

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "handler-test-secret-of-32-chars!",
		AccessTokenExpiration: time.Hour,
		Issuer:                "ledger-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	operator, err := identity.NewUser("caixa", "Caixa 1", testPassword)
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(context.Background(), operator))
	token, err := jwtService.GenerateToken(operator.ID, operator.Username)
	require.NoError(t, err)

	authHandler := NewAuthHandler(identityapp.NewAuthService(store.Users(), jwtService, blacklist, log))
	saleHandler := NewSaleHandler(saleapp.NewLedgerService(store.Sales(), store, log, opts...))
	productHandler := NewProductHandler(catalogapp.NewProductService(store.Products(), log))
	clientHandler := NewClientHandler(partnerapp.NewClientService(store.Clients(), store.BalanceEntries(), store.Sales(), log))

	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.TokenBlacklist = blacklist

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1", middleware.JWTAuthMiddlewareWithConfig(jwtCfg))

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", authHandler.Me)

	api.POST("/sales", saleHandler.Create)
	api.POST("/sales/quote", saleHandler.Quote)
	api.GET("/sales", saleHandler.List)
	api.GET("/sales/:id", saleHandler.GetByID)
	api.PUT("/sales/:id", saleHandler.Update)
	api.DELETE("/sales/:id", saleHandler.Delete)

	api.POST("/products", productHandler.Create)
	api.GET("/products", productHandler.List)
	api.GET("/products/:id", productHandler.GetByID)
	api.PUT("/products/:id", productHandler.Update)
	api.PUT("/products/:id/stock", productHandler.SetStock)
	api.DELETE("/products/:id", productHandler.Delete)

	api.POST("/clients", clientHandler.Create)
	api.GET("/clients", clientHandler.List)
	api.GET("/clients/:id", clientHandler.GetByID)
	api.PUT("/clients/:id", clientHandler.Update)
	api.DELETE("/clients/:id", clientHandler.Delete)
	api.GET("/clients/:id/balance-entries", clientHandler.BalanceEntries)

	return &apiFixture{
		t:         t,
		engine:    engine,
		store:     store,
		blacklist: blacklist,
		operator:  operator,
		token:     token.AccessToken,
	}
}

// call sends an authenticated request; body is JSON-encoded unless it is a string
func (f *apiFixture) call(method, path string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	return f.callWithToken(f.token, method, path, body)
}

func (f *apiFixture) callWithToken(token, method, path string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(f.t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (f *apiFixture) product(name, price string, stock int) *catalog.Product {
	f.t.Helper()
	p, err := catalog.NewProduct(name, decimal.RequireFromString(price), stock)
	require.NoError(f.t, err)
	require.NoError(f.t, f.store.Products().Create(context.Background(), p))
	return p
}

func (f *apiFixture) client(name string) *partner.Client {
	f.t.Helper()
	c, err := partner.NewClient(name, nil, nil)
	require.NoError(f.t, err)
	require.NoError(f.t, f.store.Clients().Create(context.Background(), c))
	return c
}

func (f *apiFixture) stock(id uuid.UUID) int {
	f.t.Helper()
	p, err := f.store.Products().FindByID(context.Background(), id)
	require.NoError(f.t, err)
	return p.StockQuantity
}

func (f *apiFixture) balance(id uuid.UUID) decimal.Decimal {
	f.t.Helper()
	c, err := f.store.Clients().FindByID(context.Background(), id)
	require.NoError(f.t, err)
	return c.Balance
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}
