package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	catalogapp "github.com/saleledger/backend/internal/application/catalog"
	identityapp "github.com/saleledger/backend/internal/application/identity"
	partnerapp "github.com/saleledger/backend/internal/application/partner"
	saleapp "github.com/saleledger/backend/internal/application/sale"
	"github.com/saleledger/backend/internal/domain/catalog"
	"github.com/saleledger/backend/internal/domain/identity"
	"github.com/saleledger/backend/internal/domain/partner"
	"github.com/saleledger/backend/internal/domain/sale"
	"github.com/saleledger/backend/internal/infrastructure/auth"
	"github.com/saleledger/backend/internal/infrastructure/cache"
	"github.com/saleledger/backend/internal/infrastructure/config"
	"github.com/saleledger/backend/internal/infrastructure/event"
	"github.com/saleledger/backend/internal/infrastructure/logger"
	"github.com/saleledger/backend/internal/infrastructure/persistence"
	"github.com/saleledger/backend/internal/infrastructure/persistence/memory"
	"github.com/saleledger/backend/internal/infrastructure/telemetry"
	"github.com/saleledger/backend/internal/interfaces/http/handler"
	"github.com/saleledger/backend/internal/interfaces/http/middleware"
	"github.com/saleledger/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

// repositories is the storage backend the services run on
type repositories struct {
	sales    sale.Repository
	products catalog.ProductRepository
	clients  partner.ClientRepository
	entries  partner.BalanceEntryRepository
	users    identity.UserRepository
	txScope  saleapp.TransactionScope
	ping     handler.Pinger
	close    func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	collector := telemetry.Collector{
		Endpoint:    cfg.Telemetry.CollectorEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     version,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Collector:     collector,
		Enabled:       cfg.Telemetry.Enabled,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Collector:      collector,
		Enabled:        cfg.Telemetry.MetricsEnabled,
		ExportInterval: cfg.Telemetry.MetricsExportInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Collector: collector,
		Enabled:   cfg.Telemetry.LogsEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Telemetry.LogsMinLevel))

	log.Info("Starting sale ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = randomSecret()
		log.Warn("jwt.secret not set, using a random secret; tokens will not survive a restart")
	}

	repos, err := openRepositories(cfg, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := repos.close(); err != nil {
			log.Error("Error closing storage", zap.Error(err))
		}
	}()

	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, continuing without it", zap.Error(err))
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}

	idempotencyStore, err := cache.OpenIdempotencyStore(ctx, cache.StoreOptions{
		Redis:        cfg.Redis,
		Client:       redisClient,
		RequireRedis: cfg.App.Env == "production",
		Logger:       log,
	})
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() { _ = idempotencyStore.Close() }()

	// Event bus: metrics are deduplicated by event id, the audit log sees everything
	bus := event.NewInMemoryEventBus(log)
	ledgerMetrics, err := telemetry.NewLedgerMetrics(meterProvider.Meter("sale-ledger"))
	if err != nil {
		log.Fatal("Failed to register ledger metrics", zap.Error(err))
	}
	bus.Subscribe(event.NewIdempotentHandler(ledgerMetrics, idempotencyStore, log))
	bus.Subscribe(event.NewAuditLogHandler(log))
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() { _ = bus.Stop(context.Background()) }()

	policy, ok := saleapp.CreditPolicyByName(cfg.Ledger.CreditPolicy)
	if !ok {
		log.Fatal("Unknown credit policy", zap.String("policy", cfg.Ledger.CreditPolicy))
	}
	ledgerService := saleapp.NewLedgerService(repos.sales, repos.txScope, log,
		saleapp.WithSaleCap(cfg.Ledger.SaleCap),
		saleapp.WithCreditPolicy(policy),
		saleapp.WithEventPublisher(bus),
	)
	productService := catalogapp.NewProductService(repos.products, log)
	productService.SetEventPublisher(bus)
	clientService := partnerapp.NewClientService(repos.clients, repos.entries, repos.sales, log)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(repos.users, jwtService, blacklist, log)
	if cfg.App.BootstrapUsername != "" && cfg.App.BootstrapPassword != "" {
		if _, err := authService.Bootstrap(ctx, identityapp.BootstrapInput{
			Username:    cfg.App.BootstrapUsername,
			DisplayName: cfg.App.BootstrapUsername,
			Password:    cfg.App.BootstrapPassword,
		}); err != nil {
			log.Fatal("Failed to create bootstrap operator", zap.Error(err))
		}
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.App.Env == "production"

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanErrorMarker(),
		middleware.SecureWithConfig(securityCfg),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.HTTPMetrics(meterProvider.Meter("sale-ledger/http")),
	)

	checks := map[string]handler.Pinger{"database": repos.ping}
	if redisClient != nil {
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Sale:    handler.NewSaleHandler(ledgerService),
		Product: handler.NewProductHandler(productService),
		Client:  handler.NewClientHandler(clientService),
		Health:  handler.NewHealthHandler(cfg.App.Name, version, checks),
	}

	var guards router.Guards
	if cfg.HTTP.LoginRateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.LoginRateLimitRequests, cfg.HTTP.LoginRateLimitWindow)
		defer limiter.Stop()
		guards.Login = append(guards.Login, middleware.LoginRateLimit(limiter))
	}
	if cfg.Idempotency.Enabled {
		guards.CreateSale = append(guards.CreateSale, middleware.Idempotency(middleware.IdempotencyConfig{
			Store:  idempotencyStore,
			TTL:    cfg.Idempotency.TTL,
			Logger: log,
		}))
	}

	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.TokenBlacklist = blacklist
	jwtCfg.Logger = log

	router.NewRouter(engine).
		Use(middleware.JWTAuthMiddlewareWithConfig(jwtCfg), middleware.TracingAttributeInjector()).
		Register(router.LedgerGroups(handlers, guards)...).
		Setup()
	router.RegisterProbes(engine, handlers.Health)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tracerProvider.Shutdown,
		"meter":  meterProvider.Shutdown,
		"logger": loggerProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry provider shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

// openRepositories selects the storage backend from database.driver
func openRepositories(cfg *config.Config, log *zap.Logger) (*repositories, error) {
	if cfg.Database.Driver == config.DriverMemory {
		store := memory.NewStore()
		log.Warn("Using in-memory storage; data is lost on restart")
		return &repositories{
			sales:    store.Sales(),
			products: store.Products(),
			clients:  store.Clients(),
			entries:  store.BalanceEntries(),
			users:    store.Users(),
			txScope:  store,
			ping:     handler.PingerFunc(func(context.Context) error { return nil }),
			close:    func() error { return nil },
		}, nil
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return nil, err
	}
	log.Info("Database connected", zap.String("driver", db.Driver))

	if cfg.Telemetry.DBTraceEnabled {
		tracingCfg := telemetry.DefaultDBTracingConfig()
		tracingCfg.Enabled = true
		tracingCfg.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		tracingCfg.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
		if cfg.Database.Driver == config.DriverSQLite {
			tracingCfg.DBSystem = "sqlite"
		}
		if err := telemetry.NewDBTracingPlugin(tracingCfg, log).RegisterOtelGorm(db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &repositories{
		sales:    persistence.NewGormSaleRepository(db.DB),
		products: persistence.NewGormProductRepository(db.DB),
		clients:  persistence.NewGormClientRepository(db.DB),
		entries:  persistence.NewGormBalanceEntryRepository(db.DB),
		users:    persistence.NewGormUserRepository(db.DB),
		txScope:  persistence.NewGormTransactionScope(db.DB),
		ping:     handler.PingerFunc(db.Ping),
		close:    db.Close,
	}, nil
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
