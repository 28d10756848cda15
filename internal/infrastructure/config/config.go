// Package config loads the ledger configuration from config.toml and
// LEDGER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Ledger      LedgerConfig      `mapstructure:"ledger"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Log         LogConfig         `mapstructure:"log"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`

	// operator created at startup unless the username already exists
	BootstrapUsername string `mapstructure:"bootstrap_username"`
	BootstrapPassword string `mapstructure:"bootstrap_password"`
}

// LedgerConfig carries the sale rules. A zero SaleCap disables the cap;
// CreditPolicy (decline or accept) applies when a request does not choose.
type LedgerConfig struct {
	SaleCap      decimal.Decimal `mapstructure:"-"`
	CreditPolicy string          `mapstructure:"credit_policy"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// RedisConfig is optional; an empty Host means no Redis.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret                string        `mapstructure:"secret"`
	AccessTokenExpiration time.Duration `mapstructure:"access_token_expiration"`
	Issuer                string        `mapstructure:"issuer"`
}

type HTTPConfig struct {
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes   int           `mapstructure:"max_header_bytes"`
	MaxBodySize      int64         `mapstructure:"max_body_size"`
	CORSAllowOrigins []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string      `mapstructure:"trusted_proxies"`

	LoginRateLimitEnabled  bool          `mapstructure:"login_rate_limit_enabled"`
	LoginRateLimitRequests int           `mapstructure:"login_rate_limit_requests"` // per client IP and window
	LoginRateLimitWindow   time.Duration `mapstructure:"login_rate_limit_window"`
}

// IdempotencyConfig governs the Idempotency-Key header on sale creation.
type IdempotencyConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// TelemetryConfig covers OTLP export. Traces, metrics and logs share the
// collector endpoint but are switched on separately.
type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"`
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`

	MetricsEnabled        bool          `mapstructure:"metrics_enabled"`
	MetricsExportInterval time.Duration `mapstructure:"metrics_export_interval"`
	LogsEnabled           bool          `mapstructure:"logs_enabled"`
	LogsMinLevel          string        `mapstructure:"logs_min_level"`
}

// defaults also registers every key with viper, which is what lets
// AutomaticEnv reach keys absent from config.toml during Unmarshal.
var defaults = map[string]any{
	"app.name":               "sale-ledger",
	"app.env":                "development",
	"app.port":               "8080",
	"app.bootstrap_username": "",
	"app.bootstrap_password": "",

	"ledger.sale_cap":      "1200.00",
	"ledger.credit_policy": "decline",

	"database.driver":             DriverPostgres,
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "ledger",
	"database.sslmode":            "disable",
	"database.sqlite_path":        "ledger.db",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.host":     "",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret":                  "",
	"jwt.access_token_expiration": 12 * time.Hour,
	"jwt.issuer":                  "sale-ledger",

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":     15 * time.Second,
	"http.write_timeout":    15 * time.Second,
	"http.idle_timeout":     60 * time.Second,
	"http.max_header_bytes": 1 << 20,
	"http.max_body_size":    1 << 20,
	// no origins: cross-origin requests are refused
	"http.cors_allow_origins":        []string{},
	"http.cors_allow_methods":        []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	"http.cors_allow_headers":        []string{"Content-Type", "Authorization", "X-Request-ID", "Idempotency-Key"},
	"http.trusted_proxies":           []string{},
	"http.login_rate_limit_enabled":  true,
	"http.login_rate_limit_requests": 10,
	"http.login_rate_limit_window":   time.Minute,

	"idempotency.enabled": true,
	"idempotency.ttl":     24 * time.Hour,

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "sale-ledger",
	"telemetry.insecure":                false,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
	"telemetry.metrics_enabled":         false,
	"telemetry.metrics_export_interval": time.Minute,
	"telemetry.logs_enabled":            false,
	"telemetry.logs_min_level":          "info",
}

// Load reads config.toml from the working directory or /app, then lets
// LEDGER_<SECTION>_<KEY> variables override it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	saleCap, err := decimal.NewFromString(strings.TrimSpace(v.GetString("ledger.sale_cap")))
	if err != nil {
		return nil, fmt.Errorf("ledger.sale_cap is not a decimal: %w", err)
	}
	cfg.Ledger.SaleCap = saleCap
	cfg.Ledger.CreditPolicy = strings.ToLower(cfg.Ledger.CreditPolicy)
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if !slices.Contains([]string{DriverPostgres, DriverSQLite, DriverMemory}, c.Database.Driver) {
		return fmt.Errorf("database.driver must be postgres, sqlite or memory, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 || c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database pool sizes must be positive")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Ledger.SaleCap.IsNegative() {
		return fmt.Errorf("ledger.sale_cap cannot be negative")
	}
	if c.Ledger.CreditPolicy != "decline" && c.Ledger.CreditPolicy != "accept" {
		return fmt.Errorf("ledger.credit_policy must be decline or accept, got %q", c.Ledger.CreditPolicy)
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be within [0, 1], got %g", c.Telemetry.SamplingRatio)
	}
	if c.App.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

// validateProduction refuses settings that are only safe on a developer box.
func (c *Config) validateProduction() error {
	switch {
	case len(c.JWT.Secret) < 32:
		return fmt.Errorf("jwt.secret of at least 32 characters is required in production")
	case c.Database.Driver == DriverMemory:
		return fmt.Errorf("database.driver=memory is not allowed in production")
	case c.Database.Driver == DriverPostgres && c.Database.Password == "":
		return fmt.Errorf("database.password is required in production")
	case c.Database.Driver == DriverPostgres && c.Database.SSLMode == "disable":
		return fmt.Errorf("database.sslmode cannot be disable in production")
	case slices.Contains(c.HTTP.CORSAllowOrigins, "*"):
		return fmt.Errorf("http.cors_allow_origins cannot contain * in production")
	case c.Telemetry.DBLogFullSQL:
		return fmt.Errorf("telemetry.db_log_full_sql must be off in production")
	}
	return nil
}

// DSN builds a postgres URL, escaping the credentials.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}
