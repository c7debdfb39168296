// Package config loads and validates application configuration from
// environment variables.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jungianjournals/journals-backend/logger"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	minJWTLength = 32
)

// Storage providers accepted by StorageConfig.Provider.
const (
	StorageProviderR2       = "r2"
	StorageProviderS3       = "s3"
	StorageProviderSupabase = "supabase"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	FrontendURL    string      `mapstructure:"FRONTEND_URL" yaml:"frontend_url"`
	// TrustedProxies lists proxy CIDRs allowed to set X-Forwarded-For.
	// Empty means forwarded headers are ignored.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
}

// DatabaseConfig holds PostgreSQL connection details. Supabase exposes the
// project database on the usual Postgres port.
type DatabaseConfig struct {
	Host         string `mapstructure:"HOST" yaml:"host"`
	Port         int    `mapstructure:"PORT" yaml:"port"`
	User         string `mapstructure:"USER" yaml:"user"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	Name         string `mapstructure:"NAME" yaml:"name"`
	SSLMode      string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"MAX_OPEN_CONNS" yaml:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"MAX_IDLE_CONNS" yaml:"max_idle_conns"`
	ConnMaxLife  string `mapstructure:"CONN_MAX_LIFE" yaml:"conn_max_life"`
}

// URL returns a postgres:// connection URL suitable for golang-migrate and pgx.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {sslmode}}.Encode(),
	}
	return u.String()
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Address      string `mapstructure:"ADDRESS" yaml:"address"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	DB           int    `mapstructure:"DB" yaml:"db"`
	UseTLS       bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize     int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
}

// SupabaseConfig holds the hosted Supabase project settings.
type SupabaseConfig struct {
	URL        string `mapstructure:"URL" yaml:"url"`
	AnonKey    string `mapstructure:"ANON_KEY" yaml:"anon_key"`
	ServiceKey string `mapstructure:"SERVICE_KEY" yaml:"service_key"`
	JWTSecret  string `mapstructure:"JWT_SECRET" yaml:"jwt_secret"`
}

// StorageConfig selects where uploaded media is written.
type StorageConfig struct {
	Provider        string `mapstructure:"PROVIDER" yaml:"provider"`
	Bucket          string `mapstructure:"BUCKET" yaml:"bucket"`
	PublicBaseURL   string `mapstructure:"PUBLIC_BASE_URL" yaml:"public_base_url"`
	R2AccountID     string `mapstructure:"R2_ACCOUNT_ID" yaml:"r2_account_id"`
	AccessKeyID     string `mapstructure:"ACCESS_KEY_ID" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"SECRET_ACCESS_KEY" yaml:"secret_access_key"`
	Region          string `mapstructure:"REGION" yaml:"region"`
	MaxUploadBytes  int64  `mapstructure:"MAX_UPLOAD_BYTES" yaml:"max_upload_bytes"`
}

// PaymentConfig holds TossPayments settings and the premium plan price.
type PaymentConfig struct {
	TossClientKey  string `mapstructure:"TOSS_CLIENT_KEY" yaml:"toss_client_key"`
	TossSecretKey  string `mapstructure:"TOSS_SECRET_KEY" yaml:"toss_secret_key"`
	TossAPIURL     string `mapstructure:"TOSS_API_URL" yaml:"toss_api_url"`
	PriceKRW       int64  `mapstructure:"PRICE_KRW" yaml:"price_krw"`
	OrderName      string `mapstructure:"ORDER_NAME" yaml:"order_name"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
}

// EmailConfig holds configuration for sending emails.
type EmailConfig struct {
	FromAddress  string `mapstructure:"FROM_ADDRESS" yaml:"from_address"`
	FromName     string `mapstructure:"FROM_NAME" yaml:"from_name"`
	ResendAPIKey string `mapstructure:"RESEND_API_KEY" yaml:"resend_api_key"`
}

// Enabled reports whether outgoing email is configured.
func (c EmailConfig) Enabled() bool {
	return c.ResendAPIKey != "" && c.FromAddress != ""
}

// AdminConfig holds the dashboard operator credentials. PasswordHash is a bcrypt hash.
type AdminConfig struct {
	ID           string `mapstructure:"ID" yaml:"id"`
	PasswordHash string `mapstructure:"PASSWORD_HASH" yaml:"password_hash"`
	TokenSecret  string `mapstructure:"TOKEN_SECRET" yaml:"token_secret"`
	SessionHours int    `mapstructure:"SESSION_HOURS" yaml:"session_hours"`
}

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// Maximum requests per window for auth and admin login endpoints
	AuthRequestsPerMinute int `mapstructure:"AUTH_REQUESTS_PER_MINUTE" yaml:"auth_requests_per_minute"`
	// Maximum view counter hits per window for one client IP
	ViewRequestsPerMinute int `mapstructure:"VIEW_REQUESTS_PER_MINUTE" yaml:"view_requests_per_minute"`
	WindowSeconds         int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// WorkerPoolConfig holds configuration for the background job pool.
type WorkerPoolConfig struct {
	MaxWorkers             int `mapstructure:"MAX_WORKERS" yaml:"max_workers"`
	QueueSize              int `mapstructure:"QUEUE_SIZE" yaml:"queue_size"`
	ShutdownTimeoutSeconds int `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" yaml:"shutdown_timeout_seconds"`
}

// EventsConfig configures the Redis activity channel.
type EventsConfig struct {
	Channel               string `mapstructure:"CHANNEL" yaml:"channel"`
	PublishTimeoutSeconds int    `mapstructure:"PUBLISH_TIMEOUT_SECONDS" yaml:"publish_timeout_seconds"`
	BufferSize            int    `mapstructure:"BUFFER_SIZE" yaml:"buffer_size"`
	RecentActivityLimit   int    `mapstructure:"RECENT_ACTIVITY_LIMIT" yaml:"recent_activity_limit"`
}

// RecommendationConfig tunes candidate pools and caching for recommendations.
type RecommendationConfig struct {
	CandidatePoolSize int           `mapstructure:"CANDIDATE_POOL_SIZE" yaml:"candidate_pool_size"`
	DefaultLimit      int           `mapstructure:"DEFAULT_LIMIT" yaml:"default_limit"`
	MaxLimit          int           `mapstructure:"MAX_LIMIT" yaml:"max_limit"`
	HistorySize       int           `mapstructure:"HISTORY_SIZE" yaml:"history_size"`
	CacheTTL          time.Duration `mapstructure:"CACHE_TTL" yaml:"cache_ttl"`
	VectorEnabled     bool          `mapstructure:"VECTOR_ENABLED" yaml:"vector_enabled"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server         ServerConfig         `mapstructure:"SERVER" yaml:"server"`
	Database       DatabaseConfig       `mapstructure:"DATABASE" yaml:"database"`
	Redis          RedisConfig          `mapstructure:"REDIS" yaml:"redis"`
	Supabase       SupabaseConfig       `mapstructure:"SUPABASE" yaml:"supabase"`
	Storage        StorageConfig        `mapstructure:"STORAGE" yaml:"storage"`
	Payment        PaymentConfig        `mapstructure:"PAYMENT" yaml:"payment"`
	Email          EmailConfig          `mapstructure:"EMAIL" yaml:"email"`
	Admin          AdminConfig          `mapstructure:"ADMIN" yaml:"admin"`
	RateLimit      RateLimitConfig      `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
	WorkerPool     WorkerPoolConfig     `mapstructure:"WORKER_POOL" yaml:"worker_pool"`
	Events         EventsConfig         `mapstructure:"EVENTS" yaml:"events"`
	Recommendation RecommendationConfig `mapstructure:"RECOMMENDATION" yaml:"recommendation"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.TRUSTED_PROXIES", []string{})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("SERVER.FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "journals_dev")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE.MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE.CONN_MAX_LIFE", "1h")
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 5)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)
	v.SetDefault("STORAGE.PROVIDER", StorageProviderSupabase)
	v.SetDefault("STORAGE.BUCKET", "blog-images")
	v.SetDefault("STORAGE.REGION", "auto")
	v.SetDefault("STORAGE.MAX_UPLOAD_BYTES", 5<<20)
	v.SetDefault("PAYMENT.TOSS_API_URL", "https://api.tosspayments.com")
	v.SetDefault("PAYMENT.PRICE_KRW", 9900)
	v.SetDefault("PAYMENT.ORDER_NAME", "Jungian Journals Premium")
	v.SetDefault("PAYMENT.TIMEOUT_SECONDS", 15)
	v.SetDefault("EMAIL.FROM_NAME", "Jungian Journals")
	v.SetDefault("ADMIN.SESSION_HOURS", 24)
	v.SetDefault("RATE_LIMIT.AUTH_REQUESTS_PER_MINUTE", 10)
	v.SetDefault("RATE_LIMIT.VIEW_REQUESTS_PER_MINUTE", 30)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
	v.SetDefault("WORKER_POOL.MAX_WORKERS", 4)
	v.SetDefault("WORKER_POOL.QUEUE_SIZE", 200)
	v.SetDefault("WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", 30)
	v.SetDefault("EVENTS.CHANNEL", "journals:activity")
	v.SetDefault("EVENTS.PUBLISH_TIMEOUT_SECONDS", 5)
	v.SetDefault("EVENTS.BUFFER_SIZE", 64)
	v.SetDefault("EVENTS.RECENT_ACTIVITY_LIMIT", 50)
	v.SetDefault("RECOMMENDATION.CANDIDATE_POOL_SIZE", 50)
	v.SetDefault("RECOMMENDATION.DEFAULT_LIMIT", 5)
	v.SetDefault("RECOMMENDATION.MAX_LIMIT", 20)
	v.SetDefault("RECOMMENDATION.HISTORY_SIZE", 10)
	v.SetDefault("RECOMMENDATION.CACHE_TTL", "10m")
	v.SetDefault("RECOMMENDATION.VECTOR_ENABLED", true)
}

var envBindings = [][2]string{
	{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
	{"SERVER.PORT", "PORT"},
	{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
	{"SERVER.VERSION", "APP_VERSION"},
	{"SERVER.FRONTEND_URL", "FRONTEND_URL"},
	{"SERVER.TRUSTED_PROXIES", "TRUSTED_PROXIES"},
	{"DATABASE.HOST", "DB_HOST"},
	{"DATABASE.PORT", "DB_PORT"},
	{"DATABASE.USER", "DB_USER"},
	{"DATABASE.PASSWORD", "DB_PASSWORD"},
	{"DATABASE.NAME", "DB_NAME"},
	{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
	{"DATABASE.MAX_OPEN_CONNS", "DB_MAX_OPEN_CONNS"},
	{"DATABASE.MAX_IDLE_CONNS", "DB_MAX_IDLE_CONNS"},
	{"DATABASE.CONN_MAX_LIFE", "DB_CONN_MAX_LIFE"},
	{"REDIS.ADDRESS", "REDIS_ADDRESS"},
	{"REDIS.PASSWORD", "REDIS_PASSWORD"},
	{"REDIS.DB", "REDIS_DB"},
	{"REDIS.USE_TLS", "REDIS_USE_TLS"},
	{"SUPABASE.URL", "SUPABASE_URL"},
	{"SUPABASE.ANON_KEY", "SUPABASE_ANON_KEY"},
	{"SUPABASE.SERVICE_KEY", "SUPABASE_SERVICE_KEY"},
	{"SUPABASE.JWT_SECRET", "SUPABASE_JWT_SECRET"},
	{"STORAGE.PROVIDER", "STORAGE_PROVIDER"},
	{"STORAGE.BUCKET", "STORAGE_BUCKET"},
	{"STORAGE.PUBLIC_BASE_URL", "STORAGE_PUBLIC_BASE_URL"},
	{"STORAGE.R2_ACCOUNT_ID", "R2_ACCOUNT_ID"},
	{"STORAGE.ACCESS_KEY_ID", "STORAGE_ACCESS_KEY_ID"},
	{"STORAGE.SECRET_ACCESS_KEY", "STORAGE_SECRET_ACCESS_KEY"},
	{"STORAGE.REGION", "STORAGE_REGION"},
	{"STORAGE.MAX_UPLOAD_BYTES", "STORAGE_MAX_UPLOAD_BYTES"},
	{"PAYMENT.TOSS_CLIENT_KEY", "TOSS_CLIENT_KEY"},
	{"PAYMENT.TOSS_SECRET_KEY", "TOSS_SECRET_KEY"},
	{"PAYMENT.TOSS_API_URL", "TOSS_API_URL"},
	{"PAYMENT.PRICE_KRW", "PAYMENT_PRICE_KRW"},
	{"PAYMENT.ORDER_NAME", "PAYMENT_ORDER_NAME"},
	{"PAYMENT.TIMEOUT_SECONDS", "PAYMENT_TIMEOUT_SECONDS"},
	{"EMAIL.FROM_ADDRESS", "EMAIL_FROM_ADDRESS"},
	{"EMAIL.FROM_NAME", "EMAIL_FROM_NAME"},
	{"EMAIL.RESEND_API_KEY", "RESEND_API_KEY"},
	{"ADMIN.ID", "ADMIN_ID"},
	{"ADMIN.PASSWORD_HASH", "ADMIN_PASSWORD_HASH"},
	{"ADMIN.TOKEN_SECRET", "ADMIN_TOKEN_SECRET"},
	{"ADMIN.SESSION_HOURS", "ADMIN_SESSION_HOURS"},
	{"RATE_LIMIT.AUTH_REQUESTS_PER_MINUTE", "RATE_LIMIT_AUTH_REQUESTS_PER_MINUTE"},
	{"RATE_LIMIT.VIEW_REQUESTS_PER_MINUTE", "RATE_LIMIT_VIEW_REQUESTS_PER_MINUTE"},
	{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
	{"WORKER_POOL.MAX_WORKERS", "WORKER_POOL_MAX_WORKERS"},
	{"WORKER_POOL.QUEUE_SIZE", "WORKER_POOL_QUEUE_SIZE"},
	{"WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", "WORKER_POOL_SHUTDOWN_TIMEOUT_SECONDS"},
	{"EVENTS.CHANNEL", "EVENTS_CHANNEL"},
	{"EVENTS.PUBLISH_TIMEOUT_SECONDS", "EVENTS_PUBLISH_TIMEOUT_SECONDS"},
	{"EVENTS.BUFFER_SIZE", "EVENTS_BUFFER_SIZE"},
	{"RECOMMENDATION.CANDIDATE_POOL_SIZE", "RECOMMENDATION_CANDIDATE_POOL_SIZE"},
	{"RECOMMENDATION.DEFAULT_LIMIT", "RECOMMENDATION_DEFAULT_LIMIT"},
	{"RECOMMENDATION.MAX_LIMIT", "RECOMMENDATION_MAX_LIMIT"},
	{"RECOMMENDATION.HISTORY_SIZE", "RECOMMENDATION_HISTORY_SIZE"},
	{"RECOMMENDATION.CACHE_TTL", "RECOMMENDATION_CACHE_TTL"},
	{"RECOMMENDATION.VECTOR_ENABLED", "RECOMMENDATION_VECTOR_ENABLED"},
}

// LoadConfig reads defaults and environment variables, unmarshals them into
// Config and validates the result.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", v.GetString("SERVER.ENVIRONMENT"),
		"server_port", v.GetString("SERVER.PORT"),
		"db_host", v.GetString("DATABASE.HOST"),
		"storage_provider", v.GetString("STORAGE.PROVIDER"),
		"allowed_origins", v.GetStringSlice("SERVER.ALLOWED_ORIGINS"),
		"supabase_url", v.GetString("SUPABASE.URL"),
		"supabase_anon_key", logger.MaskSensitiveString(v.GetString("SUPABASE.ANON_KEY"), 4, 4))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("Configuration validated successfully")
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}
	if _, err := url.ParseRequestURI(cfg.Server.FrontendURL); err != nil {
		return fmt.Errorf("invalid frontend URL: %w", err)
	}

	if cfg.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if cfg.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if cfg.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if cfg.Database.Password == "" {
		log.Warn("Database password is not set. Ensure this is intended (e.g., using trusted auth).")
	}

	if cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}

	if err := validateSupabase(&cfg.Supabase); err != nil {
		return err
	}
	if err := validateStorage(&cfg.Storage); err != nil {
		return err
	}

	if cfg.Payment.PriceKRW <= 0 {
		return fmt.Errorf("payment price must be positive")
	}
	if cfg.Payment.TossSecretKey == "" {
		log.Warn("TOSS_SECRET_KEY is not set, payment confirmation will fail")
	}

	if !cfg.Email.Enabled() {
		log.Warn("Email is not configured, receipts will not be sent")
	}

	if cfg.Admin.ID == "" || cfg.Admin.PasswordHash == "" {
		return fmt.Errorf("admin id and password hash are required")
	}
	if len(cfg.Admin.TokenSecret) < minJWTLength {
		return fmt.Errorf("admin token secret must be at least %d characters long", minJWTLength)
	}
	if cfg.Admin.SessionHours <= 0 {
		return fmt.Errorf("admin session hours must be positive")
	}

	if cfg.RateLimit.AuthRequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit auth requests per minute must be positive")
	}
	if cfg.RateLimit.ViewRequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit view requests per minute must be positive")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}

	if cfg.WorkerPool.MaxWorkers <= 0 {
		return fmt.Errorf("worker pool max workers must be positive")
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		return fmt.Errorf("worker pool queue size must be positive")
	}
	if cfg.WorkerPool.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("worker pool shutdown timeout must be positive")
	}

	if cfg.Events.Channel == "" {
		return fmt.Errorf("events channel is required")
	}
	if cfg.Events.PublishTimeoutSeconds <= 0 || cfg.Events.BufferSize <= 0 {
		return fmt.Errorf("events publish timeout and buffer size must be positive")
	}

	r := cfg.Recommendation
	if r.CandidatePoolSize <= 0 || r.DefaultLimit <= 0 || r.HistorySize <= 0 {
		return fmt.Errorf("recommendation pool size, default limit and history size must be positive")
	}
	if r.MaxLimit < r.DefaultLimit {
		return fmt.Errorf("recommendation max limit must be at least the default limit")
	}

	return nil
}

func validateSupabase(s *SupabaseConfig) error {
	if s.URL == "" {
		return fmt.Errorf("supabase URL is required")
	}
	if _, err := url.ParseRequestURI(s.URL); err != nil {
		return fmt.Errorf("invalid supabase URL: %w", err)
	}
	if s.AnonKey == "" {
		return fmt.Errorf("supabase anon key is required")
	}
	if len(s.ServiceKey) < minJWTLength {
		return fmt.Errorf("supabase service key must be at least %d characters long", minJWTLength)
	}
	if len(s.JWTSecret) < minJWTLength {
		return fmt.Errorf("supabase JWT secret must be at least %d characters long", minJWTLength)
	}
	return nil
}

func validateStorage(s *StorageConfig) error {
	switch s.Provider {
	case StorageProviderSupabase:
	case StorageProviderR2:
		if s.R2AccountID == "" {
			return fmt.Errorf("r2 account id is required for the r2 storage provider")
		}
		fallthrough
	case StorageProviderS3:
		if s.AccessKeyID == "" || s.SecretAccessKey == "" {
			return fmt.Errorf("storage access keys are required for the %s provider", s.Provider)
		}
	default:
		return fmt.Errorf("unknown storage provider %q", s.Provider)
	}
	if s.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}
	if s.MaxUploadBytes <= 0 {
		return fmt.Errorf("storage max upload bytes must be positive")
	}
	return nil
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
