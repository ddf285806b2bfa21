// internal/pkg/config/config.go
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingRequiredConfig is wrapped by validators when a setting is absent
var ErrMissingRequiredConfig = errors.New("missing required configuration")

// defaultJWTSecret signs tokens outside production when JWT_SECRET is unset
const defaultJWTSecret = "development-secret-change-in-production"

// Config holds all application configuration
type Config struct {
	// Application
	App AppConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Asynq
	Asynq AsynqConfig

	// AWS
	AWS AWSConfig

	// Upload storage
	Storage StorageConfig

	// Purchase import
	Import ImportConfig

	// Inventory ledger
	Inventory InventoryConfig

	// Notifications
	Notification NotificationConfig

	// Security
	Security SecurityConfig

	// Server
	Server ServerConfig
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Version     string
	LogLevel    string
	LogFormat   string // json, text
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxConnections     int32
	MinConnections     int32
	MaxConnLifetime    time.Duration
	MaxConnIdleTime    time.Duration
	HealthCheckPeriod  time.Duration
	ConnectTimeout     time.Duration
	StatementCacheMode string
	StatementTimeout   time.Duration
	EnableQueryLogging bool
	AutoMigrate        bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host            string
	Port            string
	Password        string
	DB              int
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
}

// AsynqConfig holds Asynq configuration
type AsynqConfig struct {
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	Concurrency     int
	Queues          map[string]int // queue name -> priority
	StrictPriority  bool
	ShutdownTimeout time.Duration
}

// AWSConfig holds AWS configuration
type AWSConfig struct {
	Region            string
	AccessKeyID       string
	SecretAccessKey   string
	S3Bucket          string
	S3Endpoint        string // For MinIO in development
	UsePathStyle      bool   // For MinIO compatibility
	UseSecretsManager bool
	SecretName        string
}

// StorageConfig selects where uploaded import files are kept
type StorageConfig struct {
	Driver   string // s3, local
	LocalDir string
}

// ImportConfig holds purchase import configuration
type ImportConfig struct {
	MaxUploadMB       int
	ProcessingTimeout time.Duration
	UploadRetention   time.Duration
}

// InventoryConfig holds inventory ledger configuration
type InventoryConfig struct {
	LevelCacheTTL     time.Duration
	LowStockThreshold int
	MovementRetention time.Duration
}

// NotificationConfig holds low-stock email configuration
type NotificationConfig struct {
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	FromAddress        string
	LowStockRecipients []string
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	JWTSecret         string
	JWTIssuer         string
	JWTExpiration     time.Duration
	RateLimitRequests int
	RateLimitDuration time.Duration
	AllowedOrigins    []string
	SecureHeaders     bool
	// Policies overrides authorization expressions, keyed by action
	Policies map[string]string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GracefulTimeout   time.Duration
	EnableCompression bool
	TLSEnabled        bool
	TLSCertFile       string
	TLSKeyFile        string
}

// policyActions lists the actions whose policies can be overridden from the environment
var policyActions = []string{
	"order.view", "order.edit", "order.approve",
	"inventory.view", "inventory.manage",
	"catalog.view", "catalog.manage",
	"employee.manage",
}

// Load builds the configuration from the environment. Outside production a
// .env file is read first; CONFIG_FILE may name a yaml, json or toml file
// whose keys (db_host, smtp_port, ...) sit below environment variables.
func Load(logger *slog.Logger) (*Config, error) {
	env := strings.ToLower(os.Getenv("APP_ENV"))
	if env == "" {
		env = "development"
	}

	if env == "development" || env == "local" {
		if err := godotenv.Load(); err != nil {
			logger.Warn("no .env file found, using environment variables",
				slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded")
		}
	}

	src, err := newSource(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	dev := env == "development"
	cfg := &Config{
		App: AppConfig{
			Name:        src.str("APP_NAME", "pharmacy-api"),
			Environment: env,
			Version:     src.str("APP_VERSION", "dev"),
			LogLevel:    src.str("LOG_LEVEL", "info"),
			LogFormat:   src.str("LOG_FORMAT", "json"),
		},
		Database: DatabaseConfig{
			Host:               src.str("DB_HOST", "localhost"),
			Port:               src.str("DB_PORT", "5432"),
			User:               src.str("DB_USER", "pharmacy"),
			Password:           src.str("DB_PASSWORD", "pharmacy_dev"),
			Name:               src.str("DB_NAME", "pharmacy"),
			SSLMode:            src.str("DB_SSL_MODE", "disable"),
			MaxConnections:     int32(src.integer("DB_MAX_CONNECTIONS", 25)),
			MinConnections:     int32(src.integer("DB_MIN_CONNECTIONS", 5)),
			MaxConnLifetime:    src.duration("DB_CONNECTION_LIFETIME", time.Hour),
			MaxConnIdleTime:    src.duration("DB_IDLE_TIME", 30*time.Minute),
			HealthCheckPeriod:  src.duration("DB_HEALTH_CHECK_PERIOD", time.Minute),
			ConnectTimeout:     src.duration("DB_CONNECT_TIMEOUT", 10*time.Second),
			StatementCacheMode: src.str("DB_STATEMENT_CACHE_MODE", "describe"),
			StatementTimeout:   src.duration("DB_STATEMENT_TIMEOUT", 30*time.Second),
			EnableQueryLogging: src.boolean("DB_QUERY_LOGGING", dev),
			AutoMigrate:        src.boolean("DB_AUTO_MIGRATE", dev),
		},
		Redis: RedisConfig{
			Host:            src.str("REDIS_HOST", "localhost"),
			Port:            src.str("REDIS_PORT", "6379"),
			Password:        src.str("REDIS_PASSWORD", ""),
			DB:              src.integer("REDIS_DB", 0),
			MaxRetries:      src.integer("REDIS_MAX_RETRIES", 3),
			MinRetryBackoff: src.duration("REDIS_MIN_RETRY_BACKOFF", 8*time.Millisecond),
			MaxRetryBackoff: src.duration("REDIS_MAX_RETRY_BACKOFF", 512*time.Millisecond),
			DialTimeout:     src.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:     src.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:    src.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolSize:        src.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns:    src.integer("REDIS_MIN_IDLE_CONNS", 2),
			PoolTimeout:     src.duration("REDIS_POOL_TIMEOUT", 4*time.Second),
		},
		AWS: AWSConfig{
			Region:            src.str("AWS_REGION", "us-east-1"),
			AccessKeyID:       src.str("AWS_ACCESS_KEY_ID", "minioadmin"),
			SecretAccessKey:   src.str("AWS_SECRET_ACCESS_KEY", "minioadmin123"),
			S3Bucket:          src.str("AWS_S3_BUCKET", "pharmacy-uploads"),
			S3Endpoint:        src.str("AWS_S3_ENDPOINT", ""),
			UsePathStyle:      src.boolean("AWS_S3_PATH_STYLE", dev),
			UseSecretsManager: src.boolean("AWS_USE_SECRETS_MANAGER", false),
			SecretName:        src.str("AWS_SECRET_NAME", "pharmacy-be/"+env),
		},
		Storage: StorageConfig{
			Driver:   src.str("STORAGE_DRIVER", "local"),
			LocalDir: src.str("STORAGE_LOCAL_DIR", "/tmp/pharmacy-uploads"),
		},
		Import: ImportConfig{
			MaxUploadMB:       src.integer("IMPORT_MAX_UPLOAD_MB", 20),
			ProcessingTimeout: src.duration("IMPORT_PROCESSING_TIMEOUT", 5*time.Minute),
			UploadRetention:   src.duration("IMPORT_UPLOAD_RETENTION", 24*time.Hour),
		},
		Inventory: InventoryConfig{
			LevelCacheTTL:     src.duration("INVENTORY_LEVEL_CACHE_TTL", 5*time.Minute),
			LowStockThreshold: src.integer("INVENTORY_LOW_STOCK_THRESHOLD", 10),
			MovementRetention: src.duration("INVENTORY_MOVEMENT_RETENTION", 365*24*time.Hour),
		},
		Notification: NotificationConfig{
			SMTPHost:           src.str("SMTP_HOST", ""),
			SMTPPort:           src.integer("SMTP_PORT", 587),
			SMTPUsername:       src.str("SMTP_USERNAME", ""),
			SMTPPassword:       src.str("SMTP_PASSWORD", ""),
			FromAddress:        src.str("SMTP_FROM", "noreply@pharmacy.local"),
			LowStockRecipients: src.list("LOW_STOCK_RECIPIENTS", nil),
		},
		Security: SecurityConfig{
			JWTSecret:         src.str("JWT_SECRET", generateDefaultSecret(env)),
			JWTIssuer:         src.str("JWT_ISSUER", "pharmacy-be"),
			JWTExpiration:     src.duration("JWT_EXPIRATION", 12*time.Hour),
			RateLimitRequests: src.integer("RATE_LIMIT_REQUESTS", 100),
			RateLimitDuration: src.duration("RATE_LIMIT_DURATION", time.Minute),
			AllowedOrigins:    src.list("ALLOWED_ORIGINS", []string{"*"}),
			SecureHeaders:     src.boolean("SECURE_HEADERS", env == "production"),
			Policies:          src.policies(),
		},
		Server: ServerConfig{
			Host:              src.str("SERVER_HOST", "0.0.0.0"),
			Port:              src.str("SERVER_PORT", "8080"),
			ReadTimeout:       src.duration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:      src.duration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:       src.duration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			MaxHeaderBytes:    src.integer("SERVER_MAX_HEADER_BYTES", 1<<20),
			GracefulTimeout:   src.duration("SERVER_GRACEFUL_TIMEOUT", 30*time.Second),
			EnableCompression: src.boolean("SERVER_COMPRESSION", true),
			TLSEnabled:        src.boolean("TLS_ENABLED", false),
			TLSCertFile:       src.str("TLS_CERT_FILE", ""),
			TLSKeyFile:        src.str("TLS_KEY_FILE", ""),
		},
	}

	// Asynq shares the cache Redis host on its own logical database
	cfg.Asynq = AsynqConfig{
		RedisAddr:       cfg.GetRedisAddress(),
		RedisPassword:   cfg.Redis.Password,
		RedisDB:         src.integer("ASYNQ_REDIS_DB", 1),
		Concurrency:     src.integer("ASYNQ_CONCURRENCY", 10),
		Queues:          parseQueues(src.str("ASYNQ_QUEUES", "critical:6,default:3,low:1")),
		StrictPriority:  src.boolean("ASYNQ_STRICT_PRIORITY", false),
		ShutdownTimeout: src.duration("ASYNQ_SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	if cfg.AWS.UseSecretsManager {
		ctx := context.Background()
		sm, err := NewAWSSecretsManager(ctx, cfg.AWS.Region, cfg.AWS.SecretName, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create secrets manager: %w", err)
		}
		if err := cfg.ApplySecrets(ctx, sm); err != nil {
			return nil, err
		}
		cfg.Asynq.RedisPassword = cfg.Redis.Password
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// SecretsProvider supplies sensitive settings kept outside the environment
type SecretsProvider interface {
	GetSecrets(ctx context.Context, keys []string) (map[string]string, error)
}

// ApplySecrets overlays the values the provider knows about
func (c *Config) ApplySecrets(ctx context.Context, sp SecretsProvider) error {
	secrets, err := sp.GetSecrets(ctx, []string{"DB_PASSWORD", "JWT_SECRET", "REDIS_PASSWORD", "SMTP_PASSWORD"})
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	if v, ok := secrets["DB_PASSWORD"]; ok {
		c.Database.Password = v
	}
	if v, ok := secrets["JWT_SECRET"]; ok {
		c.Security.JWTSecret = v
	}
	if v, ok := secrets["REDIS_PASSWORD"]; ok {
		c.Redis.Password = v
		c.Asynq.RedisPassword = v
	}
	if v, ok := secrets["SMTP_PASSWORD"]; ok {
		c.Notification.SMTPPassword = v
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validators := []interface{ Validate(*Config) error }{&BasicValidator{}}
	if c.IsProduction() {
		validators = append(validators, &ProductionValidator{}, &SecurityValidator{})
	}

	for _, v := range validators {
		if err := v.Validate(c); err != nil {
			return err
		}
	}
	return nil
}

// GetDatabaseURL returns the postgres URL used by migrations
func (c *Config) GetDatabaseURL() string {
	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}

// GetServerAddress returns the listen address of the API
func (c *Config) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// GetRedisAddress returns host:port of the cache Redis
func (c *Config) GetRedisAddress() string {
	return net.JoinHostPort(c.Redis.Host, c.Redis.Port)
}

// IsProduction reports whether production-only validation applies
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// source reads settings through viper: environment first, then CONFIG_FILE.
// Values that fail to parse fall back to the default.
type source struct {
	v *viper.Viper
}

func newSource(file string) (*source, error) {
	v := viper.New()
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}
	return &source{v: v}, nil
}

func (s *source) str(key, def string) string {
	if val := strings.TrimSpace(s.v.GetString(key)); val != "" {
		return val
	}
	return def
}

func (s *source) boolean(key string, def bool) bool {
	if b, err := strconv.ParseBool(s.str(key, "")); err == nil {
		return b
	}
	return def
}

func (s *source) integer(key string, def int) int {
	if i, err := strconv.Atoi(s.str(key, "")); err == nil {
		return i
	}
	return def
}

func (s *source) duration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s.str(key, "")); err == nil {
		return d
	}
	return def
}

// list splits a comma separated value, dropping blank entries
func (s *source) list(key string, def []string) []string {
	raw := s.str(key, "")
	if raw == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// policies reads AUTH_POLICY_<ACTION> overrides, e.g. AUTH_POLICY_ORDER_APPROVE
func (s *source) policies() map[string]string {
	out := make(map[string]string)
	for _, action := range policyActions {
		key := "AUTH_POLICY_" + strings.ToUpper(strings.ReplaceAll(action, ".", "_"))
		if expr := s.str(key, ""); expr != "" {
			out[action] = expr
		}
	}
	return out
}

// parseQueues reads "name:weight" pairs. Malformed pairs are skipped and an
// empty result falls back to a single default queue.
func parseQueues(spec string) map[string]int {
	queues := make(map[string]int)
	for _, pair := range strings.Split(spec, ",") {
		name, weight, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		if w, err := strconv.Atoi(strings.TrimSpace(weight)); err == nil {
			queues[strings.TrimSpace(name)] = w
		}
	}
	if len(queues) == 0 {
		queues["default"] = 1
	}
	return queues
}

// generateDefaultSecret leaves production without a secret so validation fails
func generateDefaultSecret(env string) string {
	if env == "production" {
		return ""
	}
	return defaultJWTSecret
}
