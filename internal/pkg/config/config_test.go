package config

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := Load(testLogger())
	require.NoError(t, err)

	assert.Equal(t, "pharmacy-api", cfg.App.Name)
	assert.Equal(t, "pharmacy", cfg.Database.Name)
	assert.Equal(t, 30*time.Second, cfg.Database.StatementTimeout)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, 10, cfg.Inventory.LowStockThreshold)
	assert.Equal(t, 24*time.Hour, cfg.Import.UploadRetention)
	assert.Equal(t, map[string]int{"critical": 6, "default": 3, "low": 1}, cfg.Asynq.Queues)
	assert.Empty(t, cfg.Security.Policies)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_STATEMENT_TIMEOUT", "5s")
	t.Setenv("DB_MAX_CONNECTIONS", "40")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("AUTH_POLICY_ORDER_APPROVE", `principal.position == "manager"`)
	t.Setenv("INVENTORY_LOW_STOCK_THRESHOLD", "3")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load(testLogger())
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Database.StatementTimeout)
	assert.Equal(t, int32(40), cfg.Database.MaxConnections)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, `principal.position == "manager"`, cfg.Security.Policies["order.approve"])
	assert.Equal(t, 3, cfg.Inventory.LowStockThreshold)
	assert.Equal(t, "0.0.0.0:9090", cfg.GetServerAddress())
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_STATEMENT_TIMEOUT", "soon")
	t.Setenv("REDIS_POOL_SIZE", "many")

	cfg, err := Load(testLogger())
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Database.StatementTimeout)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func productionConfig() *Config {
	return &Config{
		App:      AppConfig{Name: "pharmacy-api", Environment: "production"},
		Database: DatabaseConfig{Host: "db", Port: "5432", Name: "pharmacy", Password: "s3cret", SSLMode: "require", MaxConnections: 10, MinConnections: 2},
		Redis:    RedisConfig{PoolSize: 10},
		AWS:      AWSConfig{S3Bucket: "pharmacy-uploads"},
		Storage:  StorageConfig{Driver: "s3"},
		Import:   ImportConfig{MaxUploadMB: 20},
		Security: SecurityConfig{
			JWTSecret:         "0123456789abcdef0123456789abcdef",
			JWTExpiration:     time.Hour,
			RateLimitRequests: 100,
			AllowedOrigins:    []string{"https://pharmacy.example"},
			SecureHeaders:     true,
		},
		Server: ServerConfig{Port: "8080"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid_production",
			mutate: func(*Config) {},
		},
		{
			name:    "missing_required_field",
			mutate:  func(c *Config) { c.Database.Name = "" },
			wantErr: "Database.Name",
		},
		{
			name:    "connection_bounds",
			mutate:  func(c *Config) { c.Database.MinConnections = 20 },
			wantErr: "max_connections",
		},
		{
			name:    "unknown_storage_driver",
			mutate:  func(c *Config) { c.Storage.Driver = "ftp" },
			wantErr: "unknown storage driver",
		},
		{
			name:    "s3_without_bucket",
			mutate:  func(c *Config) { c.AWS.S3Bucket = "" },
			wantErr: "S3 bucket",
		},
		{
			name:    "ssl_disabled_in_production",
			mutate:  func(c *Config) { c.Database.SSLMode = "disable" },
			wantErr: "SSL",
		},
		{
			name:    "default_jwt_secret_in_production",
			mutate:  func(c *Config) { c.Security.JWTSecret = "development-secret-change-in-production" },
			wantErr: "default JWT secret",
		},
		{
			name:    "short_jwt_secret",
			mutate:  func(c *Config) { c.Security.JWTSecret = "short" },
			wantErr: "at least 32 characters",
		},
		{
			name:    "wildcard_origin_in_production",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = []string{"*"} },
			wantErr: "wildcard origin",
		},
		{
			name:    "local_storage_in_production",
			mutate:  func(c *Config) { c.Storage = StorageConfig{Driver: "local", LocalDir: "/srv/uploads"} },
			wantErr: "local storage driver",
		},
		{
			name:    "negative_statement_timeout",
			mutate:  func(c *Config) { c.Database.StatementTimeout = -time.Second },
			wantErr: "statement_timeout",
		},
		{
			name:    "zero_queue_weight",
			mutate:  func(c *Config) { c.Asynq.Queues = map[string]int{"critical": 0} },
			wantErr: `asynq queue "critical"`,
		},
		{
			name: "smtp_without_sender",
			mutate: func(c *Config) {
				c.Notification = NotificationConfig{SMTPHost: "mail", SMTPPort: 587}
			},
			wantErr: "from_address",
		},
		{
			name: "bad_low_stock_recipient",
			mutate: func(c *Config) {
				c.Notification.LowStockRecipients = []string{"pharmacist at example"}
			},
			wantErr: "low-stock recipient",
		},
		{
			name:    "blank_policy_override",
			mutate:  func(c *Config) { c.Security.Policies = map[string]string{"order.approve": "  "} },
			wantErr: `policy "order.approve"`,
		},
		{
			name: "development_skips_production_rules",
			mutate: func(c *Config) {
				c.App.Environment = "development"
				c.Database.SSLMode = "disable"
				c.Security.JWTSecret = "short"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := productionConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_MissingFieldWrapsSentinel(t *testing.T) {
	cfg := productionConfig()
	cfg.Server.Port = ""

	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrMissingRequiredConfig)
}

func TestParseQueues(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]int
	}{
		{name: "weighted", input: "critical:6, default:3", want: map[string]int{"critical": 6, "default": 3}},
		{name: "malformed_entries_skipped", input: "critical:x,low:1,bogus", want: map[string]int{"low": 1}},
		{name: "empty_falls_back", input: "", want: map[string]int{"default": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseQueues(tt.input))
		})
	}
}

type staticSecrets map[string]string

func (s staticSecrets) GetSecrets(_ context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, k := range keys {
		if v, ok := s[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func TestApplySecrets(t *testing.T) {
	cfg := productionConfig()
	cfg.Redis.Password = "old"

	err := cfg.ApplySecrets(context.Background(), staticSecrets{
		"DB_PASSWORD": "from-vault",
		"JWT_SECRET":  "rotated-secret-rotated-secret-123",
	})
	require.NoError(t, err)

	assert.Equal(t, "from-vault", cfg.Database.Password)
	assert.Equal(t, "rotated-secret-rotated-secret-123", cfg.Security.JWTSecret)
	assert.Equal(t, "old", cfg.Redis.Password)
}

func TestEnvSecretsManager(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")

	sm := NewEnvSecretsManager()
	got, err := sm.GetSecrets(context.Background(), []string{"JWT_SECRET", "DB_PASSWORD_UNSET"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"JWT_SECRET": "env-secret"}, got)

	_, err = sm.GetSecret(context.Background(), "DB_PASSWORD_UNSET")
	assert.Error(t, err)
}

type fakeSecretValueAPI struct {
	calls  int
	secret *string
	err    error
}

func (f *fakeSecretValueAPI) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{Name: in.SecretId, SecretString: f.secret}, nil
}

func TestAWSSecretsManager_CachesSecret(t *testing.T) {
	api := &fakeSecretValueAPI{secret: aws.String(`{"DB_PASSWORD":"pw","JWT_SECRET":"jwt"}`)}
	sm := newAWSSecretsManager(api, "pharmacy-be/test", testLogger())
	ctx := context.Background()

	got, err := sm.GetSecrets(ctx, []string{"DB_PASSWORD", "JWT_SECRET"})
	require.NoError(t, err)
	assert.Equal(t, "pw", got["DB_PASSWORD"])

	pw, err := sm.GetSecret(ctx, "DB_PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "pw", pw)
	assert.Equal(t, 1, api.calls)

	_, err = sm.GetSecret(ctx, "MISSING")
	assert.Error(t, err)
}

func TestAWSSecretsManager_Errors(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeSecretValueAPI
	}{
		{name: "client_error", api: &fakeSecretValueAPI{err: errors.New("access denied")}},
		{name: "binary_secret", api: &fakeSecretValueAPI{}},
		{name: "not_json", api: &fakeSecretValueAPI{secret: aws.String("plain")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := newAWSSecretsManager(tt.api, "pharmacy-be/test", testLogger())
			_, err := sm.GetSecrets(context.Background(), []string{"DB_PASSWORD"})
			assert.Error(t, err)
		})
	}
}
