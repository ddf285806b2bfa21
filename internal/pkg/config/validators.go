// internal/pkg/config/validators.go
package config

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// BasicValidator checks settings every environment needs
type BasicValidator struct{}

// Validate performs basic validation
func (v *BasicValidator) Validate(cfg *Config) error {
	required := []struct {
		name  string
		value string
	}{
		{"App.Name", cfg.App.Name},
		{"Database.Host", cfg.Database.Host},
		{"Database.Port", cfg.Database.Port},
		{"Database.Name", cfg.Database.Name},
		{"Server.Port", cfg.Server.Port},
	}
	for _, r := range required {
		if isMissing(r.value) {
			return fmt.Errorf("%w: %s", ErrMissingRequiredConfig, r.name)
		}
	}

	if cfg.Database.MaxConnections < cfg.Database.MinConnections {
		return fmt.Errorf("database max_connections must be >= min_connections")
	}
	if cfg.Redis.PoolSize <= 0 {
		return fmt.Errorf("redis pool_size must be positive")
	}
	if cfg.Security.RateLimitRequests <= 0 {
		return fmt.Errorf("rate_limit_requests must be positive")
	}

	for queue, weight := range cfg.Asynq.Queues {
		if weight <= 0 {
			return fmt.Errorf("asynq queue %q must have a positive weight", queue)
		}
	}

	if err := validateStorage(cfg); err != nil {
		return err
	}
	if cfg.Import.MaxUploadMB <= 0 {
		return fmt.Errorf("import max_upload_mb must be positive")
	}
	if cfg.Inventory.LowStockThreshold < 0 {
		return fmt.Errorf("inventory low_stock_threshold must not be negative")
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"database statement_timeout", cfg.Database.StatementTimeout},
		{"import processing_timeout", cfg.Import.ProcessingTimeout},
		{"import upload_retention", cfg.Import.UploadRetention},
		{"inventory level_cache_ttl", cfg.Inventory.LevelCacheTTL},
		{"inventory movement_retention", cfg.Inventory.MovementRetention},
	}
	for _, d := range durations {
		if d.value < 0 {
			return fmt.Errorf("%s must not be negative", d.name)
		}
	}

	return validateNotification(cfg.Notification)
}

func validateStorage(cfg *Config) error {
	switch cfg.Storage.Driver {
	case "local":
		if cfg.Storage.LocalDir == "" {
			return fmt.Errorf("%w: storage local_dir", ErrMissingRequiredConfig)
		}
	case "s3":
		if cfg.AWS.S3Bucket == "" {
			return fmt.Errorf("%w: S3 bucket", ErrMissingRequiredConfig)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	return nil
}

// Low-stock recipients must be real addresses; a relay needs a sender.
func validateNotification(n NotificationConfig) error {
	for _, addr := range n.LowStockRecipients {
		if _, err := mail.ParseAddress(addr); err != nil {
			return fmt.Errorf("invalid low-stock recipient %q: %w", addr, err)
		}
	}
	if n.SMTPHost == "" {
		return nil
	}
	if n.FromAddress == "" {
		return fmt.Errorf("%w: notification from_address", ErrMissingRequiredConfig)
	}
	if n.SMTPPort <= 0 || n.SMTPPort > 65535 {
		return fmt.Errorf("smtp port %d out of range", n.SMTPPort)
	}
	return nil
}

// ProductionValidator performs strict validation for production environments
type ProductionValidator struct{}

// Validate performs production-specific validation
func (v *ProductionValidator) Validate(cfg *Config) error {
	if isMissing(cfg.Database.Password) {
		return fmt.Errorf("%w: database password", ErrMissingRequiredConfig)
	}
	if isMissing(cfg.Security.JWTSecret) {
		return fmt.Errorf("%w: JWT secret", ErrMissingRequiredConfig)
	}
	if cfg.Security.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("default JWT secret cannot be used in production")
	}

	if cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("database SSL must be enabled in production")
	}
	if !cfg.Security.SecureHeaders {
		return fmt.Errorf("secure headers must be enabled in production")
	}
	if len(cfg.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed origins must be configured in production")
	}

	// Uploads on local disk do not survive across api and worker hosts
	if cfg.Storage.Driver == "local" {
		return fmt.Errorf("local storage driver cannot be used in production")
	}

	if cfg.Server.TLSEnabled && (cfg.Server.TLSCertFile == "" || cfg.Server.TLSKeyFile == "") {
		return fmt.Errorf("TLS cert and key files must be provided when TLS is enabled")
	}

	return nil
}

// SecurityValidator validates security-related configuration
type SecurityValidator struct{}

// Validate performs security validation
func (v *SecurityValidator) Validate(cfg *Config) error {
	if len(cfg.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if cfg.Security.JWTExpiration <= 0 {
		return fmt.Errorf("JWT expiration must be positive")
	}

	for _, origin := range cfg.Security.AllowedOrigins {
		if origin == "*" && cfg.IsProduction() {
			return fmt.Errorf("wildcard origin (*) not allowed in production")
		}
	}

	for action, expr := range cfg.Security.Policies {
		if strings.TrimSpace(expr) == "" {
			return fmt.Errorf("authorization policy %q is empty", action)
		}
	}

	return nil
}

// isMissing reports unset values and the MISSING_ placeholders left by env templates
func isMissing(s string) bool {
	return s == "" || strings.HasPrefix(s, "MISSING_")
}
