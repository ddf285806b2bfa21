// internal/pkg/config/secrets.go
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// secretCacheTTL bounds how long a fetched secret document is reused
const secretCacheTTL = 5 * time.Minute

var (
	_ SecretsProvider = (*AWSSecretsManager)(nil)
	_ SecretsProvider = (*EnvSecretsManager)(nil)
)

// secretValueAPI is the part of the Secrets Manager client used here
type secretValueAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsManager reads the pharmacy credentials (database password, JWT
// signing key, redis and SMTP passwords) from one JSON secret document.
type AWSSecretsManager struct {
	api        secretValueAPI
	secretName string
	logger     *slog.Logger

	mu        sync.Mutex
	values    map[string]string
	fetchedAt time.Time
}

// NewAWSSecretsManager builds a manager on the default AWS credential chain
func NewAWSSecretsManager(ctx context.Context, region, secretName string, logger *slog.Logger) (*AWSSecretsManager, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newAWSSecretsManager(secretsmanager.NewFromConfig(awsCfg), secretName, logger), nil
}

func newAWSSecretsManager(api secretValueAPI, secretName string, logger *slog.Logger) *AWSSecretsManager {
	return &AWSSecretsManager{
		api:        api,
		secretName: secretName,
		logger:     logger.With(slog.String("secret_name", secretName)),
	}
}

// GetSecret returns one key of the secret document
func (sm *AWSSecretsManager) GetSecret(ctx context.Context, key string) (string, error) {
	found, err := sm.GetSecrets(ctx, []string{key})
	if err != nil {
		return "", err
	}
	val, ok := found[key]
	if !ok {
		return "", fmt.Errorf("secret key %s not found in %s", key, sm.secretName)
	}
	return val, nil
}

// GetSecrets returns the requested keys that the document defines. The
// document is refetched once it is stale or lacks a requested key.
func (sm *AWSSecretsManager) GetSecrets(ctx context.Context, keys []string) (map[string]string, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.values != nil && time.Since(sm.fetchedAt) < secretCacheTTL {
		if found := pickSecrets(sm.values, keys, nil); len(found) == len(keys) {
			return found, nil
		}
	}

	values, err := sm.fetch(ctx)
	if err != nil {
		return nil, err
	}
	sm.values = values
	sm.fetchedAt = time.Now()

	return pickSecrets(values, keys, func(key string) {
		sm.logger.Warn("secret key not present", slog.String("key", key))
	}), nil
}

func (sm *AWSSecretsManager) fetch(ctx context.Context) (map[string]string, error) {
	sm.logger.Info("fetching secrets from AWS Secrets Manager")

	out, err := sm.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(sm.secretName),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret value: %w", err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", sm.secretName)
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(*out.SecretString), &values); err != nil {
		return nil, fmt.Errorf("failed to parse secret %s: %w", sm.secretName, err)
	}
	return values, nil
}

// EnvSecretsManager reads secrets straight from the process environment
type EnvSecretsManager struct{}

// NewEnvSecretsManager creates an environment-backed provider
func NewEnvSecretsManager() *EnvSecretsManager {
	return &EnvSecretsManager{}
}

// GetSecret fails when the variable is unset or empty
func (em *EnvSecretsManager) GetSecret(_ context.Context, key string) (string, error) {
	if val := os.Getenv(key); val != "" {
		return val, nil
	}
	return "", fmt.Errorf("environment variable %s not set", key)
}

// GetSecrets returns the non-empty variables among keys
func (em *EnvSecretsManager) GetSecrets(_ context.Context, keys []string) (map[string]string, error) {
	env := make(map[string]string, len(keys))
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			env[key] = val
		}
	}
	return env, nil
}

func pickSecrets(values map[string]string, keys []string, onMissing func(string)) map[string]string {
	found := make(map[string]string, len(keys))
	for _, key := range keys {
		if val, ok := values[key]; ok {
			found[key] = val
		} else if onMissing != nil {
			onMissing(key)
		}
	}
	return found
}
