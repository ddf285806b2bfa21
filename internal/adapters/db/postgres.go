// internal/adapters/db/postgres.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ammerola/pharmacy-be/internal/core/ports"
	"github.com/ammerola/pharmacy-be/internal/pkg/config"
)

var tracer = otel.Tracer("github.com/ammerola/pharmacy-be/internal/adapters/db")

// applicationName tags every session in pg_stat_activity
const applicationName = "pharmacy-be"

// Config holds the connection settings of the pharmacy database
type Config struct {
	Host               string
	Port               string
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int32
	MinConnections     int32
	MaxConnLifetime    time.Duration
	MaxConnIdleTime    time.Duration
	HealthCheckPeriod  time.Duration
	ConnectTimeout     time.Duration
	StatementCacheMode string // describe, prepare, exec, simple
	EnableQueryLogging bool
	// StatementTimeout is set on every transaction with SET LOCAL; zero disables it
	StatementTimeout time.Duration
}

// DefaultConfig matches the docker-compose database used in development
func DefaultConfig() *Config {
	return &Config{
		Host:               "localhost",
		Port:               "5432",
		User:               "pharmacy",
		Password:           "pharmacy_dev",
		Database:           "pharmacy",
		SSLMode:            "disable",
		MaxConnections:     25,
		MinConnections:     5,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    30 * time.Minute,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     10 * time.Second,
		StatementCacheMode: "describe",
		StatementTimeout:   30 * time.Second,
	}
}

// ConfigFrom maps the application's database settings
func ConfigFrom(c config.DatabaseConfig) *Config {
	return &Config{
		Host:               c.Host,
		Port:               c.Port,
		User:               c.User,
		Password:           c.Password,
		Database:           c.Name,
		SSLMode:            c.SSLMode,
		MaxConnections:     c.MaxConnections,
		MinConnections:     c.MinConnections,
		MaxConnLifetime:    c.MaxConnLifetime,
		MaxConnIdleTime:    c.MaxConnIdleTime,
		HealthCheckPeriod:  c.HealthCheckPeriod,
		ConnectTimeout:     c.ConnectTimeout,
		StatementCacheMode: c.StatementCacheMode,
		StatementTimeout:   c.StatementTimeout,
		EnableQueryLogging: c.EnableQueryLogging,
	}
}

// Database owns the pgx pool. Repositories reach it through querier so
// that a transaction opened by WithinTransaction is used transparently.
type Database struct {
	pool   *pgxpool.Pool
	config *Config
	logger *slog.Logger
}

var _ ports.Database = (*Database)(nil)

// NewDatabase opens the pool and fails unless the server answers a ping
func NewDatabase(ctx context.Context, config *Config, logger *slog.Logger) (*Database, error) {
	if config == nil {
		config = DefaultConfig()
	}

	poolConfig, err := buildPoolConfig(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build pool config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", config.Database, err)
	}

	logger.Info("database connection established",
		slog.String("host", config.Host),
		slog.String("database", config.Database),
		slog.Int("max_connections", int(config.MaxConnections)),
		slog.Duration("statement_timeout", config.StatementTimeout),
	)

	return &Database{pool: pool, config: config, logger: logger}, nil
}

// queryExecModes maps StatementCacheMode to pgx. Unknown modes fall back to describe.
var queryExecModes = map[string]pgx.QueryExecMode{
	"describe": pgx.QueryExecModeCacheDescribe,
	"prepare":  pgx.QueryExecModeCacheStatement,
	"exec":     pgx.QueryExecModeExec,
	"simple":   pgx.QueryExecModeSimpleProtocol,
}

func buildPoolConfig(config *Config, logger *slog.Logger) (*pgxpool.Config, error) {
	params := []string{
		"host=" + config.Host,
		"port=" + config.Port,
		"dbname=" + config.Database,
		"sslmode=" + config.SSLMode,
		fmt.Sprintf("connect_timeout=%d", int(config.ConnectTimeout.Seconds())),
	}
	if config.User != "" {
		params = append(params, "user="+config.User)
	}
	if config.Password != "" {
		params = append(params, "password="+config.Password)
	}

	poolConfig, err := pgxpool.ParseConfig(strings.Join(params, " "))
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	poolConfig.MaxConns = config.MaxConnections
	poolConfig.MinConns = config.MinConnections
	poolConfig.MaxConnLifetime = config.MaxConnLifetime
	poolConfig.MaxConnIdleTime = config.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = config.HealthCheckPeriod

	conn := poolConfig.ConnConfig
	conn.RuntimeParams["application_name"] = applicationName
	conn.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
	if mode, ok := queryExecModes[config.StatementCacheMode]; ok {
		conn.DefaultQueryExecMode = mode
	}
	conn.StatementCacheCapacity = 512

	if config.EnableQueryLogging {
		conn.Tracer = &tracelog.TraceLog{
			Logger:   newPgxLogger(logger),
			LogLevel: tracelog.LogLevelDebug,
		}
	}

	return poolConfig, nil
}

// Pool returns the underlying pgxpool.Pool
func (db *Database) Pool() *pgxpool.Pool {
	return db.pool
}

// Close closes all database connections
func (db *Database) Close() {
	db.pool.Close()
	db.logger.Info("database connections closed")
}

// Ping verifies database connectivity
func (db *Database) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Health reports pool usage and the round trip of a trivial query
func (db *Database) Health(ctx context.Context) map[string]interface{} {
	stats := db.pool.Stat()
	report := map[string]interface{}{
		"status":             "healthy",
		"total_conns":        stats.TotalConns(),
		"idle_conns":         stats.IdleConns(),
		"acquired_conns":     stats.AcquiredConns(),
		"max_conns":          stats.MaxConns(),
		"acquire_wait_count": stats.EmptyAcquireCount(),
		"lifetime_closed":    stats.MaxLifetimeDestroyCount(),
		"idle_closed":        stats.MaxIdleDestroyCount(),
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	var one int
	if err := db.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		report["status"] = "unhealthy"
		report["error"] = err.Error()
		return report
	}
	report["query_latency"] = time.Since(start).String()

	return report
}

// txKey is the context key for the active transaction
type txKey struct{}

// Querier is the subset of pgx shared by the pool and a transaction
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WithinTransaction runs fn in a READ COMMITTED transaction stored in ctx.
// If ctx already carries a transaction, fn joins it. Row locks taken by
// repositories are held until the outermost call returns.
func (db *Database) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(attribute.String("tx.isolation", string(pgx.ReadCommitted))))
	defer span.End()

	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if db.config.StatementTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", db.config.StatementTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(context.Background())
			return fmt.Errorf("failed to set statement_timeout: %w", err)
		}
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.Background())
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		span.SetStatus(codes.Error, err.Error())
		// rollback must finish even if ctx was cancelled
		if rbErr := tx.Rollback(context.Background()); rbErr != nil {
			db.logger.ErrorContext(ctx, "rollback failed",
				slog.String("error", rbErr.Error()),
				slog.String("original_error", err.Error()))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// querier returns the transaction in ctx, or the pool outside one
func (db *Database) querier(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db.pool
}

// inTransaction reports whether ctx carries a transaction
func inTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(pgx.Tx)
	return ok
}

// pgxLogger forwards pgx trace output to slog
type pgxLogger struct {
	logger *slog.Logger
}

func newPgxLogger(logger *slog.Logger) *pgxLogger {
	return &pgxLogger{logger: logger.With(slog.String("component", "pgx"))}
}

var pgxLevels = map[tracelog.LogLevel]slog.Level{
	tracelog.LogLevelError: slog.LevelError,
	tracelog.LogLevelWarn:  slog.LevelWarn,
	tracelog.LogLevelInfo:  slog.LevelInfo,
}

func (l *pgxLogger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]interface{}) {
	lvl, ok := pgxLevels[level]
	if !ok {
		lvl = slog.LevelDebug
	}
	if !l.logger.Enabled(ctx, lvl) {
		return
	}

	attrs := make([]slog.Attr, 0, len(data))
	for k, v := range data {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.LogAttrs(ctx, lvl, msg, attrs...)
}
