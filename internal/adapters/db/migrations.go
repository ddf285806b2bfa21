// internal/adapters/db/migrations.go
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationConfig holds migration configuration
type MigrationConfig struct {
	DatabaseURL      string
	TableName        string
	SchemaName       string
	ForceDirty       bool
	StatementTimeout time.Duration
}

func (c *MigrationConfig) withDefaults() {
	if c.TableName == "" {
		c.TableName = "schema_migrations"
	}
	if c.SchemaName == "" {
		c.SchemaName = "public"
	}
	if c.StatementTimeout == 0 {
		c.StatementTimeout = 10 * time.Minute
	}
}

// Migrator applies the pharmacy schema embedded in the binary
type Migrator struct {
	migrate *migrate.Migrate
	source  source.Driver
	config  *MigrationConfig
	logger  *slog.Logger
	db      *sql.DB
}

// NewMigrator opens a small database/sql pool for golang-migrate
func NewMigrator(config *MigrationConfig, logger *slog.Logger) (*Migrator, error) {
	if config == nil {
		return nil, fmt.Errorf("migration config is required")
	}
	config.withDefaults()

	db, err := openMigrationDB(config.DatabaseURL)
	if err != nil {
		return nil, err
	}

	m, src, err := newMigrateInstance(db, config)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Migrator{
		migrate: m,
		source:  src,
		config:  config,
		logger:  logger.With(slog.String("component", "migrator")),
		db:      db,
	}, nil
}

func openMigrationDB(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Migrations run one statement at a time
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func newMigrateInstance(db *sql.DB, config *MigrationConfig) (*migrate.Migrate, source.Driver, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable:  config.TableName,
		SchemaName:       config.SchemaName,
		StatementTimeout: config.StatementTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedded source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, src, nil
}

// Up applies every pending migration. A dirty database is only forced
// back to its recorded version when ForceDirty is set.
func (m *Migrator) Up(ctx context.Context) error {
	version, dirty, err := m.Version(ctx)
	if err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "running migrations up", slog.Uint64("from_version", uint64(version)))

	if dirty {
		if !m.config.ForceDirty {
			return fmt.Errorf("database is in dirty state at version %d", version)
		}
		m.logger.WarnContext(ctx, "forcing dirty migration", slog.Uint64("version", uint64(version)))
		if err := m.migrate.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	err = m.migrate.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		m.logger.InfoContext(ctx, "schema already current")
		return nil
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if now, _, err := m.Version(ctx); err == nil {
		m.logger.InfoContext(ctx, "migrations completed", slog.Uint64("version", uint64(now)))
	}
	return nil
}

// Down rolls back the most recent migration
func (m *Migrator) Down(ctx context.Context) error {
	version, dirty, err := m.Version(ctx)
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d", version)
	}

	err = m.migrate.Steps(-1)
	switch {
	case errors.Is(err, migrate.ErrNoChange), errors.Is(err, fs.ErrNotExist):
		m.logger.InfoContext(ctx, "nothing to roll back")
		return nil
	case err != nil:
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	m.logger.InfoContext(ctx, "migration rolled back", slog.Uint64("from_version", uint64(version)))
	return nil
}

// Version returns the applied version; an empty database reports 0
func (m *Migrator) Version(_ context.Context) (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get version: %w", err)
	}
	return version, dirty, nil
}

// MigrationStatus is what -migrate status prints
type MigrationStatus struct {
	Version uint              `json:"version"`
	Dirty   bool              `json:"dirty"`
	Applied []MigrationRecord `json:"applied"`
	Pending []MigrationFile   `json:"pending"`
}

// MigrationRecord is a row of the golang-migrate version table
type MigrationRecord struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

// MigrationFile is an embedded migration above the applied version
type MigrationFile struct {
	Version uint   `json:"version"`
	Name    string `json:"name"`
}

// Status reports the applied version and the embedded migrations still to run
func (m *Migrator) Status(ctx context.Context) (*MigrationStatus, error) {
	version, dirty, err := m.Version(ctx)
	if err != nil {
		return nil, err
	}
	applied, err := appliedMigrations(ctx, m.db, m.config.SchemaName, m.config.TableName)
	if err != nil {
		return nil, err
	}
	pending, err := pendingMigrations(m.source, version)
	if err != nil {
		return nil, err
	}
	return &MigrationStatus{Version: version, Dirty: dirty, Applied: applied, Pending: pending}, nil
}

func appliedMigrations(ctx context.Context, db *sql.DB, schema, table string) ([]MigrationRecord, error) {
	rows, err := squirrel.Select("version", "dirty").
		From(fmt.Sprintf("%q.%q", schema, table)).
		OrderBy("version").
		RunWith(db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("read version table: %w", err)
	}
	defer rows.Close()

	records := []MigrationRecord{}
	for rows.Next() {
		var r MigrationRecord
		if err := rows.Scan(&r.Version, &r.Dirty); err != nil {
			return nil, fmt.Errorf("scan version row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// pendingMigrations walks the source in order. The source signals its end
// with fs.ErrNotExist.
func pendingMigrations(src source.Driver, applied uint) ([]MigrationFile, error) {
	files := []MigrationFile{}
	for v, err := src.First(); ; v, err = src.Next(v) {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return files, nil
		case err != nil:
			return nil, fmt.Errorf("walk migration source: %w", err)
		}
		if v <= applied {
			continue
		}
		name := ""
		if r, ident, err := src.ReadUp(v); err == nil {
			r.Close()
			name = strings.ReplaceAll(ident, "_", " ")
		}
		files = append(files, MigrationFile{Version: v, Name: name})
	}
}

// Close releases the migration source and connection
func (m *Migrator) Close() error {
	srcErr, dbErr := m.migrate.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		return fmt.Errorf("close migrator: %w", err)
	}
	return nil
}

// RunMigrationsWithRetry applies migrations, waiting a growing interval
// between attempts while the database comes up.
func RunMigrationsWithRetry(ctx context.Context, config *MigrationConfig, logger *slog.Logger, maxRetries int) error {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			wait := time.Duration(attempt-1) * 2 * time.Second
			logger.InfoContext(ctx, "retrying migration",
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		if lastErr = migrateOnce(ctx, config, logger); lastErr == nil {
			return nil
		}
		logger.ErrorContext(ctx, "migration attempt failed",
			slog.String("error", lastErr.Error()),
			slog.Int("attempt", attempt))
	}

	return fmt.Errorf("migrations failed after %d attempts: %w", maxRetries, lastErr)
}

func migrateOnce(ctx context.Context, config *MigrationConfig, logger *slog.Logger) error {
	migrator, err := NewMigrator(config, logger)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	return errors.Join(migrator.Up(ctx), migrator.Close())
}
