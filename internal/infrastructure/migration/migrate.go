// Package migration wraps golang-migrate for the order sync schema. The
// runner drives versioned SQL file pairs from the migrations directory
// against postgres.
package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Runner applies and rolls back schema migrations
type Runner struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// NewRunner creates a runner over an open postgres connection
func NewRunner(db *sql.DB, migrationsDir string, logger *zap.Logger) (*Runner, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration: postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migration: source %s: %w", migrationsDir, err)
	}

	return &Runner{m: m, logger: logger}, nil
}

// Up applies every pending migration
func (r *Runner) Up() error {
	err := r.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		r.logger.Info("Schema already current")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration: up: %w", err)
	}
	return r.logVersion("Migrations applied")
}

// Down rolls back every applied migration
func (r *Runner) Down() error {
	err := r.m.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		r.logger.Info("Nothing to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration: down: %w", err)
	}
	r.logger.Info("All migrations rolled back")
	return nil
}

// Steps applies n migrations; negative n rolls back
func (r *Runner) Steps(n int) error {
	err := r.m.Steps(n)
	if errors.Is(err, migrate.ErrNoChange) {
		r.logger.Info("Schema already current")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration: steps(%d): %w", n, err)
	}
	return r.logVersion("Migration steps applied")
}

// To migrates up or down to an exact version
func (r *Runner) To(version uint) error {
	err := r.m.Migrate(version)
	if errors.Is(err, migrate.ErrNoChange) {
		r.logger.Info("Already at target version", zap.Uint("version", version))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration: migrate to %d: %w", version, err)
	}
	r.logger.Info("Migrated to version", zap.Uint("version", version))
	return nil
}

// Version returns the current schema version and the dirty flag. A bare
// schema reports version 0.
func (r *Runner) Version() (uint, bool, error) {
	version, dirty, err := r.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migration: version: %w", err)
	}
	return version, dirty, nil
}

// Force overwrites the recorded version without running any SQL. Only for
// recovering a dirty schema.
func (r *Runner) Force(version int) error {
	r.logger.Warn("Forcing schema version", zap.Int("version", version))
	if err := r.m.Force(version); err != nil {
		return fmt.Errorf("migration: force %d: %w", version, err)
	}
	return nil
}

// Drop destroys every object in the database
func (r *Runner) Drop() error {
	r.logger.Warn("Dropping all database objects")
	if err := r.m.Drop(); err != nil {
		return fmt.Errorf("migration: drop: %w", err)
	}
	return nil
}

// Close releases the source and database handles
func (r *Runner) Close() error {
	sourceErr, dbErr := r.m.Close()
	if sourceErr != nil {
		return fmt.Errorf("migration: close source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration: close database: %w", dbErr)
	}
	return nil
}

func (r *Runner) logVersion(msg string) error {
	version, dirty, err := r.Version()
	if err != nil {
		return err
	}
	r.logger.Info(msg, zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
