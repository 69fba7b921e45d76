// Package migration runs the versioned SQL schema migrations.
package migration

import (
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/helios-home/helios/internal/shared/logger"
)

//go:embed scripts/*.sql
var scripts embed.FS

// Migrator applies the embedded migration scripts through goose.
type Migrator struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewMigrator creates a Migrator over an open database handle.
func NewMigrator(db *gorm.DB, log logger.Interface) (*Migrator, error) {
	goose.SetBaseFS(scripts)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("mysql"); err != nil {
		return nil, fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return &Migrator{db: db, logger: log}, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	before, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	if err := goose.Up(sqlDB, "scripts"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	after, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	m.logger.Infow("migrations applied", "from_version", before, "to_version", after)
	return nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := goose.Down(sqlDB, "scripts"); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	version, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	m.logger.Infow("migration rolled back", "version", version)
	return nil
}

// Status returns the current schema version.
func (m *Migrator) Status() (int64, error) {
	sqlDB, err := m.db.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	version, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, nil
}
