package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"patient-registration/config"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"

	_ "github.com/lib/pq" // registers the "postgres" driver used by the migration connection
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFS embed.FS

// Migrator applies the embedded schema migrations for one database driver.
type Migrator struct {
	migrate *migrate.Migrate
	db      *sql.DB
}

// NewMigrator opens a dedicated connection for schema changes. Callers must Close it.
func NewMigrator(cfg config.DBConfig) (*Migrator, error) {
	var (
		db     *sql.DB
		driver migratedb.Driver
		err    error
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = sql.Open("postgres", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open migration connection: %w", err)
		}
		driver, err = migratepg.WithInstance(db, &migratepg.Config{})
	case config.DriverSQLite:
		db, err = openSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations/"+cfg.Driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, cfg.Driver, driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return &Migrator{migrate: m, db: db}, nil
}

func (m *Migrator) Up() error {
	if err := m.migrate.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	m.logVersion()
	return nil
}

// Down rolls back a single migration step.
func (m *Migrator) Down() error {
	if err := m.migrate.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	m.logVersion()
	return nil
}

func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (m *Migrator) logVersion() {
	version, dirty, err := m.Version()
	if err != nil {
		logrus.Warnf("Failed to read schema version: %+v", err)
		return
	}
	logrus.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Schema is up to date")
}

func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	m.db.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}
	return nil
}

// Migrate applies every pending migration for cfg.Driver.
func Migrate(cfg config.DBConfig) error {
	m, err := NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	return m.Up()
}
