package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"patient-registration/config"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// sqliteDriverName is the database/sql name registered by modernc.org/sqlite.
const sqliteDriverName = "sqlite"

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite", path)
}

func openSQLite(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	sqlDB, err := sql.Open(sqliteDriverName, sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)

	return sqlDB, nil
}

// NewSQLiteConnection opens the embedded single-desk store at cfg.Path.
func NewSQLiteConnection(cfg config.DBConfig) (*gorm.DB, error) {
	sqlDB, err := openSQLite(cfg.Path)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(&sqlite.Dialector{DriverName: sqliteDriverName, Conn: sqlDB}, &gorm.Config{
		Logger: newGormLogger(cfg.LogLevel),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logrus.WithField("path", cfg.Path).Info("Successfully opened SQLite database")

	return db, nil
}

// NewConnection opens the record store selected by cfg.Driver.
func NewConnection(cfg config.DBConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return NewSQLiteConnection(cfg)
	case config.DriverPostgres:
		return NewPostgresConnection(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
