// Package testutil provides helpers shared by store-backed tests.
package testutil

import (
	"path/filepath"
	"testing"

	"patient-registration/config"
	"patient-registration/internal/infrastructure/database"

	"gorm.io/gorm"
)

// SQLiteConfig returns a database config pointing at a fresh file in t's temp dir.
func SQLiteConfig(t testing.TB) config.DBConfig {
	t.Helper()
	return config.DBConfig{
		Driver:   config.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "patients.db"),
		LogLevel: "silent",
	}
}

// NewSQLiteDB returns a migrated SQLite store that is closed when the test ends.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := SQLiteConfig(t)
	if err := database.Migrate(cfg); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db, err := database.NewSQLiteConnection(cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}
