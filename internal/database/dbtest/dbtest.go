// Package dbtest opens throwaway SQLite databases for integration tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/Benediks/Sidaya/internal/config"
	"github.com/Benediks/Sidaya/internal/database"

	"gorm.io/gorm"
)

// Open creates a migrated database under t.TempDir and closes it when the
// test finishes.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Path:    filepath.Join(t.TempDir(), "sidaya_test.db"),
		LogMode: false,
	}
	db, err := database.Init(cfg)
	if err != nil {
		t.Fatalf("init test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
