package testutil

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"privacy-guard/internal/config"
	"privacy-guard/internal/database"
	"privacy-guard/internal/models"
)

// NewTestDB returns a file-backed SQLite database in a temporary directory,
// configured the same way as production and with the application tables
// migrated. It is closed when the test completes.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Connect(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "privacy-guard.db"),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = database.Close(db)
	})

	if err := database.AutoMigrate(db, models.Operational()...); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return db
}

// Count returns the number of rows in model's table.
func Count(t testing.TB, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}
