package installer

import (
	"fmt"

	"gorm.io/gorm"

	"privacy-guard/internal/models"
)

// referenceTables and defaultTables are dropped by ResetInstallation. The
// installation_settings table survives a reset.
var (
	referenceTables = []interface{}{
		&models.DataCategoryRef{},
		&models.ConsentStatusRef{},
		&models.DsarStatusRef{},
		&models.RegulationRef{},
		&models.IncidentStatusRef{},
	}
	defaultTables = []interface{}{
		&models.DefaultAlertSetting{},
		&models.DefaultRetentionPolicy{},
	}
)

func managedTables() []interface{} {
	tables := []interface{}{&models.InstallationSetting{}}
	tables = append(tables, referenceTables...)
	return append(tables, defaultTables...)
}

// EnsureTables creates the installer's eight tables when they are missing.
// Existing tables are left untouched.
func EnsureTables(tx *gorm.DB) error {
	m := tx.Migrator()
	for _, table := range managedTables() {
		if m.HasTable(table) {
			continue
		}
		if err := m.CreateTable(table); err != nil {
			return fmt.Errorf("create table for %T: %w", table, err)
		}
	}
	return nil
}
