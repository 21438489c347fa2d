package installer

import (
	"context"
	"time"

	"gorm.io/gorm"

	"privacy-guard/internal/models"
)

type Status struct {
	IsInstalled              bool       `json:"is_installed"`
	HasReferenceData         bool       `json:"has_reference_data"`
	HasDefaultConfigurations bool       `json:"has_default_configurations"`
	SampleDataExists         bool       `json:"sample_data_exists"`
	InstallationDate         *time.Time `json:"installation_date,omitempty"`
}

// sampleTables hold rows the sample data generator creates. Children come
// before the users they reference.
var sampleTables = []interface{}{
	&models.ConsentRecord{},
	&models.DsarRequest{},
	&models.PrivacyNotice{},
	&models.Incident{},
	&models.Domain{},
	&models.DataType{},
	&models.User{},
}

// CheckStatus reports which installation steps have committed. It never
// fails: if any query errors, the error is logged and a fully negative
// status is returned.
func (s *Service) CheckStatus(ctx context.Context) Status {
	db := s.db.WithContext(ctx)

	status, err := checkStatus(db)
	if err != nil {
		s.logger.Error("installation status check failed", "error", err)
		return Status{}
	}
	return status
}

func checkStatus(db *gorm.DB) (Status, error) {
	var status Status

	var flags []models.InstallationSetting
	if err := db.Where(&models.InstallationSetting{Key: models.InstallationCompleteKey}).
		Limit(1).Find(&flags).Error; err != nil {
		return Status{}, err
	}
	if len(flags) > 0 {
		status.IsInstalled = true
		installedAt := flags[0].CreatedAt
		status.InstallationDate = &installedAt
	}

	hasRefs, err := allPopulated(db, referenceTables)
	if err != nil {
		return Status{}, err
	}
	status.HasReferenceData = hasRefs

	hasDefaults, err := allPopulated(db, defaultTables)
	if err != nil {
		return Status{}, err
	}
	status.HasDefaultConfigurations = hasDefaults

	samples, err := countSampleRows(db)
	if err != nil {
		return Status{}, err
	}
	status.SampleDataExists = samples > 0

	return status, nil
}

// allPopulated reports whether every table holds at least one row.
func allPopulated(db *gorm.DB, tables []interface{}) (bool, error) {
	populated := true
	for _, table := range tables {
		var count int64
		if err := db.Model(table).Count(&count).Error; err != nil {
			return false, err
		}
		if count == 0 {
			populated = false
		}
	}
	return populated, nil
}

func countSampleRows(db *gorm.DB) (int64, error) {
	var total int64
	for _, table := range sampleTables {
		var count int64
		if err := db.Model(table).Where("is_sample = ?", true).Count(&count).Error; err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}
