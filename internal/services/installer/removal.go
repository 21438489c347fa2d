package installer

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"privacy-guard/internal/models"
)

// RemoveSampleData deletes every row flagged is_sample in one transaction
// and reports how many rows went. Records created by users are never
// touched, whatever they are named.
func (s *Service) RemoveSampleData(ctx context.Context) (*RemovalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		removed = 0
		for _, table := range sampleTables {
			res := tx.Where("is_sample = ?", true).Delete(table)
			if res.Error != nil {
				return fmt.Errorf("delete sample rows from %T: %w", table, res.Error)
			}
			removed += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		s.logger.Error("sample data removal failed", "error", err)
		return &RemovalResult{
			Success:      false,
			Message:      "Failed to remove sample data: " + err.Error(),
			RemovedCount: 0,
		}, err
	}

	s.logger.Info("sample data removed", "rows", removed)
	s.notifier.Notify(Event{Type: EventSampleRemoved, Message: fmt.Sprintf("%d sample rows removed", removed)})

	return &RemovalResult{
		Success:      true,
		Message:      fmt.Sprintf("Removed %d sample records", removed),
		RemovedCount: removed,
	}, nil
}

// ResetInstallation deletes the completion flag and drops the reference
// and default-configuration tables. This cannot be undone; sample and user
// data in the application tables is kept.
func (s *Service) ResetInstallation(ctx context.Context) (*ResetResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Migrator().HasTable(&models.InstallationSetting{}) {
			if err := tx.Where(&models.InstallationSetting{Key: models.InstallationCompleteKey}).
				Delete(&models.InstallationSetting{}).Error; err != nil {
				return fmt.Errorf("delete installation flag: %w", err)
			}
		}

		tables := append(append([]interface{}{}, referenceTables...), defaultTables...)
		if err := tx.Migrator().DropTable(tables...); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("installation reset failed", "error", err)
		return &ResetResult{
			Success: false,
			Message: "Failed to reset installation: " + err.Error(),
		}, err
	}

	s.logger.Warn("installation reset")
	s.notifier.Notify(Event{Type: EventReset, Message: "Installation reset"})

	return &ResetResult{
		Success: true,
		Message: "Installation reset successfully",
	}, nil
}
