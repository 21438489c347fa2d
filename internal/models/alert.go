package models

import (
	"time"

	"gorm.io/datatypes"
)

// Alert is raised by the alert sweep when a tracked date crosses one of the
// configured thresholds. The unique index keeps repeated sweeps from raising
// the same alert twice.
type Alert struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	AlertType     string                      `gorm:"size:50;not null;uniqueIndex:idx_alert_once" json:"alert_type"`
	SubjectID     string                      `gorm:"size:36;not null;uniqueIndex:idx_alert_once" json:"subject_id"`
	Subject       string                      `gorm:"size:255" json:"subject"`
	ThresholdDays int                         `gorm:"not null;uniqueIndex:idx_alert_once" json:"threshold_days"`
	DueAt         time.Time                   `gorm:"not null;uniqueIndex:idx_alert_once" json:"due_at"`
	Message       string                      `gorm:"type:text" json:"message"`
	Channels      datatypes.JSONSlice[string] `json:"channels"`
	CreatedAt     time.Time                   `json:"created_at"`
}
