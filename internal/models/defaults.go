package models

import (
	"gorm.io/datatypes"
)

// Alert types understood by the alert sweep.
const (
	AlertSSLExpiry    = "ssl_expiry"
	AlertDomainExpiry = "domain_expiry"
	AlertDsarDeadline = "dsar_deadline"
)

// DefaultAlertSetting is one threshold for an alert type. Several rows may
// share an alert type at different thresholds.
type DefaultAlertSetting struct {
	ID                  string                      `gorm:"primaryKey;size:64" json:"id"`
	AlertType           string                      `gorm:"size:50;not null;index" json:"alert_type"`
	ThresholdDays       int                         `gorm:"not null" json:"threshold_days"`
	IsEnabled           bool                        `gorm:"not null" json:"is_enabled"`
	NotificationMethods datatypes.JSONSlice[string] `json:"notification_methods"`
}

func (DefaultAlertSetting) TableName() string { return "default_alert_settings" }

// DefaultRetentionPolicy refers to a data category by name; there is no
// foreign key to data_category_refs.
type DefaultRetentionPolicy struct {
	ID              string `gorm:"primaryKey;size:64" json:"id"`
	DataCategory    string `gorm:"size:100;not null" json:"data_category"`
	RetentionPeriod string `gorm:"size:50;not null" json:"retention_period"`
	LegalBasis      string `gorm:"size:255" json:"legal_basis"`
	Description     string `gorm:"type:text" json:"description"`
}

func (DefaultRetentionPolicy) TableName() string { return "default_retention_policies" }
