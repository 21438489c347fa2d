package installer

import (
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"privacy-guard/internal/models"
)

var DefaultAlertSettings = []models.DefaultAlertSetting{
	{ID: "ssl_expiry_30", AlertType: models.AlertSSLExpiry, ThresholdDays: 30, IsEnabled: true, NotificationMethods: datatypes.NewJSONSlice([]string{"email"})},
	{ID: "ssl_expiry_15", AlertType: models.AlertSSLExpiry, ThresholdDays: 15, IsEnabled: true, NotificationMethods: datatypes.NewJSONSlice([]string{"email"})},
	{ID: "ssl_expiry_7", AlertType: models.AlertSSLExpiry, ThresholdDays: 7, IsEnabled: true, NotificationMethods: datatypes.NewJSONSlice([]string{"email", "in_app"})},
	{ID: "ssl_expiry_1", AlertType: models.AlertSSLExpiry, ThresholdDays: 1, IsEnabled: true, NotificationMethods: datatypes.NewJSONSlice([]string{"email", "in_app", "slack"})},
	{ID: "domain_expiry_30", AlertType: models.AlertDomainExpiry, ThresholdDays: 30, IsEnabled: true, NotificationMethods: datatypes.NewJSONSlice([]string{"email"})},
	{ID: "dsar_deadline_5", AlertType: models.AlertDsarDeadline, ThresholdDays: 5, IsEnabled: true, NotificationMethods: datatypes.NewJSONSlice([]string{"email", "in_app"})},
}

var DefaultRetentionPolicies = []models.DefaultRetentionPolicy{
	{ID: "retention_personal_identifiers", DataCategory: "Personal Identifiers", RetentionPeriod: "7 years", LegalBasis: "Legal obligation", Description: "Kept for the statutory record-keeping period after the relationship ends"},
	{ID: "retention_contact_information", DataCategory: "Contact Information", RetentionPeriod: "3 years", LegalBasis: "Legitimate interest", Description: "Kept while the contact is active and for three years after last interaction"},
	{ID: "retention_financial_data", DataCategory: "Financial Data", RetentionPeriod: "7 years", LegalBasis: "Legal obligation", Description: "Tax and accounting records"},
	{ID: "retention_health_data", DataCategory: "Health Data", RetentionPeriod: "10 years", LegalBasis: "Legal obligation", Description: "Occupational health and medical records"},
	{ID: "retention_location_data", DataCategory: "Location Data", RetentionPeriod: "1 year", LegalBasis: "Consent", Description: "Deleted or anonymised after twelve months"},
	{ID: "retention_behavioral_data", DataCategory: "Behavioral Data", RetentionPeriod: "2 years", LegalBasis: "Consent", Description: "Analytics data, aggregated after two years"},
}

// SetupDefaultConfigurations inserts the default alert thresholds and
// retention policies. Existing rows with the same id are left alone.
func SetupDefaultConfigurations(tx *gorm.DB) error {
	doNothing := clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}

	alerts := make([]models.DefaultAlertSetting, len(DefaultAlertSettings))
	copy(alerts, DefaultAlertSettings)
	if err := tx.Clauses(doNothing).Create(&alerts).Error; err != nil {
		return fmt.Errorf("alert settings: %w", err)
	}

	policies := make([]models.DefaultRetentionPolicy, len(DefaultRetentionPolicies))
	copy(policies, DefaultRetentionPolicies)
	if err := tx.Clauses(doNothing).Create(&policies).Error; err != nil {
		return fmt.Errorf("retention policies: %w", err)
	}
	return nil
}
