package installer

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"privacy-guard/internal/models"
)

var ErrUnknownCatalog = errors.New("unknown reference catalog")

var DataCategories = []models.ReferenceRow{
	{ID: "personal_identifiers", Name: "Personal Identifiers", Description: "Names, national ID numbers, account identifiers", Icon: "id-card", Color: "#3B82F6", SortOrder: 1},
	{ID: "contact_information", Name: "Contact Information", Description: "Email addresses, phone numbers, postal addresses", Icon: "mail", Color: "#10B981", SortOrder: 2},
	{ID: "financial_data", Name: "Financial Data", Description: "Payment cards, bank accounts, transaction history", Icon: "credit-card", Color: "#F59E0B", SortOrder: 3},
	{ID: "health_data", Name: "Health Data", Description: "Medical records, health conditions, insurance details", Icon: "heart-pulse", Color: "#EF4444", SortOrder: 4},
	{ID: "biometric_data", Name: "Biometric Data", Description: "Fingerprints, facial geometry, voice prints", Icon: "fingerprint", Color: "#8B5CF6", SortOrder: 5},
	{ID: "location_data", Name: "Location Data", Description: "GPS coordinates, IP-derived location, travel history", Icon: "map-pin", Color: "#06B6D4", SortOrder: 6},
	{ID: "behavioral_data", Name: "Behavioral Data", Description: "Browsing activity, purchase patterns, preferences", Icon: "activity", Color: "#EC4899", SortOrder: 7},
}

var ConsentStatuses = []models.ReferenceRow{
	{ID: "granted", Name: "Granted", Description: "The data subject has given consent", Color: "#10B981", SortOrder: 1},
	{ID: "denied", Name: "Denied", Description: "The data subject refused consent", Color: "#EF4444", SortOrder: 2},
	{ID: "withdrawn", Name: "Withdrawn", Description: "Consent was given and later withdrawn", Color: "#F59E0B", SortOrder: 3},
	{ID: "pending", Name: "Pending", Description: "Consent has been requested but not answered", Color: "#6B7280", SortOrder: 4},
	{ID: "expired", Name: "Expired", Description: "Consent lapsed and must be renewed", Color: "#9CA3AF", SortOrder: 5},
}

var DsarStatuses = []models.ReferenceRow{
	{ID: "received", Name: "Received", Description: "Request logged and awaiting triage", Color: "#3B82F6", SortOrder: 1},
	{ID: "verifying", Name: "Verifying Identity", Description: "Waiting for the requester to prove their identity", Color: "#F59E0B", SortOrder: 2},
	{ID: "in_progress", Name: "In Progress", Description: "Data is being collected or processed", Color: "#8B5CF6", SortOrder: 3},
	{ID: "completed", Name: "Completed", Description: "Response delivered to the requester", Color: "#10B981", SortOrder: 4},
	{ID: "rejected", Name: "Rejected", Description: "Request declined with a documented reason", Color: "#EF4444", SortOrder: 5},
}

var Regulations = []models.ReferenceRow{
	{ID: "gdpr", Name: "GDPR", Description: "EU General Data Protection Regulation", Icon: "flag-eu", SortOrder: 1},
	{ID: "uk_gdpr", Name: "UK GDPR", Description: "United Kingdom General Data Protection Regulation", Icon: "flag-gb", SortOrder: 2},
	{ID: "ccpa", Name: "CCPA", Description: "California Consumer Privacy Act", Icon: "flag-us", SortOrder: 3},
	{ID: "lgpd", Name: "LGPD", Description: "Brazilian General Data Protection Law", Icon: "flag-br", SortOrder: 4},
	{ID: "pipeda", Name: "PIPEDA", Description: "Canadian Personal Information Protection and Electronic Documents Act", Icon: "flag-ca", SortOrder: 5},
	{ID: "hipaa", Name: "HIPAA", Description: "US Health Insurance Portability and Accountability Act", Icon: "flag-us", SortOrder: 6},
}

var IncidentStatuses = []models.ReferenceRow{
	{ID: "open", Name: "Open", Description: "Incident reported, not yet assessed", Color: "#EF4444", SortOrder: 1},
	{ID: "investigating", Name: "Investigating", Description: "Scope and impact are being assessed", Color: "#F59E0B", SortOrder: 2},
	{ID: "contained", Name: "Contained", Description: "The breach is stopped; remediation continues", Color: "#3B82F6", SortOrder: 3},
	{ID: "resolved", Name: "Resolved", Description: "Remediation and notifications are complete", Color: "#10B981", SortOrder: 4},
}

// Catalog names as exposed over HTTP, mapped to their tables.
var catalogTables = map[string]string{
	"data-categories":   models.DataCategoryRef{}.TableName(),
	"consent-statuses":  models.ConsentStatusRef{}.TableName(),
	"dsar-statuses":     models.DsarStatusRef{}.TableName(),
	"regulations":       models.RegulationRef{}.TableName(),
	"incident-statuses": models.IncidentStatusRef{}.TableName(),
}

// SeedReferenceData inserts the five fixed catalogs. Rows whose name is
// already present are skipped, so edits made directly in the tables
// survive a reinstall.
func SeedReferenceData(tx *gorm.DB) error {
	if err := seedCatalog(tx, DataCategories, func(r models.ReferenceRow) models.DataCategoryRef {
		return models.DataCategoryRef{ReferenceRow: r}
	}); err != nil {
		return fmt.Errorf("data categories: %w", err)
	}
	if err := seedCatalog(tx, ConsentStatuses, func(r models.ReferenceRow) models.ConsentStatusRef {
		return models.ConsentStatusRef{ReferenceRow: r}
	}); err != nil {
		return fmt.Errorf("consent statuses: %w", err)
	}
	if err := seedCatalog(tx, DsarStatuses, func(r models.ReferenceRow) models.DsarStatusRef {
		return models.DsarStatusRef{ReferenceRow: r}
	}); err != nil {
		return fmt.Errorf("dsar statuses: %w", err)
	}
	if err := seedCatalog(tx, Regulations, func(r models.ReferenceRow) models.RegulationRef {
		return models.RegulationRef{ReferenceRow: r}
	}); err != nil {
		return fmt.Errorf("regulations: %w", err)
	}
	if err := seedCatalog(tx, IncidentStatuses, func(r models.ReferenceRow) models.IncidentStatusRef {
		return models.IncidentStatusRef{ReferenceRow: r}
	}); err != nil {
		return fmt.Errorf("incident statuses: %w", err)
	}
	return nil
}

func seedCatalog[T any](tx *gorm.DB, rows []models.ReferenceRow, wrap func(models.ReferenceRow) T) error {
	typed := make([]T, len(rows))
	for i, row := range rows {
		typed[i] = wrap(row)
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&typed).Error
}

// ListCatalog returns the rows of a reference catalog in display order.
func ListCatalog(ctx context.Context, db *gorm.DB, name string) ([]models.ReferenceRow, error) {
	table, ok := catalogTables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCatalog, name)
	}
	var rows []models.ReferenceRow
	err := db.WithContext(ctx).Table(table).Order("sort_order, name").Find(&rows).Error
	return rows, err
}

// CatalogNames lists the catalogs ListCatalog accepts.
func CatalogNames() []string {
	return []string{"data-categories", "consent-statuses", "dsar-statuses", "regulations", "incident-statuses"}
}
