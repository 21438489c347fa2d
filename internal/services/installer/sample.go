package installer

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"privacy-guard/internal/models"
)

// DsarResponseWindow is the statutory response window used for sample DSAR
// due dates.
const DsarResponseWindow = 30 * 24 * time.Hour

// defaultSampleOwner owns sample records when no admin identity is given.
var defaultSampleOwner = AdminUser{
	Email:     "sample.owner@example.com",
	FirstName: "Sample",
	LastName:  "Owner",
}

// GenerateSampleData inserts demo records owned by admin, or by a generated
// sample user when admin is nil. All generated rows are flagged is_sample.
// DSAR due dates are computed from now.
//
// Generation is skipped when sample rows are already present, so the step
// can be repeated by a later installation.
func GenerateSampleData(tx *gorm.DB, admin *AdminUser, now time.Time) error {
	existing, err := countSampleRows(tx)
	if err != nil {
		return fmt.Errorf("existing sample rows: %w", err)
	}
	if existing > 0 {
		return nil
	}

	owner, err := upsertSampleOwner(tx, admin)
	if err != nil {
		return fmt.Errorf("sample owner: %w", err)
	}
	ownerID := &owner.ID

	dataTypes := sampleDataTypes(ownerID)
	if err := tx.Create(&dataTypes).Error; err != nil {
		return fmt.Errorf("data types: %w", err)
	}

	consents := sampleConsents(now)
	if err := tx.Create(&consents).Error; err != nil {
		return fmt.Errorf("consent records: %w", err)
	}

	dsars := sampleDsars(ownerID, now)
	if err := tx.Create(&dsars).Error; err != nil {
		return fmt.Errorf("dsar requests: %w", err)
	}

	notices := sampleNotices(ownerID, now)
	if err := tx.Create(&notices).Error; err != nil {
		return fmt.Errorf("privacy notices: %w", err)
	}

	incidents := sampleIncidents(ownerID, now)
	if err := tx.Create(&incidents).Error; err != nil {
		return fmt.Errorf("incidents: %w", err)
	}

	domains := sampleDomains(ownerID, now)
	if err := tx.Create(&domains).Error; err != nil {
		return fmt.Errorf("domains: %w", err)
	}

	return nil
}

// upsertSampleOwner inserts the owner or, when the email already exists,
// refreshes only the name fields. The stored row is re-read so the caller
// gets its real primary key.
func upsertSampleOwner(tx *gorm.DB, admin *AdminUser) (*models.User, error) {
	identity := defaultSampleOwner
	isSample := true
	if admin != nil {
		identity = *admin
		isSample = false
	}
	identity.Email = strings.ToLower(strings.TrimSpace(identity.Email))

	user := models.User{
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Role:      models.RoleAdmin,
		IsSample:  isSample,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "updated_at"}),
	}).Create(&user).Error
	if err != nil {
		return nil, err
	}

	var stored models.User
	if err := tx.Where("email = ?", identity.Email).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func sampleDataTypes(ownerID *string) []models.DataType {
	return []models.DataType{
		{Name: "Sample Customer Email Addresses", Category: "Contact Information", Description: "Email addresses collected at checkout and newsletter signup", Source: "Web shop", RetentionPeriod: "3 years", OwnerID: ownerID, IsSample: true},
		{Name: "Sample Payment Card Data", Category: "Financial Data", Description: "Tokenised card references from the payment provider", Source: "Payment gateway", RetentionPeriod: "7 years", OwnerID: ownerID, IsSample: true},
		{Name: "Sample Employee Health Records", Category: "Health Data", Description: "Sick leave and occupational health notes", Source: "HR system", RetentionPeriod: "10 years", OwnerID: ownerID, IsSample: true},
		{Name: "Sample Website Analytics", Category: "Behavioral Data", Description: "Page views and click streams from the marketing site", Source: "Analytics", RetentionPeriod: "2 years", OwnerID: ownerID, IsSample: true},
		{Name: "Sample Delivery Addresses", Category: "Location Data", Description: "Shipping addresses for fulfilled orders", Source: "Web shop", RetentionPeriod: "1 year", OwnerID: ownerID, IsSample: true},
	}
}

func sampleConsents(now time.Time) []models.ConsentRecord {
	granted := now.AddDate(0, -2, 0)
	expires := now.AddDate(1, 0, 0)
	lapsed := now.AddDate(0, 0, -10)
	return []models.ConsentRecord{
		{SubjectEmail: "alice.sample@example.com", Purpose: "Sample marketing emails", Status: "Granted", Regulation: "GDPR", GrantedAt: &granted, ExpiresAt: &expires, IsSample: true},
		{SubjectEmail: "bob.sample@example.com", Purpose: "Sample product analytics", Status: "Denied", Regulation: "GDPR", IsSample: true},
		{SubjectEmail: "carol.sample@example.com", Purpose: "Sample partner data sharing", Status: "Withdrawn", Regulation: "CCPA", GrantedAt: &granted, IsSample: true},
		{SubjectEmail: "dave.sample@example.com", Purpose: "Sample loyalty programme", Status: "Pending", Regulation: "LGPD", IsSample: true},
		{SubjectEmail: "erin.sample@example.com", Purpose: "Sample personalised offers", Status: "Expired", Regulation: "UK GDPR", GrantedAt: &granted, ExpiresAt: &lapsed, IsSample: true},
	}
}

func sampleDsars(ownerID *string, now time.Time) []models.DsarRequest {
	due := now.Add(DsarResponseWindow)
	return []models.DsarRequest{
		{RequesterName: "Sample Requester Alice", RequesterEmail: "alice.sample@example.com", RequestType: "access", Status: "Received", Regulation: "GDPR", DueDate: due, AssignedToID: ownerID, IsSample: true},
		{RequesterName: "Sample Requester Bob", RequesterEmail: "bob.sample@example.com", RequestType: "deletion", Status: "In Progress", Regulation: "GDPR", DueDate: due, AssignedToID: ownerID, IsSample: true},
		{RequesterName: "Sample Requester Carol", RequesterEmail: "carol.sample@example.com", RequestType: "rectification", Status: "Verifying Identity", Regulation: "CCPA", DueDate: due, AssignedToID: ownerID, IsSample: true},
		{RequesterName: "Sample Requester Dave", RequesterEmail: "dave.sample@example.com", RequestType: "portability", Status: "Completed", Regulation: "LGPD", DueDate: due, AssignedToID: ownerID, IsSample: true},
	}
}

func sampleNotices(ownerID *string, now time.Time) []models.PrivacyNotice {
	published := now.AddDate(0, -1, 0)
	return []models.PrivacyNotice{
		{Title: "Sample Website Privacy Notice", Version: "1.0", Content: "How we collect and use personal data on our website.", Status: "published", CreatedByID: ownerID, PublishedAt: &published, IsSample: true},
		{Title: "Sample Employee Privacy Notice", Version: "1.0", Content: "How we process employee personal data.", Status: "draft", CreatedByID: ownerID, IsSample: true},
		{Title: "Sample Cookie Policy", Version: "2.1", Content: "Which cookies we set and why.", Status: "published", CreatedByID: ownerID, PublishedAt: &published, IsSample: true},
	}
}

func sampleIncidents(ownerID *string, now time.Time) []models.Incident {
	return []models.Incident{
		{Title: "Sample Phishing Email Report", Description: "Staff member reported a credential phishing attempt.", Severity: "medium", Status: "Investigating", ReportedByID: ownerID, OccurredAt: now.AddDate(0, 0, -3), IsSample: true},
		{Title: "Sample Lost Laptop", Description: "Encrypted laptop left on public transport.", Severity: "low", Status: "Contained", ReportedByID: ownerID, OccurredAt: now.AddDate(0, 0, -14), IsSample: true},
		{Title: "Sample Misdirected Email", Description: "Customer invoice sent to the wrong recipient.", Severity: "high", Status: "Resolved", ReportedByID: ownerID, OccurredAt: now.AddDate(0, -1, 0), IsSample: true},
	}
}

func sampleDomains(ownerID *string, now time.Time) []models.Domain {
	sslSoon := now.AddDate(0, 0, 12)
	sslLater := now.AddDate(0, 6, 0)
	regSoon := now.AddDate(0, 0, 25)
	regLater := now.AddDate(2, 0, 0)
	return []models.Domain{
		{Name: "sample-shop.example.com", SSLExpiresAt: &sslSoon, DomainExpiresAt: &regLater, OwnerID: ownerID, IsSample: true},
		{Name: "sample-portal.example.com", SSLExpiresAt: &sslLater, DomainExpiresAt: &regSoon, OwnerID: ownerID, IsSample: true},
	}
}
